package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalJSON(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"string", `"hello"`, `"hello"`},
		{"number text kept", `1.50`, `1.50`},
		{"null", `null`, `null`},
		{"bools", `[true, false]`, `[true,false]`},
		{"whitespace dropped", "{ \"a\" :\n 1 }", `{"a":1}`},
		{"sorted keys", `{"zebra": 1, "alpha": 2, "beta": 3}`, `{"alpha":2,"beta":3,"zebra":1}`},
		{"nested", `{"b": [{"y": 1, "x": 2}], "a": {}}`, `{"a":{},"b":[{"x":2,"y":1}]}`},
		{"no html escaping", `"<a&b>"`, `"<a&b>"`},
		{"line separators literal", `"a\u2028b"`, "\"a\u2028b\""},
		{"control escaped", `"a\u0001b\n"`, `"a\u0001b\n"`},
		{"nfc", "\"e\u0301\"", "\"\u00e9\""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CanonicalJSON([]byte(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(got))
		})
	}
}

func TestCanonicalJSON_UTF16KeyOrder(t *testing.T) {
	// U+1F600 encodes as surrogates 0xD83D 0xDE00, which sort before
	// U+FF61 in UTF-16 even though the UTF-8 bytes sort after.
	got, err := CanonicalJSON([]byte("{\"\uff61\": 1, \"\U0001F600\": 2}"))
	require.NoError(t, err)
	assert.Equal(t, "{\"\U0001F600\":2,\"\uff61\":1}", string(got))
}

func TestCanonicalJSON_Errors(t *testing.T) {
	for name, input := range map[string]string{
		"duplicate key": `{"a": 1, "a": 2}`,
		"trailing data": `{} {}`,
		"malformed":     `{"a": }`,
		"empty":         ``,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := CanonicalJSON([]byte(input))
			assert.Error(t, err)
		})
	}
}

func TestInputHash(t *testing.T) {
	a, err := InputHash([]byte(`{"version": "1.0", "rules": []}`), nil)
	require.NoError(t, err)
	assert.Len(t, a, 64, "SHA-256 hex is 64 characters")

	b, err := InputHash([]byte(`{"rules":[],"version":"1.0"}`), nil)
	require.NoError(t, err)
	assert.Equal(t, a, b, "formatting and key order must not change the hash")

	c, err := InputHash([]byte(`{"rules":[],"version":"1.0"}`), []byte(`{"testCases": []}`))
	require.NoError(t, err)
	assert.NotEqual(t, a, c, "tests are part of the input")

	_, err = InputHash([]byte(`{`), nil)
	assert.Error(t, err)
}

func TestOutputHash(t *testing.T) {
	files := map[string][]byte{"a.go": []byte("package a"), "a_test.go": []byte("package a")}
	h1 := OutputHash(files)
	h2 := OutputHash(map[string][]byte{"a_test.go": []byte("package a"), "a.go": []byte("package a")})
	assert.Equal(t, h1, h2)

	files["a.go"] = []byte("package b")
	assert.NotEqual(t, h1, OutputHash(files))
	assert.NotEqual(t, hashWithDomain(DomainInput, nil), hashWithDomain(DomainOutput, nil))
}

func TestOptionsHash(t *testing.T) {
	base := map[string]string{"package": "endpoints", "output": "s3/endpoints.go", "strict": "false"}
	h := OptionsHash(base)
	assert.Len(t, h, 64)
	assert.Equal(t, h, OptionsHash(map[string]string{"strict": "false", "output": "s3/endpoints.go", "package": "endpoints"}))

	moved := map[string]string{"package": "endpoints", "output": "s3/v2/endpoints.go", "strict": "false"}
	assert.NotEqual(t, h, OptionsHash(moved))

	// Key and value boundaries are kept apart.
	assert.NotEqual(t, OptionsHash(map[string]string{"ab": "c"}), OptionsHash(map[string]string{"a": "bc"}))
}
