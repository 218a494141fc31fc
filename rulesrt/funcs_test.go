package rulesrt

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptionalHelpers(t *testing.T) {
	var unset *string
	assert.Equal(t, "us-east-1", OrElse(unset, "us-east-1"))
	assert.Equal(t, "eu-west-1", OrElse(Ptr("eu-west-1"), "us-east-1"))

	assert.False(t, IsSet(unset))
	assert.False(t, IsSet(nil))
	assert.True(t, IsSet(Ptr("")))
	assert.True(t, IsSet(false))
}

func TestTruthy(t *testing.T) {
	tests := []struct {
		name string
		v    any
		want bool
	}{
		{"nil", nil, false},
		{"nil pointer", (*bool)(nil), false},
		{"true", true, true},
		{"false pointer", Ptr(false), false},
		{"empty string", "", false},
		{"string", "x", true},
		{"url", URL{Scheme: "https"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Truthy(tt.v))
		})
	}
	assert.True(t, Not(false))
}

func TestEquals(t *testing.T) {
	assert.True(t, BooleanEquals(Ptr(true), true))
	assert.False(t, BooleanEquals(true, "true"))
	assert.True(t, StringEquals("aws", Value("aws")))
	assert.False(t, StringEquals(nil, ""))
}

func TestGetAttr(t *testing.T) {
	doc := []Property{
		{Key: "name", Value: "aws"},
		{Key: "outputs", Value: []Property{{Key: "dnsSuffix", Value: "amazonaws.com"}}},
		{Key: "regions", Value: []Value{"us-east-1", "us-west-2"}},
	}

	assert.Equal(t, "aws", GetAttr(doc, "name"))
	assert.Equal(t, "amazonaws.com", GetAttr(doc, "outputs.dnsSuffix"))
	assert.Equal(t, "us-west-2", GetAttr(doc, "regions[1]"))
	assert.Nil(t, GetAttr(doc, "regions[5]"))
	assert.Nil(t, GetAttr(doc, "missing.deeper"))
	assert.Nil(t, GetAttr(doc, "regions[x]"))
	assert.Equal(t, "b", GetAttr([]string{"a", "b"}, "[1]"))
	assert.Equal(t, "v", GetAttr(map[string]any{"k": "v"}, "k"))

	u := ParseURL("https://example.com:8443/a/b")
	require.NotNil(t, u)
	assert.Equal(t, "example.com:8443", GetAttr(u, "authority"))
	assert.Equal(t, "/a/b/", GetAttr(*u, "normalizedPath"))
}

func TestGetAttr_ZeroValuesAreSet(t *testing.T) {
	doc := []Property{{Key: "empty", Value: ""}, {Key: "off", Value: false}}

	// Condition guards on getAttr pass on a set zero value and fail only
	// on a missing one.
	assert.True(t, IsSet(GetAttr(doc, "empty")))
	assert.True(t, IsSet(Ptr(GetAttr(doc, "off"))))
	assert.False(t, IsSet(GetAttr(doc, "missing")))
	assert.False(t, IsSet(Ptr(GetAttr(doc, "missing"))))
}

func TestSubstring(t *testing.T) {
	tests := []struct {
		name        string
		input       any
		start, stop int
		reverse     bool
		want        *string
	}{
		{"prefix", "abcdef", 0, 3, false, Ptr("abc")},
		{"suffix", "abcdef", 0, 3, true, Ptr("def")},
		{"too short", "ab", 0, 3, false, nil},
		{"empty window", "abcdef", 2, 2, false, nil},
		{"non ascii", "abcdé", 0, 2, false, nil},
		{"not a string", true, 0, 1, false, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Substring(tt.input, tt.start, tt.stop, tt.reverse))
		})
	}
}

func TestURIEncode(t *testing.T) {
	assert.Equal(t, "a%2Fb%20c~d", URIEncode("a/b c~d"))
	assert.Equal(t, "%2A%25", URIEncode(Ptr("*%")))
}

func TestParseURL(t *testing.T) {
	u := ParseURL("http://127.0.0.1/path")
	require.NotNil(t, u)
	assert.True(t, u.IsIP)
	assert.Equal(t, "http", u.Scheme)
	assert.Equal(t, "/path", u.Path)

	u = ParseURL("https://example.com")
	require.NotNil(t, u)
	assert.Equal(t, "", u.Path)
	assert.Equal(t, "/", u.NormalizedPath)
	assert.False(t, u.IsIP)

	assert.Nil(t, ParseURL("https://example.com/?q=1"))
	assert.Nil(t, ParseURL("ftp://example.com"))
	assert.Nil(t, ParseURL("not a url"))
	assert.Nil(t, ParseURL(3))
}

func TestIsValidHostLabel(t *testing.T) {
	assert.True(t, IsValidHostLabel("us-east-1", false))
	assert.False(t, IsValidHostLabel("-bad", false))
	assert.False(t, IsValidHostLabel("a.b", false))
	assert.True(t, IsValidHostLabel("a.b", true))
	assert.False(t, IsValidHostLabel("a..b", true))
	assert.False(t, IsValidHostLabel("", Ptr(true)))
}

func TestEndpointEqual(t *testing.T) {
	want := Endpoint{
		URL:     "https://svc.example.com",
		Headers: []Header{{Name: "a", Values: []string{"1"}}, {Name: "b", Values: nil}},
		Properties: []Property{
			{Key: "n", Value: json.Number("1")},
			{Key: "o", Value: []Property{{Key: "x", Value: true}}},
		},
		AuthSchemes: []AuthScheme{{Name: "sigv4", Properties: []Property{{Key: "signingName", Value: "svc"}}}},
	}
	got := Endpoint{
		URL:     "https://svc.example.com",
		Headers: []Header{{Name: "b", Values: []string{}}, {Name: "a", Values: []string{"1"}}},
		Properties: []Property{
			{Key: "o", Value: []Property{{Key: "x", Value: true}}},
			{Key: "n", Value: json.Number("1")},
		},
		AuthSchemes: []AuthScheme{{Name: "sigv4", Properties: []Property{{Key: "signingName", Value: "svc"}}}},
	}
	assert.True(t, EndpointEqual(want, got), "order does not matter")

	got.AuthSchemes[0].Properties[0].Value = "other"
	assert.False(t, EndpointEqual(want, got))

	assert.False(t, EndpointEqual(want, Endpoint{URL: want.URL}))
}
