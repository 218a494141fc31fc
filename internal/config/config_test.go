package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), DefaultFileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
package: sdk
strict: true
services:
  - name: s3
    ruleset: models/s3.json
    tests: models/s3-tests.json
  - name: sqs
    ruleset: /abs/sqs.yaml
    package: sqsendpoints
    output: gen/sqs.go
`)
	base := filepath.Dir(path)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "sdk", cfg.Package)
	assert.True(t, cfg.Strict)
	assert.Equal(t, filepath.Join(base, DefaultManifest), cfg.Manifest)
	require.Len(t, cfg.Services, 2)

	s3 := cfg.Services[0]
	assert.Equal(t, "s3", s3.Name)
	assert.Equal(t, "sdk", s3.Package)
	assert.Equal(t, filepath.Join(base, "models/s3.json"), s3.RuleSet)
	assert.Equal(t, filepath.Join(base, "models/s3-tests.json"), s3.Tests)
	assert.Equal(t, filepath.Join(base, "s3/endpoints.go"), s3.Output)
	assert.Equal(t, filepath.Join(base, "s3/endpoints_test.go"), s3.TestOutput)

	sqs, ok := cfg.Service("sqs")
	require.True(t, ok)
	assert.Equal(t, "/abs/sqs.yaml", sqs.RuleSet)
	assert.Equal(t, "sqsendpoints", sqs.Package)
	assert.Equal(t, filepath.Join(base, "gen/sqs.go"), sqs.Output)
	assert.Empty(t, sqs.TestOutput)

	_, ok = cfg.Service("missing")
	assert.False(t, ok)
}

func TestLoad_EnvOverride(t *testing.T) {
	path := writeConfig(t, `
services:
  - name: s3
    ruleset: s3.json
`)
	t.Setenv("RULESGEN_STRICT", "true")
	t.Setenv("RULESGEN_MANIFEST", "/tmp/other.db")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.True(t, cfg.Strict)
	assert.Equal(t, "/tmp/other.db", cfg.Manifest)
	assert.Equal(t, DefaultPackage, cfg.Services[0].Package)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []string
	}{
		{"no services", `package: x`, []string{"no services configured"}},
		{
			"bad services",
			`
services:
  - ruleset: a.json
  - name: a
  - name: b
    ruleset: b.json
  - name: b
    ruleset: c.json
`,
			[]string{"services[0]: name is required", "services[1]: ruleset is required", `services[3]: duplicate name "b"`},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			require.Error(t, err)
			for _, w := range tt.want {
				assert.Contains(t, err.Error(), w)
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorContains(t, err, "failed to read config file")
}
