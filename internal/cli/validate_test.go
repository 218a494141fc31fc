package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateValid(t *testing.T) {
	out, err := runCommand(t, "validate", "--strict", "--tests", "testdata/tests.json", "testdata/ruleset.json")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ testdata/ruleset.json is valid: 4 parameter(s), 3 rule(s), 3 test case(s)")
}

func TestValidateValidJSON(t *testing.T) {
	out, err := runCommand(t, "--format", "json", "validate", "testdata/ruleset.json")
	require.NoError(t, err)

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Data.Valid)
}

func TestValidateInvalid(t *testing.T) {
	out, err := runCommand(t, "validate", "testdata/unknown_function.json")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ Validation failed")
	assert.Contains(t, out, "E103")
	assert.Contains(t, out, "aws.partition")
}

func TestValidateInvalidJSON(t *testing.T) {
	out, err := runCommand(t, "--format", "json", "validate", "testdata/unknown_function.json")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E103", resp.Error.Code)
	assert.NotNil(t, resp.Error.Details)
}

func TestValidateStrictRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "extra.json")
	doc := `{"version": "1.0", "parameters": {}, "rules": [{"error": "x", "extra": 1}]}`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	// Without --strict the unknown key is skipped.
	_, err := runCommand(t, "validate", path)
	require.NoError(t, err)

	out, err := runCommand(t, "validate", "--strict", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "E101")
}

func TestValidateExitCodes(t *testing.T) {
	dir := t.TempDir()
	broken := filepath.Join(dir, "broken.yaml")
	require.NoError(t, os.WriteFile(broken, []byte("version: [\n"), 0o644))

	tests := []struct {
		name string
		path string
		want int
	}{
		{"missing_file", filepath.Join(dir, "missing.json"), ExitCommandError},
		{"undecodable_yaml", broken, ExitFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runCommand(t, "validate", tt.path)
			require.Error(t, err)
			assert.Equal(t, tt.want, GetExitCode(err))
		})
	}
}
