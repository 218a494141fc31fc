package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestCompileToStdout(t *testing.T) {
	out, err := runCommand(t, "compile", "testdata/ruleset.json")
	require.NoError(t, err)

	assert.Contains(t, out, "// Code generated by rulesgen. DO NOT EDIT.")
	assert.Contains(t, out, "package endpoints")
	assert.Contains(t, out, "type EndpointParams struct")
	assert.Contains(t, out, "func ResolveEndpoint(")
}

func TestCompileYAML(t *testing.T) {
	out, err := runCommand(t, "compile", "--package", "svc", "testdata/ruleset.yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "package svc")
	assert.Contains(t, out, "Region *string")
}

func TestCompileJSONReport(t *testing.T) {
	out, err := runCommand(t, "--format", "json", "compile", "testdata/ruleset.json")
	require.NoError(t, err)

	var resp struct {
		Status string        `json:"status"`
		Data   CompileReport `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "endpoints", resp.Data.Package)
	assert.Equal(t, 4, resp.Data.Parameters)
	assert.Equal(t, 3, resp.Data.Rules)
	assert.Empty(t, resp.Data.Files)
	assert.Contains(t, resp.Data.Source, "func ResolveEndpoint(")
}

func TestCompileWritesFiles(t *testing.T) {
	dir := t.TempDir()
	output := filepath.Join(dir, "svc", "endpoints.go")

	out, err := runCommand(t, "compile",
		"--tests", "testdata/tests.json",
		"--output", output,
		"--resolver", "Resolve",
		"testdata/ruleset.json")
	require.NoError(t, err)

	assert.Contains(t, out, "✓ Compiled 4 parameter(s), 3 rule(s), 3 test case(s)")
	assert.Contains(t, out, "Wrote "+output)

	src, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Contains(t, string(src), "func Resolve(")

	testSrc, err := os.ReadFile(filepath.Join(dir, "svc", "endpoints_test.go"))
	require.NoError(t, err)
	assert.Contains(t, string(testSrc), "func TestResolve_")
}

func TestCompileExplicitTestOutput(t *testing.T) {
	dir := t.TempDir()
	output := filepath.Join(dir, "endpoints.go")
	testOutput := filepath.Join(dir, "conformance_test.go")

	_, err := runCommand(t, "compile",
		"--tests", "testdata/tests.json",
		"-o", output,
		"--test-output", testOutput,
		"testdata/ruleset.json")
	require.NoError(t, err)

	assert.FileExists(t, output)
	assert.FileExists(t, testOutput)
	assert.NoFileExists(t, filepath.Join(dir, "endpoints_test.go"))
}

func TestCompileTestsRequireOutput(t *testing.T) {
	_, err := runCommand(t, "compile", "--tests", "testdata/tests.json", "testdata/ruleset.json")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantCode string
	}{
		{"missing_file", []string{"compile", "testdata/nope.json"}, "E002"},
		{"unsupported_extension", []string{"compile", "compile_test.go"}, "E003"},
		{"unknown_function", []string{"compile", "testdata/unknown_function.json"}, "E103"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := runCommand(t, tt.args...)
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))
			assert.Contains(t, out, "Error ["+tt.wantCode+"]")
		})
	}
}
