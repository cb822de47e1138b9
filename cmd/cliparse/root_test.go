package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSchema = `
options:
  - name: port
    arg: ["--port", "-p"]
    env: PORT
    type: integer
    default: 8080
  - name: verbose
    arg: ["--verbose"]
    type: boolean
  - name: files
    arg: positional
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func run(t *testing.T, environ []string, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := newRootCmd(newApp(&stdout, &stderr, func() []string { return environ }))
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), err
}

func decode(t *testing.T, out string) map[string]any {
	t.Helper()
	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &doc), out)
	return doc
}

func TestResolvePrintsValues(t *testing.T) {
	schema := writeFile(t, "options.yaml", testSchema)

	out, err := run(t, nil, "resolve", "-s", schema, "--", "--port", "9000", "--verbose", "a.txt")
	require.NoError(t, err)

	doc := decode(t, out)
	assert.Equal(t, true, doc["ok"])
	assert.NotEmpty(t, doc["cycle"])
	values := doc["values"].(map[string]any)
	assert.Equal(t, 9000.0, values["port"])
	assert.Equal(t, true, values["verbose"])
	assert.Equal(t, []any{"a.txt"}, values["files"])
}

func TestResolveReadsEnvironment(t *testing.T) {
	schema := writeFile(t, "options.yaml", testSchema)

	out, err := run(t, []string{"PORT=7000"}, "resolve", "-s", schema, "--trace")
	require.NoError(t, err)

	doc := decode(t, out)
	values := doc["values"].(map[string]any)
	assert.Equal(t, 7000.0, values["port"])

	traces := doc["traces"].([]any)
	require.Len(t, traces, 3)
	port := traces[0].(map[string]any)
	assert.Equal(t, "port", port["name"])
	assert.Equal(t, "env", port["level"])
	assert.Equal(t, "PORT", port["env"])
}

func TestResolveFailureExitsWithErrorMap(t *testing.T) {
	schema := writeFile(t, "options.yaml", testSchema)

	out, err := run(t, nil, "resolve", "-s", schema, "--", "--port", "abc")
	var exitErr *exitError
	require.True(t, errors.As(err, &exitErr), "expected exit error, got %v", err)
	assert.Equal(t, exitParseFailed, exitErr.code)

	doc := decode(t, out)
	assert.Equal(t, false, doc["ok"])
	assert.Nil(t, doc["values"])
	entry := doc["errors"].(map[string]any)["port"].(map[string]any)
	assert.Equal(t, "coercion", entry["kind"])
}

func TestResolveUsesConfiguredVocabulary(t *testing.T) {
	schema := writeFile(t, "options.yaml", testSchema)
	t.Setenv("CLIPARSE_TRUTHY", "yep,sure")

	out, err := run(t, nil, "resolve", "-s", schema, "--", "--verbose=sure")
	require.NoError(t, err)
	values := decode(t, out)["values"].(map[string]any)
	assert.Equal(t, true, values["verbose"])

	_, err = run(t, nil, "resolve", "-s", schema, "--", "--verbose=yes")
	assert.Error(t, err)
}

func TestResolveWithConfigFileEngine(t *testing.T) {
	schema := writeFile(t, "options.yaml", `
options:
  - name: name
    arg: ["--name"]
    validate:
      - expr: "size(value) > 2"
`)
	config := writeFile(t, "cliparse.yaml", "engine: cel\nlog_level: error\n")

	out, err := run(t, nil, "--config", config, "resolve", "-s", schema, "--", "--name", "abcd")
	require.NoError(t, err)
	values := decode(t, out)["values"].(map[string]any)
	assert.Equal(t, "abcd", values["name"])

	_, err = run(t, nil, "--config", config, "resolve", "-s", schema, "--", "--name", "ab")
	assert.Error(t, err)
}

func TestResolveWritesMetrics(t *testing.T) {
	schema := writeFile(t, "options.yaml", testSchema)
	metricsPath := filepath.Join(t.TempDir(), "cliparse.prom")

	_, err := run(t, nil, "resolve", "-s", schema, "--metrics-textfile", metricsPath, "--", "-p", "1")
	require.NoError(t, err)

	data, err := os.ReadFile(metricsPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `cliparser_parses_total{outcome="ok",stage="handle"} 1`)
}

func TestResolveYAMLOutput(t *testing.T) {
	schema := writeFile(t, "options.yaml", testSchema)

	out, err := run(t, nil, "resolve", "-s", schema, "-f", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "ok: true")
	assert.Contains(t, out, "port: 8080")
}

func TestDescribeFormats(t *testing.T) {
	schema := writeFile(t, "options.toml", `
[[options]]
name = "port"
arg = ["--port"]
type = "integer"
default = 8080
description = "listen port"
`)

	out, err := run(t, nil, "describe", "-s", schema)
	require.NoError(t, err)
	var fields []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &fields))
	require.Len(t, fields, 1)
	assert.Equal(t, "port", fields[0]["name"])
	assert.Equal(t, "integer", fields[0]["type"])
	assert.Equal(t, "listen port", fields[0]["description"])

	out, err = run(t, nil, "describe", "-s", schema, "-f", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "name: port")

	out, err = run(t, nil, "describe", "-s", schema, "-f", "openapi")
	require.NoError(t, err)
	doc := decode(t, out)
	schemas := doc["components"].(map[string]any)["schemas"].(map[string]any)
	assert.Contains(t, schemas, "Options")
	assert.Equal(t, "cliparse options", doc["info"].(map[string]any)["title"])
	assert.Contains(t, doc["paths"], "/cliparse/options")
}

func TestMissingSchema(t *testing.T) {
	_, err := run(t, nil, "describe")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no schema file")
}
