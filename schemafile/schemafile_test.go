package schemafile

import (
	"strings"
	"testing"

	cliparser "github.com/capnajax/cli-parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadRegistry(t *testing.T) *cliparser.Registry {
	t.Helper()
	file, err := Load("testdata/server.yaml")
	require.NoError(t, err)
	registry := cliparser.NewRegistry()
	require.NoError(t, file.Register(registry))
	return registry
}

func TestLoadYAMLResolves(t *testing.T) {
	registry := loadRegistry(t)

	ok := registry.ParseWith([]string{"--port", "9090", "--name", "bob", "a.txt", "b.txt"}, nil)
	require.True(t, ok, "unexpected errors: %v", registry.Errors().Messages())

	values := registry.Values()
	port, _ := values.GetInt("port")
	assert.Equal(t, 9090, port)
	name, _ := values.GetString("name")
	assert.Equal(t, "BOB", name)
	level, _ := values.GetString("level")
	assert.Equal(t, "info", level)
	files, _ := values.GetList("files")
	assert.Equal(t, []string{"a.txt", "b.txt"}, files)
}

func TestLoadYAMLHandlerDefersOnAbsentValue(t *testing.T) {
	registry := loadRegistry(t)

	require.True(t, registry.ParseWith(nil, map[string]string{"PORT": "7000"}))
	value, present := registry.Values().Lookup("name")
	assert.True(t, present)
	assert.Nil(t, value)
	port, _ := registry.Values().GetInt("port")
	assert.Equal(t, 7000, port)
}

func TestLoadYAMLValidatorsReject(t *testing.T) {
	registry := loadRegistry(t)

	require.False(t, registry.ParseWith([]string{"--port", "0", "--level", "trace"}, nil))
	errs := registry.Errors()

	message, ok := errs.Get("port")
	require.True(t, ok)
	assert.Equal(t, "port out of range", message)

	entry, ok := errs.Lookup("level")
	require.True(t, ok)
	assert.Equal(t, cliparser.KindValidation, entry.Kind)
	assert.Contains(t, entry.Message, `option "level" does not satisfy`)
}

func TestParseTOML(t *testing.T) {
	doc := `
engine = "expr"

[[options]]
name = "retries"
arg = ["--retries"]
type = "integer"
default = 3

[[options]]
name = "rest"
arg = "separator"
`
	file, err := Parse([]byte(doc), FormatTOML)
	require.NoError(t, err)
	require.Len(t, file.Options, 2)

	values, err := cliparser.Resolve(mustDefinitions(t, file), []string{"--", "x", "y"}, nil)
	require.NoError(t, err)

	retries, _ := values.GetInt("retries")
	assert.Equal(t, 3, retries)
	rest, _ := values.GetList("rest")
	assert.Equal(t, []string{"x", "y"}, rest)
}

func TestParseRejectsUnknownFields(t *testing.T) {
	_, err := Parse([]byte("options:\n  - name: a\n    colour: red\n"), FormatYAML)
	require.Error(t, err)

	_, err = Parse([]byte("[[options]]\nname = \"a\"\ncolour = \"red\"\n"), FormatTOML)
	require.Error(t, err)

	_, err = Parse([]byte("{}"), Format("json"))
	require.Error(t, err)
}

func TestDefinitionsReportsBuildErrors(t *testing.T) {
	file := &File{Options: []Entry{
		{Name: "bad-arg", Arg: 5},
		{Name: "bad-engine", Validate: []Rule{{Expr: "true", Engine: "lua"}}},
		{Name: "bad-expr", Validate: []Rule{{Expr: "value >"}}},
		{Name: "fine", Arg: "--fine"},
	}}

	defs, err := file.Definitions()
	require.Error(t, err)
	require.Len(t, defs, 1)
	assert.Equal(t, "fine", defs[0].Name)

	message := err.Error()
	assert.Contains(t, message, `"bad-arg"`)
	assert.Contains(t, message, "unknown rule engine")
	assert.Contains(t, message, `"bad-expr"`)
}

func TestRegisterKeepsDefinitionErrorsOnRegistry(t *testing.T) {
	file := &File{Options: []Entry{
		{Name: "token", Arg: "--token", Required: true, Default: "x"},
		{Name: "other", Arg: "--other"},
	}}
	registry := cliparser.NewRegistry()

	err := file.Register(registry)
	require.Error(t, err)

	assert.False(t, registry.ParseWith([]string{"--other", "v"}, nil))
	entry, ok := registry.Errors().Lookup("token")
	require.True(t, ok)
	assert.Equal(t, cliparser.KindDefinition, entry.Kind)
	assert.True(t, strings.Contains(entry.Message, "required"))
}

func TestFormatFromPath(t *testing.T) {
	for path, want := range map[string]Format{"a.yaml": FormatYAML, "b.YML": FormatYAML, "c.toml": FormatTOML} {
		got, err := FormatFromPath(path)
		require.NoError(t, err)
		assert.Equal(t, want, got, path)
	}
	_, err := FormatFromPath("d.json")
	assert.Error(t, err)
}

func mustDefinitions(t *testing.T, file *File) []cliparser.Definition {
	t.Helper()
	defs, err := file.Definitions()
	require.NoError(t, err)
	return defs
}
