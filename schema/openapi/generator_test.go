package openapi

import (
	"encoding/json"
	"reflect"
	"testing"

	cliparser "github.com/capnajax/cli-parser"
)

func TestNewGeneratorOptions(t *testing.T) {
	custom := NewGenerator(
		WithOpenAPIVersion("3.1.0"),
		WithInfo("Custom Tool", "2.0.0", "custom schema"),
		WithOperation("/run", "PUT", "runTool"),
		WithSummary("Run the tool"),
		WithContentType("application/yaml"),
		WithResponse("201", "Created"),
		WithResponse("422", ""),
	)

	cfg := custom.config
	if got := cfg.openAPIVersion; got != "3.1.0" {
		t.Fatalf("expected openapi version 3.1.0, got %q", got)
	}
	if cfg.title != "Custom Tool" || cfg.version != "2.0.0" || cfg.description != "custom schema" {
		t.Fatalf("unexpected info %q %q %q", cfg.title, cfg.version, cfg.description)
	}
	if cfg.path != "/run" || cfg.method != "put" || cfg.operationID != "runTool" {
		t.Fatalf("unexpected operation %s %s %s", cfg.method, cfg.path, cfg.operationID)
	}
	if cfg.summary != "Run the tool" {
		t.Fatalf("expected summary, got %q", cfg.summary)
	}
	if cfg.contentType != "application/yaml" {
		t.Fatalf("expected content type application/yaml, got %q", cfg.contentType)
	}
	want := map[string]string{"201": "Created", "204": "Options resolved"}
	if !reflect.DeepEqual(cfg.responses, want) {
		t.Fatalf("expected responses %v, got %v", want, cfg.responses)
	}
}

func TestWithCommandNamesDocument(t *testing.T) {
	fields := []cliparser.FieldDescriptor{{Name: "name", Type: cliparser.TypeString, Mode: "switch"}}

	doc, err := NewGenerator(WithCommand("serve")).Generate(fields)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if title := doc["info"].(map[string]any)["title"]; title != "serve options" {
		t.Fatalf("unexpected title %v", title)
	}
	operation := doc["paths"].(map[string]any)["/serve/options"].(map[string]any)["post"].(map[string]any)
	if operation["operationId"] != "post:/serve/options" {
		t.Fatalf("unexpected operation id %v", operation["operationId"])
	}
	responses := operation["responses"].(map[string]any)
	if _, ok := responses["422"]; !ok {
		t.Fatalf("expected rejected response, got %v", responses)
	}

	unchanged := NewGenerator(WithCommand("  ")).config
	if unchanged.title != "Command Options" || unchanged.path != "/options" {
		t.Fatalf("blank command should keep defaults, got %q %q", unchanged.title, unchanged.path)
	}
}

func TestSchemaFromRegistry(t *testing.T) {
	registry := cliparser.NewRegistry()
	err := registry.AddDefinitions(
		cliparser.Must(cliparser.NewIntegerOption("port",
			cliparser.WithSwitches("--port", "-p"),
			cliparser.WithEnvVar("PORT"),
			cliparser.WithDefault(8080),
			cliparser.WithDescription("listen port"),
		)),
		cliparser.Must(cliparser.NewStringOption("token", cliparser.WithRequired(), cliparser.WithSilent())),
		cliparser.Must(cliparser.NewPositionalOption("files")),
	)
	if err != nil {
		t.Fatalf("add definitions: %v", err)
	}

	schema, err := Schema(registry.Describe())
	if err != nil {
		t.Fatalf("schema: %v", err)
	}

	if !reflect.DeepEqual(schema["required"], []string{"token"}) {
		t.Fatalf("expected token to be required, got %v", schema["required"])
	}
	properties := schema["properties"].(map[string]any)

	port := properties["port"].(map[string]any)
	if port["type"] != "integer" || port["default"] != 8080 || port["description"] != "listen port" {
		t.Fatalf("unexpected port schema %v", port)
	}
	if _, nullable := port["nullable"]; nullable {
		t.Fatalf("defaulted option should not be nullable")
	}
	ext := port["x-cli"].(map[string]any)
	if ext["mode"] != "switch" || ext["env"] != "PORT" {
		t.Fatalf("unexpected port extension %v", ext)
	}
	if !reflect.DeepEqual(ext["switches"], []string{"--port", "-p"}) {
		t.Fatalf("unexpected switches %v", ext["switches"])
	}

	token := properties["token"].(map[string]any)
	if token["x-cli"].(map[string]any)["silent"] != true {
		t.Fatalf("expected silent extension on token, got %v", token)
	}

	files := properties["files"].(map[string]any)
	if files["type"] != "array" || files["nullable"] != true {
		t.Fatalf("unexpected files schema %v", files)
	}
	if files["x-cli"].(map[string]any)["mode"] != "positional" {
		t.Fatalf("expected positional mode, got %v", files["x-cli"])
	}
}

func TestGenerateDocument(t *testing.T) {
	fields := []cliparser.FieldDescriptor{
		{Name: "verbose", Type: cliparser.TypeBoolean, Mode: "switch", Switches: []string{"-v"}},
	}

	doc, err := NewGenerator().Generate(fields)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if doc["openapi"] != "3.0.3" {
		t.Fatalf("expected default version, got %v", doc["openapi"])
	}
	paths := doc["paths"].(map[string]any)
	operation := paths["/options"].(map[string]any)["post"].(map[string]any)
	if operation["operationId"] != "post:/options" {
		t.Fatalf("unexpected operation id %v", operation["operationId"])
	}
	content := operation["requestBody"].(map[string]any)["content"].(map[string]any)
	body := content["application/json"].(map[string]any)["schema"].(map[string]any)
	if body["type"] != "object" {
		t.Fatalf("expected inline object schema, got %v", body)
	}
	if _, ok := doc["components"]; ok {
		t.Fatalf("expected no components without a root component")
	}

	if _, err := json.Marshal(doc); err != nil {
		t.Fatalf("document should marshal: %v", err)
	}
}

func TestGenerateWithRootComponent(t *testing.T) {
	fields := []cliparser.FieldDescriptor{{Name: "name", Type: cliparser.TypeString, Mode: "switch"}}

	doc, err := NewGenerator(WithRootComponent("Options")).Generate(fields)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	schemas := doc["components"].(map[string]any)["schemas"].(map[string]any)
	if _, ok := schemas["Options"]; !ok {
		t.Fatalf("expected Options component, got %v", schemas)
	}
	operation := doc["paths"].(map[string]any)["/options"].(map[string]any)["post"].(map[string]any)
	content := operation["requestBody"].(map[string]any)["content"].(map[string]any)
	ref := content["application/json"].(map[string]any)["schema"].(map[string]any)["$ref"]
	if ref != "#/components/schemas/Options" {
		t.Fatalf("expected component reference, got %v", ref)
	}
}

func TestSchemaRejectsUnknownType(t *testing.T) {
	_, err := Schema([]cliparser.FieldDescriptor{{Name: "x", Type: "float"}})
	if err == nil {
		t.Fatalf("expected unsupported type error")
	}
}
