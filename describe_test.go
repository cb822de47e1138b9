package cliparser

import (
	"reflect"
	"testing"
)

func TestDescribeUsesGoverningDefinition(t *testing.T) {
	registry := NewRegistry()
	_ = registry.AddDefinitions(
		Must(NewIntegerOption("port",
			WithSwitches("--port", "-p"),
			WithEnvVar("APP_PORT"),
			WithDefault("8080"),
			WithValidators(func(any, string, map[string]any) Verdict { return Accept() }),
		)),
		Definition{Name: "port", Description: "listen port", Handlers: []Handler{constantHandler(Defer())}},
		Must(NewPositionalOption("files", WithSilent())),
	)
	_ = registry.AddDefinition(Definition{Name: "bad", Required: true, Default: "x"})

	fields := registry.Describe()
	if len(fields) != 2 {
		t.Fatalf("expected two descriptors, got %+v", fields)
	}

	port := fields[0]
	want := FieldDescriptor{
		Name:        "port",
		Type:        TypeInteger,
		Mode:        "switch",
		Switches:    []string{"--port", "-p"},
		Env:         "APP_PORT",
		Default:     8080,
		Description: "listen port",
		Definitions: 2,
		Validators:  1,
		Handlers:    1,
	}
	if !reflect.DeepEqual(port, want) {
		t.Fatalf("expected %+v, got %+v", want, port)
	}

	files := fields[1]
	if files.Mode != "positional" || files.Type != TypeList || !files.Silent || files.Switches != nil {
		t.Fatalf("unexpected files descriptor %+v", files)
	}
}
