package openapi

import (
	"fmt"

	cliparser "github.com/capnajax/cli-parser"
)

// Generator renders option descriptors as an OpenAPI document whose request
// body is the resolved value map.
type Generator struct {
	config generatorConfig
}

// NewGenerator constructs a generator with the provided options.
func NewGenerator(opts ...GeneratorOption) Generator {
	cfg := defaultGeneratorConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return Generator{config: cfg}
}

// Generate builds the document for fields.
func (g Generator) Generate(fields []cliparser.FieldDescriptor) (map[string]any, error) {
	schema, err := Schema(fields)
	if err != nil {
		return nil, err
	}
	return newDocumentBuilder(g.config, schema).build()
}

// Schema returns the JSON schema object describing the resolved value map.
// Options that are neither required nor defaulted are nullable, since they
// resolve to nil when no source supplies them.
func Schema(fields []cliparser.FieldDescriptor) (map[string]any, error) {
	properties := make(map[string]any, len(fields))
	required := []string{}
	for _, field := range fields {
		if _, dup := properties[field.Name]; dup {
			return nil, fmt.Errorf("openapi: duplicate option %q", field.Name)
		}
		property, err := propertySchema(field)
		if err != nil {
			return nil, err
		}
		properties[field.Name] = property
		if field.Required {
			required = append(required, field.Name)
		}
	}
	schema := map[string]any{
		"type":                 "object",
		"properties":           properties,
		"additionalProperties": false,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema, nil
}

func propertySchema(field cliparser.FieldDescriptor) (map[string]any, error) {
	var property map[string]any
	switch field.Type {
	case cliparser.TypeString:
		property = map[string]any{"type": "string"}
	case cliparser.TypeInteger:
		property = map[string]any{"type": "integer"}
	case cliparser.TypeBoolean:
		property = map[string]any{"type": "boolean"}
	case cliparser.TypeList:
		property = map[string]any{
			"type":  "array",
			"items": map[string]any{"type": "string"},
		}
	default:
		return nil, fmt.Errorf("openapi: option %q has unsupported type %q", field.Name, field.Type)
	}

	if field.Description != "" {
		property["description"] = field.Description
	}
	if field.Default != nil {
		property["default"] = field.Default
	}
	if !field.Required && field.Default == nil {
		property["nullable"] = true
	}

	extension := map[string]any{"mode": field.Mode}
	if len(field.Switches) > 0 {
		extension["switches"] = append([]string{}, field.Switches...)
	}
	if field.Env != "" {
		extension["env"] = field.Env
	}
	if field.Silent {
		extension["silent"] = true
	}
	property["x-cli"] = extension
	return property, nil
}
