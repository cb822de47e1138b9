package openapi

import (
	"strings"
)

// generatorConfig describes the single operation the document publishes: a
// request whose body is the option table resolved by one parse cycle.
type generatorConfig struct {
	openAPIVersion string
	title          string
	version        string
	description    string

	path        string
	method      string
	operationID string
	summary     string
	contentType string

	// status code to description
	responses     map[string]string
	rootComponent string
}

func defaultGeneratorConfig() generatorConfig {
	return generatorConfig{
		openAPIVersion: "3.0.3",
		title:          "Command Options",
		version:        "1.0.0",
		description:    "Values resolved by one parse cycle.",
		path:           "/options",
		method:         "post",
		contentType:    "application/json",
		responses: map[string]string{
			"204": "Options resolved",
			"422": "Options rejected; the body lists the error map",
		},
	}
}

// GeneratorOption configures the OpenAPI generator.
type GeneratorOption func(*generatorConfig)

// WithOpenAPIVersion overrides the OpenAPI version string (default: 3.0.3).
func WithOpenAPIVersion(version string) GeneratorOption {
	return func(cfg *generatorConfig) {
		if version != "" {
			cfg.openAPIVersion = version
		}
	}
}

// WithCommand names the document and its path after the command whose options
// are described, e.g. "serve" yields "serve options" at /serve/options.
func WithCommand(name string) GeneratorOption {
	return func(cfg *generatorConfig) {
		name = strings.TrimSpace(name)
		if name == "" {
			return
		}
		cfg.title = name + " options"
		cfg.path = "/" + name + "/options"
	}
}

// WithInfo sets the info block. Empty title or version keep the current value;
// an empty description removes it.
func WithInfo(title, version, description string) GeneratorOption {
	return func(cfg *generatorConfig) {
		if title != "" {
			cfg.title = title
		}
		if version != "" {
			cfg.version = version
		}
		cfg.description = description
	}
}

// WithOperation overrides the path, method and operationId of the option
// table request. Empty inputs keep the current values.
func WithOperation(path, method, operationID string) GeneratorOption {
	return func(cfg *generatorConfig) {
		if path != "" {
			cfg.path = path
		}
		if method != "" {
			cfg.method = strings.ToLower(method)
		}
		if operationID != "" {
			cfg.operationID = operationID
		}
	}
}

// WithSummary attaches a summary to the operation.
func WithSummary(summary string) GeneratorOption {
	return func(cfg *generatorConfig) {
		cfg.summary = summary
	}
}

// WithContentType sets the media type of the option table body.
func WithContentType(contentType string) GeneratorOption {
	return func(cfg *generatorConfig) {
		if contentType != "" {
			cfg.contentType = contentType
		}
	}
}

// WithResponse adds or replaces the response for status. An empty description
// removes it.
func WithResponse(status, description string) GeneratorOption {
	return func(cfg *generatorConfig) {
		if status == "" {
			return
		}
		if cfg.responses == nil {
			cfg.responses = map[string]string{}
		}
		if description == "" {
			delete(cfg.responses, status)
			return
		}
		cfg.responses[status] = description
	}
}

// WithRootComponent publishes the option table schema under components with
// the provided name and references it from the request body.
func WithRootComponent(name string) GeneratorOption {
	return func(cfg *generatorConfig) {
		cfg.rootComponent = name
	}
}
