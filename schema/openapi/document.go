package openapi

import (
	"fmt"
	"sort"
	"strings"
)

type documentBuilder struct {
	config generatorConfig
	schema map[string]any
}

func newDocumentBuilder(config generatorConfig, schema map[string]any) *documentBuilder {
	return &documentBuilder{
		config: config,
		schema: schema,
	}
}

func (b *documentBuilder) build() (map[string]any, error) {
	if b.schema == nil {
		return nil, fmt.Errorf("openapi: root schema cannot be nil")
	}

	document := map[string]any{
		"openapi": b.config.openAPIVersion,
		"info":    b.buildInfo(),
		"paths":   b.buildPaths(),
	}

	if name := strings.TrimSpace(b.config.rootComponent); name != "" {
		document["components"] = map[string]any{
			"schemas": map[string]any{name: b.schema},
		}
	}

	if err := validateDocument(document); err != nil {
		return nil, err
	}

	return document, nil
}

func (b *documentBuilder) buildInfo() map[string]any {
	info := map[string]any{
		"title":   b.config.title,
		"version": b.config.version,
	}
	if b.config.description != "" {
		info["description"] = b.config.description
	}
	return info
}

func (b *documentBuilder) bodySchema() map[string]any {
	if name := strings.TrimSpace(b.config.rootComponent); name != "" {
		return map[string]any{"$ref": "#/components/schemas/" + name}
	}
	return b.schema
}

func (b *documentBuilder) buildPaths() map[string]any {
	method := strings.ToLower(b.config.method)
	if method == "" {
		method = "post"
	}

	content := map[string]any{
		b.config.contentType: map[string]any{
			"schema": b.bodySchema(),
		},
	}

	responses := make(map[string]any, len(b.config.responses))
	statuses := make([]string, 0, len(b.config.responses))
	for status := range b.config.responses {
		statuses = append(statuses, status)
	}
	sort.Strings(statuses)
	for _, status := range statuses {
		responses[status] = map[string]any{
			"description": b.config.responses[status],
		}
	}

	operation := map[string]any{
		"operationId": b.operationID(method),
		"requestBody": map[string]any{
			"required": true,
			"content":  content,
		},
		"responses": responses,
	}
	if summary := strings.TrimSpace(b.config.summary); summary != "" {
		operation["summary"] = summary
	}

	return map[string]any{
		b.config.path: map[string]any{
			method: operation,
		},
	}
}

func (b *documentBuilder) operationID(method string) string {
	if b.config.operationID != "" {
		return b.config.operationID
	}
	return fmt.Sprintf("%s:%s", method, b.config.path)
}

func validateDocument(document map[string]any) error {
	if document == nil {
		return fmt.Errorf("openapi: document cannot be nil")
	}
	openapi, _ := document["openapi"].(string)
	if openapi == "" {
		return fmt.Errorf("openapi: document missing version string")
	}
	info, _ := document["info"].(map[string]any)
	if info == nil {
		return fmt.Errorf("openapi: document missing info section")
	}
	if title, _ := info["title"].(string); title == "" {
		return fmt.Errorf("openapi: info.title must be set")
	}
	if version, _ := info["version"].(string); version == "" {
		return fmt.Errorf("openapi: info.version must be set")
	}
	paths, _ := document["paths"].(map[string]any)
	if len(paths) == 0 {
		return fmt.Errorf("openapi: document must define at least one path")
	}
	for pathKey, pathValue := range paths {
		pathItem, _ := pathValue.(map[string]any)
		if len(pathItem) == 0 {
			return fmt.Errorf("openapi: path %q missing operations", pathKey)
		}
		for method, operationValue := range pathItem {
			operation, _ := operationValue.(map[string]any)
			if operation == nil {
				return fmt.Errorf("openapi: operation %s %s invalid payload", method, pathKey)
			}
			if _, ok := operation["operationId"].(string); !ok {
				return fmt.Errorf("openapi: operation %s %s missing operationId", method, pathKey)
			}
			if _, ok := operation["responses"].(map[string]any); !ok {
				return fmt.Errorf("openapi: operation %s %s missing responses", method, pathKey)
			}
		}
	}
	return nil
}
