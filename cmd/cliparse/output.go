package main

import (
	"encoding/json"
	"fmt"
	"io"

	cliparser "github.com/capnajax/cli-parser"
	"gopkg.in/yaml.v3"
)

type resolveOutput struct {
	Cycle  string                `json:"cycle" yaml:"cycle"`
	OK     bool                  `json:"ok" yaml:"ok"`
	Values map[string]any        `json:"values,omitempty" yaml:"values,omitempty"`
	Errors map[string]errorEntry `json:"errors,omitempty" yaml:"errors,omitempty"`
	Traces []cliparser.Trace     `json:"traces,omitempty" yaml:"traces,omitempty"`
}

type errorEntry struct {
	Kind    string `json:"kind" yaml:"kind"`
	Message string `json:"message" yaml:"message"`
}

func newResolveOutput(result cliparser.Result, withTraces bool) resolveOutput {
	out := resolveOutput{
		Cycle: result.CycleID,
		OK:    result.OK(),
	}
	if result.OK() {
		out.Values = result.Values.Map()
	} else {
		out.Errors = make(map[string]errorEntry, result.Errors.Len())
		for _, key := range result.Errors.Keys() {
			entry, _ := result.Errors.Lookup(key)
			out.Errors[key] = errorEntry{Kind: entry.Kind.String(), Message: entry.Message}
		}
	}
	if withTraces {
		out.Traces = result.Traces()
	}
	return out
}

func writeDocument(w io.Writer, format string, doc any) error {
	switch format {
	case "", "json":
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(doc)
	case "yaml", "yml":
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		if err := encoder.Encode(doc); err != nil {
			return err
		}
		return encoder.Close()
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
}
