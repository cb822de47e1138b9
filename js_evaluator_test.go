//go:build js_eval

package cliparser

import (
	"strings"
	"testing"
	"time"
)

func TestJSRules(t *testing.T) {
	evaluator, err := NewEvaluator("js", NewMemoryProgramCache(), nil)
	if err != nil {
		t.Fatalf("evaluator: %v", err)
	}
	validator, err := RuleValidator(evaluator, `value.length > 0 || "at least one file is required"`)
	if err != nil {
		t.Fatalf("compile validator: %v", err)
	}
	handler, err := RuleHandler(evaluator, `value.map(function (f) { return f.toUpperCase(); })`)
	if err != nil {
		t.Fatalf("compile handler: %v", err)
	}

	defs := []Definition{Must(NewPositionalOption("files", WithValidators(validator), WithHandlers(handler)))}
	values, err := Resolve(defs, []string{"a", "b"}, nil)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	files, _ := values.Get("files").([]any)
	if len(files) != 2 || files[0] != "A" {
		t.Fatalf("unexpected files %#v", values.Get("files"))
	}
}

func TestJSTimeoutInterruptsRule(t *testing.T) {
	evaluator := NewJSEvaluator(JSWithTimeout(20 * time.Millisecond))
	validator, err := RuleValidator(evaluator, `(function () { while (true) {} })()`)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	_, err = Resolve([]Definition{
		Must(NewStringOption("name", WithDefault("x"), WithValidators(validator))),
	}, nil, nil)
	if err == nil || !strings.Contains(err.Error(), "exceeded") {
		t.Fatalf("expected interrupted rule to reject, got %v", err)
	}
}
