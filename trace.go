package cliparser

import (
	"encoding/json"

	"github.com/capnajax/cli-parser/layering"
)

// Trace records where the value of one option came from during a cycle.
type Trace struct {
	Name   string         `json:"name" yaml:"name"`
	Level  layering.Level `json:"level" yaml:"level"`
	Tokens []string       `json:"tokens,omitempty" yaml:"tokens,omitempty"`
	Env    string         `json:"env,omitempty" yaml:"env,omitempty"`
	Value  any            `json:"value,omitempty" yaml:"value,omitempty"`
}

// Found reports whether any source supplied a value.
func (t Trace) Found() bool {
	return t.Level != layering.LevelNone
}

// ToJSON serialises the trace into JSON for logging or transport helpers.
func (t Trace) ToJSON() ([]byte, error) {
	type alias Trace
	return json.Marshal(alias(t))
}

// TraceFromJSON deserialises a JSON payload that was previously generated via
// ToJSON. Numbers inside Value decode as float64.
func TraceFromJSON(payload []byte) (Trace, error) {
	type alias Trace
	var trace alias
	if err := json.Unmarshal(payload, &trace); err != nil {
		return Trace{}, err
	}
	return Trace(trace), nil
}

func cloneTrace(t Trace) Trace {
	out := t
	out.Tokens = append([]string(nil), t.Tokens...)
	out.Value = layering.Clone(t.Value)
	return out
}
