package cliparser

import (
	"sort"

	"github.com/capnajax/cli-parser/layering"
)

// Values is an immutable view of the resolved option values of a cycle.
// Accessors return copies, so callers cannot mutate the snapshot.
type Values struct {
	entries map[string]any
}

func freezeValues(m map[string]any) Values {
	return Values{entries: cloneValueMap(m)}
}

// Len reports the number of resolved options.
func (v Values) Len() int {
	return len(v.entries)
}

// Lookup returns the value stored for name and whether the option resolved.
// An option can resolve to nil when no source supplied a value.
func (v Values) Lookup(name string) (any, bool) {
	value, ok := v.entries[name]
	if !ok {
		return nil, false
	}
	return layering.Clone(value), true
}

// Get returns the value stored for name, or nil.
func (v Values) Get(name string) any {
	value, _ := v.Lookup(name)
	return value
}

// GetString returns the value for name when it is a string.
func (v Values) GetString(name string) (string, bool) {
	s, ok := v.entries[name].(string)
	return s, ok
}

// GetInt returns the value for name when it is an int.
func (v Values) GetInt(name string) (int, bool) {
	n, ok := v.entries[name].(int)
	return n, ok
}

// GetBool returns the value for name when it is a bool.
func (v Values) GetBool(name string) (bool, bool) {
	b, ok := v.entries[name].(bool)
	return b, ok
}

// GetList returns a copy of the value for name when it is a []string.
func (v Values) GetList(name string) ([]string, bool) {
	list, ok := v.entries[name].([]string)
	if !ok {
		return nil, false
	}
	return append([]string{}, list...), true
}

// Names returns the resolved option names sorted alphabetically.
func (v Values) Names() []string {
	names := make([]string, 0, len(v.entries))
	for name := range v.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Map returns a deep copy of the values keyed by option name.
func (v Values) Map() map[string]any {
	return cloneValueMap(v.entries)
}

func cloneValueMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for key, value := range m {
		out[key] = layering.Clone(value)
	}
	return out
}
