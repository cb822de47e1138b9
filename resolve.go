package cliparser

import (
	"strings"
)

// Resolve builds a registry from defs, parses args and env once, and returns
// the resolved values. When the cycle fails the error is a *ParseError
// holding the complete error map.
func Resolve(defs []Definition, args []string, env map[string]string, opts ...Option) (Values, error) {
	all := append(append([]Option{}, opts...), WithArgs(args), WithEnv(env))
	registry := NewRegistry(all...)
	_ = registry.AddDefinitions(defs...)
	if registry.Parse() {
		return registry.Values(), nil
	}
	return Values{}, registry.Result().Err()
}

// EnvironMap converts KEY=VALUE pairs, as returned by os.Environ, into a map.
// Entries without '=' are ignored; later duplicates win.
func EnvironMap(environ []string) map[string]string {
	env := make(map[string]string, len(environ))
	for _, entry := range environ {
		key, value, ok := strings.Cut(entry, "=")
		if !ok || key == "" {
			continue
		}
		env[key] = value
	}
	return env
}
