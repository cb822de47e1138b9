package cliparser

import (
	"strings"

	"github.com/capnajax/cli-parser/layering"
)

// scanResult is the outcome of the scan and coercion stages.
type scanResult struct {
	raw    map[string]any
	traces map[string]Trace
}

// sinks records which option absorbs unmatched and trailing tokens.
type sinks struct {
	switches   map[string]string
	positional string
	separator  string
}

func (r *Registry) sinks() sinks {
	s := sinks{switches: map[string]string{}}
	for _, name := range r.order {
		governing := r.chains[name][0]
		switch governing.Arg.Mode {
		case ArgModePositional:
			if s.positional == "" {
				s.positional = name
			}
		case ArgModeSeparator:
			if s.separator == "" {
				s.separator = name
			}
		default:
			for _, sw := range governing.Arg.Switches {
				if _, taken := s.switches[sw]; !taken {
					s.switches[sw] = name
				}
			}
		}
	}
	return s
}

// scan gathers raw values from tokens, the environment and defaults, then
// coerces them into declared types. Source and coercion problems are
// recorded in errs.
func (r *Registry) scan(args []string, env map[string]string, errs errorSet) scanResult {
	s := r.sinks()
	scanned := map[string]any{}
	matched := map[string][]string{}

	var trailing []string
	afterSeparator := false
	for i := 0; i < len(args); i++ {
		token := args[i]
		if afterSeparator {
			trailing = append(trailing, token)
			continue
		}
		if token == SeparatorToken {
			afterSeparator = true
			continue
		}

		key, inline, hasInline := strings.Cut(token, "=")
		name, ok := s.switches[key]
		if !ok {
			if s.positional != "" {
				scanned[s.positional] = appendToken(scanned[s.positional], token)
				matched[s.positional] = append(matched[s.positional], token)
				continue
			}
			errs.add(KindSource, UnknownTokenKey(token), "unknown option %q", token)
			continue
		}

		governing := r.chains[name][0]
		var value any
		switch {
		case governing.Type == TypeBoolean && !hasInline:
			value = true
		case hasInline:
			value = inline
		case i+1 < len(args):
			i++
			value = args[i]
		default:
			errs.add(KindSource, name, "option %q requires a value after %s", name, key)
			continue
		}
		matched[name] = append(matched[name], key)
		if governing.Type == TypeList {
			scanned[name] = appendToken(scanned[name], value.(string))
			continue
		}
		scanned[name] = value
	}

	if afterSeparator {
		switch {
		case s.separator != "":
			scanned[s.separator] = appendTokens(scanned[s.separator], trailing)
			matched[s.separator] = append(matched[s.separator], SeparatorToken)
		case s.positional != "" && len(trailing) > 0:
			scanned[s.positional] = appendTokens(scanned[s.positional], trailing)
			matched[s.positional] = append(matched[s.positional], trailing...)
		}
	}

	envLayer := map[string]any{}
	defaultLayer := map[string]any{}
	for _, name := range r.order {
		governing := r.chains[name][0]
		if governing.Env != "" {
			if value, ok := env[governing.Env]; ok {
				if governing.Type == TypeList {
					envLayer[name] = []string{value}
				} else {
					envLayer[name] = value
				}
			}
		}
		if governing.Default != nil {
			defaultLayer[name] = governing.Default
		}
	}

	merged, winners := layering.Resolve(
		layering.Layer[any]{Level: layering.LevelArgs, Values: scanned},
		layering.Layer[any]{Level: layering.LevelEnv, Values: envLayer},
		layering.Layer[any]{Level: layering.LevelDefault, Values: defaultLayer},
	)

	raw := make(map[string]any, len(merged))
	traces := make(map[string]Trace, len(r.order))
	for _, name := range r.order {
		governing := r.chains[name][0]
		trace := Trace{Name: name, Level: winners[name]}
		switch trace.Level {
		case layering.LevelArgs:
			trace.Tokens = matched[name]
		case layering.LevelEnv:
			trace.Env = governing.Env
		}

		value, ok := merged[name]
		if !ok {
			if governing.Required {
				errs.add(KindSource, name, "%s", missingRequiredMessage(name, governing))
			}
			traces[name] = trace
			continue
		}

		coerced, err := r.coercer.coerce(governing.Type, value)
		if err != nil {
			errs.add(KindCoercion, name, "invalid %s value for option %q: %v", governing.Type, name, err)
			traces[name] = trace
			continue
		}
		raw[name] = coerced
		trace.Value = layering.Clone(coerced)
		traces[name] = trace
	}

	return scanResult{raw: raw, traces: traces}
}

func appendToken(existing any, token string) []string {
	list, _ := existing.([]string)
	return append(list, token)
}

func appendTokens(existing any, tokens []string) []string {
	list, _ := existing.([]string)
	if list == nil {
		list = []string{}
	}
	return append(list, tokens...)
}
