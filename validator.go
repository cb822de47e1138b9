package cliparser

import (
	"fmt"
	"strings"
)

// Validator inspects the coerced value of an option. It receives the value
// (nil when absent), the option name and a read-only copy of every coerced
// value of the cycle.
type Validator func(value any, name string, raw map[string]any) Verdict

type verdictKind int

const (
	verdictAccept verdictKind = iota
	verdictPass
	verdictReject
)

// Verdict is the outcome of a Validator. The zero value accepts.
type Verdict struct {
	kind    verdictKind
	message string
}

// Accept stops the current definition's validators and moves on to the next
// definition in the override chain.
func Accept() Verdict {
	return Verdict{kind: verdictAccept}
}

// Pass defers to the next validator of the same definition.
func Pass() Verdict {
	return Verdict{kind: verdictPass}
}

// Reject fails the option with message. No further validators run for it.
func Reject(message string) Verdict {
	return Verdict{kind: verdictReject, message: message}
}

// Rejectf is Reject with fmt.Sprintf formatting.
func Rejectf(format string, args ...any) Verdict {
	return Reject(fmt.Sprintf(format, args...))
}

// Rejected reports whether v rejects and returns the message.
func (v Verdict) Rejected() (string, bool) {
	return v.message, v.kind == verdictReject
}

// Deferred reports whether v defers to the next validator.
func (v Verdict) Deferred() bool {
	return v.kind == verdictPass
}

// runValidators visits each option in first-seen order and records validation
// errors. Names that already carry an error are skipped.
func (r *Registry) runValidators(raw map[string]any, errs errorSet) {
	snapshot := cloneValueMap(raw)
	for _, name := range r.order {
		if _, failed := errs[name]; failed {
			continue
		}
		chain := r.chains[name]
		governing := chain[0]
		value, present := raw[name]

	entries:
		for _, def := range chain {
			if def.Required && (!present || value == nil) {
				errs.add(KindValidation, name, "%s", missingRequiredMessage(name, governing))
				break
			}
			for _, validate := range def.Validators {
				verdict := validate(value, name, snapshot)
				if verdict.Deferred() {
					continue
				}
				if message, rejected := verdict.Rejected(); rejected {
					if message == "" {
						message = fmt.Sprintf("invalid value for option %q", name)
					}
					errs.add(KindValidation, name, "%s", message)
					break entries
				}
				break
			}
		}
	}
}

func missingRequiredMessage(name string, def Definition) string {
	var sources []string
	if len(def.Arg.Switches) > 0 {
		sources = append(sources, "switch "+strings.Join(def.Arg.Switches, ", "))
	}
	switch def.Arg.Mode {
	case ArgModePositional:
		sources = append(sources, "positional arguments")
	case ArgModeSeparator:
		sources = append(sources, "arguments after "+SeparatorToken)
	}
	if def.Env != "" {
		sources = append(sources, "environment variable "+def.Env)
	}
	if len(sources) == 0 {
		return fmt.Sprintf("missing required option %q", name)
	}
	return fmt.Sprintf("missing required option %q (%s)", name, strings.Join(sources, " or "))
}
