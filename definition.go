package cliparser

import (
	"fmt"
	"strings"
)

// DefinitionOption configures a Definition built by one of the typed
// constructors.
type DefinitionOption func(*Definition)

// WithSwitches sets the literal switches matched during scanning.
func WithSwitches(switches ...string) DefinitionOption {
	return func(def *Definition) {
		def.Arg = Switches(switches...)
	}
}

// WithEnvVar binds the option to an environment variable.
func WithEnvVar(name string) DefinitionOption {
	return func(def *Definition) {
		def.Env = name
	}
}

// WithDefault sets the value used when neither tokens nor environment supply one.
func WithDefault(value any) DefinitionOption {
	return func(def *Definition) {
		def.Default = value
	}
}

// WithRequired marks the option as required.
func WithRequired() DefinitionOption {
	return func(def *Definition) {
		def.Required = true
	}
}

// WithHandlers appends handlers to the definition.
func WithHandlers(handlers ...Handler) DefinitionOption {
	return func(def *Definition) {
		def.Handlers = append(def.Handlers, handlers...)
	}
}

// WithValidators appends validators to the definition.
func WithValidators(validators ...Validator) DefinitionOption {
	return func(def *Definition) {
		def.Validators = append(def.Validators, validators...)
	}
}

// WithSilent flags the option as hidden from help output.
func WithSilent() DefinitionOption {
	return func(def *Definition) {
		def.Silent = true
	}
}

// WithDescription sets the help text exposed through Describe.
func WithDescription(text string) DefinitionOption {
	return func(def *Definition) {
		def.Description = text
	}
}

// NewStringOption builds and validates a string option.
func NewStringOption(name string, opts ...DefinitionOption) (Definition, error) {
	return newTypedDefinition(name, TypeString, Arg{}, opts)
}

// NewIntegerOption builds and validates an integer option.
func NewIntegerOption(name string, opts ...DefinitionOption) (Definition, error) {
	return newTypedDefinition(name, TypeInteger, Arg{}, opts)
}

// NewBooleanOption builds and validates a boolean option.
func NewBooleanOption(name string, opts ...DefinitionOption) (Definition, error) {
	return newTypedDefinition(name, TypeBoolean, Arg{}, opts)
}

// NewListOption builds and validates a list option.
func NewListOption(name string, opts ...DefinitionOption) (Definition, error) {
	return newTypedDefinition(name, TypeList, Arg{}, opts)
}

// NewPositionalOption builds a list option fed by unmatched tokens.
func NewPositionalOption(name string, opts ...DefinitionOption) (Definition, error) {
	return newTypedDefinition(name, TypeList, Positional, opts)
}

// NewSeparatorOption builds a list option fed by tokens after "--".
func NewSeparatorOption(name string, opts ...DefinitionOption) (Definition, error) {
	return newTypedDefinition(name, TypeList, Separator, opts)
}

func newTypedDefinition(name string, typ OptionType, arg Arg, opts []DefinitionOption) (Definition, error) {
	def := Definition{Name: name, Type: typ, Arg: arg}
	for _, opt := range opts {
		if opt != nil {
			opt(&def)
		}
	}
	if arg.Mode != ArgModeSwitch && def.Arg.Mode != arg.Mode {
		return Definition{}, &Error{
			Key:     name,
			Kind:    KindDefinition,
			Message: fmt.Sprintf("option %q cannot declare switches in %s mode", name, arg.Mode),
		}
	}
	return normalizeDefinition(def, defaultCoercer())
}

// normalizeDefinition validates def and fills omitted fields with safe empties.
// The returned error is always an *Error of KindDefinition.
func normalizeDefinition(def Definition, c coercer) (Definition, error) {
	def = def.clone()
	key := def.Name
	if strings.TrimSpace(def.Name) == "" {
		key = KeyUnnamed
	}

	var problems []string
	if strings.TrimSpace(def.Name) == "" {
		problems = append(problems, "option name must not be empty")
	}

	switch def.Arg.Mode {
	case ArgModeSwitch:
		for _, sw := range def.Arg.Switches {
			if strings.TrimSpace(sw) == "" {
				problems = append(problems, "switches must not be empty strings")
				break
			}
			if sw == SeparatorToken {
				problems = append(problems, fmt.Sprintf("switch %q is reserved", sw))
				break
			}
			if strings.Contains(sw, "=") {
				problems = append(problems, fmt.Sprintf("switch %q must not contain '='", sw))
				break
			}
		}
		if def.Type == "" {
			def.Type = TypeString
		}
	case ArgModePositional, ArgModeSeparator:
		if len(def.Arg.Switches) > 0 {
			problems = append(problems, fmt.Sprintf("%s mode does not accept switches", def.Arg.Mode))
		}
		if def.Env != "" {
			problems = append(problems, fmt.Sprintf("%s mode cannot bind environment variable %q", def.Arg.Mode, def.Env))
		}
		if def.Type != "" && def.Type != TypeList {
			problems = append(problems, fmt.Sprintf("%s mode requires type %q, got %q", def.Arg.Mode, TypeList, def.Type))
		}
		def.Type = TypeList
	default:
		problems = append(problems, fmt.Sprintf("unsupported argument mode %d", def.Arg.Mode))
	}

	if !def.Type.valid() {
		problems = append(problems, fmt.Sprintf("unsupported type %q", def.Type))
	}

	if def.Required && def.Default != nil {
		problems = append(problems, "a required option cannot declare a default")
	}

	if def.Default != nil && def.Type.valid() {
		normalized, err := c.coerceDefault(def.Type, def.Default)
		if err != nil {
			problems = append(problems, fmt.Sprintf("default %s", err))
		} else {
			def.Default = normalized
		}
	}

	if len(problems) > 0 {
		return Definition{}, &Error{
			Key:     key,
			Kind:    KindDefinition,
			Message: fmt.Sprintf("invalid definition for option %q: %s", def.Name, strings.Join(problems, "; ")),
		}
	}

	def.Handlers = compactHandlers(def.Handlers)
	def.Validators = compactValidators(def.Validators)
	return def, nil
}

func compactHandlers(in []Handler) []Handler {
	out := make([]Handler, 0, len(in))
	for _, h := range in {
		if h != nil {
			out = append(out, h)
		}
	}
	return out
}

func compactValidators(in []Validator) []Validator {
	out := make([]Validator, 0, len(in))
	for _, v := range in {
		if v != nil {
			out = append(out, v)
		}
	}
	return out
}

// Must unwraps a constructor result and panics on error. It is intended for
// package-level option tables.
func Must(def Definition, err error) Definition {
	if err != nil {
		panic(err)
	}
	return def
}
