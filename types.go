package cliparser

import (
	"log/slog"
	"time"

	"github.com/capnajax/cli-parser/pkg/activity"
)

// OptionType identifies the declared type an option resolves to.
type OptionType string

const (
	// TypeString resolves to a string.
	TypeString OptionType = "string"
	// TypeInteger resolves to a base-10 int.
	TypeInteger OptionType = "integer"
	// TypeBoolean resolves to a bool using the truthy/falsey vocabularies.
	TypeBoolean OptionType = "boolean"
	// TypeList resolves to an ordered []string.
	TypeList OptionType = "list"
)

func (t OptionType) valid() bool {
	switch t {
	case TypeString, TypeInteger, TypeBoolean, TypeList:
		return true
	default:
		return false
	}
}

// ArgMode selects how an option is fed from the token sequence.
type ArgMode int

const (
	// ArgModeSwitch matches literal switch tokens such as --port or -p.
	ArgModeSwitch ArgMode = iota
	// ArgModePositional absorbs otherwise unmatched tokens.
	ArgModePositional
	// ArgModeSeparator absorbs every token after a literal "--".
	ArgModeSeparator
)

func (m ArgMode) String() string {
	switch m {
	case ArgModeSwitch:
		return "switch"
	case ArgModePositional:
		return "positional"
	case ArgModeSeparator:
		return "separator"
	default:
		return "unknown"
	}
}

// Arg describes the token source of an option. The zero value is switch mode
// with no switches, which leaves the option to its environment binding and
// default.
type Arg struct {
	Mode     ArgMode
	Switches []string
}

// Switches builds a switch-mode Arg.
func Switches(switches ...string) Arg {
	return Arg{Mode: ArgModeSwitch, Switches: append([]string(nil), switches...)}
}

var (
	// Positional declares an option that collects unmatched tokens.
	Positional = Arg{Mode: ArgModePositional}
	// Separator declares an option that collects tokens after "--".
	Separator = Arg{Mode: ArgModeSeparator}
)

// SeparatorToken is the literal token that starts verbatim capture.
const SeparatorToken = "--"

// Definition declares one option. Several definitions may share a name; they
// form an override chain where the first entry governs scanning and coercion
// and every entry contributes handlers and validators.
type Definition struct {
	Name        string
	Arg         Arg
	Env         string
	Default     any
	Type        OptionType
	Required    bool
	Handlers    []Handler
	Validators  []Validator
	Silent      bool
	Description string
}

func (d Definition) clone() Definition {
	out := d
	out.Arg.Switches = append([]string{}, d.Arg.Switches...)
	out.Handlers = append([]Handler{}, d.Handlers...)
	out.Validators = append([]Validator{}, d.Validators...)
	if list, ok := d.Default.([]string); ok {
		out.Default = append([]string{}, list...)
	}
	return out
}

// Option configures a Registry.
type Option func(*registryConfig)

type registryConfig struct {
	args          []string
	env           map[string]string
	truthy        []string
	falsey        []string
	logger        ParseLogger
	activityHooks activity.Hooks
	now           func() time.Time
}

func applyOptions(opts []Option) registryConfig {
	cfg := registryConfig{
		truthy: append([]string{}, DefaultTruthy...),
		falsey: append([]string{}, DefaultFalsey...),
		now:    time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// WithArgs sets the token sequence scanned on every Parse.
func WithArgs(args []string) Option {
	return func(cfg *registryConfig) {
		cfg.args = append([]string{}, args...)
	}
}

// WithEnv sets the environment snapshot consulted on every Parse.
func WithEnv(env map[string]string) Option {
	return func(cfg *registryConfig) {
		cfg.env = copyEnv(env)
	}
}

// WithEnviron sets the environment snapshot from KEY=VALUE pairs, the shape
// returned by os.Environ.
func WithEnviron(environ []string) Option {
	return func(cfg *registryConfig) {
		cfg.env = EnvironMap(environ)
	}
}

// WithTruthy replaces the words accepted as boolean true.
func WithTruthy(words ...string) Option {
	return func(cfg *registryConfig) {
		cfg.truthy = append([]string{}, words...)
	}
}

// WithFalsey replaces the words accepted as boolean false.
func WithFalsey(words ...string) Option {
	return func(cfg *registryConfig) {
		cfg.falsey = append([]string{}, words...)
	}
}

// WithLogger attaches a ParseLogger that observes every completed cycle.
func WithLogger(logger ParseLogger) Option {
	return func(cfg *registryConfig) {
		cfg.logger = logger
	}
}

// WithSlogLogger reports completed cycles to a slog.Logger.
func WithSlogLogger(logger *slog.Logger) Option {
	return WithLogger(NewSlogParseLogger(logger))
}

// WithActivityHooks emits an activity event for every completed cycle.
// Nil hooks are dropped.
func WithActivityHooks(hooks activity.Hooks) Option {
	normalized := cloneActivityHooks(hooks)
	return func(cfg *registryConfig) {
		cfg.activityHooks = normalized
	}
}

// WithClock overrides the time source used for cycle timing and events.
func WithClock(now func() time.Time) Option {
	return func(cfg *registryConfig) {
		if now != nil {
			cfg.now = now
		}
	}
}

func copyEnv(env map[string]string) map[string]string {
	if env == nil {
		return nil
	}
	out := make(map[string]string, len(env))
	for key, value := range env {
		out[key] = value
	}
	return out
}
