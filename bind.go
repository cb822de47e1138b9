package cliparser

import (
	"fmt"

	"github.com/capnajax/cli-parser/internal/hydrate"
)

// BindOption configures Bind.
type BindOption func(*bindConfig)

type bindConfig struct {
	strict  bool
	cycleID string
}

// BindStrict rejects resolved options that have no matching struct field.
func BindStrict() BindOption {
	return func(cfg *bindConfig) {
		cfg.strict = true
	}
}

// BindCycle tags decode errors with the cycle that produced the values.
func BindCycle(cycleID string) BindOption {
	return func(cfg *bindConfig) {
		cfg.cycleID = cycleID
	}
}

// Bind decodes resolved values into T using its json tags, then calls the
// Validate method of T when it has one. Absent options decode as zero
// values.
func Bind[T any](values Values, opts ...BindOption) (T, error) {
	cfg := bindConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	decoderOpts := []hydrate.DecoderOption[T]{
		hydrate.WithPreHook[T](hydrate.DropUnset),
		hydrate.WithPostHook[T](func(_ hydrate.Context, out *T) error {
			return validateValue(out)
		}),
	}
	if cfg.strict {
		decoderOpts = append(decoderOpts, hydrate.WithStrict[T]())
	}

	var zero T
	target := fmt.Sprintf("%T", zero)
	result, err := hydrate.NewDecoder[T](decoderOpts...).Decode(hydrate.Context{
		CycleID: cfg.cycleID,
		Target:  target,
	}, values.Map())
	if err != nil {
		return zero, fmt.Errorf("cliparser: bind %s: %w", target, err)
	}
	return result, nil
}

// BindResult binds the values of a successful cycle. A failed cycle returns
// its *ParseError without decoding.
func BindResult[T any](result Result, opts ...BindOption) (T, error) {
	if err := result.Err(); err != nil {
		var zero T
		return zero, err
	}
	return Bind[T](result.Values, append([]BindOption{BindCycle(result.CycleID)}, opts...)...)
}

func validateValue[T any](value *T) error {
	if value == nil {
		return nil
	}
	if v, ok := any(value).(interface{ Validate() error }); ok {
		return v.Validate()
	}
	if v, ok := any(*value).(interface{ Validate() error }); ok {
		return v.Validate()
	}
	return nil
}
