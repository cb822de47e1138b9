package hydrate

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/capnajax/cli-parser/layering"
)

// ErrNilValues is returned when Decode receives no value map at all.
var ErrNilValues = errors.New("value map is nil")

// Context identifies the parse cycle a value map came from.
type Context struct {
	CycleID string
	Target  string
}

func (c Context) label() string {
	if c.CycleID == "" {
		return c.Target
	}
	return c.Target + "@" + c.CycleID
}

// Stage names the step of Decode that failed.
type Stage string

const (
	StagePrepare Stage = "prepare"
	StageDecode  Stage = "decode"
	StageCheck   Stage = "check"
)

// Error reports a failed decode together with the cycle and stage it failed in.
type Error struct {
	Context Context
	Stage   Stage
	Err     error
}

func (e *Error) Error() string {
	return fmt.Sprintf("hydrate: %s %q: %v", e.Stage, e.Context.label(), e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// PreHook rewrites the value map before it is decoded. Returning a nil map
// keeps the current one.
type PreHook func(Context, map[string]any) (map[string]any, error)

// PostHook checks or completes the decoded struct.
type PostHook[T any] func(Context, *T) error

// DecoderOption configures a Decoder.
type DecoderOption[T any] func(*Decoder[T])

// Decoder turns the resolved values of a parse cycle into a struct, matching
// option names against json field tags.
type Decoder[T any] struct {
	preHooks  []PreHook
	postHooks []PostHook[T]
	strict    bool
}

// WithPreHook appends hook to the prepare stage.
func WithPreHook[T any](hook PreHook) DecoderOption[T] {
	return func(d *Decoder[T]) {
		if hook != nil {
			d.preHooks = append(d.preHooks, hook)
		}
	}
}

// WithPostHook appends hook to the check stage.
func WithPostHook[T any](hook PostHook[T]) DecoderOption[T] {
	return func(d *Decoder[T]) {
		if hook != nil {
			d.postHooks = append(d.postHooks, hook)
		}
	}
}

// WithStrict rejects options that have no matching field in T.
func WithStrict[T any]() DecoderOption[T] {
	return func(d *Decoder[T]) {
		d.strict = true
	}
}

func NewDecoder[T any](opts ...DecoderOption[T]) *Decoder[T] {
	d := &Decoder[T]{}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}
	return d
}

// Decode runs the pre-hooks on a deep copy of values, decodes the result into
// T and then runs the post-hooks. The caller's map is never modified.
func (d *Decoder[T]) Decode(ctx Context, values map[string]any) (T, error) {
	var zero T
	if values == nil {
		return zero, &Error{Context: ctx, Stage: StagePrepare, Err: ErrNilValues}
	}

	current := layering.Clone(values)
	for _, hook := range d.preHooks {
		next, err := hook(ctx, current)
		if err != nil {
			return zero, &Error{Context: ctx, Stage: StagePrepare, Err: err}
		}
		if next != nil {
			current = next
		}
	}

	buffer, err := json.Marshal(current)
	if err != nil {
		return zero, &Error{Context: ctx, Stage: StageDecode, Err: err}
	}
	decoder := json.NewDecoder(bytes.NewReader(buffer))
	if d.strict {
		decoder.DisallowUnknownFields()
	}
	var result T
	if err := decoder.Decode(&result); err != nil {
		return zero, &Error{Context: ctx, Stage: StageDecode, Err: err}
	}

	for _, hook := range d.postHooks {
		if err := hook(ctx, &result); err != nil {
			return zero, &Error{Context: ctx, Stage: StageCheck, Err: err}
		}
	}
	return result, nil
}

// DropUnset removes options that resolved to nil so they decode as zero
// values and are not counted as unknown fields in strict mode.
func DropUnset(_ Context, values map[string]any) (map[string]any, error) {
	for key, value := range values {
		if value == nil {
			delete(values, key)
		}
	}
	return values, nil
}
