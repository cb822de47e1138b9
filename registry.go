package cliparser

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Registry holds option definitions and resolves them against a token
// sequence and an environment snapshot. A Registry is not safe for concurrent
// use; every Parse runs to completion before returning.
type Registry struct {
	cfg     registryConfig
	coercer coercer
	logger  ParseLogger

	chains           map[string][]Definition
	order            []string
	definitionErrors errorSet

	parsed bool
	raw    map[string]any
	result Result
}

// NewRegistry constructs an empty registry.
func NewRegistry(opts ...Option) *Registry {
	cfg := applyOptions(opts)
	logger := cfg.logger
	if logger == nil {
		logger = noopParseLogger{}
	}
	return &Registry{
		cfg:              cfg,
		coercer:          newCoercer(cfg.truthy, cfg.falsey),
		logger:           logger,
		chains:           map[string][]Definition{},
		definitionErrors: errorSet{},
	}
}

// AddDefinition validates def and appends it to the override chain of its
// name. Invalid definitions are rejected and their error is kept for the
// lifetime of the registry, surfacing on every later Parse. If the registry
// has already been parsed, a fresh cycle runs before AddDefinition returns.
func (r *Registry) AddDefinition(def Definition) error {
	err := r.register(def)
	if r.parsed {
		r.Parse()
	}
	return err
}

// AddDefinitions registers every definition, then re-resolves at most once.
// The returned error joins every rejected definition.
func (r *Registry) AddDefinitions(defs ...Definition) error {
	var errs []error
	for _, def := range defs {
		if err := r.register(def); err != nil {
			errs = append(errs, err)
		}
	}
	if r.parsed {
		r.Parse()
	}
	return errors.Join(errs...)
}

func (r *Registry) register(def Definition) error {
	normalized, err := normalizeDefinition(def, r.coercer)
	if err != nil {
		var defErr *Error
		if errors.As(err, &defErr) {
			r.recordDefinitionError(defErr)
		}
		return err
	}
	if _, seen := r.chains[normalized.Name]; !seen {
		r.order = append(r.order, normalized.Name)
	}
	r.chains[normalized.Name] = append(r.chains[normalized.Name], normalized)
	return nil
}

func (r *Registry) recordDefinitionError(err *Error) {
	if existing, ok := r.definitionErrors[err.Key]; ok {
		r.definitionErrors.add(KindDefinition, err.Key, "%s; %s", existing.Message, err.Message)
		return
	}
	r.definitionErrors.put(err)
}

// Names returns option names in first-seen registration order.
func (r *Registry) Names() []string {
	return slices.Clone(r.order)
}

// Definitions returns a copy of the override chain registered under name.
func (r *Registry) Definitions(name string) []Definition {
	chain := r.chains[name]
	out := make([]Definition, len(chain))
	for i, def := range chain {
		out[i] = def.clone()
	}
	return out
}

// SetArgs replaces the token sequence used by later cycles.
func (r *Registry) SetArgs(args []string) {
	r.cfg.args = slices.Clone(args)
}

// SetEnv replaces the environment snapshot used by later cycles.
func (r *Registry) SetEnv(env map[string]string) {
	r.cfg.env = copyEnv(env)
}

// Parse runs a full cycle against the configured tokens and environment and
// reports whether it finished without errors.
func (r *Registry) Parse() bool {
	r.result = r.cycle(r.cfg.args, r.cfg.env)
	return r.result.OK()
}

// ParseWith replaces the scan context and runs a full cycle.
func (r *Registry) ParseWith(args []string, env map[string]string) bool {
	r.SetArgs(args)
	r.SetEnv(env)
	return r.Parse()
}

// Parsed reports whether at least one cycle has completed.
func (r *Registry) Parsed() bool {
	return r.parsed
}

// Result returns the snapshot produced by the latest cycle.
func (r *Registry) Result() Result {
	return r.result
}

// Values returns the resolved values of the latest cycle.
func (r *Registry) Values() Values {
	return r.result.Values
}

// Errors returns the error map of the latest cycle.
func (r *Registry) Errors() Errors {
	return r.result.Errors
}

// RawValues returns a copy of the coerced values gathered before validation
// and handling. It is empty when the scan stage failed.
func (r *Registry) RawValues() (map[string]any, error) {
	if !r.parsed {
		return nil, ErrNotParsed
	}
	return cloneValueMap(r.raw), nil
}

func (r *Registry) cycle(args []string, env map[string]string) Result {
	start := r.cfg.now()
	cycleID := uuid.NewString()

	errs := errorSet{}
	for _, entry := range r.definitionErrors {
		errs.put(entry)
	}
	r.checkStructure(errs)

	stage := StageScan
	scanned := r.scan(args, env, errs)
	raw := scanned.raw
	var final map[string]any
	if len(errs) > 0 {
		raw = map[string]any{}
	} else {
		stage = StageValidate
		r.runValidators(raw, errs)
		if len(errs) == 0 {
			stage = StageHandle
			final = r.runHandlers(raw, errs)
		}
	}

	r.raw = raw
	r.parsed = true

	traces := make([]Trace, 0, len(r.order))
	for _, name := range r.order {
		traces = append(traces, scanned.traces[name])
	}
	result := Result{
		CycleID: cycleID,
		Values:  freezeValues(final),
		Errors:  errs.freeze(),
		traces:  traces,
	}
	r.report(result, stage, r.cfg.now().Sub(start))
	return result
}

// checkStructure flags more than one positional or separator option. Only the
// governing entry of each chain counts.
func (r *Registry) checkStructure(errs errorSet) {
	var positional, separator []string
	for _, name := range r.order {
		switch r.chains[name][0].Arg.Mode {
		case ArgModePositional:
			positional = append(positional, name)
		case ArgModeSeparator:
			separator = append(separator, name)
		}
	}
	if len(positional) > 1 {
		errs.add(KindStructural, KeyDuplicatePositional, "only one option may use positional mode, found %d: %s", len(positional), quoteJoin(positional))
	}
	if len(separator) > 1 {
		errs.add(KindStructural, KeyDuplicateSeparator, "only one option may use separator mode, found %d: %s", len(separator), quoteJoin(separator))
	}
}

func (r *Registry) report(result Result, stage Stage, duration time.Duration) {
	event := ParseLogEvent{
		CycleID:  result.CycleID,
		Options:  len(r.order),
		Resolved: result.Values.Len(),
		Stage:    stage,
		Duration: duration,
		Err:      result.Err(),
	}
	if !result.OK() {
		event.Errors = map[ErrorKind]int{}
		for _, key := range result.Errors.Keys() {
			entry, _ := result.Errors.Lookup(key)
			event.Errors[entry.Kind]++
		}
	}
	event.ActivityErr = r.emitActivity(result, r.cfg.now())
	r.logger.LogParse(event)
}

func quoteJoin(names []string) string {
	quoted := make([]string, len(names))
	for i, name := range names {
		quoted[i] = fmt.Sprintf("%q", name)
	}
	return strings.Join(quoted, ", ")
}
