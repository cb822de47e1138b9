package cliparser

// Result is the frozen outcome of one parse cycle.
type Result struct {
	CycleID string
	Values  Values
	Errors  Errors

	traces []Trace
}

// OK reports whether the cycle finished without errors.
func (r Result) OK() bool {
	return r.Errors.Empty()
}

// Err returns a *ParseError carrying the error map, or nil on success.
func (r Result) Err() error {
	if r.OK() {
		return nil
	}
	return &ParseError{Errors: r.Errors}
}

// Trace returns the provenance recorded for name.
func (r Result) Trace(name string) (Trace, bool) {
	for _, trace := range r.traces {
		if trace.Name == name {
			return cloneTrace(trace), true
		}
	}
	return Trace{}, false
}

// Traces returns provenance for every option in registration order.
func (r Result) Traces() []Trace {
	out := make([]Trace, len(r.traces))
	for i, trace := range r.traces {
		out[i] = cloneTrace(trace)
	}
	return out
}
