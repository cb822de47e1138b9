package cliparser

// Handler transforms the current value of an option. It receives the current
// value (nil when absent), the option name and a read-only copy of every
// coerced value of the cycle.
type Handler func(value any, name string, raw map[string]any) HandlerResult

type handlerKind int

const (
	handlerUnknown handlerKind = iota
	handlerDefer
	handlerContinue
	handlerStop
)

// HandlerResult is the outcome of a Handler. The zero value is not a valid
// result and is reported as a handler protocol error.
type HandlerResult struct {
	kind  handlerKind
	value any
}

// Defer passes the current value unchanged to the next handler.
func Defer() HandlerResult {
	return HandlerResult{kind: handlerDefer}
}

// Continue replaces the current value and proceeds to the next handler,
// including handlers of later definitions in the override chain.
func Continue(value any) HandlerResult {
	return HandlerResult{kind: handlerContinue, value: value}
}

// Stop stores value as final and skips every remaining handler.
func Stop(value any) HandlerResult {
	return HandlerResult{kind: handlerStop, value: value}
}

// runHandlers produces the final value of every option. The implicit
// terminal step stores the current value, so options without handlers still
// resolve.
func (r *Registry) runHandlers(raw map[string]any, errs errorSet) map[string]any {
	snapshot := cloneValueMap(raw)
	final := make(map[string]any, len(r.order))
	for _, name := range r.order {
		current := raw[name]
		stopped := false
		step := 0

	chain:
		for _, def := range r.chains[name] {
			for _, handle := range def.Handlers {
				step++
				result := handle(current, name, snapshot)
				switch result.kind {
				case handlerDefer:
				case handlerContinue:
					current = result.value
				case handlerStop:
					final[name] = result.value
					stopped = true
					break chain
				default:
					errs.add(KindHandlerProtocol, name, "handler %d of option %q returned an unrecognized result", step, name)
					stopped = true
					break chain
				}
			}
		}
		if !stopped {
			final[name] = current
		}
	}
	return final
}
