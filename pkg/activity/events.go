package activity

import (
	"strings"
	"time"
)

const (
	// VerbOptionsResolved is emitted when a parse cycle succeeds.
	VerbOptionsResolved = "options.resolved"
	// VerbOptionsRejected is emitted when a parse cycle ends with errors.
	VerbOptionsRejected = "options.rejected"
	// ObjectTypeParseCycle is the object type of every parse event.
	ObjectTypeParseCycle = "options.cycle"
)

// ParseEventInput describes the fields shared by parse cycle events.
type ParseEventInput struct {
	CycleID    string
	ActorID    string
	Channel    string
	Options    []string
	ErrorKeys  []string
	Metadata   map[string]any
	OccurredAt time.Time
}

// BuildOptionsResolvedEvent constructs the event for a successful cycle.
func BuildOptionsResolvedEvent(input ParseEventInput) Event {
	return buildParseEvent(VerbOptionsResolved, input)
}

// BuildOptionsRejectedEvent constructs the event for a failed cycle. The
// error keys are recorded under the "error_keys" metadata entry.
func BuildOptionsRejectedEvent(input ParseEventInput) Event {
	return buildParseEvent(VerbOptionsRejected, input)
}

func buildParseEvent(verb string, input ParseEventInput) Event {
	metadata := cloneMap(input.Metadata)
	if metadata == nil {
		metadata = map[string]any{}
	}
	metadata["option_count"] = len(input.Options)
	if len(input.Options) > 0 {
		metadata["options"] = append([]string{}, input.Options...)
	}
	if len(input.ErrorKeys) > 0 {
		metadata["error_keys"] = append([]string{}, input.ErrorKeys...)
	}

	objectID := strings.TrimSpace(input.CycleID)
	if objectID == "" {
		objectID = ObjectTypeParseCycle
	}

	return Event{
		Verb:       verb,
		ActorID:    strings.TrimSpace(input.ActorID),
		ObjectType: ObjectTypeParseCycle,
		ObjectID:   objectID,
		Channel:    strings.TrimSpace(input.Channel),
		Metadata:   metadata,
		OccurredAt: input.OccurredAt,
	}
}
