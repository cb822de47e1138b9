package usersink

import (
	"context"
	"strings"
	"time"

	"github.com/capnajax/cli-parser/pkg/activity"
	usertypes "github.com/goliatone/go-users/pkg/types"
	"github.com/google/uuid"
)

// Hook adapts parse cycle events to a go-users ActivitySink. UserID and
// TenantID are fixed for the process; the event actor becomes the record
// actor and, when UserID is empty, the record user as well.
type Hook struct {
	Sink     usertypes.ActivitySink
	UserID   string
	TenantID string
}

// Notify maps the event into an ActivityRecord and forwards it to the sink.
func (h Hook) Notify(ctx context.Context, event activity.Event) error {
	if h.Sink == nil {
		return nil
	}

	normalized := activity.NormalizeEvent(event)
	if normalized.Verb == "" || normalized.ObjectType == "" || normalized.ObjectID == "" {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	actor := parseUUID(normalized.ActorID)
	user := parseUUID(h.UserID)
	if user == uuid.Nil {
		user = actor
	}

	record := usertypes.ActivityRecord{
		ActorID:    actor,
		UserID:     user,
		TenantID:   parseUUID(h.TenantID),
		Verb:       normalized.Verb,
		ObjectType: normalized.ObjectType,
		ObjectID:   normalized.ObjectID,
		Channel:    normalized.Channel,
		Data:       normalized.Metadata,
		OccurredAt: normalized.OccurredAt,
	}
	if record.OccurredAt.IsZero() {
		record.OccurredAt = time.Now()
	}
	if cycle := parseUUID(normalized.ObjectID); cycle != uuid.Nil {
		if record.Data == nil {
			record.Data = map[string]any{}
		}
		record.Data["cycle_id"] = cycle.String()
	}

	return h.Sink.Log(ctx, record)
}

func parseUUID(input string) uuid.UUID {
	id, err := uuid.Parse(strings.TrimSpace(input))
	if err != nil {
		return uuid.Nil
	}
	return id
}
