package cliparser

import (
	"context"
	"fmt"
	"time"

	"github.com/capnajax/cli-parser/pkg/activity"
)

// ActivityHooks returns a cloned slice of the activity hooks configured on the
// registry. The returned slice can be safely mutated by the caller.
func (r *Registry) ActivityHooks() activity.Hooks {
	if r == nil {
		return nil
	}
	return cloneActivityHooks(r.cfg.activityHooks)
}

// emitActivity notifies hooks about a completed cycle. Hook failures are
// returned for logging and never affect the cycle result.
func (r *Registry) emitActivity(result Result, now time.Time) error {
	if len(r.cfg.activityHooks) == 0 {
		return nil
	}
	input := activity.ParseEventInput{
		CycleID:    result.CycleID,
		Options:    r.Names(),
		ErrorKeys:  result.Errors.Keys(),
		OccurredAt: now,
	}
	event := activity.BuildOptionsResolvedEvent(input)
	if !result.OK() {
		event = activity.BuildOptionsRejectedEvent(input)
	}
	emitter := activity.NewEmitter(r.cfg.activityHooks, activity.Config{Enabled: true})
	if err := emitter.Emit(context.Background(), event); err != nil {
		return fmt.Errorf("cliparser: activity for cycle %s: %w", result.CycleID, err)
	}
	return nil
}

func cloneActivityHooks(hooks activity.Hooks) activity.Hooks {
	if len(hooks) == 0 {
		return nil
	}
	normalized := make([]activity.ActivityHook, 0, len(hooks))
	for _, hook := range hooks {
		if hook == nil {
			continue
		}
		normalized = append(normalized, hook)
	}
	if len(normalized) == 0 {
		return nil
	}
	return activity.Hooks(normalized)
}
