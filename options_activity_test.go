package cliparser

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/capnajax/cli-parser/pkg/activity"
)

func TestWithActivityHooksClonesAndFiltersNil(t *testing.T) {
	hook := activity.HookFunc(func(context.Context, activity.Event) error { return nil })

	registry := NewRegistry(WithActivityHooks(activity.Hooks{nil, hook}))
	hooks := registry.ActivityHooks()
	if len(hooks) != 1 {
		t.Fatalf("expected 1 hook, got %d", len(hooks))
	}

	hooks[0] = nil
	again := registry.ActivityHooks()
	if len(again) != 1 || again[0] == nil {
		t.Fatalf("expected cloned hooks unaffected by mutation, got %+v", again)
	}
}

func TestActivityHooksDefaultNil(t *testing.T) {
	if hooks := NewRegistry().ActivityHooks(); hooks != nil {
		t.Fatalf("expected nil hooks by default, got %+v", hooks)
	}
}

func TestParseEmitsActivityEvents(t *testing.T) {
	capture := &activity.CaptureHook{}
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	registry := NewRegistry(
		WithActivityHooks(activity.Hooks{capture}),
		WithClock(func() time.Time { return now }),
	)
	if err := registry.AddDefinition(Must(NewIntegerOption("port", WithSwitches("--port")))); err != nil {
		t.Fatalf("add: %v", err)
	}

	if !registry.ParseWith([]string{"--port", "80"}, nil) {
		t.Fatalf("expected first parse to succeed: %v", registry.Errors().Messages())
	}
	if registry.ParseWith([]string{"--port", "eighty"}, nil) {
		t.Fatalf("expected second parse to fail")
	}

	if got := capture.Verbs(); !slices.Equal(got, []string{activity.VerbOptionsResolved, activity.VerbOptionsRejected}) {
		t.Fatalf("unexpected verbs %v", got)
	}

	resolved := capture.Events[0]
	if resolved.ObjectType != activity.ObjectTypeParseCycle {
		t.Fatalf("unexpected object type %q", resolved.ObjectType)
	}
	if resolved.Channel != activity.DefaultChannel {
		t.Fatalf("expected default channel, got %q", resolved.Channel)
	}
	if !resolved.OccurredAt.Equal(now) {
		t.Fatalf("expected occurred_at from clock, got %v", resolved.OccurredAt)
	}
	if resolved.ObjectID == capture.Events[1].ObjectID {
		t.Fatalf("expected distinct cycle ids per parse")
	}

	rejected := capture.Events[1]
	keys, _ := rejected.Metadata["error_keys"].([]string)
	if !slices.Equal(keys, []string{"port"}) {
		t.Fatalf("expected error_keys [port], got %v", rejected.Metadata["error_keys"])
	}
	if rejected.ObjectID != registry.Result().CycleID {
		t.Fatalf("expected object id to match cycle id")
	}
}

func TestActivityHookFailureDoesNotAffectResult(t *testing.T) {
	capture := &activity.CaptureHook{Err: errors.New("sink down")}
	var events []ParseLogEvent
	registry := NewRegistry(
		WithActivityHooks(activity.Hooks{capture}),
		WithLogger(ParseLoggerFunc(func(event ParseLogEvent) {
			events = append(events, event)
		})),
	)
	_ = registry.AddDefinition(Must(NewStringOption("name", WithSwitches("--name"))))

	if !registry.ParseWith([]string{"--name", "x"}, nil) {
		t.Fatalf("hook error must not fail the cycle: %v", registry.Errors().Messages())
	}
	if len(capture.Events) != 1 {
		t.Fatalf("expected one event, got %d", len(capture.Events))
	}
	if len(events) != 1 || !events[0].Succeeded() {
		t.Fatalf("expected one successful log event, got %+v", events)
	}
	if err := events[0].ActivityErr; err == nil || !strings.Contains(err.Error(), "sink down") || !strings.Contains(err.Error(), registry.Result().CycleID) {
		t.Fatalf("expected activity error naming the cycle, got %v", err)
	}
}

func TestSlogParseLoggerReportsActivityError(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	registry := NewRegistry(
		WithActivityHooks(activity.Hooks{&activity.CaptureHook{Err: errors.New("sink down")}}),
		WithLogger(NewSlogParseLogger(logger)),
	)
	_ = registry.AddDefinition(Must(NewStringOption("name", WithDefault("x"))))
	registry.Parse()

	if out := buf.String(); !strings.Contains(out, "activity_error=") || !strings.Contains(out, "sink down") {
		t.Fatalf("expected activity error in log output, got %q", out)
	}
}
