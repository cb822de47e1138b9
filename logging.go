package cliparser

import (
	"context"
	"log/slog"
	"time"
)

// Stage names the last stage a parse cycle reached.
type Stage string

const (
	StageScan     Stage = "scan"
	StageValidate Stage = "validate"
	StageHandle   Stage = "handle"
)

// ParseLogEvent describes one completed parse cycle.
type ParseLogEvent struct {
	CycleID  string
	Options  int
	Resolved int
	Stage    Stage
	Errors   map[ErrorKind]int
	Duration time.Duration
	Err      error
	// ActivityErr holds the failure of an activity hook, if any. It does not
	// change the outcome of the cycle.
	ActivityErr error
}

// Succeeded reports whether the cycle finished without errors.
func (e ParseLogEvent) Succeeded() bool {
	return e.Err == nil
}

// ParseLogger records parse cycle events.
type ParseLogger interface {
	LogParse(ParseLogEvent)
}

// ParseLoggerFunc adapts a function to ParseLogger.
type ParseLoggerFunc func(ParseLogEvent)

// LogParse implements ParseLogger.
func (f ParseLoggerFunc) LogParse(event ParseLogEvent) {
	if f != nil {
		f(event)
	}
}

type noopParseLogger struct{}

func (noopParseLogger) LogParse(ParseLogEvent) {}

// ParseLoggers fans an event out to several loggers.
type ParseLoggers []ParseLogger

// LogParse implements ParseLogger.
func (l ParseLoggers) LogParse(event ParseLogEvent) {
	for _, logger := range l {
		if logger != nil {
			logger.LogParse(event)
		}
	}
}

type slogParseLogger struct {
	logger *slog.Logger
}

// NewSlogParseLogger reports successful cycles at debug level and failed
// cycles at warn level.
func NewSlogParseLogger(logger *slog.Logger) ParseLogger {
	if logger == nil {
		return noopParseLogger{}
	}
	return slogParseLogger{logger: logger}
}

func (l slogParseLogger) LogParse(event ParseLogEvent) {
	attrs := []slog.Attr{
		slog.String("cycle_id", event.CycleID),
		slog.Int("options", event.Options),
		slog.Int("resolved", event.Resolved),
		slog.String("stage", string(event.Stage)),
		slog.Duration("duration", event.Duration),
	}
	if event.ActivityErr != nil {
		attrs = append(attrs, slog.Any("activity_error", event.ActivityErr))
	}
	if event.Succeeded() {
		l.logger.LogAttrs(context.Background(), slog.LevelDebug, "options resolved", attrs...)
		return
	}
	for kind, count := range event.Errors {
		attrs = append(attrs, slog.Int("errors."+kind.String(), count))
	}
	attrs = append(attrs, slog.Any("error", event.Err))
	l.logger.LogAttrs(context.Background(), slog.LevelWarn, "options rejected", attrs...)
}

// EvaluatorLogEvent describes a rule evaluation attempt for logging.
type EvaluatorLogEvent struct {
	Engine   string
	Expr     string
	Option   string
	Duration time.Duration
	Err      error
}

// EvaluatorLogger records rule evaluation events.
type EvaluatorLogger interface {
	LogEvaluation(EvaluatorLogEvent)
}

// EvaluatorLoggerFunc adapts a function to EvaluatorLogger.
type EvaluatorLoggerFunc func(EvaluatorLogEvent)

// LogEvaluation implements EvaluatorLogger.
func (f EvaluatorLoggerFunc) LogEvaluation(event EvaluatorLogEvent) {
	if f != nil {
		f(event)
	}
}

type noopEvaluatorLogger struct{}

func (noopEvaluatorLogger) LogEvaluation(EvaluatorLogEvent) {}
