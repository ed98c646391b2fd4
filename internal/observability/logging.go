// Package observability carries run-scoped identifiers through contexts so
// every log line of a compilation run can be correlated.
package observability

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

type logContextKeyType string

const logContextKey logContextKeyType = "log-context"

// LogContext holds structured logging context for a run.
type LogContext struct {
	RunID string
	Item  string
}

// NewRunID generates a fresh run identifier.
func NewRunID() string { return uuid.NewString() }

// WithRunID attaches a run ID to the context.
func WithRunID(ctx context.Context, runID string) context.Context {
	lc := extract(ctx)
	lc.RunID = runID
	return context.WithValue(ctx, logContextKey, lc)
}

// WithItem attaches the identifier of the item currently being compiled.
func WithItem(ctx context.Context, identifier string) context.Context {
	lc := extract(ctx)
	lc.Item = identifier
	return context.WithValue(ctx, logContextKey, lc)
}

func extract(ctx context.Context) LogContext {
	if lc, ok := ctx.Value(logContextKey).(LogContext); ok {
		return lc
	}
	return LogContext{}
}

// GetContext returns the structured log context from the provided context.
func GetContext(ctx context.Context) LogContext { return extract(ctx) }

func attrs(ctx context.Context, extra []slog.Attr) []slog.Attr {
	lc := extract(ctx)
	var out []slog.Attr
	if lc.RunID != "" {
		out = append(out, slog.String("run.id", lc.RunID))
	}
	if lc.Item != "" {
		out = append(out, slog.String("item", lc.Item))
	}
	return append(out, extra...)
}

// InfoContext logs an info message with run context attributes.
func InfoContext(ctx context.Context, msg string, extra ...slog.Attr) {
	slog.LogAttrs(ctx, slog.LevelInfo, msg, attrs(ctx, extra)...)
}

// WarnContext logs a warning with run context attributes.
func WarnContext(ctx context.Context, msg string, extra ...slog.Attr) {
	slog.LogAttrs(ctx, slog.LevelWarn, msg, attrs(ctx, extra)...)
}

// ErrorContext logs an error with run context attributes.
func ErrorContext(ctx context.Context, msg string, extra ...slog.Attr) {
	slog.LogAttrs(ctx, slog.LevelError, msg, attrs(ctx, extra)...)
}

// DebugContext logs a debug message with run context attributes.
func DebugContext(ctx context.Context, msg string, extra ...slog.Attr) {
	slog.LogAttrs(ctx, slog.LevelDebug, msg, attrs(ctx, extra)...)
}
