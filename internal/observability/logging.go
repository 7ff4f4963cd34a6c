// Package observability carries request and batch identifiers through a
// context so every log line and history event of one run can be correlated.
package observability

import (
	"context"
	"log/slog"
	"maps"
)

// Attribute keys added by Attrs and Metadata.
const (
	KeyBatchID   = "batch.id"
	KeyTrigger   = "trigger"
	KeyRequestID = "request.id"
)

// LogContext holds the correlation identifiers of the current operation.
type LogContext struct {
	BatchID   string
	Trigger   string
	RequestID string
}

type logContextKeyType string

const logContextKey logContextKeyType = "log-context"

// WithBatchID adds a batch ID to the context.
func WithBatchID(ctx context.Context, batchID string) context.Context {
	lc := FromContext(ctx)
	lc.BatchID = batchID
	return context.WithValue(ctx, logContextKey, lc)
}

// WithTrigger records what started the operation (cli, web, schedule).
func WithTrigger(ctx context.Context, trigger string) context.Context {
	lc := FromContext(ctx)
	lc.Trigger = trigger
	return context.WithValue(ctx, logContextKey, lc)
}

// WithRequestID adds an HTTP request ID to the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	lc := FromContext(ctx)
	lc.RequestID = requestID
	return context.WithValue(ctx, logContextKey, lc)
}

// FromContext returns the LogContext stored in ctx, or the zero value.
func FromContext(ctx context.Context) LogContext {
	if lc, ok := ctx.Value(logContextKey).(LogContext); ok {
		return lc
	}
	return LogContext{}
}

// Attrs returns the non-empty identifiers of ctx as slog attributes.
func Attrs(ctx context.Context) []slog.Attr {
	lc := FromContext(ctx)
	var attrs []slog.Attr
	if lc.BatchID != "" {
		attrs = append(attrs, slog.String(KeyBatchID, lc.BatchID))
	}
	if lc.Trigger != "" {
		attrs = append(attrs, slog.String(KeyTrigger, lc.Trigger))
	}
	if lc.RequestID != "" {
		attrs = append(attrs, slog.String(KeyRequestID, lc.RequestID))
	}
	return attrs
}

// Metadata returns the non-empty identifiers of ctx keyed like Attrs. The
// result is nil when nothing is set.
func Metadata(ctx context.Context) map[string]string {
	attrs := Attrs(ctx)
	if len(attrs) == 0 {
		return nil
	}
	m := make(map[string]string, len(attrs))
	for _, a := range attrs {
		m[a.Key] = a.Value.String()
	}
	return m
}

// MergeMetadata copies the identifiers of ctx into dst, allocating it when nil.
func MergeMetadata(ctx context.Context, dst map[string]string) map[string]string {
	src := Metadata(ctx)
	if src == nil {
		return dst
	}
	if dst == nil {
		dst = make(map[string]string, len(src))
	}
	maps.Copy(dst, src)
	return dst
}

// Logger returns base enriched with the identifiers of ctx.
func Logger(ctx context.Context, base *slog.Logger) *slog.Logger {
	if base == nil {
		base = slog.Default()
	}
	attrs := Attrs(ctx)
	if len(attrs) == 0 {
		return base
	}
	args := make([]any, len(attrs))
	for i, a := range attrs {
		args[i] = a
	}
	return base.With(args...)
}
