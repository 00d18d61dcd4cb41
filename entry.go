package modelstate

import (
	"context"
)

// Operations recorded in history tables.
const (
	OpInsert = "INSERT"
	OpUpdate = "UPDATE"
	OpDelete = "DELETE"
)

// Entry is a captured change of a single model.
type Entry struct {
	Table  string
	Op     string
	ID     any
	Before Summary // nil for INSERT
	After  Summary // nil for DELETE
	Meta   Meta
}

// Meta carries operational context for audit trails.
type Meta struct {
	Operator string
	TraceID  string
	Reason   string
}

type metaKey struct{}
type skipKey struct{}

// WithOperator attaches an operator identifier to the context.
func WithOperator(ctx context.Context, v string) context.Context {
	m := MetaFromContext(ctx)
	m.Operator = v
	return context.WithValue(ctx, metaKey{}, m)
}

// WithTraceID attaches a trace identifier.
func WithTraceID(ctx context.Context, v string) context.Context {
	m := MetaFromContext(ctx)
	m.TraceID = v
	return context.WithValue(ctx, metaKey{}, m)
}

// WithReason attaches a human-readable reason for the operation.
func WithReason(ctx context.Context, v string) context.Context {
	m := MetaFromContext(ctx)
	m.Reason = v
	return context.WithValue(ctx, metaKey{}, m)
}

// WithSkip marks the context so models are not captured.
func WithSkip(ctx context.Context) context.Context {
	return context.WithValue(ctx, skipKey{}, true)
}

// MetaFromContext returns the audit metadata attached to ctx.
func MetaFromContext(ctx context.Context) Meta {
	if m, ok := ctx.Value(metaKey{}).(Meta); ok {
		return m
	}
	return Meta{}
}

func skipped(ctx context.Context) bool {
	v, _ := ctx.Value(skipKey{}).(bool)
	return v
}
