// Package context provides typed accessors for request-scoped values.
package context

import (
	"context"
)

// Trace carries request correlation identifiers.
type Trace struct {
	TraceID   string
	RequestID string
}

type traceKey struct{}

// WithTrace stores trace info in context.
func WithTrace(ctx context.Context, trace *Trace) context.Context {
	return context.WithValue(ctx, traceKey{}, trace)
}

// GetTrace returns trace info from context, or nil.
func GetTrace(ctx context.Context) *Trace {
	if t, ok := ctx.Value(traceKey{}).(*Trace); ok {
		return t
	}
	return nil
}
