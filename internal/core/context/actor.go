package context

import (
	"context"
)

// Actor identifies who performed an operation. It feeds the audit trail;
// there are no permission checks attached to it.
type Actor struct {
	Subject string
	Name    string
}

type actorKey struct{}

// WithActor stores the acting user in context.
func WithActor(ctx context.Context, actor *Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// GetActor returns the acting user from context, or nil.
func GetActor(ctx context.Context) *Actor {
	if a, ok := ctx.Value(actorKey{}).(*Actor); ok {
		return a
	}
	return nil
}

// ActorName returns a display name for the acting user, or "system".
func ActorName(ctx context.Context) string {
	a := GetActor(ctx)
	if a == nil {
		return "system"
	}
	if a.Name != "" {
		return a.Name
	}
	return a.Subject
}
