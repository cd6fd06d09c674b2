package shared

import (
	"context"

	"github.com/google/uuid"
)

type actorKey struct{}

// Actor identifies who performs an operation
type Actor struct {
	UserID    uuid.UUID
	Name      string
	IPAddress string
	UserAgent string
}

// WithActor stores the acting user in ctx
func WithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFromContext returns the acting user, or the zero Actor for system calls
func ActorFromContext(ctx context.Context) Actor {
	if ctx == nil {
		return Actor{}
	}
	actor, _ := ctx.Value(actorKey{}).(Actor)
	return actor
}
