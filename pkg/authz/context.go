package authz

import "context"

// Actor is the request-scoped identity a consumer resolves before calling the
// engine. An empty LocationID means tenant-wide scope. Impersonated marks an
// active support-impersonation session, which the middleware treats as a
// caller-side full-access bypass; it never reaches the engine's matching.
type Actor struct {
	TenantID     string
	UserID       string
	LocationID   string
	Impersonated bool
}

// actorCtxKey is the context key for storing the actor.
type actorCtxKey struct{}

// WithActor stores the actor in the context.
func WithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, actorCtxKey{}, actor)
}

// ActorFromContext retrieves the actor from the context.
func ActorFromContext(ctx context.Context) (Actor, bool) {
	actor, ok := ctx.Value(actorCtxKey{}).(Actor)
	return actor, ok
}
