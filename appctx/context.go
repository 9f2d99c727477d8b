package appctx

import "context"

// ContextKey is the shared type for all context keys in this codebase.
// Keeping it in a tiny package avoids import cycles (config <-> utils).
type ContextKey string

func (c ContextKey) String() string { return string(c) }

var (
	ContextKeyActor         = ContextKey("Actor")
	ContextKeyToken         = ContextKey("Token")
	ContextKeyCorrelationId = ContextKey("CorrelationId")
)

// Actor is the authenticated user a request acts for.
type Actor struct {
	UserId   int
	Username string
	Name     string
	Role     string
}

// ActorFrom returns the zero Actor and false outside an authenticated request.
func ActorFrom(ctx context.Context) (Actor, bool) {
	a, ok := ctx.Value(ContextKeyActor).(Actor)
	return a, ok
}

func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, ContextKeyActor, a)
}

// UpdateActor copies the current actor, applies fn and stores the copy.
func UpdateActor(ctx context.Context, fn func(a *Actor)) context.Context {
	a, _ := ActorFrom(ctx)
	fn(&a)
	return WithActor(ctx, a)
}

func GetString(ctx context.Context, key ContextKey) (string, bool) {
	v, ok := ctx.Value(key).(string)
	return v, ok
}

func Set(ctx context.Context, key ContextKey, value any) context.Context {
	return context.WithValue(ctx, key, value)
}
