package utils

import (
	"context"

	"bitbucket.org/mmdatafocus/finops_backend/appctx"
)

func GetTokenFromContext(ctx context.Context) (string, bool) {
	return appctx.GetString(ctx, appctx.ContextKeyToken)
}

func GetCorrelationIdFromContext(ctx context.Context) (string, bool) {
	return appctx.GetString(ctx, appctx.ContextKeyCorrelationId)
}

func SetTokenInContext(ctx context.Context, token string) context.Context {
	return appctx.Set(ctx, appctx.ContextKeyToken, token)
}

func SetCorrelationIdInContext(ctx context.Context, correlationId string) context.Context {
	return appctx.Set(ctx, appctx.ContextKeyCorrelationId, correlationId)
}

/* actor fields; getters report false when the field was never set */

func GetUsernameFromContext(ctx context.Context) (string, bool) {
	a, ok := appctx.ActorFrom(ctx)
	return a.Username, ok && a.Username != ""
}

func GetUserIdFromContext(ctx context.Context) (int, bool) {
	a, ok := appctx.ActorFrom(ctx)
	return a.UserId, ok && a.UserId != 0
}

func GetUserNameFromContext(ctx context.Context) (string, bool) {
	a, ok := appctx.ActorFrom(ctx)
	return a.Name, ok && a.Name != ""
}

func GetUserRoleFromContext(ctx context.Context) (string, bool) {
	a, ok := appctx.ActorFrom(ctx)
	return a.Role, ok && a.Role != ""
}

func SetUsernameInContext(ctx context.Context, username string) context.Context {
	return appctx.UpdateActor(ctx, func(a *appctx.Actor) { a.Username = username })
}

func SetUserIdInContext(ctx context.Context, userId int) context.Context {
	return appctx.UpdateActor(ctx, func(a *appctx.Actor) { a.UserId = userId })
}

func SetUserNameInContext(ctx context.Context, userName string) context.Context {
	return appctx.UpdateActor(ctx, func(a *appctx.Actor) { a.Name = userName })
}

func SetUserRoleInContext(ctx context.Context, role string) context.Context {
	return appctx.UpdateActor(ctx, func(a *appctx.Actor) { a.Role = role })
}

// CurrentUser returns the acting user's id and display name, or ErrUnauthorized.
func CurrentUser(ctx context.Context) (int, string, error) {
	a, ok := appctx.ActorFrom(ctx)
	if !ok || a.UserId <= 0 {
		return 0, "", ErrUnauthorized
	}
	return a.UserId, a.Name, nil
}
