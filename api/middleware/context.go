package middleware

import (
	"context"

	"github.com/google/uuid"
	"github.com/procurehub/portal/internal/access"
	"github.com/procurehub/portal/pkg/enums"
)

type contextKey string

const (
	ctxUserID   contextKey = "user_id"
	ctxRole     contextKey = "actor_role"
	ctxAccessID contextKey = "access_id"
)

func UserIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxUserID).(string); ok {
		return v
	}
	return ""
}

func RoleFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxRole).(string); ok {
		return v
	}
	return ""
}

// AccessIDFromContext returns the session id (token jti) of the caller.
func AccessIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxAccessID).(string); ok {
		return v
	}
	return ""
}

// ActorFromContext rebuilds the caller seeded by Auth. An unauthenticated
// request yields the zero Actor.
func ActorFromContext(ctx context.Context) access.Actor {
	id, err := uuid.Parse(UserIDFromContext(ctx))
	if err != nil {
		return access.Actor{}
	}
	return access.Actor{UserID: id, Role: enums.Role(RoleFromContext(ctx))}
}

// WithActor injects the caller identity into the context.
func WithActor(ctx context.Context, actor access.Actor) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = context.WithValue(ctx, ctxUserID, actor.UserID.String())
	return context.WithValue(ctx, ctxRole, string(actor.Role))
}

func withAccessID(ctx context.Context, accessID string) context.Context {
	return context.WithValue(ctx, ctxAccessID, accessID)
}
