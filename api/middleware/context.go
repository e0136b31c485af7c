package middleware

import (
	"context"

	"github.com/google/uuid"

	pkgauth "github.com/angelmondragon/hangout-backend/pkg/auth"
)

type contextKey string

const (
	ctxAccountID contextKey = "account_id"
	ctxRole      contextKey = "actor_role"
	ctxClaims    contextKey = "claims"
)

func AccountIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxAccountID).(string); ok {
		return v
	}
	return ""
}

// AccountUUID parses the caller's account id. ok is false when the request
// carries no valid identity.
func AccountUUID(ctx context.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(AccountIDFromContext(ctx))
	if err != nil || id == uuid.Nil {
		return uuid.Nil, false
	}
	return id, true
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

// ClaimsFromContext returns the verified token claims, if any.
func ClaimsFromContext(ctx context.Context) *pkgauth.AccessTokenClaims {
	if ctx == nil {
		return nil
	}
	claims, _ := ctx.Value(ctxClaims).(*pkgauth.AccessTokenClaims)
	return claims
}

// WithAccountID injects the account identifier into the context.
func WithAccountID(ctx context.Context, accountID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxAccountID, accountID)
}

// WithRole injects the actor role into the context.
func WithRole(ctx context.Context, role string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxRole, role)
}

// WithClaims stores verified claims along with their account and role.
func WithClaims(ctx context.Context, claims *pkgauth.AccessTokenClaims) context.Context {
	ctx = WithAccountID(ctx, claims.AccountID.String())
	ctx = WithRole(ctx, string(claims.Role))
	return context.WithValue(ctx, ctxClaims, claims)
}
