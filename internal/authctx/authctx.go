package authctx

import (
	"context"

	"github.com/geocoder89/contracthub/internal/auth"
)

type ctxKey string

const keyClaims ctxKey = "auth.claims"

func WithClaims(ctx context.Context, claims *auth.Claims) context.Context {
	return context.WithValue(ctx, keyClaims, claims)
}

func ClaimsFrom(ctx context.Context) (*auth.Claims, bool) {
	claims, ok := ctx.Value(keyClaims).(*auth.Claims)

	return claims, ok && claims != nil
}
