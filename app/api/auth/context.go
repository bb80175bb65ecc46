package auth

import (
	"context"
	"errors"
)

type ctxKey int

const claimsKey ctxKey = 1

// SetClaims injects the validated claims into ctx to be passed to the next
// handler.
func SetClaims(ctx context.Context, claims Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// GetClaims fetches the claims from context or returns an error when the
// request never went through the authenticate middleware.
func GetClaims(ctx context.Context) (Claims, error) {
	claims, ok := ctx.Value(claimsKey).(Claims)
	if !ok {
		return Claims{}, errors.New("no claims in context")
	}
	return claims, nil
}
