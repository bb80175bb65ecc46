package mid

import (
	"context"
	"net/http"

	"github.com/orielmalik/people-directory/app/api/auth"
	"github.com/orielmalik/people-directory/app/api/errs"
	"github.com/orielmalik/people-directory/foundation/web"
)

// Authenticate validates the bearer token and injects its claims into the
// context for the next handler.
func Authenticate(a *auth.Auth) web.Middleware {
	return func(h web.Handler) web.Handler {
		return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			authHeader := r.Header.Get("authorization")
			if authHeader == "" {
				return errs.NewAppError(http.StatusUnauthorized, "missing authorization header")
			}

			claims, err := a.ValidateToken(authHeader)
			if err != nil {
				return errs.NewAppError(http.StatusUnauthorized, err.Error())
			}

			ctx = auth.SetClaims(ctx, claims)
			return h(ctx, w, r)
		}
	}
}
