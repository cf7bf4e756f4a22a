package auth

import (
	"context"
	"net/http"

	"github.com/evcraddock/homebid/internal/access"
)

type contextKey struct{}

// identity is the outcome of resolving a request's bearer token.
type identity struct {
	caller access.Caller
	err    error
}

// Authenticate is middleware that resolves the bearer token, if any, into the
// request context. It never rejects a request: public endpoints ignore the
// result and protected endpoints call CallerFromContext.
func Authenticate(tokens *TokenService, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := identity{err: errTokenMissing}
		if raw := BearerToken(r); raw != "" {
			id.caller, id.err = tokens.Verify(r.Context(), raw)
		}

		ctx := context.WithValue(r.Context(), contextKey{}, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// CallerFromContext returns the authenticated caller for a request, or the
// Unauthenticated error explaining why there is none.
func CallerFromContext(ctx context.Context) (access.Caller, error) {
	id, ok := ctx.Value(contextKey{}).(identity)
	if !ok {
		return access.Caller{}, errTokenMissing
	}
	return id.caller, id.err
}
