package middleware

import (
	"context"
	"net/http"
	"slices"
	"strings"

	"github.com/shashiranjanraj/storefront/pkg/auth"
	"github.com/shashiranjanraj/storefront/pkg/logger"
	"github.com/shashiranjanraj/storefront/pkg/response"
)

type claimsKey struct{}

// ClaimsFrom returns the claims RequireRole stored on the request context.
func ClaimsFrom(ctx context.Context) (*auth.Claims, bool) {
	c, ok := ctx.Value(claimsKey{}).(*auth.Claims)
	return c, ok
}

// WithClaims stores claims on ctx. Handler tests use it to skip token
// parsing.
func WithClaims(ctx context.Context, c *auth.Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, c)
}

// RequireRole rejects requests without a valid bearer token (401) or whose
// role is not one of roles (403).
func RequireRole(keys *auth.Keys, roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || raw == "" {
				response.Unauthorized(w)
				return
			}

			claims, err := keys.Parse(raw)
			if err != nil {
				logger.WithCtx(r.Context()).Debug("bearer token rejected", "error", err)
				response.Unauthorized(w)
				return
			}
			if !slices.Contains(roles, claims.Role) {
				response.Forbidden(w)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}
