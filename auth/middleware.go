package auth

import (
	"context"
	"net/http"
	"strings"

	"seamline/config"
)

type contextKey string

const claimsKey contextKey = "seamline.claims"

// ClaimsFromContext returns the claims attached by Require, or nil on
// unauthenticated requests (which Require never lets through).
func ClaimsFromContext(ctx context.Context) *Claims {
	claims, _ := ctx.Value(claimsKey).(*Claims)
	return claims
}

// WithClaims attaches claims to a context the same way Require does.
func WithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// Require wraps a handler with bearer-token authentication. The parsed
// claims land in the request context.
func Require(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			http.Error(w, "Authorization required", http.StatusUnauthorized)
			return
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		claims, err := ParseToken(config.GetConfig().JWTSecret, tokenString)
		if err != nil {
			http.Error(w, "Invalid or expired token", http.StatusUnauthorized)
			return
		}

		ctx := WithClaims(r.Context(), claims)
		next(w, r.WithContext(ctx))
	}
}

// RequireRole additionally checks that the caller holds one of the given
// roles; admin always passes.
func RequireRole(next http.HandlerFunc, roles ...string) http.HandlerFunc {
	return Require(func(w http.ResponseWriter, r *http.Request) {
		claims := ClaimsFromContext(r.Context())
		if !claims.HasAnyRole(roles...) {
			http.Error(w, "Insufficient permissions", http.StatusForbidden)
			return
		}
		next(w, r)
	})
}

// RequireRoleForWrites lets any authenticated caller read but demands a
// role for anything that is not a GET. Used for the handlers that serve
// both the list and the mutation on one route.
func RequireRoleForWrites(next http.HandlerFunc, roles ...string) http.HandlerFunc {
	return Require(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			claims := ClaimsFromContext(r.Context())
			if !claims.HasAnyRole(roles...) {
				http.Error(w, "Insufficient permissions", http.StatusForbidden)
				return
			}
		}
		next(w, r)
	})
}
