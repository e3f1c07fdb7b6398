package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/platewise/billing/internal/identity"
)

type contextKey string

const (
	// UserContextKey is the context key for storing the authenticated user
	UserContextKey contextKey = "user"
)

// WithUser resolves the bearer token against the identity provider and adds
// the user to the request context. This middleware is optional - it adds the
// user if present but doesn't require authentication.
func WithUser(provider identity.Provider) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			credential := bearerToken(r)
			if credential == "" {
				// No credential, continue without user
				next.ServeHTTP(w, r)
				return
			}

			user, err := provider.CurrentUser(r.Context(), credential)
			if err != nil {
				// Invalid or expired credential, continue without user
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), UserContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuth ensures the request carries an authenticated user, returning
// 401 if not. Must run after WithUser.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetUserFromContext(r.Context()) == nil {
			respondUnauthorized(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetUserFromContext retrieves the user from the request context.
// Returns nil if no user is authenticated.
func GetUserFromContext(ctx context.Context) *identity.User {
	user, ok := ctx.Value(UserContextKey).(*identity.User)
	if !ok {
		return nil
	}
	return user
}

// bearerToken extracts the credential from the Authorization header.
func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(auth) <= len(prefix) || !strings.EqualFold(auth[:len(prefix)], prefix) {
		return ""
	}
	return auth[len(prefix):]
}
