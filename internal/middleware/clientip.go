package middleware

import (
	"context"
	"net/http"
)

// ClientIPContextKey is the context key for the resolved client IP.
const ClientIPContextKey contextKey = "client_ip"

// WithClientIP resolves the real client IP once per request and stores
// it in the context for the rate limiter and handlers downstream.
// Resolution follows GetClientIP: proxy headers first, RemoteAddr as
// the fallback. Only deploy behind a proxy that overwrites those
// headers, since clients can spoof them.
func WithClientIP() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), ClientIPContextKey, GetClientIP(r))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetClientIPFromContext returns the client IP stored by WithClientIP,
// or "" if the middleware did not run.
func GetClientIPFromContext(ctx context.Context) string {
	if ip, ok := ctx.Value(ClientIPContextKey).(string); ok {
		return ip
	}
	return ""
}
