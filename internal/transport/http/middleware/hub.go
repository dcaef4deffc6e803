package middleware

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RequireHub returns middleware that rejects requests whose {hubID} path
// parameter differs from the hub in the caller's JWT. Hubs are the isolation
// boundary: no token scoped to one hub may read another hub's activity.
func RequireHub() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
				return
			}
			if hubID := chi.URLParam(r, "hubID"); hubID != claims.HubID {
				http.Error(w, `{"error":"forbidden"}`, http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
