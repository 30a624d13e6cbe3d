package middleware

import (
	"context"
	"net/http"
	"strings"
)

// contextKey is unexported so no other package can read or shadow values
// this package stores in the request context.
type contextKey string

const userIDKey contextKey = "userID"

// UserIDHeader carries the caller's identity, set by the authenticating
// reverse proxy in front of this service. The service trusts it; it must
// never be reachable without the proxy.
const UserIDHeader = "X-User-ID"

// RequireUser rejects requests that carry no identity and stores the user
// ID in the request context for handlers to read.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := strings.TrimSpace(r.Header.Get(UserIDHeader))
		if userID == "" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":"unauthorized","message":"user identity required"}`))
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// UserIDFromContext retrieves the caller's user ID. Returns ("", false) on
// routes that did not pass through RequireUser.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok && id != ""
}
