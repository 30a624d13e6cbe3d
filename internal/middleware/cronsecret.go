package middleware

import (
	"crypto/subtle"
	"net/http"
)

// CronSecretHeader authenticates the external scheduler that triggers
// reminder sweeps.
const CronSecretHeader = "X-Cron-Secret"

// RequireCronSecret guards the cron trigger route with a shared secret.
// An empty configured secret disables the route entirely rather than
// leaving it open.
func RequireCronSecret(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret == "" {
				http.NotFound(w, r)
				return
			}

			got := r.Header.Get(CronSecretHeader)
			if subtle.ConstantTimeCompare([]byte(got), []byte(secret)) != 1 {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"error":"unauthorized","message":"invalid cron secret"}`))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
