package auth

import (
	"net/http"
	"strings"

	"github.com/avdeevsm/tfidf-analyzer/internal/auth/ratelimit"
)

// RateLimit returns middleware that enforces per-user rate limits. It reads
// the user ID set by the auth middleware; requests without one (the public
// endpoints) are passed through.
func RateLimit(limiter *ratelimit.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.HasPrefix(r.URL.Path, "/health") {
				next.ServeHTTP(w, r)
				return
			}

			userID := UserIDFromContext(r.Context())
			if userID == "" {
				next.ServeHTTP(w, r)
				return
			}

			if !limiter.Allow(userID) {
				w.Header().Set("Retry-After", "60")
				writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
