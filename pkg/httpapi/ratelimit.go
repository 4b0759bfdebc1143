package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/bpmonitor/idvault/pkg/logger"
	"github.com/bpmonitor/idvault/pkg/ratelimiter"
)

// RateLimit rejects requests over limiter's budget for their key with 429
// and a Retry-After header. An empty key or a limiter error lets the
// request through.
func RateLimit(limiter ratelimiter.RateLimiter, key ratelimiter.KeyFunc, log *slog.Logger) func(http.Handler) http.Handler {
	if log == nil {
		log = logger.Discard()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			k := key(r)
			if k == "" {
				next.ServeHTTP(w, r)
				return
			}

			res, err := limiter.Allow(r.Context(), k)
			if err != nil {
				log.WarnContext(r.Context(), "rate limiter unavailable", logger.Error(err))
				next.ServeHTTP(w, r)
				return
			}
			if !res.Allowed() {
				setRetryAfter(w, res.RetryAfter())
				writeJSON(w, r, http.StatusTooManyRequests, Envelope{
					Status:  StatusError,
					Message: "too many requests, try again later",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
