package api

import (
	"net/http"

	"golang.org/x/time/rate"
)

// requestLimiter gates incoming requests. The indirection keeps tests free
// to substitute a deterministic limiter.
type requestLimiter interface {
	Allow() bool
}

type tokenBucket struct {
	bucket *rate.Limiter
}

// newRequestLimiter builds a token-bucket limiter from the configured rate
// and burst. Zero or negative values disable limiting entirely, matching
// the rate_limit_rps=0 convention of the configuration schema.
func newRequestLimiter(ratePerSecond float64, burst int) requestLimiter {
	if ratePerSecond <= 0 || burst <= 0 {
		return nil
	}
	return &tokenBucket{bucket: rate.NewLimiter(rate.Limit(ratePerSecond), burst)}
}

func (l *tokenBucket) Allow() bool {
	if l == nil || l.bucket == nil {
		return true
	}
	return l.bucket.Allow()
}

func rateLimitMiddleware(limiter requestLimiter, next http.Handler) http.Handler {
	if limiter == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow() {
			writeError(w, http.StatusTooManyRequests, "Too many requests", "rate limit exceeded, please retry shortly")
			return
		}
		next.ServeHTTP(w, r)
	})
}
