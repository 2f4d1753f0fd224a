package middleware

import (
	"net/http"
	"strconv"

	"github.com/tokengate/tokengate"
)

// NetHTTP creates a middleware handler for the standard net/http library.
//
// It wraps an existing http.Handler and gates incoming requests against the
// limiter selected by the caller's tier. On every request it adds the
// standard X-RateLimit-* headers to the response.
//
// Example:
//
//	limiters := tokengate.TierLimiters{tokengate.TierAnonymous: anon}
//	mux := http.NewServeMux()
//	mux.HandleFunc("/", myHandler)
//	http.ListenAndServe(":8080", middleware.NetHTTP(limiters)(mux))
func NetHTTP(limiters tokengate.TierLimiters, options ...Option) func(http.Handler) http.Handler {
	cfg := NewConfig(options...)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tier := cfg.TierFunc(r)
			identity := cfg.KeyFunc(r)

			result, err := gate(r, cfg, limiters.For(tier), identity)
			if err != nil {
				// Only contract violations land here; store failures
				// already failed open inside the limiter.
				if cfg.Logger != nil {
					cfg.Logger.Errorf("rate limit gate failed for %q: %v", identity, err)
				}
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				return
			}

			setHeaders(w.Header(), result)

			if result.Blocked {
				if cfg.Logger != nil {
					cfg.Logger.Debugf("request blocked for %q (%d/%d)", identity, result.Used, result.Limit)
				}
				cfg.ErrorHandler(w, r, tier, result)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// gate runs the configured limiter operation: a read-only check by default,
// or a one-unit increment in request-counting mode.
func gate(r *http.Request, cfg *Config, limiter tokengate.Limiter, identity string) (tokengate.Result, error) {
	if cfg.CountRequests {
		return limiter.Increment(r.Context(), identity, 1)
	}
	return limiter.Check(r.Context(), identity)
}

// setHeaders writes the informational rate limit headers. X-RateLimit-Reset
// is unix seconds, matching what API clients conventionally parse.
func setHeaders(h http.Header, result tokengate.Result) {
	h.Set("X-RateLimit-Limit", strconv.FormatInt(result.Limit, 10))
	h.Set("X-RateLimit-Remaining", strconv.FormatInt(result.Remaining, 10))
	h.Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))
}
