// Package middleware wires tokengate limiters into HTTP stacks.
//
// Both the net/http and the gin variants resolve a rate-limit identity and
// caller tier from the request, consult the tier's limiter, decorate the
// response with X-RateLimit-* headers, and turn a blocked result into a
// 429. Store failures never reach the client: degraded results pass
// through as allowed.
package middleware

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/tokengate/tokengate"
)

// KeyFunc extracts the rate-limit identity from an inbound request.
// The default is tokengate.ClientIdentity (forwarded-IP resolution).
type KeyFunc func(r *http.Request) string

// TierFunc classifies the caller of a request. The default treats every
// request as anonymous; real deployments derive the tier from session or
// auth state.
type TierFunc func(r *http.Request) tokengate.Tier

// ErrorHandler renders the response for a blocked request. It controls the
// status code, headers and body; the default sends a 429 JSON payload with
// tier-specific guidance and a human-readable reset countdown.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, tier tokengate.Tier, result tokengate.Result)

// Config holds the configurable parameters of the middleware. Callers
// interact with it through functional options.
type Config struct {
	KeyFunc      KeyFunc
	TierFunc     TierFunc
	ErrorHandler ErrorHandler
	Logger       tokengate.Logger
	// CountRequests makes the middleware record one unit of usage per
	// request instead of only checking. Use it with request-counting
	// limiters; token-cost deployments keep it off and charge the real
	// cost from the handler after generation.
	CountRequests bool
}

// Option applies a configuration setting to a Config.
type Option func(*Config)

// NewConfig creates a Config with defaults and applies the given options.
func NewConfig(opts ...Option) *Config {
	cfg := &Config{
		KeyFunc:      tokengate.ClientIdentity,
		TierFunc:     func(*http.Request) tokengate.Tier { return tokengate.TierAnonymous },
		ErrorHandler: DefaultErrorHandler,
		Logger:       nil,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// WithKeyFunc sets a custom function for client identification, e.g. an
// authenticated user id instead of an IP.
func WithKeyFunc(f KeyFunc) Option {
	return func(c *Config) {
		if f != nil {
			c.KeyFunc = f
		}
	}
}

// WithTierFunc sets how a request's caller tier is derived.
func WithTierFunc(f TierFunc) Option {
	return func(c *Config) {
		if f != nil {
			c.TierFunc = f
		}
	}
}

// WithErrorHandler sets a custom handler for blocked requests.
func WithErrorHandler(f ErrorHandler) Option {
	return func(c *Config) {
		if f != nil {
			c.ErrorHandler = f
		}
	}
}

// WithLogger sets the middleware logger.
func WithLogger(l tokengate.Logger) Option {
	return func(c *Config) {
		if l != nil {
			c.Logger = l
		}
	}
}

// WithRequestCounting makes every request consume one unit of quota.
func WithRequestCounting() Option {
	return func(c *Config) {
		c.CountRequests = true
	}
}

// blockedMessage returns the user-facing guidance for a blocked request.
// Anonymous callers are nudged toward signing in; signed-in callers are
// told when the window resets.
func blockedMessage(tier tokengate.Tier, result tokengate.Result) string {
	countdown := tokengate.FormatReset(time.Until(result.ResetAt))
	if tier == tokengate.TierAnonymous {
		return "Rate limit reached. Sign in for a higher limit, or try again in " + countdown + "."
	}
	return "Rate limit reached. Your quota resets in " + countdown + "."
}

// DefaultErrorHandler renders a 429 with a JSON body and Retry-After.
func DefaultErrorHandler(w http.ResponseWriter, r *http.Request, tier tokengate.Tier, result tokengate.Result) {
	retryAfter := int(time.Until(result.ResetAt).Seconds())
	if retryAfter < 1 {
		retryAfter = 1
	}

	w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error": blockedMessage(tier, result),
	})
}
