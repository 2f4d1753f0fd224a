package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/tokengate/tokengate"
)

// Gin creates a middleware handler for the Gin framework.
//
// It behaves exactly like NetHTTP: tier-selected limiter, X-RateLimit-*
// headers on every response, 429 through the configured ErrorHandler when
// the caller is over quota.
//
// Example:
//
//	router := gin.Default()
//	router.Use(middleware.Gin(limiters, middleware.WithTierFunc(tierFromSession)))
func Gin(limiters tokengate.TierLimiters, options ...Option) gin.HandlerFunc {
	cfg := NewConfig(options...)

	return func(c *gin.Context) {
		tier := cfg.TierFunc(c.Request)
		identity := cfg.KeyFunc(c.Request)

		result, err := gate(c.Request, cfg, limiters.For(tier), identity)
		if err != nil {
			if cfg.Logger != nil {
				cfg.Logger.Errorf("rate limit gate failed for %q: %v", identity, err)
			}
			c.AbortWithStatus(500)
			return
		}

		setHeaders(c.Writer.Header(), result)

		if result.Blocked {
			if cfg.Logger != nil {
				cfg.Logger.Debugf("request blocked for %q (%d/%d)", identity, result.Used, result.Limit)
			}
			cfg.ErrorHandler(c.Writer, c.Request, tier, result)
			c.Abort()
			return
		}

		c.Next()
	}
}
