package middleware

import (
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apierrors "github.com/nextup-labs/nxt-ledger/internal/api/shared/errors"
	"github.com/nextup-labs/nxt-ledger/internal/logger"
	"github.com/nextup-labs/nxt-ledger/internal/metrics"
	"github.com/nextup-labs/nxt-ledger/internal/ratelimit"
)

// RateLimit throttles requests per caller. It must run after Auth.
// A nil limiter disables throttling.
func RateLimit(limiter ratelimit.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil {
			c.Next()
			return
		}

		key := c.ClientIP()
		if caller, ok := Caller(c); ok {
			key = caller.Hex()
		}

		allowed, retryAfter := limiter.Allow(key)
		if !allowed {
			metrics.RequestsRejected.WithLabelValues(metrics.REJECTED_RATE_LIMITED).Inc()
			seconds := int(math.Ceil(retryAfter.Seconds()))
			logger.WarnCtx(c.Request.Context(), "Rate limit exceeded",
				zap.String("key", key),
				zap.String("path", c.Request.URL.Path),
				zap.Duration("retry_after", retryAfter),
			)
			c.Header("Retry-After", strconv.Itoa(seconds))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierrors.NewRateLimitedError("Too many requests"))
			return
		}

		c.Next()
	}
}
