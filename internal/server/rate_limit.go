package server

import (
	"math"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/rentbook/internal/observability/logger"
	"go.uber.org/zap"
)

// TenantRateLimit throttles self-service traffic per tenant actor.
func (s *Server) TenantRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.tenantLimiter.Enabled() {
			c.Next()
			return
		}

		actor, ok := s.actorFromContext(c)
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		ctx := c.Request.Context()
		result, err := s.tenantLimiter.Allow(ctx, actor.ID)
		if err != nil {
			logger.FromContext(ctx).Warn("tenant rate limit check failed", zap.Error(err))
			AbortWithError(c, ErrServiceUnavailable)
			return
		}

		if result.Limit > 0 {
			c.Header("X-RateLimit-Limit", strconv.Itoa(result.Limit))
			c.Header("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
		}
		if !result.Allowed {
			c.Header("Retry-After", strconv.Itoa(retryAfterSeconds(result.RetryAfter)))
			logger.FromContext(ctx).Info("tenant rate limited", zap.String("actor_id", actor.ID))
			AbortWithError(c, ErrRateLimited)
			return
		}
		c.Next()
	}
}

func retryAfterSeconds(d time.Duration) int {
	seconds := int(math.Ceil(d.Seconds()))
	if seconds < 1 {
		return 1
	}
	return seconds
}
