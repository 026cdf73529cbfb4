package ratelimit

import (
	"context"
	"fmt"
	"strings"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/rentbook/internal/config"
)

const keyTenantPortal = "tenant:portal:%s"

// TenantLimiter throttles tenant self-service calls per actor. A nil limiter allows everything.
type TenantLimiter struct {
	bucket *TokenBucket
	rate   float64
	burst  int
}

func NewTenantLimiter(cfg config.Config, client *redis.Client) *TenantLimiter {
	if client == nil || cfg.RateLimit.TenantRate <= 0 || cfg.RateLimit.TenantBurst <= 0 {
		return nil
	}
	return &TenantLimiter{
		bucket: NewTokenBucket(client),
		rate:   cfg.RateLimit.TenantRate,
		burst:  cfg.RateLimit.TenantBurst,
	}
}

func (l *TenantLimiter) Enabled() bool {
	return l != nil && l.bucket != nil
}

func (l *TenantLimiter) Allow(ctx context.Context, actorID string) (*RateLimitResult, error) {
	if !l.Enabled() {
		return &RateLimitResult{Allowed: true}, nil
	}
	return l.bucket.Allow(ctx, fmt.Sprintf(keyTenantPortal, strings.TrimSpace(actorID)), l.rate, l.burst)
}
