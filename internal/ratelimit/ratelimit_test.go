package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/rentbook/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBucketReply(t *testing.T) {
	res, err := parseBucketReply([]interface{}{int64(1), "3.5", int64(1_700_000_000_000)}, 2, 5)
	require.NoError(t, err)
	assert.True(t, res.Allowed)
	assert.Equal(t, 3, res.Remaining)
	assert.Equal(t, 5, res.Limit)
	assert.Zero(t, res.RetryAfter)

	res, err = parseBucketReply([]interface{}{int64(0), "0.5", int64(1_700_000_000_000)}, 2, 5)
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Equal(t, 250*time.Millisecond, res.RetryAfter)

	_, err = parseBucketReply([]interface{}{int64(1)}, 2, 5)
	assert.Error(t, err)
}

func TestDefaultBucketTTL(t *testing.T) {
	assert.Equal(t, time.Second, defaultBucketTTL(0, 5))
	assert.Equal(t, 8*time.Second, defaultBucketTTL(5, 20))
	assert.Equal(t, time.Second, defaultBucketTTL(100, 1))
}

func TestWithoutRedisEverythingIsAllowed(t *testing.T) {
	ctx := context.Background()
	cfg := config.Config{RateLimit: config.RateLimitConfig{TenantRate: 1, TenantBurst: 1}}

	limiter := NewTenantLimiter(cfg, nil)
	assert.False(t, limiter.Enabled())
	res, err := limiter.Allow(ctx, "42")
	require.NoError(t, err)
	assert.True(t, res.Allowed)

	lock := NewGenerationLock(cfg, nil)
	release, ok, err := lock.Acquire(ctx, snowflake.ID(7), 2024, 1)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NotPanics(t, release)
}
