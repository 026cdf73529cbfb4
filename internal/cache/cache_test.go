package cache

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/rentbook/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type cachedSummary struct {
	Revenue string `json:"revenue"`
}

func TestTTLCacheExpiry(t *testing.T) {
	c := NewTTLCache[string, int]()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	c.Set("a", 1, time.Minute)
	c.Set("b", 2, 0)

	v, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, 1, v)

	now = now.Add(time.Minute)
	_, ok = c.Get("a")
	assert.False(t, ok)

	_, ok = c.Get("b")
	assert.True(t, ok)
	assert.Equal(t, 1, c.Len())
}

func TestMemorySummaryCacheInvalidatesOnlyOneBuilding(t *testing.T) {
	ctx := context.Background()
	c := NewMemorySummaryCache(time.Minute)
	b1, b2 := snowflake.ID(1), snowflake.ID(2)

	require.NoError(t, c.Set(ctx, b1, 0, 2024, 1, cachedSummary{Revenue: "100"}))
	require.NoError(t, c.Set(ctx, b1, 0, 2024, 2, cachedSummary{Revenue: "200"}))
	require.NoError(t, c.Set(ctx, b2, 0, 2024, 1, cachedSummary{Revenue: "300"}))

	var got cachedSummary
	ok, err := c.Get(ctx, b1, 0, 2024, 2, &got)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "200", got.Revenue)

	require.NoError(t, c.InvalidateBuilding(ctx, b1))

	version, err := c.Version(ctx, b1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), version)
	ok, err = c.Get(ctx, b1, version, 2024, 1, &got)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = c.Get(ctx, b2, 0, 2024, 1, &got)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "300", got.Revenue)
}

func TestMemorySummaryCacheDropsWritesFromBeforeInvalidation(t *testing.T) {
	ctx := context.Background()
	c := NewMemorySummaryCache(time.Minute)
	building := snowflake.ID(3)

	before, err := c.Version(ctx, building)
	require.NoError(t, err)

	// A write lands while the old value is still being computed.
	require.NoError(t, c.InvalidateBuilding(ctx, building))
	require.NoError(t, c.Set(ctx, building, before, 2024, 5, cachedSummary{Revenue: "stale"}))

	after, err := c.Version(ctx, building)
	require.NoError(t, err)
	var got cachedSummary
	ok, err := c.Get(ctx, building, after, 2024, 5, &got)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = c.Get(ctx, building, before, 2024, 5, &got)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, building, after, 2024, 5, cachedSummary{Revenue: "fresh"}))
	ok, err = c.Get(ctx, building, after, 2024, 5, &got)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "fresh", got.Revenue)
}

func TestMemorySummaryCacheDoesNotConfuseSimilarBuildingIDs(t *testing.T) {
	ctx := context.Background()
	c := NewMemorySummaryCache(time.Minute)

	require.NoError(t, c.Set(ctx, snowflake.ID(12), 0, 2024, 1, cachedSummary{Revenue: "12"}))
	require.NoError(t, c.InvalidateBuilding(ctx, snowflake.ID(1)))

	var got cachedSummary
	ok, err := c.Get(ctx, snowflake.ID(12), 0, 2024, 1, &got)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestNewSummaryCacheBackendSelection(t *testing.T) {
	log := zap.NewNop()

	none := NewSummaryCache(config.Config{SummaryCache: config.SummaryCacheConfig{Backend: config.CacheBackendNone}}, nil, log)
	assert.Equal(t, config.CacheBackendNone, none.Backend())

	fallback := NewSummaryCache(config.Config{SummaryCache: config.SummaryCacheConfig{Backend: config.CacheBackendRedis}}, nil, log)
	assert.Equal(t, config.CacheBackendMemory, fallback.Backend())
}

func TestRedisKeysAreVersioned(t *testing.T) {
	assert.Equal(t, "summary:5:ver", versionKey(snowflake.ID(5)))
	assert.Equal(t, "summary:5:v3:2024-02", redisKey(snowflake.ID(5), 3, 2024, 2))
}
