package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"
	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/rentbook/internal/config"
	"go.uber.org/zap"
)

// SummaryCache stores computed per-building period summaries.
// Values are JSON encoded so both backends hand out independent copies.
//
// Callers read Version before computing and pass it to Get and Set. A value
// computed under a version that has since been invalidated is never served.
type SummaryCache interface {
	Version(ctx context.Context, buildingID snowflake.ID) (int64, error)
	Get(ctx context.Context, buildingID snowflake.ID, version int64, year, month int, dst any) (bool, error)
	Set(ctx context.Context, buildingID snowflake.ID, version int64, year, month int, value any) error
	Invalidator
	Backend() string
}

// Invalidator drops every cached period of a building. Mutating services
// call it after a successful write to any summary input.
type Invalidator interface {
	InvalidateBuilding(ctx context.Context, buildingID snowflake.ID) error
}

func NewSummaryCache(cfg config.Config, client *redis.Client, log *zap.Logger) SummaryCache {
	ttl := cfg.SummaryCache.TTL
	switch cfg.SummaryCache.Backend {
	case config.CacheBackendNone:
		return NoopSummaryCache{}
	case config.CacheBackendRedis:
		if client != nil {
			return NewRedisSummaryCache(client, ttl)
		}
		log.Warn("summary cache backend is redis but REDIS_ADDR is empty; using memory")
	}
	return NewMemorySummaryCache(ttl)
}

// memorySummaryCache keeps a generation per building. Invalidation bumps it
// and Set drops values computed under an older generation.
type memorySummaryCache struct {
	mu    sync.Mutex
	gens  map[snowflake.ID]int64
	items *ttlCache[string, []byte]
	ttl   time.Duration
}

func NewMemorySummaryCache(ttl time.Duration) SummaryCache {
	return &memorySummaryCache{
		gens:  make(map[snowflake.ID]int64),
		items: NewTTLCache[string, []byte](),
		ttl:   ttl,
	}
}

func (c *memorySummaryCache) Backend() string { return config.CacheBackendMemory }

func (c *memorySummaryCache) Version(_ context.Context, buildingID snowflake.ID) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gens[buildingID], nil
}

func (c *memorySummaryCache) Get(_ context.Context, buildingID snowflake.ID, version int64, year, month int, dst any) (bool, error) {
	c.mu.Lock()
	current := c.gens[buildingID]
	c.mu.Unlock()
	if version != current {
		return false, nil
	}
	raw, ok := c.items.Get(memoryKey(buildingID, year, month))
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, err
	}
	return true, nil
}

func (c *memorySummaryCache) Set(_ context.Context, buildingID snowflake.ID, version int64, year, month int, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gens[buildingID] != version {
		return nil
	}
	c.items.Set(memoryKey(buildingID, year, month), raw, c.ttl)
	return nil
}

func (c *memorySummaryCache) InvalidateBuilding(_ context.Context, buildingID snowflake.ID) error {
	prefix := cacheKey("summary", buildingID.String()) + "|"
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gens[buildingID]++
	c.items.DeleteFunc(func(key string) bool { return strings.HasPrefix(key, prefix) })
	return nil
}

func memoryKey(buildingID snowflake.ID, year, month int) string {
	return cacheKey("summary", buildingID.String(), fmt.Sprintf("%04d-%02d", year, month))
}

// redisSummaryCache namespaces entries under a per-building version number.
// Invalidation bumps the version and lets old keys expire, so a late Set
// under an old version lands on a key nobody reads.
type redisSummaryCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisSummaryCache(client *redis.Client, ttl time.Duration) SummaryCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &redisSummaryCache{client: client, ttl: ttl}
}

func (c *redisSummaryCache) Backend() string { return config.CacheBackendRedis }

func (c *redisSummaryCache) Version(ctx context.Context, buildingID snowflake.ID) (int64, error) {
	return c.version(ctx, buildingID)
}

func (c *redisSummaryCache) Get(ctx context.Context, buildingID snowflake.ID, version int64, year, month int, dst any) (bool, error) {
	raw, err := c.client.Get(ctx, redisKey(buildingID, version, year, month)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, err
	}
	return true, nil
}

func (c *redisSummaryCache) Set(ctx context.Context, buildingID snowflake.ID, version int64, year, month int, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, redisKey(buildingID, version, year, month), raw, c.ttl).Err()
}

func (c *redisSummaryCache) InvalidateBuilding(ctx context.Context, buildingID snowflake.ID) error {
	return c.client.Incr(ctx, versionKey(buildingID)).Err()
}

func (c *redisSummaryCache) version(ctx context.Context, buildingID snowflake.ID) (int64, error) {
	raw, err := c.client.Get(ctx, versionKey(buildingID)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(raw, 10, 64)
}

func versionKey(buildingID snowflake.ID) string {
	return fmt.Sprintf("summary:%s:ver", buildingID.String())
}

func redisKey(buildingID snowflake.ID, version int64, year, month int) string {
	return fmt.Sprintf("summary:%s:v%d:%04d-%02d", buildingID.String(), version, year, month)
}

// NoopSummaryCache never stores anything.
type NoopSummaryCache struct{}

func (NoopSummaryCache) Backend() string { return config.CacheBackendNone }

func (NoopSummaryCache) Version(context.Context, snowflake.ID) (int64, error) { return 0, nil }

func (NoopSummaryCache) Get(context.Context, snowflake.ID, int64, int, int, any) (bool, error) {
	return false, nil
}

func (NoopSummaryCache) Set(context.Context, snowflake.ID, int64, int, int, any) error { return nil }

func (NoopSummaryCache) InvalidateBuilding(context.Context, snowflake.ID) error { return nil }
