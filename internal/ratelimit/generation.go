package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/rentbook/internal/config"
)

const keyInvoiceGenerate = "invoice:generate:%s:%04d-%02d"

// releaseScript deletes the key only while it still holds our token, so a
// lock that expired and was taken by another replica is left alone.
const releaseScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`

// GenerationLock serializes monthly invoice generation for one contract period
// across replicas. Without Redis every acquisition succeeds.
type GenerationLock struct {
	client  *redis.Client
	release *redis.Script
	ttl     time.Duration
}

func NewGenerationLock(cfg config.Config, client *redis.Client) *GenerationLock {
	ttl := cfg.RateLimit.GenerationLockTTL
	if ttl <= 0 {
		ttl = 15 * time.Second
	}
	return &GenerationLock{client: client, release: redis.NewScript(releaseScript), ttl: ttl}
}

// Acquire returns a release func and whether the lock was obtained.
func (g *GenerationLock) Acquire(ctx context.Context, contractID snowflake.ID, year, month int) (func(), bool, error) {
	if g == nil || g.client == nil {
		return func() {}, true, nil
	}

	key := fmt.Sprintf(keyInvoiceGenerate, contractID.String(), year, month)
	token := uuid.NewString()
	ok, err := g.client.SetNX(ctx, key, token, g.ttl).Result()
	if err != nil || !ok {
		return func() {}, false, err
	}

	release := func() {
		_ = g.release.Run(context.WithoutCancel(ctx), g.client, []string{key}, token).Err()
	}
	return release, true, nil
}
