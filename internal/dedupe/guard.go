// Package dedupe guards against redelivered inbound updates. Long
// polling redelivers updates after restarts or acknowledgment hiccups;
// the guard records seen update IDs with a TTL so each is processed at
// most once per window.
package dedupe

import (
	"context"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// DefaultTTL is how long a seen update ID stays recorded. Telegram
// retains undelivered updates for 24h at most.
const DefaultTTL = 24 * time.Hour

// Guard reports whether an update ID is seen for the first time.
type Guard interface {
	FirstSeen(ctx context.Context, updateID int) bool
}

// RedisGuard records update IDs in Redis, surviving restarts.
type RedisGuard struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisGuard wraps an existing client.
func NewRedisGuard(client *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisGuard {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisGuard{client: client, ttl: ttl, logger: logger}
}

// FirstSeen is atomic via SETNX. Redis failures fail open: processing a
// duplicate beats dropping a genuine update.
func (g *RedisGuard) FirstSeen(ctx context.Context, updateID int) bool {
	key := fmt.Sprintf("bot:update:%d", updateID)
	ok, err := g.client.SetNX(ctx, key, 1, g.ttl).Result()
	if err != nil {
		g.logger.Warn("dedupe check failed, processing anyway", zap.Error(err))
		return true
	}
	return ok
}

// LocalGuard records update IDs in a process-local expiring cache, for
// deployments without Redis.
type LocalGuard struct {
	cache *cache.Cache
}

// NewLocalGuard builds a guard with the given TTL.
func NewLocalGuard(ttl time.Duration) *LocalGuard {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &LocalGuard{cache: cache.New(ttl, 10*time.Minute)}
}

// FirstSeen relies on cache.Add, which fails when the key exists.
func (g *LocalGuard) FirstSeen(_ context.Context, updateID int) bool {
	key := fmt.Sprintf("update:%d", updateID)
	return g.cache.Add(key, struct{}{}, cache.DefaultExpiration) == nil
}
