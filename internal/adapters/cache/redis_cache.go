package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/mikey/spam-detective/internal/core"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisCache is a Redis implementation of the CacheStore interface.
// TTLs are enforced by Redis itself, so there is no cleanup task.
type RedisCache struct {
	rdb    *redis.Client
	logger *zap.Logger
}

var _ core.CacheStore = (*RedisCache)(nil)

// NewRedisCache creates a new Redis cache store
func NewRedisCache(redisURL string, logger *zap.Logger) (*RedisCache, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	rdb := redis.NewClient(opt)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return &RedisCache{rdb: rdb, logger: logger}, nil
}

// Get retrieves a value by key
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := c.rdb.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query cache: %w", err)
	}
	return value, nil
}

// Set stores a value under key with the given TTL
func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.rdb.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set cache entry: %w", err)
	}
	return nil
}

// Delete removes a single entry
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	if err := c.rdb.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to delete cache entry: %w", err)
	}
	return nil
}

// DeletePrefix removes every entry whose key starts with prefix
func (c *RedisCache) DeletePrefix(ctx context.Context, prefix string) error {
	iter := c.rdb.Scan(ctx, 0, prefix+"*", 0).Iterator()
	deleted := 0
	for iter.Next(ctx) {
		if err := c.rdb.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("failed to delete cache entry: %w", err)
		}
		deleted++
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan cache keys: %w", err)
	}

	c.logger.Debug("Deleted cache entries by prefix",
		zap.String("prefix", prefix),
		zap.Int("deleted", deleted))
	return nil
}

// Stop closes the Redis connection
func (c *RedisCache) Stop() {
	if err := c.rdb.Close(); err != nil {
		c.logger.Error("Failed to close redis connection", zap.Error(err))
	}
}
