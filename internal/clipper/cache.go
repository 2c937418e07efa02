package clipper

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// PageCache stores fetched page HTML by URL.
type PageCache interface {
	Get(ctx context.Context, url string) (string, bool, error)
	Set(ctx context.Context, url, page string) error
}

// NopCache never stores anything.
type NopCache struct{}

func (NopCache) Get(context.Context, string) (string, bool, error) { return "", false, nil }
func (NopCache) Set(context.Context, string, string) error         { return nil }

const redisKeyPrefix = "meal-planner:page:"

// RedisPageCache keeps pages in Redis with a fixed TTL.
type RedisPageCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisPageCache connects to addr and verifies the connection.
func NewRedisPageCache(ctx context.Context, addr string, ttl time.Duration) (*RedisPageCache, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return &RedisPageCache{client: client, ttl: ttl}, nil
}

// Get returns the cached page for url.
func (c *RedisPageCache) Get(ctx context.Context, url string) (string, bool, error) {
	page, err := c.client.Get(ctx, cacheKey(url)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get cached page: %w", err)
	}
	return page, true, nil
}

// Set caches page for url.
func (c *RedisPageCache) Set(ctx context.Context, url, page string) error {
	if err := c.client.Set(ctx, cacheKey(url), page, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache page: %w", err)
	}
	return nil
}

// Close closes the Redis connection.
func (c *RedisPageCache) Close() error {
	return c.client.Close()
}

func cacheKey(url string) string {
	sum := sha256.Sum256([]byte(url))
	return redisKeyPrefix + hex.EncodeToString(sum[:])
}
