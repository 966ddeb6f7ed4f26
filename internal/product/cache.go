package product

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// KeyPrefix namespaces product entries in a shared Redis.
const KeyPrefix = "qrscanner:product:"

// CacheKey returns the Redis key for a barcode's product info.
func CacheKey(content string) string {
	return KeyPrefix + content
}

// RedisCache is a Cache backed by Redis string keys with a TTL.
type RedisCache struct {
	client redis.UniversalClient
}

// NewRedisCache wraps an existing Redis client.
func NewRedisCache(client redis.UniversalClient) *RedisCache {
	return &RedisCache{client: client}
}

// Get returns the cached info. A miss is not an error.
func (r *RedisCache) Get(ctx context.Context, content string) (string, bool, error) {
	info, err := r.client.Get(ctx, CacheKey(content)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to get cached product: %w", err)
	}
	return info, true, nil
}

// Set caches info for ttl.
func (r *RedisCache) Set(ctx context.Context, content, info string, ttl time.Duration) error {
	if err := r.client.Set(ctx, CacheKey(content), info, ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache product: %w", err)
	}
	return nil
}

// ConnectRedis opens a Redis client and verifies it with a ping.
func ConnectRedis(ctx context.Context, addr, password string, db int, timeout time.Duration) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  timeout,
		ReadTimeout:  timeout,
		WriteTimeout: timeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}
	return client, nil
}
