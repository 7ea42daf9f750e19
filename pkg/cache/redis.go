package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "vellum:blob:"

// Compile-time check: *Redis implements Store.
var _ Store = (*Redis)(nil)

// Redis is a shared Store on go-redis, for deployments running several
// backend instances against the same repository.
type Redis struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedis creates a Redis store. ttl bounds how long blobs stay cached;
// zero means no expiry (safe, since keys are content-addressed).
func NewRedis(rdb *redis.Client, ttl time.Duration) *Redis {
	return &Redis{rdb: rdb, ttl: ttl}
}

// Get returns the cached payload, or (nil, nil) on a miss.
func (r *Redis) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := r.rdb.Get(ctx, redisKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil //nolint:nilnil // caller checks nil value to detect a miss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %q: %w", key, err)
	}
	return data, nil
}

// Set stores the payload under a prefixed key with the configured TTL.
func (r *Redis) Set(ctx context.Context, key string, data []byte) error {
	if err := r.rdb.Set(ctx, redisKeyPrefix+key, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %q: %w", key, err)
	}
	return nil
}

// Close closes the client connection.
func (r *Redis) Close() error { return r.rdb.Close() }
