package api

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const deduperKeyPrefix = "focus:idem:"

// RedisDeduper stores processed idempotency keys in Redis so a retried
// create request is recognized and not applied twice.
type RedisDeduper struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisDeduper creates a deduper using the provided Redis client and TTL.
func NewRedisDeduper(client *redis.Client, ttl time.Duration) *RedisDeduper {
	return &RedisDeduper{client: client, ttl: ttl}
}

// Add records the key if it does not already exist. It returns true when
// the key was newly added.
func (r *RedisDeduper) Add(ctx context.Context, key string) (bool, error) {
	return r.client.SetNX(ctx, deduperKeyPrefix+key, 1, r.ttl).Result()
}

// Remove deletes a previously recorded key so the request may be retried.
func (r *RedisDeduper) Remove(ctx context.Context, key string) error {
	return r.client.Del(ctx, deduperKeyPrefix+key).Err()
}
