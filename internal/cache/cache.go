// Package cache provides a read-through cache for leaderboard and summary reads.
package cache

import (
	"context"
	"errors"
	"time"

	"github.com/go-redis/cache/v9"
	"github.com/redis/go-redis/v9"
)

// ErrCacheMiss is returned by Get when the key is absent.
var ErrCacheMiss = cache.ErrCacheMiss

// Cache stores encoded values under string keys.
type Cache interface {
	Get(ctx context.Context, key string, target any) error
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// UseCache returns the cached value for key or computes and stores it.
// Cache errors other than a hit fall through to the callback. The write-back is
// unversioned, so a value computed before a concurrent Delete can outlive it for up to ttl.
func UseCache[T any](ctx context.Context, c Cache, key string, ttl time.Duration, callback func() (T, error)) (T, error) {
	var v T
	if err := c.Get(ctx, key, &v); err == nil {
		return v, nil
	}

	v, err := callback()
	if err != nil {
		return v, err
	}

	// fire and forget
	//nolint:errcheck
	c.Set(ctx, key, v, ttl)
	return v, nil
}

// LeaderboardKey is the key holding the cached top of the leaderboard.
func LeaderboardKey() string {
	return "greenpoints:leaderboard"
}

// SummaryKey is the key holding a user's cached shareable summary.
func SummaryKey(username string) string {
	return "greenpoints:summary:" + username
}

// RedisCache is a Cache backed by Redis with an optional local TinyLFU layer.
type RedisCache struct {
	instance *cache.Cache
}

// NewRedisCache wraps a Redis client. A nil client keeps entries in the local layer only.
func NewRedisCache(client redis.UniversalClient, withLocalCache bool) *RedisCache {
	var localCache cache.LocalCache
	if withLocalCache {
		localCache = cache.NewTinyLFU(1000, time.Second)
	}
	return &RedisCache{cache.New(&cache.Options{
		Redis:      client,
		LocalCache: localCache,
	})}
}

func (c *RedisCache) Get(ctx context.Context, key string, target any) error {
	return c.instance.Get(ctx, key, target)
}

func (c *RedisCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	return c.instance.Set(&cache.Item{
		Ctx:   ctx,
		Key:   key,
		Value: value,
		TTL:   ttl,
	})
}

func (c *RedisCache) Delete(ctx context.Context, key string) error {
	err := c.instance.Delete(ctx, key)
	if errors.Is(err, ErrCacheMiss) {
		return nil
	}
	return err
}
