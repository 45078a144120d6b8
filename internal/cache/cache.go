// Package cache provides a small redis-backed TTL cache for listing
// responses. The API hides redis entirely so callers can treat a cache miss
// and a redis outage the same way: recompute.
package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

type Cache struct {
	redisdb *redis.Client
	ttl     time.Duration
}

type Config struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

func New(cfg Config) *Cache {
	if cfg.TTL <= 0 {
		cfg.TTL = 5 * time.Second
	}

	redisdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})

	return &Cache{redisdb: redisdb, ttl: cfg.TTL}
}

// Ping checks redis connectivity.

func (c *Cache) Ping(ctx context.Context) error {
	return c.redisdb.Ping(ctx).Err()
}

func (c *Cache) Close() error {
	return c.redisdb.Close()
}

func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := c.redisdb.Get(ctx, key).Bytes()

	if err != nil {
		// redis.Nil is an ordinary miss; anything else degrades to a miss too
		return nil, false
	}

	return val, true
}

func (c *Cache) Set(ctx context.Context, key string, val []byte) {
	_ = c.redisdb.Set(ctx, key, val, c.ttl).Err()
}

func (c *Cache) Delete(ctx context.Context, keys ...string) {
	if len(keys) == 0 {
		return
	}
	_ = c.redisdb.Del(ctx, keys...).Err()
}
