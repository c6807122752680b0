// Package cache holds proxied catalog pages in Redis so repeated browsing
// does not hammer the upstream movie API. The cache is best-effort: any
// Redis failure is a miss, never an error to the caller.
package cache

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedis(ctx context.Context, addr string, password string, db int, ttl time.Duration) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	slog.Info("redis cache connected", "addr", addr, "ttl", ttl)
	return &Redis{client: client, ttl: ttl}, nil
}

func (c *Redis) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		slog.Debug("cache get failed", "key", key, "error", err.Error())
		return nil, false
	}
	return val, true
}

func (c *Redis) Set(ctx context.Context, key string, value []byte) {
	if err := c.client.Set(ctx, key, value, c.ttl).Err(); err != nil {
		slog.Debug("cache set failed", "key", key, "error", err.Error())
	}
}

func (c *Redis) Close() {
	_ = c.client.Close()
}
