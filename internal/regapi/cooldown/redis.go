package cooldown

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "hireflow:otp-cooldown:"

// RedisGate keeps cooldown windows in Redis with SET NX PX.
type RedisGate struct {
	client redis.UniversalClient
}

// NewRedisGate parses url (redis://...) and verifies the connection.
func NewRedisGate(ctx context.Context, url string) (*RedisGate, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return &RedisGate{client: client}, nil
}

// NewRedisGateFromClient wraps an existing client.
func NewRedisGateFromClient(client redis.UniversalClient) *RedisGate {
	return &RedisGate{client: client}
}

func (g *RedisGate) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, time.Duration, error) {
	k := keyPrefix + normalizeKey(key)

	ok, err := g.client.SetNX(ctx, k, "1", ttl).Result()
	if err != nil {
		return false, 0, fmt.Errorf("cooldown acquire: %w", err)
	}
	if ok {
		return true, 0, nil
	}

	left, err := g.client.PTTL(ctx, k).Result()
	if err != nil {
		return false, 0, fmt.Errorf("cooldown ttl: %w", err)
	}
	if left < 0 {
		// key vanished or has no expiry; treat as a full window
		left = ttl
	}
	return false, left, nil
}

func (g *RedisGate) Release(ctx context.Context, key string) error {
	return g.client.Del(ctx, keyPrefix+normalizeKey(key)).Err()
}

func (g *RedisGate) Ping(ctx context.Context) error {
	return g.client.Ping(ctx).Err()
}

func (g *RedisGate) Close() error {
	return g.client.Close()
}
