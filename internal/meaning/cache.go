package meaning

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

type Cache interface {
	Get(ctx context.Context, key string) (Meaning, bool, error)
	Set(ctx context.Context, key string, m Meaning, ttl time.Duration) error
}

const cacheKeyPrefix = "bloomery:meaning:v1:"

// cacheKey hashes the normalized info.
func cacheKey(info Info) string {
	raw, _ := json.Marshal(info.normalized())
	sum := sha256.Sum256(raw)
	return cacheKeyPrefix + hex.EncodeToString(sum[:])
}

type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

// NewRedisCacheFromURL parses a redis:// URL and pings the server.
func NewRedisCacheFromURL(ctx context.Context, rawURL string) (*RedisCache, error) {
	opts, err := redis.ParseURL(strings.TrimSpace(rawURL))
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &RedisCache{client: client}, nil
}

func (c *RedisCache) Get(ctx context.Context, key string) (Meaning, bool, error) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return Meaning{}, false, nil
	}
	if err != nil {
		return Meaning{}, false, fmt.Errorf("redis get %s: %w", key, err)
	}
	var m Meaning
	if err := json.Unmarshal(raw, &m); err != nil {
		return Meaning{}, false, fmt.Errorf("decode cached meaning: %w", err)
	}
	return m, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, m Meaning, ttl time.Duration) error {
	raw, err := json.Marshal(m)
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}
