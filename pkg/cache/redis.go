package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig configures a [RedisCache].
type RedisConfig struct {
	Addr     string // host:port, default localhost:6379
	Password string
	DB       int
	Prefix   string // prepended to every key, default "vidtree:"
}

// RedisCache stores entries in Redis with native key expiry.
type RedisCache struct {
	client *redis.Client
	prefix string
}

// NewRedisCache connects to Redis and verifies the connection with PING,
// retrying transient failures.
func NewRedisCache(ctx context.Context, cfg RedisConfig) (*RedisCache, error) {
	if cfg.Addr == "" {
		cfg.Addr = "localhost:6379"
	}
	if cfg.Prefix == "" {
		cfg.Prefix = "vidtree:"
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	err := RetryWithBackoff(ctx, func() error {
		return redisError("ping "+cfg.Addr, client.Ping(ctx).Err())
	})
	if err != nil {
		client.Close()
		return nil, err
	}
	return &RedisCache{client: client, prefix: cfg.Prefix}, nil
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, redisError("get", err)
	}
	return data, true, nil
}

// Set stores data; a zero ttl keeps the key until it is deleted.
func (c *RedisCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return redisError("set", c.client.Set(ctx, c.prefix+key, data, ttl).Err())
}

func (c *RedisCache) Delete(ctx context.Context, key string) error {
	return redisError("del", c.client.Del(ctx, c.prefix+key).Err())
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

// redisError classifies a client error. Context errors pass through; other
// transport failures become retryable [ErrNetwork] errors.
func redisError(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	default:
		return Retryable(fmt.Errorf("%w: redis %s: %v", ErrNetwork, op, err))
	}
}

var _ Cache = (*RedisCache)(nil)
