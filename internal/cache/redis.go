package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

type Redis struct {
	redisdb *redis.Client
	ttl     time.Duration
}

func NewRedis(cfg RedisConfig) *Redis {
	redisdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})

	ttl := cfg.TTL

	if ttl <= 0 {
		ttl = 5 * time.Second
	}

	return &Redis{redisdb: redisdb, ttl: ttl}
}

// cache failures are swallowed on purpose: a flaky redis must not take the
// API down, reads just fall through to the DB

func (c *Redis) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := c.redisdb.Get(ctx, key).Bytes()

	if err != nil {
		return nil, false
	}

	return val, true
}

func (c *Redis) Set(ctx context.Context, key string, val []byte) {
	_ = c.redisdb.Set(ctx, key, val, c.ttl).Err()
}

func (c *Redis) Delete(ctx context.Context, key string) {
	_ = c.redisdb.Del(ctx, key).Err()
}

// Ping checks redis connectivity

func (c *Redis) Ping(ctx context.Context) error {
	return c.redisdb.Ping(ctx).Err()
}

// Close closes the client

func (c *Redis) Close() error {
	return c.redisdb.Close()
}
