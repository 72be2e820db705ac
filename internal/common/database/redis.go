package database

import (
	"context"
	"fmt"
	"time"

	"lead-triage/internal/common/config"

	"github.com/redis/go-redis/v9"
)

// RedisClient holds the connection used by the audit mirror sink.
type RedisClient struct {
	Client *redis.Client
}

// NewRedis builds a pooled client. It does not dial; call Ping to check
// the server is reachable.
func NewRedis(cfg config.RedisConfig) *RedisClient {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})

	return &RedisClient{Client: rdb}
}

// Ping checks the connection; the server uses it as a readiness check.
func (c *RedisClient) Ping(ctx context.Context) error {
	if err := c.Client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

// Close releases the pool. It is safe on a nil client.
func (c *RedisClient) Close() error {
	if c == nil || c.Client == nil {
		return nil
	}
	return c.Client.Close()
}
