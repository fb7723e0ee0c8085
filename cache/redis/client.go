package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/fintrack/fintrack/logger"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

/* ========================================================================
 * Redis Client
 * ========================================================================
 * Connection pool, cache primitives and the distributed lock used to
 * serialize account rename/deactivation across instances.
 * ======================================================================== */

// Config configures the Redis connection.
type Config struct {
	Host         string `yaml:"host" mapstructure:"host"`
	Port         int    `yaml:"port" mapstructure:"port"`
	Password     string `yaml:"password" mapstructure:"password"`
	DB           int    `yaml:"db" mapstructure:"db"`
	PoolSize     int    `yaml:"pool_size" mapstructure:"pool_size"`
	MinIdleConns int    `yaml:"min_idle_conns" mapstructure:"min_idle_conns"`
}

// Client wraps the go-redis client.
type Client struct {
	rdb *redis.Client
	log *logger.Logger
}

type ClientParams struct {
	fx.In
	Lc     fx.Lifecycle
	Config Config
	Logger *logger.Logger
}

// NewClient creates a Redis client whose connection is verified on
// fx start and closed on stop.
func NewClient(p ClientParams) *Client {
	rdb := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", p.Config.Host, p.Config.Port),
		Password:     p.Config.Password,
		DB:           p.Config.DB,
		PoolSize:     p.Config.PoolSize,
		MinIdleConns: p.Config.MinIdleConns,
	})

	client := &Client{
		rdb: rdb,
		log: p.Logger,
	}

	p.Lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := rdb.Ping(ctx).Err(); err != nil {
				p.Logger.Error("redis connection failed", zap.Error(err))
				return err
			}
			p.Logger.Info("redis connected",
				zap.String("addr", fmt.Sprintf("%s:%d", p.Config.Host, p.Config.Port)),
			)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			p.Logger.Info("closing redis connection")
			return rdb.Close()
		},
	})

	return client
}

// NewClientFromRaw wraps an existing go-redis client. Used by tests
// with miniredis.
func NewClientFromRaw(rdb *redis.Client, log *logger.Logger) *Client {
	return &Client{rdb: rdb, log: log}
}

// Raw exposes the underlying go-redis client.
func (c *Client) Raw() *redis.Client {
	return c.rdb
}

/* ========================================================================
 * Cache primitives
 * ======================================================================== */

// Get reads a key. Returns redis.Nil when absent.
func (c *Client) Get(ctx context.Context, key string) (string, error) {
	return c.rdb.Get(ctx, key).Result()
}

// Set writes a key with an expiration.
func (c *Client) Set(ctx context.Context, key string, value any, expiration time.Duration) error {
	return c.rdb.Set(ctx, key, value, expiration).Err()
}

// SetNX writes a key only when it does not exist.
func (c *Client) SetNX(ctx context.Context, key string, value any, expiration time.Duration) (bool, error) {
	return c.rdb.SetNX(ctx, key, value, expiration).Result()
}

// Del removes keys.
func (c *Client) Del(ctx context.Context, keys ...string) error {
	return c.rdb.Del(ctx, keys...).Err()
}

// Exists counts how many of the keys exist.
func (c *Client) Exists(ctx context.Context, keys ...string) (int64, error) {
	return c.rdb.Exists(ctx, keys...).Result()
}

// Expire sets a key's TTL.
func (c *Client) Expire(ctx context.Context, key string, expiration time.Duration) error {
	return c.rdb.Expire(ctx, key, expiration).Err()
}

// Ping checks connectivity.
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// IsNil reports whether err is the go-redis cache-miss sentinel.
func IsNil(err error) bool {
	return err == redis.Nil
}
