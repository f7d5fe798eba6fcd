// Package redis connects the shared lookup cache.
package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"authlinks/internal/platform/config"
)

// Client is the connected cache client. It embeds *redis.Client so it can be
// handed to cache.NewRedis directly.
type Client struct {
	*redis.Client
}

// New connects to cfg.URL and pings it. An empty URL returns a nil client and
// no error; callers fall back to in-process caches.
func New(ctx context.Context, cfg config.Redis) (*Client, error) {
	if cfg.URL == "" {
		return nil, nil
	}

	opts, err := Options(cfg)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &Client{Client: client}, nil
}

// Options builds connection options from cfg. Non-positive pool size and
// timeout keep the go-redis defaults.
func Options(cfg config.Redis) (*redis.Options, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	if cfg.PoolSize > 0 {
		opts.PoolSize = cfg.PoolSize
	}
	if cfg.Timeout > 0 {
		opts.DialTimeout = cfg.Timeout
		opts.ReadTimeout = cfg.Timeout
		opts.WriteTimeout = cfg.Timeout
	}
	return opts, nil
}

// Health is the ops health check for the cache.
func (c *Client) Health(ctx context.Context) error {
	return c.Ping(ctx).Err()
}
