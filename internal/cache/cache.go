// server/internal/cache/cache.go
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"bill-delivery-api-server/config"

	"github.com/go-redis/redis/v8"
)

// Client is a thin JSON cache over Redis used for the commissioner
// analytics. It is best-effort: callers treat a miss and an error the
// same way and recompute.
type Client struct {
	rdb *redis.Client
	ttl time.Duration
}

func Initialize(cfg config.RedisConfig) (*Client, error) {
	opt, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	ttl, err := time.ParseDuration(cfg.AnalyticsTTL)
	if err != nil {
		return nil, fmt.Errorf("invalid analytics TTL: %w", err)
	}

	rdb := redis.NewClient(opt)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Client{rdb: rdb, ttl: ttl}, nil
}

// Get unmarshals the cached value into dest. ok is false on a miss or
// any Redis error.
func (c *Client) Get(ctx context.Context, key string, dest interface{}) (ok bool) {
	if c == nil {
		return false
	}
	data, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(data, dest) == nil
}

// Set stores the value under the configured TTL. Errors are swallowed:
// the cache never blocks a response.
func (c *Client) Set(ctx context.Context, key string, value interface{}) {
	if c == nil {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	c.rdb.Set(ctx, key, data, c.ttl)
}

// Invalidate drops the given keys, typically after a delivery write.
func (c *Client) Invalidate(ctx context.Context, keys ...string) {
	if c == nil || len(keys) == 0 {
		return
	}
	c.rdb.Del(ctx, keys...)
}
