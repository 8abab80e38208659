package cache

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// Client is a read-through JSON cache over Redis. A nil Client, or one built
// without a Redis URL, is valid and behaves as a permanent miss: callers never
// branch on whether caching is enabled, and cache failures never fail a read.
type Client struct {
	redis *redis.Client
}

func New(redisURL string) (*Client, error) {
	if redisURL == "" {
		return &Client{}, nil
	}

	options, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	options.MaxRetries = 3

	return &Client{redis: redis.NewClient(options)}, nil
}

func (client *Client) Enabled() bool {
	return client != nil && client.redis != nil
}

// GetJSON reports whether the key was present and decoded into dest.
func (client *Client) GetJSON(ctx context.Context, key string, dest any) bool {
	if !client.Enabled() {
		return false
	}

	payload, err := client.redis.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Printf("cache get %s: %v", key, err)
		}
		return false
	}
	if err := json.Unmarshal(payload, dest); err != nil {
		log.Printf("cache decode %s: %v", key, err)
		return false
	}
	return true
}

func (client *Client) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) {
	if !client.Enabled() {
		return
	}

	payload, err := json.Marshal(value)
	if err != nil {
		log.Printf("cache encode %s: %v", key, err)
		return
	}
	if err := client.redis.Set(ctx, key, payload, ttl).Err(); err != nil {
		log.Printf("cache set %s: %v", key, err)
	}
}

// Invalidate removes every key matching the given patterns.
func (client *Client) Invalidate(ctx context.Context, patterns ...string) {
	if !client.Enabled() {
		return
	}

	for _, pattern := range patterns {
		keys, err := client.redis.Keys(ctx, pattern).Result()
		if err != nil {
			log.Printf("cache invalidate %s: %v", pattern, err)
			continue
		}
		if len(keys) == 0 {
			continue
		}
		if err := client.redis.Del(ctx, keys...).Err(); err != nil {
			log.Printf("cache delete %s: %v", pattern, err)
		}
	}
}

func (client *Client) Close() error {
	if !client.Enabled() {
		return nil
	}
	return client.redis.Close()
}
