// Package redis provides the TTL cache used for public page reads. The cache
// is an optimization only; a miss or a Redis outage falls through to MySQL.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Del(ctx context.Context, key string) error
	Key(operation, id string) string
}

type cache struct {
	client *redis.Client
}

func NewCache(addr string) Cache {
	return &cache{client: redis.NewClient(&redis.Options{Addr: addr})}
}

func (c *cache) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

func (c *cache) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	return c.client.Set(ctx, key, value, ttl).Err()
}

func (c *cache) Del(ctx context.Context, key string) error {
	return c.client.Del(ctx, key).Err()
}

func (c *cache) Key(operation, id string) string {
	return fmt.Sprintf("comanda:%s:%s", operation, id)
}
