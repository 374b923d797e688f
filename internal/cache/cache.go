// Package cache stores computed analytics responses in Redis so repeated
// dashboard reads skip the aggregation pass. Entries are keyed per
// repository and dropped whenever that repository's inputs change.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	appredis "repo-analytics-dashboard/internal/redis"

	"github.com/redis/go-redis/v9"
)

// ErrMiss is returned by Get when no entry exists for a key
var ErrMiss = errors.New("cache miss")

// Store is what handlers and workers depend on
type Store interface {
	GetJSON(ctx context.Context, key string, dest any) error
	SetJSON(ctx context.Context, key string, value any) error
	InvalidateRepository(ctx context.Context, repositoryID int64) error
}

// RedisCache implements Store on top of a Redis client
type RedisCache struct {
	client *appredis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisCache(client *appredis.Client, prefix string, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, prefix: prefix, ttl: ttl}
}

// Key builds "<prefix>:repo:<id>:<part>:<part>..."
func (c *RedisCache) Key(repositoryID int64, parts ...string) string {
	return RepositoryKey(c.prefix, repositoryID, parts...)
}

// RepositoryKey builds a cache key scoped to one repository
func RepositoryKey(prefix string, repositoryID int64, parts ...string) string {
	var b strings.Builder
	b.WriteString(prefix)
	b.WriteString(":repo:")
	b.WriteString(strconv.FormatInt(repositoryID, 10))
	for _, p := range parts {
		b.WriteByte(':')
		b.WriteString(p)
	}
	return b.String()
}

func (c *RedisCache) GetJSON(ctx context.Context, key string, dest any) error {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrMiss
		}
		return fmt.Errorf("failed to read cache key %s: %w", key, err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("failed to decode cache key %s: %w", key, err)
	}
	return nil
}

func (c *RedisCache) SetJSON(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode cache value: %w", err)
	}

	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write cache key %s: %w", key, err)
	}
	return nil
}

// InvalidateRepository deletes every entry stored for the repository
func (c *RedisCache) InvalidateRepository(ctx context.Context, repositoryID int64) error {
	pattern := c.Key(repositoryID, "*")

	iter := c.client.Scan(ctx, 0, pattern, 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan cache keys: %w", err)
	}

	if len(keys) == 0 {
		return nil
	}

	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to invalidate repository %d: %w", repositoryID, err)
	}
	return nil
}

// Noop never stores anything. Used when Redis is not configured.
type Noop struct{}

func (Noop) GetJSON(context.Context, string, any) error { return ErrMiss }
func (Noop) SetJSON(context.Context, string, any) error { return nil }
func (Noop) InvalidateRepository(context.Context, int64) error { return nil }
