package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	backend "github.com/redis/go-redis/v9"

	"github.com/doeshing/recogaize/internal/domain"
	"github.com/doeshing/recogaize/internal/ports"
)

const defaultRedisPrefix = "recogaize:"

// RedisCache stores caption responses in Redis with a per-key TTL.
type RedisCache struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

// RedisOption customises a RedisCache.
type RedisOption func(*RedisCache)

// WithPrefix namespaces every key.
func WithPrefix(prefix string) RedisOption {
	return func(c *RedisCache) {
		if prefix != "" {
			c.prefix = prefix
		}
	}
}

// WithTTL sets key expiry; zero keeps keys forever.
func WithTTL(ttl time.Duration) RedisOption {
	return func(c *RedisCache) {
		c.ttl = ttl
	}
}

// NewRedisCache connects to addr.
func NewRedisCache(addr string, opts ...RedisOption) *RedisCache {
	return NewRedisCacheFromClient(backend.NewClient(&backend.Options{Addr: addr}), opts...)
}

// NewRedisCacheFromClient wraps an existing client.
func NewRedisCacheFromClient(client *backend.Client, opts ...RedisOption) *RedisCache {
	c := &RedisCache{client: client, prefix: defaultRedisPrefix}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *RedisCache) key(k string) string {
	return c.prefix + "caption:" + k
}

// Get returns the cached entry for key.
func (c *RedisCache) Get(ctx context.Context, key string) (domain.CacheEntry, bool, error) {
	if key == "" {
		return domain.CacheEntry{}, false, nil
	}
	data, err := c.client.Get(ctx, c.key(key)).Bytes()
	if errors.Is(err, backend.Nil) {
		return domain.CacheEntry{}, false, nil
	}
	if err != nil {
		return domain.CacheEntry{}, false, fmt.Errorf("redis get: %w", err)
	}
	var entry domain.CacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return domain.CacheEntry{}, false, err
	}
	return entry, true, nil
}

// Set stores entry with the configured TTL.
func (c *RedisCache) Set(ctx context.Context, entry domain.CacheEntry) error {
	if entry.Key == "" {
		return nil
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, c.key(entry.Key), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Entries scans every cached caption under the prefix.
func (c *RedisCache) Entries(ctx context.Context) ([]domain.CacheEntry, error) {
	var entries []domain.CacheEntry
	iter := c.client.Scan(ctx, 0, c.key("*"), 100).Iterator()
	for iter.Next(ctx) {
		data, err := c.client.Get(ctx, iter.Val()).Bytes()
		if err != nil {
			continue
		}
		var entry domain.CacheEntry
		if err := json.Unmarshal(data, &entry); err == nil {
			entries = append(entries, entry)
		}
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("redis scan: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].CreatedAt.After(entries[j].CreatedAt) })
	return entries, nil
}

// Clear deletes every cached caption under the prefix.
func (c *RedisCache) Clear(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, c.key("*"), 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis scan: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

// Location describes where entries live.
func (c *RedisCache) Location() string {
	return fmt.Sprintf("redis://%s/%s", c.client.Options().Addr, c.prefix)
}

// Ping checks connectivity.
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

var _ ports.CacheRepository = (*RedisCache)(nil)
