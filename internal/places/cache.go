package places

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// MemoryCache is the per-session suggestion cache: normalised query to the
// results last fetched for it. Last write wins; nothing expires while the
// session lives.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string][]Suggestion
}

// NewMemoryCache creates an empty cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string][]Suggestion)}
}

// Lookup returns the cached results for key.
func (c *MemoryCache) Lookup(key string) ([]Suggestion, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	results, ok := c.entries[key]
	return results, ok
}

// Store overwrites the entry for key.
func (c *MemoryCache) Store(key string, results []Suggestion) {
	if results == nil {
		results = []Suggestion{}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = results
}

// Len reports the number of cached queries.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Clear drops every entry.
func (c *MemoryCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string][]Suggestion)
}

// SharedCache is a process-wide cache tier shared by all sessions.
type SharedCache interface {
	Get(ctx context.Context, key string) ([]Suggestion, bool, error)
	Set(ctx context.Context, key string, results []Suggestion) error
}

const redisKeyPrefix = "places:suggestions:"

// RedisCache stores suggestion lists as JSON with a TTL, so the shared tier
// stays bounded even though it outlives sessions.
type RedisCache struct {
	rdb redis.Cmdable
	ttl time.Duration
}

// NewRedisCache creates a Redis-backed shared cache. A non-positive ttl
// falls back to 24h.
func NewRedisCache(rdb redis.Cmdable, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisCache{rdb: rdb, ttl: ttl}
}

// Get implements SharedCache.
func (c *RedisCache) Get(ctx context.Context, key string) ([]Suggestion, bool, error) {
	data, err := c.rdb.Get(ctx, redisKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var results []Suggestion
	if err := json.Unmarshal(data, &results); err != nil {
		return nil, false, err
	}
	if results == nil {
		results = []Suggestion{}
	}
	return results, true, nil
}

// Set implements SharedCache.
func (c *RedisCache) Set(ctx context.Context, key string, results []Suggestion) error {
	if results == nil {
		results = []Suggestion{}
	}
	data, err := json.Marshal(results)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, redisKeyPrefix+key, data, c.ttl).Err()
}
