// Package rescache provides a small TTL result cache used to avoid
// recomputing opportunity and interference assessments. Entries are value
// copies; the cache carries no correctness weight, only cost savings.
package rescache

import (
	"sync"
	"time"
)

const defaultTTL = 5 * time.Minute

type entry[V any] struct {
	value   V
	updated time.Time
}

// Cache is a concurrency-safe map with per-cache TTL expiry and hit/miss
// accounting.
type Cache[V any] struct {
	mu       sync.RWMutex
	entries  map[string]entry[V]
	ttl      time.Duration
	hits     int64
	misses   int64
	invalids int64
}

// New creates a cache with the provided TTL; zero uses a default.
func New[V any](ttl time.Duration) *Cache[V] {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Cache[V]{
		entries: make(map[string]entry[V]),
		ttl:     ttl,
	}
}

// TTL reports the configured entry lifetime.
func (c *Cache[V]) TTL() time.Duration {
	if c == nil {
		return 0
	}
	return c.ttl
}

// Get returns the cached value for key if present and fresh.
func (c *Cache[V]) Get(key string) (V, bool) {
	var zero V
	if c == nil || key == "" {
		return zero, false
	}
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok || time.Since(e.updated) > c.ttl {
		c.recordMiss()
		return zero, false
	}
	c.recordHit()
	return e.value, true
}

// Put stores a value under key, resetting its TTL.
func (c *Cache[V]) Put(key string, value V) {
	if c == nil || key == "" {
		return
	}
	c.mu.Lock()
	c.entries[key] = entry[V]{value: value, updated: time.Now()}
	c.mu.Unlock()
}

// Invalidate drops one key.
func (c *Cache[V]) Invalidate(key string) {
	if c == nil || key == "" {
		return
	}
	c.mu.Lock()
	if _, ok := c.entries[key]; ok {
		c.invalids++
		delete(c.entries, key)
	}
	c.mu.Unlock()
}

// InvalidateAll drops every entry.
func (c *Cache[V]) InvalidateAll() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.entries = make(map[string]entry[V])
	c.invalids++
	c.mu.Unlock()
}

// Len reports the number of stored entries, fresh or not.
func (c *Cache[V]) Len() int {
	if c == nil {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Stats returns cumulative hit, miss, and invalidation counts.
func (c *Cache[V]) Stats() (hits, misses, invalids int64) {
	if c == nil {
		return 0, 0, 0
	}
	c.mu.RLock()
	hits, misses, invalids = c.hits, c.misses, c.invalids
	c.mu.RUnlock()
	return
}

func (c *Cache[V]) recordHit() {
	c.mu.Lock()
	c.hits++
	c.mu.Unlock()
}

func (c *Cache[V]) recordMiss() {
	c.mu.Lock()
	c.misses++
	c.mu.Unlock()
}
