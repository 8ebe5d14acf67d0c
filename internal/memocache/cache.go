// Package memocache is the process-wide memoization cache used by the
// evaluator. Keys are content-addressed: a caller-supplied prefix plus the
// canonical hash of the outgoing payload.
package memocache

import (
	"sync"
	"time"

	"github.com/mitchellh/copystructure"
)

// DefaultTTL is the per-entry lifetime the evaluator uses.
const DefaultTTL = 600 * time.Second

type entry struct {
	cachedAt time.Time
	ttl      time.Duration
	value    interface{}
}

// Cache is a concurrency-safe keyed JSON cache with per-entry TTL. The
// cache owns the canonical copy of every value: both Insert and Get deep
// copy, so callers can never mutate a cached entry.
type Cache struct {
	mu      sync.Mutex
	entries map[string]entry
}

// New creates an empty cache.
func New() *Cache {
	return &Cache{entries: map[string]entry{}}
}

// Get returns the value under key if it is present and within its TTL.
// Expired entries are treated as absent.
func (c *Cache) Get(key string) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if time.Since(e.cachedAt) > e.ttl {
		delete(c.entries, key)
		return nil, false
	}
	return deepCopy(e.value), true
}

// Insert stores value under key with the given TTL, unconditionally
// overwriting any previous entry, and returns the value for fluent
// chaining.
func (c *Cache) Insert(key string, value interface{}, ttl time.Duration) interface{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry{cachedAt: time.Now(), ttl: ttl, value: deepCopy(value)}
	return value
}

func deepCopy(value interface{}) interface{} {
	copied, err := copystructure.Copy(value)
	if err != nil {
		// JSON values never hit this; fall back to the shared value.
		return value
	}
	return copied
}
