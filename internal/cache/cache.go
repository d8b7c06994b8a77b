// Package cache memoizes the result of one computation per key.
//
// A slot is resolved at most once. Concurrent misses on the same key share
// a single call of the resolver, and a failed resolution is stored exactly
// like a successful one, so every later lookup replays the same error.
// Different keys resolve independently.
package cache

import (
	"sync"

	"golang.org/x/sync/singleflight"
)

type entry struct {
	value any
	err   error
}

// Cache is a write-once table of resolved values. The zero value is not
// usable; call New.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]entry
	group   singleflight.Group
}

// New returns an empty cache.
func New() *Cache {
	return &Cache{entries: make(map[string]entry)}
}

// Get returns the value stored under key, calling fn to produce it on the
// first lookup. fn runs at most once per key for the life of the cache.
//
// T must be the same type for every lookup of a given key.
func Get[T any](c *Cache, key string, fn func() (T, error)) (T, error) {
	if e, ok := c.lookup(key); ok {
		return unwrap[T](e)
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		// A caller that lost the race to an earlier flight finds the slot
		// filled here.
		if e, ok := c.lookup(key); ok {
			return e.value, e.err
		}
		value, err := fn()
		c.mu.Lock()
		c.entries[key] = entry{value: value, err: err}
		c.mu.Unlock()
		return value, err
	})
	return unwrap[T](entry{value: v, err: err})
}

// Len reports how many slots have been resolved.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *Cache) lookup(key string) (entry, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	return e, ok
}

func unwrap[T any](e entry) (T, error) {
	value, _ := e.value.(T)
	return value, e.err
}
