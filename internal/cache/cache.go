// Package cache provides a small in-memory cache with TTL support.
//
// Keys are any comparable type, so callers key entries with structs
// (operation kind plus parameters) instead of concatenated strings.
package cache

import (
	"sync"
	"time"
)

// Default TTL values for the resources cached by taskenv.
const (
	// DefaultStatusTTL bounds how long worktree annotations (commit,
	// last activity) are reused without asking git again.
	DefaultStatusTTL = 5 * time.Second
	// NoExpiry keeps an entry until it is deleted or the cache is cleared.
	NoExpiry time.Duration = 0
)

// entry represents a cached item with expiration
type entry[V any] struct {
	data      V
	expiresAt time.Time // zero means never
}

func (e *entry[V]) isExpired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// Cache is a thread-safe in-memory cache with TTL support
type Cache[K comparable, V any] struct {
	mu    sync.RWMutex
	store map[K]*entry[V]
	now   func() time.Time

	// enabled allows the cache to be disabled at runtime
	enabled bool
}

// New creates a new Cache instance
func New[K comparable, V any]() *Cache[K, V] {
	return &Cache[K, V]{
		store:   make(map[K]*entry[V]),
		now:     time.Now,
		enabled: true,
	}
}

// Enable enables the cache
func (c *Cache[K, V]) Enable() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.enabled = true
}

// Disable disables the cache (all Get operations will return cache miss)
func (c *Cache[K, V]) Disable() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.enabled = false
}

// Enabled returns true if caching is enabled
func (c *Cache[K, V]) Enabled() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.enabled
}

// Get retrieves a value from the cache by key.
// Expired entries are reported as misses and left for Cleanup.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	var zero V

	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.enabled {
		return zero, false
	}

	e, ok := c.store[key]
	if !ok || e.isExpired(c.now()) {
		return zero, false
	}

	return e.data, true
}

// Set stores a value with the given TTL. A TTL of NoExpiry never expires.
func (c *Cache[K, V]) Set(key K, data V, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.enabled {
		return
	}

	e := &entry[V]{data: data}
	if ttl > 0 {
		e.expiresAt = c.now().Add(ttl)
	}
	c.store[key] = e
}

// Delete removes a value from the cache
func (c *Cache[K, V]) Delete(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.store, key)
}

// Clear removes all entries from the cache
func (c *Cache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store = make(map[K]*entry[V])
}

// Size returns the number of entries in the cache, including expired ones
// not yet cleaned up.
func (c *Cache[K, V]) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.store)
}

// Cleanup removes all expired entries from the cache
func (c *Cache[K, V]) Cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for key, e := range c.store {
		if e.isExpired(now) {
			delete(c.store, key)
		}
	}
}
