package marketdata

import (
	"sync"
	"time"
)

// entry pairs a cached value with its insertion time.
type entry[V any] struct {
	value      V
	insertedAt time.Time
}

// ttlCache is a mutex-guarded keyed cache with a fixed TTL per bucket.
// An entry older than the TTL is logically absent even if it has not
// yet been swept; Get never serves it.
type ttlCache[V any] struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]entry[V]
}

func newTTLCache[V any](ttl time.Duration, now func() time.Time) *ttlCache[V] {
	return &ttlCache[V]{
		ttl:     ttl,
		now:     now,
		entries: make(map[string]entry[V]),
	}
}

// Get returns the cached value for key if it exists and is within TTL.
func (c *ttlCache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok || c.now().Sub(e.insertedAt) >= c.ttl {
		var zero V
		return zero, false
	}
	return e.value, true
}

// Set stores a value under key, stamping it with the current time.
func (c *ttlCache[V]) Set(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry[V]{value: value, insertedAt: c.now()}
}

// Len returns the number of physically stored entries, expired or not.
func (c *ttlCache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Sweep removes expired entries and returns how many were deleted.
func (c *ttlCache[V]) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	now := c.now()
	for key, e := range c.entries {
		if now.Sub(e.insertedAt) >= c.ttl {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}
