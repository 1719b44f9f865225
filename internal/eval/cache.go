package eval

import (
	"sync"
	"time"
)

const defaultStabilityWeight = 0.01

// Cache is a fingerprint-keyed probability cache with a fixed TTL. Entries
// are evicted lazily on lookup; the working set is one entry per distinct
// position seen within the TTL window, which stays small in practice.
type Cache struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.Mutex
	entries map[string]cacheEntry
}

type cacheEntry struct {
	at    time.Time
	probs Probabilities
}

// NewCache builds a cache with the given TTL. A non-positive TTL disables
// caching entirely.
func NewCache(ttl time.Duration) *Cache {
	return &Cache{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]cacheEntry),
	}
}

// Get returns the cached pair for key if it is still fresh.
func (c *Cache) Get(key string) (Probabilities, bool) {
	if c.ttl <= 0 {
		return Probabilities{}, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return Probabilities{}, false
	}
	if c.now().Sub(entry.at) >= c.ttl {
		delete(c.entries, key)
		return Probabilities{}, false
	}
	return entry.probs, true
}

// Put stores the pair for key, stamped with the current time.
func (c *Cache) Put(key string, probs Probabilities) {
	if c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{at: c.now(), probs: probs}
}

// Len reports the number of stored entries, expired or not.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
