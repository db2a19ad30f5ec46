package extract

import (
	"sync"
	"time"
)

// Cache stores extracted text keyed by a content digest. Identical bytes
// always map to identical text, so concurrent writers for the same digest
// are idempotent.
type Cache interface {
	Get(digest string) (string, bool)
	Set(digest, text string)
}

// MemoryCache is the process-wide content cache. Entries live until process
// restart; the TTL is recorded for an external sweeper but never enforced
// here.
type MemoryCache struct {
	TTL time.Duration

	mu      sync.RWMutex
	entries map[string]string
}

// NewMemoryCache constructs an empty cache with the given advisory TTL.
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{
		TTL:     ttl,
		entries: make(map[string]string),
	}
}

// Get returns the cached text for a digest.
func (c *MemoryCache) Get(digest string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	text, ok := c.entries[digest]
	return text, ok
}

// Set stores text under a digest.
func (c *MemoryCache) Set(digest, text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[digest] = text
}

// Len reports the number of cached entries.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
