package dedup

import "sync"

// Cache is a bounded, insertion-ordered set of trade IDs.
type Cache struct {
	mu         sync.Mutex
	seen       map[string]struct{}
	order      []string // Insertion order, oldest first
	maxEntries int
	trimTo     int
}

// New creates a cache that trims to trimTo entries once it exceeds
// maxEntries. trimTo must not exceed maxEntries.
func New(maxEntries, trimTo int) *Cache {
	if maxEntries < 1 {
		maxEntries = 1
	}
	if trimTo < 1 || trimTo > maxEntries {
		trimTo = maxEntries
	}
	return &Cache{
		seen:       make(map[string]struct{}, maxEntries),
		order:      make([]string, 0, maxEntries),
		maxEntries: maxEntries,
		trimTo:     trimTo,
	}
}

// Seen tests-and-inserts atomically: returns true if key was already
// present, false (and records it) if this is the first observation.
func (c *Cache) Seen(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.seen[key]; ok {
		return true
	}

	c.seen[key] = struct{}{}
	c.order = append(c.order, key)

	if len(c.order) > c.maxEntries {
		c.trimLocked()
	}

	return false
}

// Len returns the current number of cached keys.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.order)
}

// trimLocked drops the oldest entries, keeping the most recent trimTo.
// Must be called with the lock held.
func (c *Cache) trimLocked() {
	drop := len(c.order) - c.trimTo
	for _, key := range c.order[:drop] {
		delete(c.seen, key)
	}

	kept := make([]string, c.trimTo, c.maxEntries)
	copy(kept, c.order[drop:])
	c.order = kept
}
