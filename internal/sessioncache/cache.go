// Package sessioncache holds a short-lived token→user map so every request
// does not re-verify its JWT. It is advisory: a miss just means the token is
// validated again, and nothing about achievement correctness depends on it.
package sessioncache

import (
	"sync"
	"time"
)

const DefaultTTL = 5 * time.Minute

type entry struct {
	userID    uint
	expiresAt time.Time
}

type Cache struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]entry
}

// New creates a cache with the given TTL. The clock is injected so tests can
// control expiry.
func New(ttl time.Duration, now func() time.Time) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if now == nil {
		now = time.Now
	}
	return &Cache{
		ttl:     ttl,
		now:     now,
		entries: make(map[string]entry),
	}
}

// Get returns the cached user for a token. Expired entries are evicted on
// access and reported as misses.
func (c *Cache) Get(token string) (uint, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[token]
	if !ok {
		return 0, false
	}
	if c.now().After(e.expiresAt) {
		delete(c.entries, token)
		return 0, false
	}
	return e.userID, true
}

func (c *Cache) Set(token string, userID uint) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[token] = entry{userID: userID, expiresAt: c.now().Add(c.ttl)}
}

func (c *Cache) Evict(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, token)
}

// Sweep removes every expired entry and returns how many were dropped. The
// server runs this on a schedule; Get already evicts lazily, so the sweep
// only bounds memory for tokens that are never looked up again.
func (c *Cache) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	dropped := 0
	for token, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, token)
			dropped++
		}
	}
	return dropped
}

func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
