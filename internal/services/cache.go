package services

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

type cacheEntry[V any] struct {
	value     V
	expiresAt time.Time
}

// TTLCache is a small in-process cache with per-entry expiry. It is
// constructed once and shared by reference; the clock is injectable so
// expiry can be driven from tests.
type TTLCache[K comparable, V any] struct {
	mu      sync.RWMutex
	entries map[K]cacheEntry[V]
	ttl     time.Duration
	clock   clockwork.Clock
}

func NewTTLCache[K comparable, V any](clock clockwork.Clock, ttl time.Duration) *TTLCache[K, V] {
	return &TTLCache[K, V]{
		entries: make(map[K]cacheEntry[V]),
		ttl:     ttl,
		clock:   clock,
	}
}

func (c *TTLCache[K, V]) Get(key K) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[key]
	if !ok || !c.clock.Now().Before(entry.expiresAt) {
		var zero V
		return zero, false
	}
	return entry.value, true
}

func (c *TTLCache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sweep()
	c.entries[key] = cacheEntry[V]{value: value, expiresAt: c.clock.Now().Add(c.ttl)}
}

// SetIfAbsent stores value only when key is missing or expired and reports
// whether it did.
func (c *TTLCache[K, V]) SetIfAbsent(key K, value V) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()
	if entry, ok := c.entries[key]; ok && now.Before(entry.expiresAt) {
		return false
	}
	c.sweep()
	c.entries[key] = cacheEntry[V]{value: value, expiresAt: now.Add(c.ttl)}
	return true
}

func (c *TTLCache[K, V]) Delete(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// sweep drops expired entries. Callers hold the write lock.
func (c *TTLCache[K, V]) sweep() {
	now := c.clock.Now()
	for k, entry := range c.entries {
		if !now.Before(entry.expiresAt) {
			delete(c.entries, k)
		}
	}
}
