// Package cache holds the bounded per-region cache used by lazy data sources.
package cache

import (
	"log"
	"sync"

	"github.com/danielpemor/DashWeb/internal/metrics"
)

// FIFO is a bounded cache that evicts the oldest inserted entry on overflow.
// Reading an entry never changes its position.
type FIFO[K comparable, V any] struct {
	mu       sync.Mutex
	capacity int
	order    []K
	entries  map[K]V
}

// NewFIFO returns a cache holding at most capacity entries (minimum 1).
func NewFIFO[K comparable, V any](capacity int) *FIFO[K, V] {
	if capacity < 1 {
		capacity = 1
	}
	return &FIFO[K, V]{capacity: capacity, entries: make(map[K]V, capacity)}
}

// Get returns the resident value for key.
func (c *FIFO[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[key]
	return v, ok
}

// GetOrLoad returns the resident value for key, or calls load and stores its result.
// Failed loads are not cached. The lock is held during load so a key is loaded once.
func (c *FIFO[K, V]) GetOrLoad(key K, load func(K) (V, error)) (V, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if v, ok := c.entries[key]; ok {
		metrics.RegionCacheTotal.WithLabelValues("hit").Inc()
		return v, nil
	}
	metrics.RegionCacheTotal.WithLabelValues("miss").Inc()

	v, err := load(key)
	if err != nil {
		var zero V
		return zero, err
	}
	for len(c.order) >= c.capacity {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
		metrics.RegionCacheTotal.WithLabelValues("evict").Inc()
		log.Printf("[cache] evicted %v", oldest)
	}
	c.order = append(c.order, key)
	c.entries[key] = v
	return v, nil
}

// Keys lists the resident keys, oldest first.
func (c *FIFO[K, V]) Keys() []K {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]K, len(c.order))
	copy(out, c.order)
	return out
}

func (c *FIFO[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.order)
}
