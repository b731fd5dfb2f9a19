// Package cache provides the in-process byte cache that sits in front of the
// catalog gateway.
package cache

import (
	"container/list"
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Cache is the contract the caching gateway decorator depends on.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context, prefix string) error
}

// Observer is told about every lookup outcome. The metrics collector
// implements it.
type Observer interface {
	CacheHit(name string)
	CacheMiss(name string)
	CacheEviction(name string)
}

// MemoryCache is an LRU cache with per-entry expiry and a byte budget.
// It is safe for concurrent use.
type MemoryCache struct {
	name     string
	mu       sync.Mutex
	entries  map[string]*entry
	order    *list.List
	maxItems int
	maxBytes int64
	used     int64

	hits      int64
	misses    int64
	evictions int64

	now      func() time.Time
	observer Observer
	logger   *zap.Logger
}

type entry struct {
	key     string
	value   []byte
	size    int64
	expires time.Time
	elem    *list.Element
}

// Stats is a point-in-time view of cache effectiveness.
type Stats struct {
	Hits      int64   `json:"hits"`
	Misses    int64   `json:"misses"`
	Evictions int64   `json:"evictions"`
	Items     int     `json:"items"`
	Bytes     int64   `json:"bytes"`
	HitRate   float64 `json:"hit_rate"`
}

// MemoryOption configures a MemoryCache.
type MemoryOption func(*MemoryCache)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) MemoryOption {
	return func(c *MemoryCache) { c.now = now }
}

// WithObserver reports hits, misses, and evictions.
func WithObserver(o Observer) MemoryOption {
	return func(c *MemoryCache) { c.observer = o }
}

// NewMemoryCache creates a cache holding at most maxItems entries and maxBytes
// of keys plus values.
func NewMemoryCache(name string, maxItems int, maxBytes int64, logger *zap.Logger, opts ...MemoryOption) *MemoryCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &MemoryCache{
		name:     name,
		entries:  make(map[string]*entry),
		order:    list.New(),
		maxItems: maxItems,
		maxBytes: maxBytes,
		now:      time.Now,
		logger:   logger.With(zap.String("cache", name)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns a copy of the cached value.
func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if ok && !c.now().Before(e.expires) {
		c.removeLocked(e)
		ok = false
	}
	if !ok {
		c.misses++
		if c.observer != nil {
			c.observer.CacheMiss(c.name)
		}
		return nil, false, nil
	}

	c.order.MoveToFront(e.elem)
	c.hits++
	if c.observer != nil {
		c.observer.CacheHit(c.name)
	}
	return append([]byte(nil), e.value...), true, nil
}

// Set stores a copy of value for ttl. Values larger than the whole budget
// are skipped.
func (c *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	size := int64(len(key) + len(value))

	c.mu.Lock()
	defer c.mu.Unlock()

	if size > c.maxBytes {
		c.logger.Warn("Value too large to cache",
			zap.String("key", key),
			zap.Int64("size", size),
			zap.Int64("max_bytes", c.maxBytes),
		)
		return nil
	}
	if old, ok := c.entries[key]; ok {
		c.removeLocked(old)
	}
	for c.order.Len() > 0 && (c.used+size > c.maxBytes || len(c.entries) >= c.maxItems) {
		c.removeLocked(c.order.Back().Value.(*entry))
		c.evictions++
		if c.observer != nil {
			c.observer.CacheEviction(c.name)
		}
	}

	e := &entry{
		key:     key,
		value:   append([]byte(nil), value...),
		size:    size,
		expires: c.now().Add(ttl),
	}
	e.elem = c.order.PushFront(e)
	c.entries[key] = e
	c.used += size
	return nil
}

// Delete removes one key.
func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok {
		c.removeLocked(e)
	}
	return nil
}

// Clear removes every key starting with prefix. An empty prefix clears all.
func (c *MemoryCache) Clear(_ context.Context, prefix string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var removed int
	for key, e := range c.entries {
		if strings.HasPrefix(key, prefix) {
			c.removeLocked(e)
			removed++
		}
	}
	if removed > 0 {
		c.logger.Debug("Cleared cache entries",
			zap.String("prefix", prefix),
			zap.Int("count", removed),
		)
	}
	return nil
}

// Stats returns the current counters.
func (c *MemoryCache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	var rate float64
	if total := c.hits + c.misses; total > 0 {
		rate = float64(c.hits) / float64(total)
	}
	return Stats{
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
		Items:     len(c.entries),
		Bytes:     c.used,
		HitRate:   rate,
	}
}

// Run sweeps expired entries every interval until ctx ends.
func (c *MemoryCache) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.sweep()
		}
	}
}

func (c *MemoryCache) sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	var removed int
	for _, e := range c.entries {
		if !now.Before(e.expires) {
			c.removeLocked(e)
			removed++
		}
	}
	if removed > 0 {
		c.logger.Debug("Swept expired cache entries", zap.Int("count", removed))
	}
	return removed
}

func (c *MemoryCache) removeLocked(e *entry) {
	c.order.Remove(e.elem)
	delete(c.entries, e.key)
	c.used -= e.size
}
