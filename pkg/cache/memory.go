package cache

import (
	"context"
	"sync"
	"time"
)

// MemoryCache keeps entries in process memory. When it is full, an expired
// entry is evicted if there is one, otherwise the least recently written.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]memEntry
	max     int
	seq     uint64
	now     func() time.Time
}

type memEntry struct {
	data      []byte
	expiresAt time.Time
	seq       uint64
}

// DefaultMemoryEntries bounds a MemoryCache created with max <= 0.
const DefaultMemoryEntries = 1024

// NewMemoryCache creates an in-memory cache holding at most max entries.
func NewMemoryCache(max int) *MemoryCache {
	if max <= 0 {
		max = DefaultMemoryEntries
	}
	return &MemoryCache{entries: make(map[string]memEntry), max: max, now: time.Now}
}

func (c *MemoryCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, false, nil
	}
	if !e.expiresAt.IsZero() && c.now().After(e.expiresAt) {
		delete(c.entries, key)
		return nil, false, nil
	}
	return append([]byte(nil), e.data...), true, nil
}

func (c *MemoryCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.max {
		c.evictLocked()
	}
	c.seq++
	e := memEntry{data: append([]byte(nil), data...), seq: c.seq}
	if ttl > 0 {
		e.expiresAt = c.now().Add(ttl)
	}
	c.entries[key] = e
	return nil
}

func (c *MemoryCache) evictLocked() {
	now := c.now()
	var victim string
	var best memEntry
	first := true
	for k, e := range c.entries {
		if !e.expiresAt.IsZero() && now.After(e.expiresAt) {
			delete(c.entries, k)
			return
		}
		if first || e.seq < best.seq {
			victim, best, first = k, e, false
		}
	}
	delete(c.entries, victim)
}

func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	return nil
}

func (c *MemoryCache) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.entries)
	return nil
}

// Len returns the number of stored entries, expired ones included.
func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *MemoryCache) Close() error { return nil }

var (
	_ Cache   = (*MemoryCache)(nil)
	_ Clearer = (*MemoryCache)(nil)
)
