package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lborres/arena/core"
)

const (
	defaultTTL     = 5 * time.Minute
	defaultMaxSize = 500
)

var _ core.CacheWithStats = (*InMemoryCache)(nil)

// InMemoryCache implements an in-process session cache keyed by token hash
type InMemoryCache struct {
	entries map[string]*cachedRecord
	mu      sync.RWMutex
	ttl     time.Duration
	maxSize int
	now     func() time.Time

	// counters
	hits      atomic.Int64
	misses    atomic.Int64
	sets      atomic.Int64
	deletes   atomic.Int64
	evictions atomic.Int64
}

type cachedRecord struct {
	session  *core.Session
	cachedAt time.Time
}

func NewInMemoryCache(c core.CacheConfig) *InMemoryCache {
	if c.TTL == 0 {
		c.TTL = defaultTTL
	}
	if c.MaxSize == 0 {
		c.MaxSize = defaultMaxSize
	}

	return &InMemoryCache{
		entries: make(map[string]*cachedRecord),
		ttl:     c.TTL,
		maxSize: c.MaxSize,
		now:     time.Now,
	}
}

func (c *InMemoryCache) Get(_ context.Context, tokenHash string) (*core.Session, error) {
	c.mu.RLock()
	record, exists := c.entries[tokenHash]
	c.mu.RUnlock()

	if !exists {
		c.misses.Add(1)
		return nil, core.ErrCacheNotFound
	}

	if c.now().Sub(record.cachedAt) > c.ttl {
		c.misses.Add(1)
		c.remove(tokenHash, record)
		return nil, core.ErrCacheNotFound
	}

	c.hits.Add(1)
	return record.session, nil
}

// remove drops key only if it still maps to record, so a concurrent Set is
// never undone by a stale expiry.
func (c *InMemoryCache) remove(key string, record *cachedRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if current, ok := c.entries[key]; ok && current == record {
		delete(c.entries, key)
		c.evictions.Add(1)
	}
}

func (c *InMemoryCache) Set(_ context.Context, tokenHash string, session *core.Session) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[tokenHash]; !exists && len(c.entries) >= c.maxSize {
		c.evictOldestLocked()
	}

	c.entries[tokenHash] = &cachedRecord{
		session:  session,
		cachedAt: c.now(),
	}

	c.sets.Add(1)
	return nil
}

func (c *InMemoryCache) evictOldestLocked() {
	var oldestKey string
	var oldest time.Time
	for k, r := range c.entries {
		if oldestKey == "" || r.cachedAt.Before(oldest) {
			oldestKey, oldest = k, r.cachedAt
		}
	}
	if oldestKey != "" {
		delete(c.entries, oldestKey)
		c.evictions.Add(1)
	}
}

func (c *InMemoryCache) Delete(_ context.Context, tokenHash string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, existed := c.entries[tokenHash]; existed {
		delete(c.entries, tokenHash)
		c.deletes.Add(1)
	}
	return nil
}

func (c *InMemoryCache) Clear(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*cachedRecord)
	return nil
}

func (c *InMemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *InMemoryCache) Stats() core.CacheStats {
	return core.CacheStats{
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Sets:      c.sets.Load(),
		Deletes:   c.deletes.Load(),
		Evictions: c.evictions.Load(),
		Size:      c.Len(),
		TTL:       c.ttl,
	}
}
