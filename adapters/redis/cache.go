// Package redis provides a session cache shared between arena instances.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/lborres/arena/core"
)

const (
	defaultPrefix = "arena:session:"
	defaultTTL    = 5 * time.Minute
	scanBatch     = 100
)

var _ core.CacheWithStats = (*Cache)(nil)

// Cache stores sessions as JSON under a key prefix. Entries expire after
// the configured TTL or when the session itself expires, whichever is first.
type Cache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	now    func() time.Time

	hits    atomic.Int64
	misses  atomic.Int64
	sets    atomic.Int64
	deletes atomic.Int64
}

// cachedSession carries the hashes that core.Session hides from JSON
type cachedSession struct {
	core.Session
	TokenHash   string `json:"tokenHash"`
	RefreshHash string `json:"refreshHash"`
}

type Option func(*Cache)

func WithPrefix(prefix string) Option {
	return func(c *Cache) { c.prefix = prefix }
}

func New(client *redis.Client, config core.CacheConfig, opts ...Option) *Cache {
	ttl := config.TTL
	if ttl <= 0 {
		ttl = defaultTTL
	}
	c := &Cache{
		client: client,
		prefix: defaultPrefix,
		ttl:    ttl,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Connect dials addr and verifies the server answers a ping
func Connect(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}

func (c *Cache) key(tokenHash string) string {
	return c.prefix + tokenHash
}

func (c *Cache) Get(ctx context.Context, tokenHash string) (*core.Session, error) {
	raw, err := c.client.Get(ctx, c.key(tokenHash)).Bytes()
	if errors.Is(err, redis.Nil) {
		c.misses.Add(1)
		return nil, core.ErrCacheNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var entry cachedSession
	if err := json.Unmarshal(raw, &entry); err != nil {
		c.misses.Add(1)
		_ = c.client.Del(ctx, c.key(tokenHash)).Err()
		return nil, core.ErrCacheNotFound
	}

	c.hits.Add(1)
	session := entry.Session
	session.TokenHash = entry.TokenHash
	session.RefreshHash = entry.RefreshHash
	return &session, nil
}

func (c *Cache) Set(ctx context.Context, tokenHash string, session *core.Session) error {
	ttl := c.ttl
	if remaining := session.ExpiresAt.Sub(c.now()); remaining < ttl {
		if remaining <= 0 {
			return nil
		}
		ttl = remaining
	}

	raw, err := json.Marshal(cachedSession{
		Session:     *session,
		TokenHash:   session.TokenHash,
		RefreshHash: session.RefreshHash,
	})
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := c.client.Set(ctx, c.key(tokenHash), raw, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	c.sets.Add(1)
	return nil
}

func (c *Cache) Delete(ctx context.Context, tokenHash string) error {
	n, err := c.client.Del(ctx, c.key(tokenHash)).Result()
	if err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	c.deletes.Add(n)
	return nil
}

// Clear removes every key under the cache prefix
func (c *Cache) Clear(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, c.prefix+"*", scanBatch).Iterator()
	batch := make([]string, 0, scanBatch)
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == scanBatch {
			if err := c.client.Del(ctx, batch...).Err(); err != nil {
				return fmt.Errorf("redis del: %w", err)
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis scan: %w", err)
	}
	if len(batch) > 0 {
		if err := c.client.Del(ctx, batch...).Err(); err != nil {
			return fmt.Errorf("redis del: %w", err)
		}
	}
	return nil
}

// Stats reports counters for this process only. Size is left at zero since
// the keyspace is shared.
func (c *Cache) Stats() core.CacheStats {
	return core.CacheStats{
		Hits:    c.hits.Load(),
		Misses:  c.misses.Load(),
		Sets:    c.sets.Load(),
		Deletes: c.deletes.Load(),
		TTL:     c.ttl,
	}
}
