// Package query holds fetched report payloads for a staleness window and
// tracks the loading/success/error status of a report page's request.
package query

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Fetcher loads a fresh value.
type Fetcher func(ctx context.Context) (any, error)

// Cache keeps successful fetches until their TTL runs out and collapses
// concurrent fetches of the same key into one. Errors are never cached.
// Invalidation also detaches fetches in flight: their result still reaches
// the callers already waiting but is not stored.
type Cache struct {
	mu       sync.RWMutex
	entries  map[string]*cacheEntry
	inflight map[string]uint64
	seq      uint64
	ttl      time.Duration
	group    singleflight.Group
	now      func() time.Time
}

type cacheEntry struct {
	value     any
	fetchedAt time.Time
	expiresAt time.Time
}

// NewCache creates a cache whose entries live for ttl unless Fetch overrides it.
// A ttl of zero disables caching but keeps deduplication.
func NewCache(ttl time.Duration) *Cache {
	return &Cache{
		entries:  make(map[string]*cacheEntry),
		inflight: make(map[string]uint64),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Key joins the parts of a cache key. Secret parts such as tokens should be
// passed through Fingerprint first.
func Key(parts ...string) string { return strings.Join(parts, "|") }

// Fingerprint returns a short stable digest of s.
func Fingerprint(s string) string {
	if s == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:8])
}

// Get returns a fresh cached value.
func (c *Cache) Get(key string) (any, time.Time, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok || !c.now().Before(e.expiresAt) {
		return nil, time.Time{}, false
	}
	return e.value, e.fetchedAt, true
}

// Fetch returns the cached value for key or runs fetch. ttl <= 0 uses the
// cache default. The shared fetch outlives the caller's cancellation so
// other waiters still get the result; the caller itself returns ctx.Err().
func (c *Cache) Fetch(ctx context.Context, key string, ttl time.Duration, fetch Fetcher) (any, time.Time, error) {
	if v, at, ok := c.Get(key); ok {
		return v, at, nil
	}
	if ttl <= 0 {
		ttl = c.ttl
	}
	detached := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (any, error) {
		c.mu.Lock()
		c.seq++
		id := c.seq
		c.inflight[key] = id
		c.mu.Unlock()

		v, err := fetch(detached)

		c.mu.Lock()
		defer c.mu.Unlock()
		current := c.inflight[key] == id
		if current {
			delete(c.inflight, key)
		}
		if err != nil {
			return nil, err
		}
		e := &cacheEntry{value: v, fetchedAt: c.now()}
		e.expiresAt = e.fetchedAt.Add(ttl)
		if ttl > 0 && current {
			c.entries[key] = e
		}
		return e, nil
	})
	select {
	case <-ctx.Done():
		return nil, time.Time{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, time.Time{}, res.Err
		}
		e := res.Val.(*cacheEntry)
		return e.value, e.fetchedAt, nil
	}
}

// Invalidate removes one key.
func (c *Cache) Invalidate(key string) {
	c.invalidate(func(k string) bool { return k == key })
}

// InvalidatePrefix removes every key starting with prefix.
func (c *Cache) InvalidatePrefix(prefix string) {
	c.invalidate(func(k string) bool { return strings.HasPrefix(k, prefix) })
}

// invalidate drops matching entries and forgets matching fetches in flight,
// so the next caller starts a new fetch and the old one never stores.
func (c *Cache) invalidate(match func(string) bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.entries {
		if match(k) {
			delete(c.entries, k)
		}
	}
	for k := range c.inflight {
		if match(k) {
			delete(c.inflight, k)
			c.group.Forget(k)
		}
	}
}

func (c *Cache) size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
