// SPDX-FileCopyrightText: 2025 Deutsche Telekom AG
//
// SPDX-License-Identifier: Apache-2.0

package dedup

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/telekom/notification-service/pkg/metrics"
)

// Key identifies a (recipients, subject, body) combination.
type Key uint64

func (k Key) String() string { return strconv.FormatUint(uint64(k), 16) }

// Fingerprint derives the dedup key of a mail. Fields are separated by a NUL
// byte so that shifting characters between fields changes the key.
func Fingerprint(address, subject, body string) Key {
	d := xxhash.New()
	_, _ = d.WriteString(address)
	_, _ = d.Write([]byte{0})
	_, _ = d.WriteString(subject)
	_, _ = d.Write([]byte{0})
	_, _ = d.WriteString(body)
	return Key(d.Sum64())
}

// Option configures a Cache.
type Option func(*Cache)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// Cache is a set of keys with per-entry expiry. Safe for concurrent use.
type Cache struct {
	mu      sync.Mutex
	entries map[Key]time.Time
	now     func() time.Time
}

func NewCache(opts ...Option) *Cache {
	c := &Cache{
		entries: make(map[Key]time.Time),
		now:     time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Exists reports whether key is present and not yet expired.
// An expired entry found here is removed.
func (c *Cache) Exists(key Key) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	exp, ok := c.entries[key]
	if !ok {
		return false
	}
	if c.now().Before(exp) {
		return true
	}
	delete(c.entries, key)
	metrics.DedupCacheEntries.Set(float64(len(c.entries)))
	return false
}

// Add inserts key, or refreshes it, expiring ttl from now.
func (c *Cache) Add(key Key, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = c.now().Add(ttl)
	metrics.DedupCacheEntries.Set(float64(len(c.entries)))
}

// Purge removes all expired entries and returns how many were removed.
func (c *Cache) Purge() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	removed := 0
	for k, exp := range c.entries {
		if !now.Before(exp) {
			delete(c.entries, k)
			removed++
		}
	}
	metrics.DedupCacheEntries.Set(float64(len(c.entries)))
	if removed > 0 {
		metrics.DedupCachePurged.Add(float64(removed))
	}
	return removed
}

// Len returns the number of entries, including expired ones not yet purged.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Run purges expired entries every interval until ctx is done.
func (c *Cache) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.Purge()
		}
	}
}
