// FlowSense - Wellbeing Trend & Performance Analytics
// Copyright 2026 FlowSense contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/flowsense/engine

package dashboard

import (
	"sync"
	"time"

	"github.com/flowsense/engine/internal/analytics"
	"github.com/flowsense/engine/internal/metrics"
)

// Default cache timings. Freshness governs read decisions; max age governs
// the eviction sweep. The two are independent on purpose: a stale entry is
// kept around as an overwrite target until the sweep removes it.
const (
	DefaultFreshness = 15 * time.Minute
	DefaultMaxAge    = 2 * time.Hour
)

// Key identifies one cached dashboard.
type Key struct {
	UserID string
	Period analytics.Period
	Mode   analytics.Mode
}

// cacheEntry pairs an immutable dashboard with its store time.
type cacheEntry struct {
	data     *Data
	storedAt time.Time
}

// CacheStats is a snapshot of cache counters.
type CacheStats struct {
	Hits      int64 `json:"hits"`
	Misses    int64 `json:"misses"`
	Evictions int64 `json:"evictions"`
	Entries   int   `json:"entries"`
}

// ResultCache is a thread-safe in-memory cache of assembled dashboards.
// Entry replacement is a single map assignment under the write lock, so
// readers always observe a complete dashboard, never a partial one.
type ResultCache struct {
	mu        sync.RWMutex
	entries   map[Key]cacheEntry
	freshness time.Duration
	maxAge    time.Duration

	statsMu   sync.Mutex
	hits      int64
	misses    int64
	evictions int64
}

// CacheOptions configures a ResultCache. Zero values fall back to the
// defaults.
type CacheOptions struct {
	Freshness time.Duration
	MaxAge    time.Duration
}

// NewResultCache creates an empty cache. The eviction sweep is driven
// externally (by the janitor service), not by an internal timer, so the
// owner controls its lifecycle.
func NewResultCache(opts CacheOptions) *ResultCache {
	if opts.Freshness <= 0 {
		opts.Freshness = DefaultFreshness
	}
	if opts.MaxAge <= 0 {
		opts.MaxAge = DefaultMaxAge
	}
	return &ResultCache{
		entries:   make(map[Key]cacheEntry),
		freshness: opts.Freshness,
		maxAge:    opts.MaxAge,
	}
}

// Get returns the cached dashboard for key if the entry is still fresh.
// Stale entries are left in place for the sweep; they count as misses.
func (c *ResultCache) Get(key Key) (*Data, bool) {
	c.mu.RLock()
	entry, exists := c.entries[key]
	c.mu.RUnlock()

	if !exists || time.Since(entry.storedAt) > c.freshness {
		c.recordMiss()
		return nil, false
	}

	c.recordHit()
	return entry.data, true
}

// Put stores a dashboard under key, overwriting any previous entry. The
// last writer wins; both racing values are internally consistent.
func (c *ResultCache) Put(key Key, data *Data) {
	c.mu.Lock()
	c.entries[key] = cacheEntry{data: data, storedAt: time.Now()}
	size := len(c.entries)
	c.mu.Unlock()

	metrics.CacheSize.Set(float64(size))
}

// Invalidate removes the entry for key, if any. Used when new raw entries
// arrive for a user and the cached dashboard is known to be outdated.
func (c *ResultCache) Invalidate(key Key) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// InvalidateUser removes every entry belonging to userID across all periods
// and modes.
func (c *ResultCache) InvalidateUser(userID string) {
	c.mu.Lock()
	for key := range c.entries {
		if key.UserID == userID {
			delete(c.entries, key)
		}
	}
	size := len(c.entries)
	c.mu.Unlock()

	metrics.CacheSize.Set(float64(size))
}

// Sweep removes every entry older than max age, regardless of freshness,
// and returns the number evicted. Called periodically by the janitor.
func (c *ResultCache) Sweep() int {
	now := time.Now()

	c.mu.Lock()
	evicted := 0
	for key, entry := range c.entries {
		if now.Sub(entry.storedAt) > c.maxAge {
			delete(c.entries, key)
			evicted++
		}
	}
	size := len(c.entries)
	c.mu.Unlock()

	if evicted > 0 {
		c.statsMu.Lock()
		c.evictions += int64(evicted)
		c.statsMu.Unlock()
		metrics.CacheEvictions.Add(float64(evicted))
	}
	metrics.CacheSize.Set(float64(size))
	return evicted
}

// Contains reports whether any entry (fresh or stale) exists for key. It
// does not touch hit/miss counters.
func (c *ResultCache) Contains(key Key) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.entries[key]
	return ok
}

// Stats returns a snapshot of the cache counters.
func (c *ResultCache) Stats() CacheStats {
	c.mu.RLock()
	entries := len(c.entries)
	c.mu.RUnlock()

	c.statsMu.Lock()
	defer c.statsMu.Unlock()
	return CacheStats{
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
		Entries:   entries,
	}
}

func (c *ResultCache) recordHit() {
	c.statsMu.Lock()
	c.hits++
	c.statsMu.Unlock()
	metrics.CacheHits.Inc()
}

func (c *ResultCache) recordMiss() {
	c.statsMu.Lock()
	c.misses++
	c.statsMu.Unlock()
	metrics.CacheMisses.Inc()
}
