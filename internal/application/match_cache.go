package application

import (
	"slices"
	"sync"
	"time"

	"github.com/example/internship-portal/internal/matching"
)

// matchCache keeps recent match results keyed by normalized query. Any
// change to capacity counters invalidates it.
type matchCache struct {
	mu         sync.RWMutex
	now        func() time.Time
	ttl        time.Duration
	maxEntries int
	entries    map[string]matchCacheEntry
}

type matchCacheEntry struct {
	results   []matching.ScoredOpportunity
	expiresAt time.Time
}

func newMatchCache(ttl time.Duration, maxEntries int, now func() time.Time) *matchCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	if maxEntries <= 0 {
		maxEntries = 128
	}
	if now == nil {
		now = time.Now
	}
	return &matchCache{
		now:        now,
		ttl:        ttl,
		maxEntries: maxEntries,
		entries:    make(map[string]matchCacheEntry),
	}
}

func (c *matchCache) Get(key string) ([]matching.ScoredOpportunity, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if c.now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, false
	}
	return cloneResults(entry.results), true
}

func (c *matchCache) Store(key string, results []matching.ScoredOpportunity) {
	if c == nil {
		return
	}
	cloned := cloneResults(results)
	expiry := c.now().Add(c.ttl)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.cleanupLocked()
	if len(c.entries) >= c.maxEntries {
		c.evictOneLocked()
	}
	c.entries[key] = matchCacheEntry{results: cloned, expiresAt: expiry}
}

func (c *matchCache) Invalidate() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.entries = make(map[string]matchCacheEntry)
	c.mu.Unlock()
}

func (c *matchCache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *matchCache) cleanupLocked() {
	now := c.now()
	for key, entry := range c.entries {
		if now.After(entry.expiresAt) {
			delete(c.entries, key)
		}
	}
}

func (c *matchCache) evictOneLocked() {
	var oldestKey string
	var oldest time.Time
	for key, entry := range c.entries {
		if oldestKey == "" || entry.expiresAt.Before(oldest) {
			oldestKey, oldest = key, entry.expiresAt
		}
	}
	delete(c.entries, oldestKey)
}

func cloneResults(results []matching.ScoredOpportunity) []matching.ScoredOpportunity {
	if results == nil {
		return nil
	}
	out := make([]matching.ScoredOpportunity, len(results))
	for i, r := range results {
		r.RequiredSkills = slices.Clone(r.RequiredSkills)
		r.Sectors = slices.Clone(r.Sectors)
		r.EligibleCategories = slices.Clone(r.EligibleCategories)
		r.MatchedSkills = slices.Clone(r.MatchedSkills)
		out[i] = r
	}
	return out
}
