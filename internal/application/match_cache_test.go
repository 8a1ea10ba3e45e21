package application

import (
	"testing"
	"time"

	"github.com/example/internship-portal/internal/matching"
)

func scored(title string, skills ...string) matching.ScoredOpportunity {
	return matching.ScoredOpportunity{
		Opportunity:   matching.Opportunity{Title: title},
		MatchedSkills: skills,
	}
}

func TestMatchCacheStoresAndReturnsCopies(t *testing.T) {
	fixed := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	current := fixed
	cache := newMatchCache(time.Minute, 4, func() time.Time { return current })

	original := []matching.ScoredOpportunity{scored("a", "python")}
	cache.Store("key", original)

	// Mutating the stored slice must not reach the cache.
	original[0].Title = "mutated"
	original[0].MatchedSkills[0] = "mutated"

	cached, ok := cache.Get("key")
	if !ok {
		t.Fatalf("expected cache hit")
	}
	if cached[0].Title != "a" || cached[0].MatchedSkills[0] != "python" {
		t.Fatalf("expected cached entry to remain unchanged, got %+v", cached[0])
	}

	cached[0].MatchedSkills[0] = "changed"
	again, ok := cache.Get("key")
	if !ok {
		t.Fatalf("expected cache hit on second read")
	}
	if again[0].MatchedSkills[0] != "python" {
		t.Fatalf("expected cache to return independent copy, got %s", again[0].MatchedSkills[0])
	}
}

func TestMatchCacheKeepsEmptyResults(t *testing.T) {
	cache := newMatchCache(time.Minute, 4, time.Now)
	cache.Store("none", []matching.ScoredOpportunity{})
	got, ok := cache.Get("none")
	if !ok || got == nil || len(got) != 0 {
		t.Fatalf("expected cached empty non-nil result, got %v %v", got, ok)
	}
}

func TestMatchCacheExpiresEntries(t *testing.T) {
	current := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	cache := newMatchCache(time.Second, 4, func() time.Time { return current })

	cache.Store("key", []matching.ScoredOpportunity{scored("a")})
	if _, ok := cache.Get("key"); !ok {
		t.Fatalf("expected cache hit before expiry")
	}

	current = current.Add(2 * time.Second)
	if _, ok := cache.Get("key"); ok {
		t.Fatalf("expected cache entry to expire")
	}
}

func TestMatchCacheEvictsOldestWhenFull(t *testing.T) {
	current := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	cache := newMatchCache(time.Minute, 2, func() time.Time { return current })

	cache.Store("first", nil)
	current = current.Add(time.Second)
	cache.Store("second", nil)
	current = current.Add(time.Second)
	cache.Store("third", nil)

	if cache.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", cache.Len())
	}
	if _, ok := cache.Get("first"); ok {
		t.Fatalf("expected oldest entry to be evicted")
	}
}

func TestMatchCacheInvalidate(t *testing.T) {
	cache := newMatchCache(time.Minute, 4, time.Now)
	cache.Store("key", []matching.ScoredOpportunity{scored("a")})
	cache.Invalidate()
	if _, ok := cache.Get("key"); ok {
		t.Fatalf("expected cache to be empty after invalidation")
	}
}
