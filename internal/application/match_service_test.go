package application_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/example/internship-portal/internal/application"
	"github.com/example/internship-portal/internal/matching"
	"github.com/example/internship-portal/internal/testfixtures"
)

type matchMetricsRecorder struct {
	mu       sync.Mutex
	outcomes []string
	cached   []bool
}

func (m *matchMetricsRecorder) MatchServed(outcome string, _ int, cached bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outcomes = append(m.outcomes, outcome)
	m.cached = append(m.cached, cached)
}

func TestMatchService_Match(t *testing.T) {
	t.Parallel()

	t.Run("caches identical queries", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()
		metrics := &matchMetricsRecorder{}
		service := testfixtures.NewServiceFactory().NewMatchService(testfixtures.MatchServiceDeps{Metrics: metrics})

		first, err := service.Match(ctx, testfixtures.ReferenceQuery())
		if err != nil {
			t.Fatalf("Match: %v", err)
		}
		if first.Cached || len(first.Results) != 2 || first.Results[0].Title != "Data Science Intern @ Google" {
			t.Fatalf("unexpected first result %+v", first)
		}

		second, err := service.Match(ctx, testfixtures.ReferenceQuery())
		if err != nil {
			t.Fatalf("Match: %v", err)
		}
		if !second.Cached || len(second.Results) != len(first.Results) {
			t.Fatalf("expected cached repeat, got %+v", second)
		}

		second.Results[0].MatchedSkills[0] = "mutated"
		third, _ := service.Match(ctx, testfixtures.ReferenceQuery())
		if third.Results[0].MatchedSkills[0] == "mutated" {
			t.Fatalf("cache leaked a shared slice")
		}

		if len(metrics.outcomes) != 3 || metrics.outcomes[0] != application.MatchOutcomeMatched || metrics.cached[0] || !metrics.cached[1] {
			t.Fatalf("unexpected metrics %v %v", metrics.outcomes, metrics.cached)
		}
	})

	t.Run("cache expires with the clock", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()
		factory := testfixtures.NewServiceFactory()
		service := factory.NewMatchService(testfixtures.MatchServiceDeps{CacheTTL: time.Minute})

		if _, err := service.Match(ctx, testfixtures.ReferenceQuery()); err != nil {
			t.Fatalf("Match: %v", err)
		}
		factory.Clock.Advance(2 * time.Minute)
		again, err := service.Match(ctx, testfixtures.ReferenceQuery())
		if err != nil || again.Cached {
			t.Fatalf("expected fresh result after ttl, got %+v %v", again, err)
		}
	})

	t.Run("rejects incomplete queries", func(t *testing.T) {
		t.Parallel()
		metrics := &matchMetricsRecorder{}
		service := testfixtures.NewServiceFactory().NewMatchService(testfixtures.MatchServiceDeps{Metrics: metrics})

		raw := testfixtures.ReferenceQuery()
		raw.Location = "  "
		_, err := service.Match(context.Background(), raw)
		if !errors.Is(err, matching.ErrQueryIncomplete) {
			t.Fatalf("expected ErrQueryIncomplete, got %v", err)
		}
		if application.ErrorKind(err) != "query_incomplete" {
			t.Fatalf("unexpected kind %q", application.ErrorKind(err))
		}
		if len(metrics.outcomes) != 1 || metrics.outcomes[0] != application.MatchOutcomeIncomplete {
			t.Fatalf("unexpected metrics %v", metrics.outcomes)
		}
	})

	t.Run("empty results are not an error", func(t *testing.T) {
		t.Parallel()
		service := testfixtures.NewServiceFactory().NewMatchService(testfixtures.MatchServiceDeps{})

		raw := testfixtures.ReferenceQuery()
		raw.Qualification = "diploma"
		got, err := service.Match(context.Background(), raw)
		if err != nil {
			t.Fatalf("Match: %v", err)
		}
		if got.Results == nil || len(got.Results) != 0 {
			t.Fatalf("expected empty non-nil results, got %#v", got.Results)
		}
	})
}

const googleTitle = "Data Science Intern @ Google"

func TestMatchService_SetUsedInvalidatesCache(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	service := testfixtures.NewServiceFactory().NewMatchService(testfixtures.MatchServiceDeps{})

	if _, err := service.Match(ctx, testfixtures.ReferenceQuery()); err != nil {
		t.Fatalf("Match: %v", err)
	}
	if err := service.SetUsed(ctx, googleTitle, 3); err != nil {
		t.Fatalf("SetUsed: %v", err)
	}

	got, err := service.Match(ctx, testfixtures.ReferenceQuery())
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	if got.Cached {
		t.Fatalf("expected cache invalidated by counter change")
	}
	if len(got.Results) != 1 || got.Results[0].Title != "AI Research Intern @ IBM" {
		t.Fatalf("expected exhausted Google dropped, got %+v", got.Results)
	}

	if err := service.SetUsed(ctx, "Nowhere", 1); !errors.Is(err, matching.ErrUnknownOpportunity) {
		t.Fatalf("expected ErrUnknownOpportunity, got %v", err)
	}
	if err := service.SetUsed(ctx, "AI Research Intern @ IBM", 2); !errors.Is(err, matching.ErrCapacityExceeded) {
		t.Fatalf("expected ErrCapacityExceeded, got %v", err)
	}

	for _, listing := range service.Listings(ctx) {
		if listing.Title == googleTitle && listing.Remaining != 0 {
			t.Fatalf("expected Google exhausted, got %+v", listing)
		}
	}
}
