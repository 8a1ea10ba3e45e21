package application

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/example/internship-portal/internal/clock"
	"github.com/example/internship-portal/internal/matching"
)

// DefaultMatchCacheTTL bounds how long identical queries reuse results.
const DefaultMatchCacheTTL = 30 * time.Second

// Match outcomes reported to MatchMetrics.
const (
	MatchOutcomeMatched    = "matched"
	MatchOutcomeEmpty      = "empty"
	MatchOutcomeIncomplete = "incomplete"
)

// MatchResult is the ranked output of a match request.
type MatchResult struct {
	Results []matching.ScoredOpportunity `json:"results"`
	Cached  bool                         `json:"cached"`
}

// MatchService wraps the matching engine with caching, logging and metrics.
type MatchService struct {
	engine  *matching.Engine
	cache   *matchCache
	metrics MatchMetrics
	logger  *slog.Logger
}

// NewMatchService constructs a MatchService over engine.
func NewMatchService(engine *matching.Engine, clk clock.Clock, cacheTTL time.Duration, metrics MatchMetrics, logger *slog.Logger) *MatchService {
	if metrics == nil {
		metrics = nopMetrics{}
	}
	clk = clock.OrReal(clk)
	return &MatchService{
		engine:  engine,
		cache:   newMatchCache(cacheTTL, 0, clk.Now),
		metrics: metrics,
		logger:  defaultLogger(logger),
	}
}

func (s *MatchService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "MatchService", operation, attrs...)
}

// Match validates raw and returns the ranked opportunities it is eligible
// for. Incomplete queries fail with matching.ErrQueryIncomplete.
func (s *MatchService) Match(ctx context.Context, raw matching.RawQuery) (result MatchResult, err error) {
	logger := s.loggerWith(ctx, "Match")
	defer func() {
		if err != nil {
			if errors.Is(err, matching.ErrQueryIncomplete) {
				s.metrics.MatchServed(MatchOutcomeIncomplete, 0, false)
			}
			logger.WarnContext(ctx, "match rejected", "error", err, "error_kind", ErrorKind(err))
			return
		}
		outcome := MatchOutcomeMatched
		if len(result.Results) == 0 {
			outcome = MatchOutcomeEmpty
		}
		s.metrics.MatchServed(outcome, len(result.Results), result.Cached)
		logger.With(
			"results", len(result.Results),
			"cached", result.Cached,
		).InfoContext(ctx, "match served")
	}()

	var query matching.Query
	query, err = matching.ParseQuery(raw)
	if err != nil {
		return
	}

	key := query.Key()
	if cached, ok := s.cache.Get(key); ok {
		result = MatchResult{Results: cached, Cached: true}
		return
	}

	results := s.engine.Match(query)
	s.cache.Store(key, results)
	result = MatchResult{Results: results}
	return
}

// Listings returns the catalog with current counters.
func (s *MatchService) Listings(ctx context.Context) []matching.Listing {
	return s.engine.Catalog()
}

// SetUsed updates a capacity counter and drops cached results.
func (s *MatchService) SetUsed(ctx context.Context, title string, used int) error {
	if err := s.engine.SetUsed(title, used); err != nil {
		s.loggerWith(ctx, "SetUsed", "title", title).WarnContext(ctx, "counter update rejected", "error", err, "error_kind", ErrorKind(err))
		return err
	}
	s.cache.Invalidate()
	s.loggerWith(ctx, "SetUsed", "title", title, "used", used).InfoContext(ctx, "counter updated")
	return nil
}
