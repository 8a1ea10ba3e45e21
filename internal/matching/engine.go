// Package matching filters and ranks a fixed catalog of internship
// opportunities against a candidate query.
package matching

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"
)

// Opportunity is a catalog entry. Title is its unique key.
type Opportunity struct {
	Title              string   `json:"title" yaml:"title"`
	RequiredSkills     []string `json:"requiredSkills" yaml:"required_skills"`
	Description        string   `json:"description" yaml:"description"`
	Capacity           int      `json:"capacity" yaml:"capacity"`
	Location           string   `json:"location" yaml:"location"`
	Sectors            []string `json:"sectors" yaml:"sectors"`
	EligibleCategories []string `json:"eligibleCategories" yaml:"eligible_categories"`
	RestrictedQuota    bool     `json:"restrictedQuota" yaml:"restricted_quota"`
	RepeatAllowed      bool     `json:"repeatAllowed" yaml:"repeat_allowed"`
}

// RawQuery carries the form values exactly as the caller received them.
type RawQuery struct {
	Skills            string `json:"skills"`
	Qualification     string `json:"qualification"`
	Location          string `json:"location"`
	Sectors           string `json:"sectors"`
	SocialCategory    string `json:"socialCategory"`
	PastParticipation string `json:"pastParticipation"`
}

// Query is a normalized candidate profile.
type Query struct {
	Skills            []string
	Qualification     string
	Location          string
	Sectors           []string
	SocialCategory    string
	PastParticipation bool
}

// ScoredOpportunity is a surviving catalog entry with its ranking data.
type ScoredOpportunity struct {
	Opportunity
	Score             float64  `json:"skillScore"`
	MatchedSkills     []string `json:"matchedSkills"`
	RemainingCapacity int      `json:"remainingCapacity"`
}

// Listing pairs a catalog entry with its current counter.
type Listing struct {
	Opportunity
	Used      int `json:"used"`
	Remaining int `json:"remaining"`
}

const (
	// LocationAny matches every location category.
	LocationAny = "any"

	minQualificationRank = 2

	// IncompleteQueryMessage is the single blocking message shown for
	// ErrQueryIncomplete.
	IncompleteQueryMessage = "Please fill all fields."
)

var qualificationRanks = map[string]int{
	"diploma":  1,
	"bachelor": 2,
	"master":   3,
	"phd":      4,
	"other":    0,
}

// quotaLocations are the preferences that may claim a restricted-quota seat.
var quotaLocations = []string{"aspirational", "rural"}

var (
	// ErrQueryIncomplete indicates one or more required query fields are blank.
	ErrQueryIncomplete = errors.New("matching: query incomplete")
	// ErrUnknownOpportunity indicates a title that is not in the catalog.
	ErrUnknownOpportunity = errors.New("matching: unknown opportunity")
	// ErrCapacityExceeded indicates a used counter outside 0..capacity.
	ErrCapacityExceeded = errors.New("matching: used count outside capacity")
	// ErrInvalidCatalog indicates a catalog that cannot seed an engine.
	ErrInvalidCatalog = errors.New("matching: invalid catalog")
)

// QualificationRank returns the fixed rank of a qualification level. Unknown
// levels rank 0.
func QualificationRank(level string) int {
	return qualificationRanks[strings.ToLower(strings.TrimSpace(level))]
}

// ParseQuery validates and normalizes raw form values.
func ParseQuery(raw RawQuery) (Query, error) {
	fields := []string{raw.Skills, raw.Qualification, raw.Location, raw.Sectors, raw.SocialCategory, raw.PastParticipation}
	for _, f := range fields {
		if strings.TrimSpace(f) == "" {
			return Query{}, ErrQueryIncomplete
		}
	}

	q := Query{
		Skills:            splitList(raw.Skills),
		Qualification:     normalize(raw.Qualification),
		Location:          normalize(raw.Location),
		Sectors:           splitList(raw.Sectors),
		SocialCategory:    normalize(raw.SocialCategory),
		PastParticipation: normalize(raw.PastParticipation) == "yes",
	}
	return q, nil
}

// Key returns a canonical string for q, suitable for caching.
func (q Query) Key() string {
	return fmt.Sprintf("%s|%s|%s|%s|%s|%t",
		strings.Join(q.Skills, ","), q.Qualification, q.Location,
		strings.Join(q.Sectors, ","), q.SocialCategory, q.PastParticipation)
}

// Engine owns a catalog and its capacity counters.
type Engine struct {
	mu      sync.RWMutex
	catalog []Opportunity
	index   map[string]int
	used    map[string]int
}

// NewEngine seeds an engine with catalog. Titles must be unique and
// capacities non-negative. Counters start at zero.
func NewEngine(catalog []Opportunity) (*Engine, error) {
	e := &Engine{
		catalog: make([]Opportunity, 0, len(catalog)),
		index:   make(map[string]int, len(catalog)),
		used:    make(map[string]int, len(catalog)),
	}
	for _, o := range catalog {
		title := strings.TrimSpace(o.Title)
		if title == "" {
			return nil, fmt.Errorf("%w: entry without title", ErrInvalidCatalog)
		}
		if _, dup := e.index[title]; dup {
			return nil, fmt.Errorf("%w: duplicate title %q", ErrInvalidCatalog, title)
		}
		if o.Capacity < 0 {
			return nil, fmt.Errorf("%w: negative capacity for %q", ErrInvalidCatalog, title)
		}
		o.Title = title
		e.index[title] = len(e.catalog)
		e.catalog = append(e.catalog, cloneOpportunity(o))
		e.used[title] = 0
	}
	return e, nil
}

// SetUsed sets the consumed-slot counter for title.
func (e *Engine) SetUsed(title string, n int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	i, ok := e.index[title]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownOpportunity, title)
	}
	if n < 0 || n > e.catalog[i].Capacity {
		return fmt.Errorf("%w: %q used=%d capacity=%d", ErrCapacityExceeded, title, n, e.catalog[i].Capacity)
	}
	e.used[title] = n
	return nil
}

// Remaining reports the free slots for title.
func (e *Engine) Remaining(title string) (int, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	i, ok := e.index[title]
	if !ok {
		return 0, false
	}
	return e.catalog[i].Capacity - e.used[title], true
}

// Catalog returns every entry in catalog order with its counters.
func (e *Engine) Catalog() []Listing {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make([]Listing, 0, len(e.catalog))
	for _, o := range e.catalog {
		used := e.used[o.Title]
		out = append(out, Listing{Opportunity: cloneOpportunity(o), Used: used, Remaining: o.Capacity - used})
	}
	return out
}

// Match returns the opportunities q is eligible for, best skill overlap first.
//
// An entry survives only when every rule passes, checked in this order:
//   - it has remaining capacity;
//   - the query location is "any" or equals the entry location;
//   - at least one query sector equals an entry sector;
//   - the query social category is in the entry's eligible set;
//   - restricted-quota entries require an aspirational or rural preference;
//   - entries closed to repeat participants reject prior participants;
//   - the qualification ranks bachelor or above.
//
// Catalog text is compared case-insensitively. Ties keep catalog order. An
// empty result means nothing is eligible.
func (e *Engine) Match(q Query) []ScoredOpportunity {
	e.mu.RLock()
	defer e.mu.RUnlock()

	results := make([]ScoredOpportunity, 0, len(e.catalog))
	for _, o := range e.catalog {
		remaining := o.Capacity - e.used[o.Title]
		if remaining <= 0 {
			continue
		}
		if q.Location != LocationAny && !strings.EqualFold(q.Location, o.Location) {
			continue
		}
		if !overlaps(q.Sectors, o.Sectors) {
			continue
		}
		if !containsFold(o.EligibleCategories, q.SocialCategory) {
			continue
		}
		if o.RestrictedQuota && !slices.Contains(quotaLocations, q.Location) {
			continue
		}
		if !o.RepeatAllowed && q.PastParticipation {
			continue
		}
		if QualificationRank(q.Qualification) < minQualificationRank {
			continue
		}

		matched := make([]string, 0, len(o.RequiredSkills))
		for _, skill := range o.RequiredSkills {
			if slices.Contains(q.Skills, strings.ToLower(skill)) {
				matched = append(matched, skill)
			}
		}
		var score float64
		if len(o.RequiredSkills) > 0 {
			score = float64(len(matched)) / float64(len(o.RequiredSkills))
		}

		results = append(results, ScoredOpportunity{
			Opportunity:       cloneOpportunity(o),
			Score:             score,
			MatchedSkills:     matched,
			RemainingCapacity: remaining,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	return results
}

func overlaps(want, have []string) bool {
	for _, w := range want {
		if containsFold(have, w) {
			return true
		}
	}
	return false
}

func containsFold(values []string, target string) bool {
	return slices.ContainsFunc(values, func(v string) bool {
		return strings.EqualFold(strings.TrimSpace(v), target)
	})
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = normalize(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func cloneOpportunity(o Opportunity) Opportunity {
	o.RequiredSkills = slices.Clone(o.RequiredSkills)
	o.Sectors = slices.Clone(o.Sectors)
	o.EligibleCategories = slices.Clone(o.EligibleCategories)
	return o
}
