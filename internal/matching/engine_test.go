package matching

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"testing"
)

func referenceQuery() RawQuery {
	return RawQuery{
		Skills:            "python,statistics",
		Qualification:     "bachelor",
		Location:          "urban",
		Sectors:           "AI",
		SocialCategory:    "general",
		PastParticipation: "no",
	}
}

func newDefaultEngine(t *testing.T) *Engine {
	t.Helper()
	engine, err := NewEngine(DefaultCatalog())
	if err != nil {
		t.Fatalf("NewEngine returned error: %v", err)
	}
	return engine
}

func mustParse(t *testing.T, raw RawQuery) Query {
	t.Helper()
	q, err := ParseQuery(raw)
	if err != nil {
		t.Fatalf("ParseQuery returned error: %v", err)
	}
	return q
}

func titles(results []ScoredOpportunity) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.Title
	}
	return out
}

func TestParseQuery(t *testing.T) {
	t.Parallel()

	t.Run("normalizes lists and scalars", func(t *testing.T) {
		t.Parallel()
		q := mustParse(t, RawQuery{
			Skills:            " Python, ,Data Analysis ",
			Qualification:     " Master ",
			Location:          "ANY",
			Sectors:           "ai, Design",
			SocialCategory:    "OBC",
			PastParticipation: "Yes",
		})
		if got, want := q.Skills, []string{"python", "data analysis"}; !equalStrings(got, want) {
			t.Fatalf("skills = %v, want %v", got, want)
		}
		if got, want := q.Sectors, []string{"ai", "design"}; !equalStrings(got, want) {
			t.Fatalf("sectors = %v, want %v", got, want)
		}
		if q.Qualification != "master" || q.Location != "any" || q.SocialCategory != "obc" || !q.PastParticipation {
			t.Fatalf("unexpected normalized query: %+v", q)
		}
	})

	t.Run("any blank field is incomplete", func(t *testing.T) {
		t.Parallel()
		blanks := []func(*RawQuery){
			func(r *RawQuery) { r.Skills = "" },
			func(r *RawQuery) { r.Qualification = " " },
			func(r *RawQuery) { r.Location = "" },
			func(r *RawQuery) { r.Sectors = "\t" },
			func(r *RawQuery) { r.SocialCategory = "" },
			func(r *RawQuery) { r.PastParticipation = "" },
		}
		for i, blank := range blanks {
			raw := referenceQuery()
			blank(&raw)
			if _, err := ParseQuery(raw); !errors.Is(err, ErrQueryIncomplete) {
				t.Fatalf("case %d: expected ErrQueryIncomplete, got %v", i, err)
			}
		}
	})
}

func TestEngine_MatchSeparatorOnlyLists(t *testing.T) {
	t.Parallel()
	engine := newDefaultEngine(t)

	raw := referenceQuery()
	raw.Skills = " , ,"
	q, err := ParseQuery(raw)
	if err != nil {
		t.Fatalf("ParseQuery: %v", err)
	}
	if len(q.Skills) != 0 {
		t.Fatalf("expected no skills, got %v", q.Skills)
	}
	results := engine.Match(q)
	if len(results) != 2 {
		t.Fatalf("expected the eligible entries to survive, got %v", titles(results))
	}
	for _, r := range results {
		if r.Score != 0 || len(r.MatchedSkills) != 0 {
			t.Fatalf("expected zero score for %s, got %v %v", r.Title, r.Score, r.MatchedSkills)
		}
	}

	raw = referenceQuery()
	raw.Sectors = ",,"
	if results := engine.Match(mustParse(t, raw)); len(results) != 0 {
		t.Fatalf("expected no sector overlap, got %v", titles(results))
	}
}

func TestEngine_Match(t *testing.T) {
	t.Parallel()

	t.Run("reference query ranks google first", func(t *testing.T) {
		t.Parallel()
		engine := newDefaultEngine(t)

		results := engine.Match(mustParse(t, referenceQuery()))
		if got, want := titles(results), []string{"Data Science Intern @ Google", "AI Research Intern @ IBM"}; !equalStrings(got, want) {
			t.Fatalf("titles = %v, want %v", got, want)
		}
		top := results[0]
		if math.Abs(top.Score-2.0/3.0) > 1e-9 {
			t.Fatalf("score = %v, want 2/3", top.Score)
		}
		if !equalStrings(top.MatchedSkills, []string{"python", "statistics"}) {
			t.Fatalf("matched = %v", top.MatchedSkills)
		}
		if top.RemainingCapacity != 3 {
			t.Fatalf("remaining = %d, want 3", top.RemainingCapacity)
		}
	})

	t.Run("exhausted entries are excluded", func(t *testing.T) {
		t.Parallel()
		engine := newDefaultEngine(t)
		if err := engine.SetUsed("Data Science Intern @ Google", 3); err != nil {
			t.Fatalf("SetUsed: %v", err)
		}

		results := engine.Match(mustParse(t, referenceQuery()))
		if got, want := titles(results), []string{"AI Research Intern @ IBM"}; !equalStrings(got, want) {
			t.Fatalf("titles = %v, want %v", got, want)
		}
	})

	t.Run("remaining capacity reflects counters", func(t *testing.T) {
		t.Parallel()
		engine := newDefaultEngine(t)
		if err := engine.SetUsed("Data Science Intern @ Google", 1); err != nil {
			t.Fatalf("SetUsed: %v", err)
		}
		results := engine.Match(mustParse(t, referenceQuery()))
		if results[0].RemainingCapacity != 2 {
			t.Fatalf("remaining = %d, want 2", results[0].RemainingCapacity)
		}
	})

	t.Run("diploma yields nothing", func(t *testing.T) {
		t.Parallel()
		engine := newDefaultEngine(t)
		for _, location := range []string{"any", "urban", "rural", "aspirational"} {
			raw := referenceQuery()
			raw.Qualification = "diploma"
			raw.Location = location
			raw.Sectors = "AI,Web Development,Cybersecurity,Design"
			raw.SocialCategory = "sc"
			if results := engine.Match(mustParse(t, raw)); len(results) != 0 {
				t.Fatalf("location %s: expected no results, got %v", location, titles(results))
			}
		}
	})

	t.Run("unknown qualification is below the floor", func(t *testing.T) {
		t.Parallel()
		engine := newDefaultEngine(t)
		raw := referenceQuery()
		raw.Qualification = "apprenticeship"
		if results := engine.Match(mustParse(t, raw)); len(results) != 0 {
			t.Fatalf("expected no results, got %v", titles(results))
		}
	})

	t.Run("restricted quota needs rural or aspirational preference", func(t *testing.T) {
		t.Parallel()
		engine := newDefaultEngine(t)
		raw := referenceQuery()
		raw.Sectors = "cybersecurity"
		raw.SocialCategory = "sc"

		raw.Location = "any"
		if results := engine.Match(mustParse(t, raw)); len(results) != 0 {
			t.Fatalf("any: expected no results, got %v", titles(results))
		}
		raw.Location = "rural"
		if got := titles(engine.Match(mustParse(t, raw))); !equalStrings(got, []string{"Cybersecurity Intern @ Infosys"}) {
			t.Fatalf("rural: got %v", got)
		}
	})

	t.Run("eligibility set is enforced", func(t *testing.T) {
		t.Parallel()
		engine := newDefaultEngine(t)
		raw := referenceQuery()
		raw.Sectors = "cybersecurity"
		raw.Location = "rural"
		raw.SocialCategory = "general"
		if results := engine.Match(mustParse(t, raw)); len(results) != 0 {
			t.Fatalf("expected no results, got %v", titles(results))
		}
	})

	t.Run("repeat participants are rejected where disallowed", func(t *testing.T) {
		t.Parallel()
		engine := newDefaultEngine(t)
		raw := referenceQuery()
		raw.PastParticipation = "yes"
		if got := titles(engine.Match(mustParse(t, raw))); !equalStrings(got, []string{"Data Science Intern @ Google"}) {
			t.Fatalf("got %v", got)
		}
	})

	t.Run("sector comparison ignores case", func(t *testing.T) {
		t.Parallel()
		engine := newDefaultEngine(t)
		raw := referenceQuery()
		raw.Sectors = "web development"
		raw.Skills = "HTML,css"
		results := engine.Match(mustParse(t, raw))
		if got := titles(results); !equalStrings(got, []string{"Web Developer Intern @ Microsoft"}) {
			t.Fatalf("got %v", got)
		}
	})

	t.Run("ties keep catalog order", func(t *testing.T) {
		t.Parallel()
		engine, err := NewEngine([]Opportunity{
			{Title: "b", RequiredSkills: []string{"go"}, Capacity: 1, Location: "urban", Sectors: []string{"x"}, EligibleCategories: []string{"general"}, RepeatAllowed: true},
			{Title: "a", RequiredSkills: []string{"go"}, Capacity: 1, Location: "urban", Sectors: []string{"x"}, EligibleCategories: []string{"general"}, RepeatAllowed: true},
			{Title: "c", RequiredSkills: []string{"go", "sql"}, Capacity: 1, Location: "urban", Sectors: []string{"x"}, EligibleCategories: []string{"general"}, RepeatAllowed: true},
		})
		if err != nil {
			t.Fatalf("NewEngine: %v", err)
		}
		results := engine.Match(mustParse(t, RawQuery{
			Skills: "go", Qualification: "phd", Location: "any", Sectors: "x", SocialCategory: "general", PastParticipation: "no",
		}))
		if got := titles(results); !equalStrings(got, []string{"b", "a", "c"}) {
			t.Fatalf("got %v", got)
		}
	})

	t.Run("identical queries produce identical output", func(t *testing.T) {
		t.Parallel()
		engine := newDefaultEngine(t)
		raw := referenceQuery()
		raw.Location = "any"
		raw.Sectors = "AI,Design,Web Development"

		first, err := json.Marshal(engine.Match(mustParse(t, raw)))
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		second, err := json.Marshal(engine.Match(mustParse(t, raw)))
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		if !bytes.Equal(first, second) {
			t.Fatalf("outputs differ:\n%s\n%s", first, second)
		}
	})
}

func TestEngine_Counters(t *testing.T) {
	t.Parallel()

	engine := newDefaultEngine(t)

	if err := engine.SetUsed("nope", 1); !errors.Is(err, ErrUnknownOpportunity) {
		t.Fatalf("expected ErrUnknownOpportunity, got %v", err)
	}
	if err := engine.SetUsed("AI Research Intern @ IBM", 2); !errors.Is(err, ErrCapacityExceeded) {
		t.Fatalf("expected ErrCapacityExceeded, got %v", err)
	}
	if err := engine.SetUsed("AI Research Intern @ IBM", -1); !errors.Is(err, ErrCapacityExceeded) {
		t.Fatalf("expected ErrCapacityExceeded for negative, got %v", err)
	}
	if err := engine.SetUsed("AI Research Intern @ IBM", 1); err != nil {
		t.Fatalf("SetUsed: %v", err)
	}
	if remaining, ok := engine.Remaining("AI Research Intern @ IBM"); !ok || remaining != 0 {
		t.Fatalf("remaining = %d, %v", remaining, ok)
	}
	if _, ok := engine.Remaining("nope"); ok {
		t.Fatalf("expected unknown title to report false")
	}

	listings := engine.Catalog()
	if len(listings) != 5 {
		t.Fatalf("expected 5 listings, got %d", len(listings))
	}
	if listings[2].Used != 1 || listings[2].Remaining != 0 {
		t.Fatalf("unexpected listing: %+v", listings[2])
	}
}

func TestNewEngine_RejectsInvalidCatalogs(t *testing.T) {
	t.Parallel()

	cases := map[string][]Opportunity{
		"duplicate title":   {{Title: "x", Capacity: 1}, {Title: " x ", Capacity: 1}},
		"negative capacity": {{Title: "x", Capacity: -1}},
		"missing title":     {{Title: " ", Capacity: 1}},
	}
	for name, catalog := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			if _, err := NewEngine(catalog); !errors.Is(err, ErrInvalidCatalog) {
				t.Fatalf("expected ErrInvalidCatalog, got %v", err)
			}
		})
	}
}

func TestEngine_CatalogIsCopied(t *testing.T) {
	t.Parallel()

	catalog := DefaultCatalog()
	engine, err := NewEngine(catalog)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	catalog[0].RequiredSkills[0] = "cobol"

	listings := engine.Catalog()
	if listings[0].RequiredSkills[0] != "python" {
		t.Fatalf("engine catalog was mutated through caller slice")
	}
	listings[0].Sectors[0] = "mutated"
	if engine.Catalog()[0].Sectors[0] != "AI" {
		t.Fatalf("engine catalog was mutated through listing")
	}
}

func TestQueryKey(t *testing.T) {
	t.Parallel()

	a := mustParse(t, referenceQuery())
	raw := referenceQuery()
	raw.Skills = " PYTHON , statistics"
	raw.Qualification = "Bachelor"
	b := mustParse(t, raw)
	if a.Key() != b.Key() {
		t.Fatalf("keys differ: %q vs %q", a.Key(), b.Key())
	}
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
