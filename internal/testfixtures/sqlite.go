package testfixtures

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/example/internship-portal/internal/persistence"
	"github.com/example/internship-portal/internal/persistence/memory"
	"github.com/example/internship-portal/internal/persistence/sqlite"
)

// StoreHarness provides a persistence.Store for integration-style tests.
type StoreHarness struct {
	Name  string
	Store persistence.Store

	cleanup func()
}

// Close releases resources associated with the harness.
func (h *StoreHarness) Close() {
	if h != nil && h.cleanup != nil {
		h.cleanup()
		h.cleanup = nil
	}
}

// NewSQLiteHarness constructs a StoreHarness using a temporary file that is
// migrated automatically. Callers may optionally invoke Close, but the helper
// will also register a cleanup callback with the provided testing.TB.
func NewSQLiteHarness(tb testing.TB) *StoreHarness {
	tb.Helper()

	path := filepath.Join(tb.TempDir(), "portal.db")

	storage, err := sqlite.Open(path)
	if err != nil {
		tb.Fatalf("failed to open storage: %v", err)
	}

	if err := storage.Migrate(context.Background()); err != nil {
		_ = storage.Close()
		tb.Fatalf("failed to migrate storage: %v", err)
	}

	harness := &StoreHarness{
		Name:  "sqlite",
		Store: storage,
		cleanup: func() {
			_ = storage.Close()
		},
	}

	tb.Cleanup(harness.Close)
	return harness
}

// NewMemoryHarness constructs a StoreHarness over an in-process store.
func NewMemoryHarness(tb testing.TB) *StoreHarness {
	tb.Helper()
	store := memory.New()
	harness := &StoreHarness{
		Name:    "memory",
		Store:   store,
		cleanup: func() { _ = store.Close() },
	}
	tb.Cleanup(harness.Close)
	return harness
}

// Harnesses returns one harness per local backend.
func Harnesses(tb testing.TB) []*StoreHarness {
	tb.Helper()
	return []*StoreHarness{NewMemoryHarness(tb), NewSQLiteHarness(tb)}
}
