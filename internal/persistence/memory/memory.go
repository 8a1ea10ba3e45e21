// Package memory provides an in-process persistence.Store used by tests and
// by the CLI when no database is configured.
package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/example/internship-portal/internal/persistence"
)

// Store keeps entries in a map guarded by a RWMutex.
type Store struct {
	mu      sync.RWMutex
	entries map[string][]byte
	closed  bool
}

var _ persistence.Store = (*Store)(nil)

// New returns an empty Store.
func New() *Store {
	return &Store{entries: make(map[string][]byte)}
}

// Close marks the store closed. Later calls fail with persistence.ErrClosed.
func (s *Store) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}

// Get returns a copy of the stored value, or (nil, nil) when absent.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	if strings.TrimSpace(key) == "" {
		return nil, persistence.ErrEmptyKey
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, persistence.ErrClosed
	}

	value, ok := s.entries[key]
	if !ok {
		return nil, nil
	}
	return cloneBytes(value), nil
}

// Set stores value under key, replacing any previous value.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	if strings.TrimSpace(key) == "" {
		return persistence.ErrEmptyKey
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return persistence.ErrClosed
	}

	s.entries[key] = cloneBytes(value)
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	if strings.TrimSpace(key) == "" {
		return persistence.ErrEmptyKey
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return persistence.ErrClosed
	}

	delete(s.entries, key)
	return nil
}

// List returns a snapshot of every entry.
func (s *Store) List(ctx context.Context) (map[string][]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, persistence.ErrClosed
	}

	out := make(map[string][]byte, len(s.entries))
	for key, value := range s.entries {
		out[key] = cloneBytes(value)
	}
	return out, nil
}

// Clear removes every entry.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return persistence.ErrClosed
	}

	s.entries = make(map[string][]byte)
	return nil
}

func cloneBytes(value []byte) []byte {
	if value == nil {
		return []byte{}
	}
	out := make([]byte, len(value))
	copy(out, value)
	return out
}
