// Package sqlite implements persistence.Store on top of modernc.org/sqlite.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/pressly/goose/v3"

	"github.com/example/internship-portal/internal/persistence"
)

//go:embed migrations/*.sql
var embeddedMigrations embed.FS

// Storage is a persistence.Store backed by a single kv_entries table.
type Storage struct {
	pool   *ConnectionPool
	mapper *ErrorMapper
	now    func() time.Time
}

var _ persistence.Store = (*Storage)(nil)

// Open opens the database at dsn with DefaultConfig.
func Open(dsn string) (*Storage, error) {
	return OpenWithConfig(DefaultConfig(dsn))
}

// OpenWithConfig opens the database using cfg.
func OpenWithConfig(cfg Config) (*Storage, error) {
	pool, err := NewConnectionPool(cfg)
	if err != nil {
		return nil, err
	}
	return &Storage{pool: pool, mapper: NewErrorMapper(), now: time.Now}, nil
}

// Close releases the connection pool.
func (s *Storage) Close() error {
	return s.pool.Close()
}

// Migrate applies the embedded goose migrations.
func (s *Storage) Migrate(ctx context.Context) error {
	fsys, err := fs.Sub(embeddedMigrations, "migrations")
	if err != nil {
		return fmt.Errorf("sqlite: load migrations: %w", err)
	}
	provider, err := goose.NewProvider(goose.DialectSQLite3, s.pool.DB(), fsys)
	if err != nil {
		return fmt.Errorf("sqlite: create migration provider: %w", err)
	}
	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("sqlite: apply migrations: %w", err)
	}
	return nil
}

// Get returns the value stored under key, or (nil, nil) when absent.
func (s *Storage) Get(ctx context.Context, key string) ([]byte, error) {
	if strings.TrimSpace(key) == "" {
		return nil, persistence.ErrEmptyKey
	}
	var value []byte
	err := s.pool.DB().QueryRowContext(ctx, `SELECT value FROM kv_entries WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get entry[%s]: %w", key, s.mapper.MapError(err))
	}
	if value == nil {
		value = []byte{}
	}
	return value, nil
}

// Set upserts value under key.
func (s *Storage) Set(ctx context.Context, key string, value []byte) error {
	if strings.TrimSpace(key) == "" {
		return persistence.ErrEmptyKey
	}
	if value == nil {
		value = []byte{}
	}
	err := s.pool.retry.WithRetry(ctx, func() error {
		_, err := s.pool.DB().ExecContext(ctx, `
			INSERT INTO kv_entries (key, value, updated_at) VALUES (?, ?, ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
		`, key, value, s.now().UTC().Format(time.RFC3339Nano))
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to set entry[%s]: %w", key, err)
	}
	return nil
}

// Delete removes key. Missing keys are ignored.
func (s *Storage) Delete(ctx context.Context, key string) error {
	if strings.TrimSpace(key) == "" {
		return persistence.ErrEmptyKey
	}
	err := s.pool.retry.WithRetry(ctx, func() error {
		_, err := s.pool.DB().ExecContext(ctx, `DELETE FROM kv_entries WHERE key = ?`, key)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to delete entry[%s]: %w", key, err)
	}
	return nil
}

// List returns every entry.
func (s *Storage) List(ctx context.Context) (map[string][]byte, error) {
	rows, err := s.pool.DB().QueryContext(ctx, `SELECT key, value FROM kv_entries`)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", s.mapper.MapError(err))
	}
	defer rows.Close()

	result := make(map[string][]byte)
	for rows.Next() {
		var key string
		var value []byte
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("failed to scan entry row: %w", err)
		}
		result[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate entry rows: %w", err)
	}
	return result, nil
}

// Clear removes every entry inside a transaction.
func (s *Storage) Clear(ctx context.Context) error {
	err := s.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `DELETE FROM kv_entries`)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to clear entries: %w", s.mapper.MapError(err))
	}
	return nil
}
