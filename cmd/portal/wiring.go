package main

import (
	"context"
	"fmt"

	"github.com/example/internship-portal/internal/application"
	"github.com/example/internship-portal/internal/catalog"
	"github.com/example/internship-portal/internal/config"
	"github.com/example/internship-portal/internal/persistence"
	"github.com/example/internship-portal/internal/persistence/memory"
	"github.com/example/internship-portal/internal/persistence/postgres"
	"github.com/example/internship-portal/internal/persistence/sqlite"
)

type closableStore interface {
	persistence.Store
	Close() error
}

// openStore opens the configured backend, migrating SQLite on the way.
func (a *app) openStore(ctx context.Context) (closableStore, error) {
	switch a.cfg.StorageDriver {
	case config.DriverMemory:
		return memory.New(), nil
	case config.DriverPostgres:
		store, err := postgres.Open(ctx, a.cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres storage: %w", err)
		}
		return store, nil
	default:
		store, err := sqlite.Open(a.cfg.SQLiteDSN)
		if err != nil {
			return nil, fmt.Errorf("open sqlite storage: %w", err)
		}
		if err := store.Migrate(ctx); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("migrate sqlite storage: %w", err)
		}
		return store, nil
	}
}

func (a *app) closeStore(store closableStore) {
	if err := store.Close(); err != nil {
		a.logger.Error("failed to close storage", "error", err)
	}
}

func (a *app) sessionManager(store persistence.Store, metrics application.SessionMetrics) *application.SessionManager {
	return application.NewSessionManager(store, application.SessionOptions{
		Clock:           a.clock,
		SessionTimeout:  a.cfg.SessionTimeout,
		RememberTimeout: a.cfg.RememberTimeout,
		LoginDelay:      a.cfg.LoginDelay,
		ProtectedPages:  a.cfg.ProtectedPages,
		Metrics:         metrics,
		Logger:          a.logger,
	})
}

func (a *app) matchService(metrics application.MatchMetrics) (*application.MatchService, error) {
	engine, err := catalog.LoadOrDefault(a.cfg.CatalogPath)
	if err != nil {
		return nil, err
	}
	return application.NewMatchService(engine, a.clock, application.DefaultMatchCacheTTL, metrics, a.logger), nil
}
