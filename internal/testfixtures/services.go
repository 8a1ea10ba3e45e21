package testfixtures

import (
	"log/slog"
	"time"

	"github.com/example/internship-portal/internal/application"
	"github.com/example/internship-portal/internal/catalog"
	"github.com/example/internship-portal/internal/matching"
	"github.com/example/internship-portal/internal/persistence"
	"github.com/example/internship-portal/internal/persistence/memory"
)

// FakeHash is the deterministic PasswordHasher used by factory-built managers.
func FakeHash(password string) (string, error) {
	return "hashed:" + password, nil
}

// ServiceFactory assists tests with constructing application services using
// deterministic identifiers and clocks.
type ServiceFactory struct {
	Clock      *Clock
	SessionIDs *IDGenerator
	UserIDs    *IDGenerator
}

// ServiceFactoryOption configures a ServiceFactory instance.
type ServiceFactoryOption func(*ServiceFactory)

// NewServiceFactory constructs a ServiceFactory with defaults.
func NewServiceFactory(opts ...ServiceFactoryOption) *ServiceFactory {
	factory := &ServiceFactory{
		Clock:      NewClock(time.Time{}),
		SessionIDs: NewIDGenerator(SessionIDPrefix),
		UserIDs:    NewIDGenerator(UserIDPrefix),
	}
	for _, opt := range opts {
		opt(factory)
	}
	if factory.Clock == nil {
		factory.Clock = NewClock(time.Time{})
	}
	if factory.SessionIDs == nil {
		factory.SessionIDs = NewIDGenerator(SessionIDPrefix)
	}
	if factory.UserIDs == nil {
		factory.UserIDs = NewIDGenerator(UserIDPrefix)
	}
	return factory
}

// WithClock overrides the clock used by the factory.
func WithClock(clock *Clock) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.Clock = clock
	}
}

// SessionManagerDeps captures dependencies for constructing a session manager.
// Zero fields fall back to factory defaults: a fresh memory store, the
// factory clock and ID generators, FakeHash and no login delay.
type SessionManagerDeps struct {
	Store              persistence.Store
	SessionTimeout     time.Duration
	RememberTimeout    time.Duration
	LoginDelay         time.Duration
	ProtectedPages     []string
	NotifyOnLazyExpiry bool
	HashPassword       application.PasswordHasher
	Metrics            application.SessionMetrics
	Logger             *slog.Logger
}

// NewSessionManager builds a session manager and returns it with its store.
func (f *ServiceFactory) NewSessionManager(deps SessionManagerDeps) (*application.SessionManager, persistence.Store) {
	store := deps.Store
	if store == nil {
		store = memory.New()
	}
	hash := deps.HashPassword
	if hash == nil {
		hash = FakeHash
	}
	manager := application.NewSessionManager(store, application.SessionOptions{
		Clock:              f.Clock,
		NewSessionID:       f.SessionIDs.NextFunc(),
		NewUserID:          f.UserIDs.NextFunc(),
		HashPassword:       hash,
		SessionTimeout:     deps.SessionTimeout,
		RememberTimeout:    deps.RememberTimeout,
		LoginDelay:         deps.LoginDelay,
		ProtectedPages:     deps.ProtectedPages,
		NotifyOnLazyExpiry: deps.NotifyOnLazyExpiry,
		Metrics:            deps.Metrics,
		Logger:             deps.Logger,
	})
	return manager, store
}

// MatchServiceDeps captures dependencies for constructing a match service.
type MatchServiceDeps struct {
	Engine   *matching.Engine
	CacheTTL time.Duration
	Metrics  application.MatchMetrics
	Logger   *slog.Logger
}

// NewMatchService builds a match service over the built-in catalog unless an
// engine is supplied.
func (f *ServiceFactory) NewMatchService(deps MatchServiceDeps) *application.MatchService {
	engine := deps.Engine
	if engine == nil {
		engine = catalog.Default()
	}
	return application.NewMatchService(engine, f.Clock, deps.CacheTTL, deps.Metrics, deps.Logger)
}
