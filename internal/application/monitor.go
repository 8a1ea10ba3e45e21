package application

import (
	"context"
	"log/slog"
	"time"
)

// DefaultMonitorInterval is how often Run re-validates the session.
const DefaultMonitorInterval = 5 * time.Minute

// Navigator carries out redirect instructions.
type Navigator interface {
	Redirect(ctx context.Context, url string) error
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(ctx context.Context, url string) error

// Redirect implements Navigator.
func (f NavigatorFunc) Redirect(ctx context.Context, url string) error { return f(ctx, url) }

// PageLocator reports the page the user is currently on.
type PageLocator interface {
	CurrentPage(ctx context.Context) string
}

// StaticPage is a PageLocator that always reports the same page.
type StaticPage string

// CurrentPage implements PageLocator.
func (p StaticPage) CurrentPage(context.Context) string { return string(p) }

// ActivitySignal names a user interaction.
type ActivitySignal string

const (
	SignalClick     ActivitySignal = "click"
	SignalKeypress  ActivitySignal = "keypress"
	SignalScroll    ActivitySignal = "scroll"
	SignalMouseMove ActivitySignal = "mousemove"
	SignalRequest   ActivitySignal = "request"
)

var knownSignals = map[ActivitySignal]bool{
	SignalClick:     true,
	SignalKeypress:  true,
	SignalScroll:    true,
	SignalMouseMove: true,
	SignalRequest:   true,
}

// Monitor periodically re-validates the session and sends visitors of
// protected pages back to the login page once it is gone.
type Monitor struct {
	sessions *SessionManager
	pages    PageLocator
	nav      Navigator
	interval time.Duration
	logger   *slog.Logger
}

// NewMonitor constructs a Monitor. A non-positive interval selects
// DefaultMonitorInterval. Without a PageLocator the user is on no page, so
// Check never redirects and a nil Navigator is never called.
func NewMonitor(sessions *SessionManager, pages PageLocator, nav Navigator, interval time.Duration, logger *slog.Logger) *Monitor {
	if interval <= 0 {
		interval = DefaultMonitorInterval
	}
	if pages == nil {
		pages = StaticPage("")
	}
	if nav == nil {
		nav = NavigatorFunc(func(context.Context, string) error { return nil })
	}
	return &Monitor{
		sessions: sessions,
		pages:    pages,
		nav:      nav,
		interval: interval,
		logger:   defaultLogger(logger),
	}
}

// Scoped returns a copy of m watching the session stored under prefix.
func (m *Monitor) Scoped(prefix string) *Monitor {
	scoped := *m
	scoped.sessions = m.sessions.Scoped(prefix)
	return &scoped
}

// Check re-validates the session once. It reports whether a redirect was
// issued.
func (m *Monitor) Check(ctx context.Context) (redirected bool, err error) {
	logger := serviceLogger(ctx, m.logger, "Monitor", "Check")

	session, readErr := m.sessions.GetSession(ctx)
	if readErr != nil {
		logger.WarnContext(ctx, "session check failed, treating as logged out", "error", readErr, "error_kind", ErrorKind(readErr))
	}
	if session != nil {
		return false, nil
	}

	page := m.pages.CurrentPage(ctx)
	if !m.sessions.IsProtected(page) {
		return false, nil
	}

	if err := m.sessions.RememberRedirect(ctx, page); err != nil {
		logger.WarnContext(ctx, "failed to remember redirect", "error", err, "error_kind", ErrorKind(err))
	}
	if err := m.nav.Redirect(ctx, LoginPage); err != nil {
		logger.ErrorContext(ctx, "redirect failed", "error", err, "error_kind", ErrorKind(err), "page", page)
		return false, err
	}
	logger.InfoContext(ctx, "session gone on protected page, redirected to login", "page", page)
	return true, nil
}

// Run calls Check every interval until ctx is done.
func (m *Monitor) Run(ctx context.Context) error {
	ticker := m.sessions.Clock().NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C():
			_, _ = m.Check(ctx)
		}
	}
}

// Activity refreshes last activity for a recognised interaction signal.
func (m *Monitor) Activity(ctx context.Context, signal ActivitySignal) {
	if !knownSignals[signal] {
		return
	}
	m.sessions.UpdateLastActivity(ctx)
}
