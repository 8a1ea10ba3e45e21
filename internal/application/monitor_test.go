package application_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/example/internship-portal/internal/application"
	"github.com/example/internship-portal/internal/testfixtures"
)

type navRecorder struct {
	mu   sync.Mutex
	urls []string
	err  error
}

func (n *navRecorder) Redirect(_ context.Context, url string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.urls = append(n.urls, url)
	return n.err
}

func (n *navRecorder) redirects() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.urls...)
}

func TestMonitor_Check(t *testing.T) {
	t.Parallel()

	t.Run("redirects from a protected page once the session is gone", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()
		manager, store, clock := newManager(t, testfixtures.SessionManagerDeps{SessionTimeout: time.Hour})
		nav := &navRecorder{}
		monitor := application.NewMonitor(manager, application.StaticPage("/app/intern.html"), nav, time.Minute, nil)

		if _, err := manager.Login(ctx, testfixtures.NewUserFixture().Input(), false); err != nil {
			t.Fatalf("Login: %v", err)
		}
		if redirected, err := monitor.Check(ctx); redirected || err != nil {
			t.Fatalf("expected no redirect while logged in, got %v %v", redirected, err)
		}

		clock.Advance(2 * time.Hour)
		redirected, err := monitor.Check(ctx)
		if !redirected || err != nil {
			t.Fatalf("expected redirect, got %v %v", redirected, err)
		}
		if got := nav.redirects(); len(got) != 1 || got[0] != application.LoginPage {
			t.Fatalf("unexpected redirects %v", got)
		}
		if raw, _ := store.Get(ctx, application.KeyRedirectAfterLogin); string(raw) != "/app/intern.html" {
			t.Fatalf("expected page remembered, got %q", raw)
		}
	})

	t.Run("leaves public pages alone", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()
		manager, _, _ := newManager(t, testfixtures.SessionManagerDeps{})
		nav := &navRecorder{}
		monitor := application.NewMonitor(manager, application.StaticPage("/index.html"), nav, 0, nil)

		if redirected, err := monitor.Check(ctx); redirected || err != nil {
			t.Fatalf("expected no redirect, got %v %v", redirected, err)
		}
		if len(nav.redirects()) != 0 {
			t.Fatalf("unexpected redirect")
		}
	})

	t.Run("surfaces navigation failures", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()
		manager, _, _ := newManager(t, testfixtures.SessionManagerDeps{})
		boom := errors.New("window closed")
		monitor := application.NewMonitor(manager, application.StaticPage("/profile.html"), &navRecorder{err: boom}, 0, nil)

		if redirected, err := monitor.Check(ctx); redirected || !errors.Is(err, boom) {
			t.Fatalf("expected navigation error, got %v %v", redirected, err)
		}
	})
}

func TestMonitor_RunTicksOnInterval(t *testing.T) {
	t.Parallel()
	manager, _, clock := newManager(t, testfixtures.SessionManagerDeps{})
	nav := &navRecorder{}
	monitor := application.NewMonitor(manager, application.StaticPage("/profile.html"), nav, 5*time.Minute, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- monitor.Run(ctx) }()

	waitForTimers(t, clock, 1)
	clock.Advance(4 * time.Minute)
	time.Sleep(10 * time.Millisecond)
	if len(nav.redirects()) != 0 {
		t.Fatalf("checked before the interval elapsed")
	}

	clock.Advance(time.Minute)
	deadline := time.Now().Add(5 * time.Second)
	for len(nav.redirects()) == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("monitor did not check after the interval")
		}
		time.Sleep(time.Millisecond)
	}

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Run returned %v", err)
	}
}

func TestMonitor_Activity(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	manager, store, clock := newManager(t, testfixtures.SessionManagerDeps{})
	monitor := application.NewMonitor(manager, application.StaticPage("/index.html"), &navRecorder{}, 0, nil)

	if _, err := manager.Login(ctx, testfixtures.NewUserFixture().Input(), false); err != nil {
		t.Fatalf("Login: %v", err)
	}
	login := clock.Current()

	clock.Advance(time.Minute)
	monitor.Activity(ctx, application.ActivitySignal("resize"))
	if got := lastActivity(t, store); !got.Equal(login) {
		t.Fatalf("unknown signal refreshed activity to %v", got)
	}

	later := clock.Advance(time.Minute)
	monitor.Activity(ctx, application.SignalKeypress)
	if got := lastActivity(t, store); !got.Equal(later) {
		t.Fatalf("expected activity %v, got %v", later, got)
	}
}

func TestMonitor_ScopedRequestSignal(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	manager, store, clock := newManager(t, testfixtures.SessionManagerDeps{SessionTimeout: time.Hour})
	monitor := application.NewMonitor(manager, nil, nil, 0, nil)

	scoped := manager.Scoped("origin-a")
	if _, err := scoped.Login(ctx, testfixtures.NewUserFixture().Input(), false); err != nil {
		t.Fatalf("Login: %v", err)
	}

	later := clock.Advance(time.Minute)
	monitor.Scoped("origin-a").Activity(ctx, application.SignalRequest)

	raw, err := store.Get(ctx, "origin-a/"+application.KeySession)
	if err != nil || raw == nil {
		t.Fatalf("read scoped session: %v", err)
	}
	var s application.Session
	if err := json.Unmarshal(raw, &s); err != nil {
		t.Fatalf("decode session: %v", err)
	}
	if !s.LastActivity.Equal(later) {
		t.Fatalf("expected activity %v, got %v", later, s.LastActivity)
	}
	if raw, _ := store.Get(ctx, application.KeySession); raw != nil {
		t.Fatalf("expected unscoped key untouched, got %s", raw)
	}

	clock.Advance(2 * time.Hour)
	if redirected, err := monitor.Scoped("origin-a").Check(ctx); redirected || err != nil {
		t.Fatalf("expected no redirect without a current page, got %v %v", redirected, err)
	}
}

func lastActivity(t *testing.T, store interface {
	Get(context.Context, string) ([]byte, error)
}) time.Time {
	t.Helper()
	raw, err := store.Get(context.Background(), application.KeySession)
	if err != nil || raw == nil {
		t.Fatalf("read session: %v", err)
	}
	var s application.Session
	if err := json.Unmarshal(raw, &s); err != nil {
		t.Fatalf("decode session: %v", err)
	}
	return s.LastActivity
}
