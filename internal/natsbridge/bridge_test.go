package natsbridge

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/example/internship-portal/internal/testfixtures"
)

type published struct {
	subject string
	data    []byte
}

type fakePublisher struct {
	mu   sync.Mutex
	msgs []published
	err  error
}

func (f *fakePublisher) Publish(_ context.Context, subject string, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, published{subject: subject, data: data})
	return nil
}

func TestBridge_ForwardsLoginAndLogout(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	factory := testfixtures.NewServiceFactory()
	manager, _ := factory.NewSessionManager(testfixtures.SessionManagerDeps{})
	pub := &fakePublisher{}
	New(pub, nil).Attach(manager.Scoped("origin-1"))

	user := testfixtures.NewUserFixture()
	if _, err := manager.Scoped("origin-1").Login(ctx, user.Input(), false); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if err := manager.Scoped("origin-1").Logout(ctx); err != nil {
		t.Fatalf("Logout: %v", err)
	}

	if len(pub.msgs) != 2 {
		t.Fatalf("expected two messages, got %d", len(pub.msgs))
	}
	if pub.msgs[0].subject != "portal.auth.login" || pub.msgs[1].subject != "portal.auth.logout" {
		t.Fatalf("unexpected subjects %q %q", pub.msgs[0].subject, pub.msgs[1].subject)
	}

	var msg Message
	if err := json.Unmarshal(pub.msgs[0].data, &msg); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !msg.IsLoggedIn || msg.Email != user.Email || msg.Scope != "origin-1" || msg.At != factory.Clock.Current().UnixMilli() {
		t.Fatalf("unexpected message %+v", msg)
	}
	if strings.Contains(string(pub.msgs[0].data), "hashed:") {
		t.Fatalf("password hash leaked into %s", pub.msgs[0].data)
	}
}

func TestBridge_PublishFailureDoesNotBreakLogin(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	manager, _ := testfixtures.NewServiceFactory().NewSessionManager(testfixtures.SessionManagerDeps{})
	unsubscribe := New(&fakePublisher{err: errors.New("no responders")}, nil).Attach(manager)
	defer unsubscribe()

	if _, err := manager.Login(ctx, testfixtures.NewUserFixture().Input(), false); err != nil {
		t.Fatalf("Login failed because of publish error: %v", err)
	}
	if !manager.IsLoggedIn(ctx) {
		t.Fatalf("expected login to stick")
	}
}
