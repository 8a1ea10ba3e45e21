package testfixtures

import (
	"context"
	"testing"
)

func TestIDGeneratorProducesSequentialIDs(t *testing.T) {
	gen := NewIDGenerator(SessionIDPrefix)

	first := gen.Next()
	second := gen.Next()

	if first != "navintern_1" || second != "navintern_2" {
		t.Fatalf("unexpected identifiers: %q, %q", first, second)
	}
	if gen.Issued() != 2 {
		t.Fatalf("expected two identifiers issued, got %d", gen.Issued())
	}
}

func TestServiceFactoryUsesSeparateSessionAndUserIDs(t *testing.T) {
	factory := NewServiceFactory()
	manager, _ := factory.NewSessionManager(SessionManagerDeps{})
	ctx := context.Background()

	first, err := manager.SignIn(ctx, NewUserFixture().Form(), false)
	if err != nil {
		t.Fatalf("SignIn returned error: %v", err)
	}
	second, err := manager.SignIn(ctx, NewUserFixture().Form(), true)
	if err != nil {
		t.Fatalf("SignIn returned error: %v", err)
	}

	if first.Session.SessionID != "navintern_1" || second.Session.SessionID != "navintern_2" {
		t.Fatalf("unexpected session IDs %q, %q", first.Session.SessionID, second.Session.SessionID)
	}
	if first.Session.User.ID != "user_1" || second.Session.User.ID != "user_2" {
		t.Fatalf("unexpected user IDs %q, %q", first.Session.User.ID, second.Session.User.ID)
	}
	if factory.SessionIDs.Issued() != 2 || factory.UserIDs.Issued() != 2 {
		t.Fatalf("expected each generator to issue two IDs")
	}
}
