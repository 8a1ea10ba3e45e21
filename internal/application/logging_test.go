package application

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/example/internship-portal/internal/logging"
	"github.com/example/internship-portal/internal/matching"
)

func TestDefaultLogger(t *testing.T) {
	t.Parallel()

	custom := slog.New(slog.NewTextHandler(io.Discard, nil))
	if got := defaultLogger(custom); got != custom {
		t.Fatalf("expected custom logger to be returned")
	}

	if got := defaultLogger(nil); got != slog.Default() {
		t.Fatalf("expected default logger when none provided")
	}
}

func TestErrorKind(t *testing.T) {
	t.Parallel()

	cases := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{ErrNotLoggedIn, "not_logged_in"},
		{fmt.Errorf("wrap: %w", ErrStorageCorruption), "storage_corruption"},
		{ErrInvalidTheme, "invalid_theme"},
		{ErrPasswordMismatch, "invalid_credentials"},
		{matching.ErrQueryIncomplete, "query_incomplete"},
		{matching.ErrUnknownOpportunity, "not_found"},
		{matching.ErrCapacityExceeded, "capacity_exceeded"},
		{context.Canceled, "canceled"},
		{&ValidationError{FieldErrors: map[string]string{"name": "bad"}}, "validation"},
		{errors.New("boom"), "unexpected"},
	}
	for _, tc := range cases {
		if got := ErrorKind(tc.err); got != tc.want {
			t.Fatalf("ErrorKind(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}

func TestServiceLoggerPrefersContextLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	fromCtx := slog.New(slog.NewJSONHandler(&buf, nil))
	ctx := logging.ContextWithLogger(context.Background(), fromCtx)

	serviceLogger(ctx, slog.New(slog.NewTextHandler(io.Discard, nil)), "SessionManager", "Login", "remember_me", true).Info("hello")
	out := buf.String()
	for _, want := range []string{`"service":"SessionManager"`, `"operation":"Login"`, `"remember_me":true`} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %s in %s", want, out)
		}
	}
}
