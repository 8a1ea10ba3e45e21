package application

import (
	"context"
	"errors"
	"log/slog"

	"github.com/example/internship-portal/internal/logging"
	"github.com/example/internship-portal/internal/matching"
)

func defaultLogger(logger *slog.Logger) *slog.Logger {
	if logger != nil {
		return logger
	}
	return slog.Default()
}

func serviceLogger(ctx context.Context, base *slog.Logger, serviceName, operation string, attrs ...any) *slog.Logger {
	logger := logging.FromContext(ctx)
	if logger == nil {
		logger = base
	}
	if logger == nil {
		logger = slog.Default()
	}

	pairs := []any{"service", serviceName}
	if operation != "" {
		pairs = append(pairs, "operation", operation)
	}
	if len(attrs) > 0 {
		pairs = append(pairs, attrs...)
	}
	return logger.With(pairs...)
}

// ErrorKind maps sentinel and validation errors to a stable logging label.
func ErrorKind(err error) string {
	if err == nil {
		return ""
	}
	switch {
	case errors.Is(err, ErrNotLoggedIn):
		return "not_logged_in"
	case errors.Is(err, ErrStorageCorruption):
		return "storage_corruption"
	case errors.Is(err, ErrInvalidTheme):
		return "invalid_theme"
	case errors.Is(err, ErrPasswordMismatch), errors.Is(err, ErrInvalidPasswordHash):
		return "invalid_credentials"
	case errors.Is(err, matching.ErrQueryIncomplete):
		return "query_incomplete"
	case errors.Is(err, matching.ErrUnknownOpportunity):
		return "not_found"
	case errors.Is(err, matching.ErrCapacityExceeded):
		return "capacity_exceeded"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	}

	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return "validation"
	}

	return "unexpected"
}
