package http

import (
	"context"
	"log/slog"

	"github.com/example/internship-portal/internal/logging"
)

type contextKey string

const originContextKey contextKey = "origin"

// ContextWithOrigin returns a derived context carrying the caller's origin ID.
func ContextWithOrigin(ctx context.Context, origin string) context.Context {
	return context.WithValue(ctx, originContextKey, origin)
}

// OriginFromContext extracts the origin ID attached by WithOrigin.
func OriginFromContext(ctx context.Context) (string, bool) {
	origin, ok := ctx.Value(originContextKey).(string)
	return origin, ok && origin != ""
}

// ContextWithLogger attaches a request-scoped logger.
func ContextWithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return logging.ContextWithLogger(ctx, logger)
}

// LoggerFromContext returns the request-scoped logger, or nil.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx)
}
