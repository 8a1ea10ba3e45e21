package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/internship-portal/internal/application"
	"github.com/example/internship-portal/internal/matching"
)

var (
	errBadRequestBody = errors.New("Invalid request body.")
	errNotLoggedIn    = errors.New("Please log in to continue.")
	errMissingPage    = errors.New("The page query parameter is required.")
)

type responder struct {
	logger *slog.Logger
}

func newResponder(logger *slog.Logger) responder {
	if logger == nil {
		logger = slog.Default()
	}
	return responder{logger: logger}
}

func (r responder) writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	if w == nil {
		return
	}

	if status == http.StatusNoContent || payload == nil {
		w.WriteHeader(status)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		r.loggerFor(ctx).ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func (r responder) writeError(ctx context.Context, w http.ResponseWriter, status int, err error) {
	message := statusMessage(status)
	if err != nil {
		if msg := strings.TrimSpace(err.Error()); msg != "" {
			message = msg
		}
		r.loggerFor(ctx).WarnContext(ctx, "request failed", "status", status, "error", err)
	}

	r.writeJSON(ctx, w, status, errorResponse{Message: message})
}

func (r responder) handleServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		r.writeError(ctx, w, http.StatusInternalServerError, errors.New("unknown error"))
		return
	}

	switch {
	case errors.Is(err, matching.ErrQueryIncomplete):
		r.writeJSON(ctx, w, http.StatusBadRequest, errorResponse{Message: matching.IncompleteQueryMessage})
	case errors.Is(err, application.ErrNotLoggedIn):
		r.writeJSON(ctx, w, http.StatusUnauthorized, errorResponse{Message: errNotLoggedIn.Error()})
	case errors.Is(err, application.ErrInvalidTheme):
		r.writeJSON(ctx, w, http.StatusBadRequest, errorResponse{Message: "Theme must be light or dark."})
	case errors.Is(err, matching.ErrCapacityExceeded):
		r.writeJSON(ctx, w, http.StatusConflict, errorResponse{Message: "Used slots must be between zero and the capacity."})
	case errors.Is(err, matching.ErrUnknownOpportunity):
		r.writeJSON(ctx, w, http.StatusNotFound, errorResponse{Message: statusMessage(http.StatusNotFound)})
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		r.writeJSON(ctx, w, http.StatusServiceUnavailable, errorResponse{Message: statusMessage(http.StatusServiceUnavailable)})
	default:
		var vErr *application.ValidationError
		if errors.As(err, &vErr) {
			r.writeJSON(ctx, w, http.StatusUnprocessableEntity, errorResponse{
				Message:     statusMessage(http.StatusUnprocessableEntity),
				FieldErrors: vErr.FieldErrors,
			})
			return
		}

		r.loggerFor(ctx).ErrorContext(ctx, "unhandled service error", "error", err, "error_kind", application.ErrorKind(err))
		r.writeJSON(ctx, w, http.StatusInternalServerError, errorResponse{Message: statusMessage(http.StatusInternalServerError)})
	}
}

func (r responder) loggerFor(ctx context.Context) *slog.Logger {
	if logger := LoggerFromContext(ctx); logger != nil {
		return logger
	}
	return r.logger
}

func statusMessage(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "The request is not valid."
	case http.StatusUnauthorized:
		return errNotLoggedIn.Error()
	case http.StatusNotFound:
		return "The requested resource was not found."
	case http.StatusUnprocessableEntity:
		return "Please correct the highlighted fields."
	case http.StatusServiceUnavailable:
		return "The request was cancelled."
	default:
		return "An internal error occurred."
	}
}

type errorResponse struct {
	Message     string            `json:"message"`
	FieldErrors map[string]string `json:"fieldErrors,omitempty"`
}
