package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/example/internship-portal/internal/application"
	"github.com/example/internship-portal/internal/matching"
)

type matchService interface {
	Match(ctx context.Context, raw matching.RawQuery) (application.MatchResult, error)
	Listings(ctx context.Context) []matching.Listing
	SetUsed(ctx context.Context, title string, used int) error
}

// MatchHandler serves the opportunity catalog and match queries.
type MatchHandler struct {
	service   matchService
	responder responder
	logger    *slog.Logger
}

func NewMatchHandler(service matchService, logger *slog.Logger) *MatchHandler {
	base := defaultLogger(logger)
	return &MatchHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *MatchHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "MatchHandler", operation, attrs...)
}

func (h *MatchHandler) Match(w http.ResponseWriter, r *http.Request) {
	var req matching.RawQuery
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Match", "error_kind", "bad_request").WarnContext(r.Context(), "failed to decode match request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	result, err := h.service.Match(r.Context(), req)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, result)
}

func (h *MatchHandler) Opportunities(w http.ResponseWriter, r *http.Request) {
	h.responder.writeJSON(r.Context(), w, http.StatusOK, map[string][]matching.Listing{
		"opportunities": h.service.Listings(r.Context()),
	})
}

// SetUsed seeds the consumed-slot counter of one opportunity and responds with
// the refreshed catalog.
func (h *MatchHandler) SetUsed(w http.ResponseWriter, r *http.Request) {
	var req usedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Used == nil {
		h.log(r.Context(), "SetUsed", "error_kind", "bad_request").WarnContext(r.Context(), "failed to decode counter request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	if err := h.service.SetUsed(r.Context(), req.Title, *req.Used); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.Opportunities(w, r)
}

type usedRequest struct {
	Title string `json:"title"`
	Used  *int   `json:"used"`
}
