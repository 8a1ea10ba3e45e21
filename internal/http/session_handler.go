package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/example/internship-portal/internal/application"
)

// SessionHandler serves the login flow and per-origin session state.
type SessionHandler struct {
	sessions  *application.SessionManager
	responder responder
	logger    *slog.Logger
}

func NewSessionHandler(sessions *application.SessionManager, logger *slog.Logger) *SessionHandler {
	base := defaultLogger(logger)
	return &SessionHandler{sessions: sessions, responder: newResponder(base), logger: base}
}

func (h *SessionHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "SessionHandler", operation, attrs...)
}

// manager returns the session manager bound to the request's origin.
func (h *SessionHandler) manager(r *http.Request) *application.SessionManager {
	origin, _ := OriginFromContext(r.Context())
	return h.sessions.Scoped(origin)
}

func (h *SessionHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Login", "error_kind", "bad_request").WarnContext(r.Context(), "failed to decode login request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	result, err := h.manager(r).SignIn(r.Context(), application.FormInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	}, req.RememberMe)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.log(r.Context(), "Login", "session_id", result.Session.SessionID).InfoContext(r.Context(), "signed in")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, loginResponse{
		Session:  toSessionDTO(result.Session, result.Session.ExpiryTime.Sub(result.Session.LoginTime)),
		Redirect: result.Redirect,
	})
}

func (h *SessionHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.manager(r).Logout(r.Context()); err != nil {
		h.log(r.Context(), "Logout").ErrorContext(r.Context(), "logout failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, map[string]bool{"loggedOut": true})
}

func (h *SessionHandler) Current(w http.ResponseWriter, r *http.Request) {
	manager := h.manager(r)
	session, err := manager.GetSession(r.Context())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	if session == nil {
		h.responder.handleServiceError(r.Context(), w, application.ErrNotLoggedIn)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toSessionDTO(*session, session.ExpiryTime.Sub(manager.Clock().Now())))
}

func (h *SessionHandler) Extend(w http.ResponseWriter, r *http.Request) {
	extended, err := h.manager(r).ExtendSession(r.Context())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, map[string]bool{"extended": extended})
}

func (h *SessionHandler) Guard(w http.ResponseWriter, r *http.Request) {
	page := r.URL.Query().Get("page")
	if page == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errMissingPage)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, h.manager(r).Guard(r.Context(), page))
}

func (h *SessionHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req application.Profile
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	manager := h.manager(r)
	session, err := manager.UpdateProfile(r.Context(), req)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toSessionDTO(*session, session.ExpiryTime.Sub(manager.Clock().Now())))
}

func (h *SessionHandler) Theme(w http.ResponseWriter, r *http.Request) {
	h.responder.writeJSON(r.Context(), w, http.StatusOK, themeDTO{Theme: h.manager(r).Theme(r.Context())})
}

func (h *SessionHandler) SetTheme(w http.ResponseWriter, r *http.Request) {
	var req themeDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	manager := h.manager(r)
	if err := manager.SetTheme(r.Context(), req.Theme); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, themeDTO{Theme: manager.Theme(r.Context())})
}

func (h *SessionHandler) ToggleTheme(w http.ResponseWriter, r *http.Request) {
	theme, err := h.manager(r).ToggleTheme(r.Context())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, themeDTO{Theme: theme})
}

type loginRequest struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	RememberMe bool   `json:"rememberMe"`
}

type loginResponse struct {
	Session  sessionDTO `json:"session"`
	Redirect string     `json:"redirect"`
}

type userDTO struct {
	ID      string              `json:"id"`
	Name    string              `json:"name"`
	Email   string              `json:"email"`
	Profile application.Profile `json:"profile"`
}

// sessionDTO omits the password hash.
type sessionDTO struct {
	SessionID        string  `json:"sessionId"`
	User             userDTO `json:"user"`
	LoginTime        string  `json:"loginTime"`
	LastActivity     string  `json:"lastActivity"`
	ExpiryTime       string  `json:"expiryTime"`
	RememberMe       bool    `json:"rememberMe"`
	RemainingSeconds int64   `json:"remainingSeconds"`
}

type themeDTO struct {
	Theme string `json:"theme"`
}

func toSessionDTO(s application.Session, remaining time.Duration) sessionDTO {
	if remaining < 0 {
		remaining = 0
	}
	return sessionDTO{
		SessionID: s.SessionID,
		User: userDTO{
			ID:      s.User.ID,
			Name:    s.User.Name,
			Email:   s.User.Email,
			Profile: s.User.Profile,
		},
		LoginTime:        s.LoginTime.UTC().Format(time.RFC3339),
		LastActivity:     s.LastActivity.UTC().Format(time.RFC3339),
		ExpiryTime:       s.ExpiryTime.UTC().Format(time.RFC3339),
		RememberMe:       s.RememberMe,
		RemainingSeconds: int64(remaining / time.Second),
	}
}
