package http

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// OriginCookie names the cookie carrying the signed origin token.
const OriginCookie = "portal_origin"

// DefaultOriginLifetime bounds how long a browser keeps its origin.
const DefaultOriginLifetime = 400 * 24 * time.Hour

var errInvalidOrigin = errors.New("invalid origin token")

// OriginIssuer signs and verifies origin tokens. Tokens are HS256 JWTs whose
// subject is a UUID.
type OriginIssuer struct {
	secret   []byte
	lifetime time.Duration
	now      func() time.Time
}

// NewOriginIssuer constructs an issuer. A nil now uses time.Now.
func NewOriginIssuer(secret []byte, now func() time.Time) (*OriginIssuer, error) {
	if len(secret) == 0 {
		return nil, errors.New("origin secret must not be empty")
	}
	if now == nil {
		now = time.Now
	}
	return &OriginIssuer{secret: secret, lifetime: DefaultOriginLifetime, now: now}, nil
}

// Issue mints a token for a fresh origin and returns both.
func (o *OriginIssuer) Issue() (origin, token string, err error) {
	origin = uuid.NewString()
	now := o.now()
	claims := jwt.RegisteredClaims{
		Subject:   origin,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(o.lifetime)),
	}
	token, err = jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(o.secret)
	if err != nil {
		return "", "", fmt.Errorf("sign origin token: %w", err)
	}
	return origin, token, nil
}

// Verify returns the origin a token was issued for.
func (o *OriginIssuer) Verify(token string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return o.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(o.now),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %w", errInvalidOrigin, err)
	}
	if !parsed.Valid {
		return "", errInvalidOrigin
	}
	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return "", fmt.Errorf("%w: subject: %w", errInvalidOrigin, err)
	}
	return id.String(), nil
}

// WithOrigin resolves the caller's origin from its cookie, minting a new one
// when the cookie is absent or fails verification.
func WithOrigin(issuer *OriginIssuer, logger *slog.Logger) func(http.Handler) http.Handler {
	responder := newResponder(logger)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if cookie, err := r.Cookie(OriginCookie); err == nil {
				origin, verr := issuer.Verify(cookie.Value)
				if verr == nil {
					next.ServeHTTP(w, r.WithContext(ContextWithOrigin(ctx, origin)))
					return
				}
				handlerLogger(ctx, logger, "WithOrigin", "verify", "error_kind", "invalid_origin").
					WarnContext(ctx, "discarding origin cookie", "error", verr)
			}

			origin, token, err := issuer.Issue()
			if err != nil {
				responder.writeError(ctx, w, http.StatusInternalServerError, err)
				return
			}
			http.SetCookie(w, &http.Cookie{
				Name:     OriginCookie,
				Value:    token,
				Path:     "/",
				MaxAge:   int(issuer.lifetime / time.Second),
				HttpOnly: true,
				Secure:   r.TLS != nil,
				SameSite: http.SameSiteLaxMode,
			})
			next.ServeHTTP(w, r.WithContext(ContextWithOrigin(ctx, origin)))
		})
	}
}
