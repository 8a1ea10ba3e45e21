package application

import (
	"context"
	"encoding/json"
	"time"
)

// Storage keys shared with the page layer.
const (
	KeySession            = "session"
	KeyUser               = "user"
	KeyRedirectAfterLogin = "redirectAfterLogin"
	KeyTheme              = "theme"
)

// UserInput captures the credential fields supplied to Login.
type UserInput struct {
	ID       string
	Name     string
	Email    string
	Password string
	Profile  Profile
}

// Profile holds the free-form, user-editable portion of a user record.
type Profile struct {
	Bio         string            `json:"bio"`
	Skills      string            `json:"skills"`
	Progress    int               `json:"progress"`
	Preferences map[string]string `json:"preferences"`
}

// User is the authenticated identity embedded in a session.
type User struct {
	ID           string  `json:"id,omitempty"`
	Name         string  `json:"name"`
	Email        string  `json:"email"`
	PasswordHash string  `json:"passwordHash"`
	LoginTime    int64   `json:"loginTime,omitempty"`
	Profile      Profile `json:"profile"`
}

// Session is one authenticated browsing period.
type Session struct {
	User         User
	LoginTime    time.Time
	LastActivity time.Time
	ExpiryTime   time.Time
	RememberMe   bool
	SessionID    string
}

// sessionRecord is the persisted JSON layout. Times are Unix milliseconds.
type sessionRecord struct {
	User         User   `json:"user"`
	LoginTime    int64  `json:"loginTime"`
	LastActivity int64  `json:"lastActivity"`
	RememberMe   bool   `json:"rememberMe"`
	SessionID    string `json:"sessionId"`
	ExpiryTime   int64  `json:"expiryTime"`
}

// MarshalJSON encodes the session in its persisted layout.
func (s Session) MarshalJSON() ([]byte, error) {
	return json.Marshal(sessionRecord{
		User:         s.User,
		LoginTime:    s.LoginTime.UnixMilli(),
		LastActivity: s.LastActivity.UnixMilli(),
		RememberMe:   s.RememberMe,
		SessionID:    s.SessionID,
		ExpiryTime:   s.ExpiryTime.UnixMilli(),
	})
}

// UnmarshalJSON decodes the persisted layout.
func (s *Session) UnmarshalJSON(data []byte) error {
	var rec sessionRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return err
	}
	*s = Session{
		User:         rec.User,
		LoginTime:    time.UnixMilli(rec.LoginTime).UTC(),
		LastActivity: time.UnixMilli(rec.LastActivity).UTC(),
		ExpiryTime:   time.UnixMilli(rec.ExpiryTime).UTC(),
		RememberMe:   rec.RememberMe,
		SessionID:    rec.SessionID,
	}
	return nil
}

// Expired reports whether now is past the expiry instant.
func (s Session) Expired(now time.Time) bool {
	return now.After(s.ExpiryTime)
}

// SessionInfo is a display-ready view of the current session.
type SessionInfo struct {
	User         User          `json:"user"`
	LoginTime    string        `json:"loginTime"`
	LastActivity string        `json:"lastActivity"`
	ExpiryTime   string        `json:"expiryTime"`
	RememberMe   bool          `json:"rememberMe"`
	SessionID    string        `json:"sessionId"`
	Remaining    time.Duration `json:"remaining"`
}

// FormInput carries raw login form values.
type FormInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// FormValidation is the result of ValidateForm.
type FormValidation struct {
	IsValid     bool              `json:"isValid"`
	FieldErrors map[string]string `json:"errors"`
}

// SignInResult is returned by SignIn on success.
type SignInResult struct {
	Session  Session
	Redirect string
}

// GuardResult tells the navigation layer whether a page may be shown.
type GuardResult struct {
	Allowed  bool   `json:"allowed"`
	Redirect string `json:"redirect,omitempty"`
}

// AuthEventType distinguishes login from logout notifications.
type AuthEventType string

const (
	// AuthEventLogin is published after a successful login.
	AuthEventLogin AuthEventType = "login"
	// AuthEventLogout is published after logout and, when enabled, lazy expiry.
	AuthEventLogout AuthEventType = "logout"
)

// AuthEvent is delivered to listeners registered with OnAuthChange.
type AuthEvent struct {
	Type       AuthEventType `json:"type"`
	User       *User         `json:"user"`
	IsLoggedIn bool          `json:"isLoggedIn"`
	Scope      string        `json:"scope,omitempty"`
	At         time.Time     `json:"at"`
}

// AuthListener receives auth events synchronously.
type AuthListener func(ctx context.Context, event AuthEvent)

// Theme values persisted under KeyTheme.
const (
	ThemeDark  = "dark"
	ThemeLight = "light"
)
