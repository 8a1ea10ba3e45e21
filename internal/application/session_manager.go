package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/example/internship-portal/internal/clock"
	"github.com/example/internship-portal/internal/persistence"
)

const (
	// DefaultSessionTimeout is the lifetime of a session without the remember flag.
	DefaultSessionTimeout = 24 * time.Hour
	// DefaultRememberTimeout is the lifetime of a remembered session.
	DefaultRememberTimeout = 30 * 24 * time.Hour
	// DefaultLoginDelay is the simulated network delay of SignIn.
	DefaultLoginDelay = time.Second

	// LoginPage is where unauthenticated visitors of protected pages are sent.
	LoginPage = "login.html"
	// HomePage is the post-login destination when no redirect was remembered.
	HomePage = "index.html"
)

// DefaultProtectedPages lists pages that require a session.
var DefaultProtectedPages = []string{"/profile.html", "/intern.html"}

// SessionOptions configures a SessionManager. Zero values select defaults.
type SessionOptions struct {
	Clock           clock.Clock
	NewSessionID    func() string
	NewUserID       func() string
	HashPassword    PasswordHasher
	SessionTimeout  time.Duration
	RememberTimeout time.Duration
	// LoginDelay is the pause SignIn takes before logging in. Zero disables it.
	LoginDelay     time.Duration
	ProtectedPages []string
	// NotifyOnLazyExpiry publishes a logout event when a read evicts an
	// expired or corrupted session. Explicit Logout always publishes.
	NotifyOnLazyExpiry bool
	Metrics            SessionMetrics
	Logger             *slog.Logger
}

// SessionManager owns the session lifecycle over a key-value store.
type SessionManager struct {
	store              persistence.Store
	scope              string
	clock              clock.Clock
	newSessionID       func() string
	newUserID          func() string
	hashPassword       PasswordHasher
	sessionTimeout     time.Duration
	rememberTimeout    time.Duration
	loginDelay         time.Duration
	protectedPages     []string
	notifyOnLazyExpiry bool
	metrics            SessionMetrics
	listeners          *authListeners
	logger             *slog.Logger
}

// NewSessionManager constructs a SessionManager over store.
func NewSessionManager(store persistence.Store, opts SessionOptions) *SessionManager {
	if opts.NewSessionID == nil {
		opts.NewSessionID = func() string { return "navintern_" + uuid.NewString() }
	}
	if opts.NewUserID == nil {
		opts.NewUserID = func() string { return "user_" + uuid.NewString() }
	}
	if opts.HashPassword == nil {
		opts.HashPassword = Argon2idHasher(DefaultArgon2idParams)
	}
	if opts.SessionTimeout <= 0 {
		opts.SessionTimeout = DefaultSessionTimeout
	}
	if opts.RememberTimeout <= 0 {
		opts.RememberTimeout = DefaultRememberTimeout
	}
	if opts.LoginDelay < 0 {
		opts.LoginDelay = 0
	}
	if opts.ProtectedPages == nil {
		opts.ProtectedPages = DefaultProtectedPages
	}
	if opts.Metrics == nil {
		opts.Metrics = nopMetrics{}
	}
	return &SessionManager{
		store:              store,
		clock:              clock.OrReal(opts.Clock),
		newSessionID:       opts.NewSessionID,
		newUserID:          opts.NewUserID,
		hashPassword:       opts.HashPassword,
		sessionTimeout:     opts.SessionTimeout,
		rememberTimeout:    opts.RememberTimeout,
		loginDelay:         opts.LoginDelay,
		protectedPages:     append([]string(nil), opts.ProtectedPages...),
		notifyOnLazyExpiry: opts.NotifyOnLazyExpiry,
		metrics:            opts.Metrics,
		listeners:          &authListeners{},
		logger:             defaultLogger(opts.Logger),
	}
}

// Scoped returns a manager over a prefixed view of the same store. It shares
// listeners, clock and configuration with the receiver.
func (m *SessionManager) Scoped(prefix string) *SessionManager {
	scoped := *m
	scoped.store = persistence.WithPrefix(m.store, prefix)
	if prefix != "" {
		if m.scope != "" {
			scoped.scope = m.scope + "/" + prefix
		} else {
			scoped.scope = prefix
		}
	}
	return &scoped
}

// Scope returns the key prefix this manager is bound to.
func (m *SessionManager) Scope() string {
	return m.scope
}

// Clock returns the manager's time source.
func (m *SessionManager) Clock() clock.Clock {
	return m.clock
}

func (m *SessionManager) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if m.scope != "" {
		attrs = append(attrs, "scope", m.scope)
	}
	return serviceLogger(ctx, m.logger, "SessionManager", operation, attrs...)
}

// now truncates to milliseconds so returned sessions equal their persisted form.
func (m *SessionManager) now() time.Time {
	return m.clock.Now().UTC().Truncate(time.Millisecond)
}

func (m *SessionManager) timeout(remember bool) time.Duration {
	if remember {
		return m.rememberTimeout
	}
	return m.sessionTimeout
}

// OnAuthChange registers listener for login and logout events. The returned
// function unregisters it.
func (m *SessionManager) OnAuthChange(listener AuthListener) (unsubscribe func()) {
	if listener == nil {
		return func() {}
	}
	return m.listeners.add(listener)
}

func (m *SessionManager) notify(ctx context.Context, eventType AuthEventType, user *User) {
	m.listeners.publish(ctx, m.logger, AuthEvent{
		Type:       eventType,
		User:       user,
		IsLoggedIn: eventType == AuthEventLogin,
		Scope:      m.scope,
		At:         m.now(),
	})
}

// Login validates in, persists a fresh session and user record, then notifies
// listeners.
func (m *SessionManager) Login(ctx context.Context, in UserInput, remember bool) (session Session, err error) {
	logger := m.loggerWith(ctx, "Login", "remember_me", remember)
	defer func() {
		if err != nil {
			m.metrics.LoginRejected(ErrorKind(err))
			logger.WarnContext(ctx, "login failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With(
			"session_id", session.SessionID,
			"user_id", session.User.ID,
		).InfoContext(ctx, "login succeeded")
	}()

	if verr := validateUserInput(in); verr != nil {
		err = verr
		return
	}

	var hash string
	hash, err = m.hashPassword(in.Password)
	if err != nil {
		err = fmt.Errorf("hash password: %w", err)
		return
	}

	now := m.now()
	user := User{
		ID:           in.ID,
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		LoginTime:    now.UnixMilli(),
		Profile:      cloneProfile(in.Profile),
	}
	session = Session{
		User:         user,
		LoginTime:    now,
		LastActivity: now,
		ExpiryTime:   now.Add(m.timeout(remember)),
		RememberMe:   remember,
		SessionID:    m.newSessionID(),
	}

	if err = m.writeJSON(ctx, KeySession, session); err != nil {
		return
	}
	if err = m.writeJSON(ctx, KeyUser, user); err != nil {
		return
	}

	m.metrics.LoginSucceeded(remember)
	m.notify(ctx, AuthEventLogin, &user)
	return
}

// Logout clears the session and user records and notifies listeners with the
// last known user, which may be nil.
func (m *SessionManager) Logout(ctx context.Context) (err error) {
	logger := m.loggerWith(ctx, "Logout")

	user := m.peekUser(ctx)
	if err = m.clear(ctx); err != nil {
		logger.ErrorContext(ctx, "logout failed", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	m.metrics.LoggedOut()
	m.notify(ctx, AuthEventLogout, user)
	if user != nil {
		logger = logger.With("user_id", user.ID)
	}
	logger.InfoContext(ctx, "logged out")
	return nil
}

// GetSession returns the current session, or nil when there is none. Expired
// and unreadable sessions are evicted. A live session has its last activity
// refreshed before it is returned.
func (m *SessionManager) GetSession(ctx context.Context) (*Session, error) {
	logger := m.loggerWith(ctx, "GetSession")

	raw, err := m.store.Get(ctx, KeySession)
	if err != nil {
		logger.ErrorContext(ctx, "failed to read session", "error", err, "error_kind", ErrorKind(err))
		return nil, fmt.Errorf("read session: %w", err)
	}
	if raw == nil {
		return nil, nil
	}

	var session Session
	if decodeErr := json.Unmarshal(raw, &session); decodeErr != nil {
		corruption := fmt.Errorf("%w: %v", ErrStorageCorruption, decodeErr)
		logger.WarnContext(ctx, "discarding unreadable session", "error", corruption, "error_kind", ErrorKind(corruption))
		return nil, m.evict(ctx, EvictCorrupted, nil)
	}

	now := m.now()
	if session.Expired(now) {
		logger.InfoContext(ctx, "session expired",
			"session_id", session.SessionID,
			"expired_at", session.ExpiryTime,
		)
		user := session.User
		return nil, m.evict(ctx, EvictExpired, &user)
	}

	session.LastActivity = now
	if err := m.writeJSON(ctx, KeySession, session); err != nil {
		logger.ErrorContext(ctx, "failed to refresh last activity", "error", err, "error_kind", ErrorKind(err))
		return nil, err
	}
	return &session, nil
}

func (m *SessionManager) evict(ctx context.Context, reason string, user *User) error {
	if err := m.clear(ctx); err != nil {
		return err
	}
	m.metrics.SessionEvicted(reason)
	if m.notifyOnLazyExpiry {
		m.notify(ctx, AuthEventLogout, user)
	}
	return nil
}

// UpdateLastActivity stamps the stored session with the current time. Failures
// are logged and swallowed.
func (m *SessionManager) UpdateLastActivity(ctx context.Context) {
	logger := m.loggerWith(ctx, "UpdateLastActivity")

	raw, err := m.store.Get(ctx, KeySession)
	if err != nil {
		logger.WarnContext(ctx, "failed to read session", "error", err, "error_kind", ErrorKind(err))
		return
	}
	if raw == nil {
		return
	}

	var session Session
	if err := json.Unmarshal(raw, &session); err != nil {
		corruption := fmt.Errorf("%w: %v", ErrStorageCorruption, err)
		logger.WarnContext(ctx, "failed to update last activity", "error", corruption, "error_kind", ErrorKind(corruption))
		return
	}
	session.LastActivity = m.now()
	if err := m.writeJSON(ctx, KeySession, session); err != nil {
		logger.WarnContext(ctx, "failed to update last activity", "error", err, "error_kind", ErrorKind(err))
	}
}

// ExtendSession restarts the expiry window of the current session. It reports
// whether a session existed.
func (m *SessionManager) ExtendSession(ctx context.Context) (bool, error) {
	session, err := m.GetSession(ctx)
	if err != nil || session == nil {
		return false, err
	}

	session.ExpiryTime = m.now().Add(m.timeout(session.RememberMe))
	if err := m.writeJSON(ctx, KeySession, *session); err != nil {
		return false, err
	}
	m.metrics.SessionExtended()
	m.loggerWith(ctx, "ExtendSession",
		"session_id", session.SessionID,
		"expires_at", session.ExpiryTime,
	).InfoContext(ctx, "session extended")
	return true, nil
}

// IsLoggedIn reports whether a live session exists. Storage failures count
// as logged out.
func (m *SessionManager) IsLoggedIn(ctx context.Context) bool {
	session, err := m.GetSession(ctx)
	return err == nil && session != nil
}

// CurrentUser returns the user of the live session, or nil.
func (m *SessionManager) CurrentUser(ctx context.Context) *User {
	session, err := m.GetSession(ctx)
	if err != nil || session == nil {
		return nil
	}
	user := session.User
	return &user
}

// SessionInfo returns a display-ready snapshot of the live session, or nil.
func (m *SessionManager) SessionInfo(ctx context.Context) (*SessionInfo, error) {
	session, err := m.GetSession(ctx)
	if err != nil || session == nil {
		return nil, err
	}
	return &SessionInfo{
		User:         session.User,
		LoginTime:    session.LoginTime.Format(time.RFC3339),
		LastActivity: session.LastActivity.Format(time.RFC3339),
		ExpiryTime:   session.ExpiryTime.Format(time.RFC3339),
		RememberMe:   session.RememberMe,
		SessionID:    session.SessionID,
		Remaining:    session.ExpiryTime.Sub(m.now()),
	}, nil
}

// UpdateProfile replaces the profile on both the embedded and standalone user.
func (m *SessionManager) UpdateProfile(ctx context.Context, profile Profile) (session *Session, err error) {
	logger := m.loggerWith(ctx, "UpdateProfile")
	defer func() {
		if err != nil {
			logger.WarnContext(ctx, "profile update failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("user_id", session.User.ID).InfoContext(ctx, "profile updated")
	}()

	session, err = m.GetSession(ctx)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrNotLoggedIn
	}

	session.User.Profile = cloneProfile(profile)
	if err = m.writeJSON(ctx, KeySession, *session); err != nil {
		return nil, err
	}
	if err = m.writeJSON(ctx, KeyUser, session.User); err != nil {
		return nil, err
	}
	return session, nil
}

// SignIn runs the login form flow: sanitize, validate, wait out the simulated
// network delay, enrich the user and log in. It returns where to navigate
// next.
func (m *SessionManager) SignIn(ctx context.Context, form FormInput, remember bool) (SignInResult, error) {
	form = FormInput{
		Name:     SanitizeInput(form.Name),
		Email:    SanitizeInput(form.Email),
		Password: strings.TrimSpace(form.Password),
	}

	validation := ValidateForm(form)
	if !validation.IsValid {
		err := &ValidationError{FieldErrors: validation.FieldErrors}
		m.metrics.LoginRejected(ErrorKind(err))
		m.loggerWith(ctx, "SignIn").WarnContext(ctx, "sign in rejected", "error", err, "error_kind", ErrorKind(err), "fields", len(validation.FieldErrors))
		return SignInResult{}, err
	}

	if m.loginDelay > 0 {
		select {
		case <-m.clock.After(m.loginDelay):
		case <-ctx.Done():
			return SignInResult{}, ctx.Err()
		}
	}

	session, err := m.Login(ctx, UserInput{
		ID:       m.newUserID(),
		Name:     form.Name,
		Email:    form.Email,
		Password: form.Password,
	}, remember)
	if err != nil {
		return SignInResult{}, err
	}
	return SignInResult{Session: session, Redirect: m.ConsumeRedirect(ctx)}, nil
}

// IsProtected reports whether page requires a session. A page is protected
// when its path contains any configured protected page.
func (m *SessionManager) IsProtected(page string) bool {
	for _, p := range m.protectedPages {
		if p != "" && strings.Contains(page, p) {
			return true
		}
	}
	return false
}

// Guard decides whether page may be shown. Anonymous visits to protected pages
// remember the page and redirect to the login page.
func (m *SessionManager) Guard(ctx context.Context, page string) GuardResult {
	if !m.IsProtected(page) || m.IsLoggedIn(ctx) {
		return GuardResult{Allowed: true}
	}
	if err := m.RememberRedirect(ctx, page); err != nil {
		m.loggerWith(ctx, "Guard", "page", page).WarnContext(ctx, "failed to remember redirect", "error", err, "error_kind", ErrorKind(err))
	}
	return GuardResult{Allowed: false, Redirect: LoginPage}
}

// RememberRedirect stores url as the post-login destination.
func (m *SessionManager) RememberRedirect(ctx context.Context, url string) error {
	if err := m.store.Set(ctx, KeyRedirectAfterLogin, []byte(url)); err != nil {
		return fmt.Errorf("remember redirect: %w", err)
	}
	return nil
}

// ConsumeRedirect returns and clears the remembered destination, or HomePage.
func (m *SessionManager) ConsumeRedirect(ctx context.Context) string {
	logger := m.loggerWith(ctx, "ConsumeRedirect")

	raw, err := m.store.Get(ctx, KeyRedirectAfterLogin)
	if err != nil {
		logger.WarnContext(ctx, "failed to read redirect", "error", err, "error_kind", ErrorKind(err))
		return HomePage
	}
	if err := m.store.Delete(ctx, KeyRedirectAfterLogin); err != nil {
		logger.WarnContext(ctx, "failed to clear redirect", "error", err, "error_kind", ErrorKind(err))
	}
	if len(raw) == 0 {
		return HomePage
	}
	return string(raw)
}

// Theme returns the stored presentation theme. Anything but "light" is dark.
func (m *SessionManager) Theme(ctx context.Context) string {
	raw, err := m.store.Get(ctx, KeyTheme)
	if err != nil {
		m.loggerWith(ctx, "Theme").WarnContext(ctx, "failed to read theme", "error", err, "error_kind", ErrorKind(err))
		return ThemeDark
	}
	if string(raw) == ThemeLight {
		return ThemeLight
	}
	return ThemeDark
}

// SetTheme stores theme. Dark is the default and is stored as an absent key.
func (m *SessionManager) SetTheme(ctx context.Context, theme string) error {
	switch strings.ToLower(strings.TrimSpace(theme)) {
	case ThemeLight:
		return m.store.Set(ctx, KeyTheme, []byte(ThemeLight))
	case ThemeDark:
		return m.store.Delete(ctx, KeyTheme)
	default:
		return fmt.Errorf("%w: %q", ErrInvalidTheme, theme)
	}
}

// ToggleTheme flips between light and dark and returns the new theme.
func (m *SessionManager) ToggleTheme(ctx context.Context) (string, error) {
	next := ThemeLight
	if m.Theme(ctx) == ThemeLight {
		next = ThemeDark
	}
	if err := m.SetTheme(ctx, next); err != nil {
		return "", err
	}
	return next, nil
}

// peekUser decodes the stored session without side effects. Expired or
// unreadable sessions yield nil.
func (m *SessionManager) peekUser(ctx context.Context) *User {
	raw, err := m.store.Get(ctx, KeySession)
	if err != nil || raw == nil {
		return nil
	}
	var session Session
	if err := json.Unmarshal(raw, &session); err != nil || session.Expired(m.now()) {
		return nil
	}
	return &session.User
}

func (m *SessionManager) clear(ctx context.Context) error {
	errSession := m.store.Delete(ctx, KeySession)
	errUser := m.store.Delete(ctx, KeyUser)
	if err := errors.Join(errSession, errUser); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

func (m *SessionManager) writeJSON(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := m.store.Set(ctx, key, data); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

func cloneProfile(p Profile) Profile {
	out := p
	out.Preferences = make(map[string]string, len(p.Preferences))
	maps.Copy(out.Preferences, p.Preferences)
	return out
}
