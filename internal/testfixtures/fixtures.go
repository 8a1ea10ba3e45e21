package testfixtures

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/internship-portal/internal/application"
	"github.com/example/internship-portal/internal/matching"
	"github.com/example/internship-portal/internal/persistence"
)

var (
	userCounter        uint64
	sessionCounter     uint64
	opportunityCounter uint64
)

var referenceTime = time.Date(2024, time.January, 2, 15, 4, 5, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// ----------------------------- User fixtures -----------------------------

// UserFixture represents deterministic login credentials and profile data.
type UserFixture struct {
	ID       string
	Name     string
	Email    string
	Password string
	Profile  application.Profile
}

// UserOption configures the generated user fixture.
type UserOption func(*UserFixture)

// NewUserFixture returns a deterministic user fixture with optional overrides.
// Generated names contain letters only so they pass form validation.
func NewUserFixture(opts ...UserOption) UserFixture {
	idx := atomic.AddUint64(&userCounter, 1)
	fixture := UserFixture{
		ID:       fmt.Sprintf("user_%03d", idx),
		Name:     "Test User " + letters(idx),
		Email:    fmt.Sprintf("user%03d@example.com", idx),
		Password: fmt.Sprintf("secret-%03d", idx),
		Profile:  application.Profile{Preferences: map[string]string{}},
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithUserID overrides the generated user ID.
func WithUserID(id string) UserOption {
	return func(f *UserFixture) {
		f.ID = id
	}
}

// WithUserName overrides the generated name.
func WithUserName(name string) UserOption {
	return func(f *UserFixture) {
		f.Name = name
	}
}

// WithUserEmail overrides the generated email address.
func WithUserEmail(email string) UserOption {
	return func(f *UserFixture) {
		f.Email = email
	}
}

// WithUserPassword overrides the generated password.
func WithUserPassword(password string) UserOption {
	return func(f *UserFixture) {
		f.Password = password
	}
}

// WithUserProfile overrides the profile.
func WithUserProfile(profile application.Profile) UserOption {
	return func(f *UserFixture) {
		f.Profile = profile
	}
}

// Input converts the fixture into Login input.
func (f UserFixture) Input() application.UserInput {
	return application.UserInput{
		ID:       f.ID,
		Name:     f.Name,
		Email:    f.Email,
		Password: f.Password,
		Profile:  f.Profile,
	}
}

// Form converts the fixture into login form values.
func (f UserFixture) Form() application.FormInput {
	return application.FormInput{Name: f.Name, Email: f.Email, Password: f.Password}
}

// Application converts the fixture into a stored user record with the given
// password hash.
func (f UserFixture) Application(passwordHash string) application.User {
	return application.User{
		ID:           f.ID,
		Name:         f.Name,
		Email:        f.Email,
		PasswordHash: passwordHash,
		Profile:      f.Profile,
	}
}

// letters renders n in base 26 using a-z.
func letters(n uint64) string {
	var out []byte
	for {
		out = append([]byte{byte('a' + n%26)}, out...)
		n /= 26
		if n == 0 {
			return string(out)
		}
	}
}

// --------------------------- Session fixtures ----------------------------

// SessionFixture describes a persisted session record, useful for seeding a
// store directly.
type SessionFixture struct {
	User       UserFixture
	SessionID  string
	LoginTime  time.Time
	Lifetime   time.Duration
	RememberMe bool
}

// SessionOption configures the generated session fixture.
type SessionOption func(*SessionFixture)

// NewSessionFixture returns a session that logged in at ReferenceTime and
// lasts one day.
func NewSessionFixture(opts ...SessionOption) SessionFixture {
	idx := atomic.AddUint64(&sessionCounter, 1)
	fixture := SessionFixture{
		User:      NewUserFixture(),
		SessionID: fmt.Sprintf("session-%03d", idx),
		LoginTime: referenceTime,
		Lifetime:  24 * time.Hour,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithSessionUser overrides the embedded user.
func WithSessionUser(user UserFixture) SessionOption {
	return func(f *SessionFixture) {
		f.User = user
	}
}

// WithSessionID overrides the session identifier.
func WithSessionID(id string) SessionOption {
	return func(f *SessionFixture) {
		f.SessionID = id
	}
}

// WithSessionLoginTime overrides the login instant.
func WithSessionLoginTime(t time.Time) SessionOption {
	return func(f *SessionFixture) {
		f.LoginTime = t
	}
}

// WithSessionLifetime overrides the distance from login to expiry.
func WithSessionLifetime(d time.Duration) SessionOption {
	return func(f *SessionFixture) {
		f.Lifetime = d
	}
}

// WithSessionRemembered sets the remember flag.
func WithSessionRemembered(remember bool) SessionOption {
	return func(f *SessionFixture) {
		f.RememberMe = remember
	}
}

// Application converts the fixture into a session value.
func (f SessionFixture) Application() application.Session {
	return application.Session{
		User:         f.User.Application("fixture-hash"),
		LoginTime:    f.LoginTime,
		LastActivity: f.LoginTime,
		ExpiryTime:   f.LoginTime.Add(f.Lifetime),
		RememberMe:   f.RememberMe,
		SessionID:    f.SessionID,
	}
}

// Persist writes the session and user records to store.
func (f SessionFixture) Persist(ctx context.Context, store persistence.Store) error {
	session := f.Application()
	raw, err := json.Marshal(session)
	if err != nil {
		return err
	}
	if err := store.Set(ctx, application.KeySession, raw); err != nil {
		return err
	}
	user, err := json.Marshal(session.User)
	if err != nil {
		return err
	}
	return store.Set(ctx, application.KeyUser, user)
}

// ------------------------- Opportunity fixtures --------------------------

// OpportunityOption configures the generated opportunity.
type OpportunityOption func(*matching.Opportunity)

// NewOpportunity returns an open, unrestricted urban opportunity requiring a
// single skill.
func NewOpportunity(opts ...OpportunityOption) matching.Opportunity {
	idx := atomic.AddUint64(&opportunityCounter, 1)
	o := matching.Opportunity{
		Title:              fmt.Sprintf("Opportunity %03d", idx),
		RequiredSkills:     []string{"go"},
		Description:        "Fixture opportunity.",
		Capacity:           1,
		Location:           "urban",
		Sectors:            []string{"Software"},
		EligibleCategories: []string{"general", "sc", "st", "obc", "pwd"},
		RepeatAllowed:      true,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithOpportunityTitle overrides the title.
func WithOpportunityTitle(title string) OpportunityOption {
	return func(o *matching.Opportunity) {
		o.Title = title
	}
}

// WithOpportunitySkills overrides the required skills.
func WithOpportunitySkills(skills ...string) OpportunityOption {
	return func(o *matching.Opportunity) {
		o.RequiredSkills = skills
	}
}

// WithOpportunityCapacity overrides the capacity.
func WithOpportunityCapacity(capacity int) OpportunityOption {
	return func(o *matching.Opportunity) {
		o.Capacity = capacity
	}
}

// WithOpportunityLocation overrides the location category.
func WithOpportunityLocation(location string) OpportunityOption {
	return func(o *matching.Opportunity) {
		o.Location = location
	}
}

// WithOpportunitySectors overrides the sector tags.
func WithOpportunitySectors(sectors ...string) OpportunityOption {
	return func(o *matching.Opportunity) {
		o.Sectors = sectors
	}
}

// WithOpportunityCategories overrides the eligible social categories.
func WithOpportunityCategories(categories ...string) OpportunityOption {
	return func(o *matching.Opportunity) {
		o.EligibleCategories = categories
	}
}

// WithRestrictedQuota marks the opportunity quota-restricted.
func WithRestrictedQuota() OpportunityOption {
	return func(o *matching.Opportunity) {
		o.RestrictedQuota = true
	}
}

// WithoutRepeatParticipants closes the opportunity to prior participants.
func WithoutRepeatParticipants() OpportunityOption {
	return func(o *matching.Opportunity) {
		o.RepeatAllowed = false
	}
}

// ReferenceQuery returns the canonical candidate query used across tests.
func ReferenceQuery() matching.RawQuery {
	return matching.RawQuery{
		Skills:            "python,statistics",
		Qualification:     "bachelor",
		Location:          "urban",
		Sectors:           "AI",
		SocialCategory:    "general",
		PastParticipation: "no",
	}
}
