package application

import "errors"

var (
	// ErrNotLoggedIn is returned by operations that need a live session.
	ErrNotLoggedIn = errors.New("application: not logged in")
	// ErrStorageCorruption marks a persisted record that could not be decoded.
	// It is logged and recovered from, never returned by GetSession.
	ErrStorageCorruption = errors.New("application: storage corruption")
	// ErrInvalidTheme is returned by SetTheme for unknown theme names.
	ErrInvalidTheme = errors.New("application: invalid theme")
)

// ValidationError captures field level validation issues that callers can surface to users.
type ValidationError struct {
	FieldErrors map[string]string
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	if v == nil {
		return ""
	}
	return "validation failed"
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

// add records a field level validation error.
func (v *ValidationError) add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	v.FieldErrors[field] = message
}
