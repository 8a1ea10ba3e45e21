package application

import (
	"regexp"
	"strings"
	"unicode/utf16"
)

const (
	msgInvalidName     = "Please enter a valid name (minimum 2 characters, letters only)"
	msgInvalidEmail    = "Please enter a valid email address"
	msgInvalidPassword = "Password must be at least 6 characters long"
	msgRequired        = "is required"

	minPasswordLength = 6
)

var (
	namePattern  = regexp.MustCompile(`^[a-zA-Z\s]{2,}$`)
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// ValidateName reports whether name is at least two letters or spaces.
func ValidateName(name string) bool {
	return namePattern.MatchString(strings.TrimSpace(name))
}

// ValidateEmail reports whether email has a single-@ shape with a dotted domain.
func ValidateEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// ValidatePassword reports whether password meets the minimum length,
// counted in UTF-16 code units as browsers report it.
func ValidatePassword(password string) bool {
	return len(utf16.Encode([]rune(password))) >= minPasswordLength
}

// ValidateForm runs every field validator and collects all failures.
func ValidateForm(form FormInput) FormValidation {
	verr := &ValidationError{}
	if form.Name == "" || !ValidateName(form.Name) {
		verr.add("name", msgInvalidName)
	}
	if form.Email == "" || !ValidateEmail(form.Email) {
		verr.add("email", msgInvalidEmail)
	}
	if form.Password == "" || !ValidatePassword(form.Password) {
		verr.add("password", msgInvalidPassword)
	}

	fieldErrors := verr.FieldErrors
	if fieldErrors == nil {
		fieldErrors = map[string]string{}
	}
	return FormValidation{IsValid: !verr.HasErrors(), FieldErrors: fieldErrors}
}

// SanitizeInput trims s and strips angle brackets.
func SanitizeInput(s string) string {
	return strings.NewReplacer("<", "", ">", "").Replace(strings.TrimSpace(s))
}

// validateUserInput checks the fields Login requires.
func validateUserInput(in UserInput) *ValidationError {
	verr := &ValidationError{}
	if strings.TrimSpace(in.Name) == "" {
		verr.add("name", "name "+msgRequired)
	}
	if strings.TrimSpace(in.Email) == "" {
		verr.add("email", "email "+msgRequired)
	}
	if strings.TrimSpace(in.Password) == "" {
		verr.add("password", "password "+msgRequired)
	}
	if verr.HasErrors() {
		return verr
	}
	return nil
}
