package persistence

import "errors"

var (
	// ErrEmptyKey is returned when a store operation is attempted with a blank key.
	ErrEmptyKey = errors.New("persistence: empty key")
	// ErrClosed is returned by backends that have been closed.
	ErrClosed = errors.New("persistence: store closed")
)
