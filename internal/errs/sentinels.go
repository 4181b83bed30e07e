// Package errs contains sentinel errors and the classification used to surface failures.
package errs

import "errors"

// Common sentinels across repository/service layers.
var (
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict indicates an attempt to start a second active session.
	ErrConflict = errors.New("active session already exists")

	// ErrValidation indicates rejected input.
	ErrValidation = errors.New("validation failed")
)
