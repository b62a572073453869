package services

import "errors"

// Service errors. Callers wrap them with context using fmt.Errorf("...: %w", err)
// and handlers map them to HTTP status codes with errors.Is.
var (
	// ErrValidation is returned for malformed or missing input
	ErrValidation = errors.New("validation error")
	// ErrNotFound is returned when the referenced record does not exist
	ErrNotFound = errors.New("resource not found")
	// ErrConflict is returned when a unique value is already taken. Retryable.
	ErrConflict = errors.New("conflict")
	// ErrInvalidToken is returned for unknown or expired recovery tokens
	ErrInvalidToken = errors.New("invalid or expired token")
	// ErrUnauthorized is returned for wrong credentials
	ErrUnauthorized = errors.New("unauthorized")
	// ErrAlreadySetup is returned when first-run setup is attempted twice
	ErrAlreadySetup = errors.New("system already configured")
	// ErrNotConfigured is returned when an operation needs setup to have run
	ErrNotConfigured = errors.New("system not configured")
)
