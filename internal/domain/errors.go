package domain

import "errors"

// Business outcomes surfaced to the HTTP boundary. Services return these
// (possibly wrapped); everything else is treated as an internal failure.
var (
	ErrNotFound       = errors.New("not found")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrConflict       = errors.New("conflict")
	ErrInvalidRequest = errors.New("invalid request")

	// Password recovery
	ErrCodeExpired = errors.New("code expired")
	ErrCodeInvalid = errors.New("invalid code")
)
