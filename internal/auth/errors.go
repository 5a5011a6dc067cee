package auth

import "errors"

var (
	// ErrAuthDisabled is returned when bearer authentication is disabled via configuration.
	ErrAuthDisabled = errors.New("bearer authentication is disabled")

	// ErrMissingToken is returned when a request carries no bearer token.
	ErrMissingToken = errors.New("missing bearer token")

	// ErrInvalidToken is returned when a token fails verification.
	ErrInvalidToken = errors.New("invalid bearer token")

	// ErrForbidden is returned when a valid token lacks the administrator role.
	ErrForbidden = errors.New("administrator role required")
)
