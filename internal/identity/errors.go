package identity

import (
	"errors"
	"fmt"

	"github.com/idam-admin/idam/internal/db/store"
)

var (
	// ErrDuplicateEmail is returned when an email already belongs to another active provider identity.
	ErrDuplicateEmail = errors.New("email address already belongs to another user")

	// ErrNotFound is returned when a user, website or role does not exist.
	ErrNotFound = errors.New("not found")

	// ErrValidation is returned for malformed input.
	ErrValidation = errors.New("validation failed")
)

// lookup converts a store not-found into ErrNotFound and wraps everything else.
func lookup(err error, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)

	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("%s: %w", msg, ErrNotFound)
	}

	return fmt.Errorf("%s: %w", msg, err)
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
