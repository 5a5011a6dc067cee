package provider

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrProviderUnavailable is returned when the management token could not be acquired
	// or a provider call failed for a reason other than a retryable rate limit.
	ErrProviderUnavailable = errors.New("identity provider unavailable")

	// ErrRevocationQueueFull is returned when a revocation job could not be queued without blocking.
	ErrRevocationQueueFull = errors.New("revocation queue is full")

	// ErrEmptySubjectID is returned when a provider call is made without a subject id.
	ErrEmptySubjectID = errors.New("subject id can not be empty")
)

// RateLimit is the quota state reported by the provider with every response.
type RateLimit struct {
	Limit     int
	Remaining int
	// Reset is the instant the quota is refilled. Zero if the provider did not say.
	Reset time.Time
}

// RateLimitError is returned by Client when the provider rejected a call with HTTP 429.
type RateLimitError struct {
	RateLimit RateLimit
	Message   string
}

func (e *RateLimitError) Error() string {
	if e.RateLimit.Reset.IsZero() {
		return fmt.Sprintf("rate limit exceeded (remaining %d): %s", e.RateLimit.Remaining, e.Message)
	}

	return fmt.Sprintf("rate limit exceeded (remaining %d, reset %s): %s",
		e.RateLimit.Remaining, e.RateLimit.Reset.UTC().Format(time.RFC3339), e.Message)
}

// APIError is a non-2xx, non-429 response from the management API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("management api returned %d: %s", e.StatusCode, e.Message)
}

// unavailable wraps err as ErrProviderUnavailable unless it already is one.
func unavailable(op string, err error) error {
	if errors.Is(err, ErrProviderUnavailable) {
		return fmt.Errorf("%s: %w", op, err)
	}

	return fmt.Errorf("%w: %s: %w", ErrProviderUnavailable, op, err)
}
