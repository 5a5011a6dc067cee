package provider

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

// RetryPolicy retries operations that failed with a *RateLimitError while the
// provider's quota is exhausted and its reset instant lies in the future.
// The wait is exactly the time left until the reset, clamped at zero.
type RetryPolicy struct {
	// MaxRetries is the number of retries after the first attempt.
	MaxRetries int
	// Now defaults to time.Now.
	Now func() time.Time
	// Sleep defaults to a context aware timer wait.
	Sleep func(ctx context.Context, d time.Duration) error
}

// NewRetryPolicy returns a policy with the real clock.
func NewRetryPolicy(maxRetries int) RetryPolicy {
	return RetryPolicy{MaxRetries: maxRetries}
}

// Do runs op, retrying it as described on RetryPolicy. When the retries are
// used up the last rate limit error is returned wrapped in ErrProviderUnavailable.
// Any other error is returned as is.
func (p RetryPolicy) Do(ctx context.Context, op func(ctx context.Context) error) error {
	for attempt := 0; ; attempt++ {
		err := op(ctx)
		if err == nil {
			return nil
		}

		var rl *RateLimitError
		if !errors.As(err, &rl) || !p.shouldRetry(rl) {
			return err
		}

		if attempt >= p.MaxRetries {
			return fmt.Errorf("%w: quota still exhausted after %d retries: %w", ErrProviderUnavailable, attempt, err)
		}

		now := p.now()
		delay := max(rl.RateLimit.Reset.Sub(now), 0)

		rateLimitRetries.Inc()
		log.Warn().
			Int("retry", attempt+1).
			Time("now", now.UTC()).
			Time("sleep_until", rl.RateLimit.Reset).
			Dur("sleep", delay).
			Msg("management api rate limit hit")

		if errSleep := p.sleep(ctx, delay); errSleep != nil {
			return errSleep
		}
	}
}

func (p RetryPolicy) shouldRetry(rl *RateLimitError) bool {
	return rl.RateLimit.Remaining < 1 &&
		!rl.RateLimit.Reset.IsZero() &&
		rl.RateLimit.Reset.After(p.now())
}

func (p RetryPolicy) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}

	return time.Now()
}

func (p RetryPolicy) sleep(ctx context.Context, d time.Duration) error {
	if p.Sleep != nil {
		return p.Sleep(ctx, d)
	}

	return sleepContext(ctx, d)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
