package marketplace

import (
	"context"
	"time"
)

// Default retry settings, matching the node form defaults.
const (
	DefaultMaxRetries  = 2
	DefaultBackoffBase = time.Second
	DefaultTimeout     = 30 * time.Second
)

// RetryPolicy controls how 5xx responses are retried. It is read-only for
// the duration of a call.
type RetryPolicy struct {
	MaxRetries  int
	RetryOn5xx  bool
	BackoffBase time.Duration
}

// DefaultRetryPolicy returns two retries on 5xx with a one second base.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries:  DefaultMaxRetries,
		RetryOn5xx:  true,
		BackoffBase: DefaultBackoffBase,
	}
}

// Delay is the wait before retry number attempt (1-based): 2^attempt times
// the base, so 2s, 4s, 8s with the default base. A zero base retries
// immediately.
func (p RetryPolicy) Delay(attempt int) time.Duration {
	if p.BackoffBase <= 0 {
		return 0
	}
	return (time.Duration(1) << uint(attempt)) * p.BackoffBase
}

// shouldRetry reports whether a response with status may be retried after
// retries have already been made.
func (p RetryPolicy) shouldRetry(status, retries int) bool {
	return p.RetryOn5xx && status >= 500 && retries < p.MaxRetries
}

// Sleeper waits for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
