package httputil

import (
	"context"
	"errors"
	"time"
)

// RetryableError marks a failure as transient. [Retry] only tries again
// when the error returned by an attempt wraps one.
type RetryableError struct{ Err error }

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// Retry calls fn until it succeeds, returns a non-retryable error, or has
// been called attempts times. fn receives the attempt number starting at 1,
// so a caller can tell a first try from a repeat. The wait between attempts
// starts at delay and doubles. A cancelled ctx ends the wait with ctx.Err().
func Retry(ctx context.Context, attempts int, delay time.Duration, fn func(attempt int) error) error {
	attempts = max(attempts, 1)
	for n := 1; ; n++ {
		err := fn(n)
		if err == nil || n == attempts || !errors.As(err, new(*RetryableError)) {
			return err
		}
		if err := wait(ctx, delay); err != nil {
			return err
		}
		delay *= 2
	}
}

func wait(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
