package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// Policy is a bounded constant-interval retry: attempt, sleep Interval,
// attempt again, until MaxElapsed has passed since the first attempt.
// Retryable classifies failures; a nil Retryable retries everything.
type Policy struct {
	Interval   time.Duration
	MaxElapsed time.Duration
	Retryable  func(error) bool
}

// DeadlineError reports that the retry budget ran out while the failure was
// still classified retryable. It wraps the last attempt's error.
type DeadlineError struct {
	Elapsed time.Duration
	Err     error
}

func (e *DeadlineError) Error() string {
	return fmt.Sprintf("retry deadline exceeded after %s: %v", e.Elapsed, e.Err)
}

func (e *DeadlineError) Unwrap() error { return e.Err }

// IsDeadline reports whether err is a retry-budget exhaustion.
func IsDeadline(err error) bool {
	var de *DeadlineError
	return errors.As(err, &de)
}

// Do runs op under p. A non-retryable failure is returned as-is immediately;
// a retryable failure that survives the whole budget comes back wrapped in a
// DeadlineError so callers can tell the two apart.
func Do[T any](ctx context.Context, p Policy, op func() (T, error)) (T, error) {
	start := time.Now()

	operation := func() (T, error) {
		v, err := op()
		if err != nil && p.Retryable != nil && !p.Retryable(err) {
			return v, backoff.Permanent(err)
		}
		return v, err
	}

	v, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(backoff.NewConstantBackOff(p.Interval)),
		backoff.WithMaxElapsedTime(p.MaxElapsed),
	)
	if err == nil {
		return v, nil
	}

	var perm *backoff.PermanentError
	if errors.As(err, &perm) {
		err = perm.Unwrap()
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return v, err
	}

	if p.Retryable == nil || p.Retryable(err) {
		return v, &DeadlineError{Elapsed: time.Since(start), Err: err}
	}
	return v, err
}
