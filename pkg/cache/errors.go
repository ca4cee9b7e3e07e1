package cache

import (
	"context"
	"errors"
	"time"
)

// ErrUnavailable marks a backend that could not be reached.
var ErrUnavailable = errors.New("cache backend unavailable")

// RetryableError marks a transient failure, such as a refused connection
// while a container is still starting.
type RetryableError struct{ Err error }

// Retryable wraps err as transient. Retryable(nil) is nil.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

func (e *RetryableError) Error() string { return e.Err.Error() }

func (e *RetryableError) Unwrap() error { return e.Err }

// IsRetryable reports whether err was wrapped with Retryable.
func IsRetryable(err error) bool {
	var re *RetryableError
	return errors.As(err, &re)
}

// backoff is the first retry delay; it doubles after each attempt.
var backoff = time.Second

// RetryWithBackoff calls fn until it succeeds, fails with an error not
// marked Retryable, or has failed three times. Only connection setup
// against Redis and MongoDB uses it, never user actions.
func RetryWithBackoff(ctx context.Context, fn func() error) error {
	const attempts = 3
	delay := backoff
	for attempt := 1; ; attempt++ {
		err := fn()
		if err == nil || !IsRetryable(err) || attempt == attempts {
			return err
		}
		t := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
		delay *= 2
	}
}
