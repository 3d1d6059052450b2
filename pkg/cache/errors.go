package cache

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrCacheMiss is returned by GetJSON when the key is absent.
	ErrCacheMiss = errors.New("cache miss")

	// ErrBackend wraps transport failures of remote caches.
	ErrBackend = errors.New("cache backend unavailable")
)

// RetryableError marks a transient failure that RetryWithBackoff may retry.
type RetryableError struct{ Err error }

// Retryable wraps err; a nil err stays nil.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// IsRetryable reports whether err carries a RetryableError.
func IsRetryable(err error) bool {
	var re *RetryableError
	return errors.As(err, &re)
}

const retryAttempts = 3

// retryDelay is the wait after the first failure; it doubles per attempt.
var retryDelay = 200 * time.Millisecond

// RetryWithBackoff runs fn until it succeeds, returns a non-retryable error,
// or has failed retryAttempts times.
func RetryWithBackoff(ctx context.Context, fn func() error) error {
	err := fn()
	for attempt, delay := 1, retryDelay; attempt < retryAttempts && IsRetryable(err); attempt, delay = attempt+1, delay*2 {
		t := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
		err = fn()
	}
	return err
}
