package httputil

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"
)

// MaxRetryWait caps both the doubled backoff and a server's Retry-After.
const MaxRetryWait = 30 * time.Second

// RetryableError marks a transient failure. After, when positive, is how
// long the remote side asked us to wait before the next attempt.
type RetryableError struct {
	Err   error
	After time.Duration
}

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// Retryable marks err as transient. Retryable(nil) is nil.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

// RetryableAfter marks err as transient with a server-requested wait.
func RetryableAfter(err error, after time.Duration) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err, After: after}
}

// IsRetryable reports whether err, or anything it wraps, is a RetryableError.
func IsRetryable(err error) bool {
	return errors.As(err, new(*RetryableError))
}

// Retry calls fn until it succeeds, returns an error that is not retryable,
// or has been called attempts times. Between calls it sleeps for delay,
// doubling each time, or for the error's After if that is longer; both are
// capped at MaxRetryWait. Cancelling ctx ends the wait with ctx.Err().
func Retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	attempts = max(attempts, 1)
	for i := 1; ; i++ {
		err := fn()
		var re *RetryableError
		if err == nil || !errors.As(err, &re) || i == attempts {
			return err
		}

		wait := min(max(delay, re.After), MaxRetryWait)
		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
		delay = min(delay*2, MaxRetryWait)
	}
}

// retryAfter parses a Retry-After header given in seconds or as an HTTP
// date. Unparseable or past values yield 0.
func retryAfter(h string, now time.Time) time.Duration {
	if h == "" {
		return 0
	}
	if secs, err := strconv.Atoi(h); err == nil {
		return max(time.Duration(secs)*time.Second, 0)
	}
	if at, err := http.ParseTime(h); err == nil {
		return max(at.Sub(now), 0)
	}
	return 0
}
