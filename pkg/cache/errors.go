package cache

import (
	"context"
	"errors"
	"time"

	"github.com/matzehuels/lanechart/pkg/httputil"
)

// Sentinel errors for caching operations.
var (
	// ErrNetwork is returned when a remote cache cannot be reached.
	ErrNetwork = errors.New("network error")
)

// RetryableError marks an error as transient.
type RetryableError = httputil.RetryableError

// Retryable wraps an error as a RetryableError.
func Retryable(err error) error { return httputil.Retryable(err) }

// IsRetryable checks if an error is wrapped with RetryableError.
func IsRetryable(err error) bool { return httputil.IsRetryable(err) }

// retryDelay is the first backoff delay; tests shorten it.
var retryDelay = 200 * time.Millisecond

// RetryWithBackoff retries fn up to 3 times with exponential backoff.
// Only errors wrapped with Retryable will trigger retries.
func RetryWithBackoff(ctx context.Context, fn func() error) error {
	return httputil.Retry(ctx, 3, retryDelay, fn)
}
