package apierr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// RetryConfig holds retry parameters for exponential backoff.
//
// Invalid values are normalized:
//   - MaxRetries < 0 becomes 0 (single attempt)
//   - BaseDelay <= 0 becomes 1ms
//   - MaxDelay <= 0 becomes BaseDelay
type RetryConfig struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration

	// OnRetry, if set, is called before each wait with the attempt that
	// failed (1-based), its error and the wait about to happen.
	OnRetry func(attempt int, err error, wait time.Duration)
}

// DefaultRetryConfig is used by the remote adapters unless overridden.
var DefaultRetryConfig = RetryConfig{
	MaxRetries: 3,
	BaseDelay:  time.Second,
	MaxDelay:   30 * time.Second,
}

func (c RetryConfig) normalized() RetryConfig {
	c.MaxRetries = max(c.MaxRetries, 0)
	if c.BaseDelay <= 0 {
		c.BaseDelay = time.Millisecond
	}
	if c.MaxDelay <= 0 {
		c.MaxDelay = c.BaseDelay
	}
	return c
}

// wait returns the pause before the next attempt: the server's Retry-After
// hint when it is longer than the backoff, never more than MaxDelay.
func (c RetryConfig) wait(backoff time.Duration, err error) time.Duration {
	if hint, ok := RetryAfter(err); ok && hint > backoff {
		backoff = hint
	}
	return min(backoff, c.MaxDelay)
}

// RetryWithBackoff calls fn until it succeeds, the error is not retryable,
// the retries are spent or ctx is done. A nil shouldRetry means IsRetryable.
// The delay doubles after every failed attempt, starting at BaseDelay.
func RetryWithBackoff[T any](
	ctx context.Context,
	cfg RetryConfig,
	fn func(ctx context.Context) (T, error),
	shouldRetry func(error) bool,
) (T, error) {
	cfg = cfg.normalized()
	if shouldRetry == nil {
		shouldRetry = IsRetryable
	}

	var zero T
	backoff := cfg.BaseDelay
	for attempt := 1; ; attempt++ {
		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}
		if !shouldRetry(err) {
			return zero, err
		}
		if attempt > cfg.MaxRetries {
			return zero, fmt.Errorf("gave up after %d attempts: %w", attempt, err)
		}

		wait := cfg.wait(backoff, err)
		if cfg.OnRetry != nil {
			cfg.OnRetry(attempt, err, wait)
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, ctx.Err()
		case <-timer.C:
		}
		backoff = min(backoff*2, cfg.MaxDelay)
	}
}

// retryAfterError attaches a server wait hint to an error.
type retryAfterError struct {
	err   error
	after time.Duration
}

func (e *retryAfterError) Error() string { return e.err.Error() }
func (e *retryAfterError) Unwrap() error { return e.err }

// WithRetryAfter attaches a server-requested wait to err. Non-positive
// durations return err unchanged.
func WithRetryAfter(err error, d time.Duration) error {
	if err == nil || d <= 0 {
		return err
	}
	return &retryAfterError{err: err, after: d}
}

// RetryAfter returns the wait attached by WithRetryAfter, if any.
func RetryAfter(err error) (time.Duration, bool) {
	var ra *retryAfterError
	if errors.As(err, &ra) {
		return ra.after, true
	}
	return 0, false
}

// ClassifyResponse classifies a non-2xx response like Classify and attaches
// its Retry-After header, given in seconds or as an HTTP date.
func ClassifyResponse(resp *http.Response, message string, now time.Time) error {
	err := Classify(resp.StatusCode, message)
	if err == nil {
		return nil
	}
	return WithRetryAfter(err, parseRetryAfter(resp.Header.Get("Retry-After"), now))
}

func parseRetryAfter(v string, now time.Time) time.Duration {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(v); err == nil {
		return at.Sub(now)
	}
	return 0
}
