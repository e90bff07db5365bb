// Package apierr provides shared error sentinels and retry infrastructure
// for the remote collaborators: the caption source, the YouTube Data API
// and the article formatter. Provider errors are classified into these
// sentinels at the adapter boundary so the CLI can map them to exit codes.
//
// Adapters wrap with fmt.Errorf("%s: %w", msg, sentinel).
// Callers check with errors.Is(err, apierr.ErrRateLimit) etc.
package apierr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Sentinel errors for API interaction failures.
var (
	// ErrRateLimit indicates the API rate limit was exceeded (temporary, retryable).
	ErrRateLimit = errors.New("rate limit exceeded")

	// ErrQuotaExceeded indicates the API quota was exceeded (billing issue, not retryable).
	ErrQuotaExceeded = errors.New("quota exceeded")

	// ErrTimeout indicates a request timed out or the server failed transiently.
	ErrTimeout = errors.New("request timeout")

	// ErrAuthFailed indicates API authentication failed (invalid or missing key).
	ErrAuthFailed = errors.New("authentication failed")

	// ErrBadRequest indicates a client error (4xx) that is not otherwise classified.
	ErrBadRequest = errors.New("bad request")

	// ErrNotFound indicates the requested remote resource does not exist.
	ErrNotFound = errors.New("not found")
)

// Classify maps an HTTP status code and provider message to a wrapped sentinel.
// Returns nil for 2xx statuses. Unknown statuses are returned as plain errors.
func Classify(statusCode int, message string) error {
	if statusCode >= 200 && statusCode < 300 {
		return nil
	}
	if message == "" {
		message = http.StatusText(statusCode)
	}

	switch statusCode {
	case http.StatusTooManyRequests:
		// Distinguish a temporary rate limit from an exhausted quota (billing issue).
		lower := strings.ToLower(message)
		if strings.Contains(lower, "quota") || strings.Contains(lower, "billing") {
			return fmt.Errorf("%s: %w", message, ErrQuotaExceeded)
		}
		return fmt.Errorf("%s: %w", message, ErrRateLimit)
	case http.StatusPaymentRequired:
		return fmt.Errorf("%s: %w", message, ErrQuotaExceeded)
	case http.StatusUnauthorized:
		return fmt.Errorf("%s: %w", message, ErrAuthFailed)
	case http.StatusForbidden:
		// The YouTube Data API reports exhausted daily quota as 403.
		if strings.Contains(strings.ToLower(message), "quota") {
			return fmt.Errorf("%s: %w", message, ErrQuotaExceeded)
		}
		return fmt.Errorf("%s: %w", message, ErrAuthFailed)
	case http.StatusNotFound:
		return fmt.Errorf("%s: %w", message, ErrNotFound)
	case http.StatusRequestTimeout, http.StatusGatewayTimeout,
		http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable:
		return fmt.Errorf("%s: %w", message, ErrTimeout)
	}

	if statusCode >= 400 && statusCode < 500 {
		return fmt.Errorf("%s: %w", message, ErrBadRequest)
	}
	return fmt.Errorf("unexpected status %d: %s", statusCode, message)
}

// IsRetryable reports whether err is transient and worth another attempt.
// Rate limits and timeouts are retryable; cancellation, auth and quota errors are not.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	return errors.Is(err, ErrRateLimit) || errors.Is(err, ErrTimeout)
}
