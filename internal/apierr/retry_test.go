package apierr_test

// Coverage Notes:
// - Attempt counting, predicate filtering, context cancellation and config
//   normalization through observable behavior.
// - Waits are asserted through OnRetry, never by measuring wall time.
// - Retry-After parsing: seconds, HTTP dates, garbage.

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alnah/go-ytarticle/internal/apierr"
)

// fastRetry returns a config whose waits are too short to slow the tests,
// recording every wait in waits.
func fastRetry(maxRetries int, waits *[]time.Duration) apierr.RetryConfig {
	return apierr.RetryConfig{
		MaxRetries: maxRetries,
		BaseDelay:  time.Microsecond,
		MaxDelay:   time.Millisecond,
		OnRetry: func(_ int, _ error, wait time.Duration) {
			if waits != nil {
				*waits = append(*waits, wait)
			}
		},
	}
}

// failing returns fn failing with err for the first n calls, then "ok".
func failing(n int, err error, calls *atomic.Int32) func(context.Context) (string, error) {
	return func(context.Context) (string, error) {
		if int(calls.Add(1)) <= n {
			return "", err
		}
		return "ok", nil
	}
}

// ---------------------------------------------------------------------------
// TestRetryWithBackoff - attempts and predicates
// ---------------------------------------------------------------------------

func TestRetryWithBackoff(t *testing.T) {
	t.Parallel()

	transient := fmt.Errorf("upstream 503: %w", apierr.ErrTimeout)

	tests := []struct {
		name        string
		maxRetries  int
		failures    int
		err         error
		shouldRetry func(error) bool
		wantCalls   int32
		wantErr     error
	}{
		{"first try", 3, 0, nil, nil, 1, nil},
		{"recovers after transient failures", 3, 2, transient, nil, 3, nil},
		{"gives up when retries are spent", 2, 10, transient, nil, 3, apierr.ErrTimeout},
		{"zero retries is one attempt", 0, 10, transient, nil, 1, apierr.ErrTimeout},
		{"negative retries is one attempt", -4, 10, transient, nil, 1, apierr.ErrTimeout},
		{"permanent error stops", 5, 10, apierr.ErrAuthFailed, nil, 1, apierr.ErrAuthFailed},
		{"custom predicate", 5, 10, apierr.ErrAuthFailed, func(error) bool { return true }, 6, apierr.ErrAuthFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var calls atomic.Int32
			got, err := apierr.RetryWithBackoff(context.Background(), fastRetry(tt.maxRetries, nil),
				failing(tt.failures, tt.err, &calls), tt.shouldRetry)

			assert.Equal(t, tt.wantCalls, calls.Load())
			if tt.wantErr == nil {
				require.NoError(t, err)
				assert.Equal(t, "ok", got)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, got)
		})
	}
}

func TestRetryWithBackoff_GiveUpMessage(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	_, err := apierr.RetryWithBackoff(context.Background(), fastRetry(2, nil),
		failing(10, apierr.ErrRateLimit, &calls), nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "gave up after 3 attempts")
}

func TestRetryWithBackoff_DoublesUpToMaxDelay(t *testing.T) {
	t.Parallel()

	var waits []time.Duration
	cfg := fastRetry(5, &waits)
	cfg.BaseDelay = 100 * time.Microsecond
	cfg.MaxDelay = 300 * time.Microsecond

	var calls atomic.Int32
	_, err := apierr.RetryWithBackoff(context.Background(), cfg, failing(10, apierr.ErrTimeout, &calls), nil)
	require.Error(t, err)

	want := []time.Duration{
		100 * time.Microsecond,
		200 * time.Microsecond,
		300 * time.Microsecond,
		300 * time.Microsecond,
		300 * time.Microsecond,
	}
	assert.Equal(t, want, waits)
}

func TestRetryWithBackoff_OnRetryAttempts(t *testing.T) {
	t.Parallel()

	var attempts []int
	cfg := fastRetry(3, nil)
	cfg.OnRetry = func(attempt int, err error, _ time.Duration) {
		attempts = append(attempts, attempt)
		assert.ErrorIs(t, err, apierr.ErrRateLimit)
	}

	var calls atomic.Int32
	got, err := apierr.RetryWithBackoff(context.Background(), cfg, failing(2, apierr.ErrRateLimit, &calls), nil)
	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, []int{1, 2}, attempts)
}

func TestRetryWithBackoff_HonorsRetryAfter(t *testing.T) {
	t.Parallel()

	var waits []time.Duration
	cfg := fastRetry(1, &waits)
	cfg.MaxDelay = 2 * time.Millisecond

	hinted := apierr.WithRetryAfter(apierr.ErrRateLimit, time.Millisecond)
	var calls atomic.Int32
	_, err := apierr.RetryWithBackoff(context.Background(), cfg, failing(1, hinted, &calls), nil)
	require.NoError(t, err)
	assert.Equal(t, []time.Duration{time.Millisecond}, waits, "hint longer than backoff wins")

	waits = nil
	calls.Store(0)
	long := apierr.WithRetryAfter(apierr.ErrRateLimit, time.Hour)
	_, err = apierr.RetryWithBackoff(context.Background(), cfg, failing(1, long, &calls), nil)
	require.NoError(t, err)
	assert.Equal(t, []time.Duration{2 * time.Millisecond}, waits, "hint is capped by MaxDelay")
}

func TestRetryWithBackoff_ContextCanceledDuringWait(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cfg := apierr.RetryConfig{
		MaxRetries: 5,
		BaseDelay:  time.Hour,
		MaxDelay:   time.Hour,
		OnRetry:    func(int, error, time.Duration) { cancel() },
	}

	var calls atomic.Int32
	_, err := apierr.RetryWithBackoff(ctx, cfg, failing(10, apierr.ErrTimeout, &calls), nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int32(1), calls.Load())
}

// ---------------------------------------------------------------------------
// TestRetryAfter - hints attached to errors
// ---------------------------------------------------------------------------

func TestWithRetryAfter(t *testing.T) {
	t.Parallel()

	err := apierr.WithRetryAfter(fmt.Errorf("slow down: %w", apierr.ErrRateLimit), 5*time.Second)
	assert.ErrorIs(t, err, apierr.ErrRateLimit)
	assert.Equal(t, "slow down: rate limit exceeded", err.Error())

	d, ok := apierr.RetryAfter(fmt.Errorf("wrapped: %w", err))
	assert.True(t, ok)
	assert.Equal(t, 5*time.Second, d)

	assert.Nil(t, apierr.WithRetryAfter(nil, time.Second))
	plain := errors.New("x")
	assert.Same(t, plain, apierr.WithRetryAfter(plain, 0))
	_, ok = apierr.RetryAfter(plain)
	assert.False(t, ok)
}

func TestClassifyResponse(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 1, 26, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		status    int
		header    string
		wantErr   error
		wantAfter time.Duration
		wantHint  bool
	}{
		{"seconds", http.StatusTooManyRequests, "7", apierr.ErrRateLimit, 7 * time.Second, true},
		{"http date", http.StatusServiceUnavailable, now.Add(90 * time.Second).Format(http.TimeFormat), apierr.ErrTimeout, 90 * time.Second, true},
		{"no header", http.StatusTooManyRequests, "", apierr.ErrRateLimit, 0, false},
		{"garbage", http.StatusTooManyRequests, "soon", apierr.ErrRateLimit, 0, false},
		{"past date", http.StatusTooManyRequests, now.Add(-time.Minute).Format(http.TimeFormat), apierr.ErrRateLimit, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			resp := &http.Response{StatusCode: tt.status, Header: http.Header{}}
			if tt.header != "" {
				resp.Header.Set("Retry-After", tt.header)
			}

			err := apierr.ClassifyResponse(resp, "", now)
			assert.ErrorIs(t, err, tt.wantErr)
			d, ok := apierr.RetryAfter(err)
			assert.Equal(t, tt.wantHint, ok)
			assert.Equal(t, tt.wantAfter, d)
		})
	}

	t.Run("2xx", func(t *testing.T) {
		t.Parallel()
		assert.NoError(t, apierr.ClassifyResponse(&http.Response{StatusCode: http.StatusOK}, "", now))
	})
}
