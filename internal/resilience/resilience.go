// Package resilience provides bounded retry with backoff and circuit
// breaking for outbound calls.
package resilience

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/sony/gobreaker"
)

// ErrNonRetryable wraps an error that must abort the retry loop immediately
// (auth failures, 4xx other than 429).
var ErrNonRetryable = errors.New("non-retryable")

// RetryConfig bounds the retry loop.
type RetryConfig struct {
	MaxAttempts int
	BaseBackoff time.Duration
	MaxJitter   time.Duration
}

// DefaultRetryConfig mirrors the transport policy: two retries after the
// initial attempt, 1s base backoff, up to 150ms of jitter.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		BaseBackoff: time.Second,
		MaxJitter:   150 * time.Millisecond,
	}
}

// RetryWithBackoff runs fn up to cfg.MaxAttempts times, sleeping
// base*2^attempt plus jitter between attempts. A fn error wrapped in
// ErrNonRetryable stops the loop at once; context cancellation always wins.
func RetryWithBackoff(ctx context.Context, cfg RetryConfig, fn func() error) error {
	attempts := cfg.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if errors.Is(lastErr, ErrNonRetryable) {
			return lastErr
		}
		if attempt == attempts-1 {
			break
		}

		backoff := cfg.BaseBackoff * time.Duration(1<<attempt)
		if cfg.MaxJitter > 0 {
			backoff += time.Duration(rand.Int63n(int64(cfg.MaxJitter)))
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}
	return lastErr
}

// NewCircuitBreaker builds a breaker that opens after at least 5 requests
// with a failure ratio of 60% or more within a 30s window, and probes again
// after 10s.
func NewCircuitBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    30 * time.Second,
		Timeout:     10 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 5 && failureRatio >= 0.6
		},
	})
}
