package client

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"
)

// ErrRetryExhausted wraps the last error once every attempt failed
var ErrRetryExhausted = errors.New("retry attempts exhausted")

// RetryConfig holds retry configuration
type RetryConfig struct {
	MaxAttempts   int           // Maximum number of attempts
	InitialDelay  time.Duration // Delay before the second attempt
	MaxDelay      time.Duration // Maximum delay between attempts
	BackoffFactor float64       // Exponential backoff multiplier
	Jitter        bool          // Add randomness to delay
}

// DefaultRetryConfig returns default retry configuration
func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxAttempts:   3,
		InitialDelay:  100 * time.Millisecond,
		MaxDelay:      5 * time.Second,
		BackoffFactor: 2.0,
		Jitter:        true,
	}
}

// RetryOption allows customization of retry behavior
type RetryOption func(*RetryConfig)

// WithMaxAttempts sets the maximum attempts
func WithMaxAttempts(n int) RetryOption {
	return func(c *RetryConfig) {
		c.MaxAttempts = n
	}
}

// WithInitialDelay sets the initial retry delay
func WithInitialDelay(d time.Duration) RetryOption {
	return func(c *RetryConfig) {
		c.InitialDelay = d
	}
}

// WithJitter enables or disables delay jitter
func WithJitter(enabled bool) RetryOption {
	return func(c *RetryConfig) {
		c.Jitter = enabled
	}
}

// Retry runs fn until it succeeds, fails with an error IsRetryable rejects,
// or the attempts run out. fn must redo the whole unit of work, since a lock
// conflict rolls back the transaction it happened in.
func Retry(ctx context.Context, fn func() error, opts ...RetryOption) error {
	config := DefaultRetryConfig()
	for _, opt := range opts {
		opt(config)
	}
	if config.MaxAttempts < 1 {
		config.MaxAttempts = 1
	}

	var lastErr error
	delay := config.InitialDelay

	for attempt := 0; attempt < config.MaxAttempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		if !IsRetryable(err) || errors.Is(err, context.Canceled) {
			return err
		}

		if attempt == config.MaxAttempts-1 {
			break
		}

		actualDelay := delay
		if config.Jitter && delay > 0 {
			// ±25%
			jitterRange := delay / 4
			if jitterRange > 0 {
				actualDelay = delay - jitterRange + time.Duration(rand.Int63n(int64(jitterRange)*2))
			}
		}

		select {
		case <-time.After(actualDelay):
		case <-ctx.Done():
			return ctx.Err()
		}

		delay = time.Duration(float64(delay) * config.BackoffFactor)
		if delay > config.MaxDelay {
			delay = config.MaxDelay
		}
	}

	return fmt.Errorf("%w after %d attempts: %w", ErrRetryExhausted, config.MaxAttempts, lastErr)
}
