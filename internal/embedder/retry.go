package embedder

import (
	"context"
	"errors"
	"math"
	"time"
)

// RetryConfig bounds the exponential backoff used for model downloads
type RetryConfig struct {
	Attempts   int           // total calls, including the first
	BaseDelay  time.Duration // wait after the first failure
	MaxDelay   time.Duration // cap on any single wait
	Multiplier float64
}

// DefaultRetryConfig returns the download backoff
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		Attempts:   MaxRetries,
		BaseDelay:  time.Duration(InitialBackoffMs) * time.Millisecond,
		MaxDelay:   time.Duration(MaxBackoffMs) * time.Millisecond,
		Multiplier: BackoffMultiplier,
	}
}

// delay returns the wait after the given zero-based failed attempt
func (c RetryConfig) delay(attempt int) time.Duration {
	d := float64(c.BaseDelay) * math.Pow(c.Multiplier, float64(attempt))
	if d > float64(c.MaxDelay) {
		return c.MaxDelay
	}
	return time.Duration(d)
}

// permanentError marks a failure that another attempt cannot fix
type permanentError struct{ err error }

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

func permanent(err error) error {
	return &permanentError{err: err}
}

// retry calls fn until it succeeds, fails permanently, runs out of attempts
// or ctx ends. onRetry, if set, runs before each wait.
func retry[T any](ctx context.Context, cfg RetryConfig, onRetry func(attempt int, wait time.Duration, err error), fn func() (T, error)) (T, error) {
	var zero T
	attempts := max(cfg.Attempts, 1)

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		result, err := fn()
		if err == nil {
			return result, nil
		}
		lastErr = err

		var perm *permanentError
		if errors.As(err, &perm) {
			return zero, perm.err
		}
		if ctx.Err() != nil {
			return zero, ctx.Err()
		}
		if attempt == attempts-1 {
			break
		}

		wait := cfg.delay(attempt)
		if onRetry != nil {
			onRetry(attempt+1, wait, err)
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, ctx.Err()
		case <-timer.C:
		}
	}

	return zero, lastErr
}
