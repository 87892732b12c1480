package embedder

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errFlaky = errors.New("flaky")

func TestRetryConfig_Delay(t *testing.T) {
	cfg := RetryConfig{Attempts: 5, BaseDelay: 100 * time.Millisecond, MaxDelay: 300 * time.Millisecond, Multiplier: 2}

	assert.Equal(t, 100*time.Millisecond, cfg.delay(0))
	assert.Equal(t, 200*time.Millisecond, cfg.delay(1))
	assert.Equal(t, 300*time.Millisecond, cfg.delay(2))
	assert.Equal(t, 300*time.Millisecond, cfg.delay(10))
}

func TestRetry_SucceedsAfterFailures(t *testing.T) {
	calls := 0
	var retried []int

	got, err := retry(context.Background(), fastRetry(), func(attempt int, _ time.Duration, err error) {
		retried = append(retried, attempt)
		assert.ErrorIs(t, err, errFlaky)
	}, func() (string, error) {
		calls++
		if calls < 3 {
			return "", errFlaky
		}
		return "ok", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []int{1, 2}, retried)
}

func TestRetry_ExhaustsAttempts(t *testing.T) {
	calls := 0
	_, err := retry(context.Background(), fastRetry(), nil, func() (int, error) {
		calls++
		return 0, errFlaky
	})

	assert.ErrorIs(t, err, errFlaky)
	assert.Equal(t, fastRetry().Attempts, calls)
}

func TestRetry_PermanentStops(t *testing.T) {
	calls := 0
	_, err := retry(context.Background(), fastRetry(), nil, func() (int, error) {
		calls++
		return 0, permanent(errFlaky)
	})

	assert.ErrorIs(t, err, errFlaky)
	assert.Equal(t, 1, calls)
}

func TestRetry_ZeroAttemptsRunsOnce(t *testing.T) {
	calls := 0
	_, err := retry(context.Background(), RetryConfig{}, nil, func() (int, error) {
		calls++
		return 0, errFlaky
	})

	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestRetry_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := RetryConfig{Attempts: 3, BaseDelay: time.Hour, MaxDelay: time.Hour, Multiplier: 1}

	_, err := retry(ctx, cfg, func(int, time.Duration, error) { cancel() }, func() (int, error) {
		return 0, errFlaky
	})

	assert.ErrorIs(t, err, context.Canceled)
}
