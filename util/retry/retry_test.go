package retry

import (
	"context"
	"testing"
	"time"

	"github.com/kodemon/sats/errors"
	"github.com/kodemon/sats/ulogger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noSleep(t *testing.T) *[]time.Duration {
	t.Helper()

	var slept []time.Duration

	original := sleepFunc
	sleepFunc = func(ctx context.Context, d time.Duration) error {
		slept = append(slept, d)
		return ctx.Err()
	}

	t.Cleanup(func() { sleepFunc = original })

	return &slept
}

func TestRetry(t *testing.T) {
	logger := ulogger.TestLogger{}
	ctx := context.Background()

	t.Run("succeeds first time", func(t *testing.T) {
		slept := noSleep(t)

		result, err := Retry(ctx, logger, func() (string, error) { return "success", nil }, WithRetryCount(3))
		require.NoError(t, err)
		assert.Equal(t, "success", result)
		assert.Empty(t, *slept)
	})

	t.Run("fails once", func(t *testing.T) {
		slept := noSleep(t)
		calls := 0

		result, err := Retry(ctx, logger, func() (string, error) {
			calls++
			if calls == 1 {
				return "", errors.NewServiceUnavailableError("rpc down")
			}

			return "success", nil
		}, WithRetryCount(3), WithBackoffMultiplier(2), WithBackoffDurationType(100*time.Millisecond))

		require.NoError(t, err)
		assert.Equal(t, "success", result)
		assert.Equal(t, 2, calls)
		assert.Equal(t, []time.Duration{100 * time.Millisecond}, *slept)
	})

	t.Run("always fails", func(t *testing.T) {
		slept := noSleep(t)
		calls := 0

		_, err := Retry(ctx, logger, func() (int, error) {
			calls++
			return 0, errors.NewProcessingError("persistent error")
		}, WithRetryCount(3), WithBackoffMultiplier(2), WithBackoffDurationType(time.Second))

		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrProcessing))
		assert.Equal(t, 3, calls)
		assert.Equal(t, []time.Duration{time.Second, 3 * time.Second}, *slept)
	})

	t.Run("exponential backoff is capped", func(t *testing.T) {
		slept := noSleep(t)

		_, err := Retry(ctx, logger, func() (int, error) {
			return 0, errors.NewProcessingError("persistent error")
		}, WithRetryCount(5), WithExponentialBackoff(), WithBackoffDurationType(50*time.Millisecond),
			WithBackoffFactor(2.0), WithMaxBackoff(150*time.Millisecond))

		require.Error(t, err)
		assert.Equal(t, []time.Duration{50 * time.Millisecond, 100 * time.Millisecond, 150 * time.Millisecond, 150 * time.Millisecond}, *slept)
	})

	t.Run("non retryable error returns immediately", func(t *testing.T) {
		slept := noSleep(t)
		calls := 0

		_, err := Retry(ctx, logger, func() (int, error) {
			calls++
			return 0, errors.NewDataCorruptError("bad bytes")
		}, WithRetryCount(5), WithRetryIf(errors.IsRetryableError))

		assert.True(t, errors.Is(err, errors.ErrDataCorrupt))
		assert.Equal(t, 1, calls)
		assert.Empty(t, *slept)
	})

	t.Run("cancelled context", func(t *testing.T) {
		noSleep(t)

		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		_, err := Retry(cancelled, logger, func() (int, error) { return 1, nil })
		assert.True(t, errors.Is(err, errors.ErrContextCanceled))
		assert.True(t, errors.Is(err, context.Canceled))
	})
}
