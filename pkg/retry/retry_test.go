package retry

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errTransient = errors.New("transient")

func TestDo(t *testing.T) {
	t.Run("SucceedsAfterRetries", func(t *testing.T) {
		var calls int
		cfg := Config{
			MaxAttempts: 3,
			Backoff:     LinearBackoff(time.Millisecond),
		}
		err := Do(t.Context(), cfg, func() error {
			calls++
			if calls < 3 {
				return errTransient
			}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("ReturnsLastError", func(t *testing.T) {
		var calls int
		cfg := Config{
			MaxAttempts: 2,
			Backoff:     LinearBackoff(time.Millisecond),
		}
		err := Do(t.Context(), cfg, func() error {
			calls++
			return errTransient
		})
		require.ErrorIs(t, err, errTransient)
		assert.Equal(t, 2, calls)
	})

	t.Run("NotRetryable", func(t *testing.T) {
		var calls int
		cfg := Config{
			MaxAttempts: 5,
			ShouldRetry: func(err error) bool { return false },
		}
		err := Do(t.Context(), cfg, func() error {
			calls++
			return errTransient
		})
		require.ErrorIs(t, err, errTransient)
		assert.Equal(t, 1, calls)
	})

	t.Run("CanceledContext", func(t *testing.T) {
		ctx, cancel := context.WithCancel(t.Context())
		cancel()
		err := Do(ctx, Config{}, func() error {
			t.Fatal("must not be called")
			return nil
		})
		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestDoWithResult(t *testing.T) {
	v, err := DoWithResult(t.Context(), Config{}, func() (int, error) {
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, v)
}

func TestNotCanceled(t *testing.T) {
	assert.True(t, NotCanceled(errTransient))
	assert.False(t, NotCanceled(context.Canceled))
	assert.False(t, NotCanceled(
		fmt.Errorf("write: %w", context.DeadlineExceeded),
	))
}

func TestExponentialBackoff(t *testing.T) {
	b := ExponentialBackoff(10 * time.Millisecond)

	d := b(1)
	assert.GreaterOrEqual(t, d, 10*time.Millisecond)
	assert.Less(t, d, 15*time.Millisecond)

	d = b(3)
	assert.GreaterOrEqual(t, d, 40*time.Millisecond)
	assert.Less(t, d, 60*time.Millisecond)

	d = b(64)
	assert.GreaterOrEqual(t, d, defaultMaxDelay)
	assert.Less(t, d, defaultMaxDelay*3/2)
}
