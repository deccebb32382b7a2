package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoSucceedsFirstTry(t *testing.T) {
	calls := 0
	err := Do(context.Background(), DefaultConfig(), func() error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestDoRetriesRetryableError(t *testing.T) {
	calls := 0
	cfg := Config{
		MaxAttempts:   3,
		InitialDelay:  time.Millisecond,
		MaxDelay:      10 * time.Millisecond,
		Multiplier:    2,
		Jitter:        0,
		RetryableFunc: func(error) bool { return true },
	}
	err := Do(context.Background(), cfg, func() error {
		calls++
		if calls < 3 {
			return errors.New("rate limit exceeded")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDoStopsOnNonRetryable(t *testing.T) {
	calls := 0
	cfg := Config{
		MaxAttempts:   3,
		InitialDelay:  time.Millisecond,
		RetryableFunc: func(err error) bool { return false },
	}
	err := Do(context.Background(), cfg, func() error {
		calls++
		return errors.New("auth failed")
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestDoRespectsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	cfg := Config{
		MaxAttempts:   3,
		InitialDelay:  time.Second,
		RetryableFunc: func(error) bool { return true },
	}
	err := Do(ctx, cfg, func() error { return errors.New("timeout") })
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
