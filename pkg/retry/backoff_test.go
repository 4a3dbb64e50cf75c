package retry_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/prxgr4mmer/crypto-service/pkg/retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastConfig(maxRetries int) retry.Config {
	return retry.Config{
		MaxRetries:     maxRetries,
		InitialBackoff: 5 * time.Millisecond,
		MaxBackoff:     50 * time.Millisecond,
		Multiplier:     2.0,
		Jitter:         0,
	}
}

func TestDo_Success(t *testing.T) {
	callCount := 0
	err := retry.Do(context.Background(), retry.DefaultConfig(), func(ctx context.Context) error {
		callCount++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, callCount)
}

func TestDo_RetriesUntilSuccess(t *testing.T) {
	callCount := 0
	err := retry.Do(context.Background(), fastConfig(3), func(ctx context.Context) error {
		callCount++
		if callCount < 3 {
			return retry.NewRetryableError(errors.New("upstream 503"))
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, callCount)
}

func TestDo_PermanentErrorStopsImmediately(t *testing.T) {
	callCount := 0
	permanentErr := errors.New("bad symbol")

	err := retry.Do(context.Background(), retry.DefaultConfig(), func(ctx context.Context) error {
		callCount++
		return permanentErr
	})

	assert.ErrorIs(t, err, permanentErr)
	assert.Equal(t, 1, callCount)
}

func TestDo_ExhaustsRetries(t *testing.T) {
	callCount := 0
	cause := errors.New("always fails")

	err := retry.Do(context.Background(), fastConfig(2), func(ctx context.Context) error {
		callCount++
		return retry.NewRetryableError(cause)
	})

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, 3, callCount) // initial + 2 retries
}

func TestDo_RespectsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	callCount := 0

	cfg := fastConfig(10)
	cfg.InitialBackoff = 100 * time.Millisecond
	cfg.MaxBackoff = time.Second

	go func() {
		time.Sleep(30 * time.Millisecond)
		cancel()
	}()

	err := retry.Do(ctx, cfg, func(ctx context.Context) error {
		callCount++
		return retry.NewRetryableError(errors.New("temporary"))
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.LessOrEqual(t, callCount, 2)
}

func TestDo_OnRetryHook(t *testing.T) {
	var attempts []int
	cfg := fastConfig(2)
	cfg.OnRetry = func(attempt int, wait time.Duration, err error) {
		attempts = append(attempts, attempt)
		assert.Error(t, err)
	}

	_ = retry.Do(context.Background(), cfg, func(ctx context.Context) error {
		return retry.NewRetryableError(errors.New("temporary"))
	})

	assert.Equal(t, []int{1, 2}, attempts)
}

func TestDo_HonoursRetryAfter(t *testing.T) {
	var waits []time.Duration
	cfg := fastConfig(1)
	cfg.MaxBackoff = time.Second
	cfg.OnRetry = func(_ int, wait time.Duration, _ error) {
		waits = append(waits, wait)
	}

	_ = retry.Do(context.Background(), cfg, func(ctx context.Context) error {
		return retry.NewRetryableErrorAfter(errors.New("429"), 40*time.Millisecond)
	})

	require.Len(t, waits, 1)
	assert.Equal(t, 40*time.Millisecond, waits[0])
}

func TestDo_RetryAfterCappedAtMaxBackoff(t *testing.T) {
	var waits []time.Duration
	cfg := fastConfig(1)
	cfg.OnRetry = func(_ int, wait time.Duration, _ error) {
		waits = append(waits, wait)
	}

	_ = retry.Do(context.Background(), cfg, func(ctx context.Context) error {
		return retry.NewRetryableErrorAfter(errors.New("429"), time.Hour)
	})

	require.Len(t, waits, 1)
	assert.Equal(t, cfg.MaxBackoff, waits[0])
}

func TestDoWithResult_RetryAndSucceed(t *testing.T) {
	callCount := 0

	result, err := retry.DoWithResult(context.Background(), fastConfig(3), func(ctx context.Context) (string, error) {
		callCount++
		if callCount < 2 {
			return "", retry.NewRetryableError(errors.New("temporary"))
		}
		return "BTCUSDT", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "BTCUSDT", result)
	assert.Equal(t, 2, callCount)
}

func TestIsRetryable(t *testing.T) {
	t.Run("retryable error", func(t *testing.T) {
		assert.True(t, retry.IsRetryable(retry.NewRetryableError(errors.New("temporary"))))
	})

	t.Run("plain error", func(t *testing.T) {
		assert.False(t, retry.IsRetryable(errors.New("permanent")))
	})

	t.Run("wrapped with %w", func(t *testing.T) {
		inner := retry.NewRetryableError(errors.New("temporary"))
		assert.True(t, retry.IsRetryable(fmt.Errorf("depth: %w", inner)))
	})
}

func TestParseRetryAfter(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   time.Duration
	}{
		{"missing", "", 0},
		{"seconds", "3", 3 * time.Second},
		{"garbage", "soon", 0},
		{"date in the past", "Mon, 02 Jan 2006 15:04:05 GMT", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := http.Header{}
			if tt.header != "" {
				h.Set("Retry-After", tt.header)
			}
			assert.Equal(t, tt.want, retry.ParseRetryAfter(h))
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := retry.DefaultConfig()
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Equal(t, 100*time.Millisecond, cfg.InitialBackoff)
	assert.Equal(t, 10*time.Second, cfg.MaxBackoff)
	assert.Equal(t, 2.0, cfg.Multiplier)
	assert.Equal(t, 0.1, cfg.Jitter)
	assert.Nil(t, cfg.OnRetry)
}
