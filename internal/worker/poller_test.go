package worker_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prxgr4mmer/crypto-service/internal/worker"
)

type countingArchive struct {
	calls atomic.Int32
	err   error
}

func (c *countingArchive) Capture(ctx context.Context) error {
	c.calls.Add(1)
	return c.err
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestPoller_CapturesOnStartAndTick(t *testing.T) {
	archive := &countingArchive{}
	p := worker.NewPoller(archive, 10*time.Millisecond, newTestLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Start(ctx) }()

	assert.Eventually(t, func() bool { return archive.calls.Load() >= 3 }, time.Second, 5*time.Millisecond)
	assert.True(t, p.IsRunning())

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("poller did not stop on cancel")
	}
	assert.False(t, p.IsRunning())
}

func TestPoller_Stop(t *testing.T) {
	archive := &countingArchive{err: errors.New("upstream down")}
	p := worker.NewPoller(archive, time.Hour, newTestLogger())

	done := make(chan error, 1)
	go func() { done <- p.Start(context.Background()) }()

	require.Eventually(t, func() bool { return archive.calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	require.Eventually(t, p.IsRunning, time.Second, 5*time.Millisecond)

	require.NoError(t, p.Stop())
	assert.NoError(t, <-done)
	assert.False(t, p.IsRunning())

	// stopping twice is a no-op
	assert.NoError(t, p.Stop())
}
