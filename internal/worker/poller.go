package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/prxgr4mmer/crypto-service/internal/ports"
)

// Capturer is the part of the archive the poller drives
type Capturer interface {
	Capture(ctx context.Context) error
}

var _ Capturer = (ports.ArchiveService)(nil)

// Poller captures order books at regular intervals
type Poller struct {
	archive  Capturer
	interval time.Duration
	logger   *slog.Logger

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewPoller creates a new archive poller
func NewPoller(archive Capturer, interval time.Duration, logger *slog.Logger) *Poller {
	return &Poller{
		archive:  archive,
		interval: interval,
		logger:   logger.With("component", "poller"),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start captures immediately and then on every tick until ctx is done or
// Stop is called. It blocks.
func (p *Poller) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return nil
	}
	p.running = true
	p.stopCh = make(chan struct{})
	p.doneCh = make(chan struct{})
	stopCh, doneCh := p.stopCh, p.doneCh
	p.mu.Unlock()

	defer func() {
		p.mu.Lock()
		p.running = false
		p.mu.Unlock()
		close(doneCh)
	}()

	p.logger.Info("starting poller", "interval", p.interval.String())

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.capture(ctx)

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("poller context cancelled")
			return ctx.Err()

		case <-stopCh:
			p.logger.Info("poller stopped")
			return nil

		case <-ticker.C:
			p.capture(ctx)
		}
	}
}

func (p *Poller) capture(ctx context.Context) {
	// A cycle may use half the interval, but never less than 5s
	timeout := p.interval / 2
	if timeout < 5*time.Second {
		timeout = 5 * time.Second
	}

	captureCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := p.archive.Capture(captureCtx); err != nil {
		p.logger.Error("capture failed", "error", err)
	}
}

// Stop gracefully stops the poller
func (p *Poller) Stop() error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return nil
	}
	stopCh, doneCh := p.stopCh, p.doneCh
	p.mu.Unlock()

	p.logger.Info("stopping poller")
	close(stopCh)

	select {
	case <-doneCh:
		return nil
	case <-time.After(10 * time.Second):
		return context.DeadlineExceeded
	}
}

// IsRunning returns whether the poller is currently running
func (p *Poller) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}
