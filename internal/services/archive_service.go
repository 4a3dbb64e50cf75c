package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/prxgr4mmer/crypto-service/internal/domain"
	"github.com/prxgr4mmer/crypto-service/internal/metrics"
	"github.com/prxgr4mmer/crypto-service/internal/ports"
)

// ArchiveConfig controls what the archive captures and keeps
type ArchiveConfig struct {
	Symbols     []string
	Depth       int
	Retention   time.Duration
	Concurrency int
}

// ArchiveService implements the ports.ArchiveService interface
type ArchiveService struct {
	market  ports.MarketData
	repo    ports.ArchiveRepository
	metrics ports.MetricsService
	cfg     ArchiveConfig
	logger  *slog.Logger
}

// NewArchiveService creates a new archive service
func NewArchiveService(
	market ports.MarketData,
	repo ports.ArchiveRepository,
	metricsSvc ports.MetricsService,
	cfg ArchiveConfig,
	logger *slog.Logger,
) *ArchiveService {
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 4
	}
	symbols := make([]string, len(cfg.Symbols))
	for i, s := range cfg.Symbols {
		symbols[i] = domain.NormalizeSymbolName(s)
	}
	cfg.Symbols = symbols

	return &ArchiveService{
		market:  market,
		repo:    repo,
		metrics: metricsSvc,
		cfg:     cfg,
		logger:  logger.With("component", "archive_service"),
	}
}

// Capture takes a fresh order book for every archived symbol and stores
// the ones that succeeded. It fails only when nothing could be stored.
func (s *ArchiveService) Capture(ctx context.Context) error {
	start := time.Now()

	if len(s.cfg.Symbols) == 0 {
		s.logger.Debug("no symbols to archive")
		return nil
	}

	var (
		mu        sync.Mutex
		snapshots = make([]*domain.OrderBookSnapshot, 0, len(s.cfg.Symbols))
		failures  []error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Concurrency)

	for _, symbol := range s.cfg.Symbols {
		g.Go(func() error {
			snap, err := s.captureOne(gctx, symbol)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				metrics.ArchiveCapturesTotal.WithLabelValues(symbol, "error").Inc()
				s.logger.Warn("order book capture failed", "symbol", symbol, "error", err)
				failures = append(failures, err)
				return nil
			}
			metrics.ArchiveCapturesTotal.WithLabelValues(symbol, "success").Inc()
			snapshots = append(snapshots, snap)
			return nil
		})
	}
	_ = g.Wait()

	if len(snapshots) == 0 {
		s.metrics.RecordCaptureError(time.Since(start))
		return fmt.Errorf("capture failed for all %d symbols: %w", len(s.cfg.Symbols), errors.Join(failures...))
	}

	if err := s.repo.CreateBatch(ctx, snapshots); err != nil {
		s.logger.Error("failed to store snapshots", "error", err)
		s.metrics.RecordCaptureError(time.Since(start))
		return err
	}

	s.prune(ctx)

	duration := time.Since(start)
	s.metrics.RecordCaptureSuccess(duration)

	s.logger.Info("capture completed",
		"symbols", len(s.cfg.Symbols),
		"snapshots", len(snapshots),
		"failed", len(failures),
		"duration_ms", duration.Milliseconds(),
	)

	return nil
}

func (s *ArchiveService) captureOne(ctx context.Context, symbol string) (*domain.OrderBookSnapshot, error) {
	book, err := s.market.GetOrderbook(ctx, domain.NewParams(symbol, s.cfg.Depth))
	if err != nil {
		return nil, err
	}
	return domain.NewOrderBookSnapshot(symbol, book)
}

// prune drops snapshots past retention; failures only get logged
func (s *ArchiveService) prune(ctx context.Context) {
	if s.cfg.Retention <= 0 {
		return
	}

	removed, err := s.repo.Prune(ctx, time.Now().UTC().Add(-s.cfg.Retention))
	if err != nil {
		s.logger.Error("failed to prune snapshots", "error", err)
		return
	}
	if removed > 0 {
		metrics.ArchivePrunedTotal.Add(float64(removed))
		s.logger.Info("pruned old snapshots", "removed", removed)
	}
}

// Latest returns the newest stored snapshot for a symbol
func (s *ArchiveService) Latest(ctx context.Context, symbol string) (*domain.OrderBookSnapshot, error) {
	symbol = domain.NormalizeSymbolName(symbol)
	if err := domain.ValidateSymbolName(symbol); err != nil {
		return nil, err
	}

	if !s.tracks(symbol) {
		return nil, domain.ErrSnapshotNotFound
	}

	snap, err := s.repo.GetLatest(ctx, symbol)
	if errors.Is(err, domain.ErrSnapshotNotFound) {
		return nil, err
	}
	if err != nil {
		s.logger.Error("failed to get latest snapshot", "symbol", symbol, "error", err)
		return nil, domain.ErrInternal
	}

	return snap, nil
}

// History returns stored snapshots for a symbol, newest first
func (s *ArchiveService) History(ctx context.Context, symbol string, limit int) ([]*domain.OrderBookSnapshot, error) {
	symbol = domain.NormalizeSymbolName(symbol)
	if err := domain.ValidateSymbolName(symbol); err != nil {
		return nil, err
	}

	if limit <= 0 {
		limit = 100
	}
	if limit > 1000 {
		limit = 1000
	}

	if !s.tracks(symbol) {
		return nil, domain.ErrSnapshotNotFound
	}

	history, err := s.repo.GetHistory(ctx, symbol, limit)
	if err != nil {
		s.logger.Error("failed to get snapshot history", "symbol", symbol, "error", err)
		return nil, domain.ErrInternal
	}

	return history, nil
}

// Symbols returns the archived symbols
func (s *ArchiveService) Symbols() []string {
	return append([]string(nil), s.cfg.Symbols...)
}

func (s *ArchiveService) tracks(symbol string) bool {
	for _, sym := range s.cfg.Symbols {
		if sym == symbol {
			return true
		}
	}
	return false
}

// Ensure ArchiveService implements ports.ArchiveService
var _ ports.ArchiveService = (*ArchiveService)(nil)
