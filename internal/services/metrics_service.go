package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/prxgr4mmer/crypto-service/internal/domain"
	"github.com/prxgr4mmer/crypto-service/internal/ports"
)

// MetricsService implements the ports.MetricsService interface
type MetricsService struct {
	repo      ports.ArchiveRepository
	symbols   int
	startTime time.Time
	logger    *slog.Logger

	mu                  sync.RWMutex
	lastCaptureTime     *time.Time
	lastCaptureDuration time.Duration
	captureSuccessCount int64
	captureErrorCount   int64
}

// NewMetricsService creates a new metrics service
func NewMetricsService(repo ports.ArchiveRepository, trackedSymbols int, logger *slog.Logger) *MetricsService {
	return &MetricsService{
		repo:      repo,
		symbols:   trackedSymbols,
		startTime: time.Now(),
		logger:    logger.With("component", "metrics_service"),
	}
}

// GetMetrics returns current operational metrics
func (m *MetricsService) GetMetrics(ctx context.Context) (*domain.Metrics, error) {
	m.mu.RLock()
	lastCaptureTime := m.lastCaptureTime
	lastCaptureDuration := m.lastCaptureDuration
	captureSuccessCount := m.captureSuccessCount
	captureErrorCount := m.captureErrorCount
	m.mu.RUnlock()

	dbStatus := "healthy"
	totalSnapshots, err := m.repo.Count(ctx)
	if err != nil {
		m.logger.Error("failed to count snapshots", "error", err)
		totalSnapshots = 0
		dbStatus = "unhealthy"
	}

	return &domain.Metrics{
		Uptime:              time.Since(m.startTime).Seconds(),
		TrackedSymbols:      m.symbols,
		TotalSnapshots:      totalSnapshots,
		LastCaptureTime:     lastCaptureTime,
		LastCaptureDuration: float64(lastCaptureDuration.Milliseconds()),
		CaptureSuccessCount: captureSuccessCount,
		CaptureErrorCount:   captureErrorCount,
		DatabaseStatus:      dbStatus,
	}, nil
}

// RecordCaptureSuccess records a successful capture cycle
func (m *MetricsService) RecordCaptureSuccess(duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	m.lastCaptureTime = &now
	m.lastCaptureDuration = duration
	m.captureSuccessCount++
}

// RecordCaptureError records a failed capture cycle
func (m *MetricsService) RecordCaptureError(duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	m.lastCaptureTime = &now
	m.lastCaptureDuration = duration
	m.captureErrorCount++
}

// Ensure MetricsService implements ports.MetricsService
var _ ports.MetricsService = (*MetricsService)(nil)
