package services

import (
	"context"
	"strconv"
	"time"

	"github.com/prxgr4mmer/crypto-service/internal/ports"
)

// Pinger is anything that can report reachability
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthService implements the ports.HealthService interface.
// The database and metrics are nil when archiving is disabled.
type HealthService struct {
	exchange Pinger
	database Pinger
	metrics  ports.MetricsService
	timeout  time.Duration
}

// NewHealthService creates a new health service
func NewHealthService(exchange, database Pinger, metricsSvc ports.MetricsService) *HealthService {
	return &HealthService{
		exchange: exchange,
		database: database,
		metrics:  metricsSvc,
		timeout:  5 * time.Second,
	}
}

// CheckHealth pings the exchange and, when archiving, the database.
// A down exchange degrades the service; a down database makes it unhealthy.
func (h *HealthService) CheckHealth(ctx context.Context) (*ports.HealthStatus, error) {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	status := &ports.HealthStatus{
		Status:   "healthy",
		Database: "disabled",
		Exchange: "healthy",
	}

	if err := h.exchange.Ping(ctx); err != nil {
		status.Exchange = "unhealthy"
		status.Status = "degraded"
	}

	if h.database != nil {
		status.Database = "healthy"
		if err := h.database.Ping(ctx); err != nil {
			status.Database = "unhealthy"
			status.Status = "unhealthy"
		}
	}

	if h.metrics != nil {
		m, err := h.metrics.GetMetrics(ctx)
		if err == nil {
			status.Details = map[string]string{
				"capture_success_count": strconv.FormatInt(m.CaptureSuccessCount, 10),
				"capture_error_count":   strconv.FormatInt(m.CaptureErrorCount, 10),
				"total_snapshots":       strconv.FormatInt(m.TotalSnapshots, 10),
			}
			if m.LastCaptureTime != nil {
				status.Details["last_capture_time"] = m.LastCaptureTime.UTC().Format(time.RFC3339)
			}
		}
	}

	return status, nil
}

// Ensure HealthService implements ports.HealthService
var _ ports.HealthService = (*HealthService)(nil)
