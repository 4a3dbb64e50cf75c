package ports

import (
	"context"
	"time"

	"github.com/prxgr4mmer/crypto-service/internal/domain"
)

// ArchiveService defines the contract for order-book archiving
type ArchiveService interface {
	// Capture takes and stores a snapshot of every archived symbol
	Capture(ctx context.Context) error

	// Latest returns the newest stored snapshot for a symbol
	Latest(ctx context.Context, symbol string) (*domain.OrderBookSnapshot, error)

	// History returns stored snapshots for a symbol, newest first
	History(ctx context.Context, symbol string, limit int) ([]*domain.OrderBookSnapshot, error)

	// Symbols returns the archived symbols
	Symbols() []string
}

// MetricsService defines the contract for operational metrics
type MetricsService interface {
	// GetMetrics returns current operational metrics
	GetMetrics(ctx context.Context) (*domain.Metrics, error)

	// RecordCaptureSuccess records a successful capture cycle
	RecordCaptureSuccess(duration time.Duration)

	// RecordCaptureError records a failed capture cycle
	RecordCaptureError(duration time.Duration)
}

// HealthService defines the contract for health checks
type HealthService interface {
	// CheckHealth performs health checks on all dependencies
	CheckHealth(ctx context.Context) (*HealthStatus, error)
}

// HealthStatus represents the health of the service
type HealthStatus struct {
	Status   string            `json:"status"`
	Database string            `json:"database"`
	Exchange string            `json:"exchange"`
	Details  map[string]string `json:"details,omitempty"`
}
