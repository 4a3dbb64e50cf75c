package ports

import (
	"context"
	"time"

	"github.com/prxgr4mmer/crypto-service/internal/domain"
)

// ArchiveRepository defines the contract for order-book snapshot persistence
type ArchiveRepository interface {
	// CreateBatch stores multiple snapshots atomically
	CreateBatch(ctx context.Context, snapshots []*domain.OrderBookSnapshot) error

	// GetLatest returns the most recent snapshot for a symbol
	GetLatest(ctx context.Context, symbol string) (*domain.OrderBookSnapshot, error)

	// GetHistory returns snapshots for a symbol, newest first
	GetHistory(ctx context.Context, symbol string, limit int) ([]*domain.OrderBookSnapshot, error)

	// Count returns total number of snapshots
	Count(ctx context.Context) (int64, error)

	// Prune removes snapshots older than the given time
	Prune(ctx context.Context, olderThan time.Time) (int64, error)

	// Ping checks the database connection
	Ping(ctx context.Context) error
}
