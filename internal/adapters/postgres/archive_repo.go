package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/prxgr4mmer/crypto-service/internal/domain"
	"github.com/prxgr4mmer/crypto-service/internal/ports"
)

const (
	insertSnapshotQuery = `
		INSERT INTO orderbook_snapshots (symbol, last_update_id, best_bid, best_ask, spread, book, captured_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	selectSnapshotColumns = `
		SELECT id, symbol, last_update_id, best_bid::text, best_ask::text, spread::text, book, captured_at
		FROM orderbook_snapshots
	`
)

// ArchiveRepository implements the ports.ArchiveRepository interface
type ArchiveRepository struct {
	db *DB
}

// NewArchiveRepository creates a new PostgreSQL archive repository
func NewArchiveRepository(db *DB) *ArchiveRepository {
	return &ArchiveRepository{db: db}
}

// CreateBatch stores multiple snapshots atomically
func (r *ArchiveRepository) CreateBatch(ctx context.Context, snapshots []*domain.OrderBookSnapshot) error {
	if len(snapshots) == 0 {
		return nil
	}

	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, snapshot := range snapshots {
		args, err := insertArgs(snapshot)
		if err != nil {
			return err
		}
		if err := tx.QueryRow(ctx, insertSnapshotQuery, args...).Scan(&snapshot.ID); err != nil {
			return fmt.Errorf("failed to create snapshot for %s: %w", snapshot.Symbol, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetLatest returns the most recent snapshot for a symbol
func (r *ArchiveRepository) GetLatest(ctx context.Context, symbol string) (*domain.OrderBookSnapshot, error) {
	query := selectSnapshotColumns + `
		WHERE symbol = $1
		ORDER BY captured_at DESC
		LIMIT 1
	`

	snapshot, err := scanSnapshot(r.db.Pool.QueryRow(ctx, query, symbol))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrSnapshotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest snapshot: %w", err)
	}

	return snapshot, nil
}

// GetHistory returns snapshots for a symbol, newest first
func (r *ArchiveRepository) GetHistory(ctx context.Context, symbol string, limit int) ([]*domain.OrderBookSnapshot, error) {
	limit = clampLimit(limit)

	query := selectSnapshotColumns + `
		WHERE symbol = $1
		ORDER BY captured_at DESC
		LIMIT $2
	`

	rows, err := r.db.Pool.Query(ctx, query, symbol, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get history: %w", err)
	}
	defer rows.Close()

	var snapshots []*domain.OrderBookSnapshot
	for rows.Next() {
		s, err := scanSnapshot(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		snapshots = append(snapshots, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating snapshots: %w", err)
	}

	return snapshots, nil
}

// Count returns total number of snapshots
func (r *ArchiveRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM orderbook_snapshots`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count snapshots: %w", err)
	}

	return count, nil
}

// Prune removes snapshots older than the given time
func (r *ArchiveRepository) Prune(ctx context.Context, olderThan time.Time) (int64, error) {
	result, err := r.db.Pool.Exec(ctx, `DELETE FROM orderbook_snapshots WHERE captured_at < $1`, olderThan)
	if err != nil {
		return 0, fmt.Errorf("failed to prune snapshots: %w", err)
	}

	return result.RowsAffected(), nil
}

// Ping checks the database connection
func (r *ArchiveRepository) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}

// clampLimit keeps history queries between 1 and 1000 rows
func clampLimit(limit int) int {
	if limit <= 0 {
		return 100
	}
	if limit > 1000 {
		return 1000
	}
	return limit
}

func insertArgs(s *domain.OrderBookSnapshot) ([]any, error) {
	book, err := json.Marshal(s.Book)
	if err != nil {
		return nil, fmt.Errorf("failed to encode book for %s: %w", s.Symbol, err)
	}

	return []any{
		s.Symbol,
		int64(s.LastUpdateID),
		s.BestBid.String(),
		s.BestAsk.String(),
		s.Spread.String(),
		book,
		s.CapturedAt,
	}, nil
}

// scanSnapshot decodes one orderbook_snapshots row
func scanSnapshot(row pgx.Row) (*domain.OrderBookSnapshot, error) {
	var (
		s                        domain.OrderBookSnapshot
		lastUpdateID             int64
		bestBid, bestAsk, spread string
		book                     []byte
	)

	if err := row.Scan(&s.ID, &s.Symbol, &lastUpdateID, &bestBid, &bestAsk, &spread, &book, &s.CapturedAt); err != nil {
		return nil, err
	}

	if err := decodeRow(&s, lastUpdateID, bestBid, bestAsk, spread, book); err != nil {
		return nil, err
	}

	return &s, nil
}

// decodeRow fills the parsed columns of s
func decodeRow(s *domain.OrderBookSnapshot, lastUpdateID int64, bestBid, bestAsk, spread string, book []byte) error {
	var err error

	s.LastUpdateID = uint64(lastUpdateID)

	if s.BestBid, err = decimal.NewFromString(bestBid); err != nil {
		return fmt.Errorf("failed to parse best bid: %w", err)
	}
	if s.BestAsk, err = decimal.NewFromString(bestAsk); err != nil {
		return fmt.Errorf("failed to parse best ask: %w", err)
	}
	if s.Spread, err = decimal.NewFromString(spread); err != nil {
		return fmt.Errorf("failed to parse spread: %w", err)
	}
	if err := json.Unmarshal(book, &s.Book); err != nil {
		return fmt.Errorf("failed to decode book: %w", err)
	}

	return nil
}

// Ensure ArchiveRepository implements ports.ArchiveRepository
var _ ports.ArchiveRepository = (*ArchiveRepository)(nil)
