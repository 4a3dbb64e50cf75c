package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// OrderBookSnapshot is an archived order book captured at a point in time
type OrderBookSnapshot struct {
	ID           int64           `json:"id"`
	Symbol       string          `json:"symbol"`
	LastUpdateID uint64          `json:"last_update_id"`
	BestBid      decimal.Decimal `json:"best_bid"`
	BestAsk      decimal.Decimal `json:"best_ask"`
	Spread       decimal.Decimal `json:"spread"`
	Book         OrderBook       `json:"book"`
	CapturedAt   time.Time       `json:"captured_at"`
}

// NewOrderBookSnapshot derives top-of-book figures from book
func NewOrderBookSnapshot(symbol string, book *OrderBook) (*OrderBookSnapshot, error) {
	if book == nil {
		return nil, fmt.Errorf("%w: nil order book for %s", ErrInvalidResponse, symbol)
	}

	snap := &OrderBookSnapshot{
		Symbol:       symbol,
		LastUpdateID: book.LastUpdateID,
		Book:         *book,
		CapturedAt:   time.Now().UTC(),
	}

	bid, ok, err := book.BestBid()
	if err != nil {
		return nil, err
	}
	if ok {
		snap.BestBid = bid.Price
	}

	ask, ok, err := book.BestAsk()
	if err != nil {
		return nil, err
	}
	if ok {
		snap.BestAsk = ask.Price
	}

	spread, ok, err := book.Spread()
	if err != nil {
		return nil, err
	}
	if ok {
		snap.Spread = spread
	}

	return snap, nil
}

// Metrics represents operational metrics of the archive
type Metrics struct {
	Uptime              float64    `json:"uptime_seconds"`
	TrackedSymbols      int        `json:"tracked_symbols"`
	TotalSnapshots      int64      `json:"total_snapshots"`
	LastCaptureTime     *time.Time `json:"last_capture_time,omitempty"`
	LastCaptureDuration float64    `json:"last_capture_duration_ms"`
	CaptureSuccessCount int64      `json:"capture_success_count"`
	CaptureErrorCount   int64      `json:"capture_error_count"`
	DatabaseStatus      string     `json:"database_status"`
}
