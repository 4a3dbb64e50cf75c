package postgres

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prxgr4mmer/crypto-service/internal/domain"
)

func TestClampLimit(t *testing.T) {
	assert.Equal(t, 100, clampLimit(0))
	assert.Equal(t, 100, clampLimit(-5))
	assert.Equal(t, 25, clampLimit(25))
	assert.Equal(t, 1000, clampLimit(5000))
}

func TestInsertArgs_RowRoundTrip(t *testing.T) {
	captured := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	in := &domain.OrderBookSnapshot{
		Symbol:       "BTCUSDT",
		LastUpdateID: 1027024,
		BestBid:      decimal.RequireFromString("4.00000000"),
		BestAsk:      decimal.RequireFromString("4.00000200"),
		Spread:       decimal.RequireFromString("0.000002"),
		Book: domain.OrderBook{
			LastUpdateID: 1027024,
			Bids:         [][]string{{"4.00000000", "431.00000000"}},
			Asks:         [][]string{{"4.00000200", "12.00000000"}},
		},
		CapturedAt: captured,
	}

	args, err := insertArgs(in)
	require.NoError(t, err)
	require.Len(t, args, 7)
	assert.Equal(t, "BTCUSDT", args[0])
	assert.Equal(t, int64(1027024), args[1])
	assert.Equal(t, captured, args[6])

	out := domain.OrderBookSnapshot{Symbol: "BTCUSDT", CapturedAt: captured}
	err = decodeRow(&out, args[1].(int64), args[2].(string), args[3].(string), args[4].(string), args[5].([]byte))
	require.NoError(t, err)

	assert.Equal(t, in.LastUpdateID, out.LastUpdateID)
	assert.True(t, in.BestBid.Equal(out.BestBid))
	assert.True(t, in.BestAsk.Equal(out.BestAsk))
	assert.True(t, in.Spread.Equal(out.Spread))
	assert.Equal(t, in.Book, out.Book)
}

func TestDecodeRow_RejectsCorruptColumns(t *testing.T) {
	var s domain.OrderBookSnapshot

	err := decodeRow(&s, 1, "not-a-number", "1", "0", []byte(`{}`))
	assert.Error(t, err)

	err = decodeRow(&s, 1, "1", "1", "0", []byte(`{"bids":`))
	assert.Error(t, err)
}

func TestMigrations_Embedded(t *testing.T) {
	entries, err := migrationsFS.ReadDir("migrations")
	require.NoError(t, err)

	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.Contains(t, names, "000001_create_orderbook_snapshots.up.sql")
	assert.Contains(t, names, "000001_create_orderbook_snapshots.down.sql")
}
