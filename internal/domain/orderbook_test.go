package domain_test

import (
	"testing"

	"github.com/prxgr4mmer/crypto-service/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewParams(t *testing.T) {
	p := domain.NewParams(" ethbtc", 0)
	assert.Equal(t, "ETHBTC", p.Symbol)
	assert.Nil(t, p.Limit)
	assert.Equal(t, 100, p.LimitOr(100))

	p = domain.NewParams("ETHBTC", 20)
	require.NotNil(t, p.Limit)
	assert.Equal(t, 20, p.LimitOr(100))
}

func TestParams_ValidateDepth(t *testing.T) {
	tests := []struct {
		name    string
		params  domain.Params
		wantErr bool
	}{
		{"no limit", domain.NewParams("BTCUSDT", 0), false},
		{"supported depth", domain.NewParams("BTCUSDT", 500), false},
		{"unsupported depth", domain.NewParams("BTCUSDT", 7), true},
		{"limit out of range", domain.NewParams("BTCUSDT", 6000), true},
		{"bad symbol", domain.Params{Symbol: "btc"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.params.ValidateDepth()
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrInvalidParams)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestOrderBook_TopOfBook(t *testing.T) {
	book := domain.OrderBook{
		Asks:         [][]string{{"64010.50", "0.25"}, {"64011.00", "1.00"}},
		Bids:         [][]string{{"64000.00", "0.50"}, {"63999.99", "2.00"}},
		LastUpdateID: 1,
	}

	bid, ok, err := book.BestBid()
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, bid.Price.Equal(decimal.RequireFromString("64000.00")))

	ask, ok, err := book.BestAsk()
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, ask.Quantity.Equal(decimal.RequireFromString("0.25")))

	spread, ok, err := book.Spread()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "10.5", spread.String())

	levels, err := book.BidLevels()
	require.NoError(t, err)
	assert.Len(t, levels, 2)
}

func TestOrderBook_EmptySide(t *testing.T) {
	book := domain.OrderBook{Bids: [][]string{{"1", "1"}}}

	_, ok, err := book.BestAsk()
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = book.Spread()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestOrderBook_MalformedLevel(t *testing.T) {
	book := domain.OrderBook{Bids: [][]string{{"abc", "1"}}, Asks: [][]string{{"1"}}}

	_, _, err := book.BestBid()
	assert.ErrorIs(t, err, domain.ErrInvalidResponse)

	_, err = book.AskLevels()
	assert.ErrorIs(t, err, domain.ErrInvalidResponse)
}

func TestNewOrderBookSnapshot(t *testing.T) {
	book := &domain.OrderBook{
		Asks:         [][]string{{"101", "1"}},
		Bids:         [][]string{{"100", "1"}},
		LastUpdateID: 99,
	}

	snap, err := domain.NewOrderBookSnapshot("BTCUSDT", book)
	require.NoError(t, err)
	assert.Equal(t, "BTCUSDT", snap.Symbol)
	assert.Equal(t, uint64(99), snap.LastUpdateID)
	assert.True(t, snap.Spread.Equal(decimal.NewFromInt(1)))
	assert.False(t, snap.CapturedAt.IsZero())

	_, err = domain.NewOrderBookSnapshot("BTCUSDT", nil)
	assert.ErrorIs(t, err, domain.ErrInvalidResponse)
}
