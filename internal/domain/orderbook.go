package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Binance accepts these depth limits only
var validDepthLimits = map[int]bool{5: true, 10: true, 20: true, 50: true, 100: true, 500: true, 1000: true, 5000: true}

// Params identifies an instrument for order-book and trade requests
type Params struct {
	Symbol string `json:"symbol"`
	Limit  *int   `json:"limit,omitempty"`
}

// NewParams builds params for symbol with an optional limit (0 = exchange default)
func NewParams(symbol string, limit int) Params {
	p := Params{Symbol: NormalizeSymbolName(symbol)}
	if limit > 0 {
		p.Limit = &limit
	}
	return p
}

// Validate checks the symbol format and limit range
func (p Params) Validate() error {
	if err := ValidateSymbolName(p.Symbol); err != nil {
		return err
	}
	if p.Limit != nil && (*p.Limit < 1 || *p.Limit > 5000) {
		return fmt.Errorf("%w: limit must be between 1 and 5000", ErrInvalidParams)
	}
	return nil
}

// ValidateDepth additionally checks the limit is a depth Binance serves
func (p Params) ValidateDepth() error {
	if err := p.Validate(); err != nil {
		return err
	}
	if p.Limit != nil && !validDepthLimits[*p.Limit] {
		return fmt.Errorf("%w: depth limit %d not supported", ErrInvalidParams, *p.Limit)
	}
	return nil
}

// LimitOr returns the limit or def when unset
func (p Params) LimitOr(def int) int {
	if p.Limit == nil {
		return def
	}
	return *p.Limit
}

// OrderBook is a point-in-time depth snapshot. Levels stay as the exchange's
// [price, quantity] strings so the wire form is preserved exactly.
type OrderBook struct {
	Asks         [][]string `json:"asks"`
	Bids         [][]string `json:"bids"`
	LastUpdateID uint64     `json:"lastUpdateId"`
}

// OrderBookResponse is the name the binding surface uses for a snapshot
type OrderBookResponse = OrderBook

// PriceLevel is a parsed order-book level
type PriceLevel struct {
	Price    decimal.Decimal
	Quantity decimal.Decimal
}

// BidLevels parses the bid side
func (o *OrderBook) BidLevels() ([]PriceLevel, error) {
	return parseLevels(o.Bids)
}

// AskLevels parses the ask side
func (o *OrderBook) AskLevels() ([]PriceLevel, error) {
	return parseLevels(o.Asks)
}

// BestBid returns the highest bid, false when the side is empty
func (o *OrderBook) BestBid() (PriceLevel, bool, error) {
	return bestLevel(o.Bids)
}

// BestAsk returns the lowest ask, false when the side is empty
func (o *OrderBook) BestAsk() (PriceLevel, bool, error) {
	return bestLevel(o.Asks)
}

// Spread returns best ask minus best bid, false when either side is empty
func (o *OrderBook) Spread() (decimal.Decimal, bool, error) {
	bid, okBid, err := o.BestBid()
	if err != nil {
		return decimal.Zero, false, err
	}
	ask, okAsk, err := o.BestAsk()
	if err != nil {
		return decimal.Zero, false, err
	}
	if !okBid || !okAsk {
		return decimal.Zero, false, nil
	}
	return ask.Price.Sub(bid.Price), true, nil
}

// Exchanges already sort both sides best-first
func bestLevel(raw [][]string) (PriceLevel, bool, error) {
	if len(raw) == 0 {
		return PriceLevel{}, false, nil
	}
	lvl, err := parseLevel(raw[0])
	if err != nil {
		return PriceLevel{}, false, err
	}
	return lvl, true, nil
}

func parseLevels(raw [][]string) ([]PriceLevel, error) {
	levels := make([]PriceLevel, 0, len(raw))
	for _, r := range raw {
		lvl, err := parseLevel(r)
		if err != nil {
			return nil, err
		}
		levels = append(levels, lvl)
	}
	return levels, nil
}

func parseLevel(raw []string) (PriceLevel, error) {
	if len(raw) < 2 {
		return PriceLevel{}, fmt.Errorf("%w: level %v needs price and quantity", ErrInvalidResponse, raw)
	}
	price, err := decimal.NewFromString(raw[0])
	if err != nil {
		return PriceLevel{}, fmt.Errorf("%w: bad price %q", ErrInvalidResponse, raw[0])
	}
	qty, err := decimal.NewFromString(raw[1])
	if err != nil {
		return PriceLevel{}, fmt.Errorf("%w: bad quantity %q", ErrInvalidResponse, raw[1])
	}
	return PriceLevel{Price: price, Quantity: qty}, nil
}

// RecentTrade is one public trade
type RecentTrade struct {
	ID            uint64 `json:"id"`
	Price         string `json:"price"`
	Quantity      string `json:"qty"`
	QuoteQuantity string `json:"quoteQty"`
	Time          uint64 `json:"time"`
	IsBuyerMaker  bool   `json:"isBuyerMaker"`
	IsBestMatch   bool   `json:"isBestMatch"`
}
