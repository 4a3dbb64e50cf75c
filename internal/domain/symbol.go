package domain

import (
	"fmt"
	"strings"
	"unicode"
)

// SymbolsParams filters the CoinAPI symbol listing. Empty fields are omitted.
type SymbolsParams struct {
	FilterSymbolID   string `json:"filter_symbol_id,omitempty"`
	FilterExchangeID string `json:"filter_exchange_id,omitempty"`
	FilterAssetID    string `json:"filter_asset_id,omitempty"`
}

// Query returns the non-empty filters keyed by their wire name
func (p SymbolsParams) Query() map[string]string {
	q := make(map[string]string, 3)
	if p.FilterSymbolID != "" {
		q["filter_symbol_id"] = p.FilterSymbolID
	}
	if p.FilterExchangeID != "" {
		q["filter_exchange_id"] = p.FilterExchangeID
	}
	if p.FilterAssetID != "" {
		q["filter_asset_id"] = p.FilterAssetID
	}
	return q
}

// SymbolsResponse is one tradable instrument as reported by CoinAPI.
// Every field is optional upstream.
type SymbolsResponse struct {
	SymbolID             *string  `json:"symbol_id"`
	ExchangeID           *string  `json:"exchange_id"`
	SymbolType           *string  `json:"symbol_type"`
	AssetIDBase          *string  `json:"asset_id_base"`
	AssetIDQuote         *string  `json:"asset_id_quote"`
	DataStart            *string  `json:"data_start"`
	DataEnd              *string  `json:"data_end"`
	DataQuoteStart       *string  `json:"data_quote_start"`
	DataQuoteEnd         *string  `json:"data_quote_end"`
	DataOrderbookStart   *string  `json:"data_orderbook_start"`
	DataOrderbookEnd     *string  `json:"data_orderbook_end"`
	DataTradeStart       *string  `json:"data_trade_start"`
	DataTradeEnd         *string  `json:"data_trade_end"`
	Volume1Hrs           *float64 `json:"volume_1hrs"`
	Volume1HrsUSD        *float64 `json:"volume_1hrs_usd"`
	Volume1Day           *float64 `json:"volume_1day"`
	Volume1DayUSD        *float64 `json:"volume_1day_usd"`
	Volume1Mth           *float64 `json:"volume_1mth"`
	Volume1MthUSD        *float64 `json:"volume_1mth_usd"`
	Price                *float64 `json:"price"`
	SymbolIDExchange     *string  `json:"symbol_id_exchange"`
	AssetIDBaseExchange  *string  `json:"asset_id_base_exchange"`
	AssetIDQuoteExchange *string  `json:"asset_id_quote_exchange"`
	PricePrecision       *float64 `json:"price_precision"`
	SizePrecision        *float64 `json:"size_precision"`
}

// AssetIconsParams selects the icon size in pixels
type AssetIconsParams struct {
	Size int `json:"size"`
}

// Validate checks the icon size
func (p AssetIconsParams) Validate() error {
	if p.Size <= 0 || p.Size > 512 {
		return fmt.Errorf("%w: icon size must be between 1 and 512", ErrInvalidParams)
	}
	return nil
}

// AssetIcon is a CoinAPI asset icon
type AssetIcon struct {
	ExchangeID *string `json:"exchange_id"`
	AssetID    string  `json:"asset_id"`
	URL        *string `json:"url"`
}

// NormalizeSymbolName upper-cases and trims a trading pair name
func NormalizeSymbolName(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}

// ValidateSymbolName validates the trading pair format
// Symbol names must be uppercase alphanumeric, between 2-20 characters
func ValidateSymbolName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: symbol is required", ErrInvalidParams)
	}

	if len(name) < 2 || len(name) > 20 {
		return fmt.Errorf("%w: symbol %q must be 2-20 characters", ErrInvalidParams, name)
	}

	for _, r := range name {
		if !unicode.IsUpper(r) && !unicode.IsDigit(r) {
			return fmt.Errorf("%w: symbol %q must be uppercase alphanumeric", ErrInvalidParams, name)
		}
	}

	return nil
}
