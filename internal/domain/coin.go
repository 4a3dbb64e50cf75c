package domain

import (
	"fmt"
	"strings"
)

// Sort orders the LiveCoinWatch coin list
type Sort string

const (
	SortRank   Sort = "rank"
	SortPrice  Sort = "price"
	SortVolume Sort = "volume"
	SortCode   Sort = "code"
	SortName   Sort = "name"
	SortAge    Sort = "age"
)

// Valid reports whether s is a known sort key
func (s Sort) Valid() bool {
	switch s {
	case SortRank, SortPrice, SortVolume, SortCode, SortName, SortAge:
		return true
	}
	return false
}

// ListOfCoinsRequest is the body of POST /coins/list
type ListOfCoinsRequest struct {
	Currency string `json:"currency"`
	Sort     Sort   `json:"sort"`
	Order    string `json:"order"`
	Offset   uint8  `json:"offset"`
	Limit    uint32 `json:"limit"`
	Meta     bool   `json:"meta"`
}

// NewListOfCoinsRequest returns the top coins by rank in USD
func NewListOfCoinsRequest(limit uint32) ListOfCoinsRequest {
	return ListOfCoinsRequest{
		Currency: "USD",
		Sort:     SortRank,
		Order:    "ascending",
		Offset:   0,
		Limit:    limit,
		Meta:     false,
	}
}

func (r ListOfCoinsRequest) Validate() error {
	if strings.TrimSpace(r.Currency) == "" {
		return fmt.Errorf("%w: currency is required", ErrInvalidParams)
	}
	if !r.Sort.Valid() {
		return fmt.Errorf("%w: unknown sort %q", ErrInvalidParams, r.Sort)
	}
	if r.Order != "ascending" && r.Order != "descending" {
		return fmt.Errorf("%w: order must be ascending or descending", ErrInvalidParams)
	}
	if r.Limit == 0 || r.Limit > 100 {
		return fmt.Errorf("%w: limit must be between 1 and 100", ErrInvalidParams)
	}
	return nil
}

// CoinHistoryRequest is the body of POST /coins/single/history.
// Start and End are unix milliseconds.
type CoinHistoryRequest struct {
	Currency string `json:"currency"`
	Code     string `json:"code"`
	Start    uint64 `json:"start"`
	End      uint64 `json:"end"`
	Meta     bool   `json:"meta"`
}

func (r CoinHistoryRequest) Validate() error {
	if strings.TrimSpace(r.Currency) == "" || strings.TrimSpace(r.Code) == "" {
		return fmt.Errorf("%w: currency and code are required", ErrInvalidParams)
	}
	if r.End <= r.Start {
		return fmt.Errorf("%w: end must be after start", ErrInvalidParams)
	}
	return nil
}

// CoinMetaRequest is the body of POST /coins/single
type CoinMetaRequest struct {
	Currency string `json:"currency"`
	Code     string `json:"code"`
	Meta     bool   `json:"meta"`
}

// NewCoinMetaRequest asks for full metadata of code in USD
func NewCoinMetaRequest(code string) CoinMetaRequest {
	return CoinMetaRequest{Currency: "USD", Code: code, Meta: true}
}

func (r CoinMetaRequest) Validate() error {
	if strings.TrimSpace(r.Currency) == "" || strings.TrimSpace(r.Code) == "" {
		return fmt.Errorf("%w: currency and code are required", ErrInvalidParams)
	}
	return nil
}

// Coin is one entry of the coin list
type Coin struct {
	Code   string  `json:"code"`
	Rate   float64 `json:"rate"`
	Volume int64   `json:"volume"`
	Cap    int64   `json:"cap"`
	Delta  Delta   `json:"delta"`
}

// Delta holds rate multipliers over several windows
type Delta struct {
	Hour    float64 `json:"hour"`
	Day     float64 `json:"day"`
	Week    float64 `json:"week"`
	Month   float64 `json:"month"`
	Quarter float64 `json:"quarter"`
	Year    float64 `json:"year"`
}

// CoinMeta describes a single coin
type CoinMeta struct {
	Code           *string   `json:"code"`
	Name           string    `json:"name"`
	Symbol         *string   `json:"symbol"`
	Rank           int64     `json:"rank"`
	Age            int64     `json:"age"`
	Color          string    `json:"color"`
	Png32          string    `json:"png32"`
	Png64          string    `json:"png64"`
	Webp32         string    `json:"webp32"`
	Webp64         string    `json:"webp64"`
	AllTimeHighUSD float64   `json:"allTimeHighUSD"`
	Links          Links     `json:"links"`
	Delta          *Delta    `json:"delta"`
	History        []History `json:"history"`
}

// History is one point of a coin's history
type History struct {
	Date   int64   `json:"date"`
	Rate   float64 `json:"rate"`
	Volume int64   `json:"volume"`
	Cap    int64   `json:"cap"`
}

// Links are a coin's external references
type Links struct {
	Website    *string `json:"website"`
	Whitepaper *string `json:"whitepaper"`
}

// AggregatedCoinInformation joins a listed coin with its artwork
type AggregatedCoinInformation struct {
	Name   string  `json:"name"`
	Symbol string  `json:"symbol"`
	Rank   int64   `json:"rank"`
	Rate   float64 `json:"rate"`
	Color  string  `json:"color"`
	Png64  string  `json:"png64"`
}

// Aggregate combines a listed coin and its metadata.
// rank is the 1-based position in the list when meta carries none.
func Aggregate(coin Coin, meta CoinMeta, rank int64) AggregatedCoinInformation {
	name := meta.Name
	if name == "" {
		name = coin.Code
	}
	if meta.Rank > 0 {
		rank = meta.Rank
	}
	return AggregatedCoinInformation{
		Name:   name,
		Symbol: coin.Code,
		Rank:   rank,
		Rate:   coin.Rate,
		Color:  meta.Color,
		Png64:  meta.Png64,
	}
}
