package http

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/prxgr4mmer/crypto-service/internal/domain"
)

var validate = validator.New()

// Headers carrying per-call upstream keys
const (
	HeaderBinanceKey      = "X-Binance-Key"
	HeaderCoinAPIKey      = "X-CoinAPI-Key"
	HeaderCoinWatchKey    = "X-CoinWatch-Key"
	HeaderAlphaVantageKey = "X-AlphaVantage-Key"
)

// SymbolsQuery is the query of GET /v1/symbols
type SymbolsQuery struct {
	FilterSymbolID   string `validate:"omitempty,max=256"`
	FilterExchangeID string `validate:"omitempty,max=256"`
	FilterAssetID    string `validate:"omitempty,max=256"`
}

func (q SymbolsQuery) toDomain() domain.SymbolsParams {
	return domain.SymbolsParams{
		FilterSymbolID:   q.FilterSymbolID,
		FilterExchangeID: q.FilterExchangeID,
		FilterAssetID:    q.FilterAssetID,
	}
}

// OrderbookQuery is the query of GET /v1/orderbooks
type OrderbookQuery struct {
	Symbol string `validate:"required,min=2,max=20,alphanum"`
	Limit  int    `validate:"omitempty,oneof=5 10 20 50 100 500 1000 5000"`
}

// TradesQuery is the query of GET /v1/trades
type TradesQuery struct {
	Symbol string `validate:"required,min=2,max=20,alphanum"`
	Limit  int    `validate:"omitempty,min=1,max=1000"`
}

// IconsQuery is the query of GET /v1/symbols/icons
type IconsQuery struct {
	Size int `validate:"required,min=1,max=512"`
}

// HistoryQuery is the query of GET /v1/orderbooks/history
type HistoryQuery struct {
	Symbol string `validate:"required,min=2,max=20,alphanum"`
	Limit  int    `validate:"omitempty,min=1,max=1000"`
}

// ListCoinsBody is the body of POST /v1/coins/list and /v1/coins/list/aggregated
type ListCoinsBody struct {
	Currency string `json:"currency" validate:"omitempty,alpha,max=10"`
	Sort     string `json:"sort" validate:"omitempty,oneof=rank price volume code name age"`
	Order    string `json:"order" validate:"omitempty,oneof=ascending descending"`
	Offset   int    `json:"offset" validate:"min=0,max=255"`
	Limit    int    `json:"limit" validate:"required,min=1,max=100"`
	Meta     bool   `json:"meta"`
}

func (b ListCoinsBody) toDomain() domain.ListOfCoinsRequest {
	req := domain.NewListOfCoinsRequest(uint32(b.Limit))
	if b.Currency != "" {
		req.Currency = strings.ToUpper(b.Currency)
	}
	if b.Sort != "" {
		req.Sort = domain.Sort(b.Sort)
	}
	if b.Order != "" {
		req.Order = b.Order
	}
	req.Offset = uint8(b.Offset)
	req.Meta = b.Meta
	return req
}

// CoinBody is the body of POST /v1/coins/single
type CoinBody struct {
	Currency string `json:"currency" validate:"omitempty,alpha,max=10"`
	Code     string `json:"code" validate:"required,max=32"`
	Meta     *bool  `json:"meta"`
}

func (b CoinBody) toDomain() domain.CoinMetaRequest {
	req := domain.NewCoinMetaRequest(strings.ToUpper(b.Code))
	if b.Currency != "" {
		req.Currency = strings.ToUpper(b.Currency)
	}
	if b.Meta != nil {
		req.Meta = *b.Meta
	}
	return req
}

// CoinHistoryBody is the body of POST /v1/coins/single/history
type CoinHistoryBody struct {
	Currency string `json:"currency" validate:"omitempty,alpha,max=10"`
	Code     string `json:"code" validate:"required,max=32"`
	Start    uint64 `json:"start" validate:"required"`
	End      uint64 `json:"end" validate:"required,gtfield=Start"`
	Meta     bool   `json:"meta"`
}

func (b CoinHistoryBody) toDomain() domain.CoinHistoryRequest {
	currency := "USD"
	if b.Currency != "" {
		currency = strings.ToUpper(b.Currency)
	}
	return domain.CoinHistoryRequest{
		Currency: currency,
		Code:     strings.ToUpper(b.Code),
		Start:    b.Start,
		End:      b.End,
		Meta:     b.Meta,
	}
}

// validationMessage flattens validator errors into one line
func validationMessage(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.ToLower(fe.Field())
		if fe.Tag() == "required" {
			msgs = append(msgs, field+" is required")
		} else {
			msgs = append(msgs, field+" is invalid")
		}
	}
	return strings.Join(msgs, "; ")
}

// queryInt reads an optional integer query parameter
func queryInt(r *http.Request, key string) (int, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", key)
	}
	return n, nil
}

// credentialsFromHeaders reads per-call keys; nil when none were sent
func credentialsFromHeaders(r *http.Request) *domain.Credentials {
	creds := domain.Credentials{
		BinanceKey:      strings.TrimSpace(r.Header.Get(HeaderBinanceKey)),
		CoinAPIKey:      strings.TrimSpace(r.Header.Get(HeaderCoinAPIKey)),
		CoinWatchKey:    strings.TrimSpace(r.Header.Get(HeaderCoinWatchKey)),
		AlphaVantageKey: strings.TrimSpace(r.Header.Get(HeaderAlphaVantageKey)),
	}
	if creds.IsZero() {
		return nil
	}
	return &creds
}
