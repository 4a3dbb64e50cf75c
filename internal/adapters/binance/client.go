package binance

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net/http"
	"time"

	gobinance "github.com/adshao/go-binance/v2"
	"github.com/adshao/go-binance/v2/common"

	"github.com/prxgr4mmer/crypto-service/internal/domain"
	"github.com/prxgr4mmer/crypto-service/internal/ports"
	"github.com/prxgr4mmer/crypto-service/pkg/retry"
)

const (
	defaultBaseURL    = "https://api.binance.com"
	defaultDepthLimit = 100
	defaultTradeLimit = 500
)

// Binance API error codes
const (
	codeUnknown          = -1000
	codeDisconnected     = -1001
	codeTooManyRequests  = -1003
	codeTimeout          = -1007
	codeTooManyOrders    = -1015
	codeIllegalChars     = -1100
	codeTooManyParams    = -1101
	codeMandatoryParam   = -1102
	codeBadParam         = -1104
	codeInvalidSymbol    = -1121
	codeInvalidListenKey = -1125
	codeBadAPIKeyFormat  = -2014
	codeRejectedMbxKey   = -2015
)

// Client implements ports.OrderBookProvider on top of go-binance
type Client struct {
	httpClient *http.Client
	baseURL    string
	retryConf  retry.Config
	logger     *slog.Logger
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(url string) ClientOption {
	return func(c *Client) {
		if url != "" {
			c.baseURL = url
		}
	}
}

// WithTimeout sets the HTTP client timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// WithRetry configures retry behavior
func WithRetry(maxRetries int, backoff time.Duration) ClientOption {
	return func(c *Client) {
		c.retryConf.MaxRetries = maxRetries
		c.retryConf.InitialBackoff = backoff
	}
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger.With("component", "binance_client")
	}
}

// NewClient creates a new Binance client
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL:   defaultBaseURL,
		retryConf: retry.DefaultConfig(),
		logger:    slog.Default().With("component", "binance_client"),
	}

	for _, opt := range opts {
		opt(c)
	}

	c.retryConf.OnRetry = func(attempt int, wait time.Duration, err error) {
		c.logger.Debug("retrying binance request", "attempt", attempt, "wait", wait, "error", err)
	}

	return c
}

// api builds a go-binance client for one call. Keys differ per call, so
// clients are cheap throwaway values sharing the same http.Client.
func (c *Client) api(apiKey string) *gobinance.Client {
	api := gobinance.NewClient(apiKey, "")
	api.BaseURL = c.baseURL
	api.HTTPClient = c.httpClient
	api.Logger = log.New(io.Discard, "", 0)
	return api
}

// Depth fetches an order-book snapshot
func (c *Client) Depth(ctx context.Context, apiKey string, params domain.Params) (*domain.OrderBook, error) {
	api := c.api(apiKey)
	limit := params.LimitOr(defaultDepthLimit)

	return retry.DoWithResult(ctx, c.retryConf, func(ctx context.Context) (*domain.OrderBook, error) {
		resp, err := api.NewDepthService().
			Symbol(params.Symbol).
			Limit(limit).
			Do(ctx)
		if err != nil {
			return nil, c.mapError(ctx, "depth", err)
		}

		book := &domain.OrderBook{
			Asks:         make([][]string, 0, len(resp.Asks)),
			Bids:         make([][]string, 0, len(resp.Bids)),
			LastUpdateID: uint64(resp.LastUpdateID),
		}
		for _, a := range resp.Asks {
			book.Asks = append(book.Asks, []string{a.Price, a.Quantity})
		}
		for _, b := range resp.Bids {
			book.Bids = append(book.Bids, []string{b.Price, b.Quantity})
		}

		return book, nil
	})
}

// RecentTrades fetches the latest public trades, oldest first
func (c *Client) RecentTrades(ctx context.Context, apiKey string, params domain.Params) ([]domain.RecentTrade, error) {
	api := c.api(apiKey)
	limit := params.LimitOr(defaultTradeLimit)

	return retry.DoWithResult(ctx, c.retryConf, func(ctx context.Context) ([]domain.RecentTrade, error) {
		trades, err := api.NewRecentTradesService().
			Symbol(params.Symbol).
			Limit(limit).
			Do(ctx)
		if err != nil {
			return nil, c.mapError(ctx, "trades", err)
		}

		result := make([]domain.RecentTrade, 0, len(trades))
		for _, t := range trades {
			result = append(result, domain.RecentTrade{
				ID:            uint64(t.ID),
				Price:         t.Price,
				Quantity:      t.Quantity,
				QuoteQuantity: t.QuoteQuantity,
				Time:          uint64(t.Time),
				IsBuyerMaker:  t.IsBuyerMaker,
				IsBestMatch:   t.IsBestMatch,
			})
		}

		return result, nil
	})
}

// Ping checks if Binance API is reachable
func (c *Client) Ping(ctx context.Context) error {
	api := c.api("")
	return retry.Do(ctx, c.retryConf, func(ctx context.Context) error {
		if err := api.NewPingService().Do(ctx); err != nil {
			return c.mapError(ctx, "ping", err)
		}
		return nil
	})
}

// mapError translates go-binance failures into domain errors.
// Transient failures come back wrapped as retryable.
func (c *Client) mapError(ctx context.Context, call string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}

	var apiErr *common.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case codeInvalidSymbol, codeIllegalChars, codeTooManyParams, codeMandatoryParam, codeBadParam:
			return fmt.Errorf("%w: %s", domain.ErrInvalidParams, apiErr.Message)
		case codeBadAPIKeyFormat, codeRejectedMbxKey, codeInvalidListenKey:
			c.logger.Warn("binance rejected api key", "call", call, "code", apiErr.Code)
			return fmt.Errorf("%w: binance: %s", domain.ErrAuthentication, apiErr.Message)
		case codeTooManyRequests, codeTooManyOrders:
			c.logger.Warn("rate limited by exchange", "call", call)
			return retry.NewRetryableError(domain.ErrRateLimited)
		case 0, codeUnknown, codeDisconnected, codeTimeout:
			c.logger.Warn("exchange server error", "call", call, "code", apiErr.Code)
			return retry.NewRetryableError(domain.ErrExchangeUnavailable)
		default:
			c.logger.Error("unexpected binance error", "call", call, "code", apiErr.Code, "message", apiErr.Message)
			return fmt.Errorf("%w: binance code %d: %s", domain.ErrInvalidResponse, apiErr.Code, apiErr.Message)
		}
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		c.logger.Error("failed to decode response", "call", call, "error", err)
		return fmt.Errorf("%w: %v", domain.ErrInvalidResponse, err)
	}

	c.logger.Debug("request failed, will retry", "call", call, "error", err)
	return retry.NewRetryableError(fmt.Errorf("%w: %v", domain.ErrExchangeUnavailable, err))
}

// Ensure Client implements OrderBookProvider
var _ ports.OrderBookProvider = (*Client)(nil)
