package livecoinwatch

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prxgr4mmer/crypto-service/internal/adapters/rest"
	"github.com/prxgr4mmer/crypto-service/internal/domain"
	"github.com/prxgr4mmer/crypto-service/internal/ports"
)

const (
	defaultBaseURL  = "https://api.livecoinwatch.com"
	coinsListPath   = "/coins/list"
	coinSinglePath  = "/coins/single"
	coinHistoryPath = "/coins/single/history"
	keyHeader       = "x-api-key"
)

// Client implements ports.CoinProvider for LiveCoinWatch
type Client struct {
	rest *rest.Client
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(url string) ClientOption {
	return func(c *Client) {
		if url != "" {
			c.rest.BaseURL = url
		}
	}
}

// WithTimeout sets the HTTP client timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		if timeout > 0 {
			c.rest.HTTPClient.Timeout = timeout
		}
	}
}

// WithRetry configures retry behavior
func WithRetry(maxRetries int, backoff time.Duration) ClientOption {
	return func(c *Client) {
		c.rest.Retry.MaxRetries = maxRetries
		c.rest.Retry.InitialBackoff = backoff
	}
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.rest.Logger = logger.With("component", "livecoinwatch_client")
	}
}

// NewClient creates a new LiveCoinWatch client
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		rest: rest.New(defaultBaseURL, slog.Default().With("component", "livecoinwatch_client")),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// ListCoins lists coins in the requested order
func (c *Client) ListCoins(ctx context.Context, apiKey string, req domain.ListOfCoinsRequest) ([]domain.Coin, error) {
	var coins []domain.Coin
	if err := c.post(ctx, apiKey, coinsListPath, req, &coins); err != nil {
		return nil, fmt.Errorf("livecoinwatch list: %w", err)
	}
	return coins, nil
}

// CoinMeta fetches one coin with metadata
func (c *Client) CoinMeta(ctx context.Context, apiKey string, req domain.CoinMetaRequest) (*domain.CoinMeta, error) {
	var meta domain.CoinMeta
	if err := c.post(ctx, apiKey, coinSinglePath, req, &meta); err != nil {
		return nil, fmt.Errorf("livecoinwatch coin %s: %w", req.Code, err)
	}
	return &meta, nil
}

// CoinHistory fetches one coin's history between req.Start and req.End
func (c *Client) CoinHistory(ctx context.Context, apiKey string, req domain.CoinHistoryRequest) (*domain.CoinMeta, error) {
	var meta domain.CoinMeta
	if err := c.post(ctx, apiKey, coinHistoryPath, req, &meta); err != nil {
		return nil, fmt.Errorf("livecoinwatch history %s: %w", req.Code, err)
	}
	return &meta, nil
}

func (c *Client) post(ctx context.Context, apiKey, path string, body, out any) error {
	h := http.Header{}
	h.Set(keyHeader, apiKey)

	return c.rest.Do(ctx, rest.Request{
		Method: http.MethodPost,
		Path:   path,
		Header: h,
		Body:   body,
	}, out)
}

// Ensure Client implements CoinProvider
var _ ports.CoinProvider = (*Client)(nil)
