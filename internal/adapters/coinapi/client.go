package coinapi

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
	defaultBaseURL = "https://rest.coinapi.io"
	symbolsPath    = "/v1/symbols"
	iconsPath      = "/v1/assets/icons/%d"
	keyHeader      = "X-CoinAPI-Key"
)

// Client implements ports.SymbolProvider for CoinAPI
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
		c.rest.Logger = logger.With("component", "coinapi_client")
	}
}

// NewClient creates a new CoinAPI client
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		rest: rest.New(defaultBaseURL, slog.Default().With("component", "coinapi_client")),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Symbols lists instruments matching params in upstream order
func (c *Client) Symbols(ctx context.Context, apiKey string, params domain.SymbolsParams) ([]domain.SymbolsResponse, error) {
	var symbols []domain.SymbolsResponse

	err := c.rest.Do(ctx, rest.Request{
		Method: http.MethodGet,
		Path:   symbolsPath,
		Query:  params.Query(),
		Header: authHeader(apiKey),
	}, &symbols)
	if err != nil {
		return nil, fmt.Errorf("coinapi symbols: %w", err)
	}

	return symbols, nil
}

// AssetIcons lists asset icons of the requested size
func (c *Client) AssetIcons(ctx context.Context, apiKey string, params domain.AssetIconsParams) ([]domain.AssetIcon, error) {
	var icons []domain.AssetIcon

	err := c.rest.Do(ctx, rest.Request{
		Method: http.MethodGet,
		Path:   fmt.Sprintf(iconsPath, params.Size),
		Header: authHeader(apiKey),
	}, &icons)
	if err != nil {
		return nil, fmt.Errorf("coinapi icons: %w", err)
	}

	return icons, nil
}

func authHeader(apiKey string) http.Header {
	h := http.Header{}
	h.Set(keyHeader, apiKey)
	return h
}

// Ensure Client implements SymbolProvider
var _ ports.SymbolProvider = (*Client)(nil)
