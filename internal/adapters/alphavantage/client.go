package alphavantage

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/prxgr4mmer/crypto-service/internal/adapters/rest"
	"github.com/prxgr4mmer/crypto-service/internal/domain"
	"github.com/prxgr4mmer/crypto-service/internal/ports"
)

const (
	defaultBaseURL    = "https://www.alphavantage.co"
	queryPath         = "/query"
	topMoversFunction = "TOP_GAINERS_LOSERS"
)

// Client implements ports.StockProvider for Alpha Vantage
type Client struct {
	rest   *rest.Client
	logger *slog.Logger
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
		c.logger = logger.With("component", "alphavantage_client")
		c.rest.Logger = c.logger
	}
}

// NewClient creates a new Alpha Vantage client
func NewClient(opts ...ClientOption) *Client {
	logger := slog.Default().With("component", "alphavantage_client")
	c := &Client{
		rest:   rest.New(defaultBaseURL, logger),
		logger: logger,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// topMoversResponse is the TOP_GAINERS_LOSERS body. Alpha Vantage reports
// quota and key problems with a 200 and one of the notice fields instead.
type topMoversResponse struct {
	domain.TopMovers

	Note         string `json:"Note"`
	Information  string `json:"Information"`
	ErrorMessage string `json:"Error Message"`
}

// TopMovers fetches the latest top gainers, losers and most traded tickers
func (c *Client) TopMovers(ctx context.Context, apiKey string) (*domain.TopMovers, error) {
	var resp topMoversResponse

	err := c.rest.Do(ctx, rest.Request{
		Method: http.MethodGet,
		Path:   queryPath,
		Query: map[string]string{
			"function": topMoversFunction,
			"apikey":   apiKey,
		},
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("alphavantage top movers: %w", err)
	}

	if err := c.checkNotice(resp); err != nil {
		return nil, fmt.Errorf("alphavantage top movers: %w", err)
	}

	if resp.LastUpdated == "" {
		return nil, fmt.Errorf("alphavantage top movers: %w: missing last_updated", domain.ErrInvalidResponse)
	}

	return &resp.TopMovers, nil
}

// checkNotice maps in-band notices onto domain errors
func (c *Client) checkNotice(resp topMoversResponse) error {
	notice := resp.Note
	if notice == "" {
		notice = resp.Information
	}

	switch {
	case resp.ErrorMessage != "":
		c.logger.Error("upstream rejected request", "message", resp.ErrorMessage)
		return fmt.Errorf("%w: %s", domain.ErrInvalidResponse, resp.ErrorMessage)

	case notice == "":
		return nil

	case strings.Contains(strings.ToLower(notice), "rate limit"):
		c.logger.Warn("rate limited by upstream")
		return fmt.Errorf("%w: %s", domain.ErrRateLimited, notice)

	case strings.Contains(strings.ToLower(notice), "apikey"):
		c.logger.Warn("upstream rejected credentials")
		return fmt.Errorf("%w: %s", domain.ErrAuthentication, notice)

	default:
		c.logger.Error("unexpected upstream notice", "message", notice)
		return fmt.Errorf("%w: %s", domain.ErrInvalidResponse, notice)
	}
}

// Ensure Client implements StockProvider
var _ ports.StockProvider = (*Client)(nil)
