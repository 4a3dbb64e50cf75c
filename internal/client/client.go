// Package client is the market-data facade. A Client pairs a binding with a
// credential policy and is safe for concurrent use.
package client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/prxgr4mmer/crypto-service/internal/domain"
	"github.com/prxgr4mmer/crypto-service/internal/ports"
)

// Client implements ports.MarketData. It holds no mutable state and never
// caches, reorders or retries.
type Client struct {
	binding ports.Binding
	policy  domain.Policy
	logger  *slog.Logger
}

// Option configures the client
type Option func(*Client)

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger.With("component", "client")
	}
}

// WithCredentials supplies keys for one call under the per-call policy
func WithCredentials(creds domain.Credentials) ports.CallOption {
	return ports.WithCredentials(creds)
}

// New creates a client. A client-held policy without keys is rejected.
func New(binding ports.Binding, policy domain.Policy, opts ...Option) (*Client, error) {
	if binding == nil {
		return nil, errors.New("client: nil binding")
	}
	if err := policy.Validate(); err != nil {
		return nil, fmt.Errorf("client: %w", err)
	}

	c := &Client{
		binding: binding,
		policy:  policy,
		logger:  slog.Default().With("component", "client"),
	}

	for _, opt := range opts {
		opt(c)
	}

	c.logger.Debug("client created", "policy", policy.String())

	return c, nil
}

// Policy returns the credential policy
func (c *Client) Policy() domain.Policy {
	return c.policy
}

// GetSymbols lists instruments in the order the core returned them
func (c *Client) GetSymbols(ctx context.Context, params domain.SymbolsParams, opts ...ports.CallOption) ([]domain.SymbolsResponse, error) {
	creds, err := c.credentials(opts)
	if err != nil {
		return nil, err
	}
	return c.binding.GetSymbols(ctx, params, creds)
}

// GetOrderbook fetches a fresh snapshot on every call
func (c *Client) GetOrderbook(ctx context.Context, params domain.Params, opts ...ports.CallOption) (*domain.OrderBook, error) {
	creds, err := c.credentials(opts)
	if err != nil {
		return nil, err
	}
	return c.binding.GetOrderbook(ctx, params, creds)
}

// GetRecentTrades fetches the latest public trades for a pair
func (c *Client) GetRecentTrades(ctx context.Context, params domain.Params, opts ...ports.CallOption) ([]domain.RecentTrade, error) {
	creds, err := c.credentials(opts)
	if err != nil {
		return nil, err
	}
	return c.binding.GetRecentTrades(ctx, params, creds)
}

// GetAssetIcons lists asset icons of the requested size
func (c *Client) GetAssetIcons(ctx context.Context, params domain.AssetIconsParams, opts ...ports.CallOption) ([]domain.AssetIcon, error) {
	creds, err := c.credentials(opts)
	if err != nil {
		return nil, err
	}
	return c.binding.GetAssetIcons(ctx, params, creds)
}

// ListCoins lists coins in the requested order
func (c *Client) ListCoins(ctx context.Context, req domain.ListOfCoinsRequest, opts ...ports.CallOption) ([]domain.Coin, error) {
	creds, err := c.credentials(opts)
	if err != nil {
		return nil, err
	}
	return c.binding.ListCoins(ctx, req, creds)
}

// GetCoinMeta fetches one coin with its metadata
func (c *Client) GetCoinMeta(ctx context.Context, req domain.CoinMetaRequest, opts ...ports.CallOption) (*domain.CoinMeta, error) {
	creds, err := c.credentials(opts)
	if err != nil {
		return nil, err
	}
	return c.binding.GetCoinMeta(ctx, req, creds)
}

// GetCoinHistory fetches one coin with its history between start and end
func (c *Client) GetCoinHistory(ctx context.Context, req domain.CoinHistoryRequest, opts ...ports.CallOption) (*domain.CoinMeta, error) {
	creds, err := c.credentials(opts)
	if err != nil {
		return nil, err
	}
	return c.binding.GetCoinHistory(ctx, req, creds)
}

// GetAggregatedCoins lists coins joined with their metadata
func (c *Client) GetAggregatedCoins(ctx context.Context, req domain.ListOfCoinsRequest, opts ...ports.CallOption) ([]domain.AggregatedCoinInformation, error) {
	creds, err := c.credentials(opts)
	if err != nil {
		return nil, err
	}
	return c.binding.GetAggregatedCoins(ctx, req, creds)
}

// GetTopMovers fetches the day's top US equity gainers, losers and most traded
func (c *Client) GetTopMovers(ctx context.Context, params domain.TopMoversParams, opts ...ports.CallOption) (*domain.TopMovers, error) {
	creds, err := c.credentials(opts)
	if err != nil {
		return nil, err
	}
	return c.binding.GetTopMovers(ctx, params, creds)
}

// credentials resolves what to forward for one call. Policy misuse fails
// here, before the binding is reached.
func (c *Client) credentials(opts []ports.CallOption) (domain.Credentials, error) {
	o := ports.ApplyCallOptions(opts...)
	return c.policy.Resolve(o.Credentials)
}

// Ensure Client implements MarketData
var _ ports.MarketData = (*Client)(nil)
