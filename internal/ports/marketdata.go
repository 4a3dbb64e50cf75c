package ports

import (
	"context"

	"github.com/prxgr4mmer/crypto-service/internal/domain"
)

// CallOption adjusts a single facade call
type CallOption func(*CallOptions)

// CallOptions collects per-call settings
type CallOptions struct {
	// Credentials is nil unless the caller supplied keys for this call
	Credentials *domain.Credentials
}

// WithCredentials supplies keys for one call under the per-call policy
func WithCredentials(creds domain.Credentials) CallOption {
	return func(o *CallOptions) {
		o.Credentials = &creds
	}
}

// ApplyCallOptions folds opts into CallOptions
func ApplyCallOptions(opts ...CallOption) CallOptions {
	var o CallOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// MarketData is the capability surface the outer layers consume
type MarketData interface {
	// GetSymbols lists instruments in upstream order
	GetSymbols(ctx context.Context, params domain.SymbolsParams, opts ...CallOption) ([]domain.SymbolsResponse, error)

	// GetOrderbook fetches a fresh order-book snapshot
	GetOrderbook(ctx context.Context, params domain.Params, opts ...CallOption) (*domain.OrderBook, error)

	// GetRecentTrades fetches the latest public trades
	GetRecentTrades(ctx context.Context, params domain.Params, opts ...CallOption) ([]domain.RecentTrade, error)

	// GetAssetIcons lists asset icons of the given size
	GetAssetIcons(ctx context.Context, params domain.AssetIconsParams, opts ...CallOption) ([]domain.AssetIcon, error)

	// ListCoins lists coins
	ListCoins(ctx context.Context, req domain.ListOfCoinsRequest, opts ...CallOption) ([]domain.Coin, error)

	// GetCoinMeta fetches one coin with metadata
	GetCoinMeta(ctx context.Context, req domain.CoinMetaRequest, opts ...CallOption) (*domain.CoinMeta, error)

	// GetCoinHistory fetches one coin's history between two instants
	GetCoinHistory(ctx context.Context, req domain.CoinHistoryRequest, opts ...CallOption) (*domain.CoinMeta, error)

	// GetAggregatedCoins lists coins joined with their artwork
	GetAggregatedCoins(ctx context.Context, req domain.ListOfCoinsRequest, opts ...CallOption) ([]domain.AggregatedCoinInformation, error)

	// GetTopMovers fetches the day's top US equity gainers, losers and most traded
	GetTopMovers(ctx context.Context, params domain.TopMoversParams, opts ...CallOption) (*domain.TopMovers, error)
}
