package ports

import (
	"context"

	"github.com/prxgr4mmer/crypto-service/internal/domain"
)

// OrderBookProvider defines the contract for an exchange serving depth and trades
type OrderBookProvider interface {
	// Depth fetches an order-book snapshot
	Depth(ctx context.Context, apiKey string, params domain.Params) (*domain.OrderBook, error)

	// RecentTrades fetches the latest public trades
	RecentTrades(ctx context.Context, apiKey string, params domain.Params) ([]domain.RecentTrade, error)

	// Ping checks if the exchange is reachable
	Ping(ctx context.Context) error
}

// SymbolProvider defines the contract for the instrument catalogue
type SymbolProvider interface {
	// Symbols lists instruments matching params
	Symbols(ctx context.Context, apiKey string, params domain.SymbolsParams) ([]domain.SymbolsResponse, error)

	// AssetIcons lists asset icons of the requested size
	AssetIcons(ctx context.Context, apiKey string, params domain.AssetIconsParams) ([]domain.AssetIcon, error)
}

// CoinProvider defines the contract for coin listings and metadata
type CoinProvider interface {
	// ListCoins lists coins
	ListCoins(ctx context.Context, apiKey string, req domain.ListOfCoinsRequest) ([]domain.Coin, error)

	// CoinMeta fetches one coin with metadata
	CoinMeta(ctx context.Context, apiKey string, req domain.CoinMetaRequest) (*domain.CoinMeta, error)

	// CoinHistory fetches one coin's history
	CoinHistory(ctx context.Context, apiKey string, req domain.CoinHistoryRequest) (*domain.CoinMeta, error)
}

// StockProvider defines the contract for equity market movers
type StockProvider interface {
	// TopMovers fetches the latest top gainers, losers and most traded tickers
	TopMovers(ctx context.Context, apiKey string) (*domain.TopMovers, error)
}
