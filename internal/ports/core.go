package ports

import (
	"context"

	"github.com/prxgr4mmer/crypto-service/internal/domain"
)

// Core is the market-data engine behind the call boundary.
// Arguments and results cross it encoded; credentials travel separately
// and are never part of the payload.
type Core interface {
	// Invoke runs op with encoded args and returns the encoded result
	Invoke(ctx context.Context, op domain.Operation, args []byte, creds domain.Credentials) ([]byte, error)
}

// Binding exposes typed operations over a Core.
// Every failure is an *domain.InvocationError.
type Binding interface {
	GetSymbols(ctx context.Context, params domain.SymbolsParams, creds domain.Credentials) ([]domain.SymbolsResponse, error)
	GetOrderbook(ctx context.Context, params domain.Params, creds domain.Credentials) (*domain.OrderBook, error)
	GetRecentTrades(ctx context.Context, params domain.Params, creds domain.Credentials) ([]domain.RecentTrade, error)
	GetAssetIcons(ctx context.Context, params domain.AssetIconsParams, creds domain.Credentials) ([]domain.AssetIcon, error)
	ListCoins(ctx context.Context, req domain.ListOfCoinsRequest, creds domain.Credentials) ([]domain.Coin, error)
	GetCoinMeta(ctx context.Context, req domain.CoinMetaRequest, creds domain.Credentials) (*domain.CoinMeta, error)
	GetCoinHistory(ctx context.Context, req domain.CoinHistoryRequest, creds domain.Credentials) (*domain.CoinMeta, error)
	GetAggregatedCoins(ctx context.Context, req domain.ListOfCoinsRequest, creds domain.Credentials) ([]domain.AggregatedCoinInformation, error)
	GetTopMovers(ctx context.Context, params domain.TopMoversParams, creds domain.Credentials) (*domain.TopMovers, error)
}
