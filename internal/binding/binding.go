// Package binding turns typed market-data calls into core invocations.
// It only marshals: no validation, retries or caching happen here.
package binding

import (
	"context"
	"log/slog"
	"time"

	"github.com/prxgr4mmer/crypto-service/internal/domain"
	"github.com/prxgr4mmer/crypto-service/internal/metrics"
	"github.com/prxgr4mmer/crypto-service/internal/ports"
	"github.com/prxgr4mmer/crypto-service/pkg/codec"
)

// Binding implements ports.Binding over a ports.Core
type Binding struct {
	core   ports.Core
	logger *slog.Logger
}

// Option configures the binding
type Option func(*Binding)

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(b *Binding) {
		b.logger = logger.With("component", "binding")
	}
}

// New creates a binding over core
func New(core ports.Core, opts ...Option) *Binding {
	b := &Binding{
		core:   core,
		logger: slog.Default().With("component", "binding"),
	}

	for _, opt := range opts {
		opt(b)
	}

	return b
}

// GetSymbols invokes getSymbols and decodes the full symbol list
func (b *Binding) GetSymbols(ctx context.Context, params domain.SymbolsParams, creds domain.Credentials) ([]domain.SymbolsResponse, error) {
	return invoke[[]domain.SymbolsResponse](ctx, b, domain.OpGetSymbols, params, creds)
}

// GetOrderbook invokes getOrderbook and decodes one snapshot
func (b *Binding) GetOrderbook(ctx context.Context, params domain.Params, creds domain.Credentials) (*domain.OrderBook, error) {
	book, err := invoke[domain.OrderBook](ctx, b, domain.OpGetOrderbook, params, creds)
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// GetRecentTrades invokes getRecentTrades
func (b *Binding) GetRecentTrades(ctx context.Context, params domain.Params, creds domain.Credentials) ([]domain.RecentTrade, error) {
	return invoke[[]domain.RecentTrade](ctx, b, domain.OpGetRecentTrades, params, creds)
}

// GetAssetIcons invokes getAssetIcons
func (b *Binding) GetAssetIcons(ctx context.Context, params domain.AssetIconsParams, creds domain.Credentials) ([]domain.AssetIcon, error) {
	return invoke[[]domain.AssetIcon](ctx, b, domain.OpGetAssetIcons, params, creds)
}

// ListCoins invokes listCoins
func (b *Binding) ListCoins(ctx context.Context, req domain.ListOfCoinsRequest, creds domain.Credentials) ([]domain.Coin, error) {
	return invoke[[]domain.Coin](ctx, b, domain.OpListCoins, req, creds)
}

// GetCoinMeta invokes getCoinMeta
func (b *Binding) GetCoinMeta(ctx context.Context, req domain.CoinMetaRequest, creds domain.Credentials) (*domain.CoinMeta, error) {
	meta, err := invoke[domain.CoinMeta](ctx, b, domain.OpGetCoinMeta, req, creds)
	if err != nil {
		return nil, err
	}
	return &meta, nil
}

// GetCoinHistory invokes getCoinHistory
func (b *Binding) GetCoinHistory(ctx context.Context, req domain.CoinHistoryRequest, creds domain.Credentials) (*domain.CoinMeta, error) {
	meta, err := invoke[domain.CoinMeta](ctx, b, domain.OpGetCoinHistory, req, creds)
	if err != nil {
		return nil, err
	}
	return &meta, nil
}

// GetAggregatedCoins invokes getAggregatedCoins
func (b *Binding) GetAggregatedCoins(ctx context.Context, req domain.ListOfCoinsRequest, creds domain.Credentials) ([]domain.AggregatedCoinInformation, error) {
	return invoke[[]domain.AggregatedCoinInformation](ctx, b, domain.OpGetAggregatedCoins, req, creds)
}

// GetTopMovers invokes getTopMovers
func (b *Binding) GetTopMovers(ctx context.Context, params domain.TopMoversParams, creds domain.Credentials) (*domain.TopMovers, error) {
	movers, err := invoke[domain.TopMovers](ctx, b, domain.OpGetTopMovers, params, creds)
	if err != nil {
		return nil, err
	}
	return &movers, nil
}

// invoke encodes args, calls the core and decodes the result into T.
// Every failure comes back as *domain.InvocationError.
func invoke[T any](ctx context.Context, b *Binding, op domain.Operation, args any, creds domain.Credentials) (T, error) {
	var zero T
	start := time.Now()

	result, err := func() (T, error) {
		payload, err := codec.Encode(args)
		if err != nil {
			return zero, err
		}

		raw, err := b.core.Invoke(ctx, op, payload, creds)
		if err != nil {
			return zero, err
		}

		return codec.Decode[T](raw)
	}()

	metrics.InvocationDuration.WithLabelValues(op.String()).Observe(time.Since(start).Seconds())
	metrics.InvocationsTotal.WithLabelValues(op.String(), metrics.Status(err)).Inc()

	if err != nil {
		b.logger.Debug("invocation failed",
			"operation", op,
			"credentials", creds,
			"duration", time.Since(start),
			"error", err)
		return zero, domain.NewInvocationError(op, err)
	}

	b.logger.Debug("invocation completed",
		"operation", op,
		"duration", time.Since(start))

	return result, nil
}

// Ensure Binding implements ports.Binding
var _ ports.Binding = (*Binding)(nil)
