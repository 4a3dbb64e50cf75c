// Package core is the market-data engine that sits behind the call boundary.
// It decodes arguments, dispatches by operation name, reaches the upstream
// providers and encodes the result.
package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/sync/errgroup"

	"github.com/prxgr4mmer/crypto-service/internal/domain"
	"github.com/prxgr4mmer/crypto-service/internal/metrics"
	"github.com/prxgr4mmer/crypto-service/internal/ports"
	"github.com/prxgr4mmer/crypto-service/pkg/codec"
)

const (
	providerBinance       = "binance"
	providerCoinAPI       = "coinapi"
	providerLiveCoinWatch = "livecoinwatch"
	providerAlphaVantage  = "alphavantage"
)

// BreakerConfig tunes the per-provider circuit breakers
type BreakerConfig struct {
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold uint32
}

// DefaultBreakerConfig returns sensible defaults
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		MaxRequests:      3,
		Interval:         30 * time.Second,
		Timeout:          30 * time.Second,
		FailureThreshold: 5,
	}
}

type handler func(ctx context.Context, args []byte, creds domain.Credentials) (any, error)

// Engine implements ports.Core
type Engine struct {
	orderbooks ports.OrderBookProvider
	symbols    ports.SymbolProvider
	coins      ports.CoinProvider
	stocks     ports.StockProvider

	defaults    domain.Credentials
	concurrency int
	breakerConf BreakerConfig
	breakers    map[string]*gobreaker.CircuitBreaker
	handlers    map[domain.Operation]handler
	logger      *slog.Logger
}

// Option configures the engine
type Option func(*Engine)

// WithDefaultCredentials sets keys used when a call supplies none
func WithDefaultCredentials(creds domain.Credentials) Option {
	return func(e *Engine) {
		e.defaults = creds
	}
}

// WithConcurrency bounds the metadata fan-out of aggregated listings
func WithConcurrency(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.concurrency = n
		}
	}
}

// WithBreaker configures the circuit breakers
func WithBreaker(cfg BreakerConfig) Option {
	return func(e *Engine) {
		e.breakerConf = cfg
	}
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger.With("component", "core")
	}
}

// NewEngine creates an engine over the upstream providers
func NewEngine(orderbooks ports.OrderBookProvider, symbols ports.SymbolProvider, coins ports.CoinProvider, stocks ports.StockProvider, opts ...Option) *Engine {
	e := &Engine{
		orderbooks:  orderbooks,
		symbols:     symbols,
		coins:       coins,
		stocks:      stocks,
		concurrency: 8,
		breakerConf: DefaultBreakerConfig(),
		logger:      slog.Default().With("component", "core"),
	}

	for _, opt := range opts {
		opt(e)
	}

	e.breakers = map[string]*gobreaker.CircuitBreaker{
		providerBinance:       e.newBreaker(providerBinance),
		providerCoinAPI:       e.newBreaker(providerCoinAPI),
		providerLiveCoinWatch: e.newBreaker(providerLiveCoinWatch),
		providerAlphaVantage:  e.newBreaker(providerAlphaVantage),
	}

	e.handlers = map[domain.Operation]handler{
		domain.OpGetSymbols:         typed(e.getSymbols),
		domain.OpGetOrderbook:       typed(e.getOrderbook),
		domain.OpGetRecentTrades:    typed(e.getRecentTrades),
		domain.OpGetAssetIcons:      typed(e.getAssetIcons),
		domain.OpListCoins:          typed(e.listCoins),
		domain.OpGetCoinMeta:        typed(e.getCoinMeta),
		domain.OpGetCoinHistory:     typed(e.getCoinHistory),
		domain.OpGetAggregatedCoins: typed(e.getAggregatedCoins),
		domain.OpGetTopMovers:       typed(e.getTopMovers),
	}

	return e
}

// Invoke runs op with encoded args and returns the encoded result
func (e *Engine) Invoke(ctx context.Context, op domain.Operation, args []byte, creds domain.Credentials) ([]byte, error) {
	h, ok := e.handlers[op]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownOperation, op)
	}

	result, err := h(ctx, args, creds.Merge(e.defaults))
	if err != nil {
		e.logger.Debug("operation failed", "operation", op, "error", err)
		return nil, err
	}

	data, err := codec.Encode(result)
	if err != nil {
		return nil, err
	}
	// A provider that answered with nothing has not answered
	if codec.IsNull(data) {
		e.logger.Warn("provider returned no data", "operation", op)
		return nil, fmt.Errorf("%w: no data for %s", domain.ErrInvalidResponse, op)
	}

	return data, nil
}

// Ping checks the order-book provider is reachable
func (e *Engine) Ping(ctx context.Context) error {
	_, err := execute(e.breakers[providerBinance], func() (struct{}, error) {
		return struct{}{}, e.orderbooks.Ping(ctx)
	})
	return err
}

// typed decodes and validates args before handing them to run
func typed[P, R any](run func(context.Context, P, domain.Credentials) (R, error)) handler {
	return func(ctx context.Context, args []byte, creds domain.Credentials) (any, error) {
		params, err := codec.Decode[P](args)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidParams, err)
		}
		if v, ok := any(params).(interface{ Validate() error }); ok {
			if err := v.Validate(); err != nil {
				return nil, err
			}
		}
		return run(ctx, params, creds)
	}
}

func (e *Engine) getSymbols(ctx context.Context, params domain.SymbolsParams, creds domain.Credentials) ([]domain.SymbolsResponse, error) {
	if creds.CoinAPIKey == "" {
		return nil, fmt.Errorf("%w: coinapi key not configured", domain.ErrAuthentication)
	}
	return execute(e.breakers[providerCoinAPI], func() ([]domain.SymbolsResponse, error) {
		return observe(providerCoinAPI, func() ([]domain.SymbolsResponse, error) {
			return e.symbols.Symbols(ctx, creds.CoinAPIKey, params)
		})
	})
}

func (e *Engine) getOrderbook(ctx context.Context, params domain.Params, creds domain.Credentials) (*domain.OrderBook, error) {
	if err := params.ValidateDepth(); err != nil {
		return nil, err
	}
	return execute(e.breakers[providerBinance], func() (*domain.OrderBook, error) {
		return observe(providerBinance, func() (*domain.OrderBook, error) {
			return e.orderbooks.Depth(ctx, creds.BinanceKey, params)
		})
	})
}

func (e *Engine) getRecentTrades(ctx context.Context, params domain.Params, creds domain.Credentials) ([]domain.RecentTrade, error) {
	return execute(e.breakers[providerBinance], func() ([]domain.RecentTrade, error) {
		return observe(providerBinance, func() ([]domain.RecentTrade, error) {
			return e.orderbooks.RecentTrades(ctx, creds.BinanceKey, params)
		})
	})
}

func (e *Engine) getAssetIcons(ctx context.Context, params domain.AssetIconsParams, creds domain.Credentials) ([]domain.AssetIcon, error) {
	if creds.CoinAPIKey == "" {
		return nil, fmt.Errorf("%w: coinapi key not configured", domain.ErrAuthentication)
	}
	return execute(e.breakers[providerCoinAPI], func() ([]domain.AssetIcon, error) {
		return observe(providerCoinAPI, func() ([]domain.AssetIcon, error) {
			return e.symbols.AssetIcons(ctx, creds.CoinAPIKey, params)
		})
	})
}

func (e *Engine) listCoins(ctx context.Context, req domain.ListOfCoinsRequest, creds domain.Credentials) ([]domain.Coin, error) {
	if creds.CoinWatchKey == "" {
		return nil, fmt.Errorf("%w: livecoinwatch key not configured", domain.ErrAuthentication)
	}
	return execute(e.breakers[providerLiveCoinWatch], func() ([]domain.Coin, error) {
		return observe(providerLiveCoinWatch, func() ([]domain.Coin, error) {
			return e.coins.ListCoins(ctx, creds.CoinWatchKey, req)
		})
	})
}

func (e *Engine) getCoinMeta(ctx context.Context, req domain.CoinMetaRequest, creds domain.Credentials) (*domain.CoinMeta, error) {
	if creds.CoinWatchKey == "" {
		return nil, fmt.Errorf("%w: livecoinwatch key not configured", domain.ErrAuthentication)
	}
	return execute(e.breakers[providerLiveCoinWatch], func() (*domain.CoinMeta, error) {
		return observe(providerLiveCoinWatch, func() (*domain.CoinMeta, error) {
			return e.coins.CoinMeta(ctx, creds.CoinWatchKey, req)
		})
	})
}

func (e *Engine) getCoinHistory(ctx context.Context, req domain.CoinHistoryRequest, creds domain.Credentials) (*domain.CoinMeta, error) {
	if creds.CoinWatchKey == "" {
		return nil, fmt.Errorf("%w: livecoinwatch key not configured", domain.ErrAuthentication)
	}
	return execute(e.breakers[providerLiveCoinWatch], func() (*domain.CoinMeta, error) {
		return observe(providerLiveCoinWatch, func() (*domain.CoinMeta, error) {
			return e.coins.CoinHistory(ctx, creds.CoinWatchKey, req)
		})
	})
}

// getAggregatedCoins lists coins then joins each with its metadata.
// Output keeps list order; any failed lookup fails the whole call.
func (e *Engine) getAggregatedCoins(ctx context.Context, req domain.ListOfCoinsRequest, creds domain.Credentials) ([]domain.AggregatedCoinInformation, error) {
	coins, err := e.listCoins(ctx, req, creds)
	if err != nil {
		return nil, err
	}

	result := make([]domain.AggregatedCoinInformation, len(coins))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)

	for i, coin := range coins {
		g.Go(func() error {
			metaReq := domain.NewCoinMetaRequest(coin.Code)
			metaReq.Currency = req.Currency

			meta, err := e.getCoinMeta(gctx, metaReq, creds)
			if err != nil {
				return fmt.Errorf("meta for %s: %w", coin.Code, err)
			}

			result[i] = domain.Aggregate(coin, *meta, int64(i)+1+int64(req.Offset))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return result, nil
}

func (e *Engine) getTopMovers(ctx context.Context, _ domain.TopMoversParams, creds domain.Credentials) (*domain.TopMovers, error) {
	if creds.AlphaVantageKey == "" {
		return nil, fmt.Errorf("%w: alphavantage key not configured", domain.ErrAuthentication)
	}
	return execute(e.breakers[providerAlphaVantage], func() (*domain.TopMovers, error) {
		return observe(providerAlphaVantage, func() (*domain.TopMovers, error) {
			return e.stocks.TopMovers(ctx, creds.AlphaVantageKey)
		})
	})
}

func (e *Engine) newBreaker(name string) *gobreaker.CircuitBreaker {
	cfg := e.breakerConf
	metrics.CircuitBreakerState.WithLabelValues(name).Set(float64(gobreaker.StateClosed))

	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		IsSuccessful: isBreakerSuccess,
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			e.logger.Warn("circuit breaker changed state", "provider", name, "from", from.String(), "to", to.String())
			metrics.CircuitBreakerState.WithLabelValues(name).Set(float64(to))
		},
	})
}

// Caller mistakes and cancellations say nothing about provider health
func isBreakerSuccess(err error) bool {
	return err == nil ||
		errors.Is(err, domain.ErrInvalidParams) ||
		errors.Is(err, domain.ErrAuthentication) ||
		errors.Is(err, context.Canceled)
}

func observe[T any](provider string, fn func() (T, error)) (T, error) {
	start := time.Now()
	v, err := fn()
	metrics.UpstreamRequestDuration.WithLabelValues(provider).Observe(time.Since(start).Seconds())
	metrics.UpstreamRequestsTotal.WithLabelValues(provider, metrics.Status(err)).Inc()
	return v, err
}

// execute runs fn through cb, reporting a tripped breaker as unavailability
func execute[T any](cb *gobreaker.CircuitBreaker, fn func() (T, error)) (T, error) {
	var zero T

	res, err := cb.Execute(func() (interface{}, error) {
		v, err := fn()
		return v, err
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return zero, fmt.Errorf("%w: %s circuit %v", domain.ErrExchangeUnavailable, cb.Name(), err)
		}
		return zero, err
	}

	v, ok := res.(T)
	if !ok {
		return zero, fmt.Errorf("%w: unexpected result %T", domain.ErrInternal, res)
	}
	return v, nil
}

// Ensure Engine implements Core
var _ ports.Core = (*Engine)(nil)
