// Package app assembles the market-data pipeline from configuration.
package app

import (
	"fmt"
	"log/slog"

	"github.com/prxgr4mmer/crypto-service/internal/adapters/alphavantage"
	"github.com/prxgr4mmer/crypto-service/internal/adapters/binance"
	"github.com/prxgr4mmer/crypto-service/internal/adapters/coinapi"
	"github.com/prxgr4mmer/crypto-service/internal/adapters/livecoinwatch"
	"github.com/prxgr4mmer/crypto-service/internal/binding"
	"github.com/prxgr4mmer/crypto-service/internal/client"
	"github.com/prxgr4mmer/crypto-service/internal/config"
	"github.com/prxgr4mmer/crypto-service/internal/core"
	"github.com/prxgr4mmer/crypto-service/internal/domain"
)

// Stack is the provider clients, core engine, binding and facade wired together
type Stack struct {
	Engine  *core.Engine
	Binding *binding.Binding
	Client  *client.Client
	Policy  domain.Policy
}

// NewStack builds the pipeline described by cfg
func NewStack(cfg *config.Config, logger *slog.Logger) (*Stack, error) {
	policy, err := cfg.Policy()
	if err != nil {
		return nil, err
	}

	up := cfg.Upstream

	binanceClient := binance.NewClient(
		binance.WithBaseURL(up.Binance.BaseURL),
		binance.WithTimeout(up.Binance.Timeout),
		binance.WithRetry(up.Binance.MaxRetries, up.Binance.RetryBackoff),
		binance.WithLogger(logger),
	)

	coinapiClient := coinapi.NewClient(
		coinapi.WithBaseURL(up.CoinAPI.BaseURL),
		coinapi.WithTimeout(up.CoinAPI.Timeout),
		coinapi.WithRetry(up.CoinAPI.MaxRetries, up.CoinAPI.RetryBackoff),
		coinapi.WithLogger(logger),
	)

	lcwClient := livecoinwatch.NewClient(
		livecoinwatch.WithBaseURL(up.LiveCoinWatch.BaseURL),
		livecoinwatch.WithTimeout(up.LiveCoinWatch.Timeout),
		livecoinwatch.WithRetry(up.LiveCoinWatch.MaxRetries, up.LiveCoinWatch.RetryBackoff),
		livecoinwatch.WithLogger(logger),
	)

	avClient := alphavantage.NewClient(
		alphavantage.WithBaseURL(up.AlphaVantage.BaseURL),
		alphavantage.WithTimeout(up.AlphaVantage.Timeout),
		alphavantage.WithRetry(up.AlphaVantage.MaxRetries, up.AlphaVantage.RetryBackoff),
		alphavantage.WithLogger(logger),
	)

	engineOpts := []core.Option{
		core.WithConcurrency(up.Concurrency),
		core.WithBreaker(core.BreakerConfig{
			MaxRequests:      uint32(cfg.Breaker.MaxRequests),
			Interval:         cfg.Breaker.Interval,
			Timeout:          cfg.Breaker.Timeout,
			FailureThreshold: uint32(cfg.Breaker.FailureThreshold),
		}),
		core.WithLogger(logger),
	}
	// Configured keys serve stateless callers from the server side
	if policy.Kind() == domain.PolicyStateless {
		engineOpts = append(engineOpts, core.WithDefaultCredentials(cfg.Credentials.Keys))
	}

	engine := core.NewEngine(binanceClient, coinapiClient, lcwClient, avClient, engineOpts...)
	bind := binding.New(engine, binding.WithLogger(logger))

	facade, err := client.New(bind, policy, client.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return &Stack{
		Engine:  engine,
		Binding: bind,
		Client:  facade,
		Policy:  policy,
	}, nil
}

// BackgroundClient returns a facade usable without per-call keys.
// Under the per-call policy it is a separate stateless client.
func (s *Stack) BackgroundClient(logger *slog.Logger) (*client.Client, error) {
	if s.Policy.Kind() != domain.PolicyPerCall {
		return s.Client, nil
	}
	return client.New(s.Binding, domain.Stateless(), client.WithLogger(logger))
}
