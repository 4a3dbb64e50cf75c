// Command marketdata queries the market-data facade from the shell and
// prints JSON.
//
//	marketdata orderbook -symbol BTCUSDT -limit 5
//	marketdata symbols -exchange BINANCE
//	marketdata coins list -limit 10
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prxgr4mmer/crypto-service/internal/app"
	"github.com/prxgr4mmer/crypto-service/internal/config"
	"github.com/prxgr4mmer/crypto-service/internal/domain"
	"github.com/prxgr4mmer/crypto-service/internal/ports"
)

var errUsage = errors.New("usage: marketdata <symbols|icons|orderbook|trades|coins|stocks> [flags]")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "marketdata:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	stack, err := app.NewStack(cfg, logger)
	if err != nil {
		return err
	}

	// The shell is the caller, so per-call keys come from the environment
	var opts []ports.CallOption
	if stack.Policy.Kind() == domain.PolicyPerCall {
		opts = append(opts, ports.WithCredentials(cfg.Credentials.Keys))
	}

	cmd := &command{market: stack.Client, opts: opts, stdout: stdout}

	ctx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	switch args[0] {
	case "symbols":
		return cmd.symbols(ctx, args[1:])
	case "icons":
		return cmd.icons(ctx, args[1:])
	case "orderbook":
		return cmd.orderbook(ctx, args[1:])
	case "trades":
		return cmd.trades(ctx, args[1:])
	case "coins":
		return cmd.coins(ctx, args[1:])
	case "stocks":
		return cmd.stocks(ctx)
	default:
		return fmt.Errorf("unknown command %q: %w", args[0], errUsage)
	}
}

type command struct {
	market ports.MarketData
	opts   []ports.CallOption
	stdout io.Writer
}

func (c *command) print(v any) error {
	enc := json.NewEncoder(c.stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (c *command) symbols(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("symbols", flag.ContinueOnError)
	symbolID := fs.String("symbol", "", "filter by symbol id prefix")
	exchange := fs.String("exchange", "", "filter by exchange id")
	asset := fs.String("asset", "", "filter by asset id")
	if err := fs.Parse(args); err != nil {
		return err
	}

	symbols, err := c.market.GetSymbols(ctx, domain.SymbolsParams{
		FilterSymbolID:   *symbolID,
		FilterExchangeID: *exchange,
		FilterAssetID:    *asset,
	}, c.opts...)
	if err != nil {
		return err
	}
	return c.print(symbols)
}

func (c *command) icons(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("icons", flag.ContinueOnError)
	size := fs.Int("size", 64, "icon size in pixels")
	if err := fs.Parse(args); err != nil {
		return err
	}

	icons, err := c.market.GetAssetIcons(ctx, domain.AssetIconsParams{Size: *size}, c.opts...)
	if err != nil {
		return err
	}
	return c.print(icons)
}

func (c *command) orderbook(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("orderbook", flag.ContinueOnError)
	symbol := fs.String("symbol", "", "trading pair, e.g. BTCUSDT")
	limit := fs.Int("limit", 0, "depth (exchange default when 0)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	book, err := c.market.GetOrderbook(ctx, domain.NewParams(*symbol, *limit), c.opts...)
	if err != nil {
		return err
	}
	return c.print(book)
}

func (c *command) trades(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("trades", flag.ContinueOnError)
	symbol := fs.String("symbol", "", "trading pair, e.g. BTCUSDT")
	limit := fs.Int("limit", 0, "number of trades (exchange default when 0)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	trades, err := c.market.GetRecentTrades(ctx, domain.NewParams(*symbol, *limit), c.opts...)
	if err != nil {
		return err
	}
	return c.print(trades)
}

func (c *command) stocks(ctx context.Context) error {
	movers, err := c.market.GetTopMovers(ctx, domain.TopMoversParams{}, c.opts...)
	if err != nil {
		return err
	}
	return c.print(movers)
}

func (c *command) coins(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: marketdata coins <list|aggregated|single|history> [flags]")
	}

	fs := flag.NewFlagSet("coins "+args[0], flag.ContinueOnError)
	currency := fs.String("currency", "USD", "quote currency")
	limit := fs.Uint("limit", 10, "number of coins")
	offset := fs.Uint("offset", 0, "list offset")
	sort := fs.String("sort", string(domain.SortRank), "sort key")
	order := fs.String("order", "ascending", "ascending or descending")
	meta := fs.Bool("meta", false, "include metadata")
	code := fs.String("code", "", "coin code, e.g. BTC")
	start := fs.Uint64("start", 0, "history start (unix ms)")
	end := fs.Uint64("end", 0, "history end (unix ms)")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}

	if *offset > 255 {
		return fmt.Errorf("%w: offset must be at most 255", domain.ErrInvalidParams)
	}

	list := domain.ListOfCoinsRequest{
		Currency: strings.ToUpper(*currency),
		Sort:     domain.Sort(*sort),
		Order:    *order,
		Offset:   uint8(*offset),
		Limit:    uint32(*limit),
		Meta:     *meta,
	}

	switch args[0] {
	case "list":
		coins, err := c.market.ListCoins(ctx, list, c.opts...)
		if err != nil {
			return err
		}
		return c.print(coins)

	case "aggregated":
		coins, err := c.market.GetAggregatedCoins(ctx, list, c.opts...)
		if err != nil {
			return err
		}
		return c.print(coins)

	case "single":
		req := domain.NewCoinMetaRequest(strings.ToUpper(*code))
		req.Currency = strings.ToUpper(*currency)
		coin, err := c.market.GetCoinMeta(ctx, req, c.opts...)
		if err != nil {
			return err
		}
		return c.print(coin)

	case "history":
		coin, err := c.market.GetCoinHistory(ctx, domain.CoinHistoryRequest{
			Currency: strings.ToUpper(*currency),
			Code:     strings.ToUpper(*code),
			Start:    *start,
			End:      *end,
			Meta:     *meta,
		}, c.opts...)
		if err != nil {
			return err
		}
		return c.print(coin)

	default:
		return fmt.Errorf("unknown coins command %q", args[0])
	}
}
