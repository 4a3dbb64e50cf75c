package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpAdapter "github.com/prxgr4mmer/crypto-service/internal/adapters/http"
	"github.com/prxgr4mmer/crypto-service/internal/adapters/postgres"
	"github.com/prxgr4mmer/crypto-service/internal/app"
	"github.com/prxgr4mmer/crypto-service/internal/config"
	"github.com/prxgr4mmer/crypto-service/internal/domain"
	"github.com/prxgr4mmer/crypto-service/internal/metrics"
	"github.com/prxgr4mmer/crypto-service/internal/services"
	"github.com/prxgr4mmer/crypto-service/internal/worker"
)

func main() {
	// Load configuration first so the logger honours .env
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := initLogger(cfg.Logging)
	slog.SetDefault(logger)

	logger.Info("starting market data service")

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	metrics.InitMetrics()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	application, err := buildApplication(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to build application", "error", err)
		os.Exit(1)
	}

	if err := application.Start(ctx); err != nil {
		logger.Error("failed to start application", "error", err)
		os.Exit(1)
	}

	waitForShutdown(ctx, cancel, application, logger)
}

func initLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}

// Application holds all components. The database and poller are nil when
// archiving is disabled.
type Application struct {
	db         *postgres.DB
	httpServer *httpAdapter.Server
	poller     *worker.Poller
	logger     *slog.Logger
}

func buildApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Application, error) {
	logger.Info("building application", "credentials_policy", cfg.Credentials.Policy)

	// 1. Market data pipeline: providers -> core -> binding -> client
	stack, err := app.NewStack(cfg, logger)
	if err != nil {
		return nil, err
	}

	application := &Application{logger: logger}
	deps := httpAdapter.HandlerDeps{
		Market:  stack.Client,
		PerCall: stack.Policy.Kind() == domain.PolicyPerCall,
	}

	// 2. Optional order-book archive
	var database services.Pinger
	if cfg.ArchiveEnabled() {
		db, err := postgres.NewDB(ctx, cfg.Database, logger)
		if err != nil {
			return nil, err
		}
		if err := db.Migrate(); err != nil {
			db.Close()
			return nil, err
		}

		repo := postgres.NewArchiveRepository(db)

		background, err := stack.BackgroundClient(logger)
		if err != nil {
			db.Close()
			return nil, err
		}

		metricsService := services.NewMetricsService(repo, len(cfg.Archive.Symbols), logger)
		archiveService := services.NewArchiveService(
			background,
			repo,
			metricsService,
			services.ArchiveConfig{
				Symbols:     cfg.Archive.Symbols,
				Depth:       cfg.Archive.Depth,
				Retention:   time.Duration(cfg.Archive.RetentionDays) * 24 * time.Hour,
				Concurrency: cfg.Upstream.Concurrency,
			},
			logger,
		)

		application.db = db
		application.poller = worker.NewPoller(archiveService, cfg.Archive.Interval, logger)
		database = repo
		deps.Archive = archiveService
		deps.Metrics = metricsService
	} else {
		logger.Info("order-book archive disabled")
	}

	// 3. Transport
	deps.Health = services.NewHealthService(stack.Engine, database, deps.Metrics)
	application.httpServer = httpAdapter.NewServer(cfg.Server, deps, logger)

	logger.Info("application built successfully")

	return application, nil
}

func (a *Application) Start(ctx context.Context) error {
	a.logger.Info("starting application components")

	// Bind before starting background work so a taken port fails fast
	if err := a.httpServer.Listen(); err != nil {
		return err
	}

	if a.poller != nil {
		go func() {
			if err := a.poller.Start(ctx); err != nil && ctx.Err() == nil {
				a.logger.Error("poller error", "error", err)
			}
		}()
	}

	go func() {
		if err := a.httpServer.Start(); err != nil {
			a.logger.Error("http server error", "error", err)
		}
	}()

	a.logger.Info("application started",
		"http_addr", a.httpServer.Addr(),
		"archive", a.poller != nil,
	)

	return nil
}

func (a *Application) Shutdown() {
	a.logger.Info("shutting down application")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Stop poller first
	if a.poller != nil {
		if err := a.poller.Stop(); err != nil {
			a.logger.Error("failed to stop poller", "error", err)
		}
	}

	if err := a.httpServer.Shutdown(ctx); err != nil {
		a.logger.Error("failed to shutdown http server", "error", err)
	}

	if a.db != nil {
		a.db.Close()
	}

	a.logger.Info("application shutdown complete")
}

func waitForShutdown(ctx context.Context, cancel context.CancelFunc, application *Application, logger *slog.Logger) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
		application.Shutdown()
	case <-ctx.Done():
		application.Shutdown()
	}
}
