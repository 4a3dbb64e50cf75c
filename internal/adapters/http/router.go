package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter creates the HTTP router with all routes
func NewRouter(h *Handler, corsOrigins []string, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	// Middleware chain (order matters: outer -> inner)
	r.Use(middleware.RequestID)
	r.Use(LoggingMiddleware(logger))
	r.Use(RecoveryMiddleware(logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: corsOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{
			"Accept", "Content-Type",
			HeaderBinanceKey, HeaderCoinAPIKey, HeaderCoinWatchKey, HeaderAlphaVantageKey,
		},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}))
	r.Use(MetricsMiddleware)

	// Health check
	r.Get("/health", h.Health)

	// Prometheus
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		// Instruments
		r.Get("/symbols", h.GetSymbols)
		r.Get("/symbols/icons", h.GetAssetIcons)

		// Order books and trades
		r.Get("/orderbooks", h.GetOrderbook)
		r.Get("/orderbooks/latest", h.GetLatestOrderbook)
		r.Get("/orderbooks/history", h.GetOrderbookHistory)
		r.Get("/trades", h.GetRecentTrades)

		// Coins
		r.Post("/coins/list", h.ListCoins)
		r.Post("/coins/list/aggregated", h.ListAggregatedCoins)
		r.Post("/coins/single", h.GetCoin)
		r.Post("/coins/single/history", h.GetCoinHistory)

		// Stocks
		r.Get("/stocks", h.GetTopMovers)

		// Archive
		r.Get("/archive/status", h.GetArchiveStatus)
	})

	return r
}
