package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/prxgr4mmer/crypto-service/internal/domain"
	"github.com/prxgr4mmer/crypto-service/internal/ports"
)

// maxBodyBytes caps POST bodies
const maxBodyBytes = 1 << 16

// Handler contains all HTTP handlers
type Handler struct {
	market     ports.MarketData
	health     ports.HealthService
	archive    ports.ArchiveService
	metricsSvc ports.MetricsService
	perCall    bool
	logger     *slog.Logger
}

// HandlerDeps groups the handler collaborators. Archive and Metrics are nil
// when archiving is disabled.
type HandlerDeps struct {
	Market  ports.MarketData
	Health  ports.HealthService
	Archive ports.ArchiveService
	Metrics ports.MetricsService
	// PerCall makes handlers forward credential headers
	PerCall bool
}

// NewHandler creates a new handler
func NewHandler(deps HandlerDeps, logger *slog.Logger) *Handler {
	return &Handler{
		market:     deps.Market,
		health:     deps.Health,
		archive:    deps.Archive,
		metricsSvc: deps.Metrics,
		perCall:    deps.PerCall,
		logger:     logger.With("component", "http_handler"),
	}
}

// callOptions forwards header keys under the per-call policy only
func (h *Handler) callOptions(r *http.Request) []ports.CallOption {
	if !h.perCall {
		return nil
	}
	creds := credentialsFromHeaders(r)
	if creds == nil {
		return nil
	}
	return []ports.CallOption{ports.WithCredentials(*creds)}
}

// Health returns service health status
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	status, err := h.health.CheckHealth(r.Context())
	if err != nil {
		handleDomainError(w, err)
		return
	}

	code := http.StatusOK
	if status.Status == "unhealthy" {
		code = http.StatusServiceUnavailable
	}
	respondJSON(w, code, status)
}

// GetSymbols lists instruments in upstream order
func (h *Handler) GetSymbols(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := SymbolsQuery{
		FilterSymbolID:   q.Get("filter_symbol_id"),
		FilterExchangeID: q.Get("filter_exchange_id"),
		FilterAssetID:    q.Get("filter_asset_id"),
	}
	if err := validate.Struct(query); err != nil {
		respondValidationError(w, err)
		return
	}

	symbols, err := h.market.GetSymbols(r.Context(), query.toDomain(), h.callOptions(r)...)
	if err != nil {
		h.logger.Debug("get symbols failed", "error", err)
		handleDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, symbols)
}

// GetAssetIcons lists asset icons of the requested size
func (h *Handler) GetAssetIcons(w http.ResponseWriter, r *http.Request) {
	size, err := queryInt(r, "size")
	if err != nil {
		respondErrorWithCode(w, http.StatusBadRequest, err.Error(), "INVALID_PARAMS")
		return
	}
	query := IconsQuery{Size: size}
	if err := validate.Struct(query); err != nil {
		respondValidationError(w, err)
		return
	}

	icons, err := h.market.GetAssetIcons(r.Context(), domain.AssetIconsParams{Size: query.Size}, h.callOptions(r)...)
	if err != nil {
		handleDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, icons)
}

// GetOrderbook returns a fresh order-book snapshot
func (h *Handler) GetOrderbook(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		respondErrorWithCode(w, http.StatusBadRequest, err.Error(), "INVALID_PARAMS")
		return
	}
	query := OrderbookQuery{
		Symbol: domain.NormalizeSymbolName(r.URL.Query().Get("symbol")),
		Limit:  limit,
	}
	if err := validate.Struct(query); err != nil {
		respondValidationError(w, err)
		return
	}

	book, err := h.market.GetOrderbook(r.Context(), domain.NewParams(query.Symbol, query.Limit), h.callOptions(r)...)
	if err != nil {
		h.logger.Debug("get orderbook failed", "symbol", query.Symbol, "error", err)
		handleDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, book)
}

// GetRecentTrades returns the latest public trades
func (h *Handler) GetRecentTrades(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		respondErrorWithCode(w, http.StatusBadRequest, err.Error(), "INVALID_PARAMS")
		return
	}
	query := TradesQuery{
		Symbol: domain.NormalizeSymbolName(r.URL.Query().Get("symbol")),
		Limit:  limit,
	}
	if err := validate.Struct(query); err != nil {
		respondValidationError(w, err)
		return
	}

	trades, err := h.market.GetRecentTrades(r.Context(), domain.NewParams(query.Symbol, query.Limit), h.callOptions(r)...)
	if err != nil {
		handleDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, trades)
}

// ListCoins lists coins
func (h *Handler) ListCoins(w http.ResponseWriter, r *http.Request) {
	var body ListCoinsBody
	if !h.decodeBody(w, r, &body) {
		return
	}

	coins, err := h.market.ListCoins(r.Context(), body.toDomain(), h.callOptions(r)...)
	if err != nil {
		handleDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, coins)
}

// GetTopMovers returns the day's top US stock gainers, losers and most traded
func (h *Handler) GetTopMovers(w http.ResponseWriter, r *http.Request) {
	movers, err := h.market.GetTopMovers(r.Context(), domain.TopMoversParams{}, h.callOptions(r)...)
	if err != nil {
		handleDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, movers)
}

// ListAggregatedCoins lists coins joined with their artwork
func (h *Handler) ListAggregatedCoins(w http.ResponseWriter, r *http.Request) {
	var body ListCoinsBody
	if !h.decodeBody(w, r, &body) {
		return
	}

	coins, err := h.market.GetAggregatedCoins(r.Context(), body.toDomain(), h.callOptions(r)...)
	if err != nil {
		handleDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, coins)
}

// GetCoin returns one coin with metadata
func (h *Handler) GetCoin(w http.ResponseWriter, r *http.Request) {
	var body CoinBody
	if !h.decodeBody(w, r, &body) {
		return
	}

	meta, err := h.market.GetCoinMeta(r.Context(), body.toDomain(), h.callOptions(r)...)
	if err != nil {
		handleDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, meta)
}

// GetCoinHistory returns one coin's history
func (h *Handler) GetCoinHistory(w http.ResponseWriter, r *http.Request) {
	var body CoinHistoryBody
	if !h.decodeBody(w, r, &body) {
		return
	}

	meta, err := h.market.GetCoinHistory(r.Context(), body.toDomain(), h.callOptions(r)...)
	if err != nil {
		handleDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, meta)
}

// SnapshotItem represents an archived snapshot in the API response
type SnapshotItem struct {
	LastUpdateID uint64     `json:"lastUpdateId"`
	BestBid      string     `json:"bestBid"`
	BestAsk      string     `json:"bestAsk"`
	Spread       string     `json:"spread"`
	Asks         [][]string `json:"asks"`
	Bids         [][]string `json:"bids"`
	Timestamp    string     `json:"ts"`
}

func toSnapshotItem(s *domain.OrderBookSnapshot) SnapshotItem {
	return SnapshotItem{
		LastUpdateID: s.LastUpdateID,
		BestBid:      s.BestBid.String(),
		BestAsk:      s.BestAsk.String(),
		Spread:       s.Spread.String(),
		Asks:         s.Book.Asks,
		Bids:         s.Book.Bids,
		Timestamp:    s.CapturedAt.Format(time.RFC3339),
	}
}

// GetLatestOrderbook returns the most recent archived snapshot for a symbol
func (h *Handler) GetLatestOrderbook(w http.ResponseWriter, r *http.Request) {
	if h.archive == nil {
		respondErrorWithCode(w, http.StatusNotFound, "order-book archive is disabled", "ARCHIVE_DISABLED")
		return
	}

	query := HistoryQuery{Symbol: domain.NormalizeSymbolName(r.URL.Query().Get("symbol"))}
	if err := validate.Struct(query); err != nil {
		respondValidationError(w, err)
		return
	}

	snapshot, err := h.archive.Latest(r.Context(), query.Symbol)
	if err != nil {
		handleDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, toSnapshotItem(snapshot))
}

// GetOrderbookHistory returns archived snapshots for a symbol
func (h *Handler) GetOrderbookHistory(w http.ResponseWriter, r *http.Request) {
	if h.archive == nil {
		respondErrorWithCode(w, http.StatusNotFound, "order-book archive is disabled", "ARCHIVE_DISABLED")
		return
	}

	limit, err := queryInt(r, "limit")
	if err != nil {
		respondErrorWithCode(w, http.StatusBadRequest, err.Error(), "INVALID_PARAMS")
		return
	}
	query := HistoryQuery{
		Symbol: domain.NormalizeSymbolName(r.URL.Query().Get("symbol")),
		Limit:  limit,
	}
	if err := validate.Struct(query); err != nil {
		respondValidationError(w, err)
		return
	}
	if query.Limit == 0 {
		query.Limit = 100
	}

	history, err := h.archive.History(r.Context(), query.Symbol, query.Limit)
	if err != nil {
		handleDomainError(w, err)
		return
	}

	items := make([]SnapshotItem, len(history))
	for i, s := range history {
		items[i] = toSnapshotItem(s)
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"symbol": query.Symbol,
		"items":  items,
	})
}

// GetArchiveStatus returns operational metrics of the archive
func (h *Handler) GetArchiveStatus(w http.ResponseWriter, r *http.Request) {
	if h.metricsSvc == nil || h.archive == nil {
		respondErrorWithCode(w, http.StatusNotFound, "order-book archive is disabled", "ARCHIVE_DISABLED")
		return
	}

	metrics, err := h.metricsSvc.GetMetrics(r.Context())
	if err != nil {
		handleDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"symbols": h.archive.Symbols(),
		"metrics": metrics,
	})
}

// decodeBody decodes and validates a JSON body, answering 400 on failure
func (h *Handler) decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if ct := r.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(ct, "application/json") {
		respondErrorWithCode(w, http.StatusUnsupportedMediaType, "content type must be application/json", "UNSUPPORTED_MEDIA_TYPE")
		return false
	}

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		respondErrorWithCode(w, http.StatusBadRequest, "invalid request body", "INVALID_BODY")
		return false
	}

	if err := validate.Struct(dst); err != nil {
		respondValidationError(w, err)
		return false
	}

	return true
}
