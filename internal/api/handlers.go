package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
	"github.com/trogers1052/stock-dashboard/internal/models"
	"github.com/trogers1052/stock-dashboard/internal/store"
)

const (
	msgStockNotFound    = "Stock not found"
	msgRefreshed        = "Stocks refreshed successfully"
	msgInternalError    = "Internal server error"
	msgHistoryDisabled  = "Refresh history is not available"
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

// StockService is the read and refresh surface of the stock store
type StockService interface {
	List(q store.ListQuery) store.ListResult
	GetBySymbol(symbol string) (models.Stock, error)
	Stats() models.StockStats
	Len() int
	RefreshWithTimeout(ctx context.Context, timeout time.Duration) store.RefreshResult
}

// HistoryReader lists past refresh runs
type HistoryReader interface {
	GetRecentRefreshRuns(limit int) ([]*models.RefreshRun, error)
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	stocks         StockService
	history        HistoryReader
	refreshTimeout time.Duration
}

// NewHandler creates a new Handler. history may be nil when no database is configured.
func NewHandler(stocks StockService, history HistoryReader, refreshTimeout time.Duration) *Handler {
	return &Handler{
		stocks:         stocks,
		history:        history,
		refreshTimeout: refreshTimeout,
	}
}

// ListStocks handles GET /api/stocks
func (h *Handler) ListStocks(w http.ResponseWriter, r *http.Request) {
	q := ParseListQuery(r.URL.Query())
	res := h.stocks.List(q)
	respondJSON(w, http.StatusOK, NewStockListResponse(q, res))
}

// GetStock handles GET /api/stocks/{symbol}
func (h *Handler) GetStock(w http.ResponseWriter, r *http.Request) {
	symbol := mux.Vars(r)["symbol"]

	stock, err := h.stocks.GetBySymbol(symbol)
	if errors.Is(err, store.ErrStockNotFound) {
		respondError(w, http.StatusNotFound, msgStockNotFound)
		return
	}
	if err != nil {
		log.Error().Err(err).Str("symbol", symbol).Msg("Failed to get stock")
		respondError(w, http.StatusInternalServerError, msgInternalError)
		return
	}

	respondJSON(w, http.StatusOK, stock)
}

// GetStats handles GET /api/stocks/stats/overview
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.stocks.Stats())
}

// RefreshStocks handles POST /api/stocks/refresh. Source failures fall back to
// the seed set, so the response is always a success.
func (h *Handler) RefreshStocks(w http.ResponseWriter, r *http.Request) {
	res := h.stocks.RefreshWithTimeout(r.Context(), h.refreshTimeout)
	log.Info().
		Str("source", res.Source).
		Int("count", res.Count).
		Bool("fallback", res.Fallback).
		Bool("shared", res.Shared).
		Msg("Refresh requested over HTTP")

	respondJSON(w, http.StatusOK, map[string]string{"message": msgRefreshed})
}

// RefreshHistory handles GET /api/refresh/history
func (h *Handler) RefreshHistory(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		respondError(w, http.StatusServiceUnavailable, msgHistoryDisabled)
		return
	}

	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	runs, err := h.history.GetRecentRefreshRuns(limit)
	if err != nil {
		log.Error().Err(err).Msg("Failed to load refresh history")
		respondError(w, http.StatusInternalServerError, msgInternalError)
		return
	}

	respondJSON(w, http.StatusOK, runs)
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "healthy",
		"stocks": h.stocks.Len(),
	})
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"message": message})
}
