package api

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/trogers1052/stock-dashboard/internal/models"
	"github.com/trogers1052/stock-dashboard/internal/store"
)

// MaxLimit caps the page size a client may request
const MaxLimit = 100

// Pagination describes the page returned in a stock listing
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// StockListResponse is the envelope for GET /api/stocks
type StockListResponse struct {
	Stocks     []models.Stock `json:"stocks"`
	Pagination Pagination     `json:"pagination"`
}

// ParseListQuery builds a store.ListQuery from URL parameters. Malformed or
// out-of-range page and limit fall back to defaults, and unknown filter
// values are ignored.
func ParseListQuery(values url.Values) store.ListQuery {
	q := store.ListQuery{
		Page:   positiveInt(values.Get("page"), store.DefaultPage),
		Limit:  positiveInt(values.Get("limit"), store.DefaultLimit),
		SortBy: models.ParseSortOption(strings.ToLower(strings.TrimSpace(values.Get("sortBy")))),
	}
	if q.Limit > MaxLimit {
		q.Limit = MaxLimit
	}

	if rec, ok := models.ParseRecommendation(values.Get("recommendation")); ok {
		q.Recommendation = rec
	}
	if sector, ok := models.ParseSector(values.Get("sector")); ok {
		q.Sector = sector
	}
	return q
}

// NewStockListResponse wraps a page of results in the listing envelope
func NewStockListResponse(q store.ListQuery, res store.ListResult) StockListResponse {
	stocks := res.Stocks
	if stocks == nil {
		stocks = []models.Stock{}
	}

	totalPages := 0
	if q.Limit > 0 {
		totalPages = (res.Total + q.Limit - 1) / q.Limit
	}

	return StockListResponse{
		Stocks: stocks,
		Pagination: Pagination{
			Page:       q.Page,
			Limit:      q.Limit,
			Total:      res.Total,
			TotalPages: totalPages,
		},
	}
}

func positiveInt(raw string, defaultValue int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n <= 0 {
		return defaultValue
	}
	return n
}
