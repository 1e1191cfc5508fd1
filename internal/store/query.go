package store

import (
	"sort"

	"github.com/trogers1052/stock-dashboard/internal/models"
)

// Defaults applied to non-positive page and limit values
const (
	DefaultPage  = 1
	DefaultLimit = 20
)

// ListQuery selects a page of stocks. Zero-value filters match everything.
type ListQuery struct {
	Page           int
	Limit          int
	Recommendation models.Recommendation
	Sector         models.Sector
	SortBy         models.SortOption
}

// ListResult is one page of stocks plus the number of stocks that matched the filters
type ListResult struct {
	Stocks []models.Stock
	Total  int
}

func (q ListQuery) normalize() ListQuery {
	if q.Page <= 0 {
		q.Page = DefaultPage
	}
	if q.Limit <= 0 {
		q.Limit = DefaultLimit
	}
	q.SortBy = models.ParseSortOption(string(q.SortBy))
	return q
}

func (q ListQuery) matches(s models.Stock) bool {
	if q.Recommendation != "" && s.Recommendation != q.Recommendation {
		return false
	}
	if q.Sector != "" && s.Sector != q.Sector {
		return false
	}
	return true
}

func filterStocks(stocks []models.Stock, q ListQuery) []models.Stock {
	out := make([]models.Stock, 0, len(stocks))
	for _, s := range stocks {
		if q.matches(s) {
			out = append(out, s)
		}
	}
	return out
}

// sortStocks orders stocks in place. Input is expected in symbol order so ties
// stay alphabetical.
func sortStocks(stocks []models.Stock, by models.SortOption) {
	var less func(a, b models.Stock) bool
	switch by {
	case models.SortPrice:
		less = func(a, b models.Stock) bool { return a.Price.GreaterThan(b.Price) }
	case models.SortChange:
		less = func(a, b models.Stock) bool { return a.ChangePercent.GreaterThan(b.ChangePercent) }
	case models.SortVolume:
		less = func(a, b models.Stock) bool { return a.Volume > b.Volume }
	case models.SortMarketCap:
		less = func(a, b models.Stock) bool { return a.MarketCap.GreaterThan(b.MarketCap) }
	default:
		less = func(a, b models.Stock) bool { return a.Symbol < b.Symbol }
	}

	sort.SliceStable(stocks, func(i, j int) bool {
		return less(stocks[i], stocks[j])
	})
}

// paginate returns the [offset, offset+limit) window; out-of-range pages are empty
func paginate(stocks []models.Stock, page, limit int) []models.Stock {
	if page-1 > len(stocks)/limit {
		return []models.Stock{}
	}
	offset := (page - 1) * limit
	if offset >= len(stocks) {
		return []models.Stock{}
	}
	end := offset + limit
	if end > len(stocks) {
		end = len(stocks)
	}
	return stocks[offset:end]
}
