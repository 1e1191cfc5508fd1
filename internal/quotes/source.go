// Package quotes produces stock records from an external market-data provider
// or from a local random-walk simulator.
package quotes

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"github.com/trogers1052/stock-dashboard/internal/models"
)

var (
	// ErrMissingAPIKey is returned when the external provider has no credential configured
	ErrMissingAPIKey = errors.New("polygon api key is not set")
	// ErrNoQuotes is returned when a fetch produced zero usable records
	ErrNoQuotes = errors.New("no quotes returned")
)

// Mode tells the store how a source's output relates to the existing collection
type Mode int

const (
	// ModeReplace sources return a brand new collection; symbols they omit are dropped
	ModeReplace Mode = iota
	// ModeMutate sources return the existing records updated in place
	ModeMutate
)

// Source produces a fresh set of stock records
type Source interface {
	Name() string
	Mode() Mode
	Fetch(ctx context.Context, current []models.Stock) ([]models.Stock, error)
}

// WatchedStock is one entry of the fixed external-fetch watch-list
type WatchedStock struct {
	Symbol string
	Name   string
	Sector models.Sector
}

// Watchlist is kept short to stay inside the provider's free-tier rate limit
var Watchlist = []WatchedStock{
	{Symbol: "AAPL", Name: "Apple Inc.", Sector: models.SectorTechnology},
	{Symbol: "MSFT", Name: "Microsoft Corporation", Sector: models.SectorTechnology},
	{Symbol: "GOOGL", Name: "Alphabet Inc.", Sector: models.SectorTechnology},
	{Symbol: "AMZN", Name: "Amazon.com Inc.", Sector: models.SectorConsumerCyclical},
	{Symbol: "META", Name: "Meta Platforms Inc.", Sector: models.SectorTechnology},
	{Symbol: "TSLA", Name: "Tesla Inc.", Sector: models.SectorConsumerCyclical},
	{Symbol: "JPM", Name: "JPMorgan Chase & Co.", Sector: models.SectorFinancials},
	{Symbol: "JNJ", Name: "Johnson & Johnson", Sector: models.SectorHealthcare},
	{Symbol: "NVDA", Name: "NVIDIA Corporation", Sector: models.SectorTechnology},
	{Symbol: "V", Name: "Visa Inc.", Sector: models.SectorFinancials},
}

var sectorBySymbol = func() map[string]models.Sector {
	m := make(map[string]models.Sector, len(Watchlist))
	for _, w := range Watchlist {
		m[w.Symbol] = w.Sector
	}
	return m
}()

// ClassifySector looks a symbol up in the static table. Unknown symbols are
// reported as technology.
func ClassifySector(symbol string) models.Sector {
	if sector, ok := sectorBySymbol[symbol]; ok {
		return sector
	}
	return models.SectorTechnology
}

var hundred = decimal.NewFromInt(100)

// PercentChange returns (current-previous)/previous*100 rounded to two places.
// Tiny non-zero moves round away from zero so the sign matches the price delta.
// A zero previous value yields zero.
func PercentChange(current, previous decimal.Decimal) decimal.Decimal {
	if previous.IsZero() {
		return decimal.Zero
	}
	raw := current.Sub(previous).Div(previous).Mul(hundred)
	pct := raw.Round(2)
	if pct.IsZero() && !raw.IsZero() {
		pct = raw.RoundUp(2)
	}
	return pct
}
