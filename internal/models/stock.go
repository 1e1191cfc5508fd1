package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Sector is an industry classification bucket
type Sector string

const (
	SectorTechnology            Sector = "technology"
	SectorHealthcare            Sector = "healthcare"
	SectorFinancials            Sector = "financials"
	SectorEnergy                Sector = "energy"
	SectorConsumerCyclical      Sector = "consumer_cyclical"
	SectorConsumerDefensive     Sector = "consumer_defensive"
	SectorIndustrials           Sector = "industrials"
	SectorBasicMaterials        Sector = "basic_materials"
	SectorCommunicationServices Sector = "communication_services"
	SectorUtilities             Sector = "utilities"
	SectorRealEstate            Sector = "real_estate"
)

// Sectors lists every known sector
var Sectors = []Sector{
	SectorTechnology,
	SectorHealthcare,
	SectorFinancials,
	SectorEnergy,
	SectorConsumerCyclical,
	SectorConsumerDefensive,
	SectorIndustrials,
	SectorBasicMaterials,
	SectorCommunicationServices,
	SectorUtilities,
	SectorRealEstate,
}

// Valid reports whether s is one of the known sectors
func (s Sector) Valid() bool {
	for _, known := range Sectors {
		if s == known {
			return true
		}
	}
	return false
}

// ParseSector returns the matching sector and whether it was recognised
func ParseSector(raw string) (Sector, bool) {
	s := Sector(strings.ToLower(strings.TrimSpace(raw)))
	return s, s.Valid()
}

// SortOption selects the ordering of a stock listing
type SortOption string

const (
	SortAlphabetical SortOption = "alphabetical"
	SortPrice        SortOption = "price"
	SortChange       SortOption = "change"
	SortVolume       SortOption = "volume"
	SortMarketCap    SortOption = "market_cap"
)

// ParseSortOption maps raw input to a SortOption, falling back to alphabetical
func ParseSortOption(raw string) SortOption {
	switch opt := SortOption(raw); opt {
	case SortPrice, SortChange, SortVolume, SortMarketCap:
		return opt
	default:
		return SortAlphabetical
	}
}

// Stock represents a quoted stock with its current recommendation
type Stock struct {
	ID             int                 `json:"id"`
	Symbol         string              `json:"symbol"`
	Name           string              `json:"name"`
	Price          decimal.Decimal     `json:"price"`
	Change         decimal.Decimal     `json:"change"`
	ChangePercent  decimal.Decimal     `json:"changePercent"`
	Volume         int64               `json:"volume"`
	MarketCap      decimal.Decimal     `json:"marketCap"`
	Sector         Sector              `json:"sector,omitempty"`
	Recommendation Recommendation      `json:"recommendation"`
	High52Week     decimal.NullDecimal `json:"high52Week"`
	Low52Week      decimal.NullDecimal `json:"low52Week"`
	PERatio        decimal.NullDecimal `json:"peRatio"`
	DividendYield  decimal.NullDecimal `json:"dividendYield"`
	TargetPrice    decimal.NullDecimal `json:"targetPrice"`
	LastUpdated    time.Time           `json:"lastUpdated"`
}

// StockStats counts stocks by recommendation bucket
type StockStats struct {
	BuyCount  int `json:"buyCount"`
	HoldCount int `json:"holdCount"`
	SellCount int `json:"sellCount"`
}

// Add tallies a single recommendation into the stats
func (s *StockStats) Add(r Recommendation) {
	switch {
	case r.IsBuy():
		s.BuyCount++
	case r == RecommendationHold:
		s.HoldCount++
	case r.IsSell():
		s.SellCount++
	}
}
