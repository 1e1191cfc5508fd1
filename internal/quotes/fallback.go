package quotes

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/trogers1052/stock-dashboard/internal/models"
)

// FallbackStocks returns the fixed seed set used whenever a refresh cannot
// produce data. Each call returns fresh copies.
func FallbackStocks() []models.Stock {
	now := time.Now()
	return []models.Stock{
		{
			Symbol:         "AAPL",
			Name:           "Apple Inc.",
			Price:          decimal.RequireFromString("174.79"),
			Change:         decimal.RequireFromString("4.21"),
			ChangePercent:  decimal.RequireFromString("2.41"),
			Volume:         56300000,
			MarketCap:      decimal.RequireFromString("2740000000000"),
			Sector:         models.SectorTechnology,
			Recommendation: models.RecommendationStrongBuy,
			High52Week:     nullDecimal("198.23"),
			Low52Week:      nullDecimal("124.17"),
			PERatio:        nullDecimal("28.74"),
			DividendYield:  nullDecimal("0.51"),
			TargetPrice:    nullDecimal("193.50"),
			LastUpdated:    now,
		},
		{
			Symbol:         "MSFT",
			Name:           "Microsoft Corporation",
			Price:          decimal.RequireFromString("385.64"),
			Change:         decimal.RequireFromString("6.48"),
			ChangePercent:  decimal.RequireFromString("1.68"),
			Volume:         21700000,
			MarketCap:      decimal.RequireFromString("2860000000000"),
			Sector:         models.SectorTechnology,
			Recommendation: models.RecommendationBuy,
			High52Week:     nullDecimal("420.82"),
			Low52Week:      nullDecimal("309.05"),
			PERatio:        nullDecimal("33.21"),
			DividendYield:  nullDecimal("0.72"),
			TargetPrice:    nullDecimal("415.75"),
			LastUpdated:    now,
		},
		{
			Symbol:         "AMZN",
			Name:           "Amazon.com Inc.",
			Price:          decimal.RequireFromString("178.22"),
			Change:         decimal.RequireFromString("-0.61"),
			ChangePercent:  decimal.RequireFromString("-0.34"),
			Volume:         33900000,
			MarketCap:      decimal.RequireFromString("1840000000000"),
			Sector:         models.SectorConsumerCyclical,
			Recommendation: models.RecommendationHold,
			High52Week:     nullDecimal("189.54"),
			Low52Week:      nullDecimal("118.35"),
			PERatio:        nullDecimal("59.82"),
			DividendYield:  nullDecimal("0"),
			TargetPrice:    nullDecimal("186.40"),
			LastUpdated:    now,
		},
		{
			Symbol:         "NFLX",
			Name:           "Netflix Inc.",
			Price:          decimal.RequireFromString("625.78"),
			Change:         decimal.RequireFromString("-7.82"),
			ChangePercent:  decimal.RequireFromString("-1.24"),
			Volume:         5300000,
			MarketCap:      decimal.RequireFromString("276500000000"),
			Sector:         models.SectorCommunicationServices,
			Recommendation: models.RecommendationSell,
			High52Week:     nullDecimal("639.00"),
			Low52Week:      nullDecimal("344.73"),
			PERatio:        nullDecimal("43.15"),
			DividendYield:  nullDecimal("0"),
			TargetPrice:    nullDecimal("590.25"),
			LastUpdated:    now,
		},
	}
}

func nullDecimal(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}
