package quotes

import (
	"math/rand"

	"github.com/shopspring/decimal"
	"github.com/trogers1052/stock-dashboard/internal/models"
)

// Recommender derives a new recommendation for a stock from its latest percent change
type Recommender interface {
	Recommend(stock models.Stock, changePercent decimal.Decimal) models.Recommendation
}

var (
	strongBuyAbove = decimal.NewFromInt(5)
	buyAbove       = decimal.NewFromInt(2)
	holdAbove      = decimal.NewFromInt(-2)
	sellAbove      = decimal.NewFromInt(-5)
)

// ThresholdRecommender maps percent change onto fixed bands:
// >5 strong_buy, >2 buy, >-2 hold, >-5 sell, otherwise strong_sell.
type ThresholdRecommender struct{}

// Recommend ignores the stock's current rating and applies the bands
func (ThresholdRecommender) Recommend(_ models.Stock, changePercent decimal.Decimal) models.Recommendation {
	switch {
	case changePercent.GreaterThan(strongBuyAbove):
		return models.RecommendationStrongBuy
	case changePercent.GreaterThan(buyAbove):
		return models.RecommendationBuy
	case changePercent.GreaterThan(holdAbove):
		return models.RecommendationHold
	case changePercent.GreaterThan(sellAbove):
		return models.RecommendationSell
	default:
		return models.RecommendationStrongSell
	}
}

// DriftRecommender occasionally nudges the current rating one step in the
// direction of a strong move. Moves within +/-Threshold never change it.
type DriftRecommender struct {
	Probability float64
	Threshold   decimal.Decimal
	rng         *rand.Rand
}

// NewDriftRecommender creates a DriftRecommender with the simulator defaults
func NewDriftRecommender(rng *rand.Rand) *DriftRecommender {
	return &DriftRecommender{
		Probability: 0.15,
		Threshold:   decimal.NewFromInt(2),
		rng:         rng,
	}
}

// Recommend returns the stock's rating, possibly moved one step
func (d *DriftRecommender) Recommend(stock models.Stock, changePercent decimal.Decimal) models.Recommendation {
	current := stock.Recommendation
	if d.rng.Float64() >= d.Probability {
		return current
	}

	switch {
	case changePercent.GreaterThan(d.Threshold):
		return current.StepTowardBuy()
	case changePercent.LessThan(d.Threshold.Neg()):
		return current.StepTowardSell()
	default:
		return current
	}
}
