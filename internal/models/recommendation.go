package models

import "strings"

// Recommendation is an analyst-style rating, ordered from most bullish to most bearish
type Recommendation string

const (
	RecommendationStrongBuy  Recommendation = "strong_buy"
	RecommendationBuy        Recommendation = "buy"
	RecommendationHold       Recommendation = "hold"
	RecommendationSell       Recommendation = "sell"
	RecommendationStrongSell Recommendation = "strong_sell"
)

// Recommendations holds the ratings in bullish-to-bearish order.
// Index order is what StepTowardBuy and StepTowardSell move along.
var Recommendations = []Recommendation{
	RecommendationStrongBuy,
	RecommendationBuy,
	RecommendationHold,
	RecommendationSell,
	RecommendationStrongSell,
}

// ParseRecommendation returns the matching recommendation and whether it was recognised
func ParseRecommendation(raw string) (Recommendation, bool) {
	r := Recommendation(strings.ToLower(strings.TrimSpace(raw)))
	return r, r.Valid()
}

func (r Recommendation) index() int {
	for i, known := range Recommendations {
		if r == known {
			return i
		}
	}
	return -1
}

// Valid reports whether r is one of the five ratings
func (r Recommendation) Valid() bool {
	return r.index() >= 0
}

// IsBuy reports whether r is buy or strong_buy
func (r Recommendation) IsBuy() bool {
	return r == RecommendationBuy || r == RecommendationStrongBuy
}

// IsSell reports whether r is sell or strong_sell
func (r Recommendation) IsSell() bool {
	return r == RecommendationSell || r == RecommendationStrongSell
}

// StepTowardBuy moves one rating toward strong_buy, stopping at the end
func (r Recommendation) StepTowardBuy() Recommendation {
	i := r.index()
	if i <= 0 {
		return r
	}
	return Recommendations[i-1]
}

// StepTowardSell moves one rating toward strong_sell, stopping at the end
func (r Recommendation) StepTowardSell() Recommendation {
	i := r.index()
	if i < 0 || i == len(Recommendations)-1 {
		return r
	}
	return Recommendations[i+1]
}
