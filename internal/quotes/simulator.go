package quotes

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/trogers1052/stock-dashboard/internal/models"
)

// SimulatorConfig holds the random-walk parameters
type SimulatorConfig struct {
	MinChangePercent   float64
	MaxChangePercent   float64
	VolumeJitter       float64
	TargetNudgeChance  float64
	TargetNudgePercent float64
}

// DefaultSimulatorConfig returns the standard walk: -3%..+4% base moves,
// +/-20% volume, 30% chance of a +/-5% target nudge.
func DefaultSimulatorConfig() SimulatorConfig {
	return SimulatorConfig{
		MinChangePercent:   -3,
		MaxChangePercent:   4,
		VolumeJitter:       0.20,
		TargetNudgeChance:  0.30,
		TargetNudgePercent: 0.05,
	}
}

// Simulator perturbs existing records with biased random walks. It needs no
// network access.
type Simulator struct {
	cfg         SimulatorConfig
	recommender Recommender

	mu  sync.Mutex
	rng *rand.Rand
	now func() time.Time
}

// NewSimulator creates a Simulator. A nil rng is seeded from the clock and a
// nil recommender selects a DriftRecommender sharing the same rng.
func NewSimulator(cfg SimulatorConfig, rng *rand.Rand, rec Recommender) *Simulator {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if rec == nil {
		rec = NewDriftRecommender(rng)
	}
	return &Simulator{
		cfg:         cfg,
		recommender: rec,
		rng:         rng,
		now:         time.Now,
	}
}

// Name returns the source name used in logs and audit records
func (s *Simulator) Name() string {
	return models.SourceSimulation
}

// Mode reports that records are updated in place
func (s *Simulator) Mode() Mode {
	return ModeMutate
}

// Fetch returns a perturbed copy of every current record
func (s *Simulator) Fetch(ctx context.Context, current []models.Stock) ([]models.Stock, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Stock, 0, len(current))
	for _, stock := range current {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out = append(out, s.step(stock))
	}
	return out, nil
}

func (s *Simulator) step(stock models.Stock) models.Stock {
	base := s.cfg.MinChangePercent + s.rng.Float64()*(s.cfg.MaxChangePercent-s.cfg.MinChangePercent)
	pct := base*SectorBias(stock.Sector) + RecommendationBias(stock.Recommendation)

	changePercent := decimal.NewFromFloat(pct)
	oldPrice := stock.Price
	newPrice := oldPrice.Mul(decimal.NewFromInt(1).Add(changePercent.Div(hundred))).Round(2)

	next := stock
	next.Price = newPrice
	next.Change = newPrice.Sub(oldPrice).Round(2)
	next.ChangePercent = PercentChange(newPrice, oldPrice)

	jitter := 1 + (s.rng.Float64()*2-1)*s.cfg.VolumeJitter
	next.Volume = int64(float64(stock.Volume) * jitter)
	if next.Volume < 0 {
		next.Volume = 0
	}

	if stock.TargetPrice.Valid && s.rng.Float64() < s.cfg.TargetNudgeChance {
		nudge := 1 + s.cfg.TargetNudgePercent
		if s.rng.Float64() < 0.5 {
			nudge = 1 - s.cfg.TargetNudgePercent
		}
		next.TargetPrice = decimal.NewNullDecimal(stock.TargetPrice.Decimal.Mul(decimal.NewFromFloat(nudge)).Round(2))
	}

	next.Recommendation = s.recommender.Recommend(stock, next.ChangePercent)
	next.LastUpdated = s.now()
	return next
}

// SectorBias scales a base move: growth sectors drift up, consumer cyclical down
func SectorBias(sector models.Sector) float64 {
	switch sector {
	case models.SectorTechnology, models.SectorHealthcare:
		return 1.5
	case models.SectorConsumerCyclical:
		return 0.8
	default:
		return 1.0
	}
}

// RecommendationBias shifts a move toward the current rating
func RecommendationBias(r models.Recommendation) float64 {
	switch {
	case r.IsBuy():
		return 0.3
	case r.IsSell():
		return -0.5
	default:
		return 0
	}
}
