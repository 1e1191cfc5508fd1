package quotes

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"sync"
	"time"

	polygon "github.com/polygon-io/client-go/rest"
	polymodels "github.com/polygon-io/client-go/rest/models"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"github.com/trogers1052/stock-dashboard/internal/cache"
	"github.com/trogers1052/stock-dashboard/internal/models"
)

const (
	defaultRequestDelay = 2 * time.Second
	defaultCacheTTL     = 15 * time.Minute
	cacheKeyPrefix      = "polygon:prev:"
)

// AggsClient is the subset of the Polygon REST client used for quotes
type AggsClient interface {
	GetPreviousCloseAgg(ctx context.Context, params *polymodels.GetPreviousCloseAggParams, options ...polymodels.RequestOption) (*polymodels.GetPreviousCloseAggResponse, error)
}

// NewPolygonClient builds a Polygon REST client with a bounded request timeout
func NewPolygonClient(apiKey string) AggsClient {
	return polygon.NewWithClient(apiKey, &http.Client{Timeout: 10 * time.Second})
}

// PolygonConfig configures the external fetch source
type PolygonConfig struct {
	APIKey       string
	RequestDelay time.Duration
	CacheTTL     time.Duration
	Watchlist    []WatchedStock
}

// previousClose is the cached form of a previous-day aggregate
type previousClose struct {
	Open   float64 `json:"o"`
	High   float64 `json:"h"`
	Low    float64 `json:"l"`
	Close  float64 `json:"c"`
	Volume float64 `json:"v"`
}

// PolygonSource fetches previous-day aggregates for the watch-list and
// rebuilds the collection from them.
type PolygonSource struct {
	client      AggsClient
	apiKey      string
	cache       cache.Cache
	recommender Recommender
	delay       time.Duration
	cacheTTL    time.Duration
	watchlist   []WatchedStock

	mu  sync.Mutex
	rng *rand.Rand
	now func() time.Time
}

// NewPolygonSource creates a PolygonSource. A nil cache disables caching and a
// nil recommender selects ThresholdRecommender.
func NewPolygonSource(cfg PolygonConfig, client AggsClient, c cache.Cache, rec Recommender) *PolygonSource {
	if cfg.RequestDelay < 0 {
		cfg.RequestDelay = defaultRequestDelay
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = defaultCacheTTL
	}
	if len(cfg.Watchlist) == 0 {
		cfg.Watchlist = Watchlist
	}
	if rec == nil {
		rec = ThresholdRecommender{}
	}

	return &PolygonSource{
		client:      client,
		apiKey:      cfg.APIKey,
		cache:       c,
		recommender: rec,
		delay:       cfg.RequestDelay,
		cacheTTL:    cfg.CacheTTL,
		watchlist:   cfg.Watchlist,
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
		now:         time.Now,
	}
}

// Name returns the source name used in logs and audit records
func (p *PolygonSource) Name() string {
	return models.SourcePolygon
}

// Mode reports that fetched data replaces the whole collection
func (p *PolygonSource) Mode() Mode {
	return ModeReplace
}

// Fetch requests each watched symbol in turn. Symbols that fail are skipped;
// an empty result is reported as ErrNoQuotes.
func (p *PolygonSource) Fetch(ctx context.Context, _ []models.Stock) ([]models.Stock, error) {
	if p.apiKey == "" || p.client == nil {
		return nil, ErrMissingAPIKey
	}

	log.Info().Int("symbols", len(p.watchlist)).Msg("Fetching previous close aggregates from Polygon")

	stocks := make([]models.Stock, 0, len(p.watchlist))
	calledRemote := false
	for i, w := range p.watchlist {
		if i > 0 && calledRemote {
			if err := sleepCtx(ctx, p.delay); err != nil {
				return nil, err
			}
		}

		agg, remote, err := p.previousClose(ctx, w.Symbol)
		calledRemote = remote
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			log.Warn().Err(err).Str("symbol", w.Symbol).Msg("Skipping symbol")
			continue
		}

		stocks = append(stocks, p.toStock(w, agg))
		log.Debug().Str("symbol", w.Symbol).Bool("cached", !remote).Msg("Quote processed")
	}

	if len(stocks) == 0 {
		return nil, ErrNoQuotes
	}

	log.Info().Int("count", len(stocks)).Msg("Loaded stocks from Polygon")
	return stocks, nil
}

// previousClose returns the aggregate for symbol and whether the provider was called
func (p *PolygonSource) previousClose(ctx context.Context, symbol string) (*previousClose, bool, error) {
	key := cacheKeyPrefix + symbol
	if p.cache != nil {
		var cached previousClose
		err := cache.GetJSON(ctx, p.cache, key, &cached)
		if err == nil {
			return &cached, false, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			log.Warn().Err(err).Str("symbol", symbol).Msg("Quote cache read failed")
		}
	}

	params := polymodels.GetPreviousCloseAggParams{Ticker: symbol}.WithAdjusted(true)
	resp, err := p.client.GetPreviousCloseAgg(ctx, params)
	if err != nil {
		return nil, true, fmt.Errorf("failed to get previous close for %s: %w", symbol, err)
	}
	if resp == nil || len(resp.Results) == 0 {
		return nil, true, fmt.Errorf("no previous close data for %s", symbol)
	}

	a := resp.Results[0]
	agg := &previousClose{
		Open:   a.Open,
		High:   a.High,
		Low:    a.Low,
		Close:  a.Close,
		Volume: a.Volume,
	}
	if agg.Open <= 0 || agg.Close <= 0 {
		return nil, true, fmt.Errorf("malformed previous close for %s", symbol)
	}

	if p.cache != nil {
		if err := cache.SetJSON(ctx, p.cache, key, agg, p.cacheTTL); err != nil {
			log.Warn().Err(err).Str("symbol", symbol).Msg("Quote cache write failed")
		}
	}
	return agg, true, nil
}

func (p *PolygonSource) toStock(w WatchedStock, agg *previousClose) models.Stock {
	closePrice := decimal.NewFromFloat(agg.Close).Round(2)
	openPrice := decimal.NewFromFloat(agg.Open).Round(2)
	changePercent := PercentChange(closePrice, openPrice)

	stock := models.Stock{
		Symbol:        w.Symbol,
		Name:          w.Name,
		Price:         closePrice,
		Change:        closePrice.Sub(openPrice),
		ChangePercent: changePercent,
		Volume:        int64(agg.Volume),
		MarketCap:     decimal.Zero,
		Sector:        ClassifySector(w.Symbol),
		High52Week:    positiveOrNull(agg.High),
		Low52Week:     positiveOrNull(agg.Low),
		TargetPrice:   decimal.NewNullDecimal(closePrice.Mul(p.targetMultiplier()).Round(2)),
		LastUpdated:   p.now(),
	}
	stock.Recommendation = p.recommender.Recommend(stock, changePercent)
	return stock
}

// targetMultiplier picks an estimate between 1.10 and 1.20
func (p *PolygonSource) targetMultiplier() decimal.Decimal {
	p.mu.Lock()
	defer p.mu.Unlock()
	return decimal.NewFromFloat(1.10 + p.rng.Float64()*0.10)
}

func positiveOrNull(v float64) decimal.NullDecimal {
	if v <= 0 {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(decimal.NewFromFloat(v).Round(2))
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
