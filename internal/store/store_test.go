package store

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trogers1052/stock-dashboard/internal/models"
	"github.com/trogers1052/stock-dashboard/internal/quotes"
)

// fakeSource returns canned records or an error
type fakeSource struct {
	name    string
	mode    quotes.Mode
	records []models.Stock
	err     error

	calls   int32
	entered chan struct{}
	release chan struct{}
	seen    []models.Stock
}

func (f *fakeSource) Name() string      { return f.name }
func (f *fakeSource) Mode() quotes.Mode { return f.mode }

func (f *fakeSource) Fetch(ctx context.Context, current []models.Stock) ([]models.Stock, error) {
	atomic.AddInt32(&f.calls, 1)
	f.seen = current
	if f.entered != nil {
		close(f.entered)
	}
	if f.release != nil {
		<-f.release
	}
	if f.err != nil {
		return nil, f.err
	}
	if f.mode == quotes.ModeMutate && f.records == nil {
		out := make([]models.Stock, len(current))
		for i, s := range current {
			s.Price = s.Price.Add(decimal.NewFromInt(1))
			out[i] = s
		}
		return out, nil
	}
	return f.records, nil
}

func stock(symbol string, sector models.Sector, rec models.Recommendation, price string, changePct string, volume int64, marketCap string) models.Stock {
	return models.Stock{
		Symbol:         symbol,
		Name:           symbol + " Inc.",
		Price:          decimal.RequireFromString(price),
		ChangePercent:  decimal.RequireFromString(changePct),
		Volume:         volume,
		MarketCap:      decimal.RequireFromString(marketCap),
		Sector:         sector,
		Recommendation: rec,
	}
}

func sampleStocks() []models.Stock {
	return []models.Stock{
		stock("MSFT", models.SectorTechnology, models.RecommendationBuy, "385.64", "1.68", 21700000, "2860000000000"),
		stock("AAPL", models.SectorTechnology, models.RecommendationStrongBuy, "174.79", "2.41", 56300000, "2740000000000"),
		stock("GOOGL", models.SectorTechnology, models.RecommendationHold, "140.10", "-0.50", 25000000, "1750000000000"),
		stock("JPM", models.SectorFinancials, models.RecommendationSell, "198.20", "-2.70", 9000000, "570000000000"),
		stock("XOM", models.SectorEnergy, models.RecommendationStrongSell, "104.00", "-6.10", 15000000, "0"),
	}
}

func seededStore(t *testing.T, stocks []models.Stock) *Store {
	t.Helper()
	s := New(nil, func() []models.Stock { return stocks })
	require.Equal(t, len(stocks), s.Seed())
	return s
}

func symbols(stocks []models.Stock) []string {
	out := make([]string, len(stocks))
	for i, s := range stocks {
		out[i] = s.Symbol
	}
	return out
}

func TestStoreList(t *testing.T) {
	s := seededStore(t, sampleStocks())

	t.Run("filters by recommendation", func(t *testing.T) {
		res := s.List(ListQuery{Recommendation: models.RecommendationBuy})
		assert.Equal(t, 1, res.Total)
		assert.Equal(t, []string{"MSFT"}, symbols(res.Stocks))
	})

	t.Run("filters by sector", func(t *testing.T) {
		res := s.List(ListQuery{Sector: models.SectorTechnology})
		assert.Equal(t, 3, res.Total)
		for _, st := range res.Stocks {
			assert.Equal(t, models.SectorTechnology, st.Sector)
		}
	})

	t.Run("filters are ANDed", func(t *testing.T) {
		res := s.List(ListQuery{Sector: models.SectorTechnology, Recommendation: models.RecommendationSell})
		assert.Equal(t, 0, res.Total)
		assert.Empty(t, res.Stocks)

		res = s.List(ListQuery{Sector: models.SectorFinancials, Recommendation: models.RecommendationSell})
		assert.Equal(t, []string{"JPM"}, symbols(res.Stocks))
	})

	t.Run("every filter combination matches exactly", func(t *testing.T) {
		all := sampleStocks()
		recs := append([]models.Recommendation{""}, models.Recommendations...)
		sectors := append([]models.Sector{""}, models.Sectors...)
		for _, rec := range recs {
			for _, sector := range sectors {
				want := 0
				for _, st := range all {
					if (rec == "" || st.Recommendation == rec) && (sector == "" || st.Sector == sector) {
						want++
					}
				}
				res := s.List(ListQuery{Recommendation: rec, Sector: sector, Limit: 100})
				assert.Equal(t, want, res.Total, "rec=%s sector=%s", rec, sector)
				assert.Len(t, res.Stocks, want)
			}
		}
	})

	t.Run("sorts alphabetically by default", func(t *testing.T) {
		res := s.List(ListQuery{})
		assert.Equal(t, []string{"AAPL", "GOOGL", "JPM", "MSFT", "XOM"}, symbols(res.Stocks))
	})

	t.Run("unknown sort key falls back to alphabetical", func(t *testing.T) {
		res := s.List(ListQuery{SortBy: "nonsense"})
		assert.Equal(t, []string{"AAPL", "GOOGL", "JPM", "MSFT", "XOM"}, symbols(res.Stocks))
	})

	t.Run("sorts by price descending", func(t *testing.T) {
		res := s.List(ListQuery{SortBy: models.SortPrice})
		assert.Equal(t, []string{"MSFT", "JPM", "AAPL", "GOOGL", "XOM"}, symbols(res.Stocks))
	})

	t.Run("sorts by change percent descending", func(t *testing.T) {
		res := s.List(ListQuery{SortBy: models.SortChange})
		assert.Equal(t, []string{"AAPL", "MSFT", "GOOGL", "JPM", "XOM"}, symbols(res.Stocks))
	})

	t.Run("sorts by volume descending", func(t *testing.T) {
		res := s.List(ListQuery{SortBy: models.SortVolume})
		assert.Equal(t, []string{"AAPL", "GOOGL", "MSFT", "XOM", "JPM"}, symbols(res.Stocks))
	})

	t.Run("sorts by market cap descending", func(t *testing.T) {
		res := s.List(ListQuery{SortBy: models.SortMarketCap})
		assert.Equal(t, []string{"MSFT", "AAPL", "GOOGL", "JPM", "XOM"}, symbols(res.Stocks))
	})

	t.Run("ties keep symbol order", func(t *testing.T) {
		tied := seededStore(t, []models.Stock{
			stock("ZZZ", models.SectorEnergy, models.RecommendationHold, "10", "0", 5, "0"),
			stock("AAA", models.SectorEnergy, models.RecommendationHold, "10", "0", 5, "0"),
			stock("MMM", models.SectorEnergy, models.RecommendationHold, "10", "0", 5, "0"),
		})
		res := tied.List(ListQuery{SortBy: models.SortPrice})
		assert.Equal(t, []string{"AAA", "MMM", "ZZZ"}, symbols(res.Stocks))
	})

	t.Run("paginates by offset", func(t *testing.T) {
		res := s.List(ListQuery{Page: 2, Limit: 2})
		assert.Equal(t, 5, res.Total)
		assert.Equal(t, []string{"JPM", "MSFT"}, symbols(res.Stocks))

		res = s.List(ListQuery{Page: 3, Limit: 2})
		assert.Equal(t, []string{"XOM"}, symbols(res.Stocks))
	})

	t.Run("out of range page is empty", func(t *testing.T) {
		res := s.List(ListQuery{Page: 4, Limit: 2})
		assert.Equal(t, 5, res.Total)
		assert.NotNil(t, res.Stocks)
		assert.Empty(t, res.Stocks)

		res = s.List(ListQuery{Page: 1 << 40, Limit: 1 << 20})
		assert.Empty(t, res.Stocks)
	})

	t.Run("non-positive page and limit use defaults", func(t *testing.T) {
		res := s.List(ListQuery{Page: -3, Limit: 0})
		assert.Len(t, res.Stocks, 5)
	})

	t.Run("total ignores pagination", func(t *testing.T) {
		for _, limit := range []int{1, 2, 3, 20} {
			for page := 1; page <= 4; page++ {
				res := s.List(ListQuery{Page: page, Limit: limit, Sector: models.SectorTechnology})
				assert.Equal(t, 3, res.Total)
			}
		}
	})

	t.Run("identical queries return identical results", func(t *testing.T) {
		q := ListQuery{Page: 1, Limit: 3, SortBy: models.SortVolume}
		assert.Equal(t, s.List(q), s.List(q))
	})
}

func TestStoreGetBySymbol(t *testing.T) {
	s := seededStore(t, sampleStocks())

	t.Run("finds existing symbol", func(t *testing.T) {
		st, err := s.GetBySymbol("AAPL")
		require.NoError(t, err)
		assert.Equal(t, "AAPL", st.Symbol)
		assert.NotZero(t, st.ID)
	})

	t.Run("ignores case and whitespace", func(t *testing.T) {
		st, err := s.GetBySymbol(" msft ")
		require.NoError(t, err)
		assert.Equal(t, "MSFT", st.Symbol)
	})

	t.Run("reports not found", func(t *testing.T) {
		_, err := s.GetBySymbol("NOPE")
		assert.ErrorIs(t, err, ErrStockNotFound)
	})
}

func TestStoreStats(t *testing.T) {
	s := seededStore(t, sampleStocks())

	stats := s.Stats()
	assert.Equal(t, models.StockStats{BuyCount: 2, HoldCount: 1, SellCount: 2}, stats)
	assert.Equal(t, s.Len(), stats.BuyCount+stats.HoldCount+stats.SellCount)
}

func TestFallbackScenario(t *testing.T) {
	s := New(&fakeSource{name: "polygon", err: quotes.ErrMissingAPIKey}, quotes.FallbackStocks)

	res := s.Refresh(context.Background())
	assert.True(t, res.Fallback)
	assert.Equal(t, models.SourceFallback, res.Source)
	assert.Equal(t, 4, res.Count)

	list := s.List(ListQuery{Page: 1, Limit: 20, Recommendation: models.RecommendationBuy})
	assert.Equal(t, 1, list.Total)
	assert.Equal(t, []string{"MSFT"}, symbols(list.Stocks))

	assert.Equal(t, models.StockStats{BuyCount: 2, HoldCount: 1, SellCount: 1}, s.Stats())
}

func TestStoreRefresh(t *testing.T) {
	t.Run("source error falls back to seed set", func(t *testing.T) {
		s := New(&fakeSource{name: "polygon", err: errors.New("connection refused")}, quotes.FallbackStocks)
		res := s.Refresh(context.Background())

		assert.True(t, res.Fallback)
		assert.EqualError(t, res.Err, "connection refused")
		assert.Equal(t, 4, s.Len())
	})

	t.Run("empty result falls back to seed set", func(t *testing.T) {
		s := New(&fakeSource{name: "polygon", records: []models.Stock{}}, quotes.FallbackStocks)
		res := s.Refresh(context.Background())

		assert.True(t, res.Fallback)
		assert.ErrorIs(t, res.Err, quotes.ErrNoQuotes)
		assert.Equal(t, 4, s.Len())
	})

	t.Run("nil source falls back to seed set", func(t *testing.T) {
		s := New(nil, quotes.FallbackStocks)
		res := s.Refresh(context.Background())

		assert.True(t, res.Fallback)
		assert.Equal(t, 4, s.Len())
	})

	t.Run("failure without seed set leaves collection empty", func(t *testing.T) {
		s := New(&fakeSource{name: "polygon", err: errors.New("boom")}, nil)
		res := s.Refresh(context.Background())

		assert.True(t, res.Fallback)
		assert.Equal(t, 0, s.Len())
	})

	t.Run("replace mode drops unseen symbols", func(t *testing.T) {
		src := &fakeSource{
			name: "polygon",
			mode: quotes.ModeReplace,
			records: []models.Stock{
				stock("NVDA", models.SectorTechnology, models.RecommendationStrongBuy, "900", "6", 1, "0"),
				stock("AAPL", models.SectorTechnology, models.RecommendationHold, "175", "0.1", 1, "0"),
			},
		}
		s := New(src, quotes.FallbackStocks)
		s.Seed()
		before, err := s.GetBySymbol("AAPL")
		require.NoError(t, err)

		res := s.Refresh(context.Background())
		assert.False(t, res.Fallback)
		assert.Equal(t, "polygon", res.Source)
		assert.Equal(t, 2, s.Len())

		_, err = s.GetBySymbol("MSFT")
		assert.ErrorIs(t, err, ErrStockNotFound)

		after, err := s.GetBySymbol("AAPL")
		require.NoError(t, err)
		assert.Equal(t, before.ID, after.ID)
		assert.Equal(t, models.RecommendationHold, after.Recommendation)
	})

	t.Run("mutate mode keeps the symbol set", func(t *testing.T) {
		src := &fakeSource{name: "simulation", mode: quotes.ModeMutate}
		s := New(src, quotes.FallbackStocks)
		s.Seed()
		before := s.List(ListQuery{})

		res := s.Refresh(context.Background())
		assert.False(t, res.Fallback)
		after := s.List(ListQuery{})

		assert.Equal(t, symbols(before.Stocks), symbols(after.Stocks))
		for i := range before.Stocks {
			assert.True(t, after.Stocks[i].Price.Equal(before.Stocks[i].Price.Add(decimal.NewFromInt(1))))
			assert.Equal(t, before.Stocks[i].ID, after.Stocks[i].ID)
		}
	})

	t.Run("mutate mode seeds an empty collection first", func(t *testing.T) {
		src := &fakeSource{name: "simulation", mode: quotes.ModeMutate}
		s := New(src, quotes.FallbackStocks)

		s.Refresh(context.Background())
		assert.Len(t, src.seen, 4)
		assert.Equal(t, 4, s.Len())
	})

	t.Run("records with invalid recommendation are dropped", func(t *testing.T) {
		src := &fakeSource{
			name: "polygon",
			records: []models.Stock{
				stock("GOOD", models.SectorEnergy, models.RecommendationHold, "1", "0", 1, "0"),
				stock("BAD", models.SectorEnergy, "maybe", "1", "0", 1, "0"),
			},
		}
		s := New(src, quotes.FallbackStocks)
		s.Refresh(context.Background())

		assert.Equal(t, 1, s.Len())
	})

	t.Run("observers see the refreshed collection", func(t *testing.T) {
		var gotRun models.RefreshRun
		var gotCount int
		s := New(&fakeSource{name: "polygon", err: errors.New("down")}, quotes.FallbackStocks,
			ObserverFunc(func(ctx context.Context, run models.RefreshRun, stocks []models.Stock) error {
				gotRun = run
				gotCount = len(stocks)
				return nil
			}),
			ObserverFunc(func(ctx context.Context, run models.RefreshRun, stocks []models.Stock) error {
				return errors.New("observer down")
			}),
		)

		res := s.Refresh(context.Background())
		assert.True(t, res.Fallback)
		assert.Equal(t, models.SourceFallback, gotRun.Source)
		assert.Equal(t, "polygon", gotRun.RequestedSource)
		assert.Equal(t, "down", gotRun.Error)
		assert.Equal(t, 4, gotRun.StockCount)
		assert.Equal(t, 4, gotCount)
		assert.False(t, gotRun.FinishedAt.Before(gotRun.StartedAt))
	})

	t.Run("concurrent refreshes share one fetch", func(t *testing.T) {
		src := &fakeSource{
			name:    "polygon",
			records: sampleStocks(),
			entered: make(chan struct{}),
			release: make(chan struct{}),
		}
		s := New(src, quotes.FallbackStocks)

		var wg sync.WaitGroup
		results := make([]RefreshResult, 2)
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[0] = s.Refresh(context.Background())
		}()
		<-src.entered

		wg.Add(1)
		go func() {
			defer wg.Done()
			results[1] = s.Refresh(context.Background())
		}()
		time.Sleep(100 * time.Millisecond)
		close(src.release)
		wg.Wait()

		assert.Equal(t, int32(1), atomic.LoadInt32(&src.calls))
		assert.Equal(t, 5, results[0].Count)
		assert.Equal(t, 5, results[1].Count)
		assert.True(t, results[0].Shared || results[1].Shared)
	})

	t.Run("readers never observe a torn collection", func(t *testing.T) {
		src := &fakeSource{name: "simulation", mode: quotes.ModeMutate}
		s := New(src, quotes.FallbackStocks)
		s.Seed()

		done := make(chan struct{})
		go func() {
			defer close(done)
			for i := 0; i < 50; i++ {
				s.Refresh(context.Background())
			}
		}()

		for {
			select {
			case <-done:
				return
			default:
				res := s.List(ListQuery{})
				require.Equal(t, 4, res.Total)
			}
		}
	})
}

func TestRefreshWithTimeoutIgnoresCallerCancellation(t *testing.T) {
	s := New(&fakeSource{name: "polygon", records: sampleStocks()}, quotes.FallbackStocks)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := s.RefreshWithTimeout(ctx, time.Second)
	assert.False(t, res.Fallback)
	assert.Equal(t, 5, res.Count)
}

func TestStoreRestoreKeepsPersistedIDs(t *testing.T) {
	persisted := sampleStocks()
	persisted[0].ID = 7  // MSFT
	persisted[1].ID = 3  // AAPL
	persisted[2].ID = 12 // GOOGL
	persisted[3].ID = 3  // JPM, duplicate id
	persisted[4].ID = 0  // XOM, never numbered

	s := New(&fakeSource{name: "polygon", mode: quotes.ModeReplace}, nil)
	require.Equal(t, 5, s.Restore(persisted))

	ids := map[string]int{}
	for _, symbol := range []string{"MSFT", "AAPL", "GOOGL", "JPM", "XOM"} {
		got, err := s.GetBySymbol(symbol)
		require.NoError(t, err)
		ids[symbol] = got.ID
	}
	assert.Equal(t, 7, ids["MSFT"])
	assert.Equal(t, 3, ids["AAPL"])
	assert.Equal(t, 12, ids["GOOGL"])
	assert.Greater(t, ids["JPM"], 12)
	assert.Greater(t, ids["XOM"], 12)
	assert.NotEqual(t, ids["JPM"], ids["XOM"])

	src := &fakeSource{name: "polygon", mode: quotes.ModeReplace, records: []models.Stock{
		stock("AAPL", models.SectorTechnology, models.RecommendationBuy, "180", "1", 1, "0"),
		stock("NVDA", models.SectorTechnology, models.RecommendationBuy, "900", "1", 1, "0"),
	}}
	s.source = src
	s.Refresh(context.Background())

	aapl, err := s.GetBySymbol("AAPL")
	require.NoError(t, err)
	assert.Equal(t, 3, aapl.ID)

	nvda, err := s.GetBySymbol("NVDA")
	require.NoError(t, err)
	assert.Greater(t, nvda.ID, ids["XOM"])
}

func TestStoreRestoreEmpty(t *testing.T) {
	s := New(nil, quotes.FallbackStocks)
	assert.Equal(t, 0, s.Restore(nil))
	assert.Equal(t, 0, s.Len())
}
