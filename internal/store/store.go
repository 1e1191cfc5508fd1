// Package store holds the in-memory stock collection and its refresh policy.
package store

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/trogers1052/stock-dashboard/internal/models"
	"github.com/trogers1052/stock-dashboard/internal/quotes"
	"golang.org/x/sync/singleflight"
)

// ErrStockNotFound is returned when a symbol is not in the collection
var ErrStockNotFound = errors.New("stock not found")

var errNoSource = errors.New("no quote source configured")

// RefreshObserver is notified after every completed refresh
type RefreshObserver interface {
	OnRefresh(ctx context.Context, run models.RefreshRun, stocks []models.Stock) error
}

// ObserverFunc adapts a function to RefreshObserver
type ObserverFunc func(ctx context.Context, run models.RefreshRun, stocks []models.Stock) error

// OnRefresh calls f
func (f ObserverFunc) OnRefresh(ctx context.Context, run models.RefreshRun, stocks []models.Stock) error {
	return f(ctx, run, stocks)
}

// RefreshResult describes how a refresh was satisfied. Err holds the source
// failure that caused a fallback, if any; it is informational only.
type RefreshResult struct {
	Source   string
	Count    int
	Fallback bool
	Shared   bool
	Err      error
}

// Store owns the stock collection keyed by symbol
type Store struct {
	mu     sync.RWMutex
	stocks map[string]models.Stock
	nextID int

	source    quotes.Source
	fallback  func() []models.Stock
	observers []RefreshObserver
	group     singleflight.Group
	now       func() time.Time
}

// New creates an empty Store. A nil fallback means failed refreshes leave the
// collection empty.
func New(source quotes.Source, fallback func() []models.Stock, observers ...RefreshObserver) *Store {
	if fallback == nil {
		fallback = func() []models.Stock { return nil }
	}
	return &Store{
		stocks:    make(map[string]models.Stock),
		nextID:    1,
		source:    source,
		fallback:  fallback,
		observers: observers,
		now:       time.Now,
	}
}

// AddObserver registers an observer for subsequent refreshes
func (s *Store) AddObserver(o RefreshObserver) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, o)
}

// List filters, sorts and paginates the collection
func (s *Store) List(q ListQuery) ListResult {
	q = q.normalize()

	matched := filterStocks(s.snapshot(), q)
	sortStocks(matched, q.SortBy)

	return ListResult{
		Stocks: paginate(matched, q.Page, q.Limit),
		Total:  len(matched),
	}
}

// GetBySymbol returns the stock for symbol, ignoring case
func (s *Store) GetBySymbol(symbol string) (models.Stock, error) {
	key := normalizeSymbol(symbol)

	s.mu.RLock()
	defer s.mu.RUnlock()

	stock, ok := s.stocks[key]
	if !ok {
		return models.Stock{}, ErrStockNotFound
	}
	return stock, nil
}

// Stats counts the whole collection by recommendation bucket
func (s *Store) Stats() models.StockStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var stats models.StockStats
	for _, stock := range s.stocks {
		stats.Add(stock.Recommendation)
	}
	return stats
}

// Len returns the number of stocks held
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.stocks)
}

// Seed replaces the collection with the fallback set and returns its size
func (s *Store) Seed() int {
	seed := s.fallback()
	s.apply(quotes.ModeReplace, seed)
	log.Info().Int("count", len(seed)).Msg("Seeded stocks from fallback set")
	return len(seed)
}

// Restore replaces the collection with previously persisted records and
// returns how many were accepted. Persisted ids are kept; records without one,
// or whose id is already taken, get a fresh id above the largest restored.
func (s *Store) Restore(stocks []models.Stock) int {
	if len(stocks) == 0 {
		return 0
	}
	s.restore(stocks)
	n := s.Len()
	log.Info().Int("count", n).Msg("Restored stocks from database")
	return n
}

// Refresh pulls new data from the configured source, falling back to the seed
// set on any failure. It never returns an error; concurrent callers share one run.
func (s *Store) Refresh(ctx context.Context) RefreshResult {
	v, _, shared := s.group.Do("refresh", func() (interface{}, error) {
		return s.refresh(ctx), nil
	})
	result := v.(RefreshResult)
	result.Shared = shared
	return result
}

func (s *Store) refresh(ctx context.Context) RefreshResult {
	run := models.RefreshRun{StartedAt: s.now()}

	records, err := s.fetch(ctx, &run)
	if err != nil {
		log.Warn().
			Err(err).
			Str("source", run.RequestedSource).
			Msg("Refresh failed, using fallback stock data")
		records = s.fallback()
		run.Source = models.SourceFallback
		run.Fallback = true
		run.Error = err.Error()
		s.apply(quotes.ModeReplace, records)
	} else {
		s.apply(s.source.Mode(), records)
	}

	run.StockCount = s.Len()
	run.FinishedAt = s.now()

	log.Info().
		Str("source", run.Source).
		Int("count", run.StockCount).
		Bool("fallback", run.Fallback).
		Dur("duration", run.Duration()).
		Msg("Stocks refreshed")

	s.notify(ctx, run)

	return RefreshResult{
		Source:   run.Source,
		Count:    run.StockCount,
		Fallback: run.Fallback,
		Err:      err,
	}
}

// fetch asks the source for records without touching the collection
func (s *Store) fetch(ctx context.Context, run *models.RefreshRun) ([]models.Stock, error) {
	if s.source == nil {
		run.RequestedSource = models.SourceFallback
		return nil, errNoSource
	}
	run.RequestedSource = s.source.Name()
	run.Source = s.source.Name()

	current := s.snapshot()
	if s.source.Mode() == quotes.ModeMutate && len(current) == 0 {
		current = s.fallback()
	}

	records, err := s.source.Fetch(ctx, current)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, quotes.ErrNoQuotes
	}
	return records, nil
}

// apply swaps in records in a single step. Replace drops symbols not in
// records; mutate keeps them.
func (s *Store) apply(mode quotes.Mode, records []models.Stock) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make(map[string]models.Stock, len(records))
	if mode == quotes.ModeMutate {
		for symbol, stock := range s.stocks {
			next[symbol] = stock
		}
	}

	for _, r := range records {
		r.Symbol = normalizeSymbol(r.Symbol)
		if r.Symbol == "" || !r.Recommendation.Valid() {
			log.Warn().Str("symbol", r.Symbol).Str("recommendation", string(r.Recommendation)).Msg("Dropping invalid stock record")
			continue
		}
		if existing, ok := s.stocks[r.Symbol]; ok && existing.ID != 0 {
			r.ID = existing.ID
		} else {
			r.ID = s.nextID
			s.nextID++
		}
		next[r.Symbol] = r
	}

	s.stocks = next
}

func (s *Store) restore(records []models.Stock) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make(map[string]models.Stock, len(records))
	used := make(map[int]bool, len(records))
	maxID := 0
	var unnumbered []models.Stock

	for _, r := range records {
		r.Symbol = normalizeSymbol(r.Symbol)
		if r.Symbol == "" || !r.Recommendation.Valid() {
			log.Warn().Str("symbol", r.Symbol).Str("recommendation", string(r.Recommendation)).Msg("Dropping invalid stock record")
			continue
		}
		if r.ID <= 0 || used[r.ID] {
			unnumbered = append(unnumbered, r)
			continue
		}
		used[r.ID] = true
		if r.ID > maxID {
			maxID = r.ID
		}
		next[r.Symbol] = r
	}

	s.nextID = maxID + 1
	for _, r := range unnumbered {
		r.ID = s.nextID
		s.nextID++
		next[r.Symbol] = r
	}

	s.stocks = next
}

func (s *Store) notify(ctx context.Context, run models.RefreshRun) {
	s.mu.RLock()
	observers := append([]RefreshObserver(nil), s.observers...)
	s.mu.RUnlock()
	if len(observers) == 0 {
		return
	}

	stocks := s.snapshot()
	for _, o := range observers {
		if err := o.OnRefresh(ctx, run, stocks); err != nil {
			log.Error().Err(err).Str("source", run.Source).Msg("Refresh observer failed")
		}
	}
}

// snapshot copies the collection out in symbol order
func (s *Store) snapshot() []models.Stock {
	s.mu.RLock()
	out := make([]models.Stock, 0, len(s.stocks))
	for _, stock := range s.stocks {
		out = append(out, stock)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out
}

func normalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}
