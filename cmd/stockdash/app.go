package main

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/trogers1052/stock-dashboard/internal/api"
	"github.com/trogers1052/stock-dashboard/internal/cache"
	"github.com/trogers1052/stock-dashboard/internal/config"
	"github.com/trogers1052/stock-dashboard/internal/database"
	"github.com/trogers1052/stock-dashboard/internal/kafka"
	"github.com/trogers1052/stock-dashboard/internal/quotes"
	"github.com/trogers1052/stock-dashboard/internal/store"
)

// app holds the wired components shared by the serve and quotes commands
type app struct {
	cfg      *config.Config
	store    *store.Store
	cache    cache.Cache
	db       *database.DB
	producer *kafka.Producer
}

// newApp connects optional backends, builds the quote source and loads the
// initial collection. Optional backends that fail to connect are logged and skipped.
func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	a := &app{cfg: cfg}
	a.cache = newCache(ctx, cfg.Redis, cfg.Quotes.CacheTTL)

	source := buildSource(cfg.Quotes, a.cache)
	a.store = store.New(source, quotes.FallbackStocks)

	if cfg.Database.URL != "" {
		db, err := database.New(cfg.Database.URL)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := db.RunMigrations(); err != nil {
			db.Close()
			a.Close()
			return nil, err
		}
		a.db = db
		a.store.AddObserver(database.NewRecorder(db))
		log.Info().Msg("Database connected, refresh audit log enabled")
	}

	if len(cfg.Kafka.Brokers) > 0 {
		a.producer = kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		a.store.AddObserver(a.producer)
		log.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.Topic).Msg("Kafka producer enabled")
	}

	a.load()
	return a, nil
}

// load seeds the fallback set, or restores the last persisted collection when
// RESTORE_ON_START is enabled
func (a *app) load() {
	if a.db != nil && a.cfg.Database.RestoreOnStart {
		stocks, err := a.db.GetStockQuotes()
		if err != nil {
			log.Warn().Err(err).Msg("Failed to load persisted stocks")
		} else if a.store.Restore(stocks) > 0 {
			return
		}
	}
	a.store.Seed()
}

// history returns the audit log reader, or nil when no database is configured
func (a *app) history() api.HistoryReader {
	if a.db == nil {
		return nil
	}
	return a.db
}

// Close releases every connected backend
func (a *app) Close() {
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close Kafka producer")
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close database")
		}
	}
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close cache")
		}
	}
}

// newCache connects to Redis when configured. The in-memory fallback purges
// expired entries every cleanupInterval.
func newCache(ctx context.Context, cfg config.RedisConfig, cleanupInterval time.Duration) cache.Cache {
	if cfg.Addr == "" {
		return cache.NewMemory(cleanupInterval)
	}
	c, err := cache.NewRedis(ctx, cfg.Addr, cfg.Password, cfg.DB, serviceName+":")
	if err != nil {
		log.Warn().Err(err).Msg("Redis unavailable, using in-memory quote cache")
		return cache.NewMemory(cleanupInterval)
	}
	log.Info().Str("addr", cfg.Addr).Msg("Redis quote cache connected")
	return c
}

// buildSource picks the quote source from configuration
func buildSource(cfg config.QuotesConfig, c cache.Cache) quotes.Source {
	switch cfg.ResolvedSource() {
	case config.QuoteSourcePolygon:
		if cfg.PolygonAPIKey == "" {
			log.Warn().Msg("POLYGON_API_KEY is not set, refreshes will use fallback data")
		}
		log.Info().Dur("request_delay", cfg.RequestDelay).Msg("Using Polygon quote source")
		return quotes.NewPolygonSource(quotes.PolygonConfig{
			APIKey:       cfg.PolygonAPIKey,
			RequestDelay: cfg.RequestDelay,
			CacheTTL:     cfg.CacheTTL,
		}, quotes.NewPolygonClient(cfg.PolygonAPIKey), c, nil)
	default:
		log.Info().Msg("Using simulated quote source")
		return quotes.NewSimulator(quotes.DefaultSimulatorConfig(), nil, nil)
	}
}
