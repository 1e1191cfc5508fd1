package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/trogers1052/stock-dashboard/internal/api"
	"github.com/trogers1052/stock-dashboard/internal/kafka"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(opts *rootOptions) *cobra.Command {
	var skipInitialRefresh bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, opts, skipInitialRefresh)
		},
	}

	cmd.Flags().BoolVar(&skipInitialRefresh, "skip-initial-refresh", false, "serve the seeded data without refreshing at startup")
	return cmd
}

func runServe(ctx context.Context, opts *rootOptions, skipInitialRefresh bool) error {
	cfg := opts.cfg
	log.Info().Str("service", serviceName).Msg("Starting stock dashboard")

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	if !skipInitialRefresh {
		a.store.RefreshWithTimeout(ctx, cfg.Quotes.RefreshTimeout)
	}

	handler := api.NewHandler(a.store, a.history(), cfg.Quotes.RefreshTimeout)
	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      api.NewServerHandler(api.SetupRoutes(handler), cfg.Server.AllowedOrigins),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().Str("address", server.Addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("Shutdown signal received, stopping server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if cfg.Quotes.RefreshInterval > 0 {
		g.Go(func() error {
			a.store.StartAutoRefresh(gctx, cfg.Quotes.RefreshInterval, cfg.Quotes.RefreshTimeout)
			return nil
		})
	}

	if len(cfg.Kafka.Brokers) > 0 && cfg.Kafka.RefreshTopic != "" {
		consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.RefreshTopic, cfg.Kafka.GroupID, a.store, cfg.Quotes.RefreshTimeout)
		g.Go(func() error {
			return consumer.Start(gctx)
		})
	}

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("Server stopped with error")
		return err
	}

	log.Info().Msg("Stock dashboard stopped")
	return nil
}
