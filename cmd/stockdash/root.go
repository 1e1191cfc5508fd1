package main

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/trogers1052/stock-dashboard/internal/config"
	"github.com/trogers1052/stock-dashboard/internal/logger"
)

const serviceName = "stock-dashboard"

type rootOptions struct {
	envFile  string
	logLevel string
	cfg      *config.Config
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:          "stockdash",
		Short:        "Stock dashboard backend",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.init()
		},
	}

	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", "", "additional .env file to load before the environment")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "override LOG_LEVEL")

	cmd.AddCommand(newServeCmd(opts))
	cmd.AddCommand(newQuotesCmd(opts))
	cmd.AddCommand(newMigrateCmd(opts))

	return cmd
}

func (o *rootOptions) init() error {
	if o.envFile != "" {
		if err := godotenv.Load(o.envFile); err != nil {
			return fmt.Errorf("failed to load %s: %w", o.envFile, err)
		}
	}

	o.cfg = config.Load()
	if o.logLevel != "" {
		o.cfg.Logging.Level = o.logLevel
	}

	return logger.Init(logger.Config{
		Level:       o.cfg.Logging.Level,
		Format:      o.cfg.Logging.Format,
		FilePath:    o.cfg.Logging.FilePath,
		ServiceName: serviceName,
	})
}
