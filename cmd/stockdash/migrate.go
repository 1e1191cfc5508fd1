package main

import (
	"errors"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/trogers1052/stock-dashboard/internal/database"
)

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.cfg.Database.URL == "" {
				return errors.New("DATABASE_URL is not set")
			}

			db, err := database.New(opts.cfg.Database.URL)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := db.RunMigrations(); err != nil {
				return err
			}
			log.Info().Msg("Migrations applied")
			return nil
		},
	}
}
