package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fkhayef/invoicevista/internal/config"
	"github.com/fkhayef/invoicevista/internal/database"
	"github.com/fkhayef/invoicevista/internal/logger"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the database schema to DATABASE_URL",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.StoreDriver != config.StoreDriverPostgres {
			return fmt.Errorf("migrate needs STORE_DRIVER=postgres, got %q", cfg.StoreDriver)
		}

		db, err := database.NewPostgresConnection(cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer db.Close()

		log := logger.WithComponent("migrate")
		if err := database.Migrate(cmd.Context(), db, log); err != nil {
			return err
		}
		log.Info().Msg("Schema is up to date")
		return nil
	},
}
