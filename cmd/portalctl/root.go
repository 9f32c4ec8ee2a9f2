package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/fkhayef/invoicevista/internal/config"
	"github.com/fkhayef/invoicevista/internal/logger"
)

var version = "1.0.0"

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "portalctl",
	Short: "Operator commands for the InvoiceVista portal",
	Long: `portalctl manages the InvoiceVista record store outside the HTTP
server: apply the schema, load the demo clients and export invoices as PDF.

Configuration is read from the environment (and .env), the same way the
API server reads it.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}
		return logger.Setup(cfg.GetLoggerConfig())
	},
}

// Execute runs the root command
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		log := logger.WithComponent("portalctl")
		log.Error().Err(err).Msg("Command execution failed")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(migrateCmd, seedCmd, exportCmd)
}
