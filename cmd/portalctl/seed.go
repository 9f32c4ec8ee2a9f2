package main

import (
	"github.com/spf13/cobra"

	"github.com/fkhayef/invoicevista/internal/app"
	"github.com/fkhayef/invoicevista/internal/logger"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the demo clients, invoices, payments and users",
	Long: `Load the demo data set: two clients, four invoices, one payment, four
notifications and the users client1/password1 and client2/password2.
Running it again is a no-op.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		log := logger.WithComponent("seed")

		s, err := app.OpenStore(cmd.Context(), cfg, true, log)
		if err != nil {
			return err
		}
		defer s.Close()

		if err := app.Seed(cmd.Context(), s, cfg); err != nil {
			return err
		}
		log.Info().Msg("Demo data loaded")
		return nil
	},
}
