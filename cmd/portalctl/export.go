package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/fkhayef/invoicevista/internal/app"
	"github.com/fkhayef/invoicevista/internal/config"
	"github.com/fkhayef/invoicevista/internal/export"
	"github.com/fkhayef/invoicevista/internal/logger"
	"github.com/fkhayef/invoicevista/internal/store"
)

var exportOutput string

var exportCmd = &cobra.Command{
	Use:   "export <invoice-id>",
	Short: "Write an invoice as PDF",
	Example: `  # Write invoice-0001.pdf to the current directory
  portalctl export 1

  # Choose the output file, or - for stdout
  portalctl export 1 -o /tmp/inv.pdf`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil || id <= 0 {
			return fmt.Errorf("invalid invoice id %q", args[0])
		}

		out := exportOutput
		if out == "" {
			out = export.FileName(id)
		}
		return runExport(cmd, id, out)
	},
}

// runExport renders invoice id to out, where "-" is the command's stdout.
// Log lines are moved to stderr so they cannot mix with the PDF bytes.
func runExport(cmd *cobra.Command, id int64, out string) error {
	ctx := cmd.Context()
	if out == "-" && cfg.GetLoggerConfig().ToStdout() {
		if err := logger.SetupWriter(cfg.GetLoggerConfig(), cmd.ErrOrStderr()); err != nil {
			return err
		}
	}

	log := logger.WithComponent("export")
	s, err := app.OpenStore(ctx, cfg, false, log)
	if err != nil {
		return err
	}
	defer s.Close()

	// a fresh memory store only ever holds the demo data
	if cfg.StoreDriver == config.StoreDriverMemory {
		log.Warn().Msg("Exporting from the demo data set")
		if err := app.Seed(ctx, s, cfg); err != nil {
			return err
		}
	}

	doc, err := loadDocument(ctx, s, id)
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("invoice %d not found", id)
	}
	if err != nil {
		return err
	}

	var w io.Writer = cmd.OutOrStdout()
	if out != "-" {
		f, err := os.Create(out)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", out, err)
		}
		defer f.Close()
		w = f
	}

	if err := export.RenderPDF(w, doc); err != nil {
		return err
	}
	log.Info().Int64("invoice_id", id).Str("output", out).Msg("Invoice exported")
	return nil
}

func loadDocument(ctx context.Context, s store.Store, id int64) (export.Document, error) {
	inv, err := s.GetInvoice(ctx, id)
	if err != nil {
		return export.Document{}, err
	}
	client, err := s.GetClient(ctx, inv.ClientID)
	if err != nil {
		return export.Document{}, err
	}
	payments, err := s.ListPaymentsByInvoice(ctx, id)
	if err != nil {
		return export.Document{}, err
	}

	return export.Document{
		Invoice:  inv,
		Client:   client,
		Payments: payments,
		Now:      time.Now(),
	}, nil
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (default invoice-NNNN.pdf, - for stdout)")
}
