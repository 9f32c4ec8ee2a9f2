// Package export renders invoices as downloadable documents.
package export

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/fkhayef/invoicevista/internal/model"
	"github.com/fkhayef/invoicevista/internal/settlement"
)

// Brand is printed at the top of every document
const Brand = "InvoiceVista"

// Document is everything printed on an invoice
type Document struct {
	Invoice  *model.Invoice
	Client   *model.Client
	Payments []*model.Payment
	Now      time.Time
}

type section struct {
	heading string
	lines   []string
}

func (d Document) sections() []section {
	inv := d.Invoice
	totals := settlement.ComputeTotals(inv.Amount, d.Payments)

	billed := []string{}
	if d.Client != nil {
		for _, s := range []string{d.Client.Name, d.Client.Company, d.Client.Address} {
			if s != "" {
				billed = append(billed, s)
			}
		}
	}

	payments := make([]*model.Payment, len(d.Payments))
	copy(payments, d.Payments)
	sort.SliceStable(payments, func(i, j int) bool {
		return payments[i].PaidAt.Before(payments[j].PaidAt)
	})
	history := make([]string, 0, len(payments))
	for _, p := range payments {
		history = append(history, fmt.Sprintf("%s %s - %s via %s", p.Date(), p.Time(), FormatCurrency(p.AmountPaid), p.PaymentMethod))
	}
	if len(history) == 0 {
		history = append(history, "No payments recorded")
	}

	return []section{
		{lines: []string{
			"Invoice " + InvoiceNumber(inv.ID),
			"Status: " + strings.ToUpper(string(inv.DisplayStatus(d.Now))),
		}},
		{heading: "Billed To", lines: billed},
		{lines: []string{
			"Issue Date: " + inv.IssueDate.Format(model.DateLayout),
			"Due Date: " + inv.DueDate.Format(model.DateLayout),
		}},
		{heading: "Description", lines: []string{inv.Description}},
		{lines: []string{
			"Total: " + FormatCurrency(inv.Amount),
			"Paid: " + FormatCurrency(totals.TotalPaid),
			"Remaining: " + FormatCurrency(totals.Remaining),
		}},
		{heading: "Payment History", lines: history},
	}
}

// Lines returns the document's text in print order
func Lines(d Document) []string {
	lines := []string{Brand}
	for _, s := range d.sections() {
		if s.heading != "" {
			lines = append(lines, s.heading)
		}
		lines = append(lines, s.lines...)
	}
	return lines
}

// RenderPDF writes the document as an A4 PDF
func RenderPDF(w io.Writer, d Document) error {
	if d.Invoice == nil {
		return fmt.Errorf("export: document has no invoice")
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(Brand+" "+InvoiceNumber(d.Invoice.ID), false)
	pdf.SetCreator(Brand, false)
	pdf.SetCreationDate(d.Now)
	pdf.SetMargins(20, 20, 20)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 20)
	pdf.Cell(0, 12, Brand)
	pdf.Ln(14)

	for _, s := range d.sections() {
		if s.heading != "" {
			pdf.SetFont("Helvetica", "B", 12)
			pdf.Cell(0, 7, s.heading)
			pdf.Ln(7)
		}
		pdf.SetFont("Helvetica", "", 11)
		for _, line := range s.lines {
			pdf.MultiCell(0, 6, line, "", "L", false)
		}
		pdf.Ln(4)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("export: failed to write pdf: %w", err)
	}
	return nil
}
