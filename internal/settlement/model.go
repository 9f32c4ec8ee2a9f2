package settlement

import (
	"github.com/shopspring/decimal"

	"github.com/fkhayef/invoicevista/internal/model"
)

// Totals is the aggregate of every payment recorded against an invoice
type Totals struct {
	TotalPaid  decimal.Decimal `json:"total_paid"`
	Remaining  decimal.Decimal `json:"remaining"`  // never negative
	Percentage decimal.Decimal `json:"percentage"` // not clamped, exceeds 100 when overpaid
}

// Result is the outcome of recording a payment
type Result struct {
	Payment *model.Payment
	Invoice *model.Invoice // status as stored after the payment
	Totals  Totals
	// Settled is true when this payment moved the invoice to paid
	Settled bool
}

var hundred = decimal.NewFromInt(100)

// ComputeTotals sums payments against an invoice amount.
// Payment order does not matter.
func ComputeTotals(invoiceAmount decimal.Decimal, payments []*model.Payment) Totals {
	totalPaid := decimal.Zero
	for _, p := range payments {
		totalPaid = totalPaid.Add(p.AmountPaid)
	}

	remaining := invoiceAmount.Sub(totalPaid)
	if remaining.IsNegative() {
		remaining = decimal.Zero
	}

	percentage := decimal.Zero
	if invoiceAmount.IsPositive() {
		percentage = totalPaid.Mul(hundred).Div(invoiceAmount)
	}

	return Totals{
		TotalPaid:  totalPaid,
		Remaining:  remaining,
		Percentage: percentage,
	}
}

// IsSettled reports whether the payments cover the invoice amount
func (t Totals) IsSettled(invoiceAmount decimal.Decimal) bool {
	return t.TotalPaid.GreaterThanOrEqual(invoiceAmount)
}
