package settlement

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/fkhayef/invoicevista/internal/logger"
	"github.com/fkhayef/invoicevista/internal/model"
	"github.com/fkhayef/invoicevista/internal/store"
)

// Engine records payments and derives the paid status of invoices.
// Totals are always recomputed from the full payment list.
type Engine struct {
	store store.Store
	log   zerolog.Logger
}

// NewEngine creates a new settlement engine
func NewEngine(s store.Store) *Engine {
	return &Engine{
		store: s,
		log:   logger.WithComponent("settlement"),
	}
}

// Totals loads an invoice's payments and sums them
func (e *Engine) Totals(ctx context.Context, invoice *model.Invoice) (Totals, []*model.Payment, error) {
	payments, err := e.store.ListPaymentsByInvoice(ctx, invoice.ID)
	if err != nil {
		return Totals{}, nil, fmt.Errorf("failed to list payments for invoice %d: %w", invoice.ID, err)
	}
	return ComputeTotals(invoice.Amount, payments), payments, nil
}

// ValidatePayment checks the fields of a payment request. It does not check
// the amount against the remaining balance; see CheckWithinRemaining.
func ValidatePayment(amount decimal.Decimal, method model.PaymentMethod) error {
	if !amount.IsPositive() {
		return &ValidationError{Field: "amount", Err: ErrNonPositiveAmount}
	}
	if !amount.Equal(amount.Round(2)) {
		return &ValidationError{Field: "amount", Err: ErrSubCentAmount}
	}
	if !method.Valid() {
		return &ValidationError{Field: "payment_method", Err: ErrUnknownMethod}
	}
	return nil
}

// CheckWithinRemaining rejects a payment larger than the remaining balance
func CheckWithinRemaining(amount decimal.Decimal, totals Totals) error {
	if amount.GreaterThan(totals.Remaining) {
		return &ValidationError{
			Field: "amount",
			Err:   fmt.Errorf("%w (maximum %s)", ErrExceedsRemaining, totals.Remaining.StringFixed(2)),
		}
	}
	return nil
}

// RecordPayment appends a payment and marks the invoice paid once the
// payments cover its amount.
//
// The caller is responsible for keeping amount within the remaining balance;
// RecordPayment accepts an overpayment. Either everything is written or
// nothing is.
func (e *Engine) RecordPayment(ctx context.Context, invoiceID int64, amount decimal.Decimal, method model.PaymentMethod, paidAt time.Time) (*Result, error) {
	if err := ValidatePayment(amount, method); err != nil {
		return nil, err
	}

	var result *Result
	err := e.store.WithTx(ctx, func(tx store.Store) error {
		invoice, err := tx.GetInvoice(ctx, invoiceID)
		if err != nil {
			return fmt.Errorf("failed to load invoice %d: %w", invoiceID, err)
		}

		payment := &model.Payment{
			InvoiceID:     invoiceID,
			AmountPaid:    amount,
			PaymentMethod: method,
			PaidAt:        paidAt,
		}
		id, err := tx.InsertPayment(ctx, payment)
		if err != nil {
			return fmt.Errorf("failed to append payment: %w", err)
		}
		payment.ID = id

		payments, err := tx.ListPaymentsByInvoice(ctx, invoiceID)
		if err != nil {
			return fmt.Errorf("failed to list payments for invoice %d: %w", invoiceID, err)
		}
		totals := ComputeTotals(invoice.Amount, payments)

		settled := false
		if totals.IsSettled(invoice.Amount) {
			settled, err = e.MarkPaid(ctx, tx, invoice)
			if err != nil {
				return err
			}
		}

		result = &Result{
			Payment: payment,
			Invoice: invoice,
			Totals:  totals,
			Settled: settled,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.log.Info().
		Int64("invoice_id", invoiceID).
		Int64("payment_id", result.Payment.ID).
		Str("amount", amount.StringFixed(2)).
		Str("status", string(result.Invoice.Status)).
		Msg("Payment recorded")

	return result, nil
}

// MarkPaid moves an invoice to paid. It writes nothing when the invoice is
// already paid and reports whether it changed the status.
func (e *Engine) MarkPaid(ctx context.Context, s store.Store, invoice *model.Invoice) (bool, error) {
	if invoice.IsPaid() {
		return false, nil
	}
	if err := s.UpdateInvoiceStatus(ctx, invoice.ID, model.InvoiceStatusPaid); err != nil {
		return false, fmt.Errorf("failed to mark invoice %d paid: %w", invoice.ID, err)
	}
	invoice.Status = model.InvoiceStatusPaid
	return true, nil
}
