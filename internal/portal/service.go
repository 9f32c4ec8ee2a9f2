// Package portal serves a logged-in client's dashboard, invoice detail,
// payment form and invoice downloads.
package portal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/fkhayef/invoicevista/internal/auth"
	"github.com/fkhayef/invoicevista/internal/export"
	"github.com/fkhayef/invoicevista/internal/logger"
	"github.com/fkhayef/invoicevista/internal/model"
	"github.com/fkhayef/invoicevista/internal/settlement"
	"github.com/fkhayef/invoicevista/internal/store"
)

// InvoiceView is an invoice as listed on the dashboard
type InvoiceView struct {
	Invoice       *model.Invoice
	DisplayStatus model.InvoiceStatus
	Notification  *model.Notification // nil when none was recorded
}

// Dashboard is the client's landing view
type Dashboard struct {
	Client   *model.Client
	Invoices []InvoiceView
}

// InvoiceDetail is one invoice with its payment history
type InvoiceDetail struct {
	Invoice       *model.Invoice
	Client        *model.Client
	Payments      []*model.Payment
	Totals        settlement.Totals
	DisplayStatus model.InvoiceStatus
	// CanPay is false once the invoice is paid
	CanPay bool
}

// Service reads the portal views for a session and accepts payments
type Service struct {
	store  store.Store
	engine *settlement.Engine
	now    func() time.Time
	log    zerolog.Logger
}

// NewService creates a new portal service
func NewService(s store.Store, engine *settlement.Engine) *Service {
	return &Service{
		store:  s,
		engine: engine,
		now:    time.Now,
		log:    logger.WithComponent("portal"),
	}
}

// Dashboard loads the session's client, its invoices and each invoice's
// notification.
func (s *Service) Dashboard(ctx context.Context, sess *auth.Session) (*Dashboard, error) {
	client, err := s.store.GetClient(ctx, sess.ClientID)
	if err != nil {
		return nil, fmt.Errorf("failed to load client %d: %w", sess.ClientID, err)
	}

	invoices, err := s.store.ListInvoicesByClient(ctx, sess.ClientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}

	now := s.now()
	views := make([]InvoiceView, 0, len(invoices))
	for _, inv := range invoices {
		view := InvoiceView{
			Invoice:       inv,
			DisplayStatus: inv.DisplayStatus(now),
		}

		n, err := s.store.GetNotificationByInvoice(ctx, inv.ID)
		switch {
		case err == nil:
			view.Notification = n
		case errors.Is(err, store.ErrNotFound):
		default:
			return nil, fmt.Errorf("failed to load notification for invoice %d: %w", inv.ID, err)
		}

		views = append(views, view)
	}

	return &Dashboard{Client: client, Invoices: views}, nil
}

// InvoiceDetail loads an invoice owned by the session's client. Another
// client's invoice is reported as store.ErrNotFound.
func (s *Service) InvoiceDetail(ctx context.Context, sess *auth.Session, invoiceID int64) (*InvoiceDetail, error) {
	inv, err := s.store.GetInvoice(ctx, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to load invoice %d: %w", invoiceID, err)
	}
	if inv.ClientID != sess.ClientID {
		s.log.Warn().
			Int64("invoice_id", invoiceID).
			Int64("client_id", sess.ClientID).
			Msg("Invoice requested by another client")
		return nil, fmt.Errorf("invoice %d: %w", invoiceID, store.ErrNotFound)
	}

	client, err := s.store.GetClient(ctx, inv.ClientID)
	if err != nil {
		return nil, fmt.Errorf("failed to load client %d: %w", inv.ClientID, err)
	}

	totals, payments, err := s.engine.Totals(ctx, inv)
	if err != nil {
		return nil, err
	}

	return &InvoiceDetail{
		Invoice:       inv,
		Client:        client,
		Payments:      payments,
		Totals:        totals,
		DisplayStatus: inv.DisplayStatus(s.now()),
		CanPay:        !inv.IsPaid(),
	}, nil
}

// SubmitPayment checks a payment against the invoice's remaining balance
// and records it. Nothing is written when a check fails.
func (s *Service) SubmitPayment(ctx context.Context, sess *auth.Session, invoiceID int64, amount decimal.Decimal, method model.PaymentMethod) (*settlement.Result, error) {
	detail, err := s.InvoiceDetail(ctx, sess, invoiceID)
	if err != nil {
		return nil, err
	}

	if !detail.CanPay {
		return nil, &settlement.ValidationError{Field: "invoice", Err: settlement.ErrInvoiceAlreadyPaid}
	}
	if err := settlement.ValidatePayment(amount, method); err != nil {
		return nil, err
	}
	if err := settlement.CheckWithinRemaining(amount, detail.Totals); err != nil {
		return nil, err
	}

	return s.engine.RecordPayment(ctx, invoiceID, amount, method, s.now())
}

// ExportInvoice writes the invoice as a PDF to w and returns its file name
func (s *Service) ExportInvoice(ctx context.Context, sess *auth.Session, invoiceID int64, w io.Writer) (string, error) {
	detail, err := s.InvoiceDetail(ctx, sess, invoiceID)
	if err != nil {
		return "", err
	}

	doc := export.Document{
		Invoice:  detail.Invoice,
		Client:   detail.Client,
		Payments: detail.Payments,
		Now:      s.now(),
	}
	if err := export.RenderPDF(w, doc); err != nil {
		return "", err
	}
	return export.FileName(invoiceID), nil
}
