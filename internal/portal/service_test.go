package portal

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"

	"github.com/fkhayef/invoicevista/internal/auth"
	"github.com/fkhayef/invoicevista/internal/model"
	"github.com/fkhayef/invoicevista/internal/settlement"
	"github.com/fkhayef/invoicevista/internal/store"
)

var fixedNow = time.Date(2023, 12, 1, 10, 15, 0, 0, time.UTC)

type ServiceTestSuite struct {
	suite.Suite
	ctx     context.Context
	store   *store.Memory
	service *Service
	client1 *auth.Session
	client2 *auth.Session
}

func (s *ServiceTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = store.NewMemory()
	s.Require().NoError(store.Seed(s.ctx, s.store, auth.Hasher(bcrypt.MinCost)))

	s.service = NewService(s.store, settlement.NewEngine(s.store))
	s.service.now = func() time.Time { return fixedNow }

	s.client1 = &auth.Session{Token: "t1", UserID: 1, ClientID: 1, Username: "client1"}
	s.client2 = &auth.Session{Token: "t2", UserID: 2, ClientID: 2, Username: "client2"}
}

func (s *ServiceTestSuite) payments(invoiceID int64) []*model.Payment {
	payments, err := s.store.ListPaymentsByInvoice(s.ctx, invoiceID)
	s.Require().NoError(err)
	return payments
}

func (s *ServiceTestSuite) TestDashboard() {
	dash, err := s.service.Dashboard(s.ctx, s.client1)
	s.Require().NoError(err)

	s.Equal("John Doe", dash.Client.Name)
	s.Require().Len(dash.Invoices, 3)

	s.Equal(model.InvoiceStatusPending, dash.Invoices[0].DisplayStatus)
	s.Equal(model.InvoiceStatusPaid, dash.Invoices[1].DisplayStatus)
	s.Equal(model.InvoiceStatusOverdue, dash.Invoices[2].DisplayStatus)

	for _, v := range dash.Invoices {
		s.Require().NotNil(v.Notification)
		s.Equal(model.NotificationStatusSent, v.Notification.Status)
	}
}

func (s *ServiceTestSuite) TestDashboardDerivesOverdueWithoutWriting() {
	s.service.now = func() time.Time { return time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC) }

	dash, err := s.service.Dashboard(s.ctx, s.client2)
	s.Require().NoError(err)
	s.Require().Len(dash.Invoices, 1)
	s.Equal(model.InvoiceStatusOverdue, dash.Invoices[0].DisplayStatus)
	s.Equal(model.NotificationStatusPending, dash.Invoices[0].Notification.Status)

	inv, err := s.store.GetInvoice(s.ctx, 4)
	s.Require().NoError(err)
	s.Equal(model.InvoiceStatusPending, inv.Status)
}

func (s *ServiceTestSuite) TestInvoiceDetailWithoutPayments() {
	detail, err := s.service.InvoiceDetail(s.ctx, s.client1, 1)
	s.Require().NoError(err)

	s.Empty(detail.Payments)
	s.True(detail.Totals.Remaining.Equal(decimal.NewFromInt(1500)))
	s.True(detail.Totals.Percentage.IsZero())
	s.True(detail.CanPay)
	s.Equal("ABC Corporation", detail.Client.Company)
}

func (s *ServiceTestSuite) TestInvoiceDetailOfPaidInvoice() {
	detail, err := s.service.InvoiceDetail(s.ctx, s.client1, 2)
	s.Require().NoError(err)

	s.Require().Len(detail.Payments, 1)
	s.True(detail.Totals.Remaining.IsZero())
	s.True(detail.Totals.Percentage.Equal(decimal.NewFromInt(100)))
	s.False(detail.CanPay)
}

func (s *ServiceTestSuite) TestOtherClientsInvoiceIsNotFound() {
	_, err := s.service.InvoiceDetail(s.ctx, s.client2, 1)
	s.ErrorIs(err, store.ErrNotFound)

	_, err = s.service.InvoiceDetail(s.ctx, s.client1, 99)
	s.ErrorIs(err, store.ErrNotFound)
}

func (s *ServiceTestSuite) TestSubmitPartialThenFullPayment() {
	result, err := s.service.SubmitPayment(s.ctx, s.client1, 1, decimal.NewFromInt(500), model.PaymentMethodBankTransfer)
	s.Require().NoError(err)
	s.Equal(model.InvoiceStatusPending, result.Invoice.Status)
	s.True(result.Totals.Remaining.Equal(decimal.NewFromInt(1000)))
	s.Equal(fixedNow, result.Payment.PaidAt)

	result, err = s.service.SubmitPayment(s.ctx, s.client1, 1, decimal.NewFromInt(1000), model.PaymentMethodUPI)
	s.Require().NoError(err)
	s.True(result.Settled)
	s.Equal(model.InvoiceStatusPaid, result.Invoice.Status)
	s.Len(s.payments(1), 2)
}

func (s *ServiceTestSuite) TestSubmitRejectsAmountAboveRemaining() {
	_, err := s.service.SubmitPayment(s.ctx, s.client1, 1, decimal.NewFromInt(2000), model.PaymentMethodCreditCard)
	s.ErrorIs(err, settlement.ErrExceedsRemaining)
	s.True(settlement.IsValidationError(err))
	s.Empty(s.payments(1))
}

func (s *ServiceTestSuite) TestSubmitRejectsInvalidFields() {
	_, err := s.service.SubmitPayment(s.ctx, s.client1, 1, decimal.Zero, model.PaymentMethodCreditCard)
	s.ErrorIs(err, settlement.ErrNonPositiveAmount)

	_, err = s.service.SubmitPayment(s.ctx, s.client1, 1, decimal.NewFromInt(10), model.PaymentMethod("cheque"))
	s.ErrorIs(err, settlement.ErrUnknownMethod)

	_, err = s.service.SubmitPayment(s.ctx, s.client1, 1, decimal.RequireFromString("0.001"), model.PaymentMethodUPI)
	s.ErrorIs(err, settlement.ErrSubCentAmount)

	s.Empty(s.payments(1))
}

func (s *ServiceTestSuite) TestSubmitOnPaidInvoiceIsRejected() {
	_, err := s.service.SubmitPayment(s.ctx, s.client1, 2, decimal.NewFromInt(1), model.PaymentMethodUPI)
	s.ErrorIs(err, settlement.ErrInvoiceAlreadyPaid)
	s.Len(s.payments(2), 1)
}

func (s *ServiceTestSuite) TestSubmitOnOtherClientsInvoiceIsNotFound() {
	_, err := s.service.SubmitPayment(s.ctx, s.client1, 4, decimal.NewFromInt(1), model.PaymentMethodUPI)
	s.ErrorIs(err, store.ErrNotFound)
	s.Empty(s.payments(4))
}

func (s *ServiceTestSuite) TestExportInvoice() {
	var buf bytes.Buffer
	name, err := s.service.ExportInvoice(s.ctx, s.client1, 2, &buf)
	s.Require().NoError(err)
	s.Equal("invoice-0002.pdf", name)
	s.True(bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))

	buf.Reset()
	_, err = s.service.ExportInvoice(s.ctx, s.client2, 2, &buf)
	s.ErrorIs(err, store.ErrNotFound)
	s.Zero(buf.Len())
}

func TestServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ServiceTestSuite))
}
