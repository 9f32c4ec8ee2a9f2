package portal

import (
	"github.com/shopspring/decimal"

	"github.com/fkhayef/invoicevista/internal/export"
	"github.com/fkhayef/invoicevista/internal/model"
	"github.com/fkhayef/invoicevista/internal/settlement"
)

// SubmitPaymentRequest represents the payment form
type SubmitPaymentRequest struct {
	Amount        decimal.Decimal `json:"amount" swaggertype:"string" example:"250.00"`
	PaymentMethod string          `json:"payment_method" validate:"required,payment_method" example:"credit card"`
}

// ClientResponse represents a client profile
type ClientResponse struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	Company string `json:"company"`
}

// NotificationResponse represents an invoice notification badge
type NotificationResponse struct {
	Status  string  `json:"status"`
	Channel string  `json:"channel"`
	Date    *string `json:"date,omitempty"`
}

// InvoiceResponse represents an invoice
type InvoiceResponse struct {
	ID              int64                 `json:"id"`
	Number          string                `json:"number"`
	ClientID        int64                 `json:"client_id"`
	Amount          string                `json:"amount"`
	AmountFormatted string                `json:"amount_formatted"`
	IssueDate       string                `json:"issue_date"`
	DueDate         string                `json:"due_date"`
	Status          string                `json:"status"`
	DisplayStatus   string                `json:"display_status"`
	Description     string                `json:"description"`
	Notification    *NotificationResponse `json:"notification,omitempty"`
}

// PaymentResponse represents a recorded payment
type PaymentResponse struct {
	ID            int64  `json:"id"`
	InvoiceID     int64  `json:"invoice_id"`
	AmountPaid    string `json:"amount_paid"`
	PaymentMethod string `json:"payment_method"`
	Date          string `json:"date"`
	Time          string `json:"time"`
}

// TotalsResponse represents the payment summary of an invoice
type TotalsResponse struct {
	TotalPaid  string `json:"total_paid"`
	Remaining  string `json:"remaining"`
	Percentage string `json:"percentage"`
}

// DashboardResponse represents the dashboard view
type DashboardResponse struct {
	Client   *ClientResponse    `json:"client"`
	Invoices []*InvoiceResponse `json:"invoices"`
}

// InvoiceDetailResponse represents the invoice detail view
type InvoiceDetailResponse struct {
	Invoice  *InvoiceResponse   `json:"invoice"`
	Client   *ClientResponse    `json:"client"`
	Payments []*PaymentResponse `json:"payments"`
	Totals   *TotalsResponse    `json:"totals"`
	CanPay   bool               `json:"can_pay"`
}

// PaymentHistoryResponse represents an invoice's payments and totals
type PaymentHistoryResponse struct {
	Payments []*PaymentResponse `json:"payments"`
	Totals   *TotalsResponse    `json:"totals"`
}

// PaymentResultResponse is returned after a payment is recorded
type PaymentResultResponse struct {
	Payment *PaymentResponse `json:"payment"`
	Invoice *InvoiceResponse `json:"invoice"`
	Totals  *TotalsResponse  `json:"totals"`
	Settled bool             `json:"settled"`
}

func toClientResponse(c *model.Client) *ClientResponse {
	return &ClientResponse{
		ID:      c.ID,
		Name:    c.Name,
		Email:   c.Email,
		Phone:   c.Phone,
		Address: c.Address,
		Company: c.Company,
	}
}

func toNotificationResponse(n *model.Notification) *NotificationResponse {
	if n == nil {
		return nil
	}
	resp := &NotificationResponse{
		Status:  string(n.Status),
		Channel: string(n.Channel),
	}
	if n.Date != nil {
		d := n.Date.Format(model.DateLayout)
		resp.Date = &d
	}
	return resp
}

func toInvoiceResponse(inv *model.Invoice, display model.InvoiceStatus) *InvoiceResponse {
	return &InvoiceResponse{
		ID:              inv.ID,
		Number:          export.InvoiceNumber(inv.ID),
		ClientID:        inv.ClientID,
		Amount:          inv.Amount.StringFixed(2),
		AmountFormatted: export.FormatCurrency(inv.Amount),
		IssueDate:       inv.IssueDate.Format(model.DateLayout),
		DueDate:         inv.DueDate.Format(model.DateLayout),
		Status:          string(inv.Status),
		DisplayStatus:   string(display),
		Description:     inv.Description,
	}
}

func toPaymentResponse(p *model.Payment) *PaymentResponse {
	return &PaymentResponse{
		ID:            p.ID,
		InvoiceID:     p.InvoiceID,
		AmountPaid:    p.AmountPaid.StringFixed(2),
		PaymentMethod: string(p.PaymentMethod),
		Date:          p.Date(),
		Time:          p.Time(),
	}
}

func toPaymentResponses(payments []*model.Payment) []*PaymentResponse {
	out := make([]*PaymentResponse, len(payments))
	for i, p := range payments {
		out[i] = toPaymentResponse(p)
	}
	return out
}

func toTotalsResponse(t settlement.Totals) *TotalsResponse {
	return &TotalsResponse{
		TotalPaid:  t.TotalPaid.StringFixed(2),
		Remaining:  t.Remaining.StringFixed(2),
		Percentage: t.Percentage.StringFixed(2),
	}
}

// ToResponse converts a Dashboard to its DTO
func (d *Dashboard) ToResponse() *DashboardResponse {
	invoices := make([]*InvoiceResponse, len(d.Invoices))
	for i, v := range d.Invoices {
		invoices[i] = toInvoiceResponse(v.Invoice, v.DisplayStatus)
		invoices[i].Notification = toNotificationResponse(v.Notification)
	}
	return &DashboardResponse{
		Client:   toClientResponse(d.Client),
		Invoices: invoices,
	}
}

// ToResponse converts an InvoiceDetail to its DTO
func (d *InvoiceDetail) ToResponse() *InvoiceDetailResponse {
	return &InvoiceDetailResponse{
		Invoice:  toInvoiceResponse(d.Invoice, d.DisplayStatus),
		Client:   toClientResponse(d.Client),
		Payments: toPaymentResponses(d.Payments),
		Totals:   toTotalsResponse(d.Totals),
		CanPay:   d.CanPay,
	}
}
