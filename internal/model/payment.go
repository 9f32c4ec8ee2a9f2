package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod represents how a payment was made
type PaymentMethod string

const (
	PaymentMethodCreditCard   PaymentMethod = "credit card"
	PaymentMethodBankTransfer PaymentMethod = "bank transfer"
	PaymentMethodUPI          PaymentMethod = "UPI"
)

// PaymentMethods lists every accepted payment method
var PaymentMethods = []PaymentMethod{
	PaymentMethodCreditCard,
	PaymentMethodBankTransfer,
	PaymentMethodUPI,
}

// Valid reports whether m is one of the accepted payment methods
func (m PaymentMethod) Valid() bool {
	for _, known := range PaymentMethods {
		if m == known {
			return true
		}
	}
	return false
}

// ParsePaymentMethod converts a raw string into a PaymentMethod
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	m := PaymentMethod(s)
	if !m.Valid() {
		return "", fmt.Errorf("unknown payment method: %q", s)
	}
	return m, nil
}

// TimeLayout is the wall-clock format a payment's time is shown in
const TimeLayout = "15:04"

// Payment represents a single transfer recorded against an invoice.
// Payments are append-only.
type Payment struct {
	ID            int64           `json:"id"`
	InvoiceID     int64           `json:"invoice_id"`
	AmountPaid    decimal.Decimal `json:"amount_paid"`
	PaymentMethod PaymentMethod   `json:"payment_method"`
	PaidAt        time.Time       `json:"paid_at"`
}

// Date returns the payment's calendar date
func (p *Payment) Date() string {
	return p.PaidAt.Format(DateLayout)
}

// Time returns the payment's wall-clock time
func (p *Payment) Time() string {
	return p.PaidAt.Format(TimeLayout)
}
