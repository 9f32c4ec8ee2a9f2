package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceStatus represents the stored status of an invoice
type InvoiceStatus string

const (
	InvoiceStatusPending InvoiceStatus = "pending"
	InvoiceStatusPaid    InvoiceStatus = "paid"
	InvoiceStatusOverdue InvoiceStatus = "overdue"
)

// DateLayout is the calendar date format used for invoice and payment dates
const DateLayout = "2006-01-02"

// Invoice represents an amount owed by a client
type Invoice struct {
	ID          int64           `json:"id"`
	ClientID    int64           `json:"client_id"`
	Amount      decimal.Decimal `json:"amount"`
	IssueDate   time.Time       `json:"issue_date"`
	DueDate     time.Time       `json:"due_date"`
	Status      InvoiceStatus   `json:"status"`
	Description string          `json:"description"`
}

// IsPaid reports whether the invoice has been settled
func (i *Invoice) IsPaid() bool {
	return i.Status == InvoiceStatusPaid
}

// DisplayStatus derives the status shown to the client.
// A pending invoice whose due date lies before today reads as overdue; the
// result is never written back to the store.
func DisplayStatus(status InvoiceStatus, dueDate, now time.Time) InvoiceStatus {
	if status != InvoiceStatusPending {
		return status
	}
	today := truncateToDay(now)
	if truncateToDay(dueDate.In(now.Location())).Before(today) {
		return InvoiceStatusOverdue
	}
	return status
}

// DisplayStatus is a convenience wrapper around the package-level DisplayStatus
func (i *Invoice) DisplayStatus(now time.Time) InvoiceStatus {
	return DisplayStatus(i.Status, i.DueDate, now)
}

func truncateToDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
