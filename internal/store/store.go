// Package store is the record store the portal reads clients, invoices,
// payments, notifications and users from.
//
// Every implementation reports a missing row as ErrNotFound (wrapped, match
// it with errors.Is) and any other failure as an *OpError.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/fkhayef/invoicevista/internal/model"
)

// Table names
const (
	TableClients       = "clients"
	TableInvoices      = "invoices"
	TablePayments      = "payments"
	TableNotifications = "notifications"
	TableUsers         = "users"
)

// Common errors
var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("record already exists")
)

// OpError reports a failed store operation
type OpError struct {
	Op    string // get, list, insert, update, begin, commit
	Table string
	Err   error
}

func (e *OpError) Error() string {
	if e.Table == "" {
		return fmt.Sprintf("store: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("store: %s %s: %v", e.Op, e.Table, e.Err)
}

func (e *OpError) Unwrap() error {
	return e.Err
}

// IsOpError reports whether err is (or wraps) an operation failure rather
// than a lookup miss.
func IsOpError(err error) bool {
	var opErr *OpError
	return errors.As(err, &opErr)
}

func notFound(table string, id any) error {
	return fmt.Errorf("%s %v: %w", table, id, ErrNotFound)
}

// Store is the record store contract shared by every implementation
type Store interface {
	GetClient(ctx context.Context, id int64) (*model.Client, error)
	CreateClient(ctx context.Context, c *model.Client) (int64, error)

	GetInvoice(ctx context.Context, id int64) (*model.Invoice, error)
	ListInvoicesByClient(ctx context.Context, clientID int64) ([]*model.Invoice, error)
	CreateInvoice(ctx context.Context, inv *model.Invoice) (int64, error)
	UpdateInvoiceStatus(ctx context.Context, id int64, status model.InvoiceStatus) error

	// ListPaymentsByInvoice returns payments oldest first
	ListPaymentsByInvoice(ctx context.Context, invoiceID int64) ([]*model.Payment, error)
	InsertPayment(ctx context.Context, p *model.Payment) (int64, error)

	// GetNotificationByInvoice returns the invoice's notification, if any
	GetNotificationByInvoice(ctx context.Context, invoiceID int64) (*model.Notification, error)
	CreateNotification(ctx context.Context, n *model.Notification) (int64, error)

	// FindCredentials returns every user registered under username
	FindCredentials(ctx context.Context, username string) ([]*model.Credential, error)
	CreateUser(ctx context.Context, u *model.User, passwordHash string) (int64, error)

	// WithTx runs fn against a transactional view of the store. If fn
	// returns an error nothing it wrote is kept. Nested calls join the
	// outer transaction.
	WithTx(ctx context.Context, fn func(tx Store) error) error
}
