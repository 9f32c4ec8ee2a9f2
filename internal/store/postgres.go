package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/fkhayef/invoicevista/internal/model"
)

// dbtx is satisfied by both *sql.DB and *sql.Tx
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Postgres is a Store backed by PostgreSQL
type Postgres struct {
	db   *sql.DB
	conn dbtx
	inTx bool
}

// NewPostgres creates a new Postgres store with database dependency injected
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db, conn: db}
}

// WithTx runs fn inside a single database transaction
func (p *Postgres) WithTx(ctx context.Context, fn func(tx Store) error) error {
	if p.inTx {
		return fn(p)
	}

	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return &OpError{Op: "begin", Err: err}
	}

	if err := fn(&Postgres{db: p.db, conn: tx, inTx: true}); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return &OpError{Op: "commit", Err: err}
	}
	return nil
}

// GetClient retrieves a client by its ID
func (p *Postgres) GetClient(ctx context.Context, id int64) (*model.Client, error) {
	query := `
		SELECT id, name, email, phone, address, company
		FROM clients
		WHERE id = $1
	`

	client := &model.Client{}
	err := p.conn.QueryRowContext(ctx, query, id).Scan(
		&client.ID,
		&client.Name,
		&client.Email,
		&client.Phone,
		&client.Address,
		&client.Company,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound("client", id)
		}
		return nil, &OpError{Op: "get", Table: TableClients, Err: err}
	}

	return client, nil
}

// CreateClient inserts a new client and returns its ID
func (p *Postgres) CreateClient(ctx context.Context, c *model.Client) (int64, error) {
	query := `
		INSERT INTO clients (name, email, phone, address, company)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	var id int64
	if err := p.conn.QueryRowContext(ctx, query, c.Name, c.Email, c.Phone, c.Address, c.Company).Scan(&id); err != nil {
		return 0, insertError(TableClients, err)
	}
	return id, nil
}

// GetInvoice retrieves an invoice by its ID
func (p *Postgres) GetInvoice(ctx context.Context, id int64) (*model.Invoice, error) {
	query := `
		SELECT id, client_id, amount, issue_date, due_date, status, description
		FROM invoices
		WHERE id = $1
	`

	invoice, err := scanInvoice(p.conn.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound("invoice", id)
		}
		return nil, &OpError{Op: "get", Table: TableInvoices, Err: err}
	}
	return invoice, nil
}

// ListInvoicesByClient retrieves every invoice owned by a client
func (p *Postgres) ListInvoicesByClient(ctx context.Context, clientID int64) ([]*model.Invoice, error) {
	query := `
		SELECT id, client_id, amount, issue_date, due_date, status, description
		FROM invoices
		WHERE client_id = $1
		ORDER BY id
	`

	rows, err := p.conn.QueryContext(ctx, query, clientID)
	if err != nil {
		return nil, &OpError{Op: "list", Table: TableInvoices, Err: err}
	}
	defer rows.Close()

	invoices := []*model.Invoice{}
	for rows.Next() {
		invoice, err := scanInvoice(rows)
		if err != nil {
			return nil, &OpError{Op: "list", Table: TableInvoices, Err: fmt.Errorf("failed to scan invoice: %w", err)}
		}
		invoices = append(invoices, invoice)
	}
	if err := rows.Err(); err != nil {
		return nil, &OpError{Op: "list", Table: TableInvoices, Err: err}
	}

	return invoices, nil
}

// CreateInvoice inserts a new invoice and returns its ID
func (p *Postgres) CreateInvoice(ctx context.Context, inv *model.Invoice) (int64, error) {
	query := `
		INSERT INTO invoices (client_id, amount, issue_date, due_date, status, description)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	var id int64
	err := p.conn.QueryRowContext(ctx, query,
		inv.ClientID, inv.Amount, inv.IssueDate, inv.DueDate, inv.Status, inv.Description,
	).Scan(&id)
	if err != nil {
		return 0, insertError(TableInvoices, err)
	}
	return id, nil
}

// UpdateInvoiceStatus sets the stored status of an invoice
func (p *Postgres) UpdateInvoiceStatus(ctx context.Context, id int64, status model.InvoiceStatus) error {
	query := `UPDATE invoices SET status = $2 WHERE id = $1`

	result, err := p.conn.ExecContext(ctx, query, id, status)
	if err != nil {
		return &OpError{Op: "update", Table: TableInvoices, Err: err}
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return &OpError{Op: "update", Table: TableInvoices, Err: fmt.Errorf("failed to get rows affected: %w", err)}
	}
	if rowsAffected == 0 {
		return notFound("invoice", id)
	}

	return nil
}

// ListPaymentsByInvoice retrieves every payment recorded against an invoice
func (p *Postgres) ListPaymentsByInvoice(ctx context.Context, invoiceID int64) ([]*model.Payment, error) {
	query := `
		SELECT id, invoice_id, amount_paid, payment_method, paid_at
		FROM payments
		WHERE invoice_id = $1
		ORDER BY paid_at, id
	`

	rows, err := p.conn.QueryContext(ctx, query, invoiceID)
	if err != nil {
		return nil, &OpError{Op: "list", Table: TablePayments, Err: err}
	}
	defer rows.Close()

	payments := []*model.Payment{}
	for rows.Next() {
		payment := &model.Payment{}
		if err := rows.Scan(
			&payment.ID,
			&payment.InvoiceID,
			&payment.AmountPaid,
			&payment.PaymentMethod,
			&payment.PaidAt,
		); err != nil {
			return nil, &OpError{Op: "list", Table: TablePayments, Err: fmt.Errorf("failed to scan payment: %w", err)}
		}
		payments = append(payments, payment)
	}
	if err := rows.Err(); err != nil {
		return nil, &OpError{Op: "list", Table: TablePayments, Err: err}
	}

	return payments, nil
}

// InsertPayment appends a payment and returns its ID
func (p *Postgres) InsertPayment(ctx context.Context, payment *model.Payment) (int64, error) {
	query := `
		INSERT INTO payments (invoice_id, amount_paid, payment_method, paid_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	var id int64
	err := p.conn.QueryRowContext(ctx, query,
		payment.InvoiceID, payment.AmountPaid, payment.PaymentMethod, payment.PaidAt,
	).Scan(&id)
	if err != nil {
		return 0, insertError(TablePayments, err)
	}
	return id, nil
}

// GetNotificationByInvoice retrieves the notification attached to an invoice
func (p *Postgres) GetNotificationByInvoice(ctx context.Context, invoiceID int64) (*model.Notification, error) {
	query := `
		SELECT id, invoice_id, status, sent_on, channel
		FROM notifications
		WHERE invoice_id = $1
		ORDER BY id
		LIMIT 1
	`

	notification := &model.Notification{}
	var sentOn sql.NullTime
	err := p.conn.QueryRowContext(ctx, query, invoiceID).Scan(
		&notification.ID,
		&notification.InvoiceID,
		&notification.Status,
		&sentOn,
		&notification.Channel,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound("notification for invoice", invoiceID)
		}
		return nil, &OpError{Op: "get", Table: TableNotifications, Err: err}
	}
	if sentOn.Valid {
		notification.Date = &sentOn.Time
	}

	return notification, nil
}

// CreateNotification inserts a notification and returns its ID
func (p *Postgres) CreateNotification(ctx context.Context, n *model.Notification) (int64, error) {
	query := `
		INSERT INTO notifications (invoice_id, status, sent_on, channel)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	var sentOn sql.NullTime
	if n.Date != nil {
		sentOn = sql.NullTime{Time: *n.Date, Valid: true}
	}

	var id int64
	if err := p.conn.QueryRowContext(ctx, query, n.InvoiceID, n.Status, sentOn, n.Channel).Scan(&id); err != nil {
		return 0, insertError(TableNotifications, err)
	}
	return id, nil
}

// FindCredentials retrieves every user row registered under a username
func (p *Postgres) FindCredentials(ctx context.Context, username string) ([]*model.Credential, error) {
	query := `
		SELECT id, username, client_id, password_hash
		FROM users
		WHERE username = $1
	`

	rows, err := p.conn.QueryContext(ctx, query, username)
	if err != nil {
		return nil, &OpError{Op: "list", Table: TableUsers, Err: err}
	}
	defer rows.Close()

	var credentials []*model.Credential
	for rows.Next() {
		c := &model.Credential{}
		if err := rows.Scan(&c.User.ID, &c.User.Username, &c.User.ClientID, &c.PasswordHash); err != nil {
			return nil, &OpError{Op: "list", Table: TableUsers, Err: fmt.Errorf("failed to scan user: %w", err)}
		}
		credentials = append(credentials, c)
	}
	if err := rows.Err(); err != nil {
		return nil, &OpError{Op: "list", Table: TableUsers, Err: err}
	}

	return credentials, nil
}

// CreateUser inserts a new user and returns its ID
func (p *Postgres) CreateUser(ctx context.Context, u *model.User, passwordHash string) (int64, error) {
	query := `
		INSERT INTO users (username, password_hash, client_id)
		VALUES ($1, $2, $3)
		RETURNING id
	`

	var id int64
	if err := p.conn.QueryRowContext(ctx, query, u.Username, passwordHash, u.ClientID).Scan(&id); err != nil {
		return 0, insertError(TableUsers, err)
	}
	return id, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanInvoice(row rowScanner) (*model.Invoice, error) {
	invoice := &model.Invoice{}
	err := row.Scan(
		&invoice.ID,
		&invoice.ClientID,
		&invoice.Amount,
		&invoice.IssueDate,
		&invoice.DueDate,
		&invoice.Status,
		&invoice.Description,
	)
	if err != nil {
		return nil, err
	}
	return invoice, nil
}

// insertError maps unique violations to ErrDuplicate
func insertError(table string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
		return fmt.Errorf("%s (%s): %w", table, pqErr.Constraint, ErrDuplicate)
	}
	return &OpError{Op: "insert", Table: table, Err: err}
}
