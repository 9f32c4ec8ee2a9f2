package store

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fkhayef/invoicevista/internal/model"
)

// PasswordHasher turns a plaintext password into the stored hash
type PasswordHasher func(password string) (string, error)

func day(s string) time.Time {
	t, err := time.Parse(model.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

// Seed loads the demo clients, invoices, payments, notifications and users.
// It is a no-op when the demo user "client1" already exists.
func Seed(ctx context.Context, s Store, hash PasswordHasher) error {
	existing, err := s.FindCredentials(ctx, "client1")
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	return s.WithTx(ctx, func(tx Store) error {
		clients := []model.Client{
			{
				Name:    "John Doe",
				Email:   "john@example.com",
				Phone:   "123-456-7890",
				Address: "123 Main St, City, Country",
				Company: "ABC Corporation",
			},
			{
				Name:    "Jane Smith",
				Email:   "jane@example.com",
				Phone:   "987-654-3210",
				Address: "456 Oak Ave, Town, Country",
				Company: "XYZ Enterprises",
			},
		}
		clientIDs := make([]int64, len(clients))
		for i := range clients {
			id, err := tx.CreateClient(ctx, &clients[i])
			if err != nil {
				return fmt.Errorf("failed to seed client: %w", err)
			}
			clientIDs[i] = id
		}

		invoices := []model.Invoice{
			{ClientID: clientIDs[0], Amount: decimal.RequireFromString("1500.00"), IssueDate: day("2023-11-15"), DueDate: day("2023-12-15"), Status: model.InvoiceStatusPending, Description: "Website development services"},
			{ClientID: clientIDs[0], Amount: decimal.RequireFromString("800.00"), IssueDate: day("2023-11-01"), DueDate: day("2023-11-20"), Status: model.InvoiceStatusPaid, Description: "Logo design and branding"},
			{ClientID: clientIDs[0], Amount: decimal.RequireFromString("350.00"), IssueDate: day("2023-10-15"), DueDate: day("2023-10-30"), Status: model.InvoiceStatusOverdue, Description: "Server maintenance"},
			{ClientID: clientIDs[1], Amount: decimal.RequireFromString("2200.00"), IssueDate: day("2023-11-20"), DueDate: day("2023-12-20"), Status: model.InvoiceStatusPending, Description: "Mobile app development"},
		}
		invoiceIDs := make([]int64, len(invoices))
		for i := range invoices {
			id, err := tx.CreateInvoice(ctx, &invoices[i])
			if err != nil {
				return fmt.Errorf("failed to seed invoice: %w", err)
			}
			invoiceIDs[i] = id
		}

		payment := &model.Payment{
			InvoiceID:     invoiceIDs[1],
			AmountPaid:    decimal.RequireFromString("800.00"),
			PaymentMethod: model.PaymentMethodCreditCard,
			PaidAt:        time.Date(2023, time.November, 10, 14, 30, 0, 0, time.UTC),
		}
		if _, err := tx.InsertPayment(ctx, payment); err != nil {
			return fmt.Errorf("failed to seed payment: %w", err)
		}

		sent := []string{"2023-11-15", "2023-11-01", "2023-10-15"}
		for i, invoiceID := range invoiceIDs {
			n := &model.Notification{
				InvoiceID: invoiceID,
				Status:    model.NotificationStatusPending,
				Channel:   model.NotificationChannelEmail,
			}
			if i < len(sent) {
				d := day(sent[i])
				n.Status = model.NotificationStatusSent
				n.Date = &d
			}
			if _, err := tx.CreateNotification(ctx, n); err != nil {
				return fmt.Errorf("failed to seed notification: %w", err)
			}
		}

		users := []struct {
			username string
			password string
			clientID int64
		}{
			{"client1", "password1", clientIDs[0]},
			{"client2", "password2", clientIDs[1]},
		}
		for _, u := range users {
			h, err := hash(u.password)
			if err != nil {
				return fmt.Errorf("failed to hash seed password: %w", err)
			}
			if _, err := tx.CreateUser(ctx, &model.User{Username: u.username, ClientID: u.clientID}, h); err != nil {
				return fmt.Errorf("failed to seed user: %w", err)
			}
		}

		return nil
	})
}
