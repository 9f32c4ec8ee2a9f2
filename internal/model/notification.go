package model

import "time"

// NotificationStatus represents the delivery state of an invoice notification
type NotificationStatus string

const (
	NotificationStatusSent    NotificationStatus = "sent"
	NotificationStatusPending NotificationStatus = "pending"
)

// NotificationChannel represents how a notification is delivered
type NotificationChannel string

const (
	NotificationChannelEmail NotificationChannel = "email"
	NotificationChannelSMS   NotificationChannel = "sms"
)

// Notification represents the delivery badge attached to an invoice
type Notification struct {
	ID        int64               `json:"id"`
	InvoiceID int64               `json:"invoice_id"`
	Status    NotificationStatus  `json:"status"`
	Date      *time.Time          `json:"date,omitempty"` // nil until sent
	Channel   NotificationChannel `json:"channel"`
}
