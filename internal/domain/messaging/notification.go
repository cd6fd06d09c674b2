package messaging

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ledgerly/backend/internal/domain/shared"
)

// NotificationType classifies a notification
type NotificationType string

const (
	NotificationMessageReceived  NotificationType = "MESSAGE_RECEIVED"
	NotificationInvoiceConfirmed NotificationType = "INVOICE_CONFIRMED"
	NotificationInvoicePaid      NotificationType = "INVOICE_PAID"
	NotificationPaymentRecorded  NotificationType = "PAYMENT_RECORDED"
	NotificationSystem           NotificationType = "SYSTEM"
)

// IsValid checks the notification type
func (t NotificationType) IsValid() bool {
	switch t {
	case NotificationMessageReceived, NotificationInvoiceConfirmed, NotificationInvoicePaid,
		NotificationPaymentRecorded, NotificationSystem:
		return true
	}
	return false
}

// EntityRef points a notification at the record it is about
type EntityRef struct {
	Type string
	ID   uuid.UUID
}

// Notification is an in-app notice for one user
type Notification struct {
	shared.TenantEntity
	UserID     uuid.UUID
	Type       NotificationType
	Title      string
	Body       string
	EntityType string
	EntityID   *uuid.UUID
	ReadAt     *time.Time
}

// NewNotification creates an unread notification
func NewNotification(tenantID, userID uuid.UUID, typ NotificationType, title, body string, ref *EntityRef) (*Notification, error) {
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "Notification recipient is required")
	}
	if !typ.IsValid() {
		return nil, shared.NewDomainError("INVALID_TYPE", "Unknown notification type")
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, shared.NewDomainError("INVALID_TITLE", "Title cannot be empty")
	}
	if len(title) > 200 {
		title = title[:200]
	}

	n := &Notification{
		TenantEntity: shared.NewTenantEntity(tenantID),
		UserID:       userID,
		Type:         typ,
		Title:        title,
		Body:         strings.TrimSpace(body),
	}
	if ref != nil && ref.ID != uuid.Nil {
		id := ref.ID
		n.EntityType = ref.Type
		n.EntityID = &id
	}
	return n, nil
}

// MarkRead marks the notification read; it reports whether anything changed
func (n *Notification) MarkRead() bool {
	if n.ReadAt != nil {
		return false
	}
	now := time.Now()
	n.ReadAt = &now
	n.UpdatedAt = now
	return true
}

// IsRead reports whether the notification has been read
func (n *Notification) IsRead() bool {
	return n.ReadAt != nil
}
