package messaging

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/ledgerly/backend/internal/domain/activity"
	"github.com/ledgerly/backend/internal/domain/invoicing"
	"github.com/ledgerly/backend/internal/domain/messaging"
	"github.com/ledgerly/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// NotificationHandler turns domain events into in-app notifications:
// a sent message notifies its recipient, invoice milestones notify the
// user who created the invoice.
type NotificationHandler struct {
	notifications *NotificationService
	logger        *zap.Logger
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(notifications *NotificationService, logger *zap.Logger) *NotificationHandler {
	return &NotificationHandler{notifications: notifications, logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *NotificationHandler) EventTypes() []string {
	return []string{
		messaging.EventTypeMessageSent,
		invoicing.EventTypeInvoiceConfirmed,
		invoicing.EventTypeInvoicePaymentRecorded,
		invoicing.EventTypeInvoicePaid,
	}
}

// Handle creates the notification for a supported event
func (h *NotificationHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	var (
		userID *uuid.UUID
		typ    messaging.NotificationType
		title  string
		body   string
		ref    *messaging.EntityRef
	)

	switch e := event.(type) {
	case *messaging.MessageSentEvent:
		userID = &e.RecipientID
		typ = messaging.NotificationMessageReceived
		title = "New message: " + e.Subject
		ref = &messaging.EntityRef{Type: "Message", ID: e.AggregateID()}
	case *invoicing.InvoiceConfirmedEvent:
		userID = e.Recipient()
		typ = messaging.NotificationInvoiceConfirmed
		title = fmt.Sprintf("Invoice %s confirmed", e.InvoiceNumber)
		body = fmt.Sprintf("%s owes %s", e.CustomerName, e.TotalAmount.StringFixed(2))
		ref = &messaging.EntityRef{Type: activity.EntityInvoice, ID: e.AggregateID()}
	case *invoicing.InvoicePaymentRecordedEvent:
		userID = e.Recipient()
		typ = messaging.NotificationPaymentRecorded
		title = fmt.Sprintf("Payment received for %s", e.InvoiceNumber)
		body = fmt.Sprintf("%s paid %s, outstanding %s", e.CustomerName, e.Amount.StringFixed(2), e.Outstanding.StringFixed(2))
		ref = &messaging.EntityRef{Type: activity.EntityInvoice, ID: e.AggregateID()}
	case *invoicing.InvoicePaidEvent:
		userID = e.Recipient()
		typ = messaging.NotificationInvoicePaid
		title = fmt.Sprintf("Invoice %s paid in full", e.InvoiceNumber)
		body = fmt.Sprintf("%s settled %s", e.CustomerName, e.TotalAmount.StringFixed(2))
		ref = &messaging.EntityRef{Type: activity.EntityInvoice, ID: e.AggregateID()}
	default:
		h.logger.Error("unexpected event type", zap.String("actual", event.EventType()))
		return fmt.Errorf("unexpected event type: %s", event.EventType())
	}

	if userID == nil || *userID == uuid.Nil {
		h.logger.Debug("No recipient for notification, skipping",
			zap.String("event_type", event.EventType()),
			zap.String("aggregate_id", event.AggregateID().String()))
		return nil
	}

	if _, err := h.notifications.Notify(ctx, event.TenantID(), *userID, typ, title, body, ref); err != nil {
		h.logger.Error("failed to create notification",
			zap.String("event_type", event.EventType()),
			zap.String("user_id", userID.String()),
			zap.Error(err))
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}
