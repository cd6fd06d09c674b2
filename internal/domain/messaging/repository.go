package messaging

import (
	"context"

	"github.com/google/uuid"
	"github.com/ledgerly/backend/internal/domain/shared"
)

// Mailbox selects one side of a user's messages
type Mailbox string

const (
	MailboxInbox Mailbox = "inbox"
	MailboxSent  Mailbox = "sent"
)

// MessageFilter contains filter options for listing a mailbox
type MessageFilter struct {
	shared.Filter
	Mailbox    Mailbox
	UnreadOnly bool
}

// MessageRepository persists messages
type MessageRepository interface {
	Create(ctx context.Context, message *Message) error
	Save(ctx context.Context, message *Message) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Message, error)
	// FindForUser lists the messages visible to userID in the given mailbox
	FindForUser(ctx context.Context, tenantID, userID uuid.UUID, filter MessageFilter) ([]*Message, int64, error)
	CountUnread(ctx context.Context, tenantID, userID uuid.UUID) (int64, error)
}

// NotificationFilter contains filter options for listing notifications
type NotificationFilter struct {
	shared.Filter
	UnreadOnly bool
	Type       *NotificationType
}

// NotificationRepository persists notifications
type NotificationRepository interface {
	Create(ctx context.Context, notification *Notification) error
	Save(ctx context.Context, notification *Notification) error
	Delete(ctx context.Context, tenantID, userID, id uuid.UUID) error
	FindByID(ctx context.Context, tenantID, userID, id uuid.UUID) (*Notification, error)
	FindForUser(ctx context.Context, tenantID, userID uuid.UUID, filter NotificationFilter) ([]*Notification, int64, error)
	CountUnread(ctx context.Context, tenantID, userID uuid.UUID) (int64, error)
	// MarkAllRead marks every unread notification of the user and returns how many changed
	MarkAllRead(ctx context.Context, tenantID, userID uuid.UUID) (int64, error)
}
