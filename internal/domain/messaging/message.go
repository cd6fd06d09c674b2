// Package messaging covers user-to-user messages and in-app notifications.
package messaging

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ledgerly/backend/internal/domain/shared"
)

// Message is a direct message between two users of the same account.
// Each side can hide the message independently; the row is removed once both have.
type Message struct {
	shared.TenantAggregateRoot
	SenderID         uuid.UUID
	RecipientID      uuid.UUID
	Subject          string
	Body             string
	ReadAt           *time.Time
	SenderDeleted    bool
	RecipientDeleted bool
}

// NewMessage creates an unread message
func NewMessage(tenantID, senderID, recipientID uuid.UUID, subject, body string) (*Message, error) {
	if senderID == uuid.Nil || recipientID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_RECIPIENT", "Sender and recipient are required")
	}
	if senderID == recipientID {
		return nil, shared.NewDomainError("INVALID_RECIPIENT", "Cannot send a message to yourself")
	}
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return nil, shared.NewDomainError("INVALID_SUBJECT", "Subject cannot be empty")
	}
	if len(subject) > 200 {
		return nil, shared.NewDomainError("INVALID_SUBJECT", "Subject cannot exceed 200 characters")
	}
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, shared.NewDomainError("INVALID_BODY", "Body cannot be empty")
	}
	if len(body) > 10000 {
		return nil, shared.NewDomainError("INVALID_BODY", "Body cannot exceed 10000 characters")
	}

	msg := &Message{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		SenderID:            senderID,
		RecipientID:         recipientID,
		Subject:             subject,
		Body:                body,
	}
	msg.SetCreatedBy(senderID)
	msg.AddDomainEvent(NewMessageSentEvent(msg))
	return msg, nil
}

// IsParticipant reports whether the user sent or received the message
func (m *Message) IsParticipant(userID uuid.UUID) bool {
	return m.SenderID == userID || m.RecipientID == userID
}

// VisibleTo reports whether the user still sees the message
func (m *Message) VisibleTo(userID uuid.UUID) bool {
	switch userID {
	case m.RecipientID:
		return !m.RecipientDeleted
	case m.SenderID:
		return !m.SenderDeleted
	}
	return false
}

// IsRead reports whether the recipient has opened the message
func (m *Message) IsRead() bool {
	return m.ReadAt != nil
}

// MarkRead marks the message read. Only the recipient can do so; repeated
// calls are no-ops. It reports whether anything changed.
func (m *Message) MarkRead(userID uuid.UUID) (bool, error) {
	if userID != m.RecipientID {
		return false, shared.NewDomainError("FORBIDDEN", "Only the recipient can mark a message as read")
	}
	if m.ReadAt != nil {
		return false, nil
	}
	now := time.Now()
	m.ReadAt = &now
	m.UpdatedAt = now
	return true, nil
}

// DeleteFor hides the message for one participant
func (m *Message) DeleteFor(userID uuid.UUID) error {
	if !m.IsParticipant(userID) {
		return shared.ErrNotFound
	}
	if m.RecipientID == userID {
		m.RecipientDeleted = true
	}
	if m.SenderID == userID {
		m.SenderDeleted = true
	}
	m.UpdatedAt = time.Now()
	return nil
}

// DeletedByBoth reports whether the message can be removed for good
func (m *Message) DeletedByBoth() bool {
	return m.SenderDeleted && m.RecipientDeleted
}
