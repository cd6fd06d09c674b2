package messaging

import (
	"github.com/google/uuid"
	"github.com/ledgerly/backend/internal/domain/shared"
)

// AggregateTypeMessage is the aggregate type of Message events
const AggregateTypeMessage = "Message"

// EventTypeMessageSent is raised when a message is delivered
const EventTypeMessageSent = "MessageSent"

// MessageSentEvent is raised when a message is sent
type MessageSentEvent struct {
	shared.BaseDomainEvent
	SenderID    uuid.UUID `json:"sender_id"`
	RecipientID uuid.UUID `json:"recipient_id"`
	Subject     string    `json:"subject"`
}

// NewMessageSentEvent creates a new MessageSentEvent
func NewMessageSentEvent(m *Message) *MessageSentEvent {
	return &MessageSentEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeMessageSent, AggregateTypeMessage, m.ID, m.TenantID),
		SenderID:        m.SenderID,
		RecipientID:     m.RecipientID,
		Subject:         m.Subject,
	}
}
