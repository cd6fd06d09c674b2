package messaging

import (
	"time"

	"github.com/google/uuid"
	"github.com/ledgerly/backend/internal/domain/messaging"
)

// SendMessageRequest represents a request to send a direct message
type SendMessageRequest struct {
	RecipientID uuid.UUID `json:"recipient_id" binding:"required"`
	Subject     string    `json:"subject" binding:"required,max=200"`
	Body        string    `json:"body" binding:"required,max=10000"`
}

// MessageListFilter holds mailbox query parameters
type MessageListFilter struct {
	Page       int  `form:"page" binding:"omitempty,min=1"`
	PageSize   int  `form:"page_size" binding:"omitempty,min=1,max=100"`
	UnreadOnly bool `form:"unread"`
}

// MessageResponse represents a message in API responses
type MessageResponse struct {
	ID            uuid.UUID  `json:"id"`
	SenderID      uuid.UUID  `json:"sender_id"`
	SenderName    string     `json:"sender_name"`
	RecipientID   uuid.UUID  `json:"recipient_id"`
	RecipientName string     `json:"recipient_name"`
	Subject       string     `json:"subject"`
	Body          string     `json:"body,omitempty"`
	IsRead        bool       `json:"is_read"`
	ReadAt        *time.Time `json:"read_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// ToMessageResponse converts a domain message; names are filled by the caller
func ToMessageResponse(m *messaging.Message) MessageResponse {
	return MessageResponse{
		ID:          m.ID,
		SenderID:    m.SenderID,
		RecipientID: m.RecipientID,
		Subject:     m.Subject,
		Body:        m.Body,
		IsRead:      m.IsRead(),
		ReadAt:      m.ReadAt,
		CreatedAt:   m.CreatedAt,
	}
}

// NotificationListFilter holds notification query parameters
type NotificationListFilter struct {
	Page       int    `form:"page" binding:"omitempty,min=1"`
	PageSize   int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	UnreadOnly bool   `form:"unread"`
	Type       string `form:"type"`
}

// NotificationResponse represents a notification in API responses
type NotificationResponse struct {
	ID         uuid.UUID  `json:"id"`
	Type       string     `json:"type"`
	Title      string     `json:"title"`
	Body       string     `json:"body,omitempty"`
	EntityType string     `json:"entity_type,omitempty"`
	EntityID   *uuid.UUID `json:"entity_id,omitempty"`
	IsRead     bool       `json:"is_read"`
	ReadAt     *time.Time `json:"read_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// ToNotificationResponse converts a domain notification
func ToNotificationResponse(n *messaging.Notification) NotificationResponse {
	return NotificationResponse{
		ID:         n.ID,
		Type:       string(n.Type),
		Title:      n.Title,
		Body:       n.Body,
		EntityType: n.EntityType,
		EntityID:   n.EntityID,
		IsRead:     n.IsRead(),
		ReadAt:     n.ReadAt,
		CreatedAt:  n.CreatedAt,
	}
}

// UnreadCountResponse carries an unread counter
type UnreadCountResponse struct {
	Count int64 `json:"count"`
}

// MarkAllReadResponse reports how many notifications changed
type MarkAllReadResponse struct {
	Updated int64 `json:"updated"`
}
