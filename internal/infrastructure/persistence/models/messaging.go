package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/ledgerly/backend/internal/domain/messaging"
)

// MessageModel is the persistence model for the Message aggregate
type MessageModel struct {
	TenantAggregateModel
	SenderID         uuid.UUID `gorm:"type:uuid;not null;index"`
	RecipientID      uuid.UUID `gorm:"type:uuid;not null;index"`
	Subject          string    `gorm:"type:varchar(200);not null"`
	Body             string    `gorm:"type:text;not null"`
	ReadAt           *time.Time
	SenderDeleted    bool `gorm:"not null;default:false"`
	RecipientDeleted bool `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (MessageModel) TableName() string {
	return "messages"
}

// ToDomain converts the persistence model to a domain Message
func (m *MessageModel) ToDomain() *messaging.Message {
	return &messaging.Message{
		TenantAggregateRoot: m.ToDomainTenantAggregateRoot(),
		SenderID:            m.SenderID,
		RecipientID:         m.RecipientID,
		Subject:             m.Subject,
		Body:                m.Body,
		ReadAt:              m.ReadAt,
		SenderDeleted:       m.SenderDeleted,
		RecipientDeleted:    m.RecipientDeleted,
	}
}

// MessageModelFromDomain creates a new persistence model from a domain Message
func MessageModelFromDomain(msg *messaging.Message) *MessageModel {
	m := &MessageModel{
		SenderID:         msg.SenderID,
		RecipientID:      msg.RecipientID,
		Subject:          msg.Subject,
		Body:             msg.Body,
		ReadAt:           msg.ReadAt,
		SenderDeleted:    msg.SenderDeleted,
		RecipientDeleted: msg.RecipientDeleted,
	}
	m.FromDomainTenantAggregateRoot(msg.TenantAggregateRoot)
	return m
}

// NotificationModel is the persistence model for notifications
type NotificationModel struct {
	TenantEntityModel
	UserID     uuid.UUID                  `gorm:"type:uuid;not null;index"`
	Type       messaging.NotificationType `gorm:"type:varchar(30);not null"`
	Title      string                     `gorm:"type:varchar(200);not null"`
	Body       string                     `gorm:"type:text"`
	EntityType string                     `gorm:"type:varchar(30)"`
	EntityID   *uuid.UUID                 `gorm:"type:uuid"`
	ReadAt     *time.Time
}

// TableName returns the table name for GORM
func (NotificationModel) TableName() string {
	return "notifications"
}

// ToDomain converts the persistence model to a domain Notification
func (m *NotificationModel) ToDomain() *messaging.Notification {
	return &messaging.Notification{
		TenantEntity: m.ToDomainTenantEntity(),
		UserID:       m.UserID,
		Type:         m.Type,
		Title:        m.Title,
		Body:         m.Body,
		EntityType:   m.EntityType,
		EntityID:     m.EntityID,
		ReadAt:       m.ReadAt,
	}
}

// NotificationModelFromDomain creates a new persistence model from a domain Notification
func NotificationModelFromDomain(n *messaging.Notification) *NotificationModel {
	m := &NotificationModel{
		UserID:     n.UserID,
		Type:       n.Type,
		Title:      n.Title,
		Body:       n.Body,
		EntityType: n.EntityType,
		EntityID:   n.EntityID,
		ReadAt:     n.ReadAt,
	}
	m.FromDomainTenantEntity(n.TenantEntity)
	return m
}
