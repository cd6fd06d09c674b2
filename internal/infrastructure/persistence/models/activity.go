package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/ledgerly/backend/internal/domain/activity"
)

// JSONValues stores an activity snapshot in a jsonb column
type JSONValues map[string]any

// Value implements driver.Valuer
func (v JSONValues) Value() (driver.Value, error) {
	if v == nil {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner
func (v *JSONValues) Scan(value any) error {
	var data []byte
	switch src := value.(type) {
	case nil:
		*v = nil
		return nil
	case []byte:
		data = src
	case string:
		data = []byte(src)
	default:
		return fmt.Errorf("cannot scan %T into JSONValues", value)
	}
	if len(data) == 0 {
		*v = nil
		return nil
	}
	return json.Unmarshal(data, (*map[string]any)(v))
}

// ActivityLogModel is the persistence model for activity log entries
type ActivityLogModel struct {
	TenantEntityModel
	ActorID     *uuid.UUID      `gorm:"type:uuid;index"`
	ActorName   string          `gorm:"type:varchar(100)"`
	Action      activity.Action `gorm:"type:varchar(20);not null"`
	EntityType  string          `gorm:"type:varchar(30);not null;index:idx_activity_entity"`
	EntityID    uuid.UUID       `gorm:"type:uuid;not null;index:idx_activity_entity"`
	EntityLabel string          `gorm:"type:varchar(200)"`
	OldValues   JSONValues      `gorm:"type:jsonb"`
	NewValues   JSONValues      `gorm:"type:jsonb"`
	IPAddress   string          `gorm:"type:varchar(45)"`
	UserAgent   string          `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (ActivityLogModel) TableName() string {
	return "activity_logs"
}

// ToDomain converts the persistence model to a domain ActivityLog
func (m *ActivityLogModel) ToDomain() *activity.ActivityLog {
	return &activity.ActivityLog{
		TenantEntity: m.ToDomainTenantEntity(),
		ActorID:      m.ActorID,
		ActorName:    m.ActorName,
		Action:       m.Action,
		EntityType:   m.EntityType,
		EntityID:     m.EntityID,
		EntityLabel:  m.EntityLabel,
		OldValues:    activity.Values(m.OldValues),
		NewValues:    activity.Values(m.NewValues),
		IPAddress:    m.IPAddress,
		UserAgent:    m.UserAgent,
	}
}

// ActivityLogModelFromDomain creates a new persistence model from a domain ActivityLog
func ActivityLogModelFromDomain(l *activity.ActivityLog) *ActivityLogModel {
	m := &ActivityLogModel{
		ActorID:     l.ActorID,
		ActorName:   l.ActorName,
		Action:      l.Action,
		EntityType:  l.EntityType,
		EntityID:    l.EntityID,
		EntityLabel: l.EntityLabel,
		OldValues:   JSONValues(l.OldValues),
		NewValues:   JSONValues(l.NewValues),
		IPAddress:   l.IPAddress,
		UserAgent:   l.UserAgent,
	}
	m.FromDomainTenantEntity(l.TenantEntity)
	return m
}

// DocumentSequenceModel holds the last number issued per tenant, document type and year
type DocumentSequenceModel struct {
	TenantID     uuid.UUID `gorm:"type:uuid;primaryKey"`
	DocumentType string    `gorm:"type:varchar(20);primaryKey"`
	Year         int       `gorm:"primaryKey"`
	LastValue    int64     `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (DocumentSequenceModel) TableName() string {
	return "document_sequences"
}
