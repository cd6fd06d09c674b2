package shared

import (
	"time"

	"github.com/google/uuid"
)

// DomainEvent is a fact about an aggregate. Events are collected on the
// aggregate and published once the surrounding transaction has committed.
type DomainEvent interface {
	EventID() uuid.UUID
	EventType() string
	OccurredAt() time.Time
	AggregateID() uuid.UUID
	AggregateType() string
	TenantID() uuid.UUID
}

// BaseDomainEvent is the envelope embedded by every concrete event
type BaseDomainEvent struct {
	id            uuid.UUID
	eventType     string
	occurredAt    time.Time
	aggregateID   uuid.UUID
	aggregateType string
	tenantID      uuid.UUID
}

// NewBaseDomainEvent stamps a new event of eventType raised by the given
// aggregate of an account
func NewBaseDomainEvent(eventType, aggregateType string, aggregateID, tenantID uuid.UUID) BaseDomainEvent {
	return BaseDomainEvent{
		id:            uuid.New(),
		eventType:     eventType,
		occurredAt:    time.Now().UTC(),
		aggregateID:   aggregateID,
		aggregateType: aggregateType,
		tenantID:      tenantID,
	}
}

func (e BaseDomainEvent) EventID() uuid.UUID     { return e.id }
func (e BaseDomainEvent) EventType() string      { return e.eventType }
func (e BaseDomainEvent) OccurredAt() time.Time  { return e.occurredAt }
func (e BaseDomainEvent) AggregateID() uuid.UUID { return e.aggregateID }
func (e BaseDomainEvent) AggregateType() string  { return e.aggregateType }
func (e BaseDomainEvent) TenantID() uuid.UUID    { return e.tenantID }
