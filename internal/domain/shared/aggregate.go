package shared

import (
	"github.com/google/uuid"
)

// AggregateRoot is a consistency boundary: it is loaded and saved as a whole,
// carries a version for optimistic locking and buffers the events it raised
type AggregateRoot interface {
	Entity
	GetVersion() int
	IncrementVersion()
	AddDomainEvent(event DomainEvent)
	GetDomainEvents() []DomainEvent
	ClearDomainEvents()
}

// BaseAggregateRoot implements AggregateRoot. A new aggregate starts at
// version 1; repositories bump the version after a version-checked update.
type BaseAggregateRoot struct {
	BaseEntity
	Version int
	pending []DomainEvent
}

// NewBaseAggregateRoot creates an aggregate with a fresh identity
func NewBaseAggregateRoot() BaseAggregateRoot {
	return BaseAggregateRoot{BaseEntity: NewBaseEntity(), Version: 1}
}

func (a *BaseAggregateRoot) GetVersion() int   { return a.Version }
func (a *BaseAggregateRoot) IncrementVersion() { a.Version++ }

// AddDomainEvent queues an event until the service publishes it
func (a *BaseAggregateRoot) AddDomainEvent(event DomainEvent) {
	a.pending = append(a.pending, event)
}

// GetDomainEvents returns the queued events in the order they were raised
func (a *BaseAggregateRoot) GetDomainEvents() []DomainEvent { return a.pending }

// ClearDomainEvents drops the queue, typically right after publishing
func (a *BaseAggregateRoot) ClearDomainEvents() { a.pending = nil }

// TenantAggregateRoot is an aggregate owned by one account. CreatedBy stays
// nil for records created by the system, e.g. seeded roles.
type TenantAggregateRoot struct {
	BaseAggregateRoot
	TenantID  uuid.UUID
	CreatedBy *uuid.UUID
}

// NewTenantAggregateRoot creates an aggregate for the account tenantID
func NewTenantAggregateRoot(tenantID uuid.UUID) TenantAggregateRoot {
	return TenantAggregateRoot{BaseAggregateRoot: NewBaseAggregateRoot(), TenantID: tenantID}
}

// SetCreatedBy records the creating user; uuid.Nil leaves it unset
func (t *TenantAggregateRoot) SetCreatedBy(userID uuid.UUID) {
	if userID != uuid.Nil {
		t.CreatedBy = &userID
	}
}

// GetCreatedBy returns the creating user, if any
func (t *TenantAggregateRoot) GetCreatedBy() *uuid.UUID {
	return t.CreatedBy
}
