package shared

import (
	"time"

	"github.com/google/uuid"
)

// Entity is anything with an identity and audit timestamps
type Entity interface {
	GetID() uuid.UUID
	GetCreatedAt() time.Time
	GetUpdatedAt() time.Time
}

// BaseEntity carries the identity and timestamps. Timestamps are UTC.
type BaseEntity struct {
	ID        uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
}

func NewBaseEntity() BaseEntity {
	now := time.Now().UTC()
	return BaseEntity{ID: uuid.New(), CreatedAt: now, UpdatedAt: now}
}

func (e *BaseEntity) GetID() uuid.UUID        { return e.ID }
func (e *BaseEntity) GetCreatedAt() time.Time { return e.CreatedAt }
func (e *BaseEntity) GetUpdatedAt() time.Time { return e.UpdatedAt }

// Touch marks the entity as modified now
func (e *BaseEntity) Touch() { e.UpdatedAt = time.Now().UTC() }

// TenantEntity is an unversioned entity owned by one account, such as a
// payment or an activity log entry
type TenantEntity struct {
	BaseEntity
	TenantID uuid.UUID
}

func NewTenantEntity(tenantID uuid.UUID) TenantEntity {
	return TenantEntity{BaseEntity: NewBaseEntity(), TenantID: tenantID}
}
