package activity

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/ledgerly/backend/internal/domain/shared"
)

// Filter contains filter options for querying the activity log
type Filter struct {
	shared.Filter
	EntityType string
	EntityID   *uuid.UUID
	ActorID    *uuid.UUID
	Action     *Action
	DateFrom   *time.Time
	DateTo     *time.Time
}

// Repository persists activity log entries. Entries are append-only.
type Repository interface {
	Create(ctx context.Context, log *ActivityLog) error
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*ActivityLog, error)
	FindAll(ctx context.Context, tenantID uuid.UUID, filter Filter) ([]*ActivityLog, int64, error)
}
