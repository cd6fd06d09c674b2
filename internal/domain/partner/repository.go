package partner

import (
	"context"

	"github.com/google/uuid"
	"github.com/ledgerly/backend/internal/domain/shared"
)

// CustomerFilter contains filter options for querying customers
type CustomerFilter struct {
	shared.Filter
	IsActive   *bool
	HasBalance *bool
}

// CustomerRepository persists customers
type CustomerRepository interface {
	Create(ctx context.Context, customer *Customer) error
	// Save updates a customer, checking its version
	Save(ctx context.Context, customer *Customer) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Customer, error)
	// FindByIDForUpdate loads a customer with a row lock inside the current transaction
	FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*Customer, error)
	FindAll(ctx context.Context, tenantID uuid.UUID, filter CustomerFilter) ([]*Customer, int64, error)
	ExistsByCode(ctx context.Context, tenantID uuid.UUID, code string) (bool, error)
}
