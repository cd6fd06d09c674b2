package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/ledgerly/backend/internal/domain/shared"
)

// ProductFilter contains filter options for querying products
type ProductFilter struct {
	shared.Filter
	IsActive   *bool
	TrackStock *bool
}

// ProductRepository persists products
type ProductRepository interface {
	Create(ctx context.Context, product *Product) error
	// Save updates a product, checking its version
	Save(ctx context.Context, product *Product) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Product, error)
	// FindByIDsForUpdate loads products with a row lock inside the current transaction
	FindByIDsForUpdate(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]*Product, error)
	FindAll(ctx context.Context, tenantID uuid.UUID, filter ProductFilter) ([]*Product, int64, error)
	ExistsBySKU(ctx context.Context, tenantID uuid.UUID, sku string) (bool, error)
}
