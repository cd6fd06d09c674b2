package persistence

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/ledgerly/backend/internal/domain/catalog"
	"github.com/ledgerly/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormProductRepository implements catalog.ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// Create inserts a new product
func (r *GormProductRepository) Create(ctx context.Context, product *catalog.Product) error {
	return uniqueViolation(conn(ctx, r.db).Create(models.ProductModelFromDomain(product)).Error)
}

// Save updates a product, checking its version
func (r *GormProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	model := models.ProductModelFromDomain(product)
	model.Version = product.Version + 1
	if err := saveVersioned(conn(ctx, r.db), model, product.Version); err != nil {
		return err
	}
	product.IncrementVersion()
	product.UpdatedAt = model.UpdatedAt
	return nil
}

// Delete removes a product within a tenant
func (r *GormProductRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return deleteScoped(conn(ctx, r.db), &models.ProductModel{}, tenantID, id)
}

// FindByID finds a product by ID within a tenant
func (r *GormProductRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*catalog.Product, error) {
	var model models.ProductModel
	if err := conn(ctx, r.db).Scopes(TenantScope(tenantID)).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindByIDsForUpdate locks and loads products in id order so concurrent
// confirmations acquire their locks in the same sequence
func (r *GormProductRepository) FindByIDsForUpdate(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]*catalog.Product, error) {
	if len(ids) == 0 {
		return []*catalog.Product{}, nil
	}
	var rows []models.ProductModel
	if err := forUpdate(conn(ctx, r.db)).
		Scopes(TenantScope(tenantID)).
		Where("id IN ?", ids).
		Order("id").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	products := make([]*catalog.Product, len(rows))
	for i := range rows {
		products[i] = rows[i].ToDomain()
	}
	return products, nil
}

// FindAll lists products matching the filter with the total match count
func (r *GormProductRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter catalog.ProductFilter) ([]*catalog.Product, int64, error) {
	filter.Filter = filter.Filter.Normalize()
	query := func() *gorm.DB {
		q := conn(ctx, r.db).Model(&models.ProductModel{}).
			Scopes(TenantScope(tenantID), Search(filter.Search, "sku", "name", "description"))
		if filter.IsActive != nil {
			q = q.Where("is_active = ?", *filter.IsActive)
		}
		if filter.TrackStock != nil {
			q = q.Where("track_stock = ?", *filter.TrackStock)
		}
		return q
	}

	var total int64
	if err := query().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.ProductModel
	if err := query().
		Scopes(OrderBy(filter.Filter, ProductSortFields, "name"), Paginate(filter.Filter)).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	products := make([]*catalog.Product, len(rows))
	for i := range rows {
		products[i] = rows[i].ToDomain()
	}
	return products, total, nil
}

// ExistsBySKU checks if a SKU is taken within a tenant
func (r *GormProductRepository) ExistsBySKU(ctx context.Context, tenantID uuid.UUID, sku string) (bool, error) {
	var count int64
	if err := conn(ctx, r.db).Model(&models.ProductModel{}).
		Scopes(TenantScope(tenantID)).
		Where("sku = ?", strings.ToUpper(strings.TrimSpace(sku))).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

var _ catalog.ProductRepository = (*GormProductRepository)(nil)
