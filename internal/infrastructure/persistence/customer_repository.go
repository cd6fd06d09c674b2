package persistence

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/ledgerly/backend/internal/domain/partner"
	"github.com/ledgerly/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormCustomerRepository implements partner.CustomerRepository using GORM
type GormCustomerRepository struct {
	db *gorm.DB
}

// NewGormCustomerRepository creates a new GormCustomerRepository
func NewGormCustomerRepository(db *gorm.DB) *GormCustomerRepository {
	return &GormCustomerRepository{db: db}
}

// Create inserts a new customer
func (r *GormCustomerRepository) Create(ctx context.Context, customer *partner.Customer) error {
	return uniqueViolation(conn(ctx, r.db).Create(models.CustomerModelFromDomain(customer)).Error)
}

// Save updates a customer with optimistic locking
func (r *GormCustomerRepository) Save(ctx context.Context, customer *partner.Customer) error {
	model := models.CustomerModelFromDomain(customer)
	model.Version = customer.Version + 1
	if err := saveVersioned(conn(ctx, r.db), model, customer.Version); err != nil {
		return err
	}
	customer.IncrementVersion()
	customer.UpdatedAt = model.UpdatedAt
	return nil
}

// Delete deletes a customer within a tenant
func (r *GormCustomerRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return deleteScoped(conn(ctx, r.db), &models.CustomerModel{}, tenantID, id)
}

// FindByID finds a customer by ID within a tenant
func (r *GormCustomerRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*partner.Customer, error) {
	var model models.CustomerModel
	if err := conn(ctx, r.db).Scopes(TenantScope(tenantID)).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindByIDForUpdate finds a customer and locks its row until the transaction ends
func (r *GormCustomerRepository) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*partner.Customer, error) {
	var model models.CustomerModel
	if err := forUpdate(conn(ctx, r.db)).Scopes(TenantScope(tenantID)).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindAll finds customers matching the filter and counts all matches
func (r *GormCustomerRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter partner.CustomerFilter) ([]*partner.Customer, int64, error) {
	filter.Filter = filter.Filter.Normalize()
	query := func() *gorm.DB {
		q := conn(ctx, r.db).Model(&models.CustomerModel{}).
			Scopes(TenantScope(tenantID), Search(filter.Search, "code", "name", "email", "phone"))
		if filter.IsActive != nil {
			q = q.Where("is_active = ?", *filter.IsActive)
		}
		if filter.HasBalance != nil {
			if *filter.HasBalance {
				q = q.Where("balance > 0")
			} else {
				q = q.Where("balance = 0")
			}
		}
		return q
	}

	var total int64
	if err := query().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.CustomerModel
	if err := query().
		Scopes(OrderBy(filter.Filter, CustomerSortFields, "name"), Paginate(filter.Filter)).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	customers := make([]*partner.Customer, len(rows))
	for i := range rows {
		customers[i] = rows[i].ToDomain()
	}
	return customers, total, nil
}

// ExistsByCode checks if a customer code exists within a tenant
func (r *GormCustomerRepository) ExistsByCode(ctx context.Context, tenantID uuid.UUID, code string) (bool, error) {
	var count int64
	if err := conn(ctx, r.db).Model(&models.CustomerModel{}).
		Scopes(TenantScope(tenantID)).
		Where("code = ?", strings.ToUpper(strings.TrimSpace(code))).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

var _ partner.CustomerRepository = (*GormCustomerRepository)(nil)
