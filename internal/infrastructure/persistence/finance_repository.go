package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/ledgerly/backend/internal/domain/finance"
	"github.com/ledgerly/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// entryQuery applies the filter options shared by expenses and revenues
func entryQuery(db *gorm.DB, tenantID uuid.UUID, filter finance.EntryFilter, searchColumns ...string) *gorm.DB {
	q := db.Scopes(
		TenantScope(tenantID),
		Search(filter.Search, searchColumns...),
		DateRange("date", filter.DateFrom, filter.DateTo),
	)
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	return q
}

type categoryTotalRow struct {
	Category string
	Count    int64
	Total    decimal.Decimal
}

func sumByCategory(db *gorm.DB, tenantID uuid.UUID, from, to *time.Time) ([]finance.CategoryTotal, error) {
	var rows []categoryTotalRow
	if err := db.
		Select("category, COUNT(*) AS count, COALESCE(SUM(amount), 0) AS total").
		Scopes(TenantScope(tenantID), DateRange("date", from, to)).
		Group("category").
		Order("total DESC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	totals := make([]finance.CategoryTotal, len(rows))
	for i, row := range rows {
		totals[i] = finance.CategoryTotal{Category: row.Category, Count: row.Count, Total: row.Total}
	}
	return totals, nil
}

// GormExpenseRepository implements finance.ExpenseRepository using GORM
type GormExpenseRepository struct {
	db *gorm.DB
}

// NewGormExpenseRepository creates a new GormExpenseRepository
func NewGormExpenseRepository(db *gorm.DB) *GormExpenseRepository {
	return &GormExpenseRepository{db: db}
}

// Create inserts an expense
func (r *GormExpenseRepository) Create(ctx context.Context, expense *finance.Expense) error {
	return uniqueViolation(conn(ctx, r.db).Create(models.ExpenseModelFromDomain(expense)).Error)
}

// Save updates an expense with optimistic locking
func (r *GormExpenseRepository) Save(ctx context.Context, expense *finance.Expense) error {
	model := models.ExpenseModelFromDomain(expense)
	model.Version = expense.Version + 1
	if err := saveVersioned(conn(ctx, r.db), model, expense.Version); err != nil {
		return err
	}
	expense.IncrementVersion()
	expense.UpdatedAt = model.UpdatedAt
	return nil
}

// Delete removes an expense
func (r *GormExpenseRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return deleteScoped(conn(ctx, r.db), &models.ExpenseModel{}, tenantID, id)
}

// FindByID finds an expense within a tenant
func (r *GormExpenseRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*finance.Expense, error) {
	var model models.ExpenseModel
	if err := conn(ctx, r.db).Scopes(TenantScope(tenantID)).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindAll lists expenses matching the filter
func (r *GormExpenseRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter finance.EntryFilter) ([]*finance.Expense, int64, error) {
	filter.Filter = filter.Filter.Normalize()
	query := func() *gorm.DB {
		return entryQuery(conn(ctx, r.db).Model(&models.ExpenseModel{}), tenantID, filter,
			"number", "description", "payee", "reference")
	}

	var total int64
	if err := query().Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []models.ExpenseModel
	if err := query().
		Scopes(OrderBy(filter.Filter, ExpenseSortFields, "date"), Paginate(filter.Filter)).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	expenses := make([]*finance.Expense, len(rows))
	for i := range rows {
		expenses[i] = rows[i].ToDomain()
	}
	return expenses, total, nil
}

// SumByCategory totals expenses dated in the period per category
func (r *GormExpenseRepository) SumByCategory(ctx context.Context, tenantID uuid.UUID, from, to *time.Time) ([]finance.CategoryTotal, error) {
	return sumByCategory(conn(ctx, r.db).Model(&models.ExpenseModel{}), tenantID, from, to)
}

// GormRevenueRepository implements finance.RevenueRepository using GORM
type GormRevenueRepository struct {
	db *gorm.DB
}

// NewGormRevenueRepository creates a new GormRevenueRepository
func NewGormRevenueRepository(db *gorm.DB) *GormRevenueRepository {
	return &GormRevenueRepository{db: db}
}

// Create inserts a revenue
func (r *GormRevenueRepository) Create(ctx context.Context, revenue *finance.Revenue) error {
	return uniqueViolation(conn(ctx, r.db).Create(models.RevenueModelFromDomain(revenue)).Error)
}

// Save updates a revenue with optimistic locking
func (r *GormRevenueRepository) Save(ctx context.Context, revenue *finance.Revenue) error {
	model := models.RevenueModelFromDomain(revenue)
	model.Version = revenue.Version + 1
	if err := saveVersioned(conn(ctx, r.db), model, revenue.Version); err != nil {
		return err
	}
	revenue.IncrementVersion()
	revenue.UpdatedAt = model.UpdatedAt
	return nil
}

// Delete removes a revenue
func (r *GormRevenueRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return deleteScoped(conn(ctx, r.db), &models.RevenueModel{}, tenantID, id)
}

// FindByID finds a revenue within a tenant
func (r *GormRevenueRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*finance.Revenue, error) {
	var model models.RevenueModel
	if err := conn(ctx, r.db).Scopes(TenantScope(tenantID)).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindAll lists revenues matching the filter
func (r *GormRevenueRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter finance.EntryFilter) ([]*finance.Revenue, int64, error) {
	filter.Filter = filter.Filter.Normalize()
	query := func() *gorm.DB {
		q := entryQuery(conn(ctx, r.db).Model(&models.RevenueModel{}), tenantID, filter,
			"number", "description", "payer", "reference")
		if filter.CustomerID != nil {
			q = q.Where("customer_id = ?", *filter.CustomerID)
		}
		return q
	}

	var total int64
	if err := query().Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []models.RevenueModel
	if err := query().
		Scopes(OrderBy(filter.Filter, RevenueSortFields, "date"), Paginate(filter.Filter)).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	revenues := make([]*finance.Revenue, len(rows))
	for i := range rows {
		revenues[i] = rows[i].ToDomain()
	}
	return revenues, total, nil
}

// SumByCategory totals revenues dated in the period per category
func (r *GormRevenueRepository) SumByCategory(ctx context.Context, tenantID uuid.UUID, from, to *time.Time) ([]finance.CategoryTotal, error) {
	return sumByCategory(conn(ctx, r.db).Model(&models.RevenueModel{}), tenantID, from, to)
}

var (
	_ finance.ExpenseRepository = (*GormExpenseRepository)(nil)
	_ finance.RevenueRepository = (*GormRevenueRepository)(nil)
)
