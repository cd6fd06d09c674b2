package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/ledgerly/backend/internal/domain/invoicing"
	"github.com/ledgerly/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormInvoiceRepository implements invoicing.InvoiceRepository using GORM
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

// Create inserts an invoice together with its items
func (r *GormInvoiceRepository) Create(ctx context.Context, invoice *invoicing.Invoice) error {
	return withTx(ctx, r.db, func(tx *gorm.DB) error {
		return uniqueViolation(tx.Create(models.InvoiceModelFromDomain(invoice)).Error)
	})
}

// Save updates the invoice header and replaces its items
func (r *GormInvoiceRepository) Save(ctx context.Context, invoice *invoicing.Invoice) error {
	model := models.InvoiceModelFromDomain(invoice)
	model.Version = invoice.Version + 1
	err := withTx(ctx, r.db, func(tx *gorm.DB) error {
		if err := saveVersioned(tx, model, invoice.Version); err != nil {
			return err
		}
		if err := tx.Where("invoice_id = ?", invoice.ID).Delete(&models.InvoiceItemModel{}).Error; err != nil {
			return err
		}
		if len(model.Items) == 0 {
			return nil
		}
		return tx.Create(&model.Items).Error
	})
	if err != nil {
		return err
	}
	invoice.IncrementVersion()
	invoice.UpdatedAt = model.UpdatedAt
	return nil
}

// Delete removes an invoice and its items
func (r *GormInvoiceRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return withTx(ctx, r.db, func(tx *gorm.DB) error {
		if err := tx.Scopes(TenantScope(tenantID)).Where("invoice_id = ?", id).
			Delete(&models.InvoiceItemModel{}).Error; err != nil {
			return err
		}
		return deleteScoped(tx, &models.InvoiceModel{}, tenantID, id)
	})
}

// FindByID finds an invoice with its items
func (r *GormInvoiceRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*invoicing.Invoice, error) {
	return r.findOne(conn(ctx, r.db), tenantID, id)
}

// FindByIDForUpdate locks the invoice row, then loads it with its items
func (r *GormInvoiceRepository) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*invoicing.Invoice, error) {
	return r.findOne(forUpdate(conn(ctx, r.db)), tenantID, id)
}

func (r *GormInvoiceRepository) findOne(db *gorm.DB, tenantID, id uuid.UUID) (*invoicing.Invoice, error) {
	var model models.InvoiceModel
	if err := db.Scopes(TenantScope(tenantID)).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order")
		}).
		First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindAll lists invoice headers matching the filter. Items are not loaded.
func (r *GormInvoiceRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter invoicing.InvoiceFilter) ([]*invoicing.Invoice, int64, error) {
	filter.Filter = filter.Filter.Normalize()
	query := func() *gorm.DB {
		q := conn(ctx, r.db).Model(&models.InvoiceModel{}).
			Scopes(
				TenantScope(tenantID),
				Search(filter.Search, "number", "customer_name", "notes"),
				DateRange("issue_date", filter.DateFrom, filter.DateTo),
			)
		if filter.Status != nil {
			q = q.Where("status = ?", *filter.Status)
		}
		if filter.CustomerID != nil {
			q = q.Where("customer_id = ?", *filter.CustomerID)
		}
		if filter.Overdue {
			today := time.Now().UTC().Truncate(24 * time.Hour)
			q = q.Where("status IN ? AND due_date < ?",
				[]invoicing.InvoiceStatus{invoicing.InvoiceStatusConfirmed, invoicing.InvoiceStatusPartialPaid}, today)
		}
		return q
	}

	var total int64
	if err := query().Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []models.InvoiceModel
	if err := query().
		Scopes(OrderBy(filter.Filter, InvoiceSortFields, "issue_date"), Paginate(filter.Filter)).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	invoices := make([]*invoicing.Invoice, len(rows))
	for i := range rows {
		invoices[i] = rows[i].ToDomain()
	}
	return invoices, total, nil
}

// CountByCustomer counts invoices issued to a customer
func (r *GormInvoiceRepository) CountByCustomer(ctx context.Context, tenantID, customerID uuid.UUID) (int64, error) {
	var count int64
	err := conn(ctx, r.db).Model(&models.InvoiceModel{}).
		Scopes(TenantScope(tenantID)).
		Where("customer_id = ?", customerID).
		Count(&count).Error
	return count, err
}

// CountByProduct counts non-draft invoices, cancelled ones included, with at
// least one line for the product. Draft lines are not counted:
// they have moved no stock and lose the reference if the product is deleted.
func (r *GormInvoiceRepository) CountByProduct(ctx context.Context, tenantID, productID uuid.UUID) (int64, error) {
	var count int64
	err := conn(ctx, r.db).Model(&models.InvoiceModel{}).
		Joins("JOIN invoice_items ON invoice_items.invoice_id = invoices.id").
		Where("invoices.tenant_id = ? AND invoice_items.product_id = ?", tenantID, productID).
		Where("invoices.status <> ?", string(invoicing.InvoiceStatusDraft)).
		Distinct("invoices.id").
		Count(&count).Error
	return count, err
}

type statusSummaryRow struct {
	Status      string
	Count       int64
	TotalAmount decimal.Decimal
	PaidAmount  decimal.Decimal
}

// SummarizeByStatus groups invoices issued in the period by status
func (r *GormInvoiceRepository) SummarizeByStatus(ctx context.Context, tenantID uuid.UUID, from, to *time.Time) ([]invoicing.StatusSummary, error) {
	var rows []statusSummaryRow
	if err := conn(ctx, r.db).Model(&models.InvoiceModel{}).
		Select("status, COUNT(*) AS count, COALESCE(SUM(total_amount), 0) AS total_amount, COALESCE(SUM(paid_amount), 0) AS paid_amount").
		Scopes(TenantScope(tenantID), DateRange("issue_date", from, to)).
		Group("status").
		Order("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	summaries := make([]invoicing.StatusSummary, len(rows))
	for i, row := range rows {
		summaries[i] = invoicing.StatusSummary{
			Status:      invoicing.InvoiceStatus(row.Status),
			Count:       row.Count,
			TotalAmount: row.TotalAmount,
			PaidAmount:  row.PaidAmount,
		}
	}
	return summaries, nil
}

var _ invoicing.InvoiceRepository = (*GormInvoiceRepository)(nil)
