package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/ledgerly/backend/internal/domain/invoicing"
	"github.com/ledgerly/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormPaymentRepository implements invoicing.PaymentRepository using GORM
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GormPaymentRepository
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// Create inserts a payment
func (r *GormPaymentRepository) Create(ctx context.Context, payment *invoicing.Payment) error {
	return conn(ctx, r.db).Create(models.PaymentModelFromDomain(payment)).Error
}

// Delete removes a payment
func (r *GormPaymentRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return deleteScoped(conn(ctx, r.db), &models.PaymentModel{}, tenantID, id)
}

// FindByID finds a payment within a tenant
func (r *GormPaymentRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*invoicing.Payment, error) {
	var model models.PaymentModel
	if err := conn(ctx, r.db).Scopes(TenantScope(tenantID)).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindByInvoice lists the payments of an invoice, oldest first
func (r *GormPaymentRepository) FindByInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) ([]*invoicing.Payment, error) {
	var rows []models.PaymentModel
	if err := conn(ctx, r.db).Scopes(TenantScope(tenantID)).
		Where("invoice_id = ?", invoiceID).
		Order("paid_at, created_at").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return paymentsToDomain(rows), nil
}

// FindAll lists payments matching the filter
func (r *GormPaymentRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter invoicing.PaymentFilter) ([]*invoicing.Payment, int64, error) {
	filter.Filter = filter.Filter.Normalize()
	query := func() *gorm.DB {
		q := conn(ctx, r.db).Model(&models.PaymentModel{}).
			Scopes(
				TenantScope(tenantID),
				Search(filter.Search, "invoice_number", "reference"),
				DateRange("paid_at", filter.DateFrom, filter.DateTo),
			)
		if filter.InvoiceID != nil {
			q = q.Where("invoice_id = ?", *filter.InvoiceID)
		}
		if filter.CustomerID != nil {
			q = q.Where("customer_id = ?", *filter.CustomerID)
		}
		if filter.Method != nil {
			q = q.Where("method = ?", *filter.Method)
		}
		return q
	}

	var total int64
	if err := query().Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []models.PaymentModel
	if err := query().
		Scopes(OrderBy(filter.Filter, PaymentSortFields, "paid_at"), Paginate(filter.Filter)).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return paymentsToDomain(rows), total, nil
}

func paymentsToDomain(rows []models.PaymentModel) []*invoicing.Payment {
	payments := make([]*invoicing.Payment, len(rows))
	for i := range rows {
		payments[i] = rows[i].ToDomain()
	}
	return payments
}

var _ invoicing.PaymentRepository = (*GormPaymentRepository)(nil)
