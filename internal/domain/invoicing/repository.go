package invoicing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/ledgerly/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// InvoiceFilter contains filter options for querying invoices
type InvoiceFilter struct {
	shared.Filter
	Status     *InvoiceStatus
	CustomerID *uuid.UUID
	DateFrom   *time.Time
	DateTo     *time.Time
	Overdue    bool
}

// StatusSummary aggregates invoices of one status
type StatusSummary struct {
	Status      InvoiceStatus
	Count       int64
	TotalAmount decimal.Decimal
	PaidAmount  decimal.Decimal
}

// InvoiceRepository persists invoices with their items
type InvoiceRepository interface {
	Create(ctx context.Context, invoice *Invoice) error
	// Save updates an invoice and replaces its items, checking its version
	Save(ctx context.Context, invoice *Invoice) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Invoice, error)
	// FindByIDForUpdate loads an invoice with a row lock inside the current transaction
	FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*Invoice, error)
	FindAll(ctx context.Context, tenantID uuid.UUID, filter InvoiceFilter) ([]*Invoice, int64, error)
	CountByCustomer(ctx context.Context, tenantID, customerID uuid.UUID) (int64, error)
	// CountByProduct counts non-draft invoices with at least one line referencing the product
	CountByProduct(ctx context.Context, tenantID, productID uuid.UUID) (int64, error)
	SummarizeByStatus(ctx context.Context, tenantID uuid.UUID, from, to *time.Time) ([]StatusSummary, error)
}

// PaymentFilter contains filter options for querying payments
type PaymentFilter struct {
	shared.Filter
	InvoiceID  *uuid.UUID
	CustomerID *uuid.UUID
	Method     *PaymentMethod
	DateFrom   *time.Time
	DateTo     *time.Time
}

// PaymentRepository persists payments
type PaymentRepository interface {
	Create(ctx context.Context, payment *Payment) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Payment, error)
	FindByInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) ([]*Payment, error)
	FindAll(ctx context.Context, tenantID uuid.UUID, filter PaymentFilter) ([]*Payment, int64, error)
}
