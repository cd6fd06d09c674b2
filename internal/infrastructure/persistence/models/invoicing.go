package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/ledgerly/backend/internal/domain/invoicing"
	"github.com/ledgerly/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// InvoiceModel is the persistence model for the Invoice aggregate
type InvoiceModel struct {
	TenantAggregateModel
	Number         string                  `gorm:"type:varchar(50);not null"`
	CustomerID     uuid.UUID               `gorm:"type:uuid;not null;index"`
	CustomerName   string                  `gorm:"type:varchar(200);not null"`
	IssueDate      time.Time               `gorm:"type:date;not null;index"`
	DueDate        time.Time               `gorm:"type:date;not null"`
	Currency       string                  `gorm:"type:char(3);not null"`
	Subtotal       decimal.Decimal         `gorm:"type:decimal(18,2);not null;default:0"`
	DiscountAmount decimal.Decimal         `gorm:"type:decimal(18,2);not null;default:0"`
	TaxAmount      decimal.Decimal         `gorm:"type:decimal(18,2);not null;default:0"`
	TotalAmount    decimal.Decimal         `gorm:"type:decimal(18,2);not null;default:0"`
	PaidAmount     decimal.Decimal         `gorm:"type:decimal(18,2);not null;default:0"`
	Notes          string                  `gorm:"type:text"`
	Status         invoicing.InvoiceStatus `gorm:"type:varchar(20);not null;index"`
	ConfirmedAt    *time.Time
	PaidAt         *time.Time
	CancelledAt    *time.Time
	CancelReason   string             `gorm:"type:varchar(500)"`
	Items          []InvoiceItemModel `gorm:"foreignKey:InvoiceID;references:ID"`
}

// TableName returns the table name for GORM
func (InvoiceModel) TableName() string {
	return "invoices"
}

// ToDomain converts the persistence model, with its items, to a domain Invoice
func (m *InvoiceModel) ToDomain() *invoicing.Invoice {
	inv := &invoicing.Invoice{
		TenantAggregateRoot: m.ToDomainTenantAggregateRoot(),
		Number:              m.Number,
		CustomerID:          m.CustomerID,
		CustomerName:        m.CustomerName,
		IssueDate:           m.IssueDate,
		DueDate:             m.DueDate,
		Currency:            valueobject.Currency(m.Currency),
		Items:               make([]invoicing.InvoiceItem, len(m.Items)),
		Subtotal:            m.Subtotal,
		DiscountAmount:      m.DiscountAmount,
		TaxAmount:           m.TaxAmount,
		TotalAmount:         m.TotalAmount,
		PaidAmount:          m.PaidAmount,
		Notes:               m.Notes,
		Status:              m.Status,
		ConfirmedAt:         m.ConfirmedAt,
		PaidAt:              m.PaidAt,
		CancelledAt:         m.CancelledAt,
		CancelReason:        m.CancelReason,
	}
	for i := range m.Items {
		inv.Items[i] = m.Items[i].ToDomain()
	}
	return inv
}

// FromDomain populates the persistence model from a domain Invoice, items included
func (m *InvoiceModel) FromDomain(inv *invoicing.Invoice) {
	m.FromDomainTenantAggregateRoot(inv.TenantAggregateRoot)
	m.Number = inv.Number
	m.CustomerID = inv.CustomerID
	m.CustomerName = inv.CustomerName
	m.IssueDate = inv.IssueDate
	m.DueDate = inv.DueDate
	m.Currency = inv.Currency.String()
	m.Subtotal = inv.Subtotal
	m.DiscountAmount = inv.DiscountAmount
	m.TaxAmount = inv.TaxAmount
	m.TotalAmount = inv.TotalAmount
	m.PaidAmount = inv.PaidAmount
	m.Notes = inv.Notes
	m.Status = inv.Status
	m.ConfirmedAt = inv.ConfirmedAt
	m.PaidAt = inv.PaidAt
	m.CancelledAt = inv.CancelledAt
	m.CancelReason = inv.CancelReason
	m.Items = make([]InvoiceItemModel, len(inv.Items))
	for i := range inv.Items {
		m.Items[i].FromDomain(inv.TenantID, &inv.Items[i])
	}
}

// InvoiceModelFromDomain creates a new persistence model from a domain Invoice
func InvoiceModelFromDomain(inv *invoicing.Invoice) *InvoiceModel {
	m := &InvoiceModel{}
	m.FromDomain(inv)
	return m
}

// InvoiceItemModel is one line of an invoice
type InvoiceItemModel struct {
	ID             uuid.UUID       `gorm:"type:uuid;primary_key"`
	TenantID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	InvoiceID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID      *uuid.UUID      `gorm:"type:uuid;index"`
	ProductName    string          `gorm:"type:varchar(200);not null"`
	Description    string          `gorm:"type:text"`
	Quantity       decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitPrice      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	DiscountRate   decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`
	TaxRate        decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`
	Subtotal       decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	DiscountAmount decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	TaxAmount      decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Total          decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	SortOrder      int             `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (InvoiceItemModel) TableName() string {
	return "invoice_items"
}

// ToDomain converts the persistence model to a domain InvoiceItem
func (m *InvoiceItemModel) ToDomain() invoicing.InvoiceItem {
	return invoicing.InvoiceItem{
		ID:             m.ID,
		InvoiceID:      m.InvoiceID,
		ProductID:      m.ProductID,
		ProductName:    m.ProductName,
		Description:    m.Description,
		Quantity:       m.Quantity,
		UnitPrice:      m.UnitPrice,
		DiscountRate:   m.DiscountRate,
		TaxRate:        m.TaxRate,
		Subtotal:       m.Subtotal,
		DiscountAmount: m.DiscountAmount,
		TaxAmount:      m.TaxAmount,
		Total:          m.Total,
		SortOrder:      m.SortOrder,
	}
}

// FromDomain populates the persistence model from a domain InvoiceItem
func (m *InvoiceItemModel) FromDomain(tenantID uuid.UUID, item *invoicing.InvoiceItem) {
	m.ID = item.ID
	m.TenantID = tenantID
	m.InvoiceID = item.InvoiceID
	m.ProductID = item.ProductID
	m.ProductName = item.ProductName
	m.Description = item.Description
	m.Quantity = item.Quantity
	m.UnitPrice = item.UnitPrice
	m.DiscountRate = item.DiscountRate
	m.TaxRate = item.TaxRate
	m.Subtotal = item.Subtotal
	m.DiscountAmount = item.DiscountAmount
	m.TaxAmount = item.TaxAmount
	m.Total = item.Total
	m.SortOrder = item.SortOrder
}

// PaymentModel is the persistence model for invoice payments
type PaymentModel struct {
	TenantEntityModel
	InvoiceID     uuid.UUID               `gorm:"type:uuid;not null;index"`
	InvoiceNumber string                  `gorm:"type:varchar(50);not null"`
	CustomerID    uuid.UUID               `gorm:"type:uuid;not null;index"`
	Amount        decimal.Decimal         `gorm:"type:decimal(18,2);not null"`
	Currency      string                  `gorm:"type:char(3);not null"`
	Method        invoicing.PaymentMethod `gorm:"type:varchar(20);not null"`
	PaidAt        time.Time               `gorm:"not null;index"`
	Reference     string                  `gorm:"type:varchar(100)"`
	Notes         string                  `gorm:"type:text"`
	CreatedBy     *uuid.UUID              `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (PaymentModel) TableName() string {
	return "payments"
}

// ToDomain converts the persistence model to a domain Payment
func (m *PaymentModel) ToDomain() *invoicing.Payment {
	return &invoicing.Payment{
		TenantEntity:  m.ToDomainTenantEntity(),
		InvoiceID:     m.InvoiceID,
		InvoiceNumber: m.InvoiceNumber,
		CustomerID:    m.CustomerID,
		Amount:        m.Amount,
		Currency:      valueobject.Currency(m.Currency),
		Method:        m.Method,
		PaidAt:        m.PaidAt,
		Reference:     m.Reference,
		Notes:         m.Notes,
		CreatedBy:     m.CreatedBy,
	}
}

// PaymentModelFromDomain creates a new persistence model from a domain Payment
func PaymentModelFromDomain(p *invoicing.Payment) *PaymentModel {
	m := &PaymentModel{
		InvoiceID:     p.InvoiceID,
		InvoiceNumber: p.InvoiceNumber,
		CustomerID:    p.CustomerID,
		Amount:        p.Amount,
		Currency:      p.Currency.String(),
		Method:        p.Method,
		PaidAt:        p.PaidAt,
		Reference:     p.Reference,
		Notes:         p.Notes,
		CreatedBy:     p.CreatedBy,
	}
	m.FromDomainTenantEntity(p.TenantEntity)
	return m
}
