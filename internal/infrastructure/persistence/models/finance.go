package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/ledgerly/backend/internal/domain/finance"
	"github.com/ledgerly/backend/internal/domain/invoicing"
	"github.com/ledgerly/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// EntryColumns are the columns shared by expenses and revenues
type EntryColumns struct {
	Number        string                  `gorm:"type:varchar(50);not null"`
	Category      string                  `gorm:"type:varchar(30);not null;index"`
	Description   string                  `gorm:"type:varchar(500);not null"`
	Amount        decimal.Decimal         `gorm:"type:decimal(18,2);not null"`
	Currency      string                  `gorm:"type:char(3);not null"`
	Date          time.Time               `gorm:"type:date;not null;index"`
	PaymentMethod invoicing.PaymentMethod `gorm:"type:varchar(20);not null"`
	Reference     string                  `gorm:"type:varchar(100)"`
	Notes         string                  `gorm:"type:text"`
}

// ExpenseModel is the persistence model for the Expense aggregate
type ExpenseModel struct {
	TenantAggregateModel
	EntryColumns
	Payee string `gorm:"type:varchar(200)"`
}

// TableName returns the table name for GORM
func (ExpenseModel) TableName() string {
	return "expenses"
}

// ToDomain converts the persistence model to a domain Expense
func (m *ExpenseModel) ToDomain() *finance.Expense {
	return &finance.Expense{
		TenantAggregateRoot: m.ToDomainTenantAggregateRoot(),
		Number:              m.Number,
		Category:            finance.ExpenseCategory(m.Category),
		Description:         m.Description,
		Amount:              m.Amount,
		Currency:            valueobject.Currency(m.Currency),
		Date:                m.Date,
		PaymentMethod:       m.PaymentMethod,
		Payee:               m.Payee,
		Reference:           m.Reference,
		Notes:               m.Notes,
	}
}

// ExpenseModelFromDomain creates a new persistence model from a domain Expense
func ExpenseModelFromDomain(e *finance.Expense) *ExpenseModel {
	m := &ExpenseModel{
		EntryColumns: EntryColumns{
			Number:        e.Number,
			Category:      e.Category.String(),
			Description:   e.Description,
			Amount:        e.Amount,
			Currency:      e.Currency.String(),
			Date:          e.Date,
			PaymentMethod: e.PaymentMethod,
			Reference:     e.Reference,
			Notes:         e.Notes,
		},
		Payee: e.Payee,
	}
	m.FromDomainTenantAggregateRoot(e.TenantAggregateRoot)
	return m
}

// RevenueModel is the persistence model for the Revenue aggregate
type RevenueModel struct {
	TenantAggregateModel
	EntryColumns
	Payer      string     `gorm:"type:varchar(200)"`
	CustomerID *uuid.UUID `gorm:"type:uuid;index"`
}

// TableName returns the table name for GORM
func (RevenueModel) TableName() string {
	return "revenues"
}

// ToDomain converts the persistence model to a domain Revenue
func (m *RevenueModel) ToDomain() *finance.Revenue {
	return &finance.Revenue{
		TenantAggregateRoot: m.ToDomainTenantAggregateRoot(),
		Number:              m.Number,
		Category:            finance.RevenueCategory(m.Category),
		Description:         m.Description,
		Amount:              m.Amount,
		Currency:            valueobject.Currency(m.Currency),
		Date:                m.Date,
		PaymentMethod:       m.PaymentMethod,
		Payer:               m.Payer,
		CustomerID:          m.CustomerID,
		Reference:           m.Reference,
		Notes:               m.Notes,
	}
}

// RevenueModelFromDomain creates a new persistence model from a domain Revenue
func RevenueModelFromDomain(r *finance.Revenue) *RevenueModel {
	m := &RevenueModel{
		EntryColumns: EntryColumns{
			Number:        r.Number,
			Category:      r.Category.String(),
			Description:   r.Description,
			Amount:        r.Amount,
			Currency:      r.Currency.String(),
			Date:          r.Date,
			PaymentMethod: r.PaymentMethod,
			Reference:     r.Reference,
			Notes:         r.Notes,
		},
		Payer:      r.Payer,
		CustomerID: r.CustomerID,
	}
	m.FromDomainTenantAggregateRoot(r.TenantAggregateRoot)
	return m
}
