package models

import (
	"github.com/ledgerly/backend/internal/domain/partner"
	"github.com/shopspring/decimal"
)

// CustomerModel is the persistence model for the Customer aggregate
type CustomerModel struct {
	TenantAggregateModel
	Code      string          `gorm:"type:varchar(50);not null"`
	Name      string          `gorm:"type:varchar(200);not null"`
	Email     string          `gorm:"type:varchar(200)"`
	Phone     string          `gorm:"type:varchar(50)"`
	Address   string          `gorm:"type:text"`
	TaxNumber string          `gorm:"type:varchar(50)"`
	Notes     string          `gorm:"type:text"`
	Balance   decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	IsActive  bool            `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (CustomerModel) TableName() string {
	return "customers"
}

// ToDomain converts the persistence model to a domain Customer
func (m *CustomerModel) ToDomain() *partner.Customer {
	return &partner.Customer{
		TenantAggregateRoot: m.ToDomainTenantAggregateRoot(),
		Code:                m.Code,
		Name:                m.Name,
		Email:               m.Email,
		Phone:               m.Phone,
		Address:             m.Address,
		TaxNumber:           m.TaxNumber,
		Notes:               m.Notes,
		Balance:             m.Balance,
		IsActive:            m.IsActive,
	}
}

// FromDomain populates the persistence model from a domain Customer
func (m *CustomerModel) FromDomain(c *partner.Customer) {
	m.FromDomainTenantAggregateRoot(c.TenantAggregateRoot)
	m.Code = c.Code
	m.Name = c.Name
	m.Email = c.Email
	m.Phone = c.Phone
	m.Address = c.Address
	m.TaxNumber = c.TaxNumber
	m.Notes = c.Notes
	m.Balance = c.Balance
	m.IsActive = c.IsActive
}

// CustomerModelFromDomain creates a new persistence model from a domain Customer
func CustomerModelFromDomain(c *partner.Customer) *CustomerModel {
	m := &CustomerModel{}
	m.FromDomain(c)
	return m
}
