package models

import (
	"github.com/ledgerly/backend/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

// ProductModel is the persistence model for the Product aggregate
type ProductModel struct {
	TenantAggregateModel
	SKU           string          `gorm:"column:sku;type:varchar(50);not null"`
	Name          string          `gorm:"type:varchar(200);not null"`
	Description   string          `gorm:"type:text"`
	Unit          string          `gorm:"type:varchar(20);not null"`
	SalePrice     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	CostPrice     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	TaxRate       decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`
	TrackStock    bool            `gorm:"not null;default:false"`
	StockQuantity decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	IsActive      bool            `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the persistence model to a domain Product
func (m *ProductModel) ToDomain() *catalog.Product {
	return &catalog.Product{
		TenantAggregateRoot: m.ToDomainTenantAggregateRoot(),
		SKU:                 m.SKU,
		Name:                m.Name,
		Description:         m.Description,
		Unit:                m.Unit,
		SalePrice:           m.SalePrice,
		CostPrice:           m.CostPrice,
		TaxRate:             m.TaxRate,
		TrackStock:          m.TrackStock,
		StockQuantity:       m.StockQuantity,
		IsActive:            m.IsActive,
	}
}

// FromDomain populates the persistence model from a domain Product
func (m *ProductModel) FromDomain(p *catalog.Product) {
	m.FromDomainTenantAggregateRoot(p.TenantAggregateRoot)
	m.SKU = p.SKU
	m.Name = p.Name
	m.Description = p.Description
	m.Unit = p.Unit
	m.SalePrice = p.SalePrice
	m.CostPrice = p.CostPrice
	m.TaxRate = p.TaxRate
	m.TrackStock = p.TrackStock
	m.StockQuantity = p.StockQuantity
	m.IsActive = p.IsActive
}

// ProductModelFromDomain creates a new persistence model from a domain Product
func ProductModelFromDomain(p *catalog.Product) *ProductModel {
	m := &ProductModel{}
	m.FromDomain(p)
	return m
}
