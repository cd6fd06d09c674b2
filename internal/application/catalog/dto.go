package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/ledgerly/backend/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

// CreateProductRequest represents a request to create a product
type CreateProductRequest struct {
	SKU         string          `json:"sku" binding:"required,min=1,max=50"`
	Name        string          `json:"name" binding:"required,min=1,max=200"`
	Description string          `json:"description" binding:"max=2000"`
	Unit        string          `json:"unit" binding:"max=20"`
	SalePrice   decimal.Decimal `json:"sale_price"`
	CostPrice   decimal.Decimal `json:"cost_price"`
	TaxRate     decimal.Decimal `json:"tax_rate"`
	TrackStock  bool            `json:"track_stock"`
	// InitialStock is booked as a stock adjustment when TrackStock is set
	InitialStock *decimal.Decimal `json:"initial_stock"`
}

// UpdateProductRequest replaces the editable fields of a product.
// Omitted optional fields keep their current value.
type UpdateProductRequest struct {
	Name        *string          `json:"name" binding:"omitempty,min=1,max=200"`
	Description *string          `json:"description" binding:"omitempty,max=2000"`
	Unit        *string          `json:"unit" binding:"omitempty,max=20"`
	SalePrice   *decimal.Decimal `json:"sale_price"`
	CostPrice   *decimal.Decimal `json:"cost_price"`
	TaxRate     *decimal.Decimal `json:"tax_rate"`
	TrackStock  *bool            `json:"track_stock"`
	IsActive    *bool            `json:"is_active"`
}

// AdjustStockRequest is a manual stock correction
type AdjustStockRequest struct {
	Delta  decimal.Decimal `json:"delta" binding:"required"`
	Reason string          `json:"reason" binding:"required,min=1,max=500"`
}

// ProductListFilter holds product query parameters
type ProductListFilter struct {
	Page       int    `form:"page" binding:"omitempty,min=1"`
	PageSize   int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy    string `form:"order_by"`
	OrderDir   string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
	Search     string `form:"search"`
	IsActive   *bool  `form:"is_active"`
	TrackStock *bool  `form:"track_stock"`
}

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID            uuid.UUID       `json:"id"`
	SKU           string          `json:"sku"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Unit          string          `json:"unit"`
	SalePrice     decimal.Decimal `json:"sale_price"`
	CostPrice     decimal.Decimal `json:"cost_price"`
	TaxRate       decimal.Decimal `json:"tax_rate"`
	TrackStock    bool            `json:"track_stock"`
	StockQuantity decimal.Decimal `json:"stock_quantity"`
	IsActive      bool            `json:"is_active"`
	Version       int             `json:"version"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// ToProductResponse converts a domain product
func ToProductResponse(p *catalog.Product) ProductResponse {
	return ProductResponse{
		ID:            p.ID,
		SKU:           p.SKU,
		Name:          p.Name,
		Description:   p.Description,
		Unit:          p.Unit,
		SalePrice:     p.SalePrice,
		CostPrice:     p.CostPrice,
		TaxRate:       p.TaxRate,
		TrackStock:    p.TrackStock,
		StockQuantity: p.StockQuantity,
		IsActive:      p.IsActive,
		Version:       p.Version,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}
