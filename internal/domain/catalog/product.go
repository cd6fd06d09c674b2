package catalog

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ledgerly/backend/internal/domain/shared"
	"github.com/ledgerly/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// Product is a sellable item. Stock is tracked only when TrackStock is set.
type Product struct {
	shared.TenantAggregateRoot
	SKU           string
	Name          string
	Description   string
	Unit          string
	SalePrice     decimal.Decimal
	CostPrice     decimal.Decimal
	TaxRate       decimal.Decimal // percent, 0-100
	TrackStock    bool
	StockQuantity decimal.Decimal
	IsActive      bool
}

// ProductDetails carries the editable fields of a product
type ProductDetails struct {
	Name        string
	Description string
	Unit        string
	SalePrice   decimal.Decimal
	CostPrice   decimal.Decimal
	TaxRate     decimal.Decimal
	TrackStock  bool
}

var hundred = decimal.NewFromInt(100)

// NewProduct creates an active product with zero stock
func NewProduct(tenantID uuid.UUID, sku string, details ProductDetails) (*Product, error) {
	sku = strings.ToUpper(strings.TrimSpace(sku))
	if sku == "" {
		return nil, shared.NewDomainError("INVALID_SKU", "SKU cannot be empty")
	}
	if len(sku) > 50 {
		return nil, shared.NewDomainError("INVALID_SKU", "SKU cannot exceed 50 characters")
	}

	product := &Product{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		SKU:                 sku,
		StockQuantity:       decimal.Zero,
		IsActive:            true,
	}
	if err := product.applyDetails(details); err != nil {
		return nil, err
	}

	product.AddDomainEvent(NewProductCreatedEvent(product))

	return product, nil
}

// Update changes the editable fields
func (p *Product) Update(details ProductDetails) error {
	if err := p.applyDetails(details); err != nil {
		return err
	}
	p.UpdatedAt = time.Now()
	return nil
}

func (p *Product) applyDetails(d ProductDetails) error {
	name := strings.TrimSpace(d.Name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot exceed 200 characters")
	}
	if d.SalePrice.IsNegative() || d.CostPrice.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Prices cannot be negative")
	}
	if !valueobject.FitsScale(d.SalePrice, valueobject.QuantityScale) ||
		!valueobject.FitsScale(d.CostPrice, valueobject.QuantityScale) {
		return shared.NewDomainError("INVALID_PRICE", "Prices cannot have more than 4 decimal places")
	}
	if d.TaxRate.IsNegative() || d.TaxRate.GreaterThan(hundred) ||
		!valueobject.FitsScale(d.TaxRate, valueobject.RateScale) {
		return shared.NewDomainError("INVALID_TAX_RATE", "Tax rate must be between 0 and 100 with at most 2 decimal places")
	}
	unit := strings.TrimSpace(d.Unit)
	if unit == "" {
		unit = "pcs"
	}

	p.Name = name
	p.Description = strings.TrimSpace(d.Description)
	p.Unit = unit
	p.SalePrice = d.SalePrice
	p.CostPrice = d.CostPrice
	p.TaxRate = d.TaxRate
	p.TrackStock = d.TrackStock
	return nil
}

// DecreaseStock removes stock for a sale. Untracked products are left alone.
func (p *Product) DecreaseStock(qty decimal.Decimal) error {
	if !qty.IsPositive() {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if !p.TrackStock {
		return nil
	}
	if p.StockQuantity.LessThan(qty) {
		return shared.NewDomainError("INSUFFICIENT_STOCK",
			fmt.Sprintf("Insufficient stock for %s: available %s, requested %s",
				p.SKU, p.StockQuantity.String(), qty.String()))
	}

	p.StockQuantity = p.StockQuantity.Sub(qty)
	p.UpdatedAt = time.Now()
	return nil
}

// IncreaseStock returns stock, e.g. when a confirmed invoice is reverted
func (p *Product) IncreaseStock(qty decimal.Decimal) error {
	if !qty.IsPositive() {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if !p.TrackStock {
		return nil
	}

	p.StockQuantity = p.StockQuantity.Add(qty)
	p.UpdatedAt = time.Now()
	return nil
}

// AdjustStock applies a manual correction (positive or negative)
func (p *Product) AdjustStock(delta decimal.Decimal, reason string) error {
	if !p.TrackStock {
		return shared.NewDomainError("STOCK_NOT_TRACKED", "Stock is not tracked for this product")
	}
	if delta.IsZero() {
		return shared.NewDomainError("INVALID_QUANTITY", "Adjustment cannot be zero")
	}
	if !valueobject.FitsScale(delta, valueobject.QuantityScale) {
		return shared.NewDomainError("INVALID_QUANTITY", "Adjustment cannot have more than 4 decimal places")
	}
	if strings.TrimSpace(reason) == "" {
		return shared.NewDomainError("INVALID_REASON", "Adjustment reason is required")
	}
	next := p.StockQuantity.Add(delta)
	if next.IsNegative() {
		return shared.NewDomainError("INSUFFICIENT_STOCK", "Adjustment would make stock negative")
	}

	before := p.StockQuantity
	p.StockQuantity = next
	p.UpdatedAt = time.Now()

	p.AddDomainEvent(NewStockAdjustedEvent(p, before, delta, reason))
	return nil
}

// Activate makes the product sellable again
func (p *Product) Activate() {
	p.IsActive = true
	p.UpdatedAt = time.Now()
}

// Deactivate hides the product from new invoices
func (p *Product) Deactivate() {
	p.IsActive = false
	p.UpdatedAt = time.Now()
}
