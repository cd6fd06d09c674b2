package catalog

import (
	"github.com/ledgerly/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// AggregateTypeProduct is the aggregate type of Product events
const AggregateTypeProduct = "Product"

// Product domain event types
const (
	EventTypeProductCreated = "ProductCreated"
	EventTypeStockAdjusted  = "StockAdjusted"
)

// ProductCreatedEvent is published when a product is created
type ProductCreatedEvent struct {
	shared.BaseDomainEvent
	SKU  string `json:"sku"`
	Name string `json:"name"`
}

// NewProductCreatedEvent creates a new ProductCreatedEvent
func NewProductCreatedEvent(p *Product) *ProductCreatedEvent {
	return &ProductCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProductCreated, AggregateTypeProduct, p.ID, p.TenantID),
		SKU:             p.SKU,
		Name:            p.Name,
	}
}

// StockAdjustedEvent is published on manual stock corrections
type StockAdjustedEvent struct {
	shared.BaseDomainEvent
	SKU    string          `json:"sku"`
	Before decimal.Decimal `json:"before"`
	Delta  decimal.Decimal `json:"delta"`
	After  decimal.Decimal `json:"after"`
	Reason string          `json:"reason"`
}

// NewStockAdjustedEvent creates a new StockAdjustedEvent
func NewStockAdjustedEvent(p *Product, before, delta decimal.Decimal, reason string) *StockAdjustedEvent {
	return &StockAdjustedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockAdjusted, AggregateTypeProduct, p.ID, p.TenantID),
		SKU:             p.SKU,
		Before:          before,
		Delta:           delta,
		After:           p.StockQuantity,
		Reason:          reason,
	}
}
