// Package catalog manages the products an account sells.
package catalog

import (
	"context"
	"strings"

	"github.com/google/uuid"
	activityapp "github.com/ledgerly/backend/internal/application/activity"
	"github.com/ledgerly/backend/internal/domain/activity"
	"github.com/ledgerly/backend/internal/domain/catalog"
	"github.com/ledgerly/backend/internal/domain/invoicing"
	"github.com/ledgerly/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ProductService handles product-related business operations
type ProductService struct {
	productRepo catalog.ProductRepository
	invoiceRepo invoicing.InvoiceRepository
	tx          shared.Transactor
	events      shared.EventPublisher
	recorder    *activityapp.Recorder
	logger      *zap.Logger
}

// NewProductService creates a new ProductService
func NewProductService(
	productRepo catalog.ProductRepository,
	invoiceRepo invoicing.InvoiceRepository,
	tx shared.Transactor,
	events shared.EventPublisher,
	recorder *activityapp.Recorder,
	logger *zap.Logger,
) *ProductService {
	return &ProductService{
		productRepo: productRepo,
		invoiceRepo: invoiceRepo,
		tx:          tx,
		events:      events,
		recorder:    recorder,
		logger:      logger,
	}
}

// Create creates a new product
func (s *ProductService) Create(ctx context.Context, tenantID uuid.UUID, req CreateProductRequest) (*ProductResponse, error) {
	sku := strings.ToUpper(strings.TrimSpace(req.SKU))
	exists, err := s.productRepo.ExistsBySKU(ctx, tenantID, sku)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Product with this SKU already exists")
	}

	product, err := catalog.NewProduct(tenantID, sku, catalog.ProductDetails{
		Name:        req.Name,
		Description: req.Description,
		Unit:        req.Unit,
		SalePrice:   req.SalePrice,
		CostPrice:   req.CostPrice,
		TaxRate:     req.TaxRate,
		TrackStock:  req.TrackStock,
	})
	if err != nil {
		return nil, err
	}
	if req.InitialStock != nil && req.InitialStock.IsPositive() {
		if err := product.AdjustStock(*req.InitialStock, "Initial stock"); err != nil {
			return nil, err
		}
	}
	if actor := shared.ActorFromContext(ctx); actor.UserID != uuid.Nil {
		product.SetCreatedBy(actor.UserID)
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}
	s.publish(ctx, product)

	resp := ToProductResponse(product)
	s.record(ctx, product, activity.ActionCreate, nil, resp)
	return &resp, nil
}

// GetByID retrieves a product by ID
func (s *ProductService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	resp := ToProductResponse(product)
	return &resp, nil
}

// List retrieves products with filtering and pagination
func (s *ProductService) List(ctx context.Context, tenantID uuid.UUID, filter ProductListFilter) ([]ProductResponse, int64, error) {
	if filter.OrderBy == "" {
		filter.OrderBy = "sku"
		if filter.OrderDir == "" {
			filter.OrderDir = "asc"
		}
	}
	products, total, err := s.productRepo.FindAll(ctx, tenantID, catalog.ProductFilter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  filter.OrderBy,
			OrderDir: filter.OrderDir,
			Search:   filter.Search,
		}.Normalize(),
		IsActive:   filter.IsActive,
		TrackStock: filter.TrackStock,
	})
	if err != nil {
		return nil, 0, err
	}

	out := make([]ProductResponse, len(products))
	for i, p := range products {
		out[i] = ToProductResponse(p)
	}
	return out, total, nil
}

// Update changes a product's details and active flag
func (s *ProductService) Update(ctx context.Context, tenantID, id uuid.UUID, req UpdateProductRequest) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	before := ToProductResponse(product)

	details := catalog.ProductDetails{
		Name:        pick(req.Name, product.Name),
		Description: pick(req.Description, product.Description),
		Unit:        pick(req.Unit, product.Unit),
		SalePrice:   pick(req.SalePrice, product.SalePrice),
		CostPrice:   pick(req.CostPrice, product.CostPrice),
		TaxRate:     pick(req.TaxRate, product.TaxRate),
		TrackStock:  pick(req.TrackStock, product.TrackStock),
	}
	if product.TrackStock && !details.TrackStock && !product.StockQuantity.IsZero() {
		return nil, shared.NewDomainError("STOCK_NOT_EMPTY", "Stock tracking can only be turned off when stock is zero")
	}
	if details.TrackStock != product.TrackStock {
		// Reverting an issued invoice moves stock by the product's current
		// flag, so the flag is fixed once such an invoice exists.
		count, err := s.invoiceRepo.CountByProduct(ctx, tenantID, id)
		if err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, shared.NewDomainError("PRODUCT_IN_USE", "Stock tracking cannot change while issued invoices reference the product")
		}
	}
	if err := product.Update(details); err != nil {
		return nil, err
	}
	if req.IsActive != nil {
		if *req.IsActive {
			product.Activate()
		} else {
			product.Deactivate()
		}
	}

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}
	s.publish(ctx, product)

	resp := ToProductResponse(product)
	s.record(ctx, product, activity.ActionUpdate, before, resp)
	return &resp, nil
}

// Delete removes a product that no issued invoice references.
// Referenced products should be deactivated instead.
func (s *ProductService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	product, err := s.productRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		return err
	}
	count, err := s.invoiceRepo.CountByProduct(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return shared.NewDomainError("PRODUCT_IN_USE", "Product is used by issued invoices; deactivate it instead")
	}
	if err := s.productRepo.Delete(ctx, tenantID, id); err != nil {
		return err
	}

	s.logger.Info("Product deleted", zap.String("product_id", id.String()), zap.String("sku", product.SKU))
	s.record(ctx, product, activity.ActionDelete, ToProductResponse(product), nil)
	return nil
}

// AdjustStock applies a manual stock correction under a row lock
func (s *ProductService) AdjustStock(ctx context.Context, tenantID, id uuid.UUID, req AdjustStockRequest) (*ProductResponse, error) {
	var (
		product *catalog.Product
		before  decimal.Decimal
	)
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		locked, err := s.productRepo.FindByIDsForUpdate(ctx, tenantID, []uuid.UUID{id})
		if err != nil {
			return err
		}
		if len(locked) == 0 {
			return shared.NewDomainError("NOT_FOUND", "Product not found")
		}
		product = locked[0]
		before = product.StockQuantity
		if err := product.AdjustStock(req.Delta, req.Reason); err != nil {
			return err
		}
		return s.productRepo.Save(ctx, product)
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, product)

	s.logger.Info("Stock adjusted",
		zap.String("product_id", id.String()),
		zap.String("delta", req.Delta.String()),
		zap.String("stock", product.StockQuantity.String()))

	resp := ToProductResponse(product)
	s.record(ctx, product, activity.ActionStockAdjust,
		map[string]any{"stock_quantity": before},
		map[string]any{"stock_quantity": product.StockQuantity, "reason": strings.TrimSpace(req.Reason)})
	return &resp, nil
}

func (s *ProductService) publish(ctx context.Context, product *catalog.Product) {
	if err := shared.PublishAndClear(ctx, s.events, product); err != nil {
		s.logger.Warn("Failed to publish product events", zap.Error(err))
	}
}

func (s *ProductService) record(ctx context.Context, product *catalog.Product, action activity.Action, before, after any) {
	s.recorder.Record(ctx, product.TenantID, activity.Entry{
		Action:      action,
		EntityType:  activity.EntityProduct,
		EntityID:    product.ID,
		EntityLabel: product.SKU,
		Before:      before,
		After:       after,
	})
}

func pick[T any](v *T, fallback T) T {
	if v == nil {
		return fallback
	}
	return *v
}
