package invoicing

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/ledgerly/backend/internal/domain/catalog"
	"github.com/ledgerly/backend/internal/domain/invoicing"
	"github.com/ledgerly/backend/internal/domain/partner"
	"github.com/ledgerly/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ledger applies the stock and receivable effects of an invoice entering or
// leaving an issued status. It must run inside the caller's transaction after
// the invoice row is locked. Products are locked in id order, then the customer.
type ledger struct {
	productRepo  catalog.ProductRepository
	customerRepo partner.CustomerRepository
}

// issue takes stock out and adds the total to the customer's balance
func (l ledger) issue(ctx context.Context, inv *invoicing.Invoice) error {
	if err := l.moveStock(ctx, inv, (*catalog.Product).DecreaseStock); err != nil {
		return err
	}
	return l.moveBalance(ctx, inv.TenantID, inv.CustomerID, inv.TotalAmount, (*partner.Customer).IncreaseBalance)
}

// revert puts stock back and removes the total from the customer's balance
func (l ledger) revert(ctx context.Context, inv *invoicing.Invoice) error {
	if err := l.moveStock(ctx, inv, (*catalog.Product).IncreaseStock); err != nil {
		return err
	}
	return l.moveBalance(ctx, inv.TenantID, inv.CustomerID, inv.TotalAmount, (*partner.Customer).DecreaseBalance)
}

// paymentReceived lowers the customer's balance
func (l ledger) paymentReceived(ctx context.Context, tenantID, customerID uuid.UUID, amount decimal.Decimal) error {
	return l.moveBalance(ctx, tenantID, customerID, amount, (*partner.Customer).DecreaseBalance)
}

// paymentReversed raises the customer's balance again
func (l ledger) paymentReversed(ctx context.Context, tenantID, customerID uuid.UUID, amount decimal.Decimal) error {
	return l.moveBalance(ctx, tenantID, customerID, amount, (*partner.Customer).IncreaseBalance)
}

func (l ledger) moveStock(ctx context.Context, inv *invoicing.Invoice, apply func(*catalog.Product, decimal.Decimal) error) error {
	ids := inv.ProductIDs()
	if len(ids) == 0 {
		return nil
	}
	products, err := l.productRepo.FindByIDsForUpdate(ctx, inv.TenantID, ids)
	if err != nil {
		return err
	}
	found := make(map[uuid.UUID]struct{}, len(products))
	for _, p := range products {
		found[p.ID] = struct{}{}
	}
	for _, id := range ids {
		if _, ok := found[id]; !ok {
			return shared.NewDomainError("INVALID_PRODUCT", fmt.Sprintf("Product %s no longer exists", id))
		}
	}

	quantities := inv.ProductQuantities()
	for _, p := range products {
		if err := apply(p, quantities[p.ID]); err != nil {
			return err
		}
	}
	for _, p := range products {
		if !p.TrackStock {
			continue
		}
		if err := l.productRepo.Save(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

func (l ledger) moveBalance(ctx context.Context, tenantID, customerID uuid.UUID, amount decimal.Decimal, apply func(*partner.Customer, decimal.Decimal) error) error {
	if !amount.IsPositive() {
		return nil
	}
	customer, err := l.customerRepo.FindByIDForUpdate(ctx, tenantID, customerID)
	if err != nil {
		return err
	}
	if err := apply(customer, amount); err != nil {
		return err
	}
	return l.customerRepo.Save(ctx, customer)
}
