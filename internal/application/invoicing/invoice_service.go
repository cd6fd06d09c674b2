// Package invoicing runs the invoice lifecycle: numbering, confirmation with
// stock and receivable effects, payments and printing.
package invoicing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	activityapp "github.com/ledgerly/backend/internal/application/activity"
	"github.com/ledgerly/backend/internal/domain/activity"
	"github.com/ledgerly/backend/internal/domain/catalog"
	"github.com/ledgerly/backend/internal/domain/identity"
	"github.com/ledgerly/backend/internal/domain/invoicing"
	"github.com/ledgerly/backend/internal/domain/partner"
	"github.com/ledgerly/backend/internal/domain/sequence"
	"github.com/ledgerly/backend/internal/domain/shared"
	"github.com/ledgerly/backend/internal/domain/shared/valueobject"
	"github.com/ledgerly/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const serviceName = "InvoiceService"

// InvoiceService handles invoice operations
type InvoiceService struct {
	invoiceRepo  invoicing.InvoiceRepository
	customerRepo partner.CustomerRepository
	productRepo  catalog.ProductRepository
	accountRepo  identity.AccountRepository
	sequences    sequence.Generator
	tx           shared.Transactor
	ledger       ledger
	events       shared.EventPublisher
	recorder     *activityapp.Recorder
	logger       *zap.Logger
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(
	invoiceRepo invoicing.InvoiceRepository,
	customerRepo partner.CustomerRepository,
	productRepo catalog.ProductRepository,
	accountRepo identity.AccountRepository,
	sequences sequence.Generator,
	tx shared.Transactor,
	events shared.EventPublisher,
	recorder *activityapp.Recorder,
	logger *zap.Logger,
) *InvoiceService {
	return &InvoiceService{
		invoiceRepo:  invoiceRepo,
		customerRepo: customerRepo,
		productRepo:  productRepo,
		accountRepo:  accountRepo,
		sequences:    sequences,
		tx:           tx,
		ledger:       ledger{productRepo: productRepo, customerRepo: customerRepo},
		events:       events,
		recorder:     recorder,
		logger:       logger,
	}
}

// Create creates a draft invoice. The number is drawn from the account's
// invoice series in the same transaction that stores the invoice.
func (s *InvoiceService) Create(ctx context.Context, tenantID uuid.UUID, req CreateInvoiceRequest) (resp *InvoiceResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, serviceName, "Create", attribute.String("tenant.id", tenantID.String()))
	defer func() { telemetry.EndSpan(span, err) }()

	account, err := s.accountRepo.FindByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	header, err := s.header(ctx, tenantID, account, nil, req.CustomerID, req.IssueDate, req.DueDate, req.Currency, req.Notes)
	if err != nil {
		return nil, err
	}
	items, err := s.resolveItems(ctx, tenantID, req.Items)
	if err != nil {
		return nil, err
	}

	var invoice *invoicing.Invoice
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		number, err := s.sequences.Next(ctx,
			sequence.NewKey(tenantID, sequence.DocumentTypeInvoice, header.IssueDate),
			account.Numbering.InvoicePrefix)
		if err != nil {
			return err
		}
		invoice, err = invoicing.NewInvoice(tenantID, number, header, items)
		if err != nil {
			return err
		}
		if actor := shared.ActorFromContext(ctx); actor.UserID != uuid.Nil {
			invoice.SetCreatedBy(actor.UserID)
		}
		return s.invoiceRepo.Create(ctx, invoice)
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, invoice)

	s.logger.Info("Invoice created",
		zap.String("tenant_id", tenantID.String()),
		zap.String("invoice_id", invoice.ID.String()),
		zap.String("number", invoice.Number))

	out := ToInvoiceResponse(invoice)
	s.record(ctx, invoice, activity.ActionCreate, nil, out)
	return &out, nil
}

// Get returns an invoice with its items
func (s *InvoiceService) Get(ctx context.Context, tenantID, id uuid.UUID) (*InvoiceResponse, error) {
	invoice, err := s.invoiceRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	resp := ToInvoiceResponse(invoice)
	return &resp, nil
}

// List returns a page of invoice headers
func (s *InvoiceService) List(ctx context.Context, tenantID uuid.UUID, filter InvoiceListFilter) ([]InvoiceResponse, int64, error) {
	domainFilter := invoicing.InvoiceFilter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  filter.OrderBy,
			OrderDir: filter.OrderDir,
			Search:   filter.Search,
		}.Normalize(),
		CustomerID: filter.CustomerID,
		DateFrom:   filter.DateFrom,
		DateTo:     filter.DateTo,
		Overdue:    filter.Overdue,
	}
	if filter.Status != "" {
		status := invoicing.InvoiceStatus(strings.ToUpper(filter.Status))
		if !status.IsValid() {
			return nil, 0, shared.NewDomainError("INVALID_STATUS", fmt.Sprintf("Unknown invoice status %q", filter.Status))
		}
		domainFilter.Status = &status
	}

	invoices, total, err := s.invoiceRepo.FindAll(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	out := make([]InvoiceResponse, len(invoices))
	for i, inv := range invoices {
		out[i] = ToInvoiceResponse(inv)
	}
	return out, total, nil
}

// Update replaces the header and lines of a draft invoice
func (s *InvoiceService) Update(ctx context.Context, tenantID, id uuid.UUID, req UpdateInvoiceRequest) (*InvoiceResponse, error) {
	invoice, err := s.invoiceRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if invoice.Status != invoicing.InvoiceStatusDraft {
		return nil, shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot edit invoice in %s status", invoice.Status))
	}
	account, err := s.accountRepo.FindByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	header, err := s.header(ctx, tenantID, account, invoice, req.CustomerID, req.IssueDate, req.DueDate, req.Currency, req.Notes)
	if err != nil {
		return nil, err
	}
	items, err := s.resolveItems(ctx, tenantID, req.Items)
	if err != nil {
		return nil, err
	}

	before := ToInvoiceResponse(invoice)
	if err := invoice.Update(header, items); err != nil {
		return nil, err
	}
	if err := s.invoiceRepo.Save(ctx, invoice); err != nil {
		return nil, err
	}
	s.publish(ctx, invoice)

	resp := ToInvoiceResponse(invoice)
	s.record(ctx, invoice, activity.ActionUpdate, before, resp)
	return &resp, nil
}

// Delete removes a draft or cancelled invoice. Its number is not reused.
// The status is checked under the row lock so a concurrent Confirm cannot
// slip in between the check and the delete.
func (s *InvoiceService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	var invoice *invoicing.Invoice
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		invoice, err = s.invoiceRepo.FindByIDForUpdate(ctx, tenantID, id)
		if err != nil {
			return err
		}
		if !invoice.CanDelete() {
			return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot delete invoice in %s status", invoice.Status))
		}
		return s.invoiceRepo.Delete(ctx, tenantID, id)
	})
	if err != nil {
		return err
	}

	s.logger.Info("Invoice deleted", zap.String("invoice_id", id.String()), zap.String("number", invoice.Number))
	s.record(ctx, invoice, activity.ActionDelete, ToInvoiceResponse(invoice), nil)
	return nil
}

// Confirm issues a draft: stock leaves the warehouse and the total becomes
// receivable. Nothing changes if any step fails.
func (s *InvoiceService) Confirm(ctx context.Context, tenantID, id uuid.UUID) (*InvoiceResponse, error) {
	return s.transition(ctx, tenantID, id, "Confirm", activity.ActionConfirm, func(ctx context.Context, inv *invoicing.Invoice) error {
		if err := inv.Confirm(); err != nil {
			return err
		}
		return s.ledger.issue(ctx, inv)
	})
}

// Unconfirm returns an unpaid confirmed invoice to draft and reverses its effects
func (s *InvoiceService) Unconfirm(ctx context.Context, tenantID, id uuid.UUID) (*InvoiceResponse, error) {
	return s.transition(ctx, tenantID, id, "Unconfirm", activity.ActionUnconfirm, func(ctx context.Context, inv *invoicing.Invoice) error {
		if err := inv.Unconfirm(); err != nil {
			return err
		}
		return s.ledger.revert(ctx, inv)
	})
}

// Cancel cancels a draft or unpaid confirmed invoice
func (s *InvoiceService) Cancel(ctx context.Context, tenantID, id uuid.UUID, req CancelInvoiceRequest) (*InvoiceResponse, error) {
	return s.transition(ctx, tenantID, id, "Cancel", activity.ActionCancel, func(ctx context.Context, inv *invoicing.Invoice) error {
		wasIssued := inv.Status.AppliesSideEffects()
		if err := inv.Cancel(req.Reason); err != nil {
			return err
		}
		if !wasIssued {
			return nil
		}
		return s.ledger.revert(ctx, inv)
	})
}

// Reopen moves a cancelled invoice back to draft
func (s *InvoiceService) Reopen(ctx context.Context, tenantID, id uuid.UUID) (*InvoiceResponse, error) {
	return s.transition(ctx, tenantID, id, "Reopen", activity.ActionReopen, func(_ context.Context, inv *invoicing.Invoice) error {
		return inv.Reopen()
	})
}

// Summary returns per-status counts and amounts
func (s *InvoiceService) Summary(ctx context.Context, tenantID uuid.UUID, filter SummaryFilter) (*SummaryResponse, error) {
	rows, err := s.invoiceRepo.SummarizeByStatus(ctx, tenantID, filter.DateFrom, filter.DateTo)
	if err != nil {
		return nil, err
	}
	byStatus := make(map[invoicing.InvoiceStatus]invoicing.StatusSummary, len(rows))
	for _, r := range rows {
		byStatus[r.Status] = r
	}

	resp := &SummaryResponse{
		ByStatus:         make([]StatusSummaryResponse, 0, len(invoicing.AllInvoiceStatuses())),
		TotalInvoiced:    decimal.Zero,
		TotalPaid:        decimal.Zero,
		TotalOutstanding: decimal.Zero,
	}
	for _, status := range invoicing.AllInvoiceStatuses() {
		r, ok := byStatus[status]
		if !ok {
			r = invoicing.StatusSummary{Status: status, TotalAmount: decimal.Zero, PaidAmount: decimal.Zero}
		}
		resp.ByStatus = append(resp.ByStatus, StatusSummaryResponse{
			Status:      string(status),
			Count:       r.Count,
			TotalAmount: r.TotalAmount,
			PaidAmount:  r.PaidAmount,
		})
		resp.TotalCount += r.Count
		if status.AppliesSideEffects() {
			resp.TotalInvoiced = resp.TotalInvoiced.Add(r.TotalAmount)
			resp.TotalPaid = resp.TotalPaid.Add(r.PaidAmount)
		}
	}
	resp.TotalOutstanding = resp.TotalInvoiced.Sub(resp.TotalPaid)
	return resp, nil
}

// transition runs a status change on a locked invoice inside one transaction
func (s *InvoiceService) transition(
	ctx context.Context,
	tenantID, id uuid.UUID,
	method string,
	action activity.Action,
	apply func(ctx context.Context, inv *invoicing.Invoice) error,
) (resp *InvoiceResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, serviceName, method,
		attribute.String("tenant.id", tenantID.String()),
		attribute.String("invoice.id", id.String()))
	defer func() { telemetry.EndSpan(span, err) }()

	var (
		invoice *invoicing.Invoice
		before  InvoiceResponse
	)
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		invoice, err = s.invoiceRepo.FindByIDForUpdate(ctx, tenantID, id)
		if err != nil {
			return err
		}
		before = ToInvoiceResponse(invoice)
		if err := apply(ctx, invoice); err != nil {
			return err
		}
		return s.invoiceRepo.Save(ctx, invoice)
	})
	if err != nil {
		s.logger.Debug("Invoice transition rejected",
			zap.String("invoice_id", id.String()),
			zap.String("transition", method),
			zap.Error(err))
		return nil, err
	}
	s.publish(ctx, invoice)

	s.logger.Info("Invoice status changed",
		zap.String("invoice_id", id.String()),
		zap.String("number", invoice.Number),
		zap.String("from", before.Status),
		zap.String("to", string(invoice.Status)))

	out := ToInvoiceResponse(invoice)
	s.record(ctx, invoice, action, before, out)
	return &out, nil
}

// header resolves the customer and currency of an invoice header. An
// existing invoice may keep an inactive customer it already references.
func (s *InvoiceService) header(
	ctx context.Context,
	tenantID uuid.UUID,
	account *identity.Account,
	existing *invoicing.Invoice,
	customerID uuid.UUID,
	issueDate time.Time,
	dueDate *time.Time,
	currencyCode, notes string,
) (invoicing.InvoiceHeader, error) {
	customer, err := s.customerRepo.FindByID(ctx, tenantID, customerID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return invoicing.InvoiceHeader{}, shared.NewDomainError("INVALID_CUSTOMER", "Customer not found")
		}
		return invoicing.InvoiceHeader{}, err
	}
	keepsCustomer := existing != nil && existing.CustomerID == customer.ID
	if !customer.IsActive && !keepsCustomer {
		return invoicing.InvoiceHeader{}, shared.NewDomainError("CUSTOMER_INACTIVE", "Customer is inactive")
	}

	currency := account.Currency
	if currencyCode != "" {
		currency, err = valueobject.ParseCurrency(strings.ToUpper(currencyCode))
		if err != nil {
			return invoicing.InvoiceHeader{}, shared.NewDomainError("INVALID_CURRENCY", err.Error())
		}
	}

	header := invoicing.InvoiceHeader{
		CustomerID:   customer.ID,
		CustomerName: customer.Name,
		IssueDate:    issueDate,
		Currency:     currency,
		Notes:        notes,
	}
	if dueDate != nil {
		header.DueDate = *dueDate
	}
	return header, nil
}

// resolveItems fills product defaults into the requested lines
func (s *InvoiceService) resolveItems(ctx context.Context, tenantID uuid.UUID, reqs []ItemRequest) ([]invoicing.ItemInput, error) {
	products := make(map[uuid.UUID]*catalog.Product)
	items := make([]invoicing.ItemInput, len(reqs))
	for i, r := range reqs {
		item := invoicing.ItemInput{
			ProductID:    r.ProductID,
			ProductName:  r.ProductName,
			Description:  r.Description,
			Quantity:     r.Quantity,
			UnitPrice:    decimal.Zero,
			DiscountRate: r.DiscountRate,
			TaxRate:      decimal.Zero,
		}
		if r.ProductID != nil {
			product, ok := products[*r.ProductID]
			if !ok {
				var err error
				product, err = s.productRepo.FindByID(ctx, tenantID, *r.ProductID)
				if err != nil {
					if errors.Is(err, shared.ErrNotFound) {
						return nil, shared.NewDomainError("INVALID_PRODUCT", fmt.Sprintf("Item %d: product not found", i+1))
					}
					return nil, err
				}
				products[product.ID] = product
			}
			if !product.IsActive {
				return nil, shared.NewDomainError("PRODUCT_INACTIVE", fmt.Sprintf("Item %d: product %s is inactive", i+1, product.SKU))
			}
			if strings.TrimSpace(item.ProductName) == "" {
				item.ProductName = product.Name
			}
			item.UnitPrice = product.SalePrice
			item.TaxRate = product.TaxRate
		}
		if r.UnitPrice != nil {
			item.UnitPrice = *r.UnitPrice
		}
		if r.TaxRate != nil {
			item.TaxRate = *r.TaxRate
		}
		items[i] = item
	}
	return items, nil
}

func (s *InvoiceService) publish(ctx context.Context, invoice *invoicing.Invoice) {
	if err := shared.PublishAndClear(ctx, s.events, invoice); err != nil {
		s.logger.Warn("Failed to publish invoice events", zap.Error(err))
	}
}

func (s *InvoiceService) record(ctx context.Context, invoice *invoicing.Invoice, action activity.Action, before, after any) {
	s.recorder.Record(ctx, invoice.TenantID, activity.Entry{
		Action:      action,
		EntityType:  activity.EntityInvoice,
		EntityID:    invoice.ID,
		EntityLabel: invoice.Number,
		Before:      before,
		After:       after,
	})
}
