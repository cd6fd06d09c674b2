// Package partner manages customers and their account statements.
package partner

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	activityapp "github.com/ledgerly/backend/internal/application/activity"
	"github.com/ledgerly/backend/internal/domain/activity"
	"github.com/ledgerly/backend/internal/domain/invoicing"
	"github.com/ledgerly/backend/internal/domain/partner"
	"github.com/ledgerly/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// statementPageSize is the page size used when walking a customer's documents
const statementPageSize = 100

// CustomerService handles customer-related business operations
type CustomerService struct {
	customerRepo partner.CustomerRepository
	invoiceRepo  invoicing.InvoiceRepository
	paymentRepo  invoicing.PaymentRepository
	events       shared.EventPublisher
	recorder     *activityapp.Recorder
	logger       *zap.Logger
}

// NewCustomerService creates a new CustomerService
func NewCustomerService(
	customerRepo partner.CustomerRepository,
	invoiceRepo invoicing.InvoiceRepository,
	paymentRepo invoicing.PaymentRepository,
	events shared.EventPublisher,
	recorder *activityapp.Recorder,
	logger *zap.Logger,
) *CustomerService {
	return &CustomerService{
		customerRepo: customerRepo,
		invoiceRepo:  invoiceRepo,
		paymentRepo:  paymentRepo,
		events:       events,
		recorder:     recorder,
		logger:       logger,
	}
}

// Create creates a new customer
func (s *CustomerService) Create(ctx context.Context, tenantID uuid.UUID, req CreateCustomerRequest) (*CustomerResponse, error) {
	code := strings.ToUpper(strings.TrimSpace(req.Code))
	exists, err := s.customerRepo.ExistsByCode(ctx, tenantID, code)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Customer with this code already exists")
	}

	customer, err := partner.NewCustomer(tenantID, code, partner.CustomerDetails{
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		Address:   req.Address,
		TaxNumber: req.TaxNumber,
		Notes:     req.Notes,
	})
	if err != nil {
		return nil, err
	}
	if actor := shared.ActorFromContext(ctx); actor.UserID != uuid.Nil {
		customer.SetCreatedBy(actor.UserID)
	}

	if err := s.customerRepo.Create(ctx, customer); err != nil {
		return nil, err
	}
	if err := shared.PublishAndClear(ctx, s.events, customer); err != nil {
		s.logger.Warn("Failed to publish customer events", zap.Error(err))
	}

	resp := ToCustomerResponse(customer)
	s.record(ctx, customer, activity.ActionCreate, nil, resp)
	return &resp, nil
}

// GetByID retrieves a customer by ID
func (s *CustomerService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*CustomerResponse, error) {
	customer, err := s.customerRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	resp := ToCustomerResponse(customer)
	return &resp, nil
}

// List retrieves customers with filtering and pagination
func (s *CustomerService) List(ctx context.Context, tenantID uuid.UUID, filter CustomerListFilter) ([]CustomerResponse, int64, error) {
	if filter.OrderBy == "" {
		filter.OrderBy = "name"
		if filter.OrderDir == "" {
			filter.OrderDir = "asc"
		}
	}
	customers, total, err := s.customerRepo.FindAll(ctx, tenantID, partner.CustomerFilter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  filter.OrderBy,
			OrderDir: filter.OrderDir,
			Search:   filter.Search,
		}.Normalize(),
		IsActive:   filter.IsActive,
		HasBalance: filter.HasBalance,
	})
	if err != nil {
		return nil, 0, err
	}

	out := make([]CustomerResponse, len(customers))
	for i, c := range customers {
		out[i] = ToCustomerResponse(c)
	}
	return out, total, nil
}

// Update changes a customer's details and active flag. The balance is never
// touched here.
func (s *CustomerService) Update(ctx context.Context, tenantID, id uuid.UUID, req UpdateCustomerRequest) (*CustomerResponse, error) {
	customer, err := s.customerRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	before := ToCustomerResponse(customer)

	if err := customer.Update(partner.CustomerDetails{
		Name:      pick(req.Name, customer.Name),
		Email:     pick(req.Email, customer.Email),
		Phone:     pick(req.Phone, customer.Phone),
		Address:   pick(req.Address, customer.Address),
		TaxNumber: pick(req.TaxNumber, customer.TaxNumber),
		Notes:     pick(req.Notes, customer.Notes),
	}); err != nil {
		return nil, err
	}
	if req.IsActive != nil {
		if *req.IsActive {
			customer.Activate()
		} else {
			customer.Deactivate()
		}
	}

	if err := s.customerRepo.Save(ctx, customer); err != nil {
		return nil, err
	}

	resp := ToCustomerResponse(customer)
	s.record(ctx, customer, activity.ActionUpdate, before, resp)
	return &resp, nil
}

// Delete removes a customer that owes nothing and has never been invoiced
func (s *CustomerService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	customer, err := s.customerRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if customer.HasBalance() {
		return shared.NewDomainError("CUSTOMER_HAS_BALANCE", "Customer with an outstanding balance cannot be deleted")
	}
	count, err := s.invoiceRepo.CountByCustomer(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return shared.NewDomainError("CUSTOMER_HAS_INVOICES", "Customer with invoices cannot be deleted; deactivate it instead")
	}
	if err := s.customerRepo.Delete(ctx, tenantID, id); err != nil {
		return err
	}

	s.logger.Info("Customer deleted", zap.String("customer_id", id.String()), zap.String("code", customer.Code))
	s.record(ctx, customer, activity.ActionDelete, ToCustomerResponse(customer), nil)
	return nil
}

// Statement builds the customer's account statement. Issued invoices are
// debits and payments are credits; movements before DateFrom fold into the
// opening balance.
func (s *CustomerService) Statement(ctx context.Context, tenantID, id uuid.UUID, filter StatementFilter) (*StatementResponse, error) {
	if filter.DateFrom != nil && filter.DateTo != nil && filter.DateTo.Before(*filter.DateFrom) {
		return nil, shared.NewDomainError("INVALID_DATE_RANGE", "date_to cannot be before date_from")
	}
	customer, err := s.customerRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	invoices, err := collectAll(func(page int) ([]*invoicing.Invoice, int64, error) {
		return s.invoiceRepo.FindAll(ctx, tenantID, invoicing.InvoiceFilter{
			Filter:     statementPage(page, "issue_date"),
			CustomerID: &id,
		})
	})
	if err != nil {
		return nil, err
	}
	payments, err := collectAll(func(page int) ([]*invoicing.Payment, int64, error) {
		return s.paymentRepo.FindAll(ctx, tenantID, invoicing.PaymentFilter{
			Filter:     statementPage(page, "paid_at"),
			CustomerID: &id,
		})
	})
	if err != nil {
		return nil, err
	}

	return buildStatement(customer, invoices, payments, filter, time.Now()), nil
}

func buildStatement(customer *partner.Customer, invoices []*invoicing.Invoice, payments []*invoicing.Payment, filter StatementFilter, now time.Time) *StatementResponse {
	inRange := func(t time.Time) bool {
		if filter.DateFrom != nil && t.Before(*filter.DateFrom) {
			return false
		}
		if filter.DateTo != nil && !t.Before(filter.DateTo.AddDate(0, 0, 1)) {
			return false
		}
		return true
	}

	movements := make([]StatementLine, 0, len(invoices)+len(payments))
	resp := &StatementResponse{
		Customer:       ToCustomerResponse(customer),
		DateFrom:       filter.DateFrom,
		DateTo:         filter.DateTo,
		OpeningBalance: decimal.Zero,
		TotalInvoiced:  decimal.Zero,
		TotalPaid:      decimal.Zero,
		Lines:          []StatementLine{},
		Invoices:       []StatementInvoice{},
	}

	for _, inv := range invoices {
		if inRange(inv.IssueDate) {
			resp.Invoices = append(resp.Invoices, StatementInvoice{
				ID:          inv.ID,
				Number:      inv.Number,
				Status:      string(inv.Status),
				IssueDate:   inv.IssueDate,
				DueDate:     inv.DueDate,
				TotalAmount: inv.TotalAmount,
				PaidAmount:  inv.PaidAmount,
				Outstanding: inv.Outstanding(),
				Overdue:     inv.IsOverdue(now),
			})
		}
		if !inv.Status.AppliesSideEffects() {
			continue
		}
		movements = append(movements, StatementLine{
			Date:      inv.IssueDate,
			Kind:      StatementLineInvoice,
			Reference: inv.Number,
			InvoiceID: inv.ID,
			Debit:     inv.TotalAmount,
			Credit:    decimal.Zero,
		})
	}
	for _, p := range payments {
		paymentID := p.ID
		movements = append(movements, StatementLine{
			Date:      p.PaidAt,
			Kind:      StatementLinePayment,
			Reference: p.InvoiceNumber,
			InvoiceID: p.InvoiceID,
			PaymentID: &paymentID,
			Debit:     decimal.Zero,
			Credit:    p.Amount,
		})
	}

	// invoices sort ahead of payments made on the same instant
	sort.SliceStable(movements, func(i, j int) bool {
		if !movements[i].Date.Equal(movements[j].Date) {
			return movements[i].Date.Before(movements[j].Date)
		}
		return movements[i].Kind == StatementLineInvoice && movements[j].Kind == StatementLinePayment
	})

	balance := decimal.Zero
	for _, m := range movements {
		balance = balance.Add(m.Debit).Sub(m.Credit)
		if filter.DateFrom != nil && m.Date.Before(*filter.DateFrom) {
			resp.OpeningBalance = balance
			continue
		}
		if !inRange(m.Date) {
			continue
		}
		m.Balance = balance
		resp.TotalInvoiced = resp.TotalInvoiced.Add(m.Debit)
		resp.TotalPaid = resp.TotalPaid.Add(m.Credit)
		resp.Lines = append(resp.Lines, m)
	}
	resp.ClosingBalance = resp.OpeningBalance.Add(resp.TotalInvoiced).Sub(resp.TotalPaid)
	return resp
}

func statementPage(page int, orderBy string) shared.Filter {
	return shared.Filter{
		Page:     page,
		PageSize: statementPageSize,
		OrderBy:  orderBy,
		OrderDir: "asc",
	}
}

// collectAll walks pages until every row has been read
func collectAll[T any](fetch func(page int) ([]T, int64, error)) ([]T, error) {
	var out []T
	for page := 1; ; page++ {
		rows, total, err := fetch(page)
		if err != nil {
			return nil, err
		}
		out = append(out, rows...)
		if len(rows) == 0 || int64(len(out)) >= total {
			return out, nil
		}
	}
}

func (s *CustomerService) record(ctx context.Context, customer *partner.Customer, action activity.Action, before, after any) {
	s.recorder.Record(ctx, customer.TenantID, activity.Entry{
		Action:      action,
		EntityType:  activity.EntityCustomer,
		EntityID:    customer.ID,
		EntityLabel: customer.Code,
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
