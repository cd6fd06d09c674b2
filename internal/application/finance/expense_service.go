package finance

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	activityapp "github.com/ledgerly/backend/internal/application/activity"
	"github.com/ledgerly/backend/internal/domain/activity"
	"github.com/ledgerly/backend/internal/domain/finance"
	"github.com/ledgerly/backend/internal/domain/identity"
	"github.com/ledgerly/backend/internal/domain/invoicing"
	"github.com/ledgerly/backend/internal/domain/sequence"
	"github.com/ledgerly/backend/internal/domain/shared"
	"github.com/ledgerly/backend/internal/domain/shared/valueobject"
	"github.com/ledgerly/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ExpenseService manages expenses
type ExpenseService struct {
	expenseRepo finance.ExpenseRepository
	accountRepo identity.AccountRepository
	sequences   sequence.Generator
	tx          shared.Transactor
	events      shared.EventPublisher
	recorder    *activityapp.Recorder
	logger      *zap.Logger
}

// NewExpenseService creates a new ExpenseService
func NewExpenseService(
	expenseRepo finance.ExpenseRepository,
	accountRepo identity.AccountRepository,
	sequences sequence.Generator,
	tx shared.Transactor,
	events shared.EventPublisher,
	recorder *activityapp.Recorder,
	logger *zap.Logger,
) *ExpenseService {
	return &ExpenseService{
		expenseRepo: expenseRepo,
		accountRepo: accountRepo,
		sequences:   sequences,
		tx:          tx,
		events:      events,
		recorder:    recorder,
		logger:      logger,
	}
}

// Create records an expense numbered from the account's expense series
func (s *ExpenseService) Create(ctx context.Context, tenantID uuid.UUID, req CreateExpenseRequest) (resp *ExpenseResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "ExpenseService", "Create", attribute.String("tenant.id", tenantID.String()))
	defer func() { telemetry.EndSpan(span, err) }()

	account, err := s.accountRepo.FindByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	details, err := expenseDetails(account, req)
	if err != nil {
		return nil, err
	}

	var expense *finance.Expense
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		number, err := s.sequences.Next(ctx,
			sequence.NewKey(tenantID, sequence.DocumentTypeExpense, details.Date),
			account.Numbering.ExpensePrefix)
		if err != nil {
			return err
		}
		expense, err = finance.NewExpense(tenantID, number, details)
		if err != nil {
			return err
		}
		expense.SetCreatedBy(shared.ActorFromContext(ctx).UserID)
		return s.expenseRepo.Create(ctx, expense)
	})
	if err != nil {
		return nil, err
	}
	if err := shared.PublishAndClear(ctx, s.events, expense); err != nil {
		s.logger.Warn("Failed to publish expense events", zap.Error(err))
	}

	s.logger.Info("Expense recorded",
		zap.String("tenant_id", tenantID.String()),
		zap.String("number", expense.Number),
		zap.String("amount", expense.Amount.StringFixed(2)))

	out := ToExpenseResponse(expense)
	s.record(ctx, expense, activity.ActionCreate, nil, out)
	return &out, nil
}

// GetByID returns an expense
func (s *ExpenseService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*ExpenseResponse, error) {
	expense, err := s.expenseRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	resp := ToExpenseResponse(expense)
	return &resp, nil
}

// List returns a page of expenses, newest first by default
func (s *ExpenseService) List(ctx context.Context, tenantID uuid.UUID, filter EntryListFilter) ([]ExpenseResponse, int64, error) {
	domainFilter, err := entryFilter(filter, func(c string) bool { return finance.ExpenseCategory(c).IsValid() })
	if err != nil {
		return nil, 0, err
	}
	domainFilter.CustomerID = nil

	expenses, total, err := s.expenseRepo.FindAll(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	out := make([]ExpenseResponse, len(expenses))
	for i, e := range expenses {
		out[i] = ToExpenseResponse(e)
	}
	return out, total, nil
}

// Update replaces the editable fields. The number is kept.
func (s *ExpenseService) Update(ctx context.Context, tenantID, id uuid.UUID, req UpdateExpenseRequest) (*ExpenseResponse, error) {
	expense, err := s.expenseRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	account, err := s.accountRepo.FindByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	details, err := expenseDetails(account, CreateExpenseRequest(req))
	if err != nil {
		return nil, err
	}

	before := ToExpenseResponse(expense)
	if err := expense.Update(details); err != nil {
		return nil, err
	}
	if err := s.expenseRepo.Save(ctx, expense); err != nil {
		return nil, err
	}

	resp := ToExpenseResponse(expense)
	s.record(ctx, expense, activity.ActionUpdate, before, resp)
	return &resp, nil
}

// Delete removes an expense. Its number is not reused.
func (s *ExpenseService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	expense, err := s.expenseRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if err := s.expenseRepo.Delete(ctx, tenantID, id); err != nil {
		return err
	}
	s.logger.Info("Expense deleted", zap.String("number", expense.Number))
	s.record(ctx, expense, activity.ActionDelete, ToExpenseResponse(expense), nil)
	return nil
}

// Summary totals expenses per category for a date range
func (s *ExpenseService) Summary(ctx context.Context, tenantID uuid.UUID, filter SummaryFilter) (*SummaryResponse, error) {
	if err := checkRange(filter); err != nil {
		return nil, err
	}
	totals, err := s.expenseRepo.SumByCategory(ctx, tenantID, filter.DateFrom, filter.DateTo)
	if err != nil {
		return nil, err
	}
	categories := make([]string, 0, len(finance.ExpenseCategories()))
	for _, c := range finance.ExpenseCategories() {
		categories = append(categories, c.String())
	}
	return toSummaryResponse(finance.NewSummary(filter.DateFrom, filter.DateTo, totals), categories), nil
}

func (s *ExpenseService) record(ctx context.Context, e *finance.Expense, action activity.Action, before, after any) {
	s.recorder.Record(ctx, e.TenantID, activity.Entry{
		Action:      action,
		EntityType:  activity.EntityExpense,
		EntityID:    e.ID,
		EntityLabel: e.Number,
		Before:      before,
		After:       after,
	})
}

func expenseDetails(account *identity.Account, req CreateExpenseRequest) (finance.ExpenseDetails, error) {
	currency, err := resolveCurrency(account, req.Currency)
	if err != nil {
		return finance.ExpenseDetails{}, err
	}
	return finance.ExpenseDetails{
		Category:      finance.ExpenseCategory(strings.ToUpper(req.Category)),
		Description:   req.Description,
		Amount:        req.Amount,
		Currency:      currency,
		Date:          req.Date,
		PaymentMethod: invoicing.PaymentMethod(req.PaymentMethod),
		Payee:         req.Payee,
		Reference:     req.Reference,
		Notes:         req.Notes,
	}, nil
}

// resolveCurrency falls back to the account currency
func resolveCurrency(account *identity.Account, code string) (valueobject.Currency, error) {
	if strings.TrimSpace(code) == "" {
		return account.Currency, nil
	}
	currency, err := valueobject.ParseCurrency(code)
	if err != nil {
		return "", shared.NewDomainError("INVALID_CURRENCY", err.Error())
	}
	return currency, nil
}

func entryFilter(filter EntryListFilter, validCategory func(string) bool) (finance.EntryFilter, error) {
	category := strings.ToUpper(strings.TrimSpace(filter.Category))
	if category != "" && !validCategory(category) {
		return finance.EntryFilter{}, shared.NewDomainError("INVALID_CATEGORY", fmt.Sprintf("Unknown category %q", filter.Category))
	}
	if err := checkRange(SummaryFilter{DateFrom: filter.DateFrom, DateTo: filter.DateTo}); err != nil {
		return finance.EntryFilter{}, err
	}
	orderBy, orderDir := filter.OrderBy, filter.OrderDir
	if orderBy == "" {
		orderBy, orderDir = "date", "desc"
	}
	return finance.EntryFilter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  orderBy,
			OrderDir: orderDir,
			Search:   filter.Search,
		}.Normalize(),
		Category:   category,
		DateFrom:   filter.DateFrom,
		DateTo:     filter.DateTo,
		CustomerID: filter.CustomerID,
	}, nil
}

func checkRange(filter SummaryFilter) error {
	if filter.DateFrom != nil && filter.DateTo != nil && filter.DateTo.Before(*filter.DateFrom) {
		return shared.NewDomainError("INVALID_DATE_RANGE", "date_to cannot be before date_from")
	}
	return nil
}
