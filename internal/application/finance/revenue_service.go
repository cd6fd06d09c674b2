package finance

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	activityapp "github.com/ledgerly/backend/internal/application/activity"
	"github.com/ledgerly/backend/internal/domain/activity"
	"github.com/ledgerly/backend/internal/domain/finance"
	"github.com/ledgerly/backend/internal/domain/identity"
	"github.com/ledgerly/backend/internal/domain/invoicing"
	"github.com/ledgerly/backend/internal/domain/partner"
	"github.com/ledgerly/backend/internal/domain/sequence"
	"github.com/ledgerly/backend/internal/domain/shared"
	"github.com/ledgerly/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// RevenueService manages revenues received outside of invoices
type RevenueService struct {
	revenueRepo  finance.RevenueRepository
	customerRepo partner.CustomerRepository
	accountRepo  identity.AccountRepository
	sequences    sequence.Generator
	tx           shared.Transactor
	events       shared.EventPublisher
	recorder     *activityapp.Recorder
	logger       *zap.Logger
}

// NewRevenueService creates a new RevenueService
func NewRevenueService(
	revenueRepo finance.RevenueRepository,
	customerRepo partner.CustomerRepository,
	accountRepo identity.AccountRepository,
	sequences sequence.Generator,
	tx shared.Transactor,
	events shared.EventPublisher,
	recorder *activityapp.Recorder,
	logger *zap.Logger,
) *RevenueService {
	return &RevenueService{
		revenueRepo:  revenueRepo,
		customerRepo: customerRepo,
		accountRepo:  accountRepo,
		sequences:    sequences,
		tx:           tx,
		events:       events,
		recorder:     recorder,
		logger:       logger,
	}
}

// Create records a revenue numbered from the account's revenue series
func (s *RevenueService) Create(ctx context.Context, tenantID uuid.UUID, req CreateRevenueRequest) (resp *RevenueResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "RevenueService", "Create", attribute.String("tenant.id", tenantID.String()))
	defer func() { telemetry.EndSpan(span, err) }()

	account, err := s.accountRepo.FindByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	details, err := s.details(ctx, tenantID, account, req)
	if err != nil {
		return nil, err
	}

	var revenue *finance.Revenue
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		number, err := s.sequences.Next(ctx,
			sequence.NewKey(tenantID, sequence.DocumentTypeRevenue, details.Date),
			account.Numbering.RevenuePrefix)
		if err != nil {
			return err
		}
		revenue, err = finance.NewRevenue(tenantID, number, details)
		if err != nil {
			return err
		}
		revenue.SetCreatedBy(shared.ActorFromContext(ctx).UserID)
		return s.revenueRepo.Create(ctx, revenue)
	})
	if err != nil {
		return nil, err
	}
	if err := shared.PublishAndClear(ctx, s.events, revenue); err != nil {
		s.logger.Warn("Failed to publish revenue events", zap.Error(err))
	}

	s.logger.Info("Revenue recorded",
		zap.String("tenant_id", tenantID.String()),
		zap.String("number", revenue.Number),
		zap.String("amount", revenue.Amount.StringFixed(2)))

	out := ToRevenueResponse(revenue)
	s.record(ctx, revenue, activity.ActionCreate, nil, out)
	return &out, nil
}

// GetByID returns a revenue
func (s *RevenueService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*RevenueResponse, error) {
	revenue, err := s.revenueRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	resp := ToRevenueResponse(revenue)
	return &resp, nil
}

// List returns a page of revenues, newest first by default
func (s *RevenueService) List(ctx context.Context, tenantID uuid.UUID, filter EntryListFilter) ([]RevenueResponse, int64, error) {
	domainFilter, err := entryFilter(filter, func(c string) bool { return finance.RevenueCategory(c).IsValid() })
	if err != nil {
		return nil, 0, err
	}

	revenues, total, err := s.revenueRepo.FindAll(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	out := make([]RevenueResponse, len(revenues))
	for i, r := range revenues {
		out[i] = ToRevenueResponse(r)
	}
	return out, total, nil
}

// Update replaces the editable fields. The number is kept.
func (s *RevenueService) Update(ctx context.Context, tenantID, id uuid.UUID, req UpdateRevenueRequest) (*RevenueResponse, error) {
	revenue, err := s.revenueRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	account, err := s.accountRepo.FindByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	details, err := s.details(ctx, tenantID, account, CreateRevenueRequest(req))
	if err != nil {
		return nil, err
	}

	before := ToRevenueResponse(revenue)
	if err := revenue.Update(details); err != nil {
		return nil, err
	}
	if err := s.revenueRepo.Save(ctx, revenue); err != nil {
		return nil, err
	}

	resp := ToRevenueResponse(revenue)
	s.record(ctx, revenue, activity.ActionUpdate, before, resp)
	return &resp, nil
}

// Delete removes a revenue. Its number is not reused.
func (s *RevenueService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	revenue, err := s.revenueRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if err := s.revenueRepo.Delete(ctx, tenantID, id); err != nil {
		return err
	}
	s.logger.Info("Revenue deleted", zap.String("number", revenue.Number))
	s.record(ctx, revenue, activity.ActionDelete, ToRevenueResponse(revenue), nil)
	return nil
}

// Summary totals revenues per category for a date range
func (s *RevenueService) Summary(ctx context.Context, tenantID uuid.UUID, filter SummaryFilter) (*SummaryResponse, error) {
	if err := checkRange(filter); err != nil {
		return nil, err
	}
	totals, err := s.revenueRepo.SumByCategory(ctx, tenantID, filter.DateFrom, filter.DateTo)
	if err != nil {
		return nil, err
	}
	categories := make([]string, 0, len(finance.RevenueCategories()))
	for _, c := range finance.RevenueCategories() {
		categories = append(categories, c.String())
	}
	return toSummaryResponse(finance.NewSummary(filter.DateFrom, filter.DateTo, totals), categories), nil
}

// details resolves currency and checks the linked customer belongs to the tenant
func (s *RevenueService) details(ctx context.Context, tenantID uuid.UUID, account *identity.Account, req CreateRevenueRequest) (finance.RevenueDetails, error) {
	currency, err := resolveCurrency(account, req.Currency)
	if err != nil {
		return finance.RevenueDetails{}, err
	}
	payer := req.Payer
	if req.CustomerID != nil && *req.CustomerID != uuid.Nil {
		customer, err := s.customerRepo.FindByID(ctx, tenantID, *req.CustomerID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return finance.RevenueDetails{}, shared.NewDomainError("INVALID_CUSTOMER", "Customer not found")
			}
			return finance.RevenueDetails{}, err
		}
		if strings.TrimSpace(payer) == "" {
			payer = customer.Name
		}
	}
	return finance.RevenueDetails{
		Category:      finance.RevenueCategory(strings.ToUpper(req.Category)),
		Description:   req.Description,
		Amount:        req.Amount,
		Currency:      currency,
		Date:          req.Date,
		PaymentMethod: invoicing.PaymentMethod(req.PaymentMethod),
		Payer:         payer,
		CustomerID:    req.CustomerID,
		Reference:     req.Reference,
		Notes:         req.Notes,
	}, nil
}

func (s *RevenueService) record(ctx context.Context, r *finance.Revenue, action activity.Action, before, after any) {
	s.recorder.Record(ctx, r.TenantID, activity.Entry{
		Action:      action,
		EntityType:  activity.EntityRevenue,
		EntityID:    r.ID,
		EntityLabel: r.Number,
		Before:      before,
		After:       after,
	})
}
