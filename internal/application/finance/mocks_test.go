package finance

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/ledgerly/backend/internal/domain/finance"
	"github.com/ledgerly/backend/internal/domain/identity"
	"github.com/ledgerly/backend/internal/domain/partner"
	"github.com/ledgerly/backend/internal/domain/sequence"
	"github.com/ledgerly/backend/internal/domain/shared"
	"github.com/stretchr/testify/mock"
)

type MockExpenseRepository struct {
	mock.Mock
}

func (m *MockExpenseRepository) Create(ctx context.Context, expense *finance.Expense) error {
	return m.Called(ctx, expense).Error(0)
}

func (m *MockExpenseRepository) Save(ctx context.Context, expense *finance.Expense) error {
	return m.Called(ctx, expense).Error(0)
}

func (m *MockExpenseRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return m.Called(ctx, tenantID, id).Error(0)
}

func (m *MockExpenseRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*finance.Expense, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*finance.Expense), args.Error(1)
}

func (m *MockExpenseRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter finance.EntryFilter) ([]*finance.Expense, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*finance.Expense), args.Get(1).(int64), args.Error(2)
}

func (m *MockExpenseRepository) SumByCategory(ctx context.Context, tenantID uuid.UUID, from, to *time.Time) ([]finance.CategoryTotal, error) {
	args := m.Called(ctx, tenantID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]finance.CategoryTotal), args.Error(1)
}

type MockRevenueRepository struct {
	mock.Mock
}

func (m *MockRevenueRepository) Create(ctx context.Context, revenue *finance.Revenue) error {
	return m.Called(ctx, revenue).Error(0)
}

func (m *MockRevenueRepository) Save(ctx context.Context, revenue *finance.Revenue) error {
	return m.Called(ctx, revenue).Error(0)
}

func (m *MockRevenueRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return m.Called(ctx, tenantID, id).Error(0)
}

func (m *MockRevenueRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*finance.Revenue, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*finance.Revenue), args.Error(1)
}

func (m *MockRevenueRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter finance.EntryFilter) ([]*finance.Revenue, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*finance.Revenue), args.Get(1).(int64), args.Error(2)
}

func (m *MockRevenueRepository) SumByCategory(ctx context.Context, tenantID uuid.UUID, from, to *time.Time) ([]finance.CategoryTotal, error) {
	args := m.Called(ctx, tenantID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]finance.CategoryTotal), args.Error(1)
}

// MockCustomerRepository stubs the lookups revenues need
type MockCustomerRepository struct {
	partner.CustomerRepository
	mock.Mock
}

func (m *MockCustomerRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*partner.Customer, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Customer), args.Error(1)
}

type MockAccountRepository struct {
	identity.AccountRepository
	mock.Mock
}

func (m *MockAccountRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Account), args.Error(1)
}

type MockSequenceGenerator struct {
	mock.Mock
}

func (m *MockSequenceGenerator) Next(ctx context.Context, key sequence.Key, prefix string) (string, error) {
	args := m.Called(ctx, key, prefix)
	return args.String(0), args.Error(1)
}

type fakeTransactor struct{}

func (fakeTransactor) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type capturePublisher struct {
	events []shared.DomainEvent
}

func (p *capturePublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.events = append(p.events, events...)
	return nil
}
