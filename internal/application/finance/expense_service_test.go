package finance

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/ledgerly/backend/internal/domain/finance"
	"github.com/ledgerly/backend/internal/domain/identity"
	"github.com/ledgerly/backend/internal/domain/sequence"
	"github.com/ledgerly/backend/internal/domain/shared"
	"github.com/ledgerly/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestAccount(t *testing.T) *identity.Account {
	t.Helper()
	account, err := identity.NewAccount("acme", "Acme Ltd", "billing@acme.test", valueobject.EUR)
	require.NoError(t, err)
	return account
}

func codeOf(t *testing.T, err error) string {
	t.Helper()
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	return domainErr.Code
}

type expenseFixture struct {
	repo      *MockExpenseRepository
	accounts  *MockAccountRepository
	sequences *MockSequenceGenerator
	published *capturePublisher
	account   *identity.Account
	svc       *ExpenseService
}

func newExpenseFixture(t *testing.T) *expenseFixture {
	f := &expenseFixture{
		repo:      new(MockExpenseRepository),
		accounts:  new(MockAccountRepository),
		sequences: new(MockSequenceGenerator),
		published: &capturePublisher{},
		account:   newTestAccount(t),
	}
	f.svc = NewExpenseService(f.repo, f.accounts, f.sequences, fakeTransactor{}, f.published, nil, zap.NewNop())
	f.accounts.On("FindByID", mock.Anything, f.account.ID).Return(f.account, nil)
	return f
}

func (f *expenseFixture) existing(t *testing.T) *finance.Expense {
	t.Helper()
	e, err := finance.NewExpense(f.account.ID, "EXP-2025-00003", finance.ExpenseDetails{
		Category:    finance.ExpenseCategoryRent,
		Description: "May rent",
		Amount:      decimal.NewFromInt(1200),
		Currency:    valueobject.EUR,
		Date:        time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	e.ClearDomainEvents()
	f.repo.On("FindByID", mock.Anything, f.account.ID, e.ID).Return(e, nil)
	return e
}

func TestExpenseService_Create(t *testing.T) {
	f := newExpenseFixture(t)
	date := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)
	actorID := uuid.New()
	ctx := shared.WithActor(context.Background(), shared.Actor{UserID: actorID})

	f.sequences.On("Next", mock.Anything, sequence.NewKey(f.account.ID, sequence.DocumentTypeExpense, date), "EXP").
		Return("EXP-2025-00001", nil)
	f.repo.On("Create", mock.Anything, mock.MatchedBy(func(e *finance.Expense) bool {
		return e.CreatedBy != nil && *e.CreatedBy == actorID
	})).Return(nil)

	resp, err := f.svc.Create(ctx, f.account.ID, CreateExpenseRequest{
		Category:    "utilities",
		Description: "Electricity",
		Amount:      decimal.RequireFromString("84.456"),
		Date:        date,
		Payee:       "Power Co",
	})
	require.NoError(t, err)

	assert.Equal(t, "EXP-2025-00001", resp.Number)
	assert.Equal(t, "UTILITIES", resp.Category)
	assert.Equal(t, "Utilities", resp.CategoryName)
	assert.Equal(t, "EUR", resp.Currency)
	assert.Equal(t, "BANK_TRANSFER", resp.PaymentMethod)
	assert.True(t, resp.Amount.Equal(decimal.RequireFromString("84.46")))
	require.Len(t, f.published.events, 1)
	assert.Equal(t, finance.EventTypeExpenseRecorded, f.published.events[0].EventType())
}

func TestExpenseService_Create_Validation(t *testing.T) {
	ctx := context.Background()
	date := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		req  CreateExpenseRequest
		code string
	}{
		{"unknown category", CreateExpenseRequest{Category: "BRIBES", Description: "x", Amount: decimal.NewFromInt(1), Date: date}, "INVALID_CATEGORY"},
		{"zero amount", CreateExpenseRequest{Category: "RENT", Description: "x", Amount: decimal.Zero, Date: date}, "INVALID_AMOUNT"},
		{"blank description", CreateExpenseRequest{Category: "RENT", Description: "  ", Amount: decimal.NewFromInt(1), Date: date}, "INVALID_DESCRIPTION"},
		{"bad currency", CreateExpenseRequest{Category: "RENT", Description: "x", Amount: decimal.NewFromInt(1), Date: date, Currency: "EURO"}, "INVALID_CURRENCY"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newExpenseFixture(t)
			f.sequences.On("Next", mock.Anything, mock.Anything, "EXP").Return("EXP-2025-00001", nil)

			_, err := f.svc.Create(ctx, f.account.ID, tt.req)
			assert.Equal(t, tt.code, codeOf(t, err))
			f.repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestExpenseService_Update(t *testing.T) {
	f := newExpenseFixture(t)
	ctx := context.Background()
	e := f.existing(t)
	f.repo.On("Save", ctx, e).Return(nil)

	resp, err := f.svc.Update(ctx, f.account.ID, e.ID, UpdateExpenseRequest{
		Category:      "RENT",
		Description:   "May rent (adjusted)",
		Amount:        decimal.NewFromInt(1150),
		Date:          e.Date,
		PaymentMethod: "CHECK",
	})
	require.NoError(t, err)
	assert.Equal(t, "EXP-2025-00003", resp.Number)
	assert.True(t, resp.Amount.Equal(decimal.NewFromInt(1150)))
	assert.Equal(t, "CHECK", resp.PaymentMethod)
}

func TestExpenseService_Delete(t *testing.T) {
	f := newExpenseFixture(t)
	ctx := context.Background()
	e := f.existing(t)
	f.repo.On("Delete", ctx, f.account.ID, e.ID).Return(nil)

	require.NoError(t, f.svc.Delete(ctx, f.account.ID, e.ID))

	missing := uuid.New()
	f.repo.On("FindByID", ctx, f.account.ID, missing).Return(nil, shared.ErrNotFound)
	assert.ErrorIs(t, f.svc.Delete(ctx, f.account.ID, missing), shared.ErrNotFound)
}

func TestExpenseService_List(t *testing.T) {
	f := newExpenseFixture(t)
	ctx := context.Background()
	e := f.existing(t)

	f.repo.On("FindAll", ctx, f.account.ID, mock.MatchedBy(func(filter finance.EntryFilter) bool {
		return filter.Category == "RENT" && filter.OrderBy == "date" && filter.OrderDir == "desc" &&
			filter.PageSize == 20 && filter.CustomerID == nil
	})).Return([]*finance.Expense{e}, int64(1), nil)

	customerID := uuid.New()
	out, total, err := f.svc.List(ctx, f.account.ID, EntryListFilter{Category: "rent", CustomerID: &customerID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, out, 1)
	assert.Equal(t, e.Number, out[0].Number)

	_, _, err = f.svc.List(ctx, f.account.ID, EntryListFilter{Category: "SALES"})
	assert.Equal(t, "INVALID_CATEGORY", codeOf(t, err))

	from := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, -1)
	_, _, err = f.svc.List(ctx, f.account.ID, EntryListFilter{DateFrom: &from, DateTo: &to})
	assert.Equal(t, "INVALID_DATE_RANGE", codeOf(t, err))
}

func TestExpenseService_Summary(t *testing.T) {
	f := newExpenseFixture(t)
	ctx := context.Background()
	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC)

	f.repo.On("SumByCategory", ctx, f.account.ID, &from, &to).Return([]finance.CategoryTotal{
		{Category: "SALARIES", Count: 12, Total: decimal.NewFromInt(48000)},
		{Category: "RENT", Count: 12, Total: decimal.NewFromInt(14400)},
	}, nil)

	resp, err := f.svc.Summary(ctx, f.account.ID, SummaryFilter{DateFrom: &from, DateTo: &to})
	require.NoError(t, err)
	assert.Equal(t, int64(24), resp.Count)
	assert.True(t, resp.Total.Equal(decimal.NewFromInt(62400)))
	require.Len(t, resp.ByCategory, len(finance.ExpenseCategories()))
	assert.Equal(t, "RENT", resp.ByCategory[0].Category)
	assert.True(t, resp.ByCategory[0].Total.Equal(decimal.NewFromInt(14400)))
	assert.Equal(t, "UTILITIES", resp.ByCategory[1].Category)
	assert.True(t, resp.ByCategory[1].Total.IsZero())
}
