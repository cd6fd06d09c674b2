package finance

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ledgerly/backend/internal/domain/shared"
)

// EntryFilter contains filter options shared by expense and revenue queries
type EntryFilter struct {
	shared.Filter
	Category   string
	DateFrom   *time.Time
	DateTo     *time.Time
	CustomerID *uuid.UUID // revenues only
}

// CategoryTotal is the sum of entries in one category
type CategoryTotal struct {
	Category string
	Count    int64
	Total    decimal.Decimal
}

// Summary totals entries over a period
type Summary struct {
	From       *time.Time
	To         *time.Time
	Total      decimal.Decimal
	Count      int64
	ByCategory []CategoryTotal
}

// NewSummary builds a summary from per-category totals
func NewSummary(from, to *time.Time, totals []CategoryTotal) Summary {
	s := Summary{From: from, To: to, Total: decimal.Zero, ByCategory: totals}
	for _, ct := range totals {
		s.Total = s.Total.Add(ct.Total)
		s.Count += ct.Count
	}
	return s
}

// ExpenseRepository persists expenses
type ExpenseRepository interface {
	Create(ctx context.Context, expense *Expense) error
	Save(ctx context.Context, expense *Expense) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Expense, error)
	FindAll(ctx context.Context, tenantID uuid.UUID, filter EntryFilter) ([]*Expense, int64, error)
	SumByCategory(ctx context.Context, tenantID uuid.UUID, from, to *time.Time) ([]CategoryTotal, error)
}

// RevenueRepository persists revenues
type RevenueRepository interface {
	Create(ctx context.Context, revenue *Revenue) error
	Save(ctx context.Context, revenue *Revenue) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Revenue, error)
	FindAll(ctx context.Context, tenantID uuid.UUID, filter EntryFilter) ([]*Revenue, int64, error)
	SumByCategory(ctx context.Context, tenantID uuid.UUID, from, to *time.Time) ([]CategoryTotal, error)
}
