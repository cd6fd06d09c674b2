package finance

import (
	"github.com/ledgerly/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Aggregate types
const (
	AggregateTypeExpense = "Expense"
	AggregateTypeRevenue = "Revenue"
)

// Event types
const (
	EventTypeExpenseRecorded = "ExpenseRecorded"
	EventTypeRevenueRecorded = "RevenueRecorded"
)

// ExpenseRecordedEvent is raised when an expense is created
type ExpenseRecordedEvent struct {
	shared.BaseDomainEvent
	Number   string          `json:"number"`
	Category ExpenseCategory `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
}

// NewExpenseRecordedEvent creates a new ExpenseRecordedEvent
func NewExpenseRecordedEvent(e *Expense) *ExpenseRecordedEvent {
	return &ExpenseRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeExpenseRecorded, AggregateTypeExpense, e.ID, e.TenantID),
		Number:          e.Number,
		Category:        e.Category,
		Amount:          e.Amount,
	}
}

// RevenueRecordedEvent is raised when a revenue is created
type RevenueRecordedEvent struct {
	shared.BaseDomainEvent
	Number   string          `json:"number"`
	Category RevenueCategory `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
}

// NewRevenueRecordedEvent creates a new RevenueRecordedEvent
func NewRevenueRecordedEvent(r *Revenue) *RevenueRecordedEvent {
	return &RevenueRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeRevenueRecorded, AggregateTypeRevenue, r.ID, r.TenantID),
		Number:          r.Number,
		Category:        r.Category,
		Amount:          r.Amount,
	}
}
