package finance

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ledgerly/backend/internal/domain/invoicing"
	"github.com/ledgerly/backend/internal/domain/shared"
	"github.com/ledgerly/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// ExpenseCategory represents the category of an expense
type ExpenseCategory string

const (
	ExpenseCategoryRent      ExpenseCategory = "RENT"
	ExpenseCategoryUtilities ExpenseCategory = "UTILITIES"
	ExpenseCategorySalaries  ExpenseCategory = "SALARIES"
	ExpenseCategorySupplies  ExpenseCategory = "SUPPLIES"
	ExpenseCategoryTravel    ExpenseCategory = "TRAVEL"
	ExpenseCategoryMarketing ExpenseCategory = "MARKETING"
	ExpenseCategoryTaxes     ExpenseCategory = "TAXES"
	ExpenseCategoryOther     ExpenseCategory = "OTHER"
)

// ExpenseCategories lists every expense category
func ExpenseCategories() []ExpenseCategory {
	return []ExpenseCategory{
		ExpenseCategoryRent, ExpenseCategoryUtilities, ExpenseCategorySalaries, ExpenseCategorySupplies,
		ExpenseCategoryTravel, ExpenseCategoryMarketing, ExpenseCategoryTaxes, ExpenseCategoryOther,
	}
}

// IsValid checks if the category is a valid ExpenseCategory
func (c ExpenseCategory) IsValid() bool {
	for _, known := range ExpenseCategories() {
		if c == known {
			return true
		}
	}
	return false
}

// String returns the string representation of ExpenseCategory
func (c ExpenseCategory) String() string {
	return string(c)
}

// DisplayName returns a human-readable name for the category
func (c ExpenseCategory) DisplayName() string {
	switch c {
	case ExpenseCategoryRent:
		return "Rent"
	case ExpenseCategoryUtilities:
		return "Utilities"
	case ExpenseCategorySalaries:
		return "Salaries"
	case ExpenseCategorySupplies:
		return "Supplies"
	case ExpenseCategoryTravel:
		return "Travel"
	case ExpenseCategoryMarketing:
		return "Marketing"
	case ExpenseCategoryTaxes:
		return "Taxes"
	case ExpenseCategoryOther:
		return "Other"
	default:
		return string(c)
	}
}

// ExpenseDetails carries the editable fields of an expense
type ExpenseDetails struct {
	Category      ExpenseCategory
	Description   string
	Amount        decimal.Decimal
	Currency      valueobject.Currency
	Date          time.Time
	PaymentMethod invoicing.PaymentMethod
	Payee         string
	Reference     string
	Notes         string
}

// Expense is money the business spent outside of invoicing
type Expense struct {
	shared.TenantAggregateRoot
	Number        string
	Category      ExpenseCategory
	Description   string
	Amount        decimal.Decimal
	Currency      valueobject.Currency
	Date          time.Time
	PaymentMethod invoicing.PaymentMethod
	Payee         string
	Reference     string
	Notes         string
}

// NewExpense creates an expense with an already assigned number
func NewExpense(tenantID uuid.UUID, number string, details ExpenseDetails) (*Expense, error) {
	if err := validateNumber(number); err != nil {
		return nil, err
	}

	expense := &Expense{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Number:              strings.TrimSpace(number),
	}
	if err := expense.apply(details); err != nil {
		return nil, err
	}

	expense.AddDomainEvent(NewExpenseRecordedEvent(expense))
	return expense, nil
}

// Update changes the editable fields. The number never changes.
func (e *Expense) Update(details ExpenseDetails) error {
	if err := e.apply(details); err != nil {
		return err
	}
	e.UpdatedAt = time.Now()
	return nil
}

func (e *Expense) apply(d ExpenseDetails) error {
	category := ExpenseCategory(strings.ToUpper(strings.TrimSpace(string(d.Category))))
	if !category.IsValid() {
		return shared.NewDomainError("INVALID_CATEGORY", "Expense category is not valid")
	}
	common, err := normalizeEntry(entryFields{
		Description:   d.Description,
		Amount:        d.Amount,
		Currency:      d.Currency,
		Date:          d.Date,
		PaymentMethod: d.PaymentMethod,
		Counterparty:  d.Payee,
		Reference:     d.Reference,
		Notes:         d.Notes,
	}, "Payee")
	if err != nil {
		return err
	}

	e.Category = category
	e.Description = common.Description
	e.Amount = common.Amount
	e.Currency = common.Currency
	e.Date = common.Date
	e.PaymentMethod = common.PaymentMethod
	e.Payee = common.Counterparty
	e.Reference = common.Reference
	e.Notes = common.Notes
	return nil
}
