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

// RevenueCategory represents the category of a revenue
type RevenueCategory string

const (
	RevenueCategorySales      RevenueCategory = "SALES"
	RevenueCategoryServices   RevenueCategory = "SERVICES"
	RevenueCategoryInterest   RevenueCategory = "INTEREST"
	RevenueCategoryInvestment RevenueCategory = "INVESTMENT"
	RevenueCategoryOther      RevenueCategory = "OTHER"
)

// RevenueCategories lists every revenue category
func RevenueCategories() []RevenueCategory {
	return []RevenueCategory{
		RevenueCategorySales, RevenueCategoryServices, RevenueCategoryInterest,
		RevenueCategoryInvestment, RevenueCategoryOther,
	}
}

// IsValid checks if the category is a valid RevenueCategory
func (c RevenueCategory) IsValid() bool {
	for _, known := range RevenueCategories() {
		if c == known {
			return true
		}
	}
	return false
}

// String returns the string representation of RevenueCategory
func (c RevenueCategory) String() string {
	return string(c)
}

// RevenueDetails carries the editable fields of a revenue
type RevenueDetails struct {
	Category      RevenueCategory
	Description   string
	Amount        decimal.Decimal
	Currency      valueobject.Currency
	Date          time.Time
	PaymentMethod invoicing.PaymentMethod
	Payer         string
	CustomerID    *uuid.UUID
	Reference     string
	Notes         string
}

// Revenue is income received outside of invoice payments
type Revenue struct {
	shared.TenantAggregateRoot
	Number        string
	Category      RevenueCategory
	Description   string
	Amount        decimal.Decimal
	Currency      valueobject.Currency
	Date          time.Time
	PaymentMethod invoicing.PaymentMethod
	Payer         string
	CustomerID    *uuid.UUID
	Reference     string
	Notes         string
}

// NewRevenue creates a revenue with an already assigned number
func NewRevenue(tenantID uuid.UUID, number string, details RevenueDetails) (*Revenue, error) {
	if err := validateNumber(number); err != nil {
		return nil, err
	}

	revenue := &Revenue{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Number:              strings.TrimSpace(number),
	}
	if err := revenue.apply(details); err != nil {
		return nil, err
	}

	revenue.AddDomainEvent(NewRevenueRecordedEvent(revenue))
	return revenue, nil
}

// Update changes the editable fields. The number never changes.
func (r *Revenue) Update(details RevenueDetails) error {
	if err := r.apply(details); err != nil {
		return err
	}
	r.UpdatedAt = time.Now()
	return nil
}

func (r *Revenue) apply(d RevenueDetails) error {
	category := RevenueCategory(strings.ToUpper(strings.TrimSpace(string(d.Category))))
	if !category.IsValid() {
		return shared.NewDomainError("INVALID_CATEGORY", "Revenue category is not valid")
	}
	if d.CustomerID != nil && *d.CustomerID == uuid.Nil {
		d.CustomerID = nil
	}
	common, err := normalizeEntry(entryFields{
		Description:   d.Description,
		Amount:        d.Amount,
		Currency:      d.Currency,
		Date:          d.Date,
		PaymentMethod: d.PaymentMethod,
		Counterparty:  d.Payer,
		Reference:     d.Reference,
		Notes:         d.Notes,
	}, "Payer")
	if err != nil {
		return err
	}

	r.Category = category
	r.Description = common.Description
	r.Amount = common.Amount
	r.Currency = common.Currency
	r.Date = common.Date
	r.PaymentMethod = common.PaymentMethod
	r.Payer = common.Counterparty
	r.CustomerID = d.CustomerID
	r.Reference = common.Reference
	r.Notes = common.Notes
	return nil
}
