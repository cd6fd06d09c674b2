// Package finance holds expense and revenue records: money moving in and out
// of the business outside the invoice flow.
package finance

import (
	"fmt"
	"strings"
	"time"

	"github.com/ledgerly/backend/internal/domain/invoicing"
	"github.com/ledgerly/backend/internal/domain/shared"
	"github.com/ledgerly/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// entryFields are the fields expenses and revenues share
type entryFields struct {
	Description   string
	Amount        decimal.Decimal
	Currency      valueobject.Currency
	Date          time.Time
	PaymentMethod invoicing.PaymentMethod
	Counterparty  string
	Reference     string
	Notes         string
}

func validateNumber(number string) error {
	number = strings.TrimSpace(number)
	if number == "" {
		return shared.NewDomainError("INVALID_NUMBER", "Document number cannot be empty")
	}
	if len(number) > 50 {
		return shared.NewDomainError("INVALID_NUMBER", "Document number cannot exceed 50 characters")
	}
	return nil
}

// normalizeEntry validates and trims the shared fields
func normalizeEntry(f entryFields, counterpartyLabel string) (entryFields, error) {
	f.Description = strings.TrimSpace(f.Description)
	if f.Description == "" {
		return f, shared.NewDomainError("INVALID_DESCRIPTION", "Description cannot be empty")
	}
	if len(f.Description) > 500 {
		return f, shared.NewDomainError("INVALID_DESCRIPTION", "Description cannot exceed 500 characters")
	}
	f.Amount = valueobject.RoundAmount(f.Amount)
	if !f.Amount.IsPositive() {
		return f, shared.NewDomainError("INVALID_AMOUNT", "Amount must be positive")
	}
	if f.Currency == "" {
		f.Currency = valueobject.DefaultCurrency
	}
	if f.Date.IsZero() {
		return f, shared.NewDomainError("INVALID_DATE", "Date is required")
	}
	y, m, d := f.Date.Date()
	f.Date = time.Date(y, m, d, 0, 0, 0, 0, time.UTC)

	method := invoicing.PaymentMethod(strings.ToUpper(strings.TrimSpace(string(f.PaymentMethod))))
	if method == "" {
		method = invoicing.PaymentMethodBankTransfer
	}
	if !method.IsValid() {
		return f, shared.NewDomainError("INVALID_PAYMENT_METHOD", "Unknown payment method")
	}
	f.PaymentMethod = method

	f.Counterparty = strings.TrimSpace(f.Counterparty)
	if len(f.Counterparty) > 200 {
		return f, shared.NewDomainError("INVALID_COUNTERPARTY", fmt.Sprintf("%s cannot exceed 200 characters", counterpartyLabel))
	}
	f.Reference = strings.TrimSpace(f.Reference)
	if len(f.Reference) > 100 {
		return f, shared.NewDomainError("INVALID_REFERENCE", "Reference cannot exceed 100 characters")
	}
	f.Notes = strings.TrimSpace(f.Notes)
	return f, nil
}
