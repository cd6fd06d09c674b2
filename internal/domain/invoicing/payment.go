package invoicing

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ledgerly/backend/internal/domain/shared"
	"github.com/ledgerly/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// PaymentMethod is how a customer settled (part of) an invoice
type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "CASH"
	PaymentMethodBankTransfer PaymentMethod = "BANK_TRANSFER"
	PaymentMethodCard         PaymentMethod = "CARD"
	PaymentMethodCheck        PaymentMethod = "CHECK"
	PaymentMethodOther        PaymentMethod = "OTHER"
)

// IsValid checks the payment method
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodBankTransfer, PaymentMethodCard,
		PaymentMethodCheck, PaymentMethodOther:
		return true
	}
	return false
}

// String returns the string representation of PaymentMethod
func (m PaymentMethod) String() string {
	return string(m)
}

// Payment records money received against an invoice
type Payment struct {
	shared.TenantEntity
	InvoiceID     uuid.UUID
	InvoiceNumber string
	CustomerID    uuid.UUID
	Amount        decimal.Decimal
	Currency      valueobject.Currency
	Method        PaymentMethod
	PaidAt        time.Time
	Reference     string
	Notes         string
	CreatedBy     *uuid.UUID
}

// PaymentInput carries user-supplied payment fields
type PaymentInput struct {
	Amount    decimal.Decimal
	Method    PaymentMethod
	PaidAt    time.Time
	Reference string
	Notes     string
}

// NewPayment creates a payment for the invoice. It does not apply it;
// call Invoice.RecordPayment with the returned payment's ID and amount.
func NewPayment(inv *Invoice, in PaymentInput) (*Payment, error) {
	if inv == nil {
		return nil, shared.NewDomainError("INVALID_INVOICE", "Invoice is required")
	}
	amount := valueobject.RoundAmount(in.Amount)
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	method := PaymentMethod(strings.ToUpper(strings.TrimSpace(string(in.Method))))
	if method == "" {
		method = PaymentMethodBankTransfer
	}
	if !method.IsValid() {
		return nil, shared.NewDomainError("INVALID_PAYMENT_METHOD", "Unknown payment method")
	}
	paidAt := in.PaidAt
	if paidAt.IsZero() {
		paidAt = time.Now()
	}
	if len(in.Reference) > 100 {
		return nil, shared.NewDomainError("INVALID_REFERENCE", "Reference cannot exceed 100 characters")
	}

	return &Payment{
		TenantEntity:  shared.NewTenantEntity(inv.TenantID),
		InvoiceID:     inv.ID,
		InvoiceNumber: inv.Number,
		CustomerID:    inv.CustomerID,
		Amount:        amount,
		Currency:      inv.Currency,
		Method:        method,
		PaidAt:        paidAt,
		Reference:     strings.TrimSpace(in.Reference),
		Notes:         strings.TrimSpace(in.Notes),
	}, nil
}

// SetCreatedBy sets the recording user
func (p *Payment) SetCreatedBy(userID uuid.UUID) {
	if userID == uuid.Nil {
		return
	}
	p.CreatedBy = &userID
}
