package invoicing

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ledgerly/backend/internal/domain/shared"
	"github.com/ledgerly/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// InvoiceStatus represents the status of an invoice
type InvoiceStatus string

const (
	InvoiceStatusDraft       InvoiceStatus = "DRAFT"
	InvoiceStatusConfirmed   InvoiceStatus = "CONFIRMED"
	InvoiceStatusPartialPaid InvoiceStatus = "PARTIAL_PAID"
	InvoiceStatusPaid        InvoiceStatus = "PAID"
	InvoiceStatusCancelled   InvoiceStatus = "CANCELLED"
)

// AllInvoiceStatuses lists every status in lifecycle order
func AllInvoiceStatuses() []InvoiceStatus {
	return []InvoiceStatus{
		InvoiceStatusDraft,
		InvoiceStatusConfirmed,
		InvoiceStatusPartialPaid,
		InvoiceStatusPaid,
		InvoiceStatusCancelled,
	}
}

// IsValid checks if the status is a valid InvoiceStatus
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceStatusDraft, InvoiceStatusConfirmed, InvoiceStatusPartialPaid,
		InvoiceStatusPaid, InvoiceStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of InvoiceStatus
func (s InvoiceStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s InvoiceStatus) CanTransitionTo(target InvoiceStatus) bool {
	switch s {
	case InvoiceStatusDraft:
		return target == InvoiceStatusConfirmed || target == InvoiceStatusCancelled
	case InvoiceStatusConfirmed:
		return target == InvoiceStatusDraft || target == InvoiceStatusPartialPaid ||
			target == InvoiceStatusPaid || target == InvoiceStatusCancelled
	case InvoiceStatusPartialPaid:
		return target == InvoiceStatusPartialPaid || target == InvoiceStatusPaid ||
			target == InvoiceStatusConfirmed
	case InvoiceStatusPaid:
		return target == InvoiceStatusPartialPaid || target == InvoiceStatusConfirmed
	case InvoiceStatusCancelled:
		return target == InvoiceStatusDraft
	}
	return false
}

// AcceptsPayments reports whether payments may be recorded in this status
func (s InvoiceStatus) AcceptsPayments() bool {
	return s == InvoiceStatusConfirmed || s == InvoiceStatusPartialPaid
}

// AppliesSideEffects reports whether stock and customer balance reflect the invoice
func (s InvoiceStatus) AppliesSideEffects() bool {
	return s == InvoiceStatusConfirmed || s == InvoiceStatusPartialPaid || s == InvoiceStatusPaid
}

var hundred = decimal.NewFromInt(100)

// ItemInput describes an invoice line as entered by the user
type ItemInput struct {
	ProductID    *uuid.UUID
	ProductName  string
	Description  string
	Quantity     decimal.Decimal
	UnitPrice    decimal.Decimal
	DiscountRate decimal.Decimal // percent, 0-100
	TaxRate      decimal.Decimal // percent, 0-100
}

// InvoiceItem is a priced invoice line.
// Lines without a ProductID are free-text service lines and never touch stock.
type InvoiceItem struct {
	ID             uuid.UUID
	InvoiceID      uuid.UUID
	ProductID      *uuid.UUID
	ProductName    string
	Description    string
	Quantity       decimal.Decimal
	UnitPrice      decimal.Decimal
	DiscountRate   decimal.Decimal
	TaxRate        decimal.Decimal
	Subtotal       decimal.Decimal
	DiscountAmount decimal.Decimal
	TaxAmount      decimal.Decimal
	Total          decimal.Decimal
	SortOrder      int
}

// NewInvoiceItem validates the input and computes the line amounts
func NewInvoiceItem(invoiceID uuid.UUID, in ItemInput, sortOrder int) (*InvoiceItem, error) {
	name := strings.TrimSpace(in.ProductName)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_ITEM_NAME", "Item name cannot be empty")
	}
	if len(name) > 200 {
		return nil, shared.NewDomainError("INVALID_ITEM_NAME", "Item name cannot exceed 200 characters")
	}
	if in.ProductID != nil && *in.ProductID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if !in.Quantity.IsPositive() {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if in.UnitPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}
	if !valueobject.FitsScale(in.Quantity, valueobject.QuantityScale) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity cannot have more than 4 decimal places")
	}
	if !valueobject.FitsScale(in.UnitPrice, valueobject.QuantityScale) {
		return nil, shared.NewDomainError("INVALID_PRICE", "Unit price cannot have more than 4 decimal places")
	}
	if in.DiscountRate.IsNegative() || in.DiscountRate.GreaterThan(hundred) ||
		!valueobject.FitsScale(in.DiscountRate, valueobject.RateScale) {
		return nil, shared.NewDomainError("INVALID_DISCOUNT_RATE", "Discount rate must be between 0 and 100 with at most 2 decimal places")
	}
	if in.TaxRate.IsNegative() || in.TaxRate.GreaterThan(hundred) ||
		!valueobject.FitsScale(in.TaxRate, valueobject.RateScale) {
		return nil, shared.NewDomainError("INVALID_TAX_RATE", "Tax rate must be between 0 and 100 with at most 2 decimal places")
	}

	item := &InvoiceItem{
		ID:           uuid.New(),
		InvoiceID:    invoiceID,
		ProductID:    in.ProductID,
		ProductName:  name,
		Description:  strings.TrimSpace(in.Description),
		Quantity:     in.Quantity,
		UnitPrice:    in.UnitPrice,
		DiscountRate: in.DiscountRate,
		TaxRate:      in.TaxRate,
		SortOrder:    sortOrder,
	}
	item.calculate()
	return item, nil
}

// calculate derives the line amounts: discount applies before tax
func (i *InvoiceItem) calculate() {
	i.Subtotal = valueobject.RoundAmount(i.Quantity.Mul(i.UnitPrice))
	i.DiscountAmount = valueobject.RoundAmount(valueobject.Percentage(i.Subtotal, i.DiscountRate))
	taxable := i.Subtotal.Sub(i.DiscountAmount)
	i.TaxAmount = valueobject.RoundAmount(valueobject.Percentage(taxable, i.TaxRate))
	i.Total = taxable.Add(i.TaxAmount)
}

// TracksProduct reports whether the line references a catalog product
func (i InvoiceItem) TracksProduct() bool {
	return i.ProductID != nil
}

// InvoiceHeader carries the editable non-line fields of an invoice
type InvoiceHeader struct {
	CustomerID   uuid.UUID
	CustomerName string
	IssueDate    time.Time
	DueDate      time.Time
	Currency     valueobject.Currency
	Notes        string
}

// Invoice is a sales invoice issued to a customer.
// Stock and customer balance are adjusted by the application service whenever
// the invoice enters or leaves a status for which AppliesSideEffects is true.
type Invoice struct {
	shared.TenantAggregateRoot
	Number         string
	CustomerID     uuid.UUID
	CustomerName   string
	IssueDate      time.Time
	DueDate        time.Time
	Currency       valueobject.Currency
	Items          []InvoiceItem
	Subtotal       decimal.Decimal
	DiscountAmount decimal.Decimal
	TaxAmount      decimal.Decimal
	TotalAmount    decimal.Decimal
	PaidAmount     decimal.Decimal
	Notes          string
	Status         InvoiceStatus
	ConfirmedAt    *time.Time
	PaidAt         *time.Time
	CancelledAt    *time.Time
	CancelReason   string
}

// NewInvoice creates a draft invoice with an already assigned number
func NewInvoice(tenantID uuid.UUID, number string, header InvoiceHeader, items []ItemInput) (*Invoice, error) {
	number = strings.TrimSpace(number)
	if number == "" {
		return nil, shared.NewDomainError("INVALID_INVOICE_NUMBER", "Invoice number cannot be empty")
	}
	if len(number) > 50 {
		return nil, shared.NewDomainError("INVALID_INVOICE_NUMBER", "Invoice number cannot exceed 50 characters")
	}

	invoice := &Invoice{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Number:              number,
		Items:               make([]InvoiceItem, 0, len(items)),
		PaidAmount:          decimal.Zero,
		Status:              InvoiceStatusDraft,
	}
	if err := invoice.applyHeader(header); err != nil {
		return nil, err
	}
	if err := invoice.replaceItems(items); err != nil {
		return nil, err
	}

	invoice.AddDomainEvent(NewInvoiceCreatedEvent(invoice))

	return invoice, nil
}

// Update replaces the header and lines of a draft invoice
func (inv *Invoice) Update(header InvoiceHeader, items []ItemInput) error {
	if inv.Status != InvoiceStatusDraft {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot edit invoice in %s status", inv.Status))
	}
	if err := inv.applyHeader(header); err != nil {
		return err
	}
	if err := inv.replaceItems(items); err != nil {
		return err
	}
	inv.UpdatedAt = time.Now()
	return nil
}

func (inv *Invoice) applyHeader(h InvoiceHeader) error {
	if h.CustomerID == uuid.Nil {
		return shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	name := strings.TrimSpace(h.CustomerName)
	if name == "" {
		return shared.NewDomainError("INVALID_CUSTOMER_NAME", "Customer name cannot be empty")
	}
	if h.IssueDate.IsZero() {
		return shared.NewDomainError("INVALID_ISSUE_DATE", "Issue date is required")
	}
	issue := truncateDay(h.IssueDate)
	due := issue
	if !h.DueDate.IsZero() {
		due = truncateDay(h.DueDate)
	}
	if due.Before(issue) {
		return shared.NewDomainError("INVALID_DUE_DATE", "Due date cannot be before issue date")
	}
	currency := h.Currency
	if currency == "" {
		currency = valueobject.DefaultCurrency
	}
	if len(h.Notes) > 2000 {
		return shared.NewDomainError("INVALID_NOTES", "Notes cannot exceed 2000 characters")
	}

	inv.CustomerID = h.CustomerID
	inv.CustomerName = name
	inv.IssueDate = issue
	inv.DueDate = due
	inv.Currency = currency
	inv.Notes = strings.TrimSpace(h.Notes)
	return nil
}

func (inv *Invoice) replaceItems(inputs []ItemInput) error {
	if len(inputs) > 200 {
		return shared.NewDomainError("TOO_MANY_ITEMS", "An invoice cannot have more than 200 items")
	}
	items := make([]InvoiceItem, 0, len(inputs))
	for idx, in := range inputs {
		item, err := NewInvoiceItem(inv.ID, in, idx)
		if err != nil {
			if de, ok := shared.AsDomainError(err); ok {
				return shared.NewDomainError(de.Code, fmt.Sprintf("Item %d: %s", idx+1, de.Message))
			}
			return err
		}
		items = append(items, *item)
	}
	inv.Items = items
	inv.recalculateTotals()
	return nil
}

func (inv *Invoice) recalculateTotals() {
	subtotal, discount, tax := decimal.Zero, decimal.Zero, decimal.Zero
	for _, item := range inv.Items {
		subtotal = subtotal.Add(item.Subtotal)
		discount = discount.Add(item.DiscountAmount)
		tax = tax.Add(item.TaxAmount)
	}
	inv.Subtotal = subtotal
	inv.DiscountAmount = discount
	inv.TaxAmount = tax
	inv.TotalAmount = subtotal.Sub(discount).Add(tax)
}

// Confirm moves a draft to CONFIRMED. The caller applies stock and balance effects.
func (inv *Invoice) Confirm() error {
	if inv.Status != InvoiceStatusDraft {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot confirm invoice in %s status", inv.Status))
	}
	if len(inv.Items) == 0 {
		return shared.NewDomainError("NO_ITEMS", "Cannot confirm invoice without items")
	}
	if !inv.TotalAmount.IsPositive() {
		return shared.NewDomainError("INVALID_AMOUNT", "Invoice total must be positive")
	}

	now := time.Now()
	inv.Status = InvoiceStatusConfirmed
	inv.ConfirmedAt = &now
	inv.UpdatedAt = now

	inv.AddDomainEvent(NewInvoiceConfirmedEvent(inv))
	return nil
}

// Unconfirm returns a confirmed, unpaid invoice to DRAFT.
// The caller reverses stock and balance effects.
func (inv *Invoice) Unconfirm() error {
	if inv.Status != InvoiceStatusConfirmed {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot unconfirm invoice in %s status", inv.Status))
	}
	if !inv.PaidAmount.IsZero() {
		return shared.NewDomainError("INVOICE_HAS_PAYMENTS", "Cannot unconfirm an invoice with recorded payments")
	}

	inv.Status = InvoiceStatusDraft
	inv.ConfirmedAt = nil
	inv.UpdatedAt = time.Now()

	inv.AddDomainEvent(NewInvoiceUnconfirmedEvent(inv))
	return nil
}

// RecordPayment applies a payment against the outstanding amount
func (inv *Invoice) RecordPayment(paymentID uuid.UUID, amount decimal.Decimal) error {
	if !inv.Status.AcceptsPayments() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot record payment for invoice in %s status", inv.Status))
	}
	if !amount.IsPositive() {
		return shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	outstanding := inv.Outstanding()
	if amount.GreaterThan(outstanding) {
		return shared.NewDomainError("PAYMENT_EXCEEDS_OUTSTANDING",
			fmt.Sprintf("Payment %s exceeds outstanding amount %s", amount.StringFixed(2), outstanding.StringFixed(2)))
	}

	now := time.Now()
	inv.PaidAmount = inv.PaidAmount.Add(amount)
	inv.UpdatedAt = now

	inv.AddDomainEvent(NewInvoicePaymentRecordedEvent(inv, paymentID, amount))

	if inv.PaidAmount.GreaterThanOrEqual(inv.TotalAmount) {
		inv.Status = InvoiceStatusPaid
		inv.PaidAt = &now
		inv.AddDomainEvent(NewInvoicePaidEvent(inv))
	} else {
		inv.Status = InvoiceStatusPartialPaid
	}
	return nil
}

// RemovePayment reverses a previously recorded payment
func (inv *Invoice) RemovePayment(paymentID uuid.UUID, amount decimal.Decimal) error {
	if inv.Status != InvoiceStatusPartialPaid && inv.Status != InvoiceStatusPaid {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot remove payment from invoice in %s status", inv.Status))
	}
	if !amount.IsPositive() || amount.GreaterThan(inv.PaidAmount) {
		return shared.NewDomainError("INVALID_AMOUNT", "Payment amount does not match the paid amount")
	}

	inv.PaidAmount = inv.PaidAmount.Sub(amount)
	inv.PaidAt = nil
	if inv.PaidAmount.IsZero() {
		inv.Status = InvoiceStatusConfirmed
	} else {
		inv.Status = InvoiceStatusPartialPaid
	}
	inv.UpdatedAt = time.Now()

	inv.AddDomainEvent(NewInvoicePaymentRemovedEvent(inv, paymentID, amount))
	return nil
}

// Cancel cancels a draft or an unpaid confirmed invoice.
// When the invoice was confirmed the caller reverses stock and balance effects.
func (inv *Invoice) Cancel(reason string) error {
	if !inv.Status.CanTransitionTo(InvoiceStatusCancelled) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot cancel invoice in %s status", inv.Status))
	}
	if !inv.PaidAmount.IsZero() {
		return shared.NewDomainError("INVOICE_HAS_PAYMENTS", "Cannot cancel an invoice with recorded payments")
	}
	reason = strings.TrimSpace(reason)
	if len(reason) > 500 {
		return shared.NewDomainError("INVALID_REASON", "Cancel reason cannot exceed 500 characters")
	}

	wasConfirmed := inv.Status == InvoiceStatusConfirmed
	now := time.Now()
	inv.Status = InvoiceStatusCancelled
	inv.CancelledAt = &now
	inv.CancelReason = reason
	inv.UpdatedAt = now

	inv.AddDomainEvent(NewInvoiceCancelledEvent(inv, wasConfirmed))
	return nil
}

// Reopen returns a cancelled invoice to DRAFT
func (inv *Invoice) Reopen() error {
	if inv.Status != InvoiceStatusCancelled {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot reopen invoice in %s status", inv.Status))
	}

	inv.Status = InvoiceStatusDraft
	inv.CancelledAt = nil
	inv.CancelReason = ""
	inv.ConfirmedAt = nil
	inv.UpdatedAt = time.Now()

	inv.AddDomainEvent(NewInvoiceReopenedEvent(inv))
	return nil
}

// Outstanding returns the amount still owed
func (inv *Invoice) Outstanding() decimal.Decimal {
	if !inv.Status.AppliesSideEffects() {
		return decimal.Zero
	}
	return inv.TotalAmount.Sub(inv.PaidAmount)
}

// IsOverdue reports whether an open invoice is past its due date
func (inv *Invoice) IsOverdue(now time.Time) bool {
	if !inv.Status.AcceptsPayments() {
		return false
	}
	return truncateDay(now).After(inv.DueDate)
}

// CanDelete reports whether the invoice may be removed
func (inv *Invoice) CanDelete() bool {
	return inv.Status == InvoiceStatusDraft || inv.Status == InvoiceStatusCancelled
}

// ProductQuantities sums line quantities per referenced product
func (inv *Invoice) ProductQuantities() map[uuid.UUID]decimal.Decimal {
	out := make(map[uuid.UUID]decimal.Decimal)
	for _, item := range inv.Items {
		if !item.TracksProduct() {
			continue
		}
		out[*item.ProductID] = out[*item.ProductID].Add(item.Quantity)
	}
	return out
}

// ProductIDs returns the distinct products referenced by the lines
func (inv *Invoice) ProductIDs() []uuid.UUID {
	seen := make(map[uuid.UUID]struct{})
	ids := make([]uuid.UUID, 0, len(inv.Items))
	for _, item := range inv.Items {
		if !item.TracksProduct() {
			continue
		}
		if _, ok := seen[*item.ProductID]; ok {
			continue
		}
		seen[*item.ProductID] = struct{}{}
		ids = append(ids, *item.ProductID)
	}
	return ids
}

// TotalMoney returns the total as Money
func (inv *Invoice) TotalMoney() valueobject.Money {
	return valueobject.MustMoney(inv.TotalAmount, inv.Currency)
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
