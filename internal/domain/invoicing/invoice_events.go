package invoicing

import (
	"github.com/google/uuid"
	"github.com/ledgerly/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// AggregateTypeInvoice is the aggregate type of Invoice events
const AggregateTypeInvoice = "Invoice"

// Invoice domain event types
const (
	EventTypeInvoiceCreated         = "InvoiceCreated"
	EventTypeInvoiceConfirmed       = "InvoiceConfirmed"
	EventTypeInvoiceUnconfirmed     = "InvoiceUnconfirmed"
	EventTypeInvoiceCancelled       = "InvoiceCancelled"
	EventTypeInvoiceReopened        = "InvoiceReopened"
	EventTypeInvoicePaymentRecorded = "InvoicePaymentRecorded"
	EventTypeInvoicePaymentRemoved  = "InvoicePaymentRemoved"
	EventTypeInvoicePaid            = "InvoicePaid"
)

// invoiceEventBase holds the fields every invoice event carries
type invoiceEventBase struct {
	shared.BaseDomainEvent
	InvoiceNumber string          `json:"invoice_number"`
	CustomerID    uuid.UUID       `json:"customer_id"`
	CustomerName  string          `json:"customer_name"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	CreatedBy     *uuid.UUID      `json:"created_by,omitempty"`
}

func newInvoiceEventBase(eventType string, inv *Invoice) invoiceEventBase {
	return invoiceEventBase{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, AggregateTypeInvoice, inv.ID, inv.TenantID),
		InvoiceNumber:   inv.Number,
		CustomerID:      inv.CustomerID,
		CustomerName:    inv.CustomerName,
		TotalAmount:     inv.TotalAmount,
		CreatedBy:       inv.CreatedBy,
	}
}

// Recipient returns the user notified about the invoice, if any
func (e *invoiceEventBase) Recipient() *uuid.UUID {
	return e.CreatedBy
}

// InvoiceCreatedEvent is raised when a draft invoice is created
type InvoiceCreatedEvent struct {
	invoiceEventBase
}

// NewInvoiceCreatedEvent creates a new InvoiceCreatedEvent
func NewInvoiceCreatedEvent(inv *Invoice) *InvoiceCreatedEvent {
	return &InvoiceCreatedEvent{invoiceEventBase: newInvoiceEventBase(EventTypeInvoiceCreated, inv)}
}

// InvoiceConfirmedEvent is raised when an invoice is confirmed
type InvoiceConfirmedEvent struct {
	invoiceEventBase
	ItemCount int `json:"item_count"`
}

// NewInvoiceConfirmedEvent creates a new InvoiceConfirmedEvent
func NewInvoiceConfirmedEvent(inv *Invoice) *InvoiceConfirmedEvent {
	return &InvoiceConfirmedEvent{
		invoiceEventBase: newInvoiceEventBase(EventTypeInvoiceConfirmed, inv),
		ItemCount:        len(inv.Items),
	}
}

// InvoiceUnconfirmedEvent is raised when a confirmed invoice returns to draft
type InvoiceUnconfirmedEvent struct {
	invoiceEventBase
}

// NewInvoiceUnconfirmedEvent creates a new InvoiceUnconfirmedEvent
func NewInvoiceUnconfirmedEvent(inv *Invoice) *InvoiceUnconfirmedEvent {
	return &InvoiceUnconfirmedEvent{invoiceEventBase: newInvoiceEventBase(EventTypeInvoiceUnconfirmed, inv)}
}

// InvoiceCancelledEvent is raised when an invoice is cancelled
type InvoiceCancelledEvent struct {
	invoiceEventBase
	Reason       string `json:"reason"`
	WasConfirmed bool   `json:"was_confirmed"`
}

// NewInvoiceCancelledEvent creates a new InvoiceCancelledEvent
func NewInvoiceCancelledEvent(inv *Invoice, wasConfirmed bool) *InvoiceCancelledEvent {
	return &InvoiceCancelledEvent{
		invoiceEventBase: newInvoiceEventBase(EventTypeInvoiceCancelled, inv),
		Reason:           inv.CancelReason,
		WasConfirmed:     wasConfirmed,
	}
}

// InvoiceReopenedEvent is raised when a cancelled invoice returns to draft
type InvoiceReopenedEvent struct {
	invoiceEventBase
}

// NewInvoiceReopenedEvent creates a new InvoiceReopenedEvent
func NewInvoiceReopenedEvent(inv *Invoice) *InvoiceReopenedEvent {
	return &InvoiceReopenedEvent{invoiceEventBase: newInvoiceEventBase(EventTypeInvoiceReopened, inv)}
}

// InvoicePaymentRecordedEvent is raised for every payment applied to an invoice
type InvoicePaymentRecordedEvent struct {
	invoiceEventBase
	PaymentID   uuid.UUID       `json:"payment_id"`
	Amount      decimal.Decimal `json:"amount"`
	PaidAmount  decimal.Decimal `json:"paid_amount"`
	Outstanding decimal.Decimal `json:"outstanding"`
}

// NewInvoicePaymentRecordedEvent creates a new InvoicePaymentRecordedEvent
func NewInvoicePaymentRecordedEvent(inv *Invoice, paymentID uuid.UUID, amount decimal.Decimal) *InvoicePaymentRecordedEvent {
	return &InvoicePaymentRecordedEvent{
		invoiceEventBase: newInvoiceEventBase(EventTypeInvoicePaymentRecorded, inv),
		PaymentID:        paymentID,
		Amount:           amount,
		PaidAmount:       inv.PaidAmount,
		Outstanding:      inv.TotalAmount.Sub(inv.PaidAmount),
	}
}

// InvoicePaymentRemovedEvent is raised when a payment is deleted
type InvoicePaymentRemovedEvent struct {
	invoiceEventBase
	PaymentID uuid.UUID       `json:"payment_id"`
	Amount    decimal.Decimal `json:"amount"`
}

// NewInvoicePaymentRemovedEvent creates a new InvoicePaymentRemovedEvent
func NewInvoicePaymentRemovedEvent(inv *Invoice, paymentID uuid.UUID, amount decimal.Decimal) *InvoicePaymentRemovedEvent {
	return &InvoicePaymentRemovedEvent{
		invoiceEventBase: newInvoiceEventBase(EventTypeInvoicePaymentRemoved, inv),
		PaymentID:        paymentID,
		Amount:           amount,
	}
}

// InvoicePaidEvent is raised when the outstanding amount reaches zero
type InvoicePaidEvent struct {
	invoiceEventBase
}

// NewInvoicePaidEvent creates a new InvoicePaidEvent
func NewInvoicePaidEvent(inv *Invoice) *InvoicePaidEvent {
	return &InvoicePaidEvent{invoiceEventBase: newInvoiceEventBase(EventTypeInvoicePaid, inv)}
}
