package telemetry

import (
	"context"

	"github.com/ledgerly/backend/internal/domain/finance"
	"github.com/ledgerly/backend/internal/domain/invoicing"
	"github.com/ledgerly/backend/internal/domain/shared"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// BusinessMetrics turns domain events into counters. It is subscribed to the
// event bus like any other handler.
type BusinessMetrics struct {
	invoiceEvents   *Counter
	invoicedAmount  *AmountCounter
	paymentsTotal   *Counter
	paymentAmount   *AmountCounter
	expenseAmount   *AmountCounter
	revenueAmount   *AmountCounter
	financeRecorded *Counter
}

// NewBusinessMetrics creates the instruments on meter
func NewBusinessMetrics(meter metric.Meter) (*BusinessMetrics, error) {
	bm := &BusinessMetrics{}
	var err error
	if bm.invoiceEvents, err = NewCounter(meter, "ledgerly_invoice_events_total",
		"Invoice lifecycle transitions", "{event}"); err != nil {
		return nil, err
	}
	if bm.invoicedAmount, err = NewAmountCounter(meter, "ledgerly_invoiced_amount_total",
		"Total of confirmed invoices in invoice currency", "{amount}"); err != nil {
		return nil, err
	}
	if bm.paymentsTotal, err = NewCounter(meter, "ledgerly_payments_total",
		"Payments recorded against invoices", "{payment}"); err != nil {
		return nil, err
	}
	if bm.paymentAmount, err = NewAmountCounter(meter, "ledgerly_payment_amount_total",
		"Sum of recorded payments", "{amount}"); err != nil {
		return nil, err
	}
	if bm.expenseAmount, err = NewAmountCounter(meter, "ledgerly_expense_amount_total",
		"Sum of recorded expenses", "{amount}"); err != nil {
		return nil, err
	}
	if bm.revenueAmount, err = NewAmountCounter(meter, "ledgerly_revenue_amount_total",
		"Sum of recorded revenues", "{amount}"); err != nil {
		return nil, err
	}
	if bm.financeRecorded, err = NewCounter(meter, "ledgerly_finance_entries_total",
		"Expenses and revenues recorded", "{entry}"); err != nil {
		return nil, err
	}
	return bm, nil
}

// EventTypes implements shared.EventHandler
func (bm *BusinessMetrics) EventTypes() []string {
	return []string{
		invoicing.EventTypeInvoiceCreated,
		invoicing.EventTypeInvoiceConfirmed,
		invoicing.EventTypeInvoiceUnconfirmed,
		invoicing.EventTypeInvoiceCancelled,
		invoicing.EventTypeInvoiceReopened,
		invoicing.EventTypeInvoicePaymentRecorded,
		invoicing.EventTypeInvoicePaymentRemoved,
		invoicing.EventTypeInvoicePaid,
		finance.EventTypeExpenseRecorded,
		finance.EventTypeRevenueRecorded,
	}
}

// Handle implements shared.EventHandler. It never fails.
func (bm *BusinessMetrics) Handle(ctx context.Context, event shared.DomainEvent) error {
	tenant := attribute.String("tenant_id", event.TenantID().String())

	switch e := event.(type) {
	case *invoicing.InvoiceConfirmedEvent:
		bm.invoicedAmount.Add(ctx, e.TotalAmount.InexactFloat64(), tenant)
	case *invoicing.InvoicePaymentRecordedEvent:
		bm.paymentsTotal.Inc(ctx, tenant)
		bm.paymentAmount.Add(ctx, e.Amount.InexactFloat64(), tenant)
	case *finance.ExpenseRecordedEvent:
		bm.financeRecorded.Inc(ctx, tenant, attribute.String("kind", "expense"))
		bm.expenseAmount.Add(ctx, e.Amount.InexactFloat64(), tenant, attribute.String("category", string(e.Category)))
		return nil
	case *finance.RevenueRecordedEvent:
		bm.financeRecorded.Inc(ctx, tenant, attribute.String("kind", "revenue"))
		bm.revenueAmount.Add(ctx, e.Amount.InexactFloat64(), tenant, attribute.String("category", string(e.Category)))
		return nil
	}

	if event.AggregateType() == invoicing.AggregateTypeInvoice {
		bm.invoiceEvents.Inc(ctx, tenant, attribute.String("event", event.EventType()))
	}
	return nil
}

var _ shared.EventHandler = (*BusinessMetrics)(nil)
