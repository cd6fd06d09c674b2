package invoicing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	activityapp "github.com/ledgerly/backend/internal/application/activity"
	"github.com/ledgerly/backend/internal/domain/activity"
	"github.com/ledgerly/backend/internal/domain/invoicing"
	"github.com/ledgerly/backend/internal/domain/partner"
	"github.com/ledgerly/backend/internal/domain/shared"
	"github.com/ledgerly/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// PaymentService records and reverses invoice payments
type PaymentService struct {
	invoiceRepo invoicing.InvoiceRepository
	paymentRepo invoicing.PaymentRepository
	tx          shared.Transactor
	ledger      ledger
	events      shared.EventPublisher
	recorder    *activityapp.Recorder
	logger      *zap.Logger
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(
	invoiceRepo invoicing.InvoiceRepository,
	paymentRepo invoicing.PaymentRepository,
	customerRepo partner.CustomerRepository,
	tx shared.Transactor,
	events shared.EventPublisher,
	recorder *activityapp.Recorder,
	logger *zap.Logger,
) *PaymentService {
	return &PaymentService{
		invoiceRepo: invoiceRepo,
		paymentRepo: paymentRepo,
		tx:          tx,
		ledger:      ledger{customerRepo: customerRepo},
		events:      events,
		recorder:    recorder,
		logger:      logger,
	}
}

// Record applies a payment to a confirmed or partially paid invoice and
// lowers the customer's balance
func (s *PaymentService) Record(ctx context.Context, tenantID, invoiceID uuid.UUID, req RecordPaymentRequest) (resp *PaymentResultResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "PaymentService", "Record",
		attribute.String("tenant.id", tenantID.String()),
		attribute.String("invoice.id", invoiceID.String()))
	defer func() { telemetry.EndSpan(span, err) }()

	input := invoicing.PaymentInput{
		Amount:    req.Amount,
		Method:    invoicing.PaymentMethod(strings.ToUpper(req.Method)),
		Reference: req.Reference,
		Notes:     req.Notes,
	}
	if req.PaidAt != nil {
		input.PaidAt = *req.PaidAt
	}

	var (
		invoice *invoicing.Invoice
		payment *invoicing.Payment
	)
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		invoice, err = s.invoiceRepo.FindByIDForUpdate(ctx, tenantID, invoiceID)
		if err != nil {
			return err
		}
		payment, err = invoicing.NewPayment(invoice, input)
		if err != nil {
			return err
		}
		payment.SetCreatedBy(shared.ActorFromContext(ctx).UserID)
		if err := invoice.RecordPayment(payment.ID, payment.Amount); err != nil {
			return err
		}
		if err := s.ledger.paymentReceived(ctx, tenantID, invoice.CustomerID, payment.Amount); err != nil {
			return err
		}
		if err := s.invoiceRepo.Save(ctx, invoice); err != nil {
			return err
		}
		return s.paymentRepo.Create(ctx, payment)
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, invoice)

	s.logger.Info("Payment recorded",
		zap.String("invoice_id", invoiceID.String()),
		zap.String("payment_id", payment.ID.String()),
		zap.String("amount", payment.Amount.StringFixed(2)),
		zap.String("status", string(invoice.Status)))

	out := &PaymentResultResponse{Payment: ToPaymentResponse(payment), Invoice: ToInvoiceResponse(invoice)}
	s.record(ctx, invoice, activity.ActionPayment, nil, out.Payment)
	return out, nil
}

// Delete reverses a payment. The invoice returns to PARTIAL_PAID, or to
// CONFIRMED when nothing remains paid.
func (s *PaymentService) Delete(ctx context.Context, tenantID, invoiceID, paymentID uuid.UUID) (resp *InvoiceResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "PaymentService", "Delete",
		attribute.String("tenant.id", tenantID.String()),
		attribute.String("payment.id", paymentID.String()))
	defer func() { telemetry.EndSpan(span, err) }()

	var (
		invoice *invoicing.Invoice
		payment *invoicing.Payment
	)
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		invoice, err = s.invoiceRepo.FindByIDForUpdate(ctx, tenantID, invoiceID)
		if err != nil {
			return err
		}
		payment, err = s.paymentRepo.FindByID(ctx, tenantID, paymentID)
		if err != nil {
			return err
		}
		if payment.InvoiceID != invoice.ID {
			return shared.NewDomainError("NOT_FOUND", fmt.Sprintf("Payment %s does not belong to invoice %s", paymentID, invoice.Number))
		}
		if err := invoice.RemovePayment(payment.ID, payment.Amount); err != nil {
			return err
		}
		if err := s.ledger.paymentReversed(ctx, tenantID, invoice.CustomerID, payment.Amount); err != nil {
			return err
		}
		if err := s.invoiceRepo.Save(ctx, invoice); err != nil {
			return err
		}
		return s.paymentRepo.Delete(ctx, tenantID, paymentID)
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, invoice)

	s.logger.Info("Payment deleted",
		zap.String("invoice_id", invoiceID.String()),
		zap.String("payment_id", paymentID.String()),
		zap.String("status", string(invoice.Status)))

	out := ToInvoiceResponse(invoice)
	s.recorder.Record(ctx, tenantID, activity.Entry{
		Action:      activity.ActionDelete,
		EntityType:  activity.EntityPayment,
		EntityID:    payment.ID,
		EntityLabel: invoice.Number,
		Before:      ToPaymentResponse(payment),
	})
	return &out, nil
}

// ListByInvoice returns the payments of one invoice, oldest first
func (s *PaymentService) ListByInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) ([]PaymentResponse, error) {
	if _, err := s.invoiceRepo.FindByID(ctx, tenantID, invoiceID); err != nil {
		return nil, err
	}
	payments, err := s.paymentRepo.FindByInvoice(ctx, tenantID, invoiceID)
	if err != nil {
		return nil, err
	}
	out := make([]PaymentResponse, len(payments))
	for i, p := range payments {
		out[i] = ToPaymentResponse(p)
	}
	return out, nil
}

// List returns a page of payments across invoices
func (s *PaymentService) List(ctx context.Context, tenantID uuid.UUID, filter PaymentListFilter) ([]PaymentResponse, int64, error) {
	domainFilter := invoicing.PaymentFilter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  filter.OrderBy,
			OrderDir: filter.OrderDir,
			Search:   filter.Search,
		}.Normalize(),
		InvoiceID:  filter.InvoiceID,
		CustomerID: filter.CustomerID,
		DateFrom:   filter.DateFrom,
		DateTo:     endOfDay(filter.DateTo),
	}
	if filter.Method != "" {
		method := invoicing.PaymentMethod(strings.ToUpper(filter.Method))
		if !method.IsValid() {
			return nil, 0, shared.NewDomainError("INVALID_PAYMENT_METHOD", fmt.Sprintf("Unknown payment method %q", filter.Method))
		}
		domainFilter.Method = &method
	}

	payments, total, err := s.paymentRepo.FindAll(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	out := make([]PaymentResponse, len(payments))
	for i, p := range payments {
		out[i] = ToPaymentResponse(p)
	}
	return out, total, nil
}

func (s *PaymentService) publish(ctx context.Context, invoice *invoicing.Invoice) {
	if err := shared.PublishAndClear(ctx, s.events, invoice); err != nil {
		s.logger.Warn("Failed to publish invoice events", zap.Error(err))
	}
}

func (s *PaymentService) record(ctx context.Context, invoice *invoicing.Invoice, action activity.Action, before, after any) {
	s.recorder.Record(ctx, invoice.TenantID, activity.Entry{
		Action:      action,
		EntityType:  activity.EntityInvoice,
		EntityID:    invoice.ID,
		EntityLabel: invoice.Number,
		Before:      before,
		After:       after,
	})
}

// endOfDay widens a date-only upper bound to cover the whole day, since
// payments carry a time of day
func endOfDay(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	end := t.Add(24*time.Hour - time.Nanosecond)
	return &end
}
