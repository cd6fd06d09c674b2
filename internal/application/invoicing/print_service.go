package invoicing

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/ledgerly/backend/internal/domain/identity"
	"github.com/ledgerly/backend/internal/domain/invoicing"
	"github.com/ledgerly/backend/internal/domain/shared"
	"github.com/ledgerly/backend/internal/infrastructure/printing"
	"github.com/ledgerly/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// LogoLoader fetches the account logo for printed documents; nil means no logo
type LogoLoader interface {
	LoadLogo(ctx context.Context, account *identity.Account) (*printing.Logo, error)
}

// DocumentPrinter renders invoice documents
type DocumentPrinter interface {
	HTML(ctx context.Context, doc printing.InvoiceDocument) (string, error)
	PDF(ctx context.Context, doc printing.InvoiceDocument) ([]byte, error)
}

// PrintService produces printable invoices with the account's branding
type PrintService struct {
	invoiceRepo invoicing.InvoiceRepository
	accountRepo identity.AccountRepository
	logos       LogoLoader
	printer     DocumentPrinter
	logger      *zap.Logger
}

// NewPrintService creates a new PrintService
func NewPrintService(
	invoiceRepo invoicing.InvoiceRepository,
	accountRepo identity.AccountRepository,
	logos LogoLoader,
	printer DocumentPrinter,
	logger *zap.Logger,
) *PrintService {
	return &PrintService{
		invoiceRepo: invoiceRepo,
		accountRepo: accountRepo,
		logos:       logos,
		printer:     printer,
		logger:      logger,
	}
}

// HTML renders the invoice as a standalone HTML page
func (s *PrintService) HTML(ctx context.Context, tenantID, id uuid.UUID) (string, error) {
	doc, err := s.document(ctx, tenantID, id)
	if err != nil {
		return "", err
	}
	return s.printer.HTML(ctx, doc)
}

// PDF renders the invoice to PDF
func (s *PrintService) PDF(ctx context.Context, tenantID, id uuid.UUID) (out *PDFDocument, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "PrintService", "PDF", attribute.String("invoice.id", id.String()))
	defer func() { telemetry.EndSpan(span, err) }()

	doc, err := s.document(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	data, err := s.printer.PDF(ctx, doc)
	if err != nil {
		if errors.Is(err, printing.ErrPDFDisabled) {
			return nil, shared.NewDomainError("PDF_DISABLED", "PDF rendering is not configured")
		}
		s.logger.Error("Failed to render invoice PDF",
			zap.String("invoice_id", id.String()),
			zap.Error(err))
		return nil, err
	}
	return &PDFDocument{Filename: doc.Invoice.Number + ".pdf", Data: data}, nil
}

func (s *PrintService) document(ctx context.Context, tenantID, id uuid.UUID) (printing.InvoiceDocument, error) {
	invoice, err := s.invoiceRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		return printing.InvoiceDocument{}, err
	}
	account, err := s.accountRepo.FindByID(ctx, tenantID)
	if err != nil {
		return printing.InvoiceDocument{}, err
	}

	doc := printing.InvoiceDocument{Invoice: invoice, Account: account}
	if s.logos != nil {
		logo, err := s.logos.LoadLogo(ctx, account)
		if err != nil {
			s.logger.Warn("Printing invoice without logo", zap.String("tenant_id", tenantID.String()), zap.Error(err))
		}
		doc.Logo = logo
	}
	return doc, nil
}
