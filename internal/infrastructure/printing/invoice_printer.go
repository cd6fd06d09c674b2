package printing

import (
	"context"
	"errors"
)

// ErrPDFDisabled is returned by PDF when no renderer is configured
var ErrPDFDisabled = errors.New("pdf rendering is disabled")

// InvoicePrinter produces printable invoices. Without a renderer only the
// HTML form is available.
type InvoicePrinter struct {
	template  *InvoiceTemplate
	renderer  PDFRenderer
	paperSize PaperSize
}

// NewInvoicePrinter creates a printer; renderer may be nil
func NewInvoicePrinter(tmpl *InvoiceTemplate, renderer PDFRenderer) *InvoicePrinter {
	return &InvoicePrinter{template: tmpl, renderer: renderer, paperSize: PaperSizeA4}
}

// HTML renders the invoice page
func (p *InvoicePrinter) HTML(ctx context.Context, doc InvoiceDocument) (string, error) {
	return p.template.Render(ctx, doc)
}

// PDF renders the invoice and prints it to PDF
func (p *InvoicePrinter) PDF(ctx context.Context, doc InvoiceDocument) ([]byte, error) {
	if p.renderer == nil {
		return nil, ErrPDFDisabled
	}
	page, err := p.template.Render(ctx, doc)
	if err != nil {
		return nil, err
	}
	res, err := p.renderer.Render(ctx, &RenderRequest{
		HTML:       page,
		Title:      doc.Invoice.Number,
		PaperSize:  p.paperSize,
		Margins:    DefaultMargins(),
		FooterHTML: p.template.PageFooter(doc),
	})
	if err != nil {
		return nil, err
	}
	return res.PDFData, nil
}

// PDFEnabled reports whether PDF output is available
func (p *InvoicePrinter) PDFEnabled() bool {
	return p.renderer != nil
}
