package printing

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/ledgerly/backend/internal/domain/identity"
	"github.com/ledgerly/backend/internal/domain/invoicing"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

const defaultPrimaryColor = "#1f2937"

// Logo is an account logo embedded into printed documents
type Logo struct {
	Data        []byte
	ContentType string
}

// DataURL returns the logo as a data: URL so Chrome needs no network access
func (l *Logo) DataURL() template.URL {
	if l == nil || len(l.Data) == 0 {
		return ""
	}
	return template.URL("data:" + l.ContentType + ";base64," + base64.StdEncoding.EncodeToString(l.Data))
}

// InvoiceDocument is everything a printed invoice shows
type InvoiceDocument struct {
	Invoice *invoicing.Invoice
	Account *identity.Account
	Logo    *Logo
}

// invoiceView is the template data
type invoiceView struct {
	Invoice      *invoicing.Invoice
	Account      *identity.Account
	LogoURL      template.URL
	PrimaryColor template.CSS
	Watermark    string
	Outstanding  decimal.Decimal
}

// InvoiceTemplate renders invoices to HTML with locale-aware number formatting
type InvoiceTemplate struct {
	tmpl *template.Template
	tag  language.Tag
}

// NewInvoiceTemplate parses the built-in invoice layout. locale is a BCP 47
// tag such as "en-US" or "de-DE"; an unknown tag falls back to English.
func NewInvoiceTemplate(locale string) (*InvoiceTemplate, error) {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.AmericanEnglish
	}
	// the placeholders are replaced per render by localized funcs
	tmpl, err := template.New("invoice").Funcs(formatFuncs(message.NewPrinter(tag))).Parse(invoiceLayout)
	if err != nil {
		return nil, fmt.Errorf("parse invoice template: %w", err)
	}
	return &InvoiceTemplate{tmpl: tmpl, tag: tag}, nil
}

// Render produces the complete HTML page of an invoice
func (t *InvoiceTemplate) Render(_ context.Context, doc InvoiceDocument) (string, error) {
	if doc.Invoice == nil || doc.Account == nil {
		return "", fmt.Errorf("invoice document requires an invoice and an account")
	}

	tmpl, err := t.tmpl.Clone()
	if err != nil {
		return "", err
	}
	tmpl.Funcs(formatFuncs(message.NewPrinter(t.tag)))

	color := doc.Account.Branding.PrimaryColor
	if color == "" {
		color = defaultPrimaryColor
	}
	view := invoiceView{
		Invoice:      doc.Invoice,
		Account:      doc.Account,
		LogoURL:      doc.Logo.DataURL(),
		PrimaryColor: template.CSS(color),
		Watermark:    watermarkFor(doc.Invoice.Status),
		Outstanding:  doc.Invoice.Outstanding(),
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, view); err != nil {
		return "", fmt.Errorf("render invoice %s: %w", doc.Invoice.Number, err)
	}
	return buf.String(), nil
}

// PageFooter is the Chrome footer template with page numbers
func (t *InvoiceTemplate) PageFooter(doc InvoiceDocument) string {
	return `<div style="font-size:8px;width:100%;text-align:center;color:#6b7280">` +
		template.HTMLEscapeString(doc.Invoice.Number) +
		` &middot; <span class="pageNumber"></span>/<span class="totalPages"></span></div>`
}

func watermarkFor(s invoicing.InvoiceStatus) string {
	switch s {
	case invoicing.InvoiceStatusDraft:
		return "DRAFT"
	case invoicing.InvoiceStatusCancelled:
		return "CANCELLED"
	case invoicing.InvoiceStatusPaid:
		return "PAID"
	}
	return ""
}

func formatFuncs(p *message.Printer) template.FuncMap {
	return template.FuncMap{
		"money": func(d decimal.Decimal, code fmt.Stringer) string {
			return formatMoney(p, d, code.String())
		},
		"qty": func(d decimal.Decimal) string {
			return p.Sprint(number.Decimal(d.InexactFloat64(), number.MaxFractionDigits(4)))
		},
		"rate": func(d decimal.Decimal) string {
			return p.Sprint(number.Decimal(d.InexactFloat64(), number.MaxFractionDigits(2))) + "%"
		},
		"add1": func(i int) int { return i + 1 },
		"date": func(t time.Time) string {
			return t.Format("2006-01-02")
		},
		"hasDiscount": func(inv *invoicing.Invoice) bool {
			return !inv.DiscountAmount.IsZero()
		},
		"lines": func(s string) []string {
			return strings.Split(strings.TrimSpace(s), "\n")
		},
	}
}

// formatMoney renders an amount with the currency symbol, e.g. "$ 1,234.50"
// for en-US or "€ 1.234,50" for de-DE. Unknown codes are printed as-is.
func formatMoney(p *message.Printer, d decimal.Decimal, code string) string {
	unit, err := currency.ParseISO(code)
	if err != nil {
		return code + " " + p.Sprint(number.Decimal(d.InexactFloat64(), number.Scale(2)))
	}
	return p.Sprint(currency.Symbol(unit.Amount(d.InexactFloat64())))
}

const invoiceLayout = `<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<title>{{.Invoice.Number}}</title>
<style>
  body { font-family: "Helvetica Neue", Arial, sans-serif; font-size: 11px; color: #111827; margin: 0; }
  .accent { color: {{.PrimaryColor}}; }
  header { display: flex; justify-content: space-between; border-bottom: 3px solid {{.PrimaryColor}}; padding-bottom: 12px; }
  header img { max-height: 60px; max-width: 200px; }
  h1 { font-size: 22px; margin: 0; }
  .meta td { padding: 1px 8px 1px 0; }
  .parties { display: flex; justify-content: space-between; margin: 18px 0; }
  table.items { width: 100%; border-collapse: collapse; }
  table.items th { background: {{.PrimaryColor}}; color: #fff; text-align: left; padding: 6px; }
  table.items td { border-bottom: 1px solid #e5e7eb; padding: 6px; vertical-align: top; }
  .num { text-align: right; white-space: nowrap; }
  .totals { margin-left: auto; margin-top: 12px; width: 45%; }
  .totals td { padding: 3px 6px; }
  .totals .grand td { font-weight: bold; border-top: 2px solid {{.PrimaryColor}}; }
  .notes, .footer { margin-top: 24px; color: #4b5563; }
  .watermark { position: fixed; top: 40%; left: 15%; font-size: 96px; color: rgba(220, 38, 38, 0.12); transform: rotate(-30deg); }
</style>
</head>
<body>
{{- if .Watermark}}<div class="watermark">{{.Watermark}}</div>{{end}}
<header>
  <div>
    {{- if .LogoURL}}<img src="{{.LogoURL}}" alt="{{.Account.Name}}">{{else}}<h1 class="accent">{{.Account.Name}}</h1>{{end}}
    <div>{{range lines .Account.Address}}{{.}}<br>{{end}}</div>
    {{- if .Account.TaxNumber}}<div>Tax ID: {{.Account.TaxNumber}}</div>{{end}}
    {{- if .Account.Email}}<div>{{.Account.Email}}</div>{{end}}
  </div>
  <div>
    <h1>INVOICE</h1>
    <table class="meta">
      <tr><td>Number</td><td><strong>{{.Invoice.Number}}</strong></td></tr>
      <tr><td>Issue date</td><td>{{date .Invoice.IssueDate}}</td></tr>
      <tr><td>Due date</td><td>{{date .Invoice.DueDate}}</td></tr>
      <tr><td>Status</td><td>{{.Invoice.Status}}</td></tr>
    </table>
  </div>
</header>

<div class="parties">
  <div><div class="accent">Bill to</div><strong>{{.Invoice.CustomerName}}</strong></div>
</div>

<table class="items">
  <thead>
    <tr>
      <th>#</th><th>Item</th><th class="num">Qty</th><th class="num">Unit price</th>
      {{- if hasDiscount .Invoice}}<th class="num">Discount</th>{{end}}
      <th class="num">Tax</th><th class="num">Amount</th>
    </tr>
  </thead>
  <tbody>
  {{- $inv := .Invoice}}
  {{- range $i, $item := .Invoice.Items}}
    <tr>
      <td>{{add1 $i}}</td>
      <td>{{$item.ProductName}}{{if $item.Description}}<br><small>{{$item.Description}}</small>{{end}}</td>
      <td class="num">{{qty $item.Quantity}}</td>
      <td class="num">{{money $item.UnitPrice $inv.Currency}}</td>
      {{- if hasDiscount $inv}}<td class="num">{{rate $item.DiscountRate}}</td>{{end}}
      <td class="num">{{rate $item.TaxRate}}</td>
      <td class="num">{{money $item.Total $inv.Currency}}</td>
    </tr>
  {{- end}}
  </tbody>
</table>

<table class="totals">
  <tr><td>Subtotal</td><td class="num">{{money .Invoice.Subtotal .Invoice.Currency}}</td></tr>
  {{- if hasDiscount .Invoice}}
  <tr><td>Discount</td><td class="num">-{{money .Invoice.DiscountAmount .Invoice.Currency}}</td></tr>
  {{- end}}
  <tr><td>Tax</td><td class="num">{{money .Invoice.TaxAmount .Invoice.Currency}}</td></tr>
  <tr class="grand"><td>Total</td><td class="num">{{money .Invoice.TotalAmount .Invoice.Currency}}</td></tr>
  {{- if not .Invoice.PaidAmount.IsZero}}
  <tr><td>Paid</td><td class="num">{{money .Invoice.PaidAmount .Invoice.Currency}}</td></tr>
  <tr><td>Balance due</td><td class="num">{{money .Outstanding .Invoice.Currency}}</td></tr>
  {{- end}}
</table>

{{- if .Invoice.Notes}}
<div class="notes"><strong>Notes</strong><br>{{range lines .Invoice.Notes}}{{.}}<br>{{end}}</div>
{{- end}}
{{- if .Account.Branding.InvoiceFooter}}
<div class="footer">{{.Account.Branding.InvoiceFooter}}</div>
{{- end}}
</body>
</html>
`
