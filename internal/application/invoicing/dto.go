package invoicing

import (
	"time"

	"github.com/google/uuid"
	"github.com/ledgerly/backend/internal/domain/invoicing"
	"github.com/shopspring/decimal"
)

// ItemRequest is one invoice line. For lines referencing a product, omitted
// name, unit price and tax rate are taken from the product.
type ItemRequest struct {
	ProductID    *uuid.UUID       `json:"product_id"`
	ProductName  string           `json:"product_name" binding:"max=200"`
	Description  string           `json:"description" binding:"max=1000"`
	Quantity     decimal.Decimal  `json:"quantity" binding:"required"`
	UnitPrice    *decimal.Decimal `json:"unit_price"`
	DiscountRate decimal.Decimal  `json:"discount_rate"`
	TaxRate      *decimal.Decimal `json:"tax_rate"`
}

// CreateInvoiceRequest represents a request to create a draft invoice
type CreateInvoiceRequest struct {
	CustomerID uuid.UUID     `json:"customer_id" binding:"required"`
	IssueDate  time.Time     `json:"issue_date" binding:"required"`
	DueDate    *time.Time    `json:"due_date"`
	Currency   string        `json:"currency" binding:"omitempty,len=3"`
	Notes      string        `json:"notes" binding:"max=2000"`
	Items      []ItemRequest `json:"items" binding:"required,min=1,max=200,dive"`
}

// UpdateInvoiceRequest replaces the header and lines of a draft invoice
type UpdateInvoiceRequest struct {
	CustomerID uuid.UUID     `json:"customer_id" binding:"required"`
	IssueDate  time.Time     `json:"issue_date" binding:"required"`
	DueDate    *time.Time    `json:"due_date"`
	Currency   string        `json:"currency" binding:"omitempty,len=3"`
	Notes      string        `json:"notes" binding:"max=2000"`
	Items      []ItemRequest `json:"items" binding:"required,min=1,max=200,dive"`
}

// CancelInvoiceRequest carries an optional cancel reason
type CancelInvoiceRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

// InvoiceListFilter holds invoice query parameters
type InvoiceListFilter struct {
	Page       int        `form:"page" binding:"omitempty,min=1"`
	PageSize   int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy    string     `form:"order_by"`
	OrderDir   string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
	Search     string     `form:"search"`
	Status     string     `form:"status"`
	CustomerID *uuid.UUID `form:"-"` // query customer_id
	DateFrom   *time.Time `form:"date_from" time_format:"2006-01-02"`
	DateTo     *time.Time `form:"date_to" time_format:"2006-01-02"`
	Overdue    bool       `form:"overdue"`
}

// SummaryFilter limits the status summary to invoices issued in a date range
type SummaryFilter struct {
	DateFrom *time.Time `form:"date_from" time_format:"2006-01-02"`
	DateTo   *time.Time `form:"date_to" time_format:"2006-01-02"`
}

// InvoiceItemResponse represents an invoice line
type InvoiceItemResponse struct {
	ID             uuid.UUID       `json:"id"`
	ProductID      *uuid.UUID      `json:"product_id,omitempty"`
	ProductName    string          `json:"product_name"`
	Description    string          `json:"description"`
	Quantity       decimal.Decimal `json:"quantity"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	DiscountRate   decimal.Decimal `json:"discount_rate"`
	TaxRate        decimal.Decimal `json:"tax_rate"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	TaxAmount      decimal.Decimal `json:"tax_amount"`
	Total          decimal.Decimal `json:"total"`
}

// InvoiceResponse represents an invoice in API responses. Items are empty in
// list results.
type InvoiceResponse struct {
	ID             uuid.UUID             `json:"id"`
	Number         string                `json:"number"`
	CustomerID     uuid.UUID             `json:"customer_id"`
	CustomerName   string                `json:"customer_name"`
	IssueDate      time.Time             `json:"issue_date"`
	DueDate        time.Time             `json:"due_date"`
	Currency       string                `json:"currency"`
	Items          []InvoiceItemResponse `json:"items"`
	Subtotal       decimal.Decimal       `json:"subtotal"`
	DiscountAmount decimal.Decimal       `json:"discount_amount"`
	TaxAmount      decimal.Decimal       `json:"tax_amount"`
	TotalAmount    decimal.Decimal       `json:"total_amount"`
	PaidAmount     decimal.Decimal       `json:"paid_amount"`
	Outstanding    decimal.Decimal       `json:"outstanding"`
	Overdue        bool                  `json:"overdue"`
	Notes          string                `json:"notes"`
	Status         string                `json:"status"`
	ConfirmedAt    *time.Time            `json:"confirmed_at,omitempty"`
	PaidAt         *time.Time            `json:"paid_at,omitempty"`
	CancelledAt    *time.Time            `json:"cancelled_at,omitempty"`
	CancelReason   string                `json:"cancel_reason,omitempty"`
	CreatedBy      *uuid.UUID            `json:"created_by,omitempty"`
	Version        int                   `json:"version"`
	CreatedAt      time.Time             `json:"created_at"`
	UpdatedAt      time.Time             `json:"updated_at"`
}

// ToInvoiceResponse converts a domain invoice
func ToInvoiceResponse(inv *invoicing.Invoice) InvoiceResponse {
	items := make([]InvoiceItemResponse, len(inv.Items))
	for i, item := range inv.Items {
		items[i] = InvoiceItemResponse{
			ID:             item.ID,
			ProductID:      item.ProductID,
			ProductName:    item.ProductName,
			Description:    item.Description,
			Quantity:       item.Quantity,
			UnitPrice:      item.UnitPrice,
			DiscountRate:   item.DiscountRate,
			TaxRate:        item.TaxRate,
			Subtotal:       item.Subtotal,
			DiscountAmount: item.DiscountAmount,
			TaxAmount:      item.TaxAmount,
			Total:          item.Total,
		}
	}
	return InvoiceResponse{
		ID:             inv.ID,
		Number:         inv.Number,
		CustomerID:     inv.CustomerID,
		CustomerName:   inv.CustomerName,
		IssueDate:      inv.IssueDate,
		DueDate:        inv.DueDate,
		Currency:       inv.Currency.String(),
		Items:          items,
		Subtotal:       inv.Subtotal,
		DiscountAmount: inv.DiscountAmount,
		TaxAmount:      inv.TaxAmount,
		TotalAmount:    inv.TotalAmount,
		PaidAmount:     inv.PaidAmount,
		Outstanding:    inv.Outstanding(),
		Overdue:        inv.IsOverdue(time.Now()),
		Notes:          inv.Notes,
		Status:         string(inv.Status),
		ConfirmedAt:    inv.ConfirmedAt,
		PaidAt:         inv.PaidAt,
		CancelledAt:    inv.CancelledAt,
		CancelReason:   inv.CancelReason,
		CreatedBy:      inv.CreatedBy,
		Version:        inv.Version,
		CreatedAt:      inv.CreatedAt,
		UpdatedAt:      inv.UpdatedAt,
	}
}

// StatusSummaryResponse aggregates invoices of one status
type StatusSummaryResponse struct {
	Status      string          `json:"status"`
	Count       int64           `json:"count"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	PaidAmount  decimal.Decimal `json:"paid_amount"`
}

// SummaryResponse is the invoice dashboard summary
type SummaryResponse struct {
	ByStatus         []StatusSummaryResponse `json:"by_status"`
	TotalCount       int64                   `json:"total_count"`
	TotalInvoiced    decimal.Decimal         `json:"total_invoiced"`
	TotalPaid        decimal.Decimal         `json:"total_paid"`
	TotalOutstanding decimal.Decimal         `json:"total_outstanding"`
}

// RecordPaymentRequest records money received against an invoice
type RecordPaymentRequest struct {
	Amount    decimal.Decimal `json:"amount" binding:"required"`
	Method    string          `json:"method" binding:"required,oneof=CASH BANK_TRANSFER CARD CHECK OTHER"`
	PaidAt    *time.Time      `json:"paid_at"`
	Reference string          `json:"reference" binding:"max=100"`
	Notes     string          `json:"notes" binding:"max=1000"`
}

// PaymentListFilter holds payment query parameters
type PaymentListFilter struct {
	Page       int        `form:"page" binding:"omitempty,min=1"`
	PageSize   int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy    string     `form:"order_by"`
	OrderDir   string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
	Search     string     `form:"search"`
	InvoiceID  *uuid.UUID `form:"-"` // query invoice_id
	CustomerID *uuid.UUID `form:"-"` // query customer_id
	Method     string     `form:"method"`
	DateFrom   *time.Time `form:"date_from" time_format:"2006-01-02"`
	DateTo     *time.Time `form:"date_to" time_format:"2006-01-02"`
}

// PaymentResponse represents a payment in API responses
type PaymentResponse struct {
	ID            uuid.UUID       `json:"id"`
	InvoiceID     uuid.UUID       `json:"invoice_id"`
	InvoiceNumber string          `json:"invoice_number"`
	CustomerID    uuid.UUID       `json:"customer_id"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	Method        string          `json:"method"`
	PaidAt        time.Time       `json:"paid_at"`
	Reference     string          `json:"reference"`
	Notes         string          `json:"notes"`
	CreatedBy     *uuid.UUID      `json:"created_by,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// ToPaymentResponse converts a domain payment
func ToPaymentResponse(p *invoicing.Payment) PaymentResponse {
	return PaymentResponse{
		ID:            p.ID,
		InvoiceID:     p.InvoiceID,
		InvoiceNumber: p.InvoiceNumber,
		CustomerID:    p.CustomerID,
		Amount:        p.Amount,
		Currency:      p.Currency.String(),
		Method:        string(p.Method),
		PaidAt:        p.PaidAt,
		Reference:     p.Reference,
		Notes:         p.Notes,
		CreatedBy:     p.CreatedBy,
		CreatedAt:     p.CreatedAt,
	}
}

// PaymentResultResponse is returned after a payment is recorded or removed
type PaymentResultResponse struct {
	Payment PaymentResponse `json:"payment"`
	Invoice InvoiceResponse `json:"invoice"`
}

// PDFDocument is a rendered invoice file
type PDFDocument struct {
	Filename string
	Data     []byte
}
