package partner

import (
	"time"

	"github.com/google/uuid"
	"github.com/ledgerly/backend/internal/domain/partner"
	"github.com/shopspring/decimal"
)

// CreateCustomerRequest represents a request to create a customer
type CreateCustomerRequest struct {
	Code      string `json:"code" binding:"required,min=1,max=50"`
	Name      string `json:"name" binding:"required,min=1,max=200"`
	Email     string `json:"email" binding:"omitempty,email,max=200"`
	Phone     string `json:"phone" binding:"max=50"`
	Address   string `json:"address" binding:"max=500"`
	TaxNumber string `json:"tax_number" binding:"max=50"`
	Notes     string `json:"notes" binding:"max=2000"`
}

// UpdateCustomerRequest changes a customer's details.
// Omitted fields keep their current value.
type UpdateCustomerRequest struct {
	Name      *string `json:"name" binding:"omitempty,min=1,max=200"`
	Email     *string `json:"email" binding:"omitempty,max=200"`
	Phone     *string `json:"phone" binding:"omitempty,max=50"`
	Address   *string `json:"address" binding:"omitempty,max=500"`
	TaxNumber *string `json:"tax_number" binding:"omitempty,max=50"`
	Notes     *string `json:"notes" binding:"omitempty,max=2000"`
	IsActive  *bool   `json:"is_active"`
}

// CustomerListFilter holds customer query parameters
type CustomerListFilter struct {
	Page       int    `form:"page" binding:"omitempty,min=1"`
	PageSize   int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy    string `form:"order_by"`
	OrderDir   string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
	Search     string `form:"search"`
	IsActive   *bool  `form:"is_active"`
	HasBalance *bool  `form:"has_balance"`
}

// StatementFilter limits the statement lines to a date range
type StatementFilter struct {
	DateFrom *time.Time `form:"date_from" time_format:"2006-01-02"`
	DateTo   *time.Time `form:"date_to" time_format:"2006-01-02"`
}

// CustomerResponse represents a customer in API responses
type CustomerResponse struct {
	ID        uuid.UUID       `json:"id"`
	Code      string          `json:"code"`
	Name      string          `json:"name"`
	Email     string          `json:"email"`
	Phone     string          `json:"phone"`
	Address   string          `json:"address"`
	TaxNumber string          `json:"tax_number"`
	Notes     string          `json:"notes"`
	Balance   decimal.Decimal `json:"balance"`
	IsActive  bool            `json:"is_active"`
	Version   int             `json:"version"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// ToCustomerResponse converts a domain customer
func ToCustomerResponse(c *partner.Customer) CustomerResponse {
	return CustomerResponse{
		ID:        c.ID,
		Code:      c.Code,
		Name:      c.Name,
		Email:     c.Email,
		Phone:     c.Phone,
		Address:   c.Address,
		TaxNumber: c.TaxNumber,
		Notes:     c.Notes,
		Balance:   c.Balance,
		IsActive:  c.IsActive,
		Version:   c.Version,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

// Statement line kinds
const (
	StatementLineInvoice = "INVOICE"
	StatementLinePayment = "PAYMENT"
)

// StatementLine is one movement on the customer's account
type StatementLine struct {
	Date      time.Time       `json:"date"`
	Kind      string          `json:"kind"`
	Reference string          `json:"reference"`
	InvoiceID uuid.UUID       `json:"invoice_id"`
	PaymentID *uuid.UUID      `json:"payment_id,omitempty"`
	Debit     decimal.Decimal `json:"debit"`
	Credit    decimal.Decimal `json:"credit"`
	Balance   decimal.Decimal `json:"balance"`
}

// StatementInvoice summarizes an invoice on the statement
type StatementInvoice struct {
	ID          uuid.UUID       `json:"id"`
	Number      string          `json:"number"`
	Status      string          `json:"status"`
	IssueDate   time.Time       `json:"issue_date"`
	DueDate     time.Time       `json:"due_date"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	PaidAmount  decimal.Decimal `json:"paid_amount"`
	Outstanding decimal.Decimal `json:"outstanding"`
	Overdue     bool            `json:"overdue"`
}

// StatementResponse lists a customer's invoices and payments with a running balance
type StatementResponse struct {
	Customer       CustomerResponse   `json:"customer"`
	DateFrom       *time.Time         `json:"date_from,omitempty"`
	DateTo         *time.Time         `json:"date_to,omitempty"`
	OpeningBalance decimal.Decimal    `json:"opening_balance"`
	TotalInvoiced  decimal.Decimal    `json:"total_invoiced"`
	TotalPaid      decimal.Decimal    `json:"total_paid"`
	ClosingBalance decimal.Decimal    `json:"closing_balance"`
	Lines          []StatementLine    `json:"lines"`
	Invoices       []StatementInvoice `json:"invoices"`
}
