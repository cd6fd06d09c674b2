package finance

import (
	"time"

	"github.com/google/uuid"
	"github.com/ledgerly/backend/internal/domain/finance"
	"github.com/shopspring/decimal"
)

// CreateExpenseRequest represents a request to record an expense
type CreateExpenseRequest struct {
	Category      string          `json:"category" binding:"required"`
	Description   string          `json:"description" binding:"required,max=500"`
	Amount        decimal.Decimal `json:"amount" binding:"required"`
	Currency      string          `json:"currency" binding:"omitempty,len=3"`
	Date          time.Time       `json:"date" binding:"required"`
	PaymentMethod string          `json:"payment_method" binding:"omitempty,oneof=CASH BANK_TRANSFER CARD CHECK OTHER"`
	Payee         string          `json:"payee" binding:"max=200"`
	Reference     string          `json:"reference" binding:"max=100"`
	Notes         string          `json:"notes" binding:"max=2000"`
}

// UpdateExpenseRequest replaces the editable fields of an expense
type UpdateExpenseRequest CreateExpenseRequest

// CreateRevenueRequest represents a request to record a revenue
type CreateRevenueRequest struct {
	Category      string          `json:"category" binding:"required"`
	Description   string          `json:"description" binding:"required,max=500"`
	Amount        decimal.Decimal `json:"amount" binding:"required"`
	Currency      string          `json:"currency" binding:"omitempty,len=3"`
	Date          time.Time       `json:"date" binding:"required"`
	PaymentMethod string          `json:"payment_method" binding:"omitempty,oneof=CASH BANK_TRANSFER CARD CHECK OTHER"`
	Payer         string          `json:"payer" binding:"max=200"`
	CustomerID    *uuid.UUID      `json:"customer_id"`
	Reference     string          `json:"reference" binding:"max=100"`
	Notes         string          `json:"notes" binding:"max=2000"`
}

// UpdateRevenueRequest replaces the editable fields of a revenue
type UpdateRevenueRequest CreateRevenueRequest

// EntryListFilter holds expense and revenue query parameters
type EntryListFilter struct {
	Page       int        `form:"page" binding:"omitempty,min=1"`
	PageSize   int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy    string     `form:"order_by"`
	OrderDir   string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
	Search     string     `form:"search"`
	Category   string     `form:"category"`
	DateFrom   *time.Time `form:"date_from" time_format:"2006-01-02"`
	DateTo     *time.Time `form:"date_to" time_format:"2006-01-02"`
	CustomerID *uuid.UUID `form:"-"` // query customer_id
}

// SummaryFilter limits a summary to a date range
type SummaryFilter struct {
	DateFrom *time.Time `form:"date_from" time_format:"2006-01-02"`
	DateTo   *time.Time `form:"date_to" time_format:"2006-01-02"`
}

// ExpenseResponse represents an expense in API responses
type ExpenseResponse struct {
	ID            uuid.UUID       `json:"id"`
	Number        string          `json:"number"`
	Category      string          `json:"category"`
	CategoryName  string          `json:"category_name"`
	Description   string          `json:"description"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	Date          time.Time       `json:"date"`
	PaymentMethod string          `json:"payment_method"`
	Payee         string          `json:"payee,omitempty"`
	Reference     string          `json:"reference,omitempty"`
	Notes         string          `json:"notes,omitempty"`
	CreatedBy     *uuid.UUID      `json:"created_by,omitempty"`
	Version       int             `json:"version"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// ToExpenseResponse converts a domain expense
func ToExpenseResponse(e *finance.Expense) ExpenseResponse {
	return ExpenseResponse{
		ID:            e.ID,
		Number:        e.Number,
		Category:      e.Category.String(),
		CategoryName:  e.Category.DisplayName(),
		Description:   e.Description,
		Amount:        e.Amount,
		Currency:      e.Currency.String(),
		Date:          e.Date,
		PaymentMethod: e.PaymentMethod.String(),
		Payee:         e.Payee,
		Reference:     e.Reference,
		Notes:         e.Notes,
		CreatedBy:     e.CreatedBy,
		Version:       e.Version,
		CreatedAt:     e.CreatedAt,
		UpdatedAt:     e.UpdatedAt,
	}
}

// RevenueResponse represents a revenue in API responses
type RevenueResponse struct {
	ID            uuid.UUID       `json:"id"`
	Number        string          `json:"number"`
	Category      string          `json:"category"`
	Description   string          `json:"description"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	Date          time.Time       `json:"date"`
	PaymentMethod string          `json:"payment_method"`
	Payer         string          `json:"payer,omitempty"`
	CustomerID    *uuid.UUID      `json:"customer_id,omitempty"`
	Reference     string          `json:"reference,omitempty"`
	Notes         string          `json:"notes,omitempty"`
	CreatedBy     *uuid.UUID      `json:"created_by,omitempty"`
	Version       int             `json:"version"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// ToRevenueResponse converts a domain revenue
func ToRevenueResponse(r *finance.Revenue) RevenueResponse {
	return RevenueResponse{
		ID:            r.ID,
		Number:        r.Number,
		Category:      r.Category.String(),
		Description:   r.Description,
		Amount:        r.Amount,
		Currency:      r.Currency.String(),
		Date:          r.Date,
		PaymentMethod: r.PaymentMethod.String(),
		Payer:         r.Payer,
		CustomerID:    r.CustomerID,
		Reference:     r.Reference,
		Notes:         r.Notes,
		CreatedBy:     r.CreatedBy,
		Version:       r.Version,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

// CategoryTotalResponse is the total of one category
type CategoryTotalResponse struct {
	Category string          `json:"category"`
	Count    int64           `json:"count"`
	Total    decimal.Decimal `json:"total"`
}

// SummaryResponse totals entries per category over a period. Categories
// without entries are listed with zero totals.
type SummaryResponse struct {
	DateFrom   *time.Time              `json:"date_from,omitempty"`
	DateTo     *time.Time              `json:"date_to,omitempty"`
	Count      int64                   `json:"count"`
	Total      decimal.Decimal         `json:"total"`
	ByCategory []CategoryTotalResponse `json:"by_category"`
}

// toSummaryResponse fills the known categories in order
func toSummaryResponse(s finance.Summary, categories []string) *SummaryResponse {
	byCategory := make(map[string]finance.CategoryTotal, len(s.ByCategory))
	for _, ct := range s.ByCategory {
		byCategory[ct.Category] = ct
	}
	resp := &SummaryResponse{
		DateFrom:   s.From,
		DateTo:     s.To,
		Count:      s.Count,
		Total:      s.Total,
		ByCategory: make([]CategoryTotalResponse, 0, len(categories)),
	}
	for _, c := range categories {
		ct, ok := byCategory[c]
		if !ok {
			ct = finance.CategoryTotal{Category: c, Total: decimal.Zero}
		}
		resp.ByCategory = append(resp.ByCategory, CategoryTotalResponse{Category: c, Count: ct.Count, Total: ct.Total})
	}
	return resp
}
