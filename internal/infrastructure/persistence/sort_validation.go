package persistence

import (
	"strings"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

func withCommon(fields ...string) map[string]bool {
	m := map[string]bool{
		"id":         true,
		"created_at": true,
		"updated_at": true,
	}
	for _, f := range fields {
		m[f] = true
	}
	return m
}

// Allowed sort columns per table
var (
	UserSortFields         = withCommon("email", "display_name", "status", "last_login_at")
	RoleSortFields         = withCommon("code", "name", "is_enabled", "is_system")
	ProductSortFields      = withCommon("sku", "name", "sale_price", "cost_price", "stock_quantity", "is_active")
	CustomerSortFields     = withCommon("code", "name", "email", "balance", "is_active")
	InvoiceSortFields      = withCommon("number", "customer_name", "issue_date", "due_date", "status", "total_amount", "paid_amount")
	PaymentSortFields      = withCommon("paid_at", "amount", "method", "invoice_number")
	ExpenseSortFields      = withCommon("number", "date", "category", "amount", "payee")
	RevenueSortFields      = withCommon("number", "date", "category", "amount", "payer")
	MessageSortFields      = withCommon("subject", "read_at")
	NotificationSortFields = withCommon("type", "read_at")
	ActivitySortFields     = withCommon("action", "entity_type", "actor_name")
)
