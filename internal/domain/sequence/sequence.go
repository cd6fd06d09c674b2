// Package sequence defines tenant-scoped document numbering.
package sequence

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DocumentType identifies an independently numbered document series
type DocumentType string

const (
	DocumentTypeInvoice DocumentType = "INVOICE"
	DocumentTypeExpense DocumentType = "EXPENSE"
	DocumentTypeRevenue DocumentType = "REVENUE"
)

// IsValid checks the document type
func (t DocumentType) IsValid() bool {
	switch t {
	case DocumentTypeInvoice, DocumentTypeExpense, DocumentTypeRevenue:
		return true
	}
	return false
}

// Key identifies one counter: numbers restart every calendar year
type Key struct {
	TenantID     uuid.UUID
	DocumentType DocumentType
	Year         int
}

// NewKey builds the counter key for a document dated at
func NewKey(tenantID uuid.UUID, docType DocumentType, at time.Time) Key {
	return Key{TenantID: tenantID, DocumentType: docType, Year: at.Year()}
}

// Format renders a document number such as INV-2025-00042
func Format(prefix string, year int, value int64) string {
	return fmt.Sprintf("%s-%04d-%05d", prefix, year, value)
}

// Generator hands out document numbers.
// Next must be called inside the transaction that persists the document so a
// rolled back document does not consume its number.
type Generator interface {
	Next(ctx context.Context, key Key, prefix string) (string, error)
}
