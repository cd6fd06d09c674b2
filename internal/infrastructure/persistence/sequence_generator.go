package persistence

import (
	"context"
	"fmt"

	"github.com/ledgerly/backend/internal/domain/sequence"
	"github.com/ledgerly/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormSequenceGenerator issues gap-free document numbers from the
// document_sequences table. The counter row stays locked until the caller's
// transaction ends, which serializes numbering per tenant, type and year.
type GormSequenceGenerator struct {
	db *gorm.DB
}

// NewGormSequenceGenerator creates a new GormSequenceGenerator
func NewGormSequenceGenerator(db *gorm.DB) *GormSequenceGenerator {
	return &GormSequenceGenerator{db: db}
}

// Next implements sequence.Generator
func (g *GormSequenceGenerator) Next(ctx context.Context, key sequence.Key, prefix string) (string, error) {
	if !key.DocumentType.IsValid() {
		return "", fmt.Errorf("unknown document type %q", key.DocumentType)
	}

	var value int64
	err := withTx(ctx, g.db, func(tx *gorm.DB) error {
		row := models.DocumentSequenceModel{
			TenantID:     key.TenantID,
			DocumentType: string(key.DocumentType),
			Year:         key.Year,
		}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error; err != nil {
			return err
		}
		if err := forUpdate(tx).
			Where("tenant_id = ? AND document_type = ? AND year = ?", key.TenantID, key.DocumentType, key.Year).
			First(&row).Error; err != nil {
			return err
		}
		value = row.LastValue + 1
		return tx.Model(&models.DocumentSequenceModel{}).
			Where("tenant_id = ? AND document_type = ? AND year = ?", key.TenantID, key.DocumentType, key.Year).
			Update("last_value", value).Error
	})
	if err != nil {
		return "", fmt.Errorf("next %s number: %w", key.DocumentType, err)
	}
	return sequence.Format(prefix, key.Year, value), nil
}

var _ sequence.Generator = (*GormSequenceGenerator)(nil)
