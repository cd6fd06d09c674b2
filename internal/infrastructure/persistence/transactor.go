package persistence

import (
	"context"

	"github.com/ledgerly/backend/internal/domain/shared"
	"gorm.io/gorm"
)

type txKey struct{}

// GormTransactor runs units of work in a database transaction.
// Repositories pick the transaction up from the context, so nested calls
// join the outer transaction instead of opening a new one.
type GormTransactor struct {
	db *gorm.DB
}

// NewGormTransactor creates a new GormTransactor
func NewGormTransactor(db *gorm.DB) *GormTransactor {
	return &GormTransactor{db: db}
}

// RunInTx implements shared.Transactor
func (t *GormTransactor) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

var _ shared.Transactor = (*GormTransactor)(nil)

// conn returns the transaction bound to ctx, or db
func conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx.WithContext(ctx)
	}
	return db.WithContext(ctx)
}

// withTx runs fn in the transaction bound to ctx, or in a new one
func withTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return fn(tx.WithContext(ctx))
	}
	return db.WithContext(ctx).Transaction(fn)
}
