//go:build integration

package persistence

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/ledgerly/backend/internal/domain/sequence"
	"github.com/ledgerly/backend/internal/infrastructure/migration"
	"github.com/ledgerly/backend/migrations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// startPostgres runs a throwaway PostgreSQL container with the embedded
// migrations applied. Run with: go test -tags integration ./...
func startPostgres(t *testing.T) (*gorm.DB, *migration.Migrator) {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("ledgerly_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "failed to start PostgreSQL container")
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
		SkipDefaultTransaction: true,
		TranslateError:         true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(25)

	m, err := migration.NewFromFS(sqlDB, migrations.FS, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, m.Up())
	t.Cleanup(func() { _ = m.Close() })

	return db, m
}

func insertAccount(t *testing.T, db *gorm.DB) uuid.UUID {
	t.Helper()
	id := uuid.New()
	err := db.Exec(
		`INSERT INTO accounts (id, code, name, email, currency) VALUES (?, ?, ?, ?, ?)`,
		id, "ACC-"+id.String()[:8], "Acme", id.String()[:8]+"@acme.test", "USD",
	).Error
	require.NoError(t, err)
	return id
}

func TestPostgres_MigrationsRoundTrip(t *testing.T) {
	db, m := startPostgres(t)

	st, err := m.Status()
	require.NoError(t, err)
	assert.True(t, st.Applied)
	assert.False(t, st.Dirty)
	assert.Equal(t, uint(1), st.Version)

	require.NoError(t, m.Down())
	var tables int64
	require.NoError(t, db.Raw(`SELECT COUNT(*) FROM pg_tables WHERE schemaname = 'public' AND tablename = 'invoices'`).Scan(&tables).Error)
	assert.Zero(t, tables)

	require.NoError(t, m.Up())
	require.NoError(t, db.Raw(`SELECT COUNT(*) FROM pg_tables WHERE schemaname = 'public' AND tablename = 'invoices'`).Scan(&tables).Error)
	assert.Equal(t, int64(1), tables)
}

func TestPostgres_SequenceGenerator_ConcurrentNumbersAreGapFree(t *testing.T) {
	db, _ := startPostgres(t)
	tenantID := insertAccount(t, db)

	gen := NewGormSequenceGenerator(db)
	tx := NewGormTransactor(db)
	key := sequence.Key{TenantID: tenantID, DocumentType: sequence.DocumentTypeInvoice, Year: 2025}

	const workers = 20
	var (
		mu      sync.Mutex
		numbers []string
	)
	g, ctx := errgroup.WithContext(context.Background())
	for i := 0; i < workers; i++ {
		g.Go(func() error {
			return tx.RunInTx(ctx, func(ctx context.Context) error {
				n, err := gen.Next(ctx, key, "INV")
				if err != nil {
					return err
				}
				mu.Lock()
				numbers = append(numbers, n)
				mu.Unlock()
				return nil
			})
		})
	}
	require.NoError(t, g.Wait())

	sort.Strings(numbers)
	require.Len(t, numbers, workers)
	for i, n := range numbers {
		assert.Equal(t, fmt.Sprintf("INV-2025-%05d", i+1), n)
	}
}

func TestPostgres_SequenceGenerator_RollbackReleasesNumber(t *testing.T) {
	db, _ := startPostgres(t)
	tenantID := insertAccount(t, db)

	gen := NewGormSequenceGenerator(db)
	tx := NewGormTransactor(db)
	key := sequence.Key{TenantID: tenantID, DocumentType: sequence.DocumentTypeExpense, Year: 2025}
	ctx := context.Background()

	errAbort := fmt.Errorf("abort")
	err := tx.RunInTx(ctx, func(ctx context.Context) error {
		n, err := gen.Next(ctx, key, "EXP")
		require.NoError(t, err)
		assert.Equal(t, "EXP-2025-00001", n)
		return errAbort
	})
	require.ErrorIs(t, err, errAbort)

	n, err := gen.Next(ctx, key, "EXP")
	require.NoError(t, err)
	assert.Equal(t, "EXP-2025-00001", n)
}

func TestPostgres_DeleteProductOnlyOnDraftInvoice(t *testing.T) {
	db, _ := startPostgres(t)
	tenantID := insertAccount(t, db)
	ctx := context.Background()

	productID, customerID, invoiceID := uuid.New(), uuid.New(), uuid.New()
	require.NoError(t, db.Exec(
		`INSERT INTO products (id, tenant_id, sku, name, unit) VALUES (?, ?, 'SKU-1', 'Widget', 'pcs')`,
		productID, tenantID).Error)
	require.NoError(t, db.Exec(
		`INSERT INTO customers (id, tenant_id, code, name) VALUES (?, ?, 'C-1', 'Globex')`,
		customerID, tenantID).Error)
	require.NoError(t, db.Exec(
		`INSERT INTO invoices (id, tenant_id, number, customer_id, customer_name, issue_date, due_date, currency)
		 VALUES (?, ?, 'INV-2025-00001', ?, 'Globex', '2025-03-01', '2025-03-31', 'USD')`,
		invoiceID, tenantID, customerID).Error)
	require.NoError(t, db.Exec(
		`INSERT INTO invoice_items (id, tenant_id, invoice_id, product_id, product_name, quantity, unit_price,
		 subtotal, discount_amount, tax_amount, total)
		 VALUES (?, ?, ?, ?, 'Widget', 2, 10, 20, 0, 0, 20)`,
		uuid.New(), tenantID, invoiceID, productID).Error)

	require.NoError(t, NewGormProductRepository(db).Delete(ctx, tenantID, productID))

	var remaining struct {
		ProductID   *uuid.UUID
		ProductName string
	}
	require.NoError(t, db.Raw(`SELECT product_id, product_name FROM invoice_items WHERE invoice_id = ?`, invoiceID).
		Scan(&remaining).Error)
	assert.Nil(t, remaining.ProductID, "draft line becomes a free-text line")
	assert.Equal(t, "Widget", remaining.ProductName)
}
