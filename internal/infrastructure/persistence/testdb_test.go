package persistence

import (
	"database/sql"
	"fmt"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/ledgerly/backend/internal/infrastructure/persistence/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// setupTestDB opens an isolated in-memory SQLite database with every table migrated.
// One connection keeps transactions and plain queries on the same database.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&models.AccountModel{},
		&models.UserModel{},
		&models.UserRoleModel{},
		&models.RoleModel{},
		&models.RolePermissionModel{},
		&models.ProductModel{},
		&models.CustomerModel{},
		&models.InvoiceModel{},
		&models.InvoiceItemModel{},
		&models.PaymentModel{},
		&models.ExpenseModel{},
		&models.RevenueModel{},
		&models.MessageModel{},
		&models.NotificationModel{},
		&models.ActivityLogModel{},
		&models.DocumentSequenceModel{},
	))
	return db
}

// newMockDB creates a GORM DB on a mocked PostgreSQL connection
func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})
	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	return gormDB, mock, mockDB
}
