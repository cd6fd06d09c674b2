package persistence

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/ledgerly/backend/internal/domain/identity"
	"github.com/ledgerly/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormAccountRepository implements identity.AccountRepository using GORM
type GormAccountRepository struct {
	db *gorm.DB
}

// NewGormAccountRepository creates a new GormAccountRepository
func NewGormAccountRepository(db *gorm.DB) *GormAccountRepository {
	return &GormAccountRepository{db: db}
}

// Create inserts a new account
func (r *GormAccountRepository) Create(ctx context.Context, account *identity.Account) error {
	return uniqueViolation(conn(ctx, r.db).Create(models.AccountModelFromDomain(account)).Error)
}

// Save updates an account with optimistic locking
func (r *GormAccountRepository) Save(ctx context.Context, account *identity.Account) error {
	model := models.AccountModelFromDomain(account)
	model.Version = account.Version + 1
	if err := saveVersioned(conn(ctx, r.db), model, account.Version); err != nil {
		return err
	}
	account.IncrementVersion()
	account.UpdatedAt = model.UpdatedAt
	return nil
}

// FindByID finds an account by ID
func (r *GormAccountRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.Account, error) {
	var model models.AccountModel
	if err := conn(ctx, r.db).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindByCode finds an account by its unique code
func (r *GormAccountRepository) FindByCode(ctx context.Context, code string) (*identity.Account, error) {
	var model models.AccountModel
	if err := conn(ctx, r.db).First(&model, "code = ?", normalizeAccountCode(code)).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// ExistsByCode checks if an account code is taken
func (r *GormAccountRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	var count int64
	if err := conn(ctx, r.db).Model(&models.AccountModel{}).
		Where("code = ?", normalizeAccountCode(code)).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func normalizeAccountCode(code string) string {
	return strings.ToLower(strings.TrimSpace(code))
}

var _ identity.AccountRepository = (*GormAccountRepository)(nil)
