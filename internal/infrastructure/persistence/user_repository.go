package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/ledgerly/backend/internal/domain/identity"
	"github.com/ledgerly/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormUserRepository implements identity.UserRepository using GORM
type GormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a new GormUserRepository
func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// Create inserts a user and its role assignments
func (r *GormUserRepository) Create(ctx context.Context, user *identity.User) error {
	return withTx(ctx, r.db, func(tx *gorm.DB) error {
		if err := tx.Create(models.UserModelFromDomain(user)).Error; err != nil {
			return uniqueViolation(err)
		}
		return r.insertRoles(tx, user)
	})
}

// Save updates the user and replaces its role assignments
func (r *GormUserRepository) Save(ctx context.Context, user *identity.User) error {
	model := models.UserModelFromDomain(user)
	model.Version = user.Version + 1
	err := withTx(ctx, r.db, func(tx *gorm.DB) error {
		if err := saveVersioned(tx, model, user.Version); err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", user.ID).Delete(&models.UserRoleModel{}).Error; err != nil {
			return err
		}
		return r.insertRoles(tx, user)
	})
	if err != nil {
		return err
	}
	user.IncrementVersion()
	user.UpdatedAt = model.UpdatedAt
	return nil
}

func (r *GormUserRepository) insertRoles(tx *gorm.DB, user *identity.User) error {
	rows := models.UserRoleModels(user)
	if len(rows) == 0 {
		return nil
	}
	return tx.Create(&rows).Error
}

// Delete removes a user and its role assignments
func (r *GormUserRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return withTx(ctx, r.db, func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&models.UserRoleModel{}).Error; err != nil {
			return err
		}
		return deleteScoped(tx, &models.UserModel{}, tenantID, id)
	})
}

// FindByID finds a user with its role IDs
func (r *GormUserRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*identity.User, error) {
	var model models.UserModel
	if err := conn(ctx, r.db).Scopes(TenantScope(tenantID)).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	users, err := r.withRoles(ctx, []models.UserModel{model})
	if err != nil {
		return nil, err
	}
	return users[0], nil
}

// FindByEmail finds a user by email across all accounts
func (r *GormUserRepository) FindByEmail(ctx context.Context, email string) (*identity.User, error) {
	var model models.UserModel
	if err := conn(ctx, r.db).First(&model, "email = ?", identity.NormalizeEmail(email)).Error; err != nil {
		return nil, notFound(err)
	}
	users, err := r.withRoles(ctx, []models.UserModel{model})
	if err != nil {
		return nil, err
	}
	return users[0], nil
}

// FindAll lists users matching the filter
func (r *GormUserRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter identity.UserFilter) ([]*identity.User, int64, error) {
	filter.Filter = filter.Filter.Normalize()
	query := func() *gorm.DB {
		q := conn(ctx, r.db).Model(&models.UserModel{}).
			Scopes(TenantScope(tenantID), Search(filter.Search, "email", "display_name", "phone"))
		if filter.Status != nil {
			q = q.Where("status = ?", *filter.Status)
		}
		if filter.RoleID != nil {
			q = q.Where("id IN (?)", conn(ctx, r.db).Model(&models.UserRoleModel{}).
				Select("user_id").Where("role_id = ?", *filter.RoleID))
		}
		return q
	}

	var total int64
	if err := query().Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []models.UserModel
	if err := query().
		Scopes(OrderBy(filter.Filter, UserSortFields, "created_at"), Paginate(filter.Filter)).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	users, err := r.withRoles(ctx, rows)
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// ExistsByEmail checks if an email is registered in any account
func (r *GormUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	if err := conn(ctx, r.db).Model(&models.UserModel{}).
		Where("email = ?", identity.NormalizeEmail(email)).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// CountSuperAdmins counts the enabled super admins of an account
func (r *GormUserRepository) CountSuperAdmins(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	var count int64
	err := conn(ctx, r.db).Model(&models.UserModel{}).
		Scopes(TenantScope(tenantID)).
		Where("is_super_admin = ? AND status <> ?", true, identity.UserStatusDisabled).
		Count(&count).Error
	return count, err
}

func (r *GormUserRepository) withRoles(ctx context.Context, rows []models.UserModel) ([]*identity.User, error) {
	users := make([]*identity.User, len(rows))
	if len(rows) == 0 {
		return users, nil
	}
	ids := make([]uuid.UUID, len(rows))
	byID := make(map[uuid.UUID]*identity.User, len(rows))
	for i := range rows {
		users[i] = rows[i].ToDomain()
		ids[i] = rows[i].ID
		byID[rows[i].ID] = users[i]
	}

	var links []models.UserRoleModel
	if err := conn(ctx, r.db).Where("user_id IN ?", ids).Order("created_at").Find(&links).Error; err != nil {
		return nil, err
	}
	for _, link := range links {
		if u, ok := byID[link.UserID]; ok {
			u.RoleIDs = append(u.RoleIDs, link.RoleID)
		}
	}
	return users, nil
}

var _ identity.UserRepository = (*GormUserRepository)(nil)
