package persistence

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/ledgerly/backend/internal/domain/identity"
	"github.com/ledgerly/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormRoleRepository implements identity.RoleRepository using GORM.
// Permissions live in role_permissions and are replaced wholesale on save.
type GormRoleRepository struct {
	db *gorm.DB
}

// NewGormRoleRepository creates a new GormRoleRepository
func NewGormRoleRepository(db *gorm.DB) *GormRoleRepository {
	return &GormRoleRepository{db: db}
}

// Create inserts a role and its permissions
func (r *GormRoleRepository) Create(ctx context.Context, role *identity.Role) error {
	return withTx(ctx, r.db, func(tx *gorm.DB) error {
		if err := tx.Create(models.RoleModelFromDomain(role)).Error; err != nil {
			return uniqueViolation(err)
		}
		return r.insertPermissions(tx, role)
	})
}

// Save updates the role and replaces its permissions
func (r *GormRoleRepository) Save(ctx context.Context, role *identity.Role) error {
	model := models.RoleModelFromDomain(role)
	model.Version = role.Version + 1
	err := withTx(ctx, r.db, func(tx *gorm.DB) error {
		if err := saveVersioned(tx, model, role.Version); err != nil {
			return err
		}
		if err := tx.Where("role_id = ?", role.ID).Delete(&models.RolePermissionModel{}).Error; err != nil {
			return err
		}
		return r.insertPermissions(tx, role)
	})
	if err != nil {
		return err
	}
	role.IncrementVersion()
	role.UpdatedAt = model.UpdatedAt
	return nil
}

func (r *GormRoleRepository) insertPermissions(tx *gorm.DB, role *identity.Role) error {
	rows := models.RolePermissionModels(role)
	if len(rows) == 0 {
		return nil
	}
	return tx.Create(&rows).Error
}

// Delete removes a role with its permissions and assignments
func (r *GormRoleRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return withTx(ctx, r.db, func(tx *gorm.DB) error {
		if err := tx.Where("role_id = ?", id).Delete(&models.RolePermissionModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("role_id = ?", id).Delete(&models.UserRoleModel{}).Error; err != nil {
			return err
		}
		return deleteScoped(tx, &models.RoleModel{}, tenantID, id)
	})
}

// FindByID finds a role with its permissions
func (r *GormRoleRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*identity.Role, error) {
	var model models.RoleModel
	if err := conn(ctx, r.db).Scopes(TenantScope(tenantID)).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	roles, err := r.withPermissions(ctx, []models.RoleModel{model})
	if err != nil {
		return nil, err
	}
	return roles[0], nil
}

// FindByIDs finds the roles among ids that exist in the tenant
func (r *GormRoleRepository) FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]*identity.Role, error) {
	if len(ids) == 0 {
		return []*identity.Role{}, nil
	}
	var rows []models.RoleModel
	if err := conn(ctx, r.db).Scopes(TenantScope(tenantID)).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	return r.withPermissions(ctx, rows)
}

// FindByCode finds a role by code within a tenant
func (r *GormRoleRepository) FindByCode(ctx context.Context, tenantID uuid.UUID, code string) (*identity.Role, error) {
	var model models.RoleModel
	if err := conn(ctx, r.db).Scopes(TenantScope(tenantID)).
		First(&model, "code = ?", strings.ToUpper(strings.TrimSpace(code))).Error; err != nil {
		return nil, notFound(err)
	}
	roles, err := r.withPermissions(ctx, []models.RoleModel{model})
	if err != nil {
		return nil, err
	}
	return roles[0], nil
}

// FindAll lists roles matching the filter
func (r *GormRoleRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter identity.RoleFilter) ([]*identity.Role, int64, error) {
	filter.Filter = filter.Filter.Normalize()
	query := func() *gorm.DB {
		q := conn(ctx, r.db).Model(&models.RoleModel{}).
			Scopes(TenantScope(tenantID), Search(filter.Search, "code", "name"))
		if filter.IsEnabled != nil {
			q = q.Where("is_enabled = ?", *filter.IsEnabled)
		}
		if filter.IsSystem != nil {
			q = q.Where("is_system = ?", *filter.IsSystem)
		}
		return q
	}

	var total int64
	if err := query().Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []models.RoleModel
	if err := query().
		Scopes(OrderBy(filter.Filter, RoleSortFields, "code"), Paginate(filter.Filter)).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	roles, err := r.withPermissions(ctx, rows)
	if err != nil {
		return nil, 0, err
	}
	return roles, total, nil
}

// ExistsByCode checks if a role code is taken within a tenant
func (r *GormRoleRepository) ExistsByCode(ctx context.Context, tenantID uuid.UUID, code string) (bool, error) {
	var count int64
	if err := conn(ctx, r.db).Model(&models.RoleModel{}).
		Scopes(TenantScope(tenantID)).
		Where("code = ?", strings.ToUpper(strings.TrimSpace(code))).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// CountUsersWithRole counts the users a role is assigned to
func (r *GormRoleRepository) CountUsersWithRole(ctx context.Context, tenantID, roleID uuid.UUID) (int64, error) {
	var count int64
	err := conn(ctx, r.db).Model(&models.UserRoleModel{}).
		Scopes(TenantScope(tenantID)).
		Where("role_id = ?", roleID).
		Count(&count).Error
	return count, err
}

// withPermissions converts rows and attaches their permissions with one query
func (r *GormRoleRepository) withPermissions(ctx context.Context, rows []models.RoleModel) ([]*identity.Role, error) {
	roles := make([]*identity.Role, len(rows))
	if len(rows) == 0 {
		return roles, nil
	}
	ids := make([]uuid.UUID, len(rows))
	byID := make(map[uuid.UUID]*identity.Role, len(rows))
	for i := range rows {
		roles[i] = rows[i].ToDomain()
		ids[i] = rows[i].ID
		byID[rows[i].ID] = roles[i]
	}

	var perms []models.RolePermissionModel
	if err := conn(ctx, r.db).Where("role_id IN ?", ids).Order("code").Find(&perms).Error; err != nil {
		return nil, err
	}
	for i := range perms {
		if role, ok := byID[perms[i].RoleID]; ok {
			role.Permissions = append(role.Permissions, perms[i].ToDomain())
		}
	}
	return roles, nil
}

var _ identity.RoleRepository = (*GormRoleRepository)(nil)
