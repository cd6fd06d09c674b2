package identity

import (
	"context"

	"github.com/google/uuid"
	"github.com/ledgerly/backend/internal/domain/shared"
)

// AccountRepository persists accounts
type AccountRepository interface {
	Create(ctx context.Context, account *Account) error
	// Save updates an account, checking its version
	Save(ctx context.Context, account *Account) error
	FindByID(ctx context.Context, id uuid.UUID) (*Account, error)
	FindByCode(ctx context.Context, code string) (*Account, error)
	ExistsByCode(ctx context.Context, code string) (bool, error)
}

// RoleFilter defines the filter criteria for role queries
type RoleFilter struct {
	shared.Filter
	IsEnabled *bool
	IsSystem  *bool
}

// RoleRepository persists roles together with their permissions
type RoleRepository interface {
	Create(ctx context.Context, role *Role) error
	// Save updates the role and replaces its permissions, checking the version
	Save(ctx context.Context, role *Role) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Role, error)
	FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]*Role, error)
	FindByCode(ctx context.Context, tenantID uuid.UUID, code string) (*Role, error)
	FindAll(ctx context.Context, tenantID uuid.UUID, filter RoleFilter) ([]*Role, int64, error)
	ExistsByCode(ctx context.Context, tenantID uuid.UUID, code string) (bool, error)
	CountUsersWithRole(ctx context.Context, tenantID, roleID uuid.UUID) (int64, error)
}

// UserFilter contains filter options for querying users
type UserFilter struct {
	shared.Filter
	Status *UserStatus
	RoleID *uuid.UUID
}

// UserRepository persists users together with their role assignments
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	// Save updates the user and replaces its role assignments, checking the version
	Save(ctx context.Context, user *User) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*User, error)
	// FindByEmail looks a user up across all accounts; emails are globally unique
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindAll(ctx context.Context, tenantID uuid.UUID, filter UserFilter) ([]*User, int64, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	CountSuperAdmins(ctx context.Context, tenantID uuid.UUID) (int64, error)
}
