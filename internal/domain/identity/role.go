package identity

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ledgerly/backend/internal/domain/shared"
)

// System role codes seeded for every new account
const (
	RoleCodeAdmin      = "ADMIN"
	RoleCodeAccountant = "ACCOUNTANT"
	RoleCodeSales      = "SALES"
	RoleCodeViewer     = "VIEWER"
)

var roleCodeRegex = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_]*$`)

// Role aggregates permissions and is assigned to users
type Role struct {
	shared.TenantAggregateRoot
	Code        string
	Name        string
	Description string
	IsSystem    bool
	IsEnabled   bool
	Permissions []Permission
}

// NewRole creates a new enabled role with no permissions
func NewRole(tenantID uuid.UUID, code, name string) (*Role, error) {
	if err := validateRoleCode(code); err != nil {
		return nil, err
	}
	if err := validateRoleName(name); err != nil {
		return nil, err
	}

	role := &Role{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Code:                strings.ToUpper(strings.TrimSpace(code)),
		Name:                strings.TrimSpace(name),
		IsEnabled:           true,
		Permissions:         make([]Permission, 0),
	}

	role.AddDomainEvent(NewRoleCreatedEvent(role))

	return role, nil
}

// NewSystemRole creates a role that cannot be deleted
func NewSystemRole(tenantID uuid.UUID, code, name string, codes []string) (*Role, error) {
	role, err := NewRole(tenantID, code, name)
	if err != nil {
		return nil, err
	}
	role.IsSystem = true
	if err := role.SetPermissionCodes(codes); err != nil {
		return nil, err
	}
	return role, nil
}

// Update changes the name and description
func (r *Role) Update(name, description string) error {
	if err := validateRoleName(name); err != nil {
		return err
	}
	if len(description) > 500 {
		return shared.NewDomainError("INVALID_ROLE_DESCRIPTION", "Role description cannot exceed 500 characters")
	}

	r.Name = strings.TrimSpace(name)
	r.Description = strings.TrimSpace(description)
	r.UpdatedAt = time.Now()

	r.AddDomainEvent(NewRoleUpdatedEvent(r))

	return nil
}

// Enable enables the role
func (r *Role) Enable() error {
	if r.IsEnabled {
		return shared.NewDomainError("ALREADY_ENABLED", "Role is already enabled")
	}

	r.IsEnabled = true
	r.UpdatedAt = time.Now()

	return nil
}

// Disable disables the role; its permissions stop applying to its users
func (r *Role) Disable() error {
	if !r.IsEnabled {
		return shared.NewDomainError("ALREADY_DISABLED", "Role is already disabled")
	}

	r.IsEnabled = false
	r.UpdatedAt = time.Now()

	return nil
}

// SetPermissionCodes replaces the role's permissions.
// Codes are validated against the catalog and deduplicated.
func (r *Role) SetPermissionCodes(codes []string) error {
	perms, err := ParsePermissions(codes)
	if err != nil {
		return err
	}

	r.Permissions = perms
	r.UpdatedAt = time.Now()

	r.AddDomainEvent(NewRolePermissionsChangedEvent(r))

	return nil
}

// GrantPermission adds a single permission
func (r *Role) GrantPermission(code string) error {
	perm, err := ParsePermission(code)
	if err != nil {
		return err
	}
	if r.HasPermission(perm.Code) {
		return shared.NewDomainError("PERMISSION_ALREADY_GRANTED", "Role already has this permission")
	}

	r.Permissions = append(r.Permissions, perm)
	r.UpdatedAt = time.Now()

	return nil
}

// RevokePermission removes a single permission
func (r *Role) RevokePermission(code string) error {
	kept := make([]Permission, 0, len(r.Permissions))
	found := false
	for _, p := range r.Permissions {
		if p.Code == code {
			found = true
			continue
		}
		kept = append(kept, p)
	}
	if !found {
		return shared.NewDomainError("PERMISSION_NOT_FOUND", "Role does not have this permission")
	}

	r.Permissions = kept
	r.UpdatedAt = time.Now()

	return nil
}

// HasPermission checks the exact code
func (r *Role) HasPermission(code string) bool {
	for _, p := range r.Permissions {
		if p.Code == code {
			return true
		}
	}
	return false
}

// PermissionCodes returns the codes of the role's permissions
func (r *Role) PermissionCodes() []string {
	codes := make([]string, 0, len(r.Permissions))
	for _, p := range r.Permissions {
		codes = append(codes, p.Code)
	}
	return codes
}

// CanDelete returns true if the role can be deleted
func (r *Role) CanDelete() bool {
	return !r.IsSystem
}

func validateRoleCode(code string) error {
	code = strings.TrimSpace(code)
	if len(code) < 2 {
		return shared.NewDomainError("INVALID_ROLE_CODE", "Role code must be at least 2 characters")
	}
	if len(code) > 50 {
		return shared.NewDomainError("INVALID_ROLE_CODE", "Role code cannot exceed 50 characters")
	}
	if !roleCodeRegex.MatchString(code) {
		return shared.NewDomainError("INVALID_ROLE_CODE", "Role code must start with a letter and contain only letters, numbers, and underscores")
	}
	return nil
}

func validateRoleName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_ROLE_NAME", "Role name cannot be empty")
	}
	if len(name) > 100 {
		return shared.NewDomainError("INVALID_ROLE_NAME", "Role name cannot exceed 100 characters")
	}
	return nil
}

// DefaultRoleTemplate describes a system role seeded at registration
type DefaultRoleTemplate struct {
	Code        string
	Name        string
	Permissions []string
}

// DefaultRoleTemplates returns the system roles every account starts with
func DefaultRoleTemplates() []DefaultRoleTemplate {
	return []DefaultRoleTemplate{
		{
			Code:        RoleCodeAdmin,
			Name:        "Administrator",
			Permissions: AllPermissionCodes(),
		},
		{
			Code: RoleCodeAccountant,
			Name: "Accountant",
			Permissions: []string{
				"customer:view", "product:view",
				"invoice:*", "payment:*", "expense:*", "revenue:*",
				"activity:view",
			},
		},
		{
			Code: RoleCodeSales,
			Name: "Sales",
			Permissions: []string{
				"customer:view", "customer:create", "customer:update",
				"product:view",
				"invoice:view", "invoice:create", "invoice:update", "invoice:confirm", "invoice:print",
				"payment:view", "payment:create",
			},
		},
		{
			Code: RoleCodeViewer,
			Name: "Viewer",
			Permissions: []string{
				"account:view", "branding:view", "customer:view", "product:view",
				"invoice:view", "payment:view", "expense:view", "revenue:view",
			},
		},
	}
}
