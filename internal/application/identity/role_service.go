package identity

import (
	"context"
	"strings"

	"github.com/google/uuid"
	activityapp "github.com/ledgerly/backend/internal/application/activity"
	"github.com/ledgerly/backend/internal/domain/activity"
	"github.com/ledgerly/backend/internal/domain/identity"
	"github.com/ledgerly/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// RoleService manages roles and their permissions
type RoleService struct {
	roleRepo identity.RoleRepository
	events   shared.EventPublisher
	recorder *activityapp.Recorder
	logger   *zap.Logger
}

// NewRoleService creates a new role service
func NewRoleService(
	roleRepo identity.RoleRepository,
	events shared.EventPublisher,
	recorder *activityapp.Recorder,
	logger *zap.Logger,
) *RoleService {
	return &RoleService{
		roleRepo: roleRepo,
		events:   events,
		recorder: recorder,
		logger:   logger,
	}
}

// Permissions returns the permission catalog grouped by module
func (s *RoleService) Permissions() []identity.ModulePermissions {
	return identity.PermissionCatalog()
}

// Create creates a custom role
func (s *RoleService) Create(ctx context.Context, tenantID uuid.UUID, req CreateRoleRequest) (*RoleResponse, error) {
	code := strings.ToUpper(strings.TrimSpace(req.Code))
	exists, err := s.roleRepo.ExistsByCode(ctx, tenantID, code)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Role with this code already exists")
	}

	role, err := identity.NewRole(tenantID, code, req.Name)
	if err != nil {
		return nil, err
	}
	if req.Description != "" {
		if err := role.Update(req.Name, req.Description); err != nil {
			return nil, err
		}
	}
	if len(req.Permissions) > 0 {
		if err := role.SetPermissionCodes(req.Permissions); err != nil {
			return nil, err
		}
	}
	if actor := shared.ActorFromContext(ctx); actor.UserID != uuid.Nil {
		role.SetCreatedBy(actor.UserID)
	}

	if err := s.roleRepo.Create(ctx, role); err != nil {
		return nil, err
	}
	s.publish(ctx, role)

	resp := ToRoleResponse(role)
	s.record(ctx, role, activity.ActionCreate, nil, resp)
	return &resp, nil
}

// Get returns a role
func (s *RoleService) Get(ctx context.Context, tenantID, id uuid.UUID) (*RoleResponse, error) {
	role, err := s.roleRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	resp := ToRoleResponse(role)
	return &resp, nil
}

// List returns a page of roles
func (s *RoleService) List(ctx context.Context, tenantID uuid.UUID, filter RoleListFilter) ([]RoleResponse, int64, error) {
	roles, total, err := s.roleRepo.FindAll(ctx, tenantID, identity.RoleFilter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  filter.OrderBy,
			OrderDir: filter.OrderDir,
			Search:   filter.Search,
		}.Normalize(),
		IsEnabled: filter.IsEnabled,
		IsSystem:  filter.IsSystem,
	})
	if err != nil {
		return nil, 0, err
	}
	out := make([]RoleResponse, len(roles))
	for i, r := range roles {
		out[i] = ToRoleResponse(r)
	}
	return out, total, nil
}

// Update changes name and description
func (s *RoleService) Update(ctx context.Context, tenantID, id uuid.UUID, req UpdateRoleRequest) (*RoleResponse, error) {
	return s.mutate(ctx, tenantID, id, activity.ActionUpdate, func(role *identity.Role) error {
		return role.Update(req.Name, req.Description)
	})
}

// SetPermissions replaces the role's permissions
func (s *RoleService) SetPermissions(ctx context.Context, tenantID, id uuid.UUID, req SetPermissionsRequest) (*RoleResponse, error) {
	return s.mutate(ctx, tenantID, id, activity.ActionUpdate, func(role *identity.Role) error {
		return role.SetPermissionCodes(req.Permissions)
	})
}

// Enable enables a role
func (s *RoleService) Enable(ctx context.Context, tenantID, id uuid.UUID) (*RoleResponse, error) {
	return s.mutate(ctx, tenantID, id, activity.ActionEnable, (*identity.Role).Enable)
}

// Disable disables a role. Its permissions stop counting at the users' next
// token refresh.
func (s *RoleService) Disable(ctx context.Context, tenantID, id uuid.UUID) (*RoleResponse, error) {
	return s.mutate(ctx, tenantID, id, activity.ActionDisable, (*identity.Role).Disable)
}

// Delete removes a custom role that no user holds
func (s *RoleService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	role, err := s.roleRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if !role.CanDelete() {
		return shared.NewDomainError("CANNOT_DELETE_SYSTEM_ROLE", "System roles cannot be deleted")
	}
	count, err := s.roleRepo.CountUsersWithRole(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return shared.NewDomainError("ROLE_IN_USE", "Role is assigned to users and cannot be deleted")
	}
	if err := s.roleRepo.Delete(ctx, tenantID, id); err != nil {
		return err
	}
	s.logger.Info("Role deleted", zap.String("role_id", id.String()), zap.String("code", role.Code))
	s.record(ctx, role, activity.ActionDelete, ToRoleResponse(role), nil)
	return nil
}

func (s *RoleService) mutate(ctx context.Context, tenantID, id uuid.UUID, action activity.Action, apply func(*identity.Role) error) (*RoleResponse, error) {
	role, err := s.roleRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	before := ToRoleResponse(role)
	if err := apply(role); err != nil {
		return nil, err
	}
	if err := s.roleRepo.Save(ctx, role); err != nil {
		return nil, err
	}
	s.publish(ctx, role)

	resp := ToRoleResponse(role)
	s.record(ctx, role, action, before, resp)
	return &resp, nil
}

func (s *RoleService) publish(ctx context.Context, role *identity.Role) {
	if err := shared.PublishAndClear(ctx, s.events, role); err != nil {
		s.logger.Warn("Failed to publish role events", zap.Error(err))
	}
}

func (s *RoleService) record(ctx context.Context, role *identity.Role, action activity.Action, before, after any) {
	s.recorder.Record(ctx, role.TenantID, activity.Entry{
		Action:      action,
		EntityType:  activity.EntityRole,
		EntityID:    role.ID,
		EntityLabel: role.Code,
		Before:      before,
		After:       after,
	})
}
