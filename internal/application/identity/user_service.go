package identity

import (
	"context"
	"strings"

	"github.com/google/uuid"
	activityapp "github.com/ledgerly/backend/internal/application/activity"
	"github.com/ledgerly/backend/internal/domain/activity"
	"github.com/ledgerly/backend/internal/domain/identity"
	"github.com/ledgerly/backend/internal/domain/shared"
	"github.com/ledgerly/backend/internal/infrastructure/auth"
	"go.uber.org/zap"
)

// UserService manages the users of an account
type UserService struct {
	userRepo   identity.UserRepository
	roleRepo   identity.RoleRepository
	blacklist  auth.TokenBlacklist
	jwtService *auth.JWTService
	events     shared.EventPublisher
	recorder   *activityapp.Recorder
	logger     *zap.Logger
}

// NewUserService creates a new user service
func NewUserService(
	userRepo identity.UserRepository,
	roleRepo identity.RoleRepository,
	blacklist auth.TokenBlacklist,
	jwtService *auth.JWTService,
	events shared.EventPublisher,
	recorder *activityapp.Recorder,
	logger *zap.Logger,
) *UserService {
	return &UserService{
		userRepo:   userRepo,
		roleRepo:   roleRepo,
		blacklist:  blacklist,
		jwtService: jwtService,
		events:     events,
		recorder:   recorder,
		logger:     logger,
	}
}

// Create adds a user to the account
func (s *UserService) Create(ctx context.Context, tenantID uuid.UUID, req CreateUserRequest) (*UserResponse, error) {
	exists, err := s.userRepo.ExistsByEmail(ctx, identity.NormalizeEmail(req.Email))
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "User with this email already exists")
	}

	user, err := identity.NewUser(tenantID, req.Email, req.DisplayName, req.Password)
	if err != nil {
		return nil, err
	}
	if req.Phone != "" {
		if err := user.UpdateProfile(req.DisplayName, req.Phone); err != nil {
			return nil, err
		}
	}
	if len(req.RoleIDs) > 0 {
		if err := s.checkRoles(ctx, tenantID, req.RoleIDs); err != nil {
			return nil, err
		}
		if err := user.SetRoles(req.RoleIDs); err != nil {
			return nil, err
		}
	}
	user.SetSuperAdmin(req.IsSuperAdmin)
	if actor := shared.ActorFromContext(ctx); actor.UserID != uuid.Nil {
		user.SetCreatedBy(actor.UserID)
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	s.publish(ctx, user)

	s.logger.Info("User created",
		zap.String("user_id", user.ID.String()),
		zap.String("tenant_id", tenantID.String()))

	resp := ToUserResponse(user)
	s.record(ctx, user, activity.ActionCreate, nil, resp)
	return &resp, nil
}

// Get returns a user
func (s *UserService) Get(ctx context.Context, tenantID, id uuid.UUID) (*UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	resp := ToUserResponse(user)
	return &resp, nil
}

// List returns a page of users
func (s *UserService) List(ctx context.Context, tenantID uuid.UUID, filter UserListFilter) ([]UserResponse, int64, error) {
	query := identity.UserFilter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  filter.OrderBy,
			OrderDir: filter.OrderDir,
			Search:   filter.Search,
		}.Normalize(),
		RoleID: filter.RoleID,
	}
	if filter.Status != "" {
		status := identity.UserStatus(strings.ToLower(filter.Status))
		if !status.IsValid() {
			return nil, 0, shared.NewDomainError("INVALID_STATUS", "Unknown user status")
		}
		query.Status = &status
	}

	users, total, err := s.userRepo.FindAll(ctx, tenantID, query)
	if err != nil {
		return nil, 0, err
	}
	out := make([]UserResponse, len(users))
	for i, u := range users {
		out[i] = ToUserResponse(u)
	}
	return out, total, nil
}

// Update changes a user's profile
func (s *UserService) Update(ctx context.Context, tenantID, id uuid.UUID, req UpdateUserRequest) (*UserResponse, error) {
	return s.mutate(ctx, tenantID, id, activity.ActionUpdate, func(user *identity.User) error {
		return user.UpdateProfile(pick(req.DisplayName, user.DisplayName), pick(req.Phone, user.Phone))
	})
}

// AssignRoles replaces a user's roles. They apply from the next token refresh.
func (s *UserService) AssignRoles(ctx context.Context, tenantID, id uuid.UUID, req AssignRolesRequest) (*UserResponse, error) {
	if err := s.checkRoles(ctx, tenantID, req.RoleIDs); err != nil {
		return nil, err
	}
	return s.mutate(ctx, tenantID, id, activity.ActionAssign, func(user *identity.User) error {
		return user.SetRoles(req.RoleIDs)
	})
}

// SetSuperAdmin grants or revokes super-admin. Callers cannot demote
// themselves and the last super-admin cannot be demoted.
func (s *UserService) SetSuperAdmin(ctx context.Context, tenantID, id uuid.UUID, req SetSuperAdminRequest) (*UserResponse, error) {
	if !req.IsSuperAdmin && isSelf(ctx, id) {
		return nil, shared.NewDomainError("CANNOT_DEMOTE_SELF", "You cannot remove your own super-admin flag")
	}
	resp, err := s.mutate(ctx, tenantID, id, activity.ActionUpdate, func(user *identity.User) error {
		if !req.IsSuperAdmin && holdsSuperAdmin(user) {
			if err := s.ensureNotLastSuperAdmin(ctx, tenantID); err != nil {
				return err
			}
		}
		user.SetSuperAdmin(req.IsSuperAdmin)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.revokeTokens(ctx, id)
	return resp, nil
}

// Enable re-activates a disabled user
func (s *UserService) Enable(ctx context.Context, tenantID, id uuid.UUID) (*UserResponse, error) {
	return s.mutate(ctx, tenantID, id, activity.ActionEnable, (*identity.User).Enable)
}

// Disable blocks a user from signing in and revokes its tokens
func (s *UserService) Disable(ctx context.Context, tenantID, id uuid.UUID) (*UserResponse, error) {
	if isSelf(ctx, id) {
		return nil, shared.NewDomainError("CANNOT_DISABLE_SELF", "You cannot disable yourself")
	}
	resp, err := s.mutate(ctx, tenantID, id, activity.ActionDisable, func(user *identity.User) error {
		if holdsSuperAdmin(user) {
			if err := s.ensureNotLastSuperAdmin(ctx, tenantID); err != nil {
				return err
			}
		}
		return user.Disable()
	})
	if err != nil {
		return nil, err
	}
	s.revokeTokens(ctx, id)
	return resp, nil
}

// Unlock clears a login lock
func (s *UserService) Unlock(ctx context.Context, tenantID, id uuid.UUID) (*UserResponse, error) {
	return s.mutate(ctx, tenantID, id, activity.ActionEnable, (*identity.User).Unlock)
}

// ResetPassword sets a user's password and revokes its tokens
func (s *UserService) ResetPassword(ctx context.Context, tenantID, id uuid.UUID, req ResetPasswordRequest) error {
	user, err := s.userRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if err := user.SetPassword(req.Password); err != nil {
		return err
	}
	if err := s.userRepo.Save(ctx, user); err != nil {
		return err
	}
	s.revokeTokens(ctx, id)
	s.record(ctx, user, activity.ActionUpdate,
		map[string]any{"password": "********"}, map[string]any{"password": "reset"})
	return nil
}

// Delete removes a user. Callers cannot delete themselves and the last
// super-admin cannot be deleted.
func (s *UserService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	if isSelf(ctx, id) {
		return shared.NewDomainError("CANNOT_DELETE_SELF", "You cannot delete yourself")
	}
	user, err := s.userRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if holdsSuperAdmin(user) {
		if err := s.ensureNotLastSuperAdmin(ctx, tenantID); err != nil {
			return err
		}
	}
	if err := s.userRepo.Delete(ctx, tenantID, id); err != nil {
		return err
	}
	s.revokeTokens(ctx, id)
	s.logger.Info("User deleted", zap.String("user_id", id.String()))
	s.record(ctx, user, activity.ActionDelete, ToUserResponse(user), nil)
	return nil
}

func (s *UserService) mutate(ctx context.Context, tenantID, id uuid.UUID, action activity.Action, apply func(*identity.User) error) (*UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	before := ToUserResponse(user)
	if err := apply(user); err != nil {
		return nil, err
	}
	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}
	s.publish(ctx, user)

	resp := ToUserResponse(user)
	s.record(ctx, user, action, before, resp)
	return &resp, nil
}

// checkRoles verifies every role id belongs to the account
func (s *UserService) checkRoles(ctx context.Context, tenantID uuid.UUID, roleIDs []uuid.UUID) error {
	if len(roleIDs) == 0 {
		return nil
	}
	unique := make(map[uuid.UUID]struct{}, len(roleIDs))
	for _, id := range roleIDs {
		unique[id] = struct{}{}
	}
	roles, err := s.roleRepo.FindByIDs(ctx, tenantID, roleIDs)
	if err != nil {
		return err
	}
	if len(roles) != len(unique) {
		return shared.NewDomainError("INVALID_ROLE_ID", "One or more roles do not exist")
	}
	return nil
}

// holdsSuperAdmin reports whether removing the user would lower the count
// returned by CountSuperAdmins
func holdsSuperAdmin(user *identity.User) bool {
	return user.IsSuperAdmin && user.Status != identity.UserStatusDisabled
}

func (s *UserService) ensureNotLastSuperAdmin(ctx context.Context, tenantID uuid.UUID) error {
	count, err := s.userRepo.CountSuperAdmins(ctx, tenantID)
	if err != nil {
		return err
	}
	if count <= 1 {
		return shared.NewDomainError("LAST_SUPER_ADMIN", "The last super-admin cannot be removed")
	}
	return nil
}

// revokeTokens forces the user to sign in again so new permissions apply
func (s *UserService) revokeTokens(ctx context.Context, userID uuid.UUID) {
	if s.blacklist == nil {
		return
	}
	ttl := s.jwtService.RefreshTokenExpiration()
	if err := s.blacklist.RevokeUser(ctx, userID.String(), ttl); err != nil {
		s.logger.Warn("Failed to revoke user tokens", zap.String("user_id", userID.String()), zap.Error(err))
	}
}

func (s *UserService) publish(ctx context.Context, user *identity.User) {
	if err := shared.PublishAndClear(ctx, s.events, user); err != nil {
		s.logger.Warn("Failed to publish user events", zap.Error(err))
	}
}

func (s *UserService) record(ctx context.Context, user *identity.User, action activity.Action, before, after any) {
	s.recorder.Record(ctx, user.TenantID, activity.Entry{
		Action:      action,
		EntityType:  activity.EntityUser,
		EntityID:    user.ID,
		EntityLabel: user.Email,
		Before:      before,
		After:       after,
	})
}

func isSelf(ctx context.Context, id uuid.UUID) bool {
	return shared.ActorFromContext(ctx).UserID == id
}
