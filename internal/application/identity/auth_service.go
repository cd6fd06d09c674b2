package identity

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	activityapp "github.com/ledgerly/backend/internal/application/activity"
	"github.com/ledgerly/backend/internal/domain/activity"
	"github.com/ledgerly/backend/internal/domain/identity"
	"github.com/ledgerly/backend/internal/domain/shared"
	"github.com/ledgerly/backend/internal/infrastructure/auth"
	"go.uber.org/zap"
)

// AuthServiceConfig contains configuration for the auth service
type AuthServiceConfig struct {
	MaxLoginAttempts int           // failed attempts before the user is locked
	LockDuration     time.Duration // how long a lock lasts
}

// DefaultAuthServiceConfig returns five attempts and a 15 minute lock
func DefaultAuthServiceConfig() AuthServiceConfig {
	return AuthServiceConfig{
		MaxLoginAttempts: 5,
		LockDuration:     15 * time.Minute,
	}
}

var errInvalidCredentials = shared.NewDomainError("INVALID_CREDENTIALS", "Invalid email or password")

// AuthService handles authentication operations
type AuthService struct {
	accountRepo identity.AccountRepository
	userRepo    identity.UserRepository
	roleRepo    identity.RoleRepository
	jwtService  *auth.JWTService
	blacklist   auth.TokenBlacklist
	recorder    *activityapp.Recorder
	config      AuthServiceConfig
	logger      *zap.Logger
}

// NewAuthService creates a new authentication service
func NewAuthService(
	accountRepo identity.AccountRepository,
	userRepo identity.UserRepository,
	roleRepo identity.RoleRepository,
	jwtService *auth.JWTService,
	blacklist auth.TokenBlacklist,
	recorder *activityapp.Recorder,
	config AuthServiceConfig,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		accountRepo: accountRepo,
		userRepo:    userRepo,
		roleRepo:    roleRepo,
		jwtService:  jwtService,
		blacklist:   blacklist,
		recorder:    recorder,
		config:      config,
		logger:      logger,
	}
}

// Login authenticates a user by email and password and issues a token pair
func (s *AuthService) Login(ctx context.Context, req LoginRequest, ip string) (*LoginResponse, error) {
	email := identity.NormalizeEmail(req.Email)
	user, err := s.userRepo.FindByEmail(ctx, email)
	if errors.Is(err, shared.ErrNotFound) {
		s.logger.Warn("Login for unknown email", zap.String("email", email))
		return nil, errInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	account, err := s.accountRepo.FindByID(ctx, user.TenantID)
	if err != nil {
		return nil, err
	}
	if !account.IsActive() {
		s.logger.Warn("Login for suspended account",
			zap.String("email", email),
			zap.String("account_id", account.ID.String()))
		return nil, shared.NewDomainError("ACCOUNT_SUSPENDED", "Account is suspended")
	}

	if !user.CanLogin() {
		if user.IsLocked() {
			return nil, shared.NewDomainError("USER_LOCKED", "User is locked. Please try again later or contact an administrator")
		}
		return nil, shared.NewDomainError("USER_DISABLED", "User has been disabled")
	}

	if !user.VerifyPassword(req.Password) {
		locked := user.RecordLoginFailure(s.config.MaxLoginAttempts, s.config.LockDuration)
		if err := s.userRepo.Save(ctx, user); err != nil {
			s.logger.Error("Failed to save user after login failure", zap.Error(err))
		}
		if locked {
			s.logger.Warn("User locked after too many failed attempts",
				zap.String("email", email),
				zap.Int("attempts", user.FailedAttempts))
			return nil, shared.NewDomainError("USER_LOCKED", "Too many failed login attempts. User has been locked")
		}
		s.logger.Warn("Invalid password attempt",
			zap.String("email", email),
			zap.Int("failed_attempts", user.FailedAttempts))
		return nil, errInvalidCredentials
	}

	perms, err := s.resolvePermissions(ctx, user)
	if err != nil {
		return nil, err
	}
	pair, err := s.jwtService.Issue(auth.SubjectFor(user, perms))
	if err != nil {
		s.logger.Error("Failed to issue tokens", zap.Error(err))
		return nil, err
	}

	user.RecordLoginSuccess(ip)
	if err := s.userRepo.Save(ctx, user); err != nil {
		s.logger.Error("Failed to save user after login", zap.Error(err))
	}

	s.logger.Info("User logged in",
		zap.String("user_id", user.ID.String()),
		zap.String("tenant_id", user.TenantID.String()))

	actor := shared.ActorFromContext(ctx)
	actor.UserID = user.ID
	actor.Name = user.Name()
	if actor.IPAddress == "" {
		actor.IPAddress = ip
	}
	s.recorder.Record(shared.WithActor(ctx, actor), user.TenantID, activity.Entry{
		Action:      activity.ActionLogin,
		EntityType:  activity.EntityUser,
		EntityID:    user.ID,
		EntityLabel: user.Email,
	})

	return &LoginResponse{
		Token: toTokenResponse(pair),
		User:  toCurrentUser(user, account, perms),
	}, nil
}

// Refresh rotates a refresh token. Permissions are resolved again so role
// changes apply without a new login.
func (s *AuthService) Refresh(ctx context.Context, req RefreshRequest) (*LoginResponse, error) {
	claims, err := s.jwtService.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		s.logger.Warn("Refresh token rejected", zap.Error(err))
		return nil, tokenError(err)
	}

	if revoked, err := s.blacklist.IsRevoked(ctx, claims.ID); err != nil {
		return nil, err
	} else if revoked {
		return nil, tokenError(auth.ErrTokenBlacklisted)
	}
	if revoked, err := s.blacklist.IsUserRevoked(ctx, claims.UserID.String(), claims.IssuedAtTime()); err != nil {
		return nil, err
	} else if revoked {
		return nil, tokenError(auth.ErrTokenBlacklisted)
	}

	user, err := s.userRepo.FindByID(ctx, claims.TenantID, claims.UserID)
	if errors.Is(err, shared.ErrNotFound) {
		return nil, shared.NewDomainError("TOKEN_INVALID", "User no longer exists")
	}
	if err != nil {
		return nil, err
	}
	account, err := s.accountRepo.FindByID(ctx, user.TenantID)
	if err != nil {
		return nil, err
	}
	if !account.IsActive() {
		return nil, shared.NewDomainError("ACCOUNT_SUSPENDED", "Account is suspended")
	}
	if !user.CanLogin() {
		return nil, shared.NewDomainError("USER_DISABLED", "User can no longer sign in")
	}

	perms, err := s.resolvePermissions(ctx, user)
	if err != nil {
		return nil, err
	}
	pair, err := s.jwtService.Rotate(claims, auth.SubjectFor(user, perms))
	if err != nil {
		return nil, tokenError(err)
	}

	// the used refresh token cannot be replayed
	if err := s.blacklist.Revoke(ctx, claims.ID, claims.RemainingTTL()); err != nil {
		s.logger.Warn("Failed to revoke rotated refresh token", zap.Error(err))
	}

	return &LoginResponse{
		Token: toTokenResponse(pair),
		User:  toCurrentUser(user, account, perms),
	}, nil
}

// Logout blacklists the access token until it would have expired
func (s *AuthService) Logout(ctx context.Context, claims *auth.Claims) error {
	if err := s.blacklist.Revoke(ctx, claims.ID, claims.RemainingTTL()); err != nil {
		return err
	}
	s.recorder.Record(ctx, claims.TenantID, activity.Entry{
		Action:      activity.ActionLogout,
		EntityType:  activity.EntityUser,
		EntityID:    claims.UserID,
		EntityLabel: claims.Email,
	})
	s.logger.Info("User logged out", zap.String("user_id", claims.UserID.String()))
	return nil
}

// Me returns the authenticated user with freshly resolved permissions
func (s *AuthService) Me(ctx context.Context, tenantID, userID uuid.UUID) (*CurrentUserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, tenantID, userID)
	if err != nil {
		return nil, err
	}
	account, err := s.accountRepo.FindByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	perms, err := s.resolvePermissions(ctx, user)
	if err != nil {
		return nil, err
	}
	resp := toCurrentUser(user, account, perms)
	return &resp, nil
}

// ChangePassword changes the caller's password and revokes its other tokens
func (s *AuthService) ChangePassword(ctx context.Context, tenantID, userID uuid.UUID, req ChangePasswordRequest) error {
	user, err := s.userRepo.FindByID(ctx, tenantID, userID)
	if err != nil {
		return err
	}
	if err := user.ChangePassword(req.OldPassword, req.NewPassword); err != nil {
		return err
	}
	if err := s.userRepo.Save(ctx, user); err != nil {
		return err
	}
	if err := s.blacklist.RevokeUser(ctx, user.ID.String(), s.jwtService.RefreshTokenExpiration()); err != nil {
		s.logger.Warn("Failed to revoke tokens after password change", zap.Error(err))
	}
	s.recorder.Record(ctx, tenantID, activity.Entry{
		Action:      activity.ActionUpdate,
		EntityType:  activity.EntityUser,
		EntityID:    user.ID,
		EntityLabel: user.Email,
		Before:      map[string]any{"password": "********"},
		After:       map[string]any{"password": "changed"},
	})
	return nil
}

func (s *AuthService) resolvePermissions(ctx context.Context, user *identity.User) (identity.PermissionSet, error) {
	if user.IsSuperAdmin || len(user.RoleIDs) == 0 {
		return identity.ResolvePermissions(user, nil), nil
	}
	roles, err := s.roleRepo.FindByIDs(ctx, user.TenantID, user.RoleIDs)
	if err != nil {
		s.logger.Error("Failed to load user roles", zap.Error(err))
		return identity.PermissionSet{}, err
	}
	return identity.ResolvePermissions(user, roles), nil
}

func tokenError(err error) error {
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return shared.NewDomainError("TOKEN_EXPIRED", "Token has expired")
	case errors.Is(err, auth.ErrMaxRefreshExceeded):
		return shared.NewDomainError("TOKEN_MAX_REFRESH", "Maximum token refresh count exceeded. Please log in again")
	case errors.Is(err, auth.ErrTokenBlacklisted):
		return shared.NewDomainError("TOKEN_REVOKED", "Token has been revoked")
	default:
		return shared.NewDomainError("TOKEN_INVALID", "Invalid token")
	}
}

func toTokenResponse(pair *auth.TokenPair) TokenResponse {
	return TokenResponse{
		AccessToken:           pair.AccessToken,
		RefreshToken:          pair.RefreshToken,
		AccessTokenExpiresAt:  pair.AccessTokenExpiresAt,
		RefreshTokenExpiresAt: pair.RefreshTokenExpiresAt,
		TokenType:             pair.TokenType,
	}
}

func toCurrentUser(user *identity.User, account *identity.Account, perms identity.PermissionSet) CurrentUserResponse {
	roleIDs := user.RoleIDs
	if roleIDs == nil {
		roleIDs = []uuid.UUID{}
	}
	codes := perms.Codes()
	if perms.IsAll() {
		codes = identity.AllPermissionCodes()
	}
	return CurrentUserResponse{
		ID:           user.ID,
		TenantID:     user.TenantID,
		AccountName:  account.Name,
		Email:        user.Email,
		DisplayName:  user.Name(),
		IsSuperAdmin: perms.IsAll(),
		RoleIDs:      roleIDs,
		Permissions:  codes,
	}
}
