package identity

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/ledgerly/backend/internal/domain/identity"
	"github.com/ledgerly/backend/internal/domain/shared"
	"github.com/ledgerly/backend/internal/infrastructure/auth"
	"github.com/ledgerly/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type userFixture struct {
	users     *MockUserRepository
	roles     *MockRoleRepository
	blacklist *auth.InMemoryTokenBlacklist
	svc       *UserService
	tenantID  uuid.UUID
}

func newUserFixture() *userFixture {
	f := &userFixture{
		users:     new(MockUserRepository),
		roles:     new(MockRoleRepository),
		blacklist: auth.NewInMemoryTokenBlacklist(),
		tenantID:  uuid.New(),
	}
	jwt := auth.NewJWTService(config.JWTConfig{
		Secret:                 "test-secret-that-is-long-enough-1234",
		AccessTokenExpiration:  time.Minute,
		RefreshTokenExpiration: time.Hour,
	})
	f.svc = NewUserService(f.users, f.roles, f.blacklist, jwt, nil, nil, zap.NewNop())
	return f
}

func (f *userFixture) user(t *testing.T, superAdmin bool) *identity.User {
	t.Helper()
	u, err := identity.NewUser(f.tenantID, uuid.NewString()[:8]+"@acme.test", "Member", testPassword)
	require.NoError(t, err)
	u.SetSuperAdmin(superAdmin)
	f.users.On("FindByID", mock.Anything, f.tenantID, u.ID).Return(u, nil)
	return u
}

func asActor(userID uuid.UUID) context.Context {
	return shared.WithActor(context.Background(), shared.Actor{UserID: userID, Name: "actor"})
}

func domainCode(t *testing.T, err error) string {
	t.Helper()
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	return domainErr.Code
}

func TestUserService_Create(t *testing.T) {
	f := newUserFixture()
	actorID := uuid.New()
	ctx := asActor(actorID)
	roleID := uuid.New()
	role := &identity.Role{}
	role.ID = roleID

	f.users.On("ExistsByEmail", ctx, "new@acme.test").Return(false, nil)
	f.roles.On("FindByIDs", ctx, f.tenantID, []uuid.UUID{roleID, roleID}).Return([]*identity.Role{role}, nil)
	f.users.On("Create", ctx, mock.MatchedBy(func(u *identity.User) bool {
		return u.CreatedBy != nil && *u.CreatedBy == actorID
	})).Return(nil)

	resp, err := f.svc.Create(ctx, f.tenantID, CreateUserRequest{
		Email:       "New@Acme.test",
		DisplayName: "New Member",
		Password:    "abcdefg1",
		Phone:       "+1 555",
		RoleIDs:     []uuid.UUID{roleID, roleID},
	})
	require.NoError(t, err)
	assert.Equal(t, "new@acme.test", resp.Email)
	assert.Equal(t, "+1 555", resp.Phone)
	assert.Equal(t, []uuid.UUID{roleID}, resp.RoleIDs)
}

func TestUserService_Create_UnknownRole(t *testing.T) {
	f := newUserFixture()
	ctx := context.Background()
	f.users.On("ExistsByEmail", ctx, "new@acme.test").Return(false, nil)
	f.roles.On("FindByIDs", ctx, f.tenantID, mock.Anything).Return([]*identity.Role{}, nil)

	_, err := f.svc.Create(ctx, f.tenantID, CreateUserRequest{
		Email: "new@acme.test", DisplayName: "New", Password: "abcdefg1",
		RoleIDs: []uuid.UUID{uuid.New()},
	})
	assert.Equal(t, "INVALID_ROLE_ID", domainCode(t, err))
}

func TestUserService_Delete_Self(t *testing.T) {
	f := newUserFixture()
	u := f.user(t, false)
	err := f.svc.Delete(asActor(u.ID), f.tenantID, u.ID)
	assert.Equal(t, "CANNOT_DELETE_SELF", domainCode(t, err))
	f.users.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything)
}

func TestUserService_Delete_LastSuperAdmin(t *testing.T) {
	f := newUserFixture()
	admin := f.user(t, true)
	ctx := asActor(uuid.New())
	f.users.On("CountSuperAdmins", ctx, f.tenantID).Return(int64(1), nil)

	err := f.svc.Delete(ctx, f.tenantID, admin.ID)
	assert.Equal(t, "LAST_SUPER_ADMIN", domainCode(t, err))
}

func TestUserService_DisabledSuperAdminIsNotCounted(t *testing.T) {
	t.Run("delete", func(t *testing.T) {
		f := newUserFixture()
		admin := f.user(t, true)
		require.NoError(t, admin.Disable())
		ctx := asActor(uuid.New())
		f.users.On("Delete", ctx, f.tenantID, admin.ID).Return(nil)

		require.NoError(t, f.svc.Delete(ctx, f.tenantID, admin.ID))
		f.users.AssertNotCalled(t, "CountSuperAdmins", mock.Anything, mock.Anything)
	})

	t.Run("demote", func(t *testing.T) {
		f := newUserFixture()
		admin := f.user(t, true)
		require.NoError(t, admin.Disable())
		ctx := asActor(uuid.New())
		f.users.On("Save", ctx, admin).Return(nil)

		resp, err := f.svc.SetSuperAdmin(ctx, f.tenantID, admin.ID, SetSuperAdminRequest{IsSuperAdmin: false})
		require.NoError(t, err)
		assert.False(t, resp.IsSuperAdmin)
		f.users.AssertNotCalled(t, "CountSuperAdmins", mock.Anything, mock.Anything)
	})

	t.Run("disable again", func(t *testing.T) {
		f := newUserFixture()
		admin := f.user(t, true)
		require.NoError(t, admin.Disable())

		_, err := f.svc.Disable(asActor(uuid.New()), f.tenantID, admin.ID)
		assert.Equal(t, "ALREADY_DISABLED", domainCode(t, err))
		f.users.AssertNotCalled(t, "CountSuperAdmins", mock.Anything, mock.Anything)
	})
}

func TestUserService_Delete_RevokesTokens(t *testing.T) {
	f := newUserFixture()
	member := f.user(t, false)
	ctx := asActor(uuid.New())
	f.users.On("Delete", ctx, f.tenantID, member.ID).Return(nil)

	require.NoError(t, f.svc.Delete(ctx, f.tenantID, member.ID))
	revoked, err := f.blacklist.IsUserRevoked(ctx, member.ID.String(), time.Now().Add(-time.Second))
	require.NoError(t, err)
	assert.True(t, revoked)
}

func TestUserService_SetSuperAdmin(t *testing.T) {
	t.Run("cannot demote self", func(t *testing.T) {
		f := newUserFixture()
		admin := f.user(t, true)
		_, err := f.svc.SetSuperAdmin(asActor(admin.ID), f.tenantID, admin.ID, SetSuperAdminRequest{IsSuperAdmin: false})
		assert.Equal(t, "CANNOT_DEMOTE_SELF", domainCode(t, err))
	})

	t.Run("cannot demote last", func(t *testing.T) {
		f := newUserFixture()
		admin := f.user(t, true)
		ctx := asActor(uuid.New())
		f.users.On("CountSuperAdmins", ctx, f.tenantID).Return(int64(1), nil)

		_, err := f.svc.SetSuperAdmin(ctx, f.tenantID, admin.ID, SetSuperAdminRequest{IsSuperAdmin: false})
		assert.Equal(t, "LAST_SUPER_ADMIN", domainCode(t, err))
		assert.True(t, admin.IsSuperAdmin)
	})

	t.Run("demotes when another remains", func(t *testing.T) {
		f := newUserFixture()
		admin := f.user(t, true)
		ctx := asActor(uuid.New())
		f.users.On("CountSuperAdmins", ctx, f.tenantID).Return(int64(2), nil)
		f.users.On("Save", ctx, admin).Return(nil)

		resp, err := f.svc.SetSuperAdmin(ctx, f.tenantID, admin.ID, SetSuperAdminRequest{IsSuperAdmin: false})
		require.NoError(t, err)
		assert.False(t, resp.IsSuperAdmin)
	})
}

func TestUserService_DisableEnableUnlock(t *testing.T) {
	f := newUserFixture()
	member := f.user(t, false)
	ctx := asActor(uuid.New())
	f.users.On("Save", ctx, member).Return(nil)

	_, err := f.svc.Disable(asActor(member.ID), f.tenantID, member.ID)
	assert.Equal(t, "CANNOT_DISABLE_SELF", domainCode(t, err))

	resp, err := f.svc.Disable(ctx, f.tenantID, member.ID)
	require.NoError(t, err)
	assert.Equal(t, "disabled", resp.Status)

	resp, err = f.svc.Enable(ctx, f.tenantID, member.ID)
	require.NoError(t, err)
	assert.Equal(t, "active", resp.Status)

	require.NoError(t, member.Lock(time.Hour))
	resp, err = f.svc.Unlock(ctx, f.tenantID, member.ID)
	require.NoError(t, err)
	assert.Equal(t, "active", resp.Status)
	assert.Nil(t, resp.LockedUntil)
}

func TestUserService_ResetPassword(t *testing.T) {
	f := newUserFixture()
	member := f.user(t, false)
	ctx := asActor(uuid.New())
	f.users.On("Save", ctx, member).Return(nil)

	err := f.svc.ResetPassword(ctx, f.tenantID, member.ID, ResetPasswordRequest{Password: "short"})
	assert.Error(t, err)

	require.NoError(t, f.svc.ResetPassword(ctx, f.tenantID, member.ID, ResetPasswordRequest{Password: "brandnew1"}))
	assert.True(t, member.VerifyPassword("brandnew1"))
}

func TestUserService_List_InvalidStatus(t *testing.T) {
	f := newUserFixture()
	_, _, err := f.svc.List(context.Background(), f.tenantID, UserListFilter{Status: "sleeping"})
	assert.Equal(t, "INVALID_STATUS", domainCode(t, err))
}
