package identity

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/ledgerly/backend/internal/domain/identity"
	"github.com/ledgerly/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRoleService_Create(t *testing.T) {
	repo := new(MockRoleRepository)
	published := &capturePublisher{}
	svc := NewRoleService(repo, published, nil, zap.NewNop())
	ctx := context.Background()
	tenantID := uuid.New()

	repo.On("ExistsByCode", ctx, tenantID, "AUDITOR").Return(false, nil)
	repo.On("Create", ctx, mock.AnythingOfType("*identity.Role")).Return(nil)

	resp, err := svc.Create(ctx, tenantID, CreateRoleRequest{
		Code:        "auditor",
		Name:        "Auditor",
		Description: "Read-only access",
		Permissions: []string{"invoice:view", "invoice:view", "activity:view"},
	})
	require.NoError(t, err)
	assert.Equal(t, "AUDITOR", resp.Code)
	assert.Equal(t, "Read-only access", resp.Description)
	assert.Equal(t, []string{"invoice:view", "activity:view"}, resp.Permissions)
	assert.True(t, resp.IsEnabled)
	assert.False(t, resp.IsSystem)
	assert.Contains(t, published.types(), identity.EventTypeRoleCreated)
}

func TestRoleService_Create_Validation(t *testing.T) {
	repo := new(MockRoleRepository)
	svc := NewRoleService(repo, nil, nil, zap.NewNop())
	ctx := context.Background()
	tenantID := uuid.New()

	repo.On("ExistsByCode", ctx, tenantID, "ADMIN").Return(true, nil)
	_, err := svc.Create(ctx, tenantID, CreateRoleRequest{Code: "admin", Name: "Admin"})
	assert.ErrorIs(t, err, shared.ErrAlreadyExists)

	repo.On("ExistsByCode", ctx, tenantID, "CLERK").Return(false, nil)
	_, err = svc.Create(ctx, tenantID, CreateRoleRequest{Code: "clerk", Name: "Clerk", Permissions: []string{"invoice:fly"}})
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_PERMISSION", domainErr.Code)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRoleService_Delete(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	system, err := identity.NewSystemRole(tenantID, "VIEWER", "Viewer", []string{"invoice:view"})
	require.NoError(t, err)
	custom, err := identity.NewRole(tenantID, "CLERK", "Clerk")
	require.NoError(t, err)

	t.Run("system role", func(t *testing.T) {
		repo := new(MockRoleRepository)
		svc := NewRoleService(repo, nil, nil, zap.NewNop())
		repo.On("FindByID", ctx, tenantID, system.ID).Return(system, nil)

		err := svc.Delete(ctx, tenantID, system.ID)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "CANNOT_DELETE_SYSTEM_ROLE", domainErr.Code)
	})

	t.Run("assigned role", func(t *testing.T) {
		repo := new(MockRoleRepository)
		svc := NewRoleService(repo, nil, nil, zap.NewNop())
		repo.On("FindByID", ctx, tenantID, custom.ID).Return(custom, nil)
		repo.On("CountUsersWithRole", ctx, tenantID, custom.ID).Return(int64(2), nil)

		err := svc.Delete(ctx, tenantID, custom.ID)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "ROLE_IN_USE", domainErr.Code)
		repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unused custom role", func(t *testing.T) {
		repo := new(MockRoleRepository)
		svc := NewRoleService(repo, nil, nil, zap.NewNop())
		repo.On("FindByID", ctx, tenantID, custom.ID).Return(custom, nil)
		repo.On("CountUsersWithRole", ctx, tenantID, custom.ID).Return(int64(0), nil)
		repo.On("Delete", ctx, tenantID, custom.ID).Return(nil)

		require.NoError(t, svc.Delete(ctx, tenantID, custom.ID))
		repo.AssertExpectations(t)
	})
}

func TestRoleService_EnableDisable(t *testing.T) {
	repo := new(MockRoleRepository)
	svc := NewRoleService(repo, nil, nil, zap.NewNop())
	ctx := context.Background()
	tenantID := uuid.New()
	role, err := identity.NewRole(tenantID, "CLERK", "Clerk")
	require.NoError(t, err)
	repo.On("FindByID", ctx, tenantID, role.ID).Return(role, nil)
	repo.On("Save", ctx, role).Return(nil)

	resp, err := svc.Disable(ctx, tenantID, role.ID)
	require.NoError(t, err)
	assert.False(t, resp.IsEnabled)

	_, err = svc.Disable(ctx, tenantID, role.ID)
	assert.Error(t, err)

	resp, err = svc.Enable(ctx, tenantID, role.ID)
	require.NoError(t, err)
	assert.True(t, resp.IsEnabled)
}

func TestRoleService_SetPermissions(t *testing.T) {
	repo := new(MockRoleRepository)
	svc := NewRoleService(repo, nil, nil, zap.NewNop())
	ctx := context.Background()
	tenantID := uuid.New()
	role, err := identity.NewRole(tenantID, "CLERK", "Clerk")
	require.NoError(t, err)
	repo.On("FindByID", ctx, tenantID, role.ID).Return(role, nil)
	repo.On("Save", ctx, role).Return(nil)

	resp, err := svc.SetPermissions(ctx, tenantID, role.ID, SetPermissionsRequest{
		Permissions: []string{"expense:*", "revenue:view"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"expense:*", "revenue:view"}, resp.Permissions)
}

func TestRoleService_Permissions(t *testing.T) {
	svc := NewRoleService(new(MockRoleRepository), nil, nil, zap.NewNop())
	catalog := svc.Permissions()
	require.NotEmpty(t, catalog)

	modules := make([]string, len(catalog))
	for i, m := range catalog {
		modules[i] = m.Module
	}
	assert.Contains(t, modules, identity.ModuleInvoice)
	assert.Contains(t, modules, identity.ModuleActivity)
}
