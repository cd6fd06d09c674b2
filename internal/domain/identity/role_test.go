package identity

import (
	"testing"

	"github.com/google/uuid"
	"github.com/ledgerly/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRole(t *testing.T) {
	tenantID := uuid.New()

	t.Run("uppercases code and emits event", func(t *testing.T) {
		role, err := NewRole(tenantID, "cashier", " Cashier ")
		require.NoError(t, err)
		assert.Equal(t, "CASHIER", role.Code)
		assert.Equal(t, "Cashier", role.Name)
		assert.True(t, role.IsEnabled)
		assert.False(t, role.IsSystem)
		require.Len(t, role.GetDomainEvents(), 1)
		assert.Equal(t, EventTypeRoleCreated, role.GetDomainEvents()[0].EventType())
		assert.Equal(t, role.ID, role.GetDomainEvents()[0].AggregateID())
	})

	t.Run("rejects invalid code", func(t *testing.T) {
		_, err := NewRole(tenantID, "1abc", "Name")
		assert.Error(t, err)
		_, err = NewRole(tenantID, "A", "Name")
		assert.Error(t, err)
	})

	t.Run("rejects empty name", func(t *testing.T) {
		_, err := NewRole(tenantID, "ABC", "  ")
		assert.Error(t, err)
	})
}

func TestRole_Permissions(t *testing.T) {
	role, err := NewRole(uuid.New(), "CLERK", "Clerk")
	require.NoError(t, err)

	require.NoError(t, role.GrantPermission("invoice:view"))
	assert.True(t, role.HasPermission("invoice:view"))

	err = role.GrantPermission("invoice:view")
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "PERMISSION_ALREADY_GRANTED", domainErr.Code)

	require.NoError(t, role.RevokePermission("invoice:view"))
	assert.False(t, role.HasPermission("invoice:view"))
	assert.Error(t, role.RevokePermission("invoice:view"))

	require.NoError(t, role.SetPermissionCodes([]string{"customer:view", "customer:view", "product:*"}))
	assert.Equal(t, []string{"customer:view", "product:*"}, role.PermissionCodes())

	assert.Error(t, role.SetPermissionCodes([]string{"bogus:view"}))
	assert.Equal(t, []string{"customer:view", "product:*"}, role.PermissionCodes(), "failed set keeps previous permissions")
}

func TestRole_EnableDisable(t *testing.T) {
	role, err := NewRole(uuid.New(), "CLERK", "Clerk")
	require.NoError(t, err)

	assert.Error(t, role.Enable())
	require.NoError(t, role.Disable())
	assert.False(t, role.IsEnabled)
	assert.Error(t, role.Disable())
	require.NoError(t, role.Enable())
}

func TestSystemRole_CannotBeDeleted(t *testing.T) {
	role, err := NewSystemRole(uuid.New(), RoleCodeAdmin, "Administrator", AllPermissionCodes())
	require.NoError(t, err)
	assert.True(t, role.IsSystem)
	assert.False(t, role.CanDelete())
	assert.True(t, role.HasPermission("invoice:confirm"))
}

func TestDefaultRoleTemplates_AreValid(t *testing.T) {
	for _, tpl := range DefaultRoleTemplates() {
		_, err := NewSystemRole(uuid.New(), tpl.Code, tpl.Name, tpl.Permissions)
		assert.NoError(t, err, tpl.Code)
	}
}
