package identity

import (
	"github.com/ledgerly/backend/internal/domain/shared"
)

// AggregateTypeRole is the aggregate type of Role events
const AggregateTypeRole = "Role"

// Role domain event types
const (
	EventTypeRoleCreated            = "RoleCreated"
	EventTypeRoleUpdated            = "RoleUpdated"
	EventTypeRolePermissionsChanged = "RolePermissionsChanged"
)

// RoleCreatedEvent is published when a new role is created
type RoleCreatedEvent struct {
	shared.BaseDomainEvent
	Code string `json:"code"`
	Name string `json:"name"`
}

// NewRoleCreatedEvent creates a new RoleCreatedEvent
func NewRoleCreatedEvent(role *Role) *RoleCreatedEvent {
	return &RoleCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeRoleCreated, AggregateTypeRole, role.ID, role.TenantID),
		Code:            role.Code,
		Name:            role.Name,
	}
}

// RoleUpdatedEvent is published when a role's name or description changes
type RoleUpdatedEvent struct {
	shared.BaseDomainEvent
	Code string `json:"code"`
	Name string `json:"name"`
}

// NewRoleUpdatedEvent creates a new RoleUpdatedEvent
func NewRoleUpdatedEvent(role *Role) *RoleUpdatedEvent {
	return &RoleUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeRoleUpdated, AggregateTypeRole, role.ID, role.TenantID),
		Code:            role.Code,
		Name:            role.Name,
	}
}

// RolePermissionsChangedEvent is published when the permission list is replaced
type RolePermissionsChangedEvent struct {
	shared.BaseDomainEvent
	Code        string   `json:"code"`
	Permissions []string `json:"permissions"`
}

// NewRolePermissionsChangedEvent creates a new RolePermissionsChangedEvent
func NewRolePermissionsChangedEvent(role *Role) *RolePermissionsChangedEvent {
	return &RolePermissionsChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeRolePermissionsChanged, AggregateTypeRole, role.ID, role.TenantID),
		Code:            role.Code,
		Permissions:     role.PermissionCodes(),
	}
}
