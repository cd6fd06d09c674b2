package identity

import (
	"github.com/google/uuid"
	"github.com/ledgerly/backend/internal/domain/shared"
)

// AggregateTypeUser is the aggregate type of User events
const AggregateTypeUser = "User"

// User domain event types
const (
	EventTypeUserCreated      = "UserCreated"
	EventTypeUserRolesChanged = "UserRolesChanged"
)

// UserCreatedEvent is published when a user is created
type UserCreatedEvent struct {
	shared.BaseDomainEvent
	Email        string `json:"email"`
	IsSuperAdmin bool   `json:"is_super_admin"`
}

// NewUserCreatedEvent creates a new UserCreatedEvent
func NewUserCreatedEvent(user *User) *UserCreatedEvent {
	return &UserCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeUserCreated, AggregateTypeUser, user.ID, user.TenantID),
		Email:           user.Email,
		IsSuperAdmin:    user.IsSuperAdmin,
	}
}

// UserRolesChangedEvent is published when the user's role assignment changes
type UserRolesChangedEvent struct {
	shared.BaseDomainEvent
	RoleIDs []uuid.UUID `json:"role_ids"`
}

// NewUserRolesChangedEvent creates a new UserRolesChangedEvent
func NewUserRolesChangedEvent(user *User) *UserRolesChangedEvent {
	ids := make([]uuid.UUID, len(user.RoleIDs))
	copy(ids, user.RoleIDs)
	return &UserRolesChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeUserRolesChanged, AggregateTypeUser, user.ID, user.TenantID),
		RoleIDs:         ids,
	}
}
