package identity

import (
	"github.com/ledgerly/backend/internal/domain/shared"
)

// AggregateTypeAccount is the aggregate type of Account events
const AggregateTypeAccount = "Account"

// Account domain event types
const (
	EventTypeAccountRegistered    = "AccountRegistered"
	EventTypeAccountStatusChanged = "AccountStatusChanged"
)

// AccountRegisteredEvent is published when an account signs up
type AccountRegisteredEvent struct {
	shared.BaseDomainEvent
	Code string `json:"code"`
	Name string `json:"name"`
}

// NewAccountRegisteredEvent creates a new AccountRegisteredEvent
func NewAccountRegisteredEvent(a *Account) *AccountRegisteredEvent {
	return &AccountRegisteredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeAccountRegistered, AggregateTypeAccount, a.ID, a.ID),
		Code:            a.Code,
		Name:            a.Name,
	}
}

// AccountStatusChangedEvent is published on suspend/activate
type AccountStatusChangedEvent struct {
	shared.BaseDomainEvent
	Status AccountStatus `json:"status"`
}

// NewAccountStatusChangedEvent creates a new AccountStatusChangedEvent
func NewAccountStatusChangedEvent(a *Account) *AccountStatusChangedEvent {
	return &AccountStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeAccountStatusChanged, AggregateTypeAccount, a.ID, a.ID),
		Status:          a.Status,
	}
}
