package partner

import (
	"github.com/ledgerly/backend/internal/domain/shared"
)

// AggregateTypeCustomer is the aggregate type of Customer events
const AggregateTypeCustomer = "Customer"

// EventTypeCustomerCreated is published when a customer is created
const EventTypeCustomerCreated = "CustomerCreated"

// CustomerCreatedEvent is published when a customer is created
type CustomerCreatedEvent struct {
	shared.BaseDomainEvent
	Code string `json:"code"`
	Name string `json:"name"`
}

// NewCustomerCreatedEvent creates a new CustomerCreatedEvent
func NewCustomerCreatedEvent(c *Customer) *CustomerCreatedEvent {
	return &CustomerCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCustomerCreated, AggregateTypeCustomer, c.ID, c.TenantID),
		Code:            c.Code,
		Name:            c.Name,
	}
}
