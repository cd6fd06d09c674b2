package partner

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ledgerly/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

var (
	customerCodeRegex = regexp.MustCompile(`^[A-Z0-9][A-Z0-9_\-]*$`)
	emailRegex        = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
)

// Customer is a party invoices are issued to.
// Balance is the amount the customer owes; it moves only through invoice side effects.
type Customer struct {
	shared.TenantAggregateRoot
	Code      string
	Name      string
	Email     string
	Phone     string
	Address   string
	TaxNumber string
	Notes     string
	Balance   decimal.Decimal
	IsActive  bool
}

// CustomerDetails carries the editable fields of a customer
type CustomerDetails struct {
	Name      string
	Email     string
	Phone     string
	Address   string
	TaxNumber string
	Notes     string
}

// NewCustomer creates an active customer with zero balance
func NewCustomer(tenantID uuid.UUID, code string, details CustomerDetails) (*Customer, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" || len(code) > 50 || !customerCodeRegex.MatchString(code) {
		return nil, shared.NewDomainError("INVALID_CODE", "Customer code must be 1-50 letters, digits, hyphens or underscores")
	}

	customer := &Customer{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Code:                code,
		Balance:             decimal.Zero,
		IsActive:            true,
	}
	if err := customer.applyDetails(details); err != nil {
		return nil, err
	}

	customer.AddDomainEvent(NewCustomerCreatedEvent(customer))

	return customer, nil
}

// Update changes the editable fields
func (c *Customer) Update(details CustomerDetails) error {
	if err := c.applyDetails(details); err != nil {
		return err
	}
	c.UpdatedAt = time.Now()
	return nil
}

func (c *Customer) applyDetails(d CustomerDetails) error {
	name := strings.TrimSpace(d.Name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Customer name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Customer name cannot exceed 200 characters")
	}
	email := strings.ToLower(strings.TrimSpace(d.Email))
	if email != "" && !emailRegex.MatchString(email) {
		return shared.NewDomainError("INVALID_EMAIL", "Invalid email format")
	}
	if len(d.Phone) > 50 {
		return shared.NewDomainError("INVALID_PHONE", "Phone cannot exceed 50 characters")
	}

	c.Name = name
	c.Email = email
	c.Phone = strings.TrimSpace(d.Phone)
	c.Address = strings.TrimSpace(d.Address)
	c.TaxNumber = strings.TrimSpace(d.TaxNumber)
	c.Notes = strings.TrimSpace(d.Notes)
	return nil
}

// IncreaseBalance adds a receivable (invoice confirmed, payment reversed)
func (c *Customer) IncreaseBalance(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return shared.NewDomainError("INVALID_AMOUNT", "Amount must be positive")
	}
	c.Balance = c.Balance.Add(amount)
	c.UpdatedAt = time.Now()
	return nil
}

// DecreaseBalance removes a receivable (payment received, invoice reverted)
func (c *Customer) DecreaseBalance(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return shared.NewDomainError("INVALID_AMOUNT", "Amount must be positive")
	}
	c.Balance = c.Balance.Sub(amount)
	c.UpdatedAt = time.Now()
	return nil
}

// HasBalance reports a non-zero outstanding balance
func (c *Customer) HasBalance() bool {
	return !c.Balance.IsZero()
}

// Activate re-enables the customer
func (c *Customer) Activate() {
	c.IsActive = true
	c.UpdatedAt = time.Now()
}

// Deactivate hides the customer from new invoices
func (c *Customer) Deactivate() {
	c.IsActive = false
	c.UpdatedAt = time.Now()
}
