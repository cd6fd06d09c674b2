package identity

import (
	"regexp"
	"strings"
	"time"

	"github.com/ledgerly/backend/internal/domain/shared"
	"github.com/ledgerly/backend/internal/domain/shared/valueobject"
)

// AccountStatus represents the status of an account
type AccountStatus string

const (
	AccountStatusActive    AccountStatus = "active"
	AccountStatusSuspended AccountStatus = "suspended"
)

var (
	accountCodeRegex = regexp.MustCompile(`^[a-z0-9][a-z0-9-]{2,49}$`)
	colorRegex       = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)
	prefixRegex      = regexp.MustCompile(`^[A-Z][A-Z0-9]{0,9}$`)
)

// IsValidAccountCode reports whether code, once lower-cased, is a slug of
// 3-50 letters, digits or hyphens
func IsValidAccountCode(code string) bool {
	return accountCodeRegex.MatchString(strings.ToLower(strings.TrimSpace(code)))
}

// IsValidDocumentPrefix reports whether p, once upper-cased, can prefix
// document numbers
func IsValidDocumentPrefix(p string) bool {
	return prefixRegex.MatchString(strings.ToUpper(strings.TrimSpace(p)))
}

// IsValidBrandColor reports whether c is a #rrggbb color
func IsValidBrandColor(c string) bool { return colorRegex.MatchString(c) }

// Default document number prefixes
const (
	DefaultInvoicePrefix = "INV"
	DefaultExpensePrefix = "EXP"
	DefaultRevenuePrefix = "REV"
)

// Branding holds the visual identity printed on documents
type Branding struct {
	LogoKey       string
	PrimaryColor  string
	InvoiceFooter string
}

// NumberingSettings holds the document number prefixes of an account
type NumberingSettings struct {
	InvoicePrefix string
	ExpensePrefix string
	RevenuePrefix string
}

// DefaultNumberingSettings returns INV/EXP/REV
func DefaultNumberingSettings() NumberingSettings {
	return NumberingSettings{
		InvoicePrefix: DefaultInvoicePrefix,
		ExpensePrefix: DefaultExpensePrefix,
		RevenuePrefix: DefaultRevenuePrefix,
	}
}

// Account is a subscribing business. Its ID is the tenant id of everything it owns.
type Account struct {
	shared.BaseAggregateRoot
	Code      string
	Name      string
	Email     string
	Phone     string
	Address   string
	TaxNumber string
	Currency  valueobject.Currency
	Status    AccountStatus
	Branding  Branding
	Numbering NumberingSettings
}

// AccountProfile carries the editable profile fields
type AccountProfile struct {
	Name      string
	Email     string
	Phone     string
	Address   string
	TaxNumber string
}

// NewAccount creates an active account
func NewAccount(code, name, email string, currency valueobject.Currency) (*Account, error) {
	code = strings.ToLower(strings.TrimSpace(code))
	if !accountCodeRegex.MatchString(code) {
		return nil, shared.NewDomainError("INVALID_ACCOUNT_CODE", "Account code must be 3-50 lowercase letters, digits or hyphens")
	}
	if currency == "" {
		currency = valueobject.DefaultCurrency
	}

	account := &Account{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              code,
		Status:            AccountStatusActive,
		Currency:          currency,
		Numbering:         DefaultNumberingSettings(),
		Branding:          Branding{PrimaryColor: "#1f6feb"},
	}
	if err := account.UpdateProfile(AccountProfile{Name: name, Email: email}); err != nil {
		return nil, err
	}
	account.Version = 1

	account.AddDomainEvent(NewAccountRegisteredEvent(account))

	return account, nil
}

// UpdateProfile changes the contact profile
func (a *Account) UpdateProfile(p AccountProfile) error {
	name := strings.TrimSpace(p.Name)
	if name == "" {
		return shared.NewDomainError("INVALID_ACCOUNT_NAME", "Account name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_ACCOUNT_NAME", "Account name cannot exceed 200 characters")
	}
	email := NormalizeEmail(p.Email)
	if email != "" {
		if err := validateEmail(email); err != nil {
			return err
		}
	}

	a.Name = name
	a.Email = email
	a.Phone = strings.TrimSpace(p.Phone)
	a.Address = strings.TrimSpace(p.Address)
	a.TaxNumber = strings.TrimSpace(p.TaxNumber)
	a.UpdatedAt = time.Now()

	return nil
}

// SetCurrency changes the default currency for new documents
func (a *Account) SetCurrency(code string) error {
	currency, err := valueobject.ParseCurrency(code)
	if err != nil {
		return shared.NewDomainError("INVALID_CURRENCY", err.Error())
	}
	a.Currency = currency
	a.UpdatedAt = time.Now()
	return nil
}

// SetNumbering changes document number prefixes; empty values keep the current prefix
func (a *Account) SetNumbering(settings NumberingSettings) error {
	next := a.Numbering
	for _, field := range []struct {
		value  string
		target *string
	}{
		{settings.InvoicePrefix, &next.InvoicePrefix},
		{settings.ExpensePrefix, &next.ExpensePrefix},
		{settings.RevenuePrefix, &next.RevenuePrefix},
	} {
		v := strings.ToUpper(strings.TrimSpace(field.value))
		if v == "" {
			continue
		}
		if !prefixRegex.MatchString(v) {
			return shared.NewDomainError("INVALID_PREFIX", "Number prefix must be 1-10 uppercase letters or digits starting with a letter")
		}
		*field.target = v
	}

	a.Numbering = next
	a.UpdatedAt = time.Now()
	return nil
}

// UpdateBranding changes the primary color and the invoice footer
func (a *Account) UpdateBranding(primaryColor, invoiceFooter string) error {
	primaryColor = strings.TrimSpace(primaryColor)
	if primaryColor != "" && !colorRegex.MatchString(primaryColor) {
		return shared.NewDomainError("INVALID_COLOR", "Primary color must be in #RRGGBB format")
	}
	if len(invoiceFooter) > 1000 {
		return shared.NewDomainError("INVALID_FOOTER", "Invoice footer cannot exceed 1000 characters")
	}

	a.Branding.PrimaryColor = primaryColor
	a.Branding.InvoiceFooter = strings.TrimSpace(invoiceFooter)
	a.UpdatedAt = time.Now()
	return nil
}

// SetLogo records the storage key of the uploaded logo and returns the replaced key
func (a *Account) SetLogo(key string) string {
	previous := a.Branding.LogoKey
	a.Branding.LogoKey = key
	a.UpdatedAt = time.Now()
	return previous
}

// HasLogo reports whether a logo is stored
func (a *Account) HasLogo() bool {
	return a.Branding.LogoKey != ""
}

// Suspend blocks logins for every user of the account
func (a *Account) Suspend() error {
	if a.Status == AccountStatusSuspended {
		return shared.NewDomainError("ALREADY_SUSPENDED", "Account is already suspended")
	}
	a.Status = AccountStatusSuspended
	a.UpdatedAt = time.Now()
	a.AddDomainEvent(NewAccountStatusChangedEvent(a))
	return nil
}

// Activate lifts a suspension
func (a *Account) Activate() error {
	if a.Status == AccountStatusActive {
		return shared.NewDomainError("ALREADY_ACTIVE", "Account is already active")
	}
	a.Status = AccountStatusActive
	a.UpdatedAt = time.Now()
	a.AddDomainEvent(NewAccountStatusChangedEvent(a))
	return nil
}

// IsActive returns true if the account is active
func (a *Account) IsActive() bool {
	return a.Status == AccountStatusActive
}
