package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/ledgerly/backend/internal/domain/identity"
	"github.com/ledgerly/backend/internal/domain/shared"
	"github.com/ledgerly/backend/internal/domain/shared/valueobject"
)

// AccountModel is the persistence model for the Account aggregate.
// Accounts are the tenants, so the table has no tenant_id column.
type AccountModel struct {
	AggregateModel
	Code          string                 `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name          string                 `gorm:"type:varchar(200);not null"`
	Email         string                 `gorm:"type:varchar(200);not null"`
	Phone         string                 `gorm:"type:varchar(50)"`
	Address       string                 `gorm:"type:text"`
	TaxNumber     string                 `gorm:"type:varchar(50)"`
	Currency      string                 `gorm:"type:char(3);not null"`
	Status        identity.AccountStatus `gorm:"type:varchar(20);not null;default:'active'"`
	LogoKey       string                 `gorm:"type:varchar(500)"`
	PrimaryColor  string                 `gorm:"type:varchar(7)"`
	InvoiceFooter string                 `gorm:"type:text"`
	InvoicePrefix string                 `gorm:"type:varchar(10);not null"`
	ExpensePrefix string                 `gorm:"type:varchar(10);not null"`
	RevenuePrefix string                 `gorm:"type:varchar(10);not null"`
}

// TableName returns the table name for GORM
func (AccountModel) TableName() string {
	return "accounts"
}

// ToDomain converts the persistence model to a domain Account
func (m *AccountModel) ToDomain() *identity.Account {
	return &identity.Account{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: m.BaseModel.ToDomain(),
			Version:    m.Version,
		},
		Code:      m.Code,
		Name:      m.Name,
		Email:     m.Email,
		Phone:     m.Phone,
		Address:   m.Address,
		TaxNumber: m.TaxNumber,
		Currency:  valueobject.Currency(m.Currency),
		Status:    m.Status,
		Branding: identity.Branding{
			LogoKey:       m.LogoKey,
			PrimaryColor:  m.PrimaryColor,
			InvoiceFooter: m.InvoiceFooter,
		},
		Numbering: identity.NumberingSettings{
			InvoicePrefix: m.InvoicePrefix,
			ExpensePrefix: m.ExpensePrefix,
			RevenuePrefix: m.RevenuePrefix,
		},
	}
}

// FromDomain populates the persistence model from a domain Account
func (m *AccountModel) FromDomain(a *identity.Account) {
	m.FromDomainAggregateRoot(a.BaseAggregateRoot)
	m.Code = a.Code
	m.Name = a.Name
	m.Email = a.Email
	m.Phone = a.Phone
	m.Address = a.Address
	m.TaxNumber = a.TaxNumber
	m.Currency = a.Currency.String()
	m.Status = a.Status
	m.LogoKey = a.Branding.LogoKey
	m.PrimaryColor = a.Branding.PrimaryColor
	m.InvoiceFooter = a.Branding.InvoiceFooter
	m.InvoicePrefix = a.Numbering.InvoicePrefix
	m.ExpensePrefix = a.Numbering.ExpensePrefix
	m.RevenuePrefix = a.Numbering.RevenuePrefix
}

// AccountModelFromDomain creates a new persistence model from a domain Account
func AccountModelFromDomain(a *identity.Account) *AccountModel {
	m := &AccountModel{}
	m.FromDomain(a)
	return m
}

// UserModel is the persistence model for the User aggregate
type UserModel struct {
	TenantAggregateModel
	Email             string              `gorm:"type:varchar(200);not null;uniqueIndex"`
	DisplayName       string              `gorm:"type:varchar(100);not null"`
	Phone             string              `gorm:"type:varchar(50)"`
	PasswordHash      string              `gorm:"type:varchar(255);not null"`
	Status            identity.UserStatus `gorm:"type:varchar(20);not null;default:'active'"`
	IsSuperAdmin      bool                `gorm:"not null;default:false"`
	LastLoginAt       *time.Time
	LastLoginIP       string `gorm:"type:varchar(45)"`
	FailedAttempts    int    `gorm:"not null;default:0"`
	LockedUntil       *time.Time
	PasswordChangedAt *time.Time
}

// TableName returns the table name for GORM
func (UserModel) TableName() string {
	return "users"
}

// ToDomain converts the persistence model to a domain User.
// Role IDs are loaded separately by the repository.
func (m *UserModel) ToDomain() *identity.User {
	return &identity.User{
		TenantAggregateRoot: m.ToDomainTenantAggregateRoot(),
		Email:               m.Email,
		DisplayName:         m.DisplayName,
		Phone:               m.Phone,
		PasswordHash:        m.PasswordHash,
		Status:              m.Status,
		IsSuperAdmin:        m.IsSuperAdmin,
		RoleIDs:             make([]uuid.UUID, 0),
		LastLoginAt:         m.LastLoginAt,
		LastLoginIP:         m.LastLoginIP,
		FailedAttempts:      m.FailedAttempts,
		LockedUntil:         m.LockedUntil,
		PasswordChangedAt:   m.PasswordChangedAt,
	}
}

// FromDomain populates the persistence model from a domain User
func (m *UserModel) FromDomain(u *identity.User) {
	m.FromDomainTenantAggregateRoot(u.TenantAggregateRoot)
	m.Email = u.Email
	m.DisplayName = u.DisplayName
	m.Phone = u.Phone
	m.PasswordHash = u.PasswordHash
	m.Status = u.Status
	m.IsSuperAdmin = u.IsSuperAdmin
	m.LastLoginAt = u.LastLoginAt
	m.LastLoginIP = u.LastLoginIP
	m.FailedAttempts = u.FailedAttempts
	m.LockedUntil = u.LockedUntil
	m.PasswordChangedAt = u.PasswordChangedAt
}

// UserModelFromDomain creates a new persistence model from a domain User
func UserModelFromDomain(u *identity.User) *UserModel {
	m := &UserModel{}
	m.FromDomain(u)
	return m
}

// UserRoleModel links users to roles
type UserRoleModel struct {
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	RoleID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	TenantID  uuid.UUID `gorm:"type:uuid;not null;index"`
	CreatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (UserRoleModel) TableName() string {
	return "user_roles"
}

// UserRoleModels builds the link rows of a user
func UserRoleModels(u *identity.User) []UserRoleModel {
	now := time.Now()
	rows := make([]UserRoleModel, len(u.RoleIDs))
	for i, roleID := range u.RoleIDs {
		rows[i] = UserRoleModel{UserID: u.ID, RoleID: roleID, TenantID: u.TenantID, CreatedAt: now}
	}
	return rows
}

// RoleModel is the persistence model for the Role aggregate
type RoleModel struct {
	TenantAggregateModel
	Code        string `gorm:"type:varchar(50);not null"`
	Name        string `gorm:"type:varchar(100);not null"`
	Description string `gorm:"type:text"`
	IsSystem    bool   `gorm:"not null;default:false"`
	IsEnabled   bool   `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (RoleModel) TableName() string {
	return "roles"
}

// ToDomain converts the persistence model to a domain Role.
// Permissions are loaded separately by the repository.
func (m *RoleModel) ToDomain() *identity.Role {
	return &identity.Role{
		TenantAggregateRoot: m.ToDomainTenantAggregateRoot(),
		Code:                m.Code,
		Name:                m.Name,
		Description:         m.Description,
		IsSystem:            m.IsSystem,
		IsEnabled:           m.IsEnabled,
		Permissions:         make([]identity.Permission, 0),
	}
}

// FromDomain populates the persistence model from a domain Role
func (m *RoleModel) FromDomain(r *identity.Role) {
	m.FromDomainTenantAggregateRoot(r.TenantAggregateRoot)
	m.Code = r.Code
	m.Name = r.Name
	m.Description = r.Description
	m.IsSystem = r.IsSystem
	m.IsEnabled = r.IsEnabled
}

// RoleModelFromDomain creates a new persistence model from a domain Role
func RoleModelFromDomain(r *identity.Role) *RoleModel {
	m := &RoleModel{}
	m.FromDomain(r)
	return m
}

// RolePermissionModel stores one granted permission code of a role
type RolePermissionModel struct {
	RoleID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	Code      string    `gorm:"type:varchar(100);primaryKey"`
	TenantID  uuid.UUID `gorm:"type:uuid;not null;index"`
	Module    string    `gorm:"type:varchar(50);not null"`
	Action    string    `gorm:"type:varchar(50);not null"`
	CreatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (RolePermissionModel) TableName() string {
	return "role_permissions"
}

// ToDomain converts the row to a domain Permission
func (m *RolePermissionModel) ToDomain() identity.Permission {
	return identity.Permission{
		Code:   m.Code,
		Module: m.Module,
		Action: m.Action,
	}
}

// RolePermissionModels builds the permission rows of a role
func RolePermissionModels(r *identity.Role) []RolePermissionModel {
	now := time.Now()
	rows := make([]RolePermissionModel, len(r.Permissions))
	for i, p := range r.Permissions {
		rows[i] = RolePermissionModel{
			RoleID:    r.ID,
			Code:      p.Code,
			TenantID:  r.TenantID,
			Module:    p.Module,
			Action:    p.Action,
			CreatedAt: now,
		}
	}
	return rows
}
