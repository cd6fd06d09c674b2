package identity

import (
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/ledgerly/backend/internal/domain/identity"
)

// =============================================================================
// Account DTOs
// =============================================================================

// RegisterRequest creates an account together with its owner
type RegisterRequest struct {
	AccountName   string `json:"account_name" binding:"required,min=1,max=200"`
	AccountCode   string `json:"account_code" binding:"required,account_code"`
	Email         string `json:"email" binding:"omitempty,email,max=200"`
	Currency      string `json:"currency" binding:"omitempty,len=3"`
	AdminEmail    string `json:"admin_email" binding:"required,email,max=200"`
	AdminPassword string `json:"admin_password" binding:"required,min=8,max=128"`
	AdminName     string `json:"admin_name" binding:"required,min=1,max=100"`
}

// RegisterResponse is returned after a successful registration
type RegisterResponse struct {
	Account AccountResponse `json:"account"`
	Admin   UserResponse    `json:"admin"`
}

// UpdateAccountRequest changes profile, currency and numbering prefixes.
// Nil fields are left unchanged.
type UpdateAccountRequest struct {
	Name          *string `json:"name" binding:"omitempty,min=1,max=200"`
	Email         *string `json:"email" binding:"omitempty,email,max=200"`
	Phone         *string `json:"phone" binding:"omitempty,max=50"`
	Address       *string `json:"address" binding:"omitempty,max=500"`
	TaxNumber     *string `json:"tax_number" binding:"omitempty,max=50"`
	Currency      *string `json:"currency" binding:"omitempty,len=3"`
	InvoicePrefix *string `json:"invoice_prefix" binding:"omitempty,doc_prefix"`
	ExpensePrefix *string `json:"expense_prefix" binding:"omitempty,doc_prefix"`
	RevenuePrefix *string `json:"revenue_prefix" binding:"omitempty,doc_prefix"`
}

// UpdateBrandingRequest changes the printed branding
type UpdateBrandingRequest struct {
	PrimaryColor  string `json:"primary_color" binding:"required,brand_color"`
	InvoiceFooter string `json:"invoice_footer" binding:"max=1000"`
}

// LogoUpload is an uploaded logo file
type LogoUpload struct {
	Body        io.Reader
	Size        int64
	ContentType string
}

// AccountResponse represents an account in API responses
type AccountResponse struct {
	ID        uuid.UUID         `json:"id"`
	Code      string            `json:"code"`
	Name      string            `json:"name"`
	Email     string            `json:"email"`
	Phone     string            `json:"phone"`
	Address   string            `json:"address"`
	TaxNumber string            `json:"tax_number"`
	Currency  string            `json:"currency"`
	Status    string            `json:"status"`
	Numbering NumberingResponse `json:"numbering"`
	Branding  BrandingResponse  `json:"branding"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// NumberingResponse holds the document number prefixes
type NumberingResponse struct {
	InvoicePrefix string `json:"invoice_prefix"`
	ExpensePrefix string `json:"expense_prefix"`
	RevenuePrefix string `json:"revenue_prefix"`
}

// BrandingResponse represents the account branding
type BrandingResponse struct {
	PrimaryColor  string `json:"primary_color"`
	InvoiceFooter string `json:"invoice_footer"`
	HasLogo       bool   `json:"has_logo"`
}

// LogoURLResponse is a time-limited logo download link
type LogoURLResponse struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ToAccountResponse converts a domain account
func ToAccountResponse(a *identity.Account) AccountResponse {
	return AccountResponse{
		ID:        a.ID,
		Code:      a.Code,
		Name:      a.Name,
		Email:     a.Email,
		Phone:     a.Phone,
		Address:   a.Address,
		TaxNumber: a.TaxNumber,
		Currency:  a.Currency.String(),
		Status:    string(a.Status),
		Numbering: NumberingResponse{
			InvoicePrefix: a.Numbering.InvoicePrefix,
			ExpensePrefix: a.Numbering.ExpensePrefix,
			RevenuePrefix: a.Numbering.RevenuePrefix,
		},
		Branding:  ToBrandingResponse(a),
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

// ToBrandingResponse converts the branding part of an account
func ToBrandingResponse(a *identity.Account) BrandingResponse {
	return BrandingResponse{
		PrimaryColor:  a.Branding.PrimaryColor,
		InvoiceFooter: a.Branding.InvoiceFooter,
		HasLogo:       a.HasLogo(),
	}
}

// =============================================================================
// Auth DTOs
// =============================================================================

// LoginRequest holds login credentials
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest carries a refresh token
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// ChangePasswordRequest changes the caller's password
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8,max=128"`
}

// TokenResponse is an issued token pair
type TokenResponse struct {
	AccessToken           string    `json:"access_token"`
	RefreshToken          string    `json:"refresh_token"`
	AccessTokenExpiresAt  time.Time `json:"access_token_expires_at"`
	RefreshTokenExpiresAt time.Time `json:"refresh_token_expires_at"`
	TokenType             string    `json:"token_type"`
}

// LoginResponse is returned by login and refresh
type LoginResponse struct {
	Token TokenResponse       `json:"token"`
	User  CurrentUserResponse `json:"user"`
}

// CurrentUserResponse describes the authenticated user
type CurrentUserResponse struct {
	ID           uuid.UUID   `json:"id"`
	TenantID     uuid.UUID   `json:"tenant_id"`
	AccountName  string      `json:"account_name,omitempty"`
	Email        string      `json:"email"`
	DisplayName  string      `json:"display_name"`
	IsSuperAdmin bool        `json:"is_super_admin"`
	RoleIDs      []uuid.UUID `json:"role_ids"`
	Permissions  []string    `json:"permissions"`
}

// =============================================================================
// User DTOs
// =============================================================================

// CreateUserRequest creates a user in the caller's account
type CreateUserRequest struct {
	Email        string      `json:"email" binding:"required,email,max=200"`
	DisplayName  string      `json:"display_name" binding:"required,min=1,max=100"`
	Password     string      `json:"password" binding:"required,min=8,max=128"`
	Phone        string      `json:"phone" binding:"max=50"`
	RoleIDs      []uuid.UUID `json:"role_ids"`
	IsSuperAdmin bool        `json:"is_super_admin"`
}

// UpdateUserRequest changes a user's profile
type UpdateUserRequest struct {
	DisplayName *string `json:"display_name" binding:"omitempty,min=1,max=100"`
	Phone       *string `json:"phone" binding:"omitempty,max=50"`
}

// AssignRolesRequest replaces a user's roles
type AssignRolesRequest struct {
	RoleIDs []uuid.UUID `json:"role_ids"`
}

// SetSuperAdminRequest grants or revokes super-admin
type SetSuperAdminRequest struct {
	IsSuperAdmin bool `json:"is_super_admin"`
}

// ResetPasswordRequest sets a user's password without the old one
type ResetPasswordRequest struct {
	Password string `json:"password" binding:"required,min=8,max=128"`
}

// UserListFilter holds user query parameters
type UserListFilter struct {
	Page     int        `form:"page" binding:"omitempty,min=1"`
	PageSize int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string     `form:"order_by"`
	OrderDir string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
	Search   string     `form:"search"`
	Status   string     `form:"status" binding:"omitempty,oneof=active disabled locked"`
	RoleID   *uuid.UUID `form:"-"` // query role_id
}

// UserResponse represents a user in API responses
type UserResponse struct {
	ID           uuid.UUID   `json:"id"`
	TenantID     uuid.UUID   `json:"tenant_id"`
	Email        string      `json:"email"`
	DisplayName  string      `json:"display_name"`
	Phone        string      `json:"phone"`
	Status       string      `json:"status"`
	IsSuperAdmin bool        `json:"is_super_admin"`
	RoleIDs      []uuid.UUID `json:"role_ids"`
	LastLoginAt  *time.Time  `json:"last_login_at,omitempty"`
	LockedUntil  *time.Time  `json:"locked_until,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// ToUserResponse converts a domain user
func ToUserResponse(u *identity.User) UserResponse {
	roleIDs := u.RoleIDs
	if roleIDs == nil {
		roleIDs = []uuid.UUID{}
	}
	return UserResponse{
		ID:           u.ID,
		TenantID:     u.TenantID,
		Email:        u.Email,
		DisplayName:  u.DisplayName,
		Phone:        u.Phone,
		Status:       string(u.Status),
		IsSuperAdmin: u.IsSuperAdmin,
		RoleIDs:      roleIDs,
		LastLoginAt:  u.LastLoginAt,
		LockedUntil:  u.LockedUntil,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

// =============================================================================
// Role DTOs
// =============================================================================

// CreateRoleRequest creates a custom role
type CreateRoleRequest struct {
	Code        string   `json:"code" binding:"required,min=1,max=50"`
	Name        string   `json:"name" binding:"required,min=1,max=100"`
	Description string   `json:"description" binding:"max=500"`
	Permissions []string `json:"permissions" binding:"omitempty,dive,permission"`
}

// UpdateRoleRequest changes a role's name and description
type UpdateRoleRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=100"`
	Description string `json:"description" binding:"max=500"`
}

// SetPermissionsRequest replaces a role's permissions
type SetPermissionsRequest struct {
	Permissions []string `json:"permissions" binding:"dive,permission"`
}

// RoleListFilter holds role query parameters
type RoleListFilter struct {
	Page      int    `form:"page" binding:"omitempty,min=1"`
	PageSize  int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy   string `form:"order_by"`
	OrderDir  string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
	Search    string `form:"search"`
	IsEnabled *bool  `form:"is_enabled"`
	IsSystem  *bool  `form:"is_system"`
}

// RoleResponse represents a role in API responses
type RoleResponse struct {
	ID          uuid.UUID `json:"id"`
	Code        string    `json:"code"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	IsSystem    bool      `json:"is_system"`
	IsEnabled   bool      `json:"is_enabled"`
	Permissions []string  `json:"permissions"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ToRoleResponse converts a domain role
func ToRoleResponse(r *identity.Role) RoleResponse {
	return RoleResponse{
		ID:          r.ID,
		Code:        r.Code,
		Name:        r.Name,
		Description: r.Description,
		IsSystem:    r.IsSystem,
		IsEnabled:   r.IsEnabled,
		Permissions: r.PermissionCodes(),
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}
