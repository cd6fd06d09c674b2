package identity

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ledgerly/backend/internal/domain/shared"
	"golang.org/x/crypto/bcrypt"
)

// UserStatus represents the status of a user
type UserStatus string

const (
	UserStatusActive   UserStatus = "active"
	UserStatusDisabled UserStatus = "disabled"
	UserStatusLocked   UserStatus = "locked" // too many failed logins
)

// IsValid checks the status value
func (s UserStatus) IsValid() bool {
	switch s {
	case UserStatusActive, UserStatusDisabled, UserStatusLocked:
		return true
	}
	return false
}

const bcryptCost = 12

var (
	emailRegex     = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	hasLetterRegex = regexp.MustCompile(`[a-zA-Z]`)
	hasDigitRegex  = regexp.MustCompile(`[0-9]`)
)

// User is a member of an account
type User struct {
	shared.TenantAggregateRoot
	Email             string
	DisplayName       string
	Phone             string
	PasswordHash      string
	Status            UserStatus
	IsSuperAdmin      bool
	RoleIDs           []uuid.UUID
	LastLoginAt       *time.Time
	LastLoginIP       string
	FailedAttempts    int
	LockedUntil       *time.Time
	PasswordChangedAt *time.Time
}

// NewUser creates an active user
func NewUser(tenantID uuid.UUID, email, displayName, password string) (*User, error) {
	email = NormalizeEmail(email)
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validateDisplayName(displayName); err != nil {
		return nil, err
	}
	if err := ValidatePassword(password); err != nil {
		return nil, err
	}

	passwordHash, err := hashPassword(password)
	if err != nil {
		return nil, shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}

	now := time.Now()
	user := &User{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Email:               email,
		DisplayName:         strings.TrimSpace(displayName),
		PasswordHash:        passwordHash,
		Status:              UserStatusActive,
		RoleIDs:             make([]uuid.UUID, 0),
		PasswordChangedAt:   &now,
	}

	user.AddDomainEvent(NewUserCreatedEvent(user))

	return user, nil
}

// NewSuperAdmin creates the owner user of a freshly registered account
func NewSuperAdmin(tenantID uuid.UUID, email, displayName, password string) (*User, error) {
	user, err := NewUser(tenantID, email, displayName, password)
	if err != nil {
		return nil, err
	}
	user.IsSuperAdmin = true
	return user, nil
}

// UpdateProfile changes display name and phone
func (u *User) UpdateProfile(displayName, phone string) error {
	if err := validateDisplayName(displayName); err != nil {
		return err
	}
	if len(phone) > 50 {
		return shared.NewDomainError("INVALID_PHONE", "Phone cannot exceed 50 characters")
	}

	u.DisplayName = strings.TrimSpace(displayName)
	u.Phone = strings.TrimSpace(phone)
	u.UpdatedAt = time.Now()

	return nil
}

// ChangePassword verifies the current password before setting a new one
func (u *User) ChangePassword(oldPassword, newPassword string) error {
	if !u.VerifyPassword(oldPassword) {
		return shared.NewDomainError("INVALID_PASSWORD", "Current password is incorrect")
	}
	return u.SetPassword(newPassword)
}

// SetPassword sets a new password without checking the old one
func (u *User) SetPassword(newPassword string) error {
	if err := ValidatePassword(newPassword); err != nil {
		return err
	}

	passwordHash, err := hashPassword(newPassword)
	if err != nil {
		return shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}

	now := time.Now()
	u.PasswordHash = passwordHash
	u.PasswordChangedAt = &now
	u.UpdatedAt = now

	return nil
}

// VerifyPassword verifies if the provided password matches
func (u *User) VerifyPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// SetRoles replaces the user's roles
func (u *User) SetRoles(roleIDs []uuid.UUID) error {
	seen := make(map[uuid.UUID]bool, len(roleIDs))
	unique := make([]uuid.UUID, 0, len(roleIDs))
	for _, rid := range roleIDs {
		if rid == uuid.Nil {
			return shared.NewDomainError("INVALID_ROLE_ID", "Role ID cannot be empty")
		}
		if !seen[rid] {
			seen[rid] = true
			unique = append(unique, rid)
		}
	}

	u.RoleIDs = unique
	u.UpdatedAt = time.Now()

	u.AddDomainEvent(NewUserRolesChangedEvent(u))

	return nil
}

// HasRole checks if user has a specific role
func (u *User) HasRole(roleID uuid.UUID) bool {
	for _, rid := range u.RoleIDs {
		if rid == roleID {
			return true
		}
	}
	return false
}

// SetSuperAdmin grants or revokes the super-admin flag
func (u *User) SetSuperAdmin(enabled bool) {
	if u.IsSuperAdmin == enabled {
		return
	}
	u.IsSuperAdmin = enabled
	u.UpdatedAt = time.Now()
}

// Enable re-activates a disabled user
func (u *User) Enable() error {
	if u.Status != UserStatusDisabled {
		return shared.NewDomainError("INVALID_STATE", "Only disabled users can be enabled")
	}
	u.Status = UserStatusActive
	u.FailedAttempts = 0
	u.LockedUntil = nil
	u.UpdatedAt = time.Now()
	return nil
}

// Disable prevents the user from logging in
func (u *User) Disable() error {
	if u.Status == UserStatusDisabled {
		return shared.NewDomainError("ALREADY_DISABLED", "User is already disabled")
	}
	u.Status = UserStatusDisabled
	u.UpdatedAt = time.Now()
	return nil
}

// Lock locks the user for the given duration (0 = until unlocked)
func (u *User) Lock(duration time.Duration) error {
	if u.Status == UserStatusDisabled {
		return shared.NewDomainError("USER_DISABLED", "Cannot lock a disabled user")
	}
	u.Status = UserStatusLocked
	u.LockedUntil = nil
	if duration > 0 {
		until := time.Now().Add(duration)
		u.LockedUntil = &until
	}
	u.UpdatedAt = time.Now()
	return nil
}

// Unlock unlocks the user account
func (u *User) Unlock() error {
	if u.Status != UserStatusLocked {
		return shared.NewDomainError("NOT_LOCKED", "User is not locked")
	}
	u.Status = UserStatusActive
	u.FailedAttempts = 0
	u.LockedUntil = nil
	u.UpdatedAt = time.Now()
	return nil
}

// RecordLoginSuccess records a successful login
func (u *User) RecordLoginSuccess(ip string) {
	now := time.Now()
	u.LastLoginAt = &now
	u.LastLoginIP = ip
	u.FailedAttempts = 0
	if u.Status == UserStatusLocked {
		// lock expired
		u.Status = UserStatusActive
		u.LockedUntil = nil
	}
	u.UpdatedAt = now
}

// RecordLoginFailure counts a failed attempt and reports whether the user got locked
func (u *User) RecordLoginFailure(maxAttempts int, lockDuration time.Duration) bool {
	u.FailedAttempts++
	u.UpdatedAt = time.Now()

	if maxAttempts > 0 && u.FailedAttempts >= maxAttempts {
		_ = u.Lock(lockDuration)
		return true
	}
	return false
}

// IsLocked reports an unexpired lock
func (u *User) IsLocked() bool {
	if u.Status != UserStatusLocked {
		return false
	}
	if u.LockedUntil != nil && time.Now().After(*u.LockedUntil) {
		return false
	}
	return true
}

// CanLogin returns true if user can login
func (u *User) CanLogin() bool {
	if u.Status == UserStatusDisabled {
		return false
	}
	return !u.IsLocked()
}

// Name returns the display name, falling back to the email
func (u *User) Name() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Email
}

// NormalizeEmail lower-cases and trims an email address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidatePassword enforces the password policy
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password must be at least 8 characters")
	}
	if len(password) > 72 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password cannot exceed 72 characters")
	}
	if !hasLetterRegex.MatchString(password) || !hasDigitRegex.MatchString(password) {
		return shared.NewDomainError("INVALID_PASSWORD", "Password must contain at least one letter and one number")
	}
	return nil
}

func validateEmail(email string) error {
	if email == "" {
		return shared.NewDomainError("INVALID_EMAIL", "Email cannot be empty")
	}
	if len(email) > 200 {
		return shared.NewDomainError("INVALID_EMAIL", "Email cannot exceed 200 characters")
	}
	if !emailRegex.MatchString(email) {
		return shared.NewDomainError("INVALID_EMAIL", "Invalid email format")
	}
	return nil
}

func validateDisplayName(name string) error {
	if len(strings.TrimSpace(name)) > 200 {
		return shared.NewDomainError("INVALID_DISPLAY_NAME", "Display name cannot exceed 200 characters")
	}
	return nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
