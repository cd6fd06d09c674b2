package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/ledgerly/backend/internal/domain/identity"
	"github.com/ledgerly/backend/internal/infrastructure/config"
)

// TokenType represents the type of JWT token
type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

var (
	ErrInvalidToken       = errors.New("invalid token")
	ErrExpiredToken       = errors.New("token has expired")
	ErrInvalidTokenType   = errors.New("invalid token type")
	ErrInvalidClaims      = errors.New("invalid token claims")
	ErrTokenNotYetValid   = errors.New("token is not yet valid")
	ErrMaxRefreshExceeded = errors.New("maximum refresh count exceeded")
	ErrTokenBlacklisted   = errors.New("token has been revoked")
)

// Claims are the custom JWT claims. Access tokens carry the resolved
// permissions of the user; refresh tokens only identify the user.
type Claims struct {
	jwt.RegisteredClaims
	TenantID     uuid.UUID `json:"tenant_id"`
	UserID       uuid.UUID `json:"user_id"`
	Email        string    `json:"email,omitempty"`
	DisplayName  string    `json:"display_name,omitempty"`
	IsSuperAdmin bool      `json:"super_admin,omitempty"`
	Permissions  []string  `json:"permissions,omitempty"`
	TokenType    TokenType `json:"token_type"`
	RefreshCount int       `json:"refresh_count,omitempty"`
}

// TokenPair represents an access and refresh token pair
type TokenPair struct {
	AccessToken           string    `json:"access_token"`
	RefreshToken          string    `json:"refresh_token"`
	AccessTokenExpiresAt  time.Time `json:"access_token_expires_at"`
	RefreshTokenExpiresAt time.Time `json:"refresh_token_expires_at"`
	TokenType             string    `json:"token_type"`
}

// Subject describes the user a token pair is issued for
type Subject struct {
	TenantID     uuid.UUID
	UserID       uuid.UUID
	Email        string
	DisplayName  string
	IsSuperAdmin bool
	Permissions  []string
}

// SubjectFor builds the token subject from a user and its resolved permissions
func SubjectFor(user *identity.User, perms identity.PermissionSet) Subject {
	return Subject{
		TenantID:     user.TenantID,
		UserID:       user.ID,
		Email:        user.Email,
		DisplayName:  user.Name(),
		IsSuperAdmin: perms.IsAll(),
		Permissions:  perms.Codes(),
	}
}

// JWTService issues and validates HS256 tokens
type JWTService struct {
	accessSecret      []byte
	refreshSecret     []byte
	accessExpiration  time.Duration
	refreshExpiration time.Duration
	issuer            string
	maxRefreshCount   int
	now               func() time.Time
}

// NewJWTService creates a new JWT service
func NewJWTService(cfg config.JWTConfig) *JWTService {
	refreshSecret := []byte(cfg.RefreshSecret)
	if cfg.RefreshSecret == "" {
		refreshSecret = []byte(cfg.Secret)
	}

	return &JWTService{
		accessSecret:      []byte(cfg.Secret),
		refreshSecret:     refreshSecret,
		accessExpiration:  cfg.AccessTokenExpiration,
		refreshExpiration: cfg.RefreshTokenExpiration,
		issuer:            cfg.Issuer,
		maxRefreshCount:   cfg.MaxRefreshCount,
		now:               time.Now,
	}
}

// Issue generates a fresh token pair for a login
func (s *JWTService) Issue(sub Subject) (*TokenPair, error) {
	return s.issue(sub, 0)
}

// Rotate generates a new pair from a validated refresh token. The subject is
// reloaded by the caller so role changes take effect on refresh.
func (s *JWTService) Rotate(refresh *Claims, sub Subject) (*TokenPair, error) {
	if refresh.TokenType != TokenTypeRefresh {
		return nil, ErrInvalidTokenType
	}
	if s.maxRefreshCount > 0 && refresh.RefreshCount >= s.maxRefreshCount {
		return nil, ErrMaxRefreshExceeded
	}
	if refresh.UserID != sub.UserID || refresh.TenantID != sub.TenantID {
		return nil, ErrInvalidClaims
	}
	return s.issue(sub, refresh.RefreshCount+1)
}

func (s *JWTService) issue(sub Subject, refreshCount int) (*TokenPair, error) {
	now := s.now()
	accessExp := now.Add(s.accessExpiration)
	refreshExp := now.Add(s.refreshExpiration)

	access := &Claims{
		RegisteredClaims: s.registered(sub.UserID, now, accessExp),
		TenantID:         sub.TenantID,
		UserID:           sub.UserID,
		Email:            sub.Email,
		DisplayName:      sub.DisplayName,
		IsSuperAdmin:     sub.IsSuperAdmin,
		Permissions:      sub.Permissions,
		TokenType:        TokenTypeAccess,
	}
	accessToken, err := sign(access, s.accessSecret)
	if err != nil {
		return nil, err
	}

	refresh := &Claims{
		RegisteredClaims: s.registered(sub.UserID, now, refreshExp),
		TenantID:         sub.TenantID,
		UserID:           sub.UserID,
		TokenType:        TokenTypeRefresh,
		RefreshCount:     refreshCount,
	}
	refreshToken, err := sign(refresh, s.refreshSecret)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:           accessToken,
		RefreshToken:          refreshToken,
		AccessTokenExpiresAt:  accessExp,
		RefreshTokenExpiresAt: refreshExp,
		TokenType:             "Bearer",
	}, nil
}

func (s *JWTService) registered(userID uuid.UUID, now, exp time.Time) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Issuer:    s.issuer,
		Subject:   userID.String(),
		Audience:  jwt.ClaimStrings{s.issuer},
		ExpiresAt: jwt.NewNumericDate(exp),
		NotBefore: jwt.NewNumericDate(now),
		IssuedAt:  jwt.NewNumericDate(now),
	}
}

func sign(claims *Claims, secret []byte) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// ValidateAccessToken validates an access token and returns its claims
func (s *JWTService) ValidateAccessToken(token string) (*Claims, error) {
	return s.validate(token, s.accessSecret, TokenTypeAccess)
}

// ValidateRefreshToken validates a refresh token and returns its claims
func (s *JWTService) ValidateRefreshToken(token string) (*Claims, error) {
	return s.validate(token, s.refreshSecret, TokenTypeRefresh)
}

func (s *JWTService) validate(tokenString string, secret []byte, expected TokenType) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return secret, nil
	},
		jwt.WithIssuer(s.issuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpiredToken
		case errors.Is(err, jwt.ErrTokenNotValidYet):
			return nil, ErrTokenNotYetValid
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidClaims
	}
	if claims.TokenType != expected {
		return nil, ErrInvalidTokenType
	}
	if claims.TenantID == uuid.Nil || claims.UserID == uuid.Nil || claims.ID == "" {
		return nil, ErrInvalidClaims
	}
	return claims, nil
}

// PermissionSet rebuilds the effective permissions carried by an access token
func (c *Claims) PermissionSet() identity.PermissionSet {
	if c.IsSuperAdmin {
		return identity.AllPermissions()
	}
	return identity.NewPermissionSet(c.Permissions...)
}

// IssuedAtTime returns the iat claim
func (c *Claims) IssuedAtTime() time.Time {
	if c.IssuedAt != nil {
		return c.IssuedAt.Time
	}
	return time.Time{}
}

// ExpiresAtTime returns the exp claim
func (c *Claims) ExpiresAtTime() time.Time {
	if c.ExpiresAt != nil {
		return c.ExpiresAt.Time
	}
	return time.Time{}
}

// RemainingTTL returns the time until the token expires, never negative
func (c *Claims) RemainingTTL() time.Duration {
	if c.ExpiresAt == nil {
		return 0
	}
	if remaining := time.Until(c.ExpiresAt.Time); remaining > 0 {
		return remaining
	}
	return 0
}

// AccessTokenExpiration returns the configured access token lifetime
func (s *JWTService) AccessTokenExpiration() time.Duration {
	return s.accessExpiration
}

// RefreshTokenExpiration returns the configured refresh token lifetime
func (s *JWTService) RefreshTokenExpiration() time.Duration {
	return s.refreshExpiration
}
