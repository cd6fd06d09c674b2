package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/ledgerly/backend/internal/domain/shared"
	"github.com/ledgerly/backend/internal/infrastructure/auth"
	"github.com/ledgerly/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// JWT context keys
const (
	JWTClaimsKey  = "jwt_claims"
	AuthHeaderKey = "Authorization"
	BearerPrefix  = "Bearer "
)

// JWTMiddlewareConfig holds configuration for JWT middleware
type JWTMiddlewareConfig struct {
	JWTService *auth.JWTService
	// TokenBlacklist is optional; without it logout only expires naturally
	TokenBlacklist auth.TokenBlacklist
	SkipPaths      []string
	// SkipPathPrefixes are path prefixes that don't require authentication
	SkipPathPrefixes []string
	Logger           *zap.Logger
}

// DefaultJWTConfig returns default JWT middleware configuration
func DefaultJWTConfig(jwtService *auth.JWTService) JWTMiddlewareConfig {
	return JWTMiddlewareConfig{
		JWTService: jwtService,
		SkipPaths: []string{
			"/health",
			"/api/v1/health",
			"/api/v1/auth/register",
			"/api/v1/auth/login",
			"/api/v1/auth/refresh",
		},
		SkipPathPrefixes: []string{
			"/swagger",
			"/files/",
		},
	}
}

// JWTAuthMiddleware creates JWT authentication middleware
func JWTAuthMiddleware(jwtService *auth.JWTService) gin.HandlerFunc {
	return JWTAuthMiddlewareWithConfig(DefaultJWTConfig(jwtService))
}

// JWTAuthMiddlewareWithConfig validates the bearer token, checks the
// blacklist and stores the claims and the acting user for downstream code
func JWTAuthMiddlewareWithConfig(cfg JWTMiddlewareConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		for _, skipPath := range cfg.SkipPaths {
			if path == skipPath {
				c.Next()
				return
			}
		}
		for _, prefix := range cfg.SkipPathPrefixes {
			if strings.HasPrefix(path, prefix) {
				c.Next()
				return
			}
		}

		tokenString, ok := bearerToken(c)
		if !ok {
			handleAuthError(c, cfg, auth.ErrInvalidToken, "Missing or malformed authorization header")
			return
		}

		claims, err := cfg.JWTService.ValidateAccessToken(tokenString)
		if err != nil {
			handleAuthError(c, cfg, err, "Token validation failed")
			return
		}

		if cfg.TokenBlacklist != nil {
			ctx := c.Request.Context()

			revoked, err := cfg.TokenBlacklist.IsRevoked(ctx, claims.ID)
			if err != nil {
				// fail open: the blacklist only shortens token lifetime
				logWarn(cfg, "Failed to check token blacklist", zap.String("jti", claims.ID), zap.Error(err))
			} else if revoked {
				handleAuthError(c, cfg, auth.ErrTokenBlacklisted, "Token has been revoked")
				return
			}

			userRevoked, err := cfg.TokenBlacklist.IsUserRevoked(ctx, claims.UserID.String(), claims.IssuedAtTime())
			if err != nil {
				logWarn(cfg, "Failed to check user token revocation", zap.String("user_id", claims.UserID.String()), zap.Error(err))
			} else if userRevoked {
				handleAuthError(c, cfg, auth.ErrTokenBlacklisted, "User session has been invalidated")
				return
			}
		}

		setAuthContext(c, claims)

		if cfg.Logger != nil {
			cfg.Logger.Debug("JWT authentication successful",
				zap.String("user_id", claims.UserID.String()),
				zap.String("tenant_id", claims.TenantID.String()))
		}

		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader(AuthHeaderKey)
	if !strings.HasPrefix(header, BearerPrefix) {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, BearerPrefix))
	return token, token != ""
}

// setAuthContext publishes the claims to the gin context, the request
// logger and the acting user read by the application services
func setAuthContext(c *gin.Context, claims *auth.Claims) {
	c.Set(JWTClaimsKey, claims)
	c.Set(logger.GinTenantIDKey, claims.TenantID.String())
	c.Set(logger.GinUserIDKey, claims.UserID.String())

	ctx := c.Request.Context()
	reqLogger := logger.FromContext(ctx).With(
		zap.String("tenant_id", claims.TenantID.String()),
		zap.String("user_id", claims.UserID.String()))
	ctx = logger.WithContext(ctx, reqLogger)
	ctx = shared.WithActor(ctx, shared.Actor{
		UserID:    claims.UserID,
		Name:      claims.DisplayName,
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	})
	c.Request = c.Request.WithContext(ctx)
	c.Set(logger.GinLoggerKey, reqLogger)
}

func logWarn(cfg JWTMiddlewareConfig, msg string, fields ...zap.Field) {
	if cfg.Logger != nil {
		cfg.Logger.Warn(msg, fields...)
	}
}

func handleAuthError(c *gin.Context, cfg JWTMiddlewareConfig, err error, message string) {
	logWarn(cfg, "JWT authentication failed",
		zap.Error(err),
		zap.String("reason", message),
		zap.String("path", c.Request.URL.Path))

	code, msg := authErrorCode(err)
	abortWithError(c, http.StatusUnauthorized, code, msg)
}

func authErrorCode(err error) (string, string) {
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return "ERR_TOKEN_EXPIRED", "Token has expired"
	case errors.Is(err, auth.ErrInvalidTokenType):
		return "ERR_TOKEN_INVALID", "Invalid token type"
	case errors.Is(err, auth.ErrTokenNotYetValid):
		return "ERR_TOKEN_INVALID", "Token is not yet valid"
	case errors.Is(err, auth.ErrTokenBlacklisted):
		return "ERR_TOKEN_REVOKED", "Token has been revoked"
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrInvalidClaims):
		return "ERR_TOKEN_INVALID", "Invalid token"
	}
	return "ERR_UNAUTHORIZED", "Authentication required"
}

// GetJWTClaims retrieves JWT claims from gin.Context
func GetJWTClaims(c *gin.Context) *auth.Claims {
	if claims, exists := c.Get(JWTClaimsKey); exists {
		if jwtClaims, ok := claims.(*auth.Claims); ok {
			return jwtClaims
		}
	}
	return nil
}

// GetJWTUserID returns the authenticated user, or uuid.Nil
func GetJWTUserID(c *gin.Context) uuid.UUID {
	if claims := GetJWTClaims(c); claims != nil {
		return claims.UserID
	}
	return uuid.Nil
}

// GetJWTTenantID returns the authenticated user's account, or uuid.Nil
func GetJWTTenantID(c *gin.Context) uuid.UUID {
	if claims := GetJWTClaims(c); claims != nil {
		return claims.TenantID
	}
	return uuid.Nil
}
