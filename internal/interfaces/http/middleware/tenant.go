package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/ledgerly/backend/internal/domain/shared"
	"github.com/ledgerly/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// AccountChecker reports whether an account may be used
type AccountChecker interface {
	IsActive(ctx context.Context, tenantID uuid.UUID) (bool, error)
}

// TenantMiddlewareConfig holds configuration for the account status check
type TenantMiddlewareConfig struct {
	Checker AccountChecker
	// AllowSuspended lists route patterns that stay reachable while the
	// account is suspended, e.g. reading and re-activating the account
	AllowSuspended []string
}

// DefaultTenantConfig returns the routes a suspended account can still use
func DefaultTenantConfig(checker AccountChecker) TenantMiddlewareConfig {
	return TenantMiddlewareConfig{
		Checker: checker,
		AllowSuspended: []string{
			"/api/v1/account",
			"/api/v1/account/activate",
			"/api/v1/auth/me",
			"/api/v1/auth/logout",
		},
	}
}

// ActiveTenant rejects requests of suspended accounts. It must run after
// the JWT middleware; unauthenticated requests pass through.
func ActiveTenant(cfg TenantMiddlewareConfig) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(cfg.AllowSuspended))
	for _, p := range cfg.AllowSuspended {
		allowed[p] = struct{}{}
	}

	return func(c *gin.Context) {
		tenantID := GetJWTTenantID(c)
		if tenantID == uuid.Nil || cfg.Checker == nil {
			c.Next()
			return
		}
		if _, ok := allowed[c.FullPath()]; ok {
			c.Next()
			return
		}

		active, err := cfg.Checker.IsActive(c.Request.Context(), tenantID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				abortWithError(c, http.StatusUnauthorized, "ERR_UNAUTHORIZED", "Account no longer exists")
				return
			}
			logger.FromContext(c.Request.Context()).Error("Account status check failed",
				zap.String("tenant_id", tenantID.String()),
				zap.Error(err))
			abortWithError(c, http.StatusInternalServerError, "ERR_INTERNAL", "An unexpected error occurred")
			return
		}
		if !active {
			abortWithError(c, http.StatusForbidden, "ERR_ACCOUNT_SUSPENDED", "Account is suspended")
			return
		}
		c.Next()
	}
}
