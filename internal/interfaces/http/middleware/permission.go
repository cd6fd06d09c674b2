package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ledgerly/backend/internal/domain/identity"
)

// RequirePermission requires a single permission code, e.g. "invoice:confirm".
// Super admins pass every check.
func RequirePermission(permission string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetJWTClaims(c)
		if claims == nil {
			abortWithError(c, http.StatusUnauthorized, "ERR_UNAUTHORIZED", "Authentication required")
			return
		}
		if !claims.PermissionSet().Has(permission) {
			abortWithError(c, http.StatusForbidden, "ERR_FORBIDDEN", "Missing permission: "+permission)
			return
		}
		c.Next()
	}
}

// RequireAction requires module:action
func RequireAction(module, action string) gin.HandlerFunc {
	return RequirePermission(identity.PermissionCode(module, action))
}

// RequireSuperAdmin restricts a route to super admins of the account
func RequireSuperAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetJWTClaims(c)
		if claims == nil {
			abortWithError(c, http.StatusUnauthorized, "ERR_UNAUTHORIZED", "Authentication required")
			return
		}
		if !claims.IsSuperAdmin {
			abortWithError(c, http.StatusForbidden, "ERR_FORBIDDEN", "Only a super admin can do this")
			return
		}
		c.Next()
	}
}
