package middleware

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/ledgerly/backend/internal/domain/identity"
	"github.com/stretchr/testify/assert"
)

func setupRouterWithJWT(t *testing.T, perms []string, guard gin.HandlerFunc) (*gin.Engine, string) {
	t.Helper()
	svc := newTestJWTService()
	sub := newTestSubject(perms...)
	pair := issueToken(t, svc, sub)

	r := gin.New()
	r.Use(JWTAuthMiddleware(svc))
	ok := func(c *gin.Context) { c.Status(http.StatusOK) }
	r.GET("/api/v1/invoices", guard, ok)
	r.POST("/api/v1/invoices", guard, ok)
	r.PUT("/api/v1/invoices/:id", guard, ok)
	r.DELETE("/api/v1/invoices/:id", guard, ok)
	return r, pair.AccessToken
}

func TestRequirePermission(t *testing.T) {
	tests := []struct {
		name   string
		perms  []string
		status int
	}{
		{"exact match", []string{"invoice:confirm"}, http.StatusOK},
		{"module wildcard", []string{"invoice:*"}, http.StatusOK},
		{"other action", []string{"invoice:view"}, http.StatusForbidden},
		{"no permissions", nil, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, token := setupRouterWithJWT(t, tt.perms, RequirePermission("invoice:confirm"))
			w := serve(r, http.MethodGet, "/api/v1/invoices", token)
			assert.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusForbidden {
				assert.Equal(t, "ERR_FORBIDDEN", decodeError(t, w).Code)
			}
		})
	}
}

func TestRequirePermission_SuperAdmin(t *testing.T) {
	svc := newTestJWTService()
	sub := newTestSubject()
	sub.IsSuperAdmin = true
	pair := issueToken(t, svc, sub)

	r := gin.New()
	r.Use(JWTAuthMiddleware(svc))
	r.GET("/api/v1/roles", RequireAction(identity.ModuleRole, identity.ActionDelete), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/api/v1/roles", pair.AccessToken).Code)
}

func TestRequirePermission_WithoutAuth(t *testing.T) {
	r := gin.New()
	r.GET("/api/v1/invoices", RequirePermission("invoice:view"), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := serve(r, http.MethodGet, "/api/v1/invoices", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "ERR_UNAUTHORIZED", decodeError(t, w).Code)
}

func TestRequireAction_PerRoute(t *testing.T) {
	r, token := setupRouterWithJWT(t, []string{"invoice:create"}, RequireAction(identity.ModuleInvoice, identity.ActionCreate))

	assert.Equal(t, http.StatusOK, serve(r, http.MethodPost, "/api/v1/invoices", token).Code)

	r, token = setupRouterWithJWT(t, []string{"invoice:view"}, RequireAction(identity.ModuleInvoice, identity.ActionDelete))
	w := serve(r, http.MethodDelete, "/api/v1/invoices/1", token)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "ERR_FORBIDDEN", decodeError(t, w).Code)
}

func TestRequireSuperAdmin(t *testing.T) {
	svc := newTestJWTService()

	for _, superAdmin := range []bool{true, false} {
		sub := newTestSubject("account:*")
		sub.IsSuperAdmin = superAdmin
		pair := issueToken(t, svc, sub)

		r := gin.New()
		r.Use(JWTAuthMiddleware(svc))
		r.POST("/api/v1/account/suspend", RequireSuperAdmin(), func(c *gin.Context) { c.Status(http.StatusOK) })

		w := serve(r, http.MethodPost, "/api/v1/account/suspend", pair.AccessToken)
		if superAdmin {
			assert.Equal(t, http.StatusOK, w.Code)
			continue
		}
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, "ERR_FORBIDDEN", decodeError(t, w).Code)
	}
}
