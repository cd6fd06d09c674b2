package middleware

import (
	"net/http"
	"runtime/pprof"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestProfiling_LabelsRequest(t *testing.T) {
	svc := newTestJWTService()
	sub := newTestSubject()
	pair := issueToken(t, svc, sub)

	labels := map[string]string{}
	r := gin.New()
	r.Use(JWTAuthMiddleware(svc), Profiling(true))
	r.POST("/api/v1/invoices/:id/confirm", func(c *gin.Context) {
		pprof.ForLabels(c.Request.Context(), func(k, v string) bool {
			labels[k] = v
			return true
		})
		c.Status(http.StatusOK)
	})

	serve(r, http.MethodPost, "/api/v1/invoices/7/confirm", pair.AccessToken)

	assert.Equal(t, "/api/v1/invoices/:id/confirm", labels["route"])
	assert.Equal(t, "POST", labels["method"])
	assert.Equal(t, "invoices", labels["resource"])
	assert.Equal(t, sub.TenantID.String(), labels["tenant_id"])
}

func TestProfiling_Disabled(t *testing.T) {
	var labeled bool
	r := gin.New()
	r.Use(Profiling(false))
	r.GET("/x", func(c *gin.Context) {
		pprof.ForLabels(c.Request.Context(), func(string, string) bool {
			labeled = true
			return false
		})
		c.Status(http.StatusOK)
	})
	serve(r, http.MethodGet, "/x", "")
	assert.False(t, labeled)
}

func TestResourceFromRoute(t *testing.T) {
	assert.Equal(t, "invoices", resourceFromRoute("/api/v1/invoices/:id/confirm"))
	assert.Equal(t, "health", resourceFromRoute("/health"))
}
