package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/grafana/pyroscope-go"
)

// Profiling tags the CPU samples of each request with the route, the method,
// the API resource and the account, so Pyroscope can slice profiles by them.
// Requests without a matched route are not tagged.
func Profiling(enabled bool) gin.HandlerFunc {
	if !enabled {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" {
			c.Next()
			return
		}

		labels := []string{
			"route", route,
			"method", c.Request.Method,
			"resource", resourceFromRoute(route),
		}
		if tenantID := GetJWTTenantID(c); tenantID != uuid.Nil {
			labels = append(labels, "tenant_id", tenantID.String())
		}

		pyroscope.TagWrapper(c.Request.Context(), pyroscope.Labels(labels...), func(ctx context.Context) {
			c.Request = c.Request.WithContext(ctx)
			c.Next()
		})
	}
}

// resourceFromRoute returns the first segment after the version,
// "/api/v1/invoices/:id/confirm" gives "invoices"
func resourceFromRoute(route string) string {
	parts := strings.Split(strings.TrimPrefix(strings.TrimPrefix(route, "/"), "api/"), "/")
	if len(parts) >= 2 && strings.HasPrefix(parts[0], "v") {
		return parts[1]
	}
	return parts[0]
}
