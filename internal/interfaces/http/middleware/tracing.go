// Package middleware provides the HTTP middleware of the ledgerly API.
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/ledgerly/backend/internal/infrastructure/logger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracingConfig holds configuration for the tracing middleware.
type TracingConfig struct {
	ServiceName string
	Enabled     bool
	// SkipPaths are not traced, e.g. health checks
	SkipPaths []string
}

// DefaultTracingConfig returns default tracing configuration.
func DefaultTracingConfig() TracingConfig {
	return TracingConfig{
		ServiceName: "ledgerly",
		Enabled:     true,
		SkipPaths:   []string{"/health", "/api/v1/health"},
	}
}

// Tracing starts a server span per request through otelgin
func Tracing(cfg TracingConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) { c.Next() }
	}

	skip := make(map[string]struct{}, len(cfg.SkipPaths))
	for _, p := range cfg.SkipPaths {
		skip[p] = struct{}{}
	}
	return otelgin.Middleware(cfg.ServiceName, otelgin.WithFilter(func(r *http.Request) bool {
		_, skipped := skip[r.URL.Path]
		return !skipped
	}))
}

// TraceAttributes runs inside the authenticated chain and, once the handler
// is done, adds the request ID plus the tenant and user of the JWT claims to
// the server span. 4xx answers other than 404 are marked as errors.
func TraceAttributes() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		span := trace.SpanFromContext(c.Request.Context())
		if span.IsRecording() {
			enrichSpan(c, span)
		}
	}
}

func enrichSpan(c *gin.Context, span trace.Span) {
	if requestID := c.GetString(logger.GinRequestIDKey); requestID != "" {
		span.SetAttributes(attribute.String("request_id", requestID))
	}
	if tenantID := GetJWTTenantID(c); tenantID != uuid.Nil {
		span.SetAttributes(attribute.String("tenant_id", tenantID.String()))
	}
	if userID := GetJWTUserID(c); userID != uuid.Nil {
		span.SetAttributes(attribute.String("user_id", userID.String()))
	}

	status := c.Writer.Status()
	if status >= http.StatusBadRequest && status < http.StatusInternalServerError && status != http.StatusNotFound {
		span.SetStatus(codes.Error, http.StatusText(status))
	}
}
