package router

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/ledgerly/backend/internal/infrastructure/auth"
	"github.com/ledgerly/backend/internal/infrastructure/config"
	"github.com/ledgerly/backend/internal/interfaces/http/handler"
	"github.com/ledgerly/backend/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// apiHandlers builds handlers without services; tests only reach the
// middleware in front of them, or handlers that need no service
func apiHandlers() Handlers {
	return Handlers{
		Auth:         handler.NewAuthHandler(nil, nil),
		Account:      handler.NewAccountHandler(nil),
		Role:         handler.NewRoleHandler(nil),
		User:         handler.NewUserHandler(nil),
		Product:      handler.NewProductHandler(nil),
		Customer:     handler.NewCustomerHandler(nil),
		Invoice:      handler.NewInvoiceHandler(nil, nil, nil),
		Payment:      handler.NewPaymentHandler(nil),
		Expense:      handler.NewExpenseHandler(nil),
		Revenue:      handler.NewRevenueHandler(nil),
		Message:      handler.NewMessageHandler(nil),
		Notification: handler.NewNotificationHandler(nil),
		Activity:     handler.NewActivityHandler(nil),
		System:       handler.NewSystemHandler("test", nil),
	}
}

func setupAPI(t *testing.T) (*gin.Engine, *Router, *auth.JWTService) {
	t.Helper()
	jwtService := auth.NewJWTService(config.JWTConfig{
		Secret:                 "test-secret-key-at-least-32-chars",
		RefreshSecret:          "test-refresh-secret-key-32-chars",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: time.Hour,
		Issuer:                 "ledgerly-test",
	})

	engine := gin.New()
	r := NewRouter(engine, WithMiddleware(middleware.JWTAuthMiddleware(jwtService)))
	RegisterAPI(r, apiHandlers())
	r.Setup()
	return engine, r, jwtService
}

func TestRegisterAPI_Routes(t *testing.T) {
	_, r, _ := setupAPI(t)

	mounted := make(map[RouteInfo]bool)
	for _, rt := range r.Routes() {
		mounted[rt] = true
	}

	expected := []RouteInfo{
		{http.MethodPost, "/api/v1/auth/register"},
		{http.MethodPost, "/api/v1/auth/login"},
		{http.MethodPost, "/api/v1/auth/refresh"},
		{http.MethodPost, "/api/v1/auth/logout"},
		{http.MethodGet, "/api/v1/auth/me"},
		{http.MethodPut, "/api/v1/auth/password"},
		{http.MethodGet, "/api/v1/account"},
		{http.MethodPut, "/api/v1/account"},
		{http.MethodPost, "/api/v1/account/suspend"},
		{http.MethodPost, "/api/v1/account/activate"},
		{http.MethodGet, "/api/v1/account/branding"},
		{http.MethodPut, "/api/v1/account/branding"},
		{http.MethodGet, "/api/v1/account/branding/logo"},
		{http.MethodPost, "/api/v1/account/branding/logo"},
		{http.MethodDelete, "/api/v1/account/branding/logo"},
		{http.MethodGet, "/api/v1/permissions"},
		{http.MethodPut, "/api/v1/roles/:id/permissions"},
		{http.MethodPost, "/api/v1/roles/:id/disable"},
		{http.MethodPut, "/api/v1/users/:id/super-admin"},
		{http.MethodPost, "/api/v1/users/:id/unlock"},
		{http.MethodPut, "/api/v1/users/:id/password"},
		{http.MethodPost, "/api/v1/products/:id/stock-adjustments"},
		{http.MethodGet, "/api/v1/customers/:id/statement"},
		{http.MethodGet, "/api/v1/invoices/summary"},
		{http.MethodPost, "/api/v1/invoices/:id/confirm"},
		{http.MethodPost, "/api/v1/invoices/:id/unconfirm"},
		{http.MethodPost, "/api/v1/invoices/:id/cancel"},
		{http.MethodPost, "/api/v1/invoices/:id/reopen"},
		{http.MethodGet, "/api/v1/invoices/:id/pdf"},
		{http.MethodGet, "/api/v1/invoices/:id/payments"},
		{http.MethodPost, "/api/v1/invoices/:id/payments"},
		{http.MethodDelete, "/api/v1/invoices/:id/payments/:paymentId"},
		{http.MethodGet, "/api/v1/payments"},
		{http.MethodGet, "/api/v1/expenses/summary"},
		{http.MethodGet, "/api/v1/revenues/summary"},
		{http.MethodGet, "/api/v1/messages/inbox"},
		{http.MethodGet, "/api/v1/messages/sent"},
		{http.MethodGet, "/api/v1/messages/unread-count"},
		{http.MethodPost, "/api/v1/messages/:id/read"},
		{http.MethodPost, "/api/v1/notifications/read-all"},
		{http.MethodDelete, "/api/v1/notifications/:id"},
		{http.MethodGet, "/api/v1/activity-logs"},
		{http.MethodGet, "/api/v1/activity-logs/:id"},
		{http.MethodGet, "/api/v1/health"},
	}
	for _, rt := range expected {
		assert.True(t, mounted[rt], "missing route %s %s", rt.Method, rt.Path)
	}
}

func TestRegisterAPI_Guards(t *testing.T) {
	engine, _, jwtService := setupAPI(t)

	viewer, err := jwtService.Issue(auth.Subject{
		TenantID:    uuid.New(),
		UserID:      uuid.New(),
		Email:       "viewer@acme.test",
		Permissions: []string{"invoice:view", "customer:view"},
	})
	require.NoError(t, err)

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		status int
	}{
		{"anonymous", http.MethodGet, "/api/v1/invoices", "", http.StatusUnauthorized},
		{"missing action", http.MethodPost, "/api/v1/invoices/" + uuid.NewString() + "/confirm", viewer.AccessToken, http.StatusForbidden},
		{"other module", http.MethodGet, "/api/v1/products", viewer.AccessToken, http.StatusForbidden},
		{"super admin only", http.MethodPost, "/api/v1/account/suspend", viewer.AccessToken, http.StatusForbidden},
		{"activity log", http.MethodGet, "/api/v1/activity-logs", viewer.AccessToken, http.StatusForbidden},
		{"public health", http.MethodGet, "/api/v1/health", "", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			w := httptest.NewRecorder()
			engine.ServeHTTP(w, req)
			assert.Equal(t, tt.status, w.Code)
		})
	}
}
