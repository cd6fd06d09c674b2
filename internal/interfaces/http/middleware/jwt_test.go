package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/ledgerly/backend/internal/domain/shared"
	"github.com/ledgerly/backend/internal/infrastructure/auth"
	"github.com/ledgerly/backend/internal/infrastructure/config"
	"github.com/ledgerly/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestJWTService() *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{
		Secret:                 "test-secret-key-at-least-32-chars",
		RefreshSecret:          "test-refresh-secret-key-32-chars",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 7 * 24 * time.Hour,
		Issuer:                 "ledgerly-test",
		MaxRefreshCount:        10,
	})
}

func newTestSubject(perms ...string) auth.Subject {
	return auth.Subject{
		TenantID:    uuid.New(),
		UserID:      uuid.New(),
		Email:       "owner@example.com",
		DisplayName: "Ada Owner",
		Permissions: perms,
	}
}

func issueToken(t *testing.T, svc *auth.JWTService, sub auth.Subject) *auth.TokenPair {
	t.Helper()
	pair, err := svc.Issue(sub)
	require.NoError(t, err)
	return pair
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) *dto.ErrorInfo {
	t.Helper()
	var resp struct {
		Success bool           `json:"success"`
		Error   *dto.ErrorInfo `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	return resp.Error
}

func serve(r http.Handler, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJWTAuthMiddleware_ValidToken(t *testing.T) {
	svc := newTestJWTService()
	sub := newTestSubject("invoice:view")
	pair := issueToken(t, svc, sub)

	r := gin.New()
	r.Use(JWTAuthMiddleware(svc))
	var actor shared.Actor
	r.GET("/api/v1/invoices", func(c *gin.Context) {
		assert.Equal(t, sub.TenantID, GetJWTTenantID(c))
		assert.Equal(t, sub.UserID, GetJWTUserID(c))
		actor = shared.ActorFromContext(c.Request.Context())
		c.Status(http.StatusOK)
	})

	w := serve(r, http.MethodGet, "/api/v1/invoices", pair.AccessToken)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, sub.UserID, actor.UserID)
	assert.Equal(t, "Ada Owner", actor.Name)
}

func TestJWTAuthMiddleware_Rejections(t *testing.T) {
	svc := newTestJWTService()
	pair := issueToken(t, svc, newTestSubject())

	tests := []struct {
		name   string
		header string
		code   string
	}{
		{"missing header", "", "ERR_TOKEN_INVALID"},
		{"wrong scheme", "Basic abc", "ERR_TOKEN_INVALID"},
		{"empty bearer", "Bearer ", "ERR_TOKEN_INVALID"},
		{"garbage token", "Bearer not-a-jwt", "ERR_TOKEN_INVALID"},
		{"refresh token used as access", "Bearer " + pair.RefreshToken, "ERR_TOKEN_INVALID"},
	}

	r := gin.New()
	r.Use(JWTAuthMiddleware(svc))
	r.GET("/api/v1/products", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, tt.code, decodeError(t, w).Code)
		})
	}
}

func TestJWTAuthMiddleware_ExpiredToken(t *testing.T) {
	svc := auth.NewJWTService(config.JWTConfig{
		Secret:                 "test-secret-key-at-least-32-chars",
		AccessTokenExpiration:  -time.Minute,
		RefreshTokenExpiration: time.Hour,
		Issuer:                 "ledgerly-test",
	})
	pair := issueToken(t, svc, newTestSubject())

	r := gin.New()
	r.Use(JWTAuthMiddleware(svc))
	r.GET("/api/v1/products", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := serve(r, http.MethodGet, "/api/v1/products", pair.AccessToken)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "ERR_TOKEN_EXPIRED", decodeError(t, w).Code)
}

func TestJWTAuthMiddleware_SkipPaths(t *testing.T) {
	svc := newTestJWTService()
	r := gin.New()
	r.Use(JWTAuthMiddleware(svc))
	for _, p := range []string{"/health", "/api/v1/auth/login", "/api/v1/auth/register", "/swagger/index.html", "/files/logos/a.png"} {
		r.GET(p, func(c *gin.Context) { c.Status(http.StatusOK) })
	}

	for _, p := range []string{"/health", "/api/v1/auth/login", "/api/v1/auth/register", "/swagger/index.html", "/files/logos/a.png"} {
		t.Run(p, func(t *testing.T) {
			assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, p, "").Code)
		})
	}
}

func TestJWTAuthMiddleware_RevokedToken(t *testing.T) {
	svc := newTestJWTService()
	pair := issueToken(t, svc, newTestSubject())
	claims, err := svc.ValidateAccessToken(pair.AccessToken)
	require.NoError(t, err)

	blacklist := auth.NewInMemoryTokenBlacklist()
	require.NoError(t, blacklist.Revoke(context.Background(), claims.ID, time.Hour))

	cfg := DefaultJWTConfig(svc)
	cfg.TokenBlacklist = blacklist
	r := gin.New()
	r.Use(JWTAuthMiddlewareWithConfig(cfg))
	r.GET("/api/v1/products", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := serve(r, http.MethodGet, "/api/v1/products", pair.AccessToken)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "ERR_TOKEN_REVOKED", decodeError(t, w).Code)
}

func TestGetJWTClaims_NotFound(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Nil(t, GetJWTClaims(c))
	assert.Equal(t, uuid.Nil, GetJWTUserID(c))
	assert.Equal(t, uuid.Nil, GetJWTTenantID(c))
}

func TestAuthErrorCode(t *testing.T) {
	code, _ := authErrorCode(auth.ErrTokenNotYetValid)
	assert.Equal(t, "ERR_TOKEN_INVALID", code)
	code, _ = authErrorCode(assert.AnError)
	assert.Equal(t, "ERR_UNAUTHORIZED", code)
}
