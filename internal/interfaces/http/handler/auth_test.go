package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	identityapp "github.com/ledgerly/backend/internal/application/identity"
	"github.com/ledgerly/backend/internal/domain/identity"
	"github.com/ledgerly/backend/internal/domain/shared"
	"github.com/ledgerly/backend/internal/infrastructure/auth"
	"github.com/ledgerly/backend/internal/infrastructure/config"
	"github.com/ledgerly/backend/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testPassword = "s3cret-pass"

// MockAccountRepository is a mock implementation of identity.AccountRepository
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) Create(ctx context.Context, account *identity.Account) error {
	return m.Called(ctx, account).Error(0)
}

func (m *MockAccountRepository) Save(ctx context.Context, account *identity.Account) error {
	return m.Called(ctx, account).Error(0)
}

func (m *MockAccountRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Account), args.Error(1)
}

func (m *MockAccountRepository) FindByCode(ctx context.Context, code string) (*identity.Account, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Account), args.Error(1)
}

func (m *MockAccountRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	args := m.Called(ctx, code)
	return args.Bool(0), args.Error(1)
}

// MockUserRepository is a mock implementation of identity.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *identity.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepository) Save(ctx context.Context, user *identity.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return m.Called(ctx, tenantID, id).Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*identity.User, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*identity.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter identity.UserFilter) ([]*identity.User, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]*identity.User), args.Get(1).(int64), args.Error(2)
}

func (m *MockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) CountSuperAdmins(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).(int64), args.Error(1)
}

type authTestEnv struct {
	router    *gin.Engine
	accounts  *MockAccountRepository
	users     *MockUserRepository
	jwt       *auth.JWTService
	blacklist *auth.InMemoryTokenBlacklist
	account   *identity.Account
	user      *identity.User
}

func setupAuthHandler(t *testing.T) *authTestEnv {
	t.Helper()

	account, err := identity.NewAccount("acme", "Acme Ltd", "billing@acme.test", "")
	require.NoError(t, err)
	user, err := identity.NewSuperAdmin(account.ID, "owner@acme.test", "Ada Owner", testPassword)
	require.NoError(t, err)

	env := &authTestEnv{
		accounts: new(MockAccountRepository),
		users:    new(MockUserRepository),
		jwt: auth.NewJWTService(config.JWTConfig{
			Secret:                 "test-secret-key-at-least-32-chars",
			RefreshSecret:          "test-refresh-secret-key-32-chars",
			AccessTokenExpiration:  15 * time.Minute,
			RefreshTokenExpiration: 24 * time.Hour,
			Issuer:                 "ledgerly-test",
			MaxRefreshCount:        10,
		}),
		blacklist: auth.NewInMemoryTokenBlacklist(),
		account:   account,
		user:      user,
	}

	svc := identityapp.NewAuthService(env.accounts, env.users, nil, env.jwt, env.blacklist, nil,
		identityapp.DefaultAuthServiceConfig(), zap.NewNop())
	h := NewAuthHandler(svc, nil)

	jwtCfg := middleware.DefaultJWTConfig(env.jwt)
	jwtCfg.TokenBlacklist = env.blacklist

	r := gin.New()
	api := r.Group("/api/v1", middleware.JWTAuthMiddlewareWithConfig(jwtCfg))
	api.POST("/auth/login", h.Login)
	api.POST("/auth/refresh", h.Refresh)
	api.POST("/auth/logout", h.Logout)
	api.GET("/auth/me", h.Me)
	env.router = r
	return env
}

func (env *authTestEnv) post(path string, body any, token string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func (env *authTestEnv) issue(t *testing.T) *auth.TokenPair {
	t.Helper()
	pair, err := env.jwt.Issue(auth.SubjectFor(env.user, identity.ResolvePermissions(env.user, nil)))
	require.NoError(t, err)
	return pair
}

func decodeLogin(t *testing.T, w *httptest.ResponseRecorder) identityapp.LoginResponse {
	t.Helper()
	var resp struct {
		Data identityapp.LoginResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Data
}

func TestAuthHandler_Login(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		env := setupAuthHandler(t)
		env.users.On("FindByEmail", mock.Anything, "owner@acme.test").Return(env.user, nil)
		env.accounts.On("FindByID", mock.Anything, env.account.ID).Return(env.account, nil)
		env.users.On("Save", mock.Anything, env.user).Return(nil)

		w := env.post("/api/v1/auth/login", map[string]string{
			"email":    "Owner@Acme.test",
			"password": testPassword,
		}, "")

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		login := decodeLogin(t, w)
		assert.NotEmpty(t, login.Token.AccessToken)
		assert.NotEmpty(t, login.Token.RefreshToken)
		assert.Equal(t, env.user.ID, login.User.ID)
		assert.True(t, login.User.IsSuperAdmin)

		claims, err := env.jwt.ValidateAccessToken(login.Token.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, env.account.ID, claims.TenantID)
	})

	t.Run("wrong password", func(t *testing.T) {
		env := setupAuthHandler(t)
		env.users.On("FindByEmail", mock.Anything, "owner@acme.test").Return(env.user, nil)
		env.accounts.On("FindByID", mock.Anything, env.account.ID).Return(env.account, nil)
		env.users.On("Save", mock.Anything, env.user).Return(nil)

		w := env.post("/api/v1/auth/login", map[string]string{
			"email":    "owner@acme.test",
			"password": "wrong-pass-1",
		}, "")

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "ERR_INVALID_CREDENTIALS", decodeResponse(t, w).Error.Code)
		assert.Equal(t, 1, env.user.FailedAttempts)
	})

	t.Run("unknown email", func(t *testing.T) {
		env := setupAuthHandler(t)
		env.users.On("FindByEmail", mock.Anything, "nobody@acme.test").Return(nil, shared.ErrNotFound)

		w := env.post("/api/v1/auth/login", map[string]string{
			"email":    "nobody@acme.test",
			"password": testPassword,
		}, "")

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "ERR_INVALID_CREDENTIALS", decodeResponse(t, w).Error.Code)
	})

	t.Run("suspended account", func(t *testing.T) {
		env := setupAuthHandler(t)
		require.NoError(t, env.account.Suspend())
		env.users.On("FindByEmail", mock.Anything, "owner@acme.test").Return(env.user, nil)
		env.accounts.On("FindByID", mock.Anything, env.account.ID).Return(env.account, nil)

		w := env.post("/api/v1/auth/login", map[string]string{
			"email":    "owner@acme.test",
			"password": testPassword,
		}, "")

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, "ERR_ACCOUNT_SUSPENDED", decodeResponse(t, w).Error.Code)
	})

	t.Run("invalid body", func(t *testing.T) {
		env := setupAuthHandler(t)

		w := env.post("/api/v1/auth/login", map[string]string{"email": "not-an-email"}, "")

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "ERR_VALIDATION", decodeResponse(t, w).Error.Code)
		env.users.AssertNotCalled(t, "FindByEmail", mock.Anything, mock.Anything)
	})
}

func TestAuthHandler_Refresh_SingleUse(t *testing.T) {
	env := setupAuthHandler(t)
	env.users.On("FindByID", mock.Anything, env.account.ID, env.user.ID).Return(env.user, nil)
	env.accounts.On("FindByID", mock.Anything, env.account.ID).Return(env.account, nil)
	pair := env.issue(t)

	w := env.post("/api/v1/auth/refresh", map[string]string{"refresh_token": pair.RefreshToken}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	rotated := decodeLogin(t, w)
	assert.NotEqual(t, pair.RefreshToken, rotated.Token.RefreshToken)

	w = env.post("/api/v1/auth/refresh", map[string]string{"refresh_token": pair.RefreshToken}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "ERR_TOKEN_REVOKED", decodeResponse(t, w).Error.Code)
}

func TestAuthHandler_Refresh_AccessTokenRejected(t *testing.T) {
	env := setupAuthHandler(t)
	pair := env.issue(t)

	w := env.post("/api/v1/auth/refresh", map[string]string{"refresh_token": pair.AccessToken}, "")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "ERR_TOKEN_INVALID", decodeResponse(t, w).Error.Code)
}

func TestAuthHandler_Logout(t *testing.T) {
	env := setupAuthHandler(t)
	env.users.On("FindByID", mock.Anything, env.account.ID, env.user.ID).Return(env.user, nil)
	env.accounts.On("FindByID", mock.Anything, env.account.ID).Return(env.account, nil)
	pair := env.issue(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "owner@acme.test", decodeResponse(t, w).Data.(map[string]any)["email"])

	w = env.post("/api/v1/auth/logout", nil, pair.AccessToken)
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "ERR_TOKEN_REVOKED", decodeResponse(t, w).Error.Code)
}
