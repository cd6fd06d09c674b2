package handler

import (
	"github.com/gin-gonic/gin"
	identityapp "github.com/ledgerly/backend/internal/application/identity"
	"github.com/ledgerly/backend/internal/interfaces/http/middleware"
)

// AuthHandler handles registration, login and session endpoints
type AuthHandler struct {
	BaseHandler
	authService    *identityapp.AuthService
	accountService *identityapp.AccountService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *identityapp.AuthService, accountService *identityapp.AccountService) *AuthHandler {
	return &AuthHandler{
		authService:    authService,
		accountService: accountService,
	}
}

// Register godoc
// @Summary      Register an account
// @Description  Create a new account together with its first administrator
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body identityapp.RegisterRequest true "Registration request"
// @Success      201 {object} dto.Response{data=identityapp.RegisterResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req identityapp.RegisterRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.accountService.Register(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// Login godoc
// @Summary      User login
// @Description  Authenticate with email and password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body identityapp.LoginRequest true "Login credentials"
// @Success      200 {object} dto.Response{data=identityapp.LoginResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      423 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req identityapp.LoginRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.authService.Login(c.Request.Context(), req, c.ClientIP())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Refresh godoc
// @Summary      Refresh tokens
// @Description  Exchange a refresh token for a new token pair. Refresh tokens are single use.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body identityapp.RefreshRequest true "Refresh token"
// @Success      200 {object} dto.Response{data=identityapp.LoginResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req identityapp.RefreshRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.authService.Refresh(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Logout godoc
// @Summary      User logout
// @Description  Revoke the current access token
// @Tags         auth
// @Produce      json
// @Success      200 {object} dto.Response{data=MessageData}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	claims := middleware.GetJWTClaims(c)
	if claims == nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	if err := h.authService.Logout(c.Request.Context(), claims); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, MessageData{Message: "Logged out"})
}

// Me godoc
// @Summary      Current user
// @Description  Get the authenticated user with its account and effective permissions
// @Tags         auth
// @Produce      json
// @Success      200 {object} dto.Response{data=identityapp.CurrentUserResponse}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	tenantID, userID, ok := h.tenantAndUser(c)
	if !ok {
		return
	}

	user, err := h.authService.Me(c.Request.Context(), tenantID, userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, user)
}

// ChangePassword godoc
// @Summary      Change password
// @Description  Change the authenticated user's password; other sessions are revoked
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body identityapp.ChangePasswordRequest true "Old and new password"
// @Success      200 {object} dto.Response{data=MessageData}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /auth/password [put]
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	tenantID, userID, ok := h.tenantAndUser(c)
	if !ok {
		return
	}
	var req identityapp.ChangePasswordRequest
	if !h.bindJSON(c, &req) {
		return
	}

	if err := h.authService.ChangePassword(c.Request.Context(), tenantID, userID, req); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, MessageData{Message: "Password changed"})
}
