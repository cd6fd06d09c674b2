package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	identityapp "github.com/ledgerly/backend/internal/application/identity"
)

// UserHandler handles user management HTTP requests
type UserHandler struct {
	BaseHandler
	userService *identityapp.UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *identityapp.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// Create godoc
// @Summary      Create user
// @Description  Add a user to the caller's account
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        request body identityapp.CreateUserRequest true "User creation request"
// @Success      201 {object} dto.Response{data=identityapp.UserResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /users [post]
func (h *UserHandler) Create(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	var req identityapp.CreateUserRequest
	if !h.bindJSON(c, &req) {
		return
	}

	user, err := h.userService.Create(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, user)
}

// Get godoc
// @Summary      Get user by ID
// @Tags         users
// @Produce      json
// @Param        id path string true "User ID" format(uuid)
// @Success      200 {object} dto.Response{data=identityapp.UserResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /users/{id} [get]
func (h *UserHandler) Get(c *gin.Context) {
	h.withUser(c, h.userService.Get)
}

// List godoc
// @Summary      List users
// @Tags         users
// @Produce      json
// @Param        page      query int    false "Page number" default(1)
// @Param        page_size query int    false "Page size" default(20)
// @Param        search    query string false "Search by email or name"
// @Param        status    query string false "active, disabled or locked"
// @Param        role_id   query string false "Filter by role" format(uuid)
// @Success      200 {object} dto.Response{data=[]identityapp.UserResponse,meta=dto.Meta}
// @Security     BearerAuth
// @Router       /users [get]
func (h *UserHandler) List(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	var filter identityapp.UserListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	if filter.RoleID, ok = h.queryUUID(c, "role_id"); !ok {
		return
	}

	users, total, err := h.userService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, users, total, filter.Page, filter.PageSize)
}

// Update godoc
// @Summary      Update user
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        id      path string true "User ID" format(uuid)
// @Param        request body identityapp.UpdateUserRequest true "User changes"
// @Success      200 {object} dto.Response{data=identityapp.UserResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /users/{id} [put]
func (h *UserHandler) Update(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "user")
	if !ok {
		return
	}
	var req identityapp.UpdateUserRequest
	if !h.bindJSON(c, &req) {
		return
	}

	user, err := h.userService.Update(c.Request.Context(), tenantID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, user)
}

// AssignRoles godoc
// @Summary      Assign roles
// @Description  Replace the roles of a user
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        id      path string true "User ID" format(uuid)
// @Param        request body identityapp.AssignRolesRequest true "Role IDs"
// @Success      200 {object} dto.Response{data=identityapp.UserResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /users/{id}/roles [put]
func (h *UserHandler) AssignRoles(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "user")
	if !ok {
		return
	}
	var req identityapp.AssignRolesRequest
	if !h.bindJSON(c, &req) {
		return
	}

	user, err := h.userService.AssignRoles(c.Request.Context(), tenantID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, user)
}

// SetSuperAdmin godoc
// @Summary      Grant or revoke super-admin
// @Description  The last super-admin of an account cannot be demoted
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        id      path string true "User ID" format(uuid)
// @Param        request body identityapp.SetSuperAdminRequest true "Super-admin flag"
// @Success      200 {object} dto.Response{data=identityapp.UserResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /users/{id}/super-admin [put]
func (h *UserHandler) SetSuperAdmin(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "user")
	if !ok {
		return
	}
	var req identityapp.SetSuperAdminRequest
	if !h.bindJSON(c, &req) {
		return
	}

	user, err := h.userService.SetSuperAdmin(c.Request.Context(), tenantID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, user)
}

// Enable godoc
// @Summary      Enable user
// @Tags         users
// @Produce      json
// @Param        id path string true "User ID" format(uuid)
// @Success      200 {object} dto.Response{data=identityapp.UserResponse}
// @Security     BearerAuth
// @Router       /users/{id}/enable [post]
func (h *UserHandler) Enable(c *gin.Context) {
	h.withUser(c, h.userService.Enable)
}

// Disable godoc
// @Summary      Disable user
// @Description  Disabled users cannot log in and their sessions are revoked
// @Tags         users
// @Produce      json
// @Param        id path string true "User ID" format(uuid)
// @Success      200 {object} dto.Response{data=identityapp.UserResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /users/{id}/disable [post]
func (h *UserHandler) Disable(c *gin.Context) {
	h.withUser(c, h.userService.Disable)
}

// Unlock godoc
// @Summary      Unlock user
// @Description  Clear a lock caused by repeated failed logins
// @Tags         users
// @Produce      json
// @Param        id path string true "User ID" format(uuid)
// @Success      200 {object} dto.Response{data=identityapp.UserResponse}
// @Security     BearerAuth
// @Router       /users/{id}/unlock [post]
func (h *UserHandler) Unlock(c *gin.Context) {
	h.withUser(c, h.userService.Unlock)
}

func (h *UserHandler) withUser(c *gin.Context, fn func(ctx context.Context, tenantID, id uuid.UUID) (*identityapp.UserResponse, error)) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "user")
	if !ok {
		return
	}

	user, err := fn(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, user)
}

// ResetPassword godoc
// @Summary      Reset user password
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        id      path string true "User ID" format(uuid)
// @Param        request body identityapp.ResetPasswordRequest true "New password"
// @Success      200 {object} dto.Response{data=MessageData}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /users/{id}/password [put]
func (h *UserHandler) ResetPassword(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "user")
	if !ok {
		return
	}
	var req identityapp.ResetPasswordRequest
	if !h.bindJSON(c, &req) {
		return
	}

	if err := h.userService.ResetPassword(c.Request.Context(), tenantID, id, req); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, MessageData{Message: "Password reset"})
}

// Delete godoc
// @Summary      Delete user
// @Tags         users
// @Param        id path string true "User ID" format(uuid)
// @Success      204
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /users/{id} [delete]
func (h *UserHandler) Delete(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "user")
	if !ok {
		return
	}

	if err := h.userService.Delete(c.Request.Context(), tenantID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
