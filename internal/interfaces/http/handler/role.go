package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	identityapp "github.com/ledgerly/backend/internal/application/identity"
)

// RoleHandler handles role management HTTP requests
type RoleHandler struct {
	BaseHandler
	roleService *identityapp.RoleService
}

// NewRoleHandler creates a new role handler
func NewRoleHandler(roleService *identityapp.RoleService) *RoleHandler {
	return &RoleHandler{
		roleService: roleService,
	}
}

// Permissions godoc
//
//	@ID				listPermissions
//	@Summary		List permissions
//	@Description	List every grantable permission grouped by module
//	@Tags			roles
//	@Produce		json
//	@Success		200	{object}	APIResponse[[]identity.ModulePermissions]
//	@Failure		401	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/permissions [get]
func (h *RoleHandler) Permissions(c *gin.Context) {
	h.Success(c, h.roleService.Permissions())
}

// Create godoc
//
//	@ID				createRole
//	@Summary		Create a new role
//	@Tags			roles
//	@Accept			json
//	@Produce		json
//	@Param			request	body		identityapp.CreateRoleRequest	true	"Role creation request"
//	@Success		201		{object}	APIResponse[identityapp.RoleResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		409		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/roles [post]
func (h *RoleHandler) Create(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	var req identityapp.CreateRoleRequest
	if !h.bindJSON(c, &req) {
		return
	}

	role, err := h.roleService.Create(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, role)
}

// Get godoc
//
//	@ID				getRole
//	@Summary		Get role by ID
//	@Tags			roles
//	@Produce		json
//	@Param			id	path		string	true	"Role ID"	format(uuid)
//	@Success		200	{object}	APIResponse[identityapp.RoleResponse]
//	@Failure		404	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/roles/{id} [get]
func (h *RoleHandler) Get(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "role")
	if !ok {
		return
	}

	role, err := h.roleService.Get(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, role)
}

// List godoc
//
//	@ID				listRoles
//	@Summary		List roles
//	@Tags			roles
//	@Produce		json
//	@Param			page		query		int		false	"Page number"	default(1)
//	@Param			page_size	query		int		false	"Page size"		default(20)
//	@Param			search		query		string	false	"Search by code or name"
//	@Param			is_enabled	query		bool	false	"Filter by enabled state"
//	@Param			is_system	query		bool	false	"Filter system roles"
//	@Success		200			{object}	APIResponse[[]identityapp.RoleResponse]
//	@Security		BearerAuth
//	@Router			/roles [get]
func (h *RoleHandler) List(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	var filter identityapp.RoleListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	roles, total, err := h.roleService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, roles, total, filter.Page, filter.PageSize)
}

// Update godoc
//
//	@ID				updateRole
//	@Summary		Update role
//	@Tags			roles
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string							true	"Role ID"	format(uuid)
//	@Param			request	body		identityapp.UpdateRoleRequest	true	"Role changes"
//	@Success		200		{object}	APIResponse[identityapp.RoleResponse]
//	@Failure		404		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/roles/{id} [put]
func (h *RoleHandler) Update(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "role")
	if !ok {
		return
	}
	var req identityapp.UpdateRoleRequest
	if !h.bindJSON(c, &req) {
		return
	}

	role, err := h.roleService.Update(c.Request.Context(), tenantID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, role)
}

// SetPermissions godoc
//
//	@ID				setRolePermissions
//	@Summary		Replace role permissions
//	@Description	Replace the permission codes granted by a role
//	@Tags			roles
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string								true	"Role ID"	format(uuid)
//	@Param			request	body		identityapp.SetPermissionsRequest	true	"Permission codes"
//	@Success		200		{object}	APIResponse[identityapp.RoleResponse]
//	@Failure		404		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/roles/{id}/permissions [put]
func (h *RoleHandler) SetPermissions(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "role")
	if !ok {
		return
	}
	var req identityapp.SetPermissionsRequest
	if !h.bindJSON(c, &req) {
		return
	}

	role, err := h.roleService.SetPermissions(c.Request.Context(), tenantID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, role)
}

// Enable godoc
//
//	@ID				enableRole
//	@Summary		Enable role
//	@Tags			roles
//	@Produce		json
//	@Param			id	path		string	true	"Role ID"	format(uuid)
//	@Success		200	{object}	APIResponse[identityapp.RoleResponse]
//	@Security		BearerAuth
//	@Router			/roles/{id}/enable [post]
func (h *RoleHandler) Enable(c *gin.Context) {
	h.toggle(c, h.roleService.Enable)
}

// Disable godoc
//
//	@ID				disableRole
//	@Summary		Disable role
//	@Description	Disabled roles stop granting permissions to their users
//	@Tags			roles
//	@Produce		json
//	@Param			id	path		string	true	"Role ID"	format(uuid)
//	@Success		200	{object}	APIResponse[identityapp.RoleResponse]
//	@Security		BearerAuth
//	@Router			/roles/{id}/disable [post]
func (h *RoleHandler) Disable(c *gin.Context) {
	h.toggle(c, h.roleService.Disable)
}

func (h *RoleHandler) toggle(c *gin.Context, apply func(ctx context.Context, tenantID, id uuid.UUID) (*identityapp.RoleResponse, error)) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "role")
	if !ok {
		return
	}

	role, err := apply(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, role)
}

// Delete godoc
//
//	@ID				deleteRole
//	@Summary		Delete role
//	@Description	System roles and roles still assigned to users cannot be deleted
//	@Tags			roles
//	@Param			id	path	string	true	"Role ID"	format(uuid)
//	@Success		204
//	@Failure		409	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/roles/{id} [delete]
func (h *RoleHandler) Delete(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "role")
	if !ok {
		return
	}

	if err := h.roleService.Delete(c.Request.Context(), tenantID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
