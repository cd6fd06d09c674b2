package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	identityapp "github.com/ledgerly/backend/internal/application/identity"
)

// logoFormField is the multipart field carrying the logo file
const logoFormField = "logo"

// AccountHandler handles the settings and branding of the caller's account
type AccountHandler struct {
	BaseHandler
	accountService *identityapp.AccountService
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(accountService *identityapp.AccountService) *AccountHandler {
	return &AccountHandler{accountService: accountService}
}

// Get godoc
// @Summary      Get account
// @Description  Get the settings of the caller's account
// @Tags         account
// @Produce      json
// @Success      200 {object} dto.Response{data=identityapp.AccountResponse}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /account [get]
func (h *AccountHandler) Get(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	account, err := h.accountService.Get(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, account)
}

// Update godoc
// @Summary      Update account
// @Description  Update the profile, currency and numbering prefixes of the account
// @Tags         account
// @Accept       json
// @Produce      json
// @Param        request body identityapp.UpdateAccountRequest true "Account changes"
// @Success      200 {object} dto.Response{data=identityapp.AccountResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /account [put]
func (h *AccountHandler) Update(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	var req identityapp.UpdateAccountRequest
	if !h.bindJSON(c, &req) {
		return
	}
	account, err := h.accountService.Update(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, account)
}

// Suspend godoc
// @Summary      Suspend account
// @Description  Suspend the account; afterwards only reading and re-activating it is allowed
// @Tags         account
// @Produce      json
// @Success      200 {object} dto.Response{data=identityapp.AccountResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /account/suspend [post]
func (h *AccountHandler) Suspend(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	account, err := h.accountService.Suspend(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, account)
}

// Activate godoc
// @Summary      Activate account
// @Description  Re-activate a suspended account
// @Tags         account
// @Produce      json
// @Success      200 {object} dto.Response{data=identityapp.AccountResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /account/activate [post]
func (h *AccountHandler) Activate(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	account, err := h.accountService.Activate(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, account)
}

// GetBranding godoc
// @Summary      Get branding
// @Tags         account
// @Produce      json
// @Success      200 {object} dto.Response{data=identityapp.BrandingResponse}
// @Security     BearerAuth
// @Router       /account/branding [get]
func (h *AccountHandler) GetBranding(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	branding, err := h.accountService.GetBranding(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, branding)
}

// UpdateBranding godoc
// @Summary      Update branding
// @Description  Set the primary color and invoice footer used on printed invoices
// @Tags         account
// @Accept       json
// @Produce      json
// @Param        request body identityapp.UpdateBrandingRequest true "Branding"
// @Success      200 {object} dto.Response{data=identityapp.BrandingResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /account/branding [put]
func (h *AccountHandler) UpdateBranding(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	var req identityapp.UpdateBrandingRequest
	if !h.bindJSON(c, &req) {
		return
	}
	branding, err := h.accountService.UpdateBranding(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, branding)
}

// UploadLogo godoc
// @Summary      Upload logo
// @Description  Upload the account logo (PNG, JPEG, WebP or SVG) replacing the previous one
// @Tags         account
// @Accept       multipart/form-data
// @Produce      json
// @Param        logo formData file true "Logo image"
// @Success      200 {object} dto.Response{data=identityapp.BrandingResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      413 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /account/branding/logo [post]
func (h *AccountHandler) UploadLogo(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile(logoFormField)
	if err != nil {
		h.BadRequest(c, "Missing logo file")
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		h.BadRequest(c, "Unreadable logo file")
		return
	}
	defer file.Close()

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		head := make([]byte, 512)
		n, _ := file.Read(head)
		contentType = http.DetectContentType(head[:n])
		if _, err := file.Seek(0, io.SeekStart); err != nil {
			h.BadRequest(c, "Unreadable logo file")
			return
		}
	}

	branding, err := h.accountService.UploadLogo(c.Request.Context(), tenantID, identityapp.LogoUpload{
		Body:        file,
		Size:        fileHeader.Size,
		ContentType: contentType,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, branding)
}

// DeleteLogo godoc
// @Summary      Delete logo
// @Tags         account
// @Success      204
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /account/branding/logo [delete]
func (h *AccountHandler) DeleteLogo(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	if err := h.accountService.DeleteLogo(c.Request.Context(), tenantID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// GetLogoURL godoc
// @Summary      Logo download URL
// @Description  Get a time-limited URL of the account logo
// @Tags         account
// @Produce      json
// @Success      200 {object} dto.Response{data=identityapp.LogoURLResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /account/branding/logo [get]
func (h *AccountHandler) GetLogoURL(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	logo, err := h.accountService.GetLogoURL(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, logo)
}
