// Package handler implements the HTTP handlers of the ledgerly API.
package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/ledgerly/backend/internal/domain/shared"
	"github.com/ledgerly/backend/internal/infrastructure/logger"
	"github.com/ledgerly/backend/internal/interfaces/http/dto"
	"github.com/ledgerly/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

var (
	errNoTenant = errors.New("account not found in context")
	errNoUser   = errors.New("user not found in context")
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// getRequestID extracts the request ID from the context
func getRequestID(c *gin.Context) string {
	if id := c.GetString(logger.GinRequestIDKey); id != "" {
		return id
	}
	return c.GetHeader("X-Request-ID")
}

// getTenantID returns the account of the authenticated user
func getTenantID(c *gin.Context) (uuid.UUID, error) {
	if id := middleware.GetJWTTenantID(c); id != uuid.Nil {
		return id, nil
	}
	return uuid.Nil, errNoTenant
}

// getUserID returns the authenticated user
func getUserID(c *gin.Context) (uuid.UUID, error) {
	if id := middleware.GetJWTUserID(c); id != uuid.Nil {
		return id, nil
	}
	return uuid.Nil, errNoUser
}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessWithMeta sends a success response with pagination meta
func (h *BaseHandler) SuccessWithMeta(c *gin.Context, data any, total int64, page, pageSize int) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(data, total, page, pageSize))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// NoContent sends a 204 no content response
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error sends an error response with the given status
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, getRequestID(c)))
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// NotFound sends a 404 not found response
func (h *BaseHandler) NotFound(c *gin.Context, message string) {
	h.Error(c, http.StatusNotFound, dto.ErrCodeNotFound, message)
}

// Unauthorized sends a 401 unauthorized response
func (h *BaseHandler) Unauthorized(c *gin.Context, message string) {
	h.Error(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, message)
}

// InternalError sends a 500 internal server error response
func (h *BaseHandler) InternalError(c *gin.Context, message string) {
	h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, message)
}

// HandleError converts an error into an HTTP response. Domain errors keep
// their code; codes without a known status are business rule violations
// and answer 422. Anything else is logged and hidden behind a 500.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	requestID := getRequestID(c)

	if domainErr, ok := shared.AsDomainError(err); ok {
		code := dto.NormalizeErrorCode(domainErr.Code)
		status := dto.GetHTTPStatus(code)
		if status == http.StatusInternalServerError && code != dto.ErrCodeInternal {
			status = http.StatusUnprocessableEntity
		}
		c.JSON(status, dto.NewErrorResponseWithRequestID(code, domainErr.Message, requestID))
		return
	}

	logger.FromContext(c.Request.Context()).Error("Request failed",
		zap.String("path", c.FullPath()),
		zap.Error(err))
	c.JSON(http.StatusInternalServerError, dto.NewErrorResponseWithRequestID(
		dto.ErrCodeInternal,
		"An unexpected error occurred",
		requestID,
	))
}

// bindJSON binds the request body and answers 400 with field details on
// failure
func (h *BaseHandler) bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		middleware.HandleValidationError(c, err)
		return false
	}
	return true
}

// bindQuery binds query parameters like bindJSON
func (h *BaseHandler) bindQuery(c *gin.Context, filter any) bool {
	if err := c.ShouldBindQuery(filter); err != nil {
		middleware.HandleValidationError(c, err)
		return false
	}
	return true
}

// tenant returns the caller's account, answering 401 when it is missing
func (h *BaseHandler) tenant(c *gin.Context) (uuid.UUID, bool) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return uuid.Nil, false
	}
	return tenantID, true
}

// tenantAndUser returns the caller's account and user
func (h *BaseHandler) tenantAndUser(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return uuid.Nil, uuid.Nil, false
	}
	return tenantID, userID, true
}

// pathID parses a UUID path parameter, answering 400 when it is malformed
func (h *BaseHandler) pathID(c *gin.Context, name, label string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		h.BadRequest(c, "Invalid "+label+" ID format")
		return uuid.Nil, false
	}
	return id, true
}

// queryUUID parses an optional UUID query parameter
func (h *BaseHandler) queryUUID(c *gin.Context, name string) (*uuid.UUID, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		h.BadRequest(c, "Invalid "+name+" format")
		return nil, false
	}
	return &id, true
}
