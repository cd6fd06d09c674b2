package dto

import (
	"net/http"
	"strings"
	"time"
)

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	ErrCodeUnknown  = "ERR_UNKNOWN"
	ErrCodeInternal = "ERR_INTERNAL"
)

// Validation error codes
const (
	ErrCodeValidation = "ERR_VALIDATION"
)

// Authentication error codes
const (
	ErrCodeUnauthorized       = "ERR_UNAUTHORIZED"
	ErrCodeForbidden          = "ERR_FORBIDDEN"
	ErrCodeInvalidCredentials = "ERR_INVALID_CREDENTIALS"
	ErrCodeTokenExpired       = "ERR_TOKEN_EXPIRED"
	ErrCodeTokenInvalid       = "ERR_TOKEN_INVALID"
	ErrCodeTokenRevoked       = "ERR_TOKEN_REVOKED"
	ErrCodeUserDisabled       = "ERR_USER_DISABLED"
	ErrCodeUserLocked         = "ERR_USER_LOCKED"
	ErrCodeAccountSuspended   = "ERR_ACCOUNT_SUSPENDED"
)

// Resource error codes
const (
	ErrCodeNotFound            = "ERR_NOT_FOUND"
	ErrCodeAlreadyExists       = "ERR_ALREADY_EXISTS"
	ErrCodeConflict            = "ERR_CONFLICT"
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"
)

// Business rule error codes
const (
	ErrCodeInvalidState      = "ERR_INVALID_STATE"
	ErrCodeBusinessRule      = "ERR_BUSINESS_RULE"
	ErrCodeInsufficientStock = "ERR_INSUFFICIENT_STOCK"
)

// Input error codes
const (
	ErrCodeBadRequest   = "ERR_BAD_REQUEST"
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	ErrCodeTooLarge     = "ERR_REQUEST_TOO_LARGE"
)

// Other error codes
const (
	ErrCodeRateLimited = "ERR_RATE_LIMITED"
	ErrCodePDFDisabled = "ERR_PDF_DISABLED"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	ErrCodeValidation: http.StatusBadRequest,

	ErrCodeUnauthorized:       http.StatusUnauthorized,
	ErrCodeInvalidCredentials: http.StatusUnauthorized,
	ErrCodeTokenExpired:       http.StatusUnauthorized,
	ErrCodeTokenInvalid:       http.StatusUnauthorized,
	ErrCodeTokenRevoked:       http.StatusUnauthorized,
	ErrCodeForbidden:          http.StatusForbidden,
	ErrCodeUserDisabled:       http.StatusForbidden,
	ErrCodeAccountSuspended:   http.StatusForbidden,
	ErrCodeUserLocked:         http.StatusLocked,

	ErrCodeNotFound:            http.StatusNotFound,
	"ERR_PERMISSION_NOT_FOUND": http.StatusNotFound,
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeConflict:            http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,

	ErrCodeInvalidState:      http.StatusUnprocessableEntity,
	ErrCodeBusinessRule:      http.StatusUnprocessableEntity,
	ErrCodeInsufficientStock: http.StatusUnprocessableEntity,

	ErrCodeBadRequest:    http.StatusBadRequest,
	ErrCodeInvalidInput:  http.StatusBadRequest,
	ErrCodeTooLarge:      http.StatusRequestEntityTooLarge,
	"ERR_LOGO_TOO_LARGE": http.StatusRequestEntityTooLarge,

	ErrCodeRateLimited:        http.StatusTooManyRequests,
	ErrCodePDFDisabled:        http.StatusNotImplemented,
	"ERR_PASSWORD_HASH_ERROR": http.StatusInternalServerError,
}

// GetHTTPStatus returns the HTTP status code for an error code. Codes
// missing from ErrorCodeHTTPStatus are classified by shape: INVALID_* is
// a 400, ALREADY_*, *_IN_USE and *_HAS_* are conflicts, TOKEN_* is a 401.
// Anything else is a 500.
func GetHTTPStatus(code string) int {
	code = NormalizeErrorCode(code)
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}

	bare := strings.TrimPrefix(code, "ERR_")
	switch {
	case strings.HasPrefix(bare, "INVALID_"):
		return http.StatusBadRequest
	case strings.HasPrefix(bare, "ALREADY_"),
		strings.HasSuffix(bare, "_IN_USE"),
		strings.Contains(bare, "_HAS_"):
		return http.StatusConflict
	case strings.HasPrefix(bare, "TOKEN_"):
		return http.StatusUnauthorized
	}
	return http.StatusInternalServerError
}

// NormalizeErrorCode puts a domain error code in the ERR_ namespace,
// e.g. NOT_FOUND becomes ERR_NOT_FOUND
func NormalizeErrorCode(code string) string {
	if code == "" {
		return ErrCodeUnknown
	}
	if strings.HasPrefix(code, "ERR_") {
		return code
	}
	return "ERR_" + code
}

// ValidationDetail describes one invalid request field
type ValidationDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// NewErrorResponse creates an error response with a normalized code
func NewErrorResponse(code, message string) Response {
	return Response{
		Success: false,
		Error: &ErrorInfo{
			Code:      NormalizeErrorCode(code),
			Message:   message,
			Timestamp: time.Now(),
		},
	}
}

// NewErrorResponseWithRequestID creates an error response carrying the request ID
func NewErrorResponseWithRequestID(code, message, requestID string) Response {
	resp := NewErrorResponse(code, message)
	resp.Error.RequestID = requestID
	return resp
}

// NewValidationErrorResponse creates a 400 response listing the invalid fields
func NewValidationErrorResponse(message, requestID string, details []ValidationDetail) Response {
	resp := NewErrorResponseWithRequestID(ErrCodeValidation, message, requestID)
	resp.Error.Details = details
	return resp
}
