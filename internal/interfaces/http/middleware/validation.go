package middleware

import (
	"errors"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/ledgerly/backend/internal/domain/identity"
	"github.com/ledgerly/backend/internal/infrastructure/logger"
	"github.com/ledgerly/backend/internal/interfaces/http/dto"
)

// Custom binding tags
const (
	TagAccountCode    = "account_code"
	TagDocumentPrefix = "doc_prefix"
	TagBrandColor     = "brand_color"
	TagPermission     = "permission"
)

var customValidators = map[string]func(string) bool{
	TagAccountCode:    identity.IsValidAccountCode,
	TagDocumentPrefix: identity.IsValidDocumentPrefix,
	TagBrandColor:     identity.IsValidBrandColor,
	TagPermission: func(code string) bool {
		_, err := identity.ParsePermission(code)
		return err == nil
	},
}

var setupOnce sync.Once

// SetupValidator registers the ledger binding tags on gin's validator and
// makes binding errors report JSON (or form) field names. Safe to call
// more than once.
func SetupValidator() {
	setupOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(fieldName)
		for tag, fn := range customValidators {
			check := fn
			_ = v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
				return check(fl.Field().String())
			})
		}
	})
}

func fieldName(fld reflect.StructField) string {
	for _, key := range []string{"json", "form"} {
		name, _, _ := strings.Cut(fld.Tag.Get(key), ",")
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return fld.Name
}

// FormatValidationErrors turns a binding error into the error envelope
func FormatValidationErrors(err error, requestID string) dto.Response {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return dto.NewValidationErrorResponse("Invalid request body: "+err.Error(), requestID, nil)
	}

	details := make([]dto.ValidationDetail, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		details = append(details, dto.ValidationDetail{
			Field:   fe.Field(),
			Message: getValidationMessage(fe),
		})
	}
	return dto.NewValidationErrorResponse("Request validation failed", requestID, details)
}

// HandleValidationError aborts with 400 and per-field details
func HandleValidationError(c *gin.Context, err error) {
	requestID := c.GetString(logger.GinRequestIDKey)
	if requestID == "" {
		requestID = c.GetHeader("X-Request-ID")
	}
	c.AbortWithStatusJSON(http.StatusBadRequest, FormatValidationErrors(err, requestID))
}

var fixedMessages = map[string]string{
	"required":        "This field is required",
	"email":           "Invalid email format",
	"uuid":            "Invalid UUID format",
	"url":             "Invalid URL format",
	"numeric":         "Must be numeric",
	"alphanum":        "Must be alphanumeric",
	"iso4217":         "Must be an ISO 4217 currency code",
	"dive":            "Invalid item",
	TagAccountCode:    "Must be 3-50 letters, digits or hyphens",
	TagDocumentPrefix: "Must be 1-10 uppercase letters or digits, starting with a letter",
	TagBrandColor:     "Must be a color in #rrggbb form",
	TagPermission:     "Unknown permission code",
}

var paramMessages = map[string]string{
	"len":           "Must be exactly %s characters",
	"oneof":         "Must be one of: %s",
	"gte":           "Must be greater than or equal to %s",
	"lte":           "Must be less than or equal to %s",
	"gt":            "Must be greater than %s",
	"lt":            "Must be less than %s",
	"required_with": "Required together with %s",
	"gtfield":       "Must be after %s",
}

func getValidationMessage(fe validator.FieldError) string {
	tag := fe.Tag()
	if msg, ok := fixedMessages[tag]; ok {
		return msg
	}
	if format, ok := paramMessages[tag]; ok {
		return strings.Replace(format, "%s", fe.Param(), 1)
	}
	if tag == "min" || tag == "max" {
		bound := "at least "
		if tag == "max" {
			bound = "at most "
		}
		msg := "Must be " + bound + fe.Param()
		if fe.Kind() == reflect.String {
			msg += " characters"
		}
		return msg
	}
	return "Invalid value"
}
