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

	"github.com/hireflow/backend/internal/domain/recruiting"
	"github.com/hireflow/backend/internal/infrastructure/richtext"
	"github.com/hireflow/backend/internal/interfaces/http/dto"
)

var setupOnce sync.Once

// SetupValidator configures gin's validator: JSON field names in errors and
// the salary_currency and html_not_empty tags. Safe to call more than once.
func SetupValidator() {
	setupOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
			}
			return name
		})
		_ = v.RegisterValidation("salary_currency", validateSalaryCurrency)
		_ = v.RegisterValidation("html_not_empty", validateHTMLNotEmpty)
	})
}

func validateSalaryCurrency(fl validator.FieldLevel) bool {
	return recruiting.IsCurrencyCode(fl.Field().String())
}

// validateHTMLNotEmpty rejects markup with no visible text, e.g. "<p><br></p>"
func validateHTMLNotEmpty(fl validator.FieldLevel) bool {
	return strings.TrimSpace(richtext.PlainText(fl.Field().String())) != ""
}

// ValidationDetails converts validator errors into per-field details
func ValidationDetails(err error) []dto.ValidationDetail {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return nil
	}
	details := make([]dto.ValidationDetail, 0, len(validationErrors))
	for _, e := range validationErrors {
		details = append(details, dto.ValidationDetail{
			Field:   e.Field(),
			Message: validationMessage(e),
		})
	}
	return details
}

// HandleValidationError writes a VALIDATION_ERROR response for a binding error.
// Malformed bodies that never reached the validator get a single generic detail.
func HandleValidationError(c *gin.Context, err error) {
	details := ValidationDetails(err)
	message := "Request validation failed"
	if details == nil {
		message = "Malformed request"
	}
	SetErrorCode(c, dto.ErrCodeValidation)
	c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewValidationErrorResponse(message, GetRequestID(c), details))
}

func validationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Invalid email format"
	case "min":
		if e.Kind() == reflect.String {
			return "Must be at least " + e.Param() + " characters"
		}
		if e.Kind() == reflect.Slice {
			return "Must contain at least " + e.Param() + " items"
		}
		return "Must be at least " + e.Param()
	case "max":
		if e.Kind() == reflect.String {
			return "Must be at most " + e.Param() + " characters"
		}
		if e.Kind() == reflect.Slice {
			return "Must contain at most " + e.Param() + " items"
		}
		return "Must be at most " + e.Param()
	case "uuid":
		return "Invalid UUID format"
	case "oneof":
		return "Must be one of: " + e.Param()
	case "url":
		return "Invalid URL format"
	case "base64":
		return "Must be base64 encoded"
	case "salary_currency":
		return "Must be a 3-letter ISO currency code"
	case "html_not_empty":
		return "Must contain visible text"
	default:
		return "Invalid value"
	}
}
