package dto

import (
	"net/http"
	"strings"
)

// Error codes of the HTTP layer. Domain errors keep their own code on the wire.
const (
	ErrCodeInternal   = "INTERNAL_ERROR"
	ErrCodeBadRequest = "BAD_REQUEST"
	ErrCodeValidation = "VALIDATION_ERROR"
	ErrCodeInvalidID  = "INVALID_ID"

	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeForbidden    = "FORBIDDEN"
	ErrCodeTokenExpired = "TOKEN_EXPIRED"
	ErrCodeTokenInvalid = "TOKEN_INVALID"
	ErrCodeTokenRevoked = "TOKEN_REVOKED"

	ErrCodeNotFound            = "NOT_FOUND"
	ErrCodeAlreadyExists       = "ALREADY_EXISTS"
	ErrCodeConcurrencyConflict = "CONCURRENCY_CONFLICT"
	ErrCodeInvalidState        = "INVALID_STATE"

	ErrCodeRequestTooLarge = "REQUEST_TOO_LARGE"
	ErrCodeRateLimited     = "RATE_LIMIT_EXCEEDED"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:   http.StatusInternalServerError,
	ErrCodeBadRequest: http.StatusBadRequest,
	ErrCodeValidation: http.StatusBadRequest,
	ErrCodeInvalidID:  http.StatusBadRequest,
	"INVALID_INPUT":   http.StatusBadRequest,

	// Authentication
	ErrCodeUnauthorized:      http.StatusUnauthorized,
	ErrCodeTokenExpired:      http.StatusUnauthorized,
	ErrCodeTokenInvalid:      http.StatusUnauthorized,
	ErrCodeTokenRevoked:      http.StatusUnauthorized,
	"TOKEN_MAX_REFRESH":      http.StatusUnauthorized,
	"INVALID_CREDENTIALS":    http.StatusUnauthorized,
	"ACCOUNT_DEACTIVATED":    http.StatusForbidden,
	"ORGANIZATION_SUSPENDED": http.StatusForbidden,
	ErrCodeForbidden:         http.StatusForbidden,
	"SELF_MODIFICATION":      http.StatusForbidden,
	"SYSTEM_ROLE":            http.StatusForbidden,

	// Lookups
	ErrCodeNotFound:    http.StatusNotFound,
	"ROLE_NOT_FOUND":   http.StatusNotFound,
	"UPLOAD_NOT_FOUND": http.StatusUnprocessableEntity,

	// Conflicts
	ErrCodeAlreadyExists:         http.StatusConflict,
	ErrCodeConcurrencyConflict:   http.StatusConflict,
	"ALREADY_APPLIED":            http.StatusConflict,
	"CANDIDATE_EMAIL_TAKEN":      http.StatusConflict,
	"JOB_HAS_APPLICATIONS":       http.StatusConflict,
	"CANDIDATE_HAS_APPLICATIONS": http.StatusConflict,
	"ROLE_IN_USE":                http.StatusConflict,
	"LAST_ADMIN":                 http.StatusConflict,

	// Business rules
	ErrCodeInvalidState:    http.StatusUnprocessableEntity,
	"INVALID_TRANSITION":   http.StatusUnprocessableEntity,
	"JOB_NOT_OPEN":         http.StatusUnprocessableEntity,
	"JOB_ARCHIVED":         http.StatusUnprocessableEntity,
	"GRANT_NOT_APPLICABLE": http.StatusUnprocessableEntity,
	"CHECKSUM_MISMATCH":    http.StatusUnprocessableEntity,
	"DOCUMENT_NOT_ACTIVE":  http.StatusUnprocessableEntity,
	"ALREADY_ACTIVE":       http.StatusUnprocessableEntity,
	"ALREADY_DEACTIVATED":  http.StatusUnprocessableEntity,
	"ALREADY_REVOKED":      http.StatusUnprocessableEntity,
	"ALREADY_DELETED":      http.StatusUnprocessableEntity,
	"FILE_TOO_LARGE":       http.StatusRequestEntityTooLarge,

	// Optional subsystems
	"STORAGE_DISABLED":  http.StatusServiceUnavailable,
	"PRINTING_DISABLED": http.StatusServiceUnavailable,

	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,
	ErrCodeRateLimited:     http.StatusTooManyRequests,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Field-level domain codes (INVALID_TITLE, SALARY_RANGE_INVALID, START_DATE_REQUIRED, ...)
// map to 400; any other unlisted code is a 500.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	if isFieldCode(code) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func isFieldCode(code string) bool {
	switch {
	case strings.HasPrefix(code, "INVALID_"),
		strings.HasSuffix(code, "_INVALID"),
		strings.HasSuffix(code, "_REQUIRED"),
		strings.HasSuffix(code, "_TOO_LARGE"),
		strings.HasPrefix(code, "TOO_MANY_"),
		code == "WEAK_PASSWORD":
		return true
	}
	return false
}
