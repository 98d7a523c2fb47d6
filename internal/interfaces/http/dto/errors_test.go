package dto

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		code     string
		expected int
	}{
		{ErrCodeInternal, http.StatusInternalServerError},
		{ErrCodeValidation, http.StatusBadRequest},
		{ErrCodeUnauthorized, http.StatusUnauthorized},
		{"INVALID_CREDENTIALS", http.StatusUnauthorized},
		{ErrCodeForbidden, http.StatusForbidden},
		{ErrCodeNotFound, http.StatusNotFound},
		{ErrCodeConcurrencyConflict, http.StatusConflict},
		{"ALREADY_APPLIED", http.StatusConflict},
		{"LAST_ADMIN", http.StatusConflict},
		{"INVALID_TRANSITION", http.StatusUnprocessableEntity},
		{"JOB_NOT_OPEN", http.StatusUnprocessableEntity},
		{"STORAGE_DISABLED", http.StatusServiceUnavailable},
		{ErrCodeRateLimited, http.StatusTooManyRequests},
		// field-level domain codes
		{"INVALID_TITLE", http.StatusBadRequest},
		{"SALARY_RANGE_INVALID", http.StatusBadRequest},
		{"START_DATE_REQUIRED", http.StatusBadRequest},
		{"TOO_MANY_SKILLS", http.StatusBadRequest},
		{"WEAK_PASSWORD", http.StatusBadRequest},
		{"SOMETHING_ELSE", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetHTTPStatus(tt.code))
		})
	}
}

func TestNewSuccessResponseWithMeta(t *testing.T) {
	resp := NewSuccessResponseWithMeta([]int{1, 2}, 41, 2, 20)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, 3, resp.Meta.TotalPages)
	assert.Equal(t, 2, resp.Meta.Page)

	empty := NewSuccessResponseWithMeta([]int{}, 0, 0, 0)
	assert.Equal(t, 1, empty.Meta.Page)
	assert.Equal(t, DefaultPageSize, empty.Meta.PageSize)
	assert.Equal(t, 0, empty.Meta.TotalPages)
}

func TestErrorEnvelope(t *testing.T) {
	resp := NewValidationErrorResponse("Request validation failed", "req-1", []ValidationDetail{
		{Field: "title", Message: "This field is required"},
	})

	raw, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"success": false,
		"error": {
			"code": "VALIDATION_ERROR",
			"message": "Request validation failed",
			"request_id": "req-1",
			"details": [{"field": "title", "message": "This field is required"}]
		}
	}`, string(raw))
}
