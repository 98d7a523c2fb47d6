package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hireflow/backend/internal/interfaces/http/dto"
)

type jobForm struct {
	Title          string `json:"title" binding:"required,min=3"`
	Description    string `json:"description_html" binding:"omitempty,html_not_empty"`
	SalaryCurrency string `json:"salary_currency" binding:"omitempty,salary_currency"`
}

func bindJob(t *testing.T, body string) (*httptest.ResponseRecorder, dto.Response) {
	t.Helper()
	SetupValidator()
	router := gin.New()
	router.Use(RequestID())
	router.POST("/jobs", func(c *gin.Context) {
		var req jobForm
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.String(http.StatusOK, "ok")
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/jobs", strings.NewReader(body)))
	var resp dto.Response
	if w.Code != http.StatusOK {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	}
	return w, resp
}

func TestHandleValidationError(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		w, _ := bindJob(t, `{"title":"Backend Engineer","description_html":"<p>Go</p>","salary_currency":"EUR"}`)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("per-field details", func(t *testing.T) {
		w, resp := bindJob(t, `{"title":"Go","description_html":"<p><br></p>","salary_currency":"euro"}`)
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
		assert.NotEmpty(t, resp.Error.RequestID)

		byField := map[string]string{}
		for _, d := range resp.Error.Details {
			byField[d.Field] = d.Message
		}
		assert.Equal(t, "Must be at least 3 characters", byField["title"])
		assert.Equal(t, "Must contain visible text", byField["description_html"])
		assert.Equal(t, "Must be a 3-letter ISO currency code", byField["salary_currency"])
	})

	t.Run("malformed JSON", func(t *testing.T) {
		w, resp := bindJob(t, `{"title":`)
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
		assert.Equal(t, "Malformed request", resp.Error.Message)
		assert.Empty(t, resp.Error.Details)
	})
}
