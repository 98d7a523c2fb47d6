package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hireflow/backend/internal/infrastructure/auth"
	"github.com/hireflow/backend/internal/infrastructure/config"
	"github.com/hireflow/backend/internal/interfaces/http/dto"
	"github.com/hireflow/backend/internal/interfaces/http/handler"
	"github.com/hireflow/backend/internal/interfaces/http/middleware"
)

func newAPI(t *testing.T) (*gin.Engine, *auth.JWTService) {
	t.Helper()
	jwtService := auth.NewJWTService(config.JWTConfig{
		Secret:                 "test-secret-key-at-least-32-chars",
		RefreshSecret:          "test-refresh-secret-key-32-chars",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: time.Hour,
		Issuer:                 "hireflow-test",
		MaxRefreshCount:        3,
	})

	engine := gin.New()
	engine.Use(middleware.RequestID())
	r := NewRouter(engine, WithMiddleware(middleware.JWTAuthMiddleware(jwtService)))
	RegisterAPI(r, Handlers{
		System:       handler.NewSystemHandler("test", nil),
		Auth:         handler.NewAuthHandler(nil, nil, config.CookieConfig{}),
		Organization: handler.NewOrganizationHandler(nil, nil, nil),
		Job:          handler.NewJobHandler(nil, nil),
		Candidate:    handler.NewCandidateHandler(nil, nil),
		Application:  handler.NewApplicationHandler(nil, nil),
	})
	return engine, jwtService
}

func token(t *testing.T, jwtService *auth.JWTService, roles []string, permissions ...string) string {
	t.Helper()
	pair, err := jwtService.GenerateTokenPair(auth.Subject{
		OrganizationID: uuid.New(),
		UserID:         uuid.New(),
		Email:          "member@example.com",
		Roles:          roles,
		Permissions:    permissions,
	})
	require.NoError(t, err)
	return pair.AccessToken
}

func call(engine *gin.Engine, method, path, bearer, body string) (*httptest.ResponseRecorder, dto.Response) {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set(middleware.AuthHeaderKey, middleware.BearerPrefix+bearer)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	var resp dto.Response
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	return w, resp
}

func TestRegisterAPI_PublicRoutes(t *testing.T) {
	engine, _ := newAPI(t)

	w, _ := call(engine, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = call(engine, http.MethodGet, "/api/v1/ping", "", "")
	assert.Equal(t, http.StatusOK, w.Code)

	// reaches the handler without a token and fails binding
	w, resp := call(engine, http.MethodPost, "/api/v1/auth/login", "", `{"email":"not-an-email"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)

	w, resp = call(engine, http.MethodPost, "/api/v1/auth/refresh", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, dto.ErrCodeUnauthorized, resp.Error.Code)
}

func TestRegisterAPI_RequiresToken(t *testing.T) {
	engine, _ := newAPI(t)
	for _, path := range []string{"/api/v1/jobs", "/api/v1/auth/me", "/api/v1/dashboard", "/api/v1/organization"} {
		w, resp := call(engine, http.MethodGet, path, "", "")
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
		assert.Equal(t, dto.ErrCodeUnauthorized, resp.Error.Code, path)
	}
}

func TestRegisterAPI_Permissions(t *testing.T) {
	engine, jwtService := newAPI(t)
	ta := token(t, jwtService, []string{"talent_acquisition"},
		"job:read", "application:read", "application:create", "application:update",
		"candidate:read", "candidate:create", "candidate:update",
		"document:read", "document:create", "dashboard:read")
	admin := token(t, jwtService, []string{"admin"}, "*:*")

	forbidden := []struct{ method, path string }{
		{http.MethodPost, "/api/v1/jobs"},
		{http.MethodPost, "/api/v1/jobs/" + uuid.NewString() + "/publish"},
		{http.MethodDelete, "/api/v1/candidates/" + uuid.NewString()},
		{http.MethodPost, "/api/v1/jobs/" + uuid.NewString() + "/access"},
		{http.MethodGet, "/api/v1/organization/members"},
		{http.MethodPost, "/api/v1/organization/roles"},
		{http.MethodDelete, "/api/v1/documents/" + uuid.NewString()},
	}
	for _, tc := range forbidden {
		w, resp := call(engine, tc.method, tc.path, ta, "{}")
		assert.Equal(t, http.StatusForbidden, w.Code, "%s %s", tc.method, tc.path)
		assert.Equal(t, dto.ErrCodeForbidden, resp.Error.Code)
	}

	// permitted requests reach the handler, which rejects the malformed id
	for _, tok := range []string{ta, admin} {
		w, resp := call(engine, http.MethodGet, "/api/v1/jobs/not-a-uuid", tok, "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, dto.ErrCodeInvalidID, resp.Error.Code)
	}

	w, resp := call(engine, http.MethodPut, "/api/v1/organization/roles/not-a-uuid", admin, "{}")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, dto.ErrCodeInvalidID, resp.Error.Code)
}

func TestRegisterAPI_Routes(t *testing.T) {
	engine, _ := newAPI(t)
	registered := map[string]bool{}
	for _, r := range engine.Routes() {
		registered[r.Method+" "+r.Path] = true
	}

	for _, route := range []string{
		"POST /api/v1/auth/register",
		"PUT /api/v1/auth/password",
		"PUT /api/v1/organization",
		"POST /api/v1/organization/members/:id/reactivate",
		"GET /api/v1/organization/members/:id/job-access",
		"DELETE /api/v1/organization/roles/:id",
		"GET /api/v1/jobs/:id/pdf",
		"DELETE /api/v1/jobs/:id/access/:user_id",
		"PUT /api/v1/candidates/:id/experience/:entry_id",
		"POST /api/v1/candidates/:id/documents",
		"GET /api/v1/documents/:id/download",
		"PUT /api/v1/applications/:id/rating",
		"GET /api/v1/applications/:id/history",
		"GET /api/v1/dashboard",
	} {
		assert.True(t, registered[route], route)
	}
}
