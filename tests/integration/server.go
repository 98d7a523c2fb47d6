package integration

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	identityapp "github.com/hireflow/backend/internal/application/identity"
	recruitingapp "github.com/hireflow/backend/internal/application/recruiting"
	"github.com/hireflow/backend/internal/infrastructure/auth"
	"github.com/hireflow/backend/internal/infrastructure/cache"
	"github.com/hireflow/backend/internal/infrastructure/config"
	"github.com/hireflow/backend/internal/infrastructure/event"
	"github.com/hireflow/backend/internal/infrastructure/logger"
	"github.com/hireflow/backend/internal/infrastructure/persistence"
	"github.com/hireflow/backend/internal/infrastructure/richtext"
	"github.com/hireflow/backend/internal/interfaces/http/handler"
	"github.com/hireflow/backend/internal/interfaces/http/middleware"
	"github.com/hireflow/backend/internal/interfaces/http/router"
	"github.com/hireflow/backend/tests/testutil"
)

// TestServer is the API wired the way cmd/server wires it, minus telemetry
// and printing. Object storage is off unless WithObjectStorage is given.
type TestServer struct {
	DB     *TestDB
	Engine *gin.Engine
	Events *testutil.MockEventHandler
	JWT    *auth.JWTService
}

type serverOptions struct {
	storage recruitingapp.ObjectStorage
}

// ServerOption customizes NewTestServer
type ServerOption func(*serverOptions)

// WithObjectStorage enables candidate documents on top of store
func WithObjectStorage(store recruitingapp.ObjectStorage) ServerOption {
	return func(o *serverOptions) {
		o.storage = store
	}
}

// NewTestServer builds the API on top of the shared test database
func NewTestServer(t *testing.T, opts ...ServerOption) *TestServer {
	t.Helper()
	var options serverOptions
	for _, opt := range opts {
		opt(&options)
	}
	testDB := NewTestDB(t)
	log := zap.NewNop()

	jwtService := auth.NewJWTService(config.JWTConfig{
		Secret:                 "integration-access-secret-0123456789abcdef",
		RefreshSecret:          "integration-refresh-secret-0123456789abcdef",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 24 * time.Hour,
		Issuer:                 "hireflow-test",
		MaxRefreshCount:        5,
	})
	blacklist := auth.NewMemoryTokenBlacklist(time.Minute)
	dashboardCache := cache.NewMemoryDashboardCache(time.Minute)

	db := testDB.DB
	orgRepo := persistence.NewGormOrganizationRepository(db)
	userRepo := persistence.NewGormUserProfileRepository(db)
	roleRepo := persistence.NewGormRoleRepository(db)
	jobRepo := persistence.NewGormJobRepository(db)
	accessRepo := persistence.NewGormJobAccessRepository(db)
	candidateRepo := persistence.NewGormCandidateRepository(db)
	appRepo := persistence.NewGormApplicationRepository(db)
	historyRepo := persistence.NewGormApplicationHistoryRepository(db)
	documentRepo := persistence.NewGormDocumentRepository(db)
	dashboardRepo := persistence.NewGormDashboardRepository(db)

	events := testutil.NewMockEventHandler()
	eventBus := event.NewInMemoryEventBus(log)
	eventBus.Subscribe(recruitingapp.NewStatusHistoryHandler(historyRepo, dashboardCache, nil, log))
	eventBus.Subscribe(events)
	require.NoError(t, eventBus.Start(context.Background()))
	t.Cleanup(func() { _ = eventBus.Stop(context.Background()) })

	authService := identityapp.NewAuthService(orgRepo, userRepo, roleRepo, jwtService, blacklist, log)
	orgService := identityapp.NewOrganizationService(orgRepo, userRepo, jwtService, eventBus, log)
	memberService := identityapp.NewMemberService(userRepo, roleRepo, accessRepo, blacklist, jwtService, eventBus, log)
	roleService := identityapp.NewRoleService(roleRepo, log)

	jobService := recruitingapp.NewJobService(jobRepo, accessRepo, orgRepo, richtext.NewSanitizer(), log)
	applicationService := recruitingapp.NewApplicationService(appRepo, historyRepo, jobRepo, candidateRepo, accessRepo, log)
	accessService := recruitingapp.NewAccessService(accessRepo, jobRepo, userRepo, roleRepo, log)
	candidateService := recruitingapp.NewCandidateService(candidateRepo, appRepo, log)
	documentService := recruitingapp.NewDocumentService(documentRepo, candidateRepo, options.storage, recruitingapp.DocumentSettings{
		MaxUploadSize: 5 << 20,
	}, log)
	dashboardService := recruitingapp.NewDashboardService(dashboardRepo, dashboardCache, log)

	jobService.SetEventPublisher(eventBus)
	jobService.SetDashboardCache(dashboardCache)
	applicationService.SetEventPublisher(eventBus)
	applicationService.SetDashboardCache(dashboardCache)
	accessService.SetEventPublisher(eventBus)
	accessService.SetDashboardCache(dashboardCache)
	candidateService.SetEventPublisher(eventBus)
	candidateService.SetDocumentStorage(documentRepo, options.storage)
	documentService.SetEventPublisher(eventBus)

	middleware.SetupValidator()
	engine := gin.New()
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))

	jwtConfig := middleware.DefaultJWTConfig(jwtService)
	jwtConfig.TokenBlacklist = blacklist
	r := router.NewRouter(engine, router.WithMiddleware(middleware.JWTAuthMiddlewareWithConfig(jwtConfig)))
	router.RegisterAPI(r, router.Handlers{
		System:       handler.NewSystemHandler("test", map[string]handler.HealthCheck{"database": func(ctx context.Context) error { return testDB.SqlDB.PingContext(ctx) }}),
		Auth:         handler.NewAuthHandler(authService, orgService, config.CookieConfig{SameSite: "lax"}),
		Organization: handler.NewOrganizationHandler(orgService, memberService, roleService),
		Job:          handler.NewJobHandler(jobService, accessService),
		Candidate:    handler.NewCandidateHandler(candidateService, documentService),
		Application:  handler.NewApplicationHandler(applicationService, dashboardService),
	})

	return &TestServer{DB: testDB, Engine: engine, Events: events, JWT: jwtService}
}

// Client returns an unauthenticated API client
func (s *TestServer) Client(t *testing.T) *testutil.APIClient {
	return testutil.NewAPIClient(t, s.Engine)
}

// Org is a registered organization with its administrator signed in
type Org struct {
	ID    string
	Slug  string
	Admin *testutil.APIClient
	// AdminEmail signs the administrator in again
	AdminEmail string
}

type authResult struct {
	Token struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
	} `json:"token"`
	User struct {
		ID    string   `json:"id"`
		Email string   `json:"email"`
		Roles []string `json:"roles"`
	} `json:"user"`
	Organization struct {
		ID   string `json:"id"`
		Slug string `json:"slug"`
	} `json:"organization"`
}

const testPassword = "Sup3r-secret"

// RegisterOrg registers a fresh organization and signs its administrator in
func (s *TestServer) RegisterOrg(t *testing.T, name string) *Org {
	t.Helper()
	slug := testutil.UniqueSlug("org")
	email := "admin@" + slug + ".test"

	resp := s.Client(t).Post("/api/v1/auth/register", map[string]any{
		"organization_name": name,
		"slug":              slug,
		"full_name":         "Ada Admin",
		"email":             email,
		"password":          testPassword,
	}).RequireStatus(t, http.StatusCreated)

	var result authResult
	resp.Decode(t, &result)
	require.NotEmpty(t, result.Token.AccessToken)
	return &Org{
		ID:         result.Organization.ID,
		Slug:       slug,
		Admin:      s.Client(t).WithToken(result.Token.AccessToken),
		AdminEmail: email,
	}
}

// AddMember adds a member with the given roles and returns a client signed in as them
func (s *TestServer) AddMember(t *testing.T, org *Org, localPart string, roleCodes ...string) (string, *testutil.APIClient) {
	t.Helper()
	email := localPart + "@" + org.Slug + ".test"
	resp := org.Admin.Post("/api/v1/organization/members", map[string]any{
		"email":      email,
		"full_name":  "Member " + localPart,
		"password":   testPassword,
		"role_codes": roleCodes,
	}).RequireStatus(t, http.StatusCreated)

	var member struct {
		ID string `json:"id"`
	}
	resp.Decode(t, &member)
	return member.ID, s.Login(t, email)
}

// Login signs a member in
func (s *TestServer) Login(t *testing.T, email string) *testutil.APIClient {
	t.Helper()
	resp := s.Client(t).Post("/api/v1/auth/login", map[string]any{
		"email":    email,
		"password": testPassword,
	}).RequireStatus(t, http.StatusOK)

	var result authResult
	resp.Decode(t, &result)
	return s.Client(t).WithToken(result.Token.AccessToken)
}
