package recruiting

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/hireflow/backend/internal/domain/identity"
	"github.com/hireflow/backend/internal/domain/recruiting"
	"github.com/hireflow/backend/internal/domain/shared"
)

// MockJobRepository is a mock implementation of recruiting.JobRepository
type MockJobRepository struct {
	mock.Mock
}

func (m *MockJobRepository) FindByID(ctx context.Context, organizationID, id uuid.UUID) (*recruiting.Job, error) {
	args := m.Called(ctx, organizationID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*recruiting.Job), args.Error(1)
}

func (m *MockJobRepository) FindAll(ctx context.Context, viewer recruiting.Viewer, filter recruiting.JobFilter) ([]recruiting.JobListItem, int64, error) {
	args := m.Called(ctx, viewer, filter)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]recruiting.JobListItem), args.Get(1).(int64), args.Error(2)
}

func (m *MockJobRepository) CountApplications(ctx context.Context, organizationID, jobID uuid.UUID) (int64, error) {
	args := m.Called(ctx, organizationID, jobID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockJobRepository) Create(ctx context.Context, job *recruiting.Job) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

func (m *MockJobRepository) Update(ctx context.Context, job *recruiting.Job, expectedVersion int) error {
	args := m.Called(ctx, job, expectedVersion)
	return args.Error(0)
}

func (m *MockJobRepository) Delete(ctx context.Context, organizationID, id uuid.UUID) error {
	args := m.Called(ctx, organizationID, id)
	return args.Error(0)
}

// MockApplicationRepository is a mock implementation of recruiting.ApplicationRepository
type MockApplicationRepository struct {
	mock.Mock
}

func (m *MockApplicationRepository) FindByID(ctx context.Context, organizationID, id uuid.UUID) (*recruiting.JobApplication, error) {
	args := m.Called(ctx, organizationID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*recruiting.JobApplication), args.Error(1)
}

func (m *MockApplicationRepository) FindAll(ctx context.Context, viewer recruiting.Viewer, filter recruiting.ApplicationFilter) ([]recruiting.ApplicationListItem, int64, error) {
	args := m.Called(ctx, viewer, filter)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]recruiting.ApplicationListItem), args.Get(1).(int64), args.Error(2)
}

func (m *MockApplicationRepository) ExistsForCandidate(ctx context.Context, organizationID, jobID, candidateID uuid.UUID) (bool, error) {
	args := m.Called(ctx, organizationID, jobID, candidateID)
	return args.Bool(0), args.Error(1)
}

func (m *MockApplicationRepository) CountByCandidate(ctx context.Context, organizationID, candidateID uuid.UUID) (int64, error) {
	args := m.Called(ctx, organizationID, candidateID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockApplicationRepository) Create(ctx context.Context, app *recruiting.JobApplication) error {
	args := m.Called(ctx, app)
	return args.Error(0)
}

func (m *MockApplicationRepository) Update(ctx context.Context, app *recruiting.JobApplication, expectedVersion int) error {
	args := m.Called(ctx, app, expectedVersion)
	return args.Error(0)
}

func (m *MockApplicationRepository) Delete(ctx context.Context, organizationID, id uuid.UUID) error {
	args := m.Called(ctx, organizationID, id)
	return args.Error(0)
}

// MockHistoryRepository is a mock implementation of recruiting.ApplicationHistoryRepository
type MockHistoryRepository struct {
	mock.Mock
}

func (m *MockHistoryRepository) Append(ctx context.Context, entry *recruiting.ApplicationStatusHistory) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockHistoryRepository) FindByApplication(ctx context.Context, organizationID, applicationID uuid.UUID) ([]recruiting.ApplicationStatusHistory, error) {
	args := m.Called(ctx, organizationID, applicationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]recruiting.ApplicationStatusHistory), args.Error(1)
}

// MockCandidateRepository is a mock implementation of recruiting.CandidateRepository
type MockCandidateRepository struct {
	mock.Mock
}

func (m *MockCandidateRepository) FindByID(ctx context.Context, organizationID, id uuid.UUID) (*recruiting.CandidateProfile, error) {
	args := m.Called(ctx, organizationID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*recruiting.CandidateProfile), args.Error(1)
}

func (m *MockCandidateRepository) FindAll(ctx context.Context, organizationID uuid.UUID, filter recruiting.CandidateFilter) ([]*recruiting.CandidateProfile, int64, error) {
	args := m.Called(ctx, organizationID, filter)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*recruiting.CandidateProfile), args.Get(1).(int64), args.Error(2)
}

func (m *MockCandidateRepository) ExistsByEmail(ctx context.Context, organizationID uuid.UUID, email string, excludeID *uuid.UUID) (bool, error) {
	args := m.Called(ctx, organizationID, email, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockCandidateRepository) Save(ctx context.Context, candidate *recruiting.CandidateProfile) error {
	args := m.Called(ctx, candidate)
	return args.Error(0)
}

func (m *MockCandidateRepository) Delete(ctx context.Context, organizationID, id uuid.UUID) error {
	args := m.Called(ctx, organizationID, id)
	return args.Error(0)
}

// MockJobAccessRepository is a mock implementation of recruiting.JobAccessRepository
type MockJobAccessRepository struct {
	mock.Mock
}

func (m *MockJobAccessRepository) FindActive(ctx context.Context, organizationID, jobID, userID uuid.UUID) (*recruiting.JobAccessGrant, error) {
	args := m.Called(ctx, organizationID, jobID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*recruiting.JobAccessGrant), args.Error(1)
}

func (m *MockJobAccessRepository) HasActiveGrant(ctx context.Context, organizationID, jobID, userID uuid.UUID) (bool, error) {
	args := m.Called(ctx, organizationID, jobID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockJobAccessRepository) FindActiveByJob(ctx context.Context, organizationID, jobID uuid.UUID) ([]*recruiting.JobAccessGrant, error) {
	args := m.Called(ctx, organizationID, jobID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*recruiting.JobAccessGrant), args.Error(1)
}

func (m *MockJobAccessRepository) FindActiveByUser(ctx context.Context, organizationID, userID uuid.UUID) ([]*recruiting.JobAccessGrant, error) {
	args := m.Called(ctx, organizationID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*recruiting.JobAccessGrant), args.Error(1)
}

func (m *MockJobAccessRepository) Save(ctx context.Context, grant *recruiting.JobAccessGrant) error {
	args := m.Called(ctx, grant)
	return args.Error(0)
}

func (m *MockJobAccessRepository) RevokeAllForUser(ctx context.Context, organizationID, userID, revokedBy uuid.UUID) (int64, error) {
	args := m.Called(ctx, organizationID, userID, revokedBy)
	return args.Get(0).(int64), args.Error(1)
}

// MockDocumentRepository is a mock implementation of recruiting.DocumentRepository
type MockDocumentRepository struct {
	mock.Mock
}

func (m *MockDocumentRepository) FindByID(ctx context.Context, organizationID, id uuid.UUID) (*recruiting.CandidateDocument, error) {
	args := m.Called(ctx, organizationID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*recruiting.CandidateDocument), args.Error(1)
}

func (m *MockDocumentRepository) FindByCandidate(ctx context.Context, organizationID, candidateID uuid.UUID) ([]*recruiting.CandidateDocument, error) {
	args := m.Called(ctx, organizationID, candidateID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*recruiting.CandidateDocument), args.Error(1)
}

func (m *MockDocumentRepository) Save(ctx context.Context, doc *recruiting.CandidateDocument) error {
	args := m.Called(ctx, doc)
	return args.Error(0)
}

func (m *MockDocumentRepository) Delete(ctx context.Context, organizationID, id uuid.UUID) error {
	args := m.Called(ctx, organizationID, id)
	return args.Error(0)
}

func (m *MockDocumentRepository) FindStalePending(ctx context.Context, createdBefore time.Time, limit int) ([]*recruiting.CandidateDocument, error) {
	args := m.Called(ctx, createdBefore, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*recruiting.CandidateDocument), args.Error(1)
}

// MockDashboardRepository is a mock implementation of recruiting.DashboardRepository
type MockDashboardRepository struct {
	mock.Mock
}

func (m *MockDashboardRepository) Stats(ctx context.Context, viewer recruiting.Viewer, now time.Time) (*recruiting.DashboardStats, error) {
	args := m.Called(ctx, viewer, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*recruiting.DashboardStats), args.Error(1)
}

// MockObjectStorage is a mock implementation of ObjectStorage
type MockObjectStorage struct {
	mock.Mock
}

func (m *MockObjectStorage) PresignUpload(ctx context.Context, key, contentType, contentMD5 string, size int64, expiresIn time.Duration) (*PresignedRequest, error) {
	args := m.Called(ctx, key, contentType, contentMD5, size, expiresIn)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*PresignedRequest), args.Error(1)
}

func (m *MockObjectStorage) PresignDownload(ctx context.Context, key, fileName string, expiresIn time.Duration) (*PresignedRequest, error) {
	args := m.Called(ctx, key, fileName, expiresIn)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*PresignedRequest), args.Error(1)
}

func (m *MockObjectStorage) StatObject(ctx context.Context, key string) (*ObjectInfo, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ObjectInfo), args.Error(1)
}

func (m *MockObjectStorage) DeleteObject(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

// MockUserProfileRepository is a mock implementation of identity.UserProfileRepository
type MockUserProfileRepository struct {
	mock.Mock
}

func (m *MockUserProfileRepository) FindByID(ctx context.Context, organizationID, id uuid.UUID) (*identity.UserProfile, error) {
	args := m.Called(ctx, organizationID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.UserProfile), args.Error(1)
}

func (m *MockUserProfileRepository) FindByEmail(ctx context.Context, email string) (*identity.UserProfile, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.UserProfile), args.Error(1)
}

func (m *MockUserProfileRepository) FindByIDs(ctx context.Context, organizationID uuid.UUID, ids []uuid.UUID) ([]*identity.UserProfile, error) {
	args := m.Called(ctx, organizationID, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*identity.UserProfile), args.Error(1)
}

func (m *MockUserProfileRepository) FindAll(ctx context.Context, organizationID uuid.UUID, filter identity.MemberFilter) ([]*identity.UserProfile, int64, error) {
	args := m.Called(ctx, organizationID, filter)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*identity.UserProfile), args.Get(1).(int64), args.Error(2)
}

func (m *MockUserProfileRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserProfileRepository) CountActiveWithRole(ctx context.Context, organizationID, roleID uuid.UUID) (int64, error) {
	args := m.Called(ctx, organizationID, roleID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserProfileRepository) Save(ctx context.Context, user *identity.UserProfile) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

// MockRoleRepository is a mock implementation of identity.RoleRepository
type MockRoleRepository struct {
	mock.Mock
}

func (m *MockRoleRepository) FindByID(ctx context.Context, organizationID, id uuid.UUID) (*identity.Role, error) {
	args := m.Called(ctx, organizationID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Role), args.Error(1)
}

func (m *MockRoleRepository) FindByCode(ctx context.Context, organizationID uuid.UUID, code string) (*identity.Role, error) {
	args := m.Called(ctx, organizationID, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Role), args.Error(1)
}

func (m *MockRoleRepository) FindByCodes(ctx context.Context, organizationID uuid.UUID, codes []string) ([]*identity.Role, error) {
	args := m.Called(ctx, organizationID, codes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*identity.Role), args.Error(1)
}

func (m *MockRoleRepository) FindByIDs(ctx context.Context, organizationID uuid.UUID, ids []uuid.UUID) ([]*identity.Role, error) {
	args := m.Called(ctx, organizationID, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*identity.Role), args.Error(1)
}

func (m *MockRoleRepository) FindAll(ctx context.Context, organizationID uuid.UUID) ([]*identity.Role, error) {
	args := m.Called(ctx, organizationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*identity.Role), args.Error(1)
}

func (m *MockRoleRepository) ExistsByCode(ctx context.Context, organizationID uuid.UUID, code string) (bool, error) {
	args := m.Called(ctx, organizationID, code)
	return args.Bool(0), args.Error(1)
}

func (m *MockRoleRepository) CountUsersWithRole(ctx context.Context, organizationID, roleID uuid.UUID) (int64, error) {
	args := m.Called(ctx, organizationID, roleID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRoleRepository) Save(ctx context.Context, role *identity.Role) error {
	args := m.Called(ctx, role)
	return args.Error(0)
}

func (m *MockRoleRepository) Delete(ctx context.Context, organizationID, id uuid.UUID) error {
	args := m.Called(ctx, organizationID, id)
	return args.Error(0)
}

// MockOrganizationRepository is a mock implementation of identity.OrganizationRepository
type MockOrganizationRepository struct {
	mock.Mock
}

func (m *MockOrganizationRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.Organization, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Organization), args.Error(1)
}

func (m *MockOrganizationRepository) FindBySlug(ctx context.Context, slug string) (*identity.Organization, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Organization), args.Error(1)
}

func (m *MockOrganizationRepository) ExistsBySlug(ctx context.Context, slug string) (bool, error) {
	args := m.Called(ctx, slug)
	return args.Bool(0), args.Error(1)
}

func (m *MockOrganizationRepository) Save(ctx context.Context, org *identity.Organization) error {
	args := m.Called(ctx, org)
	return args.Error(0)
}

func (m *MockOrganizationRepository) Register(ctx context.Context, org *identity.Organization, roles []*identity.Role, admin *identity.UserProfile) error {
	args := m.Called(ctx, org, roles, admin)
	return args.Error(0)
}

// MockJobRenderer is a mock implementation of JobRenderer
type MockJobRenderer struct {
	mock.Mock
}

func (m *MockJobRenderer) RenderJobPDF(ctx context.Context, posting JobPosting) ([]byte, error) {
	args := m.Called(ctx, posting)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// recordingPublisher keeps every published event
type recordingPublisher struct {
	mu     sync.Mutex
	events []shared.DomainEvent
}

func (p *recordingPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, events...)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.EventType()
	}
	return out
}

// fakeDashboardCache is an in-process DashboardCache that counts invalidations
type fakeDashboardCache struct {
	mu            sync.Mutex
	entries       map[string]*recruiting.DashboardStats
	generation    int64
	invalidations int
}

func newFakeDashboardCache() *fakeDashboardCache {
	return &fakeDashboardCache{entries: make(map[string]*recruiting.DashboardStats)}
}

func (c *fakeDashboardCache) Get(_ context.Context, organizationID uuid.UUID, scopeKey string) (*recruiting.DashboardStats, int64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	stats, ok := c.entries[organizationID.String()+"|"+scopeKey]
	return stats, c.generation, ok
}

func (c *fakeDashboardCache) Set(_ context.Context, organizationID uuid.UUID, generation int64, scopeKey string, stats *recruiting.DashboardStats) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if generation != c.generation {
		return
	}
	c.entries[organizationID.String()+"|"+scopeKey] = stats
}

func (c *fakeDashboardCache) Invalidate(_ context.Context, _ uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*recruiting.DashboardStats)
	c.generation++
	c.invalidations++
}

// countingMetrics records metric calls
type countingMetrics struct {
	created     []string
	transitions []string
	published   int
}

func (m *countingMetrics) ApplicationCreated(_ context.Context, _ uuid.UUID, source string) {
	m.created = append(m.created, source)
}

func (m *countingMetrics) ApplicationStatusChanged(_ context.Context, _ uuid.UUID, from, to string) {
	m.transitions = append(m.transitions, from+"->"+to)
}

func (m *countingMetrics) JobPublished(context.Context, uuid.UUID) {
	m.published++
}

// passthroughSanitizer derives the text by stripping nothing; the real sanitizer is tested on its own
type passthroughSanitizer struct{}

func (passthroughSanitizer) SanitizeDescription(raw string) recruiting.JobDescription {
	return recruiting.JobDescription{HTML: raw, Text: raw}
}

// world is an organization with one viewer per role
type world struct {
	orgID   uuid.UUID
	admin   recruiting.Viewer
	hr      recruiting.Viewer
	ta      recruiting.Viewer
	noRoles recruiting.Viewer
}

func newWorld() world {
	orgID := uuid.New()
	return world{
		orgID:   orgID,
		admin:   recruiting.NewViewer(orgID, uuid.New(), []string{identity.RoleAdmin}),
		hr:      recruiting.NewViewer(orgID, uuid.New(), []string{identity.RoleHR}),
		ta:      recruiting.NewViewer(orgID, uuid.New(), []string{identity.RoleTalentAcquisition}),
		noRoles: recruiting.NewViewer(orgID, uuid.New(), nil),
	}
}

func (w world) draftJob(t *testing.T, title string) *recruiting.Job {
	t.Helper()
	job, err := recruiting.NewJob(w.orgID, w.hr.UserID,
		recruiting.JobDetails{Title: title, Department: "Engineering", Location: "Remote"},
		recruiting.JobDescription{HTML: "<p>Build</p>", Text: "Build"})
	require.NoError(t, err)
	job.ClearDomainEvents()
	return job
}

func (w world) openJob(t *testing.T, title string) *recruiting.Job {
	t.Helper()
	job := w.draftJob(t, title)
	require.NoError(t, job.Publish())
	job.ClearDomainEvents()
	return job
}

func (w world) candidate(t *testing.T, email string) *recruiting.CandidateProfile {
	t.Helper()
	c, err := recruiting.NewCandidateProfile(w.orgID, w.hr.UserID, recruiting.CandidateDetails{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     email,
		Skills:    []string{"Go", "SQL"},
	})
	require.NoError(t, err)
	c.ClearDomainEvents()
	return c
}

func (w world) application(t *testing.T, job *recruiting.Job, candidate *recruiting.CandidateProfile) *recruiting.JobApplication {
	t.Helper()
	app, err := recruiting.NewJobApplication(job, candidate.ID, w.hr.UserID, recruiting.SourceReferral, "Hello")
	require.NoError(t, err)
	app.ClearDomainEvents()
	return app
}
