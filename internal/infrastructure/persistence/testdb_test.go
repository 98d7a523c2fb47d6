package persistence

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hireflow/backend/internal/domain/identity"
	"github.com/hireflow/backend/internal/domain/recruiting"
	"github.com/hireflow/backend/internal/infrastructure/persistence/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupTestDB opens an in-memory SQLite database with every table migrated
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	// every pooled connection would get its own in-memory database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.AllModels()...))
	return db
}

// fixture holds one registered organization and its system roles
type fixture struct {
	db    *gorm.DB
	org   *identity.Organization
	roles map[string]*identity.Role
	admin *identity.UserProfile
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := setupTestDB(t)

	org, err := identity.NewOrganization("Acme Hiring", "acme-"+uuid.NewString()[:8])
	require.NoError(t, err)
	roles, err := identity.NewSystemRoles(org.ID)
	require.NoError(t, err)

	f := &fixture{db: db, org: org, roles: make(map[string]*identity.Role)}
	for _, r := range roles {
		f.roles[r.Code] = r
	}

	admin, err := identity.NewUserProfile(org.ID, "admin@"+org.Slug+".test", "Ada Admin", "password1")
	require.NoError(t, err)
	require.NoError(t, admin.SetRoles([]uuid.UUID{f.roles[identity.RoleAdmin].ID}))
	f.admin = admin

	require.NoError(t, NewGormOrganizationRepository(db).Register(t.Context(), org, roles, admin))
	return f
}

func (f *fixture) addMember(t *testing.T, email string, roleCodes ...string) *identity.UserProfile {
	t.Helper()
	user, err := identity.NewUserProfile(f.org.ID, email, "Member "+email, "password1")
	require.NoError(t, err)
	if len(roleCodes) == 0 {
		// members only lose every role when they are removed
		user.Remove()
	} else {
		ids := make([]uuid.UUID, 0, len(roleCodes))
		for _, c := range roleCodes {
			ids = append(ids, f.roles[c].ID)
		}
		require.NoError(t, user.SetRoles(ids))
	}
	require.NoError(t, NewGormUserProfileRepository(f.db).Save(t.Context(), user))
	return user
}

func (f *fixture) addJob(t *testing.T, title string, publish bool) *recruiting.Job {
	t.Helper()
	job, err := recruiting.NewJob(f.org.ID, f.admin.ID, recruiting.JobDetails{
		Title:      title,
		Department: "Product",
		Location:   "Berlin",
	}, recruiting.JobDescription{HTML: "<p>" + title + "</p>", Text: title})
	require.NoError(t, err)
	if publish {
		require.NoError(t, job.Publish())
	}
	require.NoError(t, NewGormJobRepository(f.db).Create(t.Context(), job))
	return job
}

func (f *fixture) addCandidate(t *testing.T, first, last, email string, skills ...string) *recruiting.CandidateProfile {
	t.Helper()
	c, err := recruiting.NewCandidateProfile(f.org.ID, f.admin.ID, recruiting.CandidateDetails{
		FirstName: first,
		LastName:  last,
		Email:     email,
		Skills:    skills,
	})
	require.NoError(t, err)
	require.NoError(t, NewGormCandidateRepository(f.db).Save(t.Context(), c))
	return c
}

func (f *fixture) apply(t *testing.T, job *recruiting.Job, candidate *recruiting.CandidateProfile) *recruiting.JobApplication {
	t.Helper()
	app, err := recruiting.NewJobApplication(job, candidate.ID, f.admin.ID, recruiting.SourceReferral, "")
	require.NoError(t, err)
	require.NoError(t, NewGormApplicationRepository(f.db).Create(t.Context(), app))
	return app
}

func (f *fixture) grant(t *testing.T, job *recruiting.Job, user *identity.UserProfile) *recruiting.JobAccessGrant {
	t.Helper()
	g, err := recruiting.NewJobAccessGrant(job, user.ID, f.admin.ID)
	require.NoError(t, err)
	require.NoError(t, NewGormJobAccessRepository(f.db).Save(t.Context(), g))
	return g
}

func (f *fixture) viewer(user *identity.UserProfile, roleCodes ...string) recruiting.Viewer {
	return recruiting.NewViewer(f.org.ID, user.ID, roleCodes)
}

func daysAgo(n int) time.Time {
	return time.Now().AddDate(0, 0, -n)
}
