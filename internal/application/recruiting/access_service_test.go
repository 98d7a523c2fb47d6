package recruiting

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hireflow/backend/internal/domain/identity"
	"github.com/hireflow/backend/internal/domain/recruiting"
	"github.com/hireflow/backend/internal/domain/shared"
)

type accessHarness struct {
	access    *MockJobAccessRepository
	jobs      *MockJobRepository
	users     *MockUserProfileRepository
	roles     *MockRoleRepository
	cache     *fakeDashboardCache
	publisher *recordingPublisher
	svc       *AccessService
}

func newAccessHarness() *accessHarness {
	h := &accessHarness{
		access:    new(MockJobAccessRepository),
		jobs:      new(MockJobRepository),
		users:     new(MockUserProfileRepository),
		roles:     new(MockRoleRepository),
		cache:     newFakeDashboardCache(),
		publisher: &recordingPublisher{},
	}
	h.svc = NewAccessService(h.access, h.jobs, h.users, h.roles, zap.NewNop())
	h.svc.SetDashboardCache(h.cache)
	h.svc.SetEventPublisher(h.publisher)
	return h
}

// member builds a member holding a single role with the given code
func member(t *testing.T, orgID uuid.UUID, email, roleCode string) (*identity.UserProfile, *identity.Role) {
	t.Helper()
	role, err := identity.NewRole(orgID, roleCode, roleCode)
	require.NoError(t, err)
	user, err := identity.NewUserProfile(orgID, email, "Team Member", "Password123")
	require.NoError(t, err)
	require.NoError(t, user.SetRoles([]uuid.UUID{role.ID}))
	user.ClearDomainEvents()
	return user, role
}

func TestAccessService_Grant(t *testing.T) {
	ctx := context.Background()
	w := newWorld()
	job := w.openJob(t, "Backend Engineer")

	t.Run("grants a talent acquisition member", func(t *testing.T) {
		h := newAccessHarness()
		user, role := member(t, w.orgID, "ta@example.com", identity.RoleTalentAcquisition)
		h.jobs.On("FindByID", ctx, w.orgID, job.ID).Return(job, nil)
		h.users.On("FindByID", ctx, w.orgID, user.ID).Return(user, nil)
		h.roles.On("FindByIDs", ctx, w.orgID, user.RoleIDs).Return([]*identity.Role{role}, nil)
		h.access.On("FindActive", ctx, w.orgID, job.ID, user.ID).Return(nil, shared.ErrNotFound)
		h.access.On("Save", ctx, mock.AnythingOfType("*recruiting.JobAccessGrant")).Return(nil)

		resp, err := h.svc.Grant(ctx, w.hr, job.ID, GrantAccessRequest{UserID: user.ID})
		require.NoError(t, err)
		assert.Equal(t, user.ID, resp.UserID)
		assert.Equal(t, w.hr.UserID, resp.GrantedBy)
		assert.Equal(t, "ta@example.com", resp.UserEmail)
		assert.Equal(t, job.Title, resp.JobTitle)
		assert.Equal(t, []string{recruiting.EventTypeJobAccessGranted}, h.publisher.types())
		assert.Equal(t, 1, h.cache.invalidations)
	})

	t.Run("granting twice returns the existing grant", func(t *testing.T) {
		h := newAccessHarness()
		user, role := member(t, w.orgID, "ta@example.com", identity.RoleTalentAcquisition)
		existing, err := recruiting.NewJobAccessGrant(job, user.ID, w.admin.UserID)
		require.NoError(t, err)
		h.jobs.On("FindByID", ctx, w.orgID, job.ID).Return(job, nil)
		h.users.On("FindByID", ctx, w.orgID, user.ID).Return(user, nil)
		h.roles.On("FindByIDs", ctx, w.orgID, user.RoleIDs).Return([]*identity.Role{role}, nil)
		h.access.On("FindActive", ctx, w.orgID, job.ID, user.ID).Return(existing, nil)

		resp, err := h.svc.Grant(ctx, w.hr, job.ID, GrantAccessRequest{UserID: user.ID})
		require.NoError(t, err)
		assert.Equal(t, existing.ID, resp.ID)
		h.access.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
		assert.Empty(t, h.publisher.types())
	})

	t.Run("hr members cannot receive grants", func(t *testing.T) {
		h := newAccessHarness()
		user, role := member(t, w.orgID, "hr2@example.com", identity.RoleHR)
		h.jobs.On("FindByID", ctx, w.orgID, job.ID).Return(job, nil)
		h.users.On("FindByID", ctx, w.orgID, user.ID).Return(user, nil)
		h.roles.On("FindByIDs", ctx, w.orgID, user.RoleIDs).Return([]*identity.Role{role}, nil)

		_, err := h.svc.Grant(ctx, w.hr, job.ID, GrantAccessRequest{UserID: user.ID})
		assert.True(t, errors.Is(err, recruiting.ErrGrantNotApplicable))
	})

	t.Run("deactivated members cannot receive grants", func(t *testing.T) {
		h := newAccessHarness()
		user, _ := member(t, w.orgID, "gone@example.com", identity.RoleTalentAcquisition)
		require.NoError(t, user.Deactivate())
		h.jobs.On("FindByID", ctx, w.orgID, job.ID).Return(job, nil)
		h.users.On("FindByID", ctx, w.orgID, user.ID).Return(user, nil)

		_, err := h.svc.Grant(ctx, w.hr, job.ID, GrantAccessRequest{UserID: user.ID})
		assert.True(t, errors.Is(err, recruiting.ErrGrantNotApplicable))
	})

	t.Run("unknown member", func(t *testing.T) {
		h := newAccessHarness()
		missing := uuid.New()
		h.jobs.On("FindByID", ctx, w.orgID, job.ID).Return(job, nil)
		h.users.On("FindByID", ctx, w.orgID, missing).Return(nil, shared.ErrNotFound)

		_, err := h.svc.Grant(ctx, w.hr, job.ID, GrantAccessRequest{UserID: missing})
		assert.Equal(t, ErrMemberNotFound, err)
	})
}

func TestAccessService_Revoke(t *testing.T) {
	ctx := context.Background()
	w := newWorld()
	job := w.openJob(t, "Backend Engineer")
	userID := uuid.New()

	h := newAccessHarness()
	h.jobs.On("FindByID", ctx, w.orgID, job.ID).Return(job, nil)
	h.access.On("FindActive", ctx, w.orgID, job.ID, userID).Return(nil, shared.ErrNotFound).Once()
	assert.Equal(t, recruiting.ErrGrantNotFound, h.svc.Revoke(ctx, w.hr, job.ID, userID))

	grant, err := recruiting.NewJobAccessGrant(job, userID, w.admin.UserID)
	require.NoError(t, err)
	h.access.On("FindActive", ctx, w.orgID, job.ID, userID).Return(grant, nil)
	h.access.On("Save", ctx, grant).Return(nil)

	require.NoError(t, h.svc.Revoke(ctx, w.hr, job.ID, userID))
	assert.False(t, grant.IsActive())
	assert.Equal(t, w.hr.UserID, *grant.RevokedBy)
	assert.Equal(t, []string{recruiting.EventTypeJobAccessRevoked}, h.publisher.types())
}

func TestAccessService_Lists(t *testing.T) {
	ctx := context.Background()
	w := newWorld()
	job := w.openJob(t, "Backend Engineer")
	user, _ := member(t, w.orgID, "ta@example.com", identity.RoleTalentAcquisition)
	grant, err := recruiting.NewJobAccessGrant(job, user.ID, w.admin.UserID)
	require.NoError(t, err)

	h := newAccessHarness()
	h.jobs.On("FindByID", ctx, w.orgID, job.ID).Return(job, nil)
	h.access.On("FindActiveByJob", ctx, w.orgID, job.ID).Return([]*recruiting.JobAccessGrant{grant}, nil)
	h.users.On("FindByIDs", ctx, w.orgID, []uuid.UUID{user.ID}).Return([]*identity.UserProfile{user}, nil)

	byJob, err := h.svc.ListByJob(ctx, w.hr, job.ID)
	require.NoError(t, err)
	require.Len(t, byJob, 1)
	assert.Equal(t, "Team Member", byJob[0].UserName)

	archived := uuid.New()
	orphan := &recruiting.JobAccessGrant{JobID: archived, UserID: user.ID}
	h.users.On("FindByID", ctx, w.orgID, user.ID).Return(user, nil)
	h.access.On("FindActiveByUser", ctx, w.orgID, user.ID).Return([]*recruiting.JobAccessGrant{grant, orphan}, nil)
	h.jobs.On("FindByID", ctx, w.orgID, archived).Return(nil, shared.ErrNotFound)

	byUser, err := h.svc.ListByUser(ctx, w.hr, user.ID)
	require.NoError(t, err)
	require.Len(t, byUser, 1, "grants on deleted jobs are skipped")
	assert.Equal(t, job.Title, byUser[0].JobTitle)
}
