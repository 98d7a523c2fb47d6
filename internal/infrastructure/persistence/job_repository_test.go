package persistence

import (
	"context"
	"testing"

	"github.com/hireflow/backend/internal/domain/identity"
	"github.com/hireflow/backend/internal/domain/recruiting"
	"github.com/hireflow/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormJobRepository_FindAll_Visibility(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	repo := NewGormJobRepository(f.db)

	backend := f.addJob(t, "Backend Engineer", true)
	f.addJob(t, "Designer", false)
	ta := f.addMember(t, "ta@example.com", identity.RoleTalentAcquisition)
	nobody := f.addMember(t, "nobody@example.com")
	f.grant(t, backend, ta)

	t.Run("admin sees every job", func(t *testing.T) {
		items, total, err := repo.FindAll(ctx, f.viewer(f.admin, identity.RoleAdmin), recruiting.JobFilter{})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		assert.Len(t, items, 2)
	})

	t.Run("talent acquisition sees granted jobs", func(t *testing.T) {
		items, total, err := repo.FindAll(ctx, f.viewer(ta, identity.RoleTalentAcquisition), recruiting.JobFilter{})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		assert.Equal(t, backend.ID, items[0].ID)
	})

	t.Run("revoked grant hides job", func(t *testing.T) {
		n, err := NewGormJobAccessRepository(f.db).RevokeAllForUser(ctx, f.org.ID, ta.ID, f.admin.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)

		_, total, err := repo.FindAll(ctx, f.viewer(ta, identity.RoleTalentAcquisition), recruiting.JobFilter{})
		require.NoError(t, err)
		assert.Zero(t, total)
	})

	t.Run("member without roles sees nothing", func(t *testing.T) {
		items, total, err := repo.FindAll(ctx, f.viewer(nobody), recruiting.JobFilter{})
		require.NoError(t, err)
		assert.Zero(t, total)
		assert.Empty(t, items)
	})
}

func TestGormJobRepository_FindAll_Filters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	repo := NewGormJobRepository(f.db)
	admin := f.viewer(f.admin, identity.RoleAdmin)

	backend := f.addJob(t, "Backend Engineer", true)
	f.addJob(t, "Frontend Engineer", true)
	f.addJob(t, "100% Remote Recruiter", false)

	c1 := f.addCandidate(t, "Ann", "Lee", "ann@example.com")
	c2 := f.addCandidate(t, "Bob", "Ray", "bob@example.com")
	f.apply(t, backend, c1)
	f.apply(t, backend, c2)

	t.Run("search matches title", func(t *testing.T) {
		filter := recruiting.JobFilter{Filter: shared.Filter{Search: "engineer"}}
		_, total, err := repo.FindAll(ctx, admin, filter)
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
	})

	t.Run("search matches department and location", func(t *testing.T) {
		for _, term := range []string{"PRODUCT", "berlin"} {
			filter := recruiting.JobFilter{Filter: shared.Filter{Search: term}}
			_, total, err := repo.FindAll(ctx, admin, filter)
			require.NoError(t, err)
			assert.Equal(t, int64(3), total, term)
		}
	})

	t.Run("wildcards are literal", func(t *testing.T) {
		filter := recruiting.JobFilter{Filter: shared.Filter{Search: "100%"}}
		items, total, err := repo.FindAll(ctx, admin, filter)
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		assert.Equal(t, "100% Remote Recruiter", items[0].Title)
	})

	t.Run("status filter", func(t *testing.T) {
		filter := recruiting.JobFilter{Statuses: []recruiting.JobStatus{recruiting.JobStatusDraft}}
		_, total, err := repo.FindAll(ctx, admin, filter)
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
	})

	t.Run("items carry application count", func(t *testing.T) {
		filter := recruiting.JobFilter{Filter: shared.Filter{OrderBy: "title", OrderDir: "asc"}}
		items, _, err := repo.FindAll(ctx, admin, filter)
		require.NoError(t, err)
		require.Len(t, items, 3)
		assert.Equal(t, "Backend Engineer", items[1].Title)
		assert.Equal(t, int64(2), items[1].ApplicationCount)
		assert.Zero(t, items[2].ApplicationCount)
	})

	t.Run("page size bounds the page", func(t *testing.T) {
		filter := recruiting.JobFilter{Filter: shared.Filter{Page: 2, PageSize: 2}}
		items, total, err := repo.FindAll(ctx, admin, filter)
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		assert.Len(t, items, 1)
	})
}

func TestGormJobRepository_Update(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	repo := NewGormJobRepository(f.db)
	job := f.addJob(t, "Data Engineer", false)

	loaded, err := repo.FindByID(ctx, f.org.ID, job.ID)
	require.NoError(t, err)
	expected := loaded.Version

	details := loaded.JobDetails
	details.Department = ""
	require.NoError(t, loaded.Update(details, loaded.Description))
	require.NoError(t, loaded.Publish())
	require.NoError(t, repo.Update(ctx, loaded, expected))

	stored, err := repo.FindByID(ctx, f.org.ID, job.ID)
	require.NoError(t, err)
	assert.Equal(t, recruiting.JobStatusOpen, stored.Status)
	assert.Empty(t, stored.Department)
	assert.Equal(t, loaded.Version, stored.Version)

	t.Run("stale version conflicts", func(t *testing.T) {
		require.NoError(t, job.Publish())
		err := repo.Update(ctx, job, expected)
		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
	})
}

func TestGormJobRepository_Delete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	repo := NewGormJobRepository(f.db)
	job := f.addJob(t, "Data Engineer", false)

	count, err := repo.CountApplications(ctx, f.org.ID, job.ID)
	require.NoError(t, err)
	assert.Zero(t, count)

	require.NoError(t, repo.Delete(ctx, f.org.ID, job.ID))
	_, err = repo.FindByID(ctx, f.org.ID, job.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, f.org.ID, job.ID), shared.ErrNotFound)
}
