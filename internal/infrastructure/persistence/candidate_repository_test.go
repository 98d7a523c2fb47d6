package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/hireflow/backend/internal/domain/recruiting"
	"github.com/hireflow/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormCandidateRepository_SaveWithHistory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	repo := NewGormCandidateRepository(f.db)

	cand := f.addCandidate(t, "Ann", "Lee", "ann@example.com", "Go", "PostgreSQL")
	start := time.Date(2018, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2021, 6, 1, 0, 0, 0, 0, time.UTC)
	_, err := cand.AddExperience(recruiting.ExperienceInput{Company: "Initech", Title: "Engineer", StartDate: start, EndDate: &end})
	require.NoError(t, err)
	edu, err := cand.AddEducation(recruiting.EducationInput{Institution: "TU Berlin", Degree: "MSc"})
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, cand))

	found, err := repo.FindByID(ctx, f.org.ID, cand.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Go", "PostgreSQL"}, found.Skills)
	require.Len(t, found.Experience, 1)
	assert.Equal(t, "Initech", found.Experience[0].Company)
	require.Len(t, found.Education, 1)
	assert.Equal(t, edu.ID, found.Education[0].ID)

	require.NoError(t, found.RemoveEducation(edu.ID))
	require.NoError(t, repo.Save(ctx, found))
	again, err := repo.FindByID(ctx, f.org.ID, cand.ID)
	require.NoError(t, err)
	assert.Empty(t, again.Education)
	assert.Len(t, again.Experience, 1)
}

func TestGormCandidateRepository_FindAll(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	repo := NewGormCandidateRepository(f.db)

	f.addCandidate(t, "Ann", "Lee", "ann@example.com", "Go", "Kubernetes")
	f.addCandidate(t, "Bob", "Ray", "bob@example.com", "Golang")
	f.addCandidate(t, "Cid", "Moe", "cid@example.com")

	t.Run("skill matches whole element", func(t *testing.T) {
		items, total, err := repo.FindAll(ctx, f.org.ID, recruiting.CandidateFilter{Skill: "go"})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		assert.Equal(t, "Ann", items[0].FirstName)
	})

	t.Run("search on full name", func(t *testing.T) {
		items, total, err := repo.FindAll(ctx, f.org.ID, recruiting.CandidateFilter{Filter: shared.Filter{Search: "bob ray"}})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		assert.Equal(t, "bob@example.com", items[0].Email)
	})

	t.Run("sorts by last name", func(t *testing.T) {
		items, _, err := repo.FindAll(ctx, f.org.ID, recruiting.CandidateFilter{Filter: shared.Filter{OrderBy: "last_name", OrderDir: "asc"}})
		require.NoError(t, err)
		require.Len(t, items, 3)
		assert.Equal(t, "Lee", items[0].LastName)
		assert.Equal(t, "Ray", items[2].LastName)
	})
}

func TestGormCandidateRepository_ExistsByEmail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	repo := NewGormCandidateRepository(f.db)
	cand := f.addCandidate(t, "Ann", "Lee", "ann@example.com")

	exists, err := repo.ExistsByEmail(ctx, f.org.ID, "ANN@example.com", nil)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsByEmail(ctx, f.org.ID, "ann@example.com", &cand.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, repo.Delete(ctx, f.org.ID, cand.ID))
	_, err = repo.FindByID(ctx, f.org.ID, cand.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
