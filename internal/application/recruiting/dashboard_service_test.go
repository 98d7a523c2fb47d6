package recruiting

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hireflow/backend/internal/domain/recruiting"
)

func TestDashboardService_Stats(t *testing.T) {
	ctx := context.Background()
	w := newWorld()
	repo := new(MockDashboardRepository)
	cache := newFakeDashboardCache()
	svc := NewDashboardService(repo, cache, zap.NewNop())

	stats := recruiting.NewDashboardStats(time.Now())
	stats.JobsByStatus[recruiting.JobStatusOpen] = 3
	stats.ApplicationsByStatus[recruiting.ApplicationStatusApplied] = 7
	repo.On("Stats", ctx, w.hr, mock.AnythingOfType("time.Time")).Return(stats, nil).Once()

	got, err := svc.Stats(ctx, w.hr)
	require.NoError(t, err)
	assert.Equal(t, int64(3), got.TotalJobs)
	assert.Equal(t, int64(7), got.TotalApplications)

	again, err := svc.Stats(ctx, w.admin)
	require.NoError(t, err)
	assert.Same(t, got, again, "admin and hr share the all-jobs scope")
	repo.AssertNumberOfCalls(t, "Stats", 1)

	cache.Invalidate(ctx, w.orgID)
	repo.On("Stats", ctx, w.ta, mock.AnythingOfType("time.Time")).Return(nil, errors.New("timeout"))
	_, err = svc.Stats(ctx, w.ta)
	assert.Error(t, err)
}

func TestDashboardService_StatsRacingInvalidationAreNotCached(t *testing.T) {
	ctx := context.Background()
	w := newWorld()
	repo := new(MockDashboardRepository)
	cache := newFakeDashboardCache()
	svc := NewDashboardService(repo, cache, zap.NewNop())

	stale := recruiting.NewDashboardStats(time.Now())
	fresh := recruiting.NewDashboardStats(time.Now())
	fresh.ApplicationsByStatus[recruiting.ApplicationStatusApplied] = 1

	// an application lands while the first dashboard is being computed
	repo.On("Stats", ctx, w.hr, mock.AnythingOfType("time.Time")).
		Run(func(mock.Arguments) { cache.Invalidate(ctx, w.orgID) }).
		Return(stale, nil).Once()
	repo.On("Stats", ctx, w.hr, mock.AnythingOfType("time.Time")).Return(fresh, nil).Once()

	first, err := svc.Stats(ctx, w.hr)
	require.NoError(t, err)
	assert.Zero(t, first.TotalApplications)

	second, err := svc.Stats(ctx, w.hr)
	require.NoError(t, err)
	assert.Equal(t, int64(1), second.TotalApplications)
	repo.AssertNumberOfCalls(t, "Stats", 2)

	third, err := svc.Stats(ctx, w.hr)
	require.NoError(t, err)
	assert.Same(t, second, third)
	repo.AssertNumberOfCalls(t, "Stats", 2)
}
