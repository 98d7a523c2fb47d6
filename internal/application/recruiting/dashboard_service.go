package recruiting

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/hireflow/backend/internal/domain/recruiting"
)

// DashboardService serves the recruiting overview, cached per visibility scope
type DashboardService struct {
	repo   recruiting.DashboardRepository
	cache  DashboardCache
	logger *zap.Logger
	now    func() time.Time
}

// NewDashboardService creates a new DashboardService
func NewDashboardService(repo recruiting.DashboardRepository, cache DashboardCache, logger *zap.Logger) *DashboardService {
	if cache == nil {
		cache = nopDashboardCache{}
	}
	return &DashboardService{
		repo:   repo,
		cache:  cache,
		logger: logger,
		now:    time.Now,
	}
}

// Stats returns the dashboard for the viewer
func (s *DashboardService) Stats(ctx context.Context, viewer recruiting.Viewer) (*recruiting.DashboardStats, error) {
	key := viewer.CacheKey()
	stats, generation, ok := s.cache.Get(ctx, viewer.OrganizationID, key)
	if ok {
		return stats, nil
	}

	stats, err := s.repo.Stats(ctx, viewer, s.now())
	if err != nil {
		return nil, err
	}
	stats.Recompute()
	s.cache.Set(ctx, viewer.OrganizationID, generation, key, stats)

	s.logger.Debug("Dashboard computed",
		zap.String("organization_id", viewer.OrganizationID.String()),
		zap.String("scope", key))
	return stats, nil
}
