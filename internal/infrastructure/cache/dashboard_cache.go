package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	recruitingapp "github.com/hireflow/backend/internal/application/recruiting"
	"github.com/hireflow/backend/internal/domain/recruiting"
)

// Dashboards are keyed by an organization generation. Invalidate bumps the
// generation, so every scope of the organization misses at once and the old
// entries expire on their own TTL.
const dashboardPrefix = "dashboard:"

func generationKey(organizationID uuid.UUID) string {
	return dashboardPrefix + "gen:" + organizationID.String()
}

func dashboardKey(organizationID uuid.UUID, generation int64, scopeKey string) string {
	return fmt.Sprintf("%s%s:%d:%s", dashboardPrefix, organizationID, generation, scopeKey)
}

// RedisDashboardCache shares dashboards across instances
type RedisDashboardCache struct {
	client redis.UniversalClient
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisDashboardCache creates a Redis-backed dashboard cache
func NewRedisDashboardCache(client redis.UniversalClient, ttl time.Duration, logger *zap.Logger) *RedisDashboardCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisDashboardCache{client: client, ttl: ttl, logger: logger}
}

func (c *RedisDashboardCache) generation(ctx context.Context, organizationID uuid.UUID) (int64, error) {
	raw, err := c.client.Get(ctx, generationKey(organizationID)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(raw, 10, 64)
}

// Get implements recruitingapp.DashboardCache. Redis failures read as a miss,
// and a failed generation lookup returns -1 so the following Set is skipped.
func (c *RedisDashboardCache) Get(ctx context.Context, organizationID uuid.UUID, scopeKey string) (*recruiting.DashboardStats, int64, bool) {
	gen, err := c.generation(ctx, organizationID)
	if err != nil {
		c.logger.Warn("Dashboard cache generation lookup failed", zap.Error(err))
		return nil, -1, false
	}
	raw, err := c.client.Get(ctx, dashboardKey(organizationID, gen, scopeKey)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("Dashboard cache read failed", zap.Error(err))
		}
		return nil, gen, false
	}
	var stats recruiting.DashboardStats
	if err := json.Unmarshal(raw, &stats); err != nil {
		c.logger.Warn("Dashboard cache entry is corrupt", zap.Error(err))
		return nil, gen, false
	}
	return &stats, gen, true
}

// Set implements recruitingapp.DashboardCache. An entry written under a
// generation that has since been bumped is unreachable and expires on its TTL.
func (c *RedisDashboardCache) Set(ctx context.Context, organizationID uuid.UUID, generation int64, scopeKey string, stats *recruiting.DashboardStats) {
	if generation < 0 {
		return
	}
	raw, err := json.Marshal(stats)
	if err != nil {
		c.logger.Warn("Dashboard stats could not be encoded", zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, dashboardKey(organizationID, generation, scopeKey), raw, c.ttl).Err(); err != nil {
		c.logger.Warn("Dashboard cache write failed", zap.Error(err))
	}
}

// Invalidate implements recruitingapp.DashboardCache
func (c *RedisDashboardCache) Invalidate(ctx context.Context, organizationID uuid.UUID) {
	if err := c.client.Incr(ctx, generationKey(organizationID)).Err(); err != nil {
		c.logger.Warn("Dashboard cache invalidation failed",
			zap.String("organization_id", organizationID.String()),
			zap.Error(err),
		)
	}
}

// MemoryDashboardCache keeps dashboards in process memory
type MemoryDashboardCache struct {
	store *gocache.Cache
	ttl   time.Duration
}

// NewMemoryDashboardCache creates an in-process dashboard cache
func NewMemoryDashboardCache(ttl time.Duration) *MemoryDashboardCache {
	cleanup := 2 * ttl
	if cleanup < time.Minute {
		cleanup = time.Minute
	}
	return &MemoryDashboardCache{store: gocache.New(ttl, cleanup), ttl: ttl}
}

func (c *MemoryDashboardCache) generation(organizationID uuid.UUID) int64 {
	if v, ok := c.store.Get(generationKey(organizationID)); ok {
		return v.(int64)
	}
	return 0
}

// Get implements recruitingapp.DashboardCache
func (c *MemoryDashboardCache) Get(_ context.Context, organizationID uuid.UUID, scopeKey string) (*recruiting.DashboardStats, int64, bool) {
	gen := c.generation(organizationID)
	v, ok := c.store.Get(dashboardKey(organizationID, gen, scopeKey))
	if !ok {
		return nil, gen, false
	}
	// callers get their own copy of the top-level struct
	stats := *v.(*recruiting.DashboardStats)
	return &stats, gen, true
}

// Set implements recruitingapp.DashboardCache. Writes for a stale generation are dropped.
func (c *MemoryDashboardCache) Set(_ context.Context, organizationID uuid.UUID, generation int64, scopeKey string, stats *recruiting.DashboardStats) {
	if generation != c.generation(organizationID) {
		return
	}
	c.store.Set(dashboardKey(organizationID, generation, scopeKey), stats, c.ttl)
}

// Invalidate implements recruitingapp.DashboardCache
func (c *MemoryDashboardCache) Invalidate(_ context.Context, organizationID uuid.UUID) {
	key := generationKey(organizationID)
	_ = c.store.Add(key, int64(0), gocache.NoExpiration)
	_, _ = c.store.IncrementInt64(key, 1)
}

var (
	_ recruitingapp.DashboardCache = (*RedisDashboardCache)(nil)
	_ recruitingapp.DashboardCache = (*MemoryDashboardCache)(nil)
)
