package recruiting

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hireflow/backend/internal/domain/recruiting"
	"github.com/hireflow/backend/internal/domain/shared"
)

// StatusHistoryHandler records every pipeline move in the application history
// and keeps the dashboard and metrics in step with it.
type StatusHistoryHandler struct {
	historyRepo recruiting.ApplicationHistoryRepository
	cache       DashboardCache
	metrics     RecruitingMetrics
	logger      *zap.Logger
}

// NewStatusHistoryHandler creates a new StatusHistoryHandler
func NewStatusHistoryHandler(historyRepo recruiting.ApplicationHistoryRepository, cache DashboardCache, metrics RecruitingMetrics, logger *zap.Logger) *StatusHistoryHandler {
	if cache == nil {
		cache = nopDashboardCache{}
	}
	if metrics == nil {
		metrics = noopMetrics{}
	}
	return &StatusHistoryHandler{
		historyRepo: historyRepo,
		cache:       cache,
		metrics:     metrics,
		logger:      logger,
	}
}

// EventTypes returns the events this handler consumes
func (h *StatusHistoryHandler) EventTypes() []string {
	return []string{
		recruiting.EventTypeApplicationCreated,
		recruiting.EventTypeApplicationStatusChanged,
	}
}

// Handle appends the history entry for an application event
func (h *StatusHistoryHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	var entry *recruiting.ApplicationStatusHistory
	switch e := event.(type) {
	case *recruiting.ApplicationCreatedEvent:
		entry = &recruiting.ApplicationStatusHistory{
			ToStatus:  recruiting.ApplicationStatusApplied,
			ChangedBy: e.CreatedBy,
		}
	case *recruiting.ApplicationStatusChangedEvent:
		entry = &recruiting.ApplicationStatusHistory{
			FromStatus: e.From,
			ToStatus:   e.To,
			ChangedBy:  e.ChangedBy,
			Reason:     e.Reason,
		}
		h.metrics.ApplicationStatusChanged(ctx, e.OrganizationID(), string(e.From), string(e.To))
	default:
		return nil
	}

	entry.ID = uuid.New()
	entry.OrganizationID = event.OrganizationID()
	entry.ApplicationID = event.AggregateID()
	entry.ChangedAt = event.OccurredAt()
	h.cache.Invalidate(ctx, entry.OrganizationID)

	if err := h.historyRepo.Append(ctx, entry); err != nil {
		h.logger.Error("Failed to append application history",
			zap.String("application_id", entry.ApplicationID.String()),
			zap.String("to_status", string(entry.ToStatus)),
			zap.Error(err))
		return err
	}
	return nil
}
