package event

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/hireflow/backend/internal/domain/shared"
)

// AuditLogHandler writes every domain event to the log as a structured audit record
type AuditLogHandler struct {
	logger *zap.Logger
}

// NewAuditLogHandler creates a new AuditLogHandler
func NewAuditLogHandler(logger *zap.Logger) *AuditLogHandler {
	return &AuditLogHandler{logger: logger.Named("audit")}
}

// EventTypes returns nil so the handler receives every event
func (h *AuditLogHandler) EventTypes() []string {
	return nil
}

// Handle logs the event with its payload
func (h *AuditLogHandler) Handle(_ context.Context, event shared.DomainEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		h.logger.Warn("Unserializable domain event",
			zap.String("event_type", event.EventType()),
			zap.Error(err))
		payload = nil
	}
	h.logger.Info("Domain event",
		zap.String("event_id", event.EventID().String()),
		zap.String("event_type", event.EventType()),
		zap.String("aggregate_type", event.AggregateType()),
		zap.String("aggregate_id", event.AggregateID().String()),
		zap.String("organization_id", event.OrganizationID().String()),
		zap.Time("occurred_at", event.OccurredAt()),
		zap.ByteString("payload", payload))
	return nil
}
