package recruiting

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hireflow/backend/internal/domain/recruiting"
	"github.com/hireflow/backend/internal/domain/shared"
)

// Lookup errors. Hidden records read as missing so their existence does not leak.
var (
	ErrJobNotFound         = shared.NewDomainError("NOT_FOUND", "Job not found")
	ErrApplicationNotFound = shared.NewDomainError("NOT_FOUND", "Application not found")
	ErrCandidateNotFound   = shared.NewDomainError("NOT_FOUND", "Candidate not found")
	ErrDocumentNotFound    = shared.NewDomainError("NOT_FOUND", "Document not found")
	ErrEntryNotFound       = shared.NewDomainError("NOT_FOUND", "Entry not found")
)

// jobGate applies the job visibility policy to single-record reads and writes
type jobGate struct {
	jobs   recruiting.JobRepository
	access recruiting.JobAccessRepository
}

// canView reports whether the viewer may see the job
func (g jobGate) canView(ctx context.Context, viewer recruiting.Viewer, job *recruiting.Job) (bool, error) {
	hasGrant := false
	if viewer.Scope() == recruiting.ScopeGranted {
		var err error
		hasGrant, err = g.access.HasActiveGrant(ctx, viewer.OrganizationID, job.ID, viewer.UserID)
		if err != nil {
			return false, err
		}
	}
	return viewer.CanView(job, hasGrant), nil
}

// load returns the job when the viewer may see it
func (g jobGate) load(ctx context.Context, viewer recruiting.Viewer, jobID uuid.UUID) (*recruiting.Job, error) {
	job, err := g.jobs.FindByID(ctx, viewer.OrganizationID, jobID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, ErrJobNotFound
		}
		return nil, err
	}
	ok, err := g.canView(ctx, viewer, job)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrJobNotFound
	}
	return job, nil
}

type nopDashboardCache struct{}

func (nopDashboardCache) Get(context.Context, uuid.UUID, string) (*recruiting.DashboardStats, int64, bool) {
	return nil, 0, false
}
func (nopDashboardCache) Set(context.Context, uuid.UUID, int64, string, *recruiting.DashboardStats) {}
func (nopDashboardCache) Invalidate(context.Context, uuid.UUID)                                     {}

// publishEvents hands the pending events to the publisher. The write has
// already committed, so a failure is logged rather than returned.
func publishEvents(ctx context.Context, publisher shared.EventPublisher, logger *zap.Logger, raisers ...shared.EventRaiser) {
	if err := shared.PublishRaised(ctx, publisher, raisers...); err != nil {
		logger.Warn("Failed to publish domain events", zap.Error(err))
	}
}

func parseOptionalUUID(raw string) (*uuid.UUID, error) {
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Invalid UUID: "+raw)
	}
	return &id, nil
}

func notFoundAs(err error, target error) error {
	if errors.Is(err, shared.ErrNotFound) {
		return target
	}
	return err
}
