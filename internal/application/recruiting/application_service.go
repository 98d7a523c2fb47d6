package recruiting

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hireflow/backend/internal/domain/recruiting"
	"github.com/hireflow/backend/internal/domain/shared"
)

// ApplicationService handles the candidate pipeline
type ApplicationService struct {
	appRepo       recruiting.ApplicationRepository
	historyRepo   recruiting.ApplicationHistoryRepository
	candidateRepo recruiting.CandidateRepository
	gate          jobGate
	cache         DashboardCache
	metrics       RecruitingMetrics
	publisher     shared.EventPublisher
	logger        *zap.Logger
}

// NewApplicationService creates a new ApplicationService
func NewApplicationService(
	appRepo recruiting.ApplicationRepository,
	historyRepo recruiting.ApplicationHistoryRepository,
	jobRepo recruiting.JobRepository,
	candidateRepo recruiting.CandidateRepository,
	accessRepo recruiting.JobAccessRepository,
	logger *zap.Logger,
) *ApplicationService {
	return &ApplicationService{
		appRepo:       appRepo,
		historyRepo:   historyRepo,
		candidateRepo: candidateRepo,
		gate:          jobGate{jobs: jobRepo, access: accessRepo},
		cache:         nopDashboardCache{},
		metrics:       noopMetrics{},
		logger:        logger,
	}
}

// SetEventPublisher sets the publisher for application events
func (s *ApplicationService) SetEventPublisher(publisher shared.EventPublisher) {
	s.publisher = publisher
}

// SetDashboardCache sets the cache invalidated on application changes
func (s *ApplicationService) SetDashboardCache(cache DashboardCache) {
	if cache != nil {
		s.cache = cache
	}
}

// SetMetrics sets the business metrics recorder
func (s *ApplicationService) SetMetrics(metrics RecruitingMetrics) {
	if metrics != nil {
		s.metrics = metrics
	}
}

// Create applies a candidate to an open job
func (s *ApplicationService) Create(ctx context.Context, viewer recruiting.Viewer, req CreateApplicationRequest) (*ApplicationResponse, error) {
	job, err := s.gate.load(ctx, viewer, req.JobID)
	if err != nil {
		return nil, err
	}
	candidate, err := s.candidateRepo.FindByID(ctx, viewer.OrganizationID, req.CandidateID)
	if err != nil {
		return nil, notFoundAs(err, ErrCandidateNotFound)
	}
	applied, err := s.appRepo.ExistsForCandidate(ctx, viewer.OrganizationID, job.ID, candidate.ID)
	if err != nil {
		return nil, err
	}
	if applied {
		return nil, recruiting.ErrAlreadyApplied
	}

	app, err := recruiting.NewJobApplication(job, candidate.ID, viewer.UserID, recruiting.ApplicationSource(req.Source), req.CoverLetter)
	if err != nil {
		return nil, err
	}
	if err := s.appRepo.Create(ctx, app); err != nil {
		return nil, err
	}
	s.metrics.ApplicationCreated(ctx, viewer.OrganizationID, string(app.Source))
	s.cache.Invalidate(ctx, viewer.OrganizationID)
	publishEvents(ctx, s.publisher, s.logger, app)

	s.logger.Info("Application created",
		zap.String("application_id", app.ID.String()),
		zap.String("job_id", job.ID.String()),
		zap.String("candidate_id", candidate.ID.String()))

	resp := toApplicationResponse(app)
	resp.JobTitle = job.Title
	resp.CandidateName = candidate.FullName()
	resp.CandidateEmail = candidate.Email
	return &resp, nil
}

// Get returns an application on a visible job
func (s *ApplicationService) Get(ctx context.Context, viewer recruiting.Viewer, id uuid.UUID) (*ApplicationResponse, error) {
	app, job, err := s.load(ctx, viewer, id)
	if err != nil {
		return nil, err
	}
	resp := toApplicationResponse(app)
	resp.JobTitle = job.Title
	if candidate, err := s.candidateRepo.FindByID(ctx, viewer.OrganizationID, app.CandidateID); err == nil {
		resp.CandidateName = candidate.FullName()
		resp.CandidateEmail = candidate.Email
	}
	return &resp, nil
}

// ChangeStatus moves an application along the pipeline
func (s *ApplicationService) ChangeStatus(ctx context.Context, viewer recruiting.Viewer, id uuid.UUID, req ChangeStatusRequest) (*ApplicationResponse, error) {
	app, _, err := s.load(ctx, viewer, id)
	if err != nil {
		return nil, err
	}
	if app.Version != req.Version {
		return nil, shared.ErrConcurrencyConflict
	}
	expected := app.Version
	if err := app.ChangeStatus(recruiting.ApplicationStatus(req.Status), req.Reason, viewer.UserID); err != nil {
		return nil, err
	}
	if err := s.appRepo.Update(ctx, app, expected); err != nil {
		return nil, err
	}
	// history, dashboard invalidation and the transition metric hang off the status event
	publishEvents(ctx, s.publisher, s.logger, app)

	s.logger.Info("Application status changed",
		zap.String("application_id", id.String()),
		zap.String("status", string(app.Status)))
	resp := toApplicationResponse(app)
	return &resp, nil
}

// Rate sets the reviewer rating of an application
func (s *ApplicationService) Rate(ctx context.Context, viewer recruiting.Viewer, id uuid.UUID, req RateApplicationRequest) (*ApplicationResponse, error) {
	app, _, err := s.load(ctx, viewer, id)
	if err != nil {
		return nil, err
	}
	if app.Version != req.Version {
		return nil, shared.ErrConcurrencyConflict
	}
	expected := app.Version
	rating := 0
	if req.Rating != nil {
		rating = *req.Rating
	}
	if err := app.Rate(rating); err != nil {
		return nil, err
	}
	if err := s.appRepo.Update(ctx, app, expected); err != nil {
		return nil, err
	}
	resp := toApplicationResponse(app)
	return &resp, nil
}

// Delete removes an application
func (s *ApplicationService) Delete(ctx context.Context, viewer recruiting.Viewer, id uuid.UUID) error {
	if _, _, err := s.load(ctx, viewer, id); err != nil {
		return err
	}
	if err := s.appRepo.Delete(ctx, viewer.OrganizationID, id); err != nil {
		return err
	}
	s.cache.Invalidate(ctx, viewer.OrganizationID)
	s.logger.Info("Application deleted", zap.String("application_id", id.String()))
	return nil
}

// History returns the status history of an application, oldest first
func (s *ApplicationService) History(ctx context.Context, viewer recruiting.Viewer, id uuid.UUID) ([]StatusHistoryResponse, error) {
	if _, _, err := s.load(ctx, viewer, id); err != nil {
		return nil, err
	}
	entries, err := s.historyRepo.FindByApplication(ctx, viewer.OrganizationID, id)
	if err != nil {
		return nil, err
	}
	out := make([]StatusHistoryResponse, len(entries))
	for i, e := range entries {
		out[i] = StatusHistoryResponse{
			ID:         e.ID,
			FromStatus: string(e.FromStatus),
			ToStatus:   string(e.ToStatus),
			ChangedBy:  e.ChangedBy,
			Reason:     e.Reason,
			ChangedAt:  e.ChangedAt,
		}
	}
	return out, nil
}

// List returns the applications on jobs visible to the viewer
func (s *ApplicationService) List(ctx context.Context, viewer recruiting.Viewer, filter ApplicationListFilter) ([]ApplicationResponse, int64, error) {
	jobID, err := parseOptionalUUID(filter.JobID)
	if err != nil {
		return nil, 0, err
	}
	candidateID, err := parseOptionalUUID(filter.CandidateID)
	if err != nil {
		return nil, 0, err
	}
	if filter.AppliedFrom != nil && filter.AppliedTo != nil && filter.AppliedFrom.After(*filter.AppliedTo) {
		return nil, 0, shared.NewDomainError("INVALID_DATE_RANGE", "applied_from must not be after applied_to")
	}
	statuses := make([]recruiting.ApplicationStatus, len(filter.Status))
	for i, st := range filter.Status {
		statuses[i] = recruiting.ApplicationStatus(st)
	}

	items, total, err := s.appRepo.FindAll(ctx, viewer, recruiting.ApplicationFilter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  filter.OrderBy,
			OrderDir: filter.OrderDir,
			Search:   strings.TrimSpace(filter.Search),
		}.Normalize(),
		JobID:       jobID,
		CandidateID: candidateID,
		Statuses:    statuses,
		Source:      recruiting.ApplicationSource(filter.Source),
		AppliedFrom: filter.AppliedFrom,
		AppliedTo:   filter.AppliedTo,
	})
	if err != nil {
		return nil, 0, err
	}
	out := make([]ApplicationResponse, len(items))
	for i, item := range items {
		out[i] = toApplicationResponse(item.JobApplication)
		out[i].JobTitle = item.JobTitle
		out[i].CandidateName = item.CandidateName
		out[i].CandidateEmail = item.CandidateEmail
		out[i].CoverLetter = ""
	}
	return out, total, nil
}

// load returns an application whose job the viewer can see
func (s *ApplicationService) load(ctx context.Context, viewer recruiting.Viewer, id uuid.UUID) (*recruiting.JobApplication, *recruiting.Job, error) {
	app, err := s.appRepo.FindByID(ctx, viewer.OrganizationID, id)
	if err != nil {
		return nil, nil, notFoundAs(err, ErrApplicationNotFound)
	}
	job, err := s.gate.load(ctx, viewer, app.JobID)
	if err != nil {
		return nil, nil, notFoundAs(err, ErrApplicationNotFound)
	}
	return app, job, nil
}
