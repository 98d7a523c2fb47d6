package recruiting

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hireflow/backend/internal/domain/identity"
	"github.com/hireflow/backend/internal/domain/recruiting"
	"github.com/hireflow/backend/internal/domain/shared"
)

// ErrPrintingDisabled is returned by ExportPDF when no renderer is configured
var ErrPrintingDisabled = shared.NewDomainError("PRINTING_DISABLED", "PDF export is not available")

// DescriptionSanitizer cleans editor HTML and derives its plain text
type DescriptionSanitizer interface {
	SanitizeDescription(raw string) recruiting.JobDescription
}

// JobService handles job posting operations
type JobService struct {
	jobRepo   recruiting.JobRepository
	orgRepo   identity.OrganizationRepository
	gate      jobGate
	sanitizer DescriptionSanitizer
	cache     DashboardCache
	renderer  JobRenderer
	metrics   RecruitingMetrics
	publisher shared.EventPublisher
	logger    *zap.Logger
}

// NewJobService creates a new JobService
func NewJobService(
	jobRepo recruiting.JobRepository,
	accessRepo recruiting.JobAccessRepository,
	orgRepo identity.OrganizationRepository,
	sanitizer DescriptionSanitizer,
	logger *zap.Logger,
) *JobService {
	return &JobService{
		jobRepo:   jobRepo,
		orgRepo:   orgRepo,
		gate:      jobGate{jobs: jobRepo, access: accessRepo},
		sanitizer: sanitizer,
		cache:     nopDashboardCache{},
		metrics:   noopMetrics{},
		logger:    logger,
	}
}

// SetEventPublisher sets the publisher for job events
func (s *JobService) SetEventPublisher(publisher shared.EventPublisher) {
	s.publisher = publisher
}

// SetDashboardCache sets the cache invalidated on job changes
func (s *JobService) SetDashboardCache(cache DashboardCache) {
	if cache != nil {
		s.cache = cache
	}
}

// SetRenderer enables PDF export
func (s *JobService) SetRenderer(renderer JobRenderer) {
	s.renderer = renderer
}

// SetMetrics sets the business metrics recorder
func (s *JobService) SetMetrics(metrics RecruitingMetrics) {
	if metrics != nil {
		s.metrics = metrics
	}
}

// Create drafts a new job
func (s *JobService) Create(ctx context.Context, viewer recruiting.Viewer, req CreateJobRequest) (*JobResponse, error) {
	job, err := recruiting.NewJob(viewer.OrganizationID, viewer.UserID, req.details(), s.describe(req.DescriptionHTML))
	if err != nil {
		return nil, err
	}
	if err := s.jobRepo.Create(ctx, job); err != nil {
		return nil, err
	}
	s.afterWrite(ctx, job)

	s.logger.Info("Job created",
		zap.String("organization_id", job.OrganizationID.String()),
		zap.String("job_id", job.ID.String()))
	var zero int64
	resp := toJobResponse(job, &zero)
	return &resp, nil
}

// Get returns a visible job with its application count
func (s *JobService) Get(ctx context.Context, viewer recruiting.Viewer, jobID uuid.UUID) (*JobResponse, error) {
	job, err := s.gate.load(ctx, viewer, jobID)
	if err != nil {
		return nil, err
	}
	count, err := s.jobRepo.CountApplications(ctx, viewer.OrganizationID, jobID)
	if err != nil {
		return nil, err
	}
	resp := toJobResponse(job, &count)
	return &resp, nil
}

// Update replaces the editable fields of a job
func (s *JobService) Update(ctx context.Context, viewer recruiting.Viewer, jobID uuid.UUID, req UpdateJobRequest) (*JobResponse, error) {
	job, err := s.gate.load(ctx, viewer, jobID)
	if err != nil {
		return nil, err
	}
	if job.Version != req.Version {
		return nil, shared.ErrConcurrencyConflict
	}
	expected := job.Version
	if err := job.Update(req.details(), s.describe(req.DescriptionHTML)); err != nil {
		return nil, err
	}
	if err := s.jobRepo.Update(ctx, job, expected); err != nil {
		return nil, err
	}
	s.afterWrite(ctx, job)

	s.logger.Info("Job updated", zap.String("job_id", jobID.String()))
	resp := toJobResponse(job, nil)
	return &resp, nil
}

// Publish opens a draft job for applications
func (s *JobService) Publish(ctx context.Context, viewer recruiting.Viewer, jobID uuid.UUID) (*JobResponse, error) {
	resp, err := s.transition(ctx, viewer, jobID, "publish", (*recruiting.Job).Publish)
	if err != nil {
		return nil, err
	}
	s.metrics.JobPublished(ctx, viewer.OrganizationID)
	return resp, nil
}

// Close stops a job from accepting applications
func (s *JobService) Close(ctx context.Context, viewer recruiting.Viewer, jobID uuid.UUID) (*JobResponse, error) {
	return s.transition(ctx, viewer, jobID, "close", (*recruiting.Job).Close)
}

// Reopen accepts applications on a closed job again
func (s *JobService) Reopen(ctx context.Context, viewer recruiting.Viewer, jobID uuid.UUID) (*JobResponse, error) {
	return s.transition(ctx, viewer, jobID, "reopen", (*recruiting.Job).Reopen)
}

// Archive retires a job permanently
func (s *JobService) Archive(ctx context.Context, viewer recruiting.Viewer, jobID uuid.UUID) (*JobResponse, error) {
	return s.transition(ctx, viewer, jobID, "archive", (*recruiting.Job).Archive)
}

func (s *JobService) transition(ctx context.Context, viewer recruiting.Viewer, jobID uuid.UUID, action string, apply func(*recruiting.Job) error) (*JobResponse, error) {
	job, err := s.gate.load(ctx, viewer, jobID)
	if err != nil {
		return nil, err
	}
	expected := job.Version
	if err := apply(job); err != nil {
		return nil, err
	}
	if err := s.jobRepo.Update(ctx, job, expected); err != nil {
		return nil, err
	}
	s.afterWrite(ctx, job)

	s.logger.Info("Job status changed",
		zap.String("job_id", jobID.String()),
		zap.String("action", action),
		zap.String("status", string(job.Status)))
	resp := toJobResponse(job, nil)
	return &resp, nil
}

// Delete removes a job that never received applications
func (s *JobService) Delete(ctx context.Context, viewer recruiting.Viewer, jobID uuid.UUID) error {
	if _, err := s.gate.load(ctx, viewer, jobID); err != nil {
		return err
	}
	count, err := s.jobRepo.CountApplications(ctx, viewer.OrganizationID, jobID)
	if err != nil {
		return err
	}
	if count > 0 {
		return recruiting.ErrJobHasApplications
	}
	if err := s.jobRepo.Delete(ctx, viewer.OrganizationID, jobID); err != nil {
		return err
	}
	s.cache.Invalidate(ctx, viewer.OrganizationID)
	s.logger.Info("Job deleted", zap.String("job_id", jobID.String()))
	return nil
}

// List returns the jobs visible to the viewer
func (s *JobService) List(ctx context.Context, viewer recruiting.Viewer, filter JobListFilter) ([]JobResponse, int64, error) {
	createdBy, err := parseOptionalUUID(filter.CreatedBy)
	if err != nil {
		return nil, 0, err
	}
	statuses := make([]recruiting.JobStatus, len(filter.Status))
	for i, st := range filter.Status {
		statuses[i] = recruiting.JobStatus(st)
	}
	domainFilter := recruiting.JobFilter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  filter.OrderBy,
			OrderDir: filter.OrderDir,
			Search:   strings.TrimSpace(filter.Search),
		}.Normalize(),
		Statuses:       statuses,
		EmploymentType: recruiting.EmploymentType(filter.EmploymentType),
		WorkMode:       recruiting.WorkMode(filter.WorkMode),
		Department:     strings.TrimSpace(filter.Department),
		Location:       strings.TrimSpace(filter.Location),
		CreatedBy:      createdBy,
	}

	items, total, err := s.jobRepo.FindAll(ctx, viewer, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	out := make([]JobResponse, len(items))
	for i, item := range items {
		count := item.ApplicationCount
		out[i] = toJobResponse(item.Job, &count)
		// lists stay light; the description is loaded on Get
		out[i].DescriptionHTML = ""
	}
	return out, total, nil
}

// ExportPDF renders a visible job as a printable posting
func (s *JobService) ExportPDF(ctx context.Context, viewer recruiting.Viewer, jobID uuid.UUID) (*JobPDF, error) {
	if s.renderer == nil {
		return nil, ErrPrintingDisabled
	}
	job, err := s.gate.load(ctx, viewer, jobID)
	if err != nil {
		return nil, err
	}
	org, err := s.orgRepo.FindByID(ctx, viewer.OrganizationID)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	content, err := s.renderer.RenderJobPDF(ctx, toJobPosting(org.Name, job))
	if err != nil {
		s.logger.Error("Failed to render job posting", zap.String("job_id", jobID.String()), zap.Error(err))
		return nil, err
	}
	s.logger.Info("Job posting exported",
		zap.String("job_id", jobID.String()),
		zap.Int("bytes", len(content)),
		zap.Duration("duration", time.Since(start)))

	name := identity.Slugify(job.Title)
	if name == "" {
		name = "job-posting"
	}
	return &JobPDF{FileName: name + ".pdf", Content: content}, nil
}

func (s *JobService) describe(raw string) recruiting.JobDescription {
	return s.sanitizer.SanitizeDescription(raw)
}

func (s *JobService) afterWrite(ctx context.Context, job *recruiting.Job) {
	s.cache.Invalidate(ctx, job.OrganizationID)
	publishEvents(ctx, s.publisher, s.logger, job)
}

func (r CreateJobRequest) details() recruiting.JobDetails {
	return recruiting.JobDetails{
		Title:          r.Title,
		Department:     r.Department,
		Location:       r.Location,
		EmploymentType: recruiting.EmploymentType(r.EmploymentType),
		WorkMode:       recruiting.WorkMode(r.WorkMode),
		Openings:       r.Openings,
		Experience:     recruiting.ExperienceRange{Min: r.ExperienceMin, Max: r.ExperienceMax},
		Salary: recruiting.SalaryRange{
			Min:      r.SalaryMin,
			Max:      r.SalaryMax,
			Currency: r.SalaryCurrency,
		},
	}
}

func toJobPosting(organizationName string, job *recruiting.Job) JobPosting {
	return JobPosting{
		OrganizationName: organizationName,
		Title:            job.Title,
		Department:       job.Department,
		Location:         job.Location,
		EmploymentType:   string(job.EmploymentType),
		WorkMode:         string(job.WorkMode),
		Experience:       formatExperience(job.Experience),
		Salary:           formatSalary(job.Salary),
		Openings:         job.Openings,
		DescriptionHTML:  job.Description.HTML,
		PublishedAt:      job.PublishedAt,
	}
}

func formatExperience(r recruiting.ExperienceRange) string {
	switch {
	case r.Min != nil && r.Max != nil:
		return fmt.Sprintf("%d-%d years", *r.Min, *r.Max)
	case r.Min != nil:
		return fmt.Sprintf("%d+ years", *r.Min)
	case r.Max != nil:
		return fmt.Sprintf("up to %d years", *r.Max)
	}
	return ""
}

func formatSalary(r recruiting.SalaryRange) string {
	switch {
	case r.Min != nil && r.Max != nil:
		return fmt.Sprintf("%s %s - %s", r.Currency, r.Min.StringFixed(0), r.Max.StringFixed(0))
	case r.Min != nil:
		return fmt.Sprintf("from %s %s", r.Currency, r.Min.StringFixed(0))
	case r.Max != nil:
		return fmt.Sprintf("up to %s %s", r.Currency, r.Max.StringFixed(0))
	}
	return ""
}
