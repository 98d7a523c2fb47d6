package recruiting

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hireflow/backend/internal/domain/identity"
	"github.com/hireflow/backend/internal/domain/recruiting"
	"github.com/hireflow/backend/internal/domain/shared"
)

type jobHarness struct {
	jobs      *MockJobRepository
	access    *MockJobAccessRepository
	orgs      *MockOrganizationRepository
	cache     *fakeDashboardCache
	metrics   *countingMetrics
	publisher *recordingPublisher
	svc       *JobService
}

func newJobHarness() *jobHarness {
	h := &jobHarness{
		jobs:      new(MockJobRepository),
		access:    new(MockJobAccessRepository),
		orgs:      new(MockOrganizationRepository),
		cache:     newFakeDashboardCache(),
		metrics:   &countingMetrics{},
		publisher: &recordingPublisher{},
	}
	h.svc = NewJobService(h.jobs, h.access, h.orgs, passthroughSanitizer{}, zap.NewNop())
	h.svc.SetDashboardCache(h.cache)
	h.svc.SetMetrics(h.metrics)
	h.svc.SetEventPublisher(h.publisher)
	return h
}

func TestJobService_Create(t *testing.T) {
	ctx := context.Background()
	w := newWorld()
	h := newJobHarness()
	h.jobs.On("Create", ctx, mock.AnythingOfType("*recruiting.Job")).Return(nil)

	resp, err := h.svc.Create(ctx, w.hr, CreateJobRequest{
		Title:           "Platform Engineer",
		DescriptionHTML: "<p>Run the platform</p>",
		SalaryCurrency:  "eur",
	})
	require.NoError(t, err)
	assert.Equal(t, "draft", resp.Status)
	assert.Equal(t, "full_time", resp.EmploymentType)
	assert.Equal(t, 1, resp.Openings)
	assert.Equal(t, "EUR", resp.SalaryCurrency)
	require.NotNil(t, resp.ApplicationCount)
	assert.Zero(t, *resp.ApplicationCount)
	assert.Equal(t, []string{recruiting.EventTypeJobCreated}, h.publisher.types())
	assert.Equal(t, 1, h.cache.invalidations)
}

func TestJobService_Visibility(t *testing.T) {
	ctx := context.Background()
	w := newWorld()
	job := w.openJob(t, "Data Engineer")

	t.Run("hr sees every job", func(t *testing.T) {
		h := newJobHarness()
		h.jobs.On("FindByID", ctx, w.orgID, job.ID).Return(job, nil)
		h.jobs.On("CountApplications", ctx, w.orgID, job.ID).Return(int64(3), nil)

		resp, err := h.svc.Get(ctx, w.hr, job.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(3), *resp.ApplicationCount)
		h.access.AssertNotCalled(t, "HasActiveGrant", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("talent acquisition needs a grant", func(t *testing.T) {
		h := newJobHarness()
		h.jobs.On("FindByID", ctx, w.orgID, job.ID).Return(job, nil)
		h.access.On("HasActiveGrant", ctx, w.orgID, job.ID, w.ta.UserID).Return(false, nil).Once()

		_, err := h.svc.Get(ctx, w.ta, job.ID)
		assert.True(t, errors.Is(err, ErrJobNotFound))

		h.access.On("HasActiveGrant", ctx, w.orgID, job.ID, w.ta.UserID).Return(true, nil)
		h.jobs.On("CountApplications", ctx, w.orgID, job.ID).Return(int64(0), nil)
		_, err = h.svc.Get(ctx, w.ta, job.ID)
		assert.NoError(t, err)
	})

	t.Run("member without roles sees nothing", func(t *testing.T) {
		h := newJobHarness()
		h.jobs.On("FindByID", ctx, w.orgID, job.ID).Return(job, nil)

		_, err := h.svc.Get(ctx, w.noRoles, job.ID)
		assert.True(t, errors.Is(err, shared.ErrNotFound))
	})

	t.Run("missing job", func(t *testing.T) {
		h := newJobHarness()
		h.jobs.On("FindByID", ctx, w.orgID, job.ID).Return(nil, shared.ErrNotFound)

		_, err := h.svc.Get(ctx, w.admin, job.ID)
		assert.Equal(t, ErrJobNotFound, err)
	})
}

func TestJobService_Update(t *testing.T) {
	ctx := context.Background()
	w := newWorld()

	t.Run("stale version", func(t *testing.T) {
		h := newJobHarness()
		job := w.draftJob(t, "Designer")
		h.jobs.On("FindByID", ctx, w.orgID, job.ID).Return(job, nil)

		req := UpdateJobRequest{CreateJobRequest: CreateJobRequest{Title: "Senior Designer"}, Version: job.Version + 1}
		_, err := h.svc.Update(ctx, w.hr, job.ID, req)
		assert.True(t, errors.Is(err, shared.ErrConcurrencyConflict))
		h.jobs.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("writes with the read version", func(t *testing.T) {
		h := newJobHarness()
		job := w.draftJob(t, "Designer")
		read := job.Version
		h.jobs.On("FindByID", ctx, w.orgID, job.ID).Return(job, nil)
		h.jobs.On("Update", ctx, job, read).Return(nil)

		req := UpdateJobRequest{CreateJobRequest: CreateJobRequest{Title: "Senior Designer", DescriptionHTML: "<p>x</p>"}, Version: read}
		resp, err := h.svc.Update(ctx, w.hr, job.ID, req)
		require.NoError(t, err)
		assert.Equal(t, "Senior Designer", resp.Title)
		assert.Greater(t, resp.Version, read)
		h.jobs.AssertExpectations(t)
	})
}

func TestJobService_Lifecycle(t *testing.T) {
	ctx := context.Background()
	w := newWorld()
	h := newJobHarness()
	job := w.draftJob(t, "Recruiter")
	h.jobs.On("FindByID", ctx, w.orgID, job.ID).Return(job, nil)
	h.jobs.On("Update", ctx, job, mock.AnythingOfType("int")).Return(nil)

	resp, err := h.svc.Publish(ctx, w.hr, job.ID)
	require.NoError(t, err)
	assert.Equal(t, "open", resp.Status)
	assert.NotNil(t, resp.PublishedAt)
	assert.Equal(t, 1, h.metrics.published)

	resp, err = h.svc.Close(ctx, w.hr, job.ID)
	require.NoError(t, err)
	assert.Equal(t, "closed", resp.Status)

	resp, err = h.svc.Reopen(ctx, w.hr, job.ID)
	require.NoError(t, err)
	assert.Equal(t, "open", resp.Status)

	_, err = h.svc.Archive(ctx, w.hr, job.ID)
	assert.Error(t, err, "open jobs must be closed before archiving")

	assert.Equal(t, []string{
		recruiting.EventTypeJobStatusChanged,
		recruiting.EventTypeJobStatusChanged,
		recruiting.EventTypeJobStatusChanged,
	}, h.publisher.types())
}

func TestJobService_Delete(t *testing.T) {
	ctx := context.Background()
	w := newWorld()
	job := w.draftJob(t, "Analyst")

	h := newJobHarness()
	h.jobs.On("FindByID", ctx, w.orgID, job.ID).Return(job, nil)
	h.jobs.On("CountApplications", ctx, w.orgID, job.ID).Return(int64(2), nil).Once()
	assert.True(t, errors.Is(h.svc.Delete(ctx, w.hr, job.ID), recruiting.ErrJobHasApplications))

	h.jobs.On("CountApplications", ctx, w.orgID, job.ID).Return(int64(0), nil)
	h.jobs.On("Delete", ctx, w.orgID, job.ID).Return(nil)
	require.NoError(t, h.svc.Delete(ctx, w.hr, job.ID))
	assert.Equal(t, 1, h.cache.invalidations)
}

func TestJobService_List(t *testing.T) {
	ctx := context.Background()
	w := newWorld()
	job := w.openJob(t, "Engineer")
	h := newJobHarness()

	h.jobs.On("FindAll", ctx, w.ta, mock.MatchedBy(func(f recruiting.JobFilter) bool {
		return f.Page == 1 && f.PageSize == 20 && len(f.Statuses) == 1 && f.Statuses[0] == recruiting.JobStatusOpen &&
			f.WorkMode == recruiting.WorkModeRemote && f.CreatedBy != nil && *f.CreatedBy == w.hr.UserID
	})).Return([]recruiting.JobListItem{{Job: job, ApplicationCount: 4}}, int64(1), nil)

	items, total, err := h.svc.List(ctx, w.ta, JobListFilter{
		Status:    []string{"open"},
		WorkMode:  "remote",
		CreatedBy: w.hr.UserID.String(),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, items, 1)
	assert.Equal(t, int64(4), *items[0].ApplicationCount)
	assert.Empty(t, items[0].DescriptionHTML)

	_, _, err = h.svc.List(ctx, w.ta, JobListFilter{CreatedBy: "not-a-uuid"})
	assert.Error(t, err)
}

func TestJobService_ExportPDF(t *testing.T) {
	ctx := context.Background()
	w := newWorld()
	job := w.openJob(t, "Site Reliability Engineer")
	org, err := identity.NewOrganization("Acme Corp", "")
	require.NoError(t, err)

	t.Run("disabled", func(t *testing.T) {
		h := newJobHarness()
		_, err := h.svc.ExportPDF(ctx, w.hr, job.ID)
		assert.Equal(t, ErrPrintingDisabled, err)
	})

	t.Run("renders", func(t *testing.T) {
		h := newJobHarness()
		renderer := new(MockJobRenderer)
		h.svc.SetRenderer(renderer)
		h.jobs.On("FindByID", ctx, w.orgID, job.ID).Return(job, nil)
		h.orgs.On("FindByID", ctx, w.orgID).Return(org, nil)
		renderer.On("RenderJobPDF", ctx, mock.MatchedBy(func(p JobPosting) bool {
			return p.OrganizationName == "Acme Corp" && p.Title == job.Title && p.WorkMode == "onsite"
		})).Return([]byte("%PDF-1.7"), nil)

		pdf, err := h.svc.ExportPDF(ctx, w.hr, job.ID)
		require.NoError(t, err)
		assert.Equal(t, "site-reliability-engineer.pdf", pdf.FileName)
		assert.Equal(t, []byte("%PDF-1.7"), pdf.Content)
	})
}

func TestFormatRanges(t *testing.T) {
	five, ten := 5, 10
	assert.Equal(t, "5-10 years", formatExperience(recruiting.ExperienceRange{Min: &five, Max: &ten}))
	assert.Equal(t, "5+ years", formatExperience(recruiting.ExperienceRange{Min: &five}))
	assert.Equal(t, "", formatExperience(recruiting.ExperienceRange{}))
	assert.Equal(t, "", formatSalary(recruiting.SalaryRange{}))
}
