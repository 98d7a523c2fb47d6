package recruiting

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/hireflow/backend/internal/domain/shared"
)

// JobFilter defines the filter criteria for job lists
type JobFilter struct {
	shared.Filter
	Statuses       []JobStatus
	EmploymentType EmploymentType
	WorkMode       WorkMode
	Department     string
	Location       string
	CreatedBy      *uuid.UUID
}

// JobListItem is a job with its application count
type JobListItem struct {
	*Job
	ApplicationCount int64
}

// JobRepository defines persistence operations for jobs.
// List queries apply the viewer's visibility scope.
type JobRepository interface {
	FindByID(ctx context.Context, organizationID, id uuid.UUID) (*Job, error)
	FindAll(ctx context.Context, viewer Viewer, filter JobFilter) ([]JobListItem, int64, error)
	CountApplications(ctx context.Context, organizationID, jobID uuid.UUID) (int64, error)
	Create(ctx context.Context, job *Job) error
	// Update writes the job only if the stored version still equals expectedVersion,
	// otherwise it returns CONCURRENCY_CONFLICT.
	Update(ctx context.Context, job *Job, expectedVersion int) error
	Delete(ctx context.Context, organizationID, id uuid.UUID) error
}

// ApplicationFilter defines the filter criteria for application lists
type ApplicationFilter struct {
	shared.Filter
	JobID       *uuid.UUID
	CandidateID *uuid.UUID
	Statuses    []ApplicationStatus
	Source      ApplicationSource
	AppliedFrom *time.Time
	AppliedTo   *time.Time
}

// ApplicationRepository defines persistence operations for job applications
type ApplicationRepository interface {
	FindByID(ctx context.Context, organizationID, id uuid.UUID) (*JobApplication, error)
	FindAll(ctx context.Context, viewer Viewer, filter ApplicationFilter) ([]ApplicationListItem, int64, error)
	ExistsForCandidate(ctx context.Context, organizationID, jobID, candidateID uuid.UUID) (bool, error)
	CountByCandidate(ctx context.Context, organizationID, candidateID uuid.UUID) (int64, error)
	// Create fails with ALREADY_APPLIED when the candidate already applied to the job.
	Create(ctx context.Context, app *JobApplication) error
	Update(ctx context.Context, app *JobApplication, expectedVersion int) error
	Delete(ctx context.Context, organizationID, id uuid.UUID) error
}

// ApplicationHistoryRepository stores the pipeline audit trail
type ApplicationHistoryRepository interface {
	Append(ctx context.Context, entry *ApplicationStatusHistory) error
	FindByApplication(ctx context.Context, organizationID, applicationID uuid.UUID) ([]ApplicationStatusHistory, error)
}

// CandidateFilter defines the filter criteria for candidate lists
type CandidateFilter struct {
	shared.Filter
	Skill string
}

// CandidateRepository defines persistence operations for candidates.
// Education and experience are loaded and saved with the profile.
type CandidateRepository interface {
	FindByID(ctx context.Context, organizationID, id uuid.UUID) (*CandidateProfile, error)
	FindAll(ctx context.Context, organizationID uuid.UUID, filter CandidateFilter) ([]*CandidateProfile, int64, error)
	ExistsByEmail(ctx context.Context, organizationID uuid.UUID, email string, excludeID *uuid.UUID) (bool, error)
	Save(ctx context.Context, candidate *CandidateProfile) error
	Delete(ctx context.Context, organizationID, id uuid.UUID) error
}

// JobAccessRepository defines persistence operations for job access grants
type JobAccessRepository interface {
	FindActive(ctx context.Context, organizationID, jobID, userID uuid.UUID) (*JobAccessGrant, error)
	HasActiveGrant(ctx context.Context, organizationID, jobID, userID uuid.UUID) (bool, error)
	FindActiveByJob(ctx context.Context, organizationID, jobID uuid.UUID) ([]*JobAccessGrant, error)
	FindActiveByUser(ctx context.Context, organizationID, userID uuid.UUID) ([]*JobAccessGrant, error)
	Save(ctx context.Context, grant *JobAccessGrant) error
	// RevokeAllForUser ends every active grant of a user and returns how many were revoked.
	RevokeAllForUser(ctx context.Context, organizationID, userID, revokedBy uuid.UUID) (int64, error)
}

// DocumentRepository defines persistence operations for candidate documents
type DocumentRepository interface {
	FindByID(ctx context.Context, organizationID, id uuid.UUID) (*CandidateDocument, error)
	FindByCandidate(ctx context.Context, organizationID, candidateID uuid.UUID) ([]*CandidateDocument, error)
	Save(ctx context.Context, doc *CandidateDocument) error
	// Delete removes the row outright; used when presigning a pending upload fails.
	Delete(ctx context.Context, organizationID, id uuid.UUID) error
	// FindStalePending returns pending documents of every organization created
	// before the cutoff, oldest first.
	FindStalePending(ctx context.Context, createdBefore time.Time, limit int) ([]*CandidateDocument, error)
}

// DashboardRepository computes dashboard aggregates under a viewer's visibility
type DashboardRepository interface {
	Stats(ctx context.Context, viewer Viewer, now time.Time) (*DashboardStats, error)
}
