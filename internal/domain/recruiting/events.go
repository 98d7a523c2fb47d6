package recruiting

import (
	"github.com/google/uuid"
	"github.com/hireflow/backend/internal/domain/shared"
)

// Aggregate types
const (
	AggregateTypeJob         = "Job"
	AggregateTypeApplication = "JobApplication"
	AggregateTypeCandidate   = "CandidateProfile"
	AggregateTypeDocument    = "CandidateDocument"
)

// Recruiting event types
const (
	EventTypeJobCreated               = "JobCreated"
	EventTypeJobStatusChanged         = "JobStatusChanged"
	EventTypeApplicationCreated       = "ApplicationCreated"
	EventTypeApplicationStatusChanged = "ApplicationStatusChanged"
	EventTypeJobAccessGranted         = "JobAccessGranted"
	EventTypeJobAccessRevoked         = "JobAccessRevoked"
	EventTypeDocumentConfirmed        = "DocumentConfirmed"
)

// JobCreatedEvent is published when a job is drafted
type JobCreatedEvent struct {
	shared.BaseDomainEvent
	Title string `json:"title"`
}

// NewJobCreatedEvent creates a new JobCreatedEvent
func NewJobCreatedEvent(job *Job) *JobCreatedEvent {
	return &JobCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeJobCreated, AggregateTypeJob, job.ID, job.OrganizationID),
		Title:           job.Title,
	}
}

// JobStatusChangedEvent is published on every job lifecycle move
type JobStatusChangedEvent struct {
	shared.BaseDomainEvent
	From JobStatus `json:"from"`
	To   JobStatus `json:"to"`
}

// NewJobStatusChangedEvent creates a new JobStatusChangedEvent
func NewJobStatusChangedEvent(job *Job, from JobStatus) *JobStatusChangedEvent {
	return &JobStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeJobStatusChanged, AggregateTypeJob, job.ID, job.OrganizationID),
		From:            from,
		To:              job.Status,
	}
}

// ApplicationCreatedEvent is published when a candidate applies to a job
type ApplicationCreatedEvent struct {
	shared.BaseDomainEvent
	JobID       uuid.UUID         `json:"job_id"`
	CandidateID uuid.UUID         `json:"candidate_id"`
	Source      ApplicationSource `json:"source"`
	CreatedBy   uuid.UUID         `json:"created_by"`
}

// NewApplicationCreatedEvent creates a new ApplicationCreatedEvent
func NewApplicationCreatedEvent(app *JobApplication) *ApplicationCreatedEvent {
	var createdBy uuid.UUID
	if app.CreatedBy != nil {
		createdBy = *app.CreatedBy
	}
	return &ApplicationCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeApplicationCreated, AggregateTypeApplication, app.ID, app.OrganizationID),
		JobID:           app.JobID,
		CandidateID:     app.CandidateID,
		Source:          app.Source,
		CreatedBy:       createdBy,
	}
}

// ApplicationStatusChangedEvent is published on every pipeline move
type ApplicationStatusChangedEvent struct {
	shared.BaseDomainEvent
	JobID     uuid.UUID         `json:"job_id"`
	From      ApplicationStatus `json:"from"`
	To        ApplicationStatus `json:"to"`
	Reason    string            `json:"reason,omitempty"`
	ChangedBy uuid.UUID         `json:"changed_by"`
}

// NewApplicationStatusChangedEvent creates a new ApplicationStatusChangedEvent
func NewApplicationStatusChangedEvent(app *JobApplication, from ApplicationStatus, reason string, changedBy uuid.UUID) *ApplicationStatusChangedEvent {
	return &ApplicationStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeApplicationStatusChanged, AggregateTypeApplication, app.ID, app.OrganizationID),
		JobID:           app.JobID,
		From:            from,
		To:              app.Status,
		Reason:          reason,
		ChangedBy:       changedBy,
	}
}

// JobAccessChangedEvent is published when a grant is created or revoked
type JobAccessChangedEvent struct {
	shared.BaseDomainEvent
	UserID    uuid.UUID `json:"user_id"`
	ChangedBy uuid.UUID `json:"changed_by"`
}

// NewJobAccessGrantedEvent creates a JobAccessChangedEvent for a new grant
func NewJobAccessGrantedEvent(grant *JobAccessGrant) *JobAccessChangedEvent {
	return &JobAccessChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeJobAccessGranted, AggregateTypeJob, grant.JobID, grant.OrganizationID),
		UserID:          grant.UserID,
		ChangedBy:       grant.GrantedBy,
	}
}

// NewJobAccessRevokedEvent creates a JobAccessChangedEvent for a revoked grant
func NewJobAccessRevokedEvent(grant *JobAccessGrant) *JobAccessChangedEvent {
	var by uuid.UUID
	if grant.RevokedBy != nil {
		by = *grant.RevokedBy
	}
	return &JobAccessChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeJobAccessRevoked, AggregateTypeJob, grant.JobID, grant.OrganizationID),
		UserID:          grant.UserID,
		ChangedBy:       by,
	}
}

// DocumentConfirmedEvent is published once an upload is verified
type DocumentConfirmedEvent struct {
	shared.BaseDomainEvent
	CandidateID uuid.UUID    `json:"candidate_id"`
	Kind        DocumentKind `json:"kind"`
}

// NewDocumentConfirmedEvent creates a new DocumentConfirmedEvent
func NewDocumentConfirmedEvent(doc *CandidateDocument) *DocumentConfirmedEvent {
	return &DocumentConfirmedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDocumentConfirmed, AggregateTypeDocument, doc.ID, doc.OrganizationID),
		CandidateID:     doc.CandidateID,
		Kind:            doc.Kind,
	}
}
