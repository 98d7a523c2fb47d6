package recruiting

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hireflow/backend/internal/domain/shared"
)

// ApplicationStatus is the pipeline stage of an application
type ApplicationStatus string

const (
	ApplicationStatusApplied   ApplicationStatus = "applied"
	ApplicationStatusScreening ApplicationStatus = "screening"
	ApplicationStatusInterview ApplicationStatus = "interview"
	ApplicationStatusOffer     ApplicationStatus = "offer"
	ApplicationStatusHired     ApplicationStatus = "hired"
	ApplicationStatusRejected  ApplicationStatus = "rejected"
	ApplicationStatusWithdrawn ApplicationStatus = "withdrawn"
)

// AllApplicationStatuses lists every status in pipeline order
var AllApplicationStatuses = []ApplicationStatus{
	ApplicationStatusApplied,
	ApplicationStatusScreening,
	ApplicationStatusInterview,
	ApplicationStatusOffer,
	ApplicationStatusHired,
	ApplicationStatusRejected,
	ApplicationStatusWithdrawn,
}

var applicationTransitions = map[ApplicationStatus][]ApplicationStatus{
	ApplicationStatusApplied:   {ApplicationStatusScreening, ApplicationStatusRejected, ApplicationStatusWithdrawn},
	ApplicationStatusScreening: {ApplicationStatusInterview, ApplicationStatusRejected, ApplicationStatusWithdrawn},
	ApplicationStatusInterview: {ApplicationStatusOffer, ApplicationStatusRejected, ApplicationStatusWithdrawn},
	ApplicationStatusOffer:     {ApplicationStatusHired, ApplicationStatusRejected, ApplicationStatusWithdrawn},
	ApplicationStatusRejected:  {ApplicationStatusScreening},
}

// IsValid checks if the status is a known value
func (s ApplicationStatus) IsValid() bool {
	_, ok := applicationTransitions[s]
	return ok || s == ApplicationStatusHired || s == ApplicationStatusWithdrawn
}

// IsTerminal returns true when no further transition exists
func (s ApplicationStatus) IsTerminal() bool {
	return len(applicationTransitions[s]) == 0
}

// CanTransitionTo reports whether an application may move from s to next
func (s ApplicationStatus) CanTransitionTo(next ApplicationStatus) bool {
	for _, allowed := range applicationTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// NextStatuses returns the statuses reachable from s
func (s ApplicationStatus) NextStatuses() []ApplicationStatus {
	next := applicationTransitions[s]
	out := make([]ApplicationStatus, len(next))
	copy(out, next)
	return out
}

// ApplicationSource records where the candidate came from
type ApplicationSource string

const (
	SourceCareerSite ApplicationSource = "career_site"
	SourceReferral   ApplicationSource = "referral"
	SourceLinkedIn   ApplicationSource = "linkedin"
	SourceAgency     ApplicationSource = "agency"
	SourceDirect     ApplicationSource = "direct"
	SourceOther      ApplicationSource = "other"
)

// IsValid checks if the source is a known value
func (s ApplicationSource) IsValid() bool {
	switch s {
	case SourceCareerSite, SourceReferral, SourceLinkedIn, SourceAgency, SourceDirect, SourceOther:
		return true
	}
	return false
}

// Application errors
var (
	ErrAlreadyApplied = shared.NewDomainError("ALREADY_APPLIED", "Candidate has already applied to this job")
	ErrInvalidRating  = shared.NewDomainError("INVALID_RATING", "Rating must be between 0 and 5")
)

const (
	maxCoverLetter     = 10000
	maxRejectionReason = 1000
)

// JobApplication is a candidate's submission against a job posting
type JobApplication struct {
	shared.OrgAggregateRoot
	JobID           uuid.UUID
	CandidateID     uuid.UUID
	Status          ApplicationStatus
	Source          ApplicationSource
	CoverLetter     string
	Rating          int
	RejectionReason string
	AppliedAt       time.Time
	StatusChangedAt time.Time
}

// NewJobApplication applies a candidate to an open job
func NewJobApplication(job *Job, candidateID, createdBy uuid.UUID, source ApplicationSource, coverLetter string) (*JobApplication, error) {
	if job == nil {
		return nil, shared.NewDomainError("INVALID_JOB", "Job is required")
	}
	if !job.IsOpen() {
		return nil, ErrJobNotOpen
	}
	if candidateID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CANDIDATE", "Candidate is required")
	}
	if source == "" {
		source = SourceDirect
	}
	if !source.IsValid() {
		return nil, shared.NewDomainError("INVALID_SOURCE", "Unknown application source")
	}
	coverLetter = strings.TrimSpace(coverLetter)
	if len(coverLetter) > maxCoverLetter {
		return nil, shared.NewDomainError("INVALID_COVER_LETTER", "Cover letter cannot exceed 10000 characters")
	}

	app := &JobApplication{
		OrgAggregateRoot: shared.NewOrgAggregateRootWithCreator(job.OrganizationID, createdBy),
		JobID:            job.ID,
		CandidateID:      candidateID,
		Status:           ApplicationStatusApplied,
		Source:           source,
		CoverLetter:      coverLetter,
	}
	app.AppliedAt = app.CreatedAt
	app.StatusChangedAt = app.CreatedAt
	app.AddDomainEvent(NewApplicationCreatedEvent(app))
	return app, nil
}

// ChangeStatus moves the application along the pipeline.
// reason is kept only when moving to rejected.
func (a *JobApplication) ChangeStatus(next ApplicationStatus, reason string, changedBy uuid.UUID) error {
	if !next.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", "Unknown application status")
	}
	if !a.Status.CanTransitionTo(next) {
		return shared.NewDomainError("INVALID_TRANSITION", "Application cannot move from "+string(a.Status)+" to "+string(next))
	}
	reason = strings.TrimSpace(reason)
	if len(reason) > maxRejectionReason {
		return shared.NewDomainError("INVALID_REASON", "Reason cannot exceed 1000 characters")
	}

	previous := a.Status
	a.Status = next
	if next == ApplicationStatusRejected {
		a.RejectionReason = reason
	} else {
		a.RejectionReason = ""
	}
	now := shared.Now()
	a.StatusChangedAt = now
	a.UpdatedAt = now
	a.IncrementVersion()
	a.AddDomainEvent(NewApplicationStatusChangedEvent(a, previous, reason, changedBy))
	return nil
}

// Rate sets the reviewer rating; 0 clears it
func (a *JobApplication) Rate(rating int) error {
	if rating < 0 || rating > 5 {
		return ErrInvalidRating
	}
	a.Rating = rating
	a.Touch()
	a.IncrementVersion()
	return nil
}

// ApplicationStatusHistory is one recorded pipeline move
type ApplicationStatusHistory struct {
	ID             uuid.UUID
	OrganizationID uuid.UUID
	ApplicationID  uuid.UUID
	FromStatus     ApplicationStatus
	ToStatus       ApplicationStatus
	ChangedBy      uuid.UUID
	Reason         string
	ChangedAt      time.Time
}

// ApplicationListItem is an application joined with the names a list needs
type ApplicationListItem struct {
	*JobApplication
	CandidateName  string
	CandidateEmail string
	JobTitle       string
}
