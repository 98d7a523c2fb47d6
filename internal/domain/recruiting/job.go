package recruiting

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hireflow/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// JobStatus represents the lifecycle state of a job posting
type JobStatus string

const (
	JobStatusDraft    JobStatus = "draft"
	JobStatusOpen     JobStatus = "open"
	JobStatusClosed   JobStatus = "closed"
	JobStatusArchived JobStatus = "archived"
)

// AllJobStatuses lists every job status in lifecycle order
var AllJobStatuses = []JobStatus{JobStatusDraft, JobStatusOpen, JobStatusClosed, JobStatusArchived}

var jobTransitions = map[JobStatus][]JobStatus{
	JobStatusDraft:  {JobStatusOpen, JobStatusArchived},
	JobStatusOpen:   {JobStatusClosed},
	JobStatusClosed: {JobStatusOpen, JobStatusArchived},
}

// IsValid checks if the status is a known value
func (s JobStatus) IsValid() bool {
	switch s {
	case JobStatusDraft, JobStatusOpen, JobStatusClosed, JobStatusArchived:
		return true
	}
	return false
}

// CanTransitionTo reports whether a job may move from s to next
func (s JobStatus) CanTransitionTo(next JobStatus) bool {
	for _, allowed := range jobTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// EmploymentType classifies the contract of a job
type EmploymentType string

const (
	EmploymentFullTime   EmploymentType = "full_time"
	EmploymentPartTime   EmploymentType = "part_time"
	EmploymentContract   EmploymentType = "contract"
	EmploymentInternship EmploymentType = "internship"
	EmploymentTemporary  EmploymentType = "temporary"
)

// IsValid checks if the employment type is a known value
func (e EmploymentType) IsValid() bool {
	switch e {
	case EmploymentFullTime, EmploymentPartTime, EmploymentContract, EmploymentInternship, EmploymentTemporary:
		return true
	}
	return false
}

// WorkMode is where the work happens
type WorkMode string

const (
	WorkModeOnsite WorkMode = "onsite"
	WorkModeRemote WorkMode = "remote"
	WorkModeHybrid WorkMode = "hybrid"
)

// IsValid checks if the work mode is a known value
func (w WorkMode) IsValid() bool {
	switch w {
	case WorkModeOnsite, WorkModeRemote, WorkModeHybrid:
		return true
	}
	return false
}

// Job errors
var (
	ErrJobNotOpen          = shared.NewDomainError("JOB_NOT_OPEN", "Job is not accepting applications")
	ErrJobArchived         = shared.NewDomainError("JOB_ARCHIVED", "Archived jobs cannot be modified")
	ErrJobHasApplications  = shared.NewDomainError("JOB_HAS_APPLICATIONS", "Job has applications; archive it instead")
	ErrDescriptionRequired = shared.NewDomainError("DESCRIPTION_REQUIRED", "A job needs a description before it can be published")
	ErrDescriptionTooLarge = shared.NewDomainError("DESCRIPTION_TOO_LARGE", "Job description exceeds 50000 bytes")
)

// MaxDescriptionBytes caps the stored, sanitized description
const MaxDescriptionBytes = 50000

// MaxExperienceYears bounds both ends of an experience range
const MaxExperienceYears = 60

var currencyRegex = regexp.MustCompile(`^[A-Z]{3}$`)

// IsCurrencyCode reports whether code looks like an ISO 4217 code
func IsCurrencyCode(code string) bool {
	return currencyRegex.MatchString(code)
}

// ExperienceRange is the required years of experience. Either end may be open.
type ExperienceRange struct {
	Min *int
	Max *int
}

// Validate enforces bounds and min <= max
func (r ExperienceRange) Validate() error {
	for _, v := range []*int{r.Min, r.Max} {
		if v != nil && (*v < 0 || *v > MaxExperienceYears) {
			return shared.NewDomainError("EXPERIENCE_RANGE_INVALID", "Experience years must be between 0 and 60")
		}
	}
	if r.Min != nil && r.Max != nil && *r.Min > *r.Max {
		return shared.NewDomainError("EXPERIENCE_RANGE_INVALID", "Minimum experience cannot exceed maximum experience")
	}
	return nil
}

// SalaryRange is the advertised compensation. Either end may be open.
type SalaryRange struct {
	Min      *decimal.Decimal
	Max      *decimal.Decimal
	Currency string
}

// IsSet reports whether any amount is present
func (r SalaryRange) IsSet() bool {
	return r.Min != nil || r.Max != nil
}

// Validate enforces non-negative amounts, min <= max and a currency when amounts are present
func (r SalaryRange) Validate() error {
	for _, v := range []*decimal.Decimal{r.Min, r.Max} {
		if v != nil && v.IsNegative() {
			return shared.NewDomainError("SALARY_RANGE_INVALID", "Salary cannot be negative")
		}
	}
	if r.Min != nil && r.Max != nil && r.Min.GreaterThan(*r.Max) {
		return shared.NewDomainError("SALARY_RANGE_INVALID", "Minimum salary cannot exceed maximum salary")
	}
	if r.IsSet() && r.Currency == "" {
		return shared.NewDomainError("SALARY_CURRENCY_REQUIRED", "Salary currency is required when a salary is given")
	}
	if r.Currency != "" && !IsCurrencyCode(r.Currency) {
		return shared.NewDomainError("SALARY_CURRENCY_INVALID", "Salary currency must be a 3-letter ISO code")
	}
	return nil
}

// JobDescription is sanitized rich text plus its plain-text projection
type JobDescription struct {
	HTML string
	Text string
}

// IsEmpty reports whether the description has no visible text
func (d JobDescription) IsEmpty() bool {
	return strings.TrimSpace(d.Text) == ""
}

// JobDetails holds the editable fields of a job posting
type JobDetails struct {
	Title          string
	Department     string
	Location       string
	EmploymentType EmploymentType
	WorkMode       WorkMode
	Openings       int
	Experience     ExperienceRange
	Salary         SalaryRange
}

func (d *JobDetails) normalize() {
	d.Title = strings.TrimSpace(d.Title)
	d.Department = strings.TrimSpace(d.Department)
	d.Location = strings.TrimSpace(d.Location)
	d.Salary.Currency = strings.ToUpper(strings.TrimSpace(d.Salary.Currency))
	if d.EmploymentType == "" {
		d.EmploymentType = EmploymentFullTime
	}
	if d.WorkMode == "" {
		d.WorkMode = WorkModeOnsite
	}
	if d.Openings == 0 {
		d.Openings = 1
	}
}

// Validate checks every field rule of a job form
func (d JobDetails) Validate() error {
	if d.Title == "" {
		return shared.NewDomainError("INVALID_TITLE", "Job title is required")
	}
	if len(d.Title) < 3 || len(d.Title) > 200 {
		return shared.NewDomainError("INVALID_TITLE", "Job title must be between 3 and 200 characters")
	}
	if len(d.Department) > 100 {
		return shared.NewDomainError("INVALID_DEPARTMENT", "Department cannot exceed 100 characters")
	}
	if len(d.Location) > 200 {
		return shared.NewDomainError("INVALID_LOCATION", "Location cannot exceed 200 characters")
	}
	if !d.EmploymentType.IsValid() {
		return shared.NewDomainError("INVALID_EMPLOYMENT_TYPE", "Unknown employment type")
	}
	if !d.WorkMode.IsValid() {
		return shared.NewDomainError("INVALID_WORK_MODE", "Unknown work mode")
	}
	if d.Openings < 1 || d.Openings > 1000 {
		return shared.NewDomainError("INVALID_OPENINGS", "Openings must be between 1 and 1000")
	}
	if err := d.Experience.Validate(); err != nil {
		return err
	}
	return d.Salary.Validate()
}

// Job is a posting that candidates apply to
type Job struct {
	shared.OrgAggregateRoot
	JobDetails
	Description JobDescription
	Status      JobStatus
	PublishedAt *time.Time
	ClosedAt    *time.Time
}

// NewJob creates a draft job
func NewJob(organizationID, createdBy uuid.UUID, details JobDetails, description JobDescription) (*Job, error) {
	details.normalize()
	if err := details.Validate(); err != nil {
		return nil, err
	}
	if err := validateDescription(description); err != nil {
		return nil, err
	}

	job := &Job{
		OrgAggregateRoot: shared.NewOrgAggregateRootWithCreator(organizationID, createdBy),
		JobDetails:       details,
		Description:      description,
		Status:           JobStatusDraft,
	}
	job.AddDomainEvent(NewJobCreatedEvent(job))
	return job, nil
}

// Update replaces the editable fields
func (j *Job) Update(details JobDetails, description JobDescription) error {
	if j.Status == JobStatusArchived {
		return ErrJobArchived
	}
	details.normalize()
	if err := details.Validate(); err != nil {
		return err
	}
	if err := validateDescription(description); err != nil {
		return err
	}
	if j.Status == JobStatusOpen && description.IsEmpty() {
		return ErrDescriptionRequired
	}
	j.JobDetails = details
	j.Description = description
	j.touch()
	return nil
}

// Publish opens a draft for applications
func (j *Job) Publish() error {
	if !j.Status.CanTransitionTo(JobStatusOpen) {
		return invalidJobTransition(j.Status, JobStatusOpen)
	}
	if j.Description.IsEmpty() {
		return ErrDescriptionRequired
	}
	if err := j.transition(JobStatusOpen); err != nil {
		return err
	}
	if j.PublishedAt == nil {
		now := shared.Now()
		j.PublishedAt = &now
	}
	j.ClosedAt = nil
	return nil
}

// Close stops accepting applications
func (j *Job) Close() error {
	if err := j.transition(JobStatusClosed); err != nil {
		return err
	}
	now := shared.Now()
	j.ClosedAt = &now
	return nil
}

// Reopen accepts applications again after a close
func (j *Job) Reopen() error {
	if j.Status != JobStatusClosed {
		return invalidJobTransition(j.Status, JobStatusOpen)
	}
	return j.Publish()
}

// Archive retires the job permanently
func (j *Job) Archive() error {
	return j.transition(JobStatusArchived)
}

// IsOpen returns true if the job accepts applications
func (j *Job) IsOpen() bool {
	return j.Status == JobStatusOpen
}

func (j *Job) transition(next JobStatus) error {
	if !j.Status.CanTransitionTo(next) {
		return invalidJobTransition(j.Status, next)
	}
	previous := j.Status
	j.Status = next
	j.touch()
	j.AddDomainEvent(NewJobStatusChangedEvent(j, previous))
	return nil
}

func (j *Job) touch() {
	j.Touch()
	j.IncrementVersion()
}

func validateDescription(d JobDescription) error {
	if len(d.HTML) > MaxDescriptionBytes {
		return ErrDescriptionTooLarge
	}
	return nil
}

func invalidJobTransition(from, to JobStatus) error {
	return shared.NewDomainError("INVALID_TRANSITION", "Job cannot move from "+string(from)+" to "+string(to))
}
