package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/hireflow/backend/internal/domain/recruiting"
	"github.com/shopspring/decimal"
)

// JobModel is the persistence model for the Job aggregate.
type JobModel struct {
	OrgAggregateModel
	Title           string                    `gorm:"type:varchar(200);not null"`
	Department      string                    `gorm:"type:varchar(100)"`
	Location        string                    `gorm:"type:varchar(200)"`
	EmploymentType  recruiting.EmploymentType `gorm:"type:varchar(20);not null"`
	WorkMode        recruiting.WorkMode       `gorm:"type:varchar(20);not null"`
	Openings        int                       `gorm:"not null;default:1"`
	DescriptionHTML string                    `gorm:"type:text"`
	DescriptionText string                    `gorm:"type:text"`
	ExperienceMin   *int                      `gorm:"index"`
	ExperienceMax   *int
	SalaryMin       decimal.NullDecimal       `gorm:"type:decimal(14,2)"`
	SalaryMax       decimal.NullDecimal       `gorm:"type:decimal(14,2)"`
	SalaryCurrency  string                    `gorm:"type:varchar(3)"`
	Status          recruiting.JobStatus      `gorm:"type:varchar(20);not null;index"`
	PublishedAt     *time.Time                `gorm:"index"`
	ClosedAt        *time.Time
}

// TableName returns the table name for GORM
func (JobModel) TableName() string {
	return "jobs"
}

// ToDomain converts the persistence model to a domain Job.
func (m *JobModel) ToDomain() *recruiting.Job {
	job := &recruiting.Job{
		JobDetails: recruiting.JobDetails{
			Title:          m.Title,
			Department:     m.Department,
			Location:       m.Location,
			EmploymentType: m.EmploymentType,
			WorkMode:       m.WorkMode,
			Openings:       m.Openings,
			Experience:     recruiting.ExperienceRange{Min: m.ExperienceMin, Max: m.ExperienceMax},
			Salary: recruiting.SalaryRange{
				Min:      decimalPtr(m.SalaryMin),
				Max:      decimalPtr(m.SalaryMax),
				Currency: m.SalaryCurrency,
			},
		},
		Description: recruiting.JobDescription{HTML: m.DescriptionHTML, Text: m.DescriptionText},
		Status:      m.Status,
		PublishedAt: m.PublishedAt,
		ClosedAt:    m.ClosedAt,
	}
	m.PopulateOrgAggregateRoot(&job.OrgAggregateRoot)
	return job
}

// FromDomain populates the persistence model from a domain Job.
func (m *JobModel) FromDomain(j *recruiting.Job) {
	m.FromDomainOrgAggregateRoot(j.OrgAggregateRoot)
	m.Title = j.Title
	m.Department = j.Department
	m.Location = j.Location
	m.EmploymentType = j.EmploymentType
	m.WorkMode = j.WorkMode
	m.Openings = j.Openings
	m.DescriptionHTML = j.Description.HTML
	m.DescriptionText = j.Description.Text
	m.ExperienceMin = j.Experience.Min
	m.ExperienceMax = j.Experience.Max
	m.SalaryMin = nullDecimal(j.Salary.Min)
	m.SalaryMax = nullDecimal(j.Salary.Max)
	m.SalaryCurrency = j.Salary.Currency
	m.Status = j.Status
	m.PublishedAt = j.PublishedAt
	m.ClosedAt = j.ClosedAt
}

// JobModelFromDomain creates a new persistence model from a domain Job.
func JobModelFromDomain(j *recruiting.Job) *JobModel {
	m := &JobModel{}
	m.FromDomain(j)
	return m
}

// JobApplicationModel is the persistence model for the JobApplication aggregate.
type JobApplicationModel struct {
	OrgAggregateModel
	JobID           uuid.UUID                    `gorm:"type:uuid;not null;uniqueIndex:idx_job_applications_job_candidate"`
	CandidateID     uuid.UUID                    `gorm:"type:uuid;not null;uniqueIndex:idx_job_applications_job_candidate;index"`
	Status          recruiting.ApplicationStatus `gorm:"type:varchar(20);not null;index"`
	Source          recruiting.ApplicationSource `gorm:"type:varchar(20);not null"`
	CoverLetter     string                       `gorm:"type:text"`
	Rating          int                          `gorm:"not null;default:0"`
	RejectionReason string                       `gorm:"type:text"`
	AppliedAt       time.Time                    `gorm:"not null;index"`
	StatusChangedAt time.Time                    `gorm:"not null"`
}

// TableName returns the table name for GORM
func (JobApplicationModel) TableName() string {
	return "job_applications"
}

// ToDomain converts the persistence model to a domain JobApplication.
func (m *JobApplicationModel) ToDomain() *recruiting.JobApplication {
	app := &recruiting.JobApplication{
		JobID:           m.JobID,
		CandidateID:     m.CandidateID,
		Status:          m.Status,
		Source:          m.Source,
		CoverLetter:     m.CoverLetter,
		Rating:          m.Rating,
		RejectionReason: m.RejectionReason,
		AppliedAt:       m.AppliedAt,
		StatusChangedAt: m.StatusChangedAt,
	}
	m.PopulateOrgAggregateRoot(&app.OrgAggregateRoot)
	return app
}

// FromDomain populates the persistence model from a domain JobApplication.
func (m *JobApplicationModel) FromDomain(a *recruiting.JobApplication) {
	m.FromDomainOrgAggregateRoot(a.OrgAggregateRoot)
	m.JobID = a.JobID
	m.CandidateID = a.CandidateID
	m.Status = a.Status
	m.Source = a.Source
	m.CoverLetter = a.CoverLetter
	m.Rating = a.Rating
	m.RejectionReason = a.RejectionReason
	m.AppliedAt = a.AppliedAt
	m.StatusChangedAt = a.StatusChangedAt
}

// JobApplicationModelFromDomain creates a new persistence model from a domain JobApplication.
func JobApplicationModelFromDomain(a *recruiting.JobApplication) *JobApplicationModel {
	m := &JobApplicationModel{}
	m.FromDomain(a)
	return m
}

// ApplicationStatusHistoryModel is one row of the pipeline audit trail.
type ApplicationStatusHistoryModel struct {
	ID             uuid.UUID                    `gorm:"type:uuid;primary_key"`
	OrganizationID uuid.UUID                    `gorm:"type:uuid;not null;index"`
	ApplicationID  uuid.UUID                    `gorm:"type:uuid;not null;index"`
	FromStatus     recruiting.ApplicationStatus `gorm:"type:varchar(20);not null"`
	ToStatus       recruiting.ApplicationStatus `gorm:"type:varchar(20);not null"`
	ChangedBy      uuid.UUID                    `gorm:"type:uuid;not null"`
	Reason         string                       `gorm:"type:text"`
	ChangedAt      time.Time                    `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ApplicationStatusHistoryModel) TableName() string {
	return "application_status_history"
}

// ToDomain converts the row to a domain ApplicationStatusHistory.
func (m *ApplicationStatusHistoryModel) ToDomain() recruiting.ApplicationStatusHistory {
	return recruiting.ApplicationStatusHistory{
		ID:             m.ID,
		OrganizationID: m.OrganizationID,
		ApplicationID:  m.ApplicationID,
		FromStatus:     m.FromStatus,
		ToStatus:       m.ToStatus,
		ChangedBy:      m.ChangedBy,
		Reason:         m.Reason,
		ChangedAt:      m.ChangedAt,
	}
}

// ApplicationStatusHistoryModelFromDomain creates a row from a domain entry.
func ApplicationStatusHistoryModelFromDomain(h *recruiting.ApplicationStatusHistory) *ApplicationStatusHistoryModel {
	return &ApplicationStatusHistoryModel{
		ID:             h.ID,
		OrganizationID: h.OrganizationID,
		ApplicationID:  h.ApplicationID,
		FromStatus:     h.FromStatus,
		ToStatus:       h.ToStatus,
		ChangedBy:      h.ChangedBy,
		Reason:         h.Reason,
		ChangedAt:      h.ChangedAt,
	}
}

// CandidateProfileModel is the persistence model for the CandidateProfile aggregate.
type CandidateProfileModel struct {
	OrgAggregateModel
	FirstName        string     `gorm:"type:varchar(100);not null"`
	LastName         string     `gorm:"type:varchar(100);not null"`
	Email            string     `gorm:"type:varchar(200);not null"`
	Phone            string     `gorm:"type:varchar(50)"`
	Location         string     `gorm:"type:varchar(200)"`
	Headline         string     `gorm:"type:varchar(200)"`
	Summary          string     `gorm:"type:text"`
	LinkedInURL      string     `gorm:"column:linkedin_url;type:varchar(500)"`
	PortfolioURL     string     `gorm:"type:varchar(500)"`
	Skills           []string   `gorm:"type:jsonb;serializer:json"`
	ResumeDocumentID *uuid.UUID `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (CandidateProfileModel) TableName() string {
	return "candidate_profiles"
}

// ToDomain converts the persistence model to a domain CandidateProfile.
// Education and experience must be attached by the repository.
func (m *CandidateProfileModel) ToDomain() *recruiting.CandidateProfile {
	skills := m.Skills
	if skills == nil {
		skills = make([]string, 0)
	}
	c := &recruiting.CandidateProfile{
		CandidateDetails: recruiting.CandidateDetails{
			FirstName:    m.FirstName,
			LastName:     m.LastName,
			Email:        m.Email,
			Phone:        m.Phone,
			Location:     m.Location,
			Headline:     m.Headline,
			Summary:      m.Summary,
			LinkedInURL:  m.LinkedInURL,
			PortfolioURL: m.PortfolioURL,
			Skills:       skills,
		},
		ResumeDocumentID: m.ResumeDocumentID,
		Education:        make([]recruiting.Education, 0),
		Experience:       make([]recruiting.Experience, 0),
	}
	m.PopulateOrgAggregateRoot(&c.OrgAggregateRoot)
	return c
}

// FromDomain populates the persistence model from a domain CandidateProfile.
func (m *CandidateProfileModel) FromDomain(c *recruiting.CandidateProfile) {
	m.FromDomainOrgAggregateRoot(c.OrgAggregateRoot)
	m.FirstName = c.FirstName
	m.LastName = c.LastName
	m.Email = c.Email
	m.Phone = c.Phone
	m.Location = c.Location
	m.Headline = c.Headline
	m.Summary = c.Summary
	m.LinkedInURL = c.LinkedInURL
	m.PortfolioURL = c.PortfolioURL
	m.Skills = c.Skills
	m.ResumeDocumentID = c.ResumeDocumentID
}

// CandidateProfileModelFromDomain creates a new persistence model from a domain CandidateProfile.
func CandidateProfileModelFromDomain(c *recruiting.CandidateProfile) *CandidateProfileModel {
	m := &CandidateProfileModel{}
	m.FromDomain(c)
	return m
}

// EducationModel is one schooling row of a candidate.
type EducationModel struct {
	BaseModel
	OrganizationID uuid.UUID  `gorm:"type:uuid;not null;index"`
	CandidateID    uuid.UUID  `gorm:"type:uuid;not null;index"`
	Institution    string     `gorm:"type:varchar(200);not null"`
	Degree         string     `gorm:"type:varchar(200)"`
	FieldOfStudy   string     `gorm:"type:varchar(200)"`
	StartDate      *time.Time `gorm:"type:date"`
	EndDate        *time.Time `gorm:"type:date"`
	Grade          string     `gorm:"type:varchar(50)"`
	Description    string     `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (EducationModel) TableName() string {
	return "education"
}

// ToDomain converts the row to a domain Education entry.
func (m *EducationModel) ToDomain() recruiting.Education {
	return recruiting.Education{
		BaseEntity:  m.BaseModel.ToDomain(),
		CandidateID: m.CandidateID,
		EducationInput: recruiting.EducationInput{
			Institution:  m.Institution,
			Degree:       m.Degree,
			FieldOfStudy: m.FieldOfStudy,
			StartDate:    m.StartDate,
			EndDate:      m.EndDate,
			Grade:        m.Grade,
			Description:  m.Description,
		},
	}
}

// EducationModelFromDomain creates a row from a domain Education entry.
func EducationModelFromDomain(organizationID uuid.UUID, e recruiting.Education) EducationModel {
	m := EducationModel{
		OrganizationID: organizationID,
		CandidateID:    e.CandidateID,
		Institution:    e.Institution,
		Degree:         e.Degree,
		FieldOfStudy:   e.FieldOfStudy,
		StartDate:      e.StartDate,
		EndDate:        e.EndDate,
		Grade:          e.Grade,
		Description:    e.Description,
	}
	m.FromDomainBaseEntity(e.BaseEntity)
	return m
}

// ExperienceModel is one work history row of a candidate.
type ExperienceModel struct {
	BaseModel
	OrganizationID uuid.UUID  `gorm:"type:uuid;not null;index"`
	CandidateID    uuid.UUID  `gorm:"type:uuid;not null;index"`
	Company        string     `gorm:"type:varchar(200);not null"`
	Title          string     `gorm:"type:varchar(200);not null"`
	Location       string     `gorm:"type:varchar(200)"`
	StartDate      time.Time  `gorm:"type:date;not null"`
	EndDate        *time.Time `gorm:"type:date"`
	IsCurrent      bool       `gorm:"not null;default:false"`
	Description    string     `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (ExperienceModel) TableName() string {
	return "experience"
}

// ToDomain converts the row to a domain Experience entry.
func (m *ExperienceModel) ToDomain() recruiting.Experience {
	return recruiting.Experience{
		BaseEntity:  m.BaseModel.ToDomain(),
		CandidateID: m.CandidateID,
		ExperienceInput: recruiting.ExperienceInput{
			Company:     m.Company,
			Title:       m.Title,
			Location:    m.Location,
			StartDate:   m.StartDate,
			EndDate:     m.EndDate,
			IsCurrent:   m.IsCurrent,
			Description: m.Description,
		},
	}
}

// ExperienceModelFromDomain creates a row from a domain Experience entry.
func ExperienceModelFromDomain(organizationID uuid.UUID, e recruiting.Experience) ExperienceModel {
	m := ExperienceModel{
		OrganizationID: organizationID,
		CandidateID:    e.CandidateID,
		Company:        e.Company,
		Title:          e.Title,
		Location:       e.Location,
		StartDate:      e.StartDate,
		EndDate:        e.EndDate,
		IsCurrent:      e.IsCurrent,
		Description:    e.Description,
	}
	m.FromDomainBaseEntity(e.BaseEntity)
	return m
}

// JobAccessGrantModel is the persistence model for job_access_control.
type JobAccessGrantModel struct {
	BaseModel
	OrganizationID uuid.UUID  `gorm:"type:uuid;not null;index"`
	JobID          uuid.UUID  `gorm:"type:uuid;not null;index"`
	UserID         uuid.UUID  `gorm:"type:uuid;not null;index"`
	GrantedBy      uuid.UUID  `gorm:"type:uuid;not null"`
	GrantedAt      time.Time  `gorm:"not null"`
	RevokedAt      *time.Time `gorm:"index"`
	RevokedBy      *uuid.UUID `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (JobAccessGrantModel) TableName() string {
	return "job_access_control"
}

// ToDomain converts the row to a domain JobAccessGrant.
func (m *JobAccessGrantModel) ToDomain() *recruiting.JobAccessGrant {
	return &recruiting.JobAccessGrant{
		BaseEntity:     m.BaseModel.ToDomain(),
		OrganizationID: m.OrganizationID,
		JobID:          m.JobID,
		UserID:         m.UserID,
		GrantedBy:      m.GrantedBy,
		GrantedAt:      m.GrantedAt,
		RevokedAt:      m.RevokedAt,
		RevokedBy:      m.RevokedBy,
	}
}

// JobAccessGrantModelFromDomain creates a row from a domain JobAccessGrant.
func JobAccessGrantModelFromDomain(g *recruiting.JobAccessGrant) *JobAccessGrantModel {
	m := &JobAccessGrantModel{
		OrganizationID: g.OrganizationID,
		JobID:          g.JobID,
		UserID:         g.UserID,
		GrantedBy:      g.GrantedBy,
		GrantedAt:      g.GrantedAt,
		RevokedAt:      g.RevokedAt,
		RevokedBy:      g.RevokedBy,
	}
	m.FromDomainBaseEntity(g.BaseEntity)
	return m
}

// CandidateDocumentModel is the persistence model for the CandidateDocument aggregate.
type CandidateDocumentModel struct {
	OrgAggregateModel
	CandidateID uuid.UUID                 `gorm:"type:uuid;not null;index"`
	Kind        recruiting.DocumentKind   `gorm:"type:varchar(20);not null"`
	FileName    string                    `gorm:"type:varchar(255);not null"`
	ContentType string                    `gorm:"type:varchar(100);not null"`
	FileSize    int64                     `gorm:"not null"`
	Checksum    string                    `gorm:"type:varchar(64);not null"`
	StorageKey  string                    `gorm:"type:varchar(500);not null;uniqueIndex"`
	Status      recruiting.DocumentStatus `gorm:"type:varchar(20);not null;index"`
	ConfirmedAt *time.Time
}

// TableName returns the table name for GORM
func (CandidateDocumentModel) TableName() string {
	return "candidate_documents"
}

// ToDomain converts the persistence model to a domain CandidateDocument.
func (m *CandidateDocumentModel) ToDomain() *recruiting.CandidateDocument {
	doc := &recruiting.CandidateDocument{
		CandidateID: m.CandidateID,
		Kind:        m.Kind,
		FileName:    m.FileName,
		ContentType: m.ContentType,
		FileSize:    m.FileSize,
		Checksum:    m.Checksum,
		StorageKey:  m.StorageKey,
		Status:      m.Status,
		ConfirmedAt: m.ConfirmedAt,
	}
	m.PopulateOrgAggregateRoot(&doc.OrgAggregateRoot)
	return doc
}

// FromDomain populates the persistence model from a domain CandidateDocument.
func (m *CandidateDocumentModel) FromDomain(d *recruiting.CandidateDocument) {
	m.FromDomainOrgAggregateRoot(d.OrgAggregateRoot)
	m.CandidateID = d.CandidateID
	m.Kind = d.Kind
	m.FileName = d.FileName
	m.ContentType = d.ContentType
	m.FileSize = d.FileSize
	m.Checksum = d.Checksum
	m.StorageKey = d.StorageKey
	m.Status = d.Status
	m.ConfirmedAt = d.ConfirmedAt
}

// CandidateDocumentModelFromDomain creates a new persistence model from a domain CandidateDocument.
func CandidateDocumentModelFromDomain(d *recruiting.CandidateDocument) *CandidateDocumentModel {
	m := &CandidateDocumentModel{}
	m.FromDomain(d)
	return m
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}

func decimalPtr(d decimal.NullDecimal) *decimal.Decimal {
	if !d.Valid {
		return nil
	}
	v := d.Decimal
	return &v
}

// AllModels lists every model, in dependency order, for AutoMigrate in tests.
func AllModels() []any {
	return []any{
		&OrganizationModel{},
		&RoleModel{},
		&RolePermissionModel{},
		&UserProfileModel{},
		&UserRoleModel{},
		&JobModel{},
		&CandidateProfileModel{},
		&EducationModel{},
		&ExperienceModel{},
		&JobApplicationModel{},
		&ApplicationStatusHistoryModel{},
		&JobAccessGrantModel{},
		&CandidateDocumentModel{},
	}
}
