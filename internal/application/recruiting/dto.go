package recruiting

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hireflow/backend/internal/domain/recruiting"
)

// CreateJobRequest represents a request to draft a job
type CreateJobRequest struct {
	Title           string           `json:"title" binding:"required,min=3,max=200"`
	Department      string           `json:"department" binding:"max=100"`
	Location        string           `json:"location" binding:"max=200"`
	EmploymentType  string           `json:"employment_type" binding:"omitempty,oneof=full_time part_time contract internship temporary"`
	WorkMode        string           `json:"work_mode" binding:"omitempty,oneof=onsite remote hybrid"`
	Openings        int              `json:"openings" binding:"omitempty,min=1,max=1000"`
	DescriptionHTML string           `json:"description_html" binding:"omitempty,html_not_empty"`
	ExperienceMin   *int             `json:"experience_min" binding:"omitempty,min=0,max=60"`
	ExperienceMax   *int             `json:"experience_max" binding:"omitempty,min=0,max=60"`
	SalaryMin       *decimal.Decimal `json:"salary_min"`
	SalaryMax       *decimal.Decimal `json:"salary_max"`
	SalaryCurrency  string           `json:"salary_currency" binding:"omitempty,salary_currency"`
}

// UpdateJobRequest replaces the editable fields of a job. Version must be the
// version the client read.
type UpdateJobRequest struct {
	CreateJobRequest
	Version int `json:"version" binding:"required,min=1"`
}

// JobListFilter represents the query of a job list
type JobListFilter struct {
	Page           int      `form:"page" binding:"omitempty,min=1"`
	PageSize       int      `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy        string   `form:"order_by" binding:"omitempty,oneof=title status created_at updated_at published_at salary_min experience_min"`
	OrderDir       string   `form:"order_dir" binding:"omitempty,oneof=asc desc"`
	Search         string   `form:"search" binding:"max=100"`
	Status         []string `form:"status" binding:"dive,oneof=draft open closed archived"`
	EmploymentType string   `form:"employment_type" binding:"omitempty,oneof=full_time part_time contract internship temporary"`
	WorkMode       string   `form:"work_mode" binding:"omitempty,oneof=onsite remote hybrid"`
	Department     string   `form:"department" binding:"max=100"`
	Location       string   `form:"location" binding:"max=200"`
	CreatedBy      string   `form:"created_by" binding:"omitempty,uuid"`
}

// JobResponse represents a job in API responses
type JobResponse struct {
	ID               uuid.UUID        `json:"id"`
	Title            string           `json:"title"`
	Department       string           `json:"department,omitempty"`
	Location         string           `json:"location,omitempty"`
	EmploymentType   string           `json:"employment_type"`
	WorkMode         string           `json:"work_mode"`
	Openings         int              `json:"openings"`
	DescriptionHTML  string           `json:"description_html,omitempty"`
	DescriptionText  string           `json:"description_text,omitempty"`
	ExperienceMin    *int             `json:"experience_min,omitempty"`
	ExperienceMax    *int             `json:"experience_max,omitempty"`
	SalaryMin        *decimal.Decimal `json:"salary_min,omitempty"`
	SalaryMax        *decimal.Decimal `json:"salary_max,omitempty"`
	SalaryCurrency   string           `json:"salary_currency,omitempty"`
	Status           string           `json:"status"`
	PublishedAt      *time.Time       `json:"published_at,omitempty"`
	ClosedAt         *time.Time       `json:"closed_at,omitempty"`
	CreatedBy        *uuid.UUID       `json:"created_by,omitempty"`
	ApplicationCount *int64           `json:"application_count,omitempty"`
	Version          int              `json:"version"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

// JobPDF is a rendered job posting
type JobPDF struct {
	FileName string
	Content  []byte
}

// CreateApplicationRequest applies a candidate to a job
type CreateApplicationRequest struct {
	JobID       uuid.UUID `json:"job_id" binding:"required"`
	CandidateID uuid.UUID `json:"candidate_id" binding:"required"`
	Source      string    `json:"source" binding:"omitempty,oneof=career_site referral linkedin agency direct other"`
	CoverLetter string    `json:"cover_letter" binding:"max=10000"`
}

// ChangeStatusRequest moves an application along the pipeline
type ChangeStatusRequest struct {
	Status  string `json:"status" binding:"required,oneof=applied screening interview offer hired rejected withdrawn"`
	Reason  string `json:"reason" binding:"max=1000"`
	Version int    `json:"version" binding:"required,min=1"`
}

// RateApplicationRequest sets the reviewer rating
type RateApplicationRequest struct {
	Rating  *int `json:"rating" binding:"required,min=0,max=5"`
	Version int  `json:"version" binding:"required,min=1"`
}

// ApplicationListFilter represents the query of an application list
type ApplicationListFilter struct {
	Page        int        `form:"page" binding:"omitempty,min=1"`
	PageSize    int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy     string     `form:"order_by" binding:"omitempty,oneof=applied_at updated_at status_changed_at status rating"`
	OrderDir    string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
	Search      string     `form:"search" binding:"max=100"`
	JobID       string     `form:"job_id" binding:"omitempty,uuid"`
	CandidateID string     `form:"candidate_id" binding:"omitempty,uuid"`
	Status      []string   `form:"status" binding:"dive,oneof=applied screening interview offer hired rejected withdrawn"`
	Source      string     `form:"source" binding:"omitempty,oneof=career_site referral linkedin agency direct other"`
	AppliedFrom *time.Time `form:"applied_from" time_format:"2006-01-02"`
	AppliedTo   *time.Time `form:"applied_to" time_format:"2006-01-02"`
}

// ApplicationResponse represents an application in API responses
type ApplicationResponse struct {
	ID              uuid.UUID  `json:"id"`
	JobID           uuid.UUID  `json:"job_id"`
	JobTitle        string     `json:"job_title,omitempty"`
	CandidateID     uuid.UUID  `json:"candidate_id"`
	CandidateName   string     `json:"candidate_name,omitempty"`
	CandidateEmail  string     `json:"candidate_email,omitempty"`
	Status          string     `json:"status"`
	NextStatuses    []string   `json:"next_statuses"`
	Source          string     `json:"source"`
	CoverLetter     string     `json:"cover_letter,omitempty"`
	Rating          int        `json:"rating"`
	RejectionReason string     `json:"rejection_reason,omitempty"`
	AppliedAt       time.Time  `json:"applied_at"`
	StatusChangedAt time.Time  `json:"status_changed_at"`
	CreatedBy       *uuid.UUID `json:"created_by,omitempty"`
	Version         int        `json:"version"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// StatusHistoryResponse is one recorded pipeline move
type StatusHistoryResponse struct {
	ID         uuid.UUID `json:"id"`
	FromStatus string    `json:"from_status,omitempty"`
	ToStatus   string    `json:"to_status"`
	ChangedBy  uuid.UUID `json:"changed_by"`
	Reason     string    `json:"reason,omitempty"`
	ChangedAt  time.Time `json:"changed_at"`
}

// CandidateRequest represents the editable fields of a candidate
type CandidateRequest struct {
	FirstName    string   `json:"first_name" binding:"required,max=100"`
	LastName     string   `json:"last_name" binding:"required,max=100"`
	Email        string   `json:"email" binding:"required,email,max=200"`
	Phone        string   `json:"phone" binding:"max=50"`
	Location     string   `json:"location" binding:"max=200"`
	Headline     string   `json:"headline" binding:"max=200"`
	Summary      string   `json:"summary" binding:"max=5000"`
	LinkedInURL  string   `json:"linkedin_url" binding:"omitempty,url,max=500"`
	PortfolioURL string   `json:"portfolio_url" binding:"omitempty,url,max=500"`
	Skills       []string `json:"skills" binding:"max=50,dive,max=50"`
}

func (r CandidateRequest) details() recruiting.CandidateDetails {
	return recruiting.CandidateDetails{
		FirstName:    r.FirstName,
		LastName:     r.LastName,
		Email:        r.Email,
		Phone:        r.Phone,
		Location:     r.Location,
		Headline:     r.Headline,
		Summary:      r.Summary,
		LinkedInURL:  r.LinkedInURL,
		PortfolioURL: r.PortfolioURL,
		Skills:       r.Skills,
	}
}

// EducationRequest represents an education entry
type EducationRequest struct {
	Institution  string     `json:"institution" binding:"required,max=200"`
	Degree       string     `json:"degree" binding:"max=100"`
	FieldOfStudy string     `json:"field_of_study" binding:"max=100"`
	StartDate    *time.Time `json:"start_date"`
	EndDate      *time.Time `json:"end_date"`
	Grade        string     `json:"grade" binding:"max=50"`
	Description  string     `json:"description" binding:"max=2000"`
}

// ExperienceRequest represents a work history entry
type ExperienceRequest struct {
	Company     string     `json:"company" binding:"required,max=200"`
	Title       string     `json:"title" binding:"required,max=200"`
	Location    string     `json:"location" binding:"max=200"`
	StartDate   time.Time  `json:"start_date" binding:"required"`
	EndDate     *time.Time `json:"end_date"`
	IsCurrent   bool       `json:"is_current"`
	Description string     `json:"description" binding:"max=2000"`
}

// CandidateListFilter represents the query of a candidate list
type CandidateListFilter struct {
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by" binding:"omitempty,oneof=last_name first_name created_at updated_at"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
	Search   string `form:"search" binding:"max=100"`
	Skill    string `form:"skill" binding:"max=50"`
}

// EducationResponse represents an education entry
type EducationResponse struct {
	ID           uuid.UUID  `json:"id"`
	Institution  string     `json:"institution"`
	Degree       string     `json:"degree,omitempty"`
	FieldOfStudy string     `json:"field_of_study,omitempty"`
	StartDate    *time.Time `json:"start_date,omitempty"`
	EndDate      *time.Time `json:"end_date,omitempty"`
	Grade        string     `json:"grade,omitempty"`
	Description  string     `json:"description,omitempty"`
}

// ExperienceResponse represents a work history entry
type ExperienceResponse struct {
	ID          uuid.UUID  `json:"id"`
	Company     string     `json:"company"`
	Title       string     `json:"title"`
	Location    string     `json:"location,omitempty"`
	StartDate   time.Time  `json:"start_date"`
	EndDate     *time.Time `json:"end_date,omitempty"`
	IsCurrent   bool       `json:"is_current"`
	Description string     `json:"description,omitempty"`
}

// CandidateResponse represents a candidate in API responses
type CandidateResponse struct {
	ID                   uuid.UUID             `json:"id"`
	FirstName            string                `json:"first_name"`
	LastName             string                `json:"last_name"`
	FullName             string                `json:"full_name"`
	Email                string                `json:"email"`
	Phone                string                `json:"phone,omitempty"`
	Location             string                `json:"location,omitempty"`
	Headline             string                `json:"headline,omitempty"`
	Summary              string                `json:"summary,omitempty"`
	LinkedInURL          string                `json:"linkedin_url,omitempty"`
	PortfolioURL         string                `json:"portfolio_url,omitempty"`
	Skills               []string              `json:"skills"`
	ResumeDocumentID     *uuid.UUID            `json:"resume_document_id,omitempty"`
	TotalExperienceYears float64               `json:"total_experience_years"`
	Education            []EducationResponse   `json:"education,omitempty"`
	Experience           []ExperienceResponse  `json:"experience,omitempty"`
	Applications         []ApplicationResponse `json:"applications,omitempty"`
	Version              int                   `json:"version"`
	CreatedAt            time.Time             `json:"created_at"`
	UpdatedAt            time.Time             `json:"updated_at"`
}

// GrantAccessRequest grants a member access to a job
type GrantAccessRequest struct {
	UserID uuid.UUID `json:"user_id" binding:"required"`
}

// GrantResponse represents an active job access grant
type GrantResponse struct {
	ID        uuid.UUID `json:"id"`
	JobID     uuid.UUID `json:"job_id"`
	JobTitle  string    `json:"job_title,omitempty"`
	UserID    uuid.UUID `json:"user_id"`
	UserName  string    `json:"user_name,omitempty"`
	UserEmail string    `json:"user_email,omitempty"`
	GrantedBy uuid.UUID `json:"granted_by"`
	GrantedAt time.Time `json:"granted_at"`
}

// InitiateUploadRequest starts a document upload
type InitiateUploadRequest struct {
	Kind        string `json:"kind" binding:"omitempty,oneof=resume cover_letter portfolio other"`
	FileName    string `json:"file_name" binding:"required,max=255"`
	ContentType string `json:"content_type" binding:"required"`
	FileSize    int64  `json:"file_size" binding:"required,min=1"`
	// Checksum is the base64 MD5 of the content, sent back as Content-MD5
	Checksum string `json:"checksum" binding:"required,base64"`
}

// UploadTicket is a presigned upload for a pending document
type UploadTicket struct {
	Document  DocumentResponse  `json:"document"`
	UploadURL string            `json:"upload_url"`
	Method    string            `json:"method"`
	Headers   map[string]string `json:"headers"`
	ExpiresAt time.Time         `json:"expires_at"`
}

// DownloadLink is a presigned download of an active document
type DownloadLink struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// DocumentResponse represents a candidate document
type DocumentResponse struct {
	ID          uuid.UUID  `json:"id"`
	CandidateID uuid.UUID  `json:"candidate_id"`
	Kind        string     `json:"kind"`
	FileName    string     `json:"file_name"`
	ContentType string     `json:"content_type"`
	FileSize    int64      `json:"file_size"`
	Status      string     `json:"status"`
	UploadedBy  *uuid.UUID `json:"uploaded_by,omitempty"`
	ConfirmedAt *time.Time `json:"confirmed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

func toJobResponse(job *recruiting.Job, applicationCount *int64) JobResponse {
	return JobResponse{
		ID:               job.ID,
		Title:            job.Title,
		Department:       job.Department,
		Location:         job.Location,
		EmploymentType:   string(job.EmploymentType),
		WorkMode:         string(job.WorkMode),
		Openings:         job.Openings,
		DescriptionHTML:  job.Description.HTML,
		DescriptionText:  job.Description.Text,
		ExperienceMin:    job.Experience.Min,
		ExperienceMax:    job.Experience.Max,
		SalaryMin:        job.Salary.Min,
		SalaryMax:        job.Salary.Max,
		SalaryCurrency:   job.Salary.Currency,
		Status:           string(job.Status),
		PublishedAt:      job.PublishedAt,
		ClosedAt:         job.ClosedAt,
		CreatedBy:        job.CreatedBy,
		ApplicationCount: applicationCount,
		Version:          job.Version,
		CreatedAt:        job.CreatedAt,
		UpdatedAt:        job.UpdatedAt,
	}
}

func toApplicationResponse(app *recruiting.JobApplication) ApplicationResponse {
	next := app.Status.NextStatuses()
	nextStatuses := make([]string, len(next))
	for i, s := range next {
		nextStatuses[i] = string(s)
	}
	return ApplicationResponse{
		ID:              app.ID,
		JobID:           app.JobID,
		CandidateID:     app.CandidateID,
		Status:          string(app.Status),
		NextStatuses:    nextStatuses,
		Source:          string(app.Source),
		CoverLetter:     app.CoverLetter,
		Rating:          app.Rating,
		RejectionReason: app.RejectionReason,
		AppliedAt:       app.AppliedAt,
		StatusChangedAt: app.StatusChangedAt,
		CreatedBy:       app.CreatedBy,
		Version:         app.Version,
		UpdatedAt:       app.UpdatedAt,
	}
}

func toCandidateResponse(c *recruiting.CandidateProfile, now time.Time) CandidateResponse {
	resp := CandidateResponse{
		ID:                   c.ID,
		FirstName:            c.FirstName,
		LastName:             c.LastName,
		FullName:             c.FullName(),
		Email:                c.Email,
		Phone:                c.Phone,
		Location:             c.Location,
		Headline:             c.Headline,
		Summary:              c.Summary,
		LinkedInURL:          c.LinkedInURL,
		PortfolioURL:         c.PortfolioURL,
		Skills:               c.Skills,
		ResumeDocumentID:     c.ResumeDocumentID,
		TotalExperienceYears: c.TotalExperienceYears(now),
		Version:              c.Version,
		CreatedAt:            c.CreatedAt,
		UpdatedAt:            c.UpdatedAt,
	}
	if resp.Skills == nil {
		resp.Skills = make([]string, 0)
	}
	for _, e := range c.Education {
		resp.Education = append(resp.Education, toEducationResponse(e))
	}
	for _, e := range c.Experience {
		resp.Experience = append(resp.Experience, toExperienceResponse(e))
	}
	return resp
}

func toEducationResponse(e recruiting.Education) EducationResponse {
	return EducationResponse{
		ID:           e.ID,
		Institution:  e.Institution,
		Degree:       e.Degree,
		FieldOfStudy: e.FieldOfStudy,
		StartDate:    e.StartDate,
		EndDate:      e.EndDate,
		Grade:        e.Grade,
		Description:  e.Description,
	}
}

func toExperienceResponse(e recruiting.Experience) ExperienceResponse {
	return ExperienceResponse{
		ID:          e.ID,
		Company:     e.Company,
		Title:       e.Title,
		Location:    e.Location,
		StartDate:   e.StartDate,
		EndDate:     e.EndDate,
		IsCurrent:   e.IsCurrent,
		Description: e.Description,
	}
}

func toDocumentResponse(d *recruiting.CandidateDocument) DocumentResponse {
	return DocumentResponse{
		ID:          d.ID,
		CandidateID: d.CandidateID,
		Kind:        string(d.Kind),
		FileName:    d.FileName,
		ContentType: d.ContentType,
		FileSize:    d.FileSize,
		Status:      string(d.Status),
		UploadedBy:  d.CreatedBy,
		ConfirmedAt: d.ConfirmedAt,
		CreatedAt:   d.CreatedAt,
	}
}

func toGrantResponse(g *recruiting.JobAccessGrant) GrantResponse {
	return GrantResponse{
		ID:        g.ID,
		JobID:     g.JobID,
		UserID:    g.UserID,
		GrantedBy: g.GrantedBy,
		GrantedAt: g.GrantedAt,
	}
}
