package recruiting

import (
	"net/url"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hireflow/backend/internal/domain/shared"
)

const (
	maxSkills      = 50
	maxSkillLength = 50
	maxEntryText   = 2000
)

var candidateEmailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// Candidate errors
var (
	ErrCandidateHasApplications = shared.NewDomainError("CANDIDATE_HAS_APPLICATIONS", "Candidate has applications and cannot be deleted")
	ErrCandidateEmailTaken      = shared.NewDomainError("CANDIDATE_EMAIL_TAKEN", "A candidate with this email already exists")
)

// CandidateDetails holds the editable fields of a candidate profile
type CandidateDetails struct {
	FirstName    string
	LastName     string
	Email        string
	Phone        string
	Location     string
	Headline     string
	Summary      string
	LinkedInURL  string
	PortfolioURL string
	Skills       []string
}

func (d *CandidateDetails) normalize() {
	d.FirstName = strings.TrimSpace(d.FirstName)
	d.LastName = strings.TrimSpace(d.LastName)
	d.Email = strings.ToLower(strings.TrimSpace(d.Email))
	d.Phone = strings.TrimSpace(d.Phone)
	d.Location = strings.TrimSpace(d.Location)
	d.Headline = strings.TrimSpace(d.Headline)
	d.Summary = strings.TrimSpace(d.Summary)
	d.LinkedInURL = strings.TrimSpace(d.LinkedInURL)
	d.PortfolioURL = strings.TrimSpace(d.PortfolioURL)
	d.Skills = NormalizeSkills(d.Skills)
}

// Validate checks every field rule of a candidate form
func (d CandidateDetails) Validate() error {
	if d.FirstName == "" || d.LastName == "" {
		return shared.NewDomainError("INVALID_NAME", "First and last name are required")
	}
	if len(d.FirstName) > 100 || len(d.LastName) > 100 {
		return shared.NewDomainError("INVALID_NAME", "Names cannot exceed 100 characters")
	}
	if d.Email == "" {
		return shared.NewDomainError("INVALID_EMAIL", "Email is required")
	}
	if len(d.Email) > 200 || !candidateEmailRegex.MatchString(d.Email) {
		return shared.NewDomainError("INVALID_EMAIL", "Invalid email format")
	}
	if len(d.Phone) > 50 {
		return shared.NewDomainError("INVALID_PHONE", "Phone cannot exceed 50 characters")
	}
	if len(d.Headline) > 200 {
		return shared.NewDomainError("INVALID_HEADLINE", "Headline cannot exceed 200 characters")
	}
	if len(d.Summary) > 5000 {
		return shared.NewDomainError("INVALID_SUMMARY", "Summary cannot exceed 5000 characters")
	}
	for _, u := range []string{d.LinkedInURL, d.PortfolioURL} {
		if u != "" && !isHTTPURL(u) {
			return shared.NewDomainError("INVALID_URL", "Profile links must be http(s) URLs")
		}
	}
	if len(d.Skills) > maxSkills {
		return shared.NewDomainError("TOO_MANY_SKILLS", "A candidate can list at most 50 skills")
	}
	for _, s := range d.Skills {
		if len(s) > maxSkillLength {
			return shared.NewDomainError("INVALID_SKILL", "Skills cannot exceed 50 characters")
		}
	}
	return nil
}

// NormalizeSkills trims skills and drops blanks and case-insensitive duplicates,
// keeping the first spelling seen.
func NormalizeSkills(skills []string) []string {
	seen := make(map[string]struct{}, len(skills))
	out := make([]string, 0, len(skills))
	for _, s := range skills {
		s = strings.Join(strings.Fields(s), " ")
		if s == "" {
			continue
		}
		key := strings.ToLower(s)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, s)
	}
	return out
}

// CandidateProfile is a person who can apply to jobs
type CandidateProfile struct {
	shared.OrgAggregateRoot
	CandidateDetails
	ResumeDocumentID *uuid.UUID
	Education        []Education
	Experience       []Experience
}

// NewCandidateProfile creates a candidate profile
func NewCandidateProfile(organizationID, createdBy uuid.UUID, details CandidateDetails) (*CandidateProfile, error) {
	details.normalize()
	if err := details.Validate(); err != nil {
		return nil, err
	}
	return &CandidateProfile{
		OrgAggregateRoot: shared.NewOrgAggregateRootWithCreator(organizationID, createdBy),
		CandidateDetails: details,
		Education:        make([]Education, 0),
		Experience:       make([]Experience, 0),
	}, nil
}

// Update replaces the editable fields
func (c *CandidateProfile) Update(details CandidateDetails) error {
	details.normalize()
	if err := details.Validate(); err != nil {
		return err
	}
	c.CandidateDetails = details
	c.touch()
	return nil
}

// FullName joins first and last name
func (c *CandidateProfile) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// SetResume points the profile at an uploaded resume
func (c *CandidateProfile) SetResume(documentID uuid.UUID) {
	c.ResumeDocumentID = &documentID
	c.touch()
}

// ClearResume unsets the resume if it is documentID
func (c *CandidateProfile) ClearResume(documentID uuid.UUID) bool {
	if c.ResumeDocumentID == nil || *c.ResumeDocumentID != documentID {
		return false
	}
	c.ResumeDocumentID = nil
	c.touch()
	return true
}

// EducationInput holds the fields of an education entry
type EducationInput struct {
	Institution  string
	Degree       string
	FieldOfStudy string
	StartDate    *time.Time
	EndDate      *time.Time
	Grade        string
	Description  string
}

func (in *EducationInput) normalize() {
	in.Institution = strings.TrimSpace(in.Institution)
	in.Degree = strings.TrimSpace(in.Degree)
	in.FieldOfStudy = strings.TrimSpace(in.FieldOfStudy)
	in.Grade = strings.TrimSpace(in.Grade)
	in.Description = strings.TrimSpace(in.Description)
	in.StartDate = truncateDate(in.StartDate)
	in.EndDate = truncateDate(in.EndDate)
}

// Validate checks required fields and date ordering
func (in EducationInput) Validate() error {
	if in.Institution == "" {
		return shared.NewDomainError("INVALID_INSTITUTION", "Institution is required")
	}
	if len(in.Institution) > 200 || len(in.Degree) > 200 || len(in.FieldOfStudy) > 200 {
		return shared.NewDomainError("INVALID_EDUCATION", "Education fields cannot exceed 200 characters")
	}
	if len(in.Description) > maxEntryText {
		return shared.NewDomainError("INVALID_EDUCATION", "Description cannot exceed 2000 characters")
	}
	if in.StartDate != nil && in.EndDate != nil && in.EndDate.Before(*in.StartDate) {
		return shared.NewDomainError("DATE_RANGE_INVALID", "End date cannot be before start date")
	}
	return nil
}

// Education is one schooling entry of a candidate
type Education struct {
	shared.BaseEntity
	CandidateID uuid.UUID
	EducationInput
}

// AddEducation appends an education entry
func (c *CandidateProfile) AddEducation(in EducationInput) (*Education, error) {
	in.normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}
	entry := Education{
		BaseEntity:     shared.NewBaseEntity(),
		CandidateID:    c.ID,
		EducationInput: in,
	}
	c.Education = append(c.Education, entry)
	c.touch()
	return &c.Education[len(c.Education)-1], nil
}

// UpdateEducation replaces the fields of an existing entry
func (c *CandidateProfile) UpdateEducation(id uuid.UUID, in EducationInput) (*Education, error) {
	in.normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}
	for i := range c.Education {
		if c.Education[i].ID == id {
			c.Education[i].EducationInput = in
			c.Education[i].Touch()
			c.touch()
			return &c.Education[i], nil
		}
	}
	return nil, shared.ErrNotFound
}

// RemoveEducation deletes an entry
func (c *CandidateProfile) RemoveEducation(id uuid.UUID) error {
	for i := range c.Education {
		if c.Education[i].ID == id {
			c.Education = append(c.Education[:i], c.Education[i+1:]...)
			c.touch()
			return nil
		}
	}
	return shared.ErrNotFound
}

// ExperienceInput holds the fields of a work experience entry
type ExperienceInput struct {
	Company     string
	Title       string
	Location    string
	StartDate   time.Time
	EndDate     *time.Time
	IsCurrent   bool
	Description string
}

func (in *ExperienceInput) normalize() {
	in.Company = strings.TrimSpace(in.Company)
	in.Title = strings.TrimSpace(in.Title)
	in.Location = strings.TrimSpace(in.Location)
	in.Description = strings.TrimSpace(in.Description)
	if start := truncateDate(&in.StartDate); start != nil {
		in.StartDate = *start
	}
	in.EndDate = truncateDate(in.EndDate)
}

// Validate checks required fields and date rules
func (in ExperienceInput) Validate() error {
	if in.Company == "" || in.Title == "" {
		return shared.NewDomainError("INVALID_EXPERIENCE", "Company and title are required")
	}
	if len(in.Company) > 200 || len(in.Title) > 200 || len(in.Location) > 200 {
		return shared.NewDomainError("INVALID_EXPERIENCE", "Experience fields cannot exceed 200 characters")
	}
	if len(in.Description) > maxEntryText {
		return shared.NewDomainError("INVALID_EXPERIENCE", "Description cannot exceed 2000 characters")
	}
	if in.StartDate.IsZero() {
		return shared.NewDomainError("START_DATE_REQUIRED", "Start date is required")
	}
	if in.IsCurrent && in.EndDate != nil {
		return shared.NewDomainError("DATE_RANGE_INVALID", "A current position cannot have an end date")
	}
	if in.EndDate != nil && in.EndDate.Before(in.StartDate) {
		return shared.NewDomainError("DATE_RANGE_INVALID", "End date cannot be before start date")
	}
	return nil
}

// Experience is one work history entry of a candidate
type Experience struct {
	shared.BaseEntity
	CandidateID uuid.UUID
	ExperienceInput
}

// AddExperience appends a work history entry
func (c *CandidateProfile) AddExperience(in ExperienceInput) (*Experience, error) {
	in.normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}
	entry := Experience{
		BaseEntity:      shared.NewBaseEntity(),
		CandidateID:     c.ID,
		ExperienceInput: in,
	}
	c.Experience = append(c.Experience, entry)
	c.touch()
	return &c.Experience[len(c.Experience)-1], nil
}

// UpdateExperience replaces the fields of an existing entry
func (c *CandidateProfile) UpdateExperience(id uuid.UUID, in ExperienceInput) (*Experience, error) {
	in.normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}
	for i := range c.Experience {
		if c.Experience[i].ID == id {
			c.Experience[i].ExperienceInput = in
			c.Experience[i].Touch()
			c.touch()
			return &c.Experience[i], nil
		}
	}
	return nil, shared.ErrNotFound
}

// RemoveExperience deletes an entry
func (c *CandidateProfile) RemoveExperience(id uuid.UUID) error {
	for i := range c.Experience {
		if c.Experience[i].ID == id {
			c.Experience = append(c.Experience[:i], c.Experience[i+1:]...)
			c.touch()
			return nil
		}
	}
	return shared.ErrNotFound
}

// TotalExperienceYears sums the work history with overlapping periods
// counted once. Current positions run until now.
func (c *CandidateProfile) TotalExperienceYears(now time.Time) float64 {
	type span struct{ start, end time.Time }
	spans := make([]span, 0, len(c.Experience))
	for _, e := range c.Experience {
		end := now
		if e.EndDate != nil && !e.IsCurrent {
			end = *e.EndDate
		}
		if end.After(e.StartDate) {
			spans = append(spans, span{e.StartDate, end})
		}
	}
	if len(spans) == 0 {
		return 0
	}
	sort.Slice(spans, func(i, j int) bool { return spans[i].start.Before(spans[j].start) })

	var total time.Duration
	cur := spans[0]
	for _, s := range spans[1:] {
		if s.start.After(cur.end) {
			total += cur.end.Sub(cur.start)
			cur = s
			continue
		}
		if s.end.After(cur.end) {
			cur.end = s.end
		}
	}
	total += cur.end.Sub(cur.start)

	const year = 365.25 * 24 * float64(time.Hour)
	return float64(total) / year
}

func (c *CandidateProfile) touch() {
	c.Touch()
	c.IncrementVersion()
}

func truncateDate(t *time.Time) *time.Time {
	if t == nil || t.IsZero() {
		return nil
	}
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return &d
}

func isHTTPURL(raw string) bool {
	if len(raw) > 500 {
		return false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
