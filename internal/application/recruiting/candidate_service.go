package recruiting

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hireflow/backend/internal/domain/recruiting"
	"github.com/hireflow/backend/internal/domain/shared"
)

// candidateApplicationsLimit caps the applications embedded in a candidate detail
const candidateApplicationsLimit = 100

// CandidateService handles candidate profiles and their history entries
type CandidateService struct {
	candidateRepo recruiting.CandidateRepository
	appRepo       recruiting.ApplicationRepository
	docRepo       recruiting.DocumentRepository
	storage       ObjectStorage
	publisher     shared.EventPublisher
	logger        *zap.Logger
	now           func() time.Time
}

// NewCandidateService creates a new CandidateService
func NewCandidateService(candidateRepo recruiting.CandidateRepository, appRepo recruiting.ApplicationRepository, logger *zap.Logger) *CandidateService {
	return &CandidateService{
		candidateRepo: candidateRepo,
		appRepo:       appRepo,
		logger:        logger,
		now:           time.Now,
	}
}

// SetEventPublisher sets the publisher for candidate events
func (s *CandidateService) SetEventPublisher(publisher shared.EventPublisher) {
	s.publisher = publisher
}

// SetDocumentStorage lets Delete remove the stored files of a candidate's documents
func (s *CandidateService) SetDocumentStorage(docRepo recruiting.DocumentRepository, storage ObjectStorage) {
	s.docRepo = docRepo
	s.storage = storage
}

// Create adds a candidate to the organization's pool
func (s *CandidateService) Create(ctx context.Context, viewer recruiting.Viewer, req CandidateRequest) (*CandidateResponse, error) {
	candidate, err := recruiting.NewCandidateProfile(viewer.OrganizationID, viewer.UserID, req.details())
	if err != nil {
		return nil, err
	}
	if err := s.ensureEmailFree(ctx, viewer.OrganizationID, candidate.Email, nil); err != nil {
		return nil, err
	}
	if err := s.candidateRepo.Save(ctx, candidate); err != nil {
		return nil, err
	}
	publishEvents(ctx, s.publisher, s.logger, candidate)

	s.logger.Info("Candidate created",
		zap.String("organization_id", viewer.OrganizationID.String()),
		zap.String("candidate_id", candidate.ID.String()))
	resp := toCandidateResponse(candidate, s.now())
	return &resp, nil
}

// Get returns a candidate with the applications the viewer may see
func (s *CandidateService) Get(ctx context.Context, viewer recruiting.Viewer, id uuid.UUID) (*CandidateResponse, error) {
	candidate, err := s.load(ctx, viewer.OrganizationID, id)
	if err != nil {
		return nil, err
	}
	resp := toCandidateResponse(candidate, s.now())

	items, _, err := s.appRepo.FindAll(ctx, viewer, recruiting.ApplicationFilter{
		Filter:      shared.Filter{Page: 1, PageSize: candidateApplicationsLimit, OrderBy: "applied_at", OrderDir: "desc"},
		CandidateID: &candidate.ID,
	})
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		app := toApplicationResponse(item.JobApplication)
		app.JobTitle = item.JobTitle
		app.CoverLetter = ""
		resp.Applications = append(resp.Applications, app)
	}
	return &resp, nil
}

// Update replaces the editable fields of a candidate
func (s *CandidateService) Update(ctx context.Context, viewer recruiting.Viewer, id uuid.UUID, req CandidateRequest) (*CandidateResponse, error) {
	candidate, err := s.load(ctx, viewer.OrganizationID, id)
	if err != nil {
		return nil, err
	}
	if err := candidate.Update(req.details()); err != nil {
		return nil, err
	}
	if err := s.ensureEmailFree(ctx, viewer.OrganizationID, candidate.Email, &candidate.ID); err != nil {
		return nil, err
	}
	if err := s.candidateRepo.Save(ctx, candidate); err != nil {
		return nil, err
	}
	s.logger.Info("Candidate updated", zap.String("candidate_id", id.String()))
	resp := toCandidateResponse(candidate, s.now())
	return &resp, nil
}

// Delete removes a candidate who never applied to a job. The document rows go
// with the candidate; their stored files are removed afterwards, best effort.
func (s *CandidateService) Delete(ctx context.Context, viewer recruiting.Viewer, id uuid.UUID) error {
	if _, err := s.load(ctx, viewer.OrganizationID, id); err != nil {
		return err
	}
	count, err := s.appRepo.CountByCandidate(ctx, viewer.OrganizationID, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return recruiting.ErrCandidateHasApplications
	}
	var docs []*recruiting.CandidateDocument
	if s.docRepo != nil && s.storage != nil {
		if docs, err = s.docRepo.FindByCandidate(ctx, viewer.OrganizationID, id); err != nil {
			return err
		}
	}
	if err := s.candidateRepo.Delete(ctx, viewer.OrganizationID, id); err != nil {
		return err
	}
	for _, doc := range docs {
		if err := s.storage.DeleteObject(ctx, doc.StorageKey); err != nil && !errors.Is(err, ErrObjectNotFound) {
			s.logger.Warn("Failed to delete candidate document object",
				zap.String("document_id", doc.ID.String()),
				zap.String("key", doc.StorageKey),
				zap.Error(err))
		}
	}
	s.logger.Info("Candidate deleted",
		zap.String("candidate_id", id.String()),
		zap.Int("documents", len(docs)))
	return nil
}

// List returns the organization's candidates
func (s *CandidateService) List(ctx context.Context, viewer recruiting.Viewer, filter CandidateListFilter) ([]CandidateResponse, int64, error) {
	candidates, total, err := s.candidateRepo.FindAll(ctx, viewer.OrganizationID, recruiting.CandidateFilter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  filter.OrderBy,
			OrderDir: filter.OrderDir,
			Search:   strings.TrimSpace(filter.Search),
		}.Normalize(),
		Skill: strings.ToLower(strings.TrimSpace(filter.Skill)),
	})
	if err != nil {
		return nil, 0, err
	}
	now := s.now()
	out := make([]CandidateResponse, len(candidates))
	for i, c := range candidates {
		out[i] = toCandidateResponse(c, now)
		out[i].Education = nil
		out[i].Experience = nil
	}
	return out, total, nil
}

// AddEducation appends an education entry
func (s *CandidateService) AddEducation(ctx context.Context, viewer recruiting.Viewer, candidateID uuid.UUID, req EducationRequest) (*EducationResponse, error) {
	var added *recruiting.Education
	err := s.mutate(ctx, viewer, candidateID, func(c *recruiting.CandidateProfile) error {
		var err error
		added, err = c.AddEducation(req.input())
		return err
	})
	if err != nil {
		return nil, err
	}
	resp := toEducationResponse(*added)
	return &resp, nil
}

// UpdateEducation replaces an education entry
func (s *CandidateService) UpdateEducation(ctx context.Context, viewer recruiting.Viewer, candidateID, entryID uuid.UUID, req EducationRequest) (*EducationResponse, error) {
	var updated *recruiting.Education
	err := s.mutate(ctx, viewer, candidateID, func(c *recruiting.CandidateProfile) error {
		var err error
		updated, err = c.UpdateEducation(entryID, req.input())
		return err
	})
	if err != nil {
		return nil, entryErr(err)
	}
	resp := toEducationResponse(*updated)
	return &resp, nil
}

// RemoveEducation deletes an education entry
func (s *CandidateService) RemoveEducation(ctx context.Context, viewer recruiting.Viewer, candidateID, entryID uuid.UUID) error {
	err := s.mutate(ctx, viewer, candidateID, func(c *recruiting.CandidateProfile) error {
		return c.RemoveEducation(entryID)
	})
	return entryErr(err)
}

// AddExperience appends a work history entry
func (s *CandidateService) AddExperience(ctx context.Context, viewer recruiting.Viewer, candidateID uuid.UUID, req ExperienceRequest) (*ExperienceResponse, error) {
	var added *recruiting.Experience
	err := s.mutate(ctx, viewer, candidateID, func(c *recruiting.CandidateProfile) error {
		var err error
		added, err = c.AddExperience(req.input())
		return err
	})
	if err != nil {
		return nil, err
	}
	resp := toExperienceResponse(*added)
	return &resp, nil
}

// UpdateExperience replaces a work history entry
func (s *CandidateService) UpdateExperience(ctx context.Context, viewer recruiting.Viewer, candidateID, entryID uuid.UUID, req ExperienceRequest) (*ExperienceResponse, error) {
	var updated *recruiting.Experience
	err := s.mutate(ctx, viewer, candidateID, func(c *recruiting.CandidateProfile) error {
		var err error
		updated, err = c.UpdateExperience(entryID, req.input())
		return err
	})
	if err != nil {
		return nil, entryErr(err)
	}
	resp := toExperienceResponse(*updated)
	return &resp, nil
}

// RemoveExperience deletes a work history entry
func (s *CandidateService) RemoveExperience(ctx context.Context, viewer recruiting.Viewer, candidateID, entryID uuid.UUID) error {
	err := s.mutate(ctx, viewer, candidateID, func(c *recruiting.CandidateProfile) error {
		return c.RemoveExperience(entryID)
	})
	return entryErr(err)
}

// mutate loads a candidate, applies fn and saves the result
func (s *CandidateService) mutate(ctx context.Context, viewer recruiting.Viewer, id uuid.UUID, fn func(*recruiting.CandidateProfile) error) error {
	candidate, err := s.load(ctx, viewer.OrganizationID, id)
	if err != nil {
		return err
	}
	if err := fn(candidate); err != nil {
		return err
	}
	return s.candidateRepo.Save(ctx, candidate)
}

func (s *CandidateService) load(ctx context.Context, organizationID, id uuid.UUID) (*recruiting.CandidateProfile, error) {
	candidate, err := s.candidateRepo.FindByID(ctx, organizationID, id)
	if err != nil {
		return nil, notFoundAs(err, ErrCandidateNotFound)
	}
	return candidate, nil
}

func (s *CandidateService) ensureEmailFree(ctx context.Context, organizationID uuid.UUID, email string, excludeID *uuid.UUID) error {
	taken, err := s.candidateRepo.ExistsByEmail(ctx, organizationID, email, excludeID)
	if err != nil {
		return err
	}
	if taken {
		return recruiting.ErrCandidateEmailTaken
	}
	return nil
}

func (r EducationRequest) input() recruiting.EducationInput {
	return recruiting.EducationInput{
		Institution:  r.Institution,
		Degree:       r.Degree,
		FieldOfStudy: r.FieldOfStudy,
		StartDate:    r.StartDate,
		EndDate:      r.EndDate,
		Grade:        r.Grade,
		Description:  r.Description,
	}
}

func (r ExperienceRequest) input() recruiting.ExperienceInput {
	return recruiting.ExperienceInput{
		Company:     r.Company,
		Title:       r.Title,
		Location:    r.Location,
		StartDate:   r.StartDate,
		EndDate:     r.EndDate,
		IsCurrent:   r.IsCurrent,
		Description: r.Description,
	}
}

// entryErr renames a missing history entry; a missing candidate keeps its own error
func entryErr(err error) error {
	if err == shared.ErrNotFound {
		return ErrEntryNotFound
	}
	return err
}
