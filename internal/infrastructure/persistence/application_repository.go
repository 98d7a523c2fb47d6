package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/hireflow/backend/internal/domain/recruiting"
	"github.com/hireflow/backend/internal/domain/shared"
	"github.com/hireflow/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormApplicationRepository implements ApplicationRepository using GORM
type GormApplicationRepository struct {
	db *gorm.DB
}

// NewGormApplicationRepository creates a new GormApplicationRepository
func NewGormApplicationRepository(db *gorm.DB) *GormApplicationRepository {
	return &GormApplicationRepository{db: db}
}

// applicationRow is an application joined with candidate and job columns
type applicationRow struct {
	models.JobApplicationModel
	CandidateFirstName string
	CandidateLastName  string
	CandidateEmail     string
	JobTitle           string
}

func (row *applicationRow) toListItem() recruiting.ApplicationListItem {
	return recruiting.ApplicationListItem{
		JobApplication: row.JobApplicationModel.ToDomain(),
		CandidateName:  strings.TrimSpace(row.CandidateFirstName + " " + row.CandidateLastName),
		CandidateEmail: row.CandidateEmail,
		JobTitle:       row.JobTitle,
	}
}

// FindByID finds an application by ID within an organization, without visibility checks
func (r *GormApplicationRepository) FindByID(ctx context.Context, organizationID, id uuid.UUID) (*recruiting.JobApplication, error) {
	var model models.JobApplicationModel
	if err := r.db.WithContext(ctx).
		Where("organization_id = ? AND id = ?", organizationID, id).
		First(&model).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindAll lists applications on jobs visible to the viewer
func (r *GormApplicationRepository) FindAll(ctx context.Context, viewer recruiting.Viewer, filter recruiting.ApplicationFilter) ([]recruiting.ApplicationListItem, int64, error) {
	var total int64
	if err := r.listQuery(ctx, viewer, filter).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []applicationRow
	if err := r.listQuery(ctx, viewer, filter).
		Select("job_applications.*, " +
			"candidate_profiles.first_name AS candidate_first_name, " +
			"candidate_profiles.last_name AS candidate_last_name, " +
			"candidate_profiles.email AS candidate_email, " +
			"jobs.title AS job_title").
		Order(OrderClause("job_applications.", filter.OrderBy, filter.OrderDir, ApplicationSortFields, "applied_at")).
		Offset(filter.Offset()).
		Limit(filter.Limit()).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	items := make([]recruiting.ApplicationListItem, len(rows))
	for i := range rows {
		items[i] = rows[i].toListItem()
	}
	return items, total, nil
}

func (r *GormApplicationRepository) listQuery(ctx context.Context, viewer recruiting.Viewer, filter recruiting.ApplicationFilter) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&models.JobApplicationModel{}).
		Joins("JOIN jobs ON jobs.id = job_applications.job_id").
		Joins("JOIN candidate_profiles ON candidate_profiles.id = job_applications.candidate_id").
		Where("job_applications.organization_id = ?", viewer.OrganizationID)
	query = visibleJobs(query, viewer, "job_applications.job_id")

	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		query = query.Where(
			"(LOWER(candidate_profiles.first_name || ' ' || candidate_profiles.last_name) LIKE ?"+likeEscape+
				" OR LOWER(candidate_profiles.email) LIKE ?"+likeEscape+")",
			pattern, pattern)
	}
	if filter.JobID != nil {
		query = query.Where("job_applications.job_id = ?", *filter.JobID)
	}
	if filter.CandidateID != nil {
		query = query.Where("job_applications.candidate_id = ?", *filter.CandidateID)
	}
	if len(filter.Statuses) > 0 {
		query = query.Where("job_applications.status IN ?", filter.Statuses)
	}
	if filter.Source != "" {
		query = query.Where("job_applications.source = ?", filter.Source)
	}
	if filter.AppliedFrom != nil {
		query = query.Where("job_applications.applied_at >= ?", *filter.AppliedFrom)
	}
	if filter.AppliedTo != nil {
		query = query.Where("job_applications.applied_at <= ?", *filter.AppliedTo)
	}
	return query
}

// ExistsForCandidate checks if the candidate already applied to the job
func (r *GormApplicationRepository) ExistsForCandidate(ctx context.Context, organizationID, jobID, candidateID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.JobApplicationModel{}).
		Where("organization_id = ? AND job_id = ? AND candidate_id = ?", organizationID, jobID, candidateID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// CountByCandidate counts the applications of a candidate
func (r *GormApplicationRepository) CountByCandidate(ctx context.Context, organizationID, candidateID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.JobApplicationModel{}).
		Where("organization_id = ? AND candidate_id = ?", organizationID, candidateID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Create inserts a new application; the (job, candidate) unique index backs the duplicate check
func (r *GormApplicationRepository) Create(ctx context.Context, app *recruiting.JobApplication) error {
	exists, err := r.ExistsForCandidate(ctx, app.OrganizationID, app.JobID, app.CandidateID)
	if err != nil {
		return err
	}
	if exists {
		return recruiting.ErrAlreadyApplied
	}
	if err := r.db.WithContext(ctx).Create(models.JobApplicationModelFromDomain(app)).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return recruiting.ErrAlreadyApplied
		}
		return err
	}
	return nil
}

// Update saves an application with optimistic locking on the version loaded by the caller
func (r *GormApplicationRepository) Update(ctx context.Context, app *recruiting.JobApplication, expectedVersion int) error {
	model := models.JobApplicationModelFromDomain(app)
	result := r.db.WithContext(ctx).
		Model(model).
		Where("organization_id = ? AND version = ?", app.OrganizationID, expectedVersion).
		Select("*").
		Omit("id", "organization_id", "created_at", "created_by", "job_id", "candidate_id").
		Updates(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// Delete removes an application and its status history
func (r *GormApplicationRepository) Delete(ctx context.Context, organizationID, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("organization_id = ? AND application_id = ?", organizationID, id).
			Delete(&models.ApplicationStatusHistoryModel{}).Error; err != nil {
			return err
		}
		result := tx.Where("organization_id = ? AND id = ?", organizationID, id).Delete(&models.JobApplicationModel{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// Ensure GormApplicationRepository implements ApplicationRepository
var _ recruiting.ApplicationRepository = (*GormApplicationRepository)(nil)

// GormApplicationHistoryRepository implements ApplicationHistoryRepository using GORM
type GormApplicationHistoryRepository struct {
	db *gorm.DB
}

// NewGormApplicationHistoryRepository creates a new GormApplicationHistoryRepository
func NewGormApplicationHistoryRepository(db *gorm.DB) *GormApplicationHistoryRepository {
	return &GormApplicationHistoryRepository{db: db}
}

// Append records one status change
func (r *GormApplicationHistoryRepository) Append(ctx context.Context, entry *recruiting.ApplicationStatusHistory) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(models.ApplicationStatusHistoryModelFromDomain(entry)).Error
}

// FindByApplication returns the status history of an application, oldest first
func (r *GormApplicationHistoryRepository) FindByApplication(ctx context.Context, organizationID, applicationID uuid.UUID) ([]recruiting.ApplicationStatusHistory, error) {
	var rows []models.ApplicationStatusHistoryModel
	if err := r.db.WithContext(ctx).
		Where("organization_id = ? AND application_id = ?", organizationID, applicationID).
		Order("changed_at ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	entries := make([]recruiting.ApplicationStatusHistory, len(rows))
	for i := range rows {
		entries[i] = rows[i].ToDomain()
	}
	return entries, nil
}

// Ensure GormApplicationHistoryRepository implements ApplicationHistoryRepository
var _ recruiting.ApplicationHistoryRepository = (*GormApplicationHistoryRepository)(nil)
