package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/hireflow/backend/internal/domain/recruiting"
	"github.com/hireflow/backend/internal/domain/shared"
	"github.com/hireflow/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormJobRepository implements JobRepository using GORM
type GormJobRepository struct {
	db *gorm.DB
}

// NewGormJobRepository creates a new GormJobRepository
func NewGormJobRepository(db *gorm.DB) *GormJobRepository {
	return &GormJobRepository{db: db}
}

// jobRow is a job row with its application count
type jobRow struct {
	models.JobModel
	ApplicationCount int64
}

// FindByID finds a job by ID within an organization, without visibility checks
func (r *GormJobRepository) FindByID(ctx context.Context, organizationID, id uuid.UUID) (*recruiting.Job, error) {
	var model models.JobModel
	if err := r.db.WithContext(ctx).
		Where("organization_id = ? AND id = ?", organizationID, id).
		First(&model).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindAll lists the jobs visible to the viewer with filtering, sorting and pagination
func (r *GormJobRepository) FindAll(ctx context.Context, viewer recruiting.Viewer, filter recruiting.JobFilter) ([]recruiting.JobListItem, int64, error) {
	var total int64
	if err := r.listQuery(ctx, viewer, filter).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []jobRow
	if err := r.listQuery(ctx, viewer, filter).
		Select("jobs.*, (SELECT COUNT(*) FROM job_applications WHERE job_applications.job_id = jobs.id) AS application_count").
		Order(OrderClause("jobs.", filter.OrderBy, filter.OrderDir, JobSortFields, "created_at")).
		Offset(filter.Offset()).
		Limit(filter.Limit()).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	items := make([]recruiting.JobListItem, len(rows))
	for i := range rows {
		items[i] = recruiting.JobListItem{
			Job:              rows[i].JobModel.ToDomain(),
			ApplicationCount: rows[i].ApplicationCount,
		}
	}
	return items, total, nil
}

// listQuery builds the scoped and filtered list query; it is built fresh for count and page
func (r *GormJobRepository) listQuery(ctx context.Context, viewer recruiting.Viewer, filter recruiting.JobFilter) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&models.JobModel{}).
		Where("jobs.organization_id = ?", viewer.OrganizationID)
	query = visibleJobs(query, viewer, "jobs.id")
	return r.applyFilter(query, filter)
}

func (r *GormJobRepository) applyFilter(query *gorm.DB, filter recruiting.JobFilter) *gorm.DB {
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		query = query.Where(
			"(LOWER(jobs.title) LIKE ?"+likeEscape+" OR LOWER(jobs.department) LIKE ?"+likeEscape+" OR LOWER(jobs.location) LIKE ?"+likeEscape+")",
			pattern, pattern, pattern)
	}
	if len(filter.Statuses) > 0 {
		query = query.Where("jobs.status IN ?", filter.Statuses)
	}
	if filter.EmploymentType != "" {
		query = query.Where("jobs.employment_type = ?", filter.EmploymentType)
	}
	if filter.WorkMode != "" {
		query = query.Where("jobs.work_mode = ?", filter.WorkMode)
	}
	if filter.Department != "" {
		query = query.Where("LOWER(jobs.department) = LOWER(?)", filter.Department)
	}
	if filter.Location != "" {
		query = query.Where("LOWER(jobs.location) LIKE ?"+likeEscape, likePattern(filter.Location))
	}
	if filter.CreatedBy != nil {
		query = query.Where("jobs.created_by = ?", *filter.CreatedBy)
	}
	return query
}

// CountApplications counts the applications of a job
func (r *GormJobRepository) CountApplications(ctx context.Context, organizationID, jobID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.JobApplicationModel{}).
		Where("organization_id = ? AND job_id = ?", organizationID, jobID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Create inserts a new job
func (r *GormJobRepository) Create(ctx context.Context, job *recruiting.Job) error {
	return r.db.WithContext(ctx).Create(models.JobModelFromDomain(job)).Error
}

// Update saves a job with optimistic locking on the version loaded by the caller
func (r *GormJobRepository) Update(ctx context.Context, job *recruiting.Job, expectedVersion int) error {
	model := models.JobModelFromDomain(job)
	result := r.db.WithContext(ctx).
		Model(model).
		Where("organization_id = ? AND version = ?", job.OrganizationID, expectedVersion).
		Select("*").
		Omit("id", "organization_id", "created_at", "created_by").
		Updates(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// Delete removes a job and its access grants
func (r *GormJobRepository) Delete(ctx context.Context, organizationID, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("organization_id = ? AND job_id = ?", organizationID, id).
			Delete(&models.JobAccessGrantModel{}).Error; err != nil {
			return err
		}
		result := tx.Where("organization_id = ? AND id = ?", organizationID, id).Delete(&models.JobModel{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// Ensure GormJobRepository implements JobRepository
var _ recruiting.JobRepository = (*GormJobRepository)(nil)
