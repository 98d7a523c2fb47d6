package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/hireflow/backend/internal/domain/recruiting"
	"github.com/hireflow/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormJobAccessRepository implements JobAccessRepository using GORM
type GormJobAccessRepository struct {
	db *gorm.DB
}

// NewGormJobAccessRepository creates a new GormJobAccessRepository
func NewGormJobAccessRepository(db *gorm.DB) *GormJobAccessRepository {
	return &GormJobAccessRepository{db: db}
}

func (r *GormJobAccessRepository) active(ctx context.Context, organizationID uuid.UUID) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&models.JobAccessGrantModel{}).
		Where("organization_id = ? AND revoked_at IS NULL", organizationID)
}

// FindActive finds the active grant of a user on a job
func (r *GormJobAccessRepository) FindActive(ctx context.Context, organizationID, jobID, userID uuid.UUID) (*recruiting.JobAccessGrant, error) {
	var model models.JobAccessGrantModel
	if err := r.active(ctx, organizationID).
		Where("job_id = ? AND user_id = ?", jobID, userID).
		First(&model).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// HasActiveGrant reports whether the user holds an active grant on the job
func (r *GormJobAccessRepository) HasActiveGrant(ctx context.Context, organizationID, jobID, userID uuid.UUID) (bool, error) {
	var count int64
	if err := r.active(ctx, organizationID).
		Where("job_id = ? AND user_id = ?", jobID, userID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// FindActiveByJob lists the active grants of a job
func (r *GormJobAccessRepository) FindActiveByJob(ctx context.Context, organizationID, jobID uuid.UUID) ([]*recruiting.JobAccessGrant, error) {
	var rows []models.JobAccessGrantModel
	if err := r.active(ctx, organizationID).
		Where("job_id = ?", jobID).
		Order("granted_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return grantsToDomain(rows), nil
}

// FindActiveByUser lists the active grants held by a user
func (r *GormJobAccessRepository) FindActiveByUser(ctx context.Context, organizationID, userID uuid.UUID) ([]*recruiting.JobAccessGrant, error) {
	var rows []models.JobAccessGrantModel
	if err := r.active(ctx, organizationID).
		Where("user_id = ?", userID).
		Order("granted_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return grantsToDomain(rows), nil
}

// Save creates or updates a grant
func (r *GormJobAccessRepository) Save(ctx context.Context, grant *recruiting.JobAccessGrant) error {
	return r.db.WithContext(ctx).Save(models.JobAccessGrantModelFromDomain(grant)).Error
}

// RevokeAllForUser ends every active grant of a user
func (r *GormJobAccessRepository) RevokeAllForUser(ctx context.Context, organizationID, userID, revokedBy uuid.UUID) (int64, error) {
	now := time.Now()
	result := r.active(ctx, organizationID).
		Where("user_id = ?", userID).
		Updates(map[string]any{
			"revoked_at": now,
			"revoked_by": revokedBy,
			"updated_at": now,
		})
	return result.RowsAffected, result.Error
}

func grantsToDomain(rows []models.JobAccessGrantModel) []*recruiting.JobAccessGrant {
	grants := make([]*recruiting.JobAccessGrant, len(rows))
	for i := range rows {
		grants[i] = rows[i].ToDomain()
	}
	return grants
}

// Ensure GormJobAccessRepository implements JobAccessRepository
var _ recruiting.JobAccessRepository = (*GormJobAccessRepository)(nil)
