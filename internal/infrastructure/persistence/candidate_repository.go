package persistence

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/hireflow/backend/internal/domain/recruiting"
	"github.com/hireflow/backend/internal/domain/shared"
	"github.com/hireflow/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormCandidateRepository implements CandidateRepository using GORM
type GormCandidateRepository struct {
	db *gorm.DB
}

// NewGormCandidateRepository creates a new GormCandidateRepository
func NewGormCandidateRepository(db *gorm.DB) *GormCandidateRepository {
	return &GormCandidateRepository{db: db}
}

// FindByID finds a candidate with education and experience
func (r *GormCandidateRepository) FindByID(ctx context.Context, organizationID, id uuid.UUID) (*recruiting.CandidateProfile, error) {
	db := r.db.WithContext(ctx)

	var model models.CandidateProfileModel
	if err := db.Where("organization_id = ? AND id = ?", organizationID, id).First(&model).Error; err != nil {
		return nil, notFound(err)
	}
	candidate := model.ToDomain()

	var education []models.EducationModel
	if err := db.Where("candidate_id = ?", id).
		Order("start_date DESC, created_at ASC").
		Find(&education).Error; err != nil {
		return nil, err
	}
	for i := range education {
		candidate.Education = append(candidate.Education, education[i].ToDomain())
	}

	var experience []models.ExperienceModel
	if err := db.Where("candidate_id = ?", id).
		Order("start_date DESC, created_at ASC").
		Find(&experience).Error; err != nil {
		return nil, err
	}
	for i := range experience {
		candidate.Experience = append(candidate.Experience, experience[i].ToDomain())
	}
	return candidate, nil
}

// FindAll lists candidates without their education and experience
func (r *GormCandidateRepository) FindAll(ctx context.Context, organizationID uuid.UUID, filter recruiting.CandidateFilter) ([]*recruiting.CandidateProfile, int64, error) {
	var total int64
	if err := r.listQuery(ctx, organizationID, filter).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.CandidateProfileModel
	if err := r.listQuery(ctx, organizationID, filter).
		Order(OrderClause("", filter.OrderBy, filter.OrderDir, CandidateSortFields, "created_at")).
		Offset(filter.Offset()).
		Limit(filter.Limit()).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	candidates := make([]*recruiting.CandidateProfile, len(rows))
	for i := range rows {
		candidates[i] = rows[i].ToDomain()
	}
	return candidates, total, nil
}

func (r *GormCandidateRepository) listQuery(ctx context.Context, organizationID uuid.UUID, filter recruiting.CandidateFilter) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&models.CandidateProfileModel{}).
		Where("organization_id = ?", organizationID)

	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		query = query.Where(
			"(LOWER(first_name || ' ' || last_name) LIKE ?"+likeEscape+
				" OR LOWER(email) LIKE ?"+likeEscape+
				" OR LOWER(headline) LIKE ?"+likeEscape+")",
			pattern, pattern, pattern)
	}
	if skill := strings.TrimSpace(filter.Skill); skill != "" {
		// skills is a JSON array of strings; match one whole element
		query = query.Where("LOWER(CAST(skills AS TEXT)) LIKE ?"+likeEscape, `%"`+escapeLike(skill)+`"%`)
	}
	return query
}

// ExistsByEmail checks if another candidate of the organization uses the email
func (r *GormCandidateRepository) ExistsByEmail(ctx context.Context, organizationID uuid.UUID, email string, excludeID *uuid.UUID) (bool, error) {
	query := r.db.WithContext(ctx).
		Model(&models.CandidateProfileModel{}).
		Where("organization_id = ? AND email = ?", organizationID, strings.ToLower(strings.TrimSpace(email)))
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save upserts the candidate and replaces its education and experience rows
func (r *GormCandidateRepository) Save(ctx context.Context, candidate *recruiting.CandidateProfile) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(models.CandidateProfileModelFromDomain(candidate)).Error; err != nil {
			return err
		}

		if err := tx.Where("candidate_id = ?", candidate.ID).Delete(&models.EducationModel{}).Error; err != nil {
			return err
		}
		if len(candidate.Education) > 0 {
			rows := make([]models.EducationModel, len(candidate.Education))
			for i, e := range candidate.Education {
				rows[i] = models.EducationModelFromDomain(candidate.OrganizationID, e)
			}
			if err := tx.Create(&rows).Error; err != nil {
				return err
			}
		}

		if err := tx.Where("candidate_id = ?", candidate.ID).Delete(&models.ExperienceModel{}).Error; err != nil {
			return err
		}
		if len(candidate.Experience) > 0 {
			rows := make([]models.ExperienceModel, len(candidate.Experience))
			for i, e := range candidate.Experience {
				rows[i] = models.ExperienceModelFromDomain(candidate.OrganizationID, e)
			}
			if err := tx.Create(&rows).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Delete removes a candidate with education, experience and document rows
func (r *GormCandidateRepository) Delete(ctx context.Context, organizationID, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, child := range []any{&models.EducationModel{}, &models.ExperienceModel{}, &models.CandidateDocumentModel{}} {
			if err := tx.Where("organization_id = ? AND candidate_id = ?", organizationID, id).Delete(child).Error; err != nil {
				return err
			}
		}
		result := tx.Where("organization_id = ? AND id = ?", organizationID, id).Delete(&models.CandidateProfileModel{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// Ensure GormCandidateRepository implements CandidateRepository
var _ recruiting.CandidateRepository = (*GormCandidateRepository)(nil)
