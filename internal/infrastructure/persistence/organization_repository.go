package persistence

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/hireflow/backend/internal/domain/identity"
	"github.com/hireflow/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormOrganizationRepository implements OrganizationRepository using GORM
type GormOrganizationRepository struct {
	db *gorm.DB
}

// NewGormOrganizationRepository creates a new GormOrganizationRepository
func NewGormOrganizationRepository(db *gorm.DB) *GormOrganizationRepository {
	return &GormOrganizationRepository{db: db}
}

// FindByID finds an organization by ID
func (r *GormOrganizationRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.Organization, error) {
	var model models.OrganizationModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindBySlug finds an organization by its slug
func (r *GormOrganizationRepository) FindBySlug(ctx context.Context, slug string) (*identity.Organization, error) {
	var model models.OrganizationModel
	if err := r.db.WithContext(ctx).
		Where("slug = ?", strings.ToLower(strings.TrimSpace(slug))).
		First(&model).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// ExistsBySlug checks if an organization with the given slug exists
func (r *GormOrganizationRepository) ExistsBySlug(ctx context.Context, slug string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.OrganizationModel{}).
		Where("slug = ?", strings.ToLower(strings.TrimSpace(slug))).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save creates or updates an organization
func (r *GormOrganizationRepository) Save(ctx context.Context, org *identity.Organization) error {
	return r.db.WithContext(ctx).Save(models.OrganizationModelFromDomain(org)).Error
}

// Register inserts the organization, its roles with their permissions and the
// first administrator with its role assignments in a single transaction.
func (r *GormOrganizationRepository) Register(ctx context.Context, org *identity.Organization, roles []*identity.Role, admin *identity.UserProfile) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(models.OrganizationModelFromDomain(org)).Error; err != nil {
			return err
		}
		for _, role := range roles {
			if err := tx.Create(models.RoleModelFromDomain(role)).Error; err != nil {
				return err
			}
			if perms := models.RolePermissionModelsFromDomain(role); len(perms) > 0 {
				if err := tx.Create(&perms).Error; err != nil {
					return err
				}
			}
		}
		if err := tx.Create(models.UserProfileModelFromDomain(admin)).Error; err != nil {
			return err
		}
		if rows := models.UserRoleModelsFromDomain(admin); len(rows) > 0 {
			if err := tx.Create(&rows).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Ensure GormOrganizationRepository implements OrganizationRepository
var _ identity.OrganizationRepository = (*GormOrganizationRepository)(nil)
