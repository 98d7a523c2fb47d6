package persistence

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/hireflow/backend/internal/domain/identity"
	"github.com/hireflow/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormUserProfileRepository implements UserProfileRepository using GORM
type GormUserProfileRepository struct {
	db *gorm.DB
}

// NewGormUserProfileRepository creates a new GormUserProfileRepository
func NewGormUserProfileRepository(db *gorm.DB) *GormUserProfileRepository {
	return &GormUserProfileRepository{db: db}
}

// FindByID finds a member by ID within an organization
func (r *GormUserProfileRepository) FindByID(ctx context.Context, organizationID, id uuid.UUID) (*identity.UserProfile, error) {
	var model models.UserProfileModel
	if err := r.db.WithContext(ctx).
		Where("organization_id = ? AND id = ?", organizationID, id).
		First(&model).Error; err != nil {
		return nil, notFound(err)
	}
	users, err := r.withRoles(ctx, []models.UserProfileModel{model})
	if err != nil {
		return nil, err
	}
	return users[0], nil
}

// FindByEmail finds a member by email across organizations
func (r *GormUserProfileRepository) FindByEmail(ctx context.Context, email string) (*identity.UserProfile, error) {
	var model models.UserProfileModel
	if err := r.db.WithContext(ctx).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&model).Error; err != nil {
		return nil, notFound(err)
	}
	users, err := r.withRoles(ctx, []models.UserProfileModel{model})
	if err != nil {
		return nil, err
	}
	return users[0], nil
}

// FindByIDs finds the members with the given IDs
func (r *GormUserProfileRepository) FindByIDs(ctx context.Context, organizationID uuid.UUID, ids []uuid.UUID) ([]*identity.UserProfile, error) {
	if len(ids) == 0 {
		return []*identity.UserProfile{}, nil
	}
	var rows []models.UserProfileModel
	if err := r.db.WithContext(ctx).
		Where("organization_id = ? AND id IN ?", organizationID, ids).
		Order("full_name ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return r.withRoles(ctx, rows)
}

// FindAll lists the members of an organization with filtering and pagination
func (r *GormUserProfileRepository) FindAll(ctx context.Context, organizationID uuid.UUID, filter identity.MemberFilter) ([]*identity.UserProfile, int64, error) {
	var total int64
	if err := r.listQuery(ctx, organizationID, filter).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.UserProfileModel
	if err := r.listQuery(ctx, organizationID, filter).
		Order(OrderClause("", filter.OrderBy, filter.OrderDir, MemberSortFields, "created_at")).
		Offset(filter.Offset()).
		Limit(filter.Limit()).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	users, err := r.withRoles(ctx, rows)
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (r *GormUserProfileRepository) listQuery(ctx context.Context, organizationID uuid.UUID, filter identity.MemberFilter) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&models.UserProfileModel{}).
		Where("organization_id = ?", organizationID)

	if filter.Keyword != "" {
		pattern := likePattern(filter.Keyword)
		query = query.Where("(LOWER(full_name) LIKE ?"+likeEscape+" OR LOWER(email) LIKE ?"+likeEscape+")", pattern, pattern)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.RoleCode != "" {
		query = query.Where(
			"id IN (SELECT user_roles.user_id FROM user_roles JOIN roles ON roles.id = user_roles.role_id WHERE roles.organization_id = ? AND roles.code = ?)",
			organizationID, strings.ToLower(filter.RoleCode))
	}
	return query
}

// ExistsByEmail checks if any organization already has a member with this email
func (r *GormUserProfileRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.UserProfileModel{}).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// CountActiveWithRole counts active members holding the role
func (r *GormUserProfileRepository) CountActiveWithRole(ctx context.Context, organizationID, roleID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.UserProfileModel{}).
		Joins("JOIN user_roles ON user_roles.user_id = user_profiles.id").
		Where("user_profiles.organization_id = ? AND user_roles.role_id = ? AND user_profiles.status = ?",
			organizationID, roleID, identity.UserStatusActive).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save upserts the member and replaces its role assignments
func (r *GormUserProfileRepository) Save(ctx context.Context, user *identity.UserProfile) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(models.UserProfileModelFromDomain(user)).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", user.ID).Delete(&models.UserRoleModel{}).Error; err != nil {
			return err
		}
		if rows := models.UserRoleModelsFromDomain(user); len(rows) > 0 {
			if err := tx.Create(&rows).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// withRoles converts member rows and attaches their role IDs with one query
func (r *GormUserProfileRepository) withRoles(ctx context.Context, rows []models.UserProfileModel) ([]*identity.UserProfile, error) {
	users := make([]*identity.UserProfile, len(rows))
	if len(rows) == 0 {
		return users, nil
	}
	ids := make([]uuid.UUID, len(rows))
	index := make(map[uuid.UUID]*identity.UserProfile, len(rows))
	for i := range rows {
		users[i] = rows[i].ToDomain()
		ids[i] = rows[i].ID
		index[rows[i].ID] = users[i]
	}

	var links []models.UserRoleModel
	if err := r.db.WithContext(ctx).
		Where("user_id IN ?", ids).
		Order("created_at ASC").
		Find(&links).Error; err != nil {
		return nil, err
	}
	for _, link := range links {
		if u, ok := index[link.UserID]; ok {
			u.RoleIDs = append(u.RoleIDs, link.RoleID)
		}
	}
	return users, nil
}

// Ensure GormUserProfileRepository implements UserProfileRepository
var _ identity.UserProfileRepository = (*GormUserProfileRepository)(nil)
