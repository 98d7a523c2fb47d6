package persistence

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/hireflow/backend/internal/domain/identity"
	"github.com/hireflow/backend/internal/domain/shared"
	"github.com/hireflow/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormRoleRepository implements RoleRepository using GORM
type GormRoleRepository struct {
	db *gorm.DB
}

// NewGormRoleRepository creates a new GormRoleRepository
func NewGormRoleRepository(db *gorm.DB) *GormRoleRepository {
	return &GormRoleRepository{db: db}
}

// FindByID finds a role by ID within an organization
func (r *GormRoleRepository) FindByID(ctx context.Context, organizationID, id uuid.UUID) (*identity.Role, error) {
	var model models.RoleModel
	if err := r.db.WithContext(ctx).
		Where("organization_id = ? AND id = ?", organizationID, id).
		First(&model).Error; err != nil {
		return nil, notFound(err)
	}
	roles, err := r.withPermissions(ctx, []models.RoleModel{model})
	if err != nil {
		return nil, err
	}
	return roles[0], nil
}

// FindByCode finds a role by code within an organization
func (r *GormRoleRepository) FindByCode(ctx context.Context, organizationID uuid.UUID, code string) (*identity.Role, error) {
	var model models.RoleModel
	if err := r.db.WithContext(ctx).
		Where("organization_id = ? AND code = ?", organizationID, strings.ToLower(code)).
		First(&model).Error; err != nil {
		return nil, notFound(err)
	}
	roles, err := r.withPermissions(ctx, []models.RoleModel{model})
	if err != nil {
		return nil, err
	}
	return roles[0], nil
}

// FindByCodes finds the roles with the given codes
func (r *GormRoleRepository) FindByCodes(ctx context.Context, organizationID uuid.UUID, codes []string) ([]*identity.Role, error) {
	if len(codes) == 0 {
		return []*identity.Role{}, nil
	}
	lowered := make([]string, len(codes))
	for i, c := range codes {
		lowered[i] = strings.ToLower(c)
	}
	var rows []models.RoleModel
	if err := r.db.WithContext(ctx).
		Where("organization_id = ? AND code IN ?", organizationID, lowered).
		Order("code ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return r.withPermissions(ctx, rows)
}

// FindByIDs finds the roles with the given IDs
func (r *GormRoleRepository) FindByIDs(ctx context.Context, organizationID uuid.UUID, ids []uuid.UUID) ([]*identity.Role, error) {
	if len(ids) == 0 {
		return []*identity.Role{}, nil
	}
	var rows []models.RoleModel
	if err := r.db.WithContext(ctx).
		Where("organization_id = ? AND id IN ?", organizationID, ids).
		Order("code ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return r.withPermissions(ctx, rows)
}

// FindAll lists every role of an organization, system roles first
func (r *GormRoleRepository) FindAll(ctx context.Context, organizationID uuid.UUID) ([]*identity.Role, error) {
	var rows []models.RoleModel
	if err := r.db.WithContext(ctx).
		Where("organization_id = ?", organizationID).
		Order("is_system DESC, name ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return r.withPermissions(ctx, rows)
}

// ExistsByCode checks if a role with the given code exists in an organization
func (r *GormRoleRepository) ExistsByCode(ctx context.Context, organizationID uuid.UUID, code string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.RoleModel{}).
		Where("organization_id = ? AND code = ?", organizationID, strings.ToLower(code)).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// CountUsersWithRole counts members holding the role, active or not
func (r *GormRoleRepository) CountUsersWithRole(ctx context.Context, organizationID, roleID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.UserRoleModel{}).
		Where("organization_id = ? AND role_id = ?", organizationID, roleID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save upserts the role and replaces its permission rows
func (r *GormRoleRepository) Save(ctx context.Context, role *identity.Role) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(models.RoleModelFromDomain(role)).Error; err != nil {
			return err
		}
		if err := tx.Where("role_id = ?", role.ID).Delete(&models.RolePermissionModel{}).Error; err != nil {
			return err
		}
		if perms := models.RolePermissionModelsFromDomain(role); len(perms) > 0 {
			if err := tx.Create(&perms).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Delete deletes a role and its permissions
func (r *GormRoleRepository) Delete(ctx context.Context, organizationID, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("role_id = ?", id).Delete(&models.RolePermissionModel{}).Error; err != nil {
			return err
		}
		result := tx.Where("organization_id = ? AND id = ?", organizationID, id).Delete(&models.RoleModel{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// withPermissions converts role rows and attaches their permissions with one query
func (r *GormRoleRepository) withPermissions(ctx context.Context, rows []models.RoleModel) ([]*identity.Role, error) {
	roles := make([]*identity.Role, len(rows))
	if len(rows) == 0 {
		return roles, nil
	}
	ids := make([]uuid.UUID, len(rows))
	index := make(map[uuid.UUID]*identity.Role, len(rows))
	for i := range rows {
		roles[i] = rows[i].ToDomain()
		ids[i] = rows[i].ID
		index[rows[i].ID] = roles[i]
	}

	var perms []models.RolePermissionModel
	if err := r.db.WithContext(ctx).
		Where("role_id IN ?", ids).
		Order("code ASC").
		Find(&perms).Error; err != nil {
		return nil, err
	}
	for i := range perms {
		if role, ok := index[perms[i].RoleID]; ok {
			role.Permissions = append(role.Permissions, perms[i].ToDomain())
		}
	}
	return roles, nil
}

// Ensure GormRoleRepository implements RoleRepository
var _ identity.RoleRepository = (*GormRoleRepository)(nil)
