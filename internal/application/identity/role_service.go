package identity

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hireflow/backend/internal/domain/identity"
	"github.com/hireflow/backend/internal/domain/shared"
)

// Role administration errors
var (
	ErrRoleCodeTaken = shared.NewDomainError("ALREADY_EXISTS", "Role code already exists")
	ErrSystemRole    = shared.NewDomainError("SYSTEM_ROLE", "System roles cannot be modified or deleted")
	ErrRoleInUse     = shared.NewDomainError("ROLE_IN_USE", "Role is assigned to members")
)

// RoleService manages the roles of an organization
type RoleService struct {
	roleRepo identity.RoleRepository
	logger   *zap.Logger
}

// NewRoleService creates a new role service
func NewRoleService(roleRepo identity.RoleRepository, logger *zap.Logger) *RoleService {
	return &RoleService{roleRepo: roleRepo, logger: logger}
}

// List returns every role of the organization
func (s *RoleService) List(ctx context.Context, organizationID uuid.UUID) ([]RoleDTO, error) {
	roles, err := s.roleRepo.FindAll(ctx, organizationID)
	if err != nil {
		return nil, err
	}
	out := make([]RoleDTO, len(roles))
	for i, r := range roles {
		out[i] = toRoleDTO(r)
	}
	return out, nil
}

// Create adds a custom role
func (s *RoleService) Create(ctx context.Context, organizationID, actorID uuid.UUID, input CreateRoleInput) (*RoleDTO, error) {
	role, err := identity.NewRole(organizationID, input.Code, input.Name)
	if err != nil {
		return nil, err
	}
	exists, err := s.roleRepo.ExistsByCode(ctx, organizationID, role.Code)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrRoleCodeTaken
	}
	if err := role.Update(input.Name, input.Description); err != nil {
		return nil, err
	}
	if err := role.SetPermissions(input.Permissions); err != nil {
		return nil, err
	}
	role.CreatedBy = &actorID
	if err := s.roleRepo.Save(ctx, role); err != nil {
		return nil, err
	}

	s.logger.Info("Role created",
		zap.String("organization_id", organizationID.String()),
		zap.String("code", role.Code))
	dto := toRoleDTO(role)
	return &dto, nil
}

// Update changes a custom role's name, description and permissions
func (s *RoleService) Update(ctx context.Context, organizationID, roleID uuid.UUID, input UpdateRoleInput) (*RoleDTO, error) {
	role, err := s.roleRepo.FindByID(ctx, organizationID, roleID)
	if err != nil {
		return nil, err
	}
	if role.IsSystem {
		return nil, ErrSystemRole
	}
	if err := role.Update(input.Name, input.Description); err != nil {
		return nil, err
	}
	if err := role.SetPermissions(input.Permissions); err != nil {
		return nil, err
	}
	if err := s.roleRepo.Save(ctx, role); err != nil {
		return nil, err
	}

	s.logger.Info("Role updated", zap.String("role_id", roleID.String()))
	dto := toRoleDTO(role)
	return &dto, nil
}

// Delete removes a custom role that nobody holds
func (s *RoleService) Delete(ctx context.Context, organizationID, roleID uuid.UUID) error {
	role, err := s.roleRepo.FindByID(ctx, organizationID, roleID)
	if err != nil {
		return err
	}
	if !role.CanDelete() {
		return ErrSystemRole
	}
	holders, err := s.roleRepo.CountUsersWithRole(ctx, organizationID, roleID)
	if err != nil {
		return err
	}
	if holders > 0 {
		return ErrRoleInUse
	}
	if err := s.roleRepo.Delete(ctx, organizationID, roleID); err != nil {
		return err
	}
	s.logger.Info("Role deleted", zap.String("role_id", roleID.String()), zap.String("code", role.Code))
	return nil
}
