package identity

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hireflow/backend/internal/domain/identity"
	"github.com/hireflow/backend/internal/domain/shared"
	"github.com/hireflow/backend/internal/infrastructure/auth"
)

// ErrRoleNotFound is returned when a requested role code does not exist
var ErrRoleNotFound = shared.NewDomainError("ROLE_NOT_FOUND", "One or more roles do not exist")

// GrantRevoker revokes every job access grant of a member
type GrantRevoker interface {
	RevokeAllForUser(ctx context.Context, organizationID, userID, revokedBy uuid.UUID) (int64, error)
}

// MemberService administers the staff of an organization
type MemberService struct {
	userRepo  identity.UserProfileRepository
	roleRepo  identity.RoleRepository
	grants    GrantRevoker
	blacklist auth.TokenBlacklist
	jwt       *auth.JWTService
	publisher shared.EventPublisher
	logger    *zap.Logger
}

// NewMemberService creates a new member service
func NewMemberService(
	userRepo identity.UserProfileRepository,
	roleRepo identity.RoleRepository,
	grants GrantRevoker,
	blacklist auth.TokenBlacklist,
	jwt *auth.JWTService,
	publisher shared.EventPublisher,
	logger *zap.Logger,
) *MemberService {
	return &MemberService{
		userRepo:  userRepo,
		roleRepo:  roleRepo,
		grants:    grants,
		blacklist: blacklist,
		jwt:       jwt,
		publisher: publisher,
		logger:    logger,
	}
}

// List returns one page of members
func (s *MemberService) List(ctx context.Context, organizationID uuid.UUID, filter identity.MemberFilter) (*MemberListResult, error) {
	users, total, err := s.userRepo.FindAll(ctx, organizationID, filter)
	if err != nil {
		return nil, err
	}
	roles, err := s.roleRepo.FindAll(ctx, organizationID)
	if err != nil {
		return nil, err
	}
	byID := indexRoles(roles)

	members := make([]MemberDTO, len(users))
	for i, u := range users {
		members[i] = toMemberDTO(u, byID)
	}
	pageSize := filter.Limit()
	page := max(filter.Page, 1)
	return &MemberListResult{
		Members:    members,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: int((total + int64(pageSize) - 1) / int64(pageSize)),
	}, nil
}

// Get returns a single member
func (s *MemberService) Get(ctx context.Context, organizationID, memberID uuid.UUID) (*MemberDTO, error) {
	user, err := s.userRepo.FindByID(ctx, organizationID, memberID)
	if err != nil {
		return nil, err
	}
	return s.memberDTO(ctx, user)
}

// Add creates a member with an initial password and roles
func (s *MemberService) Add(ctx context.Context, organizationID, actorID uuid.UUID, input AddMemberInput) (*MemberDTO, error) {
	roles, err := s.resolveRoles(ctx, organizationID, input.RoleCodes)
	if err != nil {
		return nil, err
	}
	user, err := identity.NewUserProfile(organizationID, input.Email, input.FullName, input.Password)
	if err != nil {
		return nil, err
	}
	taken, err := s.userRepo.ExistsByEmail(ctx, user.Email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrEmailTaken
	}
	user.CreatedBy = &actorID
	if err := user.SetRoles(roleIDs(roles)); err != nil {
		return nil, err
	}
	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}
	s.publish(ctx, user)

	s.logger.Info("Member added",
		zap.String("organization_id", organizationID.String()),
		zap.String("member_id", user.ID.String()),
		zap.Strings("roles", input.RoleCodes))

	dto := toMemberDTO(user, indexRoles(roles))
	return &dto, nil
}

// UpdateRoles replaces a member's roles. Tokens issued under the old roles are
// revoked, and so are the member's job grants once talent acquisition is dropped.
func (s *MemberService) UpdateRoles(ctx context.Context, organizationID, actorID, memberID uuid.UUID, roleCodes []string) (*MemberDTO, error) {
	roles, err := s.resolveRoles(ctx, organizationID, roleCodes)
	if err != nil {
		return nil, err
	}
	user, err := s.userRepo.FindByID(ctx, organizationID, memberID)
	if err != nil {
		return nil, err
	}
	ids := roleIDs(roles)
	keepsAdmin := user.IsActive() && containsCode(roles, identity.RoleAdmin)
	if err := s.ensureAdminRetained(ctx, user, keepsAdmin); err != nil {
		return nil, err
	}
	losesGrants, err := s.losesTalentAcquisition(ctx, user, roles)
	if err != nil {
		return nil, err
	}
	if err := user.SetRoles(ids); err != nil {
		return nil, err
	}

	var revoked int64
	if losesGrants {
		if revoked, err = s.grants.RevokeAllForUser(ctx, organizationID, memberID, actorID); err != nil {
			return nil, err
		}
	}
	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}
	if err := s.revokeSessions(ctx, user.ID); err != nil {
		return nil, err
	}
	s.publish(ctx, user)

	s.logger.Info("Member roles updated",
		zap.String("member_id", memberID.String()),
		zap.String("actor_id", actorID.String()),
		zap.Strings("roles", roleCodes),
		zap.Int64("revoked_grants", revoked))

	dto := toMemberDTO(user, indexRoles(roles))
	return &dto, nil
}

// Deactivate blocks a member from signing in and revokes their tokens
func (s *MemberService) Deactivate(ctx context.Context, organizationID, actorID, memberID uuid.UUID) (*MemberDTO, error) {
	if actorID == memberID {
		return nil, identity.ErrSelfModification
	}
	user, err := s.userRepo.FindByID(ctx, organizationID, memberID)
	if err != nil {
		return nil, err
	}
	if err := s.ensureAdminRetained(ctx, user, false); err != nil {
		return nil, err
	}
	if err := user.Deactivate(); err != nil {
		return nil, err
	}
	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}
	if err := s.revokeSessions(ctx, user.ID); err != nil {
		return nil, err
	}
	s.publish(ctx, user)

	s.logger.Info("Member deactivated",
		zap.String("member_id", memberID.String()),
		zap.String("actor_id", actorID.String()))
	return s.memberDTO(ctx, user)
}

// Reactivate restores a deactivated member
func (s *MemberService) Reactivate(ctx context.Context, organizationID, memberID uuid.UUID) (*MemberDTO, error) {
	user, err := s.userRepo.FindByID(ctx, organizationID, memberID)
	if err != nil {
		return nil, err
	}
	if len(user.RoleIDs) == 0 {
		return nil, shared.NewDomainError("ROLES_REQUIRED", "Assign a role before reactivating a removed member")
	}
	if err := user.Reactivate(); err != nil {
		return nil, err
	}
	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}
	s.publish(ctx, user)

	s.logger.Info("Member reactivated", zap.String("member_id", memberID.String()))
	return s.memberDTO(ctx, user)
}

// Remove revokes a member's job access, drops their roles and deactivates them
func (s *MemberService) Remove(ctx context.Context, organizationID, actorID, memberID uuid.UUID) (*RemoveMemberResult, error) {
	if actorID == memberID {
		return nil, identity.ErrSelfModification
	}
	user, err := s.userRepo.FindByID(ctx, organizationID, memberID)
	if err != nil {
		return nil, err
	}
	if err := s.ensureAdminRetained(ctx, user, false); err != nil {
		return nil, err
	}

	revoked, err := s.grants.RevokeAllForUser(ctx, organizationID, memberID, actorID)
	if err != nil {
		return nil, err
	}
	user.Remove()
	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}
	if err := s.revokeSessions(ctx, user.ID); err != nil {
		return nil, err
	}
	s.publish(ctx, user)

	s.logger.Info("Member removed",
		zap.String("member_id", memberID.String()),
		zap.String("actor_id", actorID.String()),
		zap.Int64("revoked_grants", revoked))
	return &RemoveMemberResult{RevokedGrants: revoked}, nil
}

// ensureAdminRetained applies the last-admin rule to a change of user
func (s *MemberService) ensureAdminRetained(ctx context.Context, user *identity.UserProfile, remainsAdmin bool) error {
	adminRole, err := s.roleRepo.FindByCode(ctx, user.OrganizationID, identity.RoleAdmin)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil
		}
		return err
	}
	isAdmin := user.IsActive() && user.HasRole(adminRole.ID)
	if !isAdmin || remainsAdmin {
		return nil
	}
	count, err := s.userRepo.CountActiveWithRole(ctx, user.OrganizationID, adminRole.ID)
	if err != nil {
		return err
	}
	return identity.CheckAdminRetained(count, isAdmin, remainsAdmin)
}

// losesTalentAcquisition reports whether the new roles drop a talent
// acquisition role the member currently holds
func (s *MemberService) losesTalentAcquisition(ctx context.Context, user *identity.UserProfile, roles []*identity.Role) (bool, error) {
	if containsCode(roles, identity.RoleTalentAcquisition) {
		return false, nil
	}
	taRole, err := s.roleRepo.FindByCode(ctx, user.OrganizationID, identity.RoleTalentAcquisition)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return user.HasRole(taRole.ID), nil
}

func (s *MemberService) resolveRoles(ctx context.Context, organizationID uuid.UUID, codes []string) ([]*identity.Role, error) {
	if len(codes) == 0 {
		return nil, shared.NewDomainError("ROLES_REQUIRED", "A member needs at least one role")
	}
	unique := make(map[string]struct{}, len(codes))
	for _, c := range codes {
		unique[c] = struct{}{}
	}
	roles, err := s.roleRepo.FindByCodes(ctx, organizationID, codes)
	if err != nil {
		return nil, err
	}
	if len(roles) != len(unique) {
		return nil, ErrRoleNotFound
	}
	return roles, nil
}

// revokeSessions invalidates every token issued to the user so far
func (s *MemberService) revokeSessions(ctx context.Context, userID uuid.UUID) error {
	if err := s.blacklist.InvalidateUser(ctx, userID.String(), s.jwt.RefreshTokenExpiration()); err != nil {
		s.logger.Error("Failed to invalidate member tokens", zap.String("member_id", userID.String()), zap.Error(err))
		return err
	}
	return nil
}

func (s *MemberService) memberDTO(ctx context.Context, user *identity.UserProfile) (*MemberDTO, error) {
	roles, err := s.roleRepo.FindByIDs(ctx, user.OrganizationID, user.RoleIDs)
	if err != nil {
		return nil, err
	}
	dto := toMemberDTO(user, indexRoles(roles))
	return &dto, nil
}

func (s *MemberService) publish(ctx context.Context, user *identity.UserProfile) {
	if err := shared.PublishRaised(ctx, s.publisher, user); err != nil {
		s.logger.Warn("Failed to publish member events", zap.String("member_id", user.ID.String()), zap.Error(err))
	}
}

func roleIDs(roles []*identity.Role) []uuid.UUID {
	ids := make([]uuid.UUID, len(roles))
	for i, r := range roles {
		ids[i] = r.ID
	}
	return ids
}

func containsCode(roles []*identity.Role, code string) bool {
	for _, r := range roles {
		if r.Code == code {
			return true
		}
	}
	return false
}
