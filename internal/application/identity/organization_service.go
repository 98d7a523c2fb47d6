package identity

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hireflow/backend/internal/domain/identity"
	"github.com/hireflow/backend/internal/domain/shared"
	"github.com/hireflow/backend/internal/infrastructure/auth"
)

// Registration errors
var (
	ErrSlugTaken  = shared.NewDomainError("ALREADY_EXISTS", "Organization slug is already taken")
	ErrEmailTaken = shared.NewDomainError("ALREADY_EXISTS", "Email is already registered")
)

// OrganizationService registers and maintains organizations
type OrganizationService struct {
	orgRepo   identity.OrganizationRepository
	userRepo  identity.UserProfileRepository
	jwt       *auth.JWTService
	publisher shared.EventPublisher
	logger    *zap.Logger
}

// NewOrganizationService creates a new organization service
func NewOrganizationService(
	orgRepo identity.OrganizationRepository,
	userRepo identity.UserProfileRepository,
	jwt *auth.JWTService,
	publisher shared.EventPublisher,
	logger *zap.Logger,
) *OrganizationService {
	return &OrganizationService{
		orgRepo:   orgRepo,
		userRepo:  userRepo,
		jwt:       jwt,
		publisher: publisher,
		logger:    logger,
	}
}

// Register creates an organization with its system roles and first
// administrator, then signs the administrator in.
func (s *OrganizationService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	org, err := identity.NewOrganization(input.OrganizationName, input.Slug)
	if err != nil {
		return nil, err
	}
	exists, err := s.orgRepo.ExistsBySlug(ctx, org.Slug)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrSlugTaken
	}

	admin, err := identity.NewUserProfile(org.ID, input.Email, input.FullName, input.Password)
	if err != nil {
		return nil, err
	}
	taken, err := s.userRepo.ExistsByEmail(ctx, admin.Email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrEmailTaken
	}

	roles, err := identity.NewSystemRoles(org.ID)
	if err != nil {
		return nil, err
	}
	var adminRole *identity.Role
	for _, r := range roles {
		if r.Code == identity.RoleAdmin {
			adminRole = r
		}
	}
	if err := admin.SetRoles([]uuid.UUID{adminRole.ID}); err != nil {
		return nil, err
	}
	admin.RecordLogin()

	if err := s.orgRepo.Register(ctx, org, roles, admin); err != nil {
		s.logger.Error("Failed to register organization", zap.String("slug", org.Slug), zap.Error(err))
		return nil, err
	}
	if err := shared.PublishRaised(ctx, s.publisher, org, admin); err != nil {
		s.logger.Warn("Failed to publish registration events", zap.Error(err))
	}

	adminRoles := []*identity.Role{adminRole}
	pair, err := s.jwt.GenerateTokenPair(subjectFor(admin, adminRoles))
	if err != nil {
		return nil, err
	}

	s.logger.Info("Organization registered",
		zap.String("organization_id", org.ID.String()),
		zap.String("slug", org.Slug),
		zap.String("admin_id", admin.ID.String()))

	return &AuthResult{
		Token:        toTokenDTO(pair),
		User:         toMemberDTO(admin, indexRoles(adminRoles)),
		Organization: toOrganizationDTO(org),
	}, nil
}

// Get returns the caller's organization
func (s *OrganizationService) Get(ctx context.Context, organizationID uuid.UUID) (*OrganizationDTO, error) {
	org, err := s.orgRepo.FindByID(ctx, organizationID)
	if err != nil {
		return nil, err
	}
	dto := toOrganizationDTO(org)
	return &dto, nil
}

// Update changes the organization's name and website
func (s *OrganizationService) Update(ctx context.Context, organizationID uuid.UUID, input UpdateOrganizationInput) (*OrganizationDTO, error) {
	org, err := s.orgRepo.FindByID(ctx, organizationID)
	if err != nil {
		return nil, err
	}
	if err := org.Update(input.Name, input.Website); err != nil {
		return nil, err
	}
	if err := s.orgRepo.Save(ctx, org); err != nil {
		return nil, err
	}
	s.logger.Info("Organization updated", zap.String("organization_id", organizationID.String()))
	dto := toOrganizationDTO(org)
	return &dto, nil
}
