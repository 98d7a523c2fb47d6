// Package identity implements sign-in, organization registration, membership
// and role administration.
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

// Authentication errors
var (
	ErrInvalidCredentials    = shared.NewDomainError("INVALID_CREDENTIALS", "Invalid email or password")
	ErrAccountDeactivated    = shared.NewDomainError("ACCOUNT_DEACTIVATED", "Account has been deactivated")
	ErrOrganizationSuspended = shared.NewDomainError("ORGANIZATION_SUSPENDED", "Organization is suspended")
	ErrTokenExpired          = shared.NewDomainError("TOKEN_EXPIRED", "Token has expired")
	ErrTokenInvalid          = shared.NewDomainError("TOKEN_INVALID", "Invalid token")
	ErrTokenRevoked          = shared.NewDomainError("TOKEN_REVOKED", "Token has been revoked")
	ErrTokenMaxRefresh       = shared.NewDomainError("TOKEN_MAX_REFRESH", "Maximum token refresh count exceeded. Please log in again")
)

// AuthService handles sign-in and the signed-in member's own account
type AuthService struct {
	orgRepo   identity.OrganizationRepository
	userRepo  identity.UserProfileRepository
	roleRepo  identity.RoleRepository
	jwt       *auth.JWTService
	blacklist auth.TokenBlacklist
	logger    *zap.Logger
}

// NewAuthService creates a new authentication service
func NewAuthService(
	orgRepo identity.OrganizationRepository,
	userRepo identity.UserProfileRepository,
	roleRepo identity.RoleRepository,
	jwt *auth.JWTService,
	blacklist auth.TokenBlacklist,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		orgRepo:   orgRepo,
		userRepo:  userRepo,
		roleRepo:  roleRepo,
		jwt:       jwt,
		blacklist: blacklist,
		logger:    logger,
	}
}

// Login verifies credentials and issues a token pair
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	user, err := s.userRepo.FindByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			s.logger.Warn("Login for unknown email")
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.VerifyPassword(input.Password) {
		s.logger.Warn("Invalid password attempt", zap.String("user_id", user.ID.String()))
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive() {
		return nil, ErrAccountDeactivated
	}

	org, err := s.orgRepo.FindByID(ctx, user.OrganizationID)
	if err != nil {
		return nil, err
	}
	if !org.IsActive() {
		return nil, ErrOrganizationSuspended
	}

	roles, err := s.roleRepo.FindByIDs(ctx, user.OrganizationID, user.RoleIDs)
	if err != nil {
		return nil, err
	}
	pair, err := s.jwt.GenerateTokenPair(subjectFor(user, roles))
	if err != nil {
		s.logger.Error("Failed to generate token pair", zap.Error(err))
		return nil, err
	}

	user.RecordLogin()
	if err := s.userRepo.Save(ctx, user); err != nil {
		// the login still succeeds
		s.logger.Error("Failed to record login", zap.Error(err))
	}

	s.logger.Info("User logged in",
		zap.String("user_id", user.ID.String()),
		zap.String("organization_id", user.OrganizationID.String()))

	return &AuthResult{
		Token:        toTokenDTO(pair),
		User:         toMemberDTO(user, indexRoles(roles)),
		Organization: toOrganizationDTO(org),
	}, nil
}

// Refresh exchanges a refresh token for a new pair. Roles and permissions are
// reloaded so changes made since the last sign-in take effect.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenDTO, error) {
	claims, err := s.jwt.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, mapTokenError(err)
	}
	if err := s.checkRevoked(ctx, claims); err != nil {
		return nil, err
	}

	orgID, err := claims.OrganizationUUID()
	if err != nil {
		return nil, ErrTokenInvalid
	}
	userID, err := claims.UserUUID()
	if err != nil {
		return nil, ErrTokenInvalid
	}

	user, err := s.userRepo.FindByID(ctx, orgID, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, ErrTokenInvalid
		}
		return nil, err
	}
	if !user.IsActive() {
		return nil, ErrAccountDeactivated
	}
	roles, err := s.roleRepo.FindByIDs(ctx, orgID, user.RoleIDs)
	if err != nil {
		return nil, err
	}

	pair, err := s.jwt.RefreshTokenPair(claims, subjectFor(user, roles))
	if err != nil {
		return nil, mapTokenError(err)
	}
	// a refresh token is single-use
	if err := s.blacklist.AddToBlacklist(ctx, claims.ID, claims.RemainingTTL()); err != nil {
		s.logger.Error("Failed to blacklist used refresh token", zap.Error(err))
	}

	dto := toTokenDTO(pair)
	return &dto, nil
}

// Logout revokes the presented access token and, when given, the refresh token
func (s *AuthService) Logout(ctx context.Context, input LogoutInput) error {
	if err := s.blacklist.AddToBlacklist(ctx, input.AccessTokenJTI, input.AccessTokenTTL); err != nil {
		return err
	}
	if input.RefreshToken != "" {
		if claims, err := s.jwt.ValidateRefreshToken(input.RefreshToken); err == nil && claims.UserID == input.UserID.String() {
			if err := s.blacklist.AddToBlacklist(ctx, claims.ID, claims.RemainingTTL()); err != nil {
				return err
			}
		}
	}
	s.logger.Info("User logged out", zap.String("user_id", input.UserID.String()))
	return nil
}

// Me returns the signed-in member with roles and effective permissions
func (s *AuthService) Me(ctx context.Context, organizationID, userID uuid.UUID) (*CurrentUserDTO, error) {
	user, err := s.userRepo.FindByID(ctx, organizationID, userID)
	if err != nil {
		return nil, err
	}
	org, err := s.orgRepo.FindByID(ctx, organizationID)
	if err != nil {
		return nil, err
	}
	roles, err := s.roleRepo.FindByIDs(ctx, organizationID, user.RoleIDs)
	if err != nil {
		return nil, err
	}
	return &CurrentUserDTO{
		MemberDTO:    toMemberDTO(user, indexRoles(roles)),
		Permissions:  identity.CollectPermissions(roles),
		Organization: toOrganizationDTO(org),
	}, nil
}

// UpdateProfile changes the member's own name and phone
func (s *AuthService) UpdateProfile(ctx context.Context, organizationID, userID uuid.UUID, input UpdateProfileInput) (*MemberDTO, error) {
	user, err := s.userRepo.FindByID(ctx, organizationID, userID)
	if err != nil {
		return nil, err
	}
	if err := user.UpdateProfile(input.FullName, input.Phone); err != nil {
		return nil, err
	}
	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}
	roles, err := s.roleRepo.FindByIDs(ctx, organizationID, user.RoleIDs)
	if err != nil {
		return nil, err
	}
	dto := toMemberDTO(user, indexRoles(roles))
	return &dto, nil
}

// ChangePassword replaces the member's password after checking the current one
func (s *AuthService) ChangePassword(ctx context.Context, organizationID, userID uuid.UUID, input ChangePasswordInput) error {
	user, err := s.userRepo.FindByID(ctx, organizationID, userID)
	if err != nil {
		return err
	}
	if err := user.ChangePassword(input.CurrentPassword, input.NewPassword); err != nil {
		return err
	}
	if err := s.userRepo.Save(ctx, user); err != nil {
		return err
	}
	s.logger.Info("User password changed", zap.String("user_id", userID.String()))
	return nil
}

func (s *AuthService) checkRevoked(ctx context.Context, claims *auth.Claims) error {
	revoked, err := s.blacklist.IsBlacklisted(ctx, claims.ID)
	if err != nil {
		return err
	}
	if revoked {
		return ErrTokenRevoked
	}
	invalidated, err := s.blacklist.IsUserInvalidated(ctx, claims.UserID, claims.IssuedAtTime())
	if err != nil {
		return err
	}
	if invalidated {
		return ErrTokenRevoked
	}
	return nil
}

func subjectFor(user *identity.UserProfile, roles []*identity.Role) auth.Subject {
	return auth.Subject{
		OrganizationID: user.OrganizationID,
		UserID:         user.ID,
		Email:          user.Email,
		Roles:          identity.RoleCodes(roles),
		Permissions:    identity.CollectPermissions(roles),
	}
}

func toTokenDTO(pair *auth.TokenPair) TokenDTO {
	return TokenDTO{
		AccessToken:           pair.AccessToken,
		RefreshToken:          pair.RefreshToken,
		AccessTokenExpiresAt:  pair.AccessTokenExpiresAt,
		RefreshTokenExpiresAt: pair.RefreshTokenExpiresAt,
		TokenType:             pair.TokenType,
	}
}

func mapTokenError(err error) error {
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return ErrTokenExpired
	case errors.Is(err, auth.ErrMaxRefreshExceeded):
		return ErrTokenMaxRefresh
	default:
		return ErrTokenInvalid
	}
}
