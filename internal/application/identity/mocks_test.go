package identity

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/hireflow/backend/internal/domain/identity"
	"github.com/hireflow/backend/internal/domain/shared"
	"github.com/hireflow/backend/internal/infrastructure/auth"
	"github.com/hireflow/backend/internal/infrastructure/config"
)

// MockOrganizationRepository is a mock implementation of identity.OrganizationRepository
type MockOrganizationRepository struct {
	mock.Mock
}

func (m *MockOrganizationRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.Organization, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Organization), args.Error(1)
}

func (m *MockOrganizationRepository) FindBySlug(ctx context.Context, slug string) (*identity.Organization, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Organization), args.Error(1)
}

func (m *MockOrganizationRepository) ExistsBySlug(ctx context.Context, slug string) (bool, error) {
	args := m.Called(ctx, slug)
	return args.Bool(0), args.Error(1)
}

func (m *MockOrganizationRepository) Save(ctx context.Context, org *identity.Organization) error {
	args := m.Called(ctx, org)
	return args.Error(0)
}

func (m *MockOrganizationRepository) Register(ctx context.Context, org *identity.Organization, roles []*identity.Role, admin *identity.UserProfile) error {
	args := m.Called(ctx, org, roles, admin)
	return args.Error(0)
}

// MockUserProfileRepository is a mock implementation of identity.UserProfileRepository
type MockUserProfileRepository struct {
	mock.Mock
}

func (m *MockUserProfileRepository) FindByID(ctx context.Context, organizationID, id uuid.UUID) (*identity.UserProfile, error) {
	args := m.Called(ctx, organizationID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.UserProfile), args.Error(1)
}

func (m *MockUserProfileRepository) FindByEmail(ctx context.Context, email string) (*identity.UserProfile, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.UserProfile), args.Error(1)
}

func (m *MockUserProfileRepository) FindByIDs(ctx context.Context, organizationID uuid.UUID, ids []uuid.UUID) ([]*identity.UserProfile, error) {
	args := m.Called(ctx, organizationID, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*identity.UserProfile), args.Error(1)
}

func (m *MockUserProfileRepository) FindAll(ctx context.Context, organizationID uuid.UUID, filter identity.MemberFilter) ([]*identity.UserProfile, int64, error) {
	args := m.Called(ctx, organizationID, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*identity.UserProfile), args.Get(1).(int64), args.Error(2)
}

func (m *MockUserProfileRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserProfileRepository) CountActiveWithRole(ctx context.Context, organizationID, roleID uuid.UUID) (int64, error) {
	args := m.Called(ctx, organizationID, roleID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserProfileRepository) Save(ctx context.Context, user *identity.UserProfile) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

// MockRoleRepository is a mock implementation of identity.RoleRepository
type MockRoleRepository struct {
	mock.Mock
}

func (m *MockRoleRepository) FindByID(ctx context.Context, organizationID, id uuid.UUID) (*identity.Role, error) {
	args := m.Called(ctx, organizationID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Role), args.Error(1)
}

func (m *MockRoleRepository) FindByCode(ctx context.Context, organizationID uuid.UUID, code string) (*identity.Role, error) {
	args := m.Called(ctx, organizationID, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Role), args.Error(1)
}

func (m *MockRoleRepository) FindByCodes(ctx context.Context, organizationID uuid.UUID, codes []string) ([]*identity.Role, error) {
	args := m.Called(ctx, organizationID, codes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*identity.Role), args.Error(1)
}

func (m *MockRoleRepository) FindByIDs(ctx context.Context, organizationID uuid.UUID, ids []uuid.UUID) ([]*identity.Role, error) {
	args := m.Called(ctx, organizationID, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*identity.Role), args.Error(1)
}

func (m *MockRoleRepository) FindAll(ctx context.Context, organizationID uuid.UUID) ([]*identity.Role, error) {
	args := m.Called(ctx, organizationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*identity.Role), args.Error(1)
}

func (m *MockRoleRepository) ExistsByCode(ctx context.Context, organizationID uuid.UUID, code string) (bool, error) {
	args := m.Called(ctx, organizationID, code)
	return args.Bool(0), args.Error(1)
}

func (m *MockRoleRepository) CountUsersWithRole(ctx context.Context, organizationID, roleID uuid.UUID) (int64, error) {
	args := m.Called(ctx, organizationID, roleID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRoleRepository) Save(ctx context.Context, role *identity.Role) error {
	args := m.Called(ctx, role)
	return args.Error(0)
}

func (m *MockRoleRepository) Delete(ctx context.Context, organizationID, id uuid.UUID) error {
	args := m.Called(ctx, organizationID, id)
	return args.Error(0)
}

// MockGrantRevoker is a mock implementation of GrantRevoker
type MockGrantRevoker struct {
	mock.Mock
}

func (m *MockGrantRevoker) RevokeAllForUser(ctx context.Context, organizationID, userID, revokedBy uuid.UUID) (int64, error) {
	args := m.Called(ctx, organizationID, userID, revokedBy)
	return args.Get(0).(int64), args.Error(1)
}

// MockEventPublisher is a mock implementation of shared.EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

func newTestJWTService() *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{
		Secret:                 "test-secret-key-at-least-32-chars",
		RefreshSecret:          "test-refresh-secret-key-32-chars",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 24 * time.Hour,
		Issuer:                 "hireflow-test",
		MaxRefreshCount:        3,
	})
}

// fixture is an organization with its system roles
type fixture struct {
	org   *identity.Organization
	roles map[string]*identity.Role
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	org, err := identity.NewOrganization("Acme Corp", "acme")
	require.NoError(t, err)
	org.ClearDomainEvents()
	roles, err := identity.NewSystemRoles(org.ID)
	require.NoError(t, err)
	byCode := make(map[string]*identity.Role, len(roles))
	for _, r := range roles {
		byCode[r.Code] = r
	}
	return &fixture{org: org, roles: byCode}
}

func (f *fixture) newMember(t *testing.T, email string, roleCodes ...string) *identity.UserProfile {
	t.Helper()
	user, err := identity.NewUserProfile(f.org.ID, email, "Test Member", "Password123")
	require.NoError(t, err)
	ids := make([]uuid.UUID, len(roleCodes))
	for i, c := range roleCodes {
		ids[i] = f.roles[c].ID
	}
	if len(ids) > 0 {
		require.NoError(t, user.SetRoles(ids))
	}
	user.ClearDomainEvents()
	return user
}

func (f *fixture) rolesFor(codes ...string) []*identity.Role {
	out := make([]*identity.Role, len(codes))
	for i, c := range codes {
		out[i] = f.roles[c]
	}
	return out
}
