package identity

import (
	"context"

	"github.com/google/uuid"
)

// OrganizationRepository defines persistence operations for organizations
type OrganizationRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Organization, error)
	FindBySlug(ctx context.Context, slug string) (*Organization, error)
	ExistsBySlug(ctx context.Context, slug string) (bool, error)
	Save(ctx context.Context, org *Organization) error

	// Register persists a new organization, its seeded roles and its first
	// administrator in one transaction.
	Register(ctx context.Context, org *Organization, roles []*Role, admin *UserProfile) error
}

// RoleRepository defines persistence operations for roles
type RoleRepository interface {
	FindByID(ctx context.Context, organizationID, id uuid.UUID) (*Role, error)
	FindByCode(ctx context.Context, organizationID uuid.UUID, code string) (*Role, error)
	FindByCodes(ctx context.Context, organizationID uuid.UUID, codes []string) ([]*Role, error)
	FindByIDs(ctx context.Context, organizationID uuid.UUID, ids []uuid.UUID) ([]*Role, error)
	FindAll(ctx context.Context, organizationID uuid.UUID) ([]*Role, error)
	ExistsByCode(ctx context.Context, organizationID uuid.UUID, code string) (bool, error)
	CountUsersWithRole(ctx context.Context, organizationID, roleID uuid.UUID) (int64, error)
	Save(ctx context.Context, role *Role) error
	Delete(ctx context.Context, organizationID, id uuid.UUID) error
}

// MemberFilter defines the filter criteria for member lists
type MemberFilter struct {
	Keyword  string // Search in full name and email
	RoleCode string
	Status   UserStatus
	OrderBy  string
	OrderDir string
	Page     int
	PageSize int
}

// Offset calculates the offset for pagination
func (f MemberFilter) Offset() int {
	if f.Page <= 0 {
		return 0
	}
	return (f.Page - 1) * f.Limit()
}

// Limit returns the page size, defaulting to 20 and capped at 100
func (f MemberFilter) Limit() int {
	if f.PageSize <= 0 {
		return 20
	}
	if f.PageSize > 100 {
		return 100
	}
	return f.PageSize
}

// UserProfileRepository defines persistence operations for staff members
type UserProfileRepository interface {
	FindByID(ctx context.Context, organizationID, id uuid.UUID) (*UserProfile, error)
	// FindByEmail looks a member up across organizations; emails are globally unique.
	FindByEmail(ctx context.Context, email string) (*UserProfile, error)
	FindByIDs(ctx context.Context, organizationID uuid.UUID, ids []uuid.UUID) ([]*UserProfile, error)
	FindAll(ctx context.Context, organizationID uuid.UUID, filter MemberFilter) ([]*UserProfile, int64, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	CountActiveWithRole(ctx context.Context, organizationID, roleID uuid.UUID) (int64, error)
	// Save upserts the member and replaces its user_roles rows.
	Save(ctx context.Context, user *UserProfile) error
}
