package identity

import (
	"time"

	"github.com/google/uuid"

	"github.com/hireflow/backend/internal/domain/identity"
)

// LoginInput contains the credentials for sign-in
type LoginInput struct {
	Email    string
	Password string
}

// RegisterInput creates an organization together with its first administrator
type RegisterInput struct {
	OrganizationName string
	Slug             string
	FullName         string
	Email            string
	Password         string
}

// LogoutInput identifies the tokens to revoke
type LogoutInput struct {
	UserID         uuid.UUID
	AccessTokenJTI string
	AccessTokenTTL time.Duration
	// RefreshToken is optional; when present it is revoked as well
	RefreshToken string
}

// UpdateProfileInput contains the self-service profile fields
type UpdateProfileInput struct {
	FullName string
	Phone    string
}

// ChangePasswordInput contains the input for password change
type ChangePasswordInput struct {
	CurrentPassword string
	NewPassword     string
}

// UpdateOrganizationInput contains the editable organization fields
type UpdateOrganizationInput struct {
	Name    string
	Website string
}

// AddMemberInput contains the input for adding a member
type AddMemberInput struct {
	Email     string
	FullName  string
	Password  string
	RoleCodes []string
}

// CreateRoleInput contains input for creating a custom role
type CreateRoleInput struct {
	Code        string
	Name        string
	Description string
	Permissions []string
}

// UpdateRoleInput contains input for updating a custom role
type UpdateRoleInput struct {
	Name        string
	Description string
	Permissions []string
}

// TokenDTO is an issued token pair
type TokenDTO struct {
	AccessToken           string    `json:"access_token"`
	RefreshToken          string    `json:"refresh_token"`
	AccessTokenExpiresAt  time.Time `json:"access_token_expires_at"`
	RefreshTokenExpiresAt time.Time `json:"refresh_token_expires_at"`
	TokenType             string    `json:"token_type"`
}

// AuthResult is returned by login and registration
type AuthResult struct {
	Token        TokenDTO        `json:"token"`
	User         MemberDTO       `json:"user"`
	Organization OrganizationDTO `json:"organization"`
}

// CurrentUserDTO is the signed-in member with effective permissions
type CurrentUserDTO struct {
	MemberDTO
	Permissions  []string        `json:"permissions"`
	Organization OrganizationDTO `json:"organization"`
}

// OrganizationDTO represents an organization
type OrganizationDTO struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	Website   string    `json:"website,omitempty"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MemberDTO represents a staff member
type MemberDTO struct {
	ID          uuid.UUID  `json:"id"`
	Email       string     `json:"email"`
	FullName    string     `json:"full_name"`
	Phone       string     `json:"phone,omitempty"`
	Status      string     `json:"status"`
	Roles       []string   `json:"roles"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// MemberListResult is one page of members
type MemberListResult struct {
	Members    []MemberDTO `json:"members"`
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	PageSize   int         `json:"page_size"`
	TotalPages int         `json:"total_pages"`
}

// RoleDTO represents a role
type RoleDTO struct {
	ID          uuid.UUID `json:"id"`
	Code        string    `json:"code"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	IsSystem    bool      `json:"is_system"`
	Permissions []string  `json:"permissions"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// RemoveMemberResult reports what removal cleaned up
type RemoveMemberResult struct {
	RevokedGrants int64 `json:"revoked_grants"`
}

func toOrganizationDTO(org *identity.Organization) OrganizationDTO {
	return OrganizationDTO{
		ID:        org.ID,
		Name:      org.Name,
		Slug:      org.Slug,
		Website:   org.Website,
		Status:    string(org.Status),
		CreatedAt: org.CreatedAt,
		UpdatedAt: org.UpdatedAt,
	}
}

// toMemberDTO resolves role codes from the roles loaded for the organization
func toMemberDTO(user *identity.UserProfile, rolesByID map[uuid.UUID]*identity.Role) MemberDTO {
	codes := make([]string, 0, len(user.RoleIDs))
	for _, id := range user.RoleIDs {
		if role, ok := rolesByID[id]; ok {
			codes = append(codes, role.Code)
		}
	}
	return MemberDTO{
		ID:          user.ID,
		Email:       user.Email,
		FullName:    user.FullName,
		Phone:       user.Phone,
		Status:      string(user.Status),
		Roles:       codes,
		LastLoginAt: user.LastLoginAt,
		CreatedAt:   user.CreatedAt,
		UpdatedAt:   user.UpdatedAt,
	}
}

func toRoleDTO(role *identity.Role) RoleDTO {
	return RoleDTO{
		ID:          role.ID,
		Code:        role.Code,
		Name:        role.Name,
		Description: role.Description,
		IsSystem:    role.IsSystem,
		Permissions: role.PermissionCodes(),
		CreatedAt:   role.CreatedAt,
		UpdatedAt:   role.UpdatedAt,
	}
}

func indexRoles(roles []*identity.Role) map[uuid.UUID]*identity.Role {
	out := make(map[uuid.UUID]*identity.Role, len(roles))
	for _, r := range roles {
		out[r.ID] = r
	}
	return out
}
