package handler

// RegisterRequest creates an organization and its first administrator
type RegisterRequest struct {
	OrganizationName string `json:"organization_name" binding:"required,min=2,max=200"`
	Slug             string `json:"slug" binding:"required,min=3,max=50"`
	FullName         string `json:"full_name" binding:"required,max=100"`
	Email            string `json:"email" binding:"required,email,max=200"`
	Password         string `json:"password" binding:"required,min=8,max=128"`
}

// LoginRequest contains sign-in credentials
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RefreshTokenRequest carries a refresh token when no cookie is sent
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// UpdateProfileRequest edits the signed-in member's profile
type UpdateProfileRequest struct {
	FullName string `json:"full_name" binding:"required,max=100"`
	Phone    string `json:"phone" binding:"max=50"`
}

// ChangePasswordRequest changes the signed-in member's password
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8,max=128"`
}

// UpdateOrganizationRequest edits the organization
type UpdateOrganizationRequest struct {
	Name    string `json:"name" binding:"required,min=2,max=200"`
	Website string `json:"website" binding:"omitempty,url,max=500"`
}

// MemberListQuery filters the member list
type MemberListQuery struct {
	Search   string `form:"search" binding:"max=100"`
	Role     string `form:"role" binding:"max=50"`
	Status   string `form:"status" binding:"omitempty,oneof=active deactivated"`
	OrderBy  string `form:"order_by" binding:"omitempty,oneof=full_name email created_at last_login_at"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// AddMemberRequest adds a staff member
type AddMemberRequest struct {
	Email     string   `json:"email" binding:"required,email,max=200"`
	FullName  string   `json:"full_name" binding:"required,max=100"`
	Password  string   `json:"password" binding:"required,min=8,max=128"`
	RoleCodes []string `json:"role_codes" binding:"required,min=1,dive,required,max=50"`
}

// UpdateMemberRolesRequest replaces a member's roles
type UpdateMemberRolesRequest struct {
	RoleCodes []string `json:"role_codes" binding:"required,min=1,dive,required,max=50"`
}

// CreateRoleRequest creates a custom role
type CreateRoleRequest struct {
	Code        string   `json:"code" binding:"required,min=2,max=50"`
	Name        string   `json:"name" binding:"required,max=100"`
	Description string   `json:"description" binding:"max=500"`
	Permissions []string `json:"permissions" binding:"dive,required,max=100"`
}

// UpdateRoleRequest edits a custom role
type UpdateRoleRequest struct {
	Name        string   `json:"name" binding:"required,max=100"`
	Description string   `json:"description" binding:"max=500"`
	Permissions []string `json:"permissions" binding:"dive,required,max=100"`
}
