package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/hireflow/backend/internal/domain/identity"
)

// OrganizationModel is the persistence model for the Organization aggregate.
type OrganizationModel struct {
	AggregateModel
	Name    string                      `gorm:"type:varchar(200);not null"`
	Slug    string                      `gorm:"type:varchar(50);not null;uniqueIndex"`
	Website string                      `gorm:"type:varchar(500)"`
	Status  identity.OrganizationStatus `gorm:"type:varchar(20);not null;default:'active'"`
}

// TableName returns the table name for GORM
func (OrganizationModel) TableName() string {
	return "organizations"
}

// ToDomain converts the persistence model to a domain Organization.
func (m *OrganizationModel) ToDomain() *identity.Organization {
	org := &identity.Organization{
		Name:    m.Name,
		Slug:    m.Slug,
		Website: m.Website,
		Status:  m.Status,
	}
	m.PopulateAggregateRoot(&org.BaseAggregateRoot)
	return org
}

// FromDomain populates the persistence model from a domain Organization.
func (m *OrganizationModel) FromDomain(o *identity.Organization) {
	m.FromDomainAggregateRoot(o.BaseAggregateRoot)
	m.Name = o.Name
	m.Slug = o.Slug
	m.Website = o.Website
	m.Status = o.Status
}

// OrganizationModelFromDomain creates a new persistence model from a domain Organization.
func OrganizationModelFromDomain(o *identity.Organization) *OrganizationModel {
	m := &OrganizationModel{}
	m.FromDomain(o)
	return m
}

// RoleModel is the persistence model for the Role aggregate.
// Permissions live in role_permissions and are loaded by the repository.
type RoleModel struct {
	OrgAggregateModel
	Code        string `gorm:"type:varchar(50);not null"`
	Name        string `gorm:"type:varchar(100);not null"`
	Description string `gorm:"type:text"`
	IsSystem    bool   `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (RoleModel) TableName() string {
	return "roles"
}

// ToDomain converts the persistence model to a domain Role without permissions.
func (m *RoleModel) ToDomain() *identity.Role {
	role := &identity.Role{
		Code:        m.Code,
		Name:        m.Name,
		Description: m.Description,
		IsSystem:    m.IsSystem,
		Permissions: make([]identity.Permission, 0),
	}
	m.PopulateOrgAggregateRoot(&role.OrgAggregateRoot)
	return role
}

// FromDomain populates the persistence model from a domain Role.
func (m *RoleModel) FromDomain(r *identity.Role) {
	m.FromDomainOrgAggregateRoot(r.OrgAggregateRoot)
	m.Code = r.Code
	m.Name = r.Name
	m.Description = r.Description
	m.IsSystem = r.IsSystem
}

// RoleModelFromDomain creates a new persistence model from a domain Role.
func RoleModelFromDomain(r *identity.Role) *RoleModel {
	m := &RoleModel{}
	m.FromDomain(r)
	return m
}

// RolePermissionModel is one permission row of a role.
type RolePermissionModel struct {
	RoleID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	Code           string    `gorm:"type:varchar(101);primaryKey"`
	OrganizationID uuid.UUID `gorm:"type:uuid;not null;index"`
	Resource       string    `gorm:"type:varchar(50);not null"`
	Action         string    `gorm:"type:varchar(50);not null"`
	CreatedAt      time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (RolePermissionModel) TableName() string {
	return "role_permissions"
}

// RolePermissionModelsFromDomain creates one row per permission of the role.
func RolePermissionModelsFromDomain(r *identity.Role) []RolePermissionModel {
	now := time.Now()
	rows := make([]RolePermissionModel, len(r.Permissions))
	for i, p := range r.Permissions {
		rows[i] = RolePermissionModel{
			RoleID:         r.ID,
			Code:           p.Code,
			OrganizationID: r.OrganizationID,
			Resource:       p.Resource,
			Action:         p.Action,
			CreatedAt:      now,
		}
	}
	return rows
}

// ToDomain converts the row to a domain Permission.
func (m *RolePermissionModel) ToDomain() identity.Permission {
	return identity.Permission{Code: m.Code, Resource: m.Resource, Action: m.Action}
}

// UserProfileModel is the persistence model for the UserProfile aggregate.
type UserProfileModel struct {
	OrgAggregateModel
	Email             string              `gorm:"type:varchar(200);not null;uniqueIndex"`
	FullName          string              `gorm:"type:varchar(100);not null"`
	Phone             string              `gorm:"type:varchar(50)"`
	PasswordHash      string              `gorm:"type:varchar(255);not null"`
	Status            identity.UserStatus `gorm:"type:varchar(20);not null;default:'active'"`
	LastLoginAt       *time.Time
	PasswordChangedAt *time.Time
}

// TableName returns the table name for GORM
func (UserProfileModel) TableName() string {
	return "user_profiles"
}

// ToDomain converts the persistence model to a domain UserProfile.
// RoleIDs must be loaded separately by the repository.
func (m *UserProfileModel) ToDomain() *identity.UserProfile {
	user := &identity.UserProfile{
		Email:             m.Email,
		FullName:          m.FullName,
		Phone:             m.Phone,
		PasswordHash:      m.PasswordHash,
		Status:            m.Status,
		RoleIDs:           make([]uuid.UUID, 0),
		LastLoginAt:       m.LastLoginAt,
		PasswordChangedAt: m.PasswordChangedAt,
	}
	m.PopulateOrgAggregateRoot(&user.OrgAggregateRoot)
	return user
}

// FromDomain populates the persistence model from a domain UserProfile.
func (m *UserProfileModel) FromDomain(u *identity.UserProfile) {
	m.FromDomainOrgAggregateRoot(u.OrgAggregateRoot)
	m.Email = u.Email
	m.FullName = u.FullName
	m.Phone = u.Phone
	m.PasswordHash = u.PasswordHash
	m.Status = u.Status
	m.LastLoginAt = u.LastLoginAt
	m.PasswordChangedAt = u.PasswordChangedAt
}

// UserProfileModelFromDomain creates a new persistence model from a domain UserProfile.
func UserProfileModelFromDomain(u *identity.UserProfile) *UserProfileModel {
	m := &UserProfileModel{}
	m.FromDomain(u)
	return m
}

// UserRoleModel is the persistence model for the user_roles join table.
type UserRoleModel struct {
	UserID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	RoleID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	OrganizationID uuid.UUID `gorm:"type:uuid;not null;index"`
	CreatedAt      time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (UserRoleModel) TableName() string {
	return "user_roles"
}

// UserRoleModelsFromDomain creates one row per role of the user.
func UserRoleModelsFromDomain(u *identity.UserProfile) []UserRoleModel {
	now := time.Now()
	rows := make([]UserRoleModel, len(u.RoleIDs))
	for i, roleID := range u.RoleIDs {
		rows[i] = UserRoleModel{
			UserID:         u.ID,
			RoleID:         roleID,
			OrganizationID: u.OrganizationID,
			CreatedAt:      now,
		}
	}
	return rows
}
