package identity

import (
	"regexp"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/hireflow/backend/internal/domain/shared"
)

// System role codes seeded into every organization
const (
	RoleAdmin             = "admin"
	RoleHR                = "hr"
	RoleTalentAcquisition = "talent_acquisition"
)

// Wildcard matches any resource or action in a permission code
const Wildcard = "*"

var (
	roleCodeRegex = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)
	segmentRegex  = regexp.MustCompile(`^([a-z][a-z0-9_]*|\*)$`)
)

// Permission represents a functional permission (resource:action pattern)
type Permission struct {
	Code     string
	Resource string
	Action   string
}

// NewPermission creates a new Permission value object
func NewPermission(resource, action string) (Permission, error) {
	resource = strings.ToLower(strings.TrimSpace(resource))
	action = strings.ToLower(strings.TrimSpace(action))
	if len(resource) > 50 || !segmentRegex.MatchString(resource) {
		return Permission{}, shared.NewDomainError("INVALID_PERMISSION_RESOURCE", "Permission resource must be a lowercase identifier or '*'")
	}
	if len(action) > 50 || !segmentRegex.MatchString(action) {
		return Permission{}, shared.NewDomainError("INVALID_PERMISSION_ACTION", "Permission action must be a lowercase identifier or '*'")
	}
	return Permission{
		Code:     resource + ":" + action,
		Resource: resource,
		Action:   action,
	}, nil
}

// NewPermissionFromCode creates a Permission from a code string (e.g., "job:create")
func NewPermissionFromCode(code string) (Permission, error) {
	parts := strings.SplitN(code, ":", 2)
	if len(parts) != 2 {
		return Permission{}, shared.NewDomainError("INVALID_PERMISSION_CODE", "Permission code must be in format 'resource:action'")
	}
	return NewPermission(parts[0], parts[1])
}

// Grants reports whether this permission covers the requested code.
// "job:*" grants "job:create", "*:*" grants everything.
func (p Permission) Grants(code string) bool {
	if p.Code == code {
		return true
	}
	resource, action, ok := strings.Cut(code, ":")
	if !ok {
		return false
	}
	return (p.Resource == Wildcard || p.Resource == resource) &&
		(p.Action == Wildcard || p.Action == action)
}

// Role is a named set of permissions inside an organization
type Role struct {
	shared.OrgAggregateRoot
	Code        string
	Name        string
	Description string
	IsSystem    bool
	Permissions []Permission
}

// NewRole creates a custom role
func NewRole(organizationID uuid.UUID, code, name string) (*Role, error) {
	code = strings.ToLower(strings.TrimSpace(code))
	if len(code) < 2 || len(code) > 50 || !roleCodeRegex.MatchString(code) {
		return nil, shared.NewDomainError("INVALID_ROLE_CODE", "Role code must be 2-50 characters, start with a letter and contain only lowercase letters, digits and underscores")
	}
	name = strings.TrimSpace(name)
	if err := validateRoleName(name); err != nil {
		return nil, err
	}
	return &Role{
		OrgAggregateRoot: shared.NewOrgAggregateRoot(organizationID),
		Code:             code,
		Name:             name,
		Permissions:      make([]Permission, 0),
	}, nil
}

// Update changes name and description
func (r *Role) Update(name, description string) error {
	name = strings.TrimSpace(name)
	if err := validateRoleName(name); err != nil {
		return err
	}
	if len(description) > 500 {
		return shared.NewDomainError("INVALID_ROLE_DESCRIPTION", "Description cannot exceed 500 characters")
	}
	r.Name = name
	r.Description = strings.TrimSpace(description)
	r.touch()
	return nil
}

// SetPermissions replaces the permission set.
// System role permissions are fixed.
func (r *Role) SetPermissions(codes []string) error {
	if r.IsSystem {
		return shared.NewDomainError("SYSTEM_ROLE", "System role permissions cannot be modified")
	}
	perms, err := parsePermissions(codes)
	if err != nil {
		return err
	}
	r.Permissions = perms
	r.touch()
	return nil
}

// HasPermission checks whether any permission of the role grants code
func (r *Role) HasPermission(code string) bool {
	for _, p := range r.Permissions {
		if p.Grants(code) {
			return true
		}
	}
	return false
}

// PermissionCodes returns the codes of the role's permissions
func (r *Role) PermissionCodes() []string {
	codes := make([]string, len(r.Permissions))
	for i, p := range r.Permissions {
		codes[i] = p.Code
	}
	return codes
}

// CanDelete returns true if the role may be deleted
func (r *Role) CanDelete() bool {
	return !r.IsSystem
}

func (r *Role) touch() {
	r.Touch()
	r.IncrementVersion()
}

// RoleDefinition describes a seeded system role
type RoleDefinition struct {
	Code        string
	Name        string
	Description string
	Permissions []string
}

// SystemRoleDefinitions returns the roles every organization starts with
func SystemRoleDefinitions() []RoleDefinition {
	return []RoleDefinition{
		{
			Code:        RoleAdmin,
			Name:        "Administrator",
			Description: "Full access, including members and roles",
			Permissions: []string{"*:*"},
		},
		{
			Code:        RoleHR,
			Name:        "HR",
			Description: "Manages jobs, candidates, applications and job access",
			Permissions: []string{
				"job:*", "application:*", "candidate:*", "document:*",
				"access:*", "dashboard:read", "member:read",
			},
		},
		{
			Code:        RoleTalentAcquisition,
			Name:        "Talent Acquisition",
			Description: "Works the applications of jobs they are granted",
			Permissions: []string{
				"job:read", "application:read", "application:create", "application:update",
				"candidate:read", "candidate:create", "candidate:update",
				"document:read", "document:create", "dashboard:read",
			},
		},
	}
}

// NewSystemRoles builds the seeded roles for an organization
func NewSystemRoles(organizationID uuid.UUID) ([]*Role, error) {
	defs := SystemRoleDefinitions()
	roles := make([]*Role, 0, len(defs))
	for _, def := range defs {
		role, err := NewRole(organizationID, def.Code, def.Name)
		if err != nil {
			return nil, err
		}
		role.Description = def.Description
		perms, err := parsePermissions(def.Permissions)
		if err != nil {
			return nil, err
		}
		role.Permissions = perms
		role.IsSystem = true
		roles = append(roles, role)
	}
	return roles, nil
}

// CollectPermissions flattens the permission codes of several roles, sorted and de-duplicated
func CollectPermissions(roles []*Role) []string {
	seen := make(map[string]struct{})
	codes := make([]string, 0)
	for _, role := range roles {
		for _, p := range role.Permissions {
			if _, ok := seen[p.Code]; ok {
				continue
			}
			seen[p.Code] = struct{}{}
			codes = append(codes, p.Code)
		}
	}
	sort.Strings(codes)
	return codes
}

// RoleCodes returns the codes of the given roles
func RoleCodes(roles []*Role) []string {
	codes := make([]string, len(roles))
	for i, r := range roles {
		codes[i] = r.Code
	}
	return codes
}

func parsePermissions(codes []string) ([]Permission, error) {
	seen := make(map[string]struct{}, len(codes))
	perms := make([]Permission, 0, len(codes))
	for _, code := range codes {
		p, err := NewPermissionFromCode(code)
		if err != nil {
			return nil, err
		}
		if _, ok := seen[p.Code]; ok {
			continue
		}
		seen[p.Code] = struct{}{}
		perms = append(perms, p)
	}
	return perms, nil
}

func validateRoleName(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_ROLE_NAME", "Role name cannot be empty")
	}
	if len(name) > 100 {
		return shared.NewDomainError("INVALID_ROLE_NAME", "Role name cannot exceed 100 characters")
	}
	return nil
}
