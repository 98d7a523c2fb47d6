package identity

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hireflow/backend/internal/domain/shared"
	"golang.org/x/crypto/bcrypt"
)

// UserStatus represents the status of a staff member
type UserStatus string

const (
	UserStatusActive      UserStatus = "active"
	UserStatusDeactivated UserStatus = "deactivated"
)

// Password cost for bcrypt
const bcryptCost = 12

var (
	emailRegex     = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	hasLetterRegex = regexp.MustCompile(`[a-zA-Z]`)
	hasDigitRegex  = regexp.MustCompile(`[0-9]`)
)

// Membership errors
var (
	ErrLastAdmin        = shared.NewDomainError("LAST_ADMIN", "Organization must keep at least one active administrator")
	ErrSelfModification = shared.NewDomainError("SELF_MODIFICATION", "You cannot deactivate or remove yourself")
	ErrInvalidPassword  = shared.NewDomainError("INVALID_PASSWORD", "Current password is incorrect")
)

// UserProfile is a staff member of an organization.
// RoleIDs are stored in user_roles and loaded by the repository.
type UserProfile struct {
	shared.OrgAggregateRoot
	Email             string
	FullName          string
	Phone             string
	PasswordHash      string
	Status            UserStatus
	RoleIDs           []uuid.UUID
	LastLoginAt       *time.Time
	PasswordChangedAt *time.Time
}

// NewUserProfile creates an active staff member
func NewUserProfile(organizationID uuid.UUID, email, fullName, password string) (*UserProfile, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	fullName = strings.TrimSpace(fullName)
	if err := validateFullName(fullName); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}
	hash, err := hashPassword(password)
	if err != nil {
		return nil, shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}

	now := shared.Now()
	user := &UserProfile{
		OrgAggregateRoot:  shared.NewOrgAggregateRoot(organizationID),
		Email:             email,
		FullName:          fullName,
		PasswordHash:      hash,
		Status:            UserStatusActive,
		RoleIDs:           make([]uuid.UUID, 0),
		PasswordChangedAt: &now,
	}
	user.AddDomainEvent(NewMemberAddedEvent(user))
	return user, nil
}

// UpdateProfile changes the self-service fields
func (u *UserProfile) UpdateProfile(fullName, phone string) error {
	fullName = strings.TrimSpace(fullName)
	if err := validateFullName(fullName); err != nil {
		return err
	}
	phone = strings.TrimSpace(phone)
	if len(phone) > 50 {
		return shared.NewDomainError("INVALID_PHONE", "Phone cannot exceed 50 characters")
	}
	u.FullName = fullName
	u.Phone = phone
	u.touch()
	return nil
}

// ChangePassword replaces the password after verifying the current one
func (u *UserProfile) ChangePassword(current, next string) error {
	if !u.VerifyPassword(current) {
		return ErrInvalidPassword
	}
	if err := validatePassword(next); err != nil {
		return err
	}
	hash, err := hashPassword(next)
	if err != nil {
		return shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}
	now := shared.Now()
	u.PasswordHash = hash
	u.PasswordChangedAt = &now
	u.touch()
	return nil
}

// VerifyPassword verifies if the provided password matches
func (u *UserProfile) VerifyPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// SetRoles replaces the member's roles. At least one role is required.
func (u *UserProfile) SetRoles(roleIDs []uuid.UUID) error {
	if len(roleIDs) == 0 {
		return shared.NewDomainError("ROLES_REQUIRED", "A member needs at least one role")
	}
	seen := make(map[uuid.UUID]struct{}, len(roleIDs))
	unique := make([]uuid.UUID, 0, len(roleIDs))
	for _, id := range roleIDs {
		if id == uuid.Nil {
			return shared.NewDomainError("INVALID_ROLE_ID", "Role ID cannot be empty")
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	previous := u.RoleIDs
	u.RoleIDs = unique
	u.touch()
	u.AddDomainEvent(NewMemberRolesChangedEvent(u, previous))
	return nil
}

// HasRole checks if the member holds the role
func (u *UserProfile) HasRole(roleID uuid.UUID) bool {
	for _, id := range u.RoleIDs {
		if id == roleID {
			return true
		}
	}
	return false
}

// Deactivate blocks sign-in
func (u *UserProfile) Deactivate() error {
	if u.Status == UserStatusDeactivated {
		return shared.NewDomainError("ALREADY_DEACTIVATED", "Member is already deactivated")
	}
	u.Status = UserStatusDeactivated
	u.touch()
	u.AddDomainEvent(NewMemberStatusChangedEvent(u, UserStatusActive))
	return nil
}

// Reactivate restores sign-in
func (u *UserProfile) Reactivate() error {
	if u.Status == UserStatusActive {
		return shared.NewDomainError("ALREADY_ACTIVE", "Member is already active")
	}
	u.Status = UserStatusActive
	u.touch()
	u.AddDomainEvent(NewMemberStatusChangedEvent(u, UserStatusDeactivated))
	return nil
}

// Remove takes the member out of the organization: roles are dropped and the
// account is deactivated. The row is kept so history stays attributable.
func (u *UserProfile) Remove() {
	if len(u.RoleIDs) > 0 {
		previous := u.RoleIDs
		u.RoleIDs = make([]uuid.UUID, 0)
		u.AddDomainEvent(NewMemberRolesChangedEvent(u, previous))
	}
	if u.Status == UserStatusActive {
		u.Status = UserStatusDeactivated
		u.AddDomainEvent(NewMemberStatusChangedEvent(u, UserStatusActive))
	}
	u.touch()
}

// RecordLogin stamps a successful sign-in
func (u *UserProfile) RecordLogin() {
	now := shared.Now()
	u.LastLoginAt = &now
	u.UpdatedAt = now
}

// IsActive returns true if the member may sign in
func (u *UserProfile) IsActive() bool {
	return u.Status == UserStatusActive
}

func (u *UserProfile) touch() {
	u.Touch()
	u.IncrementVersion()
}

// CheckAdminRetained rejects a membership change that would leave the
// organization without an active administrator. activeAdmins counts the
// active admins before the change.
func CheckAdminRetained(activeAdmins int64, targetIsActiveAdmin, targetRemainsActiveAdmin bool) error {
	if targetIsActiveAdmin && !targetRemainsActiveAdmin && activeAdmins <= 1 {
		return ErrLastAdmin
	}
	return nil
}

func validateEmail(email string) error {
	if email == "" {
		return shared.NewDomainError("INVALID_EMAIL", "Email cannot be empty")
	}
	if len(email) > 200 {
		return shared.NewDomainError("INVALID_EMAIL", "Email cannot exceed 200 characters")
	}
	if !emailRegex.MatchString(email) {
		return shared.NewDomainError("INVALID_EMAIL", "Invalid email format")
	}
	return nil
}

func validateFullName(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_FULL_NAME", "Full name cannot be empty")
	}
	if len(name) > 100 {
		return shared.NewDomainError("INVALID_FULL_NAME", "Full name cannot exceed 100 characters")
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < 8 {
		return shared.NewDomainError("WEAK_PASSWORD", "Password must be at least 8 characters")
	}
	if len(password) > 128 {
		return shared.NewDomainError("WEAK_PASSWORD", "Password cannot exceed 128 characters")
	}
	if !hasLetterRegex.MatchString(password) || !hasDigitRegex.MatchString(password) {
		return shared.NewDomainError("WEAK_PASSWORD", "Password must contain at least one letter and one number")
	}
	return nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
