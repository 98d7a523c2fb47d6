package identity

import (
	"github.com/google/uuid"
	"github.com/hireflow/backend/internal/domain/shared"
)

// Aggregate types
const (
	AggregateTypeOrganization = "Organization"
	AggregateTypeUserProfile  = "UserProfile"
)

// Identity event types
const (
	EventTypeOrganizationRegistered = "OrganizationRegistered"
	EventTypeMemberAdded            = "MemberAdded"
	EventTypeMemberRolesChanged     = "MemberRolesChanged"
	EventTypeMemberStatusChanged    = "MemberStatusChanged"
)

// OrganizationRegisteredEvent is published when a new organization signs up
type OrganizationRegisteredEvent struct {
	shared.BaseDomainEvent
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// NewOrganizationRegisteredEvent creates a new OrganizationRegisteredEvent
func NewOrganizationRegisteredEvent(org *Organization) *OrganizationRegisteredEvent {
	return &OrganizationRegisteredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrganizationRegistered, AggregateTypeOrganization, org.ID, org.ID),
		Name:            org.Name,
		Slug:            org.Slug,
	}
}

// MemberAddedEvent is published when a staff member joins an organization
type MemberAddedEvent struct {
	shared.BaseDomainEvent
	Email string `json:"email"`
}

// NewMemberAddedEvent creates a new MemberAddedEvent
func NewMemberAddedEvent(user *UserProfile) *MemberAddedEvent {
	return &MemberAddedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeMemberAdded, AggregateTypeUserProfile, user.ID, user.OrganizationID),
		Email:           user.Email,
	}
}

// MemberRolesChangedEvent is published when a member's roles are replaced
type MemberRolesChangedEvent struct {
	shared.BaseDomainEvent
	PreviousRoleIDs []uuid.UUID `json:"previous_role_ids"`
	RoleIDs         []uuid.UUID `json:"role_ids"`
}

// NewMemberRolesChangedEvent creates a new MemberRolesChangedEvent
func NewMemberRolesChangedEvent(user *UserProfile, previous []uuid.UUID) *MemberRolesChangedEvent {
	return &MemberRolesChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeMemberRolesChanged, AggregateTypeUserProfile, user.ID, user.OrganizationID),
		PreviousRoleIDs: previous,
		RoleIDs:         user.RoleIDs,
	}
}

// MemberStatusChangedEvent is published when a member is deactivated or reactivated
type MemberStatusChangedEvent struct {
	shared.BaseDomainEvent
	OldStatus UserStatus `json:"old_status"`
	NewStatus UserStatus `json:"new_status"`
}

// NewMemberStatusChangedEvent creates a new MemberStatusChangedEvent
func NewMemberStatusChangedEvent(user *UserProfile, oldStatus UserStatus) *MemberStatusChangedEvent {
	return &MemberStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeMemberStatusChanged, AggregateTypeUserProfile, user.ID, user.OrganizationID),
		OldStatus:       oldStatus,
		NewStatus:       user.Status,
	}
}
