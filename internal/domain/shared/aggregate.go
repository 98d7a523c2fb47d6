package shared

import (
	"github.com/google/uuid"
)

// AggregateRoot is the base interface for all aggregate roots
type AggregateRoot interface {
	Entity
	GetVersion() int
	IncrementVersion()
	AddDomainEvent(event DomainEvent)
	GetDomainEvents() []DomainEvent
	ClearDomainEvents()
}

// BaseAggregateRoot carries the optimistic-lock version and pending domain events
type BaseAggregateRoot struct {
	BaseEntity
	Version      int
	domainEvents []DomainEvent
}

// GetVersion returns the aggregate version for optimistic locking
func (a *BaseAggregateRoot) GetVersion() int {
	return a.Version
}

// IncrementVersion increments the version number
func (a *BaseAggregateRoot) IncrementVersion() {
	a.Version++
}

// AddDomainEvent adds a domain event to be published
func (a *BaseAggregateRoot) AddDomainEvent(event DomainEvent) {
	a.domainEvents = append(a.domainEvents, event)
}

// GetDomainEvents returns all pending domain events
func (a *BaseAggregateRoot) GetDomainEvents() []DomainEvent {
	return a.domainEvents
}

// ClearDomainEvents clears the pending domain events
func (a *BaseAggregateRoot) ClearDomainEvents() {
	a.domainEvents = nil
}

// NewBaseAggregateRoot creates a new base aggregate root at version 1
func NewBaseAggregateRoot() BaseAggregateRoot {
	return BaseAggregateRoot{
		BaseEntity:   NewBaseEntity(),
		Version:      1,
		domainEvents: make([]DomainEvent, 0),
	}
}

// OrgAggregateRoot is an aggregate owned by a single organization.
// Every query against an OrgAggregateRoot must be scoped by OrganizationID.
type OrgAggregateRoot struct {
	BaseAggregateRoot
	OrganizationID uuid.UUID
	CreatedBy      *uuid.UUID
}

// NewOrgAggregateRoot creates a new organization-scoped aggregate root
func NewOrgAggregateRoot(organizationID uuid.UUID) OrgAggregateRoot {
	return OrgAggregateRoot{
		BaseAggregateRoot: NewBaseAggregateRoot(),
		OrganizationID:    organizationID,
	}
}

// NewOrgAggregateRootWithCreator creates a new organization-scoped aggregate root with creator info
func NewOrgAggregateRootWithCreator(organizationID, createdBy uuid.UUID) OrgAggregateRoot {
	root := NewOrgAggregateRoot(organizationID)
	root.CreatedBy = &createdBy
	return root
}

// BelongsTo reports whether the aggregate is owned by the organization
func (o *OrgAggregateRoot) BelongsTo(organizationID uuid.UUID) bool {
	return o.OrganizationID == organizationID
}
