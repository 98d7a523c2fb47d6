package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/hireflow/backend/internal/domain/shared"
)

// BaseModel provides common persistence fields for all models.
// It maps to the domain's BaseEntity.
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// ToDomain converts BaseModel to domain BaseEntity
func (m *BaseModel) ToDomain() shared.BaseEntity {
	return shared.BaseEntity{
		ID:        m.ID,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// FromDomainBaseEntity populates BaseModel from domain BaseEntity
func (m *BaseModel) FromDomainBaseEntity(e shared.BaseEntity) {
	m.ID = e.ID
	m.CreatedAt = e.CreatedAt
	m.UpdatedAt = e.UpdatedAt
}

// AggregateModel extends BaseModel with version for optimistic locking.
type AggregateModel struct {
	BaseModel
	Version int `gorm:"not null;default:1"`
}

// FromDomainAggregateRoot populates AggregateModel from domain BaseAggregateRoot
func (m *AggregateModel) FromDomainAggregateRoot(a shared.BaseAggregateRoot) {
	m.FromDomainBaseEntity(a.BaseEntity)
	m.Version = a.Version
}

// PopulateAggregateRoot fills a domain BaseAggregateRoot from the model
func (m *AggregateModel) PopulateAggregateRoot(a *shared.BaseAggregateRoot) {
	a.BaseEntity = m.BaseModel.ToDomain()
	a.Version = m.Version
}

// OrgAggregateModel holds the fields of organization-scoped aggregate roots.
type OrgAggregateModel struct {
	AggregateModel
	OrganizationID uuid.UUID  `gorm:"type:uuid;not null;index"`
	CreatedBy      *uuid.UUID `gorm:"type:uuid"`
}

// FromDomainOrgAggregateRoot populates OrgAggregateModel from domain OrgAggregateRoot
func (m *OrgAggregateModel) FromDomainOrgAggregateRoot(o shared.OrgAggregateRoot) {
	m.FromDomainAggregateRoot(o.BaseAggregateRoot)
	m.OrganizationID = o.OrganizationID
	m.CreatedBy = o.CreatedBy
}

// PopulateOrgAggregateRoot fills a domain OrgAggregateRoot from the model
func (m *OrgAggregateModel) PopulateOrgAggregateRoot(o *shared.OrgAggregateRoot) {
	m.PopulateAggregateRoot(&o.BaseAggregateRoot)
	o.OrganizationID = m.OrganizationID
	o.CreatedBy = m.CreatedBy
}
