package shared

import (
	"time"

	"github.com/google/uuid"
)

// Now is the clock used for entity timestamps: UTC at microsecond precision,
// which is what PostgreSQL stores, so a saved entity reads back unchanged.
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

// Entity is anything with an identity and audit timestamps
type Entity interface {
	GetID() uuid.UUID
	GetCreatedAt() time.Time
	GetUpdatedAt() time.Time
}

// BaseEntity holds the identity and audit timestamps of an entity
type BaseEntity struct {
	ID        uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (e *BaseEntity) GetID() uuid.UUID        { return e.ID }
func (e *BaseEntity) GetCreatedAt() time.Time { return e.CreatedAt }
func (e *BaseEntity) GetUpdatedAt() time.Time { return e.UpdatedAt }

// Touch records a modification
func (e *BaseEntity) Touch() {
	e.UpdatedAt = Now()
}

// NewBaseEntity returns an entity with a fresh random ID created now
func NewBaseEntity() BaseEntity {
	now := Now()
	return BaseEntity{
		ID:        uuid.New(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}
