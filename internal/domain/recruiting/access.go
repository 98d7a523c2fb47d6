package recruiting

import (
	"time"

	"github.com/google/uuid"
	"github.com/hireflow/backend/internal/domain/shared"
)

// Role codes that drive job visibility. They mirror the identity system roles.
const (
	roleAdmin             = "admin"
	roleHR                = "hr"
	roleTalentAcquisition = "talent_acquisition"
)

// Access control errors
var (
	ErrGrantNotFound      = shared.NewDomainError("NOT_FOUND", "No active access grant for this user and job")
	ErrGrantNotApplicable = shared.NewDomainError("GRANT_NOT_APPLICABLE", "Job access can only be granted to active talent acquisition members")
)

// JobAccessGrant lets one talent acquisition member see one job.
// A grant is active until it is revoked; revoked rows are kept as an audit trail.
type JobAccessGrant struct {
	shared.BaseEntity
	OrganizationID uuid.UUID
	JobID          uuid.UUID
	UserID         uuid.UUID
	GrantedBy      uuid.UUID
	GrantedAt      time.Time
	RevokedAt      *time.Time
	RevokedBy      *uuid.UUID
}

// NewJobAccessGrant creates an active grant
func NewJobAccessGrant(job *Job, userID, grantedBy uuid.UUID) (*JobAccessGrant, error) {
	if job == nil || userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_GRANT", "Job and user are required")
	}
	if job.Status == JobStatusArchived {
		return nil, ErrJobArchived
	}
	base := shared.NewBaseEntity()
	return &JobAccessGrant{
		BaseEntity:     base,
		OrganizationID: job.OrganizationID,
		JobID:          job.ID,
		UserID:         userID,
		GrantedBy:      grantedBy,
		GrantedAt:      base.CreatedAt,
	}, nil
}

// IsActive returns true if the grant has not been revoked
func (g *JobAccessGrant) IsActive() bool {
	return g.RevokedAt == nil
}

// Revoke ends the grant
func (g *JobAccessGrant) Revoke(revokedBy uuid.UUID) error {
	if !g.IsActive() {
		return shared.NewDomainError("ALREADY_REVOKED", "Access grant is already revoked")
	}
	now := shared.Now()
	g.RevokedAt = &now
	g.RevokedBy = &revokedBy
	g.UpdatedAt = now
	return nil
}

// VisibilityScope describes which jobs a viewer can see
type VisibilityScope string

const (
	// ScopeAll sees every job of the organization
	ScopeAll VisibilityScope = "all"
	// ScopeGranted sees only jobs with an active grant
	ScopeGranted VisibilityScope = "granted"
	// ScopeNone sees nothing
	ScopeNone VisibilityScope = "none"
)

// Viewer is the staff member a query runs for
type Viewer struct {
	OrganizationID uuid.UUID
	UserID         uuid.UUID
	RoleCodes      []string
}

// NewViewer creates a viewer
func NewViewer(organizationID, userID uuid.UUID, roleCodes []string) Viewer {
	return Viewer{OrganizationID: organizationID, UserID: userID, RoleCodes: roleCodes}
}

// Scope resolves the viewer's job visibility from their roles.
// admin and hr see every job; any other role sees granted jobs only.
func (v Viewer) Scope() VisibilityScope {
	if len(v.RoleCodes) == 0 {
		return ScopeNone
	}
	for _, code := range v.RoleCodes {
		if code == roleAdmin || code == roleHR {
			return ScopeAll
		}
	}
	return ScopeGranted
}

// SeesAllJobs is shorthand for Scope() == ScopeAll
func (v Viewer) SeesAllJobs() bool {
	return v.Scope() == ScopeAll
}

// CanView decides visibility of a single job given whether the viewer holds an active grant for it
func (v Viewer) CanView(job *Job, hasActiveGrant bool) bool {
	if job == nil || job.OrganizationID != v.OrganizationID {
		return false
	}
	switch v.Scope() {
	case ScopeAll:
		return true
	case ScopeGranted:
		return hasActiveGrant
	default:
		return false
	}
}

// CacheKey identifies the slice of data the viewer sees, for per-scope caching
func (v Viewer) CacheKey() string {
	switch v.Scope() {
	case ScopeAll:
		return "all"
	case ScopeGranted:
		return "user:" + v.UserID.String()
	default:
		return "none"
	}
}

// IsGrantable reports whether a member with these roles can receive a job grant
func IsGrantable(roleCodes []string) bool {
	hasTA := false
	for _, code := range roleCodes {
		if code == roleAdmin || code == roleHR {
			return false
		}
		if code == roleTalentAcquisition {
			hasTA = true
		}
	}
	return hasTA
}
