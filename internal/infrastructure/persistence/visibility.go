package persistence

import (
	"github.com/hireflow/backend/internal/domain/recruiting"
	"gorm.io/gorm"
)

// grantedJobsSubquery selects the jobs a user holds an active grant for
const grantedJobsSubquery = "SELECT job_id FROM job_access_control WHERE organization_id = ? AND user_id = ? AND revoked_at IS NULL"

// visibleJobs restricts a query to the jobs the viewer may see.
// jobColumn is the qualified job id column of the query, e.g. "jobs.id".
func visibleJobs(query *gorm.DB, viewer recruiting.Viewer, jobColumn string) *gorm.DB {
	switch viewer.Scope() {
	case recruiting.ScopeAll:
		return query
	case recruiting.ScopeGranted:
		return query.Where(jobColumn+" IN ("+grantedJobsSubquery+")", viewer.OrganizationID, viewer.UserID)
	default:
		return query.Where("1 = 0")
	}
}
