package recruiting

import (
	"time"

	"github.com/google/uuid"
)

// Dashboard sizes
const (
	DashboardTopJobs            = 5
	DashboardRecentApplications = 10
)

// JobApplicationCount is a job with its number of applications
type JobApplicationCount struct {
	JobID            uuid.UUID `json:"job_id"`
	Title            string    `json:"title"`
	Status           JobStatus `json:"status"`
	ApplicationCount int64     `json:"application_count"`
}

// DashboardStats is the recruiting overview for one viewer
type DashboardStats struct {
	JobsByStatus           map[JobStatus]int64         `json:"jobs_by_status"`
	TotalJobs              int64                       `json:"total_jobs"`
	ApplicationsByStatus   map[ApplicationStatus]int64 `json:"applications_by_status"`
	TotalApplications      int64                       `json:"total_applications"`
	ApplicationsLast7Days  int64                       `json:"applications_last_7_days"`
	ApplicationsLast30Days int64                       `json:"applications_last_30_days"`
	HiresLast30Days        int64                       `json:"hires_last_30_days"`
	TopJobs                []JobApplicationCount       `json:"top_jobs"`
	RecentApplications     []DashboardApplication      `json:"recent_applications"`
	GeneratedAt            time.Time                   `json:"generated_at"`
}

// DashboardApplication is a compact row of the recent applications list
type DashboardApplication struct {
	ID            uuid.UUID         `json:"id"`
	JobID         uuid.UUID         `json:"job_id"`
	JobTitle      string            `json:"job_title"`
	CandidateID   uuid.UUID         `json:"candidate_id"`
	CandidateName string            `json:"candidate_name"`
	Status        ApplicationStatus `json:"status"`
	AppliedAt     time.Time         `json:"applied_at"`
}

// NewDashboardStats returns stats with every known status present at zero
func NewDashboardStats(now time.Time) *DashboardStats {
	stats := &DashboardStats{
		JobsByStatus:         make(map[JobStatus]int64, len(AllJobStatuses)),
		ApplicationsByStatus: make(map[ApplicationStatus]int64, len(AllApplicationStatuses)),
		TopJobs:              make([]JobApplicationCount, 0),
		RecentApplications:   make([]DashboardApplication, 0),
		GeneratedAt:          now,
	}
	for _, s := range AllJobStatuses {
		stats.JobsByStatus[s] = 0
	}
	for _, s := range AllApplicationStatuses {
		stats.ApplicationsByStatus[s] = 0
	}
	return stats
}

// Recompute derives the totals from the per-status maps
func (s *DashboardStats) Recompute() {
	s.TotalJobs = 0
	for _, n := range s.JobsByStatus {
		s.TotalJobs += n
	}
	s.TotalApplications = 0
	for _, n := range s.ApplicationsByStatus {
		s.TotalApplications += n
	}
}
