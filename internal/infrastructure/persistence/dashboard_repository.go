package persistence

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hireflow/backend/internal/domain/recruiting"
	"gorm.io/gorm"
)

// GormDashboardRepository implements DashboardRepository using GORM
type GormDashboardRepository struct {
	db *gorm.DB
}

// NewGormDashboardRepository creates a new GormDashboardRepository
func NewGormDashboardRepository(db *gorm.DB) *GormDashboardRepository {
	return &GormDashboardRepository{db: db}
}

// Stats computes the dashboard aggregates over the jobs visible to the viewer
func (r *GormDashboardRepository) Stats(ctx context.Context, viewer recruiting.Viewer, now time.Time) (*recruiting.DashboardStats, error) {
	stats := recruiting.NewDashboardStats(now)
	db := r.db.WithContext(ctx)

	jobs := func() *gorm.DB {
		return visibleJobs(db.Table("jobs").Where("jobs.organization_id = ?", viewer.OrganizationID), viewer, "jobs.id")
	}
	applications := func() *gorm.DB {
		return visibleJobs(
			db.Table("job_applications").Where("job_applications.organization_id = ?", viewer.OrganizationID),
			viewer, "job_applications.job_id")
	}

	type statusCount struct {
		Status string
		Total  int64
	}

	var jobCounts []statusCount
	if err := jobs().
		Select("jobs.status AS status, COUNT(*) AS total").
		Group("jobs.status").
		Scan(&jobCounts).Error; err != nil {
		return nil, err
	}
	for _, c := range jobCounts {
		stats.JobsByStatus[recruiting.JobStatus(c.Status)] = c.Total
	}

	var appCounts []statusCount
	if err := applications().
		Select("job_applications.status AS status, COUNT(*) AS total").
		Group("job_applications.status").
		Scan(&appCounts).Error; err != nil {
		return nil, err
	}
	for _, c := range appCounts {
		stats.ApplicationsByStatus[recruiting.ApplicationStatus(c.Status)] = c.Total
	}
	stats.Recompute()

	if err := applications().
		Where("job_applications.applied_at >= ?", now.AddDate(0, 0, -7)).
		Count(&stats.ApplicationsLast7Days).Error; err != nil {
		return nil, err
	}
	if err := applications().
		Where("job_applications.applied_at >= ?", now.AddDate(0, 0, -30)).
		Count(&stats.ApplicationsLast30Days).Error; err != nil {
		return nil, err
	}
	if err := applications().
		Where("job_applications.status = ? AND job_applications.status_changed_at >= ?",
			recruiting.ApplicationStatusHired, now.AddDate(0, 0, -30)).
		Count(&stats.HiresLast30Days).Error; err != nil {
		return nil, err
	}

	type topJob struct {
		JobID            uuid.UUID
		Title            string
		Status           string
		ApplicationCount int64
	}
	var top []topJob
	if err := jobs().
		Select("jobs.id AS job_id, jobs.title AS title, jobs.status AS status, COUNT(job_applications.id) AS application_count").
		Joins("JOIN job_applications ON job_applications.job_id = jobs.id").
		Group("jobs.id, jobs.title, jobs.status").
		Order("application_count DESC, jobs.id ASC").
		Limit(recruiting.DashboardTopJobs).
		Scan(&top).Error; err != nil {
		return nil, err
	}
	for _, t := range top {
		stats.TopJobs = append(stats.TopJobs, recruiting.JobApplicationCount{
			JobID:            t.JobID,
			Title:            t.Title,
			Status:           recruiting.JobStatus(t.Status),
			ApplicationCount: t.ApplicationCount,
		})
	}

	type recent struct {
		ID                 uuid.UUID
		JobID              uuid.UUID
		JobTitle           string
		CandidateID        uuid.UUID
		CandidateFirstName string
		CandidateLastName  string
		Status             string
		AppliedAt          time.Time
	}
	var recents []recent
	if err := applications().
		Select(`job_applications.id AS id,
			job_applications.job_id AS job_id,
			jobs.title AS job_title,
			job_applications.candidate_id AS candidate_id,
			candidate_profiles.first_name AS candidate_first_name,
			candidate_profiles.last_name AS candidate_last_name,
			job_applications.status AS status,
			job_applications.applied_at AS applied_at`).
		Joins("JOIN jobs ON jobs.id = job_applications.job_id").
		Joins("JOIN candidate_profiles ON candidate_profiles.id = job_applications.candidate_id").
		Order("job_applications.applied_at DESC, job_applications.id DESC").
		Limit(recruiting.DashboardRecentApplications).
		Scan(&recents).Error; err != nil {
		return nil, err
	}
	for _, a := range recents {
		stats.RecentApplications = append(stats.RecentApplications, recruiting.DashboardApplication{
			ID:            a.ID,
			JobID:         a.JobID,
			JobTitle:      a.JobTitle,
			CandidateID:   a.CandidateID,
			CandidateName: strings.TrimSpace(a.CandidateFirstName + " " + a.CandidateLastName),
			Status:        recruiting.ApplicationStatus(a.Status),
			AppliedAt:     a.AppliedAt,
		})
	}

	return stats, nil
}

// Ensure GormDashboardRepository implements DashboardRepository
var _ recruiting.DashboardRepository = (*GormDashboardRepository)(nil)
