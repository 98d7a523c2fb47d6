package recruiting

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/hireflow/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func validDetails() JobDetails {
	return JobDetails{
		Title:      "Backend Engineer",
		Department: "Engineering",
		Location:   "Berlin",
	}
}

func validDescription() JobDescription {
	return JobDescription{HTML: "<p>Build things</p>", Text: "Build things"}
}

func newOpenJob(t *testing.T) *Job {
	t.Helper()
	job, err := NewJob(uuid.New(), uuid.New(), validDetails(), validDescription())
	require.NoError(t, err)
	require.NoError(t, job.Publish())
	return job
}

func codeOf(err error) string {
	var de *shared.DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

func TestNewJob(t *testing.T) {
	orgID := uuid.New()
	userID := uuid.New()

	t.Run("creates draft with defaults", func(t *testing.T) {
		job, err := NewJob(orgID, userID, validDetails(), JobDescription{})

		require.NoError(t, err)
		assert.Equal(t, JobStatusDraft, job.Status)
		assert.Equal(t, EmploymentFullTime, job.EmploymentType)
		assert.Equal(t, WorkModeOnsite, job.WorkMode)
		assert.Equal(t, 1, job.Openings)
		assert.Equal(t, orgID, job.OrganizationID)
		require.NotNil(t, job.CreatedBy)
		assert.Equal(t, userID, *job.CreatedBy)

		events := job.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypeJobCreated, events[0].EventType())
	})

	t.Run("requires title", func(t *testing.T) {
		d := validDetails()
		d.Title = "   "
		_, err := NewJob(orgID, userID, d, validDescription())
		assert.Equal(t, "INVALID_TITLE", codeOf(err))
	})

	t.Run("rejects unknown employment type", func(t *testing.T) {
		d := validDetails()
		d.EmploymentType = "gig"
		_, err := NewJob(orgID, userID, d, validDescription())
		assert.Equal(t, "INVALID_EMPLOYMENT_TYPE", codeOf(err))
	})

	t.Run("rejects oversized description", func(t *testing.T) {
		big := make([]byte, MaxDescriptionBytes+1)
		_, err := NewJob(orgID, userID, validDetails(), JobDescription{HTML: string(big), Text: "x"})
		assert.ErrorIs(t, err, ErrDescriptionTooLarge)
	})
}

func TestExperienceRange_Validate(t *testing.T) {
	tests := []struct {
		name    string
		r       ExperienceRange
		wantErr bool
	}{
		{"both open", ExperienceRange{}, false},
		{"only min", ExperienceRange{Min: intPtr(3)}, false},
		{"ordered", ExperienceRange{Min: intPtr(2), Max: intPtr(5)}, false},
		{"equal", ExperienceRange{Min: intPtr(4), Max: intPtr(4)}, false},
		{"min above max", ExperienceRange{Min: intPtr(6), Max: intPtr(5)}, true},
		{"negative", ExperienceRange{Min: intPtr(-1)}, true},
		{"too high", ExperienceRange{Max: intPtr(61)}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.r.Validate()
			if tt.wantErr {
				assert.Equal(t, "EXPERIENCE_RANGE_INVALID", codeOf(err))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSalaryRange_Validate(t *testing.T) {
	tests := []struct {
		name     string
		r        SalaryRange
		wantCode string
	}{
		{"empty", SalaryRange{}, ""},
		{"ordered", SalaryRange{Min: decPtr("50000"), Max: decPtr("70000.50"), Currency: "EUR"}, ""},
		{"min above max", SalaryRange{Min: decPtr("80000"), Max: decPtr("70000"), Currency: "EUR"}, "SALARY_RANGE_INVALID"},
		{"negative", SalaryRange{Min: decPtr("-1"), Currency: "EUR"}, "SALARY_RANGE_INVALID"},
		{"missing currency", SalaryRange{Max: decPtr("1000")}, "SALARY_CURRENCY_REQUIRED"},
		{"bad currency", SalaryRange{Max: decPtr("1000"), Currency: "EURO"}, "SALARY_CURRENCY_INVALID"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.r.Validate()
			if tt.wantCode == "" {
				assert.NoError(t, err)
				return
			}
			assert.Equal(t, tt.wantCode, codeOf(err))
		})
	}
}

func TestJobDetails_CurrencyIsUppercased(t *testing.T) {
	d := validDetails()
	d.Salary = SalaryRange{Min: decPtr("10"), Currency: " usd "}
	job, err := NewJob(uuid.New(), uuid.New(), d, validDescription())
	require.NoError(t, err)
	assert.Equal(t, "USD", job.Salary.Currency)
}

func TestJob_Lifecycle(t *testing.T) {
	t.Run("publish requires description", func(t *testing.T) {
		job, err := NewJob(uuid.New(), uuid.New(), validDetails(), JobDescription{HTML: "<p> </p>", Text: " "})
		require.NoError(t, err)
		assert.ErrorIs(t, job.Publish(), ErrDescriptionRequired)
		assert.Equal(t, JobStatusDraft, job.Status)
	})

	t.Run("publish close reopen archive", func(t *testing.T) {
		job := newOpenJob(t)
		require.NotNil(t, job.PublishedAt)
		firstPublished := *job.PublishedAt

		require.NoError(t, job.Close())
		assert.Equal(t, JobStatusClosed, job.Status)
		assert.NotNil(t, job.ClosedAt)

		require.NoError(t, job.Reopen())
		assert.Equal(t, JobStatusOpen, job.Status)
		assert.Nil(t, job.ClosedAt)
		assert.Equal(t, firstPublished, *job.PublishedAt)

		require.NoError(t, job.Close())
		require.NoError(t, job.Archive())
		assert.Equal(t, JobStatusArchived, job.Status)
	})

	t.Run("rejects transitions outside the table", func(t *testing.T) {
		job := newOpenJob(t)
		assert.Equal(t, "INVALID_TRANSITION", codeOf(job.Archive()))
		assert.Equal(t, "INVALID_TRANSITION", codeOf(job.Publish()))
		assert.Equal(t, "INVALID_TRANSITION", codeOf(job.Reopen()))
	})

	t.Run("archived is terminal and immutable", func(t *testing.T) {
		job, err := NewJob(uuid.New(), uuid.New(), validDetails(), validDescription())
		require.NoError(t, err)
		require.NoError(t, job.Archive())

		assert.Equal(t, "INVALID_TRANSITION", codeOf(job.Publish()))
		assert.ErrorIs(t, job.Update(validDetails(), validDescription()), ErrJobArchived)
	})

	t.Run("archived job without description reports the transition", func(t *testing.T) {
		job, err := NewJob(uuid.New(), uuid.New(), validDetails(), JobDescription{})
		require.NoError(t, err)
		require.NoError(t, job.Archive())

		assert.Equal(t, "INVALID_TRANSITION", codeOf(job.Publish()))
		assert.Equal(t, JobStatusArchived, job.Status)
	})

	t.Run("status change raises event", func(t *testing.T) {
		job, err := NewJob(uuid.New(), uuid.New(), validDetails(), validDescription())
		require.NoError(t, err)
		job.ClearDomainEvents()

		require.NoError(t, job.Publish())
		events := job.GetDomainEvents()
		require.Len(t, events, 1)
		evt, ok := events[0].(*JobStatusChangedEvent)
		require.True(t, ok)
		assert.Equal(t, JobStatusDraft, evt.From)
		assert.Equal(t, JobStatusOpen, evt.To)
	})
}

func TestJob_Update(t *testing.T) {
	job := newOpenJob(t)
	version := job.Version

	d := validDetails()
	d.Title = "Senior Backend Engineer"
	d.Experience = ExperienceRange{Min: intPtr(5), Max: intPtr(10)}
	require.NoError(t, job.Update(d, validDescription()))
	assert.Equal(t, "Senior Backend Engineer", job.Title)
	assert.Greater(t, job.Version, version)

	assert.ErrorIs(t, job.Update(d, JobDescription{}), ErrDescriptionRequired)

	d.Experience = ExperienceRange{Min: intPtr(10), Max: intPtr(5)}
	assert.Error(t, job.Update(d, validDescription()))
	assert.Equal(t, "Senior Backend Engineer", job.Title)
}
