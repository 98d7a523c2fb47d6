package recruiting

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hireflow/backend/internal/domain/recruiting"
)

func TestStatusHistoryHandler(t *testing.T) {
	ctx := context.Background()
	w := newWorld()
	job := w.openJob(t, "Backend Engineer")
	candidate := w.candidate(t, "ada@example.com")

	repo := new(MockHistoryRepository)
	cache := newFakeDashboardCache()
	metrics := &countingMetrics{}
	handler := NewStatusHistoryHandler(repo, cache, metrics, zap.NewNop())
	assert.ElementsMatch(t, []string{
		recruiting.EventTypeApplicationCreated,
		recruiting.EventTypeApplicationStatusChanged,
	}, handler.EventTypes())

	var appended []*recruiting.ApplicationStatusHistory
	repo.On("Append", ctx, mock.AnythingOfType("*recruiting.ApplicationStatusHistory")).
		Run(func(args mock.Arguments) {
			appended = append(appended, args.Get(1).(*recruiting.ApplicationStatusHistory))
		}).Return(nil)

	app, err := recruiting.NewJobApplication(job, candidate.ID, w.hr.UserID, recruiting.SourceDirect, "")
	require.NoError(t, err)
	require.NoError(t, app.ChangeStatus(recruiting.ApplicationStatusRejected, "Not a fit", w.admin.UserID))
	for _, event := range app.GetDomainEvents() {
		require.NoError(t, handler.Handle(ctx, event))
	}

	require.Len(t, appended, 2)
	assert.Equal(t, recruiting.ApplicationStatus(""), appended[0].FromStatus)
	assert.Equal(t, recruiting.ApplicationStatusApplied, appended[0].ToStatus)
	assert.Equal(t, w.hr.UserID, appended[0].ChangedBy)
	assert.Equal(t, app.ID, appended[1].ApplicationID)
	assert.Equal(t, w.orgID, appended[1].OrganizationID)
	assert.Equal(t, recruiting.ApplicationStatusRejected, appended[1].ToStatus)
	assert.Equal(t, "Not a fit", appended[1].Reason)
	assert.Equal(t, []string{"applied->rejected"}, metrics.transitions)
	assert.Equal(t, 2, cache.invalidations)
}

func TestStatusHistoryHandler_AppendFailure(t *testing.T) {
	ctx := context.Background()
	w := newWorld()
	app := w.application(t, w.openJob(t, "Backend Engineer"), w.candidate(t, "ada@example.com"))
	require.NoError(t, app.ChangeStatus(recruiting.ApplicationStatusScreening, "", w.hr.UserID))

	repo := new(MockHistoryRepository)
	repo.On("Append", ctx, mock.Anything).Return(errors.New("db down"))
	handler := NewStatusHistoryHandler(repo, nil, nil, zap.NewNop())

	assert.Error(t, handler.Handle(ctx, app.GetDomainEvents()[0]))
}
