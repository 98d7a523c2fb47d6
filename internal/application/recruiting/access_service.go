package recruiting

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hireflow/backend/internal/domain/identity"
	"github.com/hireflow/backend/internal/domain/recruiting"
	"github.com/hireflow/backend/internal/domain/shared"
)

// ErrMemberNotFound is returned when the grant target is not a member of the organization
var ErrMemberNotFound = shared.NewDomainError("NOT_FOUND", "Member not found")

// AccessService manages which talent acquisition members can see which jobs
type AccessService struct {
	accessRepo recruiting.JobAccessRepository
	jobRepo    recruiting.JobRepository
	userRepo   identity.UserProfileRepository
	roleRepo   identity.RoleRepository
	gate       jobGate
	cache      DashboardCache
	publisher  shared.EventPublisher
	logger     *zap.Logger
}

// NewAccessService creates a new AccessService
func NewAccessService(
	accessRepo recruiting.JobAccessRepository,
	jobRepo recruiting.JobRepository,
	userRepo identity.UserProfileRepository,
	roleRepo identity.RoleRepository,
	logger *zap.Logger,
) *AccessService {
	return &AccessService{
		accessRepo: accessRepo,
		jobRepo:    jobRepo,
		userRepo:   userRepo,
		roleRepo:   roleRepo,
		gate:       jobGate{jobs: jobRepo, access: accessRepo},
		cache:      nopDashboardCache{},
		logger:     logger,
	}
}

// SetEventPublisher sets the publisher for access events
func (s *AccessService) SetEventPublisher(publisher shared.EventPublisher) {
	s.publisher = publisher
}

// SetDashboardCache sets the cache invalidated when visibility changes
func (s *AccessService) SetDashboardCache(cache DashboardCache) {
	if cache != nil {
		s.cache = cache
	}
}

// Grant lets a talent acquisition member see a job. Granting an existing
// grant again returns it unchanged.
func (s *AccessService) Grant(ctx context.Context, viewer recruiting.Viewer, jobID uuid.UUID, req GrantAccessRequest) (*GrantResponse, error) {
	job, err := s.gate.load(ctx, viewer, jobID)
	if err != nil {
		return nil, err
	}
	member, err := s.grantee(ctx, viewer.OrganizationID, req.UserID)
	if err != nil {
		return nil, err
	}

	existing, err := s.accessRepo.FindActive(ctx, viewer.OrganizationID, jobID, member.ID)
	switch {
	case err == nil:
		return s.describe(existing, job, member), nil
	case !errors.Is(err, shared.ErrNotFound):
		return nil, err
	}

	grant, err := recruiting.NewJobAccessGrant(job, member.ID, viewer.UserID)
	if err != nil {
		return nil, err
	}
	if err := s.accessRepo.Save(ctx, grant); err != nil {
		return nil, err
	}
	s.changed(ctx, recruiting.NewJobAccessGrantedEvent(grant))

	s.logger.Info("Job access granted",
		zap.String("job_id", jobID.String()),
		zap.String("user_id", member.ID.String()),
		zap.String("granted_by", viewer.UserID.String()))
	return s.describe(grant, job, member), nil
}

// Revoke ends a member's access to a job
func (s *AccessService) Revoke(ctx context.Context, viewer recruiting.Viewer, jobID, userID uuid.UUID) error {
	if _, err := s.gate.load(ctx, viewer, jobID); err != nil {
		return err
	}
	grant, err := s.accessRepo.FindActive(ctx, viewer.OrganizationID, jobID, userID)
	if err != nil {
		return notFoundAs(err, recruiting.ErrGrantNotFound)
	}
	if err := grant.Revoke(viewer.UserID); err != nil {
		return err
	}
	if err := s.accessRepo.Save(ctx, grant); err != nil {
		return err
	}
	s.changed(ctx, recruiting.NewJobAccessRevokedEvent(grant))

	s.logger.Info("Job access revoked",
		zap.String("job_id", jobID.String()),
		zap.String("user_id", userID.String()),
		zap.String("revoked_by", viewer.UserID.String()))
	return nil
}

// ListByJob returns the active grants on a job
func (s *AccessService) ListByJob(ctx context.Context, viewer recruiting.Viewer, jobID uuid.UUID) ([]GrantResponse, error) {
	job, err := s.gate.load(ctx, viewer, jobID)
	if err != nil {
		return nil, err
	}
	grants, err := s.accessRepo.FindActiveByJob(ctx, viewer.OrganizationID, jobID)
	if err != nil {
		return nil, err
	}
	userIDs := make([]uuid.UUID, len(grants))
	for i, g := range grants {
		userIDs[i] = g.UserID
	}
	users, err := s.userRepo.FindByIDs(ctx, viewer.OrganizationID, userIDs)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*identity.UserProfile, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	out := make([]GrantResponse, len(grants))
	for i, g := range grants {
		out[i] = *s.describe(g, job, byID[g.UserID])
	}
	return out, nil
}

// ListByUser returns the jobs a member has been granted
func (s *AccessService) ListByUser(ctx context.Context, viewer recruiting.Viewer, userID uuid.UUID) ([]GrantResponse, error) {
	member, err := s.userRepo.FindByID(ctx, viewer.OrganizationID, userID)
	if err != nil {
		return nil, notFoundAs(err, ErrMemberNotFound)
	}
	grants, err := s.accessRepo.FindActiveByUser(ctx, viewer.OrganizationID, userID)
	if err != nil {
		return nil, err
	}
	out := make([]GrantResponse, 0, len(grants))
	for _, g := range grants {
		job, err := s.jobRepo.FindByID(ctx, viewer.OrganizationID, g.JobID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				continue
			}
			return nil, err
		}
		out = append(out, *s.describe(g, job, member))
	}
	return out, nil
}

// grantee loads the target member and checks that a grant means something for them
func (s *AccessService) grantee(ctx context.Context, organizationID, userID uuid.UUID) (*identity.UserProfile, error) {
	member, err := s.userRepo.FindByID(ctx, organizationID, userID)
	if err != nil {
		return nil, notFoundAs(err, ErrMemberNotFound)
	}
	if !member.IsActive() {
		return nil, recruiting.ErrGrantNotApplicable
	}
	roles, err := s.roleRepo.FindByIDs(ctx, organizationID, member.RoleIDs)
	if err != nil {
		return nil, err
	}
	if !recruiting.IsGrantable(identity.RoleCodes(roles)) {
		return nil, recruiting.ErrGrantNotApplicable
	}
	return member, nil
}

func (s *AccessService) changed(ctx context.Context, event shared.DomainEvent) {
	s.cache.Invalidate(ctx, event.OrganizationID())
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("Failed to publish access event", zap.String("event_type", event.EventType()), zap.Error(err))
	}
}

func (s *AccessService) describe(g *recruiting.JobAccessGrant, job *recruiting.Job, member *identity.UserProfile) *GrantResponse {
	resp := toGrantResponse(g)
	if job != nil {
		resp.JobTitle = job.Title
	}
	if member != nil {
		resp.UserName = member.FullName
		resp.UserEmail = member.Email
	}
	return &resp
}
