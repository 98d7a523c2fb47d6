package recruiting

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/hireflow/backend/internal/domain/recruiting"
)

// ErrObjectNotFound is returned by ObjectStorage.StatObject when the key does not exist
var ErrObjectNotFound = errors.New("object not found")

// PresignedRequest is a time-limited URL plus the headers the client must send with it
type PresignedRequest struct {
	URL       string
	Method    string
	Headers   map[string]string
	ExpiresAt time.Time
}

// ObjectInfo describes a stored object
type ObjectInfo struct {
	Size        int64
	ETag        string
	ContentType string
}

// ObjectStorage is the object store holding candidate documents
type ObjectStorage interface {
	// PresignUpload signs a PUT bound to the content type and base64 Content-MD5.
	PresignUpload(ctx context.Context, key, contentType, contentMD5 string, size int64, expiresIn time.Duration) (*PresignedRequest, error)
	// PresignDownload signs a GET; fileName sets the attachment filename of the response.
	PresignDownload(ctx context.Context, key, fileName string, expiresIn time.Duration) (*PresignedRequest, error)
	StatObject(ctx context.Context, key string) (*ObjectInfo, error)
	DeleteObject(ctx context.Context, key string) error
}

// DashboardCache stores computed dashboards per organization and viewer scope.
// Get reports the generation it looked in; a dashboard computed after a miss is
// stored under that generation, so one that raced an invalidation is never served.
type DashboardCache interface {
	Get(ctx context.Context, organizationID uuid.UUID, scopeKey string) (stats *recruiting.DashboardStats, generation int64, ok bool)
	Set(ctx context.Context, organizationID uuid.UUID, generation int64, scopeKey string, stats *recruiting.DashboardStats)
	// Invalidate drops every cached dashboard of the organization.
	Invalidate(ctx context.Context, organizationID uuid.UUID)
}

// JobRenderer renders a printable job posting
type JobRenderer interface {
	RenderJobPDF(ctx context.Context, posting JobPosting) ([]byte, error)
}

// JobPosting is the data shown on a printed job posting
type JobPosting struct {
	OrganizationName string
	Title            string
	Department       string
	Location         string
	EmploymentType   string
	WorkMode         string
	Experience       string
	Salary           string
	Openings         int
	DescriptionHTML  string
	PublishedAt      *time.Time
}

// RecruitingMetrics records recruiting business counters
type RecruitingMetrics interface {
	ApplicationCreated(ctx context.Context, organizationID uuid.UUID, source string)
	ApplicationStatusChanged(ctx context.Context, organizationID uuid.UUID, from, to string)
	JobPublished(ctx context.Context, organizationID uuid.UUID)
}

type noopMetrics struct{}

func (noopMetrics) ApplicationCreated(context.Context, uuid.UUID, string)               {}
func (noopMetrics) ApplicationStatusChanged(context.Context, uuid.UUID, string, string) {}
func (noopMetrics) JobPublished(context.Context, uuid.UUID)                             {}
