package identity

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/hireflow/backend/internal/domain/shared"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// OrganizationStatus represents the lifecycle state of an organization
type OrganizationStatus string

const (
	OrganizationStatusActive    OrganizationStatus = "active"
	OrganizationStatusSuspended OrganizationStatus = "suspended"
)

var (
	slugRegex    = regexp.MustCompile(`^[a-z0-9][a-z0-9-]{1,48}[a-z0-9]$`)
	slugStrip    = regexp.MustCompile(`[^a-z0-9]+`)
	websiteRegex = regexp.MustCompile(`^https?://[^\s/$.?#].[^\s]*$`)
)

// Organization is the tenant boundary: users, roles, jobs and candidates
// always belong to exactly one organization.
type Organization struct {
	shared.BaseAggregateRoot
	Name    string
	Slug    string
	Website string
	Status  OrganizationStatus
}

// NewOrganization creates an active organization.
// An empty slug is derived from the name.
func NewOrganization(name, slug string) (*Organization, error) {
	name = strings.TrimSpace(name)
	if err := validateOrganizationName(name); err != nil {
		return nil, err
	}

	slug = strings.ToLower(strings.TrimSpace(slug))
	if slug == "" {
		slug = Slugify(name)
	}
	if !slugRegex.MatchString(slug) {
		return nil, shared.NewDomainError("INVALID_SLUG", "Slug must be 3-50 characters of lowercase letters, digits and hyphens")
	}

	org := &Organization{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Slug:              slug,
		Status:            OrganizationStatusActive,
	}
	org.AddDomainEvent(NewOrganizationRegisteredEvent(org))
	return org, nil
}

// Update changes the display fields of the organization
func (o *Organization) Update(name, website string) error {
	name = strings.TrimSpace(name)
	if err := validateOrganizationName(name); err != nil {
		return err
	}
	website = strings.TrimSpace(website)
	if website != "" && (len(website) > 500 || !websiteRegex.MatchString(website)) {
		return shared.NewDomainError("INVALID_WEBSITE", "Website must be an http(s) URL")
	}

	o.Name = name
	o.Website = website
	o.Touch()
	o.IncrementVersion()
	return nil
}

// Suspend blocks every member of the organization from signing in
func (o *Organization) Suspend() error {
	if o.Status == OrganizationStatusSuspended {
		return shared.NewDomainError("ALREADY_SUSPENDED", "Organization is already suspended")
	}
	o.Status = OrganizationStatusSuspended
	o.Touch()
	o.IncrementVersion()
	return nil
}

// Activate lifts a suspension
func (o *Organization) Activate() error {
	if o.Status == OrganizationStatusActive {
		return shared.NewDomainError("ALREADY_ACTIVE", "Organization is already active")
	}
	o.Status = OrganizationStatusActive
	o.Touch()
	o.IncrementVersion()
	return nil
}

// IsActive returns true if members may sign in
func (o *Organization) IsActive() bool {
	return o.Status == OrganizationStatusActive
}

// Slugify turns a display name into a URL-safe slug.
// Accents are folded ("Café Nøir" -> "cafe-n-ir") and the result is capped at 50 characters.
func Slugify(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, name)
	if err != nil {
		folded = name
	}
	slug := slugStrip.ReplaceAllString(strings.ToLower(folded), "-")
	slug = strings.Trim(slug, "-")
	if len(slug) > 50 {
		slug = strings.TrimRight(slug[:50], "-")
	}
	return slug
}

func validateOrganizationName(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_ORGANIZATION_NAME", "Organization name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_ORGANIZATION_NAME", "Organization name cannot exceed 200 characters")
	}
	return nil
}
