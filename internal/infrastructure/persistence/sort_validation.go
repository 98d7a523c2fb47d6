package persistence

import (
	"strings"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// OrderClause builds a whitelisted "<prefix><field> <dir>, <prefix>id <dir>" clause.
// The id tie-break keeps pages stable when the sort column has duplicates.
func OrderClause(prefix, sortField, orderDir string, allowedFields map[string]bool, defaultField string) string {
	field := ValidateSortField(sortField, allowedFields, defaultField)
	dir := ValidateSortOrder(orderDir)
	if field == "id" {
		return prefix + "id " + dir
	}
	return prefix + field + " " + dir + ", " + prefix + "id " + dir
}

// JobSortFields contains allowed sort fields for jobs
var JobSortFields = map[string]bool{
	"id":             true,
	"created_at":     true,
	"updated_at":     true,
	"title":          true,
	"status":         true,
	"published_at":   true,
	"salary_min":     true,
	"experience_min": true,
}

// ApplicationSortFields contains allowed sort fields for job applications
var ApplicationSortFields = map[string]bool{
	"id":                true,
	"applied_at":        true,
	"updated_at":        true,
	"status_changed_at": true,
	"status":            true,
	"rating":            true,
}

// CandidateSortFields contains allowed sort fields for candidates
var CandidateSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"first_name": true,
	"last_name":  true,
}

// MemberSortFields contains allowed sort fields for organization members
var MemberSortFields = map[string]bool{
	"id":            true,
	"created_at":    true,
	"full_name":     true,
	"email":         true,
	"last_login_at": true,
}
