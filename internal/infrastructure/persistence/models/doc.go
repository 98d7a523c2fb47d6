// Package models contains GORM-specific persistence models that map to database tables.
// Domain entities carry no ORM tags; repositories convert through ToDomain/FromDomain.
//
// Structure:
// - base.go: shared model fields (BaseModel, AggregateModel, OrgAggregateModel)
// - identity.go: organizations, roles, role_permissions, user_profiles, user_roles
// - recruiting.go: jobs, job_applications, application_status_history,
//   candidate_profiles, education, experience, job_access_control, candidate_documents
package models
