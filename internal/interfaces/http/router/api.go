package router

import (
	"github.com/hireflow/backend/internal/interfaces/http/handler"
	"github.com/hireflow/backend/internal/interfaces/http/middleware"
)

// Handlers are the HTTP handlers mounted by RegisterAPI
type Handlers struct {
	System       *handler.SystemHandler
	Auth         *handler.AuthHandler
	Organization *handler.OrganizationHandler
	Job          *handler.JobHandler
	Candidate    *handler.CandidateHandler
	Application  *handler.ApplicationHandler
}

// RegisterAPI registers every API route on r and calls Setup. /health is
// mounted on the engine itself, outside the versioned group.
func RegisterAPI(r *Router, h Handlers) {
	require := middleware.RequirePermission
	r.Engine().GET("/health", h.System.Health)

	system := NewDomainGroup("system", "")
	system.GET("/ping", h.System.Ping)

	authRoutes := NewDomainGroup("auth", "/auth")
	authRoutes.POST("/register", h.Auth.Register)
	authRoutes.POST("/login", h.Auth.Login)
	authRoutes.POST("/refresh", h.Auth.Refresh)
	authRoutes.POST("/logout", h.Auth.Logout)
	authRoutes.GET("/me", h.Auth.Me)
	authRoutes.PUT("/me", h.Auth.UpdateMe)
	authRoutes.PUT("/password", h.Auth.ChangePassword)

	org := NewDomainGroup("organization", "/organization")
	org.GET("", h.Organization.Get)
	org.PUT("", require("organization:update"), h.Organization.Update)

	members := org.Group("members", "/members")
	members.GET("", require("member:read"), h.Organization.ListMembers)
	members.POST("", require("member:create"), h.Organization.AddMember)
	members.GET("/:id", require("member:read"), h.Organization.GetMember)
	members.PUT("/:id/roles", require("member:update"), h.Organization.UpdateMemberRoles)
	members.POST("/:id/deactivate", require("member:update"), h.Organization.DeactivateMember)
	members.POST("/:id/reactivate", require("member:update"), h.Organization.ReactivateMember)
	members.DELETE("/:id", require("member:delete"), h.Organization.RemoveMember)
	members.GET("/:id/job-access", require("access:read"), h.Job.MemberAccess)

	roles := org.Group("roles", "/roles")
	roles.GET("", require("role:read"), h.Organization.ListRoles)
	roles.POST("", require("role:create"), h.Organization.CreateRole)
	roles.PUT("/:id", require("role:update"), h.Organization.UpdateRole)
	roles.DELETE("/:id", require("role:delete"), h.Organization.DeleteRole)

	jobs := NewDomainGroup("jobs", "/jobs")
	jobs.GET("", require("job:read"), h.Job.List)
	jobs.POST("", require("job:create"), h.Job.Create)
	jobs.GET("/:id", require("job:read"), h.Job.Get)
	jobs.PUT("/:id", require("job:update"), h.Job.Update)
	jobs.DELETE("/:id", require("job:delete"), h.Job.Delete)
	jobs.POST("/:id/publish", require("job:publish"), h.Job.Publish)
	jobs.POST("/:id/close", require("job:update"), h.Job.Close)
	jobs.POST("/:id/reopen", require("job:update"), h.Job.Reopen)
	jobs.POST("/:id/archive", require("job:update"), h.Job.Archive)
	jobs.GET("/:id/pdf", require("job:read"), h.Job.ExportPDF)
	jobs.GET("/:id/access", require("access:read"), h.Job.ListAccess)
	jobs.POST("/:id/access", require("access:create"), h.Job.GrantAccess)
	jobs.DELETE("/:id/access/:user_id", require("access:delete"), h.Job.RevokeAccess)

	candidates := NewDomainGroup("candidates", "/candidates")
	candidates.GET("", require("candidate:read"), h.Candidate.List)
	candidates.POST("", require("candidate:create"), h.Candidate.Create)
	candidates.GET("/:id", require("candidate:read"), h.Candidate.Get)
	candidates.PUT("/:id", require("candidate:update"), h.Candidate.Update)
	candidates.DELETE("/:id", require("candidate:delete"), h.Candidate.Delete)
	candidates.POST("/:id/education", require("candidate:update"), h.Candidate.AddEducation)
	candidates.PUT("/:id/education/:entry_id", require("candidate:update"), h.Candidate.UpdateEducation)
	candidates.DELETE("/:id/education/:entry_id", require("candidate:update"), h.Candidate.RemoveEducation)
	candidates.POST("/:id/experience", require("candidate:update"), h.Candidate.AddExperience)
	candidates.PUT("/:id/experience/:entry_id", require("candidate:update"), h.Candidate.UpdateExperience)
	candidates.DELETE("/:id/experience/:entry_id", require("candidate:update"), h.Candidate.RemoveExperience)
	candidates.GET("/:id/documents", require("document:read"), h.Candidate.ListDocuments)
	candidates.POST("/:id/documents", require("document:create"), h.Candidate.InitiateUpload)

	documents := NewDomainGroup("documents", "/documents")
	documents.POST("/:id/confirm", require("document:create"), h.Candidate.ConfirmUpload)
	documents.GET("/:id/download", require("document:read"), h.Candidate.DownloadDocument)
	documents.DELETE("/:id", require("document:delete"), h.Candidate.DeleteDocument)

	applications := NewDomainGroup("applications", "/applications")
	applications.GET("", require("application:read"), h.Application.List)
	applications.POST("", require("application:create"), h.Application.Create)
	applications.GET("/:id", require("application:read"), h.Application.Get)
	applications.DELETE("/:id", require("application:delete"), h.Application.Delete)
	applications.POST("/:id/status", require("application:update"), h.Application.ChangeStatus)
	applications.PUT("/:id/rating", require("application:update"), h.Application.Rate)
	applications.GET("/:id/history", require("application:read"), h.Application.History)

	dashboard := NewDomainGroup("dashboard", "/dashboard")
	dashboard.GET("", require("dashboard:read"), h.Application.Dashboard)

	r.Register(system).
		Register(authRoutes).
		Register(org).
		Register(jobs).
		Register(candidates).
		Register(documents).
		Register(applications).
		Register(dashboard)
	r.Setup()
}
