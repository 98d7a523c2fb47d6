package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/hireflow/backend/internal/application/recruiting"
	domain "github.com/hireflow/backend/internal/domain/recruiting"
)

// JobHandler serves job postings and their access grants
type JobHandler struct {
	BaseHandler
	jobService    *recruiting.JobService
	accessService *recruiting.AccessService
}

// NewJobHandler creates a new JobHandler
func NewJobHandler(jobService *recruiting.JobService, accessService *recruiting.AccessService) *JobHandler {
	return &JobHandler{
		jobService:    jobService,
		accessService: accessService,
	}
}

// List returns the jobs visible to the member. GET /jobs
func (h *JobHandler) List(c *gin.Context) {
	viewer, ok := h.Viewer(c)
	if !ok {
		return
	}
	var filter recruiting.JobListFilter
	if !h.BindQuery(c, &filter) {
		return
	}
	jobs, total, err := h.jobService.List(c.Request.Context(), viewer, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, jobs, total, filter.Page, filter.PageSize)
}

// Create drafts a job. POST /jobs
func (h *JobHandler) Create(c *gin.Context) {
	viewer, ok := h.Viewer(c)
	if !ok {
		return
	}
	var req recruiting.CreateJobRequest
	if !h.BindJSON(c, &req) {
		return
	}
	job, err := h.jobService.Create(c.Request.Context(), viewer, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, job)
}

// Get GET /jobs/:id
func (h *JobHandler) Get(c *gin.Context) {
	viewer, jobID, ok := h.target(c)
	if !ok {
		return
	}
	job, err := h.jobService.Get(c.Request.Context(), viewer, jobID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, job)
}

// Update replaces the editable fields of a job. PUT /jobs/:id
func (h *JobHandler) Update(c *gin.Context) {
	viewer, jobID, ok := h.target(c)
	if !ok {
		return
	}
	var req recruiting.UpdateJobRequest
	if !h.BindJSON(c, &req) {
		return
	}
	job, err := h.jobService.Update(c.Request.Context(), viewer, jobID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, job)
}

// Delete removes a job without applications. DELETE /jobs/:id
func (h *JobHandler) Delete(c *gin.Context) {
	viewer, jobID, ok := h.target(c)
	if !ok {
		return
	}
	if err := h.jobService.Delete(c.Request.Context(), viewer, jobID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Publish POST /jobs/:id/publish
func (h *JobHandler) Publish(c *gin.Context) { h.transition(c, h.jobService.Publish) }

// Close POST /jobs/:id/close
func (h *JobHandler) Close(c *gin.Context) { h.transition(c, h.jobService.Close) }

// Reopen POST /jobs/:id/reopen
func (h *JobHandler) Reopen(c *gin.Context) { h.transition(c, h.jobService.Reopen) }

// Archive POST /jobs/:id/archive
func (h *JobHandler) Archive(c *gin.Context) { h.transition(c, h.jobService.Archive) }

// ExportPDF renders the job posting as a PDF attachment. GET /jobs/:id/pdf
func (h *JobHandler) ExportPDF(c *gin.Context) {
	viewer, jobID, ok := h.target(c)
	if !ok {
		return
	}
	pdf, err := h.jobService.ExportPDF(c.Request.Context(), viewer, jobID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", pdf.FileName))
	c.Data(http.StatusOK, "application/pdf", pdf.Content)
}

// ListAccess returns the active grants of a job. GET /jobs/:id/access
func (h *JobHandler) ListAccess(c *gin.Context) {
	viewer, jobID, ok := h.target(c)
	if !ok {
		return
	}
	grants, err := h.accessService.ListByJob(c.Request.Context(), viewer, jobID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, grants)
}

// GrantAccess grants a talent acquisition member access to a job.
// POST /jobs/:id/access
func (h *JobHandler) GrantAccess(c *gin.Context) {
	viewer, jobID, ok := h.target(c)
	if !ok {
		return
	}
	var req recruiting.GrantAccessRequest
	if !h.BindJSON(c, &req) {
		return
	}
	grant, err := h.accessService.Grant(c.Request.Context(), viewer, jobID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, grant)
}

// RevokeAccess DELETE /jobs/:id/access/:user_id
func (h *JobHandler) RevokeAccess(c *gin.Context) {
	viewer, jobID, ok := h.target(c)
	if !ok {
		return
	}
	userID, ok := h.UUIDParam(c, "user_id")
	if !ok {
		return
	}
	if err := h.accessService.Revoke(c.Request.Context(), viewer, jobID, userID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// MemberAccess returns the jobs a member is granted.
// GET /organization/members/:id/job-access
func (h *JobHandler) MemberAccess(c *gin.Context) {
	viewer, userID, ok := h.target(c)
	if !ok {
		return
	}
	grants, err := h.accessService.ListByUser(c.Request.Context(), viewer, userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, grants)
}

type jobTransition func(ctx context.Context, viewer domain.Viewer, jobID uuid.UUID) (*recruiting.JobResponse, error)

func (h *JobHandler) transition(c *gin.Context, apply jobTransition) {
	viewer, jobID, ok := h.target(c)
	if !ok {
		return
	}
	job, err := apply(c.Request.Context(), viewer, jobID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, job)
}
