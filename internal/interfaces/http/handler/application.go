package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/hireflow/backend/internal/application/recruiting"
)

// ApplicationHandler serves job applications and the dashboard
type ApplicationHandler struct {
	BaseHandler
	applicationService *recruiting.ApplicationService
	dashboardService   *recruiting.DashboardService
}

// NewApplicationHandler creates a new ApplicationHandler
func NewApplicationHandler(applicationService *recruiting.ApplicationService, dashboardService *recruiting.DashboardService) *ApplicationHandler {
	return &ApplicationHandler{
		applicationService: applicationService,
		dashboardService:   dashboardService,
	}
}

// List returns the applications on jobs visible to the member. GET /applications
func (h *ApplicationHandler) List(c *gin.Context) {
	viewer, ok := h.Viewer(c)
	if !ok {
		return
	}
	var filter recruiting.ApplicationListFilter
	if !h.BindQuery(c, &filter) {
		return
	}
	apps, total, err := h.applicationService.List(c.Request.Context(), viewer, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, apps, total, filter.Page, filter.PageSize)
}

// Create applies a candidate to an open job. POST /applications
func (h *ApplicationHandler) Create(c *gin.Context) {
	viewer, ok := h.Viewer(c)
	if !ok {
		return
	}
	var req recruiting.CreateApplicationRequest
	if !h.BindJSON(c, &req) {
		return
	}
	app, err := h.applicationService.Create(c.Request.Context(), viewer, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, app)
}

// Get GET /applications/:id
func (h *ApplicationHandler) Get(c *gin.Context) {
	viewer, id, ok := h.target(c)
	if !ok {
		return
	}
	app, err := h.applicationService.Get(c.Request.Context(), viewer, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, app)
}

// Delete DELETE /applications/:id
func (h *ApplicationHandler) Delete(c *gin.Context) {
	viewer, id, ok := h.target(c)
	if !ok {
		return
	}
	if err := h.applicationService.Delete(c.Request.Context(), viewer, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// ChangeStatus moves an application along the pipeline.
// POST /applications/:id/status
func (h *ApplicationHandler) ChangeStatus(c *gin.Context) {
	viewer, id, ok := h.target(c)
	if !ok {
		return
	}
	var req recruiting.ChangeStatusRequest
	if !h.BindJSON(c, &req) {
		return
	}
	app, err := h.applicationService.ChangeStatus(c.Request.Context(), viewer, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, app)
}

// Rate PUT /applications/:id/rating
func (h *ApplicationHandler) Rate(c *gin.Context) {
	viewer, id, ok := h.target(c)
	if !ok {
		return
	}
	var req recruiting.RateApplicationRequest
	if !h.BindJSON(c, &req) {
		return
	}
	app, err := h.applicationService.Rate(c.Request.Context(), viewer, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, app)
}

// History returns the status changes of an application, oldest first.
// GET /applications/:id/history
func (h *ApplicationHandler) History(c *gin.Context) {
	viewer, id, ok := h.target(c)
	if !ok {
		return
	}
	history, err := h.applicationService.History(c.Request.Context(), viewer, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, history)
}

// Dashboard returns pipeline statistics for the member's scope. GET /dashboard
func (h *ApplicationHandler) Dashboard(c *gin.Context) {
	viewer, ok := h.Viewer(c)
	if !ok {
		return
	}
	stats, err := h.dashboardService.Stats(c.Request.Context(), viewer)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stats)
}
