package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/hireflow/backend/internal/application/recruiting"
)

// CandidateHandler serves candidate profiles and their documents
type CandidateHandler struct {
	BaseHandler
	candidateService *recruiting.CandidateService
	documentService  *recruiting.DocumentService
}

// NewCandidateHandler creates a new CandidateHandler
func NewCandidateHandler(candidateService *recruiting.CandidateService, documentService *recruiting.DocumentService) *CandidateHandler {
	return &CandidateHandler{
		candidateService: candidateService,
		documentService:  documentService,
	}
}

// List GET /candidates
func (h *CandidateHandler) List(c *gin.Context) {
	viewer, ok := h.Viewer(c)
	if !ok {
		return
	}
	var filter recruiting.CandidateListFilter
	if !h.BindQuery(c, &filter) {
		return
	}
	candidates, total, err := h.candidateService.List(c.Request.Context(), viewer, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, candidates, total, filter.Page, filter.PageSize)
}

// Create POST /candidates
func (h *CandidateHandler) Create(c *gin.Context) {
	viewer, ok := h.Viewer(c)
	if !ok {
		return
	}
	var req recruiting.CandidateRequest
	if !h.BindJSON(c, &req) {
		return
	}
	candidate, err := h.candidateService.Create(c.Request.Context(), viewer, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, candidate)
}

// Get returns a candidate with the applications the member may see.
// GET /candidates/:id
func (h *CandidateHandler) Get(c *gin.Context) {
	viewer, id, ok := h.target(c)
	if !ok {
		return
	}
	candidate, err := h.candidateService.Get(c.Request.Context(), viewer, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, candidate)
}

// Update PUT /candidates/:id
func (h *CandidateHandler) Update(c *gin.Context) {
	viewer, id, ok := h.target(c)
	if !ok {
		return
	}
	var req recruiting.CandidateRequest
	if !h.BindJSON(c, &req) {
		return
	}
	candidate, err := h.candidateService.Update(c.Request.Context(), viewer, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, candidate)
}

// Delete removes a candidate without applications. DELETE /candidates/:id
func (h *CandidateHandler) Delete(c *gin.Context) {
	viewer, id, ok := h.target(c)
	if !ok {
		return
	}
	if err := h.candidateService.Delete(c.Request.Context(), viewer, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// AddEducation POST /candidates/:id/education
func (h *CandidateHandler) AddEducation(c *gin.Context) {
	viewer, id, ok := h.target(c)
	if !ok {
		return
	}
	var req recruiting.EducationRequest
	if !h.BindJSON(c, &req) {
		return
	}
	entry, err := h.candidateService.AddEducation(c.Request.Context(), viewer, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, entry)
}

// UpdateEducation PUT /candidates/:id/education/:entry_id
func (h *CandidateHandler) UpdateEducation(c *gin.Context) {
	viewer, id, ok := h.target(c)
	if !ok {
		return
	}
	entryID, ok := h.UUIDParam(c, "entry_id")
	if !ok {
		return
	}
	var req recruiting.EducationRequest
	if !h.BindJSON(c, &req) {
		return
	}
	entry, err := h.candidateService.UpdateEducation(c.Request.Context(), viewer, id, entryID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, entry)
}

// RemoveEducation DELETE /candidates/:id/education/:entry_id
func (h *CandidateHandler) RemoveEducation(c *gin.Context) {
	viewer, id, ok := h.target(c)
	if !ok {
		return
	}
	entryID, ok := h.UUIDParam(c, "entry_id")
	if !ok {
		return
	}
	if err := h.candidateService.RemoveEducation(c.Request.Context(), viewer, id, entryID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// AddExperience POST /candidates/:id/experience
func (h *CandidateHandler) AddExperience(c *gin.Context) {
	viewer, id, ok := h.target(c)
	if !ok {
		return
	}
	var req recruiting.ExperienceRequest
	if !h.BindJSON(c, &req) {
		return
	}
	entry, err := h.candidateService.AddExperience(c.Request.Context(), viewer, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, entry)
}

// UpdateExperience PUT /candidates/:id/experience/:entry_id
func (h *CandidateHandler) UpdateExperience(c *gin.Context) {
	viewer, id, ok := h.target(c)
	if !ok {
		return
	}
	entryID, ok := h.UUIDParam(c, "entry_id")
	if !ok {
		return
	}
	var req recruiting.ExperienceRequest
	if !h.BindJSON(c, &req) {
		return
	}
	entry, err := h.candidateService.UpdateExperience(c.Request.Context(), viewer, id, entryID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, entry)
}

// RemoveExperience DELETE /candidates/:id/experience/:entry_id
func (h *CandidateHandler) RemoveExperience(c *gin.Context) {
	viewer, id, ok := h.target(c)
	if !ok {
		return
	}
	entryID, ok := h.UUIDParam(c, "entry_id")
	if !ok {
		return
	}
	if err := h.candidateService.RemoveExperience(c.Request.Context(), viewer, id, entryID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// ListDocuments GET /candidates/:id/documents
func (h *CandidateHandler) ListDocuments(c *gin.Context) {
	viewer, id, ok := h.target(c)
	if !ok {
		return
	}
	docs, err := h.documentService.List(c.Request.Context(), viewer, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, docs)
}

// InitiateUpload records a pending document and returns a presigned PUT.
// POST /candidates/:id/documents
func (h *CandidateHandler) InitiateUpload(c *gin.Context) {
	viewer, id, ok := h.target(c)
	if !ok {
		return
	}
	var req recruiting.InitiateUploadRequest
	if !h.BindJSON(c, &req) {
		return
	}
	ticket, err := h.documentService.InitiateUpload(c.Request.Context(), viewer, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, ticket)
}

// ConfirmUpload POST /documents/:id/confirm
func (h *CandidateHandler) ConfirmUpload(c *gin.Context) {
	viewer, id, ok := h.target(c)
	if !ok {
		return
	}
	doc, err := h.documentService.ConfirmUpload(c.Request.Context(), viewer, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, doc)
}

// DownloadDocument returns a presigned GET. GET /documents/:id/download
func (h *CandidateHandler) DownloadDocument(c *gin.Context) {
	viewer, id, ok := h.target(c)
	if !ok {
		return
	}
	link, err := h.documentService.Download(c.Request.Context(), viewer, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, link)
}

// DeleteDocument DELETE /documents/:id
func (h *CandidateHandler) DeleteDocument(c *gin.Context) {
	viewer, id, ok := h.target(c)
	if !ok {
		return
	}
	if err := h.documentService.Delete(c.Request.Context(), viewer, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
