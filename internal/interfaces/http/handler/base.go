// Package handler holds the HTTP handlers of the API.
package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hireflow/backend/internal/domain/recruiting"
	"github.com/hireflow/backend/internal/domain/shared"
	"github.com/hireflow/backend/internal/infrastructure/auth"
	"github.com/hireflow/backend/internal/infrastructure/logger"
	"github.com/hireflow/backend/internal/interfaces/http/dto"
	"github.com/hireflow/backend/internal/interfaces/http/middleware"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessWithMeta sends a success response with pagination meta
func (h *BaseHandler) SuccessWithMeta(c *gin.Context, data any, total int64, page, pageSize int) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(data, total, page, pageSize))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// NoContent sends a 204 no content response
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error sends an error envelope with an explicit status
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	middleware.SetErrorCode(c, code)
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, middleware.GetRequestID(c)))
}

// Unauthorized sends a 401 unauthorized response
func (h *BaseHandler) Unauthorized(c *gin.Context, message string) {
	h.Error(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, message)
}

// BindJSON binds the body into req and answers 400 on failure
func (h *BaseHandler) BindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		middleware.HandleValidationError(c, err)
		return false
	}
	return true
}

// BindQuery binds the query string into req and answers 400 on failure
func (h *BaseHandler) BindQuery(c *gin.Context, req any) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		middleware.HandleValidationError(c, err)
		return false
	}
	return true
}

// HandleError converts an error into the envelope. Domain errors keep their
// code; anything else is logged and answered as INTERNAL_ERROR.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		h.Error(c, dto.GetHTTPStatus(domainErr.Code), domainErr.Code, domainErr.Message)
		return
	}

	logger.GetGinLogger(c).Error("Unhandled error",
		zap.String("method", c.Request.Method),
		zap.String("route", c.FullPath()),
		zap.Error(err))
	h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, "An unexpected error occurred")
}

// UUIDParam parses a path parameter as a UUID, answering INVALID_ID on failure
func (h *BaseHandler) UUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidID, "Invalid "+name+": must be a UUID")
		return uuid.Nil, false
	}
	return id, true
}

// Viewer returns the recruiting viewer of the authenticated member
func (h *BaseHandler) Viewer(c *gin.Context) (recruiting.Viewer, bool) {
	claims := middleware.GetJWTClaims(c)
	if claims == nil {
		h.Unauthorized(c, "Authentication required")
		return recruiting.Viewer{}, false
	}
	viewer, err := middleware.ViewerFromClaims(claims)
	if err != nil {
		h.Error(c, http.StatusUnauthorized, dto.ErrCodeTokenInvalid, err.Error())
		return recruiting.Viewer{}, false
	}
	return viewer, true
}

// target resolves the viewer and the :id path parameter
func (h *BaseHandler) target(c *gin.Context) (recruiting.Viewer, uuid.UUID, bool) {
	viewer, ok := h.Viewer(c)
	if !ok {
		return recruiting.Viewer{}, uuid.Nil, false
	}
	id, ok := h.UUIDParam(c, "id")
	return viewer, id, ok
}

// Identity returns the organization and user of the authenticated member
func (h *BaseHandler) Identity(c *gin.Context) (organizationID, userID uuid.UUID, ok bool) {
	viewer, ok := h.Viewer(c)
	return viewer.OrganizationID, viewer.UserID, ok
}

// Claims returns the validated token claims
func (h *BaseHandler) Claims(c *gin.Context) (*auth.Claims, bool) {
	claims := middleware.GetJWTClaims(c)
	if claims == nil {
		h.Unauthorized(c, "Authentication required")
		return nil, false
	}
	return claims, true
}
