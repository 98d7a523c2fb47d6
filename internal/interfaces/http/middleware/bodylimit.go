package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hireflow/backend/internal/interfaces/http/dto"
)

// BodyLimit returns a middleware that limits request body size
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			abortWithError(c, http.StatusRequestEntityTooLarge, dto.ErrCodeRequestTooLarge,
				"Request body exceeds maximum allowed size")
			return
		}

		// streaming bodies without Content-Length are capped while read
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// abortWithError stops the chain with the standard error envelope
func abortWithError(c *gin.Context, status int, code, message string) {
	SetErrorCode(c, code)
	c.AbortWithStatusJSON(status, dto.NewErrorResponseWithRequestID(code, message, GetRequestID(c)))
}
