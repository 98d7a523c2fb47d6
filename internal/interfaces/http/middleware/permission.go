package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hireflow/backend/internal/interfaces/http/dto"
)

// RequirePermission requires a single permission code such as "job:create"
func RequirePermission(permission string) gin.HandlerFunc {
	return RequireAnyPermission(permission)
}

// RequireAnyPermission requires at least one of the permissions
func RequireAnyPermission(permissions ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetJWTClaims(c)
		if claims == nil {
			abortWithError(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, "Authentication required")
			return
		}
		if !claims.HasAnyPermission(permissions...) {
			abortWithError(c, http.StatusForbidden, dto.ErrCodeForbidden, "You do not have permission to perform this action")
			return
		}
		c.Next()
	}
}

// HasPermission reports whether the authenticated member holds the permission
func HasPermission(c *gin.Context, permission string) bool {
	claims := GetJWTClaims(c)
	return claims != nil && claims.HasPermission(permission)
}
