package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hireflow/backend/internal/domain/recruiting"
	"github.com/hireflow/backend/internal/infrastructure/auth"
	"github.com/hireflow/backend/internal/infrastructure/logger"
	"github.com/hireflow/backend/internal/interfaces/http/dto"
)

// JWT context keys
const (
	JWTClaimsKey         = "jwt_claims"
	JWTUserIDKey         = "jwt_user_id"
	JWTOrganizationIDKey = "jwt_organization_id"
	AuthHeaderKey        = "Authorization"
	BearerPrefix         = "Bearer "
)

var errMissingToken = errors.New("missing bearer token")

// JWTMiddlewareConfig holds configuration for JWT middleware
type JWTMiddlewareConfig struct {
	JWTService *auth.JWTService
	// TokenBlacklist is optional; revoked tokens are rejected when set
	TokenBlacklist auth.TokenBlacklist
	// SkipPaths are full paths that don't require authentication
	SkipPaths []string
	Logger    *zap.Logger
}

// PublicPaths are the routes reachable without a token
var PublicPaths = []string{
	"/health",
	"/api/v1/ping",
	"/api/v1/auth/register",
	"/api/v1/auth/login",
	"/api/v1/auth/refresh",
}

// DefaultJWTConfig returns default JWT middleware configuration
func DefaultJWTConfig(jwtService *auth.JWTService) JWTMiddlewareConfig {
	return JWTMiddlewareConfig{
		JWTService: jwtService,
		SkipPaths:  PublicPaths,
	}
}

// JWTAuthMiddleware creates JWT authentication middleware
func JWTAuthMiddleware(jwtService *auth.JWTService) gin.HandlerFunc {
	return JWTAuthMiddlewareWithConfig(DefaultJWTConfig(jwtService))
}

// JWTAuthMiddlewareWithConfig creates JWT authentication middleware with custom config
func JWTAuthMiddlewareWithConfig(cfg JWTMiddlewareConfig) gin.HandlerFunc {
	skip := make(map[string]struct{}, len(cfg.SkipPaths))
	for _, p := range cfg.SkipPaths {
		skip[p] = struct{}{}
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return func(c *gin.Context) {
		if _, ok := skip[c.Request.URL.Path]; ok {
			c.Next()
			return
		}

		tokenString, ok := bearerToken(c)
		if !ok {
			handleAuthError(c, log, errMissingToken, "Missing or malformed authorization header")
			return
		}

		claims, err := cfg.JWTService.ValidateAccessToken(tokenString)
		if err != nil {
			handleAuthError(c, log, err, "Token validation failed")
			return
		}

		if cfg.TokenBlacklist != nil && revoked(c, cfg.TokenBlacklist, claims, log) {
			handleAuthError(c, log, auth.ErrTokenBlacklisted, "Token has been revoked")
			return
		}

		c.Set(JWTClaimsKey, claims)
		c.Set(JWTUserIDKey, claims.UserID)
		c.Set(JWTOrganizationIDKey, claims.OrganizationID)
		logger.AttachIdentity(c, claims.OrganizationID, claims.UserID)

		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader(AuthHeaderKey)
	if !strings.HasPrefix(header, BearerPrefix) {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, BearerPrefix))
	return token, token != ""
}

// revoked checks the JTI and the user-wide invalidation. Blacklist outages
// fail open and are logged.
func revoked(c *gin.Context, blacklist auth.TokenBlacklist, claims *auth.Claims, log *zap.Logger) bool {
	ctx := c.Request.Context()
	if claims.ID != "" {
		blacklisted, err := blacklist.IsBlacklisted(ctx, claims.ID)
		if err != nil {
			log.Error("Failed to check token blacklist", zap.String("jti", claims.ID), zap.Error(err))
		} else if blacklisted {
			return true
		}
	}
	invalidated, err := blacklist.IsUserInvalidated(ctx, claims.UserID, claims.IssuedAtTime())
	if err != nil {
		log.Error("Failed to check user token invalidation", zap.String("user_id", claims.UserID), zap.Error(err))
		return false
	}
	return invalidated
}

func handleAuthError(c *gin.Context, log *zap.Logger, err error, message string) {
	log.Warn("JWT authentication failed",
		zap.Error(err),
		zap.String("message", message),
		zap.String("path", c.Request.URL.Path),
	)

	code, msg := dto.ErrCodeUnauthorized, "Authentication required"
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		code, msg = dto.ErrCodeTokenExpired, "Token has expired"
	case errors.Is(err, auth.ErrTokenBlacklisted):
		code, msg = dto.ErrCodeTokenRevoked, "Token has been revoked"
	case !errors.Is(err, errMissingToken):
		code, msg = dto.ErrCodeTokenInvalid, "Invalid token"
	}
	abortWithError(c, http.StatusUnauthorized, code, msg)
}

// GetJWTClaims retrieves JWT claims from gin.Context
func GetJWTClaims(c *gin.Context) *auth.Claims {
	if claims, exists := c.Get(JWTClaimsKey); exists {
		if jwtClaims, ok := claims.(*auth.Claims); ok {
			return jwtClaims
		}
	}
	return nil
}

// GetJWTUserID retrieves the user ID from JWT claims in context
func GetJWTUserID(c *gin.Context) string {
	return c.GetString(JWTUserIDKey)
}

// GetJWTOrganizationID retrieves the organization ID from JWT claims in context
func GetJWTOrganizationID(c *gin.Context) string {
	return c.GetString(JWTOrganizationIDKey)
}

// ViewerFromClaims builds the recruiting viewer of the authenticated member
func ViewerFromClaims(claims *auth.Claims) (recruiting.Viewer, error) {
	orgID, err := claims.OrganizationUUID()
	if err != nil {
		return recruiting.Viewer{}, auth.ErrMissingOrganization
	}
	userID, err := claims.UserUUID()
	if err != nil || userID == uuid.Nil {
		return recruiting.Viewer{}, auth.ErrMissingUserID
	}
	return recruiting.NewViewer(orgID, userID, claims.Roles), nil
}
