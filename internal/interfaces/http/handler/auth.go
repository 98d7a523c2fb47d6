package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hireflow/backend/internal/application/identity"
	"github.com/hireflow/backend/internal/infrastructure/config"
)

// RefreshCookieName is the cookie holding the refresh token
const RefreshCookieName = "refresh_token"

// AuthHandler handles registration, sign-in and the member's own profile
type AuthHandler struct {
	BaseHandler
	authService *identity.AuthService
	orgService  *identity.OrganizationService
	cookie      config.CookieConfig
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *identity.AuthService, orgService *identity.OrganizationService, cookie config.CookieConfig) *AuthHandler {
	if cookie.Path == "" {
		cookie.Path = "/api/v1/auth"
	}
	return &AuthHandler{
		authService: authService,
		orgService:  orgService,
		cookie:      cookie,
	}
}

// Register creates an organization with its first admin and signs them in.
// POST /auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if !h.BindJSON(c, &req) {
		return
	}

	result, err := h.orgService.Register(c.Request.Context(), identity.RegisterInput{
		OrganizationName: req.OrganizationName,
		Slug:             req.Slug,
		FullName:         req.FullName,
		Email:            req.Email,
		Password:         req.Password,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.setRefreshCookie(c, result.Token)
	h.Created(c, result)
}

// Login signs a member in. POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !h.BindJSON(c, &req) {
		return
	}

	result, err := h.authService.Login(c.Request.Context(), identity.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.setRefreshCookie(c, result.Token)
	h.Success(c, result)
}

// Refresh rotates the token pair. The refresh token comes from the body or,
// failing that, the refresh cookie. POST /auth/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	token := h.refreshToken(c)
	if token == "" {
		h.Unauthorized(c, "Refresh token required")
		return
	}

	pair, err := h.authService.Refresh(c.Request.Context(), token)
	if err != nil {
		h.clearRefreshCookie(c)
		h.HandleError(c, err)
		return
	}

	h.setRefreshCookie(c, *pair)
	h.Success(c, pair)
}

// Logout revokes the access token and any refresh token presented with it.
// POST /auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	claims, ok := h.Claims(c)
	if !ok {
		return
	}
	_, userID, ok := h.Identity(c)
	if !ok {
		return
	}

	err := h.authService.Logout(c.Request.Context(), identity.LogoutInput{
		UserID:         userID,
		AccessTokenJTI: claims.ID,
		AccessTokenTTL: claims.RemainingTTL(),
		RefreshToken:   h.refreshToken(c),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.clearRefreshCookie(c)
	h.Success(c, gin.H{"message": "Logged out successfully"})
}

// Me returns the signed-in member with roles and permissions. GET /auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	orgID, userID, ok := h.Identity(c)
	if !ok {
		return
	}

	me, err := h.authService.Me(c.Request.Context(), orgID, userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, me)
}

// UpdateMe edits the signed-in member's name and phone. PUT /auth/me
func (h *AuthHandler) UpdateMe(c *gin.Context) {
	orgID, userID, ok := h.Identity(c)
	if !ok {
		return
	}
	var req UpdateProfileRequest
	if !h.BindJSON(c, &req) {
		return
	}

	member, err := h.authService.UpdateProfile(c.Request.Context(), orgID, userID, identity.UpdateProfileInput{
		FullName: req.FullName,
		Phone:    req.Phone,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, member)
}

// ChangePassword changes the signed-in member's password. PUT /auth/password
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	orgID, userID, ok := h.Identity(c)
	if !ok {
		return
	}
	var req ChangePasswordRequest
	if !h.BindJSON(c, &req) {
		return
	}

	err := h.authService.ChangePassword(c.Request.Context(), orgID, userID, identity.ChangePasswordInput{
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"message": "Password changed successfully"})
}

func (h *AuthHandler) refreshToken(c *gin.Context) string {
	var req RefreshTokenRequest
	if c.Request.ContentLength != 0 {
		// an unreadable body falls back to the cookie
		_ = c.ShouldBindJSON(&req)
	}
	if req.RefreshToken != "" {
		return req.RefreshToken
	}
	token, _ := c.Cookie(RefreshCookieName)
	return token
}

func (h *AuthHandler) setRefreshCookie(c *gin.Context, token identity.TokenDTO) {
	maxAge := int(time.Until(token.RefreshTokenExpiresAt).Seconds())
	if maxAge <= 0 {
		return
	}
	c.SetSameSite(sameSite(h.cookie.SameSite))
	c.SetCookie(RefreshCookieName, token.RefreshToken, maxAge, h.cookie.Path, h.cookie.Domain, h.cookie.Secure, true)
}

func (h *AuthHandler) clearRefreshCookie(c *gin.Context) {
	c.SetSameSite(sameSite(h.cookie.SameSite))
	c.SetCookie(RefreshCookieName, "", -1, h.cookie.Path, h.cookie.Domain, h.cookie.Secure, true)
}

func sameSite(mode string) http.SameSite {
	switch mode {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}
