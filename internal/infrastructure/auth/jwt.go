package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/hireflow/backend/internal/infrastructure/config"
)

// TokenType distinguishes access from refresh tokens
type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

var (
	ErrInvalidToken         = errors.New("invalid token")
	ErrExpiredToken         = errors.New("token has expired")
	ErrInvalidTokenType     = errors.New("invalid token type")
	ErrInvalidClaims        = errors.New("invalid token claims")
	ErrTokenNotYetValid     = errors.New("token is not yet valid")
	ErrMissingOrganization  = errors.New("missing organization_id in claims")
	ErrMissingUserID        = errors.New("missing user_id in claims")
	ErrMaxRefreshExceeded   = errors.New("maximum refresh count exceeded")
	ErrTokenBlacklisted     = errors.New("token has been revoked")
	ErrRefreshSubjectChange = errors.New("refresh token belongs to another user")
)

// Claims are the JWT claims of a staff member
type Claims struct {
	jwt.RegisteredClaims
	OrganizationID string    `json:"organization_id"`
	UserID         string    `json:"user_id"`
	Email          string    `json:"email,omitempty"`
	Roles          []string  `json:"roles,omitempty"`
	Permissions    []string  `json:"permissions,omitempty"`
	TokenType      TokenType `json:"token_type"`
	RefreshCount   int       `json:"refresh_count,omitempty"`
}

// TokenPair represents an access and refresh token pair
type TokenPair struct {
	AccessToken           string    `json:"access_token"`
	RefreshToken          string    `json:"refresh_token"`
	AccessTokenExpiresAt  time.Time `json:"access_token_expires_at"`
	RefreshTokenExpiresAt time.Time `json:"refresh_token_expires_at"`
	TokenType             string    `json:"token_type"`
}

// Subject is who a token pair is issued for. Roles and permissions are
// snapshotted into the access token.
type Subject struct {
	OrganizationID uuid.UUID
	UserID         uuid.UUID
	Email          string
	Roles          []string
	Permissions    []string
}

// JWTService issues and validates tokens
type JWTService struct {
	accessSecret      []byte
	refreshSecret     []byte
	accessExpiration  time.Duration
	refreshExpiration time.Duration
	issuer            string
	maxRefreshCount   int
	now               func() time.Time
}

// NewJWTService creates a new JWT service. Without a refresh secret the access secret signs both.
func NewJWTService(cfg config.JWTConfig) *JWTService {
	refreshSecret := cfg.RefreshSecret
	if refreshSecret == "" {
		refreshSecret = cfg.Secret
	}
	return &JWTService{
		accessSecret:      []byte(cfg.Secret),
		refreshSecret:     []byte(refreshSecret),
		accessExpiration:  cfg.AccessTokenExpiration,
		refreshExpiration: cfg.RefreshTokenExpiration,
		issuer:            cfg.Issuer,
		maxRefreshCount:   cfg.MaxRefreshCount,
		now:               time.Now,
	}
}

// GenerateTokenPair issues a fresh access and refresh token
func (s *JWTService) GenerateTokenPair(subject Subject) (*TokenPair, error) {
	return s.issue(subject, 0)
}

// RefreshTokenPair issues a new pair for a validated refresh token. The subject is
// reloaded by the caller so role changes take effect on refresh.
func (s *JWTService) RefreshTokenPair(refresh *Claims, subject Subject) (*TokenPair, error) {
	if refresh.TokenType != TokenTypeRefresh {
		return nil, ErrInvalidTokenType
	}
	if refresh.RefreshCount >= s.maxRefreshCount {
		return nil, ErrMaxRefreshExceeded
	}
	if refresh.UserID != subject.UserID.String() || refresh.OrganizationID != subject.OrganizationID.String() {
		return nil, ErrRefreshSubjectChange
	}
	return s.issue(subject, refresh.RefreshCount+1)
}

func (s *JWTService) issue(subject Subject, refreshCount int) (*TokenPair, error) {
	now := s.now()
	accessExpires := now.Add(s.accessExpiration)
	refreshExpires := now.Add(s.refreshExpiration)

	access := &Claims{
		RegisteredClaims: s.registered(subject.UserID, now, accessExpires),
		OrganizationID:   subject.OrganizationID.String(),
		UserID:           subject.UserID.String(),
		Email:            subject.Email,
		Roles:            subject.Roles,
		Permissions:      subject.Permissions,
		TokenType:        TokenTypeAccess,
	}
	accessToken, err := sign(access, s.accessSecret)
	if err != nil {
		return nil, err
	}

	// the refresh token only identifies the member; roles are reloaded on refresh
	refresh := &Claims{
		RegisteredClaims: s.registered(subject.UserID, now, refreshExpires),
		OrganizationID:   subject.OrganizationID.String(),
		UserID:           subject.UserID.String(),
		TokenType:        TokenTypeRefresh,
		RefreshCount:     refreshCount,
	}
	refreshToken, err := sign(refresh, s.refreshSecret)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:           accessToken,
		RefreshToken:          refreshToken,
		AccessTokenExpiresAt:  accessExpires,
		RefreshTokenExpiresAt: refreshExpires,
		TokenType:             "Bearer",
	}, nil
}

func (s *JWTService) registered(userID uuid.UUID, now, expires time.Time) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		ID:        uuid.New().String(),
		Issuer:    s.issuer,
		Subject:   userID.String(),
		Audience:  jwt.ClaimStrings{s.issuer},
		ExpiresAt: jwt.NewNumericDate(expires),
		NotBefore: jwt.NewNumericDate(now),
		IssuedAt:  jwt.NewNumericDate(now),
	}
}

func sign(claims *Claims, secret []byte) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// ValidateAccessToken validates an access token and returns its claims
func (s *JWTService) ValidateAccessToken(tokenString string) (*Claims, error) {
	return s.validate(tokenString, s.accessSecret, TokenTypeAccess)
}

// ValidateRefreshToken validates a refresh token and returns its claims
func (s *JWTService) ValidateRefreshToken(tokenString string) (*Claims, error) {
	return s.validate(tokenString, s.refreshSecret, TokenTypeRefresh)
}

func (s *JWTService) validate(tokenString string, secret []byte, expected TokenType) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return secret, nil
	},
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(s.issuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpiredToken
		case errors.Is(err, jwt.ErrTokenNotValidYet):
			return nil, ErrTokenNotYetValid
		default:
			return nil, ErrInvalidToken
		}
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidClaims
	}
	if claims.TokenType != expected {
		return nil, ErrInvalidTokenType
	}
	if claims.OrganizationID == "" {
		return nil, ErrMissingOrganization
	}
	if claims.UserID == "" {
		return nil, ErrMissingUserID
	}
	return claims, nil
}

// AccessTokenExpiration returns the access token lifetime
func (s *JWTService) AccessTokenExpiration() time.Duration {
	return s.accessExpiration
}

// RefreshTokenExpiration returns the refresh token lifetime
func (s *JWTService) RefreshTokenExpiration() time.Duration {
	return s.refreshExpiration
}

// OrganizationUUID parses the organization claim
func (c *Claims) OrganizationUUID() (uuid.UUID, error) {
	return uuid.Parse(c.OrganizationID)
}

// UserUUID parses the user claim
func (c *Claims) UserUUID() (uuid.UUID, error) {
	return uuid.Parse(c.UserID)
}

// HasRole reports whether the token carries the role code
func (c *Claims) HasRole(code string) bool {
	for _, r := range c.Roles {
		if r == code {
			return true
		}
	}
	return false
}

// HasPermission reports whether any granted pattern covers code.
// "job:*" covers "job:create" and "*:*" covers everything.
func (c *Claims) HasPermission(code string) bool {
	for _, p := range c.Permissions {
		if permissionGrants(p, code) {
			return true
		}
	}
	return false
}

// HasAnyPermission reports whether at least one of the codes is granted
func (c *Claims) HasAnyPermission(codes ...string) bool {
	for _, code := range codes {
		if c.HasPermission(code) {
			return true
		}
	}
	return false
}

// IssuedAtTime returns the iat claim, or the zero time
func (c *Claims) IssuedAtTime() time.Time {
	if c.IssuedAt != nil {
		return c.IssuedAt.Time
	}
	return time.Time{}
}

// RemainingTTL returns the time until the token expires, never negative
func (c *Claims) RemainingTTL() time.Duration {
	if c.ExpiresAt == nil {
		return 0
	}
	return max(time.Until(c.ExpiresAt.Time), 0)
}

func permissionGrants(pattern, code string) bool {
	if pattern == code {
		return true
	}
	pr, pa, ok := strings.Cut(pattern, ":")
	if !ok {
		return false
	}
	r, a, ok := strings.Cut(code, ":")
	if !ok {
		return false
	}
	return (pr == "*" || pr == r) && (pa == "*" || pa == a)
}
