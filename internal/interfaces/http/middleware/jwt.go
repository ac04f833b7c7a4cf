package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/wayfarer/backend/internal/infrastructure/auth"
	"github.com/wayfarer/backend/internal/infrastructure/logger"
	"github.com/wayfarer/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// JWT context keys
const (
	JWTClaimsKey  = "jwt_claims"
	AuthHeaderKey = "Authorization"
	BearerPrefix  = "Bearer "
)

// RevocationChecker reports whether an access token id was revoked by logout
type RevocationChecker interface {
	IsTokenRevoked(ctx context.Context, jti string) (bool, error)
}

// JWTMiddlewareConfig holds configuration for JWT middleware
type JWTMiddlewareConfig struct {
	// JWTService is required for token validation
	JWTService *auth.JWTService
	// Revocations is optional; nil skips the logout check
	Revocations RevocationChecker
	// Logger for middleware logging; nil disables it
	Logger *zap.Logger
}

// JWTAuthMiddleware rejects requests without a valid access token with 401
func JWTAuthMiddleware(cfg JWTMiddlewareConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			abortUnauthorized(c, cfg, auth.ErrInvalidToken, "Authentication required")
			return
		}

		claims, err := authenticate(c, cfg, token)
		if err != nil {
			abortUnauthorized(c, cfg, err, unauthorizedMessage(err))
			return
		}

		setClaims(c, claims)
		c.Next()
	}
}

// OptionalJWTAuthMiddleware attaches the caller's identity when a valid token
// is present and otherwise lets the request through anonymously
func OptionalJWTAuthMiddleware(cfg JWTMiddlewareConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			c.Next()
			return
		}
		claims, err := authenticate(c, cfg, token)
		if err != nil {
			if cfg.Logger != nil {
				cfg.Logger.Debug("Ignoring invalid optional token", zap.Error(err))
			}
			c.Next()
			return
		}
		setClaims(c, claims)
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

func authenticate(c *gin.Context, cfg JWTMiddlewareConfig, token string) (*auth.Claims, error) {
	claims, err := cfg.JWTService.ValidateAccessToken(token)
	if err != nil {
		return nil, err
	}
	if _, err := claims.GetUserUUID(); err != nil {
		return nil, auth.ErrInvalidClaims
	}

	if cfg.Revocations != nil && claims.ID != "" {
		revoked, err := cfg.Revocations.IsTokenRevoked(c.Request.Context(), claims.ID)
		switch {
		case err != nil:
			// fail open
			if cfg.Logger != nil {
				cfg.Logger.Error("Failed to check token revocation",
					zap.String("jti", claims.ID),
					zap.Error(err))
			}
		case revoked:
			return nil, auth.ErrTokenBlacklisted
		}
	}
	return claims, nil
}

func setClaims(c *gin.Context, claims *auth.Claims) {
	c.Set(JWTClaimsKey, claims)
	c.Set(logger.GinUserIDKey, claims.UserID)
	c.Request = c.Request.WithContext(logger.WithUserID(c.Request.Context(), claims.UserID))
}

func unauthorizedMessage(err error) string {
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return "Token has expired"
	case errors.Is(err, auth.ErrTokenBlacklisted):
		return "Token has been revoked"
	default:
		return "Invalid token"
	}
}

func abortUnauthorized(c *gin.Context, cfg JWTMiddlewareConfig, err error, message string) {
	if cfg.Logger != nil {
		cfg.Logger.Debug("JWT authentication failed",
			zap.Error(err),
			zap.String("path", c.Request.URL.Path))
	}
	c.AbortWithStatusJSON(http.StatusUnauthorized,
		dto.NewErrorResponseWithRequestID(dto.ErrCodeUnauthorized, message, GetRequestID(c)))
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

// GetUserID returns the authenticated user's id, or uuid.Nil for anonymous requests
func GetUserID(c *gin.Context) uuid.UUID {
	claims := GetJWTClaims(c)
	if claims == nil {
		return uuid.Nil
	}
	id, err := claims.GetUserUUID()
	if err != nil {
		return uuid.Nil
	}
	return id
}
