package identity

import (
	"context"
	"errors"
	"strings"

	"github.com/wayfarer/backend/internal/domain/identity"
	"github.com/wayfarer/backend/internal/domain/shared"
	"github.com/wayfarer/backend/internal/infrastructure/auth"
	"go.uber.org/zap"
)

// ErrInvalidCredentials is returned for any failed login so callers cannot
// probe which accounts exist.
var ErrInvalidCredentials = shared.NewDomainError(shared.CodeUnauthorized, "Invalid email/username or password")

// AuthService handles registration and token lifecycle
type AuthService struct {
	userRepo   identity.UserRepository
	jwtService *auth.JWTService
	blacklist  auth.TokenBlacklist
	logger     *zap.Logger
}

// NewAuthService creates a new authentication service
func NewAuthService(
	userRepo identity.UserRepository,
	jwtService *auth.JWTService,
	blacklist auth.TokenBlacklist,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		jwtService: jwtService,
		blacklist:  blacklist,
		logger:     logger,
	}
}

// Register creates an account and signs the new user in
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	user, err := identity.NewUser(input.Email, input.Password, input.Name, input.Username)
	if err != nil {
		return nil, err
	}

	exists, err := s.userRepo.ExistsByEmail(ctx, user.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewConflictError("Email is already registered")
	}
	if user.Username != "" {
		exists, err = s.userRepo.ExistsByUsername(ctx, user.Username)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, shared.NewConflictError("Username is already taken")
		}
	}

	// the unique indexes still catch a concurrent registration
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, shared.ErrConflict) {
			return nil, shared.NewConflictError("Email or username is already taken")
		}
		s.logger.Error("Failed to create user", zap.Error(err))
		return nil, err
	}

	s.logger.Info("User registered", zap.String("user_id", user.ID.String()))
	return s.issue(user)
}

// Login authenticates by email or username and returns tokens
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	identifier := strings.TrimSpace(input.Identifier)
	if identifier == "" || input.Password == "" {
		return nil, shared.NewValidationError("Email or username and password are required")
	}

	user, err := s.findByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			s.logger.Warn("Login for unknown account")
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !user.VerifyPassword(input.Password) {
		s.logger.Warn("Invalid password attempt", zap.String("user_id", user.ID.String()))
		return nil, ErrInvalidCredentials
	}

	s.logger.Info("User logged in", zap.String("user_id", user.ID.String()))
	return s.issue(user)
}

func (s *AuthService) findByIdentifier(ctx context.Context, identifier string) (*identity.User, error) {
	if strings.Contains(identifier, "@") {
		return s.userRepo.FindByEmail(ctx, strings.ToLower(identifier))
	}
	username, err := identity.NormalizeUsername(identifier)
	if err != nil {
		return nil, shared.ErrNotFound
	}
	return s.userRepo.FindByUsername(ctx, username)
}

// RefreshToken rotates a refresh token: the presented one is revoked and a
// fresh pair is issued.
func (s *AuthService) RefreshToken(ctx context.Context, input RefreshTokenInput) (*AuthResult, error) {
	claims, err := s.jwtService.ValidateRefreshToken(input.RefreshToken)
	if err != nil {
		s.logger.Warn("Refresh token validation failed", zap.Error(err))
		if errors.Is(err, auth.ErrExpiredToken) {
			return nil, shared.NewDomainError(shared.CodeUnauthorized, "Refresh token has expired")
		}
		return nil, shared.NewDomainError(shared.CodeUnauthorized, "Invalid refresh token")
	}

	revoked, err := s.blacklist.IsBlacklisted(ctx, claims.ID)
	if err != nil {
		s.logger.Error("Failed to check token blacklist", zap.Error(err))
		return nil, shared.ErrStorage
	}
	if revoked {
		return nil, shared.NewDomainError(shared.CodeUnauthorized, "Refresh token has been revoked")
	}

	userID, err := claims.GetUserUUID()
	if err != nil {
		return nil, shared.NewDomainError(shared.CodeUnauthorized, "Invalid refresh token")
	}
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError(shared.CodeUnauthorized, "Account no longer exists")
		}
		return nil, err
	}

	if err := s.blacklist.AddToBlacklist(ctx, claims.ID, claims.RemainingTTL()); err != nil {
		s.logger.Error("Failed to revoke rotated refresh token", zap.Error(err))
		return nil, shared.ErrStorage
	}

	return s.issue(user)
}

// Logout revokes the presented access token for the rest of its lifetime
func (s *AuthService) Logout(ctx context.Context, input LogoutInput) error {
	if input.TokenJTI == "" {
		return nil
	}
	if err := s.blacklist.AddToBlacklist(ctx, input.TokenJTI, input.TokenTTL); err != nil {
		s.logger.Error("Failed to revoke token on logout", zap.Error(err))
		return shared.ErrStorage
	}
	s.logger.Info("User logged out", zap.String("user_id", input.UserID.String()))
	return nil
}

// IsTokenRevoked reports whether an access token was revoked by logout
func (s *AuthService) IsTokenRevoked(ctx context.Context, jti string) (bool, error) {
	return s.blacklist.IsBlacklisted(ctx, jti)
}

func (s *AuthService) issue(user *identity.User) (*AuthResult, error) {
	pair, err := s.jwtService.GenerateTokenPair(user.ID, user.Username)
	if err != nil {
		s.logger.Error("Failed to generate token pair", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to generate authentication tokens")
	}
	return &AuthResult{
		AccessToken:           pair.AccessToken,
		RefreshToken:          pair.RefreshToken,
		AccessTokenExpiresAt:  pair.AccessTokenExpiresAt,
		RefreshTokenExpiresAt: pair.RefreshTokenExpiresAt,
		TokenType:             pair.TokenType,
		User:                  toUserInfo(user),
	}, nil
}
