package identity

import (
	"time"

	"github.com/google/uuid"
	"github.com/wayfarer/backend/internal/domain/identity"
)

// RegisterInput contains the input for user registration
type RegisterInput struct {
	Email    string
	Password string
	Name     string
	Username string // optional
}

// LoginInput contains the input for user login
type LoginInput struct {
	Identifier string // email or username
	Password   string
}

// AuthResult contains the tokens and user returned after sign-in
type AuthResult struct {
	AccessToken           string
	RefreshToken          string
	AccessTokenExpiresAt  time.Time
	RefreshTokenExpiresAt time.Time
	TokenType             string
	User                  UserInfo
}

// UserInfo contains the signed-in user's own account data
type UserInfo struct {
	ID                  uuid.UUID
	Name                string
	Email               string
	Username            string
	Image               string
	Interests           []string
	OnboardingCompleted bool
	CreatedAt           time.Time
}

// RefreshTokenInput contains the input for token refresh
type RefreshTokenInput struct {
	RefreshToken string
}

// LogoutInput contains the input for user logout
type LogoutInput struct {
	UserID   uuid.UUID
	TokenJTI string
	TokenTTL time.Duration // remaining lifetime of the access token
}

// ProfileResult is the public view of a user with derived counts
type ProfileResult struct {
	ID                  uuid.UUID
	Name                string
	Username            string
	Image               string
	CreatedAt           time.Time
	Interests           []string
	OnboardingCompleted bool
	FollowersCount      int64
	FollowingCount      int64
	PlacesCount         int64
	// IsFollowing is nil unless a viewer other than the user is present
	IsFollowing *bool
}

// SuggestionResult is one suggested user to follow
type SuggestionResult struct {
	ID              uuid.UUID
	Name            string
	Username        string
	Image           string
	Interests       []string
	SharedInterests int
}

// AvatarInput carries an uploaded avatar image
type AvatarInput struct {
	UserID      uuid.UUID
	ContentType string
	Data        []byte
}

func toUserInfo(u *identity.User) UserInfo {
	return UserInfo{
		ID:                  u.ID,
		Name:                u.Name,
		Email:               u.Email,
		Username:            u.Username,
		Image:               u.Image,
		Interests:           interestsOrEmpty(u.Interests),
		OnboardingCompleted: u.OnboardingCompleted,
		CreatedAt:           u.CreatedAt,
	}
}

func interestsOrEmpty(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}
