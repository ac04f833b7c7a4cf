package handler

import (
	"strings"
	"time"

	"github.com/google/uuid"
	appidentity "github.com/wayfarer/backend/internal/application/identity"
)

// UpdateNameRequest renames the signed-in user
type UpdateNameRequest struct {
	Name string `json:"name" binding:"required,max=100"`
}

// OnboardingRequest completes onboarding with a set of interests
type OnboardingRequest struct {
	Interests []string `json:"interests" binding:"required,max=50,dive,interest"`
}

// CheckUsernameQuery is the query of the availability check
type CheckUsernameQuery struct {
	Username string `form:"username"`
}

// SuggestionsQuery filters user suggestions. Interests is a comma
// separated list of catalog ids.
type SuggestionsQuery struct {
	Interests string `form:"interests"`
	Limit     int    `form:"limit" binding:"omitempty,min=1,max=50"`
}

func (q SuggestionsQuery) interestList() []string {
	if strings.TrimSpace(q.Interests) == "" {
		return nil
	}
	parts := strings.Split(q.Interests, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ProfileResponse is a user's public profile
type ProfileResponse struct {
	User                ProfileUser `json:"user"`
	OnboardingCompleted bool        `json:"onboardingCompleted"`
	Interests           []string    `json:"interests"`
	FollowersCount      int64       `json:"followersCount"`
	FollowingCount      int64       `json:"followingCount"`
	PlacesCount         int64       `json:"placesCount"`
	IsFollowing         *bool       `json:"isFollowing,omitempty"`
}

// ProfileUser is the identity block of a profile
type ProfileUser struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Username  string    `json:"username,omitempty"`
	Image     string    `json:"image,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// UsernameAvailabilityResponse answers the availability check
type UsernameAvailabilityResponse struct {
	Available bool `json:"available"`
}

// InterestResponse is one onboarding interest
type InterestResponse struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// SuggestionResponse is a user suggested to follow
type SuggestionResponse struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	Username        string    `json:"username,omitempty"`
	Image           string    `json:"image,omitempty"`
	Interests       []string  `json:"interests"`
	SharedInterests int       `json:"sharedInterests"`
}

func toProfileResponse(p *appidentity.ProfileResult) ProfileResponse {
	return ProfileResponse{
		User: ProfileUser{
			ID:        p.ID,
			Name:      p.Name,
			Username:  p.Username,
			Image:     p.Image,
			CreatedAt: p.CreatedAt,
		},
		OnboardingCompleted: p.OnboardingCompleted,
		Interests:           p.Interests,
		FollowersCount:      p.FollowersCount,
		FollowingCount:      p.FollowingCount,
		PlacesCount:         p.PlacesCount,
		IsFollowing:         p.IsFollowing,
	}
}

func toSuggestionResponses(in []appidentity.SuggestionResult) []SuggestionResponse {
	out := make([]SuggestionResponse, len(in))
	for i, s := range in {
		out[i] = SuggestionResponse{
			ID:              s.ID,
			Name:            s.Name,
			Username:        s.Username,
			Image:           s.Image,
			Interests:       s.Interests,
			SharedInterests: s.SharedInterests,
		}
	}
	return out
}
