package handler

import (
	"time"

	"github.com/google/uuid"
	appsocial "github.com/wayfarer/backend/internal/application/social"
)

// FollowStateResponse is the follow relationship toward a user
type FollowStateResponse struct {
	Following      bool  `json:"following"`
	FollowersCount int64 `json:"followersCount"`
	FollowingCount int64 `json:"followingCount"`
}

// ConnectionResponse is one entry of a follower or following list
type ConnectionResponse struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Username   string    `json:"username,omitempty"`
	Image      string    `json:"image,omitempty"`
	FollowedAt time.Time `json:"followedAt"`
}

func toFollowStateResponse(s *appsocial.FollowState) FollowStateResponse {
	return FollowStateResponse{
		Following:      s.Following,
		FollowersCount: s.FollowersCount,
		FollowingCount: s.FollowingCount,
	}
}

func toConnectionResponses(in []appsocial.ConnectionResult) []ConnectionResponse {
	out := make([]ConnectionResponse, len(in))
	for i, conn := range in {
		out[i] = ConnectionResponse{
			ID:         conn.ID,
			Name:       conn.Name,
			Username:   conn.Username,
			Image:      conn.Image,
			FollowedAt: conn.FollowedAt,
		}
	}
	return out
}
