package social

import (
	"time"

	"github.com/google/uuid"
	"github.com/wayfarer/backend/internal/domain/shared"
)

// ErrSelfFollow is returned when a user tries to follow themselves
var ErrSelfFollow = shared.NewValidationError("Cannot follow yourself")

// FollowEdge is a directed "follower follows following" relationship.
// At most one edge exists per ordered pair.
type FollowEdge struct {
	ID          uuid.UUID
	FollowerID  uuid.UUID
	FollowingID uuid.UUID
	CreatedAt   time.Time
}

// NewFollowEdge creates an edge from followerID to followingID
func NewFollowEdge(followerID, followingID uuid.UUID) (*FollowEdge, error) {
	if followerID == uuid.Nil || followingID == uuid.Nil {
		return nil, shared.NewValidationError("Follower and target are required")
	}
	if followerID == followingID {
		return nil, ErrSelfFollow
	}
	return &FollowEdge{
		ID:          uuid.New(),
		FollowerID:  followerID,
		FollowingID: followingID,
		CreatedAt:   time.Now().UTC(),
	}, nil
}

// Connection is one entry of a follower or following list
type Connection struct {
	UserID     uuid.UUID
	Name       string
	Username   string
	Image      string
	FollowedAt time.Time
}
