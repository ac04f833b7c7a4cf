package social

import (
	"context"

	"github.com/google/uuid"
)

// FollowRepository persists follow edges.
// Counts are always aggregated from edges, never stored.
type FollowRepository interface {
	// Create inserts the edge; an existing edge for the same pair is left untouched.
	// created is false when the edge already existed.
	Create(ctx context.Context, edge *FollowEdge) (created bool, err error)

	// Delete removes the edge for the pair; a missing edge is not an error.
	// deleted is false when there was no edge.
	Delete(ctx context.Context, followerID, followingID uuid.UUID) (deleted bool, err error)

	// Exists reports whether followerID follows followingID
	Exists(ctx context.Context, followerID, followingID uuid.UUID) (bool, error)

	// CountFollowers counts edges pointing at userID
	CountFollowers(ctx context.Context, userID uuid.UUID) (int64, error)

	// CountFollowing counts edges starting at userID
	CountFollowing(ctx context.Context, userID uuid.UUID) (int64, error)

	// ListFollowers returns users following userID, oldest edge first
	ListFollowers(ctx context.Context, userID uuid.UUID) ([]Connection, error)

	// ListFollowing returns users followed by userID, oldest edge first
	ListFollowing(ctx context.Context, userID uuid.UUID) ([]Connection, error)

	// FollowingIDs returns the ids userID follows
	FollowingIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
}
