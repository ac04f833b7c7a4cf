package review

import (
	"context"

	"github.com/google/uuid"
)

// ReviewRepository defines the interface for review persistence
type ReviewRepository interface {
	// Upsert inserts the review or, when a row for the same (place, user)
	// already exists, overwrites its rating, text and updated time.
	// It returns the row as stored.
	Upsert(ctx context.Context, r *Review) (*Review, error)

	// FindByID finds a review by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Review, error)

	// FindByUserAndPlace finds the user's review of a place
	FindByUserAndPlace(ctx context.Context, userID uuid.UUID, placeID string) (*Review, error)

	// FindByUser lists a user's reviews, newest first
	FindByUser(ctx context.Context, userID uuid.UUID) ([]*Review, error)

	// FindByUsers lists reviews authored by any of userIDs, newest first,
	// ties broken by id. An empty set returns no rows without a query.
	FindByUsers(ctx context.Context, userIDs []uuid.UUID) ([]*Review, error)

	// FindByPlace lists reviews of a place, newest first
	FindByPlace(ctx context.Context, placeID string) ([]*Review, error)

	// SummarizePlace aggregates rating count and sum for a place
	SummarizePlace(ctx context.Context, placeID string) (Summary, error)

	// Delete removes a review together with its likes
	Delete(ctx context.Context, id uuid.UUID) error
}

// LikeRepository defines the interface for review like persistence
type LikeRepository interface {
	// Create inserts the like; an existing like for the pair is left untouched
	// and reported as created == false
	Create(ctx context.Context, like *Like) (created bool, err error)

	// Delete removes the like for the pair; a missing like is not an error
	Delete(ctx context.Context, reviewID, userID uuid.UUID) (deleted bool, err error)

	// Count counts likes of one review
	Count(ctx context.Context, reviewID uuid.UUID) (int64, error)

	// CountByReviews counts likes per review in a single grouped query.
	// Reviews without likes are absent from the map.
	CountByReviews(ctx context.Context, reviewIDs []uuid.UUID) (map[uuid.UUID]int64, error)

	// LikedSet returns which of reviewIDs userID has liked
	LikedSet(ctx context.Context, reviewIDs []uuid.UUID, userID uuid.UUID) (map[uuid.UUID]bool, error)
}
