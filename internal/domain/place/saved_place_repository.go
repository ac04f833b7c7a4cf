package place

import (
	"context"

	"github.com/google/uuid"
)

// SavedPlaceRepository defines the interface for saved place persistence
type SavedPlaceRepository interface {
	// Create inserts a saved place. A second save of the same provider
	// place by the same user fails with a conflict.
	Create(ctx context.Context, place *SavedPlace) error

	// FindByID finds a saved place by ID
	FindByID(ctx context.Context, id uuid.UUID) (*SavedPlace, error)

	// ExistsForUser reports whether userID saved the provider place
	ExistsForUser(ctx context.Context, userID uuid.UUID, placeID string) (bool, error)

	// FindByUser lists a user's saved places, newest first
	FindByUser(ctx context.Context, userID uuid.UUID) ([]*SavedPlace, error)

	// CountByUser counts a user's saved places
	CountByUser(ctx context.Context, userID uuid.UUID) (int64, error)

	// Delete removes a saved place owned by userID
	Delete(ctx context.Context, userID, id uuid.UUID) error
}
