package review

import (
	"time"

	"github.com/google/uuid"
	"github.com/wayfarer/backend/internal/domain/shared"
)

// Like marks that a user endorsed a review; the row existing is the state
type Like struct {
	ID        uuid.UUID
	ReviewID  uuid.UUID
	UserID    uuid.UUID
	CreatedAt time.Time
}

// NewLike creates a like of reviewID by userID
func NewLike(reviewID, userID uuid.UUID) (*Like, error) {
	if userID == uuid.Nil {
		return nil, shared.ErrUnauthorized
	}
	if reviewID == uuid.Nil {
		return nil, shared.NewValidationError("Review ID is required")
	}
	return &Like{
		ID:        uuid.New(),
		ReviewID:  reviewID,
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	}, nil
}
