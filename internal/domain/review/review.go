package review

import (
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/wayfarer/backend/internal/domain/shared"
)

const (
	MinRating     = 1
	MaxRating     = 5
	maxTextLength = 5000
	maxPlaceID    = 512
)

// Review is a user's single rating and opinion of a place.
// Exactly one review exists per (PlaceID, UserID); resubmitting overwrites it.
type Review struct {
	shared.BaseEntity
	UserID  uuid.UUID
	PlaceID string
	Rating  int
	Text    string
}

// NewReview validates the submission and builds a fresh review
func NewReview(userID uuid.UUID, placeID string, rating float64, text string) (*Review, error) {
	if userID == uuid.Nil {
		return nil, shared.ErrUnauthorized
	}
	placeID, err := NormalizePlaceID(placeID)
	if err != nil {
		return nil, err
	}
	r := &Review{
		BaseEntity: shared.NewBaseEntity(),
		UserID:     userID,
		PlaceID:    placeID,
	}
	if err := r.Revise(rating, text); err != nil {
		return nil, err
	}
	r.UpdatedAt = r.CreatedAt
	return r, nil
}

// Revise overwrites rating and text after validating both
func (r *Review) Revise(rating float64, text string) error {
	stars, err := ValidateRating(rating)
	if err != nil {
		return err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return shared.NewValidationError("Review text cannot be empty")
	}
	if utf8.RuneCountInString(text) > maxTextLength {
		return shared.NewValidationError("Review text cannot exceed 5000 characters")
	}
	r.Rating = stars
	r.Text = text
	r.UpdatedAt = time.Now().UTC()
	return nil
}

// ValidateRating accepts whole-star ratings between MinRating and MaxRating
func ValidateRating(rating float64) (int, error) {
	if math.IsNaN(rating) || math.IsInf(rating, 0) {
		return 0, shared.NewValidationError("Rating must be a finite number")
	}
	if rating < MinRating || rating > MaxRating {
		return 0, shared.NewValidationError("Rating must be between 1 and 5")
	}
	if rating != math.Trunc(rating) {
		return 0, shared.NewValidationError("Rating must be a whole number")
	}
	return int(rating), nil
}

// NormalizePlaceID trims and validates a provider place id
func NormalizePlaceID(placeID string) (string, error) {
	placeID = strings.TrimSpace(placeID)
	if placeID == "" {
		return "", shared.NewValidationError("Place ID cannot be empty")
	}
	if len(placeID) > maxPlaceID {
		return "", shared.NewValidationError("Place ID is too long")
	}
	return placeID, nil
}
