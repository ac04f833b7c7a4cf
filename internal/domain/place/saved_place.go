package place

import (
	"math"
	"strings"

	"github.com/google/uuid"
	"github.com/wayfarer/backend/internal/domain/shared"
)

// SavedPlace is a location a user bookmarked from the map.
// PlaceID is nil when the place was picked from a raw map click
// with no resolvable provider id.
type SavedPlace struct {
	shared.BaseEntity
	UserID           uuid.UUID
	Name             string
	FormattedAddress string
	Latitude         float64
	Longitude        float64
	PlaceID          *string
}

// SavedPlaceInput carries the fields needed to save a place
type SavedPlaceInput struct {
	Name             string
	FormattedAddress string
	Latitude         float64
	Longitude        float64
	PlaceID          string
}

// NewSavedPlace validates input and builds a saved place owned by userID
func NewSavedPlace(userID uuid.UUID, in SavedPlaceInput) (*SavedPlace, error) {
	if userID == uuid.Nil {
		return nil, shared.ErrUnauthorized
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, shared.NewValidationError("Place name cannot be empty")
	}
	address := strings.TrimSpace(in.FormattedAddress)
	if address == "" {
		return nil, shared.NewValidationError("Formatted address cannot be empty")
	}
	if err := validateCoordinates(in.Latitude, in.Longitude); err != nil {
		return nil, err
	}

	sp := &SavedPlace{
		BaseEntity:       shared.NewBaseEntity(),
		UserID:           userID,
		Name:             name,
		FormattedAddress: address,
		Latitude:         in.Latitude,
		Longitude:        in.Longitude,
	}
	if pid := strings.TrimSpace(in.PlaceID); pid != "" {
		sp.PlaceID = &pid
	}
	return sp, nil
}

// ProviderPlaceID returns the provider id or an empty string
func (p *SavedPlace) ProviderPlaceID() string {
	if p.PlaceID == nil {
		return ""
	}
	return *p.PlaceID
}

func validateCoordinates(lat, lng float64) error {
	if math.IsNaN(lat) || math.IsNaN(lng) || math.IsInf(lat, 0) || math.IsInf(lng, 0) {
		return shared.NewValidationError("Coordinates must be finite numbers")
	}
	if lat < -90 || lat > 90 {
		return shared.NewValidationError("Latitude must be between -90 and 90")
	}
	if lng < -180 || lng > 180 {
		return shared.NewValidationError("Longitude must be between -180 and 180")
	}
	return nil
}
