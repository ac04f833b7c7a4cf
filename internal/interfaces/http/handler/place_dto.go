package handler

import (
	"time"

	"github.com/google/uuid"
	appplace "github.com/wayfarer/backend/internal/application/place"
)

// SavePlaceRequest bookmarks a provider place
type SavePlaceRequest struct {
	Name             string  `json:"name" binding:"required,max=255"`
	FormattedAddress string  `json:"formattedAddress" binding:"max=500"`
	Latitude         float64 `json:"latitude" binding:"latitude"`
	Longitude        float64 `json:"longitude" binding:"longitude"`
	PlaceID          string  `json:"placeId" binding:"required,max=255"`
}

// NearbySearchQuery holds nearby search parameters. Missing values take the
// service defaults.
type NearbySearchQuery struct {
	Location string `form:"location"`
	Radius   int    `form:"radius" binding:"omitempty,min=1,max=50000"`
	Type     string `form:"type" binding:"max=64"`
}

// SavedQuery asks whether a provider place is saved
type SavedQuery struct {
	PlaceID string `form:"placeId" binding:"required"`
}

// SavedPlaceResponse is a bookmarked place
type SavedPlaceResponse struct {
	ID               uuid.UUID `json:"id"`
	UserID           uuid.UUID `json:"userId"`
	Name             string    `json:"name"`
	FormattedAddress string    `json:"formattedAddress"`
	Latitude         float64   `json:"latitude"`
	Longitude        float64   `json:"longitude"`
	PlaceID          string    `json:"placeId"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// SavedStatusResponse answers whether the caller saved a place
type SavedStatusResponse struct {
	Saved bool `json:"saved"`
}

func toSavedPlaceResponse(p appplace.SavedPlaceResult) SavedPlaceResponse {
	return SavedPlaceResponse{
		ID:               p.ID,
		UserID:           p.UserID,
		Name:             p.Name,
		FormattedAddress: p.FormattedAddress,
		Latitude:         p.Latitude,
		Longitude:        p.Longitude,
		PlaceID:          p.PlaceID,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}

func toSavedPlaceResponses(in []appplace.SavedPlaceResult) []SavedPlaceResponse {
	out := make([]SavedPlaceResponse, len(in))
	for i, p := range in {
		out[i] = toSavedPlaceResponse(p)
	}
	return out
}
