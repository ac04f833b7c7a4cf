package place

import (
	"context"
)

// Details is the display metadata the provider returns for a place
type Details struct {
	PlaceID          string   `json:"place_id"`
	Name             string   `json:"name"`
	FormattedAddress string   `json:"formatted_address"`
	Latitude         float64  `json:"latitude,omitempty"`
	Longitude        float64  `json:"longitude,omitempty"`
	Rating           float64  `json:"rating,omitempty"`
	Types            []string `json:"types,omitempty"`
}

// DetailsProvider resolves a provider place id to its display metadata.
// Implementations return shared.ErrNotFound for unknown ids and
// shared.ErrUpstreamUnavailable when the provider cannot be reached.
type DetailsProvider interface {
	PlaceDetails(ctx context.Context, placeID string) (*Details, error)
}

// NearbyQuery describes a nearby search around a point
type NearbyQuery struct {
	Latitude  float64
	Longitude float64
	Radius    int
	Type      string
}

// NearbyPlace is one result of a nearby search
type NearbyPlace struct {
	PlaceID          string   `json:"place_id"`
	Name             string   `json:"name"`
	Vicinity         string   `json:"vicinity"`
	Latitude         float64  `json:"latitude"`
	Longitude        float64  `json:"longitude"`
	Rating           float64  `json:"rating,omitempty"`
	UserRatingsTotal int      `json:"user_ratings_total,omitempty"`
	Types            []string `json:"types,omitempty"`
}

// NearbySearcher runs nearby searches against the provider
type NearbySearcher interface {
	SearchNearby(ctx context.Context, q NearbyQuery) ([]NearbyPlace, error)
}
