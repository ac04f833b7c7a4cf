package places

import "github.com/wayfarer/backend/internal/domain/place"

// Provider status values returned in the "status" field of every response
const (
	statusOK             = "OK"
	statusZeroResults    = "ZERO_RESULTS"
	statusNotFound       = "NOT_FOUND"
	statusInvalidRequest = "INVALID_REQUEST"
)

type latLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type geometry struct {
	Location latLng `json:"location"`
}

type providerPlace struct {
	PlaceID          string   `json:"place_id"`
	Name             string   `json:"name"`
	FormattedAddress string   `json:"formatted_address"`
	Vicinity         string   `json:"vicinity"`
	Geometry         geometry `json:"geometry"`
	Rating           float64  `json:"rating"`
	UserRatingsTotal int      `json:"user_ratings_total"`
	Types            []string `json:"types"`
}

type detailsResponse struct {
	Status       string        `json:"status"`
	ErrorMessage string        `json:"error_message"`
	Result       providerPlace `json:"result"`
}

type nearbyResponse struct {
	Status       string          `json:"status"`
	ErrorMessage string          `json:"error_message"`
	Results      []providerPlace `json:"results"`
}

func (p providerPlace) toDetails() *place.Details {
	address := p.FormattedAddress
	if address == "" {
		address = p.Vicinity
	}
	return &place.Details{
		PlaceID:          p.PlaceID,
		Name:             p.Name,
		FormattedAddress: address,
		Latitude:         p.Geometry.Location.Lat,
		Longitude:        p.Geometry.Location.Lng,
		Rating:           p.Rating,
		Types:            p.Types,
	}
}

func (p providerPlace) toNearby() place.NearbyPlace {
	return place.NearbyPlace{
		PlaceID:          p.PlaceID,
		Name:             p.Name,
		Vicinity:         p.Vicinity,
		Latitude:         p.Geometry.Location.Lat,
		Longitude:        p.Geometry.Location.Lng,
		Rating:           p.Rating,
		UserRatingsTotal: p.UserRatingsTotal,
		Types:            p.Types,
	}
}
