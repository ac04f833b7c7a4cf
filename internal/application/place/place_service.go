package place

import (
	"context"
	"errors"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/wayfarer/backend/internal/domain/place"
	"github.com/wayfarer/backend/internal/domain/shared"
	"github.com/wayfarer/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// Nearby search defaults, centred on Philadelphia City Hall
const (
	DefaultLatitude  = 39.9526
	DefaultLongitude = -75.1652
	DefaultRadius    = 5000
	MaxRadius        = 50000
	DefaultPlaceType = "tourist_attraction"
)

// SaveInput contains the fields of a place to bookmark
type SaveInput struct {
	Name             string
	FormattedAddress string
	Latitude         float64
	Longitude        float64
	PlaceID          string
}

// SavedPlaceResult is a saved place as shown to clients
type SavedPlaceResult struct {
	ID               uuid.UUID
	UserID           uuid.UUID
	Name             string
	FormattedAddress string
	Latitude         float64
	Longitude        float64
	PlaceID          string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// NearbyInput holds raw nearby search parameters; zero values take defaults
type NearbyInput struct {
	Location string // "lat,lng"
	Radius   int
	Type     string
}

// PlaceService manages saved places and proxies the place provider
type PlaceService struct {
	placeRepo place.SavedPlaceRepository
	details   place.DetailsProvider
	nearby    place.NearbySearcher
	metrics   *telemetry.SocialMetrics
	logger    *zap.Logger
}

// NewPlaceService creates a new place service. metrics may be nil.
func NewPlaceService(
	placeRepo place.SavedPlaceRepository,
	details place.DetailsProvider,
	nearby place.NearbySearcher,
	metrics *telemetry.SocialMetrics,
	logger *zap.Logger,
) *PlaceService {
	return &PlaceService{
		placeRepo: placeRepo,
		details:   details,
		nearby:    nearby,
		metrics:   metrics,
		logger:    logger,
	}
}

// SavePlace bookmarks a place for userID. Saving the same provider place
// twice fails with a conflict.
func (s *PlaceService) SavePlace(ctx context.Context, userID uuid.UUID, input SaveInput) (*SavedPlaceResult, error) {
	sp, err := place.NewSavedPlace(userID, place.SavedPlaceInput{
		Name:             input.Name,
		FormattedAddress: input.FormattedAddress,
		Latitude:         input.Latitude,
		Longitude:        input.Longitude,
		PlaceID:          input.PlaceID,
	})
	if err != nil {
		return nil, err
	}

	if pid := sp.ProviderPlaceID(); pid != "" {
		saved, err := s.placeRepo.ExistsForUser(ctx, userID, pid)
		if err != nil {
			return nil, err
		}
		if saved {
			return nil, shared.NewConflictError("Place already saved")
		}
	}

	// the partial unique index settles concurrent saves
	if err := s.placeRepo.Create(ctx, sp); err != nil {
		if errors.Is(err, shared.ErrConflict) {
			return nil, shared.NewConflictError("Place already saved")
		}
		return nil, err
	}

	s.metrics.RecordSave(ctx, true)
	s.logger.Info("Place saved",
		zap.String("user_id", userID.String()),
		zap.String("saved_place_id", sp.ID.String()))
	result := toSavedPlaceResult(sp)
	return &result, nil
}

// IsPlaceSaved reports whether userID saved the provider place
func (s *PlaceService) IsPlaceSaved(ctx context.Context, userID uuid.UUID, placeID string) (bool, error) {
	placeID = strings.TrimSpace(placeID)
	if placeID == "" {
		return false, shared.NewValidationError("placeId is required")
	}
	return s.placeRepo.ExistsForUser(ctx, userID, placeID)
}

// ListPlaces returns a user's saved places, newest first
func (s *PlaceService) ListPlaces(ctx context.Context, userID uuid.UUID) ([]SavedPlaceResult, error) {
	places, err := s.placeRepo.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]SavedPlaceResult, 0, len(places))
	for _, p := range places {
		out = append(out, toSavedPlaceResult(p))
	}
	return out, nil
}

// DeleteSavedPlace removes a saved place. Places owned by someone else
// are reported as not found.
func (s *PlaceService) DeleteSavedPlace(ctx context.Context, userID, savedPlaceID uuid.UUID) error {
	if err := s.placeRepo.Delete(ctx, userID, savedPlaceID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewNotFoundError("Saved place")
		}
		return err
	}
	s.metrics.RecordSave(ctx, false)
	return nil
}

// GetPlaceDetails returns provider metadata for a place
func (s *PlaceService) GetPlaceDetails(ctx context.Context, placeID string) (*place.Details, error) {
	placeID = strings.TrimSpace(placeID)
	if placeID == "" {
		return nil, shared.NewValidationError("Place ID cannot be empty")
	}
	details, err := s.details.PlaceDetails(ctx, placeID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewNotFoundError("Place")
		}
		return nil, err
	}
	return details, nil
}

// SearchNearby runs a nearby search, applying defaults to missing parameters
func (s *PlaceService) SearchNearby(ctx context.Context, input NearbyInput) ([]place.NearbyPlace, error) {
	q, err := ParseNearbyInput(input)
	if err != nil {
		return nil, err
	}
	results, err := s.nearby.SearchNearby(ctx, q)
	if err != nil {
		s.logger.Warn("Nearby search failed", zap.Error(err))
		return nil, err
	}
	return results, nil
}

// ParseNearbyInput validates raw nearby parameters and fills in defaults
func ParseNearbyInput(input NearbyInput) (place.NearbyQuery, error) {
	q := place.NearbyQuery{
		Latitude:  DefaultLatitude,
		Longitude: DefaultLongitude,
		Radius:    DefaultRadius,
		Type:      DefaultPlaceType,
	}

	if loc := strings.TrimSpace(input.Location); loc != "" {
		lat, lng, ok := strings.Cut(loc, ",")
		if !ok {
			return q, shared.NewValidationError("location must be \"lat,lng\"")
		}
		var err error
		if q.Latitude, err = strconv.ParseFloat(strings.TrimSpace(lat), 64); err != nil || !finite(q.Latitude) || q.Latitude < -90 || q.Latitude > 90 {
			return q, shared.NewValidationError("Latitude must be between -90 and 90")
		}
		if q.Longitude, err = strconv.ParseFloat(strings.TrimSpace(lng), 64); err != nil || !finite(q.Longitude) || q.Longitude < -180 || q.Longitude > 180 {
			return q, shared.NewValidationError("Longitude must be between -180 and 180")
		}
	}

	if input.Radius != 0 {
		if input.Radius < 1 || input.Radius > MaxRadius {
			return q, shared.NewValidationError("radius must be between 1 and 50000")
		}
		q.Radius = input.Radius
	}

	if t := strings.TrimSpace(input.Type); t != "" {
		q.Type = t
	}
	return q, nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func toSavedPlaceResult(p *place.SavedPlace) SavedPlaceResult {
	return SavedPlaceResult{
		ID:               p.ID,
		UserID:           p.UserID,
		Name:             p.Name,
		FormattedAddress: p.FormattedAddress,
		Latitude:         p.Latitude,
		Longitude:        p.Longitude,
		PlaceID:          p.ProviderPlaceID(),
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}
