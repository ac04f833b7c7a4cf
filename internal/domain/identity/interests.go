package identity

import (
	"strings"

	"github.com/wayfarer/backend/internal/domain/shared"
)

// Interest is a selectable place category shown during onboarding.
// IDs match the place provider's type identifiers.
type Interest struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

var interestCatalog = []Interest{
	{ID: "amusement_park", Label: "Amusement Parks"},
	{ID: "aquarium", Label: "Aquariums"},
	{ID: "museum", Label: "Museums"},
	{ID: "movie_theater", Label: "Movies"},
	{ID: "night_club", Label: "Nightlife"},
	{ID: "park", Label: "Parks"},
	{ID: "zoo", Label: "Zoos"},
	{ID: "restaurant", Label: "Restaurants"},
	{ID: "cafe", Label: "Cafes"},
	{ID: "bar", Label: "Bars"},
	{ID: "bakery", Label: "Bakeries"},
	{ID: "gym", Label: "Gyms"},
	{ID: "art_gallery", Label: "Art Galleries"},
	{ID: "library", Label: "Libraries"},
	{ID: "beach", Label: "Beaches"},
}

// Interests returns a copy of the interest catalog
func Interests() []Interest {
	out := make([]Interest, len(interestCatalog))
	copy(out, interestCatalog)
	return out
}

// IsKnownInterest reports whether id is in the catalog
func IsKnownInterest(id string) bool {
	for _, i := range interestCatalog {
		if i.ID == id {
			return true
		}
	}
	return false
}

// NormalizeInterests trims, deduplicates and validates interest ids
func NormalizeInterests(ids []string) ([]string, error) {
	out := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, raw := range ids {
		id := strings.ToLower(strings.TrimSpace(raw))
		if id == "" {
			continue
		}
		if !IsKnownInterest(id) {
			return nil, shared.NewValidationError("Unknown interest: " + id)
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out, nil
}
