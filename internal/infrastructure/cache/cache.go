// Package cache holds the place-details cache used in front of the
// places provider.
package cache

import (
	"context"
	"time"

	"github.com/wayfarer/backend/internal/domain/place"
)

// PlaceDetailsCache stores provider place details by place id.
// A miss is reported with found == false and a nil error.
type PlaceDetailsCache interface {
	Get(ctx context.Context, placeID string) (details *place.Details, found bool, err error)
	Set(ctx context.Context, details *place.Details, ttl time.Duration) error
	Delete(ctx context.Context, placeID string) error
}
