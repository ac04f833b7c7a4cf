package places

import (
	"context"
	"time"

	"github.com/wayfarer/backend/internal/domain/place"
	"github.com/wayfarer/backend/internal/infrastructure/cache"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// DefaultFlightTimeout bounds a shared upstream fetch
const DefaultFlightTimeout = 10 * time.Second

// LookupObserver receives the outcome of every details lookup.
// hit is true when the details came from the cache.
type LookupObserver func(ctx context.Context, hit bool, elapsed time.Duration, err error)

// CachedProvider is a read-through cache in front of a DetailsProvider.
// Concurrent misses for the same place share one upstream call.
// Cache failures are logged and never fail the lookup.
//
// A shared fetch is detached from its callers' cancellation and bounded by
// the flight timeout instead; each caller stops waiting when its own
// context ends.
type CachedProvider struct {
	next          place.DetailsProvider
	cache         cache.PlaceDetailsCache
	ttl           time.Duration
	flightTimeout time.Duration
	group         singleflight.Group
	logger        *zap.Logger
	observer      LookupObserver
}

var _ place.DetailsProvider = (*CachedProvider)(nil)

// CachedOption configures a CachedProvider
type CachedOption func(*CachedProvider)

// WithCacheLogger sets the logger
func WithCacheLogger(logger *zap.Logger) CachedOption {
	return func(p *CachedProvider) {
		p.logger = logger
	}
}

// WithFlightTimeout bounds each shared upstream fetch
func WithFlightTimeout(d time.Duration) CachedOption {
	return func(p *CachedProvider) {
		if d > 0 {
			p.flightTimeout = d
		}
	}
}

// WithLookupObserver registers a lookup observer
func WithLookupObserver(o LookupObserver) CachedOption {
	return func(p *CachedProvider) {
		p.observer = o
	}
}

// NewCachedProvider wraps next with c, keeping entries for ttl
func NewCachedProvider(next place.DetailsProvider, c cache.PlaceDetailsCache, ttl time.Duration, opts ...CachedOption) *CachedProvider {
	p := &CachedProvider{
		next:          next,
		cache:         c,
		ttl:           ttl,
		flightTimeout: DefaultFlightTimeout,
		logger:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// PlaceDetails returns cached details or fetches and caches them
func (p *CachedProvider) PlaceDetails(ctx context.Context, placeID string) (*place.Details, error) {
	start := time.Now()

	details, found, err := p.cache.Get(ctx, placeID)
	if err != nil {
		p.logger.Warn("place details cache read failed", zap.String("place_id", placeID), zap.Error(err))
	}
	if found {
		p.observe(ctx, true, start, nil)
		return details, nil
	}

	ch := p.group.DoChan(placeID, func() (any, error) {
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.flightTimeout)
		defer cancel()

		d, err := p.next.PlaceDetails(fctx, placeID)
		if err != nil {
			return nil, err
		}
		if err := p.cache.Set(fctx, d, p.ttl); err != nil {
			p.logger.Warn("place details cache write failed", zap.String("place_id", placeID), zap.Error(err))
		}
		return d, nil
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		res.Err = ctx.Err()
	}
	p.observe(ctx, false, start, res.Err)
	if res.Err != nil {
		return nil, res.Err
	}

	// callers sharing a flight must not alias one value
	d := *res.Val.(*place.Details)
	d.Types = append([]string(nil), d.Types...)
	return &d, nil
}

// Invalidate evicts placeID from the cache
func (p *CachedProvider) Invalidate(ctx context.Context, placeID string) error {
	return p.cache.Delete(ctx, placeID)
}

func (p *CachedProvider) observe(ctx context.Context, hit bool, start time.Time, err error) {
	if p.observer != nil {
		p.observer(ctx, hit, time.Since(start), err)
	}
}
