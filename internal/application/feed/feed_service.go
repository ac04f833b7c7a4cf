// Package feed composes annotated review lists: the following feed, a user's
// own reviews, and the per-place and single-review views that share the same
// annotation.
package feed

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/wayfarer/backend/internal/domain/identity"
	"github.com/wayfarer/backend/internal/domain/place"
	"github.com/wayfarer/backend/internal/domain/review"
	"github.com/wayfarer/backend/internal/domain/shared"
	"github.com/wayfarer/backend/internal/domain/social"
	"github.com/wayfarer/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Feed names used in metrics
const (
	FeedFollowing = "following"
	FeedOwn       = "own"
)

// Author is the public identity attached to a review
type Author struct {
	ID       uuid.UUID
	Name     string
	Username string
	Image    string
}

// AnnotatedReview is a review ready for display
type AnnotatedReview struct {
	ID        uuid.UUID
	PlaceID   string
	Rating    int
	Text      string
	CreatedAt time.Time
	UpdatedAt time.Time
	Author    Author
	LikeCount int64
	IsLiked   bool
	// Place is nil when the lookup failed or was skipped
	Place *place.Details
}

// Config tunes place lookups during composition
type Config struct {
	// LookupTimeout bounds each place details call
	LookupTimeout time.Duration
	// MaxConcurrentLookups caps in-flight place details calls per build
	MaxConcurrentLookups int
}

// DefaultConfig returns the default composition settings
func DefaultConfig() Config {
	return Config{
		LookupTimeout:        3 * time.Second,
		MaxConcurrentLookups: 8,
	}
}

// Service builds feeds from the follow graph, reviews, likes and place details
type Service struct {
	followRepo social.FollowRepository
	reviewRepo review.ReviewRepository
	likeRepo   review.LikeRepository
	userRepo   identity.UserRepository
	details    place.DetailsProvider
	config     Config
	metrics    *telemetry.SocialMetrics
	logger     *zap.Logger
}

// NewService creates a new feed service. metrics may be nil.
func NewService(
	followRepo social.FollowRepository,
	reviewRepo review.ReviewRepository,
	likeRepo review.LikeRepository,
	userRepo identity.UserRepository,
	details place.DetailsProvider,
	config Config,
	metrics *telemetry.SocialMetrics,
	logger *zap.Logger,
) *Service {
	defaults := DefaultConfig()
	if config.LookupTimeout <= 0 {
		config.LookupTimeout = defaults.LookupTimeout
	}
	if config.MaxConcurrentLookups <= 0 {
		config.MaxConcurrentLookups = defaults.MaxConcurrentLookups
	}
	return &Service{
		followRepo: followRepo,
		reviewRepo: reviewRepo,
		likeRepo:   likeRepo,
		userRepo:   userRepo,
		details:    details,
		config:     config,
		metrics:    metrics,
		logger:     logger,
	}
}

// BuildFollowingFeed returns reviews written by the users viewerID follows,
// newest first. Following nobody returns an empty feed without touching
// reviews, likes or the place provider.
func (s *Service) BuildFollowingFeed(ctx context.Context, viewerID uuid.UUID) (_ []AnnotatedReview, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "feed", "following",
		attribute.String(telemetry.SpanAttrViewerID, viewerID.String()))
	defer func() {
		telemetry.RecordError(span, err)
		span.End()
	}()

	if viewerID == uuid.Nil {
		return nil, shared.ErrUnauthorized
	}

	followingIDs, err := s.followRepo.FollowingIDs(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int(telemetry.SpanAttrFollowing, len(followingIDs)))
	if len(followingIDs) == 0 {
		s.metrics.RecordFeed(ctx, FeedFollowing, 0)
		return []AnnotatedReview{}, nil
	}

	reviews, err := s.reviewRepo.FindByUsers(ctx, followingIDs)
	if err != nil {
		return nil, err
	}

	out, err := s.Annotate(ctx, reviews, viewerID)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int(telemetry.SpanAttrReviews, len(out)))
	s.metrics.RecordFeed(ctx, FeedFollowing, len(out))
	return out, nil
}

// BuildOwnFeed returns userID's own reviews, newest first
func (s *Service) BuildOwnFeed(ctx context.Context, userID uuid.UUID) (_ []AnnotatedReview, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "feed", "own",
		attribute.String(telemetry.SpanAttrUserID, userID.String()))
	defer func() {
		telemetry.RecordError(span, err)
		span.End()
	}()

	if userID == uuid.Nil {
		return nil, shared.ErrUnauthorized
	}

	reviews, err := s.reviewRepo.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	out, err := s.Annotate(ctx, reviews, userID)
	if err != nil {
		return nil, err
	}
	s.metrics.RecordFeed(ctx, FeedOwn, len(out))
	return out, nil
}

type annotateOptions struct {
	places bool
}

// AnnotateOption adjusts Annotate
type AnnotateOption func(*annotateOptions)

// WithoutPlaces skips place details lookups, for lists that all share one
// place the caller already knows.
func WithoutPlaces() AnnotateOption {
	return func(o *annotateOptions) { o.places = false }
}

// Annotate attaches authors, like counts, the viewer's liked state and place
// details to reviews, keeping their order. viewerID may be uuid.Nil.
// Reviews whose author no longer exists are dropped. A failed place lookup
// leaves that review's Place nil; any other failure fails the call.
func (s *Service) Annotate(ctx context.Context, reviews []*review.Review, viewerID uuid.UUID, opts ...AnnotateOption) ([]AnnotatedReview, error) {
	o := annotateOptions{places: true}
	for _, opt := range opts {
		opt(&o)
	}
	if len(reviews) == 0 {
		return []AnnotatedReview{}, nil
	}

	authorIDs := make([]uuid.UUID, 0, len(reviews))
	for _, r := range reviews {
		authorIDs = append(authorIDs, r.UserID)
	}
	authors, err := s.userRepo.FindByIDs(ctx, shared.UniqueIDs(authorIDs))
	if err != nil {
		return nil, err
	}

	kept := make([]*review.Review, 0, len(reviews))
	for _, r := range reviews {
		if _, ok := authors[r.UserID]; !ok {
			s.logger.Warn("Dropping review with missing author",
				zap.String("review_id", r.ID.String()),
				zap.String("user_id", r.UserID.String()))
			continue
		}
		kept = append(kept, r)
	}
	if len(kept) == 0 {
		return []AnnotatedReview{}, nil
	}

	reviewIDs := make([]uuid.UUID, len(kept))
	for i, r := range kept {
		reviewIDs[i] = r.ID
	}

	var (
		likeCounts map[uuid.UUID]int64
		liked      map[uuid.UUID]bool
		places     map[string]*place.Details
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		likeCounts, err = s.likeRepo.CountByReviews(gctx, reviewIDs)
		return err
	})
	if viewerID != uuid.Nil {
		g.Go(func() (err error) {
			liked, err = s.likeRepo.LikedSet(gctx, reviewIDs, viewerID)
			return err
		})
	}
	if o.places {
		g.Go(func() error {
			places = s.lookupPlaces(gctx, kept)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]AnnotatedReview, 0, len(kept))
	for _, r := range kept {
		author := authors[r.UserID]
		out = append(out, AnnotatedReview{
			ID:        r.ID,
			PlaceID:   r.PlaceID,
			Rating:    r.Rating,
			Text:      r.Text,
			CreatedAt: r.CreatedAt,
			UpdatedAt: r.UpdatedAt,
			Author: Author{
				ID:       author.ID,
				Name:     author.Name,
				Username: author.Username,
				Image:    author.Image,
			},
			LikeCount: likeCounts[r.ID],
			IsLiked:   liked[r.ID],
			Place:     places[r.PlaceID],
		})
	}
	return out, nil
}

// lookupPlaces resolves each distinct place id once. Failed lookups are
// absent from the result.
func (s *Service) lookupPlaces(ctx context.Context, reviews []*review.Review) map[string]*place.Details {
	ids := make([]string, 0, len(reviews))
	seen := make(map[string]struct{}, len(reviews))
	for _, r := range reviews {
		if _, ok := seen[r.PlaceID]; ok {
			continue
		}
		seen[r.PlaceID] = struct{}{}
		ids = append(ids, r.PlaceID)
	}

	results := make([]*place.Details, len(ids))
	var failures atomic.Int64

	var g errgroup.Group
	g.SetLimit(s.config.MaxConcurrentLookups)
	for i, id := range ids {
		g.Go(func() error {
			lctx, cancel := context.WithTimeout(ctx, s.config.LookupTimeout)
			defer cancel()

			d, err := s.details.PlaceDetails(lctx, id)
			if err != nil {
				failures.Add(1)
				s.logger.Warn("Place lookup failed",
					zap.String("place_id", id),
					zap.Error(err))
				return nil
			}
			results[i] = d
			return nil
		})
	}
	_ = g.Wait()

	trace.SpanFromContext(ctx).SetAttributes(
		attribute.Int(telemetry.SpanAttrPlaces, len(ids)),
		attribute.Int64(telemetry.SpanAttrLookupFails, failures.Load()),
	)

	out := make(map[string]*place.Details, len(ids))
	for i, id := range ids {
		if results[i] != nil {
			out[id] = results[i]
		}
	}
	return out
}
