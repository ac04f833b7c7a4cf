package review

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/wayfarer/backend/internal/application/feed"
	"github.com/wayfarer/backend/internal/domain/review"
	"github.com/wayfarer/backend/internal/domain/shared"
	"github.com/wayfarer/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// SubmitInput is a review submission
type SubmitInput struct {
	PlaceID string
	Rating  float64
	Text    string
}

// ReviewResult is a stored review
type ReviewResult struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	PlaceID   string
	Rating    int
	Text      string
	CreatedAt time.Time
	UpdatedAt time.Time
	// Created is false when an existing review was overwritten
	Created bool
}

// PlaceSummary aggregates the ratings of a place
type PlaceSummary struct {
	Count         int64
	AverageRating decimal.Decimal
}

// PlaceReviewsResult lists a place's reviews with their summary
type PlaceReviewsResult struct {
	PlaceID string
	Reviews []feed.AnnotatedReview
	Summary PlaceSummary
}

// LikeState is a review's like state after a toggle
type LikeState struct {
	Liked     bool
	LikeCount int64
}

// ReviewService handles review submission, likes and review views
type ReviewService struct {
	reviewRepo review.ReviewRepository
	likeRepo   review.LikeRepository
	feeds      *feed.Service
	metrics    *telemetry.SocialMetrics
	logger     *zap.Logger
}

// NewReviewService creates a new review service. metrics may be nil.
func NewReviewService(
	reviewRepo review.ReviewRepository,
	likeRepo review.LikeRepository,
	feeds *feed.Service,
	metrics *telemetry.SocialMetrics,
	logger *zap.Logger,
) *ReviewService {
	return &ReviewService{
		reviewRepo: reviewRepo,
		likeRepo:   likeRepo,
		feeds:      feeds,
		metrics:    metrics,
		logger:     logger,
	}
}

// SubmitReview creates userID's review of a place or overwrites the existing
// one. Invalid input is rejected before storage is touched.
func (s *ReviewService) SubmitReview(ctx context.Context, userID uuid.UUID, input SubmitInput) (_ *ReviewResult, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "review", "submit",
		attribute.String(telemetry.SpanAttrUserID, userID.String()),
		attribute.String(telemetry.SpanAttrPlaceID, input.PlaceID))
	defer func() {
		telemetry.RecordError(span, err)
		span.End()
	}()

	candidate, err := review.NewReview(userID, input.PlaceID, input.Rating, input.Text)
	if err != nil {
		return nil, err
	}

	stored, err := s.reviewRepo.Upsert(ctx, candidate)
	if err != nil {
		s.logger.Error("Failed to upsert review",
			zap.String("user_id", userID.String()),
			zap.String("place_id", candidate.PlaceID),
			zap.Error(err))
		return nil, err
	}

	created := stored.ID == candidate.ID
	s.metrics.RecordReview(ctx, created)
	span.SetAttributes(attribute.String(telemetry.SpanAttrReviewID, stored.ID.String()))

	result := toReviewResult(stored)
	result.Created = created
	return &result, nil
}

// GetMyReview returns userID's review of a place, or nil when there is none
func (s *ReviewService) GetMyReview(ctx context.Context, userID uuid.UUID, placeID string) (*ReviewResult, error) {
	placeID, err := review.NormalizePlaceID(placeID)
	if err != nil {
		return nil, err
	}
	r, err := s.reviewRepo.FindByUserAndPlace(ctx, userID, placeID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	result := toReviewResult(r)
	return &result, nil
}

// ListMyReviews returns userID's reviews as an annotated feed
func (s *ReviewService) ListMyReviews(ctx context.Context, userID uuid.UUID) ([]feed.AnnotatedReview, error) {
	return s.feeds.BuildOwnFeed(ctx, userID)
}

// FollowingFeed returns reviews by the users viewerID follows
func (s *ReviewService) FollowingFeed(ctx context.Context, viewerID uuid.UUID) ([]feed.AnnotatedReview, error) {
	return s.feeds.BuildFollowingFeed(ctx, viewerID)
}

// PlaceReviews lists every review of a place, newest first, with the rating
// summary. viewerID may be uuid.Nil.
func (s *ReviewService) PlaceReviews(ctx context.Context, placeID string, viewerID uuid.UUID) (*PlaceReviewsResult, error) {
	placeID, err := review.NormalizePlaceID(placeID)
	if err != nil {
		return nil, err
	}

	var (
		reviews []*review.Review
		summary review.Summary
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		reviews, err = s.reviewRepo.FindByPlace(gctx, placeID)
		return err
	})
	g.Go(func() (err error) {
		summary, err = s.reviewRepo.SummarizePlace(gctx, placeID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	annotated, err := s.feeds.Annotate(ctx, reviews, viewerID, feed.WithoutPlaces())
	if err != nil {
		return nil, err
	}
	return &PlaceReviewsResult{
		PlaceID: placeID,
		Reviews: annotated,
		Summary: PlaceSummary{
			Count:         summary.Count,
			AverageRating: summary.AverageRating(),
		},
	}, nil
}

// GetReviewDetail returns one review with author, likes and place details
func (s *ReviewService) GetReviewDetail(ctx context.Context, reviewID, viewerID uuid.UUID) (*feed.AnnotatedReview, error) {
	r, err := s.findReview(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	annotated, err := s.feeds.Annotate(ctx, []*review.Review{r}, viewerID)
	if err != nil {
		return nil, err
	}
	if len(annotated) == 0 {
		// author no longer exists
		return nil, shared.NewNotFoundError("Review")
	}
	return &annotated[0], nil
}

// DeleteReview removes a review and its likes. Only the author may delete it.
func (s *ReviewService) DeleteReview(ctx context.Context, userID, reviewID uuid.UUID) error {
	r, err := s.findReview(ctx, reviewID)
	if err != nil {
		return err
	}
	if r.UserID != userID {
		return shared.NewDomainError(shared.CodeForbidden, "Only the author can delete this review")
	}
	if err := s.reviewRepo.Delete(ctx, reviewID); err != nil {
		return err
	}
	s.logger.Info("Review deleted",
		zap.String("review_id", reviewID.String()),
		zap.String("user_id", userID.String()))
	return nil
}

// LikeReview records userID's like. Liking twice is a no-op.
func (s *ReviewService) LikeReview(ctx context.Context, reviewID, userID uuid.UUID) (*LikeState, error) {
	like, err := review.NewLike(reviewID, userID)
	if err != nil {
		return nil, err
	}
	if _, err := s.findReview(ctx, reviewID); err != nil {
		return nil, err
	}
	created, err := s.likeRepo.Create(ctx, like)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			// review deleted in between
			return nil, shared.NewNotFoundError("Review")
		}
		return nil, err
	}
	if created {
		s.metrics.RecordLike(ctx, true)
	}
	return s.likeState(ctx, reviewID, true)
}

// UnlikeReview removes userID's like. Unliking a review not liked is a no-op.
func (s *ReviewService) UnlikeReview(ctx context.Context, reviewID, userID uuid.UUID) (*LikeState, error) {
	if userID == uuid.Nil {
		return nil, shared.ErrUnauthorized
	}
	if _, err := s.findReview(ctx, reviewID); err != nil {
		return nil, err
	}
	deleted, err := s.likeRepo.Delete(ctx, reviewID, userID)
	if err != nil {
		return nil, err
	}
	if deleted {
		s.metrics.RecordLike(ctx, false)
	}
	return s.likeState(ctx, reviewID, false)
}

func (s *ReviewService) likeState(ctx context.Context, reviewID uuid.UUID, liked bool) (*LikeState, error) {
	n, err := s.likeRepo.Count(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	return &LikeState{Liked: liked, LikeCount: n}, nil
}

func (s *ReviewService) findReview(ctx context.Context, reviewID uuid.UUID) (*review.Review, error) {
	r, err := s.reviewRepo.FindByID(ctx, reviewID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewNotFoundError("Review")
		}
		return nil, err
	}
	return r, nil
}

func toReviewResult(r *review.Review) ReviewResult {
	return ReviewResult{
		ID:        r.ID,
		UserID:    r.UserID,
		PlaceID:   r.PlaceID,
		Rating:    r.Rating,
		Text:      r.Text,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}
