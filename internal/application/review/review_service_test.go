package review

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/wayfarer/backend/internal/application/feed"
	"github.com/wayfarer/backend/internal/domain/identity"
	"github.com/wayfarer/backend/internal/domain/place"
	"github.com/wayfarer/backend/internal/domain/review"
	"github.com/wayfarer/backend/internal/domain/shared"
	"github.com/wayfarer/backend/internal/infrastructure/telemetry"
	"github.com/wayfarer/backend/tests/testutil"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"
)

type reviewFixture struct {
	reviews *testutil.MockReviewRepository
	likes   *testutil.MockLikeRepository
	users   *testutil.MockUserRepository
	follows *testutil.MockFollowRepository
	details *testutil.MockDetailsProvider
	svc     *ReviewService
}

func newReviewFixture() *reviewFixture {
	f := &reviewFixture{
		reviews: new(testutil.MockReviewRepository),
		likes:   new(testutil.MockLikeRepository),
		users:   new(testutil.MockUserRepository),
		follows: new(testutil.MockFollowRepository),
		details: new(testutil.MockDetailsProvider),
	}
	feeds := feed.NewService(f.follows, f.reviews, f.likes, f.users, f.details, feed.DefaultConfig(), nil, zap.NewNop())
	f.svc = NewReviewService(f.reviews, f.likes, feeds, nil, zap.NewNop())
	return f
}

func storedReview(userID uuid.UUID, placeID string, rating int) *review.Review {
	return &review.Review{
		BaseEntity: shared.NewBaseEntity(),
		UserID:     userID,
		PlaceID:    placeID,
		Rating:     rating,
		Text:       "stored",
	}
}

func TestReviewService_SubmitReview_Creates(t *testing.T) {
	f := newReviewFixture()
	userID := uuid.New()

	f.reviews.On("Upsert", mock.Anything, mock.AnythingOfType("*review.Review")).
		Return(func(_ context.Context, r *review.Review) *review.Review { return r }, nil)

	result, err := f.svc.SubmitReview(context.Background(), userID, SubmitInput{PlaceID: " p1 ", Rating: 5, Text: " Great! "})
	require.NoError(t, err)
	assert.True(t, result.Created)
	assert.Equal(t, "p1", result.PlaceID)
	assert.Equal(t, 5, result.Rating)
	assert.Equal(t, "Great!", result.Text)
	assert.Equal(t, result.CreatedAt, result.UpdatedAt)
}

func TestReviewService_SubmitReview_Overwrites(t *testing.T) {
	f := newReviewFixture()
	userID := uuid.New()
	existing := storedReview(userID, "p1", 2)
	existing.CreatedAt = time.Now().Add(-time.Hour).UTC()

	f.reviews.On("Upsert", mock.Anything, mock.AnythingOfType("*review.Review")).
		Return(func(_ context.Context, r *review.Review) *review.Review {
			out := *existing
			out.Rating, out.Text, out.UpdatedAt = r.Rating, r.Text, r.UpdatedAt
			return &out
		}, nil)

	result, err := f.svc.SubmitReview(context.Background(), userID, SubmitInput{PlaceID: "p1", Rating: 4, Text: "Better now"})
	require.NoError(t, err)
	assert.False(t, result.Created)
	assert.Equal(t, existing.ID, result.ID)
	assert.Equal(t, 4, result.Rating)
	assert.True(t, result.UpdatedAt.After(result.CreatedAt))
}

func TestReviewService_SubmitReview_RejectsBeforeStorage(t *testing.T) {
	tests := []struct {
		name  string
		input SubmitInput
	}{
		{"rating zero", SubmitInput{PlaceID: "p1", Rating: 0, Text: "x"}},
		{"rating six", SubmitInput{PlaceID: "p1", Rating: 6, Text: "x"}},
		{"fractional rating", SubmitInput{PlaceID: "p1", Rating: 3.5, Text: "x"}},
		{"empty text", SubmitInput{PlaceID: "p1", Rating: 3, Text: "   "}},
		{"missing place", SubmitInput{PlaceID: "", Rating: 3, Text: "x"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newReviewFixture()
			_, err := f.svc.SubmitReview(context.Background(), uuid.New(), tt.input)
			assert.True(t, shared.IsCode(err, shared.CodeValidation))
			f.reviews.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
		})
	}

	f := newReviewFixture()
	_, err := f.svc.SubmitReview(context.Background(), uuid.Nil, SubmitInput{PlaceID: "p1", Rating: 3, Text: "x"})
	assert.ErrorIs(t, err, shared.ErrUnauthorized)
}

func TestReviewService_GetMyReview(t *testing.T) {
	f := newReviewFixture()
	ctx := context.Background()
	userID := uuid.New()
	r := storedReview(userID, "p1", 3)

	f.reviews.On("FindByUserAndPlace", ctx, userID, "p1").Return(r, nil)
	f.reviews.On("FindByUserAndPlace", ctx, userID, "p2").Return(nil, shared.ErrNotFound)

	got, err := f.svc.GetMyReview(ctx, userID, "p1")
	require.NoError(t, err)
	assert.Equal(t, r.ID, got.ID)

	got, err = f.svc.GetMyReview(ctx, userID, "p2")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestReviewService_PlaceReviews(t *testing.T) {
	f := newReviewFixture()
	ctx := context.Background()
	author := &identity.User{BaseEntity: shared.NewBaseEntity(), Name: "Ada"}
	r1 := storedReview(author.ID, "p1", 5)
	r2 := storedReview(author.ID, "p1", 4)

	f.reviews.On("FindByPlace", mock.Anything, "p1").Return([]*review.Review{r1, r2}, nil)
	f.reviews.On("SummarizePlace", mock.Anything, "p1").Return(review.Summary{PlaceID: "p1", Count: 3, RatingSum: 14}, nil)
	f.users.On("FindByIDs", ctx, []uuid.UUID{author.ID}).Return(map[uuid.UUID]*identity.User{author.ID: author}, nil)
	f.likes.On("CountByReviews", mock.Anything, []uuid.UUID{r1.ID, r2.ID}).Return(map[uuid.UUID]int64{r2.ID: 4}, nil)

	result, err := f.svc.PlaceReviews(ctx, "p1", uuid.Nil)
	require.NoError(t, err)
	require.Len(t, result.Reviews, 2)
	assert.Equal(t, int64(4), result.Reviews[1].LikeCount)
	assert.Equal(t, int64(3), result.Summary.Count)
	assert.Equal(t, "4.7", result.Summary.AverageRating.String())
	f.details.AssertNotCalled(t, "PlaceDetails", mock.Anything, mock.Anything)
	f.likes.AssertNotCalled(t, "LikedSet", mock.Anything, mock.Anything, mock.Anything)
}

func TestReviewService_GetReviewDetail(t *testing.T) {
	ctx := context.Background()
	author := &identity.User{BaseEntity: shared.NewBaseEntity(), Name: "Ada"}
	viewer := uuid.New()
	r := storedReview(author.ID, "p1", 5)

	t.Run("annotated with place details", func(t *testing.T) {
		f := newReviewFixture()
		f.reviews.On("FindByID", ctx, r.ID).Return(r, nil)
		f.users.On("FindByIDs", ctx, []uuid.UUID{author.ID}).Return(map[uuid.UUID]*identity.User{author.ID: author}, nil)
		f.likes.On("CountByReviews", mock.Anything, []uuid.UUID{r.ID}).Return(map[uuid.UUID]int64{r.ID: 1}, nil)
		f.likes.On("LikedSet", mock.Anything, []uuid.UUID{r.ID}, viewer).Return(map[uuid.UUID]bool{r.ID: true}, nil)
		f.details.On("PlaceDetails", mock.Anything, "p1").Return(&place.Details{PlaceID: "p1", Name: "Museum"}, nil)

		got, err := f.svc.GetReviewDetail(ctx, r.ID, viewer)
		require.NoError(t, err)
		assert.Equal(t, "Ada", got.Author.Name)
		assert.True(t, got.IsLiked)
		require.NotNil(t, got.Place)
		assert.Equal(t, "Museum", got.Place.Name)
	})

	t.Run("missing review", func(t *testing.T) {
		f := newReviewFixture()
		missing := uuid.New()
		f.reviews.On("FindByID", ctx, missing).Return(nil, shared.ErrNotFound)

		_, err := f.svc.GetReviewDetail(ctx, missing, viewer)
		assert.Equal(t, "Review not found", err.Error())
	})

	t.Run("missing author", func(t *testing.T) {
		f := newReviewFixture()
		f.reviews.On("FindByID", ctx, r.ID).Return(r, nil)
		f.users.On("FindByIDs", ctx, []uuid.UUID{author.ID}).Return(map[uuid.UUID]*identity.User{}, nil)

		_, err := f.svc.GetReviewDetail(ctx, r.ID, viewer)
		assert.True(t, shared.IsCode(err, shared.CodeNotFound))
	})
}

func TestReviewService_DeleteReview(t *testing.T) {
	ctx := context.Background()
	authorID, otherID := uuid.New(), uuid.New()
	r := storedReview(authorID, "p1", 5)

	f := newReviewFixture()
	f.reviews.On("FindByID", ctx, r.ID).Return(r, nil)
	f.reviews.On("Delete", ctx, r.ID).Return(nil).Once()

	err := f.svc.DeleteReview(ctx, otherID, r.ID)
	assert.True(t, shared.IsCode(err, shared.CodeForbidden))

	require.NoError(t, f.svc.DeleteReview(ctx, authorID, r.ID))
	f.reviews.AssertNumberOfCalls(t, "Delete", 1)
}

func TestReviewService_LikeToggle(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	r := storedReview(uuid.New(), "p1", 5)

	f := newReviewFixture()
	f.reviews.On("FindByID", ctx, r.ID).Return(r, nil)
	f.likes.On("Create", ctx, mock.MatchedBy(func(l *review.Like) bool {
		return l.ReviewID == r.ID && l.UserID == userID
	})).Return(true, nil).Once()
	f.likes.On("Create", ctx, mock.Anything).Return(false, nil).Once()
	f.likes.On("Delete", ctx, r.ID, userID).Return(true, nil)
	f.likes.On("Count", ctx, r.ID).Return(int64(1), nil).Twice()
	f.likes.On("Count", ctx, r.ID).Return(int64(0), nil)

	state, err := f.svc.LikeReview(ctx, r.ID, userID)
	require.NoError(t, err)
	assert.Equal(t, &LikeState{Liked: true, LikeCount: 1}, state)

	// a repeated like stays a single like
	state, err = f.svc.LikeReview(ctx, r.ID, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), state.LikeCount)

	state, err = f.svc.UnlikeReview(ctx, r.ID, userID)
	require.NoError(t, err)
	assert.Equal(t, &LikeState{Liked: false, LikeCount: 0}, state)
}

func TestReviewService_LikeMetricsCountRealChanges(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	r := storedReview(uuid.New(), "p1", 5)

	reader := sdkmetric.NewManualReader()
	mp, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{Enabled: true, ServiceName: "wayfarer-test"}, zap.NewNop(), reader)
	require.NoError(t, err)
	t.Cleanup(func() { _ = mp.Shutdown(ctx) })
	metrics, err := telemetry.NewSocialMetrics(mp.Meter(telemetry.TracerName))
	require.NoError(t, err)

	f := newReviewFixture()
	f.svc = NewReviewService(f.reviews, f.likes, nil, metrics, zap.NewNop())
	f.reviews.On("FindByID", ctx, r.ID).Return(r, nil)
	f.likes.On("Create", ctx, mock.Anything).Return(true, nil).Once()
	f.likes.On("Create", ctx, mock.Anything).Return(false, nil).Once()
	f.likes.On("Delete", ctx, r.ID, userID).Return(false, nil)
	f.likes.On("Count", ctx, r.ID).Return(int64(1), nil)

	for i := 0; i < 2; i++ {
		_, err := f.svc.LikeReview(ctx, r.ID, userID)
		require.NoError(t, err)
	}
	_, err = f.svc.UnlikeReview(ctx, r.ID, userID)
	require.NoError(t, err)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))
	actions := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "review_like_changes_total" {
				continue
			}
			for _, dp := range m.Data.(metricdata.Sum[int64]).DataPoints {
				v, _ := dp.Attributes.Value(telemetry.AttrAction)
				actions[v.AsString()] += dp.Value
			}
		}
	}
	assert.Equal(t, map[string]int64{"like": 1}, actions)
}

func TestReviewService_LikeMissingReview(t *testing.T) {
	ctx := context.Background()
	f := newReviewFixture()
	missing := uuid.New()
	f.reviews.On("FindByID", ctx, missing).Return(nil, shared.ErrNotFound)

	_, err := f.svc.LikeReview(ctx, missing, uuid.New())
	assert.True(t, shared.IsCode(err, shared.CodeNotFound))

	_, err = f.svc.UnlikeReview(ctx, missing, uuid.New())
	assert.True(t, shared.IsCode(err, shared.CodeNotFound))

	_, err = f.svc.LikeReview(ctx, missing, uuid.Nil)
	assert.ErrorIs(t, err, shared.ErrUnauthorized)
}
