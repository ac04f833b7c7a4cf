package testutil

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/wayfarer/backend/internal/domain/identity"
	"github.com/wayfarer/backend/internal/domain/place"
	"github.com/wayfarer/backend/internal/domain/review"
	"github.com/wayfarer/backend/internal/domain/social"
)

// MockUserRepository is a mock implementation of identity.UserRepository
type MockUserRepository struct {
	mock.Mock
}

var _ identity.UserRepository = (*MockUserRepository)(nil)

func (m *MockUserRepository) Create(ctx context.Context, user *identity.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Update(ctx context.Context, user *identity.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*identity.User, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uuid.UUID]*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*identity.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByUsername(ctx context.Context, username string) (*identity.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	args := m.Called(ctx, username)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) FindSuggestionCandidates(ctx context.Context, userID uuid.UUID, limit int) ([]*identity.User, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*identity.User), args.Error(1)
}

// MockFollowRepository is a mock implementation of social.FollowRepository
type MockFollowRepository struct {
	mock.Mock
}

var _ social.FollowRepository = (*MockFollowRepository)(nil)

func (m *MockFollowRepository) Create(ctx context.Context, edge *social.FollowEdge) (bool, error) {
	args := m.Called(ctx, edge)
	return args.Bool(0), args.Error(1)
}

func (m *MockFollowRepository) Delete(ctx context.Context, followerID, followingID uuid.UUID) (bool, error) {
	args := m.Called(ctx, followerID, followingID)
	return args.Bool(0), args.Error(1)
}

func (m *MockFollowRepository) Exists(ctx context.Context, followerID, followingID uuid.UUID) (bool, error) {
	args := m.Called(ctx, followerID, followingID)
	return args.Bool(0), args.Error(1)
}

func (m *MockFollowRepository) CountFollowers(ctx context.Context, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockFollowRepository) CountFollowing(ctx context.Context, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockFollowRepository) ListFollowers(ctx context.Context, userID uuid.UUID) ([]social.Connection, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]social.Connection), args.Error(1)
}

func (m *MockFollowRepository) ListFollowing(ctx context.Context, userID uuid.UUID) ([]social.Connection, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]social.Connection), args.Error(1)
}

func (m *MockFollowRepository) FollowingIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

// MockSavedPlaceRepository is a mock implementation of place.SavedPlaceRepository
type MockSavedPlaceRepository struct {
	mock.Mock
}

var _ place.SavedPlaceRepository = (*MockSavedPlaceRepository)(nil)

func (m *MockSavedPlaceRepository) Create(ctx context.Context, p *place.SavedPlace) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockSavedPlaceRepository) FindByID(ctx context.Context, id uuid.UUID) (*place.SavedPlace, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*place.SavedPlace), args.Error(1)
}

func (m *MockSavedPlaceRepository) ExistsForUser(ctx context.Context, userID uuid.UUID, placeID string) (bool, error) {
	args := m.Called(ctx, userID, placeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockSavedPlaceRepository) FindByUser(ctx context.Context, userID uuid.UUID) ([]*place.SavedPlace, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*place.SavedPlace), args.Error(1)
}

func (m *MockSavedPlaceRepository) CountByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSavedPlaceRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	args := m.Called(ctx, userID, id)
	return args.Error(0)
}

// MockReviewRepository is a mock implementation of review.ReviewRepository
type MockReviewRepository struct {
	mock.Mock
}

var _ review.ReviewRepository = (*MockReviewRepository)(nil)

func (m *MockReviewRepository) Upsert(ctx context.Context, r *review.Review) (*review.Review, error) {
	args := m.Called(ctx, r)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	// a func return value computes the stored row from the input
	if fn, ok := args.Get(0).(func(context.Context, *review.Review) *review.Review); ok {
		return fn(ctx, r), args.Error(1)
	}
	return args.Get(0).(*review.Review), args.Error(1)
}

func (m *MockReviewRepository) FindByID(ctx context.Context, id uuid.UUID) (*review.Review, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*review.Review), args.Error(1)
}

func (m *MockReviewRepository) FindByUserAndPlace(ctx context.Context, userID uuid.UUID, placeID string) (*review.Review, error) {
	args := m.Called(ctx, userID, placeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*review.Review), args.Error(1)
}

func (m *MockReviewRepository) FindByUser(ctx context.Context, userID uuid.UUID) ([]*review.Review, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*review.Review), args.Error(1)
}

func (m *MockReviewRepository) FindByUsers(ctx context.Context, userIDs []uuid.UUID) ([]*review.Review, error) {
	args := m.Called(ctx, userIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*review.Review), args.Error(1)
}

func (m *MockReviewRepository) FindByPlace(ctx context.Context, placeID string) ([]*review.Review, error) {
	args := m.Called(ctx, placeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*review.Review), args.Error(1)
}

func (m *MockReviewRepository) SummarizePlace(ctx context.Context, placeID string) (review.Summary, error) {
	args := m.Called(ctx, placeID)
	return args.Get(0).(review.Summary), args.Error(1)
}

func (m *MockReviewRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockLikeRepository is a mock implementation of review.LikeRepository
type MockLikeRepository struct {
	mock.Mock
}

var _ review.LikeRepository = (*MockLikeRepository)(nil)

func (m *MockLikeRepository) Create(ctx context.Context, like *review.Like) (bool, error) {
	args := m.Called(ctx, like)
	return args.Bool(0), args.Error(1)
}

func (m *MockLikeRepository) Delete(ctx context.Context, reviewID, userID uuid.UUID) (bool, error) {
	args := m.Called(ctx, reviewID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockLikeRepository) Count(ctx context.Context, reviewID uuid.UUID) (int64, error) {
	args := m.Called(ctx, reviewID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLikeRepository) CountByReviews(ctx context.Context, reviewIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	args := m.Called(ctx, reviewIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uuid.UUID]int64), args.Error(1)
}

func (m *MockLikeRepository) LikedSet(ctx context.Context, reviewIDs []uuid.UUID, userID uuid.UUID) (map[uuid.UUID]bool, error) {
	args := m.Called(ctx, reviewIDs, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uuid.UUID]bool), args.Error(1)
}

// MockDetailsProvider is a mock implementation of place.DetailsProvider
type MockDetailsProvider struct {
	mock.Mock
}

var _ place.DetailsProvider = (*MockDetailsProvider)(nil)

func (m *MockDetailsProvider) PlaceDetails(ctx context.Context, placeID string) (*place.Details, error) {
	args := m.Called(ctx, placeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*place.Details), args.Error(1)
}

// MockNearbySearcher is a mock implementation of place.NearbySearcher
type MockNearbySearcher struct {
	mock.Mock
}

var _ place.NearbySearcher = (*MockNearbySearcher)(nil)

func (m *MockNearbySearcher) SearchNearby(ctx context.Context, q place.NearbyQuery) ([]place.NearbyPlace, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]place.NearbyPlace), args.Error(1)
}

// MockTokenBlacklist records revocations for assertions
type MockTokenBlacklist struct {
	mock.Mock
}

func (m *MockTokenBlacklist) AddToBlacklist(ctx context.Context, jti string, ttl time.Duration) error {
	args := m.Called(ctx, jti, ttl)
	return args.Error(0)
}

func (m *MockTokenBlacklist) IsBlacklisted(ctx context.Context, jti string) (bool, error) {
	args := m.Called(ctx, jti)
	return args.Bool(0), args.Error(1)
}
