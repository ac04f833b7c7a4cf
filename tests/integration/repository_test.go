package integration

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wayfarer/backend/internal/domain/identity"
	"github.com/wayfarer/backend/internal/domain/place"
	"github.com/wayfarer/backend/internal/domain/review"
	"github.com/wayfarer/backend/internal/domain/shared"
	"github.com/wayfarer/backend/internal/domain/social"
	"github.com/wayfarer/backend/internal/infrastructure/persistence"
	"golang.org/x/sync/errgroup"
)

func createUser(t *testing.T, tdb *TestDB, name string) *identity.User {
	t.Helper()
	u, err := identity.NewUser(name+"@example.com", "correct-horse-battery", name, name)
	require.NoError(t, err)
	require.NoError(t, persistence.NewGormUserRepository(tdb.DB).Create(context.Background(), u))
	return u
}

func TestUserRepository_UniqueEmail(t *testing.T) {
	tdb := NewTestDB(t)
	ctx := context.Background()
	repo := persistence.NewGormUserRepository(tdb.DB)

	createUser(t, tdb, "ada")
	dup, err := identity.NewUser("ada@example.com", "correct-horse-battery", "Ada Again", "")
	require.NoError(t, err)

	err = repo.Create(ctx, dup)
	assert.True(t, shared.IsCode(err, shared.CodeConflict), "got %v", err)
}

func TestReviewRepository_ConcurrentUpsertKeepsOneRow(t *testing.T) {
	tdb := NewTestDB(t)
	ctx := context.Background()
	repo := persistence.NewGormReviewRepository(tdb.DB)
	author := createUser(t, tdb, "grace")

	const writers = 16
	var g errgroup.Group
	for i := 0; i < writers; i++ {
		rating := float64(i%5 + 1)
		text := fmt.Sprintf("visit %d", i)
		g.Go(func() error {
			rv, err := review.NewReview(author.ID, "ChIJconcurrent", rating, text)
			if err != nil {
				return err
			}
			_, err = repo.Upsert(ctx, rv)
			return err
		})
	}
	require.NoError(t, g.Wait())

	var rows int64
	require.NoError(t, tdb.DB.Table("place_reviews").
		Where("user_id = ? AND place_id = ?", author.ID, "ChIJconcurrent").
		Count(&rows).Error)
	assert.Equal(t, int64(1), rows)

	stored, err := repo.FindByUserAndPlace(ctx, author.ID, "ChIJconcurrent")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, stored.Rating, review.MinRating)
	assert.LessOrEqual(t, stored.Rating, review.MaxRating)
}

func TestReviewRepository_UpsertKeepsIdentity(t *testing.T) {
	tdb := NewTestDB(t)
	ctx := context.Background()
	repo := persistence.NewGormReviewRepository(tdb.DB)
	author := createUser(t, tdb, "linus")

	first, err := review.NewReview(author.ID, "ChIJsame", 2, "Meh")
	require.NoError(t, err)
	created, err := repo.Upsert(ctx, first)
	require.NoError(t, err)

	second, err := review.NewReview(author.ID, "ChIJsame", 5, "Much better now")
	require.NoError(t, err)
	updated, err := repo.Upsert(ctx, second)
	require.NoError(t, err)

	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, 5, updated.Rating)
	assert.Equal(t, "Much better now", updated.Text)
	assert.False(t, updated.UpdatedAt.Before(created.UpdatedAt))

	summary, err := repo.SummarizePlace(ctx, "ChIJsame")
	require.NoError(t, err)
	assert.Equal(t, int64(1), summary.Count)
	assert.Equal(t, int64(5), summary.RatingSum)
}

func TestReviewRepository_FeedOrdering(t *testing.T) {
	tdb := NewTestDB(t)
	ctx := context.Background()
	repo := persistence.NewGormReviewRepository(tdb.DB)
	b := createUser(t, tdb, "bea")
	c := createUser(t, tdb, "cy")
	outsider := createUser(t, tdb, "dee")

	base := time.Now().UTC().Add(-time.Hour)
	for i, tc := range []struct {
		author *identity.User
		place  string
	}{
		{b, "p1"}, {c, "p2"}, {outsider, "p3"}, {b, "p4"},
	} {
		rv, err := review.NewReview(tc.author.ID, tc.place, 4, "Worth it")
		require.NoError(t, err)
		rv.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		rv.UpdatedAt = rv.CreatedAt
		_, err = repo.Upsert(ctx, rv)
		require.NoError(t, err)
	}

	feed, err := repo.FindByUsers(ctx, []uuid.UUID{b.ID, c.ID, b.ID})
	require.NoError(t, err)
	require.Len(t, feed, 3)
	assert.Equal(t, []string{"p4", "p2", "p1"}, []string{feed[0].PlaceID, feed[1].PlaceID, feed[2].PlaceID})

	empty, err := repo.FindByUsers(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestFollowRepository_Constraints(t *testing.T) {
	tdb := NewTestDB(t)
	ctx := context.Background()
	repo := persistence.NewGormFollowRepository(tdb.DB)
	a := createUser(t, tdb, "alan")
	b := createUser(t, tdb, "barbara")

	edge, err := social.NewFollowEdge(a.ID, b.ID)
	require.NoError(t, err)
	created, err := repo.Create(ctx, edge)
	require.NoError(t, err)
	assert.True(t, created)

	again, err := social.NewFollowEdge(a.ID, b.ID)
	require.NoError(t, err)
	created, err = repo.Create(ctx, again)
	require.NoError(t, err)
	assert.False(t, created, "repeated follow is a no-op")

	n, err := repo.CountFollowers(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	t.Run("self follow rejected by schema", func(t *testing.T) {
		self := &social.FollowEdge{ID: uuid.New(), FollowerID: a.ID, FollowingID: a.ID, CreatedAt: time.Now().UTC()}
		_, err := repo.Create(ctx, self)
		assert.True(t, shared.IsCode(err, shared.CodeValidation), "got %v", err)
	})

	t.Run("unknown target", func(t *testing.T) {
		ghost, err := social.NewFollowEdge(a.ID, uuid.New())
		require.NoError(t, err)
		_, err = repo.Create(ctx, ghost)
		assert.True(t, shared.IsCode(err, shared.CodeNotFound), "got %v", err)
	})

	t.Run("deleting a user cascades edges", func(t *testing.T) {
		require.NoError(t, tdb.DB.Exec("DELETE FROM users WHERE id = ?", b.ID).Error)
		n, err := repo.CountFollowing(ctx, a.ID)
		require.NoError(t, err)
		assert.Zero(t, n)
	})
}

func TestSavedPlaceRepository_PartialUniqueIndex(t *testing.T) {
	tdb := NewTestDB(t)
	ctx := context.Background()
	repo := persistence.NewGormSavedPlaceRepository(tdb.DB)
	owner := createUser(t, tdb, "mary")

	save := func(placeID string) error {
		sp, err := place.NewSavedPlace(owner.ID, place.SavedPlaceInput{
			Name:             "Tate Modern",
			FormattedAddress: "Bankside, London",
			Latitude:         51.5076,
			Longitude:        -0.0994,
			PlaceID:          placeID,
		})
		require.NoError(t, err)
		return repo.Create(ctx, sp)
	}

	require.NoError(t, save("ChIJtate"))
	err := save("ChIJtate")
	assert.True(t, shared.IsCode(err, shared.CodeConflict), "got %v", err)

	// map clicks without a provider id never collide
	require.NoError(t, save(""))
	require.NoError(t, save(""))

	n, err := repo.CountByUser(ctx, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	exists, err := repo.ExistsForUser(ctx, owner.ID, "ChIJtate")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestLikeRepository_Lifecycle(t *testing.T) {
	tdb := NewTestDB(t)
	ctx := context.Background()
	reviews := persistence.NewGormReviewRepository(tdb.DB)
	likes := persistence.NewGormLikeRepository(tdb.DB)
	author := createUser(t, tdb, "katherine")
	fan := createUser(t, tdb, "dorothy")

	rv, err := review.NewReview(author.ID, "ChIJliked", 5, "Superb")
	require.NoError(t, err)
	stored, err := reviews.Upsert(ctx, rv)
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		like, err := review.NewLike(stored.ID, fan.ID)
		require.NoError(t, err)
		created, err := likes.Create(ctx, like)
		require.NoError(t, err)
		assert.Equal(t, i == 0, created)
	}

	counts, err := likes.CountByReviews(ctx, []uuid.UUID{stored.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts[stored.ID])

	liked, err := likes.LikedSet(ctx, []uuid.UUID{stored.ID}, fan.ID)
	require.NoError(t, err)
	assert.True(t, liked[stored.ID])

	orphan, err := review.NewLike(uuid.New(), fan.ID)
	require.NoError(t, err)
	_, err = likes.Create(ctx, orphan)
	assert.True(t, shared.IsCode(err, shared.CodeNotFound), "got %v", err)

	require.NoError(t, reviews.Delete(ctx, stored.ID))
	n, err := likes.Count(ctx, stored.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
}
