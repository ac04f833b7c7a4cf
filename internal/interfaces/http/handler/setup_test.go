package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	appfeed "github.com/wayfarer/backend/internal/application/feed"
	appidentity "github.com/wayfarer/backend/internal/application/identity"
	appplace "github.com/wayfarer/backend/internal/application/place"
	appreview "github.com/wayfarer/backend/internal/application/review"
	appsocial "github.com/wayfarer/backend/internal/application/social"
	"github.com/wayfarer/backend/internal/domain/identity"
	"github.com/wayfarer/backend/internal/infrastructure/auth"
	"github.com/wayfarer/backend/internal/infrastructure/config"
	"github.com/wayfarer/backend/internal/infrastructure/storage"
	"github.com/wayfarer/backend/internal/interfaces/http/dto"
	"github.com/wayfarer/backend/internal/interfaces/http/middleware"
	"github.com/wayfarer/backend/tests/testutil"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
	if err := middleware.SetupValidator(); err != nil {
		panic(err)
	}
}

const testPassword = "Secr3tPassw0rd"

// handlerEnv wires real application services over repository mocks and
// mounts every handler on one engine.
type handlerEnv struct {
	users     *testutil.MockUserRepository
	follows   *testutil.MockFollowRepository
	places    *testutil.MockSavedPlaceRepository
	reviews   *testutil.MockReviewRepository
	likes     *testutil.MockLikeRepository
	details   *testutil.MockDetailsProvider
	nearby    *testutil.MockNearbySearcher
	avatars   *storage.StubObjectStorage
	jwt       *auth.JWTService
	blacklist *auth.InMemoryTokenBlacklist
	engine    *gin.Engine
}

func newHandlerEnv(t *testing.T) *handlerEnv {
	t.Helper()
	log := zap.NewNop()
	env := &handlerEnv{
		users:   new(testutil.MockUserRepository),
		follows: new(testutil.MockFollowRepository),
		places:  new(testutil.MockSavedPlaceRepository),
		reviews: new(testutil.MockReviewRepository),
		likes:   new(testutil.MockLikeRepository),
		details: new(testutil.MockDetailsProvider),
		nearby:  new(testutil.MockNearbySearcher),
		avatars: storage.NewStubObjectStorage(),
		jwt: auth.NewJWTService(config.JWTConfig{
			Secret:                 "test-secret-key-32-characters-long",
			RefreshSecret:          "test-refresh-secret-32-characters",
			Issuer:                 "wayfarer-test",
			AccessTokenExpiration:  15 * time.Minute,
			RefreshTokenExpiration: 24 * time.Hour,
		}),
		blacklist: auth.NewInMemoryTokenBlacklist(),
	}

	authSvc := appidentity.NewAuthService(env.users, env.jwt, env.blacklist, log)
	profileSvc := appidentity.NewProfileService(env.users, env.follows, env.places, env.avatars, log)
	followSvc := appsocial.NewFollowService(env.follows, env.users, nil, log)
	placeSvc := appplace.NewPlaceService(env.places, env.details, env.nearby, nil, log)
	feeds := appfeed.NewService(env.follows, env.reviews, env.likes, env.users, env.details, appfeed.DefaultConfig(), nil, log)
	reviewSvc := appreview.NewReviewService(env.reviews, env.likes, feeds, nil, log)

	authH := NewAuthHandler(authSvc, profileSvc)
	profileH := NewProfileHandler(profileSvc, placeSvc)
	followH := NewFollowHandler(followSvc)
	placeH := NewPlaceHandler(placeSvc)
	reviewH := NewReviewHandler(reviewSvc)

	jwtCfg := middleware.JWTMiddlewareConfig{JWTService: env.jwt, Revocations: authSvc, Logger: log}
	e := gin.New()
	e.Use(middleware.RequestID(), middleware.OptionalJWTAuthMiddleware(jwtCfg))

	a := e.Group("/auth")
	a.POST("/register", authH.Register)
	a.POST("/login", authH.Login)
	a.POST("/refresh", authH.RefreshToken)
	a.POST("/logout", authH.Logout)
	a.GET("/me", authH.GetCurrentUser)

	p := e.Group("/profile")
	p.GET("/check-username", profileH.CheckUsername)
	p.POST("/update-name", profileH.UpdateName)
	p.POST("/avatar", profileH.UploadAvatar)
	p.GET("/:id", profileH.GetProfile)
	p.GET("/:id/places", profileH.ListProfilePlaces)

	e.POST("/onboarding", profileH.CompleteOnboarding)
	e.GET("/onboarding/interests", profileH.ListInterests)

	u := e.Group("/users")
	u.GET("/suggestions", profileH.SuggestUsers)
	u.POST("/:id/follow", followH.Follow)
	u.DELETE("/:id/follow", followH.Unfollow)
	u.GET("/:id/follow-status", followH.FollowStatus)
	u.GET("/:id/followers", followH.ListFollowers)
	u.GET("/:id/following", followH.ListFollowing)

	pl := e.Group("/places")
	pl.GET("/nearby", placeH.SearchNearby)
	pl.GET("/saved", placeH.IsPlaceSaved)
	pl.POST("", placeH.SavePlace)
	pl.GET("", placeH.ListPlaces)
	pl.GET("/:placeId/details", placeH.GetPlaceDetails)
	pl.DELETE("/:placeId/saved/:id", placeH.DeleteSavedPlace)
	pl.GET("/:placeId/reviews", reviewH.PlaceReviews)
	pl.GET("/:placeId/review", reviewH.GetMyReview)
	pl.POST("/:placeId/review", reviewH.SubmitReview)

	r := e.Group("/reviews")
	r.GET("/user", reviewH.ListMyReviews)
	r.GET("/following", reviewH.FollowingFeed)
	r.GET("/:id", reviewH.GetReview)
	r.DELETE("/:id", reviewH.DeleteReview)
	r.POST("/:id/like", reviewH.LikeReview)
	r.DELETE("/:id/like", reviewH.UnlikeReview)

	env.engine = e
	return env
}

// tokenFor issues an access token for userID
func (env *handlerEnv) tokenFor(t *testing.T, userID uuid.UUID) string {
	t.Helper()
	pair, err := env.jwt.GenerateTokenPair(userID, "tester")
	require.NoError(t, err)
	return pair.AccessToken
}

// do sends a request. body may be nil, a []byte or a value encoded as JSON.
func (env *handlerEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case []byte:
		reader = bytes.NewReader(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	env.engine.ServeHTTP(w, req)
	return w
}

func (env *handlerEnv) assertExpectations(t *testing.T) {
	t.Helper()
	env.users.AssertExpectations(t)
	env.follows.AssertExpectations(t)
	env.places.AssertExpectations(t)
	env.reviews.AssertExpectations(t)
	env.likes.AssertExpectations(t)
	env.details.AssertExpectations(t)
	env.nearby.AssertExpectations(t)
}

// envelope decodes a response with its data into T
type envelope[T any] struct {
	Success bool           `json:"success"`
	Data    T              `json:"data"`
	Error   *dto.ErrorInfo `json:"error"`
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) envelope[T] {
	t.Helper()
	var env envelope[T]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

// requireError checks status and envelope code of a failed response
func requireError(t *testing.T, w *httptest.ResponseRecorder, status int, code string) *dto.ErrorInfo {
	t.Helper()
	require.Equal(t, status, w.Code, w.Body.String())
	resp := decode[json.RawMessage](t, w)
	require.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	require.Equal(t, code, resp.Error.Code)
	return resp.Error
}

func newTestUser(t *testing.T, email, name, username string) *identity.User {
	t.Helper()
	u, err := identity.NewUser(email, testPassword, name, username)
	require.NoError(t, err)
	return u
}
