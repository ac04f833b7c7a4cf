package handler

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/wayfarer/backend/internal/domain/identity"
	"github.com/wayfarer/backend/internal/domain/place"
	"github.com/wayfarer/backend/internal/domain/shared"
	"github.com/wayfarer/backend/internal/interfaces/http/dto"
)

var testPNG = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func expectProfileCounts(env *handlerEnv, userID uuid.UUID, followers, following, places int64) {
	env.follows.On("CountFollowers", mock.Anything, userID).Return(followers, nil)
	env.follows.On("CountFollowing", mock.Anything, userID).Return(following, nil)
	env.places.On("CountByUser", mock.Anything, userID).Return(places, nil)
}

func TestProfileHandler_GetProfile(t *testing.T) {
	user := newTestUser(t, "bo@example.com", "Bo", "bo")
	require.NoError(t, user.CompleteOnboarding([]string{"cafe"}))

	t.Run("anonymous viewer", func(t *testing.T) {
		env := newHandlerEnv(t)
		env.users.On("FindByID", mock.Anything, user.ID).Return(user, nil)
		expectProfileCounts(env, user.ID, 3, 2, 5)

		w := env.do(t, http.MethodGet, "/profile/"+user.ID.String(), "", nil)

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		resp := decode[ProfileResponse](t, w)
		assert.Equal(t, user.ID, resp.Data.User.ID)
		assert.Equal(t, "bo", resp.Data.User.Username)
		assert.Equal(t, []string{"cafe"}, resp.Data.Interests)
		assert.True(t, resp.Data.OnboardingCompleted)
		assert.EqualValues(t, 3, resp.Data.FollowersCount)
		assert.EqualValues(t, 2, resp.Data.FollowingCount)
		assert.EqualValues(t, 5, resp.Data.PlacesCount)
		assert.Nil(t, resp.Data.IsFollowing)
		assert.NotContains(t, w.Body.String(), "isFollowing")
		env.assertExpectations(t)
	})

	t.Run("signed-in viewer sees follow state", func(t *testing.T) {
		env := newHandlerEnv(t)
		viewer := uuid.New()
		env.users.On("FindByID", mock.Anything, user.ID).Return(user, nil)
		expectProfileCounts(env, user.ID, 1, 0, 0)
		env.follows.On("Exists", mock.Anything, viewer, user.ID).Return(true, nil)

		w := env.do(t, http.MethodGet, "/profile/"+user.ID.String(), env.tokenFor(t, viewer), nil)

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		resp := decode[ProfileResponse](t, w)
		require.NotNil(t, resp.Data.IsFollowing)
		assert.True(t, *resp.Data.IsFollowing)
		env.assertExpectations(t)
	})

	t.Run("own profile has no follow state", func(t *testing.T) {
		env := newHandlerEnv(t)
		env.users.On("FindByID", mock.Anything, user.ID).Return(user, nil)
		expectProfileCounts(env, user.ID, 0, 0, 0)

		w := env.do(t, http.MethodGet, "/profile/"+user.ID.String(), env.tokenFor(t, user.ID), nil)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Nil(t, decode[ProfileResponse](t, w).Data.IsFollowing)
		env.follows.AssertNotCalled(t, "Exists", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unknown user", func(t *testing.T) {
		env := newHandlerEnv(t)
		missing := uuid.New()
		env.users.On("FindByID", mock.Anything, missing).Return(nil, shared.ErrNotFound)

		w := env.do(t, http.MethodGet, "/profile/"+missing.String(), "", nil)

		info := requireError(t, w, http.StatusNotFound, dto.ErrCodeNotFound)
		assert.Equal(t, "User not found", info.Message)
	})

	t.Run("malformed id", func(t *testing.T) {
		env := newHandlerEnv(t)

		w := env.do(t, http.MethodGet, "/profile/abc", "", nil)

		requireError(t, w, http.StatusNotFound, dto.ErrCodeNotFound)
	})
}

func TestProfileHandler_ListProfilePlaces(t *testing.T) {
	env := newHandlerEnv(t)
	owner := uuid.New()
	sp, err := place.NewSavedPlace(owner, place.SavedPlaceInput{
		Name:             "Reading Terminal Market",
		FormattedAddress: "51 N 12th St, Philadelphia, PA",
		Latitude:         39.9533,
		Longitude:        -75.1594,
		PlaceID:          "ChIJ-market",
	})
	require.NoError(t, err)
	env.places.On("FindByUser", mock.Anything, owner).Return([]*place.SavedPlace{sp}, nil)

	w := env.do(t, http.MethodGet, "/profile/"+owner.String()+"/places", "", nil)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode[[]SavedPlaceResponse](t, w)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "ChIJ-market", resp.Data[0].PlaceID)
	assert.Equal(t, owner, resp.Data[0].UserID)
}

func TestProfileHandler_CheckUsername(t *testing.T) {
	env := newHandlerEnv(t)
	env.users.On("ExistsByUsername", mock.Anything, "taken").Return(true, nil)
	env.users.On("ExistsByUsername", mock.Anything, "free").Return(false, nil)

	tests := []struct {
		query     string
		available bool
	}{
		{"taken", false},
		{"FREE", true},
		{"no!", false},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			w := env.do(t, http.MethodGet, "/profile/check-username?username="+tt.query, "", nil)
			require.Equal(t, http.StatusOK, w.Code, w.Body.String())
			assert.Equal(t, tt.available, decode[UsernameAvailabilityResponse](t, w).Data.Available)
		})
	}

	t.Run("missing parameter", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/profile/check-username", "", nil)
		info := requireError(t, w, http.StatusBadRequest, dto.ErrCodeValidation)
		assert.Equal(t, "Username parameter required", info.Message)
	})
}

func TestProfileHandler_UpdateName(t *testing.T) {
	user := newTestUser(t, "bo@example.com", "Bo", "bo")
	env := newHandlerEnv(t)
	env.users.On("FindByID", mock.Anything, user.ID).Return(user, nil)
	env.users.On("Update", mock.Anything, user).Return(nil)
	token := env.tokenFor(t, user.ID)

	w := env.do(t, http.MethodPost, "/profile/update-name", token, UpdateNameRequest{Name: "  Bo Diddley "})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Bo Diddley", decode[UserResponse](t, w).Data.Name)

	w = env.do(t, http.MethodPost, "/profile/update-name", token, UpdateNameRequest{Name: strings.Repeat("x", 101)})
	requireError(t, w, http.StatusBadRequest, dto.ErrCodeValidation)

	w = env.do(t, http.MethodPost, "/profile/update-name", "", UpdateNameRequest{Name: "Anon"})
	requireError(t, w, http.StatusUnauthorized, dto.ErrCodeUnauthorized)
}

func TestProfileHandler_Onboarding(t *testing.T) {
	t.Run("completes with catalog interests", func(t *testing.T) {
		user := newTestUser(t, "bo@example.com", "Bo", "bo")
		env := newHandlerEnv(t)
		env.users.On("FindByID", mock.Anything, user.ID).Return(user, nil)
		env.users.On("Update", mock.Anything, user).Return(nil)

		w := env.do(t, http.MethodPost, "/onboarding", env.tokenFor(t, user.ID), OnboardingRequest{
			Interests: []string{"museum", "park", "museum"},
		})

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		resp := decode[UserResponse](t, w)
		assert.True(t, resp.Data.OnboardingCompleted)
		assert.Equal(t, []string{"museum", "park"}, resp.Data.Interests)
	})

	t.Run("unknown interest", func(t *testing.T) {
		env := newHandlerEnv(t)

		w := env.do(t, http.MethodPost, "/onboarding", env.tokenFor(t, uuid.New()), OnboardingRequest{
			Interests: []string{"skydiving"},
		})

		info := requireError(t, w, http.StatusBadRequest, dto.ErrCodeValidation)
		require.Len(t, info.Details, 1)
		assert.Equal(t, "Unknown interest", info.Details[0].Message)
		env.users.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("interest catalog", func(t *testing.T) {
		env := newHandlerEnv(t)

		w := env.do(t, http.MethodGet, "/onboarding/interests", "", nil)

		require.Equal(t, http.StatusOK, w.Code)
		resp := decode[[]InterestResponse](t, w)
		assert.Len(t, resp.Data, len(identity.Interests()))
		assert.Contains(t, resp.Data, InterestResponse{ID: "museum", Label: "Museums"})
	})
}

func TestProfileHandler_SuggestUsers(t *testing.T) {
	me := newTestUser(t, "me@example.com", "Me", "me")
	one := newTestUser(t, "one@example.com", "One", "one")
	require.NoError(t, one.CompleteOnboarding([]string{"museum"}))
	two := newTestUser(t, "two@example.com", "Two", "two")
	require.NoError(t, two.CompleteOnboarding([]string{"museum", "park"}))

	env := newHandlerEnv(t)
	env.users.On("FindSuggestionCandidates", mock.Anything, me.ID, 10).
		Return([]*identity.User{one, two}, nil)

	w := env.do(t, http.MethodGet, "/users/suggestions?interests=museum,park&limit=2", env.tokenFor(t, me.ID), nil)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode[[]SuggestionResponse](t, w)
	require.Len(t, resp.Data, 2)
	assert.Equal(t, two.ID, resp.Data[0].ID)
	assert.Equal(t, 2, resp.Data[0].SharedInterests)
	assert.Equal(t, one.ID, resp.Data[1].ID)
	env.assertExpectations(t)

	w = env.do(t, http.MethodGet, "/users/suggestions?limit=500", env.tokenFor(t, me.ID), nil)
	requireError(t, w, http.StatusBadRequest, dto.ErrCodeValidation)
}

func avatarRequest(t *testing.T, token string, data []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile(avatarFormField, "me.png")
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/profile/avatar", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestProfileHandler_UploadAvatar(t *testing.T) {
	t.Run("stores the image and updates the user", func(t *testing.T) {
		user := newTestUser(t, "bo@example.com", "Bo", "bo")
		env := newHandlerEnv(t)
		env.users.On("FindByID", mock.Anything, user.ID).Return(user, nil)
		env.users.On("Update", mock.Anything, user).Return(nil)

		w := httptest.NewRecorder()
		env.engine.ServeHTTP(w, avatarRequest(t, env.tokenFor(t, user.ID), testPNG))

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		image := decode[UserResponse](t, w).Data.Image
		assert.True(t, strings.HasPrefix(image, env.avatars.BaseURL+"/avatars/"+user.ID.String()+"/"), image)
		assert.Equal(t, 1, env.avatars.Len())
	})

	t.Run("rejects non-images", func(t *testing.T) {
		env := newHandlerEnv(t)

		w := httptest.NewRecorder()
		env.engine.ServeHTTP(w, avatarRequest(t, env.tokenFor(t, uuid.New()), []byte("plain text, not an image")))

		requireError(t, w, http.StatusBadRequest, dto.ErrCodeValidation)
		assert.Equal(t, 0, env.avatars.Len())
	})

	t.Run("missing file", func(t *testing.T) {
		env := newHandlerEnv(t)

		w := env.do(t, http.MethodPost, "/profile/avatar", env.tokenFor(t, uuid.New()), nil)

		requireError(t, w, http.StatusBadRequest, dto.ErrCodeInvalidInput)
	})
}
