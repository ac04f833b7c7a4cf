package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/wayfarer/backend/internal/domain/shared"
	"github.com/wayfarer/backend/internal/interfaces/http/dto"
)

func TestAuthHandler_Register(t *testing.T) {
	t.Run("creates the account and signs in", func(t *testing.T) {
		env := newHandlerEnv(t)
		env.users.On("ExistsByEmail", mock.Anything, "ada@example.com").Return(false, nil)
		env.users.On("ExistsByUsername", mock.Anything, "ada").Return(false, nil)
		env.users.On("Create", mock.Anything, mock.AnythingOfType("*identity.User")).Return(nil)

		w := env.do(t, http.MethodPost, "/auth/register", "", RegisterRequest{
			Email:    "Ada@Example.com",
			Password: testPassword,
			Name:     "Ada Lovelace",
			Username: "ada",
		})

		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		resp := decode[AuthResponse](t, w)
		assert.True(t, resp.Success)
		assert.NotEmpty(t, resp.Data.Token.AccessToken)
		assert.NotEmpty(t, resp.Data.Token.RefreshToken)
		assert.Equal(t, "Bearer", resp.Data.Token.TokenType)
		assert.Equal(t, "ada@example.com", resp.Data.User.Email)
		assert.Equal(t, "ada", resp.Data.User.Username)
		assert.False(t, resp.Data.User.OnboardingCompleted)
		env.assertExpectations(t)
	})

	t.Run("reports field errors", func(t *testing.T) {
		env := newHandlerEnv(t)

		w := env.do(t, http.MethodPost, "/auth/register", "", map[string]string{
			"email": "not-an-email",
			"name":  "Ada",
		})

		info := requireError(t, w, http.StatusBadRequest, dto.ErrCodeValidation)
		fields := make([]string, 0, len(info.Details))
		for _, d := range info.Details {
			fields = append(fields, d.Field)
		}
		assert.ElementsMatch(t, []string{"email", "password"}, fields)
		env.users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("rejects an invalid username", func(t *testing.T) {
		env := newHandlerEnv(t)

		w := env.do(t, http.MethodPost, "/auth/register", "", RegisterRequest{
			Email:    "ada@example.com",
			Password: testPassword,
			Name:     "Ada",
			Username: "a!",
		})

		info := requireError(t, w, http.StatusBadRequest, dto.ErrCodeValidation)
		require.Len(t, info.Details, 1)
		assert.Equal(t, "username", info.Details[0].Field)
	})

	t.Run("duplicate email conflicts", func(t *testing.T) {
		env := newHandlerEnv(t)
		env.users.On("ExistsByEmail", mock.Anything, "ada@example.com").Return(true, nil)

		w := env.do(t, http.MethodPost, "/auth/register", "", RegisterRequest{
			Email:    "ada@example.com",
			Password: testPassword,
			Name:     "Ada",
		})

		info := requireError(t, w, http.StatusConflict, dto.ErrCodeConflict)
		assert.Equal(t, "Email is already registered", info.Message)
		assert.NotEmpty(t, info.RequestID)
	})
}

func TestAuthHandler_Login(t *testing.T) {
	user := newTestUser(t, "ada@example.com", "Ada", "ada")

	t.Run("by username", func(t *testing.T) {
		env := newHandlerEnv(t)
		env.users.On("FindByUsername", mock.Anything, "ada").Return(user, nil)

		w := env.do(t, http.MethodPost, "/auth/login", "", LoginRequest{Identifier: "ada", Password: testPassword})

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		resp := decode[AuthResponse](t, w)
		assert.Equal(t, user.ID, resp.Data.User.ID)
		env.assertExpectations(t)
	})

	t.Run("email alias", func(t *testing.T) {
		env := newHandlerEnv(t)
		env.users.On("FindByEmail", mock.Anything, "ada@example.com").Return(user, nil)

		w := env.do(t, http.MethodPost, "/auth/login", "", LoginRequest{Email: "ada@example.com", Password: testPassword})

		assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
	})

	t.Run("wrong password", func(t *testing.T) {
		env := newHandlerEnv(t)
		env.users.On("FindByEmail", mock.Anything, "ada@example.com").Return(user, nil)

		w := env.do(t, http.MethodPost, "/auth/login", "", LoginRequest{Identifier: "ada@example.com", Password: "wrong-passw0rd"})

		requireError(t, w, http.StatusUnauthorized, dto.ErrCodeUnauthorized)
	})

	t.Run("unknown account looks like a wrong password", func(t *testing.T) {
		env := newHandlerEnv(t)
		env.users.On("FindByUsername", mock.Anything, "ghost").Return(nil, shared.ErrNotFound)

		w := env.do(t, http.MethodPost, "/auth/login", "", LoginRequest{Identifier: "ghost", Password: testPassword})

		info := requireError(t, w, http.StatusUnauthorized, dto.ErrCodeUnauthorized)
		assert.Equal(t, "Invalid email/username or password", info.Message)
	})

	t.Run("missing identifier", func(t *testing.T) {
		env := newHandlerEnv(t)

		w := env.do(t, http.MethodPost, "/auth/login", "", LoginRequest{Password: testPassword})

		requireError(t, w, http.StatusBadRequest, dto.ErrCodeInvalidInput)
	})

	t.Run("malformed body", func(t *testing.T) {
		env := newHandlerEnv(t)

		w := env.do(t, http.MethodPost, "/auth/login", "", []byte(`{"identifier":`))

		info := requireError(t, w, http.StatusBadRequest, dto.ErrCodeInvalidInput)
		assert.Equal(t, "Invalid request body", info.Message)
	})
}

func TestAuthHandler_RefreshToken(t *testing.T) {
	user := newTestUser(t, "ada@example.com", "Ada", "ada")
	env := newHandlerEnv(t)
	env.users.On("FindByID", mock.Anything, user.ID).Return(user, nil)

	pair, err := env.jwt.GenerateTokenPair(user.ID, user.Username)
	require.NoError(t, err)

	w := env.do(t, http.MethodPost, "/auth/refresh", "", RefreshTokenRequest{RefreshToken: pair.RefreshToken})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode[AuthResponse](t, w)
	assert.NotEqual(t, pair.RefreshToken, resp.Data.Token.RefreshToken)

	// a rotated refresh token cannot be replayed
	w = env.do(t, http.MethodPost, "/auth/refresh", "", RefreshTokenRequest{RefreshToken: pair.RefreshToken})
	requireError(t, w, http.StatusUnauthorized, dto.ErrCodeUnauthorized)

	// an access token is not a refresh token
	w = env.do(t, http.MethodPost, "/auth/refresh", "", RefreshTokenRequest{RefreshToken: pair.AccessToken})
	requireError(t, w, http.StatusUnauthorized, dto.ErrCodeUnauthorized)
}

func TestAuthHandler_MeAndLogout(t *testing.T) {
	user := newTestUser(t, "ada@example.com", "Ada", "ada")
	require.NoError(t, user.CompleteOnboarding([]string{"museum", "park"}))
	env := newHandlerEnv(t)
	env.users.On("FindByID", mock.Anything, user.ID).Return(user, nil)
	token := env.tokenFor(t, user.ID)

	w := env.do(t, http.MethodGet, "/auth/me", "", nil)
	requireError(t, w, http.StatusUnauthorized, dto.ErrCodeUnauthorized)

	w = env.do(t, http.MethodGet, "/auth/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	me := decode[UserResponse](t, w)
	assert.Equal(t, user.ID, me.Data.ID)
	assert.Equal(t, []string{"museum", "park"}, me.Data.Interests)
	assert.True(t, me.Data.OnboardingCompleted)

	w = env.do(t, http.MethodPost, "/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// the revoked token no longer authenticates
	w = env.do(t, http.MethodGet, "/auth/me", token, nil)
	requireError(t, w, http.StatusUnauthorized, dto.ErrCodeUnauthorized)
}
