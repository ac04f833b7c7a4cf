package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	appidentity "github.com/wayfarer/backend/internal/application/identity"
	appplace "github.com/wayfarer/backend/internal/application/place"
	"github.com/wayfarer/backend/internal/interfaces/http/dto"
	"github.com/wayfarer/backend/internal/interfaces/http/middleware"
)

const avatarFormField = "file"

// ProfileHandler serves profiles, onboarding and suggestions
type ProfileHandler struct {
	BaseHandler
	profileService *appidentity.ProfileService
	placeService   *appplace.PlaceService
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(profileService *appidentity.ProfileService, placeService *appplace.PlaceService) *ProfileHandler {
	return &ProfileHandler{
		profileService: profileService,
		placeService:   placeService,
	}
}

// GetProfile godoc
// @Summary      Get a user's public profile
// @Description  isFollowing is present when a signed-in viewer looks at someone else
// @Tags         profile
// @Produce      json
// @Param        id path string true "User ID" format(uuid)
// @Success      200 {object} APIResponse[ProfileResponse]
// @Failure      404 {object} ErrorResponse
// @Router       /profile/{id} [get]
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	userID, ok := h.pathID(c, "id", "User")
	if !ok {
		return
	}
	profile, err := h.profileService.GetProfile(c.Request.Context(), userID, middleware.GetUserID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toProfileResponse(profile))
}

// ListProfilePlaces godoc
// @Summary      List the places a user saved
// @Tags         profile
// @Produce      json
// @Param        id path string true "User ID" format(uuid)
// @Success      200 {object} APIResponse[[]SavedPlaceResponse]
// @Failure      404 {object} ErrorResponse
// @Router       /profile/{id}/places [get]
func (h *ProfileHandler) ListProfilePlaces(c *gin.Context) {
	userID, ok := h.pathID(c, "id", "User")
	if !ok {
		return
	}
	places, err := h.placeService.ListPlaces(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toSavedPlaceResponses(places))
}

// CheckUsername godoc
// @Summary      Check whether a username is free
// @Tags         profile
// @Produce      json
// @Param        username query string true "Candidate username"
// @Success      200 {object} APIResponse[UsernameAvailabilityResponse]
// @Failure      400 {object} ErrorResponse
// @Router       /profile/check-username [get]
func (h *ProfileHandler) CheckUsername(c *gin.Context) {
	var q CheckUsernameQuery
	if !h.BindQuery(c, &q) {
		return
	}
	available, err := h.profileService.CheckUsername(c.Request.Context(), q.Username)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, UsernameAvailabilityResponse{Available: available})
}

// UpdateName godoc
// @Summary      Change the display name
// @Tags         profile
// @Accept       json
// @Produce      json
// @Param        request body UpdateNameRequest true "New name"
// @Success      200 {object} APIResponse[UserResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /profile/update-name [post]
func (h *ProfileHandler) UpdateName(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}
	var req UpdateNameRequest
	if !h.BindJSON(c, &req) {
		return
	}
	user, err := h.profileService.UpdateName(c.Request.Context(), userID, req.Name)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toUserResponse(*user))
}

// UploadAvatar godoc
// @Summary      Upload a new avatar
// @Description  JPEG, PNG or WebP up to 5 MB, sent as the "file" form field
// @Tags         profile
// @Accept       multipart/form-data
// @Produce      json
// @Param        file formData file true "Avatar image"
// @Success      200 {object} APIResponse[UserResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      413 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /profile/avatar [post]
func (h *ProfileHandler) UploadAvatar(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}

	file, header, err := c.Request.FormFile(avatarFormField)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.Error(c, dto.ErrCodeRequestTooLarge, "Request body exceeds maximum allowed size")
			return
		}
		h.BadRequest(c, "Avatar file is required")
		return
	}
	defer file.Close()

	if header.Size > appidentity.MaxAvatarSize {
		h.Error(c, dto.ErrCodeRequestTooLarge, "Avatar cannot exceed 5 MB")
		return
	}
	// one extra byte lets the service see oversized streams
	data, err := io.ReadAll(io.LimitReader(file, appidentity.MaxAvatarSize+1))
	if err != nil {
		h.BadRequest(c, "Could not read avatar file")
		return
	}

	user, err := h.profileService.UploadAvatar(c.Request.Context(), appidentity.AvatarInput{
		UserID:      userID,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toUserResponse(*user))
}

// CompleteOnboarding godoc
// @Summary      Store interests and finish onboarding
// @Tags         onboarding
// @Accept       json
// @Produce      json
// @Param        request body OnboardingRequest true "Chosen interests"
// @Success      200 {object} APIResponse[UserResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /onboarding [post]
func (h *ProfileHandler) CompleteOnboarding(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}
	var req OnboardingRequest
	if !h.BindJSON(c, &req) {
		return
	}
	user, err := h.profileService.CompleteOnboarding(c.Request.Context(), userID, req.Interests)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toUserResponse(*user))
}

// ListInterests godoc
// @Summary      List the onboarding interest catalog
// @Tags         onboarding
// @Produce      json
// @Success      200 {object} APIResponse[[]InterestResponse]
// @Router       /onboarding/interests [get]
func (h *ProfileHandler) ListInterests(c *gin.Context) {
	interests := h.profileService.ListInterests()
	out := make([]InterestResponse, len(interests))
	for i, in := range interests {
		out[i] = InterestResponse{ID: in.ID, Label: in.Label}
	}
	h.Success(c, out)
}

// SuggestUsers godoc
// @Summary      Suggest users to follow
// @Description  Ranked by shared interests. Without the interests parameter the caller's own interests are used.
// @Tags         users
// @Produce      json
// @Param        interests query string false "Comma separated interest ids"
// @Param        limit query int false "Maximum results (1-50)"
// @Success      200 {object} APIResponse[[]SuggestionResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /users/suggestions [get]
func (h *ProfileHandler) SuggestUsers(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}
	var q SuggestionsQuery
	if !h.BindQuery(c, &q) {
		return
	}
	suggestions, err := h.profileService.SuggestUsers(c.Request.Context(), userID, q.interestList(), q.Limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toSuggestionResponses(suggestions))
}
