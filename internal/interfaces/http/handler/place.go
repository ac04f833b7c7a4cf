package handler

import (
	"github.com/gin-gonic/gin"
	appplace "github.com/wayfarer/backend/internal/application/place"
	"github.com/wayfarer/backend/internal/domain/place"
)

// PlaceHandler serves saved places and the place provider proxy
type PlaceHandler struct {
	BaseHandler
	placeService *appplace.PlaceService
}

// NewPlaceHandler creates a new place handler
func NewPlaceHandler(placeService *appplace.PlaceService) *PlaceHandler {
	return &PlaceHandler{placeService: placeService}
}

// SearchNearby godoc
// @Summary      Search places near a point
// @Description  Defaults to Philadelphia City Hall, 5 km and tourist attractions
// @Tags         places
// @Produce      json
// @Param        location query string false "lat,lng"
// @Param        radius query int false "Radius in meters (1-50000)"
// @Param        type query string false "Provider place type"
// @Success      200 {object} APIResponse[[]place.NearbyPlace]
// @Failure      400 {object} ErrorResponse
// @Failure      502 {object} ErrorResponse
// @Router       /places/nearby [get]
func (h *PlaceHandler) SearchNearby(c *gin.Context) {
	var q NearbySearchQuery
	if !h.BindQuery(c, &q) {
		return
	}
	results, err := h.placeService.SearchNearby(c.Request.Context(), appplace.NearbyInput{
		Location: q.Location,
		Radius:   q.Radius,
		Type:     q.Type,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if results == nil {
		results = []place.NearbyPlace{}
	}
	h.Success(c, results)
}

// GetPlaceDetails godoc
// @Summary      Get provider details of a place
// @Tags         places
// @Produce      json
// @Param        placeId path string true "Provider place ID"
// @Success      200 {object} APIResponse[place.Details]
// @Failure      404 {object} ErrorResponse
// @Failure      502 {object} ErrorResponse
// @Router       /places/{placeId}/details [get]
func (h *PlaceHandler) GetPlaceDetails(c *gin.Context) {
	details, err := h.placeService.GetPlaceDetails(c.Request.Context(), c.Param("placeId"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, details)
}

// SavePlace godoc
// @Summary      Save a place
// @Tags         places
// @Accept       json
// @Produce      json
// @Param        request body SavePlaceRequest true "Place to save"
// @Success      201 {object} APIResponse[SavedPlaceResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /places [post]
func (h *PlaceHandler) SavePlace(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}
	var req SavePlaceRequest
	if !h.BindJSON(c, &req) {
		return
	}
	saved, err := h.placeService.SavePlace(c.Request.Context(), userID, appplace.SaveInput{
		Name:             req.Name,
		FormattedAddress: req.FormattedAddress,
		Latitude:         req.Latitude,
		Longitude:        req.Longitude,
		PlaceID:          req.PlaceID,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toSavedPlaceResponse(*saved))
}

// ListPlaces godoc
// @Summary      List the caller's saved places
// @Tags         places
// @Produce      json
// @Success      200 {object} APIResponse[[]SavedPlaceResponse]
// @Failure      401 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /places [get]
func (h *PlaceHandler) ListPlaces(c *gin.Context) {
	userID, ok := h.requireUser(c)
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

// IsPlaceSaved godoc
// @Summary      Check whether the caller saved a place
// @Tags         places
// @Produce      json
// @Param        placeId query string true "Provider place ID"
// @Success      200 {object} APIResponse[SavedStatusResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /places/saved [get]
func (h *PlaceHandler) IsPlaceSaved(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}
	var q SavedQuery
	if !h.BindQuery(c, &q) {
		return
	}
	saved, err := h.placeService.IsPlaceSaved(c.Request.Context(), userID, q.PlaceID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, SavedStatusResponse{Saved: saved})
}

// DeleteSavedPlace godoc
// @Summary      Remove a saved place
// @Description  Only the owner can remove a saved place; others get 404
// @Tags         places
// @Produce      json
// @Param        placeId path string true "Provider place ID"
// @Param        id path string true "Saved place ID" format(uuid)
// @Success      200 {object} APIResponse[MessageResponse]
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /places/{placeId}/saved/{id} [delete]
func (h *PlaceHandler) DeleteSavedPlace(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}
	savedID, ok := h.pathID(c, "id", "Saved place")
	if !ok {
		return
	}
	if err := h.placeService.DeleteSavedPlace(c.Request.Context(), userID, savedID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, MessageResponse{Message: "Place removed"})
}
