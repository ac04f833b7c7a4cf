package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appsocial "github.com/wayfarer/backend/internal/application/social"
)

// FollowHandler manages follow edges between users
type FollowHandler struct {
	BaseHandler
	followService *appsocial.FollowService
}

// NewFollowHandler creates a new follow handler
func NewFollowHandler(followService *appsocial.FollowService) *FollowHandler {
	return &FollowHandler{followService: followService}
}

// Follow godoc
// @Summary      Follow a user
// @Description  Following someone already followed is a no-op
// @Tags         users
// @Produce      json
// @Param        id path string true "User ID" format(uuid)
// @Success      200 {object} APIResponse[FollowStateResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /users/{id}/follow [post]
func (h *FollowHandler) Follow(c *gin.Context) {
	h.followAction(c, h.followService.Follow)
}

// Unfollow godoc
// @Summary      Unfollow a user
// @Tags         users
// @Produce      json
// @Param        id path string true "User ID" format(uuid)
// @Success      200 {object} APIResponse[FollowStateResponse]
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /users/{id}/follow [delete]
func (h *FollowHandler) Unfollow(c *gin.Context) {
	h.followAction(c, h.followService.Unfollow)
}

// FollowStatus godoc
// @Summary      Get the caller's follow state toward a user
// @Tags         users
// @Produce      json
// @Param        id path string true "User ID" format(uuid)
// @Success      200 {object} APIResponse[FollowStateResponse]
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /users/{id}/follow-status [get]
func (h *FollowHandler) FollowStatus(c *gin.Context) {
	h.followAction(c, h.followService.Status)
}

func (h *FollowHandler) followAction(c *gin.Context, op func(ctx context.Context, followerID, targetID uuid.UUID) (*appsocial.FollowState, error)) {
	followerID, ok := h.requireUser(c)
	if !ok {
		return
	}
	targetID, ok := h.pathID(c, "id", "User")
	if !ok {
		return
	}
	state, err := op(c.Request.Context(), followerID, targetID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toFollowStateResponse(state))
}

// ListFollowers godoc
// @Summary      List a user's followers
// @Tags         users
// @Produce      json
// @Param        id path string true "User ID" format(uuid)
// @Success      200 {object} APIResponse[[]ConnectionResponse]
// @Failure      404 {object} ErrorResponse
// @Router       /users/{id}/followers [get]
func (h *FollowHandler) ListFollowers(c *gin.Context) {
	h.listConnections(c, h.followService.ListFollowers)
}

// ListFollowing godoc
// @Summary      List the users someone follows
// @Tags         users
// @Produce      json
// @Param        id path string true "User ID" format(uuid)
// @Success      200 {object} APIResponse[[]ConnectionResponse]
// @Failure      404 {object} ErrorResponse
// @Router       /users/{id}/following [get]
func (h *FollowHandler) ListFollowing(c *gin.Context) {
	h.listConnections(c, h.followService.ListFollowing)
}

func (h *FollowHandler) listConnections(c *gin.Context, list func(ctx context.Context, userID uuid.UUID) ([]appsocial.ConnectionResult, error)) {
	userID, ok := h.pathID(c, "id", "User")
	if !ok {
		return
	}
	conns, err := list(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toConnectionResponses(conns))
}
