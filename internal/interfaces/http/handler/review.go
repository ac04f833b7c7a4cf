package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appreview "github.com/wayfarer/backend/internal/application/review"
	"github.com/wayfarer/backend/internal/interfaces/http/middleware"
)

// ReviewHandler serves reviews, likes and review feeds
type ReviewHandler struct {
	BaseHandler
	reviewService *appreview.ReviewService
}

// NewReviewHandler creates a new review handler
func NewReviewHandler(reviewService *appreview.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviewService: reviewService}
}

// SubmitReview godoc
// @Summary      Create or replace the caller's review of a place
// @Description  A second submission for the same place overwrites the first
// @Tags         reviews
// @Accept       json
// @Produce      json
// @Param        placeId path string true "Provider place ID"
// @Param        request body SubmitReviewRequest true "Rating 1-5 and text"
// @Success      200 {object} APIResponse[ReviewResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /places/{placeId}/review [post]
func (h *ReviewHandler) SubmitReview(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}
	var req SubmitReviewRequest
	if !h.BindJSON(c, &req) {
		return
	}
	result, err := h.reviewService.SubmitReview(c.Request.Context(), userID, appreview.SubmitInput{
		PlaceID: c.Param("placeId"),
		Rating:  req.Rating,
		Text:    req.Review,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toReviewResponse(result))
}

// GetMyReview godoc
// @Summary      Get the caller's review of a place
// @Description  data is absent when the caller has not reviewed the place
// @Tags         reviews
// @Produce      json
// @Param        placeId path string true "Provider place ID"
// @Success      200 {object} APIResponse[ReviewResponse]
// @Failure      401 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /places/{placeId}/review [get]
func (h *ReviewHandler) GetMyReview(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}
	result, err := h.reviewService.GetMyReview(c.Request.Context(), userID, c.Param("placeId"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if result == nil {
		h.Success(c, nil)
		return
	}
	h.Success(c, toReviewResponse(result))
}

// PlaceReviews godoc
// @Summary      List the reviews of a place
// @Tags         reviews
// @Produce      json
// @Param        placeId path string true "Provider place ID"
// @Success      200 {object} APIResponse[PlaceReviewsResponse]
// @Failure      400 {object} ErrorResponse
// @Router       /places/{placeId}/reviews [get]
func (h *ReviewHandler) PlaceReviews(c *gin.Context) {
	result, err := h.reviewService.PlaceReviews(c.Request.Context(), c.Param("placeId"), middleware.GetUserID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toPlaceReviewsResponse(result))
}

// ListMyReviews godoc
// @Summary      List the caller's reviews
// @Tags         reviews
// @Produce      json
// @Success      200 {object} APIResponse[[]AnnotatedReviewResponse]
// @Failure      401 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /reviews/user [get]
func (h *ReviewHandler) ListMyReviews(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}
	reviews, err := h.reviewService.ListMyReviews(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toAnnotatedReviewResponses(reviews))
}

// FollowingFeed godoc
// @Summary      List reviews by the users the caller follows
// @Tags         reviews
// @Produce      json
// @Success      200 {object} APIResponse[[]AnnotatedReviewResponse]
// @Failure      401 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /reviews/following [get]
func (h *ReviewHandler) FollowingFeed(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}
	reviews, err := h.reviewService.FollowingFeed(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toAnnotatedReviewResponses(reviews))
}

// GetReview godoc
// @Summary      Get a review with author, likes and place details
// @Tags         reviews
// @Produce      json
// @Param        id path string true "Review ID" format(uuid)
// @Success      200 {object} APIResponse[AnnotatedReviewResponse]
// @Failure      404 {object} ErrorResponse
// @Router       /reviews/{id} [get]
func (h *ReviewHandler) GetReview(c *gin.Context) {
	reviewID, ok := h.pathID(c, "id", "Review")
	if !ok {
		return
	}
	detail, err := h.reviewService.GetReviewDetail(c.Request.Context(), reviewID, middleware.GetUserID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toAnnotatedReviewResponse(*detail))
}

// DeleteReview godoc
// @Summary      Delete one of the caller's reviews
// @Tags         reviews
// @Produce      json
// @Param        id path string true "Review ID" format(uuid)
// @Success      200 {object} APIResponse[MessageResponse]
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /reviews/{id} [delete]
func (h *ReviewHandler) DeleteReview(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}
	reviewID, ok := h.pathID(c, "id", "Review")
	if !ok {
		return
	}
	if err := h.reviewService.DeleteReview(c.Request.Context(), userID, reviewID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, MessageResponse{Message: "Review deleted"})
}

// LikeReview godoc
// @Summary      Like a review
// @Tags         reviews
// @Produce      json
// @Param        id path string true "Review ID" format(uuid)
// @Success      200 {object} APIResponse[LikeStateResponse]
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /reviews/{id}/like [post]
func (h *ReviewHandler) LikeReview(c *gin.Context) {
	h.toggleLike(c, h.reviewService.LikeReview)
}

// UnlikeReview godoc
// @Summary      Remove a like from a review
// @Tags         reviews
// @Produce      json
// @Param        id path string true "Review ID" format(uuid)
// @Success      200 {object} APIResponse[LikeStateResponse]
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /reviews/{id}/like [delete]
func (h *ReviewHandler) UnlikeReview(c *gin.Context) {
	h.toggleLike(c, h.reviewService.UnlikeReview)
}

func (h *ReviewHandler) toggleLike(c *gin.Context, op func(ctx context.Context, reviewID, userID uuid.UUID) (*appreview.LikeState, error)) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}
	reviewID, ok := h.pathID(c, "id", "Review")
	if !ok {
		return
	}
	state, err := op(c.Request.Context(), reviewID, userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, LikeStateResponse{Liked: state.Liked, LikeCount: state.LikeCount})
}
