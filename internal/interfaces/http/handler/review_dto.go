package handler

import (
	"time"

	"github.com/google/uuid"
	appfeed "github.com/wayfarer/backend/internal/application/feed"
	appreview "github.com/wayfarer/backend/internal/application/review"
	"github.com/wayfarer/backend/internal/domain/place"
)

// SubmitReviewRequest creates or replaces the caller's review of a place.
// Rating range and non-empty text are checked by the review domain.
type SubmitReviewRequest struct {
	Rating float64 `json:"rating"`
	Review string  `json:"review" binding:"max=5000"`
}

// ReviewResponse is the caller's stored review
type ReviewResponse struct {
	ID        uuid.UUID `json:"id"`
	PlaceID   string    `json:"placeId"`
	Rating    int       `json:"rating"`
	Review    string    `json:"review"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	// Created is false when an earlier review was overwritten
	Created bool `json:"created"`
}

// ReviewAuthorResponse is the public identity of a review author
type ReviewAuthorResponse struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Username string    `json:"username,omitempty"`
	Image    string    `json:"image,omitempty"`
}

// AnnotatedReviewResponse is a review ready for display in feeds and pages
type AnnotatedReviewResponse struct {
	ID        uuid.UUID            `json:"id"`
	PlaceID   string               `json:"placeId"`
	Rating    int                  `json:"rating"`
	Review    string               `json:"review"`
	CreatedAt time.Time            `json:"createdAt"`
	UpdatedAt time.Time            `json:"updatedAt"`
	Author    ReviewAuthorResponse `json:"author"`
	LikeCount int64                `json:"likeCount"`
	IsLiked   bool                 `json:"isLiked"`
	Place     *place.Details       `json:"place,omitempty"`
}

// ReviewSummaryResponse aggregates a place's ratings
type ReviewSummaryResponse struct {
	Count         int64   `json:"count"`
	AverageRating float64 `json:"averageRating"`
}

// PlaceReviewsResponse lists a place's reviews
type PlaceReviewsResponse struct {
	PlaceID string                    `json:"placeId"`
	Reviews []AnnotatedReviewResponse `json:"reviews"`
	Summary ReviewSummaryResponse     `json:"summary"`
}

// LikeStateResponse is a review's like state after a toggle
type LikeStateResponse struct {
	Liked     bool  `json:"liked"`
	LikeCount int64 `json:"likeCount"`
}

func toReviewResponse(r *appreview.ReviewResult) ReviewResponse {
	return ReviewResponse{
		ID:        r.ID,
		PlaceID:   r.PlaceID,
		Rating:    r.Rating,
		Review:    r.Text,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
		Created:   r.Created,
	}
}

func toAnnotatedReviewResponse(r appfeed.AnnotatedReview) AnnotatedReviewResponse {
	return AnnotatedReviewResponse{
		ID:        r.ID,
		PlaceID:   r.PlaceID,
		Rating:    r.Rating,
		Review:    r.Text,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
		Author: ReviewAuthorResponse{
			ID:       r.Author.ID,
			Name:     r.Author.Name,
			Username: r.Author.Username,
			Image:    r.Author.Image,
		},
		LikeCount: r.LikeCount,
		IsLiked:   r.IsLiked,
		Place:     r.Place,
	}
}

func toAnnotatedReviewResponses(in []appfeed.AnnotatedReview) []AnnotatedReviewResponse {
	out := make([]AnnotatedReviewResponse, len(in))
	for i, r := range in {
		out[i] = toAnnotatedReviewResponse(r)
	}
	return out
}

func toPlaceReviewsResponse(r *appreview.PlaceReviewsResult) PlaceReviewsResponse {
	return PlaceReviewsResponse{
		PlaceID: r.PlaceID,
		Reviews: toAnnotatedReviewResponses(r.Reviews),
		Summary: ReviewSummaryResponse{
			Count:         r.Summary.Count,
			AverageRating: r.Summary.AverageRating.InexactFloat64(),
		},
	}
}
