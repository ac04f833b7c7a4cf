package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/wayfarer/backend/internal/domain/review"
)

// ReviewModel is the persistence model for the Review domain entity.
// idx_place_reviews_place_user enforces one review per user per place.
type ReviewModel struct {
	BaseModel
	UserID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_place_reviews_place_user,priority:2;index:idx_place_reviews_user_created,priority:1"`
	PlaceID string    `gorm:"type:text;not null;uniqueIndex:idx_place_reviews_place_user,priority:1"`
	Rating  int       `gorm:"not null"`
	Review  string    `gorm:"type:text;not null"`
}

// TableName returns the table name for GORM
func (ReviewModel) TableName() string {
	return "place_reviews"
}

// ToDomain converts the persistence model to a domain Review
func (m *ReviewModel) ToDomain() *review.Review {
	return &review.Review{
		BaseEntity: m.BaseModel.ToDomain(),
		UserID:     m.UserID,
		PlaceID:    m.PlaceID,
		Rating:     m.Rating,
		Text:       m.Review,
	}
}

// ReviewModelFromDomain creates a persistence model from a domain Review
func ReviewModelFromDomain(r *review.Review) *ReviewModel {
	m := &ReviewModel{
		UserID:  r.UserID,
		PlaceID: r.PlaceID,
		Rating:  r.Rating,
		Review:  r.Text,
	}
	m.FromDomainBaseEntity(r.BaseEntity)
	return m
}

// ReviewLikeModel is the persistence model for a review like.
// idx_review_likes_review_user keeps one like per user per review.
type ReviewLikeModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	ReviewID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_review_likes_review_user,priority:1"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_review_likes_review_user,priority:2"`
	CreatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ReviewLikeModel) TableName() string {
	return "review_likes"
}

// ReviewLikeModelFromDomain creates a persistence model from a domain Like
func ReviewLikeModelFromDomain(l *review.Like) *ReviewLikeModel {
	return &ReviewLikeModel{
		ID:        l.ID,
		ReviewID:  l.ReviewID,
		UserID:    l.UserID,
		CreatedAt: l.CreatedAt,
	}
}

// LikeCountRow is one row of a grouped like count
type LikeCountRow struct {
	ReviewID uuid.UUID
	Count    int64
}
