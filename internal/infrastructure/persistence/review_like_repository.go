package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/wayfarer/backend/internal/domain/review"
	"github.com/wayfarer/backend/internal/domain/shared"
	"github.com/wayfarer/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormLikeRepository implements review.LikeRepository using GORM
type GormLikeRepository struct {
	db *gorm.DB
}

var _ review.LikeRepository = (*GormLikeRepository)(nil)

// NewGormLikeRepository creates a new GormLikeRepository
func NewGormLikeRepository(db *gorm.DB) *GormLikeRepository {
	return &GormLikeRepository{db: db}
}

// Create inserts the like; ON CONFLICT DO NOTHING keeps a repeated like a no-op
func (r *GormLikeRepository) Create(ctx context.Context, like *review.Like) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "review_id"}, {Name: "user_id"}},
			DoNothing: true,
		}).
		Create(models.ReviewLikeModelFromDomain(like))
	if result.Error != nil {
		return false, translateError(result.Error, "review")
	}
	return result.RowsAffected > 0, nil
}

// Delete removes the like for the pair
func (r *GormLikeRepository) Delete(ctx context.Context, reviewID, userID uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("review_id = ? AND user_id = ?", reviewID, userID).
		Delete(&models.ReviewLikeModel{})
	if result.Error != nil {
		return false, translateError(result.Error, "like")
	}
	return result.RowsAffected > 0, nil
}

// Count counts likes of one review
func (r *GormLikeRepository) Count(ctx context.Context, reviewID uuid.UUID) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.ReviewLikeModel{}).Where("review_id = ?", reviewID).Count(&n).Error
	return n, translateError(err, "like")
}

// CountByReviews counts likes per review in one grouped query
func (r *GormLikeRepository) CountByReviews(ctx context.Context, reviewIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	reviewIDs = shared.UniqueIDs(reviewIDs)
	counts := make(map[uuid.UUID]int64, len(reviewIDs))
	if len(reviewIDs) == 0 {
		return counts, nil
	}

	var rows []models.LikeCountRow
	err := r.db.WithContext(ctx).Model(&models.ReviewLikeModel{}).
		Select("review_id, COUNT(*) AS count").
		Where("review_id IN ?", reviewIDs).
		Group("review_id").
		Scan(&rows).Error
	if err != nil {
		return nil, translateError(err, "like")
	}
	for _, row := range rows {
		counts[row.ReviewID] = row.Count
	}
	return counts, nil
}

// LikedSet returns which of reviewIDs userID has liked
func (r *GormLikeRepository) LikedSet(ctx context.Context, reviewIDs []uuid.UUID, userID uuid.UUID) (map[uuid.UUID]bool, error) {
	reviewIDs = shared.UniqueIDs(reviewIDs)
	liked := make(map[uuid.UUID]bool, len(reviewIDs))
	if len(reviewIDs) == 0 || userID == uuid.Nil {
		return liked, nil
	}

	var ids []uuid.UUID
	err := r.db.WithContext(ctx).Model(&models.ReviewLikeModel{}).
		Where("user_id = ? AND review_id IN ?", userID, reviewIDs).
		Pluck("review_id", &ids).Error
	if err != nil {
		return nil, translateError(err, "like")
	}
	for _, id := range ids {
		liked[id] = true
	}
	return liked, nil
}
