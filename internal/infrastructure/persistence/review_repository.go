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

// GormReviewRepository implements review.ReviewRepository using GORM
type GormReviewRepository struct {
	db *gorm.DB
}

var _ review.ReviewRepository = (*GormReviewRepository)(nil)

// NewGormReviewRepository creates a new GormReviewRepository
func NewGormReviewRepository(db *gorm.DB) *GormReviewRepository {
	return &GormReviewRepository{db: db}
}

// Upsert writes the review with a single INSERT .. ON CONFLICT (place_id, user_id)
// DO UPDATE, so concurrent submissions for the same pair converge on one row.
func (r *GormReviewRepository) Upsert(ctx context.Context, rv *review.Review) (*review.Review, error) {
	var stored models.ReviewModel
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "place_id"}, {Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"rating", "review", "updated_at"}),
		}).Create(models.ReviewModelFromDomain(rv)).Error
		if err != nil {
			return err
		}
		return tx.Where("user_id = ? AND place_id = ?", rv.UserID, rv.PlaceID).First(&stored).Error
	})
	if err != nil {
		return nil, translateError(err, "review")
	}
	return stored.ToDomain(), nil
}

// FindByID finds a review by ID
func (r *GormReviewRepository) FindByID(ctx context.Context, id uuid.UUID) (*review.Review, error) {
	var model models.ReviewModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err, "review")
	}
	return model.ToDomain(), nil
}

// FindByUserAndPlace finds the user's review of a place
func (r *GormReviewRepository) FindByUserAndPlace(ctx context.Context, userID uuid.UUID, placeID string) (*review.Review, error) {
	var model models.ReviewModel
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND place_id = ?", userID, placeID).
		First(&model).Error
	if err != nil {
		return nil, translateError(err, "review")
	}
	return model.ToDomain(), nil
}

// FindByUser lists a user's reviews, newest first
func (r *GormReviewRepository) FindByUser(ctx context.Context, userID uuid.UUID) ([]*review.Review, error) {
	return r.list(r.db.WithContext(ctx).Where("user_id = ?", userID))
}

// FindByUsers lists reviews authored by any of userIDs, newest first
func (r *GormReviewRepository) FindByUsers(ctx context.Context, userIDs []uuid.UUID) ([]*review.Review, error) {
	userIDs = shared.UniqueIDs(userIDs)
	if len(userIDs) == 0 {
		return []*review.Review{}, nil
	}
	return r.list(r.db.WithContext(ctx).Where("user_id IN ?", userIDs))
}

// FindByPlace lists reviews of a place, newest first
func (r *GormReviewRepository) FindByPlace(ctx context.Context, placeID string) ([]*review.Review, error) {
	return r.list(r.db.WithContext(ctx).Where("place_id = ?", placeID))
}

// SummarizePlace aggregates rating count and sum for a place
func (r *GormReviewRepository) SummarizePlace(ctx context.Context, placeID string) (review.Summary, error) {
	var row struct {
		Count     int64
		RatingSum int64
	}
	err := r.db.WithContext(ctx).Model(&models.ReviewModel{}).
		Select("COUNT(*) AS count, COALESCE(SUM(rating), 0) AS rating_sum").
		Where("place_id = ?", placeID).
		Scan(&row).Error
	if err != nil {
		return review.Summary{}, translateError(err, "review")
	}
	return review.Summary{PlaceID: placeID, Count: row.Count, RatingSum: row.RatingSum}, nil
}

// Delete removes a review together with its likes
func (r *GormReviewRepository) Delete(ctx context.Context, id uuid.UUID) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("review_id = ?", id).Delete(&models.ReviewLikeModel{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.ReviewModel{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	return translateError(err, "review")
}

func (r *GormReviewRepository) list(query *gorm.DB) ([]*review.Review, error) {
	var rows []models.ReviewModel
	if err := query.Order("created_at DESC, id DESC").Find(&rows).Error; err != nil {
		return nil, translateError(err, "review")
	}

	out := make([]*review.Review, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].ToDomain())
	}
	return out, nil
}
