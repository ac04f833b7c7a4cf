package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/wayfarer/backend/internal/domain/place"
	"github.com/wayfarer/backend/internal/domain/shared"
	"github.com/wayfarer/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormSavedPlaceRepository implements place.SavedPlaceRepository using GORM
type GormSavedPlaceRepository struct {
	db *gorm.DB
}

var _ place.SavedPlaceRepository = (*GormSavedPlaceRepository)(nil)

// NewGormSavedPlaceRepository creates a new GormSavedPlaceRepository
func NewGormSavedPlaceRepository(db *gorm.DB) *GormSavedPlaceRepository {
	return &GormSavedPlaceRepository{db: db}
}

// Create inserts a saved place. The partial unique index on
// (user_id, place_id) turns a concurrent duplicate save into a conflict.
func (r *GormSavedPlaceRepository) Create(ctx context.Context, p *place.SavedPlace) error {
	err := r.db.WithContext(ctx).Create(models.SavedPlaceModelFromDomain(p)).Error
	return translateError(err, "saved place")
}

// FindByID finds a saved place by ID
func (r *GormSavedPlaceRepository) FindByID(ctx context.Context, id uuid.UUID) (*place.SavedPlace, error) {
	var model models.SavedPlaceModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err, "saved place")
	}
	return model.ToDomain(), nil
}

// ExistsForUser reports whether userID saved the provider place
func (r *GormSavedPlaceRepository) ExistsForUser(ctx context.Context, userID uuid.UUID, placeID string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.SavedPlaceModel{}).
		Where("user_id = ? AND place_id = ?", userID, placeID).
		Count(&n).Error
	if err != nil {
		return false, translateError(err, "saved place")
	}
	return n > 0, nil
}

// FindByUser lists a user's saved places, newest first
func (r *GormSavedPlaceRepository) FindByUser(ctx context.Context, userID uuid.UUID) ([]*place.SavedPlace, error) {
	var rows []models.SavedPlaceModel
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, translateError(err, "saved place")
	}

	out := make([]*place.SavedPlace, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].ToDomain())
	}
	return out, nil
}

// CountByUser counts a user's saved places
func (r *GormSavedPlaceRepository) CountByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.SavedPlaceModel{}).Where("user_id = ?", userID).Count(&n).Error
	return n, translateError(err, "saved place")
}

// Delete removes a saved place owned by userID. Rows owned by someone else
// are reported as missing.
func (r *GormSavedPlaceRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&models.SavedPlaceModel{})
	if result.Error != nil {
		return translateError(result.Error, "saved place")
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError("saved place")
	}
	return nil
}
