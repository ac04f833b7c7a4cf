package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/wayfarer/backend/internal/domain/social"
	"github.com/wayfarer/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormFollowRepository implements social.FollowRepository using GORM
type GormFollowRepository struct {
	db *gorm.DB
}

var _ social.FollowRepository = (*GormFollowRepository)(nil)

// NewGormFollowRepository creates a new GormFollowRepository
func NewGormFollowRepository(db *gorm.DB) *GormFollowRepository {
	return &GormFollowRepository{db: db}
}

// Create inserts the edge; ON CONFLICT DO NOTHING keeps a repeated follow a no-op
func (r *GormFollowRepository) Create(ctx context.Context, edge *social.FollowEdge) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "follower_id"}, {Name: "following_id"}},
			DoNothing: true,
		}).
		Create(models.FollowModelFromDomain(edge))
	if result.Error != nil {
		return false, translateError(result.Error, "user")
	}
	return result.RowsAffected > 0, nil
}

// Delete removes the edge for the pair
func (r *GormFollowRepository) Delete(ctx context.Context, followerID, followingID uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Delete(&models.FollowModel{})
	if result.Error != nil {
		return false, translateError(result.Error, "follow")
	}
	return result.RowsAffected > 0, nil
}

// Exists reports whether followerID follows followingID
func (r *GormFollowRepository) Exists(ctx context.Context, followerID, followingID uuid.UUID) (bool, error) {
	return r.count(ctx, "follower_id = ? AND following_id = ?", followerID, followingID)
}

// CountFollowers counts edges pointing at userID
func (r *GormFollowRepository) CountFollowers(ctx context.Context, userID uuid.UUID) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.FollowModel{}).Where("following_id = ?", userID).Count(&n).Error
	return n, translateError(err, "follow")
}

// CountFollowing counts edges starting at userID
func (r *GormFollowRepository) CountFollowing(ctx context.Context, userID uuid.UUID) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.FollowModel{}).Where("follower_id = ?", userID).Count(&n).Error
	return n, translateError(err, "follow")
}

// ListFollowers returns users following userID, oldest edge first
func (r *GormFollowRepository) ListFollowers(ctx context.Context, userID uuid.UUID) ([]social.Connection, error) {
	return r.connections(ctx, "follows.follower_id", "follows.following_id = ?", userID)
}

// ListFollowing returns users followed by userID, oldest edge first
func (r *GormFollowRepository) ListFollowing(ctx context.Context, userID uuid.UUID) ([]social.Connection, error) {
	return r.connections(ctx, "follows.following_id", "follows.follower_id = ?", userID)
}

// FollowingIDs returns the ids userID follows
func (r *GormFollowRepository) FollowingIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0)
	err := r.db.WithContext(ctx).Model(&models.FollowModel{}).
		Where("follower_id = ?", userID).
		Order("created_at ASC").
		Pluck("following_id", &ids).Error
	if err != nil {
		return nil, translateError(err, "follow")
	}
	return ids, nil
}

func (r *GormFollowRepository) count(ctx context.Context, query string, args ...any) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.FollowModel{}).Where(query, args...).Count(&n).Error
	if err != nil {
		return false, translateError(err, "follow")
	}
	return n > 0, nil
}

// connections joins users on joinColumn and filters edges with where
func (r *GormFollowRepository) connections(ctx context.Context, joinColumn, where string, userID uuid.UUID) ([]social.Connection, error) {
	var rows []models.ConnectionRow
	err := r.db.WithContext(ctx).
		Table("follows").
		Select("users.id, users.name, users.username, users.image, follows.created_at AS followed_at").
		Joins("JOIN users ON users.id = "+joinColumn).
		Where(where, userID).
		Order("follows.created_at ASC, follows.id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, translateError(err, "follow")
	}

	out := make([]social.Connection, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.ToDomain())
	}
	return out, nil
}
