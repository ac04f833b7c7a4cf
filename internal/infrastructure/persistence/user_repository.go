package persistence

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/wayfarer/backend/internal/domain/identity"
	"github.com/wayfarer/backend/internal/domain/shared"
	"github.com/wayfarer/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormUserRepository implements identity.UserRepository using GORM
type GormUserRepository struct {
	db *gorm.DB
}

var _ identity.UserRepository = (*GormUserRepository)(nil)

// NewGormUserRepository creates a new GormUserRepository
func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// Create creates a new user; a taken email or username is a conflict
func (r *GormUserRepository) Create(ctx context.Context, user *identity.User) error {
	model := models.UserModelFromDomain(user)
	return translateError(r.db.WithContext(ctx).Create(model).Error, "user")
}

// Update updates an existing user
func (r *GormUserRepository) Update(ctx context.Context, user *identity.User) error {
	model := models.UserModelFromDomain(user)
	result := r.db.WithContext(ctx).Model(&models.UserModel{}).
		Where("id = ?", user.ID).
		Select("name", "username", "image", "interests", "onboarding_completed", "updated_at").
		Updates(model)
	if result.Error != nil {
		return translateError(result.Error, "user")
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError("user")
	}
	return nil
}

// FindByID finds a user by ID
func (r *GormUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	return r.findOne(ctx, "id = ?", id)
}

// FindByIDs returns the users that exist among ids, keyed by ID
func (r *GormUserRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*identity.User, error) {
	ids = shared.UniqueIDs(ids)
	users := make(map[uuid.UUID]*identity.User, len(ids))
	if len(ids) == 0 {
		return users, nil
	}

	var rows []models.UserModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, translateError(err, "user")
	}
	for i := range rows {
		users[rows[i].ID] = rows[i].ToDomain()
	}
	return users, nil
}

// FindByEmail finds a user by email
func (r *GormUserRepository) FindByEmail(ctx context.Context, email string) (*identity.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, shared.NewNotFoundError("user")
	}
	return r.findOne(ctx, "email = ?", email)
}

// FindByUsername finds a user by normalized username
func (r *GormUserRepository) FindByUsername(ctx context.Context, username string) (*identity.User, error) {
	if username == "" {
		return nil, shared.NewNotFoundError("user")
	}
	return r.findOne(ctx, "username = ?", username)
}

// ExistsByUsername checks if a username already exists
func (r *GormUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return r.exists(ctx, "username = ?", username)
}

// ExistsByEmail checks if an email already exists
func (r *GormUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, "email = ?", strings.ToLower(strings.TrimSpace(email)))
}

// FindSuggestionCandidates returns users other than userID that userID does
// not follow yet, newest first.
func (r *GormUserRepository) FindSuggestionCandidates(ctx context.Context, userID uuid.UUID, limit int) ([]*identity.User, error) {
	followed := r.db.Model(&models.FollowModel{}).
		Select("following_id").
		Where("follower_id = ?", userID)

	var rows []models.UserModel
	err := r.db.WithContext(ctx).
		Where("id <> ?", userID).
		Where("id NOT IN (?)", followed).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, translateError(err, "user")
	}

	users := make([]*identity.User, 0, len(rows))
	for i := range rows {
		users = append(users, rows[i].ToDomain())
	}
	return users, nil
}

func (r *GormUserRepository) findOne(ctx context.Context, query string, args ...any) (*identity.User, error) {
	var model models.UserModel
	if err := r.db.WithContext(ctx).Where(query, args...).First(&model).Error; err != nil {
		return nil, translateError(err, "user")
	}
	return model.ToDomain(), nil
}

func (r *GormUserRepository) exists(ctx context.Context, query string, args ...any) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.UserModel{}).Where(query, args...).Count(&count).Error; err != nil {
		return false, translateError(err, "user")
	}
	return count > 0, nil
}
