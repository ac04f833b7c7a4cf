package identity

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"

	"github.com/google/uuid"
	"github.com/wayfarer/backend/internal/domain/identity"
	"github.com/wayfarer/backend/internal/domain/place"
	"github.com/wayfarer/backend/internal/domain/shared"
	"github.com/wayfarer/backend/internal/domain/social"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	// MaxAvatarSize is the largest accepted avatar upload
	MaxAvatarSize = 5 << 20

	DefaultSuggestionLimit = 10
	MaxSuggestionLimit     = 50

	// candidates scanned per requested suggestion before ranking
	suggestionPoolFactor = 5
)

var avatarExtensions = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
}

// AvatarStore stores avatar images and maps keys to public URLs
type AvatarStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) error
	DeleteObject(ctx context.Context, key string) error
	PublicURL(key string) string
	KeyFromURL(u string) (string, bool)
}

// ProfileService serves profiles, onboarding and avatar changes
type ProfileService struct {
	userRepo   identity.UserRepository
	followRepo social.FollowRepository
	placeRepo  place.SavedPlaceRepository
	avatars    AvatarStore
	logger     *zap.Logger
}

// NewProfileService creates a new profile service
func NewProfileService(
	userRepo identity.UserRepository,
	followRepo social.FollowRepository,
	placeRepo place.SavedPlaceRepository,
	avatars AvatarStore,
	logger *zap.Logger,
) *ProfileService {
	return &ProfileService{
		userRepo:   userRepo,
		followRepo: followRepo,
		placeRepo:  placeRepo,
		avatars:    avatars,
		logger:     logger,
	}
}

// GetCurrentUser returns the signed-in user's own account data
func (s *ProfileService) GetCurrentUser(ctx context.Context, userID uuid.UUID) (*UserInfo, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	info := toUserInfo(user)
	return &info, nil
}

// GetProfile returns a user's public profile. viewerID may be uuid.Nil for
// anonymous viewers; IsFollowing is only set for a viewer other than the user.
func (s *ProfileService) GetProfile(ctx context.Context, userID, viewerID uuid.UUID) (*ProfileResult, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewNotFoundError("User")
		}
		return nil, err
	}

	result := &ProfileResult{
		ID:                  user.ID,
		Name:                user.Name,
		Username:            user.Username,
		Image:               user.Image,
		CreatedAt:           user.CreatedAt,
		Interests:           interestsOrEmpty(user.Interests),
		OnboardingCompleted: user.OnboardingCompleted,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.followRepo.CountFollowers(gctx, userID)
		result.FollowersCount = n
		return err
	})
	g.Go(func() error {
		n, err := s.followRepo.CountFollowing(gctx, userID)
		result.FollowingCount = n
		return err
	})
	g.Go(func() error {
		n, err := s.placeRepo.CountByUser(gctx, userID)
		result.PlacesCount = n
		return err
	})
	if viewerID != uuid.Nil && viewerID != userID {
		g.Go(func() error {
			following, err := s.followRepo.Exists(gctx, viewerID, userID)
			result.IsFollowing = &following
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return result, nil
}

// CheckUsername reports whether a username is free. Names that fail the
// format rules are reported as unavailable.
func (s *ProfileService) CheckUsername(ctx context.Context, username string) (bool, error) {
	if username == "" {
		return false, shared.NewValidationError("Username parameter required")
	}
	normalized, err := identity.NormalizeUsername(username)
	if err != nil {
		return false, nil
	}
	exists, err := s.userRepo.ExistsByUsername(ctx, normalized)
	if err != nil {
		return false, err
	}
	return !exists, nil
}

// UpdateName replaces the user's display name
func (s *ProfileService) UpdateName(ctx context.Context, userID uuid.UUID, name string) (*UserInfo, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := user.SetName(name); err != nil {
		return nil, err
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	info := toUserInfo(user)
	return &info, nil
}

// CompleteOnboarding stores the chosen interests and marks onboarding done
func (s *ProfileService) CompleteOnboarding(ctx context.Context, userID uuid.UUID, interests []string) (*UserInfo, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := user.CompleteOnboarding(interests); err != nil {
		return nil, err
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	s.logger.Info("Onboarding completed",
		zap.String("user_id", userID.String()),
		zap.Int("interests", len(user.Interests)))
	info := toUserInfo(user)
	return &info, nil
}

// ListInterests returns the onboarding interest catalog
func (s *ProfileService) ListInterests() []identity.Interest {
	return identity.Interests()
}

// SuggestUsers ranks users the caller does not follow yet by how many
// interests they share, newest first on ties. When interests is empty the
// caller's stored interests are used.
func (s *ProfileService) SuggestUsers(ctx context.Context, userID uuid.UUID, interests []string, limit int) ([]SuggestionResult, error) {
	if limit <= 0 {
		limit = DefaultSuggestionLimit
	}
	limit = min(limit, MaxSuggestionLimit)

	wanted, err := identity.NormalizeInterests(interests)
	if err != nil {
		return nil, err
	}
	if len(wanted) == 0 {
		me, err := s.userRepo.FindByID(ctx, userID)
		if err != nil {
			return nil, err
		}
		wanted = me.Interests
	}

	candidates, err := s.userRepo.FindSuggestionCandidates(ctx, userID, limit*suggestionPoolFactor)
	if err != nil {
		return nil, err
	}

	results := make([]SuggestionResult, 0, len(candidates))
	for _, c := range candidates {
		results = append(results, SuggestionResult{
			ID:              c.ID,
			Name:            c.Name,
			Username:        c.Username,
			Image:           c.Image,
			Interests:       interestsOrEmpty(c.Interests),
			SharedInterests: c.SharedInterests(wanted),
		})
	}
	// candidates arrive newest first; a stable sort keeps that order on ties
	slices.SortStableFunc(results, func(a, b SuggestionResult) int {
		return cmp.Compare(b.SharedInterests, a.SharedInterests)
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// UploadAvatar stores a new avatar, points the user at it and removes the
// previous one when it lives in the same store.
func (s *ProfileService) UploadAvatar(ctx context.Context, input AvatarInput) (*UserInfo, error) {
	if len(input.Data) == 0 {
		return nil, shared.NewValidationError("Avatar file is empty")
	}
	if len(input.Data) > MaxAvatarSize {
		return nil, shared.NewValidationError("Avatar cannot exceed 5 MB")
	}
	contentType := http.DetectContentType(input.Data)
	ext, ok := avatarExtensions[contentType]
	if !ok {
		return nil, shared.NewValidationError("Avatar must be a JPEG, PNG or WebP image")
	}

	user, err := s.userRepo.FindByID(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("avatars/%s/%s.%s", user.ID, uuid.New(), ext)
	if err := s.avatars.Upload(ctx, key, input.Data, contentType); err != nil {
		s.logger.Error("Failed to upload avatar", zap.String("key", key), zap.Error(err))
		return nil, shared.ErrStorage
	}

	previous := user.Image
	if err := user.SetImage(s.avatars.PublicURL(key)); err != nil {
		return nil, err
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		if delErr := s.avatars.DeleteObject(ctx, key); delErr != nil {
			s.logger.Warn("Failed to remove orphaned avatar", zap.String("key", key), zap.Error(delErr))
		}
		return nil, err
	}

	if oldKey, ok := s.avatars.KeyFromURL(previous); ok && oldKey != key {
		if err := s.avatars.DeleteObject(ctx, oldKey); err != nil {
			s.logger.Warn("Failed to delete previous avatar", zap.String("key", oldKey), zap.Error(err))
		}
	}

	info := toUserInfo(user)
	return &info, nil
}
