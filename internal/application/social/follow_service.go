package social

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/wayfarer/backend/internal/domain/identity"
	"github.com/wayfarer/backend/internal/domain/shared"
	"github.com/wayfarer/backend/internal/domain/social"
	"github.com/wayfarer/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// FollowState is the follow relationship toward a target after a change
type FollowState struct {
	Following      bool
	FollowersCount int64
	FollowingCount int64
}

// ConnectionResult is one entry of a follower or following list
type ConnectionResult struct {
	ID         uuid.UUID
	Name       string
	Username   string
	Image      string
	FollowedAt time.Time
}

// FollowService manages follow edges and derived counts
type FollowService struct {
	followRepo social.FollowRepository
	userRepo   identity.UserRepository
	metrics    *telemetry.SocialMetrics
	logger     *zap.Logger
}

// NewFollowService creates a new follow service. metrics may be nil.
func NewFollowService(
	followRepo social.FollowRepository,
	userRepo identity.UserRepository,
	metrics *telemetry.SocialMetrics,
	logger *zap.Logger,
) *FollowService {
	return &FollowService{
		followRepo: followRepo,
		userRepo:   userRepo,
		metrics:    metrics,
		logger:     logger,
	}
}

// Follow makes followerID follow targetID. Following twice is a no-op.
func (s *FollowService) Follow(ctx context.Context, followerID, targetID uuid.UUID) (*FollowState, error) {
	if followerID == uuid.Nil {
		return nil, shared.ErrUnauthorized
	}
	edge, err := social.NewFollowEdge(followerID, targetID)
	if err != nil {
		return nil, err
	}
	if err := s.requireUser(ctx, targetID); err != nil {
		return nil, err
	}
	created, err := s.followRepo.Create(ctx, edge)
	if err != nil {
		return nil, err
	}

	if created {
		s.metrics.RecordFollow(ctx, true)
		s.logger.Info("User followed",
			zap.String("follower_id", followerID.String()),
			zap.String("following_id", targetID.String()))
	}
	return s.state(ctx, followerID, targetID)
}

// Unfollow removes the edge if present; unfollowing a user not followed,
// oneself included, is a no-op
func (s *FollowService) Unfollow(ctx context.Context, followerID, targetID uuid.UUID) (*FollowState, error) {
	if followerID == uuid.Nil {
		return nil, shared.ErrUnauthorized
	}
	if followerID != targetID {
		deleted, err := s.followRepo.Delete(ctx, followerID, targetID)
		if err != nil {
			return nil, err
		}
		if deleted {
			s.metrics.RecordFollow(ctx, false)
		}
	}
	return s.state(ctx, followerID, targetID)
}

// Status reports whether followerID follows targetID together with the target's counts
func (s *FollowService) Status(ctx context.Context, followerID, targetID uuid.UUID) (*FollowState, error) {
	if err := s.requireUser(ctx, targetID); err != nil {
		return nil, err
	}
	return s.state(ctx, followerID, targetID)
}

// ListFollowers returns the users following userID, oldest edge first
func (s *FollowService) ListFollowers(ctx context.Context, userID uuid.UUID) ([]ConnectionResult, error) {
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}
	conns, err := s.followRepo.ListFollowers(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toConnectionResults(conns), nil
}

// ListFollowing returns the users userID follows, oldest edge first
func (s *FollowService) ListFollowing(ctx context.Context, userID uuid.UUID) ([]ConnectionResult, error) {
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}
	conns, err := s.followRepo.ListFollowing(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toConnectionResults(conns), nil
}

func (s *FollowService) state(ctx context.Context, followerID, targetID uuid.UUID) (*FollowState, error) {
	var st FollowState
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		if followerID == uuid.Nil || followerID == targetID {
			return nil
		}
		st.Following, err = s.followRepo.Exists(gctx, followerID, targetID)
		return err
	})
	g.Go(func() (err error) {
		st.FollowersCount, err = s.followRepo.CountFollowers(gctx, targetID)
		return err
	})
	g.Go(func() (err error) {
		st.FollowingCount, err = s.followRepo.CountFollowing(gctx, targetID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &st, nil
}

func (s *FollowService) requireUser(ctx context.Context, userID uuid.UUID) error {
	if _, err := s.userRepo.FindByID(ctx, userID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewNotFoundError("User")
		}
		return err
	}
	return nil
}

func toConnectionResults(conns []social.Connection) []ConnectionResult {
	out := make([]ConnectionResult, 0, len(conns))
	for _, c := range conns {
		out = append(out, ConnectionResult{
			ID:         c.UserID,
			Name:       c.Name,
			Username:   c.Username,
			Image:      c.Image,
			FollowedAt: c.FollowedAt,
		})
	}
	return out
}
