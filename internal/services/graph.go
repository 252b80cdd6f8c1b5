package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/pulse-social/pulse-social/internal/apperrors"
	"github.com/pulse-social/pulse-social/internal/models"
	"github.com/pulse-social/pulse-social/internal/repository"
	"github.com/pulse-social/pulse-social/pkg/logger"
)

// GraphService owns the follow edges.
type GraphService struct {
	userRepo   repository.UserRepository
	followRepo repository.FollowRepository
	notifier   *NotificationService
	logger     *logger.Logger
}

func NewGraphService(userRepo repository.UserRepository, followRepo repository.FollowRepository, notifier *NotificationService, logger *logger.Logger) *GraphService {
	return &GraphService{
		userRepo:   userRepo,
		followRepo: followRepo,
		notifier:   notifier,
		logger:     logger,
	}
}

// Follow creates the edge follower→target. A self-follow is rejected before
// any write; a duplicate edge surfaces as a conflict from the store's unique
// constraint, which callers treat as a non-fatal outcome.
func (s *GraphService) Follow(ctx context.Context, followerID, targetID uuid.UUID) error {
	if followerID == targetID {
		return apperrors.InvalidOperation("cannot follow yourself")
	}

	target, err := s.userRepo.GetByID(ctx, targetID)
	if err != nil {
		return apperrors.Store("failed to get target user", err)
	}
	if target == nil {
		return apperrors.NotFound("user not found")
	}

	follow := &models.Follow{
		FollowerID:  followerID,
		FollowingID: targetID,
	}
	if err := s.followRepo.Create(ctx, follow); err != nil {
		if apperrors.Is(err, apperrors.KindConflict) {
			return err
		}
		return apperrors.Store("failed to create follow", err)
	}

	s.notifier.Notify(ctx, targetID, followerID, models.NotificationFollow, nil)

	s.logger.WithFields(map[string]interface{}{
		"follower_id": followerID,
		"target_id":   targetID,
	}).Info("User followed")

	return nil
}

// Unfollow is idempotent: removing an absent edge succeeds with no side
// effects.
func (s *GraphService) Unfollow(ctx context.Context, followerID, targetID uuid.UUID) error {
	if err := s.followRepo.Delete(ctx, followerID, targetID); err != nil {
		return apperrors.Store("failed to delete follow", err)
	}

	s.logger.WithFields(map[string]interface{}{
		"follower_id": followerID,
		"target_id":   targetID,
	}).Info("User unfollowed")

	return nil
}

func (s *GraphService) ListFollowers(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	ids, err := s.followRepo.FollowerIDs(ctx, userID)
	if err != nil {
		return nil, apperrors.Store("failed to list followers", err)
	}
	return ids, nil
}

func (s *GraphService) ListFollowing(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	ids, err := s.followRepo.FollowingIDs(ctx, userID)
	if err != nil {
		return nil, apperrors.Store("failed to list following", err)
	}
	return ids, nil
}

func (s *GraphService) IsFollowing(ctx context.Context, followerID, targetID uuid.UUID) (bool, error) {
	following, err := s.followRepo.IsFollowing(ctx, followerID, targetID)
	if err != nil {
		return false, apperrors.Store("failed to check follow status", err)
	}
	return following, nil
}
