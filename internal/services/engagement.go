package services

import (
	"context"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/pulse-social/pulse-social/internal/apperrors"
	"github.com/pulse-social/pulse-social/internal/config"
	"github.com/pulse-social/pulse-social/internal/models"
	"github.com/pulse-social/pulse-social/internal/repository"
	"github.com/pulse-social/pulse-social/pkg/logger"
)

const defaultMaxCommentLength = 280

// EngagementService owns like edges and comments.
type EngagementService struct {
	postRepo         repository.PostRepository
	likeRepo         repository.LikeRepository
	commentRepo      repository.CommentRepository
	notifier         *NotificationService
	maxCommentLength int
	logger           *logger.Logger
}

func NewEngagementService(
	postRepo repository.PostRepository,
	likeRepo repository.LikeRepository,
	commentRepo repository.CommentRepository,
	notifier *NotificationService,
	cfg *config.FeedConfig,
	logger *logger.Logger,
) *EngagementService {
	maxCommentLength := defaultMaxCommentLength
	if cfg != nil && cfg.MaxCommentLength > 0 {
		maxCommentLength = cfg.MaxCommentLength
	}
	return &EngagementService{
		postRepo:         postRepo,
		likeRepo:         likeRepo,
		commentRepo:      commentRepo,
		notifier:         notifier,
		maxCommentLength: maxCommentLength,
		logger:           logger,
	}
}

// Like is idempotent on create: the calling surface reuses it as a toggle,
// so an existing edge is a no-op success. Fan-out happens only on the call
// that actually creates the edge; unlike-then-like notifies again.
func (s *EngagementService) Like(ctx context.Context, userID, postID uuid.UUID) error {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return apperrors.Store("failed to get post", err)
	}
	if post == nil {
		return apperrors.NotFound("post not found")
	}

	like := &models.Like{
		UserID: userID,
		PostID: postID,
	}
	created, err := s.likeRepo.Create(ctx, like)
	if err != nil {
		return apperrors.Store("failed to create like", err)
	}
	if !created {
		return nil
	}

	s.notifier.Notify(ctx, post.AuthorID, userID, models.NotificationLike, &postID)

	s.logger.WithFields(map[string]interface{}{
		"user_id": userID,
		"post_id": postID,
	}).Info("Post liked")

	return nil
}

// Unlike removes the edge if present; absence is success.
func (s *EngagementService) Unlike(ctx context.Context, userID, postID uuid.UUID) error {
	if err := s.likeRepo.Delete(ctx, userID, postID); err != nil {
		return apperrors.Store("failed to delete like", err)
	}
	return nil
}

// AddComment validates before any write and appends a comment row. The
// fan-out self-skip means commenting on your own post produces no
// notification.
func (s *EngagementService) AddComment(ctx context.Context, userID, postID uuid.UUID, content string) (*models.Comment, error) {
	if content == "" {
		return nil, apperrors.Validation("comment content is required")
	}
	if utf8.RuneCountInString(content) > s.maxCommentLength {
		return nil, apperrors.Validation("comment content too long")
	}

	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, apperrors.Store("failed to get post", err)
	}
	if post == nil {
		return nil, apperrors.NotFound("post not found")
	}

	comment := &models.Comment{
		PostID:  postID,
		UserID:  userID,
		Content: content,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, apperrors.Store("failed to create comment", err)
	}

	s.notifier.Notify(ctx, post.AuthorID, userID, models.NotificationComment, &postID)

	s.logger.WithFields(map[string]interface{}{
		"comment_id": comment.ID,
		"user_id":    userID,
		"post_id":    postID,
	}).Info("Comment created")

	return comment, nil
}

// CountLikes counts live edges at query time. Works for deactivated posts
// too: soft delete keeps the rows addressable.
func (s *EngagementService) CountLikes(ctx context.Context, postID uuid.UUID) (int64, error) {
	count, err := s.likeRepo.CountByPostID(ctx, postID)
	if err != nil {
		return 0, apperrors.Store("failed to count likes", err)
	}
	return count, nil
}

func (s *EngagementService) CountComments(ctx context.Context, postID uuid.UUID) (int64, error) {
	count, err := s.commentRepo.CountByPostID(ctx, postID)
	if err != nil {
		return 0, apperrors.Store("failed to count comments", err)
	}
	return count, nil
}

func (s *EngagementService) IsLiked(ctx context.Context, userID, postID uuid.UUID) (bool, error) {
	liked, err := s.likeRepo.IsLiked(ctx, userID, postID)
	if err != nil {
		return false, apperrors.Store("failed to check like status", err)
	}
	return liked, nil
}

func (s *EngagementService) ListComments(ctx context.Context, postID uuid.UUID, page, limit int) ([]*models.Comment, error) {
	page, limit = normalizePage(page, limit, defaultPageSize, maxPageSize)

	comments, err := s.commentRepo.ListByPostID(ctx, postID, (page-1)*limit, limit)
	if err != nil {
		return nil, apperrors.Store("failed to list comments", err)
	}
	return comments, nil
}
