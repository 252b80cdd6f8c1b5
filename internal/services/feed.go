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

const (
	defaultPageSize      = 20
	maxPageSize          = 100
	defaultMaxPostLength = 280
)

// normalizePage clamps pagination input to sane values; anything below 1
// falls back to the defaults rather than erroring.
func normalizePage(page, limit, defaultLimit, maxLimit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return page, limit
}

// FeedService is the read path over the post store and the social graph,
// plus the post lifecycle (create, deactivate).
type FeedService struct {
	postRepo        repository.PostRepository
	followRepo      repository.FollowRepository
	userRepo        repository.UserRepository
	maxPostLength   int
	defaultPageSize int
	maxPageSize     int
	logger          *logger.Logger
}

func NewFeedService(
	postRepo repository.PostRepository,
	followRepo repository.FollowRepository,
	userRepo repository.UserRepository,
	cfg *config.FeedConfig,
	logger *logger.Logger,
) *FeedService {
	s := &FeedService{
		postRepo:        postRepo,
		followRepo:      followRepo,
		userRepo:        userRepo,
		maxPostLength:   defaultMaxPostLength,
		defaultPageSize: defaultPageSize,
		maxPageSize:     maxPageSize,
		logger:          logger,
	}
	if cfg != nil {
		if cfg.MaxPostLength > 0 {
			s.maxPostLength = cfg.MaxPostLength
		}
		if cfg.DefaultPageSize > 0 {
			s.defaultPageSize = cfg.DefaultPageSize
		}
		if cfg.MaxPageSize > 0 {
			s.maxPageSize = cfg.MaxPageSize
		}
	}
	return s
}

type CreatePostRequest struct {
	Content  string `json:"content"`
	ImageURL string `json:"image_url"`
	Category string `json:"category"`
}

// FeedPage is the typed result of one feed query.
type FeedPage struct {
	Posts []*models.Post `json:"posts"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
}

func (s *FeedService) CreatePost(ctx context.Context, authorID uuid.UUID, req *CreatePostRequest) (*models.Post, error) {
	if req.Content == "" {
		return nil, apperrors.Validation("post content is required")
	}
	if utf8.RuneCountInString(req.Content) > s.maxPostLength {
		return nil, apperrors.Validation("post content too long")
	}

	category := models.PostCategory(req.Category)
	switch category {
	case "":
		category = models.CategoryGeneral
	case models.CategoryGeneral, models.CategoryAnnouncement, models.CategoryQuestion:
	default:
		return nil, apperrors.Validation("unknown post category")
	}

	author, err := s.userRepo.GetByID(ctx, authorID)
	if err != nil {
		return nil, apperrors.Store("failed to get author", err)
	}
	if author == nil {
		return nil, apperrors.NotFound("user not found")
	}

	post := &models.Post{
		AuthorID: authorID,
		Content:  req.Content,
		ImageURL: req.ImageURL,
		Category: category,
		IsActive: true,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, apperrors.Store("failed to create post", err)
	}

	s.logger.WithFields(map[string]interface{}{
		"post_id":   post.ID,
		"author_id": authorID,
	}).Info("Post created")

	return post, nil
}

func (s *FeedService) GetPost(ctx context.Context, postID uuid.UUID) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, apperrors.Store("failed to get post", err)
	}
	if post == nil {
		return nil, apperrors.NotFound("post not found")
	}
	return post, nil
}

// Deactivate soft-deletes a post: a one-way transition, immediately visible
// to every read path. Likes, comments and notifications that reference the
// post are left untouched.
func (s *FeedService) Deactivate(ctx context.Context, userID, postID uuid.UUID) error {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return apperrors.Store("failed to get post", err)
	}
	if post == nil {
		return apperrors.NotFound("post not found")
	}
	if post.AuthorID != userID {
		return apperrors.InvalidOperation("not the post author")
	}

	if err := s.postRepo.Deactivate(ctx, postID); err != nil {
		return apperrors.Store("failed to deactivate post", err)
	}

	s.logger.WithFields(map[string]interface{}{
		"post_id": postID,
		"user_id": userID,
	}).Info("Post deactivated")

	return nil
}

func (s *FeedService) ListUserPosts(ctx context.Context, authorID uuid.UUID, page, limit int) ([]*models.Post, error) {
	page, limit = normalizePage(page, limit, s.defaultPageSize, s.maxPageSize)

	posts, err := s.postRepo.ListByAuthor(ctx, authorID, (page-1)*limit, limit)
	if err != nil {
		return nil, apperrors.Store("failed to list user posts", err)
	}
	return posts, nil
}

// ComposeFeed unions the viewer with their following set and returns the
// active posts of that audience in reverse-chronological order, ties broken
// by id descending. A viewer following no one still sees their own posts.
func (s *FeedService) ComposeFeed(ctx context.Context, viewerID uuid.UUID, page, limit int) (*FeedPage, error) {
	page, limit = normalizePage(page, limit, s.defaultPageSize, s.maxPageSize)

	following, err := s.followRepo.FollowingIDs(ctx, viewerID)
	if err != nil {
		return nil, apperrors.Store("failed to get following set", err)
	}
	audience := append(following, viewerID)

	posts, err := s.postRepo.ListByAuthors(ctx, audience, (page-1)*limit, limit)
	if err != nil {
		return nil, apperrors.Store("failed to query feed posts", err)
	}

	return &FeedPage{
		Posts: posts,
		Page:  page,
		Limit: limit,
	}, nil
}
