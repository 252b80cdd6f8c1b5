package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/pulse-social/pulse-social/internal/apperrors"
	"github.com/pulse-social/pulse-social/internal/models"
	"github.com/pulse-social/pulse-social/internal/repository"
	"github.com/pulse-social/pulse-social/pkg/logger"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned by Login for a bad username or password;
// the handler maps it to 401 without leaking which half was wrong.
var ErrInvalidCredentials = errors.New("invalid username or password")

// AccountService covers registration, login and profile maintenance. Past
// the auth middleware everything trusts the verified user id; nothing here
// re-verifies credentials.
type AccountService struct {
	userRepo   repository.UserRepository
	followRepo repository.FollowRepository
	logger     *logger.Logger
}

func NewAccountService(userRepo repository.UserRepository, followRepo repository.FollowRepository, logger *logger.Logger) *AccountService {
	return &AccountService{
		userRepo:   userRepo,
		followRepo: followRepo,
		logger:     logger,
	}
}

type RegisterRequest struct {
	Username    string `json:"username" binding:"required,min=3,max=30"`
	Password    string `json:"password" binding:"required,min=6,max=50"`
	DisplayName string `json:"display_name" binding:"max=50"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// UpdateProfileRequest carries the mutable profile fields. The username is
// immutable after creation and deliberately absent here.
type UpdateProfileRequest struct {
	DisplayName *string `json:"display_name" binding:"omitempty,max=50"`
	Bio         *string `json:"bio" binding:"omitempty,max=500"`
	Avatar      *string `json:"avatar"`
	Visibility  *string `json:"visibility"`
}

// ProfileView is a profile with its graph counts joined at read time.
type ProfileView struct {
	models.User
	FollowerCount  int `json:"follower_count"`
	FollowingCount int `json:"following_count"`
}

func (s *AccountService) Register(ctx context.Context, req *RegisterRequest) (*models.User, error) {
	existing, err := s.userRepo.GetByUsername(ctx, req.Username)
	if err != nil {
		return nil, apperrors.Store("failed to check username", err)
	}
	if existing != nil {
		return nil, apperrors.Conflict("username already exists")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindStoreFailure, "failed to hash password", err)
	}

	user := &models.User{
		Username:    req.Username,
		Password:    string(hashedPassword),
		DisplayName: req.DisplayName,
		Visibility:  models.VisibilityPublic,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if apperrors.Is(err, apperrors.KindConflict) {
			return nil, err
		}
		return nil, apperrors.Store("failed to create user", err)
	}

	s.logger.WithField("user_id", user.ID).Info("User registered")
	return user, nil
}

func (s *AccountService) Login(ctx context.Context, req *LoginRequest) (*models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, req.Username)
	if err != nil {
		return nil, apperrors.Store("failed to get user", err)
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	s.logger.WithField("user_id", user.ID).Info("User logged in")
	return user, nil
}

func (s *AccountService) GetProfile(ctx context.Context, userID uuid.UUID) (*ProfileView, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, apperrors.Store("failed to get user", err)
	}
	if user == nil {
		return nil, apperrors.NotFound("user not found")
	}

	followers, err := s.followRepo.FollowerIDs(ctx, userID)
	if err != nil {
		return nil, apperrors.Store("failed to get followers", err)
	}
	following, err := s.followRepo.FollowingIDs(ctx, userID)
	if err != nil {
		return nil, apperrors.Store("failed to get following", err)
	}

	return &ProfileView{
		User:           *user,
		FollowerCount:  len(followers),
		FollowingCount: len(following),
	}, nil
}

func (s *AccountService) UpdateProfile(ctx context.Context, userID uuid.UUID, req *UpdateProfileRequest) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, apperrors.Store("failed to get user", err)
	}
	if user == nil {
		return nil, apperrors.NotFound("user not found")
	}

	if req.Visibility != nil {
		switch models.Visibility(*req.Visibility) {
		case models.VisibilityPublic, models.VisibilityPrivate, models.VisibilityFollowersOnly:
			user.Visibility = models.Visibility(*req.Visibility)
		default:
			return nil, apperrors.Validation("unknown visibility mode")
		}
	}
	if req.DisplayName != nil {
		user.DisplayName = *req.DisplayName
	}
	if req.Bio != nil {
		user.Bio = *req.Bio
	}
	if req.Avatar != nil {
		// Opaque blob-store reference; stored and returned, never interpreted.
		user.Avatar = *req.Avatar
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, apperrors.Store("failed to update user", err)
	}

	s.logger.WithField("user_id", user.ID).Info("Profile updated")
	return user, nil
}
