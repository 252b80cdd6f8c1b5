// Package memory provides in-memory implementations of the repository
// interfaces for tests. The follow and like stores enforce the same pair
// uniqueness the database does, so conflict mapping in the services is
// exercised without a running Postgres.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pulse-social/pulse-social/internal/apperrors"
	"github.com/pulse-social/pulse-social/internal/models"
	"github.com/pulse-social/pulse-social/internal/repository"
)

type Store struct {
	mu            sync.Mutex
	users         []models.User
	follows       []models.Follow
	posts         []models.Post
	likes         []models.Like
	comments      []models.Comment
	notifications []models.Notification
}

func New() *Store {
	return &Store{}
}

func (s *Store) Users() repository.UserRepository                 { return &userStore{s} }
func (s *Store) Follows() repository.FollowRepository             { return &followStore{s} }
func (s *Store) Posts() repository.PostRepository                 { return &postStore{s} }
func (s *Store) Likes() repository.LikeRepository                 { return &likeStore{s} }
func (s *Store) Comments() repository.CommentRepository           { return &commentStore{s} }
func (s *Store) Notifications() repository.NotificationRepository { return &notificationStore{s} }

func assignID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

func stampTime(t *time.Time) {
	if t.IsZero() {
		*t = time.Now()
	}
}

func paginate(length, offset, limit int) (int, int) {
	if offset > length {
		offset = length
	}
	end := offset + limit
	if limit <= 0 || end > length {
		end = length
	}
	return offset, end
}

type userStore struct{ s *Store }

func (r *userStore) Create(ctx context.Context, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Username == user.Username {
			return apperrors.Conflict("username already taken")
		}
	}
	assignID(&user.ID)
	stampTime(&user.CreatedAt)
	r.s.users = append(r.s.users, *user)
	return nil
}

func (r *userStore) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.users {
		if r.s.users[i].ID == id {
			u := r.s.users[i]
			return &u, nil
		}
	}
	return nil, nil
}

func (r *userStore) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.users {
		if r.s.users[i].Username == username {
			u := r.s.users[i]
			return &u, nil
		}
	}
	return nil, nil
}

func (r *userStore) Update(ctx context.Context, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.users {
		if r.s.users[i].ID == user.ID {
			r.s.users[i] = *user
			return nil
		}
	}
	return apperrors.NotFound("user not found")
}

type followStore struct{ s *Store }

func (r *followStore) Create(ctx context.Context, follow *models.Follow) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, f := range r.s.follows {
		if f.FollowerID == follow.FollowerID && f.FollowingID == follow.FollowingID {
			return apperrors.Conflict("already following")
		}
	}
	assignID(&follow.ID)
	stampTime(&follow.CreatedAt)
	r.s.follows = append(r.s.follows, *follow)
	return nil
}

func (r *followStore) Delete(ctx context.Context, followerID, followingID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	kept := r.s.follows[:0]
	for _, f := range r.s.follows {
		if f.FollowerID == followerID && f.FollowingID == followingID {
			continue
		}
		kept = append(kept, f)
	}
	r.s.follows = kept
	return nil
}

func (r *followStore) FollowerIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var ids []uuid.UUID
	for _, f := range r.s.follows {
		if f.FollowingID == userID {
			ids = append(ids, f.FollowerID)
		}
	}
	return ids, nil
}

func (r *followStore) FollowingIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var ids []uuid.UUID
	for _, f := range r.s.follows {
		if f.FollowerID == userID {
			ids = append(ids, f.FollowingID)
		}
	}
	return ids, nil
}

func (r *followStore) IsFollowing(ctx context.Context, followerID, followingID uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, f := range r.s.follows {
		if f.FollowerID == followerID && f.FollowingID == followingID {
			return true, nil
		}
	}
	return false, nil
}

type postStore struct{ s *Store }

func (r *postStore) Create(ctx context.Context, post *models.Post) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	assignID(&post.ID)
	stampTime(&post.CreatedAt)
	r.s.posts = append(r.s.posts, *post)
	return nil
}

func (r *postStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.posts {
		if r.s.posts[i].ID == id && r.s.posts[i].IsActive {
			p := r.s.posts[i]
			return &p, nil
		}
	}
	return nil, nil
}

func (r *postStore) ListByAuthor(ctx context.Context, authorID uuid.UUID, offset, limit int) ([]*models.Post, error) {
	return r.ListByAuthors(ctx, []uuid.UUID{authorID}, offset, limit)
}

func (r *postStore) ListByAuthors(ctx context.Context, authorIDs []uuid.UUID, offset, limit int) ([]*models.Post, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	authors := make(map[uuid.UUID]bool, len(authorIDs))
	for _, id := range authorIDs {
		authors[id] = true
	}
	var matched []models.Post
	for _, p := range r.s.posts {
		if p.IsActive && authors[p.AuthorID] {
			matched = append(matched, p)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID.String() > matched[j].ID.String()
	})
	start, end := paginate(len(matched), offset, limit)
	out := make([]*models.Post, 0, end-start)
	for i := start; i < end; i++ {
		p := matched[i]
		out = append(out, &p)
	}
	return out, nil
}

func (r *postStore) Deactivate(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.posts {
		if r.s.posts[i].ID == id {
			r.s.posts[i].IsActive = false
			return nil
		}
	}
	return nil
}

type likeStore struct{ s *Store }

func (r *likeStore) Create(ctx context.Context, like *models.Like) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, l := range r.s.likes {
		if l.UserID == like.UserID && l.PostID == like.PostID {
			return false, nil
		}
	}
	assignID(&like.ID)
	stampTime(&like.CreatedAt)
	r.s.likes = append(r.s.likes, *like)
	return true, nil
}

func (r *likeStore) Delete(ctx context.Context, userID, postID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	kept := r.s.likes[:0]
	for _, l := range r.s.likes {
		if l.UserID == userID && l.PostID == postID {
			continue
		}
		kept = append(kept, l)
	}
	r.s.likes = kept
	return nil
}

func (r *likeStore) CountByPostID(ctx context.Context, postID uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var count int64
	for _, l := range r.s.likes {
		if l.PostID == postID {
			count++
		}
	}
	return count, nil
}

func (r *likeStore) IsLiked(ctx context.Context, userID, postID uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, l := range r.s.likes {
		if l.UserID == userID && l.PostID == postID {
			return true, nil
		}
	}
	return false, nil
}

type commentStore struct{ s *Store }

func (r *commentStore) Create(ctx context.Context, comment *models.Comment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	assignID(&comment.ID)
	stampTime(&comment.CreatedAt)
	r.s.comments = append(r.s.comments, *comment)
	return nil
}

func (r *commentStore) ListByPostID(ctx context.Context, postID uuid.UUID, offset, limit int) ([]*models.Comment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var matched []models.Comment
	for _, c := range r.s.comments {
		if c.PostID == postID {
			matched = append(matched, c)
		}
	}
	start, end := paginate(len(matched), offset, limit)
	out := make([]*models.Comment, 0, end-start)
	for i := start; i < end; i++ {
		c := matched[i]
		out = append(out, &c)
	}
	return out, nil
}

func (r *commentStore) CountByPostID(ctx context.Context, postID uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var count int64
	for _, c := range r.s.comments {
		if c.PostID == postID {
			count++
		}
	}
	return count, nil
}

type notificationStore struct{ s *Store }

func (r *notificationStore) Create(ctx context.Context, notification *models.Notification) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	assignID(&notification.ID)
	stampTime(&notification.CreatedAt)
	r.s.notifications = append(r.s.notifications, *notification)
	return nil
}

func (r *notificationStore) ListByReceiver(ctx context.Context, receiverID uuid.UUID, offset, limit int) ([]*models.Notification, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var matched []models.Notification
	for _, n := range r.s.notifications {
		if n.ReceiverID == receiverID {
			matched = append(matched, n)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID.String() > matched[j].ID.String()
	})
	start, end := paginate(len(matched), offset, limit)
	out := make([]*models.Notification, 0, end-start)
	for i := start; i < end; i++ {
		n := matched[i]
		out = append(out, &n)
	}
	return out, nil
}

func (r *notificationStore) CountUnread(ctx context.Context, receiverID uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var count int64
	for _, n := range r.s.notifications {
		if n.ReceiverID == receiverID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (r *notificationStore) MarkRead(ctx context.Context, receiverID, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.notifications {
		if r.s.notifications[i].ID == id && r.s.notifications[i].ReceiverID == receiverID {
			r.s.notifications[i].IsRead = true
			return nil
		}
	}
	return apperrors.NotFound("notification not found")
}

func (r *notificationStore) MarkAllRead(ctx context.Context, receiverID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.notifications {
		if r.s.notifications[i].ReceiverID == receiverID {
			r.s.notifications[i].IsRead = true
		}
	}
	return nil
}
