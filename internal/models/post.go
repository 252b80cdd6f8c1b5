package models

import (
	"time"

	"github.com/google/uuid"
)

type PostCategory string

const (
	CategoryGeneral      PostCategory = "general"
	CategoryAnnouncement PostCategory = "announcement"
	CategoryQuestion     PostCategory = "question"
)

// Post is soft-deleted only: IsActive=false removes it from every read path
// but the row stays so likes, comments and notifications keep a valid target.
type Post struct {
	ID        uuid.UUID    `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	AuthorID  uuid.UUID    `json:"author_id" gorm:"type:uuid;not null;index"`
	Content   string       `json:"content" gorm:"type:text;not null"`
	ImageURL  string       `json:"image_url"`
	Category  PostCategory `json:"category" gorm:"default:general"`
	IsActive  bool         `json:"is_active" gorm:"default:true;index"`
	CreatedAt time.Time    `json:"created_at" gorm:"index"`
	UpdatedAt time.Time    `json:"updated_at"`

	Author User `json:"author" gorm:"foreignKey:AuthorID"`
}

// Like rows are hard-deleted; a soft-delete column would block the unique
// index when a user re-likes a post.
type Like struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID    uuid.UUID `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_likes_user_post"`
	PostID    uuid.UUID `json:"post_id" gorm:"type:uuid;not null;uniqueIndex:idx_likes_user_post"`
	CreatedAt time.Time `json:"created_at"`
}

// Comment is append-only.
type Comment struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	PostID    uuid.UUID `json:"post_id" gorm:"type:uuid;not null;index"`
	UserID    uuid.UUID `json:"user_id" gorm:"type:uuid;not null"`
	Content   string    `json:"content" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at"`

	User User `json:"user" gorm:"foreignKey:UserID"`
}

func (Post) TableName() string {
	return "posts"
}

func (Like) TableName() string {
	return "likes"
}

func (Comment) TableName() string {
	return "comments"
}
