package models

import (
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	NotificationFollow  NotificationType = "follow"
	NotificationLike    NotificationType = "like"
	NotificationComment NotificationType = "comment"
)

// Notification has a lifecycle independent from the action that produced it;
// deleting or deactivating the source never touches these rows.
type Notification struct {
	ID         uuid.UUID        `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	ReceiverID uuid.UUID        `json:"receiver_id" gorm:"type:uuid;not null;index"`
	SenderID   uuid.UUID        `json:"sender_id" gorm:"type:uuid;not null"`
	Type       NotificationType `json:"type" gorm:"size:20;not null"`
	PostID     *uuid.UUID       `json:"post_id" gorm:"type:uuid"`
	IsRead     bool             `json:"is_read" gorm:"default:false;index"`
	CreatedAt  time.Time        `json:"created_at" gorm:"index"`
}

func (Notification) TableName() string {
	return "notifications"
}
