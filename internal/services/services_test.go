package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pulse-social/pulse-social/internal/models"
	"github.com/pulse-social/pulse-social/internal/repository/memory"
	"github.com/pulse-social/pulse-social/pkg/logger"
)

// testEnv wires the services against the in-memory store, with no event
// producer and no Redis: fan-out then exercises only the store write path.
type testEnv struct {
	store      *memory.Store
	notifier   *NotificationService
	graph      *GraphService
	engagement *EngagementService
	feed       *FeedService
	accounts   *AccountService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := memory.New()
	log := logger.NewLogger()

	notifier := NewNotificationService(store.Notifications(), nil, nil, nil, log)
	return &testEnv{
		store:      store,
		notifier:   notifier,
		graph:      NewGraphService(store.Users(), store.Follows(), notifier, log),
		engagement: NewEngagementService(store.Posts(), store.Likes(), store.Comments(), notifier, nil, log),
		feed:       NewFeedService(store.Posts(), store.Follows(), store.Users(), nil, log),
		accounts:   NewAccountService(store.Users(), store.Follows(), log),
	}
}

func (e *testEnv) addUser(t *testing.T, username string) uuid.UUID {
	t.Helper()
	user := &models.User{Username: username, Password: "x", Visibility: models.VisibilityPublic}
	if err := e.store.Users().Create(context.Background(), user); err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return user.ID
}

func (e *testEnv) addPost(t *testing.T, authorID uuid.UUID, content string, createdAt time.Time) uuid.UUID {
	t.Helper()
	post := &models.Post{
		AuthorID:  authorID,
		Content:   content,
		Category:  models.CategoryGeneral,
		IsActive:  true,
		CreatedAt: createdAt,
	}
	if err := e.store.Posts().Create(context.Background(), post); err != nil {
		t.Fatalf("create post: %v", err)
	}
	return post.ID
}

func (e *testEnv) notificationsFor(t *testing.T, receiverID uuid.UUID) []*models.Notification {
	t.Helper()
	notifications, err := e.store.Notifications().ListByReceiver(context.Background(), receiverID, 0, 100)
	if err != nil {
		t.Fatalf("list notifications: %v", err)
	}
	return notifications
}
