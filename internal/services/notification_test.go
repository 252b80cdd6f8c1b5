package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/pulse-social/pulse-social/internal/apperrors"
	"github.com/pulse-social/pulse-social/internal/models"
	"github.com/pulse-social/pulse-social/pkg/cache"
	"github.com/pulse-social/pulse-social/pkg/logger"
	"github.com/pulse-social/pulse-social/pkg/queue"
)

// failingNotificationRepo rejects every write so tests can exercise the
// swallow-and-log contract of the fan-out.
type failingNotificationRepo struct{}

func (failingNotificationRepo) Create(ctx context.Context, n *models.Notification) error {
	return errors.New("store unavailable")
}

func (failingNotificationRepo) ListByReceiver(ctx context.Context, receiverID uuid.UUID, offset, limit int) ([]*models.Notification, error) {
	return nil, nil
}

func (failingNotificationRepo) CountUnread(ctx context.Context, receiverID uuid.UUID) (int64, error) {
	return 0, nil
}

func (failingNotificationRepo) MarkRead(ctx context.Context, receiverID, id uuid.UUID) error {
	return nil
}

func (failingNotificationRepo) MarkAllRead(ctx context.Context, receiverID uuid.UUID) error {
	return nil
}

// fakeNotificationCache is an in-process stand-in for the Redis commands the
// notification service issues.
type fakeNotificationCache struct {
	mu   sync.Mutex
	data map[string]string
	msgs chan *redis.Message
}

func newFakeNotificationCache() *fakeNotificationCache {
	return &fakeNotificationCache{
		data: make(map[string]string),
		msgs: make(chan *redis.Message, 8),
	}
}

func (f *fakeNotificationCache) Get(ctx context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if v, ok := f.data[key]; ok {
		return v, nil
	}
	return "", errors.New("cache miss")
}

func (f *fakeNotificationCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[key] = fmt.Sprint(value)
	return nil
}

func (f *fakeNotificationCache) Delete(ctx context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, k := range keys {
		delete(f.data, k)
	}
	return nil
}

func (f *fakeNotificationCache) Subscribe(ctx context.Context, channels ...string) cache.Subscription {
	return &fakeSubscription{msgs: f.msgs}
}

type fakeSubscription struct {
	msgs chan *redis.Message
}

func (s *fakeSubscription) Messages() <-chan *redis.Message { return s.msgs }

func (s *fakeSubscription) Close() error { return nil }

func TestNotifySkipsSelf(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	bob := env.addUser(t, "bob")

	env.notifier.Notify(ctx, bob, bob, models.NotificationFollow, nil)

	if got := len(env.notificationsFor(t, bob)); got != 0 {
		t.Fatalf("self-notification must be skipped, got %d rows", got)
	}
}

func TestNotifyFailureDoesNotFailTheAction(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	alice := env.addUser(t, "alice")
	bob := env.addUser(t, "bob")
	post := env.addPost(t, bob, "hello", time.Now())

	log := logger.NewLogger()
	broken := NewNotificationService(failingNotificationRepo{}, nil, nil, nil, log)
	engagement := NewEngagementService(env.store.Posts(), env.store.Likes(), env.store.Comments(), broken, nil, log)

	if err := engagement.Like(ctx, alice, post); err != nil {
		t.Fatalf("like must succeed despite notification failure: %v", err)
	}

	liked, err := engagement.IsLiked(ctx, alice, post)
	if err != nil {
		t.Fatalf("is liked: %v", err)
	}
	if !liked {
		t.Fatalf("like edge missing")
	}
	if got := len(env.notificationsFor(t, bob)); got != 0 {
		t.Fatalf("expected no notification rows, got %d", got)
	}
}

func TestFollowNotificationPayload(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	alice := env.addUser(t, "alice")
	bob := env.addUser(t, "bob")

	if err := env.graph.Follow(ctx, alice, bob); err != nil {
		t.Fatalf("follow: %v", err)
	}

	notifications := env.notificationsFor(t, bob)
	if len(notifications) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(notifications))
	}
	n := notifications[0]
	if n.Type != models.NotificationFollow || n.SenderID != alice || n.PostID != nil {
		t.Fatalf("unexpected follow notification %+v", n)
	}
}

func TestUnreadCountAndMarkRead(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	alice := env.addUser(t, "alice")
	carol := env.addUser(t, "carol")
	bob := env.addUser(t, "bob")
	post := env.addPost(t, bob, "hello", time.Now())

	if err := env.engagement.Like(ctx, alice, post); err != nil {
		t.Fatalf("like: %v", err)
	}
	if _, err := env.engagement.AddComment(ctx, carol, post, "nice"); err != nil {
		t.Fatalf("comment: %v", err)
	}

	count, err := env.notifier.UnreadCount(ctx, bob)
	if err != nil {
		t.Fatalf("unread count: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 unread, got %d", count)
	}

	notifications := env.notificationsFor(t, bob)
	if err := env.notifier.MarkRead(ctx, bob, notifications[0].ID); err != nil {
		t.Fatalf("mark read: %v", err)
	}
	count, err = env.notifier.UnreadCount(ctx, bob)
	if err != nil {
		t.Fatalf("unread count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 unread after mark read, got %d", count)
	}

	if err := env.notifier.MarkAllRead(ctx, bob); err != nil {
		t.Fatalf("mark all read: %v", err)
	}
	count, err = env.notifier.UnreadCount(ctx, bob)
	if err != nil {
		t.Fatalf("unread count: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected 0 unread after mark all read, got %d", count)
	}
}

func TestMarkReadUnknownNotification(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	bob := env.addUser(t, "bob")

	err := env.notifier.MarkRead(ctx, bob, uuid.New())
	if !apperrors.Is(err, apperrors.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestMarkReadScopedToReceiver(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	alice := env.addUser(t, "alice")
	bob := env.addUser(t, "bob")
	post := env.addPost(t, bob, "hello", time.Now())

	if err := env.engagement.Like(ctx, alice, post); err != nil {
		t.Fatalf("like: %v", err)
	}
	notifications := env.notificationsFor(t, bob)
	if len(notifications) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(notifications))
	}

	// Another user holding the id cannot mark it read.
	err := env.notifier.MarkRead(ctx, alice, notifications[0].ID)
	if !apperrors.Is(err, apperrors.KindNotFound) {
		t.Fatalf("cross-user mark read should be not found, got %v", err)
	}
	count, err := env.notifier.UnreadCount(ctx, bob)
	if err != nil {
		t.Fatalf("unread count: %v", err)
	}
	if count != 1 {
		t.Fatalf("notification must stay unread, got %d unread", count)
	}

	if err := env.notifier.MarkRead(ctx, bob, notifications[0].ID); err != nil {
		t.Fatalf("owner mark read: %v", err)
	}
}

func TestListNotificationsNewestFirst(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	alice := env.addUser(t, "alice")
	bob := env.addUser(t, "bob")

	base := time.Now().Add(-time.Hour)
	// Inserted out of order; the listing follows created_at, not insertion.
	older := &models.Notification{ReceiverID: bob, SenderID: alice, Type: models.NotificationFollow, CreatedAt: base}
	newer := &models.Notification{ReceiverID: bob, SenderID: alice, Type: models.NotificationFollow, CreatedAt: base.Add(time.Minute)}
	if err := env.store.Notifications().Create(ctx, newer); err != nil {
		t.Fatalf("create notification: %v", err)
	}
	if err := env.store.Notifications().Create(ctx, older); err != nil {
		t.Fatalf("create notification: %v", err)
	}

	notifications, err := env.notifier.List(ctx, bob, 1, 20)
	if err != nil {
		t.Fatalf("list notifications: %v", err)
	}
	if len(notifications) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(notifications))
	}
	if notifications[0].ID != newer.ID || notifications[1].ID != older.ID {
		t.Fatalf("expected newest first, got [%s, %s]", notifications[0].ID, notifications[1].ID)
	}
}

func TestUnreadCountServedFromBadgeCache(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	alice := env.addUser(t, "alice")
	bob := env.addUser(t, "bob")
	post := env.addPost(t, bob, "hello", time.Now())

	fake := newFakeNotificationCache()
	notifier := NewNotificationService(env.store.Notifications(), nil, fake, nil, logger.NewLogger())

	if err := env.engagement.Like(ctx, alice, post); err != nil {
		t.Fatalf("like: %v", err)
	}

	count, err := notifier.UnreadCount(ctx, bob)
	if err != nil {
		t.Fatalf("unread count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 unread, got %d", count)
	}

	// A row written behind the cache's back is not seen until invalidation;
	// the badge serves the cached value.
	extra := &models.Notification{ReceiverID: bob, SenderID: alice, Type: models.NotificationLike}
	if err := env.store.Notifications().Create(ctx, extra); err != nil {
		t.Fatalf("create notification: %v", err)
	}
	count, err = notifier.UnreadCount(ctx, bob)
	if err != nil {
		t.Fatalf("unread count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected cached badge 1, got %d", count)
	}

	// MarkAllRead invalidates; the next read recomputes from the store.
	if err := notifier.MarkAllRead(ctx, bob); err != nil {
		t.Fatalf("mark all read: %v", err)
	}
	count, err = notifier.UnreadCount(ctx, bob)
	if err != nil {
		t.Fatalf("unread count: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected 0 unread after invalidation, got %d", count)
	}
}

func TestSubscribeDeliversEvents(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	env := newTestEnv(t)
	bob := env.addUser(t, "bob")

	fake := newFakeNotificationCache()
	notifier := NewNotificationService(env.store.Notifications(), nil, fake, nil, logger.NewLogger())

	events, err := notifier.Subscribe(ctx, bob)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	want := queue.NotificationEventData{
		NotificationID: uuid.New().String(),
		ReceiverID:     bob.String(),
		SenderID:       uuid.New().String(),
		Kind:           "like",
	}
	payload, err := json.Marshal(want)
	if err != nil {
		t.Fatalf("marshal event: %v", err)
	}

	// A malformed message is dropped, not forwarded.
	fake.msgs <- &redis.Message{Payload: "{not json"}
	fake.msgs <- &redis.Message{Payload: string(payload)}

	select {
	case got := <-events:
		if got != want {
			t.Fatalf("unexpected event %+v", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for event")
	}

	cancel()
	select {
	case _, ok := <-events:
		if ok {
			t.Fatalf("expected closed stream after cancel")
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("stream did not close after cancel")
	}
}
