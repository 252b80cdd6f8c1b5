package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/pulse-social/pulse-social/internal/apperrors"
	"github.com/pulse-social/pulse-social/internal/config"
	"github.com/pulse-social/pulse-social/internal/models"
	"github.com/pulse-social/pulse-social/internal/repository"
	"github.com/pulse-social/pulse-social/pkg/cache"
	"github.com/pulse-social/pulse-social/pkg/logger"
	"github.com/pulse-social/pulse-social/pkg/queue"
)

// EventPublisher is the producer side of the notification event stream.
// Satisfied by queue.KafkaProducer.
type EventPublisher interface {
	Publish(ctx context.Context, key string, value interface{}) error
}

// NotificationCache is the Redis surface the badge count and the live
// subscription ride on. Satisfied by cache.RedisClient.
type NotificationCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	Subscribe(ctx context.Context, channels ...string) cache.Subscription
}

// NotificationService is the fan-out boundary. Notify is called inline from
// the follow/like/comment mutations; nothing that goes wrong here is allowed
// to escape back into the triggering operation.
type NotificationService struct {
	notificationRepo repository.NotificationRepository
	producer         EventPublisher
	redis            NotificationCache
	channelPrefix    string
	badgeTTL         time.Duration
	logger           *logger.Logger
}

func NewNotificationService(
	notificationRepo repository.NotificationRepository,
	producer EventPublisher,
	redis NotificationCache,
	cfg *config.NotificationConfig,
	logger *logger.Logger,
) *NotificationService {
	channelPrefix := "notifications:"
	badgeTTL := 30 * time.Second
	if cfg != nil {
		if cfg.ChannelPrefix != "" {
			channelPrefix = cfg.ChannelPrefix
		}
		if cfg.BadgeCacheTTL > 0 {
			badgeTTL = cfg.BadgeCacheTTL
		}
	}
	return &NotificationService{
		notificationRepo: notificationRepo,
		producer:         producer,
		redis:            redis,
		channelPrefix:    channelPrefix,
		badgeTTL:         badgeTTL,
		logger:           logger,
	}
}

// Notify writes one unread notification row for the receiver and produces
// the matching event, best-effort. Self-notifications are skipped silently.
// Failures are logged and swallowed: engagement correctness never depends on
// notification delivery.
func (s *NotificationService) Notify(ctx context.Context, receiverID, senderID uuid.UUID, kind models.NotificationType, postID *uuid.UUID) {
	if receiverID == senderID {
		return
	}

	notification := &models.Notification{
		ReceiverID: receiverID,
		SenderID:   senderID,
		Type:       kind,
		PostID:     postID,
		IsRead:     false,
	}

	if err := s.notificationRepo.Create(ctx, notification); err != nil {
		s.logger.WithError(err).WithFields(map[string]interface{}{
			"receiver_id": receiverID,
			"sender_id":   senderID,
			"kind":        kind,
		}).Error("Failed to write notification")
		return
	}

	s.invalidateBadge(ctx, receiverID)
	s.publishEvent(ctx, notification)
}

func (s *NotificationService) publishEvent(ctx context.Context, notification *models.Notification) {
	if s.producer == nil {
		return
	}

	data := queue.NotificationEventData{
		NotificationID: notification.ID.String(),
		ReceiverID:     notification.ReceiverID.String(),
		SenderID:       notification.SenderID.String(),
		Kind:           string(notification.Type),
		CreatedAt:      notification.CreatedAt.Format(time.RFC3339),
	}
	if notification.PostID != nil {
		data.PostID = notification.PostID.String()
	}

	event := queue.Event{
		Type:      queue.EventNotificationCreated,
		Timestamp: notification.CreatedAt,
		Data:      data,
	}
	if err := s.producer.Publish(ctx, notification.ReceiverID.String(), event); err != nil {
		s.logger.WithError(err).Error("Failed to publish notification event")
	}
}

func (s *NotificationService) badgeKey(receiverID uuid.UUID) string {
	return s.channelPrefix + "badge:" + receiverID.String()
}

// Channel names the per-user pub/sub channel notification events are
// delivered on.
func (s *NotificationService) Channel(receiverID uuid.UUID) string {
	return s.channelPrefix + receiverID.String()
}

func (s *NotificationService) invalidateBadge(ctx context.Context, receiverID uuid.UUID) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Delete(ctx, s.badgeKey(receiverID)); err != nil {
		s.logger.WithError(err).Debug("Failed to invalidate badge cache")
	}
}

func (s *NotificationService) List(ctx context.Context, receiverID uuid.UUID, page, limit int) ([]*models.Notification, error) {
	page, limit = normalizePage(page, limit, defaultPageSize, maxPageSize)

	notifications, err := s.notificationRepo.ListByReceiver(ctx, receiverID, (page-1)*limit, limit)
	if err != nil {
		return nil, apperrors.Store("failed to list notifications", err)
	}
	return notifications, nil
}

// UnreadCount is the badge number. It is served from a short-lived Redis
// entry when one exists; the store stays authoritative.
func (s *NotificationService) UnreadCount(ctx context.Context, receiverID uuid.UUID) (int64, error) {
	if s.redis != nil {
		if cached, err := s.redis.Get(ctx, s.badgeKey(receiverID)); err == nil {
			if count, err := strconv.ParseInt(cached, 10, 64); err == nil {
				return count, nil
			}
		}
	}

	count, err := s.notificationRepo.CountUnread(ctx, receiverID)
	if err != nil {
		return 0, apperrors.Store("failed to count unread notifications", err)
	}

	if s.redis != nil {
		if err := s.redis.Set(ctx, s.badgeKey(receiverID), strconv.FormatInt(count, 10), s.badgeTTL); err != nil {
			s.logger.WithError(err).Debug("Failed to cache badge count")
		}
	}
	return count, nil
}

func (s *NotificationService) MarkRead(ctx context.Context, receiverID, notificationID uuid.UUID) error {
	if err := s.notificationRepo.MarkRead(ctx, receiverID, notificationID); err != nil {
		if apperrors.Is(err, apperrors.KindNotFound) {
			return err
		}
		return apperrors.Store("failed to mark notification read", err)
	}
	s.invalidateBadge(ctx, receiverID)
	return nil
}

func (s *NotificationService) MarkAllRead(ctx context.Context, receiverID uuid.UUID) error {
	if err := s.notificationRepo.MarkAllRead(ctx, receiverID); err != nil {
		return apperrors.Store("failed to mark notifications read", err)
	}
	s.invalidateBadge(ctx, receiverID)
	return nil
}

// Subscribe opens an at-least-once stream of notification events for one
// user, backed by the per-user Redis channel the delivery worker publishes
// to. The stream closes when ctx is cancelled.
func (s *NotificationService) Subscribe(ctx context.Context, receiverID uuid.UUID) (<-chan queue.NotificationEventData, error) {
	if s.redis == nil {
		return nil, fmt.Errorf("notification subscription channel not configured")
	}

	sub := s.redis.Subscribe(ctx, s.Channel(receiverID))
	events := make(chan queue.NotificationEventData)

	go func() {
		defer close(events)
		defer sub.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-sub.Messages():
				if !ok {
					return
				}
				var data queue.NotificationEventData
				if err := json.Unmarshal([]byte(msg.Payload), &data); err != nil {
					s.logger.WithError(err).Warn("Dropping malformed notification event")
					continue
				}
				select {
				case events <- data:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return events, nil
}
