package workers

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pulse-social/pulse-social/pkg/cache"
	"github.com/pulse-social/pulse-social/pkg/logger"
	"github.com/pulse-social/pulse-social/pkg/queue"
)

// DeliveryWorker bridges notification production to delivery: it consumes
// the Kafka notification-event topic the fan-out publishes to and
// republishes each event onto the receiver's Redis channel, where live
// subscribers pick it up. The request path never waits on any of this.
type DeliveryWorker struct {
	consumer      *queue.KafkaConsumer
	redis         *cache.RedisClient
	channelPrefix string
	logger        *logger.Logger
	cancel        context.CancelFunc
}

func NewDeliveryWorker(consumer *queue.KafkaConsumer, redis *cache.RedisClient, channelPrefix string, logger *logger.Logger) *DeliveryWorker {
	if channelPrefix == "" {
		channelPrefix = "notifications:"
	}
	return &DeliveryWorker{
		consumer:      consumer,
		redis:         redis,
		channelPrefix: channelPrefix,
		logger:        logger,
	}
}

func (w *DeliveryWorker) Start(ctx context.Context) error {
	ctx, w.cancel = context.WithCancel(ctx)
	w.logger.Info("Notification delivery worker started")

	return w.consumer.Consume(ctx, func(key string, value []byte) error {
		return w.deliver(ctx, value)
	})
}

func (w *DeliveryWorker) deliver(ctx context.Context, raw []byte) error {
	var event queue.Event
	if err := json.Unmarshal(raw, &event); err != nil {
		return fmt.Errorf("failed to decode event: %w", err)
	}
	if event.Type != queue.EventNotificationCreated {
		return nil
	}

	// Data round-trips through interface{} during Event decoding.
	payload, err := json.Marshal(event.Data)
	if err != nil {
		return fmt.Errorf("failed to re-encode event data: %w", err)
	}
	var data queue.NotificationEventData
	if err := json.Unmarshal(payload, &data); err != nil {
		return fmt.Errorf("failed to decode notification event: %w", err)
	}

	channel := w.channelPrefix + data.ReceiverID
	if err := w.redis.Publish(ctx, channel, payload); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", channel, err)
	}

	w.logger.WithFields(map[string]interface{}{
		"receiver_id": data.ReceiverID,
		"kind":        data.Kind,
	}).Debug("Notification event delivered")

	return nil
}

func (w *DeliveryWorker) Stop() error {
	if w.cancel != nil {
		w.cancel()
	}
	return w.consumer.Close()
}
