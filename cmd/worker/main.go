package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/pulse-social/pulse-social/internal/config"
	"github.com/pulse-social/pulse-social/internal/workers"
	"github.com/pulse-social/pulse-social/pkg/cache"
	"github.com/pulse-social/pulse-social/pkg/logger"
	"github.com/pulse-social/pulse-social/pkg/queue"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := logger.NewLogger()
	logger.Info("Starting notification delivery worker...")

	redisClient := cache.NewRedisClient(
		cfg.Redis.Addr(),
		cfg.Redis.Password,
		cfg.Redis.DB,
		cfg.Redis.PoolSize,
		cfg.Redis.MinIdleConns,
	)
	defer redisClient.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := redisClient.Ping(ctx); err != nil {
		logger.WithError(err).Fatal("Failed to connect to Redis")
	}

	consumer := queue.NewKafkaConsumer(cfg.Kafka.Brokers, cfg.Kafka.Topics.NotificationEvents, "notification-delivery-group")

	worker := workers.NewDeliveryWorker(consumer, redisClient, cfg.Notification.ChannelPrefix, logger)

	go func() {
		if err := worker.Start(ctx); err != nil && err != context.Canceled {
			logger.WithError(err).Error("Delivery worker stopped with error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down worker...")

	if err := worker.Stop(); err != nil {
		logger.WithError(err).Error("Failed to stop delivery worker")
	}

	logger.Info("Worker exited")
}
