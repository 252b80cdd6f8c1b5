package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pulse-social/pulse-social/internal/config"
	"github.com/pulse-social/pulse-social/internal/handlers"
	"github.com/pulse-social/pulse-social/internal/middleware"
	"github.com/pulse-social/pulse-social/internal/repository"
	"github.com/pulse-social/pulse-social/internal/services"
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
	logger.Info("Starting social feed API server...")

	db, err := repository.NewDatabase(&cfg.Database)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	if err := db.AutoMigrate(); err != nil {
		logger.WithError(err).Fatal("Failed to migrate database")
	}

	redisClient := cache.NewRedisClient(
		cfg.Redis.Addr(),
		cfg.Redis.Password,
		cfg.Redis.DB,
		cfg.Redis.PoolSize,
		cfg.Redis.MinIdleConns,
	)
	defer redisClient.Close()

	ctx := context.Background()
	if err := redisClient.Ping(ctx); err != nil {
		logger.WithError(err).Fatal("Failed to connect to Redis")
	}

	notificationProducer := queue.NewKafkaProducer(cfg.Kafka.Brokers, cfg.Kafka.Topics.NotificationEvents)
	defer notificationProducer.Close()

	userRepo := repository.NewUserRepository(db.DB)
	followRepo := repository.NewFollowRepository(db.DB)
	postRepo := repository.NewPostRepository(db.DB)
	likeRepo := repository.NewLikeRepository(db.DB)
	commentRepo := repository.NewCommentRepository(db.DB)
	notificationRepo := repository.NewNotificationRepository(db.DB)

	notificationService := services.NewNotificationService(notificationRepo, notificationProducer, redisClient, &cfg.Notification, logger)
	accountService := services.NewAccountService(userRepo, followRepo, logger)
	graphService := services.NewGraphService(userRepo, followRepo, notificationService, logger)
	engagementService := services.NewEngagementService(postRepo, likeRepo, commentRepo, notificationService, &cfg.Feed, logger)
	feedService := services.NewFeedService(postRepo, followRepo, userRepo, &cfg.Feed, logger)

	accountHandler := handlers.NewAccountHandler(accountService, notificationService, cfg.JWT.Secret, int64(cfg.JWT.ExpireTime.Seconds()))
	graphHandler := handlers.NewGraphHandler(graphService)
	feedHandler := handlers.NewFeedHandler(feedService, engagementService)

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())

	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "healthy",
			"time":   time.Now().Unix(),
		})
	})

	api := router.Group("/api/v1")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", accountHandler.Register)
			auth.POST("/login", accountHandler.Login)
		}

		api.GET("/users/:id", accountHandler.GetProfile)
		api.GET("/users/:id/followers", graphHandler.GetFollowers)
		api.GET("/users/:id/following", graphHandler.GetFollowing)
		api.GET("/users/:id/posts", feedHandler.GetUserPosts)

		protected := api.Group("")
		protected.Use(middleware.NewJWTAuth(&middleware.JWTConfig{Secret: cfg.JWT.Secret}))
		{
			protected.PUT("/users/profile", accountHandler.UpdateProfile)
			protected.POST("/users/:id/follow", graphHandler.Follow)
			protected.DELETE("/users/:id/follow", graphHandler.Unfollow)

			protected.POST("/posts", feedHandler.CreatePost)
			protected.GET("/posts/:id", feedHandler.GetPost)
			protected.DELETE("/posts/:id", feedHandler.DeactivatePost)
			protected.GET("/posts/:id/engagement", feedHandler.GetEngagement)
			protected.POST("/posts/:id/like", feedHandler.LikePost)
			protected.DELETE("/posts/:id/like", feedHandler.UnlikePost)
			protected.POST("/posts/:id/comments", feedHandler.CreateComment)
			protected.GET("/posts/:id/comments", feedHandler.GetPostComments)

			protected.GET("/feed", feedHandler.GetFeed)

			protected.GET("/notifications", accountHandler.ListNotifications)
			protected.GET("/notifications/unread-count", accountHandler.UnreadCount)
			protected.GET("/notifications/stream", accountHandler.StreamNotifications)
			protected.PUT("/notifications/:id/read", accountHandler.MarkNotificationRead)
			protected.PUT("/notifications/read-all", accountHandler.MarkAllNotificationsRead)
		}
	}

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.WithField("port", cfg.Server.Port).Info("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("Failed to start HTTP server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("Server forced to shutdown")
	}

	logger.Info("Server exited")
}

func init() {
	if err := os.MkdirAll("configs", 0755); err != nil {
		log.Printf("Failed to create configs directory: %v", err)
	}

	configPath := "configs/config.yaml"
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := createDefaultConfig(configPath); err != nil {
			log.Printf("Failed to create default config: %v", err)
		}
	}
}

func createDefaultConfig(path string) error {
	defaultConfig := `server:
  port: ":8080"
  mode: "debug"
  read_timeout: 30s
  write_timeout: 30s

database:
  host: "localhost"
  port: 5432
  user: "pulseuser"
  password: "pulsepass"
  dbname: "pulsesocial"
  sslmode: "disable"
  max_open_conns: 100
  max_idle_conns: 10

redis:
  host: "localhost"
  port: 6379
  password: ""
  db: 0
  pool_size: 100
  min_idle_conns: 10

kafka:
  brokers:
    - "localhost:9092"
  topics:
    notification_events: "notification-events"

jwt:
  secret: "your-secret-key-change-in-production"
  expire_time: 24h

feed:
  default_page_size: 20
  max_page_size: 100
  max_post_length: 280
  max_comment_length: 280

notification:
  channel_prefix: "notifications:"
  badge_cache_ttl: 30s`

	return os.WriteFile(path, []byte(defaultConfig), 0644)
}
