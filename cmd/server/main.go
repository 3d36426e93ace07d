package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sonna/artists-backend/internal/api"
	"github.com/sonna/artists-backend/internal/auth"
	"github.com/sonna/artists-backend/internal/catalog"
	"github.com/sonna/artists-backend/internal/database"
	"github.com/sonna/artists-backend/internal/review"
	"github.com/sonna/artists-backend/pkg/config"
	"github.com/sonna/artists-backend/pkg/queue"
	"github.com/sonna/artists-backend/pkg/util"
)

func main() {
	// Load .env file
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := util.NewLogger(cfg.Server.Env)
	slog.SetDefault(logger)

	logger.Info("starting Sonna For Artists server",
		"env", cfg.Server.Env,
		"addr", cfg.Server.Addr(),
	)

	db, err := database.Connect(&cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	// Redis backs the task queue and verification throttle. The API
	// degrades without it: submissions still land, jobs just don't run.
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
	})
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		logger.Warn("failed to connect to Redis", "error", err)
		redisClient = nil
	}

	var asynqClient *asynq.Client
	var inspector *asynq.Inspector
	if redisClient != nil {
		asynqClient = queue.NewClient(&cfg.Redis)
		inspector = queue.NewInspector(&cfg.Redis)
	}

	// Services
	authService := auth.NewService(db, redisClient, cfg.Session.TTL(), logger)

	var enqueuer catalog.Enqueuer
	var reviewEnqueuer review.Enqueuer
	if asynqClient != nil {
		enqueuer = asynqClient
		reviewEnqueuer = asynqClient
	}
	catalogService := catalog.NewService(db, enqueuer, logger)
	reviewService := review.NewService(db, reviewEnqueuer, logger)

	if cfg.Analyst.APIKey == "" {
		logger.Warn("ANALYST_API_KEY not set, analyst endpoints disabled")
	}

	router := api.NewRouter(api.RouterConfig{
		DB:             db,
		Redis:          redisClient,
		Inspector:      inspector,
		Logger:         logger,
		AuthService:    authService,
		CatalogService: catalogService,
		ReviewService:  reviewService,
		AnalystAPIKey:  cfg.Analyst.APIKey,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		RateLimitReqs:  cfg.RateLimit.Requests,
		RateLimitSecs:  cfg.RateLimit.WindowSeconds,
		SessionTTLSecs: int(cfg.Session.TTL().Seconds()),
	})

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", cfg.Server.Addr())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if asynqClient != nil {
		asynqClient.Close()
	}
	if inspector != nil {
		inspector.Close()
	}
	if redisClient != nil {
		redisClient.Close()
	}
	sqlDB, _ := db.DB()
	sqlDB.Close()

	logger.Info("server stopped")
}
