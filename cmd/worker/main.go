package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	"github.com/sonna/artists-backend/internal/database"
	"github.com/sonna/artists-backend/internal/mailer"
	"github.com/sonna/artists-backend/internal/metadata"
	"github.com/sonna/artists-backend/internal/review"
	"github.com/sonna/artists-backend/internal/tasks"
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

	logger.Info("starting Sonna For Artists worker")

	db, err := database.Connect(&cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	// The worker never enqueues follow-up jobs itself; fan-out runs
	// inline when the decision is recorded through the API.
	reviewService := review.NewService(db, nil, logger)

	mbClient := metadata.NewClient(&cfg.MusicBrainz)
	detector := metadata.NewDetector(db, mbClient, logger)

	contractMailer, err := mailer.New(db, logger)
	if err != nil {
		logger.Error("failed to initialise mailer", "error", err)
		os.Exit(1)
	}

	srv := queue.NewServer(&cfg.Redis, cfg.Worker.Concurrency)

	handler := tasks.NewHandler(db, logger, detector, contractMailer, reviewService)

	mux := asynq.NewServeMux()
	handler.RegisterHandlers(mux)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		logger.Info("shutting down worker...")
		srv.Shutdown()
		cancel()
	}()

	logger.Info("worker started, waiting for tasks...")

	if err := srv.Run(mux); err != nil {
		logger.Error("worker error", "error", err)
	}

	<-ctx.Done()

	sqlDB, _ := db.DB()
	sqlDB.Close()

	logger.Info("worker stopped")
}
