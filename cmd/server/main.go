// Package main runs the asset tracking HTTP server with graceful shutdown.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/assetiq/backend/config"
	"github.com/assetiq/backend/internal/assignments"
	"github.com/assetiq/backend/internal/auth"
	"github.com/assetiq/backend/internal/devices"
	"github.com/assetiq/backend/internal/importer"
	"github.com/assetiq/backend/internal/middleware"
	"github.com/assetiq/backend/internal/offboarding"
	"github.com/assetiq/backend/internal/organizations"
	"github.com/assetiq/backend/internal/reminders"
	"github.com/assetiq/backend/internal/snapshots"
	"github.com/assetiq/backend/internal/sync"
	"github.com/assetiq/backend/pkg/database"
	"github.com/assetiq/backend/pkg/queue"
	"github.com/assetiq/backend/pkg/redis"
	"github.com/assetiq/backend/pkg/response"
	"github.com/assetiq/backend/pkg/storage"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), cfg.Database.MaxConns, cfg.Database.MinConns, logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool, logger); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	var s3Client *storage.S3
	if cfg.AWS.Region != "" {
		s3Cfg := storage.S3Config{
			Region:               cfg.AWS.Region,
			AccessKeyID:          cfg.AWS.AccessKeyID,
			SecretAccessKey:      cfg.AWS.SecretAccessKey,
			SnapshotsBucket:      cfg.AWS.SnapshotsBucket,
			PresignExpireMinutes: cfg.AWS.PresignExpireMinutes,
		}
		s3Client, err = storage.NewS3(ctx, s3Cfg, logger)
		if err != nil {
			logger.Warn("s3 disabled", zap.Error(err))
		}
	}

	tokenValidator := auth.NewTokenValidator(cfg.Auth.Secret, cfg.Auth.Issuer)
	jobQueue := queue.NewQueue(rdb.Client, logger)

	// Organizations
	orgRepo := organizations.NewRepository(pool)
	orgHandler := organizations.NewHandler(orgRepo)

	// Devices and import pipeline
	deviceRepo := devices.NewRepository(pool)
	reconciler := importer.NewReconciler(deviceRepo, logger)
	deviceHandler := devices.NewHandler(deviceRepo, reconciler, orgRepo, logger)

	// Assignments
	assignmentRepo := assignments.NewRepository(pool)
	assignmentHandler := assignments.NewHandler(assignmentRepo)

	// Offboarding
	offboardingRepo := offboarding.NewRepository(pool)
	offboardingHandler := offboarding.NewHandler(offboardingRepo)

	// Authority snapshots
	snapshotRepo := snapshots.NewRepository(pool)
	snapshotService := snapshots.NewService(snapshotRepo, s3Client, logger)
	snapshotHandler := snapshots.NewHandler(snapshotRepo, snapshotService, s3Client)

	// Reminders
	reminderRepo := reminders.NewRepository(pool)
	sweeper := reminders.NewSweeper(orgRepo, deviceRepo, offboardingRepo, reminderRepo, jobQueue, logger)
	reminderHandler := reminders.NewHandler(sweeper, reminderRepo, cfg.Reminder.CronSecret)

	// Demo sync
	syncHandler := sync.NewHandler(deviceRepo, assignmentRepo, logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))

	// Health
	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })

	// Reminder sweep (shared-secret, called by an external scheduler; cron
	// providers differ in which method they can send)
	router.POST("/reminders/run", reminderHandler.Run)
	router.GET("/reminders/run", reminderHandler.Run)

	// Protected API (identity-provider token required)
	api := router.Group("")
	api.Use(middleware.Auth(tokenValidator))
	{
		api.POST("/organizations", orgHandler.Create)

		// Org-scoped routes; the caller's org claim must match the path
		org := api.Group("/orgs/:orgId", middleware.RequireOrg())
		{
			org.GET("", orgHandler.GetByID)
			org.PATCH("/settings", orgHandler.UpdateSettings)

			org.GET("/devices", deviceHandler.List)
			org.POST("/devices", deviceHandler.Create)
			org.GET("/devices/attention", deviceHandler.Attention)
			org.POST("/devices/upsert", deviceHandler.BulkUpsert)
			org.POST("/devices/import", deviceHandler.ImportCSV)
			org.GET("/devices/:id", deviceHandler.GetByID)
			org.PATCH("/devices/:id", deviceHandler.Update)
			org.POST("/devices/:id/seen", deviceHandler.MarkSeen)

			org.POST("/devices/:id/assign", assignmentHandler.Assign)
			org.POST("/devices/:id/return", assignmentHandler.Return)
			org.GET("/devices/:id/assignments", assignmentHandler.History)

			org.POST("/offboarding", offboardingHandler.Create)
			org.GET("/offboarding", offboardingHandler.List)
			org.PATCH("/offboarding/:id", offboardingHandler.Update)

			org.POST("/snapshots/import", snapshotHandler.Import)
			org.GET("/snapshots", snapshotHandler.List)
			org.GET("/snapshots/:id", snapshotHandler.GetByID)

			org.GET("/reminders", reminderHandler.List)

			org.POST("/sync/demo", syncHandler.Run)
		}
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
