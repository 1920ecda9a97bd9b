package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"

	_ "github.com/ringbuz/ringbuz-api/api/swagger"
	"github.com/ringbuz/ringbuz-api/internal/handler"
	"github.com/ringbuz/ringbuz-api/internal/repository"
	"github.com/ringbuz/ringbuz-api/internal/router"
	"github.com/ringbuz/ringbuz-api/internal/service"
	"github.com/ringbuz/ringbuz-api/pkg/cache"
	"github.com/ringbuz/ringbuz-api/pkg/config"
	"github.com/ringbuz/ringbuz-api/pkg/database"
	"github.com/ringbuz/ringbuz-api/pkg/export"
	"github.com/ringbuz/ringbuz-api/pkg/jobs"
	"github.com/ringbuz/ringbuz-api/pkg/logger"
	"github.com/ringbuz/ringbuz-api/pkg/storage"
)

// @title RingBuz API
// @version 1.0.0
// @description Wallpapers and ringtones catalog service
// @BasePath /api/v1
// @schemes http https

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck
	sugar := logr.Sugar()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		sugar.Fatalw("failed to connect to database", "error", err)
	}
	defer db.Close()

	if err := database.Migrate(db, cfg.Database); err != nil {
		sugar.Fatalw("failed to run migrations", "error", err)
	}

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		sugar.Warnw("redis unavailable, caching disabled", "error", err)
		redisClient = nil
	}
	defer func() {
		if redisClient != nil {
			redisClient.Close() //nolint:errcheck
		}
	}()

	objectStore, err := storage.NewMinioStore(cfg.Storage)
	if err != nil {
		sugar.Fatalw("failed to init object storage", "error", err)
	}

	exportStorage, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
	if err != nil {
		sugar.Fatalw("failed to init export storage", "error", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)

	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	contentRepo := repository.NewContentRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	likeRepo := repository.NewLikeRepository(db)
	pageRepo := repository.NewPageRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)
	exportRepo := repository.NewExportRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Cache.ListingTTL, logr, cfg.Cache.Enabled && redisClient != nil)

	authSvc := service.NewAuthService(profileRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             cfg.JWT.Issuer,
	})

	contentSvc := service.NewContentService(contentRepo, categoryRepo, objectStore, cacheRepo, nil, profileRepo, validate, logr, service.ContentServiceConfig{
		CacheEnabled: cfg.Cache.Enabled && redisClient != nil,
		ListingTTL:   cfg.Cache.ListingTTL,
	})

	gcQueue := jobs.NewQueue("storage-gc", contentSvc.GCHandler(), jobs.QueueConfig{
		Workers:    cfg.Uploads.GCWorkers,
		MaxRetries: cfg.Uploads.GCRetries,
		RetryDelay: cfg.Uploads.GCRetryDelay,
		Logger:     logr,
	})
	contentSvc.BindGCQueue(gcQueue)

	uploadSvc := service.NewUploadService(contentRepo, categoryRepo, objectStore, profileRepo, validate, logr, service.UploadServiceConfig{
		MaxFileSize:     cfg.Uploads.MaxFileSizeBytes,
		URLCheckTimeout: cfg.Uploads.URLCheckTimeout,
	})

	categorySvc := service.NewCategoryService(categoryRepo, contentRepo, cacheRepo, profileRepo, validate, logr)
	profileSvc := service.NewProfileService(profileRepo, validate, logr)
	likeSvc := service.NewLikeService(likeRepo, contentRepo, logr)
	pageSvc := service.NewPageService(pageRepo, validate, logr)
	settingsSvc := service.NewSettingsService(settingsRepo, logr)
	sitemapSvc := service.NewSitemapService(contentRepo, categoryRepo, pageRepo, settingsRepo, cacheSvc, logr, cfg.Site.BaseURL, 10*time.Minute)
	statsSvc := service.NewStatsService(contentRepo, cacheSvc, metricsSvc, logr, cfg.Cache.StatsTTL)

	exportSvc := service.NewExportService(contentRepo, exportRepo, exportStorage, signer, service.ExportConfig{
		APIPrefix: cfg.APIPrefix,
		ResultTTL: cfg.Exports.SignedURLTTL,
	}, logr, export.NewCSVExporter(), export.NewPDFExporter())

	exportQueue := jobs.NewQueue("catalog-exports", exportSvc.Handler(), jobs.QueueConfig{
		Workers:    cfg.Exports.WorkerConcurrency,
		MaxRetries: cfg.Exports.WorkerRetries,
		Logger:     logr,
	})
	exportSvc.BindQueue(exportQueue)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	gcQueue.Start(ctx)
	exportQueue.Start(ctx)

	if cfg.Exports.CleanupInterval > 0 {
		go func() {
			ticker := time.NewTicker(cfg.Exports.CleanupInterval)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					if removed, err := exportSvc.Cleanup(cfg.Exports.SignedURLTTL); err != nil {
						sugar.Warnw("export cleanup failed", "error", err)
					} else if len(removed) > 0 {
						sugar.Infow("export cleanup", "removed", len(removed))
					}
				}
			}
		}()
	}

	engine := router.New(router.Handlers{
		Auth:     handler.NewAuthHandler(authSvc),
		Content:  handler.NewContentHandler(contentSvc, uploadSvc, metricsSvc),
		Likes:    handler.NewLikeHandler(likeSvc),
		Category: handler.NewCategoryHandler(categorySvc),
		Profile:  handler.NewProfileHandler(profileSvc),
		Pages:    handler.NewPageHandler(pageSvc),
		SEO:      handler.NewSEOHandler(sitemapSvc),
		Settings: handler.NewSettingsHandler(settingsSvc),
		Exports:  handler.NewExportHandler(exportSvc),
		Stats:    handler.NewStatsHandler(statsSvc),
		Metrics:  handler.NewMetricsHandler(metricsSvc),
	}, router.Deps{
		Config:      cfg,
		Logger:      logr,
		AuthService: authSvc,
		Metrics:     metricsSvc,
		Profiles:    profileRepo,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		sugar.Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			sugar.Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	sugar.Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		sugar.Errorw("graceful shutdown failed", "error", err)
	}
	gcQueue.Stop()
	exportQueue.Stop()
}
