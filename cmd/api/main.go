package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	_ "github.com/uniconnect/uniconnect-api/api/swagger"
	"github.com/uniconnect/uniconnect-api/internal/handler"
	"github.com/uniconnect/uniconnect-api/internal/repository"
	"github.com/uniconnect/uniconnect-api/internal/router"
	"github.com/uniconnect/uniconnect-api/internal/service"
	"github.com/uniconnect/uniconnect-api/pkg/cache"
	"github.com/uniconnect/uniconnect-api/pkg/config"
	"github.com/uniconnect/uniconnect-api/pkg/database"
	"github.com/uniconnect/uniconnect-api/pkg/jobs"
	"github.com/uniconnect/uniconnect-api/pkg/logger"
	"github.com/uniconnect/uniconnect-api/pkg/storage"
)

// @title UniConnect API
// @version 1.0.0
// @description University complaint management service
// @BasePath /api
// @schemes http

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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to redis", "error", err)
	}
	defer redisClient.Close()

	validate := validator.New()
	metrics := service.NewMetricsService()

	accountRepo := repository.NewAccountRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	complaintRepo := repository.NewComplaintRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	cacheSvc := service.NewCacheService(cacheRepo, metrics)

	authSvc := service.NewAuthService(accountRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             cfg.JWT.Issuer,
	})
	accountSvc := service.NewAccountService(accountRepo, validate, logr)
	categorySvc := service.NewCategoryService(categoryRepo, validate, logr)
	complaintSvc := service.NewComplaintService(complaintRepo, categoryRepo, accountRepo, cacheSvc, validate, logr)
	statsSvc := service.NewStatsService(complaintRepo, cacheSvc, cfg.Stats.CacheTTL, logr)

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var reportHandler *handler.ReportHandler
	var reportQueue *jobs.Queue
	if cfg.Reports.Enabled {
		store, err := storage.NewLocalStorage(cfg.Reports.StorageDir)
		if err != nil {
			logr.Sugar().Fatalw("failed to init report storage", "error", err)
		}
		signer := storage.NewSignedURLSigner(cfg.Reports.SignedURLSecret, cfg.Reports.SignedURLTTL)
		reportRepo := repository.NewReportRepository(db)
		exportSvc := service.NewExportService(complaintRepo, store, signer, service.ExportConfig{
			APIPrefix: cfg.APIPrefix,
			ResultTTL: cfg.Reports.SignedURLTTL,
		}, logr, nil, nil)
		worker := service.NewReportWorker(reportRepo, exportSvc, cfg.Reports.WorkerRetries, logr)
		reportQueue = jobs.NewQueue("reports", worker.Handle, jobs.QueueConfig{
			Workers:    cfg.Reports.WorkerConcurrency,
			MaxRetries: cfg.Reports.WorkerRetries,
			Logger:     logr,
		})
		reportQueue.Start(rootCtx)
		defer reportQueue.Stop()

		reportSvc := service.NewReportService(reportRepo, reportQueue, exportSvc, logr, service.ReportServiceConfig{
			ResultTTL:       cfg.Reports.SignedURLTTL,
			CleanupInterval: cfg.Reports.CleanupInterval,
			MaxRetries:      cfg.Reports.WorkerRetries,
		})
		reportSvc.RecoverPendingJobs(rootCtx)
		reportSvc.StartCleanup(rootCtx)
		reportHandler = handler.NewReportHandler(reportSvc, logr)
	}

	engine := router.New(router.Dependencies{
		Config:      cfg,
		Logger:      logr,
		AuthService: authSvc,
		Metrics:     metrics,
		Auth:        handler.NewAuthHandler(authSvc),
		Accounts:    handler.NewAccountHandler(accountSvc),
		Categories:  handler.NewCategoryHandler(categorySvc),
		Complaints:  handler.NewComplaintHandler(complaintSvc),
		Stats:       handler.NewStatsHandler(statsSvc),
		Reports:     reportHandler,
		Ops:         handler.NewMetricsHandler(metrics, db, redisClient),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Errorw("server failed", "error", err)
			stop()
		}
	}()

	<-rootCtx.Done()
	logr.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
	logr.Info("server stopped")
}
