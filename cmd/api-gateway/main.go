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
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/noah-isme/teacherhub-gateway/internal/gateway"
	"github.com/noah-isme/teacherhub-gateway/internal/handler"
	"github.com/noah-isme/teacherhub-gateway/internal/repository"
	"github.com/noah-isme/teacherhub-gateway/internal/service"
	"github.com/noah-isme/teacherhub-gateway/pkg/cache"
	"github.com/noah-isme/teacherhub-gateway/pkg/config"
	"github.com/noah-isme/teacherhub-gateway/pkg/database"
	"github.com/noah-isme/teacherhub-gateway/pkg/logger"
	"github.com/noah-isme/teacherhub-gateway/pkg/notify"
	"github.com/noah-isme/teacherhub-gateway/pkg/postal"
	"github.com/noah-isme/teacherhub-gateway/pkg/validation"
)

// @title TeacherHub Gateway API
// @version 1.0.0
// @description Backend-for-frontend for the teacher enquiry wizard and the marketplace admin console.
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey AdminToken
// @in header
// @name Authorization

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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	checks := map[string]handler.ReadinessCheck{}

	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Fatal("redis unavailable", zap.Error(err))
		}
		defer redisClient.Close() //nolint:errcheck
		checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}

	var db *sqlx.DB
	if cfg.Database.Enabled {
		db, err = database.NewPostgres(ctx, cfg.Database)
		if err != nil {
			logr.Fatal("database unavailable", zap.Error(err))
		}
		defer db.Close() //nolint:errcheck
		if err := database.EnsureSchema(ctx, db); err != nil {
			logr.Fatal("failed to prepare schema", zap.Error(err))
		}
		checks["database"] = db.PingContext
	}

	metrics := service.NewMetricsService()
	validator := validation.New()

	backend := gateway.New(gateway.Config{
		BaseURL:      cfg.Backend.BaseURL,
		ServiceToken: cfg.Backend.ServiceToken,
		Timeout:      cfg.Backend.Timeout,
		EnquiryPath:  cfg.Backend.EnquiryPath,
		Observer:     metrics,
		Logger:       logr.Named("gateway"),
	})
	postalClient := postal.NewClient(postal.Config{
		BaseURL:  cfg.Postal.BaseURL,
		StateURL: cfg.Postal.StateURL,
		Timeout:  cfg.Postal.Timeout,
	})

	var cacheRepo service.CacheRepository
	if redisClient != nil {
		cacheRepo = repository.NewCacheRepository(redisClient, repository.DefaultCachePrefix, logr)
	}
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Catalog.CacheTTL, logr, cfg.Catalog.CacheEnabled)

	var sessions service.SessionRepository
	if redisClient != nil {
		sessions = repository.NewRedisSessionRepository(redisClient, cfg.Wizard.KeyPrefix)
	} else {
		memory := repository.NewMemorySessionRepository()
		go sweepSessions(ctx, memory, logr)
		sessions = memory
	}

	var sender notify.Sender = notify.NewLogSender(logr)
	if cfg.Notify.Enabled && cfg.Notify.SendGridAPIKey != "" {
		sender = notify.NewSendGridSender(cfg.Notify.SendGridAPIKey, cfg.Notify.AppName, cfg.Notify.FromName, cfg.Notify.FromEmail, logr)
	}

	var auditStore service.AuditStore
	if cfg.Audit.Enabled && db != nil {
		auditStore = repository.NewAuditRepository(db)
	}
	auditSvc := service.NewAuditService(auditStore, service.AuditConfig{
		Workers:    cfg.Audit.Workers,
		MaxRetries: cfg.Audit.MaxRetries,
		RetryDelay: cfg.Audit.RetryDelay,
	}, logr.Named("audit"))
	auditSvc.Start(ctx)
	defer auditSvc.Stop()

	tokens := service.NewSessionTokenService(cfg.Wizard.TokenSecret, cfg.Wizard.TokenIssuer, cfg.Wizard.SessionTTL)
	catalogSvc := service.NewCatalogService(backend, cacheSvc, cfg.Catalog.CacheTTL, logr)
	locationSvc := service.NewLocationService(postalClient, metrics, logr)
	teacherSvc := service.NewTeacherSearchService(backend, logr)
	enquirySvc := service.NewEnquiryService(backend, validator, sender, metrics, logr, cfg.Notify.AppName)
	wizardSvc := service.NewWizardService(service.WizardDeps{
		Sessions:  sessions,
		Tokens:    tokens,
		Catalog:   catalogSvc,
		Locations: locationSvc,
		Teachers:  teacherSvc,
		Enquiries: enquirySvc,
		Metrics:   metrics,
		Logger:    logr.Named("wizard"),
	})

	r := newRouter(cfg, logr, routeDeps{
		tokens:   tokens,
		metrics:  metrics,
		audit:    auditSvc,
		wizard:   handler.NewWizardHandler(wizardSvc, validator),
		location: handler.NewLocationHandler(locationSvc, catalogSvc),
		admin:    handler.NewAdminHandler(service.NewAdminService(backend, logr), teacherSvc, validator),
		backups:  handler.NewBackupHandler(service.NewBackupService(backend, catalogSvc, logr), validator),
		exports:  handler.NewExportHandler(service.NewExportService(backend, logr, nil, nil), validator),
		audits:   handler.NewAuditHandler(auditSvc, validator),
		health:   handler.NewMetricsHandler(metrics, checks),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "prefix", cfg.APIPrefix)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}

// sweepSessions evicts expired in-memory wizard sessions.
func sweepSessions(ctx context.Context, repo *repository.MemorySessionRepository, logr *zap.Logger) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := repo.Sweep(); n > 0 {
				logr.Debug("expired wizard sessions swept", zap.Int("count", n))
			}
		}
	}
}
