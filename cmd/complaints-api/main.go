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
	"go.uber.org/zap"

	_ "github.com/noah-isme/nrb-complaints-api/api/swagger"
	"github.com/noah-isme/nrb-complaints-api/internal/handler"
	"github.com/noah-isme/nrb-complaints-api/internal/models"
	"github.com/noah-isme/nrb-complaints-api/internal/repository"
	"github.com/noah-isme/nrb-complaints-api/internal/router"
	"github.com/noah-isme/nrb-complaints-api/internal/service"
	"github.com/noah-isme/nrb-complaints-api/pkg/cache"
	"github.com/noah-isme/nrb-complaints-api/pkg/config"
	"github.com/noah-isme/nrb-complaints-api/pkg/database"
	"github.com/noah-isme/nrb-complaints-api/pkg/logger"
	"github.com/noah-isme/nrb-complaints-api/pkg/storage"
)

const (
	shutdownTimeout = 10 * time.Second
	sweepInterval   = 5 * time.Minute
)

type sessionBackend interface {
	Get(ctx context.Context, id string) (*models.Identity, error)
	Set(ctx context.Context, id string, identity *models.Identity, ttl time.Duration) error
	Destroy(ctx context.Context, id string) error
	Ping(ctx context.Context) error
}

// @title Nairobi Complaints API
// @version 1.0.0
// @description Citizen complaint submission and review for Nairobi City County
// @BasePath /
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

	if err := run(cfg, logr); err != nil {
		logr.Fatal("server failed", zap.Error(err))
	}
}

func run(cfg *config.Config, logr *zap.Logger) error {
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.New(cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()
	if err := database.Migrate(db); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	store, err := storage.NewLocalStorage(cfg.Uploads.Dir, cfg.Uploads.URLPrefix)
	if err != nil {
		return fmt.Errorf("prepare upload dir: %w", err)
	}

	sessions, closeSessions, err := newSessionBackend(ctx, cfg, logr)
	if err != nil {
		return err
	}
	// Runs after Shutdown has drained in-flight requests.
	defer closeSessions()

	metrics := service.NewMetricsService()
	complaintRepo := repository.NewComplaintRepository(db)
	authSvc := service.NewAuthService(repository.NewUserRepository(db), validator.New(), logr, metrics)
	sessionSvc := service.NewSessionService(sessions, logr, service.SessionConfig{Secret: cfg.Session.Secret, TTL: cfg.Session.TTL})
	complaintSvc := service.NewComplaintService(complaintRepo, store, logr, metrics)
	exportSvc := service.NewExportService(complaintSvc, nil, nil, logr)

	if _, err := authSvc.EnsureAdmin(ctx, cfg.Admin.Email, cfg.Admin.Password); err != nil {
		return fmt.Errorf("ensure admin: %w", err)
	}

	engine := router.New(router.Dependencies{
		Config:     cfg,
		Logger:     logr,
		Metrics:    metrics,
		Auth:       authSvc,
		Sessions:   sessionSvc,
		Complaints: complaintSvc,
		Exports:    exportSvc,
		Storage:    store,
		ReadyChecks: map[string]handler.Pinger{
			"database": handler.PingFunc(db.PingContext),
			"sessions": sessions,
		},
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env),
			zap.String("db_driver", cfg.Database.Driver), zap.String("session_store", cfg.Session.Store))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// newSessionBackend picks the configured session store and returns a func
// releasing it. The in-memory store is swept periodically until ctx ends.
func newSessionBackend(ctx context.Context, cfg *config.Config, logr *zap.Logger) (sessionBackend, func(), error) {
	if cfg.Session.Store == config.SessionStoreRedis {
		client, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			return nil, nil, fmt.Errorf("connect redis: %w", err)
		}
		release := func() {
			if err := client.Close(); err != nil {
				logr.Warn("close redis", zap.Error(err))
			}
		}
		return repository.NewRedisSessionRepository(client), release, nil
	}

	memory := repository.NewMemorySessionRepository()
	go func() {
		ticker := time.NewTicker(sweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := memory.Sweep(); n > 0 {
					logr.Debug("expired sessions swept", zap.Int("count", n))
				}
			}
		}
	}()
	return memory, func() {}, nil
}
