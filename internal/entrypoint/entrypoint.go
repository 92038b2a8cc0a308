package entrypoint

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mrlokans/memberimport/internal/auth"
	"github.com/mrlokans/memberimport/internal/config"
	http_controllers "github.com/mrlokans/memberimport/internal/http"
	"github.com/mrlokans/memberimport/internal/scheduler"
	"github.com/mrlokans/memberimport/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

// Serve runs the HTTP server until SIGINT or SIGTERM, then shuts it down
// within the configured timeout.
func Serve(router *gin.Engine, cfg *config.Config, logger *zap.Logger, onShutdown ShutdownFunc) error {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second
	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)

	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	quit, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("starting server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
	case <-quit.Done():
	}
	logger.Info("shutting down server", zap.Duration("timeout", timeout))

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Stop accepting requests before the background workers go away.
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	if onShutdown != nil {
		onShutdown(ctx)
	}

	logger.Info("server exited")
	return nil
}

// Run wires the application and serves it until interrupted.
func Run(cfg *config.Config, version string) error {
	if cfg.Import.CleanupSchedule != "" {
		if err := scheduler.ValidateSchedule(cfg.Import.CleanupSchedule); err != nil {
			return fmt.Errorf("invalid IMPORT_CLEANUP_SCHEDULE: %w", err)
		}
	}
	if !cfg.Log.Development {
		gin.SetMode(gin.ReleaseMode)
	}

	app, err := NewApp(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			app.Logger.Error("error closing application", zap.Error(err))
		}
	}()
	logger := app.Logger
	logger.Info("starting memberimport", zap.String("version", version))

	// Initialize task queue if enabled
	var taskClient *tasks.Client
	taskCtx, taskCtxCancel := context.WithCancel(context.Background())
	defer taskCtxCancel()
	if cfg.Tasks.Enabled {
		taskClient, err = tasks.NewClient(cfg.Database.Path, tasks.FromConfig(cfg.Tasks), logger)
		if err != nil {
			return fmt.Errorf("failed to initialize task queue: %w", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				logger.Error("error closing task client", zap.Error(err))
			}
		}()

		taskClient.Register(
			tasks.NewCommitImportQueue(app.Imports),
			tasks.NewCleanupAuditEventsQueue(app.Audit, logger),
		)
		app.Imports.SetEnqueuer(taskClient)

		go taskClient.Start(taskCtx)

		// Audit retention runs once per start.
		if _, err := taskClient.EnqueueAuditCleanup(); err != nil {
			logger.Warn("failed to enqueue audit cleanup", zap.Error(err))
		}
	} else {
		logger.Info("task queue disabled, imports are committed during the request")
	}

	cleanup := scheduler.NewSessionCleanupScheduler(app.Imports, app.Audit, cfg.Import.CleanupSchedule, logger)
	if err := cleanup.Start(taskCtx); err != nil {
		return fmt.Errorf("failed to start session cleanup: %w", err)
	}

	var limiter *auth.RateLimiter
	if app.Local != nil && cfg.API.Token != "" {
		limiter = auth.NewRateLimiter(auth.DefaultRateLimitConfig())
		defer limiter.Stop()
		logger.Info("backend API enabled")
	}

	router := http_controllers.NewRouter(http_controllers.RouterConfig{
		ImportService:  app.Imports,
		Database:       app.Database,
		AuditService:   app.Audit,
		Backend:        app.Local,
		APIToken:       cfg.API.Token,
		RateLimiter:    limiter,
		TaskClient:     taskClient,
		OrganizationID: cfg.Import.OrganizationID,
		MaxUploadBytes: cfg.Import.MaxUploadBytes,
		Version:        version,
		Logger:         logger,
	})

	// Shutdown callback for graceful cleanup
	onShutdown := func(ctx context.Context) {
		cleanup.Stop()
		if taskClient != nil {
			taskClient.Stop(ctx)
		}
		taskCtxCancel()
	}

	return Serve(router, cfg, logger, onShutdown)
}
