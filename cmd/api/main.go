// AngelaMos | 2026
// main.go

package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/wemanage-app/backend/internal/admin"
	"github.com/wemanage-app/backend/internal/auth"
	"github.com/wemanage-app/backend/internal/comment"
	"github.com/wemanage-app/backend/internal/config"
	"github.com/wemanage-app/backend/internal/core"
	"github.com/wemanage-app/backend/internal/health"
	"github.com/wemanage-app/backend/internal/mailer"
	"github.com/wemanage-app/backend/internal/middleware"
	"github.com/wemanage-app/backend/internal/notification"
	"github.com/wemanage-app/backend/internal/project"
	"github.com/wemanage-app/backend/internal/server"
	"github.com/wemanage-app/backend/internal/task"
	"github.com/wemanage-app/backend/internal/user"
	"github.com/wemanage-app/backend/migrations"
)

const (
	drainDelay = 5 * time.Second
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

//nolint:funlen // bootstrap code is inherently verbose
func run(configPath string) error {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := setupLogger(cfg.Log)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"name", cfg.App.Name,
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
	)

	var telemetry *core.Telemetry
	if cfg.Otel.Enabled {
		tel, telErr := core.NewTelemetry(ctx, cfg.Otel, cfg.App)
		if telErr != nil {
			logger.Warn("failed to initialize telemetry", "error", telErr)
		} else {
			telemetry = tel
			logger.Info("OpenTelemetry tracer initialized",
				"endpoint", cfg.Otel.Endpoint,
			)
		}
	}

	db, err := core.NewDatabase(ctx, cfg.Database)
	if err != nil {
		return err
	}
	logger.Info("database connected",
		"max_open_conns", cfg.Database.MaxOpenConns,
		"max_idle_conns", cfg.Database.MaxIdleConns,
	)

	if err := db.Migrate(ctx, migrations.FS); err != nil {
		return err
	}
	logger.Info("migrations applied")

	redis, err := core.NewRedis(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	logger.Info("redis connected",
		"pool_size", cfg.Redis.PoolSize,
	)

	tokens, err := auth.NewTokenManager(cfg.JWT)
	if err != nil {
		return err
	}
	logger.Info("token manager initialized",
		"algorithm", "HS256",
		"expire", cfg.JWT.Expire,
	)

	mail, err := mailer.New(cfg.Email)
	if err != nil {
		return err
	}

	sessions := auth.NewSessionStore(redis.Client, cfg.Session.TTL)

	var google *auth.GoogleClient
	if cfg.Google.Enabled() {
		google = auth.NewGoogleClient(
			cfg.Google.ClientID,
			cfg.Google.ClientSecret,
			cfg.Google.CallbackURL(cfg.App.BackendURL),
		)
		logger.Info("google oauth enabled")
	} else {
		logger.Warn("google oauth disabled: client credentials not configured")
	}

	userRepo := user.NewRepository(db.DB)
	userSvc := user.NewService(userRepo)
	userHandler := user.NewHandler(userSvc)

	authSvc := auth.NewService(userSvc, tokens, mail, cfg.App.FrontendURL)
	authHandler := auth.NewHandler(
		authSvc,
		google,
		sessions,
		cfg.App.FrontendURL,
		cfg.Session.CookieName,
		cfg.Session.TTL,
		cfg.IsProduction(),
	)

	projectRepo := project.NewRepository(db.DB)
	projectSvc := project.NewService(projectRepo)
	projectHandler := project.NewHandler(projectSvc)

	notifRepo := notification.NewRepository(db.DB)
	notifSvc := notification.NewService(notifRepo)
	notifHandler := notification.NewHandler(notifSvc)

	taskRepo := task.NewRepository(db.DB)
	taskSvc := task.NewService(taskRepo, projectSvc, notifSvc)
	taskHandler := task.NewHandler(taskSvc)

	commentRepo := comment.NewRepository(db.DB)
	commentSvc := comment.NewService(commentRepo, taskSvc)
	commentHandler := comment.NewHandler(commentSvc)

	healthHandler := health.NewHandler(db, redis)

	adminHandler := admin.NewHandler(admin.HandlerConfig{
		Counters: counters{
			users:    userSvc,
			projects: projectSvc,
			tasks:    taskSvc,
		},
		DBStats:    db.Stats,
		RedisStats: redis.PoolStats,
		DBPing:     db.Ping,
		RedisPing:  redis.Ping,
	})

	srv := server.New(server.Config{
		ServerConfig:  cfg.Server,
		HealthHandler: healthHandler,
		Logger:        logger,
	})

	router := srv.Router()

	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(logger))
	router.Use(
		middleware.NewRateLimiter(redis.Client, middleware.RateLimitConfig{
			Limit: middleware.PerMinute(
				cfg.RateLimit.Requests,
				cfg.RateLimit.Burst,
			),
			FailOpen: true,
		}).Handler,
	)
	router.Use(middleware.SecurityHeaders(cfg.IsProduction()))
	router.Use(middleware.CORS(cfg.CORS))

	healthHandler.RegisterRoutes(router)

	authenticator := middleware.Authenticator(
		tokens,
		sessions,
		userSvc,
		cfg.Session.CookieName,
	)
	adminOnly := middleware.RequireAdmin

	router.Route("/api", func(r chi.Router) {
		authHandler.RegisterRoutes(r, authenticator)
		userHandler.RegisterRoutes(r, authenticator)
		projectHandler.RegisterRoutes(r, authenticator)
		taskHandler.RegisterRoutes(r, authenticator)
		commentHandler.RegisterRoutes(r, authenticator)
		notifHandler.RegisterRoutes(r, authenticator)
		adminHandler.RegisterRoutes(r, authenticator, adminOnly)
	})

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		cfg.Server.ShutdownTimeout+drainDelay+5*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx, drainDelay); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			logger.Error("telemetry shutdown error", "error", err)
		}
	}

	if err := redis.Close(); err != nil {
		logger.Error("redis close error", "error", err)
	}

	if err := db.Close(); err != nil {
		logger.Error("database close error", "error", err)
	}

	logger.Info("application stopped")
	return nil
}

// counters fans the admin dashboard totals out to the owning services.
type counters struct {
	users    *user.Service
	projects *project.Service
	tasks    *task.Service
}

func (c counters) CountUsers(ctx context.Context) (int, error) {
	return c.users.CountUsers(ctx)
}

func (c counters) CountProjects(ctx context.Context) (int, error) {
	return c.projects.CountProjects(ctx)
}

func (c counters) CountTasks(ctx context.Context) (int, error) {
	return c.tasks.CountTasks(ctx)
}

func setupLogger(cfg config.LogConfig) *slog.Logger {
	var handler slog.Handler

	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
