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

	"github.com/labtrack/labtrack/internal/analyses"
	"github.com/labtrack/labtrack/internal/app"
	"github.com/labtrack/labtrack/internal/clients"
	"github.com/labtrack/labtrack/internal/dashboard"
	"github.com/labtrack/labtrack/internal/identity"
	"github.com/labtrack/labtrack/internal/notes"
	"github.com/labtrack/labtrack/internal/observability"
	"github.com/labtrack/labtrack/internal/permcache"
	"github.com/labtrack/labtrack/internal/platform/cache"
	"github.com/labtrack/labtrack/internal/platform/db"
	"github.com/labtrack/labtrack/internal/rbac"
	"github.com/labtrack/labtrack/internal/samples"
	"github.com/labtrack/labtrack/internal/shared"
	"github.com/labtrack/labtrack/internal/statuses"
	"github.com/labtrack/labtrack/internal/users"
	"github.com/labtrack/labtrack/jobs"
	"github.com/labtrack/labtrack/report"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	verifier := identity.NewVerifier(cfg.AuthJWTSecret, cfg.AuthIssuer)
	auditLogger := shared.NewAuditLogger(pool)

	accessRepo := rbac.NewRepository(pool)
	accessService := rbac.NewService(accessRepo, auditLogger, logger)
	accessMiddleware := rbac.Middleware{Service: accessService, Logger: logger}
	accessHandler := rbac.NewHandler(logger, accessService, accessMiddleware)

	snapshots := permcache.NewRedisStore(redisClient, "permcache", 24*time.Hour)

	usersRepo := users.NewRepository(pool)
	usersService := users.NewService(usersRepo, logger)
	usersHandler := users.NewHandler(logger, usersService, accessService, accessMiddleware)

	var webhook *identity.Webhook
	if cfg.WebhookSecret != "" {
		webhook, err = identity.NewWebhook(cfg.WebhookSecret, usersService, snapshots, logger)
		if err != nil {
			logger.Error("init provider webhook", slog.Any("error", err))
			os.Exit(1)
		}
	}
	authHandler := identity.NewHandler(logger, accessService, snapshots, webhook)

	clientsRepo := clients.NewRepository(pool)
	clientsService := clients.NewService(clientsRepo)
	clientsHandler := clients.NewHandler(logger, clientsService, accessMiddleware)

	statusesRepo := statuses.NewRepository(pool)
	statusesService := statuses.NewService(statusesRepo, logger)
	statusesHandler := statuses.NewHandler(logger, statusesService, accessMiddleware)

	analysesRepo := analyses.NewRepository(pool)
	analysesService := analyses.NewService(analysesRepo, logger)
	analysesHandler := analyses.NewHandler(logger, analysesService, accessMiddleware)

	notesRepo := notes.NewRepository(pool)
	notesService := notes.NewService(notesRepo, logger)
	notesHandler := notes.NewHandler(logger, notesService, accessMiddleware)

	reportClient := report.NewClient(cfg.GotenbergURL)
	pingCtx, cancelPing := context.WithTimeout(ctx, 3*time.Second)
	if err := reportClient.Ping(pingCtx); err != nil {
		logger.Warn("gotenberg unreachable, pdf export degraded", slog.Any("error", err))
	}
	cancelPing()
	exporter := report.NewResultSheetExporter(reportClient, logger)

	samplesRepo := samples.NewRepository(pool)
	samplesService := samples.NewService(samplesRepo, analysesService, notesService, auditLogger, logger)
	samplesHandler := samples.NewHandler(logger, samplesService, exporter, accessMiddleware)

	dashboardRepo := dashboard.NewRepository(pool)
	dashboardService := dashboard.NewService(dashboardRepo, redisClient, logger)
	dashboardHandler := dashboard.NewHandler(logger, dashboardService, accessMiddleware)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobsHandler := jobs.NewHandler(inspector, logger)

	metrics := observability.NewMetrics()

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		Verifier:         verifier,
		AuthHandler:      authHandler,
		AccessHandler:    accessHandler,
		UsersHandler:     usersHandler,
		ClientsHandler:   clientsHandler,
		StatusesHandler:  statusesHandler,
		AnalysesHandler:  analysesHandler,
		SamplesHandler:   samplesHandler,
		NotesHandler:     notesHandler,
		DashboardHandler: dashboardHandler,
		JobsHandler:      jobsHandler,
		Metrics:          metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
