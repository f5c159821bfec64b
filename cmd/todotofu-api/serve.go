package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/todotofu/todotofu/backend/internal/auth"
	"github.com/todotofu/todotofu/backend/internal/config"
	"github.com/todotofu/todotofu/backend/internal/logger"
	"github.com/todotofu/todotofu/backend/internal/middleware"
	"github.com/todotofu/todotofu/backend/internal/service"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	Long:  `Start the HTTP API server and the reminder dispatcher.`,
	RunE:  runServe,
}

var (
	port string
)

func init() {
	serveCmd.Flags().StringVarP(&port, "port", "p", "", "Port to listen on (overrides config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if port != "" {
		cfg.Server.Port = port
	}

	setupLogger(cfg)
	logger.Info("starting ToDoTofu API server",
		logger.String("env", cfg.Server.Env),
		logger.String("storage", cfg.Storage.Driver),
	)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	defaults, err := service.NewDefaults(cfg.Analytics)
	if err != nil {
		return fmt.Errorf("invalid analytics configuration: %w", err)
	}

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore(context.Background())

	prefsCache, err := service.NewPreferencesCache(cfg.Cache.MaxCost)
	if err != nil {
		return fmt.Errorf("failed to create preferences cache: %w", err)
	}
	defer prefsCache.Close()

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	// Initialize services
	prefsService := service.NewPreferencesService(store.Preferences, prefsCache, cfg.Cache.PreferencesTTL, defaults)
	svcs := services{
		auth:        service.NewAuthService(store.Users, tokens, defaults),
		preferences: prefsService,
		categories:  service.NewCategoryService(store.Categories),
		tasks:       service.NewTaskService(store.Tasks, store.Categories, prefsService),
		events:      service.NewEventService(store.Events, prefsService),
		reminders:   service.NewReminderService(store.Reminders, prefsService),
		analytics:   service.NewAnalyticsService(store.Tasks, store.Events, store.Categories, prefsService, defaults.Weekly),
	}

	limiter := middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst, "api")
	defer limiter.Close()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := newRouter(cfg, svcs, tokens, limiter, store.Idempotency)

	scheduler := service.NewReminderScheduler(svcs.reminders, 30*time.Second)
	if err := scheduler.Start(cfg.Reminders.Schedule); err != nil {
		return err
	}
	defer scheduler.Stop()

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("server listening", logger.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down", logger.Duration("timeout", cfg.Server.ShutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}
