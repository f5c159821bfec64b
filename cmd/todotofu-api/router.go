package main

import (
	"github.com/gin-gonic/gin"

	"github.com/todotofu/todotofu/backend/internal/auth"
	"github.com/todotofu/todotofu/backend/internal/config"
	"github.com/todotofu/todotofu/backend/internal/handlers"
	"github.com/todotofu/todotofu/backend/internal/middleware"
	"github.com/todotofu/todotofu/backend/internal/repository"
	"github.com/todotofu/todotofu/backend/internal/service"
)

type services struct {
	auth        service.AuthService
	preferences service.PreferencesService
	categories  service.CategoryService
	tasks       service.TaskService
	events      service.EventService
	reminders   service.ReminderService
	analytics   service.AnalyticsService
}

func newRouter(
	cfg *config.Config,
	svcs services,
	verifier auth.TokenVerifier,
	limiter *middleware.RateLimiter,
	idempotency repository.IdempotencyRepository,
) *gin.Engine {
	authHandler := handlers.NewAuthHandler(svcs.auth)
	preferencesHandler := handlers.NewPreferencesHandler(svcs.preferences)
	categoryHandler := handlers.NewCategoryHandler(svcs.categories)
	taskHandler := handlers.NewTaskHandler(svcs.tasks)
	eventHandler := handlers.NewEventHandler(svcs.events)
	reminderHandler := handlers.NewReminderHandler(svcs.reminders)
	analyticsHandler := handlers.NewAnalyticsHandler(svcs.analytics)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger())
	router.Use(middleware.CORS(cfg.CORS.AllowedOrigins))
	router.Use(middleware.SecurityHeaders(cfg.IsProduction()))

	health := handlers.Health(cfg.Server.Env)
	router.GET("/health", health)

	v1 := router.Group("/api/v1")
	v1.Use(middleware.RateLimit(limiter))
	{
		v1.GET("/health", health)

		authGroup := v1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/logout", authHandler.Logout)
			authGroup.GET("/me", middleware.Auth(verifier), authHandler.Me)
		}

		protected := v1.Group("")
		protected.Use(middleware.Auth(verifier))
		protected.Use(middleware.Idempotency(idempotency))
		{
			protected.GET("/preferences", preferencesHandler.GetPreferences)
			protected.PUT("/preferences", preferencesHandler.UpdatePreferences)

			protected.GET("/categories", categoryHandler.ListCategories)
			protected.POST("/categories", categoryHandler.CreateCategory)
			protected.PATCH("/categories/:id", categoryHandler.UpdateCategory)
			protected.DELETE("/categories/:id", categoryHandler.DeleteCategory)

			protected.GET("/tasks", taskHandler.ListTasks)
			protected.POST("/tasks", taskHandler.CreateTask)
			protected.GET("/tasks/today", taskHandler.GetTodayTasks)
			protected.GET("/tasks/:id", taskHandler.GetTask)
			protected.PATCH("/tasks/:id", taskHandler.UpdateTask)
			protected.DELETE("/tasks/:id", taskHandler.DeleteTask)

			protected.GET("/events", eventHandler.ListEvents)
			protected.POST("/events", eventHandler.CreateEvent)
			protected.GET("/events/today", eventHandler.GetTodayEvents)
			protected.GET("/events/:id", eventHandler.GetEvent)
			protected.PATCH("/events/:id", eventHandler.UpdateEvent)
			protected.DELETE("/events/:id", eventHandler.DeleteEvent)

			protected.GET("/reminders", reminderHandler.ListReminders)
			protected.POST("/reminders", reminderHandler.CreateReminder)
			protected.DELETE("/reminders/:id", reminderHandler.DeleteReminder)

			protected.GET("/analytics/day-summary", analyticsHandler.GetDaySummary)
			protected.GET("/analytics/weekly", analyticsHandler.GetWeeklySummary)
			protected.POST("/analytics/weekly/recompute", analyticsHandler.RecomputeWeeklySummary)
		}
	}

	return router
}
