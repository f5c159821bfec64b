package service

import (
	"context"

	"github.com/todotofu/todotofu/backend/internal/models"
)

// AnalyticsService derives daily and weekly time-usage summaries for the
// caller identified in ctx
type AnalyticsService interface {
	GetDaySummary(ctx context.Context, date string) (*models.DailySummary, error)
	GetWeeklySummary(ctx context.Context, date string) (*models.WeeklySummary, error)
	RecomputeWeeklySummary(ctx context.Context, date string) (*models.WeeklySummary, error)
}

// AuthService defines the interface for authentication business logic
type AuthService interface {
	Register(ctx context.Context, req *models.RegisterRequest) (*models.AuthResponse, error)
	Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error)
	GetUserByID(ctx context.Context, userID string) (*models.User, error)
}

// PreferencesService defines the interface for user preferences
type PreferencesService interface {
	GetPreferences(ctx context.Context, userID string) (*models.Preferences, error)
	UpdatePreferences(ctx context.Context, userID string, req *models.UpdatePreferencesRequest) (*models.Preferences, error)
	// Settings resolves the effective calendar settings of a user
	Settings(ctx context.Context, userID string) (Settings, error)
}

// CategoryService defines the interface for category business logic
type CategoryService interface {
	ListCategories(ctx context.Context, userID string) ([]models.Category, error)
	CreateCategory(ctx context.Context, userID string, req *models.CreateCategoryRequest) (*models.Category, error)
	UpdateCategory(ctx context.Context, userID, id string, req *models.UpdateCategoryRequest) (*models.Category, error)
	DeleteCategory(ctx context.Context, userID, id string) error
}

// TaskService defines the interface for task business logic
type TaskService interface {
	ListTasks(ctx context.Context, userID, date string) ([]models.Task, error)
	GetTodayTasks(ctx context.Context, userID string) (*models.TodayTasksResponse, error)
	GetTask(ctx context.Context, userID, id string) (*models.Task, error)
	CreateTask(ctx context.Context, userID string, req *models.CreateTaskRequest) (*models.Task, error)
	UpdateTask(ctx context.Context, userID, id string, req *models.UpdateTaskRequest) (*models.Task, error)
	DeleteTask(ctx context.Context, userID, id string) error
}

// EventService defines the interface for calendar event business logic
type EventService interface {
	ListEvents(ctx context.Context, userID, from, to string) ([]models.Event, error)
	GetTodayEvents(ctx context.Context, userID string) ([]models.Event, error)
	GetEvent(ctx context.Context, userID, id string) (*models.Event, error)
	CreateEvent(ctx context.Context, userID string, req *models.CreateEventRequest) (*models.Event, error)
	UpdateEvent(ctx context.Context, userID, id string, req *models.UpdateEventRequest) (*models.Event, error)
	DeleteEvent(ctx context.Context, userID, id string) error
}

// ReminderService defines the interface for reminder business logic
type ReminderService interface {
	ListReminders(ctx context.Context, userID string) ([]models.Reminder, error)
	CreateReminder(ctx context.Context, userID string, req *models.CreateReminderRequest) (*models.Reminder, error)
	DeleteReminder(ctx context.Context, userID, id string) error
	// DispatchDue marks every reminder due at or before now as notified and
	// returns how many were dispatched
	DispatchDue(ctx context.Context) (int, error)
}
