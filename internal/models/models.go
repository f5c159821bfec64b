package models

import (
	"encoding/json"
	"time"
)

// Preferences holds per-user settings that drive analytics
type Preferences struct {
	Timezone       string `json:"timezone"`
	DailyBudgetMin int    `json:"daily_budget_min"`
	WeekStart      string `json:"week_start"` // "sunday" or "monday"
	Theme          string `json:"theme"`
}

// User represents a registered account
type User struct {
	ID             string      `json:"id"`
	Username       string      `json:"username"`
	Email          string      `json:"email"`
	Name           string      `json:"name,omitempty"`
	ProfilePicture string      `json:"profile_picture,omitempty"`
	PasswordHash   string      `json:"-"`
	Preferences    Preferences `json:"preferences"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

// Category groups tasks for reporting
type Category struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Task is a unit of planned or tracked work
type Task struct {
	ID          string      `json:"id"`
	UserID      string      `json:"user_id"`
	Title       string      `json:"title"`
	Description string      `json:"description,omitempty"`
	Category    CategoryRef `json:"category"`
	Start       *time.Time  `json:"start,omitempty"`
	End         *time.Time  `json:"end,omitempty"`
	Date        time.Time   `json:"date"` // local midnight of the calendar day the task belongs to
	DurationMin int         `json:"duration_min"`
	Done        bool        `json:"done"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// Event is a calendar entry that may span several days
type Event struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	AllDay    bool      `json:"all_day"`
	Location  string    `json:"location,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Reminder is a point-in-time notification
type Reminder struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	DueAt       time.Time `json:"due_at"`
	Notified    bool      `json:"notified"`
	CreatedAt   time.Time `json:"created_at"`
}

// IdempotencyKey is a cached response for a replayable request
type IdempotencyKey struct {
	Key          string          `json:"key"`
	Route        string          `json:"route"`
	UserID       string          `json:"user_id"`
	ResponseBody json.RawMessage `json:"response_body"`
	StatusCode   int             `json:"status_code"`
	CreatedAt    time.Time       `json:"created_at"`
}

// RegisterRequest represents the registration request
type RegisterRequest struct {
	Username       string `json:"username" binding:"required,min=3"`
	Password       string `json:"password" binding:"required,min=6"`
	Email          string `json:"email" binding:"required,email"`
	Name           string `json:"name"`
	ProfilePicture string `json:"profile_picture"`
}

// LoginRequest represents the login request
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse represents the authentication response
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      User      `json:"user"`
}

// UpdatePreferencesRequest represents a partial preferences update
type UpdatePreferencesRequest struct {
	Timezone       *string `json:"timezone"`
	DailyBudgetMin *int    `json:"daily_budget_min"`
	WeekStart      *string `json:"week_start"`
	Theme          *string `json:"theme"`
}

// CreateCategoryRequest represents the request to create a category
type CreateCategoryRequest struct {
	Name  string `json:"name" binding:"required"`
	Color string `json:"color"`
}

// UpdateCategoryRequest represents the request to update a category
type UpdateCategoryRequest struct {
	Name  *string `json:"name"`
	Color *string `json:"color"`
}

// CreateTaskRequest represents the request to create a task
type CreateTaskRequest struct {
	Title       string     `json:"title" binding:"required"`
	Description string     `json:"description"`
	CategoryID  *string    `json:"category_id"`
	Start       *time.Time `json:"start"`
	End         *time.Time `json:"end"`
	Date        string     `json:"date"` // YYYY-MM-DD; defaults to the start day, then today
	Done        bool       `json:"done"`
}

// UpdateTaskRequest distinguishes absent fields from explicit nulls so that a
// category or time range can be cleared.
type UpdateTaskRequest struct {
	Title       *string        `json:"title"`
	Description *string        `json:"description"`
	CategoryID  NullableString `json:"category_id"`
	Start       NullableTime   `json:"start"`
	End         NullableTime   `json:"end"`
	Date        *string        `json:"date"`
	Done        *bool          `json:"done"`
}

// CreateEventRequest represents the request to create an event
type CreateEventRequest struct {
	Title    string    `json:"title" binding:"required"`
	Start    time.Time `json:"start" binding:"required"`
	End      time.Time `json:"end" binding:"required"`
	AllDay   bool      `json:"all_day"`
	Location string    `json:"location"`
	Notes    string    `json:"notes"`
}

// UpdateEventRequest represents the request to update an event
type UpdateEventRequest struct {
	Title    *string    `json:"title"`
	Start    *time.Time `json:"start"`
	End      *time.Time `json:"end"`
	AllDay   *bool      `json:"all_day"`
	Location *string    `json:"location"`
	Notes    *string    `json:"notes"`
}

// CreateReminderRequest mirrors the client form: separate date and time fields
type CreateReminderRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Date        string `json:"date" binding:"required"` // YYYY-MM-DD
	Time        string `json:"time" binding:"required"` // HH:MM
}

// TodayTasksResponse is the payload of GET /tasks/today
type TodayTasksResponse struct {
	Tasks          []Task  `json:"tasks"`
	SpentHours     float64 `json:"spent_hours"`
	TotalTasks     int     `json:"total_tasks"`
	CompletedTasks int     `json:"completed_tasks"`
}

// CategoryMinutes is one row of a category breakdown
type CategoryMinutes struct {
	CategoryID string `json:"category_id"`
	Name       string `json:"name"`
	Minutes    int    `json:"minutes"`
}

// DailySummary is the derived time usage of a single calendar day
type DailySummary struct {
	Date             string            `json:"date"`
	TaskMinutes      int               `json:"task_minutes"`
	EventMinutes     int               `json:"event_minutes"`
	SpentMinutes     int               `json:"spent_minutes"`
	RemainingMinutes int               `json:"remaining_minutes"` // negative when over budget
	ByCategory       []CategoryMinutes `json:"by_category"`
	TasksTotal       int               `json:"tasks_total"`
	TasksCompleted   int               `json:"tasks_completed"`
}

// FocusRatio is the heuristic active/rest split of tracked minutes
type FocusRatio struct {
	ActiveMin int `json:"active_min"`
	RestMin   int `json:"rest_min"`
}

// WeeklySummary is the derived time usage of a 7-day window
type WeeklySummary struct {
	WeekStart              string            `json:"week_start"`
	WeekEnd                string            `json:"week_end"`
	TotalMinutes           int               `json:"total_minutes"`
	Daily                  []DailySummary    `json:"daily"`
	ByCategory             []CategoryMinutes `json:"by_category"`
	Streak                 int               `json:"streak"`
	StreakThresholdMin     int               `json:"streak_threshold_min"`
	FocusRatio             FocusRatio        `json:"focus_ratio"`
	AverageProductiveHours float64           `json:"average_productive_hours"`
	TotalRestMinutes       int               `json:"total_rest_minutes"`
}
