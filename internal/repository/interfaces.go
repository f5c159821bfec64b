package repository

import (
	"context"
	"errors"
	"time"

	"github.com/todotofu/todotofu/backend/internal/models"
)

var (
	// ErrNotFound is returned when a record does not exist or is owned by another user
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique key (e.g. username) is already taken
	ErrDuplicate = errors.New("duplicate record")
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}

// PreferencesRepository reads and writes the preferences embedded in a user
type PreferencesRepository interface {
	Get(ctx context.Context, userID string) (*models.Preferences, error)
	Update(ctx context.Context, userID string, prefs *models.Preferences) (*models.Preferences, error)
}

// CategoryRepository defines the interface for category data access.
// Every method is scoped by the owning user.
type CategoryRepository interface {
	FindByUser(ctx context.Context, userID string) ([]models.Category, error)
	GetByID(ctx context.Context, userID, id string) (*models.Category, error)
	Create(ctx context.Context, category *models.Category) (*models.Category, error)
	Update(ctx context.Context, category *models.Category) (*models.Category, error)
	Delete(ctx context.Context, userID, id string) error
}

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// FindByUserAndRange returns the tasks whose date lies in [start, end],
	// ordered by date then start. Category references are unresolved.
	FindByUserAndRange(ctx context.Context, userID string, start, end time.Time) ([]models.Task, error)
	GetByID(ctx context.Context, userID, id string) (*models.Task, error)
	Create(ctx context.Context, task *models.Task) (*models.Task, error)
	Update(ctx context.Context, task *models.Task) (*models.Task, error)
	Delete(ctx context.Context, userID, id string) error
}

// EventRepository defines the interface for event data access
type EventRepository interface {
	// FindByUserOverlapping returns the events intersecting [start, end],
	// ordered by start.
	FindByUserOverlapping(ctx context.Context, userID string, start, end time.Time) ([]models.Event, error)
	GetByID(ctx context.Context, userID, id string) (*models.Event, error)
	Create(ctx context.Context, event *models.Event) (*models.Event, error)
	Update(ctx context.Context, event *models.Event) (*models.Event, error)
	Delete(ctx context.Context, userID, id string) error
}

// ReminderRepository defines the interface for reminder data access
type ReminderRepository interface {
	FindByUser(ctx context.Context, userID string) ([]models.Reminder, error)
	Create(ctx context.Context, reminder *models.Reminder) (*models.Reminder, error)
	Delete(ctx context.Context, userID, id string) error
	// FindDue returns up to limit unnotified reminders due at or before now
	FindDue(ctx context.Context, now time.Time, limit int) ([]models.Reminder, error)
	MarkNotified(ctx context.Context, ids []string) error
}

// IdempotencyRepository stores responses of replayable requests
type IdempotencyRepository interface {
	// Get returns the stored record, or nil when there is none
	Get(ctx context.Context, key, route, userID string) (*models.IdempotencyKey, error)
	// Store saves a record. Storing an existing key keeps the first response.
	Store(ctx context.Context, key, route, userID string, responseBody []byte, statusCode int) error
}

// Store bundles the repositories of one storage driver
type Store struct {
	Users       UserRepository
	Preferences PreferencesRepository
	Categories  CategoryRepository
	Tasks       TaskRepository
	Events      EventRepository
	Reminders   ReminderRepository
	Idempotency IdempotencyRepository
}
