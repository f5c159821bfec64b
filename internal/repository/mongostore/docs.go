package mongostore

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/todotofu/todotofu/backend/internal/models"
)

type preferencesDoc struct {
	Timezone       string `bson:"timezone"`
	DailyBudgetMin int    `bson:"daily_budget_min"`
	WeekStart      string `bson:"week_start"`
	Theme          string `bson:"theme"`
}

type userDoc struct {
	ID             primitive.ObjectID `bson:"_id,omitempty"`
	Username       string             `bson:"username"`
	Email          string             `bson:"email"`
	Name           string             `bson:"name,omitempty"`
	ProfilePicture string             `bson:"profile_picture,omitempty"`
	PasswordHash   string             `bson:"password_hash"`
	Preferences    preferencesDoc     `bson:"preferences"`
	CreatedAt      time.Time          `bson:"created_at"`
	UpdatedAt      time.Time          `bson:"updated_at"`
}

type categoryDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	UserID    primitive.ObjectID `bson:"user_id"`
	Name      string             `bson:"name"`
	Color     string             `bson:"color"`
	CreatedAt time.Time          `bson:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at"`
}

type taskDoc struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty"`
	UserID      primitive.ObjectID  `bson:"user_id"`
	Title       string              `bson:"title"`
	Description string              `bson:"description,omitempty"`
	CategoryID  *primitive.ObjectID `bson:"category_id"`
	Start       *time.Time          `bson:"start,omitempty"`
	End         *time.Time          `bson:"end,omitempty"`
	Date        time.Time           `bson:"date"`
	DurationMin int                 `bson:"duration_min"`
	Done        bool                `bson:"done"`
	CreatedAt   time.Time           `bson:"created_at"`
	UpdatedAt   time.Time           `bson:"updated_at"`
}

type eventDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	UserID    primitive.ObjectID `bson:"user_id"`
	Title     string             `bson:"title"`
	Start     time.Time          `bson:"start"`
	End       time.Time          `bson:"end"`
	AllDay    bool               `bson:"all_day"`
	Location  string             `bson:"location,omitempty"`
	Notes     string             `bson:"notes,omitempty"`
	CreatedAt time.Time          `bson:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at"`
}

type reminderDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	UserID      primitive.ObjectID `bson:"user_id"`
	Title       string             `bson:"title"`
	Description string             `bson:"description,omitempty"`
	DueAt       time.Time          `bson:"due_at"`
	Notified    bool               `bson:"notified"`
	CreatedAt   time.Time          `bson:"created_at"`
}

type idempotencyDoc struct {
	Key          string    `bson:"key"`
	Route        string    `bson:"route"`
	UserID       string    `bson:"user_id"`
	ResponseBody []byte    `bson:"response_body"`
	StatusCode   int       `bson:"status_code"`
	CreatedAt    time.Time `bson:"created_at"`
}

func preferencesFromDoc(d preferencesDoc) models.Preferences {
	return models.Preferences{
		Timezone:       d.Timezone,
		DailyBudgetMin: d.DailyBudgetMin,
		WeekStart:      d.WeekStart,
		Theme:          d.Theme,
	}
}

func preferencesToDoc(p models.Preferences) preferencesDoc {
	return preferencesDoc{
		Timezone:       p.Timezone,
		DailyBudgetMin: p.DailyBudgetMin,
		WeekStart:      p.WeekStart,
		Theme:          p.Theme,
	}
}

func (d userDoc) toModel() *models.User {
	return &models.User{
		ID:             d.ID.Hex(),
		Username:       d.Username,
		Email:          d.Email,
		Name:           d.Name,
		ProfilePicture: d.ProfilePicture,
		PasswordHash:   d.PasswordHash,
		Preferences:    preferencesFromDoc(d.Preferences),
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}
}

func (d categoryDoc) toModel() models.Category {
	return models.Category{
		ID:        d.ID.Hex(),
		UserID:    d.UserID.Hex(),
		Name:      d.Name,
		Color:     d.Color,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

func (d taskDoc) toModel() models.Task {
	category := models.NoCategory()
	if d.CategoryID != nil {
		category = models.UnresolvedCategory(d.CategoryID.Hex())
	}
	return models.Task{
		ID:          d.ID.Hex(),
		UserID:      d.UserID.Hex(),
		Title:       d.Title,
		Description: d.Description,
		Category:    category,
		Start:       utcPtr(d.Start),
		End:         utcPtr(d.End),
		Date:        d.Date.UTC(),
		DurationMin: d.DurationMin,
		Done:        d.Done,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

// taskToDoc converts a task for writing. A category id that is not an
// ObjectID cannot reference a category and is dropped.
func taskToDoc(t *models.Task, userID primitive.ObjectID) taskDoc {
	var categoryID *primitive.ObjectID
	if id := t.Category.IDPtr(); id != nil {
		if oid, err := primitive.ObjectIDFromHex(*id); err == nil {
			categoryID = &oid
		}
	}
	return taskDoc{
		UserID:      userID,
		Title:       t.Title,
		Description: t.Description,
		CategoryID:  categoryID,
		Start:       t.Start,
		End:         t.End,
		Date:        t.Date,
		DurationMin: t.DurationMin,
		Done:        t.Done,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func (d eventDoc) toModel() models.Event {
	return models.Event{
		ID:        d.ID.Hex(),
		UserID:    d.UserID.Hex(),
		Title:     d.Title,
		Start:     d.Start.UTC(),
		End:       d.End.UTC(),
		AllDay:    d.AllDay,
		Location:  d.Location,
		Notes:     d.Notes,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

func eventToDoc(e *models.Event, userID primitive.ObjectID) eventDoc {
	return eventDoc{
		UserID:    userID,
		Title:     e.Title,
		Start:     e.Start,
		End:       e.End,
		AllDay:    e.AllDay,
		Location:  e.Location,
		Notes:     e.Notes,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}

func (d reminderDoc) toModel() models.Reminder {
	return models.Reminder{
		ID:          d.ID.Hex(),
		UserID:      d.UserID.Hex(),
		Title:       d.Title,
		Description: d.Description,
		DueAt:       d.DueAt.UTC(),
		Notified:    d.Notified,
		CreatedAt:   d.CreatedAt,
	}
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
