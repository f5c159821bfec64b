package repository

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/todotofu/todotofu/backend/internal/models"
	"github.com/todotofu/todotofu/backend/pkg/supabase"
)

type eventRow struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	AllDay    bool      `json:"all_day"`
	Location  string    `json:"location"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (r eventRow) toModel() models.Event {
	return models.Event{
		ID:        r.ID,
		UserID:    r.UserID,
		Title:     r.Title,
		Start:     r.StartTime,
		End:       r.EndTime,
		AllDay:    r.AllDay,
		Location:  r.Location,
		Notes:     r.Notes,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func eventData(event *models.Event) map[string]interface{} {
	return map[string]interface{}{
		"title":      event.Title,
		"start_time": event.Start,
		"end_time":   event.End,
		"all_day":    event.AllDay,
		"location":   event.Location,
		"notes":      event.Notes,
	}
}

type eventRepository struct {
	client *supabase.Client
}

// NewEventRepository creates a new event repository
func NewEventRepository(client *supabase.Client) EventRepository {
	return &eventRepository{client: client}
}

func (r *eventRepository) FindByUserOverlapping(ctx context.Context, userID string, start, end time.Time) ([]models.Event, error) {
	query := url.Values{
		"user_id":    {supabase.Eq(userID)},
		"start_time": {supabase.Lte(supabase.Timestamp(end))},
		"end_time":   {supabase.Gte(supabase.Timestamp(start))},
		"order":      {"start_time.asc"},
	}

	body, err := r.client.Select(ctx, "events", query)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	rows, err := decodeRows[eventRow](body)
	if err != nil {
		return nil, err
	}
	events := make([]models.Event, len(rows))
	for i, row := range rows {
		events[i] = row.toModel()
	}
	return events, nil
}

func (r *eventRepository) GetByID(ctx context.Context, userID, id string) (*models.Event, error) {
	body, err := r.client.Select(ctx, "events", owned(userID, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	return firstEvent(body)
}

func (r *eventRepository) Create(ctx context.Context, event *models.Event) (*models.Event, error) {
	data := eventData(event)
	data["user_id"] = event.UserID

	body, err := r.client.Insert(ctx, "events", data)
	if err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}
	return firstEvent(body)
}

func (r *eventRepository) Update(ctx context.Context, event *models.Event) (*models.Event, error) {
	data := eventData(event)
	data["updated_at"] = time.Now().UTC()

	body, err := r.client.Update(ctx, "events", owned(event.UserID, event.ID), data)
	if err != nil {
		return nil, fmt.Errorf("failed to update event: %w", err)
	}
	return firstEvent(body)
}

func (r *eventRepository) Delete(ctx context.Context, userID, id string) error {
	body, err := r.client.Delete(ctx, "events", owned(userID, id))
	if err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	_, err = firstRow[eventRow](body)
	return err
}

func firstEvent(body []byte) (*models.Event, error) {
	row, err := firstRow[eventRow](body)
	if err != nil {
		return nil, err
	}
	event := row.toModel()
	return &event, nil
}
