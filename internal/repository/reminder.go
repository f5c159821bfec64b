package repository

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/todotofu/todotofu/backend/internal/models"
	"github.com/todotofu/todotofu/backend/pkg/supabase"
)

type reminderRepository struct {
	client *supabase.Client
}

// NewReminderRepository creates a new reminder repository
func NewReminderRepository(client *supabase.Client) ReminderRepository {
	return &reminderRepository{client: client}
}

func (r *reminderRepository) FindByUser(ctx context.Context, userID string) ([]models.Reminder, error) {
	query := url.Values{
		"user_id": {supabase.Eq(userID)},
		"order":   {"due_at.asc"},
	}

	body, err := r.client.Select(ctx, "reminders", query)
	if err != nil {
		return nil, fmt.Errorf("failed to list reminders: %w", err)
	}
	return decodeRows[models.Reminder](body)
}

func (r *reminderRepository) Create(ctx context.Context, reminder *models.Reminder) (*models.Reminder, error) {
	data := map[string]interface{}{
		"user_id":     reminder.UserID,
		"title":       reminder.Title,
		"description": reminder.Description,
		"due_at":      reminder.DueAt,
		"notified":    false,
	}

	body, err := r.client.Insert(ctx, "reminders", data)
	if err != nil {
		return nil, fmt.Errorf("failed to create reminder: %w", err)
	}
	return firstRow[models.Reminder](body)
}

func (r *reminderRepository) Delete(ctx context.Context, userID, id string) error {
	body, err := r.client.Delete(ctx, "reminders", owned(userID, id))
	if err != nil {
		return fmt.Errorf("failed to delete reminder: %w", err)
	}
	_, err = firstRow[models.Reminder](body)
	return err
}

func (r *reminderRepository) FindDue(ctx context.Context, now time.Time, limit int) ([]models.Reminder, error) {
	query := url.Values{
		"notified": {supabase.Eq("false")},
		"due_at":   {supabase.Lte(supabase.Timestamp(now))},
		"order":    {"due_at.asc"},
		"limit":    {strconv.Itoa(limit)},
	}

	body, err := r.client.Select(ctx, "reminders", query)
	if err != nil {
		return nil, fmt.Errorf("failed to find due reminders: %w", err)
	}
	return decodeRows[models.Reminder](body)
}

func (r *reminderRepository) MarkNotified(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	query := url.Values{"id": {fmt.Sprintf("in.(%s)", strings.Join(ids, ","))}}
	if _, err := r.client.Update(ctx, "reminders", query, map[string]interface{}{"notified": true}); err != nil {
		return fmt.Errorf("failed to mark reminders notified: %w", err)
	}
	return nil
}
