package repository

import (
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/todotofu/todotofu/backend/pkg/supabase"
)

// decodeRows unmarshals a PostgREST array response
func decodeRows[T any](body []byte) ([]T, error) {
	var rows []T
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return rows, nil
}

// firstRow returns the first row of a response, or ErrNotFound
func firstRow[T any](body []byte) (*T, error) {
	rows, err := decodeRows[T](body)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return &rows[0], nil
}

// owned filters a single record of a user
func owned(userID, id string) url.Values {
	return url.Values{
		"id":      {supabase.Eq(id)},
		"user_id": {supabase.Eq(userID)},
	}
}

// mapClientError turns driver errors into repository errors
func mapClientError(err error) error {
	if supabase.IsConflict(err) {
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	}
	return err
}

// NewSupabaseStore builds every repository on a Supabase project
func NewSupabaseStore(client *supabase.Client) *Store {
	return &Store{
		Users:       NewUserRepository(client),
		Preferences: NewPreferencesRepository(client),
		Categories:  NewCategoryRepository(client),
		Tasks:       NewTaskRepository(client),
		Events:      NewEventRepository(client),
		Reminders:   NewReminderRepository(client),
		Idempotency: NewIdempotencyRepository(client),
	}
}
