package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/todotofu/todotofu/backend/internal/models"
	"github.com/todotofu/todotofu/backend/pkg/supabase"
)

// IdempotencyTTL is how long a stored response can be replayed
const IdempotencyTTL = 24 * time.Hour

type idempotencyRepository struct {
	client *supabase.Client
	now    func() time.Time
}

// NewIdempotencyRepository creates an idempotency repository over the
// idempotency_keys table
func NewIdempotencyRepository(client *supabase.Client) IdempotencyRepository {
	return &idempotencyRepository{client: client, now: time.Now}
}

func (r *idempotencyRepository) Get(ctx context.Context, key, route, userID string) (*models.IdempotencyKey, error) {
	query := url.Values{
		"key":        {supabase.Eq(key)},
		"route":      {supabase.Eq(route)},
		"user_id":    {supabase.Eq(userID)},
		"created_at": {supabase.Gte(supabase.Timestamp(r.now().Add(-IdempotencyTTL)))},
	}

	body, err := r.client.Select(ctx, "idempotency_keys", query)
	if err != nil {
		return nil, fmt.Errorf("failed to query idempotency key: %w", err)
	}

	keys, err := decodeRows[models.IdempotencyKey](body)
	if err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return nil, nil
	}
	return &keys[0], nil
}

func (r *idempotencyRepository) Store(ctx context.Context, key, route, userID string, responseBody []byte, statusCode int) error {
	data := map[string]interface{}{
		"key":           key,
		"route":         route,
		"user_id":       userID,
		"response_body": json.RawMessage(responseBody),
		"status_code":   statusCode,
	}

	if _, err := r.client.Insert(ctx, "idempotency_keys", data); err != nil {
		if supabase.IsConflict(err) {
			return nil
		}
		return fmt.Errorf("failed to store idempotency key: %w", err)
	}
	return nil
}
