package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/todotofu/todotofu/backend/internal/models"
)

type redisIdempotencyRepository struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisIdempotencyRepository stores idempotency records in Redis with a TTL
func NewRedisIdempotencyRepository(rdb *redis.Client, ttl time.Duration) IdempotencyRepository {
	if ttl <= 0 {
		ttl = IdempotencyTTL
	}
	return &redisIdempotencyRepository{rdb: rdb, ttl: ttl}
}

// NewRedisClient parses a redis:// URL and verifies the connection
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return rdb, nil
}

func idempotencyKey(key, route, userID string) string {
	return fmt.Sprintf("idempotency:%s:%s:%s", userID, route, key)
}

func (r *redisIdempotencyRepository) Get(ctx context.Context, key, route, userID string) (*models.IdempotencyKey, error) {
	raw, err := r.rdb.Get(ctx, idempotencyKey(key, route, userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read idempotency key: %w", err)
	}

	var record models.IdempotencyKey
	if err := json.Unmarshal(raw, &record); err != nil {
		return nil, fmt.Errorf("failed to decode idempotency key: %w", err)
	}
	return &record, nil
}

func (r *redisIdempotencyRepository) Store(ctx context.Context, key, route, userID string, responseBody []byte, statusCode int) error {
	record := models.IdempotencyKey{
		Key:          key,
		Route:        route,
		UserID:       userID,
		ResponseBody: json.RawMessage(responseBody),
		StatusCode:   statusCode,
		CreatedAt:    time.Now().UTC(),
	}

	raw, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to encode idempotency key: %w", err)
	}

	// SETNX keeps the first response when two requests race
	if err := r.rdb.SetNX(ctx, idempotencyKey(key, route, userID), raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store idempotency key: %w", err)
	}
	return nil
}
