package mongostore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/todotofu/todotofu/backend/internal/models"
	"github.com/todotofu/todotofu/backend/internal/repository"
)

// idempotencyRepository relies on the TTL index created by EnsureIndexes to
// expire records; Get also filters by age because TTL deletion is lazy.
type idempotencyRepository struct {
	coll *mongo.Collection
	now  func() time.Time
}

// NewIdempotencyRepository creates an idempotency repository
func NewIdempotencyRepository(db *mongo.Database) repository.IdempotencyRepository {
	return &idempotencyRepository{coll: db.Collection(idempotencyCollection), now: time.Now}
}

func (r *idempotencyRepository) Get(ctx context.Context, key, route, userID string) (*models.IdempotencyKey, error) {
	filter := bson.M{
		"key":        key,
		"route":      route,
		"user_id":    userID,
		"created_at": bson.M{"$gte": r.now().UTC().Add(-repository.IdempotencyTTL)},
	}

	var doc idempotencyDoc
	err := r.coll.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query idempotency key: %w", err)
	}

	return &models.IdempotencyKey{
		Key:          doc.Key,
		Route:        doc.Route,
		UserID:       doc.UserID,
		ResponseBody: json.RawMessage(doc.ResponseBody),
		StatusCode:   doc.StatusCode,
		CreatedAt:    doc.CreatedAt,
	}, nil
}

func (r *idempotencyRepository) Store(ctx context.Context, key, route, userID string, responseBody []byte, statusCode int) error {
	doc := idempotencyDoc{
		Key:          key,
		Route:        route,
		UserID:       userID,
		ResponseBody: responseBody,
		StatusCode:   statusCode,
		CreatedAt:    r.now().UTC(),
	}

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil
		}
		return fmt.Errorf("failed to store idempotency key: %w", err)
	}
	return nil
}
