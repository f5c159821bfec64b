package mongostore

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/todotofu/todotofu/backend/internal/models"
	"github.com/todotofu/todotofu/backend/internal/repository"
)

type eventRepository struct {
	coll *mongo.Collection
}

// NewEventRepository creates an event repository
func NewEventRepository(db *mongo.Database) repository.EventRepository {
	return &eventRepository{coll: db.Collection(eventsCollection)}
}

func (r *eventRepository) FindByUserOverlapping(ctx context.Context, userID string, start, end time.Time) ([]models.Event, error) {
	uid, err := objectID(userID)
	if err != nil {
		return nil, err
	}

	filter := bson.M{
		"user_id": uid,
		"start":   bson.M{"$lte": end},
		"end":     bson.M{"$gte": start},
	}
	opts := options.Find().SetSort(bson.D{{Key: "start", Value: 1}})

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	var docs []eventDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode events: %w", err)
	}

	events := make([]models.Event, len(docs))
	for i, d := range docs {
		events[i] = d.toModel()
	}
	return events, nil
}

func (r *eventRepository) GetByID(ctx context.Context, userID, id string) (*models.Event, error) {
	filter, err := ownedFilter(userID, id)
	if err != nil {
		return nil, err
	}

	var doc eventDoc
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, mapError(err)
	}
	event := doc.toModel()
	return &event, nil
}

func (r *eventRepository) Create(ctx context.Context, event *models.Event) (*models.Event, error) {
	uid, err := objectID(event.UserID)
	if err != nil {
		return nil, err
	}

	doc := eventToDoc(event, uid)
	doc.ID = primitive.NewObjectID()
	doc.CreatedAt = time.Now().UTC()
	doc.UpdatedAt = doc.CreatedAt

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("failed to create event: %w", mapError(err))
	}

	created := doc.toModel()
	return &created, nil
}

func (r *eventRepository) Update(ctx context.Context, event *models.Event) (*models.Event, error) {
	filter, err := ownedFilter(event.UserID, event.ID)
	if err != nil {
		return nil, err
	}

	update := bson.M{"$set": bson.M{
		"title":      event.Title,
		"start":      event.Start,
		"end":        event.End,
		"all_day":    event.AllDay,
		"location":   event.Location,
		"notes":      event.Notes,
		"updated_at": time.Now().UTC(),
	}}

	var doc eventDoc
	if err := r.coll.FindOneAndUpdate(ctx, filter, update, returnAfter).Decode(&doc); err != nil {
		return nil, mapError(err)
	}
	updated := doc.toModel()
	return &updated, nil
}

func (r *eventRepository) Delete(ctx context.Context, userID, id string) error {
	return deleteOwned(ctx, r.coll, userID, id)
}
