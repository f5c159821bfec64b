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

type reminderRepository struct {
	coll *mongo.Collection
}

// NewReminderRepository creates a reminder repository
func NewReminderRepository(db *mongo.Database) repository.ReminderRepository {
	return &reminderRepository{coll: db.Collection(remindersCollection)}
}

func (r *reminderRepository) FindByUser(ctx context.Context, userID string) ([]models.Reminder, error) {
	uid, err := objectID(userID)
	if err != nil {
		return nil, err
	}
	opts := options.Find().SetSort(bson.D{{Key: "due_at", Value: 1}})
	return r.find(ctx, bson.M{"user_id": uid}, opts)
}

func (r *reminderRepository) Create(ctx context.Context, reminder *models.Reminder) (*models.Reminder, error) {
	uid, err := objectID(reminder.UserID)
	if err != nil {
		return nil, err
	}

	doc := reminderDoc{
		ID:          primitive.NewObjectID(),
		UserID:      uid,
		Title:       reminder.Title,
		Description: reminder.Description,
		DueAt:       reminder.DueAt,
		CreatedAt:   time.Now().UTC(),
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("failed to create reminder: %w", mapError(err))
	}

	created := doc.toModel()
	return &created, nil
}

func (r *reminderRepository) Delete(ctx context.Context, userID, id string) error {
	return deleteOwned(ctx, r.coll, userID, id)
}

func (r *reminderRepository) FindDue(ctx context.Context, now time.Time, limit int) ([]models.Reminder, error) {
	filter := bson.M{
		"notified": false,
		"due_at":   bson.M{"$lte": now},
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "due_at", Value: 1}}).
		SetLimit(int64(limit))
	return r.find(ctx, filter, opts)
}

func (r *reminderRepository) MarkNotified(ctx context.Context, ids []string) error {
	oids := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if oid, err := primitive.ObjectIDFromHex(id); err == nil {
			oids = append(oids, oid)
		}
	}
	if len(oids) == 0 {
		return nil
	}

	_, err := r.coll.UpdateMany(ctx,
		bson.M{"_id": bson.M{"$in": oids}},
		bson.M{"$set": bson.M{"notified": true}},
	)
	if err != nil {
		return fmt.Errorf("failed to mark reminders notified: %w", err)
	}
	return nil
}

func (r *reminderRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Reminder, error) {
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list reminders: %w", err)
	}

	var docs []reminderDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode reminders: %w", err)
	}

	reminders := make([]models.Reminder, len(docs))
	for i, d := range docs {
		reminders[i] = d.toModel()
	}
	return reminders, nil
}
