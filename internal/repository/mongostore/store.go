// Package mongostore implements the repository interfaces on MongoDB.
// Ids are ObjectIDs on disk and hex strings everywhere else.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/todotofu/todotofu/backend/internal/repository"
)

const (
	usersCollection       = "users"
	categoriesCollection  = "categories"
	tasksCollection       = "tasks"
	eventsCollection      = "events"
	remindersCollection   = "reminders"
	idempotencyCollection = "idempotency_keys"
)

// Connect opens a client and pings the primary
func Connect(ctx context.Context, uri string, timeout time.Duration) (*mongo.Client, error) {
	opts := options.Client().
		ApplyURI(uri).
		SetConnectTimeout(timeout).
		SetServerSelectionTimeout(timeout)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	return client, nil
}

// New builds every repository on db
func New(db *mongo.Database) *repository.Store {
	return &repository.Store{
		Users:       NewUserRepository(db),
		Preferences: NewPreferencesRepository(db),
		Categories:  NewCategoryRepository(db),
		Tasks:       NewTaskRepository(db),
		Events:      NewEventRepository(db),
		Reminders:   NewReminderRepository(db),
		Idempotency: NewIdempotencyRepository(db),
	}
}

// EnsureIndexes creates the indexes the repositories query by. It is safe to
// run repeatedly.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := map[string][]mongo.IndexModel{
		usersCollection: {
			{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		categoriesCollection: {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: 1}}},
		},
		tasksCollection: {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "date", Value: 1}}},
		},
		eventsCollection: {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "start", Value: 1}, {Key: "end", Value: 1}}},
		},
		remindersCollection: {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "due_at", Value: 1}}},
			{Keys: bson.D{{Key: "notified", Value: 1}, {Key: "due_at", Value: 1}}},
		},
		idempotencyCollection: {
			{
				Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "route", Value: 1}, {Key: "key", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{
				Keys:    bson.D{{Key: "created_at", Value: 1}},
				Options: options.Index().SetExpireAfterSeconds(int32(repository.IdempotencyTTL.Seconds())),
			},
		},
	}

	for name, idx := range indexes {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, idx); err != nil {
			return fmt.Errorf("failed to create indexes on %s: %w", name, err)
		}
	}
	return nil
}

// objectID parses a hex id. Malformed ids cannot match any record.
func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, repository.ErrNotFound
	}
	return oid, nil
}

// ownedFilter matches one record of a user
func ownedFilter(userID, id string) (bson.M, error) {
	uid, err := objectID(userID)
	if err != nil {
		return nil, err
	}
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	return bson.M{"_id": oid, "user_id": uid}, nil
}

func mapError(err error) error {
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return repository.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%w: %v", repository.ErrDuplicate, err)
	default:
		return err
	}
}

// deleteOwned removes one record of a user, reporting ErrNotFound when nothing matched
func deleteOwned(ctx context.Context, coll *mongo.Collection, userID, id string) error {
	filter, err := ownedFilter(userID, id)
	if err != nil {
		return err
	}

	res, err := coll.DeleteOne(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to delete from %s: %w", coll.Name(), err)
	}
	if res.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

var returnAfter = options.FindOneAndUpdate().SetReturnDocument(options.After)
