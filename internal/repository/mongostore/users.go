package mongostore

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/todotofu/todotofu/backend/internal/models"
	"github.com/todotofu/todotofu/backend/internal/repository"
)

type userRepository struct {
	coll *mongo.Collection
}

// NewUserRepository creates a user repository on the users collection
func NewUserRepository(db *mongo.Database) repository.UserRepository {
	return &userRepository{coll: db.Collection(usersCollection)}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	now := time.Now().UTC()
	doc := userDoc{
		ID:             primitive.NewObjectID(),
		Username:       user.Username,
		Email:          user.Email,
		Name:           user.Name,
		ProfilePicture: user.ProfilePicture,
		PasswordHash:   user.PasswordHash,
		Preferences:    preferencesToDoc(user.Preferences),
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", mapError(err))
	}
	return doc.toModel(), nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

func (r *userRepository) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var doc userDoc
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, mapError(err)
	}
	return doc.toModel(), nil
}

type preferencesRepository struct {
	coll *mongo.Collection
}

// NewPreferencesRepository reads and writes the preferences subdocument of users
func NewPreferencesRepository(db *mongo.Database) repository.PreferencesRepository {
	return &preferencesRepository{coll: db.Collection(usersCollection)}
}

func (r *preferencesRepository) Get(ctx context.Context, userID string) (*models.Preferences, error) {
	oid, err := objectID(userID)
	if err != nil {
		return nil, err
	}

	var doc userDoc
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return nil, mapError(err)
	}
	prefs := preferencesFromDoc(doc.Preferences)
	return &prefs, nil
}

func (r *preferencesRepository) Update(ctx context.Context, userID string, prefs *models.Preferences) (*models.Preferences, error) {
	oid, err := objectID(userID)
	if err != nil {
		return nil, err
	}

	update := bson.M{"$set": bson.M{
		"preferences": preferencesToDoc(*prefs),
		"updated_at":  time.Now().UTC(),
	}}

	var doc userDoc
	if err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, returnAfter).Decode(&doc); err != nil {
		return nil, mapError(err)
	}
	updated := preferencesFromDoc(doc.Preferences)
	return &updated, nil
}
