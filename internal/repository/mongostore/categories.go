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

type categoryRepository struct {
	coll *mongo.Collection
}

// NewCategoryRepository creates a category repository
func NewCategoryRepository(db *mongo.Database) repository.CategoryRepository {
	return &categoryRepository{coll: db.Collection(categoriesCollection)}
}

func (r *categoryRepository) FindByUser(ctx context.Context, userID string) ([]models.Category, error) {
	uid, err := objectID(userID)
	if err != nil {
		return nil, err
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := r.coll.Find(ctx, bson.M{"user_id": uid}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	var docs []categoryDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode categories: %w", err)
	}

	categories := make([]models.Category, len(docs))
	for i, d := range docs {
		categories[i] = d.toModel()
	}
	return categories, nil
}

func (r *categoryRepository) GetByID(ctx context.Context, userID, id string) (*models.Category, error) {
	filter, err := ownedFilter(userID, id)
	if err != nil {
		return nil, err
	}

	var doc categoryDoc
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, mapError(err)
	}
	category := doc.toModel()
	return &category, nil
}

func (r *categoryRepository) Create(ctx context.Context, category *models.Category) (*models.Category, error) {
	uid, err := objectID(category.UserID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	doc := categoryDoc{
		ID:        primitive.NewObjectID(),
		UserID:    uid,
		Name:      category.Name,
		Color:     category.Color,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("failed to create category: %w", mapError(err))
	}

	created := doc.toModel()
	return &created, nil
}

func (r *categoryRepository) Update(ctx context.Context, category *models.Category) (*models.Category, error) {
	filter, err := ownedFilter(category.UserID, category.ID)
	if err != nil {
		return nil, err
	}

	update := bson.M{"$set": bson.M{
		"name":       category.Name,
		"color":      category.Color,
		"updated_at": time.Now().UTC(),
	}}

	var doc categoryDoc
	if err := r.coll.FindOneAndUpdate(ctx, filter, update, returnAfter).Decode(&doc); err != nil {
		return nil, mapError(err)
	}
	updated := doc.toModel()
	return &updated, nil
}

func (r *categoryRepository) Delete(ctx context.Context, userID, id string) error {
	return deleteOwned(ctx, r.coll, userID, id)
}
