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

type taskRepository struct {
	coll *mongo.Collection
}

// NewTaskRepository creates a task repository
func NewTaskRepository(db *mongo.Database) repository.TaskRepository {
	return &taskRepository{coll: db.Collection(tasksCollection)}
}

func (r *taskRepository) FindByUserAndRange(ctx context.Context, userID string, start, end time.Time) ([]models.Task, error) {
	uid, err := objectID(userID)
	if err != nil {
		return nil, err
	}

	filter := bson.M{
		"user_id": uid,
		"date":    bson.M{"$gte": start, "$lte": end},
	}
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}, {Key: "start", Value: 1}})

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	var docs []taskDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode tasks: %w", err)
	}

	tasks := make([]models.Task, len(docs))
	for i, d := range docs {
		tasks[i] = d.toModel()
	}
	return tasks, nil
}

func (r *taskRepository) GetByID(ctx context.Context, userID, id string) (*models.Task, error) {
	filter, err := ownedFilter(userID, id)
	if err != nil {
		return nil, err
	}

	var doc taskDoc
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, mapError(err)
	}
	task := doc.toModel()
	return &task, nil
}

func (r *taskRepository) Create(ctx context.Context, task *models.Task) (*models.Task, error) {
	uid, err := objectID(task.UserID)
	if err != nil {
		return nil, err
	}

	doc := taskToDoc(task, uid)
	doc.ID = primitive.NewObjectID()
	doc.CreatedAt = time.Now().UTC()
	doc.UpdatedAt = doc.CreatedAt

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", mapError(err))
	}

	created := doc.toModel()
	return &created, nil
}

func (r *taskRepository) Update(ctx context.Context, task *models.Task) (*models.Task, error) {
	filter, err := ownedFilter(task.UserID, task.ID)
	if err != nil {
		return nil, err
	}

	doc := taskToDoc(task, filter["user_id"].(primitive.ObjectID))
	update := bson.M{"$set": bson.M{
		"title":        doc.Title,
		"description":  doc.Description,
		"category_id":  doc.CategoryID,
		"start":        doc.Start,
		"end":          doc.End,
		"date":         doc.Date,
		"duration_min": doc.DurationMin,
		"done":         doc.Done,
		"updated_at":   time.Now().UTC(),
	}}

	var updated taskDoc
	if err := r.coll.FindOneAndUpdate(ctx, filter, update, returnAfter).Decode(&updated); err != nil {
		return nil, mapError(err)
	}
	result := updated.toModel()
	return &result, nil
}

func (r *taskRepository) Delete(ctx context.Context, userID, id string) error {
	return deleteOwned(ctx, r.coll, userID, id)
}
