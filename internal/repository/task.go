package repository

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/todotofu/todotofu/backend/internal/models"
	"github.com/todotofu/todotofu/backend/pkg/supabase"
)

// taskRow is the tasks table. start and end are reserved words in SQL.
// date is a timestamptz holding the UTC instant of the task's local
// midnight; a plain Postgres date column would not decode.
type taskRow struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	CategoryID  *string    `json:"category_id"`
	StartTime   *time.Time `json:"start_time"`
	EndTime     *time.Time `json:"end_time"`
	Date        time.Time  `json:"date"`
	DurationMin int        `json:"duration_min"`
	Done        bool       `json:"done"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (r taskRow) toModel() models.Task {
	category := models.NoCategory()
	if r.CategoryID != nil {
		category = models.UnresolvedCategory(*r.CategoryID)
	}
	return models.Task{
		ID:          r.ID,
		UserID:      r.UserID,
		Title:       r.Title,
		Description: r.Description,
		Category:    category,
		Start:       r.StartTime,
		End:         r.EndTime,
		Date:        r.Date,
		DurationMin: r.DurationMin,
		Done:        r.Done,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func taskData(task *models.Task) map[string]interface{} {
	return map[string]interface{}{
		"title":        task.Title,
		"description":  task.Description,
		"category_id":  task.Category.IDPtr(),
		"start_time":   task.Start,
		"end_time":     task.End,
		"date":         task.Date,
		"duration_min": task.DurationMin,
		"done":         task.Done,
	}
}

type taskRepository struct {
	client *supabase.Client
}

// NewTaskRepository creates a new task repository
func NewTaskRepository(client *supabase.Client) TaskRepository {
	return &taskRepository{client: client}
}

func (r *taskRepository) FindByUserAndRange(ctx context.Context, userID string, start, end time.Time) ([]models.Task, error) {
	query := url.Values{
		"user_id": {supabase.Eq(userID)},
		"date":    {supabase.Gte(supabase.Timestamp(start)), supabase.Lte(supabase.Timestamp(end))},
		"order":   {"date.asc,start_time.asc.nullslast"},
	}

	body, err := r.client.Select(ctx, "tasks", query)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return toTasks(body)
}

func (r *taskRepository) GetByID(ctx context.Context, userID, id string) (*models.Task, error) {
	body, err := r.client.Select(ctx, "tasks", owned(userID, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return firstTask(body)
}

func (r *taskRepository) Create(ctx context.Context, task *models.Task) (*models.Task, error) {
	data := taskData(task)
	data["user_id"] = task.UserID

	body, err := r.client.Insert(ctx, "tasks", data)
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	return firstTask(body)
}

func (r *taskRepository) Update(ctx context.Context, task *models.Task) (*models.Task, error) {
	data := taskData(task)
	data["updated_at"] = time.Now().UTC()

	body, err := r.client.Update(ctx, "tasks", owned(task.UserID, task.ID), data)
	if err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}
	return firstTask(body)
}

func (r *taskRepository) Delete(ctx context.Context, userID, id string) error {
	body, err := r.client.Delete(ctx, "tasks", owned(userID, id))
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	_, err = firstRow[taskRow](body)
	return err
}

func toTasks(body []byte) ([]models.Task, error) {
	rows, err := decodeRows[taskRow](body)
	if err != nil {
		return nil, err
	}
	tasks := make([]models.Task, len(rows))
	for i, row := range rows {
		tasks[i] = row.toModel()
	}
	return tasks, nil
}

func firstTask(body []byte) (*models.Task, error) {
	row, err := firstRow[taskRow](body)
	if err != nil {
		return nil, err
	}
	task := row.toModel()
	return &task, nil
}
