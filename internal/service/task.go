package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/todotofu/todotofu/backend/internal/logger"
	"github.com/todotofu/todotofu/backend/internal/models"
	"github.com/todotofu/todotofu/backend/internal/repository"
	"github.com/todotofu/todotofu/backend/internal/timeutil"
)

type taskService struct {
	taskRepo     repository.TaskRepository
	categoryRepo repository.CategoryRepository
	prefs        PreferencesService
	now          func() time.Time
}

// NewTaskService creates a new task service
func NewTaskService(taskRepo repository.TaskRepository, categoryRepo repository.CategoryRepository, prefs PreferencesService) TaskService {
	return &taskService{
		taskRepo:     taskRepo,
		categoryRepo: categoryRepo,
		prefs:        prefs,
		now:          time.Now,
	}
}

func (s *taskService) ListTasks(ctx context.Context, userID, date string) ([]models.Task, error) {
	settings, err := s.prefs.Settings(ctx, userID)
	if err != nil {
		return nil, err
	}

	start, end := timeutil.BoundsOf(s.now(), settings.Location)
	if date = strings.TrimSpace(date); date != "" {
		start, end, err = timeutil.DayBounds(date, settings.Location)
		if err != nil {
			return nil, invalidDate("date", date)
		}
	}

	return s.tasksBetween(ctx, userID, start, end)
}

func (s *taskService) GetTodayTasks(ctx context.Context, userID string) (*models.TodayTasksResponse, error) {
	settings, err := s.prefs.Settings(ctx, userID)
	if err != nil {
		return nil, err
	}

	start, end := timeutil.BoundsOf(s.now(), settings.Location)
	tasks, err := s.tasksBetween(ctx, userID, start, end)
	if err != nil {
		return nil, err
	}

	resp := &models.TodayTasksResponse{Tasks: tasks, TotalTasks: len(tasks)}
	var spent time.Duration
	for _, t := range tasks {
		if t.Done {
			resp.CompletedTasks++
		}
		if t.Start != nil && t.End != nil && t.End.After(*t.Start) {
			spent += t.End.Sub(*t.Start)
		}
	}
	resp.SpentHours = math.Round(spent.Hours()*100) / 100

	return resp, nil
}

func (s *taskService) GetTask(ctx context.Context, userID, id string) (*models.Task, error) {
	task, err := s.taskRepo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, lookupError(err, "task", id)
	}
	return s.resolve(ctx, task)
}

func (s *taskService) CreateTask(ctx context.Context, userID string, req *models.CreateTaskRequest) (*models.Task, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, invalidField("title", CodeRequired, "title is required")
	}
	if err := validateRange(req.Start, req.End); err != nil {
		return nil, err
	}

	settings, err := s.prefs.Settings(ctx, userID)
	if err != nil {
		return nil, err
	}

	task := &models.Task{
		UserID:      userID,
		Title:       title,
		Description: req.Description,
		Category:    models.NoCategory(),
		Start:       req.Start,
		End:         req.End,
		Done:        req.Done,
	}

	if req.CategoryID != nil && *req.CategoryID != "" {
		if err := s.checkCategory(ctx, userID, *req.CategoryID); err != nil {
			return nil, err
		}
		task.Category = models.UnresolvedCategory(*req.CategoryID)
	}

	switch {
	case req.Date != "":
		task.Date, err = timeutil.ParseDate(req.Date, settings.Location)
		if err != nil {
			return nil, invalidDate("date", req.Date)
		}
	case req.Start != nil:
		task.Date = timeutil.StartOfDay(*req.Start, settings.Location)
	default:
		task.Date = timeutil.StartOfDay(s.now(), settings.Location)
	}
	task.Date = task.Date.UTC()
	task.DurationMin = durationMinutes(task.Start, task.End)

	created, err := s.taskRepo.Create(ctx, task)
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	logger.Ctx(ctx).Debug("task created",
		logger.String("task_id", created.ID),
		logger.Int("duration_min", created.DurationMin),
	)
	return s.resolve(ctx, created)
}

func (s *taskService) UpdateTask(ctx context.Context, userID, id string, req *models.UpdateTaskRequest) (*models.Task, error) {
	task, err := s.taskRepo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, lookupError(err, "task", id)
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, invalidField("title", CodeRequired, "title must not be empty")
		}
		task.Title = title
	}
	if req.Description != nil {
		task.Description = *req.Description
	}
	if req.Done != nil {
		task.Done = *req.Done
	}
	if req.CategoryID.Set {
		cid := req.CategoryID.ToPtr()
		if cid == nil || *cid == "" {
			task.Category = models.NoCategory()
		} else {
			if err := s.checkCategory(ctx, userID, *cid); err != nil {
				return nil, err
			}
			task.Category = models.UnresolvedCategory(*cid)
		}
	}
	req.Start.Apply(&task.Start)
	req.End.Apply(&task.End)
	if err := validateRange(task.Start, task.End); err != nil {
		return nil, err
	}

	if req.Date != nil {
		settings, err := s.prefs.Settings(ctx, userID)
		if err != nil {
			return nil, err
		}
		date, err := timeutil.ParseDate(*req.Date, settings.Location)
		if err != nil {
			return nil, invalidDate("date", *req.Date)
		}
		task.Date = date.UTC()
	}
	task.DurationMin = durationMinutes(task.Start, task.End)

	updated, err := s.taskRepo.Update(ctx, task)
	if err != nil {
		return nil, lookupError(err, "task", id)
	}
	return s.resolve(ctx, updated)
}

func (s *taskService) DeleteTask(ctx context.Context, userID, id string) error {
	if err := s.taskRepo.Delete(ctx, userID, id); err != nil {
		return lookupError(err, "task", id)
	}
	return nil
}

func (s *taskService) tasksBetween(ctx context.Context, userID string, start, end time.Time) ([]models.Task, error) {
	tasks, err := s.taskRepo.FindByUserAndRange(ctx, userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to get tasks: %w", err)
	}
	categories, err := s.categoryRepo.FindByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get categories: %w", err)
	}

	resolved := models.ResolveCategories(tasks, categories)
	if resolved == nil {
		resolved = []models.Task{}
	}
	return resolved, nil
}

// resolve attaches the category name of a single task
func (s *taskService) resolve(ctx context.Context, task *models.Task) (*models.Task, error) {
	if task.Category.Kind == models.CategoryNone {
		return task, nil
	}
	cat, err := s.categoryRepo.GetByID(ctx, task.UserID, task.Category.ID)
	if errors.Is(err, repository.ErrNotFound) {
		task.Category = models.UnresolvedCategory(task.Category.ID)
		return task, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	task.Category = models.ResolvedCategory(cat.ID, cat.Name)
	return task, nil
}

func (s *taskService) checkCategory(ctx context.Context, userID, categoryID string) error {
	_, err := s.categoryRepo.GetByID(ctx, userID, categoryID)
	if errors.Is(err, repository.ErrNotFound) {
		return invalidField("category_id", CodeInvalid, "category does not exist")
	}
	if err != nil {
		return fmt.Errorf("failed to get category: %w", err)
	}
	return nil
}

// validateRange requires end after start when both are set
func validateRange(start, end *time.Time) error {
	if start != nil && end != nil && !end.After(*start) {
		return invalidField("end", CodeOutOfRange, "end must be after start")
	}
	return nil
}

func durationMinutes(start, end *time.Time) int {
	if start == nil || end == nil || !end.After(*start) {
		return 0
	}
	return timeutil.MinutesBetween(*start, *end)
}
