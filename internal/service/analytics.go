package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/todotofu/todotofu/backend/internal/aggregation"
	"github.com/todotofu/todotofu/backend/internal/auth"
	"github.com/todotofu/todotofu/backend/internal/logger"
	"github.com/todotofu/todotofu/backend/internal/models"
	"github.com/todotofu/todotofu/backend/internal/repository"
	"github.com/todotofu/todotofu/backend/internal/timeutil"
)

type analyticsService struct {
	taskRepo     repository.TaskRepository
	eventRepo    repository.EventRepository
	categoryRepo repository.CategoryRepository
	prefs        PreferencesService
	weekly       aggregation.WeeklyOptions
	now          func() time.Time
}

// NewAnalyticsService creates a new analytics service
func NewAnalyticsService(
	taskRepo repository.TaskRepository,
	eventRepo repository.EventRepository,
	categoryRepo repository.CategoryRepository,
	prefs PreferencesService,
	weekly aggregation.WeeklyOptions,
) AnalyticsService {
	return &analyticsService{
		taskRepo:     taskRepo,
		eventRepo:    eventRepo,
		categoryRepo: categoryRepo,
		prefs:        prefs,
		weekly:       weekly,
		now:          time.Now,
	}
}

// window is the data of one aggregation run
type window struct {
	tasks  []models.Task
	events []models.Event
}

func (s *analyticsService) GetDaySummary(ctx context.Context, date string) (*models.DailySummary, error) {
	id, ok := auth.IdentityFromContext(ctx)
	if !ok {
		return nil, ErrUnauthenticated
	}
	date = strings.TrimSpace(date)
	if date == "" {
		return nil, invalidField("date", CodeRequired, "date is required")
	}

	settings, err := s.prefs.Settings(ctx, id.UserID)
	if err != nil {
		return nil, err
	}
	start, end, err := timeutil.DayBounds(date, settings.Location)
	if err != nil {
		return nil, invalidDate("date", date)
	}

	day := aggregation.Day{Date: timeutil.LocalDate(start, settings.Location), Start: start, End: end}

	w, err := s.fetch(ctx, id.UserID, day.Start, day.End)
	if err != nil {
		return nil, err
	}

	summary := aggregation.ComputeDaySummary(
		aggregation.TasksForDay(w.tasks, day.Start, day.End), w.events, day, settings.DailyBudgetMin,
	)

	logger.Ctx(ctx).Debug("day summary computed",
		logger.String("date", summary.Date),
		logger.Int("spent_minutes", summary.SpentMinutes),
	)
	return &summary, nil
}

func (s *analyticsService) GetWeeklySummary(ctx context.Context, date string) (*models.WeeklySummary, error) {
	return s.weeklySummary(ctx, date)
}

// RecomputeWeeklySummary re-reads the week from storage. Summaries are never
// persisted, so this is the same computation as GetWeeklySummary.
func (s *analyticsService) RecomputeWeeklySummary(ctx context.Context, date string) (*models.WeeklySummary, error) {
	summary, err := s.weeklySummary(ctx, date)
	if err != nil {
		return nil, err
	}
	logger.Ctx(ctx).Info("weekly summary recomputed",
		logger.String("week_start", summary.WeekStart),
		logger.Int("total_minutes", summary.TotalMinutes),
	)
	return summary, nil
}

func (s *analyticsService) weeklySummary(ctx context.Context, date string) (*models.WeeklySummary, error) {
	id, ok := auth.IdentityFromContext(ctx)
	if !ok {
		return nil, ErrUnauthenticated
	}

	settings, err := s.prefs.Settings(ctx, id.UserID)
	if err != nil {
		return nil, err
	}

	anchor := s.now()
	if date = strings.TrimSpace(date); date != "" {
		anchor, err = timeutil.ParseDate(date, settings.Location)
		if err != nil {
			return nil, invalidDate("date", date)
		}
	}

	days := aggregation.WeekDays(timeutil.WeekStart(anchor, settings.WeekStart, settings.Location), settings.Location)
	w, err := s.fetch(ctx, id.UserID, days[0].Start, days[len(days)-1].End)
	if err != nil {
		return nil, err
	}

	daily := aggregation.SummarizeDays(w.tasks, w.events, days, settings.DailyBudgetMin)
	summary := aggregation.ComputeWeeklySummary(daily, s.weekly)

	logger.Ctx(ctx).Debug("weekly summary computed",
		logger.String("week_start", summary.WeekStart),
		logger.Int("total_minutes", summary.TotalMinutes),
		logger.Int("streak", summary.Streak),
	)
	return &summary, nil
}

// fetch loads tasks, events and categories of [start, end] concurrently and
// resolves task categories. The first failure cancels the other queries.
func (s *analyticsService) fetch(ctx context.Context, userID string, start, end time.Time) (window, error) {
	var (
		w          window
		categories []models.Category
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		tasks, err := s.taskRepo.FindByUserAndRange(gctx, userID, start, end)
		if err != nil {
			return fmt.Errorf("failed to get tasks: %w", err)
		}
		w.tasks = tasks
		return nil
	})
	g.Go(func() error {
		events, err := s.eventRepo.FindByUserOverlapping(gctx, userID, start, end)
		if err != nil {
			return fmt.Errorf("failed to get events: %w", err)
		}
		w.events = events
		return nil
	})
	g.Go(func() error {
		cats, err := s.categoryRepo.FindByUser(gctx, userID)
		if err != nil {
			return fmt.Errorf("failed to get categories: %w", err)
		}
		categories = cats
		return nil
	})
	if err := g.Wait(); err != nil {
		return window{}, err
	}

	w.tasks = models.ResolveCategories(w.tasks, categories)
	return w, nil
}
