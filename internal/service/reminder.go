package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/todotofu/todotofu/backend/internal/logger"
	"github.com/todotofu/todotofu/backend/internal/models"
	"github.com/todotofu/todotofu/backend/internal/repository"
	"github.com/todotofu/todotofu/backend/internal/timeutil"
)

const (
	clockLayout = "15:04"

	// dispatchBatch caps the reminders handled by one dispatcher tick
	dispatchBatch = 100
)

type reminderService struct {
	reminderRepo repository.ReminderRepository
	prefs        PreferencesService
	now          func() time.Time
}

// NewReminderService creates a new reminder service
func NewReminderService(reminderRepo repository.ReminderRepository, prefs PreferencesService) ReminderService {
	return &reminderService{
		reminderRepo: reminderRepo,
		prefs:        prefs,
		now:          time.Now,
	}
}

func (s *reminderService) ListReminders(ctx context.Context, userID string) ([]models.Reminder, error) {
	reminders, err := s.reminderRepo.FindByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get reminders: %w", err)
	}
	if reminders == nil {
		reminders = []models.Reminder{}
	}
	return reminders, nil
}

// CreateReminder composes due_at from the request's wall-clock date and time
// in the user's timezone.
func (s *reminderService) CreateReminder(ctx context.Context, userID string, req *models.CreateReminderRequest) (*models.Reminder, error) {
	verr := &ValidationError{}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		verr.add("title", CodeRequired, "title is required")
	}
	if strings.TrimSpace(req.Date) == "" {
		verr.add("date", CodeRequired, "date is required")
	}
	if strings.TrimSpace(req.Time) == "" {
		verr.add("time", CodeRequired, "time is required")
	}
	if err := verr.orNil(); err != nil {
		return nil, err
	}

	settings, err := s.prefs.Settings(ctx, userID)
	if err != nil {
		return nil, err
	}

	day, err := time.Parse(timeutil.DateLayout, strings.TrimSpace(req.Date))
	if err != nil {
		return nil, invalidDate("date", req.Date)
	}
	clock, err := time.Parse(clockLayout, strings.TrimSpace(req.Time))
	if err != nil {
		return nil, invalidField("time", CodeInvalid, "time must be HH:MM")
	}
	dueAt := time.Date(day.Year(), day.Month(), day.Day(), clock.Hour(), clock.Minute(), 0, 0, settings.Location)

	created, err := s.reminderRepo.Create(ctx, &models.Reminder{
		UserID:      userID,
		Title:       title,
		Description: req.Description,
		DueAt:       dueAt.UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create reminder: %w", err)
	}
	return created, nil
}

func (s *reminderService) DeleteReminder(ctx context.Context, userID, id string) error {
	if err := s.reminderRepo.Delete(ctx, userID, id); err != nil {
		return lookupError(err, "reminder", id)
	}
	return nil
}

func (s *reminderService) DispatchDue(ctx context.Context) (int, error) {
	due, err := s.reminderRepo.FindDue(ctx, s.now().UTC(), dispatchBatch)
	if err != nil {
		return 0, fmt.Errorf("failed to find due reminders: %w", err)
	}
	if len(due) == 0 {
		return 0, nil
	}

	ids := make([]string, len(due))
	for i, r := range due {
		ids[i] = r.ID
		logger.Ctx(ctx).Info("reminder due",
			logger.String("reminder_id", r.ID),
			logger.String("user_id", r.UserID),
			logger.String("title", r.Title),
			logger.Time("due_at", r.DueAt),
		)
	}

	if err := s.reminderRepo.MarkNotified(ctx, ids); err != nil {
		return 0, fmt.Errorf("failed to mark reminders notified: %w", err)
	}
	return len(due), nil
}

// ReminderScheduler runs the reminder dispatcher on a cron schedule
type ReminderScheduler struct {
	cron      *cron.Cron
	reminders ReminderService
	timeout   time.Duration
}

// NewReminderScheduler creates a scheduler. Each tick gets timeout to finish.
func NewReminderScheduler(reminders ReminderService, timeout time.Duration) *ReminderScheduler {
	return &ReminderScheduler{
		cron:      cron.New(cron.WithLocation(time.UTC)),
		reminders: reminders,
		timeout:   timeout,
	}
}

// Start registers the dispatcher under spec (e.g. "@every 1m") and starts the cron loop
func (s *ReminderScheduler) Start(spec string) error {
	if _, err := s.cron.AddFunc(spec, s.tick); err != nil {
		return fmt.Errorf("invalid reminder schedule %q: %w", spec, err)
	}
	s.cron.Start()
	logger.Info("reminder scheduler started", logger.String("schedule", spec))
	return nil
}

// Stop waits for a running tick to finish
func (s *ReminderScheduler) Stop() {
	<-s.cron.Stop().Done()
}

func (s *ReminderScheduler) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	n, err := s.reminders.DispatchDue(ctx)
	if err != nil {
		logger.Error("reminder dispatch failed", logger.Err(err))
		return
	}
	if n > 0 {
		logger.Debug("reminders dispatched", logger.Int("count", n))
	}
}
