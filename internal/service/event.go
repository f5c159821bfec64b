package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/todotofu/todotofu/backend/internal/models"
	"github.com/todotofu/todotofu/backend/internal/repository"
	"github.com/todotofu/todotofu/backend/internal/timeutil"
)

// defaultEventWindow is the span listed when no "to" date is given
const defaultEventWindow = 7

type eventService struct {
	eventRepo repository.EventRepository
	prefs     PreferencesService
	now       func() time.Time
}

// NewEventService creates a new event service
func NewEventService(eventRepo repository.EventRepository, prefs PreferencesService) EventService {
	return &eventService{
		eventRepo: eventRepo,
		prefs:     prefs,
		now:       time.Now,
	}
}

// ListEvents returns the events overlapping the local days from..to. An empty
// from means today; an empty to means a week after from.
func (s *eventService) ListEvents(ctx context.Context, userID, from, to string) ([]models.Event, error) {
	settings, err := s.prefs.Settings(ctx, userID)
	if err != nil {
		return nil, err
	}
	loc := settings.Location

	fromDay := timeutil.StartOfDay(s.now(), loc)
	if from = strings.TrimSpace(from); from != "" {
		if fromDay, err = timeutil.ParseDate(from, loc); err != nil {
			return nil, invalidDate("from", from)
		}
	}

	y, m, d := fromDay.Date()
	toDay := time.Date(y, m, d+defaultEventWindow-1, 0, 0, 0, 0, loc)
	if to = strings.TrimSpace(to); to != "" {
		if toDay, err = timeutil.ParseDate(to, loc); err != nil {
			return nil, invalidDate("to", to)
		}
	}
	if toDay.Before(fromDay) {
		return nil, invalidField("to", CodeOutOfRange, "to must not be before from")
	}

	start, _ := timeutil.BoundsOf(fromDay, loc)
	_, end := timeutil.BoundsOf(toDay, loc)
	return s.eventsBetween(ctx, userID, start, end)
}

func (s *eventService) GetTodayEvents(ctx context.Context, userID string) ([]models.Event, error) {
	settings, err := s.prefs.Settings(ctx, userID)
	if err != nil {
		return nil, err
	}
	start, end := timeutil.BoundsOf(s.now(), settings.Location)
	return s.eventsBetween(ctx, userID, start, end)
}

func (s *eventService) GetEvent(ctx context.Context, userID, id string) (*models.Event, error) {
	event, err := s.eventRepo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, lookupError(err, "event", id)
	}
	return event, nil
}

func (s *eventService) CreateEvent(ctx context.Context, userID string, req *models.CreateEventRequest) (*models.Event, error) {
	verr := &ValidationError{}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		verr.add("title", CodeRequired, "title is required")
	}
	if req.Start.IsZero() {
		verr.add("start", CodeRequired, "start is required")
	}
	if req.End.IsZero() {
		verr.add("end", CodeRequired, "end is required")
	}
	if err := verr.orNil(); err != nil {
		return nil, err
	}
	if !req.End.After(req.Start) {
		return nil, invalidField("end", CodeOutOfRange, "end must be after start")
	}

	event := &models.Event{
		UserID:   userID,
		Title:    title,
		Start:    req.Start.UTC(),
		End:      req.End.UTC(),
		AllDay:   req.AllDay,
		Location: req.Location,
		Notes:    req.Notes,
	}

	created, err := s.eventRepo.Create(ctx, event)
	if err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}
	return created, nil
}

func (s *eventService) UpdateEvent(ctx context.Context, userID, id string, req *models.UpdateEventRequest) (*models.Event, error) {
	event, err := s.eventRepo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, lookupError(err, "event", id)
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, invalidField("title", CodeRequired, "title must not be empty")
		}
		event.Title = title
	}
	if req.Start != nil {
		event.Start = req.Start.UTC()
	}
	if req.End != nil {
		event.End = req.End.UTC()
	}
	if req.AllDay != nil {
		event.AllDay = *req.AllDay
	}
	if req.Location != nil {
		event.Location = *req.Location
	}
	if req.Notes != nil {
		event.Notes = *req.Notes
	}
	if !event.End.After(event.Start) {
		return nil, invalidField("end", CodeOutOfRange, "end must be after start")
	}

	updated, err := s.eventRepo.Update(ctx, event)
	if err != nil {
		return nil, lookupError(err, "event", id)
	}
	return updated, nil
}

func (s *eventService) DeleteEvent(ctx context.Context, userID, id string) error {
	if err := s.eventRepo.Delete(ctx, userID, id); err != nil {
		return lookupError(err, "event", id)
	}
	return nil
}

func (s *eventService) eventsBetween(ctx context.Context, userID string, start, end time.Time) ([]models.Event, error) {
	events, err := s.eventRepo.FindByUserOverlapping(ctx, userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to get events: %w", err)
	}
	if events == nil {
		events = []models.Event{}
	}
	return events, nil
}
