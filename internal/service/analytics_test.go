package service

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/todotofu/todotofu/backend/internal/auth"
	"github.com/todotofu/todotofu/backend/internal/models"
)

const testUserID = "user-1"

var hcm = testDefaults().Location

// local returns the instant of a wall-clock time in Asia/Ho_Chi_Minh
func local(y int, m time.Month, d, hh, mm int) time.Time {
	return time.Date(y, m, d, hh, mm, 0, 0, hcm)
}

func ptr(t time.Time) *time.Time { return &t }

// task builds a task of testUserID on the local day of start
func task(title string, ref models.CategoryRef, start time.Time, minutes int, done bool) models.Task {
	return models.Task{
		UserID:   testUserID,
		Title:    title,
		Category: ref,
		Start:    ptr(start),
		End:      ptr(start.Add(time.Duration(minutes) * time.Minute)),
		Date:     time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, hcm).UTC(),
		Done:     done,
	}
}

type analyticsFixture struct {
	svc        *analyticsService
	tasks      *mockTaskRepository
	events     *mockEventRepository
	categories *mockCategoryRepository
	prefs      *mockPreferencesRepository
}

func newAnalyticsFixture(tasks []models.Task, events []models.Event, categories []models.Category) *analyticsFixture {
	f := &analyticsFixture{
		tasks:      newMockTaskRepository(tasks...),
		events:     newMockEventRepository(events...),
		categories: newMockCategoryRepository(categories...),
		prefs:      newMockPreferencesRepository(),
	}
	defaults := testDefaults()
	f.prefs.prefs[testUserID] = defaults.Preferences()

	f.svc = &analyticsService{
		taskRepo:     f.tasks,
		eventRepo:    f.events,
		categoryRepo: f.categories,
		prefs:        NewPreferencesService(f.prefs, nil, time.Minute, defaults),
		weekly:       defaults.Weekly,
		now:          func() time.Time { return local(2025, time.March, 12, 15, 0) },
	}
	return f
}

func authed() context.Context {
	return auth.WithIdentity(context.Background(), auth.Identity{UserID: testUserID, Username: "tofu"})
}

func fixtureData() ([]models.Task, []models.Event, []models.Category) {
	categories := []models.Category{
		{ID: "cat-a", UserID: testUserID, Name: "A"},
		{ID: "cat-b", UserID: testUserID, Name: "B"},
	}
	tasks := []models.Task{
		task("a", models.UnresolvedCategory("cat-a"), local(2025, time.March, 10, 8, 0), 30, true),
		task("b", models.UnresolvedCategory("cat-b"), local(2025, time.March, 10, 9, 0), 20, false),
		task("c", models.NoCategory(), local(2025, time.March, 10, 10, 0), 10, false),
	}
	events := []models.Event{
		{UserID: testUserID, Title: "standup", Start: local(2025, time.March, 10, 13, 0).UTC(), End: local(2025, time.March, 10, 14, 0).UTC()},
	}
	return tasks, events, categories
}

func TestAnalytics_UnauthenticatedFetchesNothing(t *testing.T) {
	tasks, events, categories := fixtureData()
	f := newAnalyticsFixture(tasks, events, categories)
	ctx := context.Background()

	calls := []struct {
		name string
		call func() error
	}{
		{"day summary", func() error { _, err := f.svc.GetDaySummary(ctx, "2025-03-10"); return err }},
		{"weekly", func() error { _, err := f.svc.GetWeeklySummary(ctx, ""); return err }},
		{"recompute", func() error { _, err := f.svc.RecomputeWeeklySummary(ctx, "2025-03-10"); return err }},
	}

	for _, tt := range calls {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.call(); !errors.Is(err, ErrUnauthenticated) {
				t.Fatalf("error = %v, want ErrUnauthenticated", err)
			}
		})
	}

	if f.tasks.findCalls+f.events.findCalls+f.categories.findCalls+f.prefs.getCalls != 0 {
		t.Errorf("repository calls = tasks %d, events %d, categories %d, prefs %d; want none",
			f.tasks.findCalls, f.events.findCalls, f.categories.findCalls, f.prefs.getCalls)
	}
}

func TestAnalytics_GetDaySummary(t *testing.T) {
	tasks, events, categories := fixtureData()
	f := newAnalyticsFixture(tasks, events, categories)

	got, err := f.svc.GetDaySummary(authed(), "2025-03-10")
	if err != nil {
		t.Fatalf("GetDaySummary() error = %v", err)
	}

	want := &models.DailySummary{
		Date:             "2025-03-10",
		TaskMinutes:      60,
		EventMinutes:     60,
		SpentMinutes:     120,
		RemainingMinutes: 600,
		ByCategory: []models.CategoryMinutes{
			{CategoryID: "cat-a", Name: "A", Minutes: 30},
			{CategoryID: "cat-b", Name: "B", Minutes: 20},
			{CategoryID: "uncategorized", Name: "Uncategorized", Minutes: 10},
		},
		TasksTotal:     3,
		TasksCompleted: 1,
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("GetDaySummary() = %+v\nwant %+v", got, want)
	}
}

func TestAnalytics_GetDaySummary_DeletedCategory(t *testing.T) {
	tasks, events, categories := fixtureData()
	f := newAnalyticsFixture(tasks, events, categories[:1])

	got, err := f.svc.GetDaySummary(authed(), "2025-03-10")
	if err != nil {
		t.Fatalf("GetDaySummary() error = %v", err)
	}

	want := []models.CategoryMinutes{
		{CategoryID: "cat-a", Name: "A", Minutes: 30},
		{CategoryID: "uncategorized", Name: "Uncategorized", Minutes: 30},
	}
	if !reflect.DeepEqual(got.ByCategory, want) {
		t.Errorf("ByCategory = %+v, want %+v", got.ByCategory, want)
	}
}

func TestAnalytics_GetDaySummary_CrossMidnightEvent(t *testing.T) {
	events := []models.Event{{
		UserID: testUserID,
		Title:  "late shift",
		Start:  local(2025, time.March, 9, 23, 0).UTC(),
		End:    local(2025, time.March, 10, 1, 0).UTC(),
	}}
	f := newAnalyticsFixture(nil, events, nil)

	for date, want := range map[string]int{"2025-03-09": 60, "2025-03-10": 60, "2025-03-11": 0} {
		got, err := f.svc.GetDaySummary(authed(), date)
		if err != nil {
			t.Fatalf("GetDaySummary(%s) error = %v", date, err)
		}
		if got.EventMinutes != want {
			t.Errorf("GetDaySummary(%s).EventMinutes = %d, want %d", date, got.EventMinutes, want)
		}
	}
}

func TestAnalytics_GetDaySummary_Empty(t *testing.T) {
	f := newAnalyticsFixture(nil, nil, nil)

	got, err := f.svc.GetDaySummary(authed(), "2025-03-10")
	if err != nil {
		t.Fatalf("GetDaySummary() error = %v", err)
	}
	if got.SpentMinutes != 0 || got.RemainingMinutes != 720 || len(got.ByCategory) != 0 || got.ByCategory == nil {
		t.Errorf("GetDaySummary() = %+v, want zero usage and the full budget", got)
	}
}

func TestAnalytics_GetDaySummary_InvalidDate(t *testing.T) {
	f := newAnalyticsFixture(nil, nil, nil)

	tests := []struct {
		name     string
		date     string
		wantCode string
	}{
		{"missing", "", CodeRequired},
		{"blank", "   ", CodeRequired},
		{"malformed", "10/03/2025", CodeInvalidDate},
		{"impossible", "2025-13-01", CodeInvalidDate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.GetDaySummary(authed(), tt.date)

			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("error = %v, want *ValidationError", err)
			}
			if len(verr.Fields) != 1 || verr.Fields[0].Field != "date" || verr.Fields[0].Code != tt.wantCode {
				t.Errorf("Fields = %+v, want date/%s", verr.Fields, tt.wantCode)
			}
		})
	}

	if f.tasks.findCalls != 0 {
		t.Errorf("tasks fetched %d times for invalid input", f.tasks.findCalls)
	}
}

func TestAnalytics_RepositoryFailure(t *testing.T) {
	tasks, events, categories := fixtureData()
	f := newAnalyticsFixture(tasks, events, categories)
	boom := errors.New("connection reset")
	f.events.err = boom

	got, err := f.svc.GetDaySummary(authed(), "2025-03-10")
	if !errors.Is(err, boom) {
		t.Fatalf("error = %v, want wrapped %v", err, boom)
	}
	if got != nil {
		t.Errorf("summary = %+v, want nil on failure", got)
	}

	if _, err := f.svc.GetWeeklySummary(authed(), "2025-03-10"); !errors.Is(err, boom) {
		t.Errorf("weekly error = %v, want wrapped %v", err, boom)
	}
}

func TestAnalytics_CancelledRequestReturnsNothing(t *testing.T) {
	type call func(ctx context.Context, svc *analyticsService) (any, error)
	calls := map[string]call{
		"day": func(ctx context.Context, svc *analyticsService) (any, error) {
			s, err := svc.GetDaySummary(ctx, "2025-03-10")
			if s == nil {
				return nil, err
			}
			return s, err
		},
		"weekly": func(ctx context.Context, svc *analyticsService) (any, error) {
			s, err := svc.GetWeeklySummary(ctx, "2025-03-10")
			if s == nil {
				return nil, err
			}
			return s, err
		},
	}

	for name, fn := range calls {
		t.Run(name+" cancelled mid-fetch", func(t *testing.T) {
			tasks, events, categories := fixtureData()
			f := newAnalyticsFixture(tasks, events, categories)
			f.events.block = true
			f.events.started = make(chan struct{}, 1)

			ctx, cancel := context.WithCancel(authed())
			defer cancel()

			type result struct {
				summary any
				err     error
			}
			done := make(chan result, 1)
			go func() {
				s, err := fn(ctx, f.svc)
				done <- result{s, err}
			}()

			select {
			case <-f.events.started:
			case <-time.After(5 * time.Second):
				t.Fatal("event fetch never started")
			}
			cancel()

			select {
			case res := <-done:
				if res.summary != nil {
					t.Errorf("summary = %+v, want nil", res.summary)
				}
				if !errors.Is(res.err, context.Canceled) {
					t.Errorf("error = %v, want context.Canceled", res.err)
				}
			case <-time.After(5 * time.Second):
				t.Fatal("request did not return after cancellation")
			}
		})

		t.Run(name+" already cancelled", func(t *testing.T) {
			tasks, events, categories := fixtureData()
			f := newAnalyticsFixture(tasks, events, categories)

			ctx, cancel := context.WithCancel(authed())
			cancel()

			s, err := fn(ctx, f.svc)
			if s != nil {
				t.Errorf("summary = %+v, want nil", s)
			}
			if !errors.Is(err, context.Canceled) {
				t.Errorf("error = %v, want context.Canceled", err)
			}
		})

		t.Run(name+" failure cancels sibling fetches", func(t *testing.T) {
			tasks, events, categories := fixtureData()
			f := newAnalyticsFixture(tasks, events, categories)
			boom := errors.New("categories unavailable")
			f.categories.err = boom
			f.events.block = true

			done := make(chan error, 1)
			go func() {
				_, err := fn(authed(), f.svc)
				done <- err
			}()

			select {
			case err := <-done:
				if !errors.Is(err, boom) {
					t.Errorf("error = %v, want wrapped %v", err, boom)
				}
			case <-time.After(5 * time.Second):
				t.Fatal("blocked event fetch was not cancelled by the failing category fetch")
			}

			f.events.mu.Lock()
			observed := f.events.observed
			f.events.mu.Unlock()
			if !errors.Is(observed, context.Canceled) {
				t.Errorf("event fetch saw %v, want context.Canceled", observed)
			}
		})
	}
}

func TestAnalytics_GetWeeklySummary(t *testing.T) {
	var tasks []models.Task
	for _, day := range []int{9, 10, 12, 13, 14} {
		tasks = append(tasks, task("work", models.UnresolvedCategory("cat-a"), local(2025, time.March, day, 9, 0), 90, true))
	}
	tasks = append(tasks,
		task("short", models.UnresolvedCategory("cat-a"), local(2025, time.March, 11, 9, 0), 30, false),
		task("next week", models.UnresolvedCategory("cat-a"), local(2025, time.March, 16, 9, 0), 600, false),
	)
	categories := []models.Category{{ID: "cat-a", UserID: testUserID, Name: "A"}}
	f := newAnalyticsFixture(tasks, nil, categories)

	got, err := f.svc.GetWeeklySummary(authed(), "2025-03-12")
	if err != nil {
		t.Fatalf("GetWeeklySummary() error = %v", err)
	}

	if got.WeekStart != "2025-03-09" || got.WeekEnd != "2025-03-15" {
		t.Errorf("week = %s..%s, want 2025-03-09..2025-03-15", got.WeekStart, got.WeekEnd)
	}
	if len(got.Daily) != 7 {
		t.Fatalf("len(Daily) = %d, want 7", len(got.Daily))
	}
	if got.TotalMinutes != 480 {
		t.Errorf("TotalMinutes = %d, want 480", got.TotalMinutes)
	}
	if got.Streak != 3 {
		t.Errorf("Streak = %d, want 3", got.Streak)
	}
	if got.FocusRatio != (models.FocusRatio{ActiveMin: 384, RestMin: 96}) {
		t.Errorf("FocusRatio = %+v, want 384/96", got.FocusRatio)
	}
	if got.AverageProductiveHours != 1.14 {
		t.Errorf("AverageProductiveHours = %v, want 1.14", got.AverageProductiveHours)
	}
	wantCats := []models.CategoryMinutes{{CategoryID: "cat-a", Name: "A", Minutes: 480}}
	if !reflect.DeepEqual(got.ByCategory, wantCats) {
		t.Errorf("ByCategory = %+v, want %+v", got.ByCategory, wantCats)
	}
}

func TestAnalytics_WeeklyDefaultsToToday(t *testing.T) {
	f := newAnalyticsFixture(nil, nil, nil)

	got, err := f.svc.GetWeeklySummary(authed(), "")
	if err != nil {
		t.Fatalf("GetWeeklySummary() error = %v", err)
	}
	if got.WeekStart != "2025-03-09" {
		t.Errorf("WeekStart = %s, want the week of the clock (2025-03-09)", got.WeekStart)
	}
}

func TestAnalytics_WeeklyHonorsPreferences(t *testing.T) {
	f := newAnalyticsFixture(nil, nil, nil)
	f.prefs.prefs[testUserID] = models.Preferences{Timezone: "UTC", WeekStart: "monday", DailyBudgetMin: 480}

	got, err := f.svc.GetWeeklySummary(authed(), "2025-03-09")
	if err != nil {
		t.Fatalf("GetWeeklySummary() error = %v", err)
	}
	if got.WeekStart != "2025-03-03" || got.WeekEnd != "2025-03-09" {
		t.Errorf("week = %s..%s, want 2025-03-03..2025-03-09", got.WeekStart, got.WeekEnd)
	}
	if got.Daily[0].RemainingMinutes != 480 {
		t.Errorf("RemainingMinutes = %d, want the preference budget 480", got.Daily[0].RemainingMinutes)
	}
}

func TestAnalytics_RecomputeIsIdempotent(t *testing.T) {
	tasks, events, categories := fixtureData()
	f := newAnalyticsFixture(tasks, events, categories)

	first, err := f.svc.GetWeeklySummary(authed(), "2025-03-10")
	if err != nil {
		t.Fatalf("GetWeeklySummary() error = %v", err)
	}
	for i := 0; i < 3; i++ {
		again, err := f.svc.RecomputeWeeklySummary(authed(), "2025-03-10")
		if err != nil {
			t.Fatalf("RecomputeWeeklySummary() error = %v", err)
		}
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("recompute #%d = %+v, want %+v", i+1, again, first)
		}
	}
}

func TestAnalytics_InvalidWeeklyDate(t *testing.T) {
	f := newAnalyticsFixture(nil, nil, nil)

	_, err := f.svc.GetWeeklySummary(authed(), "next week")

	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Fields[0].Code != CodeInvalidDate {
		t.Errorf("error = %v, want invalid_date validation error", err)
	}
}
