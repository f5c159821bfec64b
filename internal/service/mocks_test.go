package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/todotofu/todotofu/backend/internal/aggregation"
	"github.com/todotofu/todotofu/backend/internal/auth"
	"github.com/todotofu/todotofu/backend/internal/models"
	"github.com/todotofu/todotofu/backend/internal/repository"
)

func generateMockID() string {
	return uuid.NewString()
}

// mockTaskRepository is an in-memory TaskRepository
type mockTaskRepository struct {
	mu        sync.Mutex
	tasks     map[string]*models.Task
	findCalls int
	err       error
}

func newMockTaskRepository(tasks ...models.Task) *mockTaskRepository {
	m := &mockTaskRepository{tasks: make(map[string]*models.Task)}
	for i := range tasks {
		t := tasks[i]
		if t.ID == "" {
			t.ID = generateMockID()
		}
		m.tasks[t.ID] = &t
	}
	return m
}

func (m *mockTaskRepository) FindByUserAndRange(ctx context.Context, userID string, start, end time.Time) ([]models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.findCalls++
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.err != nil {
		return nil, m.err
	}

	var out []models.Task
	for _, t := range m.tasks {
		if t.UserID != userID || t.Date.Before(start) || t.Date.After(end) {
			continue
		}
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].Title < out[j].Title
	})
	return out, nil
}

func (m *mockTaskRepository) GetByID(ctx context.Context, userID, id string) (*models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[id]
	if !ok || t.UserID != userID {
		return nil, repository.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (m *mockTaskRepository) Create(ctx context.Context, task *models.Task) (*models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	task.ID = generateMockID()
	task.CreatedAt = time.Now()
	task.UpdatedAt = task.CreatedAt
	cp := *task
	m.tasks[task.ID] = &cp
	return task, nil
}

func (m *mockTaskRepository) Update(ctx context.Context, task *models.Task) (*models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.tasks[task.ID]; !ok || existing.UserID != task.UserID {
		return nil, repository.ErrNotFound
	}
	task.UpdatedAt = time.Now()
	cp := *task
	m.tasks[task.ID] = &cp
	return task, nil
}

func (m *mockTaskRepository) Delete(ctx context.Context, userID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.tasks[id]; !ok || t.UserID != userID {
		return repository.ErrNotFound
	}
	delete(m.tasks, id)
	return nil
}

// mockEventRepository is an in-memory EventRepository
type mockEventRepository struct {
	mu        sync.Mutex
	events    map[string]*models.Event
	findCalls int
	err       error

	// block makes FindByUserOverlapping wait for ctx to end. started
	// receives a value once the wait begins and observed the ctx error seen.
	block    bool
	started  chan struct{}
	observed error
}

func newMockEventRepository(events ...models.Event) *mockEventRepository {
	m := &mockEventRepository{events: make(map[string]*models.Event)}
	for i := range events {
		e := events[i]
		if e.ID == "" {
			e.ID = generateMockID()
		}
		m.events[e.ID] = &e
	}
	return m
}

func (m *mockEventRepository) FindByUserOverlapping(ctx context.Context, userID string, start, end time.Time) ([]models.Event, error) {
	if m.block {
		m.mu.Lock()
		m.findCalls++
		m.mu.Unlock()
		if m.started != nil {
			select {
			case m.started <- struct{}{}:
			default:
			}
		}
		<-ctx.Done()
		m.mu.Lock()
		m.observed = ctx.Err()
		m.mu.Unlock()
		return nil, ctx.Err()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.findCalls++
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.err != nil {
		return nil, m.err
	}

	var out []models.Event
	for _, e := range m.events {
		if e.UserID != userID || e.Start.After(end) || e.End.Before(start) {
			continue
		}
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out, nil
}

func (m *mockEventRepository) GetByID(ctx context.Context, userID, id string) (*models.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.events[id]
	if !ok || e.UserID != userID {
		return nil, repository.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (m *mockEventRepository) Create(ctx context.Context, event *models.Event) (*models.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	event.ID = generateMockID()
	event.CreatedAt = time.Now()
	event.UpdatedAt = event.CreatedAt
	cp := *event
	m.events[event.ID] = &cp
	return event, nil
}

func (m *mockEventRepository) Update(ctx context.Context, event *models.Event) (*models.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.events[event.ID]; !ok || existing.UserID != event.UserID {
		return nil, repository.ErrNotFound
	}
	cp := *event
	m.events[event.ID] = &cp
	return event, nil
}

func (m *mockEventRepository) Delete(ctx context.Context, userID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.events[id]; !ok || e.UserID != userID {
		return repository.ErrNotFound
	}
	delete(m.events, id)
	return nil
}

// mockCategoryRepository is an in-memory CategoryRepository
type mockCategoryRepository struct {
	mu         sync.Mutex
	categories []models.Category
	findCalls  int
	err        error
}

func newMockCategoryRepository(categories ...models.Category) *mockCategoryRepository {
	return &mockCategoryRepository{categories: categories}
}

func (m *mockCategoryRepository) FindByUser(ctx context.Context, userID string) ([]models.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.findCalls++
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.err != nil {
		return nil, m.err
	}
	var out []models.Category
	for _, c := range m.categories {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *mockCategoryRepository) GetByID(ctx context.Context, userID, id string) (*models.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.categories {
		if c.ID == id && c.UserID == userID {
			cp := c
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *mockCategoryRepository) Create(ctx context.Context, category *models.Category) (*models.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	category.ID = generateMockID()
	m.categories = append(m.categories, *category)
	return category, nil
}

func (m *mockCategoryRepository) Update(ctx context.Context, category *models.Category) (*models.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, c := range m.categories {
		if c.ID == category.ID && c.UserID == category.UserID {
			m.categories[i] = *category
			return category, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *mockCategoryRepository) Delete(ctx context.Context, userID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, c := range m.categories {
		if c.ID == id && c.UserID == userID {
			m.categories = append(m.categories[:i], m.categories[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

// mockPreferencesRepository stores preferences per user id
type mockPreferencesRepository struct {
	mu       sync.Mutex
	prefs    map[string]models.Preferences
	getCalls int

	// stall parks the next Get after it has read its value until release
	// is closed. stalled is closed once that Get is parked.
	stall   bool
	stalled chan struct{}
	release chan struct{}
}

func newMockPreferencesRepository() *mockPreferencesRepository {
	return &mockPreferencesRepository{prefs: make(map[string]models.Preferences)}
}

func (m *mockPreferencesRepository) Get(ctx context.Context, userID string) (*models.Preferences, error) {
	m.mu.Lock()
	m.getCalls++
	p, ok := m.prefs[userID]
	stall := m.stall
	m.stall = false
	m.mu.Unlock()

	if stall {
		close(m.stalled)
		<-m.release
	}
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (m *mockPreferencesRepository) Update(ctx context.Context, userID string, prefs *models.Preferences) (*models.Preferences, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.prefs[userID]; !ok {
		return nil, repository.ErrNotFound
	}
	m.prefs[userID] = *prefs
	p := *prefs
	return &p, nil
}

// mockUserRepository is an in-memory UserRepository keyed by id
type mockUserRepository struct {
	mu    sync.Mutex
	users map[string]*models.User
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{users: make(map[string]*models.User)}
}

func (m *mockUserRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == user.Username {
			return nil, repository.ErrDuplicate
		}
	}
	user.ID = generateMockID()
	cp := *user
	m.users[user.ID] = &cp
	return user, nil
}

func (m *mockUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *mockUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

// mockReminderRepository is an in-memory ReminderRepository
type mockReminderRepository struct {
	mu        sync.Mutex
	reminders map[string]*models.Reminder
	marked    []string
}

func newMockReminderRepository(reminders ...models.Reminder) *mockReminderRepository {
	m := &mockReminderRepository{reminders: make(map[string]*models.Reminder)}
	for i := range reminders {
		r := reminders[i]
		m.reminders[r.ID] = &r
	}
	return m
}

func (m *mockReminderRepository) FindByUser(ctx context.Context, userID string) ([]models.Reminder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Reminder
	for _, r := range m.reminders {
		if r.UserID == userID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (m *mockReminderRepository) Create(ctx context.Context, reminder *models.Reminder) (*models.Reminder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	reminder.ID = generateMockID()
	cp := *reminder
	m.reminders[reminder.ID] = &cp
	return reminder, nil
}

func (m *mockReminderRepository) Delete(ctx context.Context, userID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.reminders[id]; !ok || r.UserID != userID {
		return repository.ErrNotFound
	}
	delete(m.reminders, id)
	return nil
}

func (m *mockReminderRepository) FindDue(ctx context.Context, now time.Time, limit int) ([]models.Reminder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Reminder
	for _, r := range m.reminders {
		if !r.Notified && !r.DueAt.After(now) {
			out = append(out, *r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DueAt.Before(out[j].DueAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *mockReminderRepository) MarkNotified(ctx context.Context, ids []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range ids {
		if r, ok := m.reminders[id]; ok {
			r.Notified = true
		}
	}
	m.marked = append(m.marked, ids...)
	return nil
}

// fixedTokens issues a constant token
type fixedTokens struct{}

func (fixedTokens) Issue(id auth.Identity) (string, time.Time, error) {
	return "token-" + id.UserID, time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC), nil
}

// testDefaults mirrors the stock analytics configuration
func testDefaults() Defaults {
	loc, err := time.LoadLocation("Asia/Ho_Chi_Minh")
	if err != nil {
		panic(err)
	}
	return Defaults{
		Timezone:       loc.String(),
		Location:       loc,
		WeekStart:      time.Sunday,
		DailyBudgetMin: 720,
		Weekly:         aggregation.DefaultWeeklyOptions(),
	}
}
