package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dgraph-io/ristretto"

	"github.com/todotofu/todotofu/backend/internal/aggregation"
	"github.com/todotofu/todotofu/backend/internal/config"
	"github.com/todotofu/todotofu/backend/internal/logger"
	"github.com/todotofu/todotofu/backend/internal/models"
	"github.com/todotofu/todotofu/backend/internal/repository"
	"github.com/todotofu/todotofu/backend/internal/timeutil"
)

var themes = map[string]bool{"light": true, "dark": true, "system": true}

// Defaults are the service-wide calendar settings. A user's preferences
// override the timezone, week start and budget.
type Defaults struct {
	Timezone       string
	Location       *time.Location
	WeekStart      time.Weekday
	DailyBudgetMin int
	Weekly         aggregation.WeeklyOptions
}

// NewDefaults validates the analytics configuration
func NewDefaults(cfg config.AnalyticsConfig) (Defaults, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return Defaults{}, fmt.Errorf("invalid analytics timezone %q: %w", cfg.Timezone, err)
	}
	weekStart, err := timeutil.ParseWeekStart(cfg.WeekStart)
	if err != nil {
		return Defaults{}, err
	}
	if cfg.DailyBudgetMin < 0 {
		return Defaults{}, fmt.Errorf("analytics daily budget must not be negative")
	}

	return Defaults{
		Timezone:       loc.String(),
		Location:       loc,
		WeekStart:      weekStart,
		DailyBudgetMin: cfg.DailyBudgetMin,
		Weekly: aggregation.WeeklyOptions{
			StreakThresholdMin: cfg.StreakThresholdMin,
			FocusActiveRatio:   cfg.FocusActiveRatio,
		},
	}, nil
}

// Preferences returns the preferences a new account starts with
func (d Defaults) Preferences() models.Preferences {
	return models.Preferences{
		Timezone:       d.Timezone,
		DailyBudgetMin: d.DailyBudgetMin,
		WeekStart:      timeutil.WeekStartName(d.WeekStart),
		Theme:          "system",
	}
}

// fill replaces unset preference fields with the defaults
func (d Defaults) fill(p models.Preferences) models.Preferences {
	if p.Timezone == "" {
		p.Timezone = d.Timezone
	}
	if p.WeekStart == "" {
		p.WeekStart = timeutil.WeekStartName(d.WeekStart)
	}
	if p.Theme == "" {
		p.Theme = "system"
	}
	return p
}

// Settings are the effective calendar settings of one user
type Settings struct {
	Location       *time.Location
	WeekStart      time.Weekday
	DailyBudgetMin int
}

func (d Defaults) settings(p models.Preferences) Settings {
	s := Settings{
		Location:       timeutil.LoadLocation(p.Timezone, d.Location),
		WeekStart:      d.WeekStart,
		DailyBudgetMin: p.DailyBudgetMin,
	}
	if ws, err := timeutil.ParseWeekStart(p.WeekStart); err == nil {
		s.WeekStart = ws
	}
	if s.DailyBudgetMin < 0 {
		s.DailyBudgetMin = d.DailyBudgetMin
	}
	return s
}

// NewPreferencesCache builds the in-process cache in front of the preferences repository
func NewPreferencesCache(maxCost int64) (*ristretto.Cache, error) {
	if maxCost <= 0 {
		maxCost = 10000
	}
	return ristretto.NewCache(&ristretto.Config{
		NumCounters: maxCost * 10,
		MaxCost:     maxCost,
		BufferItems: 64,
	})
}

type preferencesService struct {
	repo     repository.PreferencesRepository
	cache    *ristretto.Cache
	ttl      time.Duration
	defaults Defaults

	// generation counts committed updates per user. A read only caches
	// what it fetched if no update landed while it was in flight.
	mu         sync.Mutex
	generation map[string]uint64
}

// NewPreferencesService creates a new preferences service. cache may be nil.
func NewPreferencesService(repo repository.PreferencesRepository, cache *ristretto.Cache, ttl time.Duration, defaults Defaults) PreferencesService {
	return &preferencesService{
		repo:       repo,
		cache:      cache,
		ttl:        ttl,
		defaults:   defaults,
		generation: make(map[string]uint64),
	}
}

func cacheKey(userID string) string {
	return "prefs:" + userID
}

func (s *preferencesService) GetPreferences(ctx context.Context, userID string) (*models.Preferences, error) {
	if s.cache != nil {
		if v, ok := s.cache.Get(cacheKey(userID)); ok {
			if p, ok := v.(models.Preferences); ok {
				return &p, nil
			}
		}
	}

	gen := s.currentGeneration(userID)
	stored, err := s.repo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &NotFoundError{Resource: "user", ID: userID}
		}
		return nil, fmt.Errorf("failed to get preferences: %w", err)
	}

	prefs := s.defaults.fill(*stored)
	s.rememberIfCurrent(userID, prefs, gen)
	return &prefs, nil
}

func (s *preferencesService) UpdatePreferences(ctx context.Context, userID string, req *models.UpdatePreferencesRequest) (*models.Preferences, error) {
	current, err := s.GetPreferences(ctx, userID)
	if err != nil {
		return nil, err
	}
	next := *current

	verr := &ValidationError{}
	if req.Timezone != nil {
		name := strings.TrimSpace(*req.Timezone)
		if loc, err := time.LoadLocation(name); err != nil || name == "" {
			verr.add("timezone", CodeInvalid, "must be an IANA timezone name")
		} else {
			next.Timezone = loc.String()
		}
	}
	if req.DailyBudgetMin != nil {
		if *req.DailyBudgetMin < 0 || *req.DailyBudgetMin > 24*60 {
			verr.add("daily_budget_min", CodeOutOfRange, "must be between 0 and 1440")
		} else {
			next.DailyBudgetMin = *req.DailyBudgetMin
		}
	}
	if req.WeekStart != nil {
		if ws, err := timeutil.ParseWeekStart(*req.WeekStart); err != nil {
			verr.add("week_start", CodeInvalid, "must be sunday or monday")
		} else {
			next.WeekStart = timeutil.WeekStartName(ws)
		}
	}
	if req.Theme != nil {
		theme := strings.ToLower(strings.TrimSpace(*req.Theme))
		if !themes[theme] {
			verr.add("theme", CodeInvalid, "must be light, dark or system")
		} else {
			next.Theme = theme
		}
	}
	if err := verr.orNil(); err != nil {
		return nil, err
	}

	updated, err := s.repo.Update(ctx, userID, &next)
	if err != nil {
		return nil, lookupError(err, "user", userID)
	}

	prefs := s.defaults.fill(*updated)
	s.replace(userID, prefs)
	logger.Ctx(ctx).Debug("preferences updated",
		logger.String("timezone", prefs.Timezone),
		logger.String("week_start", prefs.WeekStart),
		logger.Int("daily_budget_min", prefs.DailyBudgetMin),
	)
	return &prefs, nil
}

func (s *preferencesService) Settings(ctx context.Context, userID string) (Settings, error) {
	prefs, err := s.GetPreferences(ctx, userID)
	if err != nil {
		return Settings{}, err
	}
	return s.defaults.settings(*prefs), nil
}

func (s *preferencesService) currentGeneration(userID string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation[userID]
}

// rememberIfCurrent caches prefs read at generation gen, unless an update
// committed since.
func (s *preferencesService) rememberIfCurrent(userID string, prefs models.Preferences, gen uint64) {
	if s.cache == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation[userID] != gen {
		return
	}
	s.cache.SetWithTTL(cacheKey(userID), prefs, 1, s.ttl)
}

// replace swaps in the committed prefs and waits for the cache to apply
// the write, so the next read on any goroutine sees it.
func (s *preferencesService) replace(userID string, prefs models.Preferences) {
	if s.cache == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation[userID]++
	s.cache.Del(cacheKey(userID))
	s.cache.SetWithTTL(cacheKey(userID), prefs, 1, s.ttl)
	s.cache.Wait()
}
