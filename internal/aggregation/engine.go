// Package aggregation turns a user's tasks and events into daily and weekly
// time-usage summaries. Everything here is a pure function of its inputs: no
// I/O, no clock, no shared state. Malformed records contribute nothing
// instead of failing the computation.
package aggregation

import (
	"math"
	"time"

	"github.com/todotofu/todotofu/backend/internal/models"
	"github.com/todotofu/todotofu/backend/internal/timeutil"
)

const (
	// UncategorizedID buckets tasks without a live category
	UncategorizedID = "uncategorized"
	// UncategorizedName is the display name of the UncategorizedID bucket
	UncategorizedName = "Uncategorized"

	// DaysPerWeek is the length of every weekly window
	DaysPerWeek = 7

	// DefaultStreakThresholdMin is the minimum spent minutes for a day to count towards a streak
	DefaultStreakThresholdMin = 60

	// DefaultFocusActiveRatio is the assumed share of tracked time that was
	// active work; the remainder is reported as rest. It is a policy constant,
	// not a measurement.
	DefaultFocusActiveRatio = 0.8
)

// WeeklyOptions tunes the weekly rollup
type WeeklyOptions struct {
	StreakThresholdMin int
	FocusActiveRatio   float64
}

// DefaultWeeklyOptions returns the stock thresholds
func DefaultWeeklyOptions() WeeklyOptions {
	return WeeklyOptions{
		StreakThresholdMin: DefaultStreakThresholdMin,
		FocusActiveRatio:   DefaultFocusActiveRatio,
	}
}

func (o WeeklyOptions) normalized() WeeklyOptions {
	if o.StreakThresholdMin <= 0 {
		o.StreakThresholdMin = DefaultStreakThresholdMin
	}
	if o.FocusActiveRatio <= 0 || o.FocusActiveRatio > 1 {
		o.FocusActiveRatio = DefaultFocusActiveRatio
	}
	return o
}

// Day is one calendar day of an aggregation run
type Day struct {
	Date  string    // YYYY-MM-DD in the run's location
	Start time.Time // 00:00:00.000 local, in UTC
	End   time.Time // 23:59:59.999 local, in UTC
}

// DayOf returns the Day containing t in loc
func DayOf(t time.Time, loc *time.Location) Day {
	start, end := timeutil.BoundsOf(t, loc)
	return Day{Date: timeutil.LocalDate(t, loc), Start: start, End: end}
}

// WeekDays returns the 7 consecutive days starting at weekStart
func WeekDays(weekStart time.Time, loc *time.Location) []Day {
	y, m, d := weekStart.In(loc).Date()
	days := make([]Day, 0, DaysPerWeek)
	for i := 0; i < DaysPerWeek; i++ {
		days = append(days, DayOf(time.Date(y, m, d+i, 0, 0, 0, 0, loc), loc))
	}
	return days
}

// ComputeDaySummary sums task and event minutes for day, labelled with its
// local date.
//
// Tasks count in full when they have start and end with end after start; the
// caller selects which tasks belong to the day (see TasksForDay). Events are
// clamped to the day and do not appear in the category breakdown.
func ComputeDaySummary(tasks []models.Task, events []models.Event, day Day, dailyBudgetMinutes int) models.DailySummary {
	summary := models.DailySummary{
		Date:       day.Date,
		ByCategory: []models.CategoryMinutes{},
	}

	var categories rollup
	for _, task := range tasks {
		summary.TasksTotal++
		if task.Done {
			summary.TasksCompleted++
		}

		if task.Start == nil || task.End == nil || !task.End.After(*task.Start) {
			continue
		}
		minutes := timeutil.MinutesBetween(*task.Start, *task.End)
		summary.TaskMinutes += minutes

		id, name := categoryKey(task.Category)
		categories.add(id, name, minutes)
	}

	for _, event := range events {
		if event.Start.IsZero() || event.End.IsZero() {
			continue
		}
		start, end, ok := timeutil.ClampToInterval(event.Start, event.End, day.Start, day.End)
		if !ok {
			continue
		}
		summary.EventMinutes += timeutil.MinutesBetween(start, end)
	}

	summary.SpentMinutes = summary.TaskMinutes + summary.EventMinutes
	summary.RemainingMinutes = dailyBudgetMinutes - summary.SpentMinutes
	summary.ByCategory = categories.rows()

	return summary
}

// ComputeWeeklySummary rolls daily summaries (in chronological order) up into a
// weekly summary. It does not mutate daily.
func ComputeWeeklySummary(daily []models.DailySummary, opts WeeklyOptions) models.WeeklySummary {
	opts = opts.normalized()

	week := models.WeeklySummary{
		Daily:              make([]models.DailySummary, len(daily)),
		ByCategory:         []models.CategoryMinutes{},
		StreakThresholdMin: opts.StreakThresholdMin,
	}
	copy(week.Daily, daily)

	if len(daily) > 0 {
		week.WeekStart = daily[0].Date
		week.WeekEnd = daily[len(daily)-1].Date
	}

	var categories rollup
	spent := make([]int, len(daily))
	for i, day := range daily {
		week.TotalMinutes += day.SpentMinutes
		spent[i] = day.SpentMinutes
		for _, c := range day.ByCategory {
			categories.add(c.CategoryID, c.Name, c.Minutes)
		}
	}
	week.ByCategory = categories.rows()

	week.Streak = LongestStreak(spent, opts.StreakThresholdMin)

	total := float64(week.TotalMinutes)
	week.FocusRatio = models.FocusRatio{
		ActiveMin: int(math.Round(total * opts.FocusActiveRatio)),
		RestMin:   int(math.Round(total * (1 - opts.FocusActiveRatio))),
	}
	week.TotalRestMinutes = week.FocusRatio.RestMin
	week.AverageProductiveHours = math.Round(total/60/DaysPerWeek*100) / 100

	return week
}

// LongestStreak returns the longest run of consecutive entries >= threshold.
func LongestStreak(minutes []int, threshold int) int {
	longest, current := 0, 0
	for _, m := range minutes {
		if m >= threshold {
			current++
			continue
		}
		longest = max(longest, current)
		current = 0
	}
	return max(longest, current)
}

// TasksForDay selects the tasks whose calendar day falls in [dayStart, dayEnd].
// A task's day is its Date, or its Start when Date is unset; tasks with
// neither are dropped.
func TasksForDay(tasks []models.Task, dayStart, dayEnd time.Time) []models.Task {
	var out []models.Task
	for _, task := range tasks {
		at := task.Date
		if at.IsZero() {
			if task.Start == nil {
				continue
			}
			at = *task.Start
		}
		if at.Before(dayStart) || at.After(dayEnd) {
			continue
		}
		out = append(out, task)
	}
	return out
}

// SummarizeDays computes one DailySummary per day, labelled with the day's
// local date.
func SummarizeDays(tasks []models.Task, events []models.Event, days []Day, dailyBudgetMinutes int) []models.DailySummary {
	out := make([]models.DailySummary, 0, len(days))
	for _, day := range days {
		out = append(out, ComputeDaySummary(TasksForDay(tasks, day.Start, day.End), events, day, dailyBudgetMinutes))
	}
	return out
}

func categoryKey(ref models.CategoryRef) (string, string) {
	if ref.Kind == models.CategoryResolved {
		return ref.ID, ref.Name
	}
	return UncategorizedID, UncategorizedName
}

// rollup sums minutes per category id, keeping first-seen order
type rollup struct {
	index map[string]int
	out   []models.CategoryMinutes
}

func (r *rollup) add(id, name string, minutes int) {
	if r.index == nil {
		r.index = make(map[string]int)
	}
	if i, ok := r.index[id]; ok {
		r.out[i].Minutes += minutes
		return
	}
	r.index[id] = len(r.out)
	r.out = append(r.out, models.CategoryMinutes{CategoryID: id, Name: name, Minutes: minutes})
}

func (r *rollup) rows() []models.CategoryMinutes {
	if r.out == nil {
		return []models.CategoryMinutes{}
	}
	return r.out
}
