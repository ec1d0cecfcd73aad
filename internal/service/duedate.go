package service

import (
	"sort"
	"time"

	"taskboard/internal/model"
)

// DueClass buckets a due date relative to now.
type DueClass string

const (
	DueNone     DueClass = "none"
	DueToday    DueClass = "today"
	DueTomorrow DueClass = "tomorrow"
	DueOverdue  DueClass = "overdue"
	DueThisWeek DueClass = "thisWeek"
	DueLater    DueClass = "later"
)

// Urgent reports whether the class should be highlighted.
func (c DueClass) Urgent() bool {
	return c == DueToday || c == DueTomorrow || c == DueOverdue
}

// ClassifyDue parses dueDate in now's location and classifies it. Missing or malformed
// dates are DueNone.
func ClassifyDue(dueDate string, now time.Time) DueClass {
	due, ok := model.ParseDueDate(dueDate, now.Location())
	if !ok {
		return DueNone
	}
	return ClassifyTime(due, now)
}

// ClassifyTime checks today and tomorrow before overdue, so a task due earlier today is
// never reported as overdue.
func ClassifyTime(due, now time.Time) DueClass {
	today := startOfDay(now)
	day := startOfDay(due.In(now.Location()))

	switch {
	case day.Equal(today):
		return DueToday
	case day.Equal(today.AddDate(0, 0, 1)):
		return DueTomorrow
	case due.Before(now):
		return DueOverdue
	case inSameWeek(day, today):
		return DueThisWeek
	default:
		return DueLater
	}
}

// DueInfo is the display hint for a due date.
type DueInfo struct {
	Class  DueClass `json:"class"`
	Text   string   `json:"text"`
	Urgent bool     `json:"urgent"`
}

// DescribeDue returns the label shown next to a task. ok is false when there is no date.
func DescribeDue(dueDate string, now time.Time) (DueInfo, bool) {
	due, ok := model.ParseDueDate(dueDate, now.Location())
	if !ok {
		return DueInfo{Class: DueNone}, false
	}
	class := ClassifyTime(due, now)
	info := DueInfo{Class: class, Urgent: class.Urgent()}
	switch class {
	case DueToday:
		info.Text = "Today"
	case DueTomorrow:
		info.Text = "Tomorrow"
	case DueOverdue:
		info.Text = "Overdue"
	case DueThisWeek:
		info.Text = due.Weekday().String()
	default:
		info.Text = due.Format("Jan 2")
	}
	return info, true
}

// TasksDueToday lists open tasks due today.
func TasksDueToday(tasks []model.Task, now time.Time) []model.Task {
	return selectOpen(tasks, func(t model.Task) bool {
		return ClassifyDue(t.DueDate, now) == DueToday
	})
}

// OverdueTasks lists open tasks whose due day has passed.
func OverdueTasks(tasks []model.Task, now time.Time) []model.Task {
	return selectOpen(tasks, func(t model.Task) bool {
		return ClassifyDue(t.DueDate, now) == DueOverdue
	})
}

// UpcomingTasks lists open tasks due after now and no later than days from now.
func UpcomingTasks(tasks []model.Task, now time.Time, days int) []model.Task {
	if days <= 0 {
		days = 7
	}
	horizon := now.AddDate(0, 0, days)
	return selectOpen(tasks, func(t model.Task) bool {
		due, ok := t.Due(now.Location())
		return ok && due.After(now) && !due.After(horizon)
	})
}

// SortByDueDate orders dated tasks first, earliest due first; undated tasks follow, newest
// first.
func SortByDueDate(tasks []model.Task) []model.Task {
	sorted := make([]model.Task, len(tasks))
	copy(sorted, tasks)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		da, okA := a.Due(time.UTC)
		db, okB := b.Due(time.UTC)
		switch {
		case okA && okB:
			return da.Before(db)
		case okA != okB:
			return okA
		default:
			return a.CreatedAt.After(b.CreatedAt)
		}
	})
	return sorted
}

func selectOpen(tasks []model.Task, keep func(model.Task) bool) []model.Task {
	var out []model.Task
	for _, t := range tasks {
		if !t.Completed && keep(t) {
			out = append(out, t)
		}
	}
	return out
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// inSameWeek treats Monday as the first day of the week.
func inSameWeek(day, today time.Time) bool {
	offset := (int(today.Weekday()) + 6) % 7
	start := today.AddDate(0, 0, -offset)
	end := start.AddDate(0, 0, 7)
	return !day.Before(start) && day.Before(end)
}
