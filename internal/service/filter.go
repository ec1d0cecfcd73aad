package service

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"taskboard/internal/model"
)

// FilterAll disables the category or priority filter.
const FilterAll = "all"

// Status selects tasks by completion.
type Status string

const (
	StatusAll       Status = "all"
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
)

// ParseStatus accepts "", "all", "pending" and "completed". Empty means all.
func ParseStatus(raw string) (Status, error) {
	switch s := Status(strings.ToLower(strings.TrimSpace(raw))); s {
	case "":
		return StatusAll, nil
	case StatusAll, StatusPending, StatusCompleted:
		return s, nil
	default:
		return "", fmt.Errorf("%w: unknown status %q", ErrValidation, raw)
	}
}

// SortOrder names one of the supported task orderings.
type SortOrder string

const (
	SortPriority     SortOrder = "priority"
	SortDueDate      SortOrder = "dueDate"
	SortCreated      SortOrder = "created"
	SortAlphabetical SortOrder = "alphabetical"
	// SortCompleted puts the most recently completed first; used by the archive.
	SortCompleted SortOrder = "completed"
)

// ParseSortOrder resolves a sort name; empty means priority.
func ParseSortOrder(raw string) (SortOrder, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "priority":
		return SortPriority, nil
	case "duedate", "due":
		return SortDueDate, nil
	case "created":
		return SortCreated, nil
	case "alphabetical", "title":
		return SortAlphabetical, nil
	case "completed":
		return SortCompleted, nil
	default:
		return "", fmt.Errorf("%w: unknown sort order %q", ErrValidation, raw)
	}
}

// Scope decides which part of the collection a view starts from.
type Scope int

const (
	ScopeAll Scope = iota
	// ScopeActive is the main list: everything not archived.
	ScopeActive
	// ScopeArchive holds archived tasks and completed ones, so a completed task that is not
	// archived shows up in both views.
	ScopeArchive
)

func (s Scope) Includes(t model.Task) bool {
	switch s {
	case ScopeActive:
		return !t.Archived
	case ScopeArchive:
		return t.Archived || t.Completed
	default:
		return true
	}
}

// Filter is the user's current selection on a task list. Zero values match everything.
type Filter struct {
	Search   string
	Category string
	Priority string
	Status   Status
	Sort     SortOrder
}

// Match reports whether t passes every filter.
func (f Filter) Match(t model.Task) bool {
	if f.Search != "" {
		term := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(t.Title), term) &&
			!strings.Contains(strings.ToLower(t.Description), term) {
			return false
		}
	}
	if f.Category != "" && f.Category != FilterAll && string(t.Category) != f.Category {
		return false
	}
	if f.Priority != "" && f.Priority != FilterAll && string(t.Priority) != f.Priority {
		return false
	}
	switch f.Status {
	case StatusPending:
		return !t.Completed
	case StatusCompleted:
		return t.Completed
	}
	return true
}

// FilterTasks returns the tasks matching f in their original order.
func FilterTasks(tasks []model.Task, f Filter) []model.Task {
	out := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if f.Match(t) {
			out = append(out, t)
		}
	}
	return out
}

// SortTasks returns a sorted copy. Equal keys keep their input order. An unknown order
// returns the tasks unchanged.
func SortTasks(tasks []model.Task, order SortOrder) []model.Task {
	sorted := make([]model.Task, len(tasks))
	copy(sorted, tasks)

	var less func(a, b model.Task) bool
	switch order {
	case SortPriority:
		less = func(a, b model.Task) bool {
			wa, wb := a.Priority.Weight(), b.Priority.Weight()
			if wa != wb {
				return wa > wb
			}
			return a.CreatedAt.After(b.CreatedAt)
		}
	case SortDueDate:
		less = func(a, b model.Task) bool {
			da, okA := a.Due(time.UTC)
			db, okB := b.Due(time.UTC)
			switch {
			case okA && okB:
				return da.Before(db)
			default:
				return okA && !okB
			}
		}
	case SortCreated:
		less = func(a, b model.Task) bool {
			return a.CreatedAt.After(b.CreatedAt)
		}
	case SortAlphabetical:
		// Collators keep internal buffers and are not safe to share.
		c := collate.New(language.English)
		less = func(a, b model.Task) bool {
			return c.CompareString(a.Title, b.Title) < 0
		}
	case SortCompleted:
		less = func(a, b model.Task) bool {
			return finishedAt(a).After(finishedAt(b))
		}
	default:
		return sorted
	}

	sort.SliceStable(sorted, func(i, j int) bool {
		return less(sorted[i], sorted[j])
	})
	return sorted
}

// DeriveView applies scope, filters and ordering in one pass over the full collection.
func DeriveView(tasks []model.Task, scope Scope, f Filter) []model.Task {
	scoped := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if scope.Includes(t) && f.Match(t) {
			scoped = append(scoped, t)
		}
	}
	order := f.Sort
	if order == "" {
		order = SortPriority
	}
	return SortTasks(scoped, order)
}

func finishedAt(t model.Task) time.Time {
	if t.CompletedAt != nil {
		return *t.CompletedAt
	}
	return t.CreatedAt
}
