package model

import (
	"strings"
	"time"
)

// DateLayout is the calendar-date format used for due dates.
const DateLayout = "2006-01-02"

// Task represents a single to-do item.
type Task struct {
	ID          int        `json:"id" gorm:"primaryKey;autoIncrement:false"`
	Title       string     `json:"title" gorm:"not null"`
	Description string     `json:"description"`
	Category    Category   `json:"category" gorm:"index"`
	Priority    Priority   `json:"priority" gorm:"index"`
	DueDate     string     `json:"dueDate"`
	Completed   bool       `json:"completed"`
	Archived    bool       `json:"archived" gorm:"index"`
	CreatedAt   time.Time  `json:"createdAt"`
	CompletedAt *time.Time `json:"completedAt"`
}

// Clone returns a copy that shares no memory with t.
func (t Task) Clone() Task {
	if t.CompletedAt != nil {
		completedAt := *t.CompletedAt
		t.CompletedAt = &completedAt
	}
	return t
}

// Due parses the due date in loc. Date-only values resolve to midnight in loc.
func (t Task) Due(loc *time.Location) (time.Time, bool) {
	return ParseDueDate(t.DueDate, loc)
}

// ParseDueDate accepts a calendar date or an RFC 3339 timestamp. Empty or malformed input
// reports false.
func ParseDueDate(raw string, loc *time.Location) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.Local
	}
	if d, err := time.ParseInLocation(DateLayout, raw, loc); err == nil {
		return d, true
	}
	if d, err := time.Parse(time.RFC3339, raw); err == nil {
		return d.In(loc), true
	}
	return time.Time{}, false
}

// NewTask holds the fields a caller may supply when creating a task.
type NewTask struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Category    Category `json:"category"`
	Priority    Priority `json:"priority"`
	DueDate     string   `json:"dueDate"`
}

// Build fills defaults for missing optional fields.
func (n NewTask) Build(id int, createdAt time.Time) Task {
	task := Task{
		ID:          id,
		Title:       n.Title,
		Description: n.Description,
		Category:    n.Category,
		Priority:    n.Priority,
		DueDate:     n.DueDate,
		CreatedAt:   createdAt,
	}
	if task.Category == "" {
		task.Category = CategoryPersonal
	}
	if task.Priority == "" {
		task.Priority = PriorityMedium
	}
	return task
}

// TaskPatch lists the mutable fields of a task. Nil fields are left untouched.
// ID, CreatedAt and CompletedAt cannot be patched.
type TaskPatch struct {
	Title       *string   `json:"title,omitempty"`
	Description *string   `json:"description,omitempty"`
	Category    *Category `json:"category,omitempty"`
	Priority    *Priority `json:"priority,omitempty"`
	DueDate     *string   `json:"dueDate,omitempty"`
	Completed   *bool     `json:"completed,omitempty"`
	Archived    *bool     `json:"archived,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p TaskPatch) Empty() bool {
	return p == TaskPatch{}
}

// ApplyPatch merges p into task. CompletedAt follows the completed flag: it is set to now when
// a task becomes completed and cleared when it is reopened.
func ApplyPatch(task *Task, p TaskPatch, now time.Time) {
	if p.Title != nil {
		task.Title = *p.Title
	}
	if p.Description != nil {
		task.Description = *p.Description
	}
	if p.Category != nil {
		task.Category = *p.Category
	}
	if p.Priority != nil {
		task.Priority = *p.Priority
	}
	if p.DueDate != nil {
		task.DueDate = *p.DueDate
	}
	if p.Archived != nil {
		task.Archived = *p.Archived
	}
	if p.Completed != nil && *p.Completed != task.Completed {
		task.Completed = *p.Completed
		if task.Completed {
			completedAt := now
			task.CompletedAt = &completedAt
		} else {
			task.CompletedAt = nil
		}
	}
}
