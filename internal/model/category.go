package model

import "strings"

// Category groups tasks by area of life.
type Category string

const (
	CategoryWork     Category = "work"
	CategoryPersonal Category = "personal"
	CategoryShopping Category = "shopping"
	CategoryHealth   Category = "health"
)

// Categories lists the known categories in display order.
var Categories = []Category{CategoryWork, CategoryPersonal, CategoryShopping, CategoryHealth}

func (c Category) Valid() bool {
	switch c {
	case CategoryWork, CategoryPersonal, CategoryShopping, CategoryHealth:
		return true
	}
	return false
}

// Display returns the category used for rendering; unknown values fall back to personal.
func (c Category) Display() Category {
	if known := Category(strings.ToLower(string(c))); known.Valid() {
		return known
	}
	return CategoryPersonal
}

// Priority is the urgency level of a task.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Priorities lists the known priorities from most to least urgent.
var Priorities = []Priority{PriorityHigh, PriorityMedium, PriorityLow}

func (p Priority) Valid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// Display returns the priority used for rendering; unknown values fall back to low.
func (p Priority) Display() Priority {
	if known := Priority(strings.ToLower(string(p))); known.Valid() {
		return known
	}
	return PriorityLow
}

// Weight orders priorities for sorting. Unknown priorities weigh the same as low.
func (p Priority) Weight() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	default:
		return 1
	}
}
