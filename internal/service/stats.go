package service

import (
	"math"

	"taskboard/internal/model"
)

// PriorityCounts counts tasks per known priority.
type PriorityCounts struct {
	High   int `json:"high"`
	Medium int `json:"medium"`
	Low    int `json:"low"`
}

func (c PriorityCounts) Sum() int { return c.High + c.Medium + c.Low }

// CategoryCounts counts tasks per known category.
type CategoryCounts struct {
	Work     int `json:"work"`
	Personal int `json:"personal"`
	Shopping int `json:"shopping"`
	Health   int `json:"health"`
}

func (c CategoryCounts) Sum() int { return c.Work + c.Personal + c.Shopping + c.Health }

// Of returns the count for a category, 0 for unknown ones.
func (c CategoryCounts) Of(category model.Category) int {
	switch category {
	case model.CategoryWork:
		return c.Work
	case model.CategoryPersonal:
		return c.Personal
	case model.CategoryShopping:
		return c.Shopping
	case model.CategoryHealth:
		return c.Health
	}
	return 0
}

func (c *CategoryCounts) add(category model.Category) {
	switch category {
	case model.CategoryWork:
		c.Work++
	case model.CategoryPersonal:
		c.Personal++
	case model.CategoryShopping:
		c.Shopping++
	case model.CategoryHealth:
		c.Health++
	}
}

// Stats summarises a task collection. Tasks with an unknown priority or category count
// toward Total but not toward the breakdowns.
type Stats struct {
	Total          int            `json:"total"`
	Completed      int            `json:"completed"`
	Pending        int            `json:"pending"`
	CompletionRate int            `json:"completionRate"`
	ByPriority     PriorityCounts `json:"byPriority"`
	ByCategory     CategoryCounts `json:"byCategory"`
}

func ComputeStats(tasks []model.Task) Stats {
	var s Stats
	s.Total = len(tasks)
	for _, t := range tasks {
		if t.Completed {
			s.Completed++
		}
		switch t.Priority {
		case model.PriorityHigh:
			s.ByPriority.High++
		case model.PriorityMedium:
			s.ByPriority.Medium++
		case model.PriorityLow:
			s.ByPriority.Low++
		}
		s.ByCategory.add(t.Category)
	}
	s.Pending = s.Total - s.Completed
	s.CompletionRate = percent(s.Completed, s.Total)
	return s
}

// Progress is the completion ratio shown on the main list header.
type Progress struct {
	Total      int `json:"total"`
	Completed  int `json:"completed"`
	Percentage int `json:"percentage"`
}

// Completion measures progress over tasks that are not archived.
func Completion(tasks []model.Task) Progress {
	var p Progress
	for _, t := range tasks {
		if t.Archived {
			continue
		}
		p.Total++
		if t.Completed {
			p.Completed++
		}
	}
	p.Percentage = percent(p.Completed, p.Total)
	return p
}

// PendingByCategory counts open, non-archived tasks per category for the filter chips.
func PendingByCategory(tasks []model.Task) CategoryCounts {
	var c CategoryCounts
	for _, t := range tasks {
		if !t.Archived && !t.Completed {
			c.add(t.Category)
		}
	}
	return c
}

func percent(part, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(total) * 100))
}
