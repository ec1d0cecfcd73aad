package service

import (
	"context"

	"taskboard/internal/model"
	"taskboard/internal/repository"
)

// CategorySummary describes one category for menus and filter chips.
type CategorySummary struct {
	Category model.Category `json:"category"`
	Pending  int            `json:"pending"`
	Total    int            `json:"total"`
}

// CategoryService provides helpers around categories.
type CategoryService struct {
	store repository.TaskStore
}

func NewCategoryService(store repository.TaskStore) *CategoryService {
	return &CategoryService{store: store}
}

// List returns every known category with task counts over non-archived tasks.
func (s *CategoryService) List(ctx context.Context) ([]CategorySummary, error) {
	tasks, err := s.store.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	pending := PendingByCategory(tasks)
	var total CategoryCounts
	for _, t := range tasks {
		if !t.Archived {
			total.add(t.Category)
		}
	}

	out := make([]CategorySummary, 0, len(model.Categories))
	for _, c := range model.Categories {
		out = append(out, CategorySummary{Category: c, Pending: pending.Of(c), Total: total.Of(c)})
	}
	return out, nil
}
