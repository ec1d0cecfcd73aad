package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"taskboard/internal/model"
	"taskboard/internal/repository"
)

// maxParallelDeletes bounds the fan-out of ClearCompleted.
const maxParallelDeletes = 8

// TaskService wraps task-related business logic on top of a TaskStore.
type TaskService struct {
	store repository.TaskStore
	now   func() time.Time

	// toggleMu serialises the read and the write of ToggleComplete.
	toggleMu sync.Mutex
}

// TaskServiceOption configures a TaskService.
type TaskServiceOption func(*TaskService)

// WithNow replaces time.Now for due-date queries.
func WithNow(now func() time.Time) TaskServiceOption {
	return func(s *TaskService) { s.now = now }
}

func NewTaskService(store repository.TaskStore, opts ...TaskServiceOption) *TaskService {
	s := &TaskService{store: store, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Now returns the service clock.
func (s *TaskService) Now() time.Time {
	return s.now()
}

func (s *TaskService) List(ctx context.Context) ([]model.Task, error) {
	return s.store.GetAll(ctx)
}

func (s *TaskService) Get(ctx context.Context, id int) (model.Task, error) {
	return s.store.GetByID(ctx, id)
}

// CreateTask validates input and stores a new task.
func (s *TaskService) CreateTask(ctx context.Context, input model.NewTask) (model.Task, error) {
	input.Title = strings.TrimSpace(input.Title)
	if input.Title == "" {
		return model.Task{}, fmt.Errorf("%w: title is required", ErrValidation)
	}
	if err := validateFields(input.Category, input.Priority, input.DueDate); err != nil {
		return model.Task{}, err
	}
	return s.store.Create(ctx, input)
}

// EditTask applies a patch after the same checks as CreateTask.
func (s *TaskService) EditTask(ctx context.Context, id int, patch model.TaskPatch) (model.Task, error) {
	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return model.Task{}, fmt.Errorf("%w: title is required", ErrValidation)
		}
		patch.Title = &title
	}
	if patch.Category != nil && !patch.Category.Valid() {
		return model.Task{}, fmt.Errorf("%w: unknown category %q", ErrValidation, *patch.Category)
	}
	if patch.Priority != nil && !patch.Priority.Valid() {
		return model.Task{}, fmt.Errorf("%w: unknown priority %q", ErrValidation, *patch.Priority)
	}
	if patch.DueDate != nil {
		if err := validateFields("", "", *patch.DueDate); err != nil {
			return model.Task{}, err
		}
	}
	return s.store.Update(ctx, id, patch)
}

// ToggleComplete flips the completed flag; the store keeps CompletedAt in step.
func (s *TaskService) ToggleComplete(ctx context.Context, id int) (model.Task, error) {
	s.toggleMu.Lock()
	defer s.toggleMu.Unlock()

	task, err := s.store.GetByID(ctx, id)
	if err != nil {
		return model.Task{}, err
	}
	completed := !task.Completed
	return s.store.Update(ctx, id, model.TaskPatch{Completed: &completed})
}

// Archive hides a task from the main list.
func (s *TaskService) Archive(ctx context.Context, id int) (model.Task, error) {
	archived := true
	return s.store.Update(ctx, id, model.TaskPatch{Archived: &archived})
}

// Restore brings a task back from the archive as an open task.
func (s *TaskService) Restore(ctx context.Context, id int) (model.Task, error) {
	no := false
	return s.store.Update(ctx, id, model.TaskPatch{Archived: &no, Completed: &no})
}

// DeleteTask removes a task permanently.
func (s *TaskService) DeleteTask(ctx context.Context, id int) error {
	return s.store.Delete(ctx, id)
}

// ActiveView returns the main list: non-archived tasks matching f.
func (s *TaskService) ActiveView(ctx context.Context, f Filter) ([]model.Task, error) {
	tasks, err := s.store.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	return DeriveView(tasks, ScopeActive, f), nil
}

// ArchiveView returns archived or completed tasks matching search, most recently finished
// first.
func (s *TaskService) ArchiveView(ctx context.Context, search string) ([]model.Task, error) {
	tasks, err := s.store.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	return DeriveView(tasks, ScopeArchive, Filter{Search: search, Sort: SortCompleted}), nil
}

// Dashboard bundles the numbers shown around the task list.
type Dashboard struct {
	Stats    Stats          `json:"stats"`
	Progress Progress       `json:"progress"`
	Pending  CategoryCounts `json:"pendingByCategory"`
}

func (s *TaskService) Dashboard(ctx context.Context) (Dashboard, error) {
	tasks, err := s.store.GetAll(ctx)
	if err != nil {
		return Dashboard{}, err
	}
	return Dashboard{
		Stats:    ComputeStats(tasks),
		Progress: Completion(tasks),
		Pending:  PendingByCategory(tasks),
	}, nil
}

// DueReport groups open tasks by urgency.
type DueReport struct {
	Overdue  []model.Task `json:"overdue"`
	Today    []model.Task `json:"today"`
	Upcoming []model.Task `json:"upcoming"`
}

// Empty reports whether nothing needs attention.
func (r DueReport) Empty() bool {
	return len(r.Overdue) == 0 && len(r.Today) == 0 && len(r.Upcoming) == 0
}

// DueSoon collects overdue, today's and upcoming tasks among non-archived ones.
func (s *TaskService) DueSoon(ctx context.Context, days int) (DueReport, error) {
	tasks, err := s.store.GetAll(ctx)
	if err != nil {
		return DueReport{}, err
	}
	active := DeriveView(tasks, ScopeActive, Filter{Status: StatusPending})
	now := s.now()
	return DueReport{
		Overdue:  SortByDueDate(OverdueTasks(active, now)),
		Today:    SortTasks(TasksDueToday(active, now), SortPriority),
		Upcoming: SortByDueDate(UpcomingTasks(active, now, days)),
	}, nil
}

// ClearCompleted permanently deletes every completed task that is not archived. Deletes run
// concurrently and are not rolled back when one of them fails.
func (s *TaskService) ClearCompleted(ctx context.Context) (int, error) {
	tasks, err := s.store.GetAll(ctx)
	if err != nil {
		return 0, err
	}

	var targets []int
	for _, t := range tasks {
		if t.Completed && !t.Archived {
			targets = append(targets, t.ID)
		}
	}
	if len(targets) == 0 {
		return 0, nil
	}

	var (
		mu     sync.Mutex
		failed []int
		errs   []error
		g      errgroup.Group
	)
	g.SetLimit(maxParallelDeletes)
	for _, id := range targets {
		id := id
		g.Go(func() error {
			if err := s.store.Delete(ctx, id); err != nil {
				mu.Lock()
				failed = append(failed, id)
				errs = append(errs, err)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	deleted := len(targets) - len(failed)
	if len(failed) > 0 {
		sort.Ints(failed)
		return deleted, &BatchError{Op: "clear completed", Total: len(targets), Failed: failed, Errs: errs}
	}
	return deleted, nil
}

func validateFields(category model.Category, priority model.Priority, dueDate string) error {
	if category != "" && !category.Valid() {
		return fmt.Errorf("%w: unknown category %q", ErrValidation, category)
	}
	if priority != "" && !priority.Valid() {
		return fmt.Errorf("%w: unknown priority %q", ErrValidation, priority)
	}
	if strings.TrimSpace(dueDate) != "" {
		if _, ok := model.ParseDueDate(dueDate, time.UTC); !ok {
			return fmt.Errorf("%w: due date %q is not YYYY-MM-DD", ErrValidation, dueDate)
		}
	}
	return nil
}
