package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"taskboard/internal/model"
)

// MemoryStore keeps tasks in process memory and simulates network latency.
// State is lost on restart.
type MemoryStore struct {
	mu      sync.RWMutex
	tasks   []model.Task
	latency Latency
	now     func() time.Time
}

// MemoryOption configures a MemoryStore.
type MemoryOption func(*MemoryStore)

// WithLatency sets the simulated delay per operation.
func WithLatency(l Latency) MemoryOption {
	return func(s *MemoryStore) { s.latency = l }
}

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) MemoryOption {
	return func(s *MemoryStore) { s.now = now }
}

// NewMemoryStore creates a store holding a copy of seed. No latency is applied unless
// WithLatency is given.
func NewMemoryStore(seed []model.Task, opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		tasks: make([]model.Task, 0, len(seed)),
		now:   time.Now,
	}
	for _, t := range seed {
		s.tasks = append(s.tasks, t.Clone())
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *MemoryStore) GetAll(ctx context.Context) ([]model.Task, error) {
	if err := sleep(ctx, s.latency.GetAll); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Task, len(s.tasks))
	for i, t := range s.tasks {
		out[i] = t.Clone()
	}
	return out, nil
}

func (s *MemoryStore) GetByID(ctx context.Context, id int) (model.Task, error) {
	if err := sleep(ctx, s.latency.GetByID); err != nil {
		return model.Task{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return model.Task{}, fmt.Errorf("get task %d: %w", id, ErrNotFound)
	}
	return s.tasks[idx].Clone(), nil
}

// Create assigns the next id and inserts the task at the front of the collection.
func (s *MemoryStore) Create(ctx context.Context, input model.NewTask) (model.Task, error) {
	if err := sleep(ctx, s.latency.Create); err != nil {
		return model.Task{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	task := input.Build(s.nextID(), s.now())
	s.tasks = append([]model.Task{task}, s.tasks...)
	return task.Clone(), nil
}

func (s *MemoryStore) Update(ctx context.Context, id int, patch model.TaskPatch) (model.Task, error) {
	if err := sleep(ctx, s.latency.Update); err != nil {
		return model.Task{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return model.Task{}, fmt.Errorf("update task %d: %w", id, ErrNotFound)
	}
	task := s.tasks[idx].Clone()
	model.ApplyPatch(&task, patch, s.now())
	s.tasks[idx] = task
	return task.Clone(), nil
}

func (s *MemoryStore) Delete(ctx context.Context, id int) error {
	if err := sleep(ctx, s.latency.Delete); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return fmt.Errorf("delete task %d: %w", id, ErrNotFound)
	}
	s.tasks = append(s.tasks[:idx], s.tasks[idx+1:]...)
	return nil
}

func (s *MemoryStore) indexOf(id int) int {
	for i, t := range s.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func (s *MemoryStore) nextID() int {
	maxID := 0
	for _, t := range s.tasks {
		if t.ID > maxID {
			maxID = t.ID
		}
	}
	return maxID + 1
}
