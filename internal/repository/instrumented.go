package repository

import (
	"context"
	"errors"
	"time"

	"taskboard/internal/metrics"
	"taskboard/internal/model"
)

// Instrumented records Prometheus metrics around another TaskStore.
type Instrumented struct {
	next TaskStore
}

func NewInstrumented(next TaskStore) *Instrumented {
	return &Instrumented{next: next}
}

func (s *Instrumented) GetAll(ctx context.Context) ([]model.Task, error) {
	defer observe("get_all", time.Now())
	tasks, err := s.next.GetAll(ctx)
	count("get_all", err)
	return tasks, err
}

func (s *Instrumented) GetByID(ctx context.Context, id int) (model.Task, error) {
	defer observe("get_by_id", time.Now())
	task, err := s.next.GetByID(ctx, id)
	count("get_by_id", err)
	return task, err
}

func (s *Instrumented) Create(ctx context.Context, input model.NewTask) (model.Task, error) {
	defer observe("create", time.Now())
	task, err := s.next.Create(ctx, input)
	count("create", err)
	return task, err
}

func (s *Instrumented) Update(ctx context.Context, id int, patch model.TaskPatch) (model.Task, error) {
	defer observe("update", time.Now())
	task, err := s.next.Update(ctx, id, patch)
	count("update", err)
	return task, err
}

func (s *Instrumented) Delete(ctx context.Context, id int) error {
	defer observe("delete", time.Now())
	err := s.next.Delete(ctx, id)
	count("delete", err)
	return err
}

func observe(op string, start time.Time) {
	metrics.StoreLatency.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

func count(op string, err error) {
	metrics.StoreOperations.WithLabelValues(op, resultLabel(err)).Inc()
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "error"
	}
}
