package repository

import (
	"context"
	"errors"
	"time"

	"taskboard/internal/model"
)

// ErrNotFound is returned when no task has the requested id.
var ErrNotFound = errors.New("task not found")

// TaskStore is the contract every task backend satisfies. Returned tasks are copies; callers
// may modify them freely.
type TaskStore interface {
	GetAll(ctx context.Context) ([]model.Task, error)
	GetByID(ctx context.Context, id int) (model.Task, error)
	Create(ctx context.Context, input model.NewTask) (model.Task, error)
	Update(ctx context.Context, id int, patch model.TaskPatch) (model.Task, error)
	Delete(ctx context.Context, id int) error
}

// Latency is the artificial delay applied to each store operation to emulate a remote API.
type Latency struct {
	GetAll  time.Duration
	GetByID time.Duration
	Create  time.Duration
	Update  time.Duration
	Delete  time.Duration
}

// DefaultLatency mirrors typical round-trips of the hosted API.
func DefaultLatency() Latency {
	return Latency{
		GetAll:  300 * time.Millisecond,
		GetByID: 200 * time.Millisecond,
		Create:  400 * time.Millisecond,
		Update:  300 * time.Millisecond,
		Delete:  250 * time.Millisecond,
	}
}

// sleep waits for d or until ctx is done. A cancelled wait aborts the operation before it
// touches any state.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

var (
	_ TaskStore = (*MemoryStore)(nil)
	_ TaskStore = (*TaskRepository)(nil)
	_ TaskStore = (*Instrumented)(nil)
)
