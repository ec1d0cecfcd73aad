package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskboard/internal/model"
	"taskboard/internal/repository"
)

// flakyStore fails deletes for selected ids.
type flakyStore struct {
	repository.TaskStore
	failDelete map[int]bool
}

func (s *flakyStore) Delete(ctx context.Context, id int) error {
	if s.failDelete[id] {
		return fmt.Errorf("delete task %d: connection reset", id)
	}
	return s.TaskStore.Delete(ctx, id)
}

func newTestService(t *testing.T, tasks []model.Task) (*TaskService, *repository.MemoryStore) {
	t.Helper()
	clock := func() time.Time { return wednesday }
	store := repository.NewMemoryStore(tasks, repository.WithClock(clock))
	return NewTaskService(store, WithNow(clock)), store
}

func TestTaskService_CreateTask(t *testing.T) {
	ctx := context.Background()

	t.Run("defaults", func(t *testing.T) {
		svc, _ := newTestService(t, fixture())

		task, err := svc.CreateTask(ctx, model.NewTask{Title: "  Buy milk "})
		require.NoError(t, err)
		assert.Equal(t, 6, task.ID)
		assert.Equal(t, "Buy milk", task.Title)
		assert.Equal(t, model.CategoryPersonal, task.Category)
		assert.Equal(t, model.PriorityMedium, task.Priority)
		assert.False(t, task.Completed)
		assert.False(t, task.Archived)
	})

	invalid := []struct {
		name  string
		input model.NewTask
	}{
		{"blank title", model.NewTask{Title: "   "}},
		{"unknown category", model.NewTask{Title: "x", Category: "errands"}},
		{"unknown priority", model.NewTask{Title: "x", Priority: "urgent"}},
		{"bad due date", model.NewTask{Title: "x", DueDate: "tomorrow"}},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			svc, store := newTestService(t, fixture())

			_, err := svc.CreateTask(ctx, tt.input)
			assert.True(t, errors.Is(err, ErrValidation), "got %v", err)

			all, err := store.GetAll(ctx)
			require.NoError(t, err)
			assert.Len(t, all, 5)
		})
	}
}

func TestTaskService_EditTask(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, fixture())

	title := " Write annual report "
	priority := model.PriorityLow
	task, err := svc.EditTask(ctx, 1, model.TaskPatch{Title: &title, Priority: &priority})
	require.NoError(t, err)
	assert.Equal(t, "Write annual report", task.Title)
	assert.Equal(t, model.PriorityLow, task.Priority)

	blank := ""
	_, err = svc.EditTask(ctx, 1, model.TaskPatch{Title: &blank})
	assert.True(t, errors.Is(err, ErrValidation))

	bad := model.Category("errands")
	_, err = svc.EditTask(ctx, 1, model.TaskPatch{Category: &bad})
	assert.True(t, errors.Is(err, ErrValidation))

	_, err = svc.EditTask(ctx, 99, model.TaskPatch{Title: &title})
	assert.True(t, errors.Is(err, repository.ErrNotFound))
}

func TestTaskService_ToggleComplete(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, fixture())

	done, err := svc.ToggleComplete(ctx, 1)
	require.NoError(t, err)
	assert.True(t, done.Completed)
	require.NotNil(t, done.CompletedAt)
	assert.Equal(t, wednesday, *done.CompletedAt)

	reopened, err := svc.ToggleComplete(ctx, 1)
	require.NoError(t, err)
	assert.False(t, reopened.Completed)
	assert.Nil(t, reopened.CompletedAt)

	_, err = svc.ToggleComplete(ctx, 99)
	assert.True(t, errors.Is(err, repository.ErrNotFound))
}

func TestTaskService_ToggleCompleteConcurrent(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore(fixture(),
		repository.WithClock(func() time.Time { return wednesday }),
		repository.WithLatency(repository.Latency{GetByID: 20 * time.Millisecond, Update: 20 * time.Millisecond}),
	)
	svc := NewTaskService(store, WithNow(func() time.Time { return wednesday }))

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = svc.ToggleComplete(ctx, 1)
		}()
	}
	wg.Wait()
	require.NoError(t, errs[0])
	require.NoError(t, errs[1])

	task, err := store.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.False(t, task.Completed, "two toggles must cancel out")
	assert.Nil(t, task.CompletedAt)
}

func TestTaskService_ArchiveAndRestore(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, fixture())

	_, err := svc.Archive(ctx, 2)
	require.NoError(t, err)

	active, err := svc.ActiveView(ctx, Filter{})
	require.NoError(t, err)
	assert.NotContains(t, taskIDs(active), 2)

	archive, err := svc.ArchiveView(ctx, "")
	require.NoError(t, err)
	assert.Contains(t, taskIDs(archive), 2)

	restored, err := svc.Restore(ctx, 3)
	require.NoError(t, err)
	assert.False(t, restored.Completed)
	assert.False(t, restored.Archived)
	assert.Nil(t, restored.CompletedAt)
}

func TestTaskService_Views(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, fixture())

	pending, err := svc.ActiveView(ctx, Filter{Status: StatusPending})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 5, 2}, taskIDs(pending))

	archive, err := svc.ArchiveView(ctx, "YOGA")
	require.NoError(t, err)
	assert.Equal(t, []int{3}, taskIDs(archive))
}

func TestTaskService_Dashboard(t *testing.T) {
	svc, _ := newTestService(t, fixture())

	d, err := svc.Dashboard(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, d.Stats.Total)
	assert.Equal(t, 25, d.Progress.Percentage)
	assert.Equal(t, 1, d.Pending.Work)
}

func TestTaskService_DueSoon(t *testing.T) {
	tasks := []model.Task{
		{ID: 1, Title: "today", DueDate: "2024-01-10", Priority: model.PriorityLow},
		{ID: 2, Title: "late", DueDate: "2024-01-08"},
		{ID: 3, Title: "soon", DueDate: "2024-01-12"},
		{ID: 4, Title: "archived late", DueDate: "2024-01-01", Archived: true},
		{ID: 5, Title: "today high", DueDate: "2024-01-10", Priority: model.PriorityHigh},
	}
	svc, _ := newTestService(t, tasks)

	report, err := svc.DueSoon(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, []int{2}, taskIDs(report.Overdue))
	assert.Equal(t, []int{5, 1}, taskIDs(report.Today))
	assert.Equal(t, []int{3}, taskIDs(report.Upcoming))
	assert.False(t, report.Empty())
}

func TestTaskService_ClearCompleted(t *testing.T) {
	ctx := context.Background()
	done := wednesday

	seed := func() []model.Task {
		return []model.Task{
			{ID: 1, Title: "open"},
			{ID: 2, Title: "done", Completed: true, CompletedAt: &done},
			{ID: 3, Title: "done too", Completed: true, CompletedAt: &done},
			{ID: 4, Title: "done and archived", Completed: true, Archived: true, CompletedAt: &done},
			{ID: 5, Title: "done again", Completed: true, CompletedAt: &done},
		}
	}

	t.Run("deletes completed, keeps archived", func(t *testing.T) {
		svc, store := newTestService(t, seed())

		n, err := svc.ClearCompleted(ctx)
		require.NoError(t, err)
		assert.Equal(t, 3, n)

		all, err := store.GetAll(ctx)
		require.NoError(t, err)
		assert.ElementsMatch(t, []int{1, 4}, taskIDs(all))
	})

	t.Run("nothing to clear", func(t *testing.T) {
		svc, _ := newTestService(t, []model.Task{{ID: 1, Title: "open"}})

		n, err := svc.ClearCompleted(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, n)
	})

	t.Run("partial failure keeps successful deletes", func(t *testing.T) {
		store := repository.NewMemoryStore(seed())
		svc := NewTaskService(&flakyStore{TaskStore: store, failDelete: map[int]bool{3: true}})

		n, err := svc.ClearCompleted(ctx)
		assert.Equal(t, 2, n)

		var batchErr *BatchError
		require.True(t, errors.As(err, &batchErr), "got %v", err)
		assert.Equal(t, []int{3}, batchErr.Failed)
		assert.Equal(t, 3, batchErr.Total)
		assert.True(t, strings.Contains(batchErr.Error(), "1 of 3 failed"))

		all, err := store.GetAll(ctx)
		require.NoError(t, err)
		assert.ElementsMatch(t, []int{1, 3, 4}, taskIDs(all))
	})
}

func TestTaskService_DeleteUnknownLeavesCollection(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t, fixture())

	err := svc.DeleteTask(ctx, 42)
	assert.True(t, errors.Is(err, repository.ErrNotFound))

	all, err := store.GetAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, taskIDs(fixture()), taskIDs(all))
}
