package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskboard/internal/model"
)

func TestMemoryStore_PreservesSeedOrder(t *testing.T) {
	store := NewMemoryStore(sampleTasks())

	all, err := store.GetAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int{3, 1, 2}, ids(all))
}

func TestMemoryStore_SeedIsCopied(t *testing.T) {
	seed := sampleTasks()
	store := NewMemoryStore(seed)
	seed[0].Title = "changed outside"

	got, err := store.GetByID(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, "Write report", got.Title)
}

func TestMemoryStore_NextIDAfterDeletingMax(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(sampleTasks())

	require.NoError(t, store.Delete(ctx, 3))
	task, err := store.Create(ctx, model.NewTask{Title: "reuse"})
	require.NoError(t, err)
	assert.Equal(t, 3, task.ID)
}

func TestMemoryStore_CancelledDelayDoesNotMutate(t *testing.T) {
	store := NewMemoryStore(sampleTasks(), WithLatency(Latency{Delete: time.Hour}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := store.Delete(ctx, 1)
	assert.True(t, errors.Is(err, context.Canceled), "got %v", err)

	_, err = store.GetByID(context.Background(), 1)
	assert.NoError(t, err)
}

func TestMemoryStore_AppliesLatency(t *testing.T) {
	delay := 20 * time.Millisecond
	store := NewMemoryStore(sampleTasks(), WithLatency(Latency{GetAll: delay}))

	start := time.Now()
	_, err := store.GetAll(context.Background())
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), delay)
}

func TestDefaultLatency(t *testing.T) {
	l := DefaultLatency()
	assert.Equal(t, 300*time.Millisecond, l.GetAll)
	assert.Equal(t, 200*time.Millisecond, l.GetByID)
	assert.Equal(t, 400*time.Millisecond, l.Create)
	assert.Equal(t, 300*time.Millisecond, l.Update)
	assert.Equal(t, 250*time.Millisecond, l.Delete)
}

func TestSeedTasks(t *testing.T) {
	tasks, err := SeedTasks()
	require.NoError(t, err)
	require.NotEmpty(t, tasks)

	seen := make(map[int]bool)
	for _, task := range tasks {
		assert.False(t, seen[task.ID], "duplicate id %d", task.ID)
		seen[task.ID] = true
		assert.NotEmpty(t, task.Title)
		assert.True(t, task.Category.Valid(), "task %d category %q", task.ID, task.Category)
		assert.True(t, task.Priority.Valid(), "task %d priority %q", task.ID, task.Priority)
		assert.False(t, task.CreatedAt.IsZero())
		assert.Equal(t, task.Completed, task.CompletedAt != nil, "task %d completedAt", task.ID)
	}
}
