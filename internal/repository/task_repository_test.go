package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskboard/internal/model"
)

// newTestRepository opens an in-memory SQLite database seeded with tasks.
func newTestRepository(t *testing.T, seed []model.Task, now func() time.Time) *TaskRepository {
	t.Helper()

	db, err := NewDB(":memory:")
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	repo := NewTaskRepository(db)
	if now != nil {
		repo.now = now
	}
	require.NoError(t, repo.Seed(context.Background(), seed))
	return repo
}

func TestTaskRepository_OrdersNewestIDFirst(t *testing.T) {
	repo := newTestRepository(t, sampleTasks(), nil)

	all, err := repo.GetAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int{3, 2, 1}, ids(all))
}

func TestTaskRepository_SeedSkipsPopulatedTable(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t, sampleTasks(), nil)

	require.NoError(t, repo.Seed(ctx, []model.Task{{ID: 50, Title: "late seed", CreatedAt: fixedNow}}))

	all, err := repo.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestTaskRepository_SeedsBundledTasks(t *testing.T) {
	seed, err := SeedTasks()
	require.NoError(t, err)

	repo := newTestRepository(t, seed, nil)
	all, err := repo.GetAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, len(seed))
}
