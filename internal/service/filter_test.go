package service

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskboard/internal/model"
)

var base = time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)

func at(hours int) time.Time { return base.Add(time.Duration(hours) * time.Hour) }

func taskIDs(tasks []model.Task) []int {
	out := make([]int, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return out
}

func fixture() []model.Task {
	done := at(5)
	return []model.Task{
		{ID: 1, Title: "Write report", Description: "quarterly numbers", Category: model.CategoryWork,
			Priority: model.PriorityHigh, DueDate: "2024-01-12", CreatedAt: at(1)},
		{ID: 2, Title: "Buy milk", Category: model.CategoryShopping, Priority: model.PriorityLow,
			CreatedAt: at(2)},
		{ID: 3, Title: "yoga", Description: "Evening REPORT of stretches", Category: model.CategoryHealth,
			Priority: model.PriorityMedium, Completed: true, CompletedAt: &done, DueDate: "2024-01-11", CreatedAt: at(3)},
		{ID: 4, Title: "Archived errand", Category: model.CategoryPersonal, Priority: model.PriorityMedium,
			Archived: true, CreatedAt: at(4)},
		{ID: 5, Title: "Odd one", Category: "errands", Priority: "urgent", CreatedAt: at(6)},
	}
}

func TestParseStatus(t *testing.T) {
	for raw, want := range map[string]Status{"": StatusAll, "all": StatusAll, "Pending": StatusPending, "completed": StatusCompleted} {
		got, err := ParseStatus(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got, raw)
	}
	_, err := ParseStatus("done")
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestParseSortOrder(t *testing.T) {
	for raw, want := range map[string]SortOrder{
		"":             SortPriority,
		"priority":     SortPriority,
		"dueDate":      SortDueDate,
		"created":      SortCreated,
		"alphabetical": SortAlphabetical,
		"completed":    SortCompleted,
	} {
		got, err := ParseSortOrder(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got, raw)
	}
	_, err := ParseSortOrder("random")
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestFilterTasks(t *testing.T) {
	tests := []struct {
		name   string
		filter Filter
		want   []int
	}{
		{"zero filter matches all", Filter{}, []int{1, 2, 3, 4, 5}},
		{"search title or description case-insensitively", Filter{Search: "report"}, []int{1, 3}},
		{"search miss", Filter{Search: "nothing"}, []int{}},
		{"category", Filter{Category: "health"}, []int{3}},
		{"category all", Filter{Category: FilterAll}, []int{1, 2, 3, 4, 5}},
		{"priority", Filter{Priority: "medium"}, []int{3, 4}},
		{"pending", Filter{Status: StatusPending}, []int{1, 2, 4, 5}},
		{"completed", Filter{Status: StatusCompleted}, []int{3}},
		{"combined", Filter{Search: "r", Category: "work", Priority: "high", Status: StatusPending}, []int{1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, taskIDs(FilterTasks(fixture(), tt.filter)))
		})
	}
}

func TestStatusFilterIsExclusive(t *testing.T) {
	tasks := fixture()
	for _, task := range FilterTasks(tasks, Filter{Status: StatusPending}) {
		assert.False(t, task.Completed, "task %d", task.ID)
	}
	for _, task := range FilterTasks(tasks, Filter{Status: StatusCompleted}) {
		assert.True(t, task.Completed, "task %d", task.ID)
	}
}

func TestSortByPriority(t *testing.T) {
	t.Run("higher weight first", func(t *testing.T) {
		tasks := []model.Task{
			{ID: 1, Priority: model.PriorityHigh, CreatedAt: at(1)},
			{ID: 2, Priority: model.PriorityLow, CreatedAt: at(2)},
		}
		assert.Equal(t, []int{1, 2}, taskIDs(SortTasks(tasks, SortPriority)))
	})

	t.Run("ties broken by newest first", func(t *testing.T) {
		got := SortTasks(fixture(), SortPriority)
		// 5 has an unknown priority and weighs like low.
		assert.Equal(t, []int{1, 4, 3, 5, 2}, taskIDs(got))
	})

	t.Run("stable for equal keys", func(t *testing.T) {
		tasks := []model.Task{
			{ID: 1, Priority: model.PriorityMedium, CreatedAt: at(1)},
			{ID: 2, Priority: model.PriorityMedium, CreatedAt: at(1)},
			{ID: 3, Priority: model.PriorityMedium, CreatedAt: at(1)},
		}
		assert.Equal(t, []int{1, 2, 3}, taskIDs(SortTasks(tasks, SortPriority)))
	})
}

func TestSortByDueDate(t *testing.T) {
	tasks := []model.Task{
		{ID: 1, CreatedAt: at(1)},
		{ID: 2, DueDate: "2024-02-01", CreatedAt: at(2)},
		{ID: 3, CreatedAt: at(3)},
		{ID: 4, DueDate: "2024-01-15", CreatedAt: at(4)},
	}
	assert.Equal(t, []int{4, 2, 1, 3}, taskIDs(SortTasks(tasks, SortDueDate)))
}

func TestSortCreatedAndAlphabetical(t *testing.T) {
	assert.Equal(t, []int{5, 4, 3, 2, 1}, taskIDs(SortTasks(fixture(), SortCreated)))

	tasks := []model.Task{
		{ID: 1, Title: "banana"},
		{ID: 2, Title: "Apple"},
		{ID: 3, Title: "cherry"},
		{ID: 4, Title: "apple"},
	}
	got := taskIDs(SortTasks(tasks, SortAlphabetical))
	assert.Equal(t, 1, got[2])
	assert.Equal(t, 3, got[3])
	assert.ElementsMatch(t, []int{2, 4}, got[:2])
}

func TestSortCompletedFallsBackToCreatedAt(t *testing.T) {
	done := at(10)
	tasks := []model.Task{
		{ID: 1, CreatedAt: at(1)},
		{ID: 2, Completed: true, CompletedAt: &done, CreatedAt: at(0)},
		{ID: 3, CreatedAt: at(5)},
	}
	assert.Equal(t, []int{2, 3, 1}, taskIDs(SortTasks(tasks, SortCompleted)))
}

func TestSortUnknownOrderKeepsInput(t *testing.T) {
	tasks := fixture()
	assert.Equal(t, taskIDs(tasks), taskIDs(SortTasks(tasks, SortOrder("shuffle"))))
}

func TestSortDoesNotMutateInput(t *testing.T) {
	tasks := fixture()
	before := taskIDs(tasks)
	_ = SortTasks(tasks, SortCreated)
	assert.Equal(t, before, taskIDs(tasks))
}

func TestDeriveView(t *testing.T) {
	t.Run("active view hides archived", func(t *testing.T) {
		got := DeriveView(fixture(), ScopeActive, Filter{})
		assert.Equal(t, []int{1, 3, 5, 2}, taskIDs(got))
	})

	t.Run("archive view includes completed and archived", func(t *testing.T) {
		got := DeriveView(fixture(), ScopeArchive, Filter{Sort: SortCompleted})
		assert.Equal(t, []int{3, 4}, taskIDs(got))
	})

	t.Run("completed task appears in both views", func(t *testing.T) {
		active := DeriveView(fixture(), ScopeActive, Filter{Status: StatusCompleted})
		archive := DeriveView(fixture(), ScopeArchive, Filter{})
		assert.Contains(t, taskIDs(active), 3)
		assert.Contains(t, taskIDs(archive), 3)
	})
}
