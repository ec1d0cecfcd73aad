package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"taskboard/internal/model"
)

// Wednesday noon.
var wednesday = time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)

func TestClassifyDue(t *testing.T) {
	sunday := time.Date(2024, 1, 14, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		due  string
		now  time.Time
		want DueClass
	}{
		{"no date", "", wednesday, DueNone},
		{"malformed", "soon", wednesday, DueNone},
		{"today's date is today, not overdue", "2024-01-10", wednesday, DueToday},
		{"earlier today", "2024-01-10T08:00:00Z", wednesday, DueToday},
		{"later today", "2024-01-10T20:00:00Z", wednesday, DueToday},
		{"tomorrow", "2024-01-11", wednesday, DueTomorrow},
		{"yesterday", "2024-01-09", wednesday, DueOverdue},
		{"monday of this week", "2024-01-08", wednesday, DueOverdue},
		{"saturday", "2024-01-13", wednesday, DueThisWeek},
		{"sunday ends the week", "2024-01-14", wednesday, DueThisWeek},
		{"next monday", "2024-01-15", wednesday, DueLater},
		{"far future", "2024-06-01", wednesday, DueLater},
		{"sunday to monday is tomorrow", "2024-01-15", sunday, DueTomorrow},
		{"sunday to tuesday is next week", "2024-01-16", sunday, DueLater},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyDue(tt.due, tt.now))
		})
	}
}

func TestClassifyDueUsesNowLocation(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*3600)
	now := time.Date(2024, 1, 11, 1, 0, 0, 0, tokyo)

	// 20:00 UTC on the 10th is 05:00 on the 11th in Tokyo.
	assert.Equal(t, DueToday, ClassifyDue("2024-01-10T20:00:00Z", now))
}

func TestDescribeDue(t *testing.T) {
	tests := []struct {
		due    string
		text   string
		urgent bool
	}{
		{"2024-01-10", "Today", true},
		{"2024-01-11", "Tomorrow", true},
		{"2024-01-02", "Overdue", true},
		{"2024-01-13", "Saturday", false},
		{"2024-02-20", "Feb 20", false},
	}
	for _, tt := range tests {
		t.Run(tt.due, func(t *testing.T) {
			info, ok := DescribeDue(tt.due, wednesday)
			assert.True(t, ok)
			assert.Equal(t, tt.text, info.Text)
			assert.Equal(t, tt.urgent, info.Urgent)
		})
	}

	_, ok := DescribeDue("", wednesday)
	assert.False(t, ok)
}

func TestDueQueries(t *testing.T) {
	tasks := []model.Task{
		{ID: 1, DueDate: "2024-01-10"},
		{ID: 2, DueDate: "2024-01-09"},
		{ID: 3, DueDate: "2024-01-11"},
		{ID: 4, DueDate: "2024-01-17"},
		{ID: 5, DueDate: "2024-01-18"},
		{ID: 6, DueDate: "2024-01-05", Completed: true},
		{ID: 7},
	}

	assert.Equal(t, []int{1}, taskIDs(TasksDueToday(tasks, wednesday)))
	assert.Equal(t, []int{2}, taskIDs(OverdueTasks(tasks, wednesday)))
	assert.Equal(t, []int{3, 4}, taskIDs(UpcomingTasks(tasks, wednesday, 7)))
	assert.Equal(t, []int{3, 4}, taskIDs(UpcomingTasks(tasks, wednesday, 0)))
	assert.Equal(t, []int{3}, taskIDs(UpcomingTasks(tasks, wednesday, 1)))
}

func TestSortByDueDateHelper(t *testing.T) {
	tasks := []model.Task{
		{ID: 1, CreatedAt: at(1)},
		{ID: 2, DueDate: "2024-01-20", CreatedAt: at(2)},
		{ID: 3, CreatedAt: at(3)},
		{ID: 4, DueDate: "2024-01-12", CreatedAt: at(4)},
	}
	assert.Equal(t, []int{4, 2, 3, 1}, taskIDs(SortByDueDate(tasks)))
}
