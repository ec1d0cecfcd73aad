package service

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"taskboard/internal/model"
	"taskboard/internal/repository"
)

// upcomingDays is the look-ahead of the daily digest.
const upcomingDays = 7

// ReminderService builds human-readable summaries for daily notifications.
type ReminderService struct {
	store repository.TaskStore
}

func NewReminderService(store repository.TaskStore) *ReminderService {
	return &ReminderService{store: store}
}

// DailySummary renders an HTML digest of overdue, today's and upcoming tasks.
func (s *ReminderService) DailySummary(ctx context.Context, now time.Time) (string, error) {
	tasks, err := s.store.GetAll(ctx)
	if err != nil {
		return "", err
	}

	open := DeriveView(tasks, ScopeActive, Filter{Status: StatusPending})
	overdue := SortByDueDate(OverdueTasks(open, now))
	today := SortTasks(TasksDueToday(open, now), SortPriority)
	upcoming := SortByDueDate(UpcomingTasks(open, now, upcomingDays))
	progress := Completion(tasks)

	var builder strings.Builder
	builder.WriteString("📋 <b>Daily report</b>\n")
	builder.WriteString(fmt.Sprintf("🗓 %s · %d%% done (%d/%d)\n", now.Format("Mon, Jan 2"), progress.Percentage, progress.Completed, progress.Total))

	writeSection(&builder, "⚠️ <b>Overdue</b>", "nothing overdue", overdue, now)
	writeSection(&builder, "🔥 <b>Due today</b>", "nothing due today", today, now)
	writeSection(&builder, fmt.Sprintf("📆 <b>Next %d days</b>", upcomingDays), "nothing scheduled", upcoming, now)

	return strings.TrimSpace(builder.String()), nil
}

func writeSection(b *strings.Builder, title, empty string, tasks []model.Task, now time.Time) {
	b.WriteString("\n")
	b.WriteString(title)
	b.WriteString("\n")
	if len(tasks) == 0 {
		b.WriteString("· " + empty + "\n")
		return
	}
	for _, task := range tasks {
		b.WriteString(FormatTask(task, now))
	}
}

// FormatTask renders one task as an HTML line block for chat messages.
func FormatTask(task model.Task, now time.Time) string {
	var sb strings.Builder

	due, hasDue := DescribeDue(task.DueDate, now)
	icon := "🟢"
	switch {
	case task.Completed:
		icon = "✅"
	case due.Class == DueOverdue:
		icon = "⚠️"
	case due.Urgent:
		icon = "⏳"
	}

	sb.WriteString(fmt.Sprintf("%s <b>#%d</b> %s", icon, task.ID, html.EscapeString(strings.TrimSpace(task.Title))))
	sb.WriteString(fmt.Sprintf(" <i>(%s, %s)</i>", task.Category.Display(), task.Priority.Display()))

	if hasDue {
		sb.WriteString(fmt.Sprintf("\n   ⏰ %s", due.Text))
		if due.Class == DueOverdue {
			sb.WriteString(fmt.Sprintf(" since %s", html.EscapeString(task.DueDate)))
		}
	}

	if desc := strings.TrimSpace(task.Description); desc != "" {
		sb.WriteString(fmt.Sprintf("\n   📝 %s", html.EscapeString(desc)))
	}

	sb.WriteByte('\n')
	return sb.String()
}
