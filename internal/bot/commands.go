package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"taskboard/internal/logger"
	"taskboard/internal/model"
	"taskboard/internal/repository"
	"taskboard/internal/service"
)

const helpText = "ℹ️ <b>Commands</b>\n" +
	"• /newtask - add a task step by step\n" +
	"• /tasks [pending|completed] - show the task list\n" +
	"• /archive [search] - archived and completed tasks\n" +
	"• /stats - totals, completion and categories\n" +
	"• /categories - pending tasks per category\n" +
	"• /complete &lt;id&gt; - mark a task done, or reopen it\n" +
	"• /delete &lt;id&gt; - delete a task\n" +
	"• /restore &lt;id&gt; - bring a task back from the archive\n" +
	"• /clear - delete all completed tasks\n" +
	"• /report - send the daily report now\n" +
	"• /cancel - cancel the current input"

// Task list limits. Each listed task adds two inline buttons; Telegram allows 100.
const (
	maxMessageLen   = 4096
	maxListedTasks  = 40
	listTailReserve = 96
)

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) error {
	switch msg.Command() {
	case "start":
		return b.handleStart(ctx, msg)
	case "help":
		return b.sendText(msg.Chat.ID, helpText)
	case "tasks":
		return b.handleListTasks(ctx, msg)
	case "archive":
		return b.handleArchive(ctx, msg)
	case "stats":
		return b.handleStats(ctx, msg)
	case "categories":
		return b.handleCategories(ctx, msg)
	case "newtask":
		return b.startNewTaskConversation(msg)
	case "complete":
		return b.handleComplete(ctx, msg)
	case "delete":
		return b.handleDelete(ctx, msg)
	case "restore":
		return b.handleRestore(ctx, msg)
	case "clear":
		return b.askClearConfirmation(msg)
	case "report":
		return b.handleReport(ctx, msg)
	case "cancel":
		b.clearConversation(msg.From.ID)
		b.clearConfirmation(msg.From.ID)
		return b.sendText(msg.Chat.ID, "⏪ Input cancelled.")
	default:
		return b.sendText(msg.Chat.ID, "Unknown command. See /help.")
	}
}

func (b *Bot) handleStart(ctx context.Context, msg *tgbotapi.Message) error {
	if err := b.subscribe(ctx, msg); err != nil {
		logger.Error("subscribe chat", "chat", msg.Chat.ID, "err", err)
		return b.sendText(msg.Chat.ID, "Could not subscribe this chat to the daily report. Try /start again later.")
	}

	name := strings.TrimSpace(msg.From.FirstName)
	if name == "" {
		name = "there"
	}
	text := fmt.Sprintf("👋 Hi, %s!\n<b>I keep your task board.</b> You will get a daily report in this chat.\n\n%s",
		escape(name), helpText)
	return b.sendText(msg.Chat.ID, text)
}

func (b *Bot) handleListTasks(ctx context.Context, msg *tgbotapi.Message) error {
	status, err := service.ParseStatus(msg.CommandArguments())
	if err != nil {
		return b.sendText(msg.Chat.ID, "Use /tasks, /tasks pending or /tasks completed.")
	}
	return b.sendTaskList(ctx, msg.Chat.ID, status)
}

func (b *Bot) handleArchive(ctx context.Context, msg *tgbotapi.Message) error {
	tasks, err := b.taskSvc.ArchiveView(ctx, strings.TrimSpace(msg.CommandArguments()))
	if err != nil {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Could not load the archive: %s", escape(err.Error())))
	}
	if len(tasks) == 0 {
		return b.sendText(msg.Chat.ID, "🗄 The archive is empty.")
	}

	now := b.taskSvc.Now()
	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("🗄 <b>Archive</b> (%d)\n\n", len(tasks)))
	for _, task := range tasks {
		builder.WriteString(service.FormatTask(task, now))
	}
	builder.WriteString("\nUse /restore &lt;id&gt; to bring a task back.")
	return b.sendText(msg.Chat.ID, strings.TrimSpace(builder.String()))
}

func (b *Bot) handleStats(ctx context.Context, msg *tgbotapi.Message) error {
	dashboard, err := b.taskSvc.Dashboard(ctx)
	if err != nil {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Could not compute statistics: %s", escape(err.Error())))
	}
	return b.sendText(msg.Chat.ID, formatStats(dashboard))
}

func (b *Bot) handleCategories(ctx context.Context, msg *tgbotapi.Message) error {
	summaries, err := b.categorySvc.List(ctx)
	if err != nil {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Could not load categories: %s", escape(err.Error())))
	}
	var builder strings.Builder
	builder.WriteString("📂 <b>Categories</b>\n")
	for _, s := range summaries {
		builder.WriteString(fmt.Sprintf("• %s: %d pending of %d\n", categoryLabel(s.Category), s.Pending, s.Total))
	}
	return b.sendText(msg.Chat.ID, strings.TrimSpace(builder.String()))
}

func (b *Bot) handleComplete(ctx context.Context, msg *tgbotapi.Message) error {
	id, err := parseIDArg(msg.CommandArguments())
	if err != nil {
		return b.sendText(msg.Chat.ID, "Give the task id: /complete 12")
	}
	task, err := b.taskSvc.ToggleComplete(ctx, id)
	if err != nil {
		return b.sendText(msg.Chat.ID, describeError(err))
	}
	logger.Info("task toggled", "id", task.ID, "completed", task.Completed)
	return b.sendText(msg.Chat.ID, toggledText(task))
}

func (b *Bot) handleDelete(ctx context.Context, msg *tgbotapi.Message) error {
	id, err := parseIDArg(msg.CommandArguments())
	if err != nil {
		return b.sendText(msg.Chat.ID, "Give the task id: /delete 12")
	}
	task, err := b.taskSvc.Get(ctx, id)
	if err != nil {
		return b.sendText(msg.Chat.ID, describeError(err))
	}
	if err := b.taskSvc.DeleteTask(ctx, id); err != nil {
		return b.sendText(msg.Chat.ID, describeError(err))
	}
	logger.Info("task deleted", "id", id)
	return b.sendText(msg.Chat.ID, fmt.Sprintf("🗑 Task «%s» deleted.", escape(normalizeTitle(task.Title))))
}

func (b *Bot) handleRestore(ctx context.Context, msg *tgbotapi.Message) error {
	id, err := parseIDArg(msg.CommandArguments())
	if err != nil {
		return b.sendText(msg.Chat.ID, "Give the task id: /restore 12")
	}
	task, err := b.taskSvc.Restore(ctx, id)
	if err != nil {
		return b.sendText(msg.Chat.ID, describeError(err))
	}
	logger.Info("task restored", "id", id)
	return b.sendText(msg.Chat.ID, fmt.Sprintf("♻️ Task «%s» is back on the list.", escape(normalizeTitle(task.Title))))
}

func (b *Bot) askClearConfirmation(msg *tgbotapi.Message) error {
	b.setConfirmation(msg.From.ID, confirmationRequest{action: actionClear})
	return b.sendWithReplyMarkup(msg.Chat.ID, "Delete every completed task that is not archived?", confirmKeyboard())
}

func (b *Bot) clearCompleted(ctx context.Context, chatID int64) error {
	deleted, err := b.taskSvc.ClearCompleted(ctx)
	var batchErr *service.BatchError
	switch {
	case errors.As(err, &batchErr):
		logger.Warn("clear completed", "failed", batchErr.Failed, "err", err)
		return b.sendText(chatID, fmt.Sprintf("🧹 Deleted %d tasks, %d could not be deleted (#%s).",
			deleted, len(batchErr.Failed), joinIDs(batchErr.Failed)))
	case err != nil:
		return b.sendText(chatID, describeError(err))
	case deleted == 0:
		return b.sendText(chatID, "Nothing to clear.")
	default:
		logger.Info("completed tasks cleared", "deleted", deleted)
		return b.sendText(chatID, fmt.Sprintf("🧹 Deleted %d completed tasks.", deleted))
	}
}

func (b *Bot) handleReport(ctx context.Context, msg *tgbotapi.Message) error {
	text, err := b.reminderSvc.DailySummary(ctx, b.taskSvc.Now())
	if err != nil {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Could not build the report: %s", escape(err.Error())))
	}
	return b.sendText(msg.Chat.ID, text)
}

func (b *Bot) handleConfirmationResponse(ctx context.Context, msg *tgbotapi.Message, req confirmationRequest) error {
	text := strings.TrimSpace(msg.Text)
	switch {
	case isConfirmInput(text):
		b.clearConfirmation(msg.From.ID)
		if req.action == actionClear {
			return b.clearCompleted(ctx, msg.Chat.ID)
		}
		return b.deleteTaskAndRefresh(ctx, msg.Chat.ID, req.taskID)
	case isCancelInput(text):
		b.clearConfirmation(msg.From.ID)
		return b.sendText(msg.Chat.ID, "🔹 Nothing changed.")
	default:
		return b.sendWithReplyMarkup(msg.Chat.ID, "Confirm or cancel.", confirmKeyboard())
	}
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) error {
	if cb == nil || cb.From == nil || cb.Message == nil || cb.Message.Chat == nil {
		return nil
	}
	chatID := cb.Message.Chat.ID

	switch data := cb.Data; {
	case strings.HasPrefix(data, cbTogglePrefix):
		id, err := parseTaskID(data, cbTogglePrefix)
		if err != nil {
			b.ack(cb, "")
			return nil
		}
		task, err := b.taskSvc.ToggleComplete(ctx, id)
		if err != nil {
			b.ack(cb, "")
			return b.sendText(chatID, describeError(err))
		}
		b.ack(cb, toggledAck(task))
		return b.sendTaskList(ctx, chatID, service.StatusAll)
	case strings.HasPrefix(data, cbDeletePrefix):
		b.ack(cb, "")
		id, err := parseTaskID(data, cbDeletePrefix)
		if err != nil {
			return nil
		}
		return b.askDeleteConfirmation(ctx, chatID, cb.From, id)
	default:
		b.ack(cb, "")
		return nil
	}
}

func (b *Bot) askDeleteConfirmation(ctx context.Context, chatID int64, from *tgbotapi.User, id int) error {
	task, err := b.taskSvc.Get(ctx, id)
	if err != nil {
		return b.sendText(chatID, describeError(err))
	}
	text := fmt.Sprintf("Delete task «%s» (#%d)?", escape(normalizeTitle(task.Title)), task.ID)
	b.setConfirmation(from.ID, confirmationRequest{taskID: task.ID, action: actionDelete})
	return b.sendWithReplyMarkup(chatID, text, confirmKeyboard())
}

func (b *Bot) deleteTaskAndRefresh(ctx context.Context, chatID int64, id int) error {
	if err := b.taskSvc.DeleteTask(ctx, id); err != nil {
		return b.sendText(chatID, describeError(err))
	}
	logger.Info("task deleted", "id", id)
	if err := b.sendText(chatID, fmt.Sprintf("🗑 Task #%d deleted.", id)); err != nil {
		return err
	}
	return b.sendTaskList(ctx, chatID, service.StatusAll)
}

// sendTaskList renders the active view grouped by category, with a toggle and a delete
// button per task. Long lists are cut to fit one Telegram message.
func (b *Bot) sendTaskList(ctx context.Context, chatID int64, status service.Status) error {
	tasks, err := b.taskSvc.ActiveView(ctx, service.Filter{Status: status})
	if err != nil {
		return b.sendText(chatID, fmt.Sprintf("Could not load tasks: %s", escape(err.Error())))
	}
	if len(tasks) == 0 {
		return b.sendText(chatID, "No tasks here. Add one with /newtask.")
	}

	groups := make(map[model.Category][]model.Task)
	for _, task := range tasks {
		key := task.Category.Display()
		groups[key] = append(groups[key], task)
	}

	now := b.taskSvc.Now()
	progress := service.Completion(tasks)

	var builder strings.Builder
	builder.WriteString("📋 <b>Tasks</b>\n")
	if status == service.StatusAll {
		builder.WriteString(fmt.Sprintf("Progress: %d/%d (%d%%)\n", progress.Completed, progress.Total, progress.Percentage))
	}
	builder.WriteString("Tap a task to toggle it.\n\n")

	var buttons [][]tgbotapi.InlineKeyboardButton
	hidden := 0
	for _, category := range model.Categories {
		heading := fmt.Sprintf("<b>%s</b>\n", categoryLabel(category))
		headed := false
		for _, task := range groups[category] {
			line := service.FormatTask(task, now)
			size := len(line) + 1
			if !headed {
				size += len(heading)
			}
			// Byte length never undercounts what Telegram measures.
			if len(buttons) >= maxListedTasks || builder.Len()+size+listTailReserve > maxMessageLen {
				hidden++
				continue
			}
			if !headed {
				builder.WriteString(heading)
				headed = true
			}
			builder.WriteString(line)
			mark := "✅"
			if task.Completed {
				mark = "↩️"
			}
			buttons = append(buttons, tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("%s #%d · %s", mark, task.ID, shortTitle(task.Title, 24)), fmt.Sprintf("%s%d", cbTogglePrefix, task.ID)),
				tgbotapi.NewInlineKeyboardButtonData("🗑", fmt.Sprintf("%s%d", cbDeletePrefix, task.ID)),
			))
		}
		if headed {
			builder.WriteByte('\n')
		}
	}
	if hidden > 0 {
		builder.WriteString(fmt.Sprintf("…and %d more. Use /tasks pending or /complete &lt;id&gt;.", hidden))
	}

	msg := tgbotapi.NewMessage(chatID, strings.TrimSpace(builder.String()))
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(buttons...)
	msg.ParseMode = tgbotapi.ModeHTML
	_, err = b.client.Send(msg)
	return err
}

func (b *Bot) handleMenuAlias(ctx context.Context, msg *tgbotapi.Message) (bool, error) {
	text := strings.TrimSpace(strings.ToLower(msg.Text))
	switch text {
	case strings.ToLower(menuLabelNewTask):
		return true, b.startNewTaskConversation(msg)
	case strings.ToLower(menuLabelTasks):
		return true, b.sendTaskList(ctx, msg.Chat.ID, service.StatusAll)
	case strings.ToLower(menuLabelStats):
		return true, b.handleStats(ctx, msg)
	case strings.ToLower(menuLabelHelp):
		return true, b.sendText(msg.Chat.ID, helpText)
	default:
		return false, nil
	}
}

func describeError(err error) string {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return "Task not found."
	case errors.Is(err, service.ErrValidation):
		return fmt.Sprintf("Invalid input: %s", escape(err.Error()))
	default:
		return fmt.Sprintf("Error: %s", escape(err.Error()))
	}
}

func parseIDArg(args string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(args))
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid task id %q", args)
	}
	return id, nil
}

func parseTaskID(data, prefix string) (int, error) {
	return parseIDArg(strings.TrimPrefix(data, prefix))
}

func joinIDs(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, ", #")
}
