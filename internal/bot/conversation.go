package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"taskboard/internal/logger"
	"taskboard/internal/model"
	"taskboard/internal/service"
)

func (b *Bot) startNewTaskConversation(msg *tgbotapi.Message) error {
	logger.Debug("start new task conversation", "user", msg.From.ID)
	b.clearConfirmation(msg.From.ID)
	b.setConversation(msg.From.ID, &conversationState{stage: stageTitle})
	return b.sendWithReplyMarkup(msg.Chat.ID, "🆕 New task.\n<b>Step 1:</b> what should it be called?", cancelKeyboard())
}

func (b *Bot) handleConversation(ctx context.Context, msg *tgbotapi.Message) error {
	state := b.getConversation(msg.From.ID)
	if state == nil {
		return nil
	}

	text := strings.TrimSpace(msg.Text)
	switch state.stage {
	case stageTitle:
		if text == "" {
			return b.sendWithReplyMarkup(msg.Chat.ID, "The title cannot be empty. What should the task be called?", cancelKeyboard())
		}
		state.input.Title = text
		state.stage = stageDescription
		return b.sendWithReplyMarkup(msg.Chat.ID, "✏️ Add a short description (or tap «Skip»).", skipKeyboard())
	case stageDescription:
		if !isSkipInput(text) {
			state.input.Description = text
		}
		state.stage = stageCategory
		return b.sendWithReplyMarkup(msg.Chat.ID, "🏷 Pick a category.", categoryKeyboard())
	case stageCategory:
		if !isSkipInput(text) {
			category, ok := parseCategory(text)
			if !ok {
				return b.sendWithReplyMarkup(msg.Chat.ID, "Pick one of the categories below.", categoryKeyboard())
			}
			state.input.Category = category
		}
		state.stage = stagePriority
		return b.sendWithReplyMarkup(msg.Chat.ID, "🚦 How important is it?", priorityKeyboard())
	case stagePriority:
		if !isSkipInput(text) {
			priority, ok := parsePriority(text)
			if !ok {
				return b.sendWithReplyMarkup(msg.Chat.ID, "Pick high, medium or low.", priorityKeyboard())
			}
			state.input.Priority = priority
		}
		state.stage = stageDueDate
		return b.sendWithReplyMarkup(msg.Chat.ID, "⏰ Due date as <code>2024-01-31</code>, or «Skip».", skipKeyboard())
	case stageDueDate:
		if !isSkipInput(text) {
			if _, err := time.Parse(model.DateLayout, text); err != nil {
				return b.sendWithReplyMarkup(msg.Chat.ID, "I cannot read that date. Use <code>2024-01-31</code> or «Skip».", skipKeyboard())
			}
			state.input.DueDate = text
		}
		err := b.finishTaskCreation(ctx, msg.Chat.ID, state.input)
		b.clearConversation(msg.From.ID)
		return err
	default:
		b.clearConversation(msg.From.ID)
		return b.sendText(msg.Chat.ID, "Input reset. Start again with /newtask.")
	}
}

func (b *Bot) finishTaskCreation(ctx context.Context, chatID int64, input model.NewTask) error {
	task, err := b.taskSvc.CreateTask(ctx, input)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			return b.sendText(chatID, describeError(err))
		}
		return b.sendText(chatID, fmt.Sprintf("Could not save the task: %s", escape(err.Error())))
	}

	logger.Info("task created", "id", task.ID, "category", task.Category, "priority", task.Priority)

	var summary strings.Builder
	summary.WriteString("✅ <b>Task saved</b>\n")
	summary.WriteString(fmt.Sprintf("• <b>ID:</b> %d\n", task.ID))
	summary.WriteString(fmt.Sprintf("• <b>Title:</b> %s\n", escape(normalizeTitle(task.Title))))
	if task.Description != "" {
		summary.WriteString(fmt.Sprintf("• <b>Description:</b> %s\n", escape(task.Description)))
	}
	summary.WriteString(fmt.Sprintf("• <b>Category:</b> %s\n", categoryLabel(task.Category)))
	summary.WriteString(fmt.Sprintf("• <b>Priority:</b> %s\n", priorityLabel(task.Priority)))
	if task.DueDate != "" {
		summary.WriteString(fmt.Sprintf("• <b>Due:</b> %s\n", escape(task.DueDate)))
	}

	if err := b.sendText(chatID, strings.TrimSpace(summary.String())); err != nil {
		return err
	}
	return b.sendTaskList(ctx, chatID, service.StatusAll)
}

// parseCategory accepts the category name with or without its keyboard icon.
func parseCategory(text string) (model.Category, bool) {
	value := strings.ToLower(lastWord(text))
	category := model.Category(value)
	return category, category.Valid()
}

func parsePriority(text string) (model.Priority, bool) {
	value := strings.ToLower(lastWord(text))
	priority := model.Priority(value)
	return priority, priority.Valid()
}

func lastWord(text string) string {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return ""
	}
	return fields[len(fields)-1]
}
