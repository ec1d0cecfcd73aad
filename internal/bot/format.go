package bot

import (
	"fmt"
	"html"
	"strings"
	"unicode"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"taskboard/internal/model"
	"taskboard/internal/service"
)

const (
	btnSkip          = "⏭️ Skip"
	btnConfirm       = "✅ Confirm"
	btnCancel        = "↩️ Cancel"
	btnCancelDialog  = "⏪ Stop input"
	menuLabelNewTask = "➕ New task"
	menuLabelTasks   = "📋 Tasks"
	menuLabelStats   = "📊 Stats"
	menuLabelHelp    = "ℹ️ Help"
)

func formatStats(d service.Dashboard) string {
	s := d.Stats
	var b strings.Builder
	b.WriteString("📊 <b>Statistics</b>\n")
	b.WriteString(fmt.Sprintf("Total: %d · completed: %d · pending: %d\n", s.Total, s.Completed, s.Pending))
	b.WriteString(fmt.Sprintf("Completion rate: %d%%\n", s.CompletionRate))
	b.WriteString(fmt.Sprintf("Active list: %d/%d done (%d%%)\n\n", d.Progress.Completed, d.Progress.Total, d.Progress.Percentage))

	b.WriteString("<b>By priority</b>\n")
	b.WriteString(fmt.Sprintf("%s: %d\n", priorityLabel(model.PriorityHigh), s.ByPriority.High))
	b.WriteString(fmt.Sprintf("%s: %d\n", priorityLabel(model.PriorityMedium), s.ByPriority.Medium))
	b.WriteString(fmt.Sprintf("%s: %d\n\n", priorityLabel(model.PriorityLow), s.ByPriority.Low))

	b.WriteString("<b>By category</b>\n")
	for _, c := range model.Categories {
		b.WriteString(fmt.Sprintf("%s: %d (%d pending)\n", categoryLabel(c), s.ByCategory.Of(c), d.Pending.Of(c)))
	}
	return strings.TrimSpace(b.String())
}

func toggledText(task model.Task) string {
	if task.Completed {
		return fmt.Sprintf("✅ Task «%s» is done.", escape(normalizeTitle(task.Title)))
	}
	return fmt.Sprintf("↩️ Task «%s» is open again.", escape(normalizeTitle(task.Title)))
}

func toggledAck(task model.Task) string {
	if task.Completed {
		return fmt.Sprintf("#%d done", task.ID)
	}
	return fmt.Sprintf("#%d reopened", task.ID)
}

func confirmKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnConfirm),
			tgbotapi.NewKeyboardButton(btnCancel),
		),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

func mainMenuKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(menuLabelNewTask),
			tgbotapi.NewKeyboardButton(menuLabelTasks),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(menuLabelStats),
			tgbotapi.NewKeyboardButton(menuLabelHelp),
		),
	)
	kb.ResizeKeyboard = true
	return kb
}

func cancelKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnCancelDialog),
		),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

func skipKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnSkip),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnCancelDialog),
		),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

func categoryKeyboard() tgbotapi.ReplyKeyboardMarkup {
	var row []tgbotapi.KeyboardButton
	for _, c := range model.Categories {
		row = append(row, tgbotapi.NewKeyboardButton(categoryLabel(c)))
	}
	kb := tgbotapi.NewReplyKeyboard(
		row[:2],
		row[2:],
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnSkip),
			tgbotapi.NewKeyboardButton(btnCancelDialog),
		),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

func priorityKeyboard() tgbotapi.ReplyKeyboardMarkup {
	var row []tgbotapi.KeyboardButton
	for _, p := range model.Priorities {
		row = append(row, tgbotapi.NewKeyboardButton(priorityLabel(p)))
	}
	kb := tgbotapi.NewReplyKeyboard(
		row,
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnSkip),
			tgbotapi.NewKeyboardButton(btnCancelDialog),
		),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

func isSkipInput(text string) bool {
	value := strings.TrimSpace(strings.ToLower(text))
	return value == "-" || value == strings.ToLower(btnSkip) || value == "skip"
}

func isConfirmInput(text string) bool {
	value := strings.TrimSpace(strings.ToLower(text))
	return value == strings.ToLower(btnConfirm) || value == "confirm" || value == "yes"
}

func isCancelInput(text string) bool {
	value := strings.TrimSpace(strings.ToLower(text))
	return value == strings.ToLower(btnCancel) || value == "cancel" || value == "no"
}

func isCancelDialogInput(text string) bool {
	value := strings.TrimSpace(strings.ToLower(text))
	return value == strings.ToLower(btnCancelDialog) || value == "stop input"
}

func escape(s string) string {
	return html.EscapeString(s)
}

func normalizeTitle(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return value
	}
	runes := []rune(value)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

func shortTitle(title string, maxLen int) string {
	clean := normalizeTitle(strings.ReplaceAll(title, "\n", " "))
	runes := []rune(clean)
	if len(runes) <= maxLen {
		return clean
	}
	if maxLen <= 1 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-1]) + "…"
}

// categoryLabel renders unknown categories as personal, like the list grouping does.
func categoryLabel(c model.Category) string {
	c = c.Display()
	var icon string
	switch c {
	case model.CategoryWork:
		icon = "💼"
	case model.CategoryShopping:
		icon = "🛒"
	case model.CategoryHealth:
		icon = "🩺"
	default:
		icon = "🧩"
	}
	return fmt.Sprintf("%s %s", icon, normalizeTitle(string(c)))
}

func priorityLabel(p model.Priority) string {
	p = p.Display()
	var icon string
	switch p {
	case model.PriorityHigh:
		icon = "🔴"
	case model.PriorityMedium:
		icon = "🟡"
	default:
		icon = "🔵"
	}
	return fmt.Sprintf("%s %s", icon, normalizeTitle(string(p)))
}
