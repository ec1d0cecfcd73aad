package bot

import (
	"context"
	"errors"
	"fmt"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"taskboard/internal/logger"
	"taskboard/internal/metrics"
	"taskboard/internal/model"
	"taskboard/internal/repository"
	"taskboard/internal/service"
)

type conversationStage int

const (
	stageNone conversationStage = iota
	stageTitle
	stageDescription
	stageCategory
	stagePriority
	stageDueDate
)

const (
	cbTogglePrefix = "toggle:"
	cbDeletePrefix = "delete:"
)

type conversationState struct {
	stage conversationStage
	input model.NewTask
}

type confirmationAction int

const (
	actionDelete confirmationAction = iota
	actionClear
)

type confirmationRequest struct {
	taskID int
	action confirmationAction
}

// messenger is the part of the Telegram API the bot talks through.
type messenger interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Bot exposes the task board over Telegram.
type Bot struct {
	api           *tgbotapi.BotAPI
	client        messenger
	taskSvc       *service.TaskService
	categorySvc   *service.CategoryService
	reminderSvc   *service.ReminderService
	conversations map[int64]*conversationState
	confirmations map[int64]confirmationRequest
	subscribers   repository.SubscriberStore
	mu            sync.Mutex
	stopOnce      sync.Once
}

func New(token string, taskSvc *service.TaskService, categorySvc *service.CategoryService, reminderSvc *service.ReminderService, subscribers repository.SubscriberStore) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}

	logger.Info("bot authorized", "account", api.Self.UserName)

	b := newBot(api, taskSvc, categorySvc, reminderSvc, subscribers)
	b.api = api
	return b, nil
}

func newBot(client messenger, taskSvc *service.TaskService, categorySvc *service.CategoryService, reminderSvc *service.ReminderService, subscribers repository.SubscriberStore) *Bot {
	return &Bot{
		client:        client,
		taskSvc:       taskSvc,
		categorySvc:   categorySvc,
		reminderSvc:   reminderSvc,
		conversations: make(map[int64]*conversationState),
		confirmations: make(map[int64]confirmationRequest),
		subscribers:   subscribers,
	}
}

// Start polls updates until ctx is cancelled or Stop is called.
func (b *Bot) Start(ctx context.Context) error {
	if b.api == nil {
		return errors.New("bot: no telegram connection")
	}

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := b.api.GetUpdatesChan(updateConfig)

	logger.Info("start polling updates")

	go func() {
		<-ctx.Done()
		b.Stop()
	}()

	for update := range updates {
		b.dispatch(ctx, update)
	}

	return nil
}

// Stop ends polling; Start returns once the update channel drains. Safe to call twice.
func (b *Bot) Stop() {
	if b.api == nil {
		return
	}
	b.stopOnce.Do(b.api.StopReceivingUpdates)
}

func (b *Bot) dispatch(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		metrics.BotUpdates.WithLabelValues("callback").Inc()
		if err := b.handleCallback(ctx, update.CallbackQuery); err != nil {
			logger.Error("handle callback", "err", err)
		}
	case update.Message != nil:
		if update.Message.Chat == nil || !update.Message.Chat.IsPrivate() {
			metrics.BotUpdates.WithLabelValues("ignored").Inc()
			return
		}
		if update.Message.IsCommand() {
			metrics.BotUpdates.WithLabelValues("command").Inc()
		} else {
			metrics.BotUpdates.WithLabelValues("message").Inc()
		}
		if err := b.handleMessage(ctx, update.Message); err != nil {
			logger.Error("handle message", "err", err)
		}
	default:
		metrics.BotUpdates.WithLabelValues("ignored").Inc()
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) error {
	if msg.From == nil {
		return nil
	}

	if !msg.IsCommand() && isCancelDialogInput(msg.Text) {
		b.clearConversation(msg.From.ID)
		b.clearConfirmation(msg.From.ID)
		return b.sendText(msg.Chat.ID, "⏪ Input cancelled.")
	}

	if !msg.IsCommand() {
		if handled, err := b.handleMenuAlias(ctx, msg); handled {
			return err
		}
	}

	if msg.IsCommand() {
		logger.Debug("command", "user", msg.From.ID, "command", msg.Command(), "args", msg.CommandArguments())
		return b.handleCommand(ctx, msg)
	}

	if pending, ok := b.getConfirmation(msg.From.ID); ok {
		return b.handleConfirmationResponse(ctx, msg, pending)
	}

	if b.hasConversation(msg.From.ID) {
		return b.handleConversation(ctx, msg)
	}

	return b.sendText(msg.Chat.ID, "I did not get that. Send /newtask to add a task or /help for the command list.")
}

// SendDailyReports sends the digest to every chat that used /start. Failed sends are logged
// and skipped.
func (b *Bot) SendDailyReports(ctx context.Context) error {
	chats, err := b.subscribers.ChatIDs(ctx)
	if err != nil {
		return fmt.Errorf("list subscribers: %w", err)
	}
	if len(chats) == 0 {
		return nil
	}

	text, err := b.reminderSvc.DailySummary(ctx, b.taskSvc.Now())
	if err != nil {
		return fmt.Errorf("build summary: %w", err)
	}

	for _, chatID := range chats {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if err := b.sendText(chatID, text); err != nil {
			logger.Warn("send summary", "chat", chatID, "err", err)
		}
	}
	logger.Info("daily reports sent", "chats", len(chats))
	return nil
}

func (b *Bot) sendText(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = mainMenuKeyboard()
	_, err := b.client.Send(msg)
	return err
}

func (b *Bot) sendWithReplyMarkup(chatID int64, text string, markup interface{}) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = markup
	_, err := b.client.Send(msg)
	return err
}

func (b *Bot) ack(cb *tgbotapi.CallbackQuery, text string) {
	if _, err := b.client.Request(tgbotapi.NewCallback(cb.ID, text)); err != nil {
		logger.Warn("callback ack", "err", err)
	}
}

func (b *Bot) subscribe(ctx context.Context, msg *tgbotapi.Message) error {
	sub := model.Subscriber{ChatID: msg.Chat.ID}
	if msg.From != nil {
		sub.FirstName = msg.From.FirstName
		sub.Username = msg.From.UserName
	}
	_, err := b.subscribers.Upsert(ctx, sub)
	return err
}

func (b *Bot) getConfirmation(userID int64) (confirmationRequest, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	req, ok := b.confirmations[userID]
	return req, ok
}

func (b *Bot) setConfirmation(userID int64, req confirmationRequest) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.confirmations[userID] = req
}

func (b *Bot) clearConfirmation(userID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.confirmations, userID)
}

func (b *Bot) setConversation(userID int64, state *conversationState) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.conversations[userID] = state
}

func (b *Bot) getConversation(userID int64) *conversationState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.conversations[userID]
}

func (b *Bot) hasConversation(userID int64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.conversations[userID]
	return ok
}

func (b *Bot) clearConversation(userID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.conversations, userID)
}
