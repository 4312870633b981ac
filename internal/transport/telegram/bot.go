// Package telegram adapts the Telegram Bot API to the conversation
// dispatcher's transport contracts: inbound update translation, reply
// keyboards, attachment retrieval, and operator messaging.
package telegram

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/kopaska88/pengaduan-jokerbola/internal/config"
	"github.com/kopaska88/pengaduan-jokerbola/internal/conversation"
	"github.com/kopaska88/pengaduan-jokerbola/internal/dedupe"
	"github.com/kopaska88/pengaduan-jokerbola/internal/observability"
)

// Bot runs the long-polling loop and implements conversation.Replier,
// conversation.FileResolver, and notify.Messenger.
type Bot struct {
	api         *tgbotapi.BotAPI
	pollTimeout int
	dropPending bool
	logger      *zap.Logger
	metrics     *observability.Metrics
}

// New authenticates against the Bot API.
func New(cfg config.BotConfig, metrics *observability.Metrics, logger *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, err
	}
	logger.Info("authorized on telegram", zap.String("bot_username", api.Self.UserName))
	return &Bot{
		api:         api,
		pollTimeout: cfg.PollTimeoutSeconds,
		dropPending: cfg.DropPending,
		logger:      logger,
		metrics:     metrics,
	}, nil
}

// Run polls for updates until the context is cancelled, dispatching
// each fresh update on its own goroutine. Per-user ordering beyond that
// is the session store's job.
func (b *Bot) Run(ctx context.Context, dispatcher *conversation.Dispatcher, guard dedupe.Guard) {
	b.registerCommands()

	if b.dropPending {
		if _, err := b.api.Request(tgbotapi.DeleteWebhookConfig{DropPendingUpdates: true}); err != nil {
			b.logger.Warn("failed to drop pending updates", zap.Error(err))
		}
	}

	updateCfg := tgbotapi.NewUpdate(0)
	updateCfg.Timeout = b.pollTimeout
	updates := b.api.GetUpdatesChan(updateCfg)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message == nil || update.Message.From == nil {
				continue
			}
			b.metrics.Inc(observability.MetricUpdatesReceived)
			if !guard.FirstSeen(ctx, update.UpdateID) {
				b.metrics.Inc(observability.MetricUpdatesDeduped)
				continue
			}
			go b.handleMessage(ctx, dispatcher, update.Message)
		}
	}
}

func (b *Bot) handleMessage(ctx context.Context, dispatcher *conversation.Dispatcher, msg *tgbotapi.Message) {
	in := conversation.Inbound{
		UserID: msg.From.ID,
		Text:   msg.Text,
		Profile: conversation.ReporterProfile{
			FirstName: msg.From.FirstName,
			LastName:  msg.From.LastName,
			Username:  msg.From.UserName,
		},
	}

	switch {
	case len(msg.Photo) > 0:
		// Telegram sends multiple resolutions; the last is the largest.
		in.PhotoFileID = msg.Photo[len(msg.Photo)-1].FileID
		dispatcher.HandlePhoto(ctx, in)
	case msg.IsCommand():
		dispatcher.HandleCommand(ctx, in, msg.Command())
	case msg.Text != "":
		dispatcher.HandleText(ctx, in)
	}
}

// Reply implements conversation.Replier.
func (b *Bot) Reply(_ context.Context, userID int64, text string, keyboard conversation.Keyboard) error {
	msg := tgbotapi.NewMessage(userID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	if markup := keyboardMarkup(keyboard); markup != nil {
		msg.ReplyMarkup = markup
	}
	_, err := b.api.Send(msg)
	return err
}

// SendToRecipient implements notify.Messenger for operator alerts.
func (b *Bot) SendToRecipient(_ context.Context, recipientID int64, message string) error {
	msg := tgbotapi.NewMessage(recipientID, message)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	_, err := b.api.Send(msg)
	return err
}

// FileURL implements conversation.FileResolver.
func (b *Bot) FileURL(_ context.Context, fileID string) (string, error) {
	file, err := b.api.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return "", err
	}
	return file.Link(b.api.Token), nil
}

func (b *Bot) registerCommands() {
	commands := tgbotapi.NewSetMyCommands(
		tgbotapi.BotCommand{Command: conversation.CmdStart, Description: "Start the bot and show the main menu"},
		tgbotapi.BotCommand{Command: conversation.CmdNew, Description: "File a new complaint"},
		tgbotapi.BotCommand{Command: conversation.CmdStatus, Description: "Check a ticket's status"},
		tgbotapi.BotCommand{Command: conversation.CmdHelp, Description: "Show usage help"},
		tgbotapi.BotCommand{Command: conversation.CmdCancel, Description: "Cancel the current process"},
	)
	if _, err := b.api.Request(commands); err != nil {
		b.logger.Warn("failed to register command menu", zap.Error(err))
	}
}

func keyboardMarkup(keyboard conversation.Keyboard) interface{} {
	switch keyboard {
	case conversation.KeyboardMainMenu:
		kb := tgbotapi.NewReplyKeyboard(
			tgbotapi.NewKeyboardButtonRow(
				tgbotapi.NewKeyboardButton(conversation.BtnNewComplaint),
				tgbotapi.NewKeyboardButton(conversation.BtnCheckStatus),
			),
			tgbotapi.NewKeyboardButtonRow(
				tgbotapi.NewKeyboardButton(conversation.BtnHowTo),
				tgbotapi.NewKeyboardButton(conversation.BtnHelp),
			),
		)
		kb.ResizeKeyboard = true
		return kb
	case conversation.KeyboardCancelOnly:
		kb := tgbotapi.NewReplyKeyboard(
			tgbotapi.NewKeyboardButtonRow(
				tgbotapi.NewKeyboardButton(conversation.BtnCancel),
			),
		)
		kb.ResizeKeyboard = true
		return kb
	case conversation.KeyboardEvidence:
		kb := tgbotapi.NewReplyKeyboard(
			tgbotapi.NewKeyboardButtonRow(
				tgbotapi.NewKeyboardButton(conversation.BtnSendPhoto),
				tgbotapi.NewKeyboardButton(conversation.BtnSkipPhoto),
			),
			tgbotapi.NewKeyboardButtonRow(
				tgbotapi.NewKeyboardButton(conversation.BtnCancel),
			),
		)
		kb.ResizeKeyboard = true
		return kb
	case conversation.KeyboardRemove:
		return tgbotapi.NewRemoveKeyboard(true)
	default:
		return nil
	}
}
