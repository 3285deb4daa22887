package bot

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/ivanoskov/civic_bot/internal/i18n"
	"github.com/ivanoskov/civic_bot/internal/relay"
)

// telegramAPI — методы BotAPI, которыми пользуется бот
type telegramAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetFileDirectURL(fileID string) (string, error)
}

// Bot — канал Telegram поверх того же движка диалога
type Bot struct {
	api       telegramAPI
	poller    *tgbotapi.BotAPI
	relay     *relay.Relay
	texts     *i18n.Bundle
	uploadDir string
	http      *http.Client
	logger    *slog.Logger
}

// NewAPI подключается к Telegram по токену
func NewAPI(token string) (*tgbotapi.BotAPI, error) {
	return tgbotapi.NewBotAPI(token)
}

func NewBot(api *tgbotapi.BotAPI, r *relay.Relay, uploadDir string, logger *slog.Logger) *Bot {
	b := newBot(api, r, uploadDir, logger)
	b.poller = api
	return b
}

func newBot(api telegramAPI, r *relay.Relay, uploadDir string, logger *slog.Logger) *Bot {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bot{
		api:       api,
		relay:     r,
		texts:     i18n.MustLoad(),
		uploadDir: uploadDir,
		http:      &http.Client{Timeout: 30 * time.Second},
		logger:    logger,
	}
}

// Start запускает бота в режиме long polling до отмены ctx
func (b *Bot) Start(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.poller.GetUpdatesChan(u)
	defer b.poller.StopReceivingUpdates()

	b.logger.Info("telegram bot started", "username", b.poller.Self.UserName)
	for {
		select {
		case <-ctx.Done():
			b.relay.Wait()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.handleUpdate(ctx, update)
		}
	}
}

// HandleWebhook - точка входа для обработки входящих webhook-обновлений
func (b *Bot) HandleWebhook(ctx context.Context, body []byte) error {
	var update tgbotapi.Update
	if err := json.Unmarshal(body, &update); err != nil {
		return err
	}

	b.handleUpdate(ctx, update)
	return nil
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil:
		b.handleMessage(ctx, update.Message)
	}
}

func chatKey(chatID int64) string {
	return strconv.FormatInt(chatID, 10)
}
