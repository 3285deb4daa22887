package bot

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/ivanoskov/civic_bot/internal/dialog"
	"github.com/ivanoskov/civic_bot/internal/model"
)

func (b *Bot) handleCallback(ctx context.Context, callback *tgbotapi.CallbackQuery) {
	// Отвечаем на callback, чтобы убрать loading indicator
	if _, err := b.api.Request(tgbotapi.NewCallback(callback.ID, "")); err != nil {
		b.logger.Warn("failed to answer callback", "error", err)
	}
	if callback.Message == nil || callback.Message.Chat == nil {
		return
	}

	b.relay.Process(ctx, chatKey(callback.Message.Chat.ID), model.SelectionEvent(callback.Data))
}

func (b *Bot) handleMessage(ctx context.Context, message *tgbotapi.Message) {
	if message.Chat == nil {
		return
	}
	userID := chatKey(message.Chat.ID)

	switch {
	case message.IsCommand():
		// /start начинает диалог заново
		if message.Command() == "start" {
			b.relay.Process(ctx, userID, model.TextEvent(dialog.RestartKeyword))
			return
		}
		b.relay.Process(ctx, userID, model.TextEvent(message.Text))
	case len(message.Photo) > 0:
		ref, err := b.savePhoto(ctx, message.Photo)
		if err != nil {
			b.logger.Error("failed to fetch photo", "user_id", userID, "error", err)
			b.relay.Notice(ctx, userID, b.texts.Text("image_failed", b.relay.Language(userID), nil))
			return
		}
		b.relay.Process(ctx, userID, model.ImageEvent(ref))
	case message.Location != nil:
		b.relay.Process(ctx, userID, model.LocationEvent(message.Location.Latitude, message.Location.Longitude))
	case message.Text != "":
		b.relay.Process(ctx, userID, model.TextEvent(message.Text))
	default:
		b.relay.Notice(ctx, userID, b.texts.Text("unsupported_message", b.relay.Language(userID), nil))
	}
}

// savePhoto скачивает самый крупный вариант фото в uploadDir.
// Прямая ссылка Telegram содержит токен бота, поэтому в жалобу попадает локальный путь.
func (b *Bot) savePhoto(ctx context.Context, sizes []tgbotapi.PhotoSize) (string, error) {
	photo := sizes[len(sizes)-1]
	url, err := b.api.GetFileDirectURL(photo.FileID)
	if err != nil {
		return "", fmt.Errorf("failed to get file url: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	resp, err := b.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to download photo: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to download photo: status %d", resp.StatusCode)
	}

	if err := os.MkdirAll(b.uploadDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}
	name := "tg_" + photo.FileUniqueID + ".jpg"
	f, err := os.Create(filepath.Join(b.uploadDir, name))
	if err != nil {
		return "", fmt.Errorf("failed to create photo file: %w", err)
	}
	defer f.Close()
	if _, err := io.Copy(f, resp.Body); err != nil {
		return "", fmt.Errorf("failed to save photo: %w", err)
	}
	return "/uploads/" + name, nil
}
