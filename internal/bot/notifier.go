package bot

import (
	"context"
	"fmt"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/ivanoskov/civic_bot/internal/model"
	"github.com/ivanoskov/civic_bot/internal/notify"
)

// Notifier отправляет ответы движка в чаты Telegram
type Notifier struct {
	api telegramAPI
}

func NewNotifier(api *tgbotapi.BotAPI) *Notifier {
	return &Notifier{api: api}
}

var _ notify.Notifier = (*Notifier)(nil)

func (n *Notifier) SendText(ctx context.Context, to, text string) error {
	return n.send(ctx, to, text, nil)
}

func (n *Notifier) SendButtons(ctx context.Context, to, body string, buttons []model.Button, footer string) error {
	return n.send(ctx, to, withFooter(body, footer), buttonsKeyboard(buttons))
}

func (n *Notifier) SendList(ctx context.Context, to, body, _ string, sections []model.ListSection, footer string) error {
	return n.send(ctx, to, withFooter(body, footer), listKeyboard(sections))
}

func (n *Notifier) send(ctx context.Context, to, text string, markup any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	chatID, err := strconv.ParseInt(to, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid telegram chat id %q: %w", to, err)
	}

	msg := tgbotapi.NewMessage(chatID, text)
	if markup != nil {
		msg.ReplyMarkup = markup
	}
	if _, err := n.api.Send(msg); err != nil {
		return fmt.Errorf("failed to send telegram message: %w", err)
	}
	return nil
}

func withFooter(body, footer string) string {
	if footer == "" {
		return body
	}
	return body + "\n\n" + footer
}
