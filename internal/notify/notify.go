// Package notify доставляет ответы движка диалога в канал пользователя.
package notify

import (
	"context"
	"fmt"

	"github.com/ivanoskov/civic_bot/internal/model"
)

// Notifier — шлюз уведомлений канала
type Notifier interface {
	SendText(ctx context.Context, to, text string) error
	SendButtons(ctx context.Context, to, body string, buttons []model.Button, footer string) error
	SendList(ctx context.Context, to, body, buttonLabel string, sections []model.ListSection, footer string) error
}

// Deliver отправляет ответ подходящим методом шлюза
func Deliver(ctx context.Context, n Notifier, to string, out model.Outbound) error {
	switch out.Kind {
	case model.OutboundButtons:
		return n.SendButtons(ctx, to, out.Body, out.Buttons, out.Footer)
	case model.OutboundList:
		return n.SendList(ctx, to, out.Body, out.ButtonLabel, out.Sections, out.Footer)
	case model.OutboundText, "":
		return n.SendText(ctx, to, out.Body)
	default:
		return fmt.Errorf("unknown outbound kind %q", out.Kind)
	}
}
