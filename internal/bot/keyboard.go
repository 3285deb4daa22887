package bot

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/ivanoskov/civic_bot/internal/model"
)

// buttonsKeyboard — кнопки ответа в один ряд
func buttonsKeyboard(buttons []model.Button) tgbotapi.InlineKeyboardMarkup {
	row := make([]tgbotapi.InlineKeyboardButton, 0, len(buttons))
	for _, btn := range buttons {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(btn.Label, btn.ID))
	}
	return tgbotapi.NewInlineKeyboardMarkup(row)
}

// listKeyboard — по одной кнопке на строку списка
func listKeyboard(sections []model.ListSection) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, section := range sections {
		for _, item := range section.Rows {
			label := item.Title
			if item.Description != "" {
				label += " " + item.Description
			}
			rows = append(rows, tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData(label, item.ID),
			))
		}
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}
