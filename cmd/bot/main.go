// Бот Telegram в режиме long polling
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ivanoskov/civic_bot/internal/app"
	"github.com/ivanoskov/civic_bot/internal/bot"
	"github.com/ivanoskov/civic_bot/internal/config"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		return 1
	}
	logger := app.NewLogger(cfg.LogLevel)

	if err := cfg.ValidateTelegram(); err != nil {
		slog.Error("Telegram is not configured", "error", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.Build(ctx, cfg, logger)
	if err != nil {
		slog.Error("Failed to initialize application", "error", err)
		return 1
	}
	defer func() {
		if closeErr := a.Close(); closeErr != nil {
			slog.Error("Failed to close repository", "error", closeErr)
		}
	}()

	a.Chats.StartEviction(ctx, time.Minute)

	api, err := bot.NewAPI(cfg.TelegramToken)
	if err != nil {
		slog.Error("Failed to connect to Telegram", "error", err)
		return 1
	}

	b := bot.NewBot(api, a.Relay(bot.NewNotifier(api)), cfg.UploadDir, logger)
	if err := b.Start(ctx); err != nil {
		slog.Error("Bot stopped with error", "error", err)
		return 1
	}
	return 0
}
