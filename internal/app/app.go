// Package app собирает зависимости, общие для всех точек входа.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/ivanoskov/civic_bot/internal/alert"
	"github.com/ivanoskov/civic_bot/internal/chatlog"
	"github.com/ivanoskov/civic_bot/internal/config"
	"github.com/ivanoskov/civic_bot/internal/dialog"
	"github.com/ivanoskov/civic_bot/internal/notify"
	"github.com/ivanoskov/civic_bot/internal/receipt"
	"github.com/ivanoskov/civic_bot/internal/relay"
	"github.com/ivanoskov/civic_bot/internal/repository"
	"github.com/ivanoskov/civic_bot/internal/service"
	"github.com/ivanoskov/civic_bot/internal/session"
)

type App struct {
	Config   *config.Config
	Repo     repository.Repository
	Desk     *service.CivicDesk
	Engine   *dialog.Engine
	Chats    *chatlog.Store
	Receipts *receipt.Renderer
	Logger   *slog.Logger
}

// NewLogger — JSON-логгер в stdout, он же становится логгером по умолчанию
func NewLogger(level slog.Level) *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger
}

// OpenRepository открывает хранилище, выбранное в STORAGE_BACKEND
func OpenRepository(cfg *config.Config) (repository.Repository, error) {
	switch cfg.StorageBackend {
	case config.BackendSupabase:
		return repository.NewSupabaseRepository(cfg.SupabaseURL, cfg.SupabaseKey)
	case config.BackendSQLite:
		return repository.NewSQLiteRepository(cfg.DBPath)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}

// Build открывает хранилище, засевает налоговые записи и собирает движок
func Build(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	repo, err := OpenRepository(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open repository: %w", err)
	}

	if n, err := repository.Seed(ctx, repo); err != nil {
		logger.Warn("failed to seed tax records", "error", err)
	} else if n > 0 {
		logger.Info("seeded tax records", "count", n)
	}

	var notifier service.ComplaintNotifier
	if cfg.AlertsEnabled() {
		mailer, err := alert.NewMailer(cfg.ResendAPIKey, cfg.AlertEmailFrom, alert.ParseRecipients(cfg.AlertEmailTo))
		if err != nil {
			repo.Close()
			return nil, fmt.Errorf("failed to configure alerts: %w", err)
		}
		notifier = mailer
		logger.Info("complaint alerts enabled")
	}

	desk := service.NewCivicDesk(repo, notifier)
	receipts := receipt.NewRenderer(cfg.ReceiptDir, cfg.PublicBaseURL)
	engine := dialog.NewEngine(session.NewStore(), desk,
		dialog.WithReceipts(receipts),
		dialog.WithLogger(logger),
	)

	return &App{
		Config:   cfg,
		Repo:     repo,
		Desk:     desk,
		Engine:   engine,
		Chats:    chatlog.NewStore(cfg.ChatLogTTL, cfg.ChatLogMaxMessages),
		Receipts: receipts,
		Logger:   logger,
	}, nil
}

// Relay связывает движок с каналом доставки n
func (a *App) Relay(n notify.Notifier) *relay.Relay {
	return relay.New(a.Engine, n, a.Chats, a.Logger)
}

// Close дожидается уведомлений о жалобах и закрывает хранилище
func (a *App) Close() error {
	a.Desk.Wait()
	return a.Repo.Close()
}
