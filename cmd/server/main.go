// Сервер вебхука WhatsApp и API бэк-офиса
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ivanoskov/civic_bot/internal/app"
	"github.com/ivanoskov/civic_bot/internal/config"
	"github.com/ivanoskov/civic_bot/internal/notify"
	"github.com/ivanoskov/civic_bot/internal/webhook"
)

func main() {
	os.Exit(run())
}

// run возвращает код выхода процесса
func run() int {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		return 1
	}
	logger := app.NewLogger(cfg.LogLevel)

	if err := cfg.ValidateWhatsApp(); err != nil {
		slog.Error("WhatsApp is not configured", "error", err)
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

	wa := notify.NewWhatsAppClient(cfg.WhatsAppAPIBase, cfg.WhatsAppPhoneNumberID, cfg.WhatsAppToken)
	rl := a.Relay(wa)

	router := webhook.NewRouter(
		webhook.NewHandler(rl, wa, nil, cfg.VerifyToken, cfg.UploadDir, logger),
		webhook.NewAdmin(a.Desk, a.Chats, logger),
		webhook.Static{UploadDir: cfg.UploadDir, ReceiptDir: cfg.ReceiptDir},
	)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	slog.Info("Server listening", "addr", srv.Addr, "storage", cfg.StorageBackend)
	code := serve(ctx, srv)
	stop()
	rl.Wait()
	slog.Info("Server stopped")
	return code
}

// serve обслуживает запросы до отмены ctx или ошибки сервера и останавливает srv.
// Возвращает 1, если сервер упал сам.
func serve(ctx context.Context, srv *http.Server) int {
	serveErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	exitCode := 0
	select {
	case <-ctx.Done():
		slog.Info("Shutting down gracefully...")
	case err := <-serveErr:
		slog.Error("Server failed", "error", err)
		exitCode = 1
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}
	return exitCode
}
