package webhook

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/ivanoskov/civic_bot/internal/i18n"
	"github.com/ivanoskov/civic_bot/internal/model"
	"github.com/ivanoskov/civic_bot/internal/relay"
)

// MediaSource скачивает вложения, присланные через WhatsApp
type MediaSource interface {
	MediaURL(ctx context.Context, mediaID string) (string, error)
	DownloadMedia(ctx context.Context, url string) ([]byte, error)
}

type Handler struct {
	relay       *relay.Relay
	media       MediaSource
	texts       *i18n.Bundle
	verifyToken string
	uploadDir   string
	logger      *slog.Logger
}

func NewHandler(r *relay.Relay, media MediaSource, texts *i18n.Bundle, verifyToken, uploadDir string, logger *slog.Logger) *Handler {
	if texts == nil {
		texts = i18n.MustLoad()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		relay:       r,
		media:       media,
		texts:       texts,
		verifyToken: verifyToken,
		uploadDir:   uploadDir,
		logger:      logger,
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/webhook", h.Verify)
	r.Post("/webhook", h.Receive)
}

// Verify отвечает на проверку подписки от Meta
func (h *Handler) Verify(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("hub.mode") == "subscribe" && h.verifyToken != "" && q.Get("hub.verify_token") == h.verifyToken {
		h.logger.Info("webhook verified")
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(q.Get("hub.challenge")))
		return
	}
	h.logger.Warn("webhook verification failed")
	Error(w, http.StatusForbidden, "verification token mismatch")
}

// Receive принимает уведомление. Ответ всегда 200, иначе провайдер повторит доставку.
func (h *Handler) Receive(w http.ResponseWriter, r *http.Request) {
	var p payload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		h.logger.Error("failed to decode webhook payload", "error", err)
		JSON(w, http.StatusOK, map[string]string{"status": "error"})
		return
	}

	for _, e := range p.Entry {
		for _, c := range e.Changes {
			for _, msg := range c.Value.Messages {
				h.handleMessage(r.Context(), msg)
			}
			for _, st := range c.Value.Statuses {
				h.logger.Debug("message status update",
					"message_id", st.ID, "status", st.Status, "recipient", st.RecipientID)
			}
		}
	}
	JSON(w, http.StatusOK, map[string]string{"status": "success"})
}

func (h *Handler) handleMessage(ctx context.Context, msg message) {
	if msg.From == "" {
		return
	}
	in, ok := h.inbound(ctx, msg)
	if !ok {
		return
	}
	h.relay.Process(ctx, msg.From, in)
}

// inbound переводит сообщение WhatsApp во входящее событие движка.
// false означает, что пользователю уже отправлена подсказка.
func (h *Handler) inbound(ctx context.Context, msg message) (model.Inbound, bool) {
	switch msg.Type {
	case "text":
		if msg.Text != nil {
			return model.TextEvent(msg.Text.Body), true
		}
	case "interactive":
		if id, ok := replyID(msg.Interactive); ok {
			return model.SelectionEvent(id), true
		}
		h.logger.Warn("unknown interactive reply", "user_id", msg.From)
	case "image":
		if msg.Image != nil {
			ref, err := h.saveImage(ctx, msg.Image.ID)
			if err != nil {
				h.logger.Error("failed to fetch image", "user_id", msg.From, "media_id", msg.Image.ID, "error", err)
				h.notice(ctx, msg.From, "image_failed")
				return model.Inbound{}, false
			}
			return model.ImageEvent(ref), true
		}
	case "location":
		if msg.Location != nil {
			return model.LocationEvent(msg.Location.Latitude, msg.Location.Longitude), true
		}
	}

	h.logger.Info("unsupported message type", "user_id", msg.From, "type", msg.Type)
	h.notice(ctx, msg.From, "unsupported_message")
	return model.Inbound{}, false
}

func replyID(in *interactive) (string, bool) {
	if in == nil {
		return "", false
	}
	switch {
	case in.Type == "button_reply" && in.ButtonReply != nil:
		return in.ButtonReply.ID, true
	case in.Type == "list_reply" && in.ListReply != nil:
		return in.ListReply.ID, true
	}
	return "", false
}

// saveImage скачивает вложение в uploadDir и возвращает публичный путь /uploads/<id>.jpg
func (h *Handler) saveImage(ctx context.Context, mediaID string) (string, error) {
	if h.media == nil {
		return "", fmt.Errorf("media source is not configured")
	}
	name := safeName(mediaID)
	if name == "" {
		return "", fmt.Errorf("invalid media id %q", mediaID)
	}

	url, err := h.media.MediaURL(ctx, mediaID)
	if err != nil {
		return "", err
	}
	data, err := h.media.DownloadMedia(ctx, url)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(h.uploadDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}
	file := name + ".jpg"
	if err := os.WriteFile(filepath.Join(h.uploadDir, file), data, 0644); err != nil {
		return "", fmt.Errorf("failed to save image: %w", err)
	}
	return "/uploads/" + file, nil
}

func (h *Handler) notice(ctx context.Context, userID, key string) {
	h.relay.Notice(ctx, userID, h.texts.Text(key, h.relay.Language(userID), nil))
}

func safeName(id string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return -1
	}, id)
}
