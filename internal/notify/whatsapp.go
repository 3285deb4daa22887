package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ivanoskov/civic_bot/internal/model"
)

const DefaultWhatsAppAPIBase = "https://graph.facebook.com/v18.0"

// Ограничения Cloud API на интерактивные сообщения
const (
	maxButtons       = 3
	buttonTitleLimit = 20
	rowTitleLimit    = 24
	rowDescLimit     = 72
	bodyLimit        = 1024
	footerLimit      = 60
)

// APIError — ответ Graph API с кодом не 2xx
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("whatsapp api returned %d: %s", e.StatusCode, e.Body)
}

// WhatsAppClient — клиент WhatsApp Cloud API
type WhatsAppClient struct {
	baseURL       string
	phoneNumberID string
	token         string
	http          *http.Client
}

func NewWhatsAppClient(baseURL, phoneNumberID, token string) *WhatsAppClient {
	if baseURL == "" {
		baseURL = DefaultWhatsAppAPIBase
	}
	return &WhatsAppClient{
		baseURL:       strings.TrimRight(baseURL, "/"),
		phoneNumberID: phoneNumberID,
		token:         token,
		http:          &http.Client{Timeout: 15 * time.Second},
	}
}

var _ Notifier = (*WhatsAppClient)(nil)

type textPayload struct {
	Body string `json:"body"`
}

type message struct {
	MessagingProduct string       `json:"messaging_product"`
	RecipientType    string       `json:"recipient_type,omitempty"`
	To               string       `json:"to"`
	Type             string       `json:"type"`
	Text             *textPayload `json:"text,omitempty"`
	Interactive      *interactive `json:"interactive,omitempty"`
}

// textField — тело и подпись интерактивного сообщения
type textField struct {
	Text string `json:"text"`
}

type interactive struct {
	Type   string     `json:"type"`
	Body   textField  `json:"body"`
	Footer *textField `json:"footer,omitempty"`
	Action action     `json:"action"`
}

type action struct {
	Button   string        `json:"button,omitempty"`
	Buttons  []replyButton `json:"buttons,omitempty"`
	Sections []listSection `json:"sections,omitempty"`
}

type replyButton struct {
	Type  string `json:"type"`
	Reply struct {
		ID    string `json:"id"`
		Title string `json:"title"`
	} `json:"reply"`
}

type listSection struct {
	Title string    `json:"title,omitempty"`
	Rows  []listRow `json:"rows"`
}

type listRow struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

func (c *WhatsAppClient) SendText(ctx context.Context, to, text string) error {
	return c.send(ctx, message{
		MessagingProduct: "whatsapp",
		To:               to,
		Type:             "text",
		Text:             &textPayload{Body: text},
	})
}

func (c *WhatsAppClient) SendButtons(ctx context.Context, to, body string, buttons []model.Button, footer string) error {
	if len(buttons) > maxButtons {
		buttons = buttons[:maxButtons]
	}
	replies := make([]replyButton, 0, len(buttons))
	for _, b := range buttons {
		var rb replyButton
		rb.Type = "reply"
		rb.Reply.ID = b.ID
		rb.Reply.Title = truncate(b.Label, buttonTitleLimit)
		replies = append(replies, rb)
	}

	return c.send(ctx, message{
		MessagingProduct: "whatsapp",
		RecipientType:    "individual",
		To:               to,
		Type:             "interactive",
		Interactive: &interactive{
			Type:   "button",
			Body:   textField{Text: truncate(body, bodyLimit)},
			Footer: footerPayload(footer),
			Action: action{Buttons: replies},
		},
	})
}

func (c *WhatsAppClient) SendList(ctx context.Context, to, body, buttonLabel string, sections []model.ListSection, footer string) error {
	out := make([]listSection, 0, len(sections))
	for _, s := range sections {
		rows := make([]listRow, 0, len(s.Rows))
		for _, r := range s.Rows {
			rows = append(rows, listRow{
				ID:          r.ID,
				Title:       truncate(r.Title, rowTitleLimit),
				Description: truncate(r.Description, rowDescLimit),
			})
		}
		out = append(out, listSection{Title: truncate(s.Title, rowTitleLimit), Rows: rows})
	}

	return c.send(ctx, message{
		MessagingProduct: "whatsapp",
		RecipientType:    "individual",
		To:               to,
		Type:             "interactive",
		Interactive: &interactive{
			Type:   "list",
			Body:   textField{Text: truncate(body, bodyLimit)},
			Footer: footerPayload(footer),
			Action: action{Button: truncate(buttonLabel, buttonTitleLimit), Sections: out},
		},
	})
}

// MediaURL возвращает временную ссылку на медиафайл по его id
func (c *WhatsAppClient) MediaURL(ctx context.Context, mediaID string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/"+mediaID, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build media request: %w", err)
	}
	body, err := c.do(req)
	if err != nil {
		return "", err
	}

	var media struct {
		URL string `json:"url"`
	}
	if err := json.Unmarshal(body, &media); err != nil {
		return "", fmt.Errorf("failed to parse media response: %w", err)
	}
	if media.URL == "" {
		return "", fmt.Errorf("media %s has no url", mediaID)
	}
	return media.URL, nil
}

// DownloadMedia скачивает файл по ссылке из MediaURL
func (c *WhatsAppClient) DownloadMedia(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build download request: %w", err)
	}
	return c.do(req)
}

func (c *WhatsAppClient) send(ctx context.Context, msg message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to encode message: %w", err)
	}

	url := fmt.Sprintf("%s/%s/messages", c.baseURL, c.phoneNumberID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build message request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	if _, err := c.do(req); err != nil {
		return fmt.Errorf("failed to send %s message: %w", msg.Type, err)
	}
	return nil
}

func (c *WhatsAppClient) do(req *http.Request) ([]byte, error) {
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}

func footerPayload(footer string) *textField {
	if footer == "" {
		return nil
	}
	return &textField{Text: truncate(footer, footerLimit)}
}

// truncate обрезает строку до n символов
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
