package webhook

// Структура уведомления WhatsApp Cloud API; разбираются только нужные поля
type payload struct {
	Object string  `json:"object"`
	Entry  []entry `json:"entry"`
}

type entry struct {
	ID      string   `json:"id"`
	Changes []change `json:"changes"`
}

type change struct {
	Field string      `json:"field"`
	Value changeValue `json:"value"`
}

type changeValue struct {
	Messages []message      `json:"messages"`
	Statuses []statusUpdate `json:"statuses"`
}

type message struct {
	From        string       `json:"from"`
	ID          string       `json:"id"`
	Type        string       `json:"type"`
	Text        *textBody    `json:"text,omitempty"`
	Interactive *interactive `json:"interactive,omitempty"`
	Image       *media       `json:"image,omitempty"`
	Location    *location    `json:"location,omitempty"`
}

type textBody struct {
	Body string `json:"body"`
}

type interactive struct {
	Type        string `json:"type"`
	ButtonReply *reply `json:"button_reply,omitempty"`
	ListReply   *reply `json:"list_reply,omitempty"`
}

type reply struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type media struct {
	ID       string `json:"id"`
	MimeType string `json:"mime_type"`
}

type location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type statusUpdate struct {
	ID          string `json:"id"`
	Status      string `json:"status"`
	RecipientID string `json:"recipient_id"`
}
