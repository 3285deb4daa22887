// Package session хранит состояние диалога каждого пользователя в памяти процесса.
package session

import (
	"time"

	"github.com/ivanoskov/civic_bot/internal/i18n"
	"github.com/ivanoskov/civic_bot/internal/model"
)

// Session — состояние одного пользователя в текущем цикле входа
type Session struct {
	UserID string      `json:"user_id"`
	State  model.State `json:"state"`
	Lang   i18n.Lang   `json:"language"`

	// Заполняются после регистрации или успешного отслеживания
	AccountID string `json:"account_id,omitempty"`
	LoginID   string `json:"login_id,omitempty"`

	Name   string `json:"name,omitempty"`
	Mobile string `json:"mobile,omitempty"`
	Area   string `json:"area,omitempty"`
	Ward   string `json:"ward,omitempty"`

	Category    string          `json:"category,omitempty"`
	SubIssue    string          `json:"sub_issue,omitempty"`
	ImageRef    string          `json:"image_ref,omitempty"`
	Location    *model.GeoPoint `json:"location,omitempty"`
	Description string          `json:"description,omitempty"`

	ComplaintID string `json:"complaint_id,omitempty"`
	PropertyID  string `json:"property_id,omitempty"`

	FailedAttempts int `json:"failed_attempts"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// New создает сессию в начальном состоянии
func New(userID string, now time.Time) *Session {
	return &Session{
		UserID:    userID,
		State:     model.InitialState,
		Lang:      i18n.DefaultLang,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Clone возвращает независимую копию
func (s *Session) Clone() *Session {
	c := *s
	if s.Location != nil {
		loc := *s.Location
		c.Location = &loc
	}
	return &c
}

// ClearComplaint сбрасывает поля, собранные для предыдущей жалобы
func (s *Session) ClearComplaint() {
	s.Category = ""
	s.SubIssue = ""
	s.ImageRef = ""
	s.Location = nil
	s.Description = ""
	s.ComplaintID = ""
}
