package model

import (
	"fmt"
	"strings"
	"time"
)

type ComplaintStatus string

const (
	ComplaintPending    ComplaintStatus = "pending"
	ComplaintInProgress ComplaintStatus = "in_progress"
	ComplaintResolved   ComplaintStatus = "resolved"
)

func ParseComplaintStatus(raw string) (ComplaintStatus, error) {
	switch s := ComplaintStatus(strings.ToLower(strings.TrimSpace(raw))); s {
	case ComplaintPending, ComplaintInProgress, ComplaintResolved:
		return s, nil
	default:
		return "", fmt.Errorf("unknown complaint status %q", raw)
	}
}

// Title — статус для показа пользователю ("In Progress")
func (s ComplaintStatus) Title() string {
	words := strings.Split(string(s), "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

// GeoPoint — координаты, присланные пользователем
type GeoPoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type Complaint struct {
	ID          string          `json:"id"`
	ComplaintID string          `json:"complaint_id"`
	UserID      string          `json:"user_id"`
	LoginID     string          `json:"login_id"`
	Category    string          `json:"category"`
	SubIssue    string          `json:"sub_issue"`
	Description string          `json:"description,omitempty"`
	ImageURL    string          `json:"image_url,omitempty"`
	Latitude    *float64        `json:"latitude,omitempty"`
	Longitude   *float64        `json:"longitude,omitempty"`
	Status      ComplaintStatus `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// GenerateID генерирует ID и ComplaintID, если они еще не установлены
func (c *Complaint) GenerateID() {
	if c.ID == "" {
		c.ID = NewRowID()
	}
	if c.ComplaintID == "" {
		c.ComplaintID = NewComplaintID()
	}
}

// SetLocation переносит координаты в поля записи
func (c *Complaint) SetLocation(p *GeoPoint) {
	if p == nil {
		return
	}
	lat, long := p.Latitude, p.Longitude
	c.Latitude = &lat
	c.Longitude = &long
}

// ComplaintView — жалоба вместе с данными заявителя для бэк-офиса
type ComplaintView struct {
	Complaint
	UserName   string `json:"user_name"`
	UserMobile string `json:"user_mobile"`
	UserArea   string `json:"user_area"`
	UserWard   string `json:"user_ward"`
}
