package model

import (
	"fmt"
	"strings"
)

type InboundKind string

const (
	InboundText      InboundKind = "text"
	InboundImage     InboundKind = "image"
	InboundLocation  InboundKind = "location"
	InboundSelection InboundKind = "selection"
)

// Inbound — одно входящее событие от транспорта
type Inbound struct {
	Kind      InboundKind `json:"kind"`
	Body      string      `json:"body,omitempty"`
	Reference string      `json:"reference,omitempty"`
	Latitude  float64     `json:"latitude,omitempty"`
	Longitude float64     `json:"longitude,omitempty"`
}

func TextEvent(body string) Inbound {
	return Inbound{Kind: InboundText, Body: body}
}

// SelectionEvent — ответ кнопкой или пунктом списка, обрабатывается как текст с его id
func SelectionEvent(id string) Inbound {
	return Inbound{Kind: InboundSelection, Body: id}
}

func ImageEvent(reference string) Inbound {
	return Inbound{Kind: InboundImage, Reference: reference}
}

func LocationEvent(lat, long float64) Inbound {
	return Inbound{Kind: InboundLocation, Latitude: lat, Longitude: long}
}

// Text возвращает текст события для обработчиков состояний
func (in Inbound) Text() string {
	switch in.Kind {
	case InboundText, InboundSelection:
		return in.Body
	default:
		return ""
	}
}

// Geo возвращает координаты, если событие их несет
func (in Inbound) Geo() (*GeoPoint, bool) {
	if in.Kind != InboundLocation {
		return nil, false
	}
	return &GeoPoint{Latitude: in.Latitude, Longitude: in.Longitude}, true
}

// ImageRef возвращает ссылку на изображение, если событие ее несет
func (in Inbound) ImageRef() (string, bool) {
	if in.Kind != InboundImage || in.Reference == "" {
		return "", false
	}
	return in.Reference, true
}

// Describe — короткая строка для журнала переписки
func (in Inbound) Describe() string {
	switch in.Kind {
	case InboundImage:
		return "[image] " + in.Reference
	case InboundLocation:
		return fmt.Sprintf("[location] %.6f,%.6f", in.Latitude, in.Longitude)
	default:
		return in.Body
	}
}

type OutboundKind string

const (
	OutboundText    OutboundKind = "text"
	OutboundButtons OutboundKind = "buttons"
	OutboundList    OutboundKind = "list"
)

type Button struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

type ListRow struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

type ListSection struct {
	Title string    `json:"title"`
	Rows  []ListRow `json:"rows"`
}

// Outbound — ответ движка диалога для шлюза уведомлений
type Outbound struct {
	Kind        OutboundKind  `json:"kind"`
	Body        string        `json:"body"`
	Buttons     []Button      `json:"buttons,omitempty"`
	ButtonLabel string        `json:"button_label,omitempty"`
	Sections    []ListSection `json:"sections,omitempty"`
	Footer      string        `json:"footer,omitempty"`
}

func Text(body string) Outbound {
	return Outbound{Kind: OutboundText, Body: body}
}

// PlainText сворачивает кнопки и списки в обычный текст
func (o Outbound) PlainText() string {
	var b strings.Builder
	b.WriteString(o.Body)
	switch o.Kind {
	case OutboundButtons:
		b.WriteString("\n")
		for _, btn := range o.Buttons {
			fmt.Fprintf(&b, "\n[%s] %s", btn.ID, btn.Label)
		}
	case OutboundList:
		for _, sec := range o.Sections {
			if sec.Title != "" {
				fmt.Fprintf(&b, "\n\n%s", sec.Title)
			}
			for _, row := range sec.Rows {
				fmt.Fprintf(&b, "\n[%s] %s", row.ID, row.Title)
				if row.Description != "" {
					fmt.Fprintf(&b, " (%s)", row.Description)
				}
			}
		}
	}
	if o.Footer != "" {
		fmt.Fprintf(&b, "\n\n%s", o.Footer)
	}
	return b.String()
}
